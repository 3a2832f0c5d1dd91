package swagger

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestSwaggerHandler(t *testing.T) {
	Convey("Given the API reference routes", t, func() {
		ctx := context.Background()
		mux := http.NewServeMux()
		Register(ctx, mux)

		Convey("Then /api-docs serves the viewer", func() {
			req := httptest.NewRequest("GET", "/api-docs", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Type"), ShouldContainSubstring, "text/html")
			So(w.Body.String(), ShouldContainSubstring, "Redoc.init")
		})

		Convey("Then /openapi.yaml serves the spec", func() {
			req := httptest.NewRequest("GET", "/openapi.yaml", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Type"), ShouldContainSubstring, "yaml")
			So(w.Body.String(), ShouldContainSubstring, "Pixel Party Triathlon API")
			So(w.Body.String(), ShouldContainSubstring, "/leaderboard")
		})
	})
}

func TestSwaggerHandlerWithNilMux(t *testing.T) {
	Convey("Given a nil mux", t, func() {
		Convey("When registering the routes", func() {
			Convey("Then it should panic", func() {
				So(func() {
					Register(context.Background(), nil)
				}, ShouldPanic)
			})
		})
	})
}
