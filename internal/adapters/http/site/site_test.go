package site

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestSiteHandler(t *testing.T) {
	Convey("Given the embedded join page", t, func() {
		ctx := context.Background()
		mux := http.NewServeMux()
		Register(ctx, mux)

		Convey("Then it serves the page at root", func() {
			req := httptest.NewRequest("GET", "/", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Type"), ShouldContainSubstring, "text/html")
			So(w.Body.String(), ShouldContainSubstring, "Pixel Party Triathlon")
		})

		Convey("Then unknown assets are not found", func() {
			req := httptest.NewRequest("GET", "/missing-asset.js", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestSiteHandlerWithNilMux(t *testing.T) {
	Convey("Given a nil mux", t, func() {
		Convey("When registering the site handler", func() {
			Convey("Then it should panic", func() {
				So(func() {
					Register(context.Background(), nil)
				}, ShouldPanic)
			})
		})
	})
}
