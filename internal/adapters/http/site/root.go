// Package site serves the embedded join and spectator page.
package site

import (
	"context"
	"net/http"
)

// Register attaches the embedded page routes to mux. The page lives at
// root so the invite QR code can point participants straight at it.
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}

	mux.Handle("/", http.FileServer(FS()))
}
