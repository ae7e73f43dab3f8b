// Package site serves the embedded screening form page.
package site

import (
	"context"
	"net/http"
)

// Register attaches the embedded form page and its assets to mux at /.
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.Handle("/", http.FileServer(FS()))
}
