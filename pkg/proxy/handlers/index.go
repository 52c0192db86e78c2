package handlers

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed static/index.html static/script.js
var staticFiles embed.FS

// StaticFS returns the embedded chat page assets rooted at static/.
func StaticFS() fs.FS {
	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// IndexHandler serves the chat landing page.
type IndexHandler struct {
	assets fs.FS
}

// NewIndexHandler creates a handler over the embedded assets.
func NewIndexHandler() *IndexHandler {
	return &IndexHandler{assets: StaticFS()}
}

// ServeHTTP serves index.html.
func (h *IndexHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	http.ServeFileFS(w, r, h.assets, "index.html")
}

// ScriptHandler returns a handler for the page script.
func (h *IndexHandler) ScriptHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.ServeFileFS(w, r, h.assets, "script.js")
	})
}
