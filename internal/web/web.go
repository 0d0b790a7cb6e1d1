// Package web serves the browser player: a single page listing playlists with a shuffle player on top of
// the JSON API in package server.
//
// The page and its assets are embedded in the binary. Handler implements server.Handler so it can be
// registered on the same router as the API.
package web

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed static
var assets embed.FS

// Handler serves the player page at / and its assets under /static/.
type Handler struct {
	static http.Handler
	index  []byte
}

func NewHandler() *Handler {
	sub, err := fs.Sub(assets, "static")
	if err != nil {
		panic(err)
	}
	index, err := fs.ReadFile(sub, "index.html")
	if err != nil {
		panic(err)
	}
	return &Handler{
		static: http.StripPrefix("/static/", http.FileServerFS(sub)),
		index:  index,
	}
}

// Routes returns the mux patterns the player is served on.
func (h *Handler) Routes() []string {
	return []string{"GET /{$}", "GET /static/"}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(h.index)
		return
	}
	h.static.ServeHTTP(w, r)
}
