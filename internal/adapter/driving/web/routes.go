package web

import (
	"io/fs"
	"net/http"
)

// RegisterRoutes registers all web GUI routes on the provided mux.
// Static assets are served from the embedded filesystem at /static/*.
func RegisterRoutes(mux *http.ServeMux, h *Handler) {
	staticFS, _ := fs.Sub(StaticFS, "static")
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(staticFS)))

	mux.HandleFunc("GET /tiles/{z}/{x}/{y}", h.Tile)

	mux.HandleFunc("GET /{$}", h.MapPage)
	mux.HandleFunc("GET /places/new", h.NewPlace)
	mux.HandleFunc("GET /places/{category}/{index}/edit", h.EditPlace)
	mux.HandleFunc("POST /places", h.SavePlace)
	mux.HandleFunc("POST /places/{category}/{index}/delete", h.RemovePlace)
}
