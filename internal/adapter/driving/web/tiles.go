package web

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/impossibleiman/couplemap/internal/domain/port/driven"
)

// Tile proxies one slippy-map tile from the configured tile source. Zoom is
// limited to the levels the map allows and x/y to the tile grid at that zoom.
func (h *Handler) Tile(w http.ResponseWriter, r *http.Request) {
	z, x, y, ok := parseTilePath(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if h.tiles == nil {
		http.NotFound(w, r)
		return
	}

	tile, err := h.tiles.FetchTile(r.Context(), z, x, y)
	if errors.Is(err, driven.ErrTileNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		h.logger.Warn("tile fetch failed", "z", z, "x", x, "y", y, "error", err)
		http.Error(w, "tile unavailable", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", tile.ContentType)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = w.Write(tile.Data)
}

// parseTilePath reads {z}/{x}/{y}, tolerating a trailing ".png" on y.
func parseTilePath(r *http.Request) (z, x, y int, ok bool) {
	var err error
	if z, err = strconv.Atoi(r.PathValue("z")); err != nil || z < minZoom || z > maxZoom {
		return 0, 0, 0, false
	}
	n := 1 << z
	if x, err = strconv.Atoi(r.PathValue("x")); err != nil || x < 0 || x >= n {
		return 0, 0, 0, false
	}
	if y, err = strconv.Atoi(strings.TrimSuffix(r.PathValue("y"), ".png")); err != nil || y < 0 || y >= n {
		return 0, 0, 0, false
	}
	return z, x, y, true
}
