package api

import (
	"net/http"
	"strconv"

	"github.com/ayusman/terrainscope/internal/display"
)

// FigureHandler serves figures published to a gallery.
type FigureHandler struct {
	gallery *display.Gallery
}

// NewFigureHandler creates a new FigureHandler reading from g.
func NewFigureHandler(g *display.Gallery) *FigureHandler {
	return &FigureHandler{gallery: g}
}

type listFiguresResponse struct {
	Figures []display.Entry `json:"figures"`
}

// ServeHTTP routes GET /api/figures (JSON list) and GET /api/figures/{id} (PNG).
func (h *FigureHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := itemID(r.URL.Path, "/api/figures")
	if id == "" {
		writeJSON(w, http.StatusOK, listFiguresResponse{Figures: h.gallery.List()})
		return
	}

	_, data, ok := h.gallery.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "Figure not found")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
