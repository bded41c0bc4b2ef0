package server

import (
	"fmt"
	"net/http"

	"github.com/ayusman/terrainscope/internal/display"
)

// StreamHandler serves published figures as a multipart PNG stream, the
// latest figure first and then each new one as it arrives.
type StreamHandler struct {
	gallery *display.Gallery
}

// NewStreamHandler creates a new StreamHandler reading from g.
func NewStreamHandler(g *display.Gallery) *StreamHandler {
	return &StreamHandler{gallery: g}
}

// ServeHTTP streams figures until the client disconnects or the gallery closes.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	events, unsubscribe := h.gallery.Subscribe()
	defer unsubscribe()

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	if list := h.gallery.List(); len(list) > 0 {
		h.writeFrame(w, list[len(list)-1].ID)
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			h.writeFrame(w, ev.Figure.ID)
		}
	}
}

func (h *StreamHandler) writeFrame(w http.ResponseWriter, id string) {
	_, data, ok := h.gallery.Get(id)
	if !ok {
		return
	}

	fmt.Fprintf(w, "--frame\r\n")
	fmt.Fprintf(w, "Content-Type: image/png\r\n")
	fmt.Fprintf(w, "Content-Length: %d\r\n\r\n", len(data))
	w.Write(data)
	fmt.Fprintf(w, "\r\n")

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}
