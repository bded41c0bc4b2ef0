package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ayusman/terrainscope/internal/display"
	"github.com/ayusman/terrainscope/internal/logging"
)

// writeWait bounds a single event write to one client.
var writeWait = 5 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// EventsHandler broadcasts gallery publish events via WebSocket.
type EventsHandler struct {
	gallery     *display.Gallery
	logger      *zap.SugaredLogger
	unsubscribe func()
	done        chan struct{}
	closeOnce   sync.Once

	clients map[*websocket.Conn]bool
	mu      sync.RWMutex
}

// NewEventsHandler creates a new EventsHandler forwarding events from g.
// Close releases the gallery subscription.
func NewEventsHandler(g *display.Gallery, logger *zap.SugaredLogger) *EventsHandler {
	events, unsubscribe := g.Subscribe()
	h := &EventsHandler{
		gallery:     g,
		logger:      logging.OrNop(logger),
		unsubscribe: unsubscribe,
		done:        make(chan struct{}),
		clients:     make(map[*websocket.Conn]bool),
	}
	go h.broadcast(events)
	return h
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warnw("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
	}()

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// Clients returns the number of connected clients.
func (h *EventsHandler) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close unsubscribes from the gallery, waits for the broadcaster to stop and
// disconnects every client. It is safe to call more than once.
func (h *EventsHandler) Close() error {
	h.closeOnce.Do(func() {
		h.unsubscribe()
		<-h.done

		h.mu.RLock()
		for conn := range h.clients {
			conn.Close()
		}
		h.mu.RUnlock()
	})
	return nil
}

func (h *EventsHandler) snapshot() []*websocket.Conn {
	h.mu.RLock()
	defer h.mu.RUnlock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for conn := range h.clients {
		conns = append(conns, conn)
	}
	return conns
}

// broadcast sends each gallery event to all connected clients until the
// subscription is closed.
func (h *EventsHandler) broadcast(events <-chan display.Event) {
	defer close(h.done)
	for ev := range events {
		msg, err := json.Marshal(ev)
		if err != nil {
			h.logger.Warnw("encode event", "error", err)
			continue
		}

		// broadcast is the only writer, so writes need no lock. A client that
		// cannot take the event within writeWait is dropped; closing the
		// connection ends its read loop in ServeHTTP.
		for _, conn := range h.snapshot() {
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				h.logger.Debugw("websocket write failed", "remote", conn.RemoteAddr(), "error", err)
				conn.Close()
			}
		}
	}
}
