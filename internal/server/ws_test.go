package server

import (
	"bufio"
	"context"
	"encoding/json"
	"image"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/terrainscope/internal/display"
	"github.com/ayusman/terrainscope/internal/logging/logtest"
	"github.com/ayusman/terrainscope/internal/render"
)

func publish(t *testing.T, g *display.Gallery, name string) {
	t.Helper()
	fig := &render.Figure{Name: name, Title: name, Image: image.NewRGBA(image.Rect(0, 0, 2, 2))}
	require.NoError(t, g.Show(context.Background(), fig))
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	return conn
}

func waitClients(t *testing.T, h *EventsHandler, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return h.Clients() == n },
		2*time.Second, 5*time.Millisecond, "expected %d clients", n)
}

func readEvent(t *testing.T, conn *websocket.Conn) display.Event {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	var ev display.Event
	require.NoError(t, json.Unmarshal(msg, &ev))
	return ev
}

func TestEventsHandler_Broadcast(t *testing.T) {
	g := display.NewGallery(0)
	defer g.Close()
	h := NewEventsHandler(g, logtest.NewLogger(t))
	defer h.Close()
	ts := httptest.NewServer(h)
	defer ts.Close()

	conn := dial(t, ts)
	defer conn.Close()
	waitClients(t, h, 1)

	publish(t, g, "a_terrain")

	ev := readEvent(t, conn)
	assert.Equal(t, "figure", ev.Type)
	assert.Equal(t, "a_terrain", ev.Figure.Name)
}

func TestEventsHandler_StalledClientIsDropped(t *testing.T) {
	saved := writeWait
	writeWait = time.Second
	t.Cleanup(func() { writeWait = saved })

	g := display.NewGallery(0)
	defer g.Close()
	h := NewEventsHandler(g, logtest.NewLogger(t))
	defer h.Close()
	ts := httptest.NewServer(h)
	defer ts.Close()

	stalled := dial(t, ts)
	defer stalled.Close()
	live := dial(t, ts)
	defer live.Close()
	waitClients(t, h, 2)

	// Events this large fill the socket buffers of a client that never reads.
	big := strings.Repeat("x", 4<<20)
	const events = 8
	for i := 0; i < events; i++ {
		publish(t, g, big)
	}

	for i := 0; i < events; i++ {
		ev := readEvent(t, live)
		assert.Len(t, ev.Figure.Name, len(big))
	}
	waitClients(t, h, 1)
}

func TestEventsHandler_CloseUnsubscribesAndDisconnects(t *testing.T) {
	g := display.NewGallery(0)
	defer g.Close()
	h := NewEventsHandler(g, logtest.NewLogger(t))
	ts := httptest.NewServer(h)
	defer ts.Close()

	conn := dial(t, ts)
	defer conn.Close()
	waitClients(t, h, 1)
	require.Equal(t, 1, g.Subscribers())

	require.NoError(t, h.Close())
	require.NoError(t, h.Close())
	assert.Equal(t, 0, g.Subscribers())
	waitClients(t, h, 0)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
}

func TestEventsHandler_RejectsPlainHTTP(t *testing.T) {
	g := display.NewGallery(0)
	defer g.Close()
	h := NewEventsHandler(g, logtest.NewLogger(t))
	defer h.Close()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/events", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStreamHandler_SendsLatestFigure(t *testing.T) {
	g := display.NewGallery(0)
	publish(t, g, "a_terrain")

	ts := httptest.NewServer(NewStreamHandler(g))
	defer ts.Close()

	resp, err := http.Get(ts.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "multipart/x-mixed-replace"))

	r := bufio.NewReader(resp.Body)
	line, err := r.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "--frame\r\n", line)
	line, _ = r.ReadString('\n')
	assert.Equal(t, "Content-Type: image/png\r\n", line)

	// Closing the gallery ends the stream
	g.Close()
}
