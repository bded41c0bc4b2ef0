package display

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/ayusman/terrainscope/internal/render"
)

// DefaultGallerySize is the number of figures a gallery keeps.
const DefaultGallerySize = 64

const subscriberBuffer = 16

// Entry describes a published figure.
type Entry struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Title     string    `json:"title"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	CreatedAt time.Time `json:"created_at"`
}

// Event is sent to subscribers when a figure is published.
type Event struct {
	Type   string `json:"type"`
	Figure Entry  `json:"figure"`
}

type stored struct {
	entry Entry
	png   []byte
}

// Gallery keeps the most recent figures in memory as PNG and notifies
// subscribers of new ones. It is safe for concurrent use.
type Gallery struct {
	mu      sync.RWMutex
	size    int
	figures []stored
	subs    map[chan Event]struct{}
	closed  bool
}

// NewGallery creates a gallery holding up to size figures.
// A non-positive size uses DefaultGallerySize.
func NewGallery(size int) *Gallery {
	if size <= 0 {
		size = DefaultGallerySize
	}
	return &Gallery{
		size: size,
		subs: make(map[chan Event]struct{}),
	}
}

// Show encodes and publishes the figure.
func (g *Gallery) Show(ctx context.Context, fig *render.Figure) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if fig == nil || fig.Image == nil {
		return errors.New("nil figure")
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, fig.Image, imaging.PNG); err != nil {
		return errors.Wrapf(err, "encode %s", fig.Name)
	}

	b := fig.Image.Bounds()
	entry := Entry{
		ID:        uuid.NewString(),
		Name:      fig.Name,
		Title:     fig.Title,
		Width:     b.Dx(),
		Height:    b.Dy(),
		CreatedAt: time.Now(),
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return errors.New("gallery is closed")
	}

	g.figures = append(g.figures, stored{entry: entry, png: buf.Bytes()})
	if len(g.figures) > g.size {
		g.figures = g.figures[len(g.figures)-g.size:]
	}

	ev := Event{Type: "figure", Figure: entry}
	for ch := range g.subs {
		// Slow subscribers miss events rather than stall the run.
		select {
		case ch <- ev:
		default:
		}
	}
	return nil
}

// List returns the stored figures, oldest first.
func (g *Gallery) List() []Entry {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]Entry, len(g.figures))
	for i, f := range g.figures {
		out[i] = f.entry
	}
	return out
}

// Get returns the entry and PNG bytes of a figure.
func (g *Gallery) Get(id string) (Entry, []byte, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	for _, f := range g.figures {
		if f.entry.ID == id {
			return f.entry, f.png, true
		}
	}
	return Entry{}, nil, false
}

// Subscribe returns a channel of publish events and a function that
// unsubscribes it. The channel is closed on unsubscribe or Close.
func (g *Gallery) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	g.subs[ch] = struct{}{}
	g.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			g.mu.Lock()
			defer g.mu.Unlock()
			if _, ok := g.subs[ch]; ok {
				delete(g.subs, ch)
				close(ch)
			}
		})
	}
}

// Subscribers returns the number of open subscriptions.
func (g *Gallery) Subscribers() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.subs)
}

// Close ends all subscriptions. Stored figures remain readable.
func (g *Gallery) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed {
		return nil
	}
	g.closed = true
	for ch := range g.subs {
		delete(g.subs, ch)
		close(ch)
	}
	return nil
}
