// Package display shows rendered figures on a screen, on disk or over HTTP.
package display

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/ayusman/terrainscope/internal/render"
)

// Kind names a display backend.
type Kind string

// Display backends.
const (
	KindWindow Kind = "window"
	KindDir    Kind = "dir"
	KindWeb    Kind = "web"
	KindNone   Kind = "none"
)

// Kinds lists the supported backends.
var Kinds = []Kind{KindWindow, KindDir, KindWeb, KindNone}

// Display presents figures. Show may block until the viewer dismisses the figure.
type Display interface {
	Show(ctx context.Context, fig *render.Figure) error
	Close() error
}

// ParseKind converts a backend name into a Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", errors.Errorf("unknown display %q", s)
}

// Config selects and configures a backend.
type Config struct {
	Kind Kind
	// OutDir is where the dir backend writes figures.
	OutDir string
	// Gallery receives figures for the web backend. A new one is created when nil.
	Gallery *Gallery
}

// New creates the backend named by config.Kind.
func New(config Config) (Display, error) {
	switch config.Kind {
	case KindWindow:
		return NewWindow("terrainscope"), nil
	case KindDir:
		return NewDir(config.OutDir)
	case KindWeb:
		if config.Gallery == nil {
			return NewGallery(0), nil
		}
		return config.Gallery, nil
	case KindNone, "":
		return Discard{}, nil
	default:
		return nil, errors.Errorf("unknown display %q", config.Kind)
	}
}

// Discard drops every figure.
type Discard struct{}

// Show implements Display.
func (Discard) Show(ctx context.Context, _ *render.Figure) error {
	return ctx.Err()
}

// Close implements Display.
func (Discard) Close() error { return nil }
