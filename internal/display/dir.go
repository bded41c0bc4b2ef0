package display

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"

	"github.com/ayusman/terrainscope/internal/render"
)

// Dir writes each figure to <dir>/<name>.png.
type Dir struct {
	dir string

	mu      sync.Mutex
	written []string
}

// NewDir creates dir if needed and returns a display writing into it.
func NewDir(dir string) (*Dir, error) {
	if dir == "" {
		return nil, errors.New("output directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create %s", dir)
	}
	return &Dir{dir: dir}, nil
}

// Show saves the figure as PNG.
func (d *Dir) Show(ctx context.Context, fig *render.Figure) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if fig == nil || fig.Image == nil {
		return errors.New("nil figure")
	}

	path := filepath.Join(d.dir, fig.Name+".png")
	if err := imaging.Save(fig.Image, path); err != nil {
		return errors.Wrapf(err, "save %s", path)
	}

	d.mu.Lock()
	d.written = append(d.written, path)
	d.mu.Unlock()
	return nil
}

// Written returns the paths saved so far.
func (d *Dir) Written() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.written...)
}

// Close implements Display.
func (d *Dir) Close() error { return nil }
