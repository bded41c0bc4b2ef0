package display

import (
	"context"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"github.com/ayusman/terrainscope/internal/render"
)

// Window shows figures in an OpenCV window and waits for a key press on each.
type Window struct {
	name   string
	window *gocv.Window
}

// NewWindow creates a window display. The window opens on the first Show.
func NewWindow(name string) *Window {
	return &Window{name: name}
}

// Show blocks until a key is pressed in the window.
func (w *Window) Show(ctx context.Context, fig *render.Figure) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if fig == nil || fig.Image == nil {
		return errors.New("nil figure")
	}

	mat, err := gocv.ImageToMatRGB(fig.Image)
	if err != nil {
		return errors.Wrapf(err, "convert figure %s", fig.Name)
	}
	defer mat.Close()

	if w.window == nil {
		w.window = gocv.NewWindow(w.name)
	}
	w.window.SetWindowTitle(w.name + " - " + fig.Name)
	w.window.IMShow(mat)
	w.window.WaitKey(0)
	return nil
}

// Close destroys the window if it was opened.
func (w *Window) Close() error {
	if w.window != nil {
		w.window.Close()
		w.window = nil
	}
	return nil
}
