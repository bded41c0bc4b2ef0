package loader

import (
	"sync"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// MockLoader serves pre-built Mats keyed by path for testing.
type MockLoader struct {
	images map[string]*gocv.Mat
	labels map[string]*gocv.Mat
	calls  []string
	mu     sync.Mutex
}

// NewMockLoader creates an empty MockLoader. Paths without a registered Mat
// fail to load with ErrEmptyImage.
func NewMockLoader() *MockLoader {
	return &MockLoader{
		images: make(map[string]*gocv.Mat),
		labels: make(map[string]*gocv.Mat),
	}
}

// SetImage registers the image returned for path.
func (l *MockLoader) SetImage(path string, mat *gocv.Mat) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.images[path] = mat
}

// SetLabel registers the label mask returned for path.
func (l *MockLoader) SetLabel(path string, mat *gocv.Mat) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.labels[path] = mat
}

// LoadImage returns a clone of the registered image.
func (l *MockLoader) LoadImage(path string) (*gocv.Mat, error) {
	return l.load(l.images, path)
}

// LoadLabel returns a clone of the registered label.
func (l *MockLoader) LoadLabel(path string) (*gocv.Mat, error) {
	return l.load(l.labels, path)
}

// Calls returns the paths requested so far, in order.
func (l *MockLoader) Calls() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

func (l *MockLoader) load(from map[string]*gocv.Mat, path string) (*gocv.Mat, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.calls = append(l.calls, path)

	src, ok := from[path]
	if !ok || src == nil || src.Empty() {
		return nil, errors.Wrapf(ErrEmptyImage, "load %s", path)
	}

	// Clone so the registered Mat survives the caller closing its copy.
	mat := src.Clone()
	return &mat, nil
}
