// Package loader decodes dataset images and label masks using GoCV (OpenCV).
package loader

import (
	"os"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// ErrEmptyImage is returned when a file exists but decodes to no data.
var ErrEmptyImage = errors.New("image decoded to no data")

// Loader defines the interface for reading the two rasters of a pair.
// The caller is responsible for closing the returned Mats.
type Loader interface {
	// LoadImage decodes a colour image as 8-bit BGR.
	LoadImage(path string) (*gocv.Mat, error)
	// LoadLabel decodes a label mask as a single 8-bit channel of class IDs.
	LoadLabel(path string) (*gocv.Mat, error)
}

// fileLoader reads rasters from the local filesystem.
type fileLoader struct{}

// New returns a Loader that reads files from disk.
func New() Loader {
	return fileLoader{}
}

// LoadImage reads a colour image from path.
func (fileLoader) LoadImage(path string) (*gocv.Mat, error) {
	return read(path, gocv.IMReadColor)
}

// LoadLabel reads a label mask from path.
func (fileLoader) LoadLabel(path string) (*gocv.Mat, error) {
	return read(path, gocv.IMReadGrayScale)
}

func read(path string, flags gocv.IMReadFlag) (*gocv.Mat, error) {
	// IMRead reports missing and undecodable files the same way, so stat first
	// to keep the error specific.
	if _, err := os.Stat(path); err != nil {
		return nil, errors.Wrapf(err, "load %s", path)
	}

	mat := gocv.IMRead(path, flags)
	if mat.Empty() {
		mat.Close()
		return nil, errors.Wrapf(ErrEmptyImage, "load %s", path)
	}

	return &mat, nil
}

// Decode decodes an in-memory encoded image, for callers that already hold
// the file bytes.
func Decode(data []byte, flags gocv.IMReadFlag) (*gocv.Mat, error) {
	mat, err := gocv.IMDecode(data, flags)
	if err != nil {
		return nil, errors.Wrap(err, "decode")
	}
	if mat.Empty() {
		mat.Close()
		return nil, ErrEmptyImage
	}
	return &mat, nil
}
