// Package testdata writes small synthetic AI4MARS-style datasets for tests.
package testdata

import (
	"image"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"github.com/ayusman/terrainscope/internal/dataset"
	"github.com/ayusman/terrainscope/internal/terrain"
)

// Block is a rectangle of one terrain class.
type Block struct {
	Class terrain.ClassID
	Rect  image.Rectangle
}

// Frame describes one image/label pair. The label is Soil except for Blocks.
type Frame struct {
	Stem          string
	Width, Height int
	Blocks        []Block
	// Corrupt writes bytes that no decoder accepts in place of the image.
	Corrupt bool
}

// RockFrame returns a frame with one big rock large enough to count as an
// obstacle and one sand patch too small to.
func RockFrame(stem string) Frame {
	return Frame{
		Stem:   stem,
		Width:  64,
		Height: 48,
		Blocks: []Block{
			{Class: terrain.Bedrock, Rect: image.Rect(0, 0, 64, 8)},
			{Class: terrain.BigRock, Rect: image.Rect(10, 12, 40, 40)},
			{Class: terrain.Sand, Rect: image.Rect(50, 30, 55, 35)},
			{Class: terrain.Unlabeled, Rect: image.Rect(0, 44, 64, 48)},
		},
	}
}

// WriteDataset writes frames under root in the MSL layout and returns its config.
func WriteDataset(root string, frames ...Frame) (dataset.Config, error) {
	cfg := dataset.Layout(root)
	for _, dir := range []string{cfg.ImagesDir, cfg.LabelsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return cfg, errors.Wrapf(err, "create %s", dir)
		}
	}

	for _, f := range frames {
		if err := writeFrame(cfg, f); err != nil {
			return cfg, errors.Wrapf(err, "write frame %s", f.Stem)
		}
	}
	return cfg, nil
}

func writeFrame(cfg dataset.Config, f Frame) error {
	label := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(float64(terrain.Soil), 0, 0, 0), f.Height, f.Width, gocv.MatTypeCV8UC1)
	defer label.Close()

	for _, b := range f.Blocks {
		r := b.Rect.Intersect(image.Rect(0, 0, f.Width, f.Height))
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				label.SetUCharAt(y, x, uint8(b.Class))
			}
		}
	}

	labelPath := filepath.Join(cfg.LabelsDir, f.Stem+".png")
	if !gocv.IMWrite(labelPath, label) {
		return errors.Errorf("encode %s", labelPath)
	}

	imgPath := filepath.Join(cfg.ImagesDir, f.Stem+".png")
	if f.Corrupt {
		return os.WriteFile(imgPath, []byte("not an image"), 0o644)
	}

	img := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(70, 90, 110, 0), f.Height, f.Width, gocv.MatTypeCV8UC3)
	defer img.Close()
	if !gocv.IMWrite(imgPath, img) {
		return errors.Errorf("encode %s", imgPath)
	}
	return nil
}
