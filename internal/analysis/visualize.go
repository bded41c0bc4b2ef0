// Package analysis implements terrain visualization and obstacle extraction
// on GoCV Mats.
package analysis

import (
	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"github.com/ayusman/terrainscope/internal/terrain"
)

// Blend weights for the segmentation overlay.
const (
	ImageWeight   = 0.7
	OverlayWeight = 0.3
)

// ErrDimensionMismatch is returned when an image and its label differ in size.
var ErrDimensionMismatch = errors.New("image and label dimensions differ")

// CheckPair verifies that img is a 3-channel image and label a single-channel
// mask of the same size.
func CheckPair(img, label gocv.Mat) error {
	if img.Rows() != label.Rows() || img.Cols() != label.Cols() {
		return errors.Wrapf(ErrDimensionMismatch, "image %dx%d, label %dx%d",
			img.Cols(), img.Rows(), label.Cols(), label.Rows())
	}
	if img.Channels() != 3 {
		return errors.Errorf("image has %d channels, want 3", img.Channels())
	}
	if label.Channels() != 1 {
		return errors.Errorf("label has %d channels, want 1", label.Channels())
	}
	return nil
}

// classMask writes 255 into dst wherever label equals id, 0 elsewhere.
func classMask(label gocv.Mat, id terrain.ClassID, dst *gocv.Mat) {
	v := float64(id)
	gocv.InRangeWithScalar(label, gocv.NewScalar(v, 0, 0, 0), gocv.NewScalar(v, 0, 0, 0), dst)
}

// Colorize maps every label pixel through the class colour table. Pixels
// whose value is not a known class are left black.
// The caller is responsible for closing the returned Mat.
func Colorize(label gocv.Mat) gocv.Mat {
	rows, cols := label.Rows(), label.Cols()
	overlay := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), rows, cols, gocv.MatTypeCV8UC3)

	mask := gocv.NewMat()
	defer mask.Close()

	for _, c := range terrain.Classes() {
		classMask(label, c.ID, &mask)
		if gocv.CountNonZero(mask) == 0 {
			continue
		}

		// Scalars are BGR.
		fill := gocv.NewMatWithSizeFromScalar(
			gocv.NewScalar(float64(c.Color.B), float64(c.Color.G), float64(c.Color.R), 0),
			rows, cols, gocv.MatTypeCV8UC3,
		)
		fill.CopyToWithMask(&overlay, mask)
		fill.Close()
	}

	return overlay
}

// Blend mixes img and overlay with the fixed ImageWeight/OverlayWeight split.
// The caller is responsible for closing the returned Mat.
func Blend(img, overlay gocv.Mat) gocv.Mat {
	blended := gocv.NewMat()
	gocv.AddWeighted(img, ImageWeight, overlay, OverlayWeight, 0, &blended)
	return blended
}

// Visualization holds the rasters of the terrain figure.
type Visualization struct {
	Overlay gocv.Mat
	Blended gocv.Mat
}

// Close releases the Mats held by the visualization.
func (v *Visualization) Close() {
	v.Overlay.Close()
	v.Blended.Close()
}

// Visualize builds the colour overlay for label and blends it onto img.
func Visualize(img, label gocv.Mat) (*Visualization, error) {
	if err := CheckPair(img, label); err != nil {
		return nil, err
	}

	overlay := Colorize(label)
	return &Visualization{
		Overlay: overlay,
		Blended: Blend(img, overlay),
	}, nil
}
