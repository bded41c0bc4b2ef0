// Package render composes analysis rasters into titled figures.
package render

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/ayusman/terrainscope/internal/terrain"
)

// Figure layout constants, in pixels.
const (
	DefaultPanelHeight = 360
	Margin             = 12
	TitleHeight        = 32
	TitleSize          = 16
)

// Panel titles.
const (
	TitleOriginal  = "Original Image"
	TitleMask      = "Segmentation Mask"
	TitleBlended   = "Blended Overlay"
	TitleObstacles = "Filtered Obstacles"
)

var font *truetype.Font

func init() {
	var err error
	font, err = truetype.Parse(goregular.TTF)
	if err != nil {
		panic(err)
	}
}

// Panel is one titled raster of a figure.
type Panel struct {
	Title string
	Image image.Image
}

// Figure is a rendered, displayable image.
type Figure struct {
	// Name identifies the figure, e.g. "frame_terrain".
	Name  string
	Title string
	Image image.Image
}

// Compose lays panels out left to right, each scaled to panelHeight and
// titled above. A non-positive panelHeight uses DefaultPanelHeight.
func Compose(panelHeight int, panels ...Panel) (image.Image, error) {
	if len(panels) == 0 {
		return nil, errors.New("no panels to compose")
	}
	if panelHeight <= 0 {
		panelHeight = DefaultPanelHeight
	}

	scaled := make([]image.Image, len(panels))
	width := Margin
	for i, p := range panels {
		if p.Image == nil || p.Image.Bounds().Empty() {
			return nil, errors.Errorf("panel %q has no image", p.Title)
		}
		scaled[i] = imaging.Resize(p.Image, 0, panelHeight, imaging.NearestNeighbor)
		width += scaled[i].Bounds().Dx() + Margin
	}
	height := Margin + TitleHeight + panelHeight + Margin

	dc := gg.NewContext(width, height)
	dc.SetColor(color.White)
	dc.Clear()
	dc.SetFontFace(truetype.NewFace(font, &truetype.Options{Size: TitleSize}))

	x := Margin
	for i, p := range panels {
		w := scaled[i].Bounds().Dx()
		dc.SetColor(color.Black)
		dc.DrawStringAnchored(p.Title, float64(x)+float64(w)/2, float64(Margin)+TitleHeight/2, 0.5, 0.5)
		dc.DrawImage(scaled[i], x, Margin+TitleHeight)
		x += w + Margin
	}

	return dc.Image(), nil
}

// MatImage converts a BGR or grayscale Mat into an image.Image.
func MatImage(m gocv.Mat) (image.Image, error) {
	if m.Empty() {
		return nil, errors.New("empty mat")
	}
	img, err := m.ToImage()
	if err != nil {
		return nil, errors.Wrap(err, "convert mat")
	}
	return img, nil
}

// LabelImage renders a single-channel label mask with the tab10 colormap,
// normalised between the smallest and largest label present.
func LabelImage(label gocv.Mat) (image.Image, error) {
	if label.Empty() || label.Channels() != 1 {
		return nil, errors.New("label must be a non-empty single-channel mat")
	}
	data, err := label.DataPtrUint8()
	if err != nil {
		return nil, errors.Wrap(err, "read label")
	}

	lo, hi := uint8(255), uint8(0)
	for _, v := range data {
		lo = min(lo, v)
		hi = max(hi, v)
	}

	rows, cols := label.Rows(), label.Cols()
	out := image.NewRGBA(image.Rect(0, 0, cols, rows))
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			out.SetRGBA(c, r, terrain.Tab10(data[r*cols+c], lo, hi))
		}
	}
	return out, nil
}

// Terrain renders the three-panel terrain figure: original image, label mask
// and blended overlay.
func Terrain(name string, img, label, blended gocv.Mat, panelHeight int) (*Figure, error) {
	orig, err := MatImage(img)
	if err != nil {
		return nil, errors.Wrap(err, "original panel")
	}
	mask, err := LabelImage(label)
	if err != nil {
		return nil, errors.Wrap(err, "mask panel")
	}
	blend, err := MatImage(blended)
	if err != nil {
		return nil, errors.Wrap(err, "blended panel")
	}

	composed, err := Compose(panelHeight,
		Panel{Title: TitleOriginal, Image: orig},
		Panel{Title: TitleMask, Image: mask},
		Panel{Title: TitleBlended, Image: blend},
	)
	if err != nil {
		return nil, err
	}

	return &Figure{Name: name + "_terrain", Title: name, Image: composed}, nil
}

// Obstacles renders the single-panel obstacle figure.
func Obstacles(name string, drawn gocv.Mat, panelHeight int) (*Figure, error) {
	img, err := MatImage(drawn)
	if err != nil {
		return nil, errors.Wrap(err, "obstacle panel")
	}

	composed, err := Compose(panelHeight, Panel{Title: TitleObstacles, Image: img})
	if err != nil {
		return nil, err
	}

	return &Figure{Name: name + "_obstacles", Title: name, Image: composed}, nil
}
