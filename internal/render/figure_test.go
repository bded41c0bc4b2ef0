package render

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"github.com/ayusman/terrainscope/internal/terrain"
)

func solid(w, h int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: c}, image.Point{}, draw.Src)
	return img
}

func rgba(c color.Color) color.RGBA {
	r, g, b, a := c.RGBA()
	return color.RGBA{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8), uint8(a >> 8)}
}

func TestCompose_Layout(t *testing.T) {
	red := color.RGBA{255, 0, 0, 255}
	blue := color.RGBA{0, 0, 255, 255}

	img, err := Compose(40,
		Panel{Title: "left", Image: solid(10, 20, red)},
		Panel{Title: "right", Image: solid(20, 20, blue)},
	)
	require.NoError(t, err)

	// Panels scale to 20x40 and 40x40.
	wantW := Margin + 20 + Margin + 40 + Margin
	wantH := Margin + TitleHeight + 40 + Margin
	assert.Equal(t, image.Rect(0, 0, wantW, wantH), img.Bounds())

	assert.Equal(t, color.RGBA{255, 255, 255, 255}, rgba(img.At(0, 0)))
	assert.Equal(t, red, rgba(img.At(Margin+10, Margin+TitleHeight+20)))
	assert.Equal(t, blue, rgba(img.At(Margin+20+Margin+20, Margin+TitleHeight+20)))
}

func TestCompose_Errors(t *testing.T) {
	_, err := Compose(10)
	assert.Error(t, err)

	_, err = Compose(10, Panel{Title: "nil"})
	assert.Error(t, err)
}

func TestCompose_DefaultHeight(t *testing.T) {
	img, err := Compose(0, Panel{Title: "p", Image: solid(5, 5, color.Black)})
	require.NoError(t, err)
	assert.Equal(t, Margin+TitleHeight+DefaultPanelHeight+Margin, img.Bounds().Dy())
}

func TestLabelImage_Tab10(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	label := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), 4, 4, gocv.MatTypeCV8UC1)
	defer label.Close()
	label.SetUCharAt(3, 3, 3)

	img, err := LabelImage(label)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 4, 4), img.Bounds())
	assert.Equal(t, terrain.Tab10(0, 0, 3), rgba(img.At(0, 0)))
	assert.Equal(t, terrain.Tab10(3, 0, 3), rgba(img.At(3, 3)))
}

func TestLabelImage_RejectsColour(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	m := gocv.NewMatWithSize(2, 2, gocv.MatTypeCV8UC3)
	defer m.Close()
	_, err := LabelImage(m)
	assert.Error(t, err)
}

func TestTerrainAndObstacleFigures(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	img := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 255, 0), 30, 40, gocv.MatTypeCV8UC3)
	defer img.Close()
	label := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(2, 0, 0, 0), 30, 40, gocv.MatTypeCV8UC1)
	defer label.Close()

	fig, err := Terrain("frame", img, label, img, 60)
	require.NoError(t, err)
	assert.Equal(t, "frame_terrain", fig.Name)
	assert.Equal(t, Margin+3*(80+Margin), fig.Image.Bounds().Dx())

	// BGR (0,0,255) is red once converted.
	assert.Equal(t, color.RGBA{255, 0, 0, 255}, rgba(fig.Image.At(Margin+40, Margin+TitleHeight+30)))

	obs, err := Obstacles("frame", img, 60)
	require.NoError(t, err)
	assert.Equal(t, "frame_obstacles", obs.Name)
	assert.Equal(t, Margin+80+Margin, obs.Image.Bounds().Dx())
}
