package terrain

import (
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

// tab10Hex is matplotlib's "tab10" qualitative colormap.
var tab10Hex = [10]string{
	"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
	"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf",
}

var tab10 [10]color.RGBA

func init() {
	for i, h := range tab10Hex {
		c, err := colorful.Hex(h)
		if err != nil {
			panic(err)
		}
		r, g, b := c.RGB255()
		tab10[i] = color.RGBA{R: r, G: g, B: b, A: 255}
	}
}

// Tab10 maps v to a tab10 colour after normalising it linearly into [lo, hi],
// the way a listed colormap is sampled for an image plot.
func Tab10(v, lo, hi uint8) color.RGBA {
	switch {
	case hi <= lo, v <= lo:
		return tab10[0]
	case v >= hi:
		return tab10[len(tab10)-1]
	}
	norm := float64(v-lo) / float64(hi-lo)
	idx := int(norm * float64(len(tab10)))
	if idx >= len(tab10) {
		idx = len(tab10) - 1
	}
	return tab10[idx]
}
