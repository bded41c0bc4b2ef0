package analysis

import (
	"gocv.io/x/gocv"

	"github.com/ayusman/terrainscope/internal/terrain"
)

// Coverage is the share of a label mask occupied by one class.
type Coverage struct {
	Class    terrain.ClassID `json:"class"`
	Name     string          `json:"name"`
	Pixels   int             `json:"pixels"`
	Fraction float64         `json:"fraction"`
}

// ClassCoverage counts the pixels of each known class in label. Classes with
// no pixels are omitted; pixels of unknown value are not counted.
func ClassCoverage(label gocv.Mat) []Coverage {
	total := label.Rows() * label.Cols()
	if total == 0 {
		return nil
	}

	mask := gocv.NewMat()
	defer mask.Close()

	var out []Coverage
	for _, c := range terrain.Classes() {
		classMask(label, c.ID, &mask)
		n := gocv.CountNonZero(mask)
		if n == 0 {
			continue
		}
		out = append(out, Coverage{
			Class:    c.ID,
			Name:     c.Name,
			Pixels:   n,
			Fraction: float64(n) / float64(total),
		})
	}
	return out
}
