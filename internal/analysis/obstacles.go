package analysis

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/ayusman/terrainscope/internal/terrain"
)

// Obstacle extraction constants.
const (
	// DefaultMinArea is the contour area a region must exceed to count as an obstacle.
	DefaultMinArea = 200.0
	// DefaultThickness is the stroke width used when drawing obstacle contours.
	DefaultThickness = 2
)

// DefaultHighlight is the contour colour for obstacles.
var DefaultHighlight = color.RGBA{R: 255, G: 0, B: 0, A: 0}

// Obstacle is a connected obstacle region that passed the area filter.
type Obstacle struct {
	Area   float64         `json:"area"`
	Bounds image.Rectangle `json:"bounds"`
	Points []image.Point   `json:"-"`
}

// ObstacleSet is the result of contour extraction on an obstacle mask.
type ObstacleSet struct {
	// Obstacles are the contours that were kept.
	Obstacles []Obstacle
	// Total is the number of external contours before filtering.
	Total int
}

// Keep reports whether a contour with the given area is retained.
// The comparison is strict: an area equal to minArea is dropped.
func Keep(area, minArea float64) bool {
	return area > minArea
}

// ObstacleMask returns a binary mask that is 255 wherever label holds one of
// classes. The caller is responsible for closing the returned Mat.
func ObstacleMask(label gocv.Mat, classes []terrain.ClassID) gocv.Mat {
	mask := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), label.Rows(), label.Cols(), gocv.MatTypeCV8UC1)

	hit := gocv.NewMat()
	defer hit.Close()

	for _, id := range classes {
		classMask(label, id, &hit)
		gocv.BitwiseOr(mask, hit, &mask)
	}

	return mask
}

// FindObstacles traces the external contours of mask and keeps those whose
// enclosed area is strictly greater than minArea.
func FindObstacles(mask gocv.Mat, minArea float64) ObstacleSet {
	contours := gocv.FindContours(mask, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	set := ObstacleSet{Total: contours.Size()}
	for i := 0; i < contours.Size(); i++ {
		contour := contours.At(i)
		area := gocv.ContourArea(contour)
		if !Keep(area, minArea) {
			continue
		}
		set.Obstacles = append(set.Obstacles, Obstacle{
			Area:   area,
			Bounds: gocv.BoundingRect(contour),
			Points: contour.ToPoints(),
		})
	}

	return set
}

// DrawObstacles draws the obstacle contours onto a copy of img.
// The caller is responsible for closing the returned Mat.
func DrawObstacles(img gocv.Mat, obstacles []Obstacle, c color.RGBA, thickness int) gocv.Mat {
	out := img.Clone()
	if len(obstacles) == 0 {
		return out
	}

	pts := make([][]image.Point, len(obstacles))
	for i, o := range obstacles {
		pts[i] = o.Points
	}

	contours := gocv.NewPointsVectorFromPoints(pts)
	defer contours.Close()

	gocv.DrawContours(&out, contours, -1, c, thickness)
	return out
}
