package analysis

import (
	"image/color"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"github.com/ayusman/terrainscope/internal/terrain"
)

// Config holds the obstacle analysis settings.
type Config struct {
	// ObstacleClasses are the label values treated as hazards.
	ObstacleClasses []terrain.ClassID
	// MinArea is the contour area an obstacle must exceed.
	MinArea float64
	// Highlight is the colour used to draw kept contours.
	Highlight color.RGBA
	// Thickness is the contour stroke width in pixels.
	Thickness int
}

// DefaultConfig returns the settings used by the AI4MARS obstacle study:
// sand and big rock as obstacles, area above 200 pixels, red 2px outlines.
func DefaultConfig() Config {
	return Config{
		ObstacleClasses: append([]terrain.ClassID(nil), terrain.DefaultObstacles...),
		MinArea:         DefaultMinArea,
		Highlight:       DefaultHighlight,
		Thickness:       DefaultThickness,
	}
}

// Validate checks the configuration for values the analyzer cannot use.
func (c Config) Validate() error {
	if len(c.ObstacleClasses) == 0 {
		return errors.New("at least one obstacle class is required")
	}
	if c.MinArea < 0 {
		return errors.Errorf("min area must not be negative, got %v", c.MinArea)
	}
	if c.Thickness <= 0 {
		return errors.Errorf("thickness must be positive, got %d", c.Thickness)
	}
	return nil
}

// Result holds everything derived from one image/label pair.
// The caller is responsible for calling Close.
type Result struct {
	*Visualization
	// Drawn is the image with obstacle contours drawn on it.
	Drawn     gocv.Mat
	Obstacles ObstacleSet
	Coverage  []Coverage
}

// Close releases the Mats held by the result.
func (r *Result) Close() {
	r.Visualization.Close()
	r.Drawn.Close()
}

// Analyzer runs terrain visualization and obstacle analysis on pairs.
type Analyzer struct {
	config Config
}

// New creates an Analyzer, filling zero fields of config with defaults.
func New(config Config) (*Analyzer, error) {
	def := DefaultConfig()
	if config.ObstacleClasses == nil {
		config.ObstacleClasses = def.ObstacleClasses
	}
	if config.Thickness == 0 {
		config.Thickness = def.Thickness
	}
	if config.Highlight == (color.RGBA{}) {
		config.Highlight = def.Highlight
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Analyzer{config: config}, nil
}

// Config returns the analyzer settings.
func (a *Analyzer) Config() Config {
	return a.config
}

// Analyze visualizes the pair and extracts the obstacles of the configured classes.
func (a *Analyzer) Analyze(img, label gocv.Mat) (*Result, error) {
	vis, err := Visualize(img, label)
	if err != nil {
		return nil, err
	}

	mask := ObstacleMask(label, a.config.ObstacleClasses)
	defer mask.Close()

	set := FindObstacles(mask, a.config.MinArea)

	return &Result{
		Visualization: vis,
		Drawn:         DrawObstacles(img, set.Obstacles, a.config.Highlight, a.config.Thickness),
		Obstacles:     set,
		Coverage:      ClassCoverage(label),
	}, nil
}
