// Package app runs the terrain analysis over a dataset of image/label pairs.
package app

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/ayusman/terrainscope/internal/analysis"
	"github.com/ayusman/terrainscope/internal/dataset"
	"github.com/ayusman/terrainscope/internal/display"
	"github.com/ayusman/terrainscope/internal/loader"
	"github.com/ayusman/terrainscope/internal/logging"
	"github.com/ayusman/terrainscope/internal/render"
	"github.com/ayusman/terrainscope/internal/store"
	"github.com/ayusman/terrainscope/internal/terrain"
)

// DefaultLimit is the number of pairs visited by a run unless configured otherwise.
const DefaultLimit = 3

// Config holds configuration options for a run.
type Config struct {
	Dataset  dataset.Config
	Analysis analysis.Config
	// Limit caps the number of pairs visited, skipped pairs included.
	// Zero visits every pair.
	Limit       int
	PanelHeight int

	// Display receives the figures. Nil discards them.
	Display display.Display
	// Loader reads pairs from disk. Nil uses loader.New.
	Loader loader.Loader
	// Store records the run when set.
	Store  *store.Store
	Logger *zap.SugaredLogger
}

// DefaultConfig returns the settings of the AI4MARS obstacle study.
func DefaultConfig() Config {
	return Config{
		Analysis:    analysis.DefaultConfig(),
		Limit:       DefaultLimit,
		PanelHeight: render.DefaultPanelHeight,
	}
}

// Validate checks the configuration for values a run cannot use.
func (c Config) Validate() error {
	if c.Dataset.ImagesDir == "" || c.Dataset.LabelsDir == "" {
		return errors.New("images and labels directories are required")
	}
	if c.Limit < 0 {
		return errors.Errorf("limit must not be negative, got %d", c.Limit)
	}
	return c.Analysis.Validate()
}

// PairReport is the outcome of one visited pair.
type PairReport struct {
	Pair    dataset.Pair `json:"pair"`
	Skipped bool         `json:"skipped"`
	Reason  string       `json:"reason,omitempty"`
	// Contours is the number of obstacle contours before area filtering.
	Contours  int                 `json:"contours"`
	Obstacles []analysis.Obstacle `json:"obstacles"`
	Coverage  []analysis.Coverage `json:"coverage"`
}

// Report summarises a run.
type Report struct {
	// RunID is set when the run was recorded in a store.
	RunID string `json:"run_id,omitempty"`
	// Available is the number of pairs found in the dataset.
	Available int          `json:"available"`
	Processed int          `json:"processed"`
	Skipped   int          `json:"skipped"`
	Pairs     []PairReport `json:"pairs"`
}

// App runs the analysis loop.
type App struct {
	config   Config
	analyzer *analysis.Analyzer
	display  display.Display
	loader   loader.Loader
	logger   *zap.SugaredLogger
}

// New creates a new App instance with the given configuration.
func New(config Config) (*App, error) {
	if config.PanelHeight <= 0 {
		config.PanelHeight = render.DefaultPanelHeight
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	analyzer, err := analysis.New(config.Analysis)
	if err != nil {
		return nil, err
	}

	a := &App{
		config:   config,
		analyzer: analyzer,
		display:  config.Display,
		loader:   config.Loader,
		logger:   logging.OrNop(config.Logger),
	}
	if a.display == nil {
		a.display = display.Discard{}
	}
	if a.loader == nil {
		a.loader = loader.New()
	}
	return a, nil
}

// Run pairs the dataset and analyses pairs one at a time until the limit is
// reached, the pairs run out or ctx is done. A pair that fails to load is
// logged and skipped; any other failure ends the run with an error.
func (a *App) Run(ctx context.Context) (report *Report, err error) {
	pairs, err := dataset.Pairs(a.config.Dataset)
	if err != nil {
		return nil, err
	}

	report = &Report{Available: len(pairs)}
	a.logger.Infow("dataset paired",
		"images", a.config.Dataset.ImagesDir,
		"labels", a.config.Dataset.LabelsDir,
		"pairs", len(pairs),
		"limit", a.config.Limit,
	)

	run, err := a.beginRun()
	if err != nil {
		return nil, err
	}
	if run != nil {
		report.RunID = run.ID
		defer func() {
			err = multierr.Append(err, a.finishRun(run, report, err))
		}()
	}

	for i, pair := range pairs {
		if a.config.Limit > 0 && i >= a.config.Limit {
			break
		}
		if err := ctx.Err(); err != nil {
			return report, err
		}

		pr, err := a.processPair(ctx, pair)
		if err != nil {
			return report, err
		}

		report.Pairs = append(report.Pairs, pr)
		if pr.Skipped {
			report.Skipped++
		} else {
			report.Processed++
		}

		if err := a.recordPair(run, pr); err != nil {
			return report, err
		}
	}

	a.logger.Infow("run finished", "processed", report.Processed, "skipped", report.Skipped)
	return report, nil
}

func (a *App) beginRun() (*store.Run, error) {
	if a.config.Store == nil {
		return nil, nil
	}

	run := &store.Run{
		ImagesDir:       a.config.Dataset.ImagesDir,
		LabelsDir:       a.config.Dataset.LabelsDir,
		ObstacleClasses: terrain.FormatClassList(a.analyzer.Config().ObstacleClasses),
		MinArea:         a.analyzer.Config().MinArea,
		Limit:           a.config.Limit,
	}
	if err := a.config.Store.Runs().Create(run); err != nil {
		return nil, errors.Wrap(err, "record run")
	}
	a.logger.Debugw("recording run", "run", run.ID, "db", a.config.Store.Path())
	return run, nil
}

func (a *App) finishRun(run *store.Run, report *Report, runErr error) error {
	run.Processed = report.Processed
	run.Skipped = report.Skipped

	switch {
	case runErr == nil:
		run.Status = store.RunCompleted
	case errors.Is(runErr, context.Canceled), errors.Is(runErr, context.DeadlineExceeded):
		run.Status = store.RunCancelled
	default:
		run.Status = store.RunFailed
		run.Error = runErr.Error()
	}

	return errors.Wrap(a.config.Store.Runs().Finish(run), "finish run")
}

func (a *App) recordPair(run *store.Run, pr PairReport) error {
	if run == nil {
		return nil
	}

	p := &store.Pair{
		RunID:     run.ID,
		Index:     pr.Pair.Index,
		ImagePath: pr.Pair.ImagePath,
		LabelPath: pr.Pair.LabelPath,
		Skipped:   pr.Skipped,
		Reason:    pr.Reason,
		Contours:  pr.Contours,
	}
	for _, o := range pr.Obstacles {
		p.Obstacles = append(p.Obstacles, store.Obstacle{
			Area:   o.Area,
			X:      o.Bounds.Min.X,
			Y:      o.Bounds.Min.Y,
			Width:  o.Bounds.Dx(),
			Height: o.Bounds.Dy(),
		})
	}
	for _, c := range pr.Coverage {
		p.Coverage = append(p.Coverage, store.Coverage{
			ClassID:  int(c.Class),
			Name:     c.Name,
			Pixels:   c.Pixels,
			Fraction: c.Fraction,
		})
	}

	return errors.Wrapf(a.config.Store.Pairs().Create(p), "record pair %d", pr.Pair.Index)
}
