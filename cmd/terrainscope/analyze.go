package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/ayusman/terrainscope/internal/app"
	"github.com/ayusman/terrainscope/internal/dataset"
	"github.com/ayusman/terrainscope/internal/display"
	"github.com/ayusman/terrainscope/internal/server"
	"github.com/ayusman/terrainscope/internal/store"
	"github.com/ayusman/terrainscope/internal/terrain"
)

// analyzeConfig builds the run configuration from the analyze flags.
func analyzeConfig(c *cli.Context) (app.Config, error) {
	cfg := app.DefaultConfig()

	if root := c.String(flagDataset); root != "" {
		cfg.Dataset = dataset.Layout(root)
	}
	if dir := c.String(flagImages); dir != "" {
		cfg.Dataset.ImagesDir = dir
	}
	if dir := c.String(flagLabels); dir != "" {
		cfg.Dataset.LabelsDir = dir
	}
	if cfg.Dataset.ImagesDir == "" || cfg.Dataset.LabelsDir == "" {
		return cfg, errors.Errorf("--%s or both --%s and --%s are required", flagDataset, flagImages, flagLabels)
	}
	cfg.Dataset.MatchByName = c.Bool(flagMatchByName)

	classes, err := terrain.ParseClassList(c.String(flagObstacleClasses))
	if err != nil {
		return cfg, errors.Wrapf(err, "--%s", flagObstacleClasses)
	}
	cfg.Analysis.ObstacleClasses = classes
	cfg.Analysis.MinArea = c.Float64(flagMinArea)
	cfg.Limit = c.Int(flagLimit)
	cfg.PanelHeight = c.Int(flagPanelHeight)

	return cfg, cfg.Validate()
}

func analyzeAction(c *cli.Context, logger *zap.SugaredLogger) (err error) {
	cfg, err := analyzeConfig(c)
	if err != nil {
		return err
	}
	cfg.Logger = logger

	kind, err := display.ParseKind(c.String(flagDisplay))
	if err != nil {
		return err
	}

	listen := c.String(flagListen)
	var gallery *display.Gallery
	if kind == display.KindWeb {
		gallery = display.NewGallery(0)
		if listen == "" {
			listen = defaultListen
		}
	}

	if path := c.String(flagDB); path != "" {
		st, openErr := store.New(path)
		if openErr != nil {
			return errors.Wrapf(openErr, "open %s", path)
		}
		defer func() {
			err = multierr.Append(err, st.Close())
		}()
		cfg.Store = st
	}

	disp, err := display.New(display.Config{Kind: kind, OutDir: c.String(flagOut), Gallery: gallery})
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, disp.Close())
	}()
	cfg.Display = disp

	var v *viewer
	if listen != "" {
		v = startViewer(c.Context, listen, server.Config{
			StaticDir: c.String(flagStatic),
			Store:     cfg.Store,
			Gallery:   gallery,
			Logger:    logger.Named("viewer"),
		})
		defer func() {
			// Ending the subscriptions first lets open streams finish before shutdown.
			if gallery != nil {
				err = multierr.Append(err, gallery.Close())
			}
			err = multierr.Append(err, v.Stop())
		}()
	}

	application, err := app.New(cfg)
	if err != nil {
		return err
	}

	report, err := application.Run(c.Context)
	if report != nil {
		fmt.Fprintln(c.App.Writer, reportTable(report))
	}
	if errors.Is(err, context.Canceled) {
		logger.Warn("interrupted")
		return nil
	}
	if err != nil {
		return err
	}

	if v != nil && gallery != nil {
		logger.Infow("serving figures until interrupted", "addr", listen)
		return v.Wait(c.Context)
	}
	return nil
}

func serveAction(c *cli.Context, logger *zap.SugaredLogger) (err error) {
	st, err := store.New(c.String(flagDB))
	if err != nil {
		return errors.Wrapf(err, "open %s", c.String(flagDB))
	}
	defer func() {
		err = multierr.Append(err, st.Close())
	}()

	srv := server.New(server.Config{
		StaticDir: c.String(flagStatic),
		Store:     st,
		Logger:    logger.Named("viewer"),
	})
	return srv.ListenAndServe(c.Context, c.String(flagListen))
}

func runsAction(c *cli.Context) (err error) {
	st, err := store.New(c.String(flagDB))
	if err != nil {
		return errors.Wrapf(err, "open %s", c.String(flagDB))
	}
	defer func() {
		err = multierr.Append(err, st.Close())
	}()

	runs, err := st.Runs().List()
	if err != nil {
		return errors.Wrap(err, "list runs")
	}
	fmt.Fprintln(c.App.Writer, runTable(runs))
	return nil
}

// viewer runs the HTTP server beside the analysis loop.
type viewer struct {
	cancel  context.CancelFunc
	done    chan error
	err     error
	stopped bool
}

func startViewer(ctx context.Context, addr string, cfg server.Config) *viewer {
	ctx, cancel := context.WithCancel(ctx)
	v := &viewer{cancel: cancel, done: make(chan error, 1)}
	srv := server.New(cfg)
	go func() {
		v.done <- srv.ListenAndServe(ctx, addr)
	}()
	return v
}

// Wait blocks until ctx is done or the server fails.
func (v *viewer) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return nil
	case v.err = <-v.done:
		v.stopped = true
		return v.err
	}
}

// Stop shuts the server down and returns its error.
func (v *viewer) Stop() error {
	if !v.stopped {
		v.cancel()
		v.err = <-v.done
		v.stopped = true
	}
	return v.err
}
