// Command terrainscope visualizes AI4MARS terrain labels and extracts obstacles.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/ayusman/terrainscope/internal/analysis"
	"github.com/ayusman/terrainscope/internal/app"
	"github.com/ayusman/terrainscope/internal/display"
	"github.com/ayusman/terrainscope/internal/logging"
	"github.com/ayusman/terrainscope/internal/render"
	"github.com/ayusman/terrainscope/internal/terrain"
)

const (
	// Flags.
	flagDebug           = "debug"
	flagDataset         = "dataset"
	flagImages          = "images"
	flagLabels          = "labels"
	flagObstacleClasses = "obstacle-classes"
	flagMinArea         = "min-area"
	flagLimit           = "limit"
	flagMatchByName     = "match-by-name"
	flagDisplay         = "display"
	flagOut             = "out"
	flagListen          = "listen"
	flagStatic          = "static"
	flagDB              = "db"
	flagPanelHeight     = "panel-height"

	envPrefix = "TERRAINSCOPE_"

	defaultListen = "localhost:8080"
)

func env(name string) []string {
	return []string{envPrefix + name}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newApp(os.Stdout).RunContext(ctx, os.Args)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "terrainscope:", err)
		os.Exit(1)
	}
}

// newApp builds the CLI writing tables to stdout.
func newApp(stdout io.Writer) *cli.App {
	var logger *zap.SugaredLogger

	dbFlag := &cli.StringFlag{
		Name:    flagDB,
		Usage:   "SQLite `FILE` recording runs",
		EnvVars: env("DB"),
	}
	listenFlag := &cli.StringFlag{
		Name:    flagListen,
		Usage:   "`ADDR` of the HTTP viewer",
		EnvVars: env("LISTEN"),
	}
	staticFlag := &cli.StringFlag{
		Name:    flagStatic,
		Usage:   "serve static files from `DIR` at / of the viewer",
		EnvVars: env("STATIC"),
	}

	return &cli.App{
		Name:      "terrainscope",
		Usage:     "visualize Mars terrain segmentation labels and find obstacles",
		Writer:    stdout,
		ErrWriter: os.Stderr,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    flagDebug,
				Aliases: []string{"vvv"},
				Usage:   "enable debug logging",
				EnvVars: env("DEBUG"),
			},
		},
		Before: func(c *cli.Context) error {
			var err error
			logger, err = logging.NewLogger("terrainscope", c.Bool(flagDebug))
			return err
		},
		After: func(c *cli.Context) error {
			if logger != nil {
				logger.Sync() //nolint:errcheck
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "analyze",
				Usage: "blend labels over images and outline obstacles for each pair",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    flagDataset,
						Usage:   "AI4MARS MSL `DIR` containing images/edr and labels/train",
						EnvVars: env("DATASET"),
					},
					&cli.StringFlag{
						Name:    flagImages,
						Usage:   "images `DIR`, overriding the dataset layout",
						EnvVars: env("IMAGES"),
					},
					&cli.StringFlag{
						Name:    flagLabels,
						Usage:   "labels `DIR`, overriding the dataset layout",
						EnvVars: env("LABELS"),
					},
					&cli.StringFlag{
						Name:    flagObstacleClasses,
						Usage:   "comma separated class ids or names treated as obstacles",
						Value:   terrain.FormatClassList(terrain.DefaultObstacles),
						EnvVars: env("OBSTACLE_CLASSES"),
					},
					&cli.Float64Flag{
						Name:    flagMinArea,
						Usage:   "contour area an obstacle must exceed, in pixels",
						Value:   analysis.DefaultMinArea,
						EnvVars: env("MIN_AREA"),
					},
					&cli.IntFlag{
						Name:    flagLimit,
						Usage:   "number of pairs to visit, 0 for all",
						Value:   app.DefaultLimit,
						EnvVars: env("LIMIT"),
					},
					&cli.BoolFlag{
						Name:    flagMatchByName,
						Usage:   "pair images and labels by filename instead of sorted position",
						EnvVars: env("MATCH_BY_NAME"),
					},
					&cli.StringFlag{
						Name:    flagDisplay,
						Usage:   "figure backend: window, dir, web or none",
						Value:   string(display.KindWindow),
						EnvVars: env("DISPLAY"),
					},
					&cli.StringFlag{
						Name:    flagOut,
						Usage:   "`DIR` receiving figures of the dir display",
						Value:   "figures",
						EnvVars: env("OUT"),
					},
					&cli.IntFlag{
						Name:    flagPanelHeight,
						Usage:   "height of each figure panel in pixels",
						Value:   render.DefaultPanelHeight,
						EnvVars: env("PANEL_HEIGHT"),
					},
					listenFlag,
					staticFlag,
					dbFlag,
				},
				Action: func(c *cli.Context) error {
					return analyzeAction(c, logger)
				},
			},
			{
				Name:  "serve",
				Usage: "browse recorded runs over HTTP",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     flagDB,
						Usage:    "SQLite `FILE` recording runs",
						EnvVars:  env("DB"),
						Required: true,
					},
					&cli.StringFlag{
						Name:    flagListen,
						Usage:   "`ADDR` of the HTTP viewer",
						Value:   defaultListen,
						EnvVars: env("LISTEN"),
					},
					staticFlag,
				},
				Action: func(c *cli.Context) error {
					return serveAction(c, logger)
				},
			},
			{
				Name:  "classes",
				Usage: "print the terrain class table",
				Action: func(c *cli.Context) error {
					fmt.Fprintln(c.App.Writer, classTable(terrain.Classes(), terrain.DefaultObstacles))
					return nil
				},
			},
			{
				Name:  "runs",
				Usage: "list recorded runs",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     flagDB,
						Usage:    "SQLite `FILE` recording runs",
						EnvVars:  env("DB"),
						Required: true,
					},
				},
				Action: runsAction,
			},
		},
	}
}
