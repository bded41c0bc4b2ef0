package app

import (
	"context"

	"github.com/pkg/errors"

	"github.com/ayusman/terrainscope/internal/dataset"
	"github.com/ayusman/terrainscope/internal/render"
)

// processPair loads, analyses and displays one pair.
//
// Steps:
// 1. Load the image in colour and the label as grayscale
// 2. On a load failure, report the pair as skipped
// 3. Blend the colourised label over the image and extract obstacles
// 4. Show the terrain figure, then the obstacle figure
func (a *App) processPair(ctx context.Context, pair dataset.Pair) (PairReport, error) {
	pr := PairReport{Pair: pair}
	log := a.logger.With("index", pair.Index, "image", pair.ImageName(), "label", pair.LabelName())

	if pair.StemMismatch {
		log.Warn("image and label names differ, pairing by position")
	}

	img, err := a.loader.LoadImage(pair.ImagePath)
	if err != nil {
		log.Warnw("skipping pair", "error", err)
		return skipped(pr, err), nil
	}
	defer img.Close()

	label, err := a.loader.LoadLabel(pair.LabelPath)
	if err != nil {
		log.Warnw("skipping pair", "error", err)
		return skipped(pr, err), nil
	}
	defer label.Close()

	res, err := a.analyzer.Analyze(*img, *label)
	if err != nil {
		return pr, errors.Wrapf(err, "analyze %s", pair.ImageName())
	}
	defer res.Close()

	pr.Contours = res.Obstacles.Total
	pr.Obstacles = res.Obstacles.Obstacles
	pr.Coverage = res.Coverage
	log.Infow("pair analysed", "contours", pr.Contours, "obstacles", len(pr.Obstacles))

	name := dataset.Stem(pair.ImageName())

	terrainFig, err := render.Terrain(name, *img, *label, res.Blended, a.config.PanelHeight)
	if err != nil {
		return pr, errors.Wrapf(err, "render terrain for %s", pair.ImageName())
	}
	if err := a.display.Show(ctx, terrainFig); err != nil {
		return pr, errors.Wrapf(err, "show %s", terrainFig.Name)
	}

	obstacleFig, err := render.Obstacles(name, res.Drawn, a.config.PanelHeight)
	if err != nil {
		return pr, errors.Wrapf(err, "render obstacles for %s", pair.ImageName())
	}
	if err := a.display.Show(ctx, obstacleFig); err != nil {
		return pr, errors.Wrapf(err, "show %s", obstacleFig.Name)
	}

	return pr, nil
}

func skipped(pr PairReport, err error) PairReport {
	pr.Skipped = true
	pr.Reason = err.Error()
	return pr
}
