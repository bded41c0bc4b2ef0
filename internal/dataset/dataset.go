// Package dataset enumerates image/label file pairs of an AI4MARS-style dataset.
package dataset

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// AI4MARS MSL layout relative to the dataset root.
const (
	ImagesSubdir = "images/edr"
	LabelsSubdir = "labels/train"
)

var (
	// ErrCountMismatch is returned when the image and label directories hold
	// a different number of files.
	ErrCountMismatch = errors.New("mismatch between image and label files")
	// ErrUnmatched is returned in name matching mode when a file has no partner.
	ErrUnmatched = errors.New("unmatched image or label files")
)

// imageExtensions and labelExtensions are matched case-sensitively.
var (
	imageExtensions = []string{".jpg", ".png"}
	labelExtensions = []string{".png"}
)

// Pair is an image file and the label file paired with it.
type Pair struct {
	Index     int    `json:"index"`
	ImagePath string `json:"image_path"`
	LabelPath string `json:"label_path"`
	// StemMismatch is set when positional pairing joined files whose names differ.
	StemMismatch bool `json:"stem_mismatch,omitempty"`
}

// ImageName returns the base name of the image file.
func (p Pair) ImageName() string { return filepath.Base(p.ImagePath) }

// LabelName returns the base name of the label file.
func (p Pair) LabelName() string { return filepath.Base(p.LabelPath) }

// Config holds the dataset location and pairing mode.
type Config struct {
	ImagesDir string
	LabelsDir string
	// MatchByName pairs files by filename stem instead of sorted position.
	MatchByName bool
}

// Layout returns a Config for the AI4MARS MSL directory layout under root.
func Layout(root string) Config {
	return Config{
		ImagesDir: filepath.Join(root, ImagesSubdir),
		LabelsDir: filepath.Join(root, LabelsSubdir),
	}
}

// Pairs lists both directories and pairs their files.
//
// By default files are paired by sorted position, so the n-th image goes with
// the n-th label regardless of name; pairs whose stems differ are marked with
// StemMismatch. The file counts must be equal in either mode.
func Pairs(cfg Config) ([]Pair, error) {
	images, err := List(cfg.ImagesDir, imageExtensions)
	if err != nil {
		return nil, errors.Wrap(err, "list images")
	}
	labels, err := List(cfg.LabelsDir, labelExtensions)
	if err != nil {
		return nil, errors.Wrap(err, "list labels")
	}

	if len(images) != len(labels) {
		return nil, errors.Wrapf(ErrCountMismatch, "%d images, %d labels", len(images), len(labels))
	}

	if cfg.MatchByName {
		return pairByName(cfg, images, labels)
	}

	pairs := make([]Pair, len(images))
	for i := range images {
		pairs[i] = Pair{
			Index:        i,
			ImagePath:    filepath.Join(cfg.ImagesDir, images[i]),
			LabelPath:    filepath.Join(cfg.LabelsDir, labels[i]),
			StemMismatch: !SameStem(images[i], labels[i]),
		}
	}
	return pairs, nil
}

func pairByName(cfg Config, images, labels []string) ([]Pair, error) {
	var (
		pairs    []Pair
		orphaned []string
	)

	// Labels whose stems collide ("x.png" and "x_merged.png") are ambiguous
	// and reported with the orphans.
	byStem := make(map[string]string, len(labels))
	ambiguous := make(map[string]bool)
	for _, l := range labels {
		stem := labelStem(l)
		prev, ok := byStem[stem]
		if !ok {
			byStem[stem] = l
			continue
		}
		if !ambiguous[stem] {
			ambiguous[stem] = true
			orphaned = append(orphaned, prev)
		}
		orphaned = append(orphaned, l)
	}
	for stem := range ambiguous {
		delete(byStem, stem)
	}

	for _, img := range images {
		l, ok := byStem[Stem(img)]
		if !ok {
			orphaned = append(orphaned, img)
			continue
		}
		delete(byStem, Stem(img))
		pairs = append(pairs, Pair{
			Index:     len(pairs),
			ImagePath: filepath.Join(cfg.ImagesDir, img),
			LabelPath: filepath.Join(cfg.LabelsDir, l),
		})
	}
	for _, l := range byStem {
		orphaned = append(orphaned, l)
	}

	if len(orphaned) > 0 {
		sort.Strings(orphaned)
		return nil, errors.Wrapf(ErrUnmatched, "%s", strings.Join(orphaned, ", "))
	}
	return pairs, nil
}

// List returns the sorted names of regular files in dir whose extension is
// one of exts.
func List(dir string, exts []string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		for _, e := range exts {
			if ext == e {
				names = append(names, entry.Name())
				break
			}
		}
	}

	sort.Strings(names)
	return names, nil
}

// Stem returns a file name without directory and extension.
func Stem(name string) string {
	base := filepath.Base(name)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// SameStem reports whether an image and label file refer to the same frame.
// AI4MARS label files sometimes carry a "_merged" suffix, which is ignored.
func SameStem(image, label string) bool {
	return Stem(image) == labelStem(label)
}

func labelStem(label string) string {
	return strings.TrimSuffix(Stem(label), "_merged")
}
