package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for _, n := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), []byte("x"), 0o644))
	}
}

func TestPairs_Positional(t *testing.T) {
	root := t.TempDir()
	cfg := Layout(root)
	touch(t, cfg.ImagesDir, "b.JPG", "a.jpg", "c.png", "notes.txt")
	touch(t, cfg.LabelsDir, "a.png", "c_merged.png", "b.jpg")
	require.NoError(t, os.Mkdir(filepath.Join(cfg.ImagesDir, "sub.png"), 0o755))

	pairs, err := Pairs(cfg)
	require.NoError(t, err)

	// b.JPG is excluded (case-sensitive extension) and b.jpg is not a label.
	require.Len(t, pairs, 2)
	assert.Equal(t, "a.jpg", pairs[0].ImageName())
	assert.Equal(t, "a.png", pairs[0].LabelName())
	assert.False(t, pairs[0].StemMismatch)

	assert.Equal(t, "c.png", pairs[1].ImageName())
	assert.Equal(t, "c_merged.png", pairs[1].LabelName())
	assert.False(t, pairs[1].StemMismatch)
	assert.Equal(t, 1, pairs[1].Index)
}

func TestPairs_PositionalFlagsStemMismatch(t *testing.T) {
	root := t.TempDir()
	cfg := Layout(root)
	touch(t, cfg.ImagesDir, "a.jpg", "b.jpg")
	touch(t, cfg.LabelsDir, "a.png", "z.png")

	pairs, err := Pairs(cfg)
	require.NoError(t, err)
	require.Len(t, pairs, 2)
	assert.False(t, pairs[0].StemMismatch)
	assert.True(t, pairs[1].StemMismatch)
}

func TestPairs_CountMismatchFailsFast(t *testing.T) {
	root := t.TempDir()
	cfg := Layout(root)
	touch(t, cfg.ImagesDir, "a.jpg", "b.jpg", "c.jpg")
	touch(t, cfg.LabelsDir, "a.png", "b.png")

	pairs, err := Pairs(cfg)
	require.Error(t, err)
	assert.Nil(t, pairs)
	assert.True(t, errors.Is(err, ErrCountMismatch))
	assert.Contains(t, err.Error(), "3 images, 2 labels")
}

func TestPairs_MissingDirectory(t *testing.T) {
	_, err := Pairs(Config{ImagesDir: filepath.Join(t.TempDir(), "nope"), LabelsDir: t.TempDir()})
	require.Error(t, err)
	assert.True(t, os.IsNotExist(errors.Cause(err)))
}

func TestPairs_MatchByName(t *testing.T) {
	root := t.TempDir()
	cfg := Layout(root)
	cfg.MatchByName = true
	touch(t, cfg.ImagesDir, "a.jpg", "b.jpg")
	touch(t, cfg.LabelsDir, "b.png", "a_merged.png")

	pairs, err := Pairs(cfg)
	require.NoError(t, err)
	require.Len(t, pairs, 2)
	assert.Equal(t, "a_merged.png", pairs[0].LabelName())
	assert.Equal(t, "b.png", pairs[1].LabelName())
}

func TestPairs_MatchByNameOrphans(t *testing.T) {
	root := t.TempDir()
	cfg := Layout(root)
	cfg.MatchByName = true
	touch(t, cfg.ImagesDir, "a.jpg", "b.jpg")
	touch(t, cfg.LabelsDir, "a.png", "q.png")

	_, err := Pairs(cfg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnmatched))
	assert.Contains(t, err.Error(), "b.jpg, q.png")
}

func TestPairs_MatchByNameDuplicateLabelStem(t *testing.T) {
	root := t.TempDir()
	cfg := Layout(root)
	cfg.MatchByName = true
	touch(t, cfg.ImagesDir, "x.jpg", "y.jpg")
	touch(t, cfg.LabelsDir, "x.png", "x_merged.png")

	_, err := Pairs(cfg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnmatched))
	// Both colliding labels are named and x.jpg is left without a partner.
	assert.Contains(t, err.Error(), "x.jpg, x.png, x_merged.png, y.jpg")
}

func TestStem(t *testing.T) {
	assert.Equal(t, "NLA_397681339EDR_F0020000AUT_04096M1", Stem("/x/NLA_397681339EDR_F0020000AUT_04096M1.JPG"))
	assert.True(t, SameStem("frame.jpg", "frame_merged.png"))
	assert.False(t, SameStem("frame.jpg", "other.png"))
}
