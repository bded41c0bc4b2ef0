package store

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRun(t *testing.T, s *Store) *Run {
	t.Helper()

	run := &Run{
		ImagesDir:       "msl/images/edr",
		LabelsDir:       "msl/labels/train",
		ObstacleClasses: "2,3",
		MinArea:         200,
		Limit:           3,
	}
	require.NoError(t, s.Runs().Create(run))
	return run
}

func TestRunRepository_Create(t *testing.T) {
	s := newTestStore(t)
	run := newTestRun(t, s)

	_, err := uuid.Parse(run.ID)
	assert.NoError(t, err, "ID should be a UUID")
	assert.Equal(t, RunRunning, run.Status)
	assert.False(t, run.StartedAt.IsZero(), "StartedAt should be set after create")

	got, err := s.Runs().GetByID(run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ImagesDir, got.ImagesDir)
	assert.Equal(t, run.LabelsDir, got.LabelsDir)
	assert.Equal(t, "2,3", got.ObstacleClasses)
	assert.Equal(t, 200.0, got.MinArea)
	assert.Equal(t, 3, got.Limit)
	assert.Nil(t, got.FinishedAt, "FinishedAt should be nil for a running run")
}

func TestRunRepository_CreateKeepsID(t *testing.T) {
	s := newTestStore(t)

	run := &Run{ID: "fixed", ImagesDir: "i", LabelsDir: "l", ObstacleClasses: "3"}
	require.NoError(t, s.Runs().Create(run))
	assert.Equal(t, "fixed", run.ID)

	// Duplicate IDs are rejected
	err := s.Runs().Create(&Run{ID: "fixed", ImagesDir: "i", LabelsDir: "l", ObstacleClasses: "3"})
	assert.Error(t, err)
}

func TestRunRepository_GetByID_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Runs().GetByID("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRunRepository_Finish(t *testing.T) {
	s := newTestStore(t)
	run := newTestRun(t, s)

	run.Status = RunCompleted
	run.Processed = 2
	run.Skipped = 1
	require.NoError(t, s.Runs().Finish(run))
	require.NotNil(t, run.FinishedAt, "FinishedAt should be set after finish")

	got, err := s.Runs().GetByID(run.ID)
	require.NoError(t, err)
	assert.Equal(t, RunCompleted, got.Status)
	assert.Equal(t, 2, got.Processed)
	assert.Equal(t, 1, got.Skipped)
	assert.NotNil(t, got.FinishedAt, "stored FinishedAt should be set")

	err = s.Runs().Finish(&Run{ID: "missing", Status: RunFailed})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRunRepository_FinishRejectsUnknownStatus(t *testing.T) {
	s := newTestStore(t)
	run := newTestRun(t, s)

	run.Status = "paused"
	assert.Error(t, s.Runs().Finish(run))
}

func TestRunRepository_List(t *testing.T) {
	s := newTestStore(t)

	runs, err := s.Runs().List()
	require.NoError(t, err)
	assert.Empty(t, runs)

	first := newTestRun(t, s)
	second := newTestRun(t, s)

	runs, err = s.Runs().List()
	require.NoError(t, err)
	require.Len(t, runs, 2)
	ids := []string{runs[0].ID, runs[1].ID}
	assert.ElementsMatch(t, []string{first.ID, second.ID}, ids)
}

func TestRunRepository_Delete(t *testing.T) {
	s := newTestStore(t)
	run := newTestRun(t, s)

	require.NoError(t, s.Runs().Delete(run.ID))

	_, err := s.Runs().GetByID(run.ID)
	assert.ErrorIs(t, err, ErrNotFound, "get after delete")
	assert.ErrorIs(t, s.Runs().Delete(run.ID), ErrNotFound, "delete twice")
}
