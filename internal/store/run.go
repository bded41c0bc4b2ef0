package store

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// RunStatus is the lifecycle state of a run.
type RunStatus string

const (
	// RunRunning marks a run still in progress.
	RunRunning RunStatus = "running"
	// RunCompleted marks a run that visited every pair it was allowed to.
	RunCompleted RunStatus = "completed"
	// RunFailed marks a run that ended with an error.
	RunFailed RunStatus = "failed"
	// RunCancelled marks a run stopped by its context.
	RunCancelled RunStatus = "cancelled"
)

// Run represents one analysis run stored in the database.
type Run struct {
	ID              string     `json:"id"`
	ImagesDir       string     `json:"images_dir"`
	LabelsDir       string     `json:"labels_dir"`
	ObstacleClasses string     `json:"obstacle_classes"`
	MinArea         float64    `json:"min_area"`
	Limit           int        `json:"limit"`
	Status          RunStatus  `json:"status"`
	Processed       int        `json:"processed"`
	Skipped         int        `json:"skipped"`
	Error           string     `json:"error,omitempty"`
	StartedAt       time.Time  `json:"started_at"`
	FinishedAt      *time.Time `json:"finished_at,omitempty"`
}

// RunRepository provides CRUD operations for runs.
type RunRepository struct {
	db *sql.DB
}

// Runs returns the run repository for this store.
func (s *Store) Runs() *RunRepository {
	return &RunRepository{db: s.db}
}

const runColumns = `id, images_dir, labels_dir, obstacle_classes, min_area, pair_limit,
	status, processed, skipped, error, started_at, finished_at`

// Create inserts a new running run. An empty ID is filled with a UUID.
func (r *RunRepository) Create(run *Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	run.Status = RunRunning
	run.StartedAt = time.Now()
	run.FinishedAt = nil

	_, err := r.db.Exec(
		`INSERT INTO runs (id, images_dir, labels_dir, obstacle_classes, min_area, pair_limit, status, started_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.ImagesDir, run.LabelsDir, run.ObstacleClasses, run.MinArea, run.Limit,
		string(run.Status), run.StartedAt,
	)
	return errors.Wrap(err, "insert run")
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*Run, error) {
	run := &Run{}
	var status string
	var finished sql.NullTime

	err := row.Scan(&run.ID, &run.ImagesDir, &run.LabelsDir, &run.ObstacleClasses, &run.MinArea,
		&run.Limit, &status, &run.Processed, &run.Skipped, &run.Error, &run.StartedAt, &finished)
	if err != nil {
		return nil, err
	}

	run.Status = RunStatus(status)
	if finished.Valid {
		t := finished.Time
		run.FinishedAt = &t
	}
	return run, nil
}

// GetByID retrieves a run by its ID.
func (r *RunRepository) GetByID(id string) (*Run, error) {
	run, err := scanRun(r.db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return run, nil
}

// List retrieves all runs, newest first.
func (r *RunRepository) List() ([]*Run, error) {
	rows, err := r.db.Query(`SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return runs, nil
}

// Finish records the final state and counters of a run.
func (r *RunRepository) Finish(run *Run) error {
	now := time.Now()

	result, err := r.db.Exec(
		`UPDATE runs SET status = ?, processed = ?, skipped = ?, error = ?, finished_at = ?
		 WHERE id = ?`,
		string(run.Status), run.Processed, run.Skipped, run.Error, now, run.ID,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	run.FinishedAt = &now
	return nil
}

// Delete removes a run and, through cascading keys, its pairs.
func (r *RunRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}
