package store

import (
	"database/sql"
	"time"

	"github.com/pkg/errors"
)

// Obstacle is a retained contour, stored by its bounding box.
type Obstacle struct {
	ID     int64   `json:"id"`
	PairID int64   `json:"pair_id"`
	Area   float64 `json:"area"`
	X      int     `json:"x"`
	Y      int     `json:"y"`
	Width  int     `json:"width"`
	Height int     `json:"height"`
}

// Coverage is the pixel count of one class in a pair's label.
type Coverage struct {
	PairID   int64   `json:"pair_id"`
	ClassID  int     `json:"class_id"`
	Name     string  `json:"name"`
	Pixels   int     `json:"pixels"`
	Fraction float64 `json:"fraction"`
}

// Pair is the recorded outcome of one image/label pair of a run.
type Pair struct {
	ID        int64      `json:"id"`
	RunID     string     `json:"run_id"`
	Index     int        `json:"index"`
	ImagePath string     `json:"image_path"`
	LabelPath string     `json:"label_path"`
	Skipped   bool       `json:"skipped"`
	Reason    string     `json:"reason,omitempty"`
	Contours  int        `json:"contours"`
	Obstacles []Obstacle `json:"obstacles"`
	Coverage  []Coverage `json:"coverage"`
	CreatedAt time.Time  `json:"created_at"`
}

// PairRepository stores pairs with their obstacles and coverage.
type PairRepository struct {
	db *sql.DB
}

// Pairs returns the pair repository for this store.
func (s *Store) Pairs() *PairRepository {
	return &PairRepository{db: s.db}
}

// Create inserts a pair, its obstacles and its coverage in a single transaction.
func (r *PairRepository) Create(p *Pair) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	p.CreatedAt = time.Now()
	result, err := tx.Exec(
		`INSERT INTO pairs (run_id, pair_index, image_path, label_path, skipped, reason, contours, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.RunID, p.Index, p.ImagePath, p.LabelPath, p.Skipped, p.Reason, p.Contours, p.CreatedAt,
	)
	if err != nil {
		return errors.Wrap(err, "insert pair")
	}
	if p.ID, err = result.LastInsertId(); err != nil {
		return err
	}

	obstacleStmt, err := tx.Prepare(
		`INSERT INTO obstacles (pair_id, area, x, y, width, height) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer obstacleStmt.Close()

	for i := range p.Obstacles {
		o := &p.Obstacles[i]
		o.PairID = p.ID
		res, err := obstacleStmt.Exec(o.PairID, o.Area, o.X, o.Y, o.Width, o.Height)
		if err != nil {
			return errors.Wrap(err, "insert obstacle")
		}
		if o.ID, err = res.LastInsertId(); err != nil {
			return err
		}
	}

	coverageStmt, err := tx.Prepare(
		`INSERT INTO class_coverage (pair_id, class_id, name, pixels, fraction) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer coverageStmt.Close()

	for i := range p.Coverage {
		c := &p.Coverage[i]
		c.PairID = p.ID
		if _, err := coverageStmt.Exec(c.PairID, c.ClassID, c.Name, c.Pixels, c.Fraction); err != nil {
			return errors.Wrap(err, "insert coverage")
		}
	}

	return tx.Commit()
}

// ListByRun retrieves the pairs of a run in visit order, with obstacles and coverage.
func (r *PairRepository) ListByRun(runID string) ([]Pair, error) {
	rows, err := r.db.Query(
		`SELECT id, run_id, pair_index, image_path, label_path, skipped, reason, contours, created_at
		 FROM pairs
		 WHERE run_id = ?
		 ORDER BY pair_index`,
		runID,
	)
	if err != nil {
		return nil, err
	}

	var pairs []Pair
	for rows.Next() {
		var p Pair
		if err := rows.Scan(&p.ID, &p.RunID, &p.Index, &p.ImagePath, &p.LabelPath,
			&p.Skipped, &p.Reason, &p.Contours, &p.CreatedAt); err != nil {
			rows.Close()
			return nil, err
		}
		pairs = append(pairs, p)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, err
	}

	// The store holds a single connection, so children load after rows is closed.
	for i := range pairs {
		if pairs[i].Obstacles, err = r.obstacles(pairs[i].ID); err != nil {
			return nil, err
		}
		if pairs[i].Coverage, err = r.coverage(pairs[i].ID); err != nil {
			return nil, err
		}
	}

	return pairs, nil
}

func (r *PairRepository) obstacles(pairID int64) ([]Obstacle, error) {
	rows, err := r.db.Query(
		`SELECT id, pair_id, area, x, y, width, height FROM obstacles WHERE pair_id = ? ORDER BY id`,
		pairID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	obstacles := []Obstacle{}
	for rows.Next() {
		var o Obstacle
		if err := rows.Scan(&o.ID, &o.PairID, &o.Area, &o.X, &o.Y, &o.Width, &o.Height); err != nil {
			return nil, err
		}
		obstacles = append(obstacles, o)
	}
	return obstacles, rows.Err()
}

func (r *PairRepository) coverage(pairID int64) ([]Coverage, error) {
	rows, err := r.db.Query(
		`SELECT pair_id, class_id, name, pixels, fraction FROM class_coverage WHERE pair_id = ? ORDER BY class_id`,
		pairID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	coverage := []Coverage{}
	for rows.Next() {
		var c Coverage
		if err := rows.Scan(&c.PairID, &c.ClassID, &c.Name, &c.Pixels, &c.Fraction); err != nil {
			return nil, err
		}
		coverage = append(coverage, c)
	}
	return coverage, rows.Err()
}
