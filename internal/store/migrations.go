package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Runs table - one row per analyze invocation
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			images_dir TEXT NOT NULL,
			labels_dir TEXT NOT NULL,
			obstacle_classes TEXT NOT NULL,
			min_area REAL NOT NULL,
			pair_limit INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL CHECK(status IN ('running', 'completed', 'failed', 'cancelled')),
			processed INTEGER NOT NULL DEFAULT 0,
			skipped INTEGER NOT NULL DEFAULT 0,
			error TEXT NOT NULL DEFAULT '',
			started_at DATETIME NOT NULL,
			finished_at DATETIME
		)`,

		// Pairs table - one row per image/label pair visited by a run
		`CREATE TABLE IF NOT EXISTS pairs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			pair_index INTEGER NOT NULL,
			image_path TEXT NOT NULL,
			label_path TEXT NOT NULL,
			skipped INTEGER NOT NULL DEFAULT 0,
			reason TEXT NOT NULL DEFAULT '',
			contours INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Obstacles table - retained contours of a pair
		`CREATE TABLE IF NOT EXISTS obstacles (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			pair_id INTEGER NOT NULL REFERENCES pairs(id) ON DELETE CASCADE,
			area REAL NOT NULL,
			x INTEGER NOT NULL,
			y INTEGER NOT NULL,
			width INTEGER NOT NULL,
			height INTEGER NOT NULL
		)`,

		// Class coverage table - pixel counts per terrain class of a pair
		`CREATE TABLE IF NOT EXISTS class_coverage (
			pair_id INTEGER NOT NULL REFERENCES pairs(id) ON DELETE CASCADE,
			class_id INTEGER NOT NULL,
			name TEXT NOT NULL,
			pixels INTEGER NOT NULL,
			fraction REAL NOT NULL,
			PRIMARY KEY (pair_id, class_id)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_pairs_run_id ON pairs(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_obstacles_pair_id ON obstacles(pair_id)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
