// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/polygrade/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for analysis run history.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY,
			created_at TEXT NOT NULL,
			experiment TEXT NOT NULL,
			has_truth INTEGER NOT NULL,
			degree_count INTEGER NOT NULL,
			is_stagnant INTEGER NOT NULL,
			stagnation_start INTEGER,
			stagnant_count INTEGER NOT NULL,
			dist_quality TEXT NOT NULL,
			outlier_fraction REAL NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS run_degrees (
			run_id INTEGER NOT NULL,
			degree INTEGER NOT NULL,
			l2_error REAL NOT NULL,
			band TEXT NOT NULL,
			points INTEGER NOT NULL,
			min_distance REAL,
			mean_distance REAL,
			recoveries INTEGER,
			outliers INTEGER NOT NULL,
			dist_quality TEXT NOT NULL,
			PRIMARY KEY (run_id, degree)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_experiment ON runs(experiment);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertRun stores a completed analysis run and its per-degree grades.
func (s *Store) InsertRun(ctx context.Context, run model.RunSummary, degrees []model.RunDegree) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (created_at, experiment, has_truth, degree_count, is_stagnant, stagnation_start, stagnant_count, dist_quality, outlier_fraction)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.CreatedAt.Format(time.RFC3339Nano),
		run.Experiment,
		boolToInt(run.HasTruth),
		run.DegreeCount,
		boolToInt(run.IsStagnant),
		nullableInt(run.StagnationStartDegree),
		run.StagnantCount,
		run.DistQuality,
		run.OutlierFraction,
	)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if len(degrees) > 0 {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO run_degrees (run_id, degree, l2_error, band, points, min_distance, mean_distance, recoveries, outliers, dist_quality)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return 0, err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for _, d := range degrees {
			if _, err := stmt.ExecContext(ctx, id, d.Degree, d.L2Error, d.Band, d.Points,
				nullableFloat(d.MinDistance), nullableFloat(d.MeanDistance), nullableInt(d.Recoveries),
				d.NumOutliers, d.DistQuality); err != nil {
				return 0, err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// ListRuns returns recorded runs filtered by the history config, newest first.
func (s *Store) ListRuns(ctx context.Context, cfg model.HistoryConfig) ([]model.RunSummary, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Experiment != "" {
		clauses = append(clauses, "experiment = ?")
		args = append(args, cfg.Experiment)
	}
	if cfg.Since != nil {
		clauses = append(clauses, "created_at >= ?")
		args = append(args, cfg.Since.Format(time.RFC3339Nano))
	}
	query := fmt.Sprintf(`SELECT id, created_at, experiment, has_truth, degree_count, is_stagnant, stagnation_start, stagnant_count, dist_quality, outlier_fraction
		FROM runs
		WHERE %s
		ORDER BY created_at DESC`, strings.Join(clauses, " AND "))
	if cfg.Last > 0 {
		query += " LIMIT ?"
		args = append(args, cfg.Last)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var runs []model.RunSummary
	for rows.Next() {
		var run model.RunSummary
		var createdAt string
		var hasTruth, isStagnant int
		var start sql.NullInt64
		if err := rows.Scan(&run.RunID, &createdAt, &run.Experiment, &hasTruth, &run.DegreeCount,
			&isStagnant, &start, &run.StagnantCount, &run.DistQuality, &run.OutlierFraction); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, err
		}
		run.CreatedAt = parsed
		run.HasTruth = hasTruth != 0
		run.IsStagnant = isStagnant != 0
		if start.Valid {
			v := int(start.Int64)
			run.StagnationStartDegree = &v
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return runs, nil
}

// ListRunDegrees returns the per-degree grades of one run ordered by degree.
func (s *Store) ListRunDegrees(ctx context.Context, runID int64) ([]model.RunDegree, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, degree, l2_error, band, points, min_distance, mean_distance, recoveries, outliers, dist_quality
		 FROM run_degrees
		 WHERE run_id = ?
		 ORDER BY degree ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var degrees []model.RunDegree
	for rows.Next() {
		var d model.RunDegree
		var minDist, meanDist sql.NullFloat64
		var recoveries sql.NullInt64
		if err := rows.Scan(&d.RunID, &d.Degree, &d.L2Error, &d.Band, &d.Points,
			&minDist, &meanDist, &recoveries, &d.NumOutliers, &d.DistQuality); err != nil {
			return nil, err
		}
		if minDist.Valid {
			v := minDist.Float64
			d.MinDistance = &v
		}
		if meanDist.Valid {
			v := meanDist.Float64
			d.MeanDistance = &v
		}
		if recoveries.Valid {
			v := int(recoveries.Int64)
			d.Recoveries = &v
		}
		degrees = append(degrees, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return degrees, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullableFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
