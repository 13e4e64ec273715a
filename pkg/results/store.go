package results

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Config contains configuration for the SQLite backend.
type Config struct {
	// Path is the database file path.
	Path string

	// WALMode enables Write-Ahead Logging mode for better concurrency.
	// Default: true
	WALMode bool

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultConfig returns the default store configuration.
func DefaultConfig() *Config {
	return &Config{
		Path:        "data/binocular.db",
		WALMode:     true,
		BusyTimeout: 5 * time.Second,
	}
}

// RunKind names the estimator that produced a run.
type RunKind string

const (
	// RunEM is an expectation-maximization run.
	RunEM RunKind = "em"
	// RunMCMC is a Markov chain Monte Carlo run.
	RunMCMC RunKind = "mcmc"
)

// Run is one stored estimation run.
type Run struct {
	ID          string    `json:"id"`
	Kind        RunKind   `json:"kind"`
	CreatedAt   time.Time `json:"created_at"`
	DatasetRows int       `json:"dataset_rows"`
	Converged   bool      `json:"converged"`
	Iterations  int       `json:"iterations"`
	Corrected   bool      `json:"corrected"`
}

// Estimate is one stored parameter row.
type Estimate struct {
	Parameter string  `json:"parameter"`
	Value     float64 `json:"estimate"`
	StdErr    float64 `json:"stderr"`
}

// Draw is one stored posterior draw.
type Draw struct {
	Chain     int     `json:"chain"`
	Iteration int     `json:"iteration"`
	Parameter string  `json:"parameter"`
	Value     float64 `json:"value"`
}

// Store is the SQLite-backed run store.
type Store struct {
	db     *sql.DB
	config *Config
	logger *slog.Logger
}

// Open opens (creating if necessary) the run store at config.Path.
func Open(config *Config) (*Store, error) {
	if config == nil {
		config = DefaultConfig()
	}
	logger := slog.Default().With("component", "results.store")

	db, err := sql.Open("sqlite3", config.Path)
	if err != nil {
		return nil, fmt.Errorf("open run store: %w", err)
	}

	s := &Store{db: db, config: config, logger: logger}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("run store opened", "path", config.Path, "wal_mode", config.WALMode)
	return s, nil
}

func (s *Store) initialize() error {
	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return fmt.Errorf("enable WAL: %w", err)
		}
	}
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", s.config.BusyTimeout.Milliseconds())); err != nil {
		return fmt.Errorf("set busy timeout: %w", err)
	}
	if _, err := s.db.Exec("PRAGMA foreign_keys=ON;"); err != nil {
		return fmt.Errorf("enable foreign keys: %w", err)
	}
	if _, err := s.db.Exec(Schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRun stores a run with its parameter table and, for MCMC runs, its
// draw table. A missing run ID is filled with a fresh uuid. Returns the run
// ID.
func (s *Store) SaveRun(ctx context.Context, run *Run, estimates []Estimate, draws []Draw) (string, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("save run: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, kind, created_at, dataset_rows, converged, iterations, corrected)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, string(run.Kind), run.CreatedAt, run.DatasetRows,
		boolInt(run.Converged), run.Iterations, boolInt(run.Corrected))
	if err != nil {
		return "", fmt.Errorf("save run: %w", err)
	}

	estStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO estimates (run_id, parameter, estimate, stderr) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("save run: %w", err)
	}
	defer estStmt.Close()
	for _, e := range estimates {
		if _, err := estStmt.ExecContext(ctx, run.ID, e.Parameter, e.Value, e.StdErr); err != nil {
			return "", fmt.Errorf("save estimate %s: %w", e.Parameter, err)
		}
	}

	if len(draws) > 0 {
		drawStmt, err := tx.PrepareContext(ctx,
			`INSERT INTO draws (run_id, chain, iteration, parameter, value) VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return "", fmt.Errorf("save run: %w", err)
		}
		defer drawStmt.Close()
		for _, dr := range draws {
			if _, err := drawStmt.ExecContext(ctx, run.ID, dr.Chain, dr.Iteration, dr.Parameter, dr.Value); err != nil {
				return "", fmt.Errorf("save draw: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("save run: %w", err)
	}
	s.logger.Info("run saved", "run_id", run.ID, "kind", run.Kind, "draws", len(draws))
	return run.ID, nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kind, created_at, dataset_rows, converged, iterations, corrected
		 FROM runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		var kind string
		var converged, corrected int
		if err := rows.Scan(&r.ID, &kind, &r.CreatedAt, &r.DatasetRows, &converged, &r.Iterations, &corrected); err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		r.Kind = RunKind(kind)
		r.Converged = converged != 0
		r.Corrected = corrected != 0
		out = append(out, r)
	}
	return out, rows.Err()
}

// Estimates returns the stored parameter table of a run.
func (s *Store) Estimates(ctx context.Context, runID string) ([]Estimate, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT parameter, estimate, stderr FROM estimates WHERE run_id = ? ORDER BY parameter`, runID)
	if err != nil {
		return nil, fmt.Errorf("load estimates: %w", err)
	}
	defer rows.Close()

	var out []Estimate
	for rows.Next() {
		var e Estimate
		if err := rows.Scan(&e.Parameter, &e.Value, &e.StdErr); err != nil {
			return nil, fmt.Errorf("load estimates: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// DrawCount returns the number of stored draws for a run.
func (s *Store) DrawCount(ctx context.Context, runID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM draws WHERE run_id = ?`, runID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count draws: %w", err)
	}
	return n, nil
}

// DeleteOlderThan removes runs created before the cutoff, cascading to
// their estimates and draws. Returns the number of runs removed.
func (s *Store) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	if n > 0 {
		s.logger.Info("pruned runs", "removed", n, "cutoff", cutoff)
	}
	return n, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
