package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/bnema/segbench/internal/domain"
	"github.com/bnema/segbench/internal/port"
	"github.com/pressly/goose/v3"
	"modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

const dbFileName = "segbench.db"

// Store keeps run history. The full run is stored as JSON next to a few columns used
// for listing and ad-hoc queries.
type Store struct {
	db *sql.DB
}

var hookOnce sync.Once

func registerHook() {
	hookOnce.Do(func() {
		sqlite.RegisterConnectionHook(func(conn sqlite.ExecQuerierContext, dsn string) error {
			pragmas := []string{
				"PRAGMA journal_mode = WAL",
				"PRAGMA busy_timeout = 5000",
				"PRAGMA synchronous = NORMAL",
				"PRAGMA cache_size = -8000", // 8MB
			}
			for _, p := range pragmas {
				if _, err := conn.ExecContext(context.Background(), p, nil); err != nil {
					return fmt.Errorf("execute %s: %w", p, err)
				}
			}
			return nil
		})
	})
}

func NewStore(dataDir string) (*Store, error) {
	registerHook()

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dataDir, dbFileName))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Single connection for SQLite (WAL allows concurrent reads but only one writer)
	db.SetMaxOpenConns(1)

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

const upsertRun = `
INSERT INTO runs (
    id, asset_path, state, num_segments, workers,
    sequential_seconds, parallel_seconds, speedup, error_message,
    started_at, finished_at, record
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    state = excluded.state,
    num_segments = excluded.num_segments,
    workers = excluded.workers,
    sequential_seconds = excluded.sequential_seconds,
    parallel_seconds = excluded.parallel_seconds,
    speedup = excluded.speedup,
    error_message = excluded.error_message,
    finished_at = excluded.finished_at,
    record = excluded.record`

func (s *Store) Save(r *domain.Run) error {
	record, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode run %s: %w", r.ID, err)
	}

	var finishedAt int64
	if !r.FinishedAt.IsZero() {
		finishedAt = r.FinishedAt.UnixNano()
	}

	_, err = s.db.ExecContext(context.Background(), upsertRun,
		r.ID,
		r.AssetPath,
		string(r.State),
		r.NumSegments,
		r.Parallel.Workers,
		r.Sequential.Seconds(),
		r.Parallel.Seconds(),
		r.Metrics.Speedup,
		r.ErrorMessage,
		r.StartedAt.UnixNano(),
		finishedAt,
		string(record),
	)
	if err != nil {
		return fmt.Errorf("save run %s: %w", r.ID, err)
	}
	return nil
}

func (s *Store) Get(id string) (*domain.Run, error) {
	var record string
	err := s.db.QueryRowContext(context.Background(), `SELECT record FROM runs WHERE id = ?`, id).Scan(&record)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return decodeRun(record)
}

// List returns the most recent runs first. A limit of zero or less returns every run.
func (s *Store) List(limit int) ([]*domain.Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(context.Background(),
		`SELECT record FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var runs []*domain.Run
	for rows.Next() {
		var record string
		if err := rows.Scan(&record); err != nil {
			return nil, err
		}
		run, err := decodeRun(record)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func decodeRun(record string) (*domain.Run, error) {
	var run domain.Run
	if err := json.Unmarshal([]byte(record), &run); err != nil {
		return nil, fmt.Errorf("decode run: %w", err)
	}
	return &run, nil
}

var _ port.RunStore = (*Store)(nil)
