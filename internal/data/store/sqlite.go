package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"depgraph/internal/core/errors"

	_ "modernc.org/sqlite"
)

const (
	driverName  = "sqlite"
	maxAttempts = 5
)

// SQLiteStore keeps the graph in a local SQLite database. Upserts use
// ON CONFLICT clauses; edges reference their endpoint rows by foreign key.
type SQLiteStore struct {
	path string
	db   *sql.DB
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type txKey struct{}

// OpenSQLite opens or creates the database at path. Any failure to reach a usable
// database is CodeStoreUnavailable.
func OpenSQLite(path string, busyTimeout time.Duration) (*SQLiteStore, error) {
	cleanPath := strings.TrimSpace(path)
	if cleanPath == "" {
		return nil, errors.New(errors.CodeStoreUnavailable, "sqlite path must not be empty")
	}
	if info, err := os.Stat(cleanPath); err == nil && info.IsDir() {
		return nil, errors.AddContext(
			errors.New(errors.CodeStoreUnavailable, "sqlite path is a directory, expected file"),
			errors.CtxPath, cleanPath,
		)
	}
	dir := filepath.Dir(cleanPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrap(err, errors.CodeStoreUnavailable, fmt.Sprintf("create store directory %q", dir))
		}
	}
	if busyTimeout <= 0 {
		busyTimeout = 5 * time.Second
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)",
		cleanPath, busyTimeout.Milliseconds())
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeStoreUnavailable, fmt.Sprintf("open sqlite store %q", cleanPath))
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, errors.CodeStoreUnavailable, fmt.Sprintf("ping sqlite store %q", cleanPath))
	}
	if err := EnsureSchema(db); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, errors.CodeStoreUnavailable, fmt.Sprintf("initialize sqlite schema %q", cleanPath))
	}
	return &SQLiteStore{path: cleanPath, db: db}, nil
}

func (s *SQLiteStore) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) conn(ctx context.Context) execer {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok && tx != nil {
		return tx
	}
	return s.db
}

func (s *SQLiteStore) exec(ctx context.Context, op, query string, args ...any) error {
	return s.withRetry(op, func() error {
		_, err := s.conn(ctx).ExecContext(ctx, query, args...)
		return err
	})
}

// Batch runs fn inside one transaction; upserts issued with the ctx passed to fn join it.
func (s *SQLiteStore) Batch(ctx context.Context, fn func(ctx context.Context) error) error {
	var tx *sql.Tx
	if err := s.withRetry("begin batch", func() error {
		var err error
		tx, err = s.db.BeginTx(ctx, nil)
		return err
	}); err != nil {
		return err
	}
	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	return nil
}

func (s *SQLiteStore) UpsertFile(ctx context.Context, path, name string) error {
	return s.exec(ctx, "upsert file", `
INSERT INTO files (path, name) VALUES (?, ?)
ON CONFLICT(path) DO UPDATE SET
  name=excluded.name,
  updated_at_utc=CURRENT_TIMESTAMP
`, path, name)
}

func (s *SQLiteStore) UpsertFunction(ctx context.Context, id, name, path string, line int) error {
	return s.exec(ctx, "upsert function", `
INSERT INTO functions (id, name, path, line) VALUES (?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  name=excluded.name,
  path=excluded.path,
  line=excluded.line,
  updated_at_utc=CURRENT_TIMESTAMP
`, id, name, path, line)
}

func (s *SQLiteStore) UpsertDependency(ctx context.Context, fromPath, toPath string) error {
	return s.exec(ctx, "upsert dependency",
		`INSERT INTO depends_on (from_path, to_path) VALUES (?, ?) ON CONFLICT DO NOTHING`,
		fromPath, toPath)
}

func (s *SQLiteStore) UpsertContains(ctx context.Context, filePath, functionID string) error {
	return s.exec(ctx, "upsert contains",
		`INSERT INTO contains (file_path, function_id) VALUES (?, ?) ON CONFLICT DO NOTHING`,
		filePath, functionID)
}

func (s *SQLiteStore) UpsertCalls(ctx context.Context, callerID, calleeID string) error {
	return s.exec(ctx, "upsert calls",
		`INSERT INTO calls (caller_id, callee_id) VALUES (?, ?) ON CONFLICT DO NOTHING`,
		callerID, calleeID)
}

// ClearAll removes every node and edge. Run history is kept.
func (s *SQLiteStore) ClearAll(ctx context.Context) error {
	return s.Batch(ctx, func(ctx context.Context) error {
		for _, table := range []string{"calls", "contains", "depends_on", "functions", "files"} {
			if err := s.exec(ctx, "clear "+table, "DELETE FROM "+table); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *SQLiteStore) RecordRun(ctx context.Context, run Run) error {
	return s.exec(ctx, "record run", `
INSERT INTO runs (
  id, root, started_at_utc, finished_at_utc, file_count, function_count,
  depends_on_count, contains_count, calls_count, skipped_count, unresolved_count
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  finished_at_utc=excluded.finished_at_utc,
  file_count=excluded.file_count,
  function_count=excluded.function_count,
  depends_on_count=excluded.depends_on_count,
  contains_count=excluded.contains_count,
  calls_count=excluded.calls_count,
  skipped_count=excluded.skipped_count,
  unresolved_count=excluded.unresolved_count
`,
		run.ID,
		run.Root,
		run.StartedAt.UTC().Format(time.RFC3339Nano),
		run.FinishedAt.UTC().Format(time.RFC3339Nano),
		run.Stats.Files,
		run.Stats.Functions,
		run.Stats.DependsOn,
		run.Stats.Contains,
		run.Stats.Calls,
		run.Stats.Skipped,
		run.Stats.Unresolved,
	)
}

type Counts struct {
	Files     int
	Functions int
	DependsOn int
	Contains  int
	Calls     int
	Runs      int
}

// Counts returns the number of rows per node and edge table.
func (s *SQLiteStore) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	targets := []struct {
		table string
		dst   *int
	}{
		{"files", &c.Files},
		{"functions", &c.Functions},
		{"depends_on", &c.DependsOn},
		{"contains", &c.Contains},
		{"calls", &c.Calls},
		{"runs", &c.Runs},
	}
	for _, t := range targets {
		if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+t.table).Scan(t.dst); err != nil {
			return c, fmt.Errorf("count %s: %w", t.table, err)
		}
	}
	return c, nil
}

// LatestRuns returns up to limit runs, newest first.
func (s *SQLiteStore) LatestRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT id, root, started_at_utc, finished_at_utc, file_count, function_count,
  depends_on_count, contains_count, calls_count, skipped_count, unresolved_count
FROM runs ORDER BY started_at_utc DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var (
			r                 Run
			started, finished string
		)
		if err := rows.Scan(&r.ID, &r.Root, &started, &finished,
			&r.Stats.Files, &r.Stats.Functions, &r.Stats.DependsOn, &r.Stats.Contains,
			&r.Stats.Calls, &r.Stats.Skipped, &r.Stats.Unresolved); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
		r.FinishedAt, _ = time.Parse(time.RFC3339Nano, finished)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) withRetry(op string, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if !isLockError(err) || attempt == maxAttempts {
			break
		}
		time.Sleep(time.Duration(attempt*25) * time.Millisecond)
	}
	return fmt.Errorf("%s: %w", op, lastErr)
}

func isLockError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "busy")
}
