package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"

	"mercator-hq/interviewer/pkg/audit"
)

// Driver names accepted by NewSQLiteStorage.
const (
	DriverModernc = "sqlite"
	DriverCgo     = "sqlite3"
)

// SQLiteConfig contains configuration for the SQLite backend.
type SQLiteConfig struct {
	// Driver is DriverModernc or DriverCgo.
	Driver string

	// Path is the database file path. ":memory:" is accepted for tests.
	Path string

	// BusyTimeout is how long to wait when the database is locked.
	BusyTimeout time.Duration

	// WALMode enables write-ahead logging.
	WALMode bool
}

// SQLiteStorage implements audit.Storage on SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	driver string
	logger *slog.Logger
}

var _ audit.Storage = (*SQLiteStorage)(nil)

// NewSQLiteStorage opens (creating if needed) the database and applies the
// schema.
func NewSQLiteStorage(cfg SQLiteConfig) (*SQLiteStorage, error) {
	if cfg.Driver == "" {
		cfg.Driver = DriverModernc
	}
	if cfg.Driver != DriverModernc && cfg.Driver != DriverCgo {
		return nil, audit.NewStorageError(cfg.Driver, "open", fmt.Errorf("unsupported driver %q", cfg.Driver))
	}
	if cfg.Path == "" {
		return nil, audit.NewStorageError(cfg.Driver, "open", errors.New("path is required"))
	}
	if cfg.BusyTimeout <= 0 {
		cfg.BusyTimeout = 5 * time.Second
	}

	if cfg.Path != ":memory:" {
		if dir := filepath.Dir(cfg.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, audit.NewStorageError(cfg.Driver, "mkdir", err)
			}
		}
	}

	db, err := sql.Open(cfg.Driver, cfg.Path)
	if err != nil {
		return nil, audit.NewStorageError(cfg.Driver, "open", err)
	}
	// One connection keeps pragmas effective and serialises writers.
	db.SetMaxOpenConns(1)

	s := &SQLiteStorage{
		db:     db,
		driver: cfg.Driver,
		logger: slog.Default().With("component", "audit.storage.sqlite"),
	}
	if err := s.initialize(cfg); err != nil {
		_ = db.Close()
		return nil, err
	}

	s.logger.Info("audit storage initialized", "driver", cfg.Driver, "path", cfg.Path, "wal_mode", cfg.WALMode)
	return s, nil
}

func (s *SQLiteStorage) initialize(cfg SQLiteConfig) error {
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", cfg.BusyTimeout.Milliseconds())); err != nil {
		return audit.NewStorageError(s.driver, "set_busy_timeout", err)
	}
	if cfg.WALMode && cfg.Path != ":memory:" {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return audit.NewStorageError(s.driver, "enable_wal", err)
		}
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return audit.NewStorageError(s.driver, "create_schema", err)
	}
	if _, err := s.db.Exec(insertSchemaVersion, SchemaVersion, time.Now().UnixNano()); err != nil {
		return audit.NewStorageError(s.driver, "insert_schema_version", err)
	}

	var version int
	if err := s.db.QueryRow(getSchemaVersion).Scan(&version); err != nil {
		return audit.NewStorageError(s.driver, "get_schema_version", err)
	}
	if version != SchemaVersion {
		return audit.NewStorageError(s.driver, "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}
	return nil
}

// Store inserts record.
func (s *SQLiteStorage) Store(ctx context.Context, r *audit.Record) error {
	_, err := s.db.ExecContext(ctx, insertRecord,
		r.ID, r.RequestID, r.Provider, r.Model,
		r.Turns, r.Fragments, r.Events, r.Skipped,
		string(r.Outcome), nullable(r.Error), nullable(r.ErrorKind),
		r.StartedAt.UnixNano(), int64(r.Duration), int64(r.FirstFragment),
	)
	if err != nil {
		return audit.NewStorageError(s.driver, "store", err)
	}
	return nil
}

// Query returns matching records, newest first.
func (s *SQLiteStorage) Query(ctx context.Context, q audit.Query) ([]*audit.Record, error) {
	where, args := buildWhere(q)
	query := selectColumns + where + " ORDER BY started_at DESC"
	if q.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, q.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, audit.NewStorageError(s.driver, "query", err)
	}
	defer rows.Close()

	var records []*audit.Record
	for rows.Next() {
		var (
			r                            audit.Record
			outcome                      string
			startedAt, dur, firstFragDur int64
		)
		if err := rows.Scan(
			&r.ID, &r.RequestID, &r.Provider, &r.Model,
			&r.Turns, &r.Fragments, &r.Events, &r.Skipped,
			&outcome, &r.Error, &r.ErrorKind,
			&startedAt, &dur, &firstFragDur,
		); err != nil {
			return nil, audit.NewStorageError(s.driver, "scan", err)
		}
		r.Outcome = audit.Outcome(outcome)
		r.StartedAt = time.Unix(0, startedAt).UTC()
		r.Duration = time.Duration(dur)
		r.FirstFragment = time.Duration(firstFragDur)
		records = append(records, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, audit.NewStorageError(s.driver, "query", err)
	}
	return records, nil
}

// Count returns the number of matching records.
func (s *SQLiteStorage) Count(ctx context.Context, q audit.Query) (int64, error) {
	where, args := buildWhere(q)
	var n int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM relay_audit"+where, args...).Scan(&n); err != nil {
		return 0, audit.NewStorageError(s.driver, "count", err)
	}
	return n, nil
}

// DeleteBefore removes records started before cutoff.
func (s *SQLiteStorage) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM relay_audit WHERE started_at < ?", cutoff.UnixNano())
	if err != nil {
		return 0, audit.NewStorageError(s.driver, "delete", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, audit.NewStorageError(s.driver, "delete", err)
	}
	return n, nil
}

// Close closes the database.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

func buildWhere(q audit.Query) (string, []any) {
	var (
		clauses []string
		args    []any
	)
	if !q.Since.IsZero() {
		clauses = append(clauses, "started_at >= ?")
		args = append(args, q.Since.UnixNano())
	}
	if !q.Until.IsZero() {
		clauses = append(clauses, "started_at < ?")
		args = append(args, q.Until.UnixNano())
	}
	if q.Outcome != "" {
		clauses = append(clauses, "outcome = ?")
		args = append(args, string(q.Outcome))
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
