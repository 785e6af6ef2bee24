package history

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"mercator-hq/converter/pkg/config"

	_ "modernc.org/sqlite"
)

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema creates the history tables.
const Schema = `
CREATE TABLE IF NOT EXISTS exports (
    id TEXT PRIMARY KEY,
    format TEXT NOT NULL,
    filename TEXT NOT NULL,
    path TEXT,
    source TEXT,
    records INTEGER NOT NULL,
    pages INTEGER,
    bytes INTEGER NOT NULL,
    status TEXT NOT NULL,
    error TEXT,
    duration_ms INTEGER NOT NULL,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_exports_created_at ON exports(created_at);
`

const insertSchemaVersion = `
INSERT INTO schema_version (version, applied_at)
VALUES (?, datetime('now'))
ON CONFLICT(version) DO NOTHING;
`

const getSchemaVersion = `SELECT version FROM schema_version ORDER BY version DESC LIMIT 1;`

// SQLiteStore persists entries in SQLite.
type SQLiteStore struct {
	db     *sql.DB
	config config.SQLiteConfig
	limit  int
	logger *slog.Logger
}

// NewSQLiteStore opens (or creates) the database at cfg.Path and applies the
// schema. The parent directory is created if needed. When limit is positive,
// only the newest limit entries are retained.
func NewSQLiteStore(cfg *config.SQLiteConfig, limit int) (*SQLiteStore, error) {
	logger := slog.Default().With("component", "history.sqlite")

	if dir := filepath.Dir(cfg.Path); cfg.Path != ":memory:" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, NewStorageError("sqlite", "create_dir", err)
		}
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, NewStorageError("sqlite", "open", err)
	}
	// Pragmas are per connection; a single connection keeps them in effect
	// and serializes writers.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db, config: *cfg, limit: limit, logger: logger}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("history store initialized", "path", cfg.Path, "wal_mode", cfg.WALMode)
	return s, nil
}

func (s *SQLiteStore) initialize() error {
	if s.config.WALMode && s.config.Path != ":memory:" {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return NewStorageError("sqlite", "enable_wal", err)
		}
	}

	if s.config.BusyTimeout > 0 {
		if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", s.config.BusyTimeout.Milliseconds())); err != nil {
			return NewStorageError("sqlite", "set_busy_timeout", err)
		}
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return NewStorageError("sqlite", "create_schema", err)
	}
	if _, err := s.db.Exec(insertSchemaVersion, SchemaVersion); err != nil {
		return NewStorageError("sqlite", "insert_schema_version", err)
	}

	var version int
	if err := s.db.QueryRow(getSchemaVersion).Scan(&version); err != nil {
		return NewStorageError("sqlite", "get_schema_version", err)
	}
	if version != SchemaVersion {
		return NewStorageError("sqlite", "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}
	return nil
}

// Record implements Store.
func (s *SQLiteStore) Record(ctx context.Context, entry *Entry) error {
	prepare(entry)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO exports (
			id, format, filename, path, source,
			records, pages, bytes, status, error,
			duration_ms, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.Format, entry.Filename, nullString(entry.Path), nullString(entry.Source),
		entry.Records, entry.Pages, entry.Bytes, entry.Status, nullString(entry.Error),
		entry.Duration.Milliseconds(), entry.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return NewStorageError("sqlite", "record", err)
	}

	if s.limit > 0 {
		if _, err := s.Prune(ctx, s.limit); err != nil {
			s.logger.Warn("failed to prune history", "error", err)
		}
	}
	return nil
}

// List implements Store.
func (s *SQLiteStore) List(ctx context.Context, limit int) ([]Entry, error) {
	query := `
		SELECT id, format, filename, path, source,
		       records, pages, bytes, status, error,
		       duration_ms, created_at
		FROM exports
		ORDER BY created_at DESC, rowid DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, NewStorageError("sqlite", "list", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e                       Entry
			path, source, errString sql.NullString
			pages                   sql.NullInt64
			durationMs, createdMs   int64
		)
		if err := rows.Scan(
			&e.ID, &e.Format, &e.Filename, &path, &source,
			&e.Records, &pages, &e.Bytes, &e.Status, &errString,
			&durationMs, &createdMs,
		); err != nil {
			return nil, NewStorageError("sqlite", "scan", err)
		}
		e.Path = path.String
		e.Source = source.String
		e.Error = errString.String
		e.Pages = int(pages.Int64)
		e.Duration = time.Duration(durationMs) * time.Millisecond
		e.CreatedAt = time.UnixMilli(createdMs).UTC()
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, NewStorageError("sqlite", "list", err)
	}
	return entries, nil
}

// Prune deletes all but the newest keep entries and returns how many rows
// were removed.
func (s *SQLiteStore) Prune(ctx context.Context, keep int) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM exports WHERE id NOT IN (
			SELECT id FROM exports ORDER BY created_at DESC, rowid DESC LIMIT ?
		)`, keep)
	if err != nil {
		return 0, NewStorageError("sqlite", "prune", err)
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		s.logger.Debug("pruned history", "deleted", n, "kept", keep)
	}
	return n, nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
