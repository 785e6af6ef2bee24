package history

import (
	"context"
	"fmt"
	"time"

	"mercator-hq/converter/pkg/config"

	"github.com/google/uuid"
)

// Entry statuses.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
	StatusEmpty   = "empty"
)

// Entry describes one export attempt.
type Entry struct {
	ID        string        `json:"id"`
	Format    string        `json:"format"`
	Filename  string        `json:"filename"`
	Path      string        `json:"path,omitempty"`
	Source    string        `json:"source,omitempty"`
	Records   int           `json:"records"`
	Pages     int           `json:"pages,omitempty"`
	Bytes     int64         `json:"bytes"`
	Status    string        `json:"status"`
	Error     string        `json:"error,omitempty"`
	Duration  time.Duration `json:"duration"`
	CreatedAt time.Time     `json:"created_at"`
}

// Store persists export history.
type Store interface {
	// Record stores an entry. An empty ID is filled with a new UUID and a
	// zero CreatedAt with the current time.
	Record(ctx context.Context, entry *Entry) error

	// List returns up to limit entries, newest first. A non-positive limit
	// returns every retained entry.
	List(ctx context.Context, limit int) ([]Entry, error)

	// Close releases the backend.
	Close() error
}

// StorageError represents an error from a history backend.
type StorageError struct {
	Backend   string
	Operation string
	Cause     error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	return fmt.Sprintf("history error [backend=%s, operation=%s]: %v", e.Backend, e.Operation, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *StorageError) Unwrap() error {
	return e.Cause
}

// NewStorageError creates a new StorageError.
func NewStorageError(backend, operation string, cause error) *StorageError {
	return &StorageError{Backend: backend, Operation: operation, Cause: cause}
}

// New creates the store selected by cfg.
func New(cfg *config.HistoryConfig) (Store, error) {
	if cfg == nil || !cfg.Enabled {
		return NopStore{}, nil
	}

	switch cfg.Backend {
	case "", "memory":
		return NewMemoryStore(cfg.Limit), nil
	case "sqlite":
		return NewSQLiteStore(&cfg.SQLite, cfg.Limit)
	default:
		return nil, fmt.Errorf("unsupported history backend %q", cfg.Backend)
	}
}

// prepare fills generated fields of entry.
func prepare(entry *Entry) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
}

// NopStore discards entries.
type NopStore struct{}

// Record implements Store.
func (NopStore) Record(context.Context, *Entry) error { return nil }

// List implements Store.
func (NopStore) List(context.Context, int) ([]Entry, error) { return nil, nil }

// Close implements Store.
func (NopStore) Close() error { return nil }
