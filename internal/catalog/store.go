package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

const driverSQLite = "sqlite3"

var (
	ErrNotFound = errors.New("plant not found")
	ErrInvalid  = errors.New("invalid plant")
)

// Store is the SQLite-backed plant catalog.
type Store struct {
	db *sql.DB

	mu    sync.RWMutex
	hooks []func(id int64)
}

// Open connects to the catalog database at path and runs the migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	dsn, memory, err := buildDSN(path)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driverSQLite, dsn)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	if memory {
		// every connection to :memory: is a separate database
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping catalog: %w", err)
	}

	s := &Store{db: db}
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// OnChange registers fn to be called with the canonical id of every entry whose
// names or synonyms were written.
func (s *Store) OnChange(fn func(id int64)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = append(s.hooks, fn)
}

func (s *Store) notify(id int64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, fn := range s.hooks {
		fn(id)
	}
}

func buildDSN(path string) (string, bool, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", false, errors.New("catalog path is required")
	}
	if path == ":memory:" {
		return "file::memory:?_foreign_keys=on", true, nil
	}
	if err := ensureDir(path); err != nil {
		return "", false, err
	}
	return "file:" + filepath.Clean(path) + "?_foreign_keys=on&_busy_timeout=5000", false, nil
}

func ensureDir(path string) error {
	dir := filepath.Dir(filepath.Clean(path))
	if dir == "." || dir == string(filepath.Separator) {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create catalog directory: %w", err)
	}
	return nil
}
