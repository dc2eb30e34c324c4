package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteEngine implements KVEngine on a single SQLite file.
type SQLiteEngine struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
	closed atomic.Bool
}

// NewSQLiteEngine opens (or creates) the database file at cfg.Dir.
func NewSQLiteEngine(cfg KVConfig, logger *slog.Logger) (*SQLiteEngine, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("sqlite: path is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Dir), 0700); err != nil {
		return nil, fmt.Errorf("sqlite: create dir: %w", err)
	}

	db, err := sql.Open("sqlite3", cfg.Dir+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("sqlite: open database: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS kv (
		k BLOB PRIMARY KEY,
		v BLOB NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: create table: %w", err)
	}

	logger.Debug("sqlite engine started", "path", cfg.Dir)

	return &SQLiteEngine{db: db, path: cfg.Dir, logger: logger}, nil
}

// Get retrieves a value by key.
func (e *SQLiteEngine) Get(ctx context.Context, key []byte) ([]byte, error) {
	if e.closed.Load() {
		return nil, ErrClosed
	}

	var value []byte
	err := e.db.QueryRowContext(ctx, `SELECT v FROM kv WHERE k = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrKeyNotFound
		}
		return nil, err
	}
	return value, nil
}

// Set stores a key-value pair.
func (e *SQLiteEngine) Set(ctx context.Context, key, value []byte) error {
	if e.closed.Load() {
		return ErrClosed
	}
	_, err := e.db.ExecContext(ctx,
		`INSERT INTO kv (k, v) VALUES (?, ?) ON CONFLICT(k) DO UPDATE SET v = excluded.v`,
		key, value)
	return err
}

// Delete removes a key.
func (e *SQLiteEngine) Delete(ctx context.Context, key []byte) error {
	if e.closed.Load() {
		return ErrClosed
	}
	_, err := e.db.ExecContext(ctx, `DELETE FROM kv WHERE k = ?`, key)
	return err
}

// Stats returns the database file size.
func (e *SQLiteEngine) Stats(ctx context.Context) (*KVStats, error) {
	if e.closed.Load() {
		return nil, ErrClosed
	}
	fi, err := os.Stat(e.path)
	if err != nil {
		return nil, err
	}
	return &KVStats{TotalSize: uint64(fi.Size())}, nil
}

// Close closes the database.
func (e *SQLiteEngine) Close() error {
	if !e.closed.CompareAndSwap(false, true) {
		return nil
	}
	return e.db.Close()
}
