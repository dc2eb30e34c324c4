package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Common errors
var (
	ErrKeyNotFound = errors.New("key not found")
	ErrClosed      = errors.New("kv engine closed")
)

// Engine names accepted by Open.
const (
	EngineBadger = "badger"
	EngineSQLite = "sqlite"
)

// KVEngine defines the interface for embedded key-value storage.
//
// Implementations must be safe for concurrent use and durable across
// process restarts.
type KVEngine interface {
	// Get retrieves a value by key.
	// Returns ErrKeyNotFound if key doesn't exist.
	Get(ctx context.Context, key []byte) ([]byte, error)

	// Set stores a key-value pair, replacing any previous value.
	Set(ctx context.Context, key, value []byte) error

	// Delete removes a key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key []byte) error

	// Stats returns storage statistics.
	Stats(ctx context.Context) (*KVStats, error)

	// Close gracefully shuts down the KV engine.
	Close() error
}

// KVStats contains storage engine statistics.
type KVStats struct {
	// TotalSize is the total disk usage in bytes.
	TotalSize uint64

	// LSMSize is the LSM tree size (Badger only).
	LSMSize uint64

	// ValueLogSize is the value log size (Badger only).
	ValueLogSize uint64

	// LastGCTime is the last GC run timestamp (Unix milliseconds).
	LastGCTime int64
}

// KVConfig configures an embedded KV engine.
type KVConfig struct {
	// Engine specifies the KV engine type ("badger", "sqlite").
	// Default: "badger"
	Engine string

	// Dir is the storage directory (badger) or database file (sqlite).
	Dir string

	// Badger-specific configuration
	Badger BadgerConfig
}

// BadgerConfig contains Badger-specific tuning parameters.
//
// Defaults are sized for a handful of small keys, not a server workload.
type BadgerConfig struct {
	// GCInterval is the interval between automatic GC runs.
	// Default: 10m
	GCInterval string

	// GCThreshold is the GC discard ratio threshold (0.0-1.0).
	// Default: 0.5
	GCThreshold float64

	// CacheSize is the block cache size in bytes.
	// Default: 1MB
	CacheSize int64

	// ValueLogFileSize is the max value log file size in bytes.
	// Default: 16MB
	ValueLogFileSize int64

	// SyncWrites enables fsync after each write.
	// Default: true (a login must survive a crash right after it)
	SyncWrites bool
}

// DefaultKVConfig returns the default KV configuration.
func DefaultKVConfig(dir string) KVConfig {
	return KVConfig{
		Engine: EngineBadger,
		Dir:    dir,
		Badger: DefaultBadgerConfig(),
	}
}

// DefaultBadgerConfig returns the default Badger configuration.
func DefaultBadgerConfig() BadgerConfig {
	return BadgerConfig{
		GCInterval:       "10m",
		GCThreshold:      0.5,
		CacheSize:        1 << 20,  // 1MB
		ValueLogFileSize: 16 << 20, // 16MB
		SyncWrites:       true,
	}
}

// Open opens the engine named by cfg.Engine.
func Open(cfg KVConfig, logger *slog.Logger) (KVEngine, error) {
	switch strings.ToLower(cfg.Engine) {
	case "", EngineBadger:
		e, err := NewBadgerEngine(cfg, logger)
		if err != nil {
			return nil, err
		}
		return e, nil
	case EngineSQLite:
		e, err := NewSQLiteEngine(cfg, logger)
		if err != nil {
			return nil, err
		}
		return e, nil
	default:
		return nil, fmt.Errorf("storage: unknown engine %q", cfg.Engine)
	}
}
