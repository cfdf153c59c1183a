package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Common errors
var (
	ErrRecordNotFound = errors.New("record not found")
	ErrRecordExists   = errors.New("record already exists")
	ErrInvalidKey     = errors.New("invalid record key")
	ErrClosed         = errors.New("record store closed")
)

// Collection names used by the services.
const (
	CollectionUsers  = "users"
	CollectionTokens = "tokens"
)

// RecordStore persists serialized records addressed by (collection, id).
//
// Implementations must be safe for concurrent use. Read, Update and Delete
// on an id that cannot be a valid key report ErrRecordNotFound; Create
// reports ErrInvalidKey.
type RecordStore interface {
	// Create stores data under (collection, id).
	// Returns ErrRecordExists if the id is already present.
	Create(ctx context.Context, collection, id string, data []byte) error

	// Read returns the data stored under (collection, id).
	// Returns ErrRecordNotFound if absent.
	Read(ctx context.Context, collection, id string) ([]byte, error)

	// Update replaces the data stored under (collection, id).
	// Returns ErrRecordNotFound if absent.
	Update(ctx context.Context, collection, id string, data []byte) error

	// Delete removes (collection, id).
	// Returns ErrRecordNotFound if absent.
	Delete(ctx context.Context, collection, id string) error

	// Close releases engine resources.
	Close() error
}

// CreateJSON marshals v and creates it under (collection, id).
func CreateJSON(ctx context.Context, s RecordStore, collection, id string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s/%s: %w", collection, id, err)
	}
	return s.Create(ctx, collection, id, data)
}

// ReadJSON reads (collection, id) and unmarshals it into v.
func ReadJSON(ctx context.Context, s RecordStore, collection, id string, v any) error {
	data, err := s.Read(ctx, collection, id)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("unmarshal %s/%s: %w", collection, id, err)
	}
	return nil
}

// UpdateJSON marshals v and replaces (collection, id) with it.
func UpdateJSON(ctx context.Context, s RecordStore, collection, id string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s/%s: %w", collection, id, err)
	}
	return s.Update(ctx, collection, id, data)
}

// ValidKey reports whether a collection or id can address a record.
// Keys map onto file names, so separators, NUL and dot-only names are rejected.
func ValidKey(s string) bool {
	if s == "" || s == "." || s == ".." {
		return false
	}
	return !strings.ContainsAny(s, "/\\\x00")
}

func checkKey(collection, id string) error {
	if !ValidKey(collection) || !ValidKey(id) {
		return fmt.Errorf("%w: %q/%q", ErrInvalidKey, collection, id)
	}
	return nil
}

// Config configures the record store engine.
type Config struct {
	// Engine selects the implementation ("file", "badger", "memory").
	// Default: "file"
	Engine string

	// Dir is the storage directory.
	Dir string

	// Badger-specific configuration
	Badger BadgerConfig
}

// BadgerConfig contains Badger-specific tuning parameters.
type BadgerConfig struct {
	// GCInterval is the interval between automatic value log GC runs.
	// Default: 10m
	GCInterval string

	// GCThreshold is the GC discard ratio threshold (0.0-1.0).
	// Default: 0.5
	GCThreshold float64

	// CacheSize is the block cache size in bytes.
	// Default: 16MB
	CacheSize int64

	// ValueLogFileSize is the max value log file size in bytes.
	// Default: 64MB
	ValueLogFileSize int64

	// SyncWrites enables fsync after each write.
	// Default: true
	SyncWrites bool

	// CreateRetries bounds retries of a create that lost a commit race.
	// Default: 3
	CreateRetries int
}

// DefaultConfig returns the default record store configuration.
func DefaultConfig(dir string) Config {
	return Config{
		Engine: "file",
		Dir:    dir,
		Badger: DefaultBadgerConfig(),
	}
}

// DefaultBadgerConfig returns the default Badger configuration.
func DefaultBadgerConfig() BadgerConfig {
	return BadgerConfig{
		GCInterval:       "10m",
		GCThreshold:      0.5,
		CacheSize:        16 << 20, // 16MB
		ValueLogFileSize: 64 << 20, // 64MB
		SyncWrites:       true,
		CreateRetries:    3,
	}
}
