package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
)

// recordExt is the file extension of a stored record.
const recordExt = ".json"

// FileStore implements RecordStore with one file per record.
type FileStore struct {
	dir    string
	logger *slog.Logger
	closed atomic.Bool
}

// NewFileStore creates a FileStore rooted at dir, creating it if needed.
func NewFileStore(dir string, logger *slog.Logger) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("file store: dir is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("file store: create dir: %w", err)
	}

	logger.Info("file record store opened", "dir", dir)
	return &FileStore{dir: dir, logger: logger}, nil
}

// Path returns the file that holds (collection, id).
func (s *FileStore) Path(collection, id string) string {
	return filepath.Join(s.dir, collection, id+recordExt)
}

// Create stores data under (collection, id) if absent.
func (s *FileStore) Create(ctx context.Context, collection, id string, data []byte) error {
	if s.closed.Load() {
		return ErrClosed
	}
	if err := checkKey(collection, id); err != nil {
		return err
	}
	return createFileExclusive(s.Path(collection, id), data, 0o640)
}

// Read returns the data stored under (collection, id).
func (s *FileStore) Read(ctx context.Context, collection, id string) ([]byte, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}
	if checkKey(collection, id) != nil {
		return nil, ErrRecordNotFound
	}

	data, err := os.ReadFile(s.Path(collection, id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("read %s/%s: %w", collection, id, err)
	}
	return data, nil
}

// Update replaces the data stored under (collection, id).
func (s *FileStore) Update(ctx context.Context, collection, id string, data []byte) error {
	if s.closed.Load() {
		return ErrClosed
	}
	if checkKey(collection, id) != nil {
		return ErrRecordNotFound
	}

	path := s.Path(collection, id)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrRecordNotFound
		}
		return fmt.Errorf("stat %s/%s: %w", collection, id, err)
	}
	return WriteFileAtomic(path, data, 0o640)
}

// Delete removes (collection, id).
func (s *FileStore) Delete(ctx context.Context, collection, id string) error {
	if s.closed.Load() {
		return ErrClosed
	}
	if checkKey(collection, id) != nil {
		return ErrRecordNotFound
	}

	if err := os.Remove(s.Path(collection, id)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrRecordNotFound
		}
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	return nil
}

// Close marks the store closed. Files need no flushing.
func (s *FileStore) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	s.logger.Info("file record store closed", "dir", s.dir)
	return nil
}
