package memory

import (
	"bytes"
	"context"
	"sync/atomic"

	"github.com/yndnr/stakewatch/internal/storage"
	"github.com/yndnr/stakewatch/pkg/cmap"
)

type recordKey struct {
	collection string
	id         string
}

// Store keeps records in a sharded in-memory map.
type Store struct {
	records *cmap.Map[recordKey, []byte]
	closed  atomic.Bool
}

// New creates an empty Store.
func New() *Store {
	return &Store{records: cmap.New[recordKey, []byte]()}
}

// Create stores a copy of data under (collection, id) if absent.
func (s *Store) Create(_ context.Context, collection, id string, data []byte) error {
	if !storage.ValidKey(collection) || !storage.ValidKey(id) {
		return storage.ErrInvalidKey
	}
	if s.closed.Load() {
		return storage.ErrClosed
	}
	if !s.records.SetIfAbsent(recordKey{collection, id}, bytes.Clone(data)) {
		return storage.ErrRecordExists
	}
	return nil
}

// Read returns a copy of the data stored under (collection, id).
func (s *Store) Read(_ context.Context, collection, id string) ([]byte, error) {
	if s.closed.Load() {
		return nil, storage.ErrClosed
	}
	data, ok := s.records.Get(recordKey{collection, id})
	if !ok {
		return nil, storage.ErrRecordNotFound
	}
	return bytes.Clone(data), nil
}

// Update replaces the data stored under (collection, id).
func (s *Store) Update(_ context.Context, collection, id string, data []byte) error {
	if s.closed.Load() {
		return storage.ErrClosed
	}
	if !s.records.SetIfPresent(recordKey{collection, id}, bytes.Clone(data)) {
		return storage.ErrRecordNotFound
	}
	return nil
}

// Delete removes (collection, id).
func (s *Store) Delete(_ context.Context, collection, id string) error {
	if s.closed.Load() {
		return storage.ErrClosed
	}
	if _, ok := s.records.Pop(recordKey{collection, id}); !ok {
		return storage.ErrRecordNotFound
	}
	return nil
}

// Len returns the number of records in collection.
func (s *Store) Len(collection string) int {
	n := 0
	s.records.Range(func(k recordKey, _ []byte) bool {
		if k.collection == collection {
			n++
		}
		return true
	})
	return n
}

// Close drops all records.
func (s *Store) Close() error {
	s.closed.Store(true)
	s.records.Clear()
	return nil
}
