package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/yndnr/stakewatch/internal/core/domain"
	"github.com/yndnr/stakewatch/internal/infra/confloader"
	"github.com/yndnr/stakewatch/internal/telemetry/metric"
)

// Reader loads the snapshot file. Parsed records are cached until the
// file's size or modification time changes, or Invalidate is called.
//
// Callers must treat the returned slice as read-only.
type Reader struct {
	path   string
	logger *slog.Logger

	mu      sync.RWMutex
	records []domain.ValidatorRecord
	modTime time.Time
	size    int64
	valid   bool
}

// NewReader creates a Reader for the snapshot at path.
func NewReader(path string, logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reader{path: path, logger: logger}
}

// Path returns the snapshot file path.
func (r *Reader) Path() string {
	return r.path
}

// Load returns the snapshot records in file order. It returns
// domain.ErrSnapshotUnavailable when the file does not exist and
// domain.ErrSnapshotCorrupt when it cannot be read or parsed.
func (r *Reader) Load(ctx context.Context) ([]domain.ValidatorRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info, err := os.Stat(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			metric.SnapshotLoads.WithLabelValues("missing").Inc()
			return nil, domain.ErrSnapshotUnavailable
		}
		metric.SnapshotLoads.WithLabelValues("corrupt").Inc()
		return nil, domain.ErrSnapshotCorrupt.WithCause(err)
	}

	r.mu.RLock()
	if r.valid && info.ModTime().Equal(r.modTime) && info.Size() == r.size {
		records := r.records
		r.mu.RUnlock()
		metric.SnapshotLoads.WithLabelValues("cached").Inc()
		return records, nil
	}
	r.mu.RUnlock()

	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			metric.SnapshotLoads.WithLabelValues("missing").Inc()
			return nil, domain.ErrSnapshotUnavailable
		}
		metric.SnapshotLoads.WithLabelValues("corrupt").Inc()
		return nil, domain.ErrSnapshotCorrupt.WithCause(err)
	}

	records, err := Parse(data)
	if err != nil {
		metric.SnapshotLoads.WithLabelValues("corrupt").Inc()
		r.logger.Warn("snapshot could not be parsed",
			"path", r.path,
			"size", len(data),
			"error", err,
		)
		return nil, domain.ErrSnapshotCorrupt.WithCause(err)
	}

	r.mu.Lock()
	r.records = records
	r.modTime = info.ModTime()
	r.size = info.Size()
	r.valid = true
	r.mu.Unlock()

	metric.SnapshotLoads.WithLabelValues("ok").Inc()
	metric.SnapshotEntries.Set(float64(len(records)))
	r.logger.Debug("snapshot loaded", "path", r.path, "validators", len(records))
	return records, nil
}

// Invalidate drops the cached records.
func (r *Reader) Invalidate() {
	r.mu.Lock()
	r.records = nil
	r.valid = false
	r.mu.Unlock()
}

// Watch registers the snapshot file with w so that any change to it
// invalidates the cache. The snapshot directory is created if missing.
func (r *Reader) Watch(w *confloader.Watcher) error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("create snapshot directory: %w", err)
	}
	target := filepath.Clean(r.path)
	w.OnChange(func(changed string) {
		if filepath.Clean(changed) == target {
			r.logger.Debug("snapshot changed, dropping cache", "path", changed)
			r.Invalidate()
		}
	})
	return w.Watch(r.path)
}

// Parse decodes a snapshot. Both a JSON array of records and an object
// keyed by vote address are accepted; records keep file order either way.
func Parse(data []byte) ([]domain.ValidatorRecord, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, errors.New("empty snapshot")
	}

	switch data[0] {
	case '[':
		var records []domain.ValidatorRecord
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, err
		}
		if records == nil {
			records = []domain.ValidatorRecord{}
		}
		return records, nil
	case '{':
		return parseKeyed(data)
	default:
		return nil, fmt.Errorf("snapshot must be a JSON array or object, got %q", data[0])
	}
}

// parseKeyed walks the object with a token decoder so that entries come
// back in the order they appear in the file.
func parseKeyed(data []byte) ([]domain.ValidatorRecord, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil {
		return nil, err
	}

	records := []domain.ValidatorRecord{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected key token %v", tok)
		}

		var rec domain.ValidatorRecord
		if err := dec.Decode(&rec); err != nil {
			return nil, fmt.Errorf("entry %q: %w", key, err)
		}
		if rec.VoteAddress == "" {
			rec.VoteAddress = key
		}
		records = append(records, rec)
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("trailing data after snapshot object")
	}
	return records, nil
}
