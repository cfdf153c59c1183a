package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/prometheus/client_golang/prometheus"
)

// BadgerStore implements RecordStore using Badger v3.
//
// Conflict detection is always on: Create reads the key and writes it in one
// transaction, and a concurrent commit touching the same key makes the loser
// fail with badger.ErrConflict, after which it retries and observes the
// winner's record.
type BadgerStore struct {
	db     *badger.DB
	cfg    BadgerConfig
	logger *slog.Logger

	lastGCTime atomic.Int64 // Unix milliseconds
	gcRuns     atomic.Uint64

	// Prometheus metrics
	metricsLSMSize      prometheus.Gauge
	metricsValueLogSize prometheus.Gauge
	metricsGCRuns       prometheus.Counter

	// Shutdown
	closeOnce sync.Once
	stopCh    chan struct{}
	doneCh    chan struct{}
}

// NewBadgerStore opens a Badger database in cfg.Dir.
func NewBadgerStore(cfg Config, logger *slog.Logger) (*BadgerStore, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("badger: dir is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	badgerCfg := cfg.Badger
	if badgerCfg.CreateRetries < 1 {
		badgerCfg.CreateRetries = 1
	}

	opts := badger.DefaultOptions(cfg.Dir)
	opts.Logger = &badgerLogger{logger: logger}
	opts.BlockCacheSize = badgerCfg.CacheSize
	opts.ValueLogFileSize = badgerCfg.ValueLogFileSize
	opts.SyncWrites = badgerCfg.SyncWrites
	opts.DetectConflicts = true

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badger: open db: %w", err)
	}

	s := &BadgerStore{
		db:     db,
		cfg:    badgerCfg,
		logger: logger,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}

	go s.gcLoop()

	logger.Info("badger record store opened",
		"dir", cfg.Dir,
		"cache_size", badgerCfg.CacheSize,
		"gc_interval", badgerCfg.GCInterval)

	return s, nil
}

func recordKey(collection, id string) []byte {
	return []byte(collection + "/" + id)
}

// Create stores data under (collection, id) if absent.
func (s *BadgerStore) Create(ctx context.Context, collection, id string, data []byte) error {
	if err := checkKey(collection, id); err != nil {
		return err
	}
	key := recordKey(collection, id)

	var err error
	for attempt := 0; attempt < s.cfg.CreateRetries; attempt++ {
		err = s.db.Update(func(txn *badger.Txn) error {
			_, err := txn.Get(key)
			switch {
			case err == nil:
				return ErrRecordExists
			case !errors.Is(err, badger.ErrKeyNotFound):
				return err
			}
			return txn.Set(key, data)
		})
		if !errors.Is(err, badger.ErrConflict) {
			break
		}
		s.logger.Debug("create lost commit race, retrying",
			"collection", collection,
			"attempt", attempt+1)
	}
	return s.translate(err)
}

// Read returns the data stored under (collection, id).
func (s *BadgerStore) Read(ctx context.Context, collection, id string) ([]byte, error) {
	if checkKey(collection, id) != nil {
		return nil, ErrRecordNotFound
	}

	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(recordKey(collection, id))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, s.translate(err)
	}
	return value, nil
}

// Update replaces the data stored under (collection, id).
func (s *BadgerStore) Update(ctx context.Context, collection, id string, data []byte) error {
	if checkKey(collection, id) != nil {
		return ErrRecordNotFound
	}
	key := recordKey(collection, id)

	return s.translate(s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err != nil {
			return err
		}
		return txn.Set(key, data)
	}))
}

// Delete removes (collection, id).
func (s *BadgerStore) Delete(ctx context.Context, collection, id string) error {
	if checkKey(collection, id) != nil {
		return ErrRecordNotFound
	}
	key := recordKey(collection, id)

	return s.translate(s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err != nil {
			return err
		}
		return txn.Delete(key)
	}))
}

// translate maps Badger errors onto the RecordStore errors.
func (s *BadgerStore) translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, badger.ErrKeyNotFound):
		return ErrRecordNotFound
	case errors.Is(err, badger.ErrDBClosed):
		return ErrClosed
	case errors.Is(err, ErrRecordExists), errors.Is(err, ErrRecordNotFound):
		return err
	default:
		return fmt.Errorf("badger: %w", err)
	}
}

// GC runs value log garbage collection until nothing more can be rewritten.
func (s *BadgerStore) GC(ctx context.Context) error {
	start := time.Now()
	rewrites := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := s.db.RunValueLogGC(s.cfg.GCThreshold)
		if err != nil {
			if errors.Is(err, badger.ErrNoRewrite) {
				break
			}
			return fmt.Errorf("gc: %w", err)
		}
		rewrites++
	}

	s.lastGCTime.Store(time.Now().UnixMilli())
	s.gcRuns.Add(1)
	if s.metricsGCRuns != nil {
		s.metricsGCRuns.Inc()
	}

	s.logger.Debug("gc completed",
		"rewrites", rewrites,
		"elapsed", time.Since(start))
	return nil
}

// Size returns the LSM and value log sizes in bytes.
func (s *BadgerStore) Size() (lsm, vlog int64) {
	return s.db.Size()
}

// Close gracefully shuts down the store.
func (s *BadgerStore) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.logger.Info("shutting down badger record store")
		close(s.stopCh)
		<-s.doneCh
		if cerr := s.db.Close(); cerr != nil {
			err = fmt.Errorf("close db: %w", cerr)
		}
	})
	return err
}

// RegisterMetrics registers Badger size and GC metrics.
// Returns the store for method chaining.
func (s *BadgerStore) RegisterMetrics(reg prometheus.Registerer) *BadgerStore {
	s.metricsLSMSize = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "stakewatch",
		Subsystem: "badger",
		Name:      "lsm_size_bytes",
		Help:      "Badger LSM tree size in bytes",
	})
	s.metricsValueLogSize = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "stakewatch",
		Subsystem: "badger",
		Name:      "value_log_size_bytes",
		Help:      "Badger value log size in bytes",
	})
	s.metricsGCRuns = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "stakewatch",
		Subsystem: "badger",
		Name:      "gc_runs_total",
		Help:      "Completed Badger value log GC passes",
	})

	reg.MustRegister(s.metricsLSMSize, s.metricsValueLogSize, s.metricsGCRuns)

	go s.metricsUpdateLoop()
	return s
}

func (s *BadgerStore) metricsUpdateLoop() {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			lsm, vlog := s.db.Size()
			s.metricsLSMSize.Set(float64(lsm))
			s.metricsValueLogSize.Set(float64(vlog))
		case <-s.stopCh:
			return
		}
	}
}

// gcLoop runs periodic garbage collection.
func (s *BadgerStore) gcLoop() {
	defer close(s.doneCh)

	interval, err := time.ParseDuration(s.cfg.GCInterval)
	if err != nil || interval <= 0 {
		s.logger.Error("invalid gc_interval, using default 10m", "value", s.cfg.GCInterval)
		interval = 10 * time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			if err := s.GC(ctx); err != nil {
				s.logger.Error("auto gc failed", "error", err)
			}
			cancel()
		case <-s.stopCh:
			return
		}
	}
}

// badgerLogger adapts slog.Logger to Badger's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}
