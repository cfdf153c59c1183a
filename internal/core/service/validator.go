package service

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/yndnr/stakewatch/internal/core/domain"
	"github.com/yndnr/stakewatch/internal/telemetry/metric"
)

// SnapshotSource loads the current validator snapshot. Implementations
// return domain.ErrSnapshotUnavailable when there is no snapshot and
// domain.ErrSnapshotCorrupt when it cannot be parsed.
type SnapshotSource interface {
	Load(ctx context.Context) ([]domain.ValidatorRecord, error)
}

// HistoryRebuilder writes the ad hoc history output for epochs above floor.
type HistoryRebuilder interface {
	RebuildHistory(ctx context.Context, floor int64) error
}

// ValidatorPage is one page of the snapshot.
type ValidatorPage struct {
	TotalPages int                      `json:"totalPages"`
	Validators []domain.ValidatorRecord `json:"validators"`
}

// ValidatorCount is the number of snapshot entries.
type ValidatorCount struct {
	Count int `json:"count"`
}

// ValidatorService serves read-only views of the validator snapshot and
// triggers the ad hoc history rebuild.
type ValidatorService struct {
	source    SnapshotSource
	rebuilder HistoryRebuilder
	logger    *slog.Logger

	group   singleflight.Group
	running sync.WaitGroup
	// serial orders runs for different floors; they share one output file.
	serial sync.Mutex
}

// NewValidatorService creates a ValidatorService. rebuilder may be nil, in
// which case Rebuild only logs.
func NewValidatorService(source SnapshotSource, rebuilder HistoryRebuilder, opts ...Option) *ValidatorService {
	o := applyOptions(opts)
	return &ValidatorService{
		source:    source,
		rebuilder: rebuilder,
		logger:    o.logger,
	}
}

// List returns the requested page. Each entry's epoch_stats are in
// descending epoch order; entries keep snapshot order. Pages past the end
// are empty but still report the real page count.
func (s *ValidatorService) List(ctx context.Context, page, limit string) (*ValidatorPage, error) {
	pageNum, err := parsePage(page)
	if err != nil {
		return nil, err
	}
	limitNum := parseLimit(limit)

	records, err := s.source.Load(ctx)
	if err != nil {
		return nil, err
	}

	window := domain.Paginate(len(records), pageNum, limitNum)
	out := make([]domain.ValidatorRecord, 0, window.End-window.Start)
	for i := window.Start; i < window.End; i++ {
		out = append(out, records[i].Descending())
	}

	return &ValidatorPage{
		TotalPages: window.TotalPages,
		Validators: out,
	}, nil
}

// Count returns the number of snapshot entries.
func (s *ValidatorService) Count(ctx context.Context) (*ValidatorCount, error) {
	records, err := s.source.Load(ctx)
	if err != nil {
		return nil, err
	}
	return &ValidatorCount{Count: len(records)}, nil
}

// Rebuild starts the ad hoc history rebuild in the background and returns
// at once. epochNum is the exclusive lower epoch bound; anything that is not
// an integer means every epoch. A trigger for the same floor as a pending
// run joins it; a different floor runs after the current one finishes.
func (s *ValidatorService) Rebuild(epochNum string) {
	floor, err := strconv.ParseInt(epochNum, 10, 64)
	if err != nil {
		floor = -1
	}

	if s.rebuilder == nil {
		s.logger.Warn("ad hoc rebuild requested but no rebuilder is configured")
		return
	}

	s.running.Add(1)
	ch := s.group.DoChan("adhoc:"+strconv.FormatInt(floor, 10), func() (any, error) {
		s.serial.Lock()
		defer s.serial.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()

		if err := s.rebuilder.RebuildHistory(ctx, floor); err != nil {
			metric.SnapshotRebuilds.WithLabelValues("adhoc", "error").Inc()
			s.logger.Error("ad hoc rebuild failed", "floor", floor, "error", err)
			return nil, err
		}
		metric.SnapshotRebuilds.WithLabelValues("adhoc", "ok").Inc()
		s.logger.Info("ad hoc rebuild finished", "floor", floor)
		return nil, nil
	})

	go func() {
		defer s.running.Done()
		<-ch
	}()
}

// Wait blocks until background rebuilds started by Rebuild have finished.
func (s *ValidatorService) Wait() {
	s.running.Wait()
}

// parsePage returns 1 for an empty page and ErrInvalidQuery for anything
// that is not a positive integer.
func parsePage(raw string) (int, error) {
	if raw == "" {
		return 1, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, domain.ErrInvalidQuery
	}
	return n, nil
}

func parseLimit(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return domain.DefaultPageLimit
	}
	return n
}

// IsSnapshotMissing reports whether err means there is no snapshot to serve.
func IsSnapshotMissing(err error) bool {
	return errors.Is(err, domain.ErrSnapshotUnavailable)
}
