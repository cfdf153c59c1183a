package snapshot

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
)

// TimeOfDay is a local wall-clock time.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses "HH:MM" in 24-hour form.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("invalid time of day %q: want HH:MM", s)
	}
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}, nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Next returns the first occurrence of t strictly after now, in now's
// location.
func (t TimeOfDay) Next(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), t.Hour, t.Minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// Job is a unit of scheduled work.
type Job func(ctx context.Context) error

// Scheduler runs a Job once a day at a fixed local time.
type Scheduler struct {
	at     TimeOfDay
	job    Job
	logger *slog.Logger
	now    func() time.Time
	after  func(time.Duration) <-chan time.Time
}

// NewScheduler creates a Scheduler that runs job daily at at.
func NewScheduler(at TimeOfDay, job Job, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		at:     at,
		job:    job,
		logger: logger,
		now:    time.Now,
		after:  time.After,
	}
}

// Run blocks, running the job at each scheduled time, until ctx is done.
// A failing job is logged and retried at the next scheduled time.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("snapshot scheduler started", "at", s.at.String())
	for {
		next := s.at.Next(s.now())
		s.logger.Debug("next snapshot rebuild scheduled", "at", next)

		select {
		case <-ctx.Done():
			s.logger.Info("snapshot scheduler stopped")
			return nil
		case <-s.after(next.Sub(s.now())):
		}

		s.RunOnce(ctx)
	}
}

// RunOnce runs the job immediately and reports whether it succeeded.
func (s *Scheduler) RunOnce(ctx context.Context) bool {
	id := ulid.MustNew(ulid.Timestamp(s.now()), rand.Reader).String()
	logger := s.logger.With("job_id", id)

	start := time.Now()
	logger.Info("snapshot job started")
	if err := s.job(ctx); err != nil {
		logger.Error("snapshot job failed",
			"duration", time.Since(start),
			"error", err,
		)
		return false
	}
	logger.Info("snapshot job finished", "duration", time.Since(start))
	return true
}
