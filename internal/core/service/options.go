package service

import (
	"log/slog"
	"time"
)

// PasswordHasher computes and checks password digests.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, encoded string) (bool, error)
}

// Option configures a service.
type Option func(*options)

type options struct {
	now    func() time.Time
	logger *slog.Logger
	ttl    time.Duration
}

func defaultOptions() options {
	return options{
		now:    time.Now,
		logger: slog.Default(),
	}
}

func applyOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithTokenTTL sets the token lifetime used by TokenService.
func WithTokenTTL(ttl time.Duration) Option {
	return func(o *options) {
		if ttl > 0 {
			o.ttl = ttl
		}
	}
}
