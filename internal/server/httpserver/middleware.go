package httpserver

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/time/rate"

	"github.com/yndnr/stakewatch/internal/core/domain"
	"github.com/yndnr/stakewatch/internal/telemetry/logger"
	"github.com/yndnr/stakewatch/internal/telemetry/metric"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

// Middleware wraps an http.Handler with additional functionality.
type Middleware func(http.Handler) http.Handler

// Chain chains multiple middlewares together. The first middleware is the
// outermost.
func Chain(h http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

// RequestID adds a request id to the response header and the request
// context, reusing the caller's id when one is sent.
func RequestID(base *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(RequestIDHeader)
			if requestID == "" || len(requestID) > 64 {
				requestID = ulid.Make().String()
			}
			w.Header().Set(RequestIDHeader, requestID)

			ctx := logger.WithRequestID(r.Context(), requestID)
			ctx = logger.WithLogger(ctx, base.With("request_id", requestID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CORS sets the fixed cross-origin headers on every response. Preflight
// requests are not answered here; they reach the resource like any other
// method.
func CORS() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", "*")
			h.Set("Access-Control-Allow-Methods", "OPTIONS, GET")
			h.Set("Access-Control-Max-Age", "2592000")
			next.ServeHTTP(w, r)
		})
	}
}

// RateLimit allows each client IP rps requests per second with a burst of
// burst. Idle limiters are dropped after ten minutes. The client IP is
// resolved through proxies.
func RateLimit(rps float64, burst int, proxies TrustedProxies, log *slog.Logger) Middleware {
	if burst < 1 {
		burst = 1
	}
	limiters := newLimiterSet(rate.Limit(rps), burst, 10*time.Minute)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := proxies.ClientIP(r)
			if !limiters.allow(ip, time.Now()) {
				metric.RateLimitRejects.Inc()
				log.Debug("rate limited", "client_ip", ip, "path", r.URL.Path)
				w.Header().Set("Retry-After", "1")
				writeError(w, domain.ErrRateLimited)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type limiterSet struct {
	mu        sync.Mutex
	entries   map[string]*limiterEntry
	limit     rate.Limit
	burst     int
	idle      time.Duration
	lastSweep time.Time
}

func newLimiterSet(limit rate.Limit, burst int, idle time.Duration) *limiterSet {
	return &limiterSet{
		entries: make(map[string]*limiterEntry),
		limit:   limit,
		burst:   burst,
		idle:    idle,
	}
}

func (s *limiterSet) allow(key string, now time.Time) bool {
	s.mu.Lock()
	if now.Sub(s.lastSweep) > s.idle {
		for k, e := range s.entries {
			if now.Sub(e.lastSeen) > s.idle {
				delete(s.entries, k)
			}
		}
		s.lastSweep = now
	}

	e, ok := s.entries[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(s.limit, s.burst)}
		s.entries[key] = e
	}
	e.lastSeen = now
	lim := e.limiter
	s.mu.Unlock()

	return lim.AllowN(now, 1)
}

func (s *limiterSet) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Metrics records request counts, latency and in-flight requests. Requests
// are labelled by their first path segment when it is one of resources and
// by "other" otherwise, which keeps label cardinality fixed.
func Metrics(resources []string) Middleware {
	known := make(map[string]bool, len(resources))
	for _, r := range resources {
		known[r] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			metric.RequestsInFlight.Inc()
			defer metric.RequestsInFlight.Dec()

			start := time.Now()
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapped, r)

			resource, _, _ := strings.Cut(strings.Trim(r.URL.Path, "/"), "/")
			if !known[resource] {
				resource = "other"
			}
			method := r.Method
			switch method {
			case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions:
			default:
				method = "other"
			}

			metric.RequestsTotal.WithLabelValues(resource, method, fmt.Sprint(wrapped.statusCode)).Inc()
			metric.RequestDuration.WithLabelValues(resource, method).Observe(time.Since(start).Seconds())
		})
	}
}

// Audit logs one line per request: warn for 4xx, error for 5xx.
func Audit(log *slog.Logger, proxies TrustedProxies) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapped, r)

			attrs := []any{
				"request_id", logger.RequestIDFromContext(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"status", wrapped.statusCode,
				"duration_ms", time.Since(start).Milliseconds(),
				"client_ip", proxies.ClientIP(r),
			}

			switch {
			case wrapped.statusCode >= 500:
				log.Error("request completed with error", attrs...)
			case wrapped.statusCode >= 400:
				log.Warn("request completed with client error", attrs...)
			default:
				log.Info("request completed", attrs...)
			}
		})
	}
}

// Recover turns a panic into a 500 response.
func Recover(log *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler {
						panic(err)
					}
					metric.PanicRecoveries.Inc()
					log.Error("panic recovered",
						"request_id", logger.RequestIDFromContext(r.Context()),
						"error", err,
						"path", r.URL.Path,
					)
					writeError(w, domain.ErrInternalServer)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (w *responseWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.statusCode = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *responseWriter) Write(b []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(b)
}

func (w *responseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// writeError writes a domain error in the API's {"Error": message} shape.
func writeError(w http.ResponseWriter, err *domain.DomainError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.Status())
	json.NewEncoder(w).Encode(map[string]string{"Error": err.Message})
}
