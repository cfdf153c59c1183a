// Package httpserver runs the stakewatch REST API over HTTP and HTTPS.
//
// NewRouter wraps the handler.Dispatcher in a middleware chain:
//
//   - Recover: panics become 500 responses
//   - RequestID: X-Request-ID header and a request-scoped logger
//   - CORS: fixed wildcard headers on every response
//   - Metrics: Prometheus request counters and latency
//   - Audit: one log line per request
//   - RateLimit: per client IP token buckets (optional)
//
// The plaintext and TLS listeners are separate Servers sharing the handler.
package httpserver
