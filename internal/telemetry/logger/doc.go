// Package logger provides structured logging for stakewatch.
//
// It builds log/slog loggers with:
//
//   - JSON (default) or text output
//   - a process-wide level that can be changed at runtime
//   - redaction of values under sensitive keys (password, token, secret)
//   - context helpers carrying the request id
package logger
