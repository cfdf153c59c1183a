// Package shutdown provides graceful shutdown for stakewatch.
//
// A Handler waits for SIGINT/SIGTERM (or a cancelled context, e.g. when a
// listener fails) and then runs named hooks in reverse registration order
// under one shared deadline.
//
// Usage:
//
//	h := shutdown.NewHandler(10*time.Second, logger)
//	h.OnShutdown("store", func(ctx context.Context) error { return store.Close() })
//	err := h.Wait(ctx)
package shutdown
