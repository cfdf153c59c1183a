// Package metric provides Prometheus metrics for stakewatch.
//
// Collectors are created with promauto against the default registry:
//
//   - HTTP request counts and latency by resource
//   - tokens issued
//   - snapshot loads and rebuild runs by outcome
//
// Storage engines register their own collectors (see storage.BadgerStore).
// Handler exposes everything in the Prometheus text format; the server
// mounts it on a separate listener when server.metrics.addr is set.
package metric
