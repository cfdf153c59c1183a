// Package snapshot produces and serves the validator snapshot.
//
// The snapshot is a single JSON file rebuilt from the scores database on a
// schedule and replaced wholesale. This package contains:
//
//   - Reader: parses the snapshot file and caches the result until the file
//     changes; a missing or half-written file surfaces as a domain error
//   - Builder: folds rows of the scores2/scores tables into records
//   - Rebuilder: runs the Builder and atomically writes its output
//   - Scheduler: runs a job once a day at a fixed local time
package snapshot
