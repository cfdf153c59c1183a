// Package memory provides an in-process record store.
//
// It satisfies storage.RecordStore on a pkg/cmap sharded map and is used by
// tests and by the "memory" engine for throwaway runs. Create is atomic per
// key, so concurrent sign-ups for one phone admit exactly one. Data does not
// survive a restart.
package memory
