// Package storage provides the record store for stakewatch.
//
// A record store persists independent JSON records addressed by
// (collection, id). There are no cross-record transactions; each record
// is a self-contained unit that is created, read, replaced or removed whole.
//
// Engines:
//
//   - FileStore: one file per record under <dir>/<collection>/<id>.json
//   - BadgerStore: embedded Badger v3 database, keys "<collection>/<id>"
//   - memory.Store (subpackage): in-process map, for tests and ephemeral runs
//
// Create is atomic create-if-absent in every engine: the check for an
// existing record and the write happen as one operation of the engine
// itself, so two racing creates for the same id admit exactly one.
package storage
