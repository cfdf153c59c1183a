// Package cmap is a concurrent map split into shards, each guarded by its
// own RWMutex. Keys are spread over the shards with hash/maphash.
//
// Single-key operations are atomic, including the conditional ones
// (SetIfAbsent, SetIfPresent, Pop). Range and Count visit the shards one at
// a time and so do not see a consistent snapshot of the whole map.
package cmap
