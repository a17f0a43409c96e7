// Package storage provides audit.Storage backends.
//
// MemoryStorage keeps records in a slice and suits tests and short-lived
// runs. SQLiteStorage persists to a single database file through either
// SQL driver registered in this package:
//
//   - "sqlite": modernc.org/sqlite, pure Go, no cgo required (default)
//   - "sqlite3": github.com/mattn/go-sqlite3, requires cgo
//
// Timestamps and durations are stored as integer nanoseconds so both
// drivers read back identical values.
package storage
