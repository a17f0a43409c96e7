// Package audit defines the relay audit log.
//
// One Record is written per relay request. It holds request metadata and
// counters only (turn count, fragments received, events emitted, outcome,
// timings), never the contents of the conversation, so the audit log is not
// a transcript store.
//
// Subpackages:
//
//   - storage: memory and SQLite backends (pure-Go "sqlite" or cgo "sqlite3")
//   - recorder: asynchronous buffered writer used by the relay
//   - retention: age-based pruning on a cron schedule
package audit
