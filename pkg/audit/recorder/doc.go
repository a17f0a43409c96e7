// Package recorder writes relay audit records asynchronously.
//
// Record never blocks the relay: records are queued on a buffered channel
// and a single worker writes them to the configured audit.Storage. When the
// queue is full the record is dropped and counted. Close drains the queue
// before returning.
package recorder
