package recorder

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"mercator-hq/interviewer/pkg/audit"
	"mercator-hq/interviewer/pkg/config"
)

// Config contains configuration for the recorder.
type Config struct {
	// AsyncBuffer is the queue capacity.
	// Default: 1000
	AsyncBuffer int

	// WriteTimeout bounds a single storage write.
	// Default: 5 seconds
	WriteTimeout time.Duration
}

// FromConfig converts the audit section of the file config.
func FromConfig(cfg config.AuditConfig) Config {
	return Config{AsyncBuffer: cfg.AsyncBuffer, WriteTimeout: cfg.WriteTimeout}
}

// Stats are the recorder counters.
type Stats struct {
	Queued  int64
	Written int64
	Failed  int64
	Dropped int64
}

// Recorder queues audit records and writes them in the background.
type Recorder struct {
	storage audit.Storage
	config  Config
	records chan *audit.Record
	done    chan struct{}
	wg      sync.WaitGroup
	logger  *slog.Logger

	mu     sync.RWMutex
	closed bool

	queued  atomic.Int64
	written atomic.Int64
	failed  atomic.Int64
	dropped atomic.Int64
}

// NewRecorder starts a recorder writing to storage.
func NewRecorder(storage audit.Storage, cfg Config) *Recorder {
	if cfg.AsyncBuffer <= 0 {
		cfg.AsyncBuffer = config.DefaultAuditBuffer
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = config.DefaultAuditWriteTimeout
	}

	r := &Recorder{
		storage: storage,
		config:  cfg,
		records: make(chan *audit.Record, cfg.AsyncBuffer),
		done:    make(chan struct{}),
		logger:  slog.Default().With("component", "audit.recorder"),
	}

	r.wg.Add(1)
	go r.worker()

	r.logger.Info("audit recorder initialized",
		"async_buffer", cfg.AsyncBuffer,
		"write_timeout", cfg.WriteTimeout,
	)
	return r
}

// Record enqueues record without blocking. A record without an ID gets one.
// It returns audit.ErrClosed after Close; a full queue drops the record and
// returns nil.
func (r *Recorder) Record(record *audit.Record) error {
	if record == nil {
		return nil
	}
	if record.ID == "" {
		record.ID = uuid.NewString()
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return audit.ErrClosed
	}

	select {
	case r.records <- record:
		r.queued.Add(1)
	default:
		r.dropped.Add(1)
		r.logger.Warn("audit queue full, dropping record",
			"record_id", record.ID,
			"request_id", record.RequestID,
			"capacity", r.config.AsyncBuffer,
		)
	}
	return nil
}

// Stats returns a snapshot of the counters.
func (r *Recorder) Stats() Stats {
	return Stats{
		Queued:  r.queued.Load(),
		Written: r.written.Load(),
		Failed:  r.failed.Load(),
		Dropped: r.dropped.Load(),
	}
}

// Close stops accepting records, drains the queue and waits for the worker.
// It does not close the storage.
func (r *Recorder) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	close(r.done)
	r.mu.Unlock()

	r.wg.Wait()
	r.logger.Info("audit recorder stopped",
		"written", r.written.Load(),
		"failed", r.failed.Load(),
		"dropped", r.dropped.Load(),
	)
	return nil
}

func (r *Recorder) worker() {
	defer r.wg.Done()

	for {
		select {
		case record := <-r.records:
			r.write(record)
		case <-r.done:
			for {
				select {
				case record := <-r.records:
					r.write(record)
				default:
					return
				}
			}
		}
	}
}

func (r *Recorder) write(record *audit.Record) {
	ctx, cancel := context.WithTimeout(context.Background(), r.config.WriteTimeout)
	defer cancel()

	start := time.Now()
	if err := r.storage.Store(ctx, record); err != nil {
		r.failed.Add(1)
		r.logger.Error("failed to store audit record",
			"record_id", record.ID,
			"request_id", record.RequestID,
			"error", err,
		)
		return
	}
	r.written.Add(1)

	elapsed := time.Since(start)
	r.logger.Debug("audit record written",
		"record_id", record.ID,
		"request_id", record.RequestID,
		"outcome", record.Outcome,
		"duration_ms", elapsed.Milliseconds(),
	)
	if elapsed > r.config.WriteTimeout/2 {
		r.logger.Warn("slow audit write",
			"record_id", record.ID,
			"duration_ms", elapsed.Milliseconds(),
		)
	}
}
