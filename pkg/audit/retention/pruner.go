package retention

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"mercator-hq/interviewer/pkg/audit"
)

// Pruner deletes audit records older than a retention period.
type Pruner struct {
	storage audit.Storage
	days    int
	now     func() time.Time
	logger  *slog.Logger
}

// NewPruner creates a pruner keeping days of records. Zero or negative days
// keeps records forever.
func NewPruner(storage audit.Storage, days int) *Pruner {
	return &Pruner{
		storage: storage,
		days:    days,
		now:     time.Now,
		logger:  slog.Default().With("component", "audit.retention"),
	}
}

// Cutoff returns the time before which records are deleted.
func (p *Pruner) Cutoff() time.Time {
	return p.now().AddDate(0, 0, -p.days)
}

// Prune deletes expired records and returns how many were removed.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	if p.days <= 0 {
		p.logger.Debug("retention disabled, nothing pruned")
		return 0, nil
	}

	cutoff := p.Cutoff()
	deleted, err := p.storage.DeleteBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune records before %s: %w", cutoff.Format(time.RFC3339), err)
	}

	if deleted > 0 {
		p.logger.Info("audit records pruned",
			"deleted_count", deleted,
			"retention_days", p.days,
			"cutoff", cutoff,
		)
	} else {
		p.logger.Debug("no audit records pruned", "retention_days", p.days)
	}
	return deleted, nil
}
