package storage

import (
	"fmt"

	"mercator-hq/interviewer/pkg/audit"
	"mercator-hq/interviewer/pkg/config"
)

// New creates the backend selected by cfg.
func New(cfg config.AuditConfig) (audit.Storage, error) {
	switch cfg.Backend {
	case "memory":
		return NewMemoryStorage(), nil
	case "sqlite", "":
		return NewSQLiteStorage(SQLiteConfig{
			Driver:      cfg.SQLite.Driver,
			Path:        cfg.SQLite.Path,
			BusyTimeout: cfg.SQLite.BusyTimeout,
			WALMode:     true,
		})
	default:
		return nil, fmt.Errorf("unsupported audit backend %q", cfg.Backend)
	}
}
