package journal

import (
	"fmt"

	"scribe-go/internal/config"
	"scribe-go/internal/scribe"
)

// NewJournalFromConfig creates a Journal implementation based on the journal
// config type.
func NewJournalFromConfig(cfg config.JournalConfig, clock scribe.Clock, idgen scribe.IDGenerator) (scribe.Journal, error) {
	switch cfg.Type {
	case "sqlite":
		if cfg.Path == "" {
			return nil, fmt.Errorf("path required for sqlite journal")
		}
		return NewSQLiteJournal(cfg.Path, clock, idgen)
	case "memory":
		return NewSQLiteJournal(":memory:", clock, idgen)
	default:
		return nil, fmt.Errorf("unknown journal type: %s", cfg.Type)
	}
}
