package scribe

import "scribe-go/internal/model"

// StagingArea holds the one in-flight entry draft, persisted to a well-known
// slot so status and recovery work across process restarts. Concurrency is
// the single-writer model: a second Create while a slot exists is rejected,
// not queued.
type StagingArea interface {
	// Create renders a staging record for the entry draft and its pending
	// operations and writes it to the slot. Returns ErrStagingBusy if a slot
	// already exists.
	Create(e *model.Entry, p *model.Pending) (path string, err error)

	// Current reads and parses the slot. Returns (nil, nil) when no staging
	// record exists.
	Current() (*model.StagingRecord, error)

	// Remove deletes the slot file. No-op when absent.
	Remove() error
}
