package scribe

import "scribe-go/internal/model"

// Journal records CLI operations that mutate the store, for the history
// command. It is bookkeeping only: entry durability never depends on it.
type Journal interface {
	// Begin records the start of an operation and returns its id.
	Begin(operation, parameters string) (string, error)

	// Finish stamps an operation with its outcome ("success" or "error").
	Finish(id, status string) error

	// List returns the most recent operations, newest first.
	List(limit int) ([]*model.JournalOperation, error)

	// Close releases the underlying storage.
	Close() error
}
