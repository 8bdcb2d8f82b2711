package scribe

import (
	"errors"
	"fmt"
)

// Sentinel errors for conditions with no per-instance context. Callers
// classify with errors.Is.
var (
	// ErrStagingBusy is returned by Prepare while a staging record is
	// outstanding. The caller must finalize or abort it first.
	ErrStagingBusy = errors.New("pending entry exists: run 'finalize' to complete it or 'abort' to discard it")

	// ErrNoPendingEntry is returned by Finalize when no staging record
	// exists.
	ErrNoPendingEntry = errors.New("no pending entry: run 'prepare' first")

	// ErrNothingToDelete is returned by recovery operations when the store
	// holds no entries.
	ErrNothingToDelete = errors.New("no entries in store")
)

// AllocationExhaustedError is returned when 99 ids already exist for one
// calendar minute. Practically unreachable; it bounds the suffix search.
type AllocationExhaustedError struct {
	Base string // the YYYY-MM-DD-HH-MM prefix that ran out of suffixes
}

func (e *AllocationExhaustedError) Error() string {
	return fmt.Sprintf("id allocation exhausted: 99 entries already exist for minute %s", e.Base)
}

// PlaceholderUnresolvedError is returned by Finalize when a placeholder has
// not been replaced with real content. Field names the missing piece.
type PlaceholderUnresolvedError struct {
	Field       string // "title" or "body"
	Placeholder string
}

func (e *PlaceholderUnresolvedError) Error() string {
	return fmt.Sprintf("%s placeholder (%s) not replaced", e.Field, e.Placeholder)
}

// SourceNotFoundError is returned when a file to archive does not exist.
type SourceNotFoundError struct {
	Path string
}

func (e *SourceNotFoundError) Error() string {
	return fmt.Sprintf("source file not found: %s", e.Path)
}

// DestinationExistsError is returned when saving or restoring would
// overwrite an existing file. Archiving and restoring never overwrite.
type DestinationExistsError struct {
	Path string
}

func (e *DestinationExistsError) Error() string {
	return fmt.Sprintf("%s already exists, not overwriting", e.Path)
}

// CorruptLogError is returned by a strict read when a record is missing its
// required id or title.
type CorruptLogError struct {
	File   string
	Reason string
}

func (e *CorruptLogError) Error() string {
	return fmt.Sprintf("corrupt log %s: %s", e.File, e.Reason)
}

// ExternalCommitError wraps a failure of the external commit-state provider.
// Finalize treats it as fatal to the whole operation: no entry is appended
// and materialized archives are rolled back.
type ExternalCommitError struct {
	Err error
}

func (e *ExternalCommitError) Error() string {
	return fmt.Sprintf("external commit failed: %v", e.Err)
}

func (e *ExternalCommitError) Unwrap() error { return e.Err }
