package scribe

import "scribe-go/internal/model"

// LogStore is the durable, append-only collection of daily log files. One
// file exists per calendar date; entries within a file stay in ascending id
// order. Existing bytes are rewritten only by ReplaceLast/DeleteLast, and
// only ever for the final record of a file.
type LogStore interface {
	// Append writes a serialized record to the end of the daily log for
	// date, creating the file with its header if absent.
	Append(date, rec string) error

	// Read parses a daily log into its entries, in file order. Returns a
	// CorruptLogError if any record is missing its id or title. A missing
	// file yields an empty slice.
	Read(date string) ([]*model.Entry, error)

	// Find locates a single entry by id, scanning the daily log implied by
	// the id's date prefix. Returns nil when not found.
	Find(id string) (*model.Entry, error)

	// Records returns the raw records of the daily log for date, with
	// leniently parsed entries (Entry is nil only when a record's
	// frontmatter cannot be decoded at all). Validation uses it to report
	// problems a strict Read would refuse to load.
	Records(date string) ([]*model.Record, error)

	// EntryIDs returns every id present in the daily log for date, in file
	// order. Tolerant of corrupt records; used by the allocator.
	EntryIDs(date string) ([]string, error)

	// Dates lists the dates that have a daily log file, ascending.
	Dates() ([]string, error)

	// LastEntryID returns the lexicographically greatest id in the daily log
	// for date, or "" when the file has no entries.
	LastEntryID(date string) (string, error)

	// LastRecord returns the most recently appended record across the whole
	// store, or nil when the store is empty. This is the only record
	// eligible for mutation.
	LastRecord() (*model.Record, error)

	// ReplaceLast rewrites the daily log for date with its final record
	// replaced by rec, leaving all earlier records byte-identical.
	ReplaceLast(date, rec string) error

	// DeleteLast rewrites the daily log for date with its final record
	// removed. The file itself is never deleted.
	DeleteLast(date string) error
}
