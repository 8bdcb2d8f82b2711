package model

import "time"

// Entry is one committed record of logged work. Entries are immutable once
// appended to a daily log; only the most recent entry in the whole store may
// be rewritten, and only through the recovery operations.
type Entry struct {
	ID            string        // YYYY-MM-DD-HH-MM with optional -NN suffix
	Timestamp     string        // HH:MM, minute resolution, local time
	Title         string        // never empty once committed
	Body          string        // free-form narrative, may be empty
	Touched       []TouchedFile // advisory, not validated against the filesystem
	Archived      []ArchivedRef // each must resolve to an asset on disk
	Related       []RelatedRef  // prior entry ids this entry references
	ExternalState string        // opaque commit-state string, not interpreted
	Mode          string        // "" or "git-entry"
}

// Date returns the calendar date portion of the entry id (YYYY-MM-DD).
func (e *Entry) Date() string {
	if len(e.ID) < 10 {
		return ""
	}
	return e.ID[:10]
}

// TouchedFile is a (path, description) pair listed in an entry's
// Files touched section.
type TouchedFile struct {
	Path        string
	Description string
}

// ArchivedRef ties an entry to one archived asset file.
type ArchivedRef struct {
	OriginalPath string
	AssetID      string // {entryID}-{basename}
	Description  string
}

// RelatedRef is a reference to a prior entry. Title is display-only,
// resolved at prepare time; only the ID participates in validation.
type RelatedRef struct {
	ID    string
	Title string
}

// PendingArchive is an archive operation requested at prepare time but not
// yet materialized. It lives in the staging record's _pending block.
type PendingArchive struct {
	Source      string
	Description string
}

// Pending is the staging record's not-yet-committed work: the mode flag and
// the archive operations finalize must materialize.
type Pending struct {
	GitEntry bool
	Archives []PendingArchive
}

// StagingRecord is the single in-flight entry draft. At most one exists at
// a time, persisted to a well-known slot so it survives process restarts.
type StagingRecord struct {
	ID          string
	Path        string // slot file path
	Content     string // raw slot file content
	Entry       *Entry // leniently parsed from Content
	Pending     *Pending
	TitleFilled bool
	BodyFilled  bool
}

// Record is a physical entry record inside a daily log file.
type Record struct {
	Date  string // YYYY-MM-DD of the containing file
	Raw   string // exact bytes of the record
	Entry *Entry
}

// ViolationKind classifies an integrity problem found by validation.
type ViolationKind string

const (
	ViolationInvalidID       ViolationKind = "InvalidID"
	ViolationMissingAsset    ViolationKind = "MissingAsset"
	ViolationOrphanedAsset   ViolationKind = "OrphanedAsset"
	ViolationDanglingRelated ViolationKind = "DanglingRelated"
)

// Violation is a single detected integrity problem. Validation returns the
// full list rather than failing fast so a caller can present all problems
// at once.
type Violation struct {
	Kind    ViolationKind
	EntryID string // offending entry, if known
	File    string // daily log file or asset file involved
	Detail  string
}

func (v Violation) String() string {
	if v.EntryID != "" {
		return string(v.Kind) + ": entry " + v.EntryID + ": " + v.Detail
	}
	return string(v.Kind) + ": " + v.Detail
}

// JournalOperation is one recorded CLI operation in the operations journal.
type JournalOperation struct {
	ID         string // UUID
	Operation  string
	Parameters string
	StartedAt  time.Time
	FinishedAt *time.Time // nil while in flight
	Status     string     // "success" or "error"
}
