package scribe

import (
	"fmt"
	"time"

	"scribe-go/internal/record"
)

// IdentifierAllocator derives a lexicographically sortable timestamp-based
// id for a new entry and resolves collisions deterministically. Allocation
// is pure with respect to the daily log's current contents; uniqueness
// between allocation and commit is guaranteed by the single-writer staging
// slot, not by the allocator.
type IdentifierAllocator struct {
	logs LogStore
}

func NewIdentifierAllocator(logs LogStore) *IdentifierAllocator {
	return &IdentifierAllocator{logs: logs}
}

// Allocate returns the id for an entry created at t: the YYYY-MM-DD-HH-MM
// form of t, or, when that id is taken, the smallest unused -NN suffix
// starting at -02. Returns an AllocationExhaustedError after suffix -99.
func (a *IdentifierAllocator) Allocate(t time.Time) (string, error) {
	base := record.FormatID(t)
	date := t.Format("2006-01-02")

	ids, err := a.logs.EntryIDs(date)
	if err != nil {
		return "", fmt.Errorf("reading existing ids for %s: %w", date, err)
	}

	taken := make(map[string]bool, len(ids))
	for _, id := range ids {
		taken[id] = true
	}

	if !taken[base] {
		return base, nil
	}
	for n := 2; n <= 99; n++ {
		id := fmt.Sprintf("%s-%02d", base, n)
		if !taken[id] {
			return id, nil
		}
	}
	return "", &AllocationExhaustedError{Base: base}
}
