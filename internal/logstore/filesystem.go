// Package logstore implements daily log storage on the local filesystem:
// one markdown file per calendar date under the store directory.
package logstore

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"scribe-go/internal/model"
	"scribe-go/internal/record"
	"scribe-go/internal/scribe"
)

var logFileRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}\.md$`)

// FileSystemLogStore stores daily logs as <dir>/<YYYY-MM-DD>.md. Appends go
// to the end of the file; the only rewrites are ReplaceLast and DeleteLast,
// which re-read, truncate, and rewrite the whole file. Daily files are small
// enough that the full-file rewrite is acceptable.
type FileSystemLogStore struct {
	dir string
}

// NewFileSystemLogStore creates a log store rooted at dir, creating the
// directory if needed.
func NewFileSystemLogStore(dir string) (*FileSystemLogStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}
	return &FileSystemLogStore{dir: dir}, nil
}

func (s *FileSystemLogStore) filePath(date string) string {
	return filepath.Join(s.dir, date+".md")
}

// readFile returns the daily log's content, or "" when the file is absent.
func (s *FileSystemLogStore) readFile(date string) (string, error) {
	data, err := os.ReadFile(s.filePath(date))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("reading daily log %s: %w", date, err)
	}
	return string(data), nil
}

// writeFile rewrites a daily log using a temp file and atomic rename, so a
// crash mid-rewrite never leaves a half-written file behind.
func (s *FileSystemLogStore) writeFile(date, content string) error {
	destPath := s.filePath(date)
	tmpFile, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	if _, err := tmpFile.WriteString(content); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing daily log %s: %w", date, err)
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// Append writes rec to the end of the daily log for date, creating the file
// with its date header on first write.
func (s *FileSystemLogStore) Append(date, rec string) error {
	if !strings.HasSuffix(rec, "\n") {
		rec += "\n"
	}

	path := s.filePath(date)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		header := fmt.Sprintf("# %s\n\n---\n\n", date)
		if err := os.WriteFile(path, []byte(header+rec), 0644); err != nil {
			return fmt.Errorf("creating daily log %s: %w", date, err)
		}
		return nil
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("opening daily log %s: %w", date, err)
	}
	defer f.Close()

	if _, err := f.WriteString(rec); err != nil {
		return fmt.Errorf("appending to daily log %s: %w", date, err)
	}
	return nil
}

// Read parses the daily log for date into entries, in file order. A record
// missing its id or title makes the whole read fail with a CorruptLogError;
// readers never see a partially valid file as fully valid.
func (s *FileSystemLogStore) Read(date string) ([]*model.Entry, error) {
	content, err := s.readFile(date)
	if err != nil {
		return nil, err
	}

	file := date + ".md"
	var entries []*model.Entry
	for _, loc := range record.Locate(content) {
		e, _, err := record.Parse(loc.Raw)
		if err != nil {
			return nil, &scribe.CorruptLogError{File: file, Reason: err.Error()}
		}
		if e.ID == "" {
			return nil, &scribe.CorruptLogError{File: file, Reason: fmt.Sprintf("record %q has no entry id", e.Title)}
		}
		if !record.ValidID(e.ID) {
			return nil, &scribe.CorruptLogError{File: file, Reason: fmt.Sprintf("invalid entry id format: %s", e.ID)}
		}
		if e.Title == "" {
			return nil, &scribe.CorruptLogError{File: file, Reason: fmt.Sprintf("entry %s has no title", e.ID)}
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Find locates a single entry by scanning the daily log implied by the id's
// date prefix. Lenient: other corrupt records in the file do not prevent
// finding a well-formed one. Returns nil when not found.
func (s *FileSystemLogStore) Find(id string) (*model.Entry, error) {
	if len(id) < 10 {
		return nil, nil
	}
	content, err := s.readFile(id[:10])
	if err != nil {
		return nil, err
	}

	for _, loc := range record.Locate(content) {
		e, _, err := record.Parse(loc.Raw)
		if err != nil {
			continue
		}
		if e.ID == id {
			return e, nil
		}
	}
	return nil, nil
}

// Records returns the raw records of the daily log for date with leniently
// parsed entries. A record whose frontmatter cannot be decoded is returned
// with a nil Entry so validation can report it.
func (s *FileSystemLogStore) Records(date string) ([]*model.Record, error) {
	content, err := s.readFile(date)
	if err != nil {
		return nil, err
	}

	var recs []*model.Record
	for _, loc := range record.Locate(content) {
		rec := &model.Record{Date: date, Raw: loc.Raw}
		if e, _, err := record.Parse(loc.Raw); err == nil {
			rec.Entry = e
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// EntryIDs returns every id declared in the daily log for date.
func (s *FileSystemLogStore) EntryIDs(date string) ([]string, error) {
	content, err := s.readFile(date)
	if err != nil {
		return nil, err
	}
	return record.EntryIDs(content), nil
}

// Dates lists the dates that have a daily log file, ascending.
func (s *FileSystemLogStore) Dates() ([]string, error) {
	dirEntries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading log directory: %w", err)
	}

	var dates []string
	for _, de := range dirEntries {
		if de.IsDir() || !logFileRe.MatchString(de.Name()) {
			continue
		}
		dates = append(dates, strings.TrimSuffix(de.Name(), ".md"))
	}
	sort.Strings(dates)
	return dates, nil
}

// LastEntryID returns the greatest id in the daily log for date. The id
// format is zero-padded, so lexicographic order is chronological.
func (s *FileSystemLogStore) LastEntryID(date string) (string, error) {
	ids, err := s.EntryIDs(date)
	if err != nil {
		return "", err
	}
	last := ""
	for _, id := range ids {
		if id > last {
			last = id
		}
	}
	return last, nil
}

// LastRecord returns the most recently appended record across the whole
// store: the final record of the newest daily log that has one.
func (s *FileSystemLogStore) LastRecord() (*model.Record, error) {
	dates, err := s.Dates()
	if err != nil {
		return nil, err
	}

	for i := len(dates) - 1; i >= 0; i-- {
		content, err := s.readFile(dates[i])
		if err != nil {
			return nil, err
		}
		locs := record.Locate(content)
		if len(locs) == 0 {
			continue
		}
		loc := locs[len(locs)-1]
		e, _, err := record.Parse(loc.Raw)
		if err != nil {
			return nil, &scribe.CorruptLogError{File: dates[i] + ".md", Reason: err.Error()}
		}
		return &model.Record{Date: dates[i], Raw: loc.Raw, Entry: e}, nil
	}
	return nil, nil
}

// ReplaceLast rewrites the daily log for date with its final record replaced
// by rec. Every earlier byte of the file is preserved exactly.
func (s *FileSystemLogStore) ReplaceLast(date, rec string) error {
	content, err := s.readFile(date)
	if err != nil {
		return err
	}
	locs := record.Locate(content)
	if len(locs) == 0 {
		return fmt.Errorf("daily log %s has no entries to replace", date)
	}

	if !strings.HasSuffix(rec, "\n") {
		rec += "\n"
	}
	return s.writeFile(date, content[:locs[len(locs)-1].Start]+rec)
}

// DeleteLast rewrites the daily log for date with its final record removed.
// The file stays behind even when its last entry is gone.
func (s *FileSystemLogStore) DeleteLast(date string) error {
	content, err := s.readFile(date)
	if err != nil {
		return err
	}
	locs := record.Locate(content)
	if len(locs) == 0 {
		return fmt.Errorf("daily log %s has no entries to delete", date)
	}

	// Everything before the final record is kept byte-for-byte, including
	// the blank line that separated it. A later Append then produces the
	// same bytes a fresh file would have.
	return s.writeFile(date, content[:locs[len(locs)-1].Start])
}

// Compile-time check that FileSystemLogStore implements the LogStore interface.
var _ scribe.LogStore = (*FileSystemLogStore)(nil)
