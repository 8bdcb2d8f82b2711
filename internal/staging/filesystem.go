// Package staging implements the single persisted staging slot: one
// __<id>__.md file in the store directory, present only between prepare and
// finalize/abort.
package staging

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"scribe-go/internal/model"
	"scribe-go/internal/record"
	"scribe-go/internal/scribe"
)

var slotFileRe = regexp.MustCompile(`^__(\d{4}-\d{2}-\d{2}-\d{2}-\d{2}(?:-\d{2,})?)__\.md$`)

// FileSystemStagingArea persists the staging record to a well-known slot
// inside the store directory, so status and finalize work even if the
// process restarts between prepare and finalize.
type FileSystemStagingArea struct {
	dir string
}

// NewFileSystemStagingArea creates a staging area using dir as the slot
// location, creating the directory if needed.
func NewFileSystemStagingArea(dir string) (*FileSystemStagingArea, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating staging directory: %w", err)
	}
	return &FileSystemStagingArea{dir: dir}, nil
}

// find returns the current slot file path and its entry id, or "" when no
// slot exists.
func (s *FileSystemStagingArea) find() (path, id string, err error) {
	dirEntries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", "", nil
		}
		return "", "", fmt.Errorf("reading staging directory: %w", err)
	}
	for _, de := range dirEntries {
		if m := slotFileRe.FindStringSubmatch(de.Name()); m != nil {
			return filepath.Join(s.dir, de.Name()), m[1], nil
		}
	}
	return "", "", nil
}

// Create renders the draft and writes it to the slot. One slot only: a
// second Create while one is outstanding fails with ErrStagingBusy.
func (s *FileSystemStagingArea) Create(e *model.Entry, p *model.Pending) (string, error) {
	existing, _, err := s.find()
	if err != nil {
		return "", err
	}
	if existing != "" {
		return "", fmt.Errorf("%w: %s", scribe.ErrStagingBusy, filepath.Base(existing))
	}

	content, err := record.Render(e, p)
	if err != nil {
		return "", err
	}

	path := filepath.Join(s.dir, fmt.Sprintf("__%s__.md", e.ID))
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("writing staging record: %w", err)
	}
	return path, nil
}

// Current reads and parses the slot. Returns (nil, nil) when no staging
// record exists.
func (s *FileSystemStagingArea) Current() (*model.StagingRecord, error) {
	path, id, err := s.find()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading staging record %s: %w", filepath.Base(path), err)
	}
	content := string(data)

	rec := &model.StagingRecord{
		ID:          id,
		Path:        path,
		Content:     content,
		TitleFilled: !strings.Contains(content, record.TitlePlaceholder),
		BodyFilled:  !strings.Contains(content, record.BodyPlaceholder),
	}

	// The slot id from the filename is authoritative; the parse may fail if
	// the editing collaborator mangled the frontmatter, and status should
	// still report the pending id.
	if e, p, err := record.Parse(content); err == nil {
		rec.Entry = e
		rec.Pending = p
	}
	return rec, nil
}

// Remove deletes the slot file. No-op when absent.
func (s *FileSystemStagingArea) Remove() error {
	path, _, err := s.find()
	if err != nil {
		return err
	}
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("removing staging record: %w", err)
	}
	return nil
}

// Compile-time check that FileSystemStagingArea implements the StagingArea interface.
var _ scribe.StagingArea = (*FileSystemStagingArea)(nil)
