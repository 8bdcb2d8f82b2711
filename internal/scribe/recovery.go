package scribe

import (
	"fmt"
	"regexp"
	"strings"

	"scribe-go/internal/model"
	"scribe-go/internal/record"
)

// Recovery operates on the single most recent entry in the whole store —
// global last, not per-date. It is the only path that mutates committed
// bytes, and only ever the final record of a daily log.

var (
	headerTimeRe   = regexp.MustCompile(`(?m)^## (\d{2}:\d{2}) — (.+)$`)
	headerSimpleRe = regexp.MustCompile(`(?m)^## (.+)$`)
)

// ShowLast returns the most recent record across the whole store, or nil
// when the store is empty.
func (s *ScribeService) ShowLast() (*model.Record, error) {
	return s.logs.LastRecord()
}

// DeleteLast removes the most recent entry and every asset archived under
// its id. Returns the removed record and the deleted asset ids. A non-empty
// expectedID pins the deletion to that entry: if the store's last record is
// a different one, nothing is deleted.
func (s *ScribeService) DeleteLast(expectedID string) (*model.Record, []string, error) {
	last, err := s.logs.LastRecord()
	if err != nil {
		return nil, nil, err
	}
	if last == nil {
		return nil, nil, ErrNothingToDelete
	}
	if expectedID != "" && entryID(last) != expectedID {
		return nil, nil, fmt.Errorf("latest entry is %s, not %s; nothing deleted", entryID(last), expectedID)
	}

	var deleted []string
	if last.Entry != nil && last.Entry.ID != "" {
		deleted, err = s.assets.DeleteForEntry(last.Entry.ID)
		if err != nil {
			return nil, nil, err
		}
	}

	if err := s.logs.DeleteLast(last.Date); err != nil {
		return nil, nil, err
	}

	s.logger.Info("entry deleted", "id", entryID(last), "assets", len(deleted))
	return last, deleted, nil
}

// ReplaceLast rewrites the most recent entry's text in place, preserving
// its id and any already-materialized assets. newContent is the replacement
// markdown; it must start with an "## Title" header, which is rewritten to
// the canonical "## HH:MM — Title" form when it lacks a time.
func (s *ScribeService) ReplaceLast(newContent string) (string, error) {
	last, err := s.logs.LastRecord()
	if err != nil {
		return "", err
	}
	if last == nil {
		return "", ErrNothingToDelete
	}
	if last.Entry == nil || last.Entry.ID == "" {
		return "", fmt.Errorf("latest entry has no id, cannot replace")
	}

	content := strings.TrimSpace(newContent)
	if content == "" {
		return "", fmt.Errorf("no replacement entry provided")
	}

	timeStr := s.clock.Now().Format("15:04")
	var title string
	if m := headerTimeRe.FindStringSubmatch(content); m != nil {
		timeStr = m[1]
		title = m[2]
	} else if m := headerSimpleRe.FindStringSubmatchIndex(content); m != nil {
		// Only the leading header is canonicalized; later "## " lines are
		// body subsections and stay untouched.
		title = content[m[2]:m[3]]
		content = content[:m[0]] + fmt.Sprintf("## %s — %s", timeStr, title) + content[m[1]:]
	} else {
		return "", fmt.Errorf("replacement entry must start with '## Title'")
	}

	head, err := renderReplacementHead(last.Entry.ID, timeStr, title)
	if err != nil {
		return "", err
	}
	if !strings.HasSuffix(content, "\n---") {
		content += "\n\n---"
	}

	if err := s.logs.ReplaceLast(last.Date, head+content+"\n"); err != nil {
		return "", err
	}

	s.logger.Info("entry replaced", "id", last.Entry.ID)
	return last.Entry.ID, nil
}

// Rearchive corrects a mis-archived file: it deletes every asset previously
// archived under the last entry's id and saves filePath in their place.
func (s *ScribeService) Rearchive(filePath string) (string, []string, error) {
	last, err := s.logs.LastRecord()
	if err != nil {
		return "", nil, err
	}
	if last == nil {
		return "", nil, ErrNothingToDelete
	}
	if last.Entry == nil || last.Entry.ID == "" {
		return "", nil, fmt.Errorf("latest entry has no id")
	}

	deleted, err := s.assets.DeleteForEntry(last.Entry.ID)
	if err != nil {
		return "", nil, err
	}

	assetID, err := s.assets.Save(last.Entry.ID, filePath)
	if err != nil {
		return "", deleted, err
	}

	s.logger.Info("entry rearchived", "id", last.Entry.ID, "asset", assetID)
	return assetID, deleted, nil
}

// Unarchive deletes the last entry's assets but leaves its text intact. The
// entry's Archived section then dangles; the caller either follows up with
// ReplaceLast to drop it or accepts the MissingAsset violation until
// corrected.
func (s *ScribeService) Unarchive() ([]string, error) {
	last, err := s.logs.LastRecord()
	if err != nil {
		return nil, err
	}
	if last == nil {
		return nil, ErrNothingToDelete
	}
	if last.Entry == nil || last.Entry.ID == "" {
		return nil, fmt.Errorf("latest entry has no id")
	}

	deleted, err := s.assets.DeleteForEntry(last.Entry.ID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("entry unarchived", "id", last.Entry.ID, "assets", len(deleted))
	return deleted, nil
}

// renderReplacementHead builds fresh frontmatter for a replaced entry. The
// id survives from the original; everything else reflects the replacement.
func renderReplacementHead(id, timeStr, title string) (string, error) {
	e := &model.Entry{ID: id, Timestamp: timeStr, Title: title}
	head, err := record.RenderFrontmatter(e, nil)
	if err != nil {
		return "", fmt.Errorf("rendering frontmatter for %s: %w", id, err)
	}
	return head, nil
}

func entryID(rec *model.Record) string {
	if rec.Entry == nil {
		return ""
	}
	return rec.Entry.ID
}
