// Package record implements the on-disk format shared by daily log files and
// the staging slot: a YAML frontmatter block followed by a markdown body.
//
// A serialized record looks like:
//
//	---
//	id: 2026-01-23-14-35
//	timestamp: "14:35"
//	title: Fixed the flaky import
//	---
//	## 14:35 — Fixed the flaky import
//
//	Narrative text.
//
//	**Archived:**
//	- `model.py` → [`2026-01-23-14-35-model.py`](assets/2026-01-23-14-35-model.py) — before refactor
//
//	---
//
// Parsing is lenient: a record with a missing id or title still parses, so
// validation can report the problem instead of refusing to read the file.
// Callers that need strictness (the log store) check the parsed fields.
package record

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"scribe-go/internal/model"
)

// Placeholder markers written at prepare time. Finalize refuses to commit
// while either is still present in the staging slot.
const (
	TitlePlaceholder = "__TITLE__"
	BodyPlaceholder  = "__BODY__"
)

const idExpr = `\d{4}-\d{2}-\d{2}-\d{2}-\d{2}(?:-\d{2,})?`

var (
	// IDPattern matches a complete entry id: YYYY-MM-DD-HH-MM with an
	// optional zero-padded collision suffix.
	IDPattern = regexp.MustCompile(`^` + idExpr + `$`)

	idScanRe      = regexp.MustCompile(idExpr)
	fmIDLineRe    = regexp.MustCompile(`^id: (` + idExpr + `)\s*$`)
	frontmatterRe = regexp.MustCompile(`(?s)\A---\n(.*?)\n---\n(.*)\z`)
	touchedRe     = regexp.MustCompile("^- `(.+?)`(?: — (.*))?$")
	archivedRe    = regexp.MustCompile("^- `(.+?)` → \\[`(.+?)`\\]\\(assets/[^)]+\\)(?: — (.*))?$")
)

// FormatID renders the base entry id for a point in time. Seconds are
// discarded; collision suffixes are the allocator's concern.
func FormatID(t time.Time) string {
	return t.Format("2006-01-02-15-04")
}

// ValidID reports whether id has the canonical entry id format.
func ValidID(id string) bool {
	return IDPattern.MatchString(id)
}

// ScanID returns the first entry id embedded in s, or "" when none is
// present. Asset file names carry their owning entry id as a prefix.
func ScanID(s string) string {
	return idScanRe.FindString(s)
}

// frontmatter is the YAML block at the top of every record. Field order is
// the serialization order; id must stay first because record boundaries are
// detected by the id line that follows the opening delimiter.
type frontmatter struct {
	ID        string       `yaml:"id"`
	Timestamp string       `yaml:"timestamp"`
	Title     string       `yaml:"title"`
	Git       string       `yaml:"git,omitempty"`
	Mode      string       `yaml:"mode,omitempty"`
	Pending   *pendingYAML `yaml:"_pending,omitempty"`
}

// pendingYAML mirrors model.Pending. Archives serialize as [source, description]
// pairs to keep the frontmatter compact.
type pendingYAML struct {
	GitEntry bool       `yaml:"git_entry"`
	Archives [][]string `yaml:"archives,omitempty"`
}

func toPendingYAML(p *model.Pending) *pendingYAML {
	if p == nil {
		return nil
	}
	out := &pendingYAML{GitEntry: p.GitEntry}
	for _, a := range p.Archives {
		out.Archives = append(out.Archives, []string{a.Source, a.Description})
	}
	return out
}

func fromPendingYAML(p *pendingYAML) *model.Pending {
	if p == nil {
		return nil
	}
	out := &model.Pending{GitEntry: p.GitEntry}
	for _, pair := range p.Archives {
		a := model.PendingArchive{}
		if len(pair) > 0 {
			a.Source = pair[0]
		}
		if len(pair) > 1 {
			a.Description = pair[1]
		}
		out.Archives = append(out.Archives, a)
	}
	return out
}

// RenderFrontmatter serializes just the frontmatter block, delimiters
// included. Finalize uses it to rebuild a staging record's head while leaving
// the edited body bytes untouched.
func RenderFrontmatter(e *model.Entry, p *model.Pending) (string, error) {
	fm := frontmatter{
		ID:        e.ID,
		Timestamp: e.Timestamp,
		Title:     e.Title,
		Git:       e.ExternalState,
		Mode:      e.Mode,
		Pending:   toPendingYAML(p),
	}
	out, err := yaml.Marshal(&fm)
	if err != nil {
		return "", fmt.Errorf("marshaling frontmatter for %s: %w", e.ID, err)
	}
	return "---\n" + string(out) + "---\n", nil
}

// Render serializes a full record: frontmatter, header line, body, and the
// Files touched / Archived / Related sections, closed by a --- delimiter.
func Render(e *model.Entry, p *model.Pending) (string, error) {
	head, err := RenderFrontmatter(e, p)
	if err != nil {
		return "", err
	}

	parts := []string{fmt.Sprintf("## %s — %s", e.Timestamp, e.Title)}
	if e.Body != "" {
		parts = append(parts, e.Body)
	}

	if len(e.Touched) > 0 {
		lines := make([]string, 0, len(e.Touched)+1)
		lines = append(lines, "**Files touched:**")
		for _, t := range e.Touched {
			if t.Description != "" {
				lines = append(lines, fmt.Sprintf("- `%s` — %s", t.Path, t.Description))
			} else {
				lines = append(lines, fmt.Sprintf("- `%s`", t.Path))
			}
		}
		parts = append(parts, strings.Join(lines, "\n"))
	}

	if len(e.Archived) > 0 {
		lines := make([]string, 0, len(e.Archived)+1)
		lines = append(lines, "**Archived:**")
		for _, a := range e.Archived {
			line := fmt.Sprintf("- `%s` → [`%s`](assets/%s)", a.OriginalPath, a.AssetID, a.AssetID)
			if a.Description != "" {
				line += " — " + a.Description
			}
			lines = append(lines, line)
		}
		parts = append(parts, strings.Join(lines, "\n"))
	}

	if len(e.Related) > 0 {
		refs := make([]string, 0, len(e.Related))
		for _, r := range e.Related {
			if r.Title != "" {
				refs = append(refs, r.ID+" — "+r.Title)
			} else {
				refs = append(refs, r.ID)
			}
		}
		parts = append(parts, "**Related:** "+strings.Join(refs, ", "))
	}

	parts = append(parts, "---")
	return head + strings.Join(parts, "\n\n") + "\n", nil
}

// AssetID derives the deterministic asset name for a file archived under an
// entry: {entryID}-{basename}.
func AssetID(entryID, sourcePath string) string {
	return entryID + "-" + filepath.Base(sourcePath)
}

// Split separates a record into its frontmatter YAML text and body bytes.
// ok is false when the content has no frontmatter block.
func Split(content string) (fmText, body string, ok bool) {
	m := frontmatterRe.FindStringSubmatch(content)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

// Parse decodes a serialized record. Missing id or title do not error;
// callers check the fields they require.
func Parse(content string) (*model.Entry, *model.Pending, error) {
	fmText, body, ok := Split(content)
	if !ok {
		return nil, nil, fmt.Errorf("record has no frontmatter block")
	}

	var fm frontmatter
	if err := yaml.Unmarshal([]byte(fmText), &fm); err != nil {
		return nil, nil, fmt.Errorf("decoding frontmatter: %w", err)
	}

	e := &model.Entry{
		ID:            fm.ID,
		Timestamp:     fm.Timestamp,
		Title:         fm.Title,
		ExternalState: fm.Git,
		Mode:          fm.Mode,
	}
	parseBody(e, body)
	return e, fromPendingYAML(fm.Pending), nil
}

// parseBody fills Body, Touched, Archived, and Related from the markdown
// following the frontmatter. Section markers match what Render emits.
func parseBody(e *model.Entry, body string) {
	lines := strings.Split(body, "\n")

	const (
		sectNone = iota
		sectBody
		sectTouched
		sectArchived
	)
	sect := sectNone
	var bodyLines []string

	for _, line := range lines {
		switch {
		case sect == sectNone && strings.HasPrefix(line, "## "):
			sect = sectBody
			continue
		case line == "**Files touched:**":
			sect = sectTouched
			continue
		case line == "**Archived:**":
			sect = sectArchived
			continue
		case strings.HasPrefix(line, "**Related:**"):
			for _, id := range idScanRe.FindAllString(line, -1) {
				e.Related = append(e.Related, model.RelatedRef{ID: id})
			}
			sect = sectNone
			continue
		case line == "---":
			sect = sectNone
			continue
		}

		switch sect {
		case sectBody:
			bodyLines = append(bodyLines, line)
		case sectTouched:
			if m := touchedRe.FindStringSubmatch(line); m != nil {
				e.Touched = append(e.Touched, model.TouchedFile{Path: m[1], Description: m[2]})
			}
		case sectArchived:
			if m := archivedRe.FindStringSubmatch(line); m != nil {
				e.Archived = append(e.Archived, model.ArchivedRef{
					OriginalPath: m[1],
					AssetID:      m[2],
					Description:  m[3],
				})
			}
		}
	}

	e.Body = strings.TrimSpace(strings.Join(bodyLines, "\n"))
}

// Loc is the position of one record within a daily log file.
type Loc struct {
	Start, End int
	Raw        string
}

// Locate finds every record in a daily log file. A record starts at a ---
// line immediately followed by an id line, and runs to the next record start
// or end of file. The file's date header and each record's trailing ---
// delimiter never match, because neither is followed by an id line.
func Locate(content string) []Loc {
	var starts []int
	offset := 0
	rest := content
	for {
		idx := strings.Index(rest, "---\n")
		if idx < 0 {
			break
		}
		pos := offset + idx
		lineStart := pos == 0 || content[pos-1] == '\n'
		next := content[pos+4:]
		if lineStart {
			nl := strings.IndexByte(next, '\n')
			if nl < 0 {
				nl = len(next)
			}
			if fmIDLineRe.MatchString(next[:nl]) {
				starts = append(starts, pos)
			}
		}
		offset = pos + 4
		rest = content[offset:]
	}

	locs := make([]Loc, 0, len(starts))
	for i, s := range starts {
		end := len(content)
		if i+1 < len(starts) {
			end = starts[i+1]
		}
		locs = append(locs, Loc{Start: s, End: end, Raw: content[s:end]})
	}
	return locs
}

// EntryIDs extracts every entry id declared in frontmatter id lines.
// Tolerant by design: corrupt records still surrender their ids, which keeps
// allocation collision-safe even when a file would fail a strict read.
func EntryIDs(content string) []string {
	var ids []string
	for _, line := range strings.Split(content, "\n") {
		if m := fmIDLineRe.FindStringSubmatch(line); m != nil {
			ids = append(ids, m[1])
		}
	}
	return ids
}
