package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"scribe-go/internal/assetstore"
	"scribe-go/internal/logstore"
	"scribe-go/internal/scribe"
	"scribe-go/internal/staging"
)

// TestStore bundles the filesystem-backed components of a throwaway store
// rooted in a test temp dir.
type TestStore struct {
	Dir     string
	Logs    *logstore.FileSystemLogStore
	Assets  *assetstore.FileSystemAssetStore
	Staging *staging.FileSystemStagingArea
	Clock   *StubClock
	Commits *StubCommitProvider
	Service *scribe.ScribeService
}

// NewTestStore creates a complete store under t.TempDir() with a fixed
// clock and a stub commit provider.
func NewTestStore(t *testing.T) *TestStore {
	t.Helper()

	dir := t.TempDir()
	logs, err := logstore.NewFileSystemLogStore(filepath.Join(dir, "log"))
	if err != nil {
		t.Fatalf("failed to create log store: %v", err)
	}
	assets, err := assetstore.NewFileSystemAssetStore(filepath.Join(dir, "assets"))
	if err != nil {
		t.Fatalf("failed to create asset store: %v", err)
	}
	stg, err := staging.NewFileSystemStagingArea(dir)
	if err != nil {
		t.Fatalf("failed to create staging area: %v", err)
	}

	clock := FixedClock()
	commits := NewStubCommitProvider()
	svc := scribe.NewScribeService(logs, assets, stg, commits, scribe.NewNopLogger(), clock)

	return &TestStore{
		Dir:     dir,
		Logs:    logs,
		Assets:  assets,
		Staging: stg,
		Clock:   clock,
		Commits: commits,
		Service: svc,
	}
}

// WriteSource creates a file with the given content outside the store and
// returns its path. Used as the source for archive operations.
func WriteSource(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write source file: %v", err)
	}
	return path
}

// FillStaging replaces the title and body placeholders in the current
// staging file so the record can be finalized.
func (ts *TestStore) FillStaging(t *testing.T, title, body string) {
	t.Helper()

	rec, err := ts.Staging.Current()
	if err != nil {
		t.Fatalf("failed to read staging area: %v", err)
	}
	if rec == nil {
		t.Fatal("no staging record to fill")
	}
	content := rec.Content
	content = strings.ReplaceAll(content, "__TITLE__", title)
	content = strings.ReplaceAll(content, "__BODY__", body)
	if err := os.WriteFile(rec.Path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to rewrite staging record: %v", err)
	}
}
