package scribe_test

import (
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"scribe-go/internal/model"
	"scribe-go/internal/scribe"
	"scribe-go/internal/testutil"
)

func TestScribeService_NewID(t *testing.T) {
	ts := testutil.NewTestStore(t)

	id, err := ts.Service.NewID()
	if err != nil {
		t.Fatalf("NewID() error = %v", err)
	}
	if id != "2025-03-10-14-05" {
		t.Errorf("NewID() = %q, want %q", id, "2025-03-10-14-05")
	}

	// Allocation is pure: repeating it without committing anything yields
	// the same id.
	again, err := ts.Service.NewID()
	if err != nil {
		t.Fatalf("second NewID() error = %v", err)
	}
	if again != id {
		t.Errorf("second NewID() = %q, want %q", again, id)
	}
}

func TestScribeService_Prepare(t *testing.T) {
	t.Run("creates the staging slot with placeholders", func(t *testing.T) {
		ts := testutil.NewTestStore(t)

		rec, err := ts.Service.Prepare(scribe.PrepareOptions{})
		if err != nil {
			t.Fatalf("Prepare() error = %v", err)
		}
		if rec.ID != "2025-03-10-14-05" {
			t.Errorf("ID = %q, want %q", rec.ID, "2025-03-10-14-05")
		}
		if _, err := os.Stat(rec.Path); err != nil {
			t.Fatalf("staging slot not on disk: %v", err)
		}

		cur, err := ts.Service.Status()
		if err != nil {
			t.Fatalf("Status() error = %v", err)
		}
		if cur == nil {
			t.Fatal("Status() = nil, want staging record")
		}
		if cur.TitleFilled || cur.BodyFilled {
			t.Error("placeholders reported as filled in a fresh staging record")
		}
	})

	t.Run("second prepare is refused", func(t *testing.T) {
		ts := testutil.NewTestStore(t)

		if _, err := ts.Service.Prepare(scribe.PrepareOptions{}); err != nil {
			t.Fatalf("Prepare() error = %v", err)
		}
		_, err := ts.Service.Prepare(scribe.PrepareOptions{})
		if !errors.Is(err, scribe.ErrStagingBusy) {
			t.Errorf("second Prepare() error = %v, want ErrStagingBusy", err)
		}
	})

	t.Run("records head state and pending operations", func(t *testing.T) {
		ts := testutil.NewTestStore(t)
		ts.Commits.HeadState = "cafe123"
		src := testutil.WriteSource(t, "notes.txt", "raw notes")

		rec, err := ts.Service.Prepare(scribe.PrepareOptions{
			Archives: []model.PendingArchive{{Source: src, Description: "before cleanup"}},
			GitEntry: true,
		})
		if err != nil {
			t.Fatalf("Prepare() error = %v", err)
		}
		if rec.Entry.ExternalState != "cafe123" {
			t.Errorf("ExternalState = %q, want head at prepare time", rec.Entry.ExternalState)
		}
		if rec.Pending == nil || !rec.Pending.GitEntry || len(rec.Pending.Archives) != 1 {
			t.Errorf("Pending = %+v", rec.Pending)
		}

		// Nothing is materialized at prepare time.
		assets, err := ts.Assets.List("")
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(assets) != 0 {
			t.Errorf("assets at prepare time = %v, want none", assets)
		}
	})
}

func TestScribeService_Abort(t *testing.T) {
	ts := testutil.NewTestStore(t)

	if _, err := ts.Service.Prepare(scribe.PrepareOptions{}); err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}

	id, err := ts.Service.Abort()
	if err != nil {
		t.Fatalf("Abort() error = %v", err)
	}
	if id != "2025-03-10-14-05" {
		t.Errorf("Abort() = %q, want %q", id, "2025-03-10-14-05")
	}

	// Aborting again is a no-op.
	id, err = ts.Service.Abort()
	if err != nil {
		t.Fatalf("second Abort() error = %v", err)
	}
	if id != "" {
		t.Errorf("second Abort() = %q, want empty", id)
	}

	// The id is released: the next prepare reuses it.
	rec, err := ts.Service.Prepare(scribe.PrepareOptions{})
	if err != nil {
		t.Fatalf("Prepare() after abort error = %v", err)
	}
	if rec.ID != "2025-03-10-14-05" {
		t.Errorf("Prepare() after abort id = %q, want %q", rec.ID, "2025-03-10-14-05")
	}
}

func TestScribeService_Finalize(t *testing.T) {
	t.Run("errors when nothing is staged", func(t *testing.T) {
		ts := testutil.NewTestStore(t)

		_, _, err := ts.Service.Finalize()
		if !errors.Is(err, scribe.ErrNoPendingEntry) {
			t.Errorf("Finalize() error = %v, want ErrNoPendingEntry", err)
		}
	})

	t.Run("refuses unresolved placeholders", func(t *testing.T) {
		ts := testutil.NewTestStore(t)

		if _, err := ts.Service.Prepare(scribe.PrepareOptions{}); err != nil {
			t.Fatalf("Prepare() error = %v", err)
		}

		_, _, err := ts.Service.Finalize()
		var unresolved *scribe.PlaceholderUnresolvedError
		if !errors.As(err, &unresolved) {
			t.Fatalf("Finalize() error = %v, want PlaceholderUnresolvedError", err)
		}
		if unresolved.Field != "title" {
			t.Errorf("Field = %q, want %q", unresolved.Field, "title")
		}

		// The staging record survives the refusal.
		cur, err := ts.Service.Status()
		if err != nil || cur == nil {
			t.Fatalf("Status() = %v, %v; want staging record", cur, err)
		}
	})

	t.Run("commits the entry to the daily log", func(t *testing.T) {
		ts := testutil.NewTestStore(t)

		if _, err := ts.Service.Prepare(scribe.PrepareOptions{}); err != nil {
			t.Fatalf("Prepare() error = %v", err)
		}
		ts.FillStaging(t, "Fixed the import", "Tracked it down to a stale cache.")

		id, violations, err := ts.Service.Finalize()
		if err != nil {
			t.Fatalf("Finalize() error = %v", err)
		}
		if id != "2025-03-10-14-05" {
			t.Errorf("Finalize() id = %q", id)
		}
		if len(violations) != 0 {
			t.Errorf("Finalize() violations = %v, want none", violations)
		}

		e, err := ts.Logs.Find(id)
		if err != nil {
			t.Fatalf("Find() error = %v", err)
		}
		if e == nil {
			t.Fatal("entry not found in daily log")
		}
		if e.Title != "Fixed the import" {
			t.Errorf("Title = %q", e.Title)
		}
		if e.Body != "Tracked it down to a stale cache." {
			t.Errorf("Body = %q", e.Body)
		}
		if e.ExternalState != "abc1234" {
			t.Errorf("ExternalState = %q, want head recorded at prepare", e.ExternalState)
		}

		cur, err := ts.Service.Status()
		if err != nil {
			t.Fatalf("Status() error = %v", err)
		}
		if cur != nil {
			t.Error("staging record still present after finalize")
		}
	})

	t.Run("materializes archives", func(t *testing.T) {
		ts := testutil.NewTestStore(t)
		src := testutil.WriteSource(t, "notes.txt", "raw notes")

		if _, err := ts.Service.Prepare(scribe.PrepareOptions{
			Archives: []model.PendingArchive{{Source: src, Description: "before cleanup"}},
		}); err != nil {
			t.Fatalf("Prepare() error = %v", err)
		}
		ts.FillStaging(t, "Cleaned up notes", "Archived the original first.")

		id, violations, err := ts.Service.Finalize()
		if err != nil {
			t.Fatalf("Finalize() error = %v", err)
		}
		if len(violations) != 0 {
			t.Errorf("violations = %v, want none", violations)
		}

		ok, err := ts.Assets.Exists(id + "-notes.txt")
		if err != nil {
			t.Fatalf("Exists() error = %v", err)
		}
		if !ok {
			t.Error("archived asset not found on disk")
		}
	})

	t.Run("rolls back archives when one source is missing", func(t *testing.T) {
		ts := testutil.NewTestStore(t)
		src := testutil.WriteSource(t, "good.txt", "present")

		if _, err := ts.Service.Prepare(scribe.PrepareOptions{
			Archives: []model.PendingArchive{
				{Source: src},
				{Source: "/nonexistent/missing.txt"},
			},
		}); err != nil {
			t.Fatalf("Prepare() error = %v", err)
		}
		ts.FillStaging(t, "Doomed", "This will not commit.")

		_, _, err := ts.Service.Finalize()
		var notFound *scribe.SourceNotFoundError
		if !errors.As(err, &notFound) {
			t.Fatalf("Finalize() error = %v, want SourceNotFoundError", err)
		}

		// All-or-nothing: the first asset was rolled back.
		assets, err := ts.Assets.List("")
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(assets) != 0 {
			t.Errorf("assets after rollback = %v, want none", assets)
		}

		// And no entry was appended.
		last, err := ts.Logs.LastRecord()
		if err != nil {
			t.Fatalf("LastRecord() error = %v", err)
		}
		if last != nil {
			t.Error("entry appended despite archive failure")
		}

		// The staging record is intact for another attempt.
		cur, err := ts.Service.Status()
		if err != nil || cur == nil {
			t.Fatalf("Status() = %v, %v; want staging record", cur, err)
		}
	})

	t.Run("git entry mode commits through the provider", func(t *testing.T) {
		ts := testutil.NewTestStore(t)

		if _, err := ts.Service.Prepare(scribe.PrepareOptions{GitEntry: true}); err != nil {
			t.Fatalf("Prepare() error = %v", err)
		}
		ts.FillStaging(t, "Shipped the fix", "Commit the log entry itself.")

		id, _, err := ts.Service.Finalize()
		if err != nil {
			t.Fatalf("Finalize() error = %v", err)
		}

		if len(ts.Commits.Commits) != 1 {
			t.Fatalf("commit count = %d, want 1", len(ts.Commits.Commits))
		}
		if ts.Commits.Commits[0].Subject != "Shipped the fix" {
			t.Errorf("commit subject = %q", ts.Commits.Commits[0].Subject)
		}

		e, err := ts.Logs.Find(id)
		if err != nil || e == nil {
			t.Fatalf("Find() = %v, %v", e, err)
		}
		if e.ExternalState != "def5678" {
			t.Errorf("ExternalState = %q, want the new commit state", e.ExternalState)
		}
		if e.Mode != "git-entry" {
			t.Errorf("Mode = %q, want %q", e.Mode, "git-entry")
		}
	})

	t.Run("git entry failure leaves zero trace", func(t *testing.T) {
		ts := testutil.NewTestStore(t)
		ts.Commits.CommitErr = fmt.Errorf("nothing staged in the repository")
		src := testutil.WriteSource(t, "notes.txt", "raw notes")

		if _, err := ts.Service.Prepare(scribe.PrepareOptions{
			GitEntry: true,
			Archives: []model.PendingArchive{{Source: src}},
		}); err != nil {
			t.Fatalf("Prepare() error = %v", err)
		}
		ts.FillStaging(t, "Doomed", "The commit hook will fail.")

		_, _, err := ts.Service.Finalize()
		var commitErr *scribe.ExternalCommitError
		if !errors.As(err, &commitErr) {
			t.Fatalf("Finalize() error = %v, want ExternalCommitError", err)
		}

		assets, _ := ts.Assets.List("")
		if len(assets) != 0 {
			t.Errorf("assets after commit failure = %v, want none", assets)
		}
		last, _ := ts.Logs.LastRecord()
		if last != nil {
			t.Error("entry appended despite commit failure")
		}
		cur, _ := ts.Service.Status()
		if cur == nil {
			t.Error("staging record gone after commit failure")
		}
	})

	t.Run("same minute entries get suffixed ids", func(t *testing.T) {
		ts := testutil.NewTestStore(t)

		commit := func(title string) string {
			t.Helper()
			if _, err := ts.Service.Prepare(scribe.PrepareOptions{}); err != nil {
				t.Fatalf("Prepare() error = %v", err)
			}
			ts.FillStaging(t, title, "body")
			id, _, err := ts.Service.Finalize()
			if err != nil {
				t.Fatalf("Finalize() error = %v", err)
			}
			return id
		}

		first := commit("First")
		second := commit("Second")
		if first != "2025-03-10-14-05" || second != "2025-03-10-14-05-02" {
			t.Errorf("ids = %q, %q", first, second)
		}

		ts.Clock.Advance(time.Minute)
		third := commit("Third")
		if third != "2025-03-10-14-06" {
			t.Errorf("third id = %q, want %q", third, "2025-03-10-14-06")
		}
	})

	t.Run("related entries resolve their titles", func(t *testing.T) {
		ts := testutil.NewTestStore(t)

		if _, err := ts.Service.Prepare(scribe.PrepareOptions{}); err != nil {
			t.Fatalf("Prepare() error = %v", err)
		}
		ts.FillStaging(t, "First failure", "Saw it in CI.")
		firstID, _, err := ts.Service.Finalize()
		if err != nil {
			t.Fatalf("Finalize() error = %v", err)
		}

		ts.Clock.Advance(time.Minute)
		rec, err := ts.Service.Prepare(scribe.PrepareOptions{Related: []string{firstID}})
		if err != nil {
			t.Fatalf("Prepare() error = %v", err)
		}
		if len(rec.Entry.Related) != 1 || rec.Entry.Related[0].Title != "First failure" {
			t.Errorf("Related = %+v, want resolved title", rec.Entry.Related)
		}

		ts.FillStaging(t, "Root caused", "Same flake as before.")
		_, violations, err := ts.Service.Finalize()
		if err != nil {
			t.Fatalf("Finalize() error = %v", err)
		}
		if len(violations) != 0 {
			t.Errorf("violations = %v, want none", violations)
		}
	})
}
