package assetstore_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"scribe-go/internal/assetstore"
	"scribe-go/internal/scribe"
)

func newStore(t *testing.T) *assetstore.FileSystemAssetStore {
	t.Helper()
	s, err := assetstore.NewFileSystemAssetStore(filepath.Join(t.TempDir(), "assets"))
	if err != nil {
		t.Fatalf("NewFileSystemAssetStore() error = %v", err)
	}
	return s
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func TestFileSystemAssetStore_Save(t *testing.T) {
	t.Run("copies the file verbatim", func(t *testing.T) {
		s := newStore(t)
		src := writeFile(t, "model.py", "exact bytes\x00binary ok")

		assetID, err := s.Save("2025-03-10-14-05", src)
		if err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		if assetID != "2025-03-10-14-05-model.py" {
			t.Errorf("Save() = %q", assetID)
		}

		ok, err := s.Exists(assetID)
		if err != nil || !ok {
			t.Fatalf("Exists() = %v, %v; want true", ok, err)
		}

		// The source is untouched.
		if _, err := os.Stat(src); err != nil {
			t.Errorf("source file gone: %v", err)
		}
	})

	t.Run("missing source", func(t *testing.T) {
		s := newStore(t)

		_, err := s.Save("2025-03-10-14-05", "/nonexistent/file.txt")
		var notFound *scribe.SourceNotFoundError
		if !errors.As(err, &notFound) {
			t.Fatalf("Save() error = %v, want SourceNotFoundError", err)
		}
		if notFound.Path != "/nonexistent/file.txt" {
			t.Errorf("Path = %q", notFound.Path)
		}
	})

	t.Run("never overwrites", func(t *testing.T) {
		s := newStore(t)
		src := writeFile(t, "model.py", "v1")

		if _, err := s.Save("2025-03-10-14-05", src); err != nil {
			t.Fatalf("Save() error = %v", err)
		}

		_, err := s.Save("2025-03-10-14-05", src)
		var exists *scribe.DestinationExistsError
		if !errors.As(err, &exists) {
			t.Fatalf("second Save() error = %v, want DestinationExistsError", err)
		}
	})
}

func TestFileSystemAssetStore_Restore(t *testing.T) {
	t.Run("writes a prefixed copy", func(t *testing.T) {
		s := newStore(t)
		src := writeFile(t, "model.py", "archived content")
		assetID, err := s.Save("2025-03-10-14-05", src)
		if err != nil {
			t.Fatalf("Save() error = %v", err)
		}

		destDir := t.TempDir()
		path, err := s.Restore(assetID, destDir)
		if err != nil {
			t.Fatalf("Restore() error = %v", err)
		}
		if filepath.Base(path) != "_"+assetID {
			t.Errorf("restored name = %q, want underscore prefix", filepath.Base(path))
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("reading restored file: %v", err)
		}
		if string(data) != "archived content" {
			t.Errorf("restored content = %q", data)
		}
	})

	t.Run("never overwrites an existing restore", func(t *testing.T) {
		s := newStore(t)
		src := writeFile(t, "model.py", "v1")
		assetID, _ := s.Save("2025-03-10-14-05", src)

		destDir := t.TempDir()
		if _, err := s.Restore(assetID, destDir); err != nil {
			t.Fatalf("Restore() error = %v", err)
		}

		_, err := s.Restore(assetID, destDir)
		var exists *scribe.DestinationExistsError
		if !errors.As(err, &exists) {
			t.Fatalf("second Restore() error = %v, want DestinationExistsError", err)
		}
	})

	t.Run("unknown asset", func(t *testing.T) {
		s := newStore(t)

		if _, err := s.Restore("2025-03-10-14-05-ghost.txt", t.TempDir()); err == nil {
			t.Error("Restore() expected error for unknown asset")
		}
	})
}

func TestFileSystemAssetStore_Delete(t *testing.T) {
	s := newStore(t)
	src := writeFile(t, "model.py", "v1")
	assetID, _ := s.Save("2025-03-10-14-05", src)

	if err := s.Delete(assetID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	ok, _ := s.Exists(assetID)
	if ok {
		t.Error("asset still exists after delete")
	}

	// Idempotent.
	if err := s.Delete(assetID); err != nil {
		t.Errorf("second Delete() error = %v", err)
	}
}

func TestFileSystemAssetStore_DeleteForEntry(t *testing.T) {
	s := newStore(t)
	a := writeFile(t, "a.txt", "a")
	b := writeFile(t, "b.txt", "b")
	c := writeFile(t, "c.txt", "c")

	s.Save("2025-03-10-14-05", a)
	s.Save("2025-03-10-14-05", b)
	s.Save("2025-03-10-16-20", c)

	deleted, err := s.DeleteForEntry("2025-03-10-14-05")
	if err != nil {
		t.Fatalf("DeleteForEntry() error = %v", err)
	}
	if len(deleted) != 2 {
		t.Errorf("deleted = %v, want 2", deleted)
	}

	remaining, err := s.List("")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(remaining) != 1 || remaining[0] != "2025-03-10-16-20-c.txt" {
		t.Errorf("remaining = %v", remaining)
	}
}

func TestFileSystemAssetStore_List(t *testing.T) {
	s := newStore(t)
	s.Save("2025-03-10-14-05", writeFile(t, "Model.PY", "x"))
	s.Save("2025-03-10-16-20", writeFile(t, "notes.txt", "x"))

	t.Run("empty filter lists everything sorted", func(t *testing.T) {
		ids, err := s.List("")
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(ids) != 2 || ids[0] != "2025-03-10-14-05-Model.PY" {
			t.Errorf("List() = %v", ids)
		}
	})

	t.Run("filter is case-insensitive", func(t *testing.T) {
		ids, err := s.List("model")
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(ids) != 1 || ids[0] != "2025-03-10-14-05-Model.PY" {
			t.Errorf("List(model) = %v", ids)
		}
	})

	t.Run("no matches", func(t *testing.T) {
		ids, err := s.List("zzz")
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(ids) != 0 {
			t.Errorf("List(zzz) = %v", ids)
		}
	})
}
