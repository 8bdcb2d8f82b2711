package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestManager_ReadWrite_RoundTrip(t *testing.T) {
	original := &Config{
		StoreDir: "/home/user/project/.scribe",
		LogDir:   "/home/user/project/.scribe/log",
		Journal: JournalConfig{
			Type: "sqlite",
			Path: "/home/user/project/.scribe/journal.db",
		},
	}

	var buf bytes.Buffer
	m := &Manager{}

	if err := m.Write(&buf, original); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := m.Read(&buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if got.StoreDir != original.StoreDir {
		t.Errorf("StoreDir = %q, want %q", got.StoreDir, original.StoreDir)
	}
	if got.LogDir != original.LogDir {
		t.Errorf("LogDir = %q, want %q", got.LogDir, original.LogDir)
	}
	if got.Journal.Type != "sqlite" {
		t.Errorf("Journal.Type = %q, want %q", got.Journal.Type, "sqlite")
	}
	if got.Journal.Path != original.Journal.Path {
		t.Errorf("Journal.Path = %q, want %q", got.Journal.Path, original.Journal.Path)
	}
}

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig("/data/.scribe")

	if cfg.StoreDir != "/data/.scribe" {
		t.Errorf("StoreDir = %q", cfg.StoreDir)
	}
	if cfg.LogDir != filepath.Join("/data/.scribe", "log") {
		t.Errorf("LogDir = %q", cfg.LogDir)
	}
	if cfg.Journal.Type != "sqlite" {
		t.Errorf("Journal.Type = %q", cfg.Journal.Type)
	}
	if cfg.Journal.Path != filepath.Join("/data/.scribe", "journal.db") {
		t.Errorf("Journal.Path = %q", cfg.Journal.Path)
	}
}

func TestReadFromFile(t *testing.T) {
	t.Run("reads a valid file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "scribe.toml")
		content := "store_dir = \"/data/.scribe\"\nlog_dir = \"/data/.scribe/log\"\n\n[journal]\ntype = \"memory\"\n"
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("writing config: %v", err)
		}

		cfg, err := ReadFromFile(path)
		if err != nil {
			t.Fatalf("ReadFromFile() error = %v", err)
		}
		if cfg.StoreDir != "/data/.scribe" {
			t.Errorf("StoreDir = %q", cfg.StoreDir)
		}
		if cfg.Journal.Type != "memory" {
			t.Errorf("Journal.Type = %q", cfg.Journal.Type)
		}
	})

	t.Run("missing file errors", func(t *testing.T) {
		if _, err := ReadFromFile(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
			t.Error("ReadFromFile() expected error for missing file")
		}
	})
}

func TestInit(t *testing.T) {
	t.Run("writes a new config file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config", "scribe.toml")
		cfg := NewConfig("/data/.scribe")

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		got, err := ReadFromFile(path)
		if err != nil {
			t.Fatalf("ReadFromFile() error = %v", err)
		}
		if got.StoreDir != cfg.StoreDir {
			t.Errorf("StoreDir = %q, want %q", got.StoreDir, cfg.StoreDir)
		}
	})

	t.Run("refuses to overwrite", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "scribe.toml")
		cfg := NewConfig("/data/.scribe")

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}
		if err := Init(path, cfg); err == nil {
			t.Error("second Init() expected error for existing file")
		}
	})
}
