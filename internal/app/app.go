package app

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"scribe-go/internal/assetstore"
	"scribe-go/internal/config"
	"scribe-go/internal/gitstate"
	"scribe-go/internal/journal"
	"scribe-go/internal/logstore"
	"scribe-go/internal/model"
	"scribe-go/internal/scribe"
	"scribe-go/internal/staging"
)

// ScribeApp is the application layer between the CLI and ScribeService.
// It constructs all dependencies from config, exposes the high-level
// operations, and manages the journal lifecycle on Close.
type ScribeApp struct {
	cfg     *config.Config
	journal scribe.Journal
	service *scribe.ScribeService
	op      *Operation
	logFile *os.File
}

// NewScribeApp creates a fully wired ScribeApp from the given config.
// operation identifies the CLI command being run (e.g. "Prepare",
// "Finalize"). The caller must call Close when done.
func NewScribeApp(cfg *config.Config, operation, parameters string) (*ScribeApp, error) {
	logs, err := logstore.NewFileSystemLogStore(cfg.StoreDir)
	if err != nil {
		return nil, fmt.Errorf("creating log store: %w", err)
	}

	assets, err := assetstore.NewFileSystemAssetStore(filepath.Join(cfg.StoreDir, "assets"))
	if err != nil {
		return nil, fmt.Errorf("creating asset store: %w", err)
	}

	sa, err := staging.NewFileSystemStagingArea(cfg.StoreDir)
	if err != nil {
		return nil, fmt.Errorf("creating staging area: %w", err)
	}

	clock := scribe.RealClock{}
	idgen := scribe.UUIDGenerator{}

	jnl, err := journal.NewJournalFromConfig(cfg.Journal, clock, idgen)
	if err != nil {
		return nil, fmt.Errorf("creating journal: %w", err)
	}

	opID := time.Now().UTC().Format("20060102T150405Z")
	logger, logFile, err := newLogger(cfg.LogDir, opID)
	if err != nil {
		jnl.Close()
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	wd, err := os.Getwd()
	if err != nil {
		jnl.Close()
		logFile.Close()
		return nil, fmt.Errorf("determining working directory: %w", err)
	}
	commits := gitstate.NewGitProvider(wd)

	svc := scribe.NewScribeService(logs, assets, sa, commits, &slogAdapter{l: logger}, clock)
	op := NewOperation(operation, parameters)

	return &ScribeApp{
		cfg:     cfg,
		journal: jnl,
		service: svc,
		op:      op,
		logFile: logFile,
	}, nil
}

// persistOperation saves the operation to the journal, giving it an id.
// This should only be called for store-mutating commands.
func (a *ScribeApp) persistOperation() error {
	if a.op.Persisted() {
		return nil // already persisted
	}
	id, err := a.journal.Begin(a.op.Operation, a.op.Parameters)
	if err != nil {
		return fmt.Errorf("persisting operation: %w", err)
	}
	a.op.ID = id
	return nil
}

// Fail marks the operation as failed for the journal record.
func (a *ScribeApp) Fail() {
	a.op.Status = "error"
}

// NewID allocates an entry id for the current time without creating anything.
func (a *ScribeApp) NewID() (string, error) {
	return a.service.NewID()
}

// LastID returns the most recent entry id for today, or across the whole
// store when global is true.
func (a *ScribeApp) LastID(global bool) (string, error) {
	return a.service.LastID(global)
}

// Find returns the entry with the given id, or nil when it does not exist.
func (a *ScribeApp) Find(id string) (*model.Entry, error) {
	return a.service.Find(id)
}

// Prepare allocates an id and creates the staging record.
func (a *ScribeApp) Prepare(opts scribe.PrepareOptions) (*model.StagingRecord, error) {
	if err := a.persistOperation(); err != nil {
		return nil, err
	}
	return a.service.Prepare(opts)
}

// PendingStatus returns the current staging record, or nil when nothing is
// pending.
func (a *ScribeApp) PendingStatus() (*model.StagingRecord, error) {
	return a.service.Status()
}

// Abort discards the staging record. Returns the aborted id, or "" when
// nothing was pending.
func (a *ScribeApp) Abort() (string, error) {
	if err := a.persistOperation(); err != nil {
		return "", err
	}
	return a.service.Abort()
}

// Finalize commits the staging record to the daily log. Returns the entry
// id and the validation findings of the post-commit check.
func (a *ScribeApp) Finalize() (string, []model.Violation, error) {
	if err := a.persistOperation(); err != nil {
		return "", nil, err
	}
	return a.service.Finalize()
}

// ShowLast returns the most recent record across the whole store.
func (a *ScribeApp) ShowLast() (*model.Record, error) {
	return a.service.ShowLast()
}

// DeleteLast removes the most recent entry and its assets. expectedID pins
// the deletion to the entry the caller was shown.
func (a *ScribeApp) DeleteLast(expectedID string) (*model.Record, []string, error) {
	if err := a.persistOperation(); err != nil {
		return nil, nil, err
	}
	return a.service.DeleteLast(expectedID)
}

// ReplaceLast rewrites the most recent entry's text in place.
func (a *ScribeApp) ReplaceLast(newContent string) (string, error) {
	if err := a.persistOperation(); err != nil {
		return "", err
	}
	return a.service.ReplaceLast(newContent)
}

// Rearchive replaces the last entry's assets with a fresh copy of filePath.
func (a *ScribeApp) Rearchive(filePath string) (string, []string, error) {
	if err := a.persistOperation(); err != nil {
		return "", nil, err
	}
	return a.service.Rearchive(filePath)
}

// Unarchive deletes the last entry's assets, leaving its text intact.
func (a *ScribeApp) Unarchive() ([]string, error) {
	if err := a.persistOperation(); err != nil {
		return nil, err
	}
	return a.service.Unarchive()
}

// SaveAsset archives filePath under the given entry id.
func (a *ScribeApp) SaveAsset(entryID, filePath string) (string, error) {
	if err := a.persistOperation(); err != nil {
		return "", err
	}
	return a.service.SaveAsset(entryID, filePath)
}

// RestoreAsset copies an archived asset into destDir.
func (a *ScribeApp) RestoreAsset(assetID, destDir string) (string, error) {
	return a.service.RestoreAsset(assetID, destDir)
}

// ListAssets returns the archived asset ids matching filter.
func (a *ScribeApp) ListAssets(filter string) ([]string, error) {
	return a.service.ListAssets(filter)
}

// Validate checks the whole store for integrity problems.
func (a *ScribeApp) Validate() ([]model.Violation, error) {
	return a.service.Validate()
}

// ValidateSince checks only entries newer than the given id.
func (a *ScribeApp) ValidateSince(since string) ([]model.Violation, error) {
	return a.service.ValidateSince(since)
}

// History returns the most recent journal operations, newest first.
func (a *ScribeApp) History(limit int) ([]*model.JournalOperation, error) {
	return a.journal.List(limit)
}

// Close finalizes the operation record and closes all resources.
func (a *ScribeApp) Close() error {
	var firstErr error

	if a.op.Persisted() {
		if err := a.journal.Finish(a.op.ID, a.op.Status); err != nil {
			firstErr = fmt.Errorf("finishing operation: %w", err)
		}
	}

	if err := a.journal.Close(); err != nil {
		if firstErr == nil {
			firstErr = fmt.Errorf("closing journal: %w", err)
		}
	}

	if a.logFile != nil {
		a.logFile.Close()
	}

	return firstErr
}
