package scribe

import (
	"fmt"

	"scribe-go/internal/model"
	"scribe-go/internal/record"
)

// ScribeService is the orchestration layer that coordinates the log store,
// asset store, staging area, and external commit-state provider to perform
// the high-level operations needed by the CLI.
type ScribeService struct {
	logs    LogStore
	assets  AssetStore
	staging StagingArea
	commits CommitStateProvider
	logger  Logger
	clock   Clock
	alloc   *IdentifierAllocator
}

// NewScribeService creates a new ScribeService with the provided
// dependencies. commits may be nil when no commit-state provider is
// available; prepare then records no external state and git-entry mode
// fails at finalize.
func NewScribeService(logs LogStore, assets AssetStore, staging StagingArea, commits CommitStateProvider, logger Logger, clock Clock) *ScribeService {
	return &ScribeService{
		logs:    logs,
		assets:  assets,
		staging: staging,
		commits: commits,
		logger:  logger,
		clock:   clock,
		alloc:   NewIdentifierAllocator(logs),
	}
}

// NewID allocates an entry id for the current time without creating
// anything. Allocation is pure, so calling this repeatedly is safe.
func (s *ScribeService) NewID() (string, error) {
	return s.alloc.Allocate(s.clock.Now())
}

// PrepareOptions carries the metadata requested at prepare time.
type PrepareOptions struct {
	Touched  []model.TouchedFile
	Archives []model.PendingArchive
	Related  []string
	GitEntry bool
}

// Prepare allocates an id and creates the staging record: placeholder title
// and body, the requested metadata sections, and the pending operations
// finalize must carry out. The returned record's Path is where the external
// text-drafting collaborator fills in the placeholders.
func (s *ScribeService) Prepare(opts PrepareOptions) (*model.StagingRecord, error) {
	now := s.clock.Now()
	id, err := s.alloc.Allocate(now)
	if err != nil {
		return nil, err
	}

	var head string
	if s.commits != nil {
		// Not being in a repository is not an error; the entry simply
		// carries no external state.
		if h, err := s.commits.Head(); err == nil {
			head = h
		}
	}

	var related []model.RelatedRef
	for _, rid := range opts.Related {
		ref := model.RelatedRef{ID: rid}
		if e, err := s.logs.Find(rid); err == nil && e != nil {
			ref.Title = e.Title
		}
		related = append(related, ref)
	}

	var archived []model.ArchivedRef
	for _, a := range opts.Archives {
		archived = append(archived, model.ArchivedRef{
			OriginalPath: a.Source,
			AssetID:      record.AssetID(id, a.Source),
			Description:  a.Description,
		})
	}

	entry := &model.Entry{
		ID:            id,
		Timestamp:     now.Format("15:04"),
		Title:         record.TitlePlaceholder,
		Body:          record.BodyPlaceholder,
		Touched:       opts.Touched,
		Archived:      archived,
		Related:       related,
		ExternalState: head,
	}
	pending := &model.Pending{
		GitEntry: opts.GitEntry,
		Archives: opts.Archives,
	}

	path, err := s.staging.Create(entry, pending)
	if err != nil {
		return nil, err
	}

	s.logger.Info("entry prepared", "id", id, "staging", path)
	return &model.StagingRecord{ID: id, Path: path, Pending: pending, Entry: entry}, nil
}

// Status returns the current staging record without mutating it, or nil
// when nothing is pending.
func (s *ScribeService) Status() (*model.StagingRecord, error) {
	return s.staging.Current()
}

// Abort discards the staging record. No entry and no asset is created; the
// stores are left exactly as they were before prepare. Returns the aborted
// id, or "" when nothing was pending.
func (s *ScribeService) Abort() (string, error) {
	rec, err := s.staging.Current()
	if err != nil {
		return "", err
	}
	if rec == nil {
		return "", nil
	}
	if err := s.staging.Remove(); err != nil {
		return "", err
	}
	s.logger.Info("entry aborted", "id", rec.ID)
	return rec.ID, nil
}

// Finalize commits the staging record: verifies every placeholder has been
// replaced, materializes the pending archives (all or nothing), invokes the
// external commit hook in git-entry mode, appends the completed entry to
// the daily log, and deletes the staging record. Failures before the append
// leave zero trace apart from the still-pending staging record; failures
// after the append are reported as errors but never undone here — recovery
// is an explicit follow-up.
//
// Validation runs after every successful finalize; any violations are
// returned for the caller to present.
func (s *ScribeService) Finalize() (string, []model.Violation, error) {
	rec, err := s.staging.Current()
	if err != nil {
		return "", nil, err
	}
	if rec == nil {
		return "", nil, ErrNoPendingEntry
	}

	if !rec.TitleFilled {
		return "", nil, &PlaceholderUnresolvedError{Field: "title", Placeholder: record.TitlePlaceholder}
	}
	if !rec.BodyFilled {
		return "", nil, &PlaceholderUnresolvedError{Field: "body", Placeholder: record.BodyPlaceholder}
	}

	entry, pending, err := record.Parse(rec.Content)
	if err != nil {
		return "", nil, fmt.Errorf("invalid staging record %s: %w", rec.ID, err)
	}
	if entry.ID == "" {
		return "", nil, fmt.Errorf("staging record %s has no id in frontmatter", rec.ID)
	}
	if entry.Title == "" {
		return "", nil, &PlaceholderUnresolvedError{Field: "title", Placeholder: record.TitlePlaceholder}
	}

	// Materialize the archive set. Any failure rolls back the assets saved
	// so far: the archive set commits as a whole or not at all.
	var saved []string
	rollback := func() {
		for _, id := range saved {
			if err := s.assets.Delete(id); err != nil {
				s.logger.Error("rolling back archived asset", "asset", id, "error", err)
			}
		}
	}

	if pending != nil {
		for _, a := range pending.Archives {
			assetID, err := s.assets.Save(entry.ID, a.Source)
			if err != nil {
				rollback()
				return "", nil, err
			}
			saved = append(saved, assetID)
			s.logger.Info("archived", "asset", assetID)
		}
	}

	if pending != nil && pending.GitEntry {
		if s.commits == nil {
			rollback()
			return "", nil, &ExternalCommitError{Err: fmt.Errorf("no commit-state provider configured")}
		}
		state, err := s.commits.Commit(entry.Title, rec.Content)
		if err != nil {
			rollback()
			return "", nil, &ExternalCommitError{Err: err}
		}
		entry.ExternalState = state
		entry.Mode = "git-entry"
		s.logger.Info("external commit created", "state", state)
	}

	// Rebuild the frontmatter without the pending block, keeping the edited
	// body bytes exactly as the drafting collaborator left them.
	head, err := record.RenderFrontmatter(entry, nil)
	if err != nil {
		rollback()
		return "", nil, err
	}
	_, body, _ := record.Split(rec.Content)

	if err := s.logs.Append(entry.Date(), head+body); err != nil {
		rollback()
		return "", nil, fmt.Errorf("appending entry %s: %w", entry.ID, err)
	}

	// The entry is durable from here on. Anything that fails now is
	// reported, not rolled back.
	if err := s.staging.Remove(); err != nil {
		return entry.ID, nil, fmt.Errorf("entry %s appended but staging record not removed: %w", entry.ID, err)
	}

	s.logger.Info("entry finalized", "id", entry.ID)

	violations, err := s.Validate()
	if err != nil {
		return entry.ID, nil, fmt.Errorf("entry %s appended but validation failed: %w", entry.ID, err)
	}
	return entry.ID, violations, nil
}
