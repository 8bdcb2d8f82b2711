package scribe

import (
	"fmt"
	"sort"
	"strings"

	"scribe-go/internal/model"
	"scribe-go/internal/record"
)

// Validate checks the whole store for integrity problems: malformed or
// missing entry ids, Archived references with no asset on disk, assets no
// entry references, and Related links pointing at ids that do not exist.
// Violations are findings, not errors; err is non-nil only when the store
// itself cannot be read.
func (s *ScribeService) Validate() ([]model.Violation, error) {
	return s.validate("")
}

// ValidateSince checks only entries with ids strictly after since. The
// orphaned-asset and dangling-related passes need the full store, so an
// incremental run skips them.
func (s *ScribeService) ValidateSince(since string) ([]model.Violation, error) {
	if !record.ValidID(since) {
		return nil, fmt.Errorf("invalid entry id %q", since)
	}
	return s.validate(since)
}

func (s *ScribeService) validate(since string) ([]model.Violation, error) {
	dates, err := s.logs.Dates()
	if err != nil {
		return nil, err
	}

	full := since == ""
	var violations []model.Violation
	knownIDs := make(map[string]bool)
	referenced := make(map[string]bool)

	type relatedCheck struct {
		entryID string
		target  string
		file    string
	}
	var relChecks []relatedCheck

	for _, date := range dates {
		if !full && date < since[:10] {
			continue
		}
		file := date + ".md"
		recs, err := s.logs.Records(date)
		if err != nil {
			return nil, err
		}
		for _, rec := range recs {
			if rec.Entry == nil || rec.Entry.ID == "" {
				violations = append(violations, model.Violation{
					Kind:   model.ViolationInvalidID,
					File:   file,
					Detail: "record has no id",
				})
				continue
			}
			id := rec.Entry.ID
			knownIDs[id] = true
			if !full && id <= since {
				continue
			}
			if !record.ValidID(id) {
				violations = append(violations, model.Violation{
					Kind:    model.ViolationInvalidID,
					EntryID: id,
					File:    file,
					Detail:  fmt.Sprintf("malformed entry id `%s`", id),
				})
			}
			for _, ref := range rec.Entry.Archived {
				referenced[ref.AssetID] = true
				ok, err := s.assets.Exists(ref.AssetID)
				if err != nil {
					return nil, err
				}
				if !ok {
					violations = append(violations, model.Violation{
						Kind:    model.ViolationMissingAsset,
						EntryID: id,
						File:    file,
						Detail:  fmt.Sprintf("asset `%s` referenced by entry `%s` not found", ref.AssetID, id),
					})
				}
			}
			for _, rel := range rec.Entry.Related {
				relChecks = append(relChecks, relatedCheck{entryID: id, target: rel.ID, file: file})
			}
		}
	}

	if full {
		for _, c := range relChecks {
			if !knownIDs[c.target] {
				violations = append(violations, model.Violation{
					Kind:    model.ViolationDanglingRelated,
					EntryID: c.entryID,
					File:    c.file,
					Detail:  fmt.Sprintf("related entry `%s` does not exist", c.target),
				})
			}
		}

		assetIDs, err := s.assets.List("")
		if err != nil {
			return nil, err
		}
		for _, assetID := range assetIDs {
			if referenced[assetID] {
				continue
			}
			owner := assetOwner(assetID)
			detail := fmt.Sprintf("asset `%s` is not referenced by any entry", assetID)
			if owner != "" && !knownIDs[owner] {
				detail = fmt.Sprintf("asset `%s` belongs to unknown entry `%s`", assetID, owner)
			}
			violations = append(violations, model.Violation{
				Kind:    model.ViolationOrphanedAsset,
				EntryID: owner,
				Detail:  detail,
			})
		}
	}

	sort.SliceStable(violations, func(i, j int) bool {
		if violations[i].File != violations[j].File {
			return violations[i].File < violations[j].File
		}
		return violations[i].EntryID < violations[j].EntryID
	})

	s.logger.Info("store validated", "violations", len(violations))
	return violations, nil
}

// assetOwner extracts the entry id prefix from an asset id, or "" when the
// name does not carry one.
func assetOwner(assetID string) string {
	m := record.ScanID(assetID)
	if m == "" || !strings.HasPrefix(assetID, m+"-") {
		return ""
	}
	return m
}
