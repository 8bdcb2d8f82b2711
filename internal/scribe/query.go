package scribe

import "scribe-go/internal/model"

// LastID returns the most recent entry id for today, or across the whole
// store when global is true. Returns "" when no entry exists yet.
func (s *ScribeService) LastID(global bool) (string, error) {
	if global {
		rec, err := s.logs.LastRecord()
		if err != nil || rec == nil {
			return "", err
		}
		return entryID(rec), nil
	}
	return s.logs.LastEntryID(s.clock.Now().Format("2006-01-02"))
}

// Find returns the entry with the given id, or nil when it does not exist.
func (s *ScribeService) Find(id string) (*model.Entry, error) {
	return s.logs.Find(id)
}

// SaveAsset archives filePath under the given entry id.
func (s *ScribeService) SaveAsset(entryID, filePath string) (string, error) {
	assetID, err := s.assets.Save(entryID, filePath)
	if err != nil {
		return "", err
	}
	s.logger.Info("asset saved", "asset", assetID)
	return assetID, nil
}

// RestoreAsset copies an archived asset into destDir and returns the
// written path. The copy is prefixed so it can never collide with a live
// file of the same name.
func (s *ScribeService) RestoreAsset(assetID, destDir string) (string, error) {
	path, err := s.assets.Restore(assetID, destDir)
	if err != nil {
		return "", err
	}
	s.logger.Info("asset restored", "asset", assetID, "path", path)
	return path, nil
}

// ListAssets returns the archived asset ids whose names contain filter,
// case-insensitively. An empty filter lists everything.
func (s *ScribeService) ListAssets(filter string) ([]string, error) {
	return s.assets.List(filter)
}
