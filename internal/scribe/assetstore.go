package scribe

// AssetStore owns the archive directory: byte-for-byte file snapshots named
// {entryID}-{basename}. Saving and restoring never overwrite existing files.
type AssetStore interface {
	// Save copies sourcePath verbatim into the archive directory under the
	// derived asset id. Returns a SourceNotFoundError if sourcePath does not
	// exist and a DestinationExistsError if the asset name is taken.
	Save(entryID, sourcePath string) (assetID string, err error)

	// Restore copies an asset to destDir/_{assetID}. The underscore prefix
	// keeps the copy from colliding with a live file of the same base name,
	// so old and new can be diffed side by side. Returns a
	// DestinationExistsError if the prefixed path already exists.
	Restore(assetID, destDir string) (restoredPath string, err error)

	// Delete removes an asset file. Idempotent: deleting an absent asset is
	// a no-op.
	Delete(assetID string) error

	// DeleteForEntry removes every asset belonging to an entry and returns
	// the deleted asset ids.
	DeleteForEntry(entryID string) ([]string, error)

	// Exists reports whether an asset file is present.
	Exists(assetID string) (bool, error)

	// List returns asset ids containing the optional substring filter
	// (case-insensitive), sorted lexicographically — chronological, given
	// the id prefix.
	List(filter string) ([]string, error)
}
