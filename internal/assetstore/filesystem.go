// Package assetstore implements archive storage on the local filesystem:
// verbatim file snapshots named {entryID}-{basename} in a single directory.
package assetstore

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"scribe-go/internal/record"
	"scribe-go/internal/scribe"
)

// FileSystemAssetStore stores assets as flat files under one directory.
// Save and Restore copy bytes verbatim; neither ever overwrites an existing
// file.
type FileSystemAssetStore struct {
	dir string
}

// NewFileSystemAssetStore creates an asset store rooted at dir, creating the
// directory if needed.
func NewFileSystemAssetStore(dir string) (*FileSystemAssetStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating assets directory: %w", err)
	}
	return &FileSystemAssetStore{dir: dir}, nil
}

// Save copies sourcePath into the archive directory as
// {entryID}-{basename(sourcePath)} and returns the asset id.
func (s *FileSystemAssetStore) Save(entryID, sourcePath string) (string, error) {
	if _, err := os.Stat(sourcePath); err != nil {
		if os.IsNotExist(err) {
			return "", &scribe.SourceNotFoundError{Path: sourcePath}
		}
		return "", fmt.Errorf("stat source %s: %w", sourcePath, err)
	}

	assetID := record.AssetID(entryID, sourcePath)
	destPath := filepath.Join(s.dir, assetID)
	if _, err := os.Stat(destPath); err == nil {
		return "", &scribe.DestinationExistsError{Path: assetID}
	}

	if err := copyFile(sourcePath, destPath); err != nil {
		return "", fmt.Errorf("archiving %s: %w", sourcePath, err)
	}
	return assetID, nil
}

// Restore copies an asset to destDir/_{assetID}. The underscore prefix keeps
// the restored copy from shadowing a live file of the same base name.
func (s *FileSystemAssetStore) Restore(assetID, destDir string) (string, error) {
	srcPath := filepath.Join(s.dir, assetID)
	if _, err := os.Stat(srcPath); err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("asset %s not found in archive", assetID)
		}
		return "", fmt.Errorf("stat asset %s: %w", assetID, err)
	}

	destPath := filepath.Join(destDir, "_"+assetID)
	if _, err := os.Stat(destPath); err == nil {
		return "", &scribe.DestinationExistsError{Path: destPath}
	}

	if err := copyFile(srcPath, destPath); err != nil {
		return "", fmt.Errorf("restoring %s: %w", assetID, err)
	}
	return destPath, nil
}

// Delete removes an asset file. Deleting an absent asset is a no-op.
func (s *FileSystemAssetStore) Delete(assetID string) error {
	err := os.Remove(filepath.Join(s.dir, assetID))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting asset %s: %w", assetID, err)
	}
	return nil
}

// DeleteForEntry removes every asset named {entryID}-* and returns the
// deleted asset ids.
func (s *FileSystemAssetStore) DeleteForEntry(entryID string) ([]string, error) {
	all, err := s.List("")
	if err != nil {
		return nil, err
	}

	var deleted []string
	prefix := entryID + "-"
	for _, id := range all {
		if !strings.HasPrefix(id, prefix) {
			continue
		}
		if err := s.Delete(id); err != nil {
			return deleted, err
		}
		deleted = append(deleted, id)
	}
	return deleted, nil
}

// Exists reports whether an asset file is present.
func (s *FileSystemAssetStore) Exists(assetID string) (bool, error) {
	_, err := os.Stat(filepath.Join(s.dir, assetID))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("stat asset %s: %w", assetID, err)
}

// List returns asset ids containing filter (case-insensitive), sorted
// lexicographically.
func (s *FileSystemAssetStore) List(filter string) ([]string, error) {
	dirEntries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading assets directory: %w", err)
	}

	needle := strings.ToLower(filter)
	var ids []string
	for _, de := range dirEntries {
		if de.IsDir() {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(de.Name()), needle) {
			continue
		}
		ids = append(ids, de.Name())
	}
	sort.Strings(ids)
	return ids, nil
}

// copyFile copies src to dest byte for byte. dest must not exist.
func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dest)
		return err
	}
	return out.Close()
}

// Compile-time check that FileSystemAssetStore implements the AssetStore interface.
var _ scribe.AssetStore = (*FileSystemAssetStore)(nil)
