package syncmeta

import (
	"fmt"
)

// FileIDMode selects how the scanner fills Item.FSID1 and Item.FSID2.
type FileIDMode string

const (
	// FileIDIndex sets both identifiers to the file's enumeration index.
	// Index ids are not stable across scans and cannot detect moves.
	FileIDIndex FileIDMode = "index"

	// FileIDPlatform uses the identifiers reported by the filesystem.
	FileIDPlatform FileIDMode = "platform"
)

// ParseFileIDMode converts a config value to a FileIDMode. Empty means FileIDIndex.
func ParseFileIDMode(s string) (FileIDMode, error) {
	switch FileIDMode(s) {
	case "", FileIDIndex:
		return FileIDIndex, nil
	case FileIDPlatform:
		return FileIDPlatform, nil
	default:
		return "", fmt.Errorf("unknown file id mode: %q", s)
	}
}

// Scanner builds snapshots by walking a directory tree and hashing file contents.
type Scanner struct {
	fsmgr  FilesystemManager
	hasher Hasher
	idMode FileIDMode
	logger Logger
}

// NewScanner creates a Scanner.
func NewScanner(fsmgr FilesystemManager, hasher Hasher, idMode FileIDMode, logger Logger) *Scanner {
	return &Scanner{
		fsmgr:  fsmgr,
		hasher: hasher,
		idMode: idMode,
		logger: logger,
	}
}

// FromPath scans rootPath and returns a snapshot with one item per regular
// file below it. Items are in enumeration order. Any filesystem or hashing
// failure aborts the scan.
func (s *Scanner) FromPath(sourceID, rootPath string) (*Snapshot, error) {
	root, err := s.fsmgr.Resolve(rootPath)
	if err != nil {
		return nil, ScanError("resolve root", err)
	}
	if !root.IsDir() {
		return nil, ScanError("resolve root", fmt.Errorf("not a directory: %s", root.String()))
	}

	files, err := s.fsmgr.FindFiles(root)
	if err != nil {
		return nil, ScanError("enumerate", err)
	}

	snapshot := NewSnapshot(sourceID, root.String())
	snapshot.Items = make([]Item, 0, len(files))

	for i, f := range files {
		item, err := s.scanFile(sourceID, root, f, i)
		if err != nil {
			return nil, err
		}
		snapshot.Items = append(snapshot.Items, *item)
	}

	s.logger.Debug("scan complete", "source", sourceID, "root", root.String(), "files", len(files), "hash", s.hasher.Name())
	return snapshot, nil
}

// scanFile builds the item for a single enumerated file.
func (s *Scanner) scanFile(sourceID string, root, f *Path, index int) (*Item, error) {
	rel, err := f.RelativeTo(root.String())
	if err != nil {
		return nil, ScanError("relative path", err)
	}

	hash, err := s.hashFile(f)
	if err != nil {
		return nil, ScanError("hash "+rel, err)
	}

	item := &Item{
		SourceID:     sourceID,
		AbsolutePath: f.String(),
		RelativePath: rel,
		HashCode:     hash,
		LastModified: f.Info().ModTime(),
	}

	switch s.idMode {
	case FileIDPlatform:
		id, err := s.fsmgr.FileID(f.Info())
		if err != nil {
			return nil, ScanError("file id "+rel, err)
		}
		item.FSID1, item.FSID2 = id.ID1, id.ID2
	default:
		item.FSID1 = uint32(index)
		item.FSID2 = uint32(index)
	}

	return item, nil
}

func (s *Scanner) hashFile(f *Path) (string, error) {
	r, err := s.fsmgr.Open(f)
	if err != nil {
		return "", fmt.Errorf("opening file: %w", err)
	}
	defer r.Close()

	return s.hasher.Sum(r)
}
