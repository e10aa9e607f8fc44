package fs

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"syncmeta-go/internal/syncmeta"
)

// IgnoreFileName is the per-root file listing extra ignore patterns.
const IgnoreFileName = ".syncmetaignore"

// OSFilesystemManager is the real filesystem implementation of FilesystemManager.
type OSFilesystemManager struct {
	ignore []string // patterns from config, applied under every root
}

// NewOSFilesystemManager creates a filesystem manager that operates on the real
// filesystem. ignore holds patterns applied in addition to each root's ignore file.
func NewOSFilesystemManager(ignore []string) *OSFilesystemManager {
	return &OSFilesystemManager{ignore: ignore}
}

// Resolve validates a raw path and returns a Path object.
func (m *OSFilesystemManager) Resolve(rawPath string) (*syncmeta.Path, error) {
	absPath, err := filepath.Abs(rawPath)
	if err != nil {
		return nil, fmt.Errorf("resolving absolute path: %w", err)
	}

	info, err := os.Lstat(absPath)
	if err != nil {
		return nil, fmt.Errorf("stat path: %w", err)
	}

	mode := info.Mode()
	switch {
	case mode&os.ModeSymlink != 0:
		return nil, fmt.Errorf("symlinks not supported: %s", absPath)
	case mode&os.ModeDevice != 0:
		return nil, fmt.Errorf("device files not supported: %s", absPath)
	case mode&os.ModeNamedPipe != 0:
		return nil, fmt.Errorf("named pipes not supported: %s", absPath)
	case mode&os.ModeSocket != 0:
		return nil, fmt.Errorf("sockets not supported: %s", absPath)
	}

	return syncmeta.NewPath(absPath, info.IsDir(), info), nil
}

// Open opens a file for reading.
func (m *OSFilesystemManager) Open(path *syncmeta.Path) (io.ReadCloser, error) {
	if path.IsDir() {
		return nil, fmt.Errorf("cannot open directory as file: %s", path.String())
	}
	return os.Open(path.String())
}

// FindFiles walks dir recursively and returns its regular files. Entries
// matched by the ignore rules are skipped; an ignored directory is not entered.
func (m *OSFilesystemManager) FindFiles(dir *syncmeta.Path) ([]*syncmeta.Path, error) {
	if !dir.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", dir.String())
	}

	matcher, err := m.matcherFor(dir.String())
	if err != nil {
		return nil, err
	}

	paths := []*syncmeta.Path{}
	err = filepath.WalkDir(dir.String(), func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p == dir.String() {
			return nil
		}

		rel, err := syncmeta.NewPath(p, d.IsDir(), nil).RelativeTo(dir.String())
		if err != nil {
			return err
		}
		if matcher.Match(rel, d.IsDir()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return fmt.Errorf("stat %s: %w", p, err)
		}
		paths = append(paths, syncmeta.NewPath(p, false, info))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking directory: %w", err)
	}

	return paths, nil
}

// matcherFor combines the built-in, configured and per-root ignore patterns.
func (m *OSFilesystemManager) matcherFor(root string) (*IgnoreMatcher, error) {
	filePatterns, err := readIgnoreFile(root)
	if err != nil {
		return nil, err
	}

	patterns := make([]string, 0, len(defaultIgnorePatterns)+len(m.ignore)+len(filePatterns))
	patterns = append(patterns, defaultIgnorePatterns...)
	patterns = append(patterns, m.ignore...)
	patterns = append(patterns, filePatterns...)
	return NewIgnoreMatcher(patterns), nil
}

// Compile-time check that OSFilesystemManager implements syncmeta.FilesystemManager interface
var _ syncmeta.FilesystemManager = (*OSFilesystemManager)(nil)
