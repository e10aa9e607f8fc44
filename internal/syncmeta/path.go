package syncmeta

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
)

// Path is a resolved filesystem path with the stat info captured when it was
// resolved or enumerated. Paths are produced by FilesystemManager implementations.
type Path struct {
	absPath string
	isDir   bool
	info    fs.FileInfo
}

// NewPath creates a Path from its components.
func NewPath(absPath string, isDir bool, info fs.FileInfo) *Path {
	return &Path{
		absPath: absPath,
		isDir:   isDir,
		info:    info,
	}
}

// String returns the absolute path.
func (p *Path) String() string {
	return p.absPath
}

// IsDir reports whether the path is a directory.
func (p *Path) IsDir() bool {
	return p.isDir
}

// Info returns the cached stat info.
func (p *Path) Info() fs.FileInfo {
	return p.info
}

// RelativeTo returns the slash-separated path of p relative to root.
// It fails if p is not inside root.
func (p *Path) RelativeTo(root string) (string, error) {
	rel, err := filepath.Rel(root, p.absPath)
	if err != nil {
		return "", fmt.Errorf("calculating relative path: %w", err)
	}
	rel = filepath.ToSlash(rel)
	if rel == "." || rel == ".." || strings.HasPrefix(rel, "../") {
		return "", fmt.Errorf("%s is not inside %s", p.absPath, root)
	}
	return rel, nil
}
