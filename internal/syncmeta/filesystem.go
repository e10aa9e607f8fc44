package syncmeta

import (
	"io"
	"io/fs"
)

// FilesystemManager abstracts the filesystem so the scanner can be tested
// without touching disk.
type FilesystemManager interface {
	// Resolve makes rawPath absolute, stats it and rejects special files
	// (symlinks, devices, pipes, sockets).
	Resolve(rawPath string) (*Path, error)

	// Open opens a regular file for reading.
	Open(path *Path) (io.ReadCloser, error)

	// FindFiles returns the regular files under dir, recursively, in
	// enumeration order. Files matched by the ignore rules of root are skipped.
	FindFiles(dir *Path) ([]*Path, error)

	// FileID returns the platform identifier of a file (device and inode on Unix).
	FileID(info fs.FileInfo) (FileID, error)
}

// FileID is a two-part platform file identifier.
type FileID struct {
	ID1 uint32
	ID2 uint32
}

// Hasher computes content digests.
type Hasher interface {
	// Sum reads r to EOF and returns the lowercase hex digest.
	Sum(r io.Reader) (string, error)

	// Name identifies the algorithm, e.g. "sha256".
	Name() string
}
