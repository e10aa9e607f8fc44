//go:build unix

package fs

import (
	"fmt"
	"io/fs"
	"syscall"

	"syncmeta-go/internal/syncmeta"
)

// FileID returns the device and inode numbers of a file, each truncated to 32 bits.
func (m *OSFilesystemManager) FileID(info fs.FileInfo) (syncmeta.FileID, error) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return syncmeta.FileID{}, fmt.Errorf("cannot extract file id: expected *syscall.Stat_t, got %T", info.Sys())
	}

	return syncmeta.FileID{
		ID1: uint32(stat.Dev),
		ID2: uint32(stat.Ino),
	}, nil
}
