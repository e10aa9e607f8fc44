//go:build !unix

package fs

import (
	"fmt"
	"io/fs"
	"runtime"

	"syncmeta-go/internal/syncmeta"
)

// FileID is not available on this platform; use file_ids = "index".
func (m *OSFilesystemManager) FileID(info fs.FileInfo) (syncmeta.FileID, error) {
	return syncmeta.FileID{}, fmt.Errorf("platform file ids not supported on %s", runtime.GOOS)
}
