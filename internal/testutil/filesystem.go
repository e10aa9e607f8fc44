package testutil

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"syncmeta-go/internal/syncmeta"
)

// MockFile represents a file in the mock filesystem.
type MockFile struct {
	Content     []byte
	Permissions fs.FileMode
	ModTime     time.Time
	IsDirectory bool
	ID          syncmeta.FileID // reported by FileID
}

// MockFilesystemManager is an in-memory filesystem for testing. Paths are
// absolute. FindFiles lists files in lexical order.
type MockFilesystemManager struct {
	files    map[string]*MockFile
	clock    *StubClock
	nextID   uint32
	openErr  map[string]error
	findErr  error
	noFileID bool
}

// NewMockFilesystemManager creates a new mock filesystem whose files are
// stamped by a FixedClock.
func NewMockFilesystemManager() *MockFilesystemManager {
	return &MockFilesystemManager{
		files:   make(map[string]*MockFile),
		clock:   FixedClock(),
		openErr: make(map[string]error),
	}
}

// Clock returns the clock used for modification times of added files.
func (m *MockFilesystemManager) Clock() *StubClock {
	return m.clock
}

// AddFile adds a file to the mock filesystem. Parent directories are added too.
func (m *MockFilesystemManager) AddFile(path string, content []byte) *MockFile {
	m.addParents(path)
	m.nextID++
	f := &MockFile{
		Content:     content,
		Permissions: 0644,
		ModTime:     m.clock.Now(),
		ID:          syncmeta.FileID{ID1: 42, ID2: 1000 + m.nextID},
	}
	m.files[path] = f
	return f
}

// AddDirectory adds a directory to the mock filesystem.
func (m *MockFilesystemManager) AddDirectory(path string) {
	m.addParents(path)
	m.files[path] = &MockFile{
		Permissions: 0755,
		ModTime:     m.clock.Now(),
		IsDirectory: true,
	}
}

func (m *MockFilesystemManager) addParents(path string) {
	for dir := filepath.Dir(path); dir != "/" && dir != "."; dir = filepath.Dir(dir) {
		if _, ok := m.files[dir]; ok {
			return
		}
		m.files[dir] = &MockFile{Permissions: 0755, ModTime: m.clock.Now(), IsDirectory: true}
	}
}

// FailOpen makes Open of path return err.
func (m *MockFilesystemManager) FailOpen(path string, err error) {
	m.openErr[path] = err
}

// FailFindFiles makes every FindFiles call return err.
func (m *MockFilesystemManager) FailFindFiles(err error) {
	m.findErr = err
}

// DisableFileIDs makes FileID fail, as on platforms without file ids.
func (m *MockFilesystemManager) DisableFileIDs() {
	m.noFileID = true
}

func (m *MockFilesystemManager) Resolve(rawPath string) (*syncmeta.Path, error) {
	absPath, err := filepath.Abs(rawPath)
	if err != nil {
		return nil, err
	}

	file, ok := m.files[absPath]
	if !ok {
		return nil, fmt.Errorf("file not found: %s", absPath)
	}
	return m.path(absPath, file), nil
}

func (m *MockFilesystemManager) Open(path *syncmeta.Path) (io.ReadCloser, error) {
	if err, ok := m.openErr[path.String()]; ok {
		return nil, err
	}
	file, ok := m.files[path.String()]
	if !ok {
		return nil, fmt.Errorf("file not found: %s", path.String())
	}
	if file.IsDirectory {
		return nil, fmt.Errorf("cannot open directory: %s", path.String())
	}
	return io.NopCloser(bytes.NewReader(file.Content)), nil
}

func (m *MockFilesystemManager) FindFiles(dir *syncmeta.Path) ([]*syncmeta.Path, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	if !dir.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", dir.String())
	}

	prefix := dir.String() + "/"
	var names []string
	for p, f := range m.files {
		if !f.IsDirectory && strings.HasPrefix(p, prefix) {
			names = append(names, p)
		}
	}
	sort.Strings(names)

	paths := make([]*syncmeta.Path, 0, len(names))
	for _, p := range names {
		paths = append(paths, m.path(p, m.files[p]))
	}
	return paths, nil
}

func (m *MockFilesystemManager) FileID(info fs.FileInfo) (syncmeta.FileID, error) {
	if m.noFileID {
		return syncmeta.FileID{}, fmt.Errorf("file ids not supported")
	}
	file, ok := info.Sys().(*MockFile)
	if !ok {
		return syncmeta.FileID{}, fmt.Errorf("cannot extract file id: expected *MockFile, got %T", info.Sys())
	}
	return file.ID, nil
}

func (m *MockFilesystemManager) path(absPath string, file *MockFile) *syncmeta.Path {
	info := &mockFileInfo{
		name:     filepath.Base(absPath),
		size:     int64(len(file.Content)),
		mode:     file.Permissions,
		modTime:  file.ModTime,
		isDir:    file.IsDirectory,
		mockFile: file,
	}
	return syncmeta.NewPath(absPath, file.IsDirectory, info)
}

// mockFileInfo implements fs.FileInfo
type mockFileInfo struct {
	name     string
	size     int64
	mode     fs.FileMode
	modTime  time.Time
	isDir    bool
	mockFile *MockFile
}

func (m *mockFileInfo) Name() string       { return m.name }
func (m *mockFileInfo) Size() int64        { return m.size }
func (m *mockFileInfo) Mode() fs.FileMode  { return m.mode }
func (m *mockFileInfo) ModTime() time.Time { return m.modTime }
func (m *mockFileInfo) IsDir() bool        { return m.isDir }
func (m *mockFileInfo) Sys() any           { return m.mockFile }

// Compile-time check
var _ syncmeta.FilesystemManager = (*MockFilesystemManager)(nil)
