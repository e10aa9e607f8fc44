package syncmeta

import (
	"fmt"
	"path"
	"sort"
	"strings"
	"time"
)

// Item is the recorded state of a single file belonging to one source.
type Item struct {
	SourceID     string    // Owning source
	AbsolutePath string    // Resolved path on this host; derived, never persisted
	RelativePath string    // Slash-separated path relative to the source root
	HashCode     string    // Lowercase hex content digest
	LastModified time.Time // Last write time reported by the filesystem
	FSID1        uint32    // Platform file identifier, first half
	FSID2        uint32    // Platform file identifier, second half
}

// Validate checks that the item can be stored under its natural key.
func (it *Item) Validate() error {
	if it.SourceID == "" {
		return fmt.Errorf("item %q has no source id", it.RelativePath)
	}
	if it.RelativePath == "" {
		return fmt.Errorf("item has empty relative path")
	}
	if strings.HasPrefix(it.RelativePath, "/") || strings.Contains(it.RelativePath, "\\") {
		return fmt.Errorf("relative path must be slash-separated and relative: %q", it.RelativePath)
	}
	clean := path.Clean(it.RelativePath)
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return fmt.Errorf("relative path escapes source root: %q", it.RelativePath)
	}
	return nil
}

// Snapshot is the complete set of items recorded for one source at one point in time.
// Snapshots returned by Store.Load carry the querying source's id and root,
// while each item keeps the id of the source it was recorded for.
type Snapshot struct {
	SourceID string
	RootPath string
	Items    []Item
}

// NewSnapshot creates an empty snapshot for the given source.
func NewSnapshot(sourceID, rootPath string) *Snapshot {
	return &Snapshot{
		SourceID: sourceID,
		RootPath: rootPath,
		Items:    []Item{},
	}
}

// Len returns the number of items in the snapshot.
func (s *Snapshot) Len() int {
	return len(s.Items)
}

// Validate checks every item and that all of them belong to the snapshot's source.
func (s *Snapshot) Validate() error {
	if s.SourceID == "" {
		return fmt.Errorf("snapshot has no source id")
	}
	for i := range s.Items {
		it := &s.Items[i]
		if err := it.Validate(); err != nil {
			return err
		}
		if it.SourceID != s.SourceID {
			return fmt.Errorf("item %q belongs to source %q, snapshot is for %q", it.RelativePath, it.SourceID, s.SourceID)
		}
	}
	return nil
}

// SortByPath orders items by relative path, then source id.
// Filesystem enumeration order is platform dependent, so anything that
// compares snapshots should sort first.
func (s *Snapshot) SortByPath() {
	sort.SliceStable(s.Items, func(i, j int) bool {
		a, b := s.Items[i], s.Items[j]
		if a.RelativePath != b.RelativePath {
			return a.RelativePath < b.RelativePath
		}
		return a.SourceID < b.SourceID
	})
}

// Lookup returns the item with the given relative path, or nil.
func (s *Snapshot) Lookup(relativePath string) *Item {
	for i := range s.Items {
		if s.Items[i].RelativePath == relativePath {
			return &s.Items[i]
		}
	}
	return nil
}
