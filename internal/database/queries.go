package database

import (
	"database/sql"
	"fmt"
	"math"
	"path/filepath"
	"time"

	"syncmeta-go/internal/syncmeta"
)

const (
	dropMetadataTable = `DROP TABLE IF EXISTS metadata`

	insertItem = `
		INSERT INTO metadata (source_id, relative_path, hash_code, last_modified_time, fs_id1, fs_id2)
		VALUES (?, ?, ?, ?, ?, ?)`

	upsertItem = `
		INSERT INTO metadata (source_id, relative_path, hash_code, last_modified_time, fs_id1, fs_id2)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (source_id, relative_path) DO UPDATE SET
			hash_code          = excluded.hash_code,
			last_modified_time = excluded.last_modified_time,
			fs_id1             = excluded.fs_id1,
			fs_id2             = excluded.fs_id2`

	selectPathsBySource = `SELECT relative_path FROM metadata WHERE source_id = ?`

	deleteItem = `DELETE FROM metadata WHERE source_id = ? AND relative_path = ?`

	selectForeignItems = `
		SELECT source_id, relative_path, hash_code, last_modified_time, fs_id1, fs_id2
		FROM metadata
		WHERE source_id <> ?
		ORDER BY relative_path, source_id`

	selectSourceItems = `
		SELECT source_id, relative_path, hash_code, last_modified_time, fs_id1, fs_id2
		FROM metadata
		WHERE source_id = ?
		ORDER BY relative_path`
)

// IDOffsets are added to an item's file identifiers when it is written.
type IDOffsets struct {
	ID1 int64
	ID2 int64
}

// Validate rejects negative offsets, which would store ids below zero.
func (o IDOffsets) Validate() error {
	if o.ID1 < 0 || o.ID2 < 0 {
		return fmt.Errorf("id offsets must not be negative: (%d, %d)", o.ID1, o.ID2)
	}
	return nil
}

// DefaultIDOffsets are the offsets applied when none are configured. They match
// databases written before offsets were configurable.
var DefaultIDOffsets = IDOffsets{ID1: 1, ID2: 2}

// metadataRow is one row of the metadata table as stored.
type metadataRow struct {
	SourceID         string
	RelativePath     string
	HashCode         string
	LastModifiedTime time.Time
	FSID1            int64
	FSID2            int64
}

// newMetadataRow converts an item to its stored form, applying offsets. Rows
// whose offset ids would not read back as uint32 are rejected.
func newMetadataRow(it *syncmeta.Item, off IDOffsets) (metadataRow, error) {
	r := metadataRow{
		SourceID:         it.SourceID,
		RelativePath:     it.RelativePath,
		HashCode:         it.HashCode,
		LastModifiedTime: it.LastModified.UTC(),
		FSID1:            int64(it.FSID1) + off.ID1,
		FSID2:            int64(it.FSID2) + off.ID2,
	}
	if err := r.checkIDs(); err != nil {
		return metadataRow{}, err
	}
	return r, nil
}

func (r metadataRow) checkIDs() error {
	if r.FSID1 < 0 || r.FSID1 > math.MaxUint32 || r.FSID2 < 0 || r.FSID2 > math.MaxUint32 {
		return fmt.Errorf("file id out of range for %s/%s: (%d, %d)", r.SourceID, r.RelativePath, r.FSID1, r.FSID2)
	}
	return nil
}

func (r metadataRow) args() []any {
	return []any{r.SourceID, r.RelativePath, r.HashCode, r.LastModifiedTime, r.FSID1, r.FSID2}
}

// toItem converts a stored row to an item whose absolute path lives under root.
// Stored identifiers are returned as-is.
func (r metadataRow) toItem(root string) (syncmeta.Item, error) {
	if err := r.checkIDs(); err != nil {
		return syncmeta.Item{}, err
	}
	return syncmeta.Item{
		SourceID:     r.SourceID,
		AbsolutePath: filepath.Join(root, filepath.FromSlash(r.RelativePath)),
		RelativePath: r.RelativePath,
		HashCode:     r.HashCode,
		LastModified: r.LastModifiedTime,
		FSID1:        uint32(r.FSID1),
		FSID2:        uint32(r.FSID2),
	}, nil
}

// scanRows reads every row into items rooted at root.
func scanRows(rows *sql.Rows, root string) ([]syncmeta.Item, error) {
	items := []syncmeta.Item{}
	for rows.Next() {
		var r metadataRow
		if err := rows.Scan(&r.SourceID, &r.RelativePath, &r.HashCode, &r.LastModifiedTime, &r.FSID1, &r.FSID2); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		item, err := r.toItem(root)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}
	return items, nil
}
