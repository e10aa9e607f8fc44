package database

import (
	"fmt"
	"os"
	"path/filepath"

	"syncmeta-go/internal/config"
)

// storeFileName is the database file kept under the configured data_dir.
// A single file holds the rows of every source sharing the store.
const storeFileName = "metadata.db"

// NewStoreFromConfig creates a SQLiteStore based on the database config type.
func NewStoreFromConfig(cfg config.DatabaseConfig) (*SQLiteStore, error) {
	offsets, err := offsetsFromConfig(cfg.IDOffsets)
	if err != nil {
		return nil, err
	}

	switch cfg.Type {
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite database")
		}
		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		return NewSQLiteStore(filepath.Join(cfg.DataDir, storeFileName), offsets)
	case "memory":
		return NewSQLiteStore(":memory:", offsets)
	default:
		return nil, fmt.Errorf("unknown database type: %s", cfg.Type)
	}
}

func offsetsFromConfig(raw []int64) (IDOffsets, error) {
	switch len(raw) {
	case 0:
		return DefaultIDOffsets, nil
	case 2:
		off := IDOffsets{ID1: raw[0], ID2: raw[1]}
		if err := off.Validate(); err != nil {
			return IDOffsets{}, err
		}
		return off, nil
	default:
		return IDOffsets{}, fmt.Errorf("id_offsets must have exactly 2 values, got %d", len(raw))
	}
}
