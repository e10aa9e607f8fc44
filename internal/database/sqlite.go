package database

import (
	"context"
	"database/sql"
	"fmt"

	"syncmeta-go/internal/database/migrations"
	"syncmeta-go/internal/syncmeta"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteStore implements the syncmeta.Store interface using SQLite.
type SQLiteStore struct {
	db      *sql.DB
	path    string
	offsets IDOffsets
}

// NewSQLiteStore opens a SQLite metadata store.
// path can be a file path or ":memory:" for an in-memory database.
func NewSQLiteStore(path string, offsets IDOffsets) (*SQLiteStore, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}

	return &SQLiteStore{
		db:      db,
		path:    path,
		offsets: offsets,
	}, nil
}

// NewSQLiteStoreFromDB wraps an existing database connection.
// The caller is responsible for ensuring the connection is properly configured.
func NewSQLiteStoreFromDB(db *sql.DB, offsets IDOffsets) *SQLiteStore {
	return &SQLiteStore{
		db:      db,
		offsets: offsets,
	}
}

// OpenConnection opens and configures a SQLite database connection.
// This is exported for use in tools and tests that need a properly configured SQLite connection.
func OpenConnection(path string) (*sql.DB, error) {
	// The busy timeout is a DSN parameter so every pooled connection gets it.
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Every pooled connection to :memory: would see its own empty database.
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

// Schema operations

// CreateSchema drops the metadata table and recreates it empty. Existing rows
// for every source are discarded.
func (s *SQLiteStore) CreateSchema(ctx context.Context) error {
	const op = "create schema"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return syncmeta.SchemaError(op, fmt.Errorf("starting transaction: %w", err))
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, dropMetadataTable); err != nil {
		return syncmeta.SchemaError(op, fmt.Errorf("dropping metadata table: %w", err))
	}
	if _, err := tx.ExecContext(ctx, Schema); err != nil {
		return syncmeta.SchemaError(op, fmt.Errorf("creating metadata table: %w", err))
	}
	if err := tx.Commit(); err != nil {
		return syncmeta.SchemaError(op, fmt.Errorf("committing transaction: %w", err))
	}

	// Record the schema version so CheckMigrations accepts the fresh table.
	if err := migrations.MigrateUp(s.db); err != nil {
		return syncmeta.SchemaError(op, err)
	}
	return nil
}

// EnsureSchema brings the schema to the latest version without touching rows.
func (s *SQLiteStore) EnsureSchema(ctx context.Context) error {
	if err := migrations.MigrateUp(s.db); err != nil {
		return syncmeta.SchemaError("ensure schema", err)
	}
	return nil
}

// CheckMigrations verifies the database schema is up-to-date.
func (s *SQLiteStore) CheckMigrations() error {
	return migrations.CheckDBMigrationStatus(s.db)
}

// Write operations

// Insert persists every item of snap in a single transaction. A duplicate
// (source_id, relative_path) anywhere in the batch fails the whole call and
// no rows from it remain.
func (s *SQLiteStore) Insert(ctx context.Context, snap *syncmeta.Snapshot) error {
	const op = "insert"

	if err := snap.Validate(); err != nil {
		return syncmeta.WriteError(op, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return syncmeta.WriteError(op, fmt.Errorf("starting transaction: %w", err))
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, insertItem)
	if err != nil {
		return syncmeta.WriteError(op, fmt.Errorf("preparing insert: %w", err))
	}
	defer stmt.Close()

	for i := range snap.Items {
		row, err := newMetadataRow(&snap.Items[i], s.offsets)
		if err != nil {
			return syncmeta.WriteError(op, err)
		}
		if _, err := stmt.ExecContext(ctx, row.args()...); err != nil {
			return syncmeta.WriteError(op, fmt.Errorf("inserting %s: %w", row.RelativePath, err))
		}
	}

	if err := tx.Commit(); err != nil {
		return syncmeta.WriteError(op, fmt.Errorf("committing transaction: %w", err))
	}
	return nil
}

// Update makes the stored rows of snap's source match snap exactly. Rows are
// upserted on (source_id, relative_path) and rows of that source missing from
// snap are deleted. Other sources are untouched.
func (s *SQLiteStore) Update(ctx context.Context, snap *syncmeta.Snapshot) error {
	const op = "update"

	if err := snap.Validate(); err != nil {
		return syncmeta.WriteError(op, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return syncmeta.WriteError(op, fmt.Errorf("starting transaction: %w", err))
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, upsertItem)
	if err != nil {
		return syncmeta.WriteError(op, fmt.Errorf("preparing upsert: %w", err))
	}
	defer stmt.Close()

	keep := make(map[string]struct{}, len(snap.Items))
	for i := range snap.Items {
		row, err := newMetadataRow(&snap.Items[i], s.offsets)
		if err != nil {
			return syncmeta.WriteError(op, err)
		}
		if _, err := stmt.ExecContext(ctx, row.args()...); err != nil {
			return syncmeta.WriteError(op, fmt.Errorf("upserting %s: %w", row.RelativePath, err))
		}
		keep[row.RelativePath] = struct{}{}
	}

	stale, err := stalePaths(ctx, tx, snap.SourceID, keep)
	if err != nil {
		return syncmeta.WriteError(op, err)
	}
	for _, rel := range stale {
		if _, err := tx.ExecContext(ctx, deleteItem, snap.SourceID, rel); err != nil {
			return syncmeta.WriteError(op, fmt.Errorf("deleting %s: %w", rel, err))
		}
	}

	if err := tx.Commit(); err != nil {
		return syncmeta.WriteError(op, fmt.Errorf("committing transaction: %w", err))
	}
	return nil
}

// stalePaths lists the stored paths of sourceID that are not in keep.
// The result is fully read before returning so the caller may write in tx.
func stalePaths(ctx context.Context, tx *sql.Tx, sourceID string, keep map[string]struct{}) ([]string, error) {
	rows, err := tx.QueryContext(ctx, selectPathsBySource, sourceID)
	if err != nil {
		return nil, fmt.Errorf("listing stored paths: %w", err)
	}
	defer rows.Close()

	var stale []string
	for rows.Next() {
		var rel string
		if err := rows.Scan(&rel); err != nil {
			return nil, fmt.Errorf("scanning stored path: %w", err)
		}
		if _, ok := keep[rel]; !ok {
			stale = append(stale, rel)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating stored paths: %w", err)
	}
	return stale, nil
}

// Read operations

// Load returns every row whose source is not localSourceID, with absolute
// paths mapped under localRootPath. No foreign rows yields an empty snapshot.
func (s *SQLiteStore) Load(ctx context.Context, localSourceID, localRootPath string) (*syncmeta.Snapshot, error) {
	items, err := s.query(ctx, localRootPath, selectForeignItems, localSourceID)
	if err != nil {
		return nil, syncmeta.ReadError("load", err)
	}

	snap := syncmeta.NewSnapshot(localSourceID, localRootPath)
	snap.Items = items
	return snap, nil
}

// LoadSource returns the rows persisted for sourceID itself, rooted at rootPath.
func (s *SQLiteStore) LoadSource(ctx context.Context, sourceID, rootPath string) (*syncmeta.Snapshot, error) {
	items, err := s.query(ctx, rootPath, selectSourceItems, sourceID)
	if err != nil {
		return nil, syncmeta.ReadError("load source", err)
	}

	snap := syncmeta.NewSnapshot(sourceID, rootPath)
	snap.Items = items
	return snap, nil
}

func (s *SQLiteStore) query(ctx context.Context, root, query string, args ...any) ([]syncmeta.Item, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying metadata: %w", err)
	}
	defer rows.Close()

	return scanRows(rows, root)
}

// Maintenance

// Path returns the database file path (or ":memory:" for in-memory databases).
func (s *SQLiteStore) Path() string {
	return s.path
}

// ExportTo writes a complete copy of the database to destPath using VACUUM INTO.
func (s *SQLiteStore) ExportTo(ctx context.Context, destPath string) error {
	if _, err := s.db.ExecContext(ctx, "VACUUM INTO ?", destPath); err != nil {
		return fmt.Errorf("exporting database: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Compile-time check that SQLiteStore implements syncmeta.Store interface
var _ syncmeta.Store = (*SQLiteStore)(nil)
