package syncmeta

import "context"

// Store persists snapshots, one row per file per source, keyed on
// (source id, relative path). Every failure returned by a Store is an
// *Error of kind ErrSchema, ErrWrite or ErrRead.
type Store interface {
	// CreateSchema drops the metadata table and recreates it empty.
	// Rows of every source are lost. Only for initializing or resetting a store.
	CreateSchema(ctx context.Context) error

	// EnsureSchema brings the schema up to date without touching existing rows.
	EnsureSchema(ctx context.Context) error

	// Insert stores every item of the snapshot in one transaction.
	// If any row fails, including a duplicate key, no row is stored.
	Insert(ctx context.Context, snapshot *Snapshot) error

	// Update replaces the persisted state of the snapshot's source:
	// items are upserted on their natural key and rows of that source
	// missing from the snapshot are removed. All or nothing.
	Update(ctx context.Context, snapshot *Snapshot) error

	// Load returns every persisted row whose source is not localSourceID.
	// Absolute paths are mapped into localRootPath. An empty result is not an error.
	Load(ctx context.Context, localSourceID, localRootPath string) (*Snapshot, error)

	// LoadSource returns the persisted rows of a single source.
	LoadSource(ctx context.Context, sourceID, rootPath string) (*Snapshot, error)

	// Close releases the underlying connection.
	Close() error
}
