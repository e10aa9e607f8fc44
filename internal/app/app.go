package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"syncmeta-go/internal/checksum"
	"syncmeta-go/internal/config"
	"syncmeta-go/internal/database"
	"syncmeta-go/internal/fs"
	"syncmeta-go/internal/syncmeta"
)

// SyncApp is the application layer between the CLI and the syncmeta Service.
// It constructs all dependencies from config, runs commands for the configured
// source and closes the store on Close.
type SyncApp struct {
	cfg     *config.Config
	store   *database.SQLiteStore
	service *syncmeta.Service
	op      *Operation
	logger  *slogAdapter
	logFile *os.File
}

// NewSyncApp creates a fully wired SyncApp from the given config. The store
// schema must already be at the latest version.
// operation identifies the CLI command being run (e.g. "snapshot record").
// The caller must call Close when done.
func NewSyncApp(cfg *config.Config, operation string) (*SyncApp, error) {
	return newSyncApp(cfg, operation, true)
}

// NewSchemaApp is like NewSyncApp but skips the schema version check, for the
// commands that create or reset the schema.
func NewSchemaApp(cfg *config.Config, operation string) (*SyncApp, error) {
	return newSyncApp(cfg, operation, false)
}

func newSyncApp(cfg *config.Config, operation string, checkSchema bool) (*SyncApp, error) {
	idMode, err := syncmeta.ParseFileIDMode(cfg.Scan.FileIDs)
	if err != nil {
		return nil, fmt.Errorf("invalid scan config: %w", err)
	}

	hasher, err := checksum.NewHasherFromConfig(cfg.Scan)
	if err != nil {
		return nil, fmt.Errorf("creating hasher: %w", err)
	}

	store, err := database.NewStoreFromConfig(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("creating store: %w", err)
	}

	if checkSchema {
		if err := store.CheckMigrations(); err != nil {
			store.Close()
			return nil, fmt.Errorf("store schema out of date (run 'syncmeta schema init'): %w", err)
		}
	}

	stderrLevel, err := cfg.StderrLevel()
	if err != nil {
		store.Close()
		return nil, err
	}

	op := NewOperation(operation, time.Now())
	l, logFile, err := newLogger(cfg.LogDir, op.ID, os.Stderr, stderrLevel)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	logger := &slogAdapter{l: l}

	fsmgr := fs.NewOSFilesystemManager(cfg.Scan.Ignore)
	scanner := syncmeta.NewScanner(fsmgr, hasher, idMode, logger)
	svc := syncmeta.NewService(store, scanner, logger)

	logger.Debug("operation started", "command", op.Name, "source", cfg.Source.ID, "store", store.Path())

	return &SyncApp{
		cfg:     cfg,
		store:   store,
		service: svc,
		op:      op,
		logger:  logger,
		logFile: logFile,
	}, nil
}

// Fail marks the running operation as failed and logs err.
func (a *SyncApp) Fail(err error) {
	a.op.Fail()
	a.logger.Error("command failed", "command", a.op.Name, "error", err)
}

// InitSchema creates the metadata table if missing, keeping existing rows.
func (a *SyncApp) InitSchema(ctx context.Context) error {
	if err := a.store.EnsureSchema(ctx); err != nil {
		return err
	}
	a.logger.Info("schema ready", "store", a.store.Path())
	return nil
}

// ResetSchema drops and recreates the metadata table. Every source's rows are lost.
func (a *SyncApp) ResetSchema(ctx context.Context) error {
	if err := a.store.CreateSchema(ctx); err != nil {
		return err
	}
	a.logger.Warn("schema reset, all rows discarded", "store", a.store.Path())
	return nil
}

// Scan returns the live snapshot of the configured source.
func (a *SyncApp) Scan() (*syncmeta.Snapshot, error) {
	snapshot, err := a.service.Scan(a.cfg.Source.ID, a.cfg.Source.Path)
	if err != nil {
		return nil, err
	}
	snapshot.SortByPath()
	return snapshot, nil
}

// Record scans the configured source and persists the result.
func (a *SyncApp) Record(ctx context.Context) (*syncmeta.Snapshot, error) {
	snapshot, err := a.service.Record(ctx, a.cfg.Source.ID, a.cfg.Source.Path)
	if err != nil {
		return nil, err
	}
	snapshot.SortByPath()
	return snapshot, nil
}

// Foreign returns the last persisted state of every other source, mapped
// into the configured source's root.
func (a *SyncApp) Foreign(ctx context.Context) (*syncmeta.Snapshot, error) {
	root, err := a.sourceRoot()
	if err != nil {
		return nil, err
	}
	return a.service.Foreign(ctx, a.cfg.Source.ID, root)
}

// Persisted returns the configured source's own rows as last recorded.
func (a *SyncApp) Persisted(ctx context.Context) (*syncmeta.Snapshot, error) {
	root, err := a.sourceRoot()
	if err != nil {
		return nil, err
	}
	return a.service.Persisted(ctx, a.cfg.Source.ID, root)
}

// Baseline returns the local scan and the foreign snapshot, both sorted.
func (a *SyncApp) Baseline(ctx context.Context) (*syncmeta.Baseline, error) {
	return a.service.Baseline(ctx, a.cfg.Source.ID, a.cfg.Source.Path)
}

// Export copies the store to destPath, which must not exist yet.
func (a *SyncApp) Export(ctx context.Context, destPath string) error {
	absPath, err := filepath.Abs(destPath)
	if err != nil {
		return fmt.Errorf("resolving path: %w", err)
	}
	if _, err := os.Stat(absPath); err == nil {
		return fmt.Errorf("destination already exists: %s", absPath)
	}
	if err := a.store.ExportTo(ctx, absPath); err != nil {
		return err
	}
	a.logger.Info("store exported", "dest", absPath)
	return nil
}

func (a *SyncApp) sourceRoot() (string, error) {
	root, err := filepath.Abs(a.cfg.Source.Path)
	if err != nil {
		return "", fmt.Errorf("resolving source path: %w", err)
	}
	return root, nil
}

// Close logs the outcome of the operation and closes all resources.
func (a *SyncApp) Close() error {
	a.logger.Debug("operation finished", "command", a.op.Name, "status", a.op.Status)

	var firstErr error
	if err := a.store.Close(); err != nil {
		firstErr = fmt.Errorf("closing store: %w", err)
	}
	if a.logFile != nil {
		a.logFile.Close()
	}
	return firstErr
}
