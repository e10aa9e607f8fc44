package syncmeta

import (
	"context"
	"fmt"
)

// Logger provides structured logging for the scanner and service.
// The args follow slog conventions: alternating key/value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// NopLogger discards all output. Use in tests.
type NopLogger struct{}

func NewNopLogger() *NopLogger { return &NopLogger{} }

func (*NopLogger) Debug(string, ...any) {}
func (*NopLogger) Info(string, ...any)  {}
func (*NopLogger) Warn(string, ...any)  {}
func (*NopLogger) Error(string, ...any) {}

// Service coordinates the scanner and the store for one synchronization run.
type Service struct {
	store   Store
	scanner *Scanner
	logger  Logger
}

// NewService creates a Service with the provided dependencies.
func NewService(store Store, scanner *Scanner, logger Logger) *Service {
	return &Service{
		store:   store,
		scanner: scanner,
		logger:  logger,
	}
}

// Baseline is the pair of snapshots handed to a diff engine: the live local
// state and the last persisted state of every other source.
type Baseline struct {
	Local   *Snapshot
	Foreign *Snapshot
}

// Scan returns the current snapshot of the source's directory tree.
func (s *Service) Scan(sourceID, rootPath string) (*Snapshot, error) {
	snapshot, err := s.scanner.FromPath(sourceID, rootPath)
	if err != nil {
		return nil, err
	}
	s.logger.Info("source scanned", "source", sourceID, "files", snapshot.Len())
	return snapshot, nil
}

// Record scans the source and replaces its persisted state with the result.
func (s *Service) Record(ctx context.Context, sourceID, rootPath string) (*Snapshot, error) {
	snapshot, err := s.Scan(sourceID, rootPath)
	if err != nil {
		return nil, err
	}

	if err := s.store.Update(ctx, snapshot); err != nil {
		return nil, fmt.Errorf("recording snapshot: %w", err)
	}

	s.logger.Info("snapshot recorded", "source", sourceID, "files", snapshot.Len())
	return snapshot, nil
}

// Baseline scans the local source and loads the counterpart's last known snapshot.
// Both snapshots are sorted by relative path.
func (s *Service) Baseline(ctx context.Context, sourceID, rootPath string) (*Baseline, error) {
	local, err := s.Scan(sourceID, rootPath)
	if err != nil {
		return nil, err
	}

	foreign, err := s.Foreign(ctx, sourceID, local.RootPath)
	if err != nil {
		return nil, err
	}

	local.SortByPath()

	s.logger.Debug("baseline ready", "source", sourceID, "local", local.Len(), "foreign", foreign.Len())
	return &Baseline{Local: local, Foreign: foreign}, nil
}

// Foreign returns every other source's last recorded rows, mapped under
// rootPath and sorted by relative path.
func (s *Service) Foreign(ctx context.Context, sourceID, rootPath string) (*Snapshot, error) {
	snapshot, err := s.store.Load(ctx, sourceID, rootPath)
	if err != nil {
		return nil, fmt.Errorf("loading foreign snapshot: %w", err)
	}
	snapshot.SortByPath()
	return snapshot, nil
}

// Persisted returns the source's own rows as last recorded.
func (s *Service) Persisted(ctx context.Context, sourceID, rootPath string) (*Snapshot, error) {
	snapshot, err := s.store.LoadSource(ctx, sourceID, rootPath)
	if err != nil {
		return nil, fmt.Errorf("loading persisted snapshot: %w", err)
	}
	return snapshot, nil
}
