package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the main configuration for syncmeta.
type Config struct {
	BaseDir  string         `toml:"base_dir"`
	LogDir   string         `toml:"log_dir"`
	LogLevel string         `toml:"log_level,omitempty"` // stderr threshold; the log file gets every level
	Source   SourceConfig   `toml:"source"`
	Database DatabaseConfig `toml:"database"`
	Scan     ScanConfig     `toml:"scan"`
}

// SourceConfig identifies the local synchronization participant.
type SourceConfig struct {
	ID   string `toml:"id"`   // opaque, usually a UUID
	Path string `toml:"path"` // root directory of the source on this host
}

// DatabaseConfig represents configuration for the metadata store.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type DatabaseConfig struct {
	Type    string `toml:"type"`               // "sqlite" or "memory"
	DataDir string `toml:"data_dir,omitempty"` // only used for type=sqlite

	// IDOffsets are added to the two file identifier halves before storage.
	// Empty means the legacy offsets [1, 2].
	IDOffsets []int64 `toml:"id_offsets,omitempty"`
}

// ScanConfig controls how snapshots are built from the filesystem.
type ScanConfig struct {
	Ignore        []string `toml:"ignore"`
	HashAlgorithm string   `toml:"hash_algorithm"` // "sha256" (default) or "xxh3"
	FileIDs       string   `toml:"file_ids"`       // "index" (default) or "platform"
}

// NewConfig creates a new Config for a source with default store and log locations.
func NewConfig(sourceID, sourcePath, baseDir string) *Config {
	return &Config{
		BaseDir: baseDir,
		LogDir:  filepath.Join(baseDir, "log"),
		Source: SourceConfig{
			ID:   sourceID,
			Path: sourcePath,
		},
		Database: DatabaseConfig{
			Type:    "sqlite",
			DataDir: filepath.Join(baseDir, "db"),
		},
		Scan: ScanConfig{
			HashAlgorithm: "sha256",
			FileIDs:       "index",
		},
	}
}

// Validate checks the fields every command depends on.
func (c *Config) Validate() error {
	if c.Source.ID == "" {
		return fmt.Errorf("source.id is required")
	}
	if c.Source.Path == "" {
		return fmt.Errorf("source.path is required")
	}
	if _, err := c.StderrLevel(); err != nil {
		return err
	}
	if n := len(c.Database.IDOffsets); n != 0 && n != 2 {
		return fmt.Errorf("database.id_offsets must have exactly 2 values, got %d", n)
	}
	for _, off := range c.Database.IDOffsets {
		if off < 0 {
			return fmt.Errorf("database.id_offsets must not be negative, got %v", c.Database.IDOffsets)
		}
	}
	return nil
}

// StderrLevel parses log_level. Empty means info.
func (c *Config) StderrLevel() (slog.Level, error) {
	var l slog.Level
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log_level: %w", err)
	}
	return l, nil
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads and validates a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func writeToFile(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init writes a new config file at path. It refuses to overwrite an existing one.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
