package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// Defaults are the locations used when the config does not say otherwise.
type Defaults struct {
	ConfigPath string
	BaseDir    string
	LogDir     string
}

// GetDefaults returns application default paths, checking environment variables first.
// Environment variables:
//   - SYNCMETA_CONFIG_PATH: config file location (default: ~/.config/syncmeta.toml)
//   - SYNCMETA_HOME: base directory for store and logs (default: ~/.local/share/syncmeta)
func GetDefaults() (*Defaults, error) {
	configPath, err := fromEnvOrHome("SYNCMETA_CONFIG_PATH", ".config", "syncmeta.toml")
	if err != nil {
		return nil, err
	}

	baseDir, err := fromEnvOrHome("SYNCMETA_HOME", ".local", "share", "syncmeta")
	if err != nil {
		return nil, err
	}

	return &Defaults{
		ConfigPath: configPath,
		BaseDir:    baseDir,
		LogDir:     filepath.Join(baseDir, "log"),
	}, nil
}

// fromEnvOrHome returns the value of env if set, otherwise the home directory
// joined with elem.
func fromEnvOrHome(env string, elem ...string) (string, error) {
	if path := os.Getenv(env); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(append([]string{homeDir}, elem...)...), nil
}
