package checksum

import (
	"fmt"

	"syncmeta-go/internal/config"
	"syncmeta-go/internal/syncmeta"
)

// NewHasherFromConfig returns the Hasher named by the scan config.
// An empty algorithm selects SHA-256.
func NewHasherFromConfig(cfg config.ScanConfig) (syncmeta.Hasher, error) {
	switch cfg.HashAlgorithm {
	case "sha256", "":
		return SHA256Hasher{}, nil
	case "xxh3":
		return XXH3Hasher{}, nil
	default:
		return nil, fmt.Errorf("unknown hash algorithm: %q", cfg.HashAlgorithm)
	}
}
