package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/zeebo/xxh3"

	"syncmeta-go/internal/syncmeta"
)

// SHA256Hasher digests content with SHA-256. It is the default algorithm.
type SHA256Hasher struct{}

func (SHA256Hasher) Name() string { return "sha256" }

// Sum reads r to EOF and returns the SHA-256 digest as lowercase hex.
func (SHA256Hasher) Sum(r io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", fmt.Errorf("reading content: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// XXH3Hasher digests content with 128-bit XXH3. Much faster than SHA-256
// but not collision resistant against deliberate tampering.
type XXH3Hasher struct{}

func (XXH3Hasher) Name() string { return "xxh3" }

// Sum reads r to EOF and returns the XXH3-128 digest as lowercase hex.
func (XXH3Hasher) Sum(r io.Reader) (string, error) {
	h := xxh3.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", fmt.Errorf("reading content: %w", err)
	}
	sum := h.Sum128().Bytes()
	return hex.EncodeToString(sum[:]), nil
}

var (
	_ syncmeta.Hasher = SHA256Hasher{}
	_ syncmeta.Hasher = XXH3Hasher{}
)
