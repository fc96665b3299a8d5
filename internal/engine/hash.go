package engine

import (
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/zeebo/blake3"
)

// Algorithm selects the digest used to verify a copy.
type Algorithm int

const (
	VerifyNone Algorithm = iota
	VerifyBLAKE3
	VerifyXXHash
)

func (a Algorithm) String() string {
	switch a {
	case VerifyNone:
		return "none"
	case VerifyBLAKE3:
		return "blake3"
	case VerifyXXHash:
		return "xxhash"
	default:
		return fmt.Sprintf("Algorithm(%d)", int(a))
	}
}

// ParseAlgorithm accepts "none", "blake3" and "xxhash". An empty string
// means blake3.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "blake3":
		return VerifyBLAKE3, nil
	case "xxhash", "xxh64":
		return VerifyXXHash, nil
	case "none", "off":
		return VerifyNone, nil
	}
	return VerifyNone, fmt.Errorf("unknown verify algorithm %q (want blake3, xxhash or none)", s)
}

func (a Algorithm) newHash() (hash.Hash, error) {
	switch a {
	case VerifyBLAKE3:
		return blake3.New(), nil
	case VerifyXXHash:
		return xxhash.New(), nil
	}
	return nil, fmt.Errorf("no digest for algorithm %s", a)
}

// HashFile computes the digest of the file at path, returning it hex-encoded.
func HashFile(path string, algo Algorithm) (string, error) {
	h, err := algo.newHash()
	if err != nil {
		return "", err
	}
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	buf := make([]byte, 32*1024)
	if _, err := io.CopyBuffer(h, f, buf); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
