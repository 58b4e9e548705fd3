// Package checksums computes and verifies payload archive digests.
package checksums

import (
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"strings"

	"github.com/spf13/afero"
)

// DefaultAlgorithm is the digest recorded in registry indexes.
const DefaultAlgorithm = "sha256"

// ComputeHash hashes a file on the given filesystem with the named
// algorithm and returns the lowercase hex digest.
func ComputeHash(fs afero.Fs, path string, algorithm string) (string, error) {
	file, err := fs.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return ComputeHashReader(file, algorithm)
}

// ComputeHashReader hashes everything read from r.
func ComputeHashReader(r io.Reader, algorithm string) (string, error) {
	h, err := newHash(algorithm)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(h, r); err != nil {
		return "", fmt.Errorf("failed to read data: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// VerifyFile compares a file's digest against the expected hex value.
func VerifyFile(fs afero.Fs, path, algorithm, expected string) error {
	actual, err := ComputeHash(fs, path, algorithm)
	if err != nil {
		return err
	}
	if !strings.EqualFold(actual, expected) {
		return fmt.Errorf("checksum mismatch for %s: expected %s, got %s", path, expected, actual)
	}
	return nil
}

func newHash(algorithm string) (hash.Hash, error) {
	switch strings.ToLower(algorithm) {
	case "sha256":
		return sha256.New(), nil
	case "sha512":
		return sha512.New(), nil
	default:
		return nil, fmt.Errorf("unsupported hash algorithm: %s", algorithm)
	}
}
