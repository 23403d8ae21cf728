package scan

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
)

// Fingerprint computes the SHA-256 digest of everything read from r,
// returned as a lowercase hex string. The digest is a pure function of the
// bytes; it is the exact-duplicate key, so collision resistance is a
// correctness requirement, not a tunable.
func Fingerprint(r io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", fmt.Errorf("hashing content: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// FingerprintBytes is a convenience wrapper over Fingerprint for in-memory
// content.
func FingerprintBytes(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
