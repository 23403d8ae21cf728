package scan

import (
	"strings"
	"testing"
)

func TestFingerprint(t *testing.T) {
	t.Run("known digest", func(t *testing.T) {
		// sha256("hello world")
		want := "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
		got, err := Fingerprint(strings.NewReader("hello world"))
		if err != nil {
			t.Fatalf("Fingerprint() error = %v", err)
		}
		if got != want {
			t.Errorf("Fingerprint() = %s, want %s", got, want)
		}
	})

	t.Run("same content same digest", func(t *testing.T) {
		a, err := Fingerprint(strings.NewReader("content"))
		if err != nil {
			t.Fatalf("Fingerprint() error = %v", err)
		}
		b := FingerprintBytes([]byte("content"))
		if a != b {
			t.Errorf("digests differ: %s vs %s", a, b)
		}
	})

	t.Run("different content different digest", func(t *testing.T) {
		a := FingerprintBytes([]byte("one"))
		b := FingerprintBytes([]byte("two"))
		if a == b {
			t.Error("distinct content produced the same digest")
		}
	})
}
