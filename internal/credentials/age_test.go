package credentials

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func newTestAgeStore(t *testing.T) *AgeCredentialStore {
	t.Helper()
	dir := t.TempDir()
	return NewAgeCredentialStore(filepath.Join(dir, "pin.age"), filepath.Join(dir, "credential.key"))
}

func TestAgeCredentialStore(t *testing.T) {
	t.Run("round trips a secret", func(t *testing.T) {
		s := newTestAgeStore(t)

		if err := s.Store([]byte("1234")); err != nil {
			t.Fatalf("Store() error = %v", err)
		}

		secret, ok, err := s.Retrieve()
		if err != nil {
			t.Fatalf("Retrieve() error = %v", err)
		}
		if !ok {
			t.Fatal("Retrieve() ok = false, want true")
		}
		if string(secret) != "1234" {
			t.Errorf("Retrieve() = %q, want %q", secret, "1234")
		}
	})

	t.Run("missing secret is not an error", func(t *testing.T) {
		s := newTestAgeStore(t)

		secret, ok, err := s.Retrieve()
		if err != nil {
			t.Fatalf("Retrieve() error = %v", err)
		}
		if ok || secret != nil {
			t.Errorf("Retrieve() = %q, %v; want nil, false", secret, ok)
		}
	})

	t.Run("secret is sealed on disk", func(t *testing.T) {
		dir := t.TempDir()
		secretPath := filepath.Join(dir, "pin.age")
		s := NewAgeCredentialStore(secretPath, filepath.Join(dir, "credential.key"))

		if err := s.Store([]byte("1234")); err != nil {
			t.Fatalf("Store() error = %v", err)
		}

		raw, err := os.ReadFile(secretPath)
		if err != nil {
			t.Fatalf("reading sealed file: %v", err)
		}
		if bytes.Contains(raw, []byte("1234")) {
			t.Error("sealed file contains the plaintext secret")
		}
	})

	t.Run("store overwrites the previous secret", func(t *testing.T) {
		s := newTestAgeStore(t)

		if err := s.Store([]byte("1234")); err != nil {
			t.Fatalf("Store() error = %v", err)
		}
		if err := s.Store([]byte("5678")); err != nil {
			t.Fatalf("second Store() error = %v", err)
		}

		secret, ok, err := s.Retrieve()
		if err != nil || !ok {
			t.Fatalf("Retrieve() = %v, %v", ok, err)
		}
		if string(secret) != "5678" {
			t.Errorf("Retrieve() = %q, want %q", secret, "5678")
		}
	})

	t.Run("delete removes the secret and is idempotent", func(t *testing.T) {
		s := newTestAgeStore(t)

		if err := s.Store([]byte("1234")); err != nil {
			t.Fatalf("Store() error = %v", err)
		}
		if err := s.Delete(); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}

		_, ok, err := s.Retrieve()
		if err != nil {
			t.Fatalf("Retrieve() error = %v", err)
		}
		if ok {
			t.Error("Retrieve() ok = true after delete")
		}

		if err := s.Delete(); err != nil {
			t.Errorf("second Delete() error = %v, want nil", err)
		}
	})
}

func TestMemoryCredentialStore(t *testing.T) {
	s := NewMemoryCredentialStore()

	_, ok, err := s.Retrieve()
	if err != nil || ok {
		t.Fatalf("Retrieve() on empty store = %v, %v; want false, nil", ok, err)
	}

	if err := s.Store([]byte("1234")); err != nil {
		t.Fatalf("Store() error = %v", err)
	}
	secret, ok, err := s.Retrieve()
	if err != nil || !ok || string(secret) != "1234" {
		t.Fatalf("Retrieve() = %q, %v, %v; want 1234, true, nil", secret, ok, err)
	}

	if err := s.Delete(); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	_, ok, _ = s.Retrieve()
	if ok {
		t.Error("Retrieve() ok = true after delete")
	}
}
