package vault

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"filippo.io/age"

	"cleansnap/internal/clean"
)

// EncryptedPayloadStore wraps any PayloadStore with age X25519 encryption,
// so payloads are ciphertext at rest regardless of backend. The identity
// lives in a key file created on first use with 0600 permissions; losing
// the key file makes every stored payload unreadable.
type EncryptedPayloadStore struct {
	inner    clean.PayloadStore
	keyPath  string
	identity *age.X25519Identity
}

// NewEncryptedPayloadStore loads the identity from keyPath, generating a
// fresh one when the file does not exist yet.
func NewEncryptedPayloadStore(inner clean.PayloadStore, keyPath string) (*EncryptedPayloadStore, error) {
	identity, err := loadOrCreateIdentity(keyPath)
	if err != nil {
		return nil, err
	}
	return &EncryptedPayloadStore{inner: inner, keyPath: keyPath, identity: identity}, nil
}

// loadOrCreateIdentity reads the age key file, creating it when absent.
func loadOrCreateIdentity(keyPath string) (*age.X25519Identity, error) {
	data, err := os.ReadFile(keyPath)
	if err == nil {
		identity, err := age.ParseX25519Identity(string(bytes.TrimSpace(data)))
		if err != nil {
			return nil, fmt.Errorf("parsing vault key file: %w", err)
		}
		return identity, nil
	}
	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading vault key file: %w", err)
	}

	identity, err := age.GenerateX25519Identity()
	if err != nil {
		return nil, fmt.Errorf("generating vault key: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(keyPath), 0700); err != nil {
		return nil, fmt.Errorf("creating vault key directory: %w", err)
	}
	if err := os.WriteFile(keyPath, []byte(identity.String()+"\n"), 0600); err != nil {
		return nil, fmt.Errorf("writing vault key file: %w", err)
	}
	return identity, nil
}

// Put encrypts the payload and stores the ciphertext in the inner store.
func (e *EncryptedPayloadStore) Put(id string, r io.Reader, size int64) error {
	var buf bytes.Buffer
	w, err := age.Encrypt(&buf, e.identity.Recipient())
	if err != nil {
		return fmt.Errorf("creating encrypted writer: %w", err)
	}

	written, err := io.Copy(w, r)
	if err != nil {
		return fmt.Errorf("encrypting payload: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalizing encryption: %w", err)
	}
	if written != size {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", size, written)
	}

	return e.inner.Put(id, &buf, int64(buf.Len()))
}

// Get retrieves the ciphertext from the inner store and writes the
// decrypted payload to w.
func (e *EncryptedPayloadStore) Get(id string, w io.Writer) error {
	var buf bytes.Buffer
	if err := e.inner.Get(id, &buf); err != nil {
		return err
	}

	r, err := age.Decrypt(&buf, e.identity)
	if err != nil {
		return fmt.Errorf("decrypting payload %s: %w", id, err)
	}
	if _, err := io.Copy(w, r); err != nil {
		return fmt.Errorf("reading decrypted payload %s: %w", id, err)
	}
	return nil
}

// Delete removes the underlying ciphertext.
func (e *EncryptedPayloadStore) Delete(id string) error {
	return e.inner.Delete(id)
}

// List passes through to the inner store. Sizes reflect ciphertext, which
// is what the backend actually holds.
func (e *EncryptedPayloadStore) List() ([]clean.PayloadInfo, error) {
	return e.inner.List()
}

// ValidateSetup checks the key file and the inner store.
func (e *EncryptedPayloadStore) ValidateSetup() error {
	if _, err := os.Stat(e.keyPath); err != nil {
		return fmt.Errorf("vault key file not accessible: %w", err)
	}
	return e.inner.ValidateSetup()
}

// Compile-time check that EncryptedPayloadStore implements clean.PayloadStore
var _ clean.PayloadStore = (*EncryptedPayloadStore)(nil)
