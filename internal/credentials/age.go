// Package credentials provides implementations of clean.CredentialStore,
// the facility holding the vault PIN at rest. The store's job is
// confidentiality beyond plain file storage; the PIN state machine itself
// lives in the vault package and stays pure.
package credentials

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"filippo.io/age"

	"cleansnap/internal/clean"
)

// AgeCredentialStore seals the secret into a file with age X25519
// encryption. The identity lives in a separate key file (0600, generated
// on first use), so the secret is unreadable without it even when the
// sealed file leaks.
type AgeCredentialStore struct {
	secretPath string
	keyPath    string
}

// NewAgeCredentialStore creates a store sealing secrets at secretPath with
// the identity at keyPath.
func NewAgeCredentialStore(secretPath, keyPath string) *AgeCredentialStore {
	return &AgeCredentialStore{secretPath: secretPath, keyPath: keyPath}
}

var _ clean.CredentialStore = (*AgeCredentialStore)(nil)

// identity loads the age key, generating one when absent.
func (s *AgeCredentialStore) identity() (*age.X25519Identity, error) {
	data, err := os.ReadFile(s.keyPath)
	if err == nil {
		identity, err := age.ParseX25519Identity(string(bytes.TrimSpace(data)))
		if err != nil {
			return nil, fmt.Errorf("parsing credential key file: %w", err)
		}
		return identity, nil
	}
	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading credential key file: %w", err)
	}

	identity, err := age.GenerateX25519Identity()
	if err != nil {
		return nil, fmt.Errorf("generating credential key: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.keyPath), 0700); err != nil {
		return nil, fmt.Errorf("creating credential key directory: %w", err)
	}
	if err := os.WriteFile(s.keyPath, []byte(identity.String()+"\n"), 0600); err != nil {
		return nil, fmt.Errorf("writing credential key file: %w", err)
	}
	return identity, nil
}

// Store seals the secret and writes it, replacing any previous value.
func (s *AgeCredentialStore) Store(secret []byte) error {
	identity, err := s.identity()
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	w, err := age.Encrypt(&buf, identity.Recipient())
	if err != nil {
		return fmt.Errorf("creating encrypted writer: %w", err)
	}
	if _, err := w.Write(secret); err != nil {
		return fmt.Errorf("sealing credential: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalizing sealed credential: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.secretPath), 0700); err != nil {
		return fmt.Errorf("creating credential directory: %w", err)
	}
	if err := os.WriteFile(s.secretPath, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("writing sealed credential: %w", err)
	}
	return nil
}

// Retrieve unseals and returns the stored secret. ok is false when no
// secret has ever been stored.
func (s *AgeCredentialStore) Retrieve() ([]byte, bool, error) {
	data, err := os.ReadFile(s.secretPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("reading sealed credential: %w", err)
	}

	identity, err := s.identity()
	if err != nil {
		return nil, false, err
	}

	r, err := age.Decrypt(bytes.NewReader(data), identity)
	if err != nil {
		return nil, false, fmt.Errorf("unsealing credential: %w", err)
	}
	secret, err := io.ReadAll(r)
	if err != nil {
		return nil, false, fmt.Errorf("reading unsealed credential: %w", err)
	}
	return secret, true, nil
}

// Delete removes the sealed credential file. Missing files are a no-op.
func (s *AgeCredentialStore) Delete() error {
	if err := os.Remove(s.secretPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting sealed credential: %w", err)
	}
	return nil
}
