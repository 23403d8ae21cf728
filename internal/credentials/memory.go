package credentials

import (
	"fmt"
	"sync"

	"cleansnap/internal/clean"
)

// MemoryCredentialStore keeps the secret in memory. Useful for testing.
type MemoryCredentialStore struct {
	mu     sync.Mutex
	secret []byte
	set    bool

	// FailStore makes every Store return an error, for failure-path tests.
	FailStore bool
}

// NewMemoryCredentialStore creates an empty in-memory credential store.
func NewMemoryCredentialStore() *MemoryCredentialStore {
	return &MemoryCredentialStore{}
}

var _ clean.CredentialStore = (*MemoryCredentialStore)(nil)

func (m *MemoryCredentialStore) Store(secret []byte) error {
	if m.FailStore {
		return fmt.Errorf("simulated credential store failure")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.secret = append([]byte(nil), secret...)
	m.set = true
	return nil
}

func (m *MemoryCredentialStore) Retrieve() ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.set {
		return nil, false, nil
	}
	return append([]byte(nil), m.secret...), true, nil
}

func (m *MemoryCredentialStore) Delete() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.secret = nil
	m.set = false
	return nil
}
