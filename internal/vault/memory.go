package vault

import (
	"bytes"
	"fmt"
	"io"
	"sync"
	"time"

	"cleansnap/internal/clean"
)

// MemoryPayloadStore keeps payloads in memory. Useful for testing.
// Safe for concurrent use.
type MemoryPayloadStore struct {
	mu       sync.RWMutex
	payloads map[string][]byte
	created  map[string]time.Time
	clock    clean.Clock

	// FailPut makes every Put return an error. Tests use it to exercise
	// rollback on persistence failure.
	FailPut bool
}

// NewMemoryPayloadStore creates an empty in-memory payload store.
func NewMemoryPayloadStore(clock clean.Clock) *MemoryPayloadStore {
	return &MemoryPayloadStore{
		payloads: make(map[string][]byte),
		created:  make(map[string]time.Time),
		clock:    clock,
	}
}

// Put stores a payload under id.
func (m *MemoryPayloadStore) Put(id string, r io.Reader, size int64) error {
	if m.FailPut {
		return fmt.Errorf("put %s: simulated persistence failure", id)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read payload: %w", err)
	}
	if int64(len(data)) != size {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", size, len(data))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.payloads[id]; !exists {
		m.created[id] = m.clock.Now()
	}
	m.payloads[id] = data
	return nil
}

// Get retrieves the payload for id.
func (m *MemoryPayloadStore) Get(id string, w io.Writer) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.payloads[id]
	if !ok {
		return fmt.Errorf("payload %s: %w", id, clean.ErrNotFound)
	}

	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write payload: %w", err)
	}
	return nil
}

// Delete removes the payload for id. Absent ids are a no-op.
func (m *MemoryPayloadStore) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.payloads, id)
	delete(m.created, id)
	return nil
}

// List returns info for every stored payload.
func (m *MemoryPayloadStore) List() ([]clean.PayloadInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	infos := make([]clean.PayloadInfo, 0, len(m.payloads))
	for id, data := range m.payloads {
		infos = append(infos, clean.PayloadInfo{
			ID:        id,
			Size:      int64(len(data)),
			CreatedAt: m.created[id],
		})
	}
	return infos, nil
}

// ValidateSetup always succeeds for the in-memory store.
func (m *MemoryPayloadStore) ValidateSetup() error { return nil }

// Compile-time check that MemoryPayloadStore implements clean.PayloadStore
var _ clean.PayloadStore = (*MemoryPayloadStore)(nil)
