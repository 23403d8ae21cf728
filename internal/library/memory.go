package library

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"cleansnap/internal/clean"
	"cleansnap/internal/model"
)

// MemorySource is an in-memory asset source. Useful for testing and as the
// "memory" library type. Safe for concurrent use.
type MemorySource struct {
	mu      sync.Mutex
	assets  []model.Asset
	content map[string][]byte

	// Unavailable marks ids whose content reads fail with
	// clean.ErrContentUnavailable.
	Unavailable map[string]bool

	// FailDelete makes DeleteAssets fail without removing anything.
	FailDelete bool

	// DeleteCalls counts batched delete invocations.
	DeleteCalls int
}

// NewMemorySource creates an empty in-memory source.
func NewMemorySource() *MemorySource {
	return &MemorySource{
		content:     make(map[string][]byte),
		Unavailable: make(map[string]bool),
	}
}

var _ clean.AssetSource = (*MemorySource)(nil)

// Add registers an asset with optional byte content.
func (m *MemorySource) Add(asset model.Asset, content []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assets = append(m.assets, asset)
	if content != nil {
		m.content[asset.ID] = content
	}
}

// Assets returns a snapshot of the current inventory.
func (m *MemorySource) Assets(_ context.Context) ([]model.Asset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Asset, len(m.assets))
	copy(out, m.assets)
	return out, nil
}

// Content returns the registered bytes for id.
func (m *MemorySource) Content(_ context.Context, id string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Unavailable[id] {
		return nil, fmt.Errorf("content for %s: %w", id, clean.ErrContentUnavailable)
	}
	data, ok := m.content[id]
	if !ok {
		return nil, fmt.Errorf("content for %s: %w", id, clean.ErrContentUnavailable)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// DeleteAssets removes the batch. Unknown ids are ignored, so retries of a
// previously attempted batch are no-ops for already-deleted items.
func (m *MemorySource) DeleteAssets(_ context.Context, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.DeleteCalls++
	if m.FailDelete {
		return fmt.Errorf("simulated delete failure")
	}

	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}

	kept := m.assets[:0]
	for _, a := range m.assets {
		if drop[a.ID] {
			delete(m.content, a.ID)
			continue
		}
		kept = append(kept, a)
	}
	m.assets = kept
	return nil
}
