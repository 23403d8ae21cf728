// Package selection tracks a user's pending deletion choices across
// duplicate and similarity groups, and commits them to the asset source as
// a single batched delete.
package selection

import (
	"context"
	"fmt"
	"sort"

	"cleansnap/internal/model"
)

// Set is the session-scoped set of asset ids pending deletion.
// It is not persisted across restarts. Concurrency is managed by the
// caller (the service mutex), so Set is not safe for concurrent use.
type Set struct {
	ids map[string]struct{}
}

// NewSet creates an empty selection set.
func NewSet() *Set {
	return &Set{ids: make(map[string]struct{})}
}

// Insert adds id to the selection.
func (s *Set) Insert(id string) { s.ids[id] = struct{}{} }

// Remove drops id from the selection. Removing an absent id is a no-op.
func (s *Set) Remove(id string) { delete(s.ids, id) }

// Contains reports whether id is selected.
func (s *Set) Contains(id string) bool {
	_, ok := s.ids[id]
	return ok
}

// Len returns the number of selected ids.
func (s *Set) Len() int { return len(s.ids) }

// Clear empties the selection.
func (s *Set) Clear() { s.ids = make(map[string]struct{}) }

// IDs returns the selected ids in sorted order.
func (s *Set) IDs() []string {
	ids := make([]string, 0, len(s.ids))
	for id := range s.ids {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// DeleteFunc performs the external batched delete for the given assets.
type DeleteFunc func(ctx context.Context, assets []model.Asset) error

// Coordinator applies selection policies over groups and issues idempotent
// batched deletes, reconciling the selection afterward.
type Coordinator struct {
	selection *Set
}

// NewCoordinator creates a Coordinator with an empty selection.
func NewCoordinator() *Coordinator {
	return &Coordinator{selection: NewSet()}
}

// Selection exposes the underlying set for membership queries.
func (c *Coordinator) Selection() *Set { return c.selection }

// Toggle flips membership of id. Calling it twice restores the original
// selection state.
func (c *Coordinator) Toggle(id string) {
	if c.selection.Contains(id) {
		c.selection.Remove(id)
		return
	}
	c.selection.Insert(id)
}

// SelectKeepFirstOnly selects every member of the group except the first.
// The keeper is a policy item: it is never removed here, even if some other
// path already selected it. Deleting the keeper requires an explicit Toggle.
func (c *Coordinator) SelectKeepFirstOnly(group model.DuplicateGroup) {
	if len(group.Members) == 0 {
		return
	}
	for _, m := range group.Members[1:] {
		c.selection.Insert(m.ID)
	}
}

// SelectAll selects every given asset.
func (c *Coordinator) SelectAll(assets []model.Asset) {
	for _, a := range assets {
		c.selection.Insert(a.ID)
	}
}

// CommitDeletion filters assets to the current selection, invokes deleteFn
// exactly once with that batch, and on success clears the selection and
// returns the deleted ids so the caller can reconcile its caches.
//
// On failure the selection is left unchanged so the user can retry without
// re-selecting. The whole batch is treated as failed; a retry may
// re-attempt already-deleted items, which the asset source must treat as a
// no-op. An empty filtered batch succeeds without an external call.
func (c *Coordinator) CommitDeletion(ctx context.Context, assets []model.Asset, deleteFn DeleteFunc) ([]string, error) {
	batch := make([]model.Asset, 0, c.selection.Len())
	for _, a := range assets {
		if c.selection.Contains(a.ID) {
			batch = append(batch, a)
		}
	}

	if len(batch) == 0 {
		c.selection.Clear()
		return nil, nil
	}

	if err := deleteFn(ctx, batch); err != nil {
		return nil, fmt.Errorf("deleting %d assets: %w", len(batch), err)
	}

	deleted := make([]string, len(batch))
	for i, a := range batch {
		deleted[i] = a.ID
	}
	c.selection.Clear()
	return deleted, nil
}
