// Package vault implements the PIN-gated private storage area: a lock
// state machine over a sealed credential plus payload persistence behind
// the clean.PayloadStore interface.
package vault

import (
	"bytes"
	"crypto/subtle"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"cleansnap/internal/clean"
	"cleansnap/internal/model"
)

// LockState is the vault's gate position.
type LockState int

const (
	// LockStateNoPIN means no credential has ever been configured.
	LockStateNoPIN LockState = iota
	// LockStateLocked means a credential exists and has not been verified
	// this session.
	LockStateLocked
	// LockStateUnlocked means the credential was verified this session.
	LockStateUnlocked
)

func (s LockState) String() string {
	switch s {
	case LockStateNoPIN:
		return "no-pin"
	case LockStateLocked:
		return "locked"
	case LockStateUnlocked:
		return "unlocked"
	default:
		return "unknown"
	}
}

// Store manages the PIN lifecycle and vault content. All state transitions
// and content mutations are serialized by a single mutex: the store is a
// single-writer resource, so a ChangePIN can never observe a half-updated
// credential from a concurrent VerifyPIN.
//
// Content operations work in any lock state; gating presentation on the
// lock state is the caller's concern, not the store's.
type Store struct {
	mu       sync.Mutex
	creds    clean.CredentialStore
	payloads clean.PayloadStore
	clock    clean.Clock
	idgen    clean.IDGenerator
	logger   clean.Logger

	state   LockState
	entries []model.VaultEntry
}

// NewStore creates a vault store. The initial lock state is derived from
// whether a credential is already present: Locked when one exists, NoPIN
// otherwise.
func NewStore(creds clean.CredentialStore, payloads clean.PayloadStore, clock clean.Clock, idgen clean.IDGenerator, logger clean.Logger) (*Store, error) {
	s := &Store{
		creds:    creds,
		payloads: payloads,
		clock:    clock,
		idgen:    idgen,
		logger:   logger,
		state:    LockStateNoPIN,
	}

	_, ok, err := creds.Retrieve()
	if err != nil {
		return nil, fmt.Errorf("checking for existing credential: %w", err)
	}
	if ok {
		s.state = LockStateLocked
	}

	return s, nil
}

// State returns the current lock state.
func (s *Store) State() LockState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// validatePIN enforces the 4-digit numeric format.
func validatePIN(pin string) error {
	if len(pin) != 4 {
		return clean.ErrInvalidPIN
	}
	for _, r := range pin {
		if r < '0' || r > '9' {
			return clean.ErrInvalidPIN
		}
	}
	return nil
}

// SetupPIN configures the vault credential for the first time and locks the
// vault. Fails with ErrInvalidPIN for a malformed PIN and ErrPINAlreadySet
// when a credential already exists; state is unchanged on failure.
func (s *Store) SetupPIN(pin string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := validatePIN(pin); err != nil {
		return err
	}
	if s.state != LockStateNoPIN {
		return clean.ErrPINAlreadySet
	}

	if err := s.creds.Store([]byte(pin)); err != nil {
		return fmt.Errorf("storing credential: %w", err)
	}

	s.state = LockStateLocked
	s.logger.Info("vault pin configured")
	return nil
}

// VerifyPIN checks the candidate against the stored credential. A match
// unlocks the vault; a mismatch returns ErrPINMismatch and leaves the vault
// locked. No attempt counter or lockout is kept.
func (s *Store) VerifyPIN(candidate string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.verifyLocked(candidate); err != nil {
		return err
	}

	s.state = LockStateUnlocked
	return nil
}

// verifyLocked compares candidate to the stored credential without touching
// lock state. Callers must hold s.mu.
func (s *Store) verifyLocked(candidate string) error {
	stored, ok, err := s.creds.Retrieve()
	if err != nil {
		return fmt.Errorf("retrieving credential: %w", err)
	}
	if !ok {
		return clean.ErrNoPIN
	}
	if subtle.ConstantTimeCompare(stored, []byte(candidate)) != 1 {
		return clean.ErrPINMismatch
	}
	return nil
}

// Lock locks the vault. Always succeeds; locking an unconfigured vault is
// a no-op.
func (s *Store) Lock() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == LockStateUnlocked {
		s.state = LockStateLocked
	}
}

// ChangePIN replaces the stored credential after verifying the old one.
// The lock state is unchanged on success. Fails without mutating anything
// when oldPIN does not verify or newPIN is malformed.
func (s *Store) ChangePIN(oldPIN, newPIN string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.verifyLocked(oldPIN); err != nil {
		return err
	}
	if err := validatePIN(newPIN); err != nil {
		return err
	}

	if err := s.creds.Store([]byte(newPIN)); err != nil {
		return fmt.Errorf("storing new credential: %w", err)
	}

	s.logger.Info("vault pin changed")
	return nil
}

// AddEntry stores a payload under a fresh id and returns the new entry.
// The payload is persisted before the entry becomes visible in memory, so
// a persistence failure leaves no phantom entry behind.
func (s *Store) AddEntry(payload []byte) (model.VaultEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := model.VaultEntry{
		ID:      s.idgen.New(),
		Payload: payload,
		AddedAt: s.clock.Now(),
	}

	if err := s.payloads.Put(entry.ID, bytes.NewReader(payload), int64(len(payload))); err != nil {
		return model.VaultEntry{}, fmt.Errorf("persisting payload: %w", err)
	}

	s.entries = append(s.entries, entry)
	s.logger.Info("vault entry added", "id", entry.ID, "size", len(payload))
	return entry, nil
}

// RemoveEntry deletes the persisted payload for id and drops the entry from
// the in-memory list. Removing an unknown id is a no-op.
func (s *Store) RemoveEntry(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.payloads.Delete(id); err != nil {
		return fmt.Errorf("deleting payload: %w", err)
	}

	for i, e := range s.entries {
		if e.ID == id {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			s.logger.Info("vault entry removed", "id", id)
			break
		}
	}
	return nil
}

// LoadEntries rebuilds the in-memory entry list from persisted storage,
// deriving AddedAt from storage-level creation metadata. Entries whose id
// is not a UUID or whose payload cannot be read are skipped: startup is
// degraded but functional, never fatal.
func (s *Store) LoadEntries() ([]model.VaultEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	infos, err := s.payloads.List()
	if err != nil {
		return nil, fmt.Errorf("listing payloads: %w", err)
	}

	entries := make([]model.VaultEntry, 0, len(infos))
	for _, info := range infos {
		if _, err := uuid.Parse(info.ID); err != nil {
			s.logger.Warn("skipping vault payload with unparseable id", "id", info.ID)
			continue
		}

		var buf bytes.Buffer
		if err := s.payloads.Get(info.ID, &buf); err != nil {
			s.logger.Warn("skipping unreadable vault payload", "id", info.ID, "error", err)
			continue
		}

		entries = append(entries, model.VaultEntry{
			ID:      info.ID,
			Payload: buf.Bytes(),
			AddedAt: info.CreatedAt,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].AddedAt.Equal(entries[j].AddedAt) {
			return entries[i].AddedAt.Before(entries[j].AddedAt)
		}
		return entries[i].ID < entries[j].ID
	})

	s.entries = entries
	return s.copyEntriesLocked(), nil
}

// Entries returns a copy of the in-memory entry list.
func (s *Store) Entries() []model.VaultEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyEntriesLocked()
}

func (s *Store) copyEntriesLocked() []model.VaultEntry {
	out := make([]model.VaultEntry, len(s.entries))
	copy(out, s.entries)
	return out
}
