package cartengine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rbos-labs/rbos-backend/pkg/config"
	"github.com/rbos-labs/rbos-backend/pkg/types"
)

const (
	cartSlot     = "rbos_cart.json"
	conflictSlot = "rbos_cart_conflicts.json"
)

// Store persists cart state and the cart token between runs. The store is
// the sole owner of the durable token.
type Store interface {
	Load() (State, string)
	Save(state State, token string) error
	LoadPendingConflicts() *types.ConflictReport
	SavePendingConflicts(report *types.ConflictReport) error
}

// persistedCart is the on-disk shape. Older versions wrote the bare state
// object; reads accept both, writes always use this wrapper.
type persistedCart struct {
	State     *State `json:"state"`
	CartToken string `json:"cartToken,omitempty"`
}

// FileStore keeps the durable cart slot and the session-scoped pending
// conflicts slot as JSON files under one directory. Writes are atomic
// (temp file + rename); concurrent writers remain last-writer-wins.
type FileStore struct {
	dir string
}

// NewFileStore creates the slot directory if needed.
func NewFileStore(cfg config.CartStoreConfig) (*FileStore, error) {
	dir := cfg.Dir
	if dir == "" {
		dir = ".rbos"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cart store dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Load returns the persisted cart and token. Missing or corrupt data yields
// the empty cart and no token, never an error. Lines are deduplicated on
// the way in.
func (s *FileStore) Load() (State, string) {
	raw, err := os.ReadFile(filepath.Join(s.dir, cartSlot))
	if err != nil {
		return State{}, ""
	}

	var wrapped persistedCart
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.State != nil {
		return rebuild(*wrapped.State, wrapped.State.Lines), wrapped.CartToken
	}

	// Legacy shape: the state object written bare, no token alongside.
	var bare State
	if err := json.Unmarshal(raw, &bare); err == nil {
		return rebuild(bare, bare.Lines), ""
	}
	return State{}, ""
}

// Save writes the wrapped shape atomically.
func (s *FileStore) Save(state State, token string) error {
	raw, err := json.Marshal(persistedCart{State: &state, CartToken: token})
	if err != nil {
		return fmt.Errorf("encoding cart state: %w", err)
	}
	return s.writeSlot(cartSlot, raw)
}

// LoadPendingConflicts reads and clears the session slot. Missing or corrupt
// data yields nil.
func (s *FileStore) LoadPendingConflicts() *types.ConflictReport {
	path := filepath.Join(s.dir, conflictSlot)
	raw, err := os.ReadFile(path)
	_ = os.Remove(path)
	if err != nil {
		return nil
	}
	var report types.ConflictReport
	if err := json.Unmarshal(raw, &report); err != nil || report.IsEmpty() {
		return nil
	}
	return &report
}

// SavePendingConflicts stores a report for the next session. A nil or empty
// report clears the slot.
func (s *FileStore) SavePendingConflicts(report *types.ConflictReport) error {
	path := filepath.Join(s.dir, conflictSlot)
	if report.IsEmpty() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("clearing conflict slot: %w", err)
		}
		return nil
	}
	raw, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encoding conflict report: %w", err)
	}
	return s.writeSlot(conflictSlot, raw)
}

func (s *FileStore) writeSlot(name string, raw []byte) error {
	tmp, err := os.CreateTemp(s.dir, name+".*")
	if err != nil {
		return fmt.Errorf("creating temp slot: %w", err)
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("writing slot %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("closing slot %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, name)); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("replacing slot %s: %w", name, err)
	}
	return nil
}
