package state

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/ethereum/go-ethereum/rlp"

	"teranium/storage"
)

// Manager exposes a typed key-value surface over the raw database. All ledger
// records are RLP encoded so that the stored form stays deterministic.
type Manager struct {
	db storage.Database
}

// NewManager constructs a manager bound to the provided database.
func NewManager(db storage.Database) *Manager {
	return &Manager{db: db}
}

// KVGet loads and decodes the record stored under key. The boolean reports
// whether the key was present; a miss is not an error.
func (m *Manager) KVGet(key []byte, out interface{}) (bool, error) {
	if m == nil || m.db == nil {
		return false, fmt.Errorf("state: manager not initialised")
	}
	value, err := m.db.Get(key)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := rlp.DecodeBytes(value, out); err != nil {
		return false, fmt.Errorf("state: decode %q: %w", key, err)
	}
	return true, nil
}

// KVPut encodes and stores the record under key.
func (m *Manager) KVPut(key []byte, value interface{}) error {
	if m == nil || m.db == nil {
		return fmt.Errorf("state: manager not initialised")
	}
	encoded, err := rlp.EncodeToBytes(value)
	if err != nil {
		return fmt.Errorf("state: encode %q: %w", key, err)
	}
	return m.db.Put(key, encoded)
}

// KVHas reports whether the key is present.
func (m *Manager) KVHas(key []byte) (bool, error) {
	if m == nil || m.db == nil {
		return false, fmt.Errorf("state: manager not initialised")
	}
	return m.db.Has(key)
}

// Begin opens a buffered transaction over the manager. Writes stay in the
// overlay until Commit; discarding the transaction leaves the database
// untouched, which gives every ledger operation its all-or-nothing boundary.
func (m *Manager) Begin() *Txn {
	return &Txn{manager: m, overlay: make(map[string][]byte)}
}

// Txn is a copy-on-write overlay over a Manager. It is not safe for concurrent
// use; the node serializes operations before opening one.
type Txn struct {
	manager *Manager
	mu      sync.Mutex
	overlay map[string][]byte
	done    bool
}

// KVGet reads through the overlay first and falls back to the backing store.
func (t *Txn) KVGet(key []byte, out interface{}) (bool, error) {
	if t == nil || t.manager == nil {
		return false, fmt.Errorf("state: txn not initialised")
	}
	t.mu.Lock()
	value, ok := t.overlay[string(key)]
	t.mu.Unlock()
	if ok {
		if err := rlp.DecodeBytes(value, out); err != nil {
			return false, fmt.Errorf("state: decode %q: %w", key, err)
		}
		return true, nil
	}
	return t.manager.KVGet(key, out)
}

// KVPut buffers the encoded record in the overlay.
func (t *Txn) KVPut(key []byte, value interface{}) error {
	if t == nil || t.manager == nil {
		return fmt.Errorf("state: txn not initialised")
	}
	encoded, err := rlp.EncodeToBytes(value)
	if err != nil {
		return fmt.Errorf("state: encode %q: %w", key, err)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return fmt.Errorf("state: txn already committed")
	}
	t.overlay[string(key)] = encoded
	return nil
}

// KVHas reports presence through the overlay.
func (t *Txn) KVHas(key []byte) (bool, error) {
	if t == nil || t.manager == nil {
		return false, fmt.Errorf("state: txn not initialised")
	}
	t.mu.Lock()
	_, ok := t.overlay[string(key)]
	t.mu.Unlock()
	if ok {
		return true, nil
	}
	return t.manager.KVHas(key)
}

// Commit flushes the buffered writes to the backing store in deterministic key
// order. A transaction can be committed at most once.
func (t *Txn) Commit() error {
	if t == nil || t.manager == nil {
		return fmt.Errorf("state: txn not initialised")
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return fmt.Errorf("state: txn already committed")
	}
	keys := make([]string, 0, len(t.overlay))
	for key := range t.overlay {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if err := t.manager.db.Put([]byte(key), t.overlay[key]); err != nil {
			return fmt.Errorf("state: commit %q: %w", key, err)
		}
	}
	t.done = true
	return nil
}
