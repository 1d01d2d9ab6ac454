package selection

import (
	"github.com/rcastell/wheelhouse/internal/log"
)

// StoreKey is the persisted-store key holding the encoded selection.
// An absent key means "nothing selected".
const StoreKey = "selected-item"

// Store is the slice of the persistent key-value store the model needs.
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Delete(key string) error
}

// Model holds the current selection and mirrors every change into the
// store. It is the only writer of StoreKey.
type Model struct {
	store   Store
	current Item
}

// New creates a model with nothing selected. Call Restore before first
// paint to pick up the persisted selection.
func New(store Store) Model {
	return Model{store: store, current: None()}
}

// Restore loads the persisted selection. Absence, a malformed value, or a
// value violating the variant invariants all restore to None; decode
// problems are logged and never surface to the user.
func (m Model) Restore() Model {
	raw, ok := m.store.Get(StoreKey)
	if !ok {
		m.current = None()
		return m
	}
	item, err := Decode(raw)
	if err != nil {
		log.Warn(log.CatShell, "Discarding unreadable persisted selection", "error", err)
		m.current = None()
		return m
	}
	m.current = item
	return m
}

// Select replaces the selection wholesale and persists it before
// returning. Selecting None removes the key instead of storing an encoded
// none, so "no selection" and "never selected" are indistinguishable
// across restarts. The in-memory selection is updated even when the write
// fails; the error is returned for the caller to surface.
func (m Model) Select(item Item) (Model, error) {
	m.current = item

	if item.IsNone() {
		return m, m.store.Delete(StoreKey)
	}

	encoded, err := item.Encode()
	if err != nil {
		return m, err
	}
	return m, m.store.Set(StoreKey, encoded)
}

// Current returns the active selection.
func (m Model) Current() Item { return m.current }
