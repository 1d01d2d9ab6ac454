// Package panels owns the collapsed/expanded state of the shell's two
// side panels and mirrors every change into the persistent store.
package panels

import (
	"github.com/rcastell/wheelhouse/internal/log"
)

// Store keys for the two panels. Values are the literal strings
// "true"/"false"; an absent or unreadable value means expanded.
const (
	SidebarKey = "sidebar-collapsed"
	ChatKey    = "chat-panel-collapsed"
)

// Store is the slice of the persistent key-value store the model needs.
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Delete(key string) error
}

// Model holds the two independent collapse booleans. Both panels default
// to expanded on first run. The model is the only writer of its two keys.
type Model struct {
	store            Store
	sidebarCollapsed bool
	chatCollapsed    bool
}

// New creates a model with both panels expanded. Call Restore before
// first paint to pick up persisted state.
func New(store Store) Model {
	return Model{store: store}
}

// Restore loads both booleans from the store, falling back to expanded
// for absent or unreadable values.
func (m Model) Restore() Model {
	m.sidebarCollapsed = readBool(m.store, SidebarKey)
	m.chatCollapsed = readBool(m.store, ChatKey)
	return m
}

// SidebarCollapsed reports whether the left panel is collapsed.
func (m Model) SidebarCollapsed() bool { return m.sidebarCollapsed }

// ChatCollapsed reports whether the right panel is collapsed.
func (m Model) ChatCollapsed() bool { return m.chatCollapsed }

// SetSidebarCollapsed sets and persists the left panel state.
func (m Model) SetSidebarCollapsed(collapsed bool) (Model, error) {
	m.sidebarCollapsed = collapsed
	return m, m.store.Set(SidebarKey, formatBool(collapsed))
}

// SetChatCollapsed sets and persists the right panel state.
func (m Model) SetChatCollapsed(collapsed bool) (Model, error) {
	m.chatCollapsed = collapsed
	return m, m.store.Set(ChatKey, formatBool(collapsed))
}

// ToggleSidebar flips the left panel. Every call persists; rapid toggles
// are not debounced, so each intermediate value is written.
func (m Model) ToggleSidebar() (Model, error) {
	return m.SetSidebarCollapsed(!m.sidebarCollapsed)
}

// ToggleChat flips the right panel.
func (m Model) ToggleChat() (Model, error) {
	return m.SetChatCollapsed(!m.chatCollapsed)
}

func readBool(store Store, key string) bool {
	raw, ok := store.Get(key)
	if !ok {
		return false
	}
	switch raw {
	case "true":
		return true
	case "false":
		return false
	default:
		log.Warn(log.CatShell, "Discarding unreadable panel state", "key", key, "value", raw)
		return false
	}
}

func formatBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
