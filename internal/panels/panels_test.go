package panels

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	values map[string]string
	writes []string
	setErr error
}

func newMemStore() *memStore {
	return &memStore{values: make(map[string]string)}
}

func (s *memStore) Get(key string) (string, bool) {
	v, ok := s.values[key]
	return v, ok
}

func (s *memStore) Set(key, value string) error {
	if s.setErr != nil {
		return s.setErr
	}
	s.values[key] = value
	s.writes = append(s.writes, key+"="+value)
	return nil
}

func (s *memStore) Delete(key string) error {
	delete(s.values, key)
	return nil
}

func TestModel_DefaultsToExpanded(t *testing.T) {
	m := New(newMemStore()).Restore()

	assert.False(t, m.SidebarCollapsed(), "sidebar should default to expanded")
	assert.False(t, m.ChatCollapsed(), "chat panel should default to expanded")
}

func TestModel_SetPersistsLiteralStrings(t *testing.T) {
	store := newMemStore()
	m := New(store)

	m, err := m.SetSidebarCollapsed(true)
	require.NoError(t, err)
	m, err = m.SetChatCollapsed(false)
	require.NoError(t, err)

	raw, ok := store.Get(SidebarKey)
	require.True(t, ok)
	assert.Equal(t, "true", raw)

	raw, ok = store.Get(ChatKey)
	require.True(t, ok)
	assert.Equal(t, "false", raw)
	assert.True(t, m.SidebarCollapsed())
}

func TestModel_DoubleToggleWritesBothValues(t *testing.T) {
	store := newMemStore()
	m := New(store).Restore()

	m, err := m.ToggleSidebar()
	require.NoError(t, err)
	m, err = m.ToggleSidebar()
	require.NoError(t, err)

	// Back to the original value, with both intermediate writes observable.
	assert.False(t, m.SidebarCollapsed())
	assert.Equal(t, []string{SidebarKey + "=true", SidebarKey + "=false"}, store.writes)
}

func TestModel_TogglesAreIndependent(t *testing.T) {
	store := newMemStore()
	m := New(store).Restore()

	m, err := m.ToggleChat()
	require.NoError(t, err)

	assert.True(t, m.ChatCollapsed())
	assert.False(t, m.SidebarCollapsed(), "toggling chat must not touch the sidebar")

	_, hasSidebar := store.Get(SidebarKey)
	assert.False(t, hasSidebar, "sidebar key should stay absent until it is set")
}

func TestModel_RestoreAfterRestart(t *testing.T) {
	store := newMemStore()

	m := New(store).Restore()
	m, err := m.ToggleSidebar()
	require.NoError(t, err)
	_, err = m.SetChatCollapsed(true)
	require.NoError(t, err)

	restored := New(store).Restore()
	assert.True(t, restored.SidebarCollapsed())
	assert.True(t, restored.ChatCollapsed())
}

func TestModel_RestoreIgnoresUnreadableValues(t *testing.T) {
	store := newMemStore()
	store.values[SidebarKey] = "collapsed" // not a persisted boolean

	m := New(store).Restore()
	assert.False(t, m.SidebarCollapsed(), "unreadable value should fall back to expanded")
}

func TestModel_SetKeepsStateOnWriteFailure(t *testing.T) {
	store := newMemStore()
	store.setErr = errors.New("disk full")

	m, err := New(store).ToggleSidebar()
	require.Error(t, err)
	assert.True(t, m.SidebarCollapsed(), "in-memory state should advance despite the write failure")
}
