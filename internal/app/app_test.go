package app

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcastell/wheelhouse/internal/backend"
	"github.com/rcastell/wheelhouse/internal/keys"
	"github.com/rcastell/wheelhouse/internal/panels"
	"github.com/rcastell/wheelhouse/internal/projects"
	"github.com/rcastell/wheelhouse/internal/pubsub"
	"github.com/rcastell/wheelhouse/internal/selection"
	"github.com/rcastell/wheelhouse/internal/transport"
	"github.com/rcastell/wheelhouse/internal/ui/sidebar"
	"github.com/rcastell/wheelhouse/internal/ui/toaster"
)

func TestMain(m *testing.M) {
	zone.NewGlobal()
	os.Exit(m.Run())
}

// fakeStore is an in-memory key-value store whose writes can be made
// to fail.
type fakeStore struct {
	data    map[string]string
	failAll bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: map[string]string{}}
}

func (s *fakeStore) Get(key string) (string, bool) {
	v, ok := s.data[key]
	return v, ok
}

func (s *fakeStore) Set(key, value string) error {
	if s.failAll {
		return errors.New("store closed")
	}
	s.data[key] = value
	return nil
}

func (s *fakeStore) Delete(key string) error {
	if s.failAll {
		return errors.New("store closed")
	}
	delete(s.data, key)
	return nil
}

// fakeFetcher serves a fixed directory.
type fakeFetcher struct {
	directory backend.Directory
	err       error
}

func (f *fakeFetcher) Projects(context.Context) (backend.Directory, error) {
	return f.directory, f.err
}

func testDirectory() backend.Directory {
	return backend.Directory{
		Projects: []backend.Project{
			{ID: "p1", Name: "acme", Path: "/home/dev/acme"},
			{ID: "p2", Name: "beta", Path: "/home/dev/beta"},
		},
		ActiveProjectID: "p1",
	}
}

// createTestModel creates a shell with an in-memory store and no
// network-touching services, sized and loaded with the test directory.
func createTestModel(store *fakeStore) Model {
	m := New(Config{
		Store: store,
		Keys:  keys.DefaultKeyMap(),
	})

	resized, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = resized.(Model)

	loaded, _ := m.Update(directoryLoadedMsg{directory: testDirectory()})
	return loaded.(Model)
}

func TestApp_WindowSizeMsg(t *testing.T) {
	m := createTestModel(newFakeStore())

	newModel, _ := m.Update(tea.WindowSizeMsg{Width: 150, Height: 50})
	m = newModel.(Model)

	assert.Equal(t, 150, m.width, "expected width to be updated")
	assert.Equal(t, 50, m.height, "expected height to be updated")
}

func TestApp_RestoresPersistedState(t *testing.T) {
	store := newFakeStore()
	store.data[selection.StoreKey] = `{"kind":"backlog","project_id":"p1"}`
	store.data[panels.SidebarKey] = "true"

	m := createTestModel(store)

	assert.Equal(t, selection.Backlog("p1"), m.selection.Current(), "selection should restore from the store")
	assert.True(t, m.panels.SidebarCollapsed(), "sidebar collapse should restore from the store")
}

func TestApp_ViewComposesRegions(t *testing.T) {
	m := createTestModel(newFakeStore())

	view := m.View()

	assert.Contains(t, view, "wheelhouse", "header should render")
	assert.Contains(t, view, "Projects", "sidebar should render")
	assert.Contains(t, view, "Assistant", "chat panel should render")
	assert.Contains(t, view, "acme", "project list should render")
}

func TestApp_ViewEmptyBeforeFirstResize(t *testing.T) {
	m := New(Config{Store: newFakeStore(), Keys: keys.DefaultKeyMap()})

	assert.Empty(t, m.View(), "view should be empty before the window size is known")
}

func TestApp_QuitKey(t *testing.T) {
	m := createTestModel(newFakeStore())

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})

	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd(), "ctrl+c should quit")
}

func TestApp_ToggleSidebar(t *testing.T) {
	store := newFakeStore()
	m := createTestModel(store)
	assert.Contains(t, m.View(), "Projects")

	newModel, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlB})
	m = newModel.(Model)

	assert.True(t, m.panels.SidebarCollapsed())
	assert.Equal(t, "true", store.data[panels.SidebarKey], "collapse should persist")
	assert.NotContains(t, m.View(), "Projects", "collapsed sidebar should leave the view")

	newModel, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlB})
	m = newModel.(Model)

	assert.False(t, m.panels.SidebarCollapsed())
	assert.Equal(t, "false", store.data[panels.SidebarKey])
}

func TestApp_ToggleChatPanel(t *testing.T) {
	store := newFakeStore()
	m := createTestModel(store)
	assert.Contains(t, m.View(), "Assistant")

	newModel, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlT})
	m = newModel.(Model)

	assert.True(t, m.panels.ChatCollapsed())
	assert.Equal(t, "true", store.data[panels.ChatKey])
	assert.NotContains(t, m.View(), "Assistant")
}

func TestApp_ToggleSidebarPersistFailureShowsToast(t *testing.T) {
	store := newFakeStore()
	m := createTestModel(store)
	store.failAll = true

	newModel, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlB})
	m = newModel.(Model)

	assert.True(t, m.panels.SidebarCollapsed(), "in-memory state still applies")
	require.NotNil(t, cmd)
	msg, ok := cmd().(toaster.ShowMsg)
	require.True(t, ok, "expected a toast command")
	assert.Equal(t, toaster.StyleWarn, msg.Style)
}

func TestApp_SearchPaletteToggles(t *testing.T) {
	m := createTestModel(newFakeStore())

	newModel, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlK})
	m = newModel.(Model)
	assert.True(t, m.searchOpen, "ctrl+k should open the search palette")

	newModel, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlK})
	m = newModel.(Model)
	assert.False(t, m.searchOpen, "ctrl+k while open should close it")
}

func TestApp_SearchPaletteEscCloses(t *testing.T) {
	m := createTestModel(newFakeStore())

	newModel, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlK})
	m = newModel.(Model)

	newModel, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = newModel.(Model)
	require.NotNil(t, cmd)

	newModel, _ = m.Update(cmd())
	m = newModel.(Model)
	assert.False(t, m.searchOpen, "esc should close the palette")
}

func TestApp_SearchPaletteNavigates(t *testing.T) {
	store := newFakeStore()
	m := createTestModel(store)

	newModel, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlK})
	m = newModel.(Model)

	// First entry is the first project
	newModel, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = newModel.(Model)
	require.NotNil(t, cmd)

	newModel, _ = m.Update(cmd())
	m = newModel.(Model)

	assert.False(t, m.searchOpen, "successful navigation should close the palette")
	assert.Equal(t, selection.Project("p1"), m.selection.Current())
	assert.Equal(t, `{"kind":"project","project_id":"p1"}`, store.data[selection.StoreKey])
}

func TestApp_DocsPaletteToggles(t *testing.T) {
	m := createTestModel(newFakeStore())

	newModel, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlD})
	m = newModel.(Model)
	assert.True(t, m.docsOpen, "ctrl+d should open the docs palette")

	newModel, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlD})
	m = newModel.(Model)
	assert.False(t, m.docsOpen, "ctrl+d while open should close it")
}

func TestApp_PaletteSwitchClosesOther(t *testing.T) {
	m := createTestModel(newFakeStore())

	newModel, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlK})
	m = newModel.(Model)

	newModel, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlD})
	m = newModel.(Model)

	assert.False(t, m.searchOpen, "opening docs should close search")
	assert.True(t, m.docsOpen)
}

func TestApp_SidebarSelection(t *testing.T) {
	store := newFakeStore()
	m := createTestModel(store)

	newModel, _ := m.Update(sidebar.SelectMsg{Item: selection.Backlog("p1")})
	m = newModel.(Model)

	assert.Equal(t, selection.Backlog("p1"), m.selection.Current())
	assert.Equal(t, `{"kind":"backlog","project_id":"p1"}`, store.data[selection.StoreKey])
	assert.Contains(t, m.View(), "Backlog", "content pane should follow the selection")
}

func TestApp_SelectionPersistFailureShowsToast(t *testing.T) {
	store := newFakeStore()
	m := createTestModel(store)
	store.failAll = true

	newModel, cmd := m.Update(sidebar.SelectMsg{Item: selection.Alerts("p2")})
	m = newModel.(Model)

	assert.Equal(t, selection.Alerts("p2"), m.selection.Current(), "navigation should not block on the store")
	require.NotNil(t, cmd)
	msg, ok := cmd().(toaster.ShowMsg)
	require.True(t, ok)
	assert.Equal(t, toaster.StyleWarn, msg.Style)
}

func TestApp_DirectoryLoadSyncsRegions(t *testing.T) {
	m := createTestModel(newFakeStore())

	assert.Equal(t, "/home/dev/acme", m.workingDir, "working dir should derive from the active project")
	assert.Contains(t, m.View(), "acme")
}

func TestApp_DirectoryLoadErrorKeepsState(t *testing.T) {
	m := createTestModel(newFakeStore())

	newModel, cmd := m.Update(directoryLoadedMsg{err: errors.New("backend down")})
	m = newModel.(Model)

	assert.Equal(t, "/home/dev/acme", m.workingDir, "a failed refresh should keep the old directory")
	require.NotNil(t, cmd)
	msg, ok := cmd().(toaster.ShowMsg)
	require.True(t, ok)
	assert.Equal(t, toaster.StyleWarn, msg.Style)
}

func TestApp_TransportEventsUpdateConnectivity(t *testing.T) {
	m := createTestModel(newFakeStore())

	newModel, _ := m.Update(pubsub.Event[transport.Event]{
		Type:    pubsub.CreatedEvent,
		Payload: transport.Event{Kind: transport.Connected},
	})
	m = newModel.(Model)
	assert.True(t, m.monitor.Snapshot().TransportConnected)
	assert.Contains(t, m.View(), "live updates on")

	newModel, _ = m.Update(pubsub.Event[transport.Event]{
		Type:    pubsub.DeletedEvent,
		Payload: transport.Event{Kind: transport.Disconnected},
	})
	m = newModel.(Model)
	assert.False(t, m.monitor.Snapshot().TransportConnected)
	assert.Contains(t, m.View(), "live updates paused")
}

func TestApp_ProjectsChangedNoticeReloadsDirectory(t *testing.T) {
	store := newFakeStore()
	fetcher := &fakeFetcher{directory: testDirectory()}
	m := New(Config{
		Store:    store,
		Projects: projects.NewService(fetcher, time.Minute),
		Keys:     keys.DefaultKeyMap(),
	})
	resized, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = resized.(Model)

	_, cmd := m.Update(pubsub.Event[transport.Event]{
		Type: pubsub.UpdatedEvent,
		Payload: transport.Event{
			Kind:   transport.Message,
			Notice: transport.Notice{Type: transport.NoticeProjectsChanged},
		},
	})

	require.NotNil(t, cmd, "a projects_changed notice should schedule a reload")
}

func TestApp_ManualRefresh(t *testing.T) {
	fetcher := &fakeFetcher{directory: testDirectory()}
	m := New(Config{
		Store:    newFakeStore(),
		Projects: projects.NewService(fetcher, time.Minute),
		Keys:     keys.DefaultKeyMap(),
	})
	resized, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = resized.(Model)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	require.NotNil(t, cmd, "refresh should schedule a directory load")
}

func TestApp_LogOverlayToggleInDebugMode(t *testing.T) {
	m := New(Config{Store: newFakeStore(), Keys: keys.DefaultKeyMap(), DebugMode: true})
	resized, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = resized.(Model)

	newModel, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlX})
	m = newModel.(Model)
	assert.True(t, m.logOverlay.Visible())

	newModel, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlX})
	m = newModel.(Model)
	assert.False(t, m.logOverlay.Visible())
}

func TestApp_LogOverlayIgnoredWithoutDebugMode(t *testing.T) {
	m := createTestModel(newFakeStore())

	newModel, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlX})
	m = newModel.(Model)

	assert.False(t, m.logOverlay.Visible(), "ctrl+x should do nothing outside debug mode")
}

func TestApp_UnknownSelectionShowsNotFound(t *testing.T) {
	store := newFakeStore()
	store.data[selection.StoreKey] = `{"kind":"backlog","project_id":"ghost"}`

	m := createTestModel(store)

	assert.Contains(t, m.View(), "Not found", "a selection pointing at a removed project should render not-found")
}

func TestApp_Close(t *testing.T) {
	m := createTestModel(newFakeStore())

	assert.NoError(t, m.Close())
}
