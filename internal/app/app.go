// Package app contains the root shell model. It composes the persisted
// selection and panel state, the connectivity monitor, the project
// directory, and the region models into one Bubble Tea program.
package app

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"

	"github.com/rcastell/wheelhouse/internal/backend"
	"github.com/rcastell/wheelhouse/internal/connectivity"
	"github.com/rcastell/wheelhouse/internal/docs"
	"github.com/rcastell/wheelhouse/internal/keys"
	"github.com/rcastell/wheelhouse/internal/log"
	"github.com/rcastell/wheelhouse/internal/panels"
	"github.com/rcastell/wheelhouse/internal/projects"
	"github.com/rcastell/wheelhouse/internal/pubsub"
	"github.com/rcastell/wheelhouse/internal/selection"
	"github.com/rcastell/wheelhouse/internal/transport"
	"github.com/rcastell/wheelhouse/internal/ui/chatpanel"
	"github.com/rcastell/wheelhouse/internal/ui/commandpalette"
	"github.com/rcastell/wheelhouse/internal/ui/content"
	"github.com/rcastell/wheelhouse/internal/ui/header"
	"github.com/rcastell/wheelhouse/internal/ui/logoverlay"
	"github.com/rcastell/wheelhouse/internal/ui/sidebar"
	"github.com/rcastell/wheelhouse/internal/ui/statusbar"
	"github.com/rcastell/wheelhouse/internal/ui/toaster"
)

const (
	directoryTimeout = 10 * time.Second

	sidebarWidth   = 28
	chatPanelWidth = 36
)

// Store is the persistent key-value surface the shell state rides on.
// The selection and panel models each see their own slice of it.
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Delete(key string) error
}

// Config carries the services the shell composes. Transport, Projects,
// and Docs may be nil; the shell degrades to a static view without them.
type Config struct {
	Store     Store
	Prober    connectivity.Prober
	Transport *transport.Client
	Projects  *projects.Service
	Docs      *docs.Service
	Keys      keys.KeyMap
	DebugMode bool
}

// directoryLoadedMsg carries the result of a directory fetch.
type directoryLoadedMsg struct {
	directory backend.Directory
	err       error
}

// searchSelectMsg is emitted when the search palette picks a target.
type searchSelectMsg struct{ id string }

// searchCancelMsg closes the search palette without navigating.
type searchCancelMsg struct{}

// docsSelectMsg is emitted when the docs palette picks a document.
type docsSelectMsg struct{ doc docs.Doc }

// docsCancelMsg closes the docs palette without navigating.
type docsCancelMsg struct{}

// Model is the root shell state.
type Model struct {
	keys keys.KeyMap

	width  int
	height int

	// Persisted shell state
	selection selection.Model
	panels    panels.Model

	// Directory and data services
	projects        *projects.Service
	docsService     *docs.Service
	directory       backend.Directory
	directoryLoaded bool
	workingDir      string

	// Connectivity
	monitor         connectivity.Model
	monitorStartCmd tea.Cmd

	// Push channel
	transportCancel   context.CancelFunc
	transportListener *pubsub.ContinuousListener[transport.Event]

	// Docs live feed
	docsCancel   context.CancelFunc
	docsListener *pubsub.ContinuousListener[[]docs.Doc]

	// Regions
	header    header.Model
	sidebar   sidebar.Model
	content   content.Model
	chatPanel chatpanel.Model
	statusBar statusbar.Model

	// Centralized toaster - owned by the app, not individual regions
	toaster toaster.Model

	// Overlays
	searchOpen    bool
	searchPalette commandpalette.Model
	searchTargets map[string]selection.Item
	docsOpen      bool
	docsPalette   commandpalette.Model

	debugMode    bool
	logOverlay   logoverlay.Model
	logListenCmd tea.Cmd
}

// New creates the shell, restoring persisted selection and panel state
// before first paint.
func New(cfg Config) Model {
	sel := selection.New(cfg.Store).Restore()
	pnl := panels.New(cfg.Store).Restore()

	m := Model{
		keys:        cfg.Keys,
		selection:   sel,
		panels:      pnl,
		projects:    cfg.Projects,
		docsService: cfg.Docs,
		header:      header.New(),
		sidebar:     sidebar.New(cfg.Keys),
		content:     content.New(),
		chatPanel:   chatpanel.New(),
		statusBar:   statusbar.New(cfg.Keys),
		toaster:     toaster.New(),
		debugMode:   cfg.DebugMode,
		logOverlay:  logoverlay.New(),
	}

	m.monitor = connectivity.New(cfg.Prober)
	if cfg.Prober != nil {
		m.monitor, m.monitorStartCmd = m.monitor.Start()
	}

	if cfg.Transport != nil {
		ctx, cancel := context.WithCancel(context.Background())
		m.transportCancel = cancel
		m.transportListener = pubsub.NewContinuousListener(ctx, cfg.Transport.Broker())
		go cfg.Transport.Start(ctx)
	}

	if cfg.Docs != nil {
		ctx, cancel := context.WithCancel(context.Background())
		m.docsCancel = cancel
		m.docsListener = pubsub.NewContinuousListener(ctx, cfg.Docs.Broker())
	}

	if cfg.DebugMode {
		m.logListenCmd = m.logOverlay.StartListening()
	}

	m.syncSelection()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.statusBar.Init()}

	if m.monitorStartCmd != nil {
		cmds = append(cmds, m.monitorStartCmd)
	}
	if m.transportListener != nil {
		cmds = append(cmds, m.transportListener.Listen())
	}
	if m.docsListener != nil {
		cmds = append(cmds, m.docsListener.Listen())
	}
	if m.logListenCmd != nil {
		cmds = append(cmds, m.logListenCmd)
	}
	if cmd := m.loadDirectoryCmd(false); cmd != nil {
		cmds = append(cmds, cmd)
	}

	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m = m.layout()
		return m, nil

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case log.LogEvent:
		var cmd tea.Cmd
		m.logOverlay, cmd = m.logOverlay.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)

	case directoryLoadedMsg:
		return m.handleDirectoryLoaded(msg)

	case pubsub.Event[transport.Event]:
		return m.handleTransportEvent(msg)

	case pubsub.Event[[]docs.Doc]:
		if m.docsOpen {
			m.docsPalette = m.docsPalette.SetItems(docItems(msg.Payload))
		}
		if m.docsListener != nil {
			return m, m.docsListener.Listen()
		}
		return m, nil

	case sidebar.SelectMsg:
		return m.navigate(msg.Item)

	case searchSelectMsg:
		m.searchOpen = false
		target, ok := m.searchTargets[msg.id]
		if !ok {
			return m, nil
		}
		return m.navigate(target)

	case searchCancelMsg:
		m.searchOpen = false
		return m, nil

	case docsSelectMsg:
		return m.handleDocsPick(msg.doc)

	case docsCancelMsg:
		m.docsOpen = false
		return m, nil

	case toaster.ShowMsg:
		m.toaster = m.toaster.Show(msg.Message, msg.Style)
		return m, toaster.ScheduleDismiss(msg.Style.Lifetime())

	case toaster.DismissMsg:
		m.toaster = m.toaster.Hide()
		return m, nil

	case logoverlay.CloseMsg:
		m.logOverlay.Hide()
		return m, nil
	}

	return m.updateBackground(msg)
}

// updateBackground forwards messages that belong to always-running
// components: the connectivity monitor's own poll messages, the status
// bar spinner, and the open palette's cursor blink.
func (m Model) updateBackground(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	m.monitor, cmd = m.monitor.Update(msg)
	cmds = append(cmds, cmd)
	m = m.syncConnectivity()

	m.statusBar, cmd = m.statusBar.Update(msg)
	cmds = append(cmds, cmd)

	if m.searchOpen {
		m.searchPalette, cmd = m.searchPalette.Update(msg)
		cmds = append(cmds, cmd)
	}
	if m.docsOpen {
		m.docsPalette, cmd = m.docsPalette.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// handleKey dispatches keyboard input: quit first, then the debug
// overlay, then whichever palette is open, then the global combos, and
// only then the sidebar.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}

	if m.debugMode && key.Matches(msg, m.keys.LogOverlay) {
		m.logOverlay.Toggle()
		return m, nil
	}

	// The debug log overlay swallows everything while visible
	if m.logOverlay.Visible() {
		var cmd tea.Cmd
		m.logOverlay, cmd = m.logOverlay.Update(msg)
		return m, cmd
	}

	if m.searchOpen {
		switch {
		case key.Matches(msg, m.keys.SearchPalette):
			m.searchOpen = false
			return m, nil
		case key.Matches(msg, m.keys.DocsPalette):
			m.searchOpen = false
			return m.openDocsPalette()
		}
		var cmd tea.Cmd
		m.searchPalette, cmd = m.searchPalette.Update(msg)
		return m, cmd
	}

	if m.docsOpen {
		switch {
		case key.Matches(msg, m.keys.DocsPalette):
			m.docsOpen = false
			return m, nil
		case key.Matches(msg, m.keys.SearchPalette):
			m.docsOpen = false
			return m.openSearchPalette()
		}
		var cmd tea.Cmd
		m.docsPalette, cmd = m.docsPalette.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.SearchPalette):
		return m.openSearchPalette()

	case key.Matches(msg, m.keys.DocsPalette):
		return m.openDocsPalette()

	case key.Matches(msg, m.keys.ToggleSidebar):
		var err error
		m.panels, err = m.panels.ToggleSidebar()
		m = m.layout()
		if err != nil {
			log.ErrorErr(log.CatShell, "Failed to persist sidebar state", err)
			return m, toaster.Notify("Sidebar state won't survive a restart", toaster.StyleWarn)
		}
		return m, nil

	case key.Matches(msg, m.keys.ToggleChat):
		var err error
		m.panels, err = m.panels.ToggleChat()
		m = m.layout()
		if err != nil {
			log.ErrorErr(log.CatShell, "Failed to persist chat panel state", err)
			return m, toaster.Notify("Chat panel state won't survive a restart", toaster.StyleWarn)
		}
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		if cmd := m.loadDirectoryCmd(true); cmd != nil {
			log.Info(log.CatShell, "Manual project refresh requested")
			return m, tea.Batch(cmd, toaster.Notify("Refreshing projects", toaster.StyleInfo))
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.sidebar, cmd = m.sidebar.Update(msg)
	return m, cmd
}

// handleMouse routes mouse input to the topmost interactive layer.
func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.logOverlay.Visible() {
		var cmd tea.Cmd
		m.logOverlay, cmd = m.logOverlay.Update(msg)
		return m, cmd
	}
	if m.searchOpen {
		var cmd tea.Cmd
		m.searchPalette, cmd = m.searchPalette.Update(msg)
		return m, cmd
	}
	if m.docsOpen {
		var cmd tea.Cmd
		m.docsPalette, cmd = m.docsPalette.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.sidebar, cmd = m.sidebar.Update(msg)
	return m, cmd
}

// navigate makes item the current selection and closes any open
// palette. A failed persist is surfaced but never blocks navigation.
func (m Model) navigate(item selection.Item) (tea.Model, tea.Cmd) {
	m.searchOpen = false
	m.docsOpen = false

	var err error
	m.selection, err = m.selection.Select(item)
	m.syncSelection()

	if err != nil {
		log.ErrorErr(log.CatShell, "Failed to persist selection", err, "kind", string(item.Kind))
		return m, toaster.Notify("Selection won't survive a restart", toaster.StyleWarn)
	}
	log.Debug(log.CatShell, "Navigated", "kind", string(item.Kind), "project", item.ProjectID)
	return m, nil
}

// handleDirectoryLoaded applies a directory fetch result.
func (m Model) handleDirectoryLoaded(msg directoryLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		return m, toaster.Notify("Couldn't load projects", toaster.StyleWarn)
	}

	m.directory = msg.directory
	m.directoryLoaded = true
	m.sidebar = m.sidebar.SetDirectory(msg.directory)
	m.syncSelection()

	wd := projects.WorkingDir(msg.directory)
	if wd != m.workingDir {
		m.workingDir = wd
		m.statusBar = m.statusBar.SetWorkingDir(wd)
		if m.docsService != nil {
			if err := m.docsService.SetProject(wd); err != nil {
				log.ErrorErr(log.CatDocs, "Failed to index project docs", err, "dir", wd)
			}
		}
	}

	if m.searchOpen {
		items, targets := m.searchItems()
		m.searchTargets = targets
		m.searchPalette = m.searchPalette.SetItems(items)
	}

	return m, nil
}

// handleTransportEvent applies one push-channel event and re-arms the
// listener.
func (m Model) handleTransportEvent(msg pubsub.Event[transport.Event]) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	if m.transportListener != nil {
		cmds = append(cmds, m.transportListener.Listen())
	}

	switch msg.Payload.Kind {
	case transport.Connected:
		m.monitor = m.monitor.SetTransportConnected(true)
		m = m.syncConnectivity()

	case transport.Disconnected:
		m.monitor = m.monitor.SetTransportConnected(false)
		m = m.syncConnectivity()

	case transport.Message:
		if msg.Payload.Notice.Type == transport.NoticeProjectsChanged {
			if m.projects != nil {
				m.projects.Flush(context.Background())
			}
			if cmd := m.loadDirectoryCmd(false); cmd != nil {
				cmds = append(cmds, cmd)
			}
		} else {
			log.Debug(log.CatShell, "Ignoring unknown notice", "type", msg.Payload.Notice.Type)
		}
	}

	return m, tea.Batch(cmds...)
}

// handleDocsPick navigates to the active project's docs surface for the
// chosen document.
func (m Model) handleDocsPick(doc docs.Doc) (tea.Model, tea.Cmd) {
	m.docsOpen = false

	if m.directory.ActiveProjectID == "" {
		return m, toaster.Notify("No active project for docs", toaster.StyleWarn)
	}
	log.Info(log.CatDocs, "Doc picked", "title", doc.Title, "path", doc.Path)
	return m.navigate(selection.Docs(m.directory.ActiveProjectID))
}

// openSearchPalette builds the navigation palette from the directory.
func (m Model) openSearchPalette() (tea.Model, tea.Cmd) {
	items, targets := m.searchItems()
	m.searchTargets = targets
	m.searchPalette = commandpalette.New(commandpalette.Config{
		Title:       "Go to",
		Placeholder: "Search projects and sections...",
		Items:       items,
		OnSelect:    func(it commandpalette.Item) tea.Msg { return searchSelectMsg{id: it.ID} },
		OnCancel:    func() tea.Msg { return searchCancelMsg{} },
	}).SetSize(m.width, m.height)
	m.searchOpen = true
	return m, m.searchPalette.Init()
}

// openDocsPalette builds the document palette from the docs index.
func (m Model) openDocsPalette() (tea.Model, tea.Cmd) {
	var items []commandpalette.Item
	if m.docsService != nil {
		items = docItems(m.docsService.Docs())
	}
	m.docsPalette = commandpalette.New(commandpalette.Config{
		Title:       "Docs",
		Placeholder: "Search docs...",
		Items:       items,
		OnSelect: func(it commandpalette.Item) tea.Msg {
			return docsSelectMsg{doc: docs.Doc{Title: it.Name, Path: it.ID}}
		},
		OnCancel: func() tea.Msg { return docsCancelMsg{} },
	}).SetSize(m.width, m.height)
	m.docsOpen = true
	return m, m.docsPalette.Init()
}

// searchItems flattens the directory into palette entries: every
// project, the current project's sections, and global settings.
func (m Model) searchItems() ([]commandpalette.Item, map[string]selection.Item) {
	items := make([]commandpalette.Item, 0, len(m.directory.Projects)+12)
	targets := make(map[string]selection.Item)

	add := func(id, name, description string, target selection.Item) {
		items = append(items, commandpalette.Item{ID: id, Name: name, Description: description})
		targets[id] = target
	}

	for _, p := range m.directory.Projects {
		name := p.Name
		if name == "" {
			name = p.ID
		}
		add("project:"+p.ID, name, "Project", selection.Project(p.ID))
	}

	if current := m.currentProjectID(); current != "" {
		name := m.resolveProjectName(selection.Project(current))
		sections := []struct {
			label  string
			target selection.Item
		}{
			{"Agent", selection.Agent(current, "")},
			{"Tasks", selection.StandaloneTasks(current)},
			{"Backlog", selection.Backlog(current)},
			{"Post Task", selection.PostTask(current)},
			{"Docs", selection.Docs(current)},
			{"Archived", selection.Archived(current, "")},
			{"Alerts", selection.Alerts(current)},
			{"Project Settings", selection.ProjectSettings(current)},
		}
		for _, s := range sections {
			add("section:"+string(s.target.Kind)+":"+current, s.label, name, s.target)
		}
	}

	add("settings", "Settings", "Global preferences", selection.Settings())
	return items, targets
}

// currentProjectID returns the project the shell is focused on: the
// selection's project when it has one, otherwise the active project.
func (m Model) currentProjectID() string {
	if id := m.selection.Current().ProjectID; id != "" {
		return id
	}
	return m.directory.ActiveProjectID
}

// resolveProjectName maps a target's project id to its display name.
// Before the first directory load the raw id stands in; after it, an
// unknown id resolves to empty so the content pane can say not-found.
func (m Model) resolveProjectName(item selection.Item) string {
	if item.ProjectID == "" {
		return ""
	}
	if !m.directoryLoaded {
		return item.ProjectID
	}
	for _, p := range m.directory.Projects {
		if p.ID == item.ProjectID {
			if p.Name != "" {
				return p.Name
			}
			return p.ID
		}
	}
	return ""
}

// syncSelection fans the current selection out to every region that
// renders it.
func (m *Model) syncSelection() {
	item := m.selection.Current()
	name := m.resolveProjectName(item)

	m.header = m.header.SetSelection(item).SetProject(name)
	m.sidebar = m.sidebar.SetSelection(item)
	m.content = m.content.SetTarget(item, name)
}

// syncConnectivity pushes the monitor snapshot to the regions showing it.
func (m Model) syncConnectivity() Model {
	snapshot := m.monitor.Snapshot()
	m.statusBar = m.statusBar.SetSnapshot(snapshot)
	m.chatPanel = m.chatPanel.SetTransportConnected(snapshot.TransportConnected)
	return m
}

// loadDirectoryCmd fetches the project directory off the event loop.
// refresh bypasses the cache.
func (m Model) loadDirectoryCmd(refresh bool) tea.Cmd {
	svc := m.projects
	if svc == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), directoryTimeout)
		defer cancel()

		var directory backend.Directory
		var err error
		if refresh {
			directory, err = svc.Refresh(ctx)
		} else {
			directory, err = svc.Directory(ctx)
		}
		return directoryLoadedMsg{directory: directory, err: err}
	}
}

// layout recomputes every region size from the window and panel state.
func (m Model) layout() Model {
	if m.width <= 0 || m.height <= 0 {
		return m
	}

	m.header = m.header.SetSize(m.width)
	m.statusBar = m.statusBar.SetSize(m.width)
	m.toaster = m.toaster.SetSize(m.width, m.height)
	m.logOverlay.SetSize(m.width, m.height)
	m.searchPalette = m.searchPalette.SetSize(m.width, m.height)
	m.docsPalette = m.docsPalette.SetSize(m.width, m.height)

	mainHeight := m.height - 2 // header and status bar
	if mainHeight < 1 {
		mainHeight = 1
	}

	sidebarW := 0
	if !m.panels.SidebarCollapsed() {
		sidebarW = min(sidebarWidth, m.width/3)
	}
	chatW := 0
	if !m.panels.ChatCollapsed() {
		chatW = min(chatPanelWidth, m.width/3)
	}
	contentW := m.width - sidebarW - chatW
	if contentW < 1 {
		contentW = 1
	}

	m.sidebar = m.sidebar.SetSize(sidebarW, mainHeight)
	m.content = m.content.SetSize(contentW, mainHeight)
	m.chatPanel = m.chatPanel.SetSize(chatW, mainHeight)

	return m
}

// View implements tea.Model.
func (m Model) View() string {
	if m.width <= 0 || m.height <= 0 {
		return ""
	}

	regions := make([]string, 0, 3)
	if !m.panels.SidebarCollapsed() {
		regions = append(regions, m.sidebar.View())
	}
	regions = append(regions, m.content.View())
	if !m.panels.ChatCollapsed() {
		regions = append(regions, m.chatPanel.View())
	}

	view := lipgloss.JoinVertical(lipgloss.Left,
		m.header.View(),
		lipgloss.JoinHorizontal(lipgloss.Top, regions...),
		m.statusBar.View(),
	)

	if m.toaster.Visible() {
		view = m.toaster.Overlay(view)
	}
	if m.searchOpen {
		view = m.searchPalette.Overlay(view)
	}
	if m.docsOpen {
		view = m.docsPalette.Overlay(view)
	}
	if m.debugMode && m.logOverlay.Visible() {
		view = m.logOverlay.Overlay(view)
	}

	return zone.Scan(view)
}

// Close releases resources held by the shell.
func (m *Model) Close() error {
	m.logOverlay.StopListening()

	if m.transportCancel != nil {
		m.transportCancel()
	}
	if m.docsCancel != nil {
		m.docsCancel()
	}
	if m.docsService != nil {
		m.docsService.Close()
	}

	return nil
}

// docItems converts the docs index into palette entries.
func docItems(list []docs.Doc) []commandpalette.Item {
	items := make([]commandpalette.Item, 0, len(list))
	for _, d := range list {
		items = append(items, commandpalette.Item{
			ID:          d.Path,
			Name:        d.Title,
			Description: d.Path,
		})
	}
	return items
}
