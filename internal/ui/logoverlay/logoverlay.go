// Package logoverlay provides an in-app log viewer overlay that tails the
// live log stream without leaving the TUI.
package logoverlay

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/rcastell/wheelhouse/internal/log"
	"github.com/rcastell/wheelhouse/internal/ui/overlay"
	"github.com/rcastell/wheelhouse/internal/ui/styles"
)

const (
	viewportMaxHeight = 25  // Fixed viewport height in lines
	viewportMinHeight = 5   // Minimum viewport height for very small screens
	boxMaxWidth       = 160 // Maximum box width in characters
	boxMinWidth       = 40  // Minimum box width in characters
)

// CloseMsg is sent when the overlay should be closed.
type CloseMsg struct{}

// Model is the log overlay component state. Two filters stack: a minimum
// level and an optional category, so transport sessions can be watched
// without monitor noise and vice versa.
type Model struct {
	visible  bool
	minLevel log.Level
	category log.Category // empty shows every category
	width    int
	height   int
	viewport viewport.Model

	listener   *log.LogListener
	cancelFeed context.CancelFunc
}

// New creates a new log overlay model.
func New() Model {
	return Model{
		visible:  false,
		minLevel: log.LevelDebug,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// StartListening subscribes to the live log feed and returns the command
// that waits for the first entry. Entries received while the overlay is
// hidden still land in the buffer; the feed only triggers repaints.
func (m *Model) StartListening() tea.Cmd {
	if m.listener != nil {
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	listener := log.NewListener(ctx)
	if listener == nil {
		cancel()
		return nil
	}
	m.listener = listener
	m.cancelFeed = cancel
	return listener.Listen()
}

// StopListening cancels the live log feed subscription.
func (m *Model) StopListening() {
	if m.cancelFeed != nil {
		m.cancelFeed()
	}
	m.listener = nil
	m.cancelFeed = nil
}

// Update handles messages for the log overlay.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if evt, ok := msg.(log.LogEvent); ok {
		return m.handleLogEvent(evt)
	}

	if !m.visible {
		return m, nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "c":
			log.ClearBuffer()
			m.refreshViewport()
			return m, nil

		case "d", "i", "w", "e":
			m.minLevel = levelKeys[msg.String()]
			m.refreshViewport()
			return m, nil

		case "f":
			m.category = nextCategory(m.category)
			m.refreshViewport()
			return m, nil

		case "j", "down":
			m.viewport.ScrollDown(1)
			return m, nil

		case "k", "up":
			m.viewport.ScrollUp(1)
			return m, nil

		case "g":
			m.viewport.GotoTop()
			return m, nil

		case "G":
			m.viewport.GotoBottom()
			return m, nil

		case "ctrl+c":
			return m, tea.Quit

		case "ctrl+x", "esc":
			m.visible = false
			return m, func() tea.Msg { return CloseMsg{} }
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.refreshViewport()
	}

	return m, nil
}

// levelKeys maps the filter keys to their levels.
var levelKeys = map[string]log.Level{
	"d": log.LevelDebug,
	"i": log.LevelInfo,
	"w": log.LevelWarn,
	"e": log.LevelError,
}

// nextCategory advances the category filter: all categories first, then
// each category in order, then back to all.
func nextCategory(current log.Category) log.Category {
	cats := log.Categories()
	if current == "" {
		return cats[0]
	}
	for i, cat := range cats {
		if cat == current {
			if i == len(cats)-1 {
				return ""
			}
			return cats[i+1]
		}
	}
	return ""
}

// handleLogEvent refreshes the viewport for a live entry and re-arms the
// listener. When the user was reading the tail, the tail follows.
func (m Model) handleLogEvent(_ log.LogEvent) (Model, tea.Cmd) {
	var next tea.Cmd
	if m.listener != nil {
		next = m.listener.Listen()
	}
	if !m.visible {
		return m, next
	}
	followTail := m.viewport.AtBottom()
	m.refreshViewport()
	if followTail {
		m.viewport.GotoBottom()
	}
	return m, next
}

// View renders the log overlay box: title, entry viewport, filter footer.
func (m Model) View() string {
	if !m.visible {
		return ""
	}

	boxWidth := m.boxWidth()
	divider := lipgloss.NewStyle().
		Foreground(styles.OverlayBorderColor).
		Render(strings.Repeat("─", boxWidth))
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(styles.OverlayTitleColor).
		PaddingLeft(1).
		Render("Logs")

	rows := []string{
		title,
		divider,
		m.viewport.View(),
		divider,
		m.filterHint(),
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.OverlayBorderColor).
		Width(boxWidth).
		Render(strings.Join(rows, "\n"))
}

// viewportContent renders every buffered entry that passes the filters.
func (m Model) viewportContent(contentWidth int) string {
	var lines []string
	for _, entry := range log.GetRecentLogs(10000) {
		if !m.matchesFilter(entry) {
			continue
		}
		lines = append(lines, m.renderEntry(entry, contentWidth))
	}

	if len(lines) == 0 {
		return lipgloss.NewStyle().
			Foreground(styles.TextMutedColor).
			Italic(true).
			Render("No logs to display")
	}
	return strings.Join(lines, "\n")
}

// refreshViewport rebuilds the viewport with the current filtered content.
func (m *Model) refreshViewport() {
	if m.width == 0 || m.height == 0 {
		return
	}

	contentWidth := m.contentWidth()

	// Header (2 lines), footer (2 lines), borders (2 lines) = 6 lines overhead
	maxAllowed := m.height - 6
	viewportHeight := min(viewportMaxHeight, maxAllowed)
	viewportHeight = max(viewportHeight, viewportMinHeight)

	m.viewport = viewport.New(contentWidth, viewportHeight)
	m.viewport.SetContent(m.viewportContent(contentWidth))
}

// Overlay renders the log overlay centered on the given background.
func (m Model) Overlay(bg string) string {
	if !m.visible {
		return bg
	}
	fg := m.View()
	return overlay.Place(overlay.Config{
		Width:    m.width,
		Height:   m.height,
		Position: overlay.Center,
	}, fg, bg)
}

// Visible returns whether the overlay is currently visible.
func (m Model) Visible() bool {
	return m.visible
}

// boxWidth returns the calculated box width based on screen size.
func (m Model) boxWidth() int {
	return max(min(m.width-4, boxMaxWidth), boxMinWidth)
}

// contentWidth returns the content width (box width minus borders).
func (m Model) contentWidth() int {
	return m.boxWidth() - 2
}

// Toggle toggles the overlay visibility.
func (m *Model) Toggle() {
	m.visible = !m.visible
	if m.visible {
		m.refreshViewport()
		m.viewport.GotoBottom()
	}
}

// Show makes the overlay visible.
func (m *Model) Show() {
	m.visible = true
	m.refreshViewport()
	m.viewport.GotoBottom()
}

// Hide makes the overlay invisible.
func (m *Model) Hide() {
	m.visible = false
}

// SetSize updates the overlay's knowledge of viewport size.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.refreshViewport()
}

// levelOf classifies an entry by the level tag the logger wrote.
// Entries without a recognizable tag report ok=false and bypass the
// level filter.
func levelOf(entry string) (level log.Level, ok bool) {
	switch {
	case strings.Contains(entry, "[ERROR]"):
		return log.LevelError, true
	case strings.Contains(entry, "[WARN]"):
		return log.LevelWarn, true
	case strings.Contains(entry, "[INFO]"):
		return log.LevelInfo, true
	case strings.Contains(entry, "[DEBUG]"):
		return log.LevelDebug, true
	}
	return 0, false
}

// matchesFilter applies the level filter and the category filter. Levels
// are ordered DEBUG(0) < INFO(1) < WARN(2) < ERROR(3); entries at or above
// minLevel pass. The category filter matches the "[cat]" tag exactly.
func (m Model) matchesFilter(entry string) bool {
	if level, ok := levelOf(entry); ok && level < m.minLevel {
		return false
	}
	if m.category != "" && !strings.Contains(entry, "["+string(m.category)+"]") {
		return false
	}
	return true
}

// renderEntry truncates an entry to the content width and colors it by
// level.
func (m Model) renderEntry(entry string, maxWidth int) string {
	entry = strings.TrimSuffix(entry, "\n")

	// ANSI-aware truncation handles UTF-8 correctly
	if ansi.StringWidth(entry) > maxWidth {
		entry = ansi.Truncate(entry, maxWidth-3, "...")
	}

	color := styles.TextPrimaryColor
	if level, ok := levelOf(entry); ok {
		switch level {
		case log.LevelError:
			color = styles.StatusErrorColor
		case log.LevelWarn:
			color = styles.StatusWarningColor
		case log.LevelInfo:
			color = styles.ToastBorderInfoColor
		case log.LevelDebug:
			color = styles.TextMutedColor
		}
	}
	return lipgloss.NewStyle().Foreground(color).Render(entry)
}

// filterHint renders the footer: clear, the four level filters with the
// active one highlighted, and the category cycle state.
func (m Model) filterHint() string {
	hintStyle := lipgloss.NewStyle().Foreground(styles.TextMutedColor)
	activeStyle := lipgloss.NewStyle().
		Foreground(styles.TextPrimaryColor).
		Bold(true)

	hints := []string{hintStyle.Render("[c] Clear")}

	levels := []struct {
		level log.Level
		label string
	}{
		{log.LevelDebug, "[d] Debug"},
		{log.LevelInfo, "[i] Info"},
		{log.LevelWarn, "[w] Warn"},
		{log.LevelError, "[e] Error"},
	}
	for _, l := range levels {
		if m.minLevel == l.level {
			hints = append(hints, activeStyle.Render(l.label))
		} else {
			hints = append(hints, hintStyle.Render(l.label))
		}
	}

	catLabel := "[f] all categories"
	if m.category != "" {
		catLabel = "[f] " + string(m.category)
	}
	if m.category != "" {
		hints = append(hints, activeStyle.Render(catLabel))
	} else {
		hints = append(hints, hintStyle.Render(catLabel))
	}

	return strings.Join(hints, "  ")
}
