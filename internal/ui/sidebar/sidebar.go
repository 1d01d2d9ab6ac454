// Package sidebar renders the project navigation panel: every project
// in the directory, the section rows of the expanded project, and the
// global settings entry.
package sidebar

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
	"github.com/mattn/go-runewidth"

	"github.com/rcastell/wheelhouse/internal/backend"
	"github.com/rcastell/wheelhouse/internal/keys"
	"github.com/rcastell/wheelhouse/internal/selection"
	"github.com/rcastell/wheelhouse/internal/ui/styles"
)

// SelectMsg asks the shell to navigate to a target.
type SelectMsg struct {
	Item selection.Item
}

type rowKind int

const (
	rowProject rowKind = iota
	rowSection
	rowGlobal
)

// row is one selectable line in the sidebar.
type row struct {
	kind   rowKind
	label  string
	target selection.Item
}

// section describes one per-project entry and the target it selects.
type section struct {
	label  string
	target func(projectID string) selection.Item
}

// projectSections lists the rows shown under the expanded project, in
// display order.
var projectSections = []section{
	{"Overview", selection.Project},
	{"Agent", func(id string) selection.Item { return selection.Agent(id, "") }},
	{"Tasks", selection.StandaloneTasks},
	{"Backlog", selection.Backlog},
	{"Post Task", selection.PostTask},
	{"Docs", selection.Docs},
	{"Archived", func(id string) selection.Item { return selection.Archived(id, "") }},
	{"Alerts", selection.Alerts},
	{"Settings", selection.ProjectSettings},
}

// Model holds the sidebar state.
type Model struct {
	width     int
	height    int
	keys      keys.KeyMap
	directory backend.Directory
	current   selection.Item
	cursor    int
	offset    int
	rows      []row
}

// New creates an empty sidebar.
func New(keyMap keys.KeyMap) Model {
	m := Model{keys: keyMap, current: selection.None()}
	m.rebuildRows()
	return m
}

// SetSize sets the panel dimensions, borders included.
func (m Model) SetSize(width, height int) Model {
	m.width = width
	m.height = height
	m.ensureCursorVisible()
	return m
}

// SetDirectory replaces the project list. The cursor stays on the same
// target when it survives the rebuild; the first load puts it on top.
func (m Model) SetDirectory(d backend.Directory) Model {
	previous := m.cursorTarget()
	hadProjects := len(m.directory.Projects) > 0
	m.directory = d
	m.rebuildRows()
	if hadProjects {
		m.moveCursorTo(previous)
	} else {
		m.cursor = 0
		m.offset = 0
	}
	return m
}

// SetSelection mirrors the shell's current navigation target. The
// expanded project follows the selection.
func (m Model) SetSelection(item selection.Item) Model {
	m.current = item
	m.rebuildRows()
	m.moveCursorTo(item)
	return m
}

// Update handles cursor movement, row activation, and clicks.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
				m.ensureCursorVisible()
			}
			return m, nil
		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.rows)-1 {
				m.cursor++
				m.ensureCursorVisible()
			}
			return m, nil
		case key.Matches(msg, m.keys.Enter):
			return m, m.activateCmd(m.cursor)
		}

	case tea.MouseMsg:
		if msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionRelease {
			for i := range m.rows {
				if z := zone.Get(rowZoneID(i)); z != nil && z.InBounds(msg) {
					m.cursor = i
					m.ensureCursorVisible()
					return m, m.activateCmd(i)
				}
			}
		}
	}

	return m, nil
}

// View renders the sidebar panel with a titled border.
func (m Model) View() string {
	if m.width <= 0 || m.height <= 0 {
		return ""
	}

	innerWidth := m.width - 4 // borders plus one cell of padding each side
	if innerWidth < 1 {
		innerWidth = 1
	}

	var lines []string
	visible := m.visibleRowCount()
	end := min(m.offset+visible, len(m.rows))
	for i := m.offset; i < end; i++ {
		lines = append(lines, zone.Mark(rowZoneID(i), m.renderRow(i, innerWidth)))
	}
	if len(m.directory.Projects) == 0 {
		empty := lipgloss.NewStyle().Foreground(styles.TextMutedColor).Italic(true)
		lines = append([]string{empty.Render(" No projects"), ""}, lines...)
	}

	content := strings.Join(lines, "\n")
	return styles.RenderWithTitleBorder(content, "Projects", m.width, m.height, true,
		styles.OverlayTitleColor, styles.BorderHighlightFocusColor)
}

// renderRow renders one line, padded to the inner width so click zones
// cover the whole row.
func (m Model) renderRow(i, innerWidth int) string {
	r := m.rows[i]

	indent := " "
	if r.kind == rowSection {
		indent = "   "
	}

	marker := " "
	if r.kind == rowProject {
		if r.target.ProjectID == m.expandedProjectID() {
			marker = "▾"
		} else {
			marker = "▸"
		}
	}

	activeDot := ""
	if r.kind == rowProject && r.target.ProjectID == m.directory.ActiveProjectID {
		activeDot = " " + lipgloss.NewStyle().Foreground(styles.StatusSuccessColor).Render("●")
	}

	label := r.label
	maxLabel := innerWidth - runewidth.StringWidth(indent+marker+" ") - lipgloss.Width(activeDot)
	if maxLabel > 0 {
		label = styles.TruncateString(label, maxLabel)
	}

	var labelStyle lipgloss.Style
	switch {
	case i == m.cursor:
		labelStyle = styles.SelectionIndicatorStyle
	case r.target == m.current && !r.target.IsNone():
		labelStyle = lipgloss.NewStyle().Foreground(styles.AccentColor)
	case r.kind == rowProject:
		labelStyle = lipgloss.NewStyle().Foreground(styles.TextPrimaryColor)
	default:
		labelStyle = lipgloss.NewStyle().Foreground(styles.TextSecondaryColor)
	}

	line := indent + marker + " " + labelStyle.Render(label) + activeDot
	if pad := innerWidth - lipgloss.Width(line); pad > 0 {
		line += strings.Repeat(" ", pad)
	}
	return line
}

// activateCmd emits the selection for the row at index i.
func (m Model) activateCmd(i int) tea.Cmd {
	if i < 0 || i >= len(m.rows) {
		return nil
	}
	target := m.rows[i].target
	return func() tea.Msg { return SelectMsg{Item: target} }
}

// rebuildRows regenerates the flat row list from the directory and the
// current selection. Only the expanded project contributes section rows.
func (m *Model) rebuildRows() {
	expanded := m.expandedProjectID()

	rows := make([]row, 0, len(m.directory.Projects)+len(projectSections)+1)
	for _, p := range m.directory.Projects {
		name := p.Name
		if name == "" {
			name = p.ID
		}
		rows = append(rows, row{kind: rowProject, label: name, target: selection.Project(p.ID)})
		if p.ID == expanded {
			for _, s := range projectSections {
				rows = append(rows, row{kind: rowSection, label: s.label, target: s.target(p.ID)})
			}
		}
	}
	rows = append(rows, row{kind: rowGlobal, label: "Settings", target: selection.Settings()})

	m.rows = rows
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.ensureCursorVisible()
}

// expandedProjectID returns the project whose sections are shown: the
// selection's project when it has one, otherwise the active project,
// otherwise the first project in the directory.
func (m Model) expandedProjectID() string {
	if m.current.ProjectID != "" {
		return m.current.ProjectID
	}
	if m.directory.ActiveProjectID != "" {
		return m.directory.ActiveProjectID
	}
	if len(m.directory.Projects) > 0 {
		return m.directory.Projects[0].ID
	}
	return ""
}

// moveCursorTo places the cursor on the row matching the target. Section
// rows match on kind and project so a restored agent selection with a
// change id still lands on the agent row.
func (m *Model) moveCursorTo(target selection.Item) {
	if target.IsNone() {
		return
	}
	for i, r := range m.rows {
		if r.target.Kind == target.Kind && r.target.ProjectID == target.ProjectID {
			m.cursor = i
			m.ensureCursorVisible()
			return
		}
	}
}

// cursorTarget returns the target under the cursor, or the none item
// when the sidebar is empty.
func (m Model) cursorTarget() selection.Item {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return selection.None()
	}
	return m.rows[m.cursor].target
}

// visibleRowCount returns how many rows fit inside the borders.
func (m Model) visibleRowCount() int {
	visible := m.height - 2
	if len(m.directory.Projects) == 0 {
		visible -= 2 // empty-state header lines
	}
	if visible < 1 {
		visible = 1
	}
	return visible
}

// ensureCursorVisible slides the scroll window to keep the cursor row
// on screen.
func (m *Model) ensureCursorVisible() {
	if m.height <= 0 {
		return
	}
	visible := m.visibleRowCount()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+visible {
		m.offset = m.cursor - visible + 1
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

func rowZoneID(i int) string {
	return fmt.Sprintf("sidebar:row:%d", i)
}
