// Package header renders the single-line bar across the top of the
// shell: app name, selection breadcrumb, and the active project.
package header

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rcastell/wheelhouse/internal/selection"
	"github.com/rcastell/wheelhouse/internal/ui/styles"
)

const appName = "wheelhouse"

// Model holds the header state.
type Model struct {
	width       int
	projectName string
	item        selection.Item
}

// New creates an empty header.
func New() Model {
	return Model{item: selection.None()}
}

// SetSize sets the render width. The header is always one line tall.
func (m Model) SetSize(width int) Model {
	m.width = width
	return m
}

// SetProject sets the display name of the project the selection points
// at. Pass empty when no project applies.
func (m Model) SetProject(name string) Model {
	m.projectName = name
	return m
}

// SetSelection sets the current navigation target.
func (m Model) SetSelection(item selection.Item) Model {
	m.item = item
	return m
}

// View renders the header line.
func (m Model) View() string {
	if m.width <= 0 {
		return ""
	}

	badgeStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(styles.AccentColor).
		Padding(0, 1)
	crumbStyle := lipgloss.NewStyle().
		Foreground(styles.TextSecondaryColor)
	projectStyle := lipgloss.NewStyle().
		Foreground(styles.TextMutedColor).
		Padding(0, 1)

	left := badgeStyle.Render(appName) + crumbStyle.Render(m.Breadcrumb())

	right := ""
	if m.projectName != "" {
		right = projectStyle.Render(m.projectName)
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		// Drop the right segment before truncating the crumb
		right = ""
		gap = m.width - lipgloss.Width(left)
		if gap < 0 {
			left = styles.TruncateString(left, m.width)
			gap = 0
		}
	}

	return left + strings.Repeat(" ", gap) + right
}

// Breadcrumb returns the human-readable path for the current selection.
func (m Model) Breadcrumb() string {
	project := m.projectName
	if project == "" {
		project = m.item.ProjectID
	}

	switch m.item.Kind {
	case selection.KindNone:
		return "Home"
	case selection.KindProject:
		return project
	case selection.KindChange:
		return project + " / Change " + shortID(m.item.ChangeID)
	case selection.KindStandaloneTasks:
		return project + " / Tasks"
	case selection.KindBacklog:
		return project + " / Backlog"
	case selection.KindProjectSettings:
		return project + " / Settings"
	case selection.KindAgent:
		if m.item.ChangeID != "" {
			return project + " / Agent " + shortID(m.item.ChangeID)
		}
		return project + " / Agent"
	case selection.KindPostTask:
		return project + " / Post Task"
	case selection.KindArchived:
		if m.item.ChangeID != "" {
			return project + " / Archived " + shortID(m.item.ChangeID)
		}
		return project + " / Archived"
	case selection.KindDocs:
		return project + " / Docs"
	case selection.KindAlerts:
		return project + " / Alerts"
	case selection.KindSettings:
		return "Settings"
	default:
		return string(m.item.Kind)
	}
}

// shortID trims long identifiers down to a readable prefix.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
