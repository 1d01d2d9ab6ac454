// Package content renders the main pane of the shell. Each navigation
// kind gets its own surface; until those surfaces grow real features
// the pane shows what belongs there and how to reach it.
package content

import (
	_ "embed"
	"fmt"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/rcastell/wheelhouse/internal/selection"
	"github.com/rcastell/wheelhouse/internal/ui/styles"
)

//go:embed welcome.md
var welcomeMarkdown string

// noMarginStyle removes glamour's document margins; the pane border
// already provides the framing.
const noMarginStyle = `{
	"document": {
		"margin": 0,
		"block_prefix": "",
		"block_suffix": ""
	}
}`

// Model holds the content pane state.
type Model struct {
	width       int
	height      int
	item        selection.Item
	projectName string
}

// New creates the pane showing the welcome surface.
func New() Model {
	return Model{item: selection.None()}
}

// SetSize sets the pane dimensions, borders included.
func (m Model) SetSize(width, height int) Model {
	m.width = width
	m.height = height
	return m
}

// SetTarget points the pane at a navigation target. projectName is the
// resolved display name of the target's project; pass empty when the
// project id is not in the directory, which renders the not-found
// surface instead.
func (m Model) SetTarget(item selection.Item, projectName string) Model {
	m.item = item
	m.projectName = projectName
	return m
}

// View renders the pane with a titled border.
func (m Model) View() string {
	if m.width < 1 || m.height < 1 {
		return ""
	}

	innerWidth := m.width - 4
	if innerWidth < 1 {
		innerWidth = 1
	}

	var title, body string
	switch {
	case m.item.IsNone():
		title = paneTitle(m.item.Kind)
		body = m.renderWelcome(innerWidth)
	case m.projectMissing():
		title = "Not found"
		body = lipgloss.NewStyle().Foreground(styles.TextMutedColor).Render(
			wordwrap.String("The selected project is no longer in the directory. Pick another one from the sidebar.", innerWidth))
	default:
		title = paneTitle(m.item.Kind)
		body = lipgloss.NewStyle().Foreground(styles.TextSecondaryColor).Render(
			wordwrap.String(m.paneBody(), innerWidth))
	}

	return styles.RenderWithTitleBorder(body, title, m.width, m.height, false,
		styles.OverlayTitleColor, styles.BorderHighlightFocusColor)
}

// projectMissing reports whether the target names a project the
// directory no longer has.
func (m Model) projectMissing() bool {
	return m.item.ProjectID != "" && m.projectName == ""
}

// renderWelcome renders the embedded welcome page through glamour,
// falling back to the raw markdown if the renderer cannot be built.
func (m Model) renderWelcome(width int) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithStylesFromJSONBytes([]byte(noMarginStyle)),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return wordwrap.String(welcomeMarkdown, width)
	}
	out, err := r.Render(welcomeMarkdown)
	if err != nil {
		return wordwrap.String(welcomeMarkdown, width)
	}
	return out
}

// paneTitle names the surface for a navigation kind. Every kind has a
// title; an empty return means a kind was added without a surface.
func paneTitle(kind selection.Kind) string {
	switch kind {
	case selection.KindNone:
		return "Home"
	case selection.KindProject:
		return "Overview"
	case selection.KindChange:
		return "Change"
	case selection.KindStandaloneTasks:
		return "Tasks"
	case selection.KindBacklog:
		return "Backlog"
	case selection.KindProjectSettings:
		return "Project Settings"
	case selection.KindAgent:
		return "Agent"
	case selection.KindPostTask:
		return "Post Task"
	case selection.KindArchived:
		return "Archived"
	case selection.KindDocs:
		return "Docs"
	case selection.KindAlerts:
		return "Alerts"
	case selection.KindSettings:
		return "Settings"
	default:
		return ""
	}
}

// paneBody describes the surface for the current target.
func (m Model) paneBody() string {
	name := m.projectName

	switch m.item.Kind {
	case selection.KindProject:
		return fmt.Sprintf("Overview of %s. Recent activity, open changes, and quick links land here.", name)
	case selection.KindChange:
		return fmt.Sprintf("Change %s in %s. Description, tasks, and review state.", m.item.ChangeID, name)
	case selection.KindStandaloneTasks:
		return fmt.Sprintf("Tasks for %s that live outside any change.", name)
	case selection.KindBacklog:
		return fmt.Sprintf("Backlog for %s. Queued ideas waiting to become changes.", name)
	case selection.KindProjectSettings:
		return fmt.Sprintf("Settings for %s.", name)
	case selection.KindAgent:
		if m.item.ChangeID != "" {
			return fmt.Sprintf("Agent workspace for %s, resuming change %s.", name, m.item.ChangeID)
		}
		return fmt.Sprintf("Agent workspace for %s.", name)
	case selection.KindPostTask:
		return fmt.Sprintf("Post a task to %s.", name)
	case selection.KindArchived:
		if m.item.ChangeID != "" {
			return fmt.Sprintf("Archived change %s in %s.", m.item.ChangeID, name)
		}
		return fmt.Sprintf("Archived changes for %s.", name)
	case selection.KindDocs:
		return fmt.Sprintf("Documentation for %s. Press ctrl+d to search the docs.", name)
	case selection.KindAlerts:
		return fmt.Sprintf("Alerts for %s. Failures and items that need attention.", name)
	case selection.KindSettings:
		return "Global preferences for the shell."
	default:
		return ""
	}
}
