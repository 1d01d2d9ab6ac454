// Package chatpanel renders the collapsible assistant panel on the
// right edge of the shell. The transcript itself lives elsewhere; this
// panel is the frame the shell reserves for it, plus the live-update
// hint driven by the push channel.
package chatpanel

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/rcastell/wheelhouse/internal/ui/styles"
)

// Model holds the chat panel state.
type Model struct {
	width              int
	height             int
	transportConnected bool
}

// New creates the panel.
func New() Model {
	return Model{}
}

// SetSize sets the panel dimensions, borders included.
func (m Model) SetSize(width, height int) Model {
	m.width = width
	m.height = height
	return m
}

// SetTransportConnected mirrors the push-channel state so the panel can
// say whether live updates are flowing.
func (m Model) SetTransportConnected(connected bool) Model {
	m.transportConnected = connected
	return m
}

// View renders the panel with a titled border.
func (m Model) View() string {
	if m.width < 1 || m.height < 1 {
		return ""
	}

	innerWidth := m.width - 4
	if innerWidth < 1 {
		innerWidth = 1
	}

	bodyStyle := lipgloss.NewStyle().
		Foreground(styles.TextPlaceholderColor).
		Italic(true)
	body := bodyStyle.Render(wordwrap.String("Assistant conversations appear here.", innerWidth))

	hint := m.hintLine(innerWidth)

	innerHeight := m.height - 2
	bodyLines := strings.Count(body, "\n") + 1
	gap := innerHeight - bodyLines - 1
	if gap < 0 {
		gap = 0
	}

	content := body + strings.Repeat("\n", gap) + hint
	return styles.RenderWithTitleBorder(content, "Assistant", m.width, m.height, false,
		styles.OverlayTitleColor, styles.BorderHighlightFocusColor)
}

// hintLine renders the push-channel hint pinned to the panel bottom.
func (m Model) hintLine(innerWidth int) string {
	if m.transportConnected {
		return lipgloss.NewStyle().
			Foreground(styles.TextMutedColor).
			Render(styles.TruncateString("● live updates on", innerWidth))
	}
	return lipgloss.NewStyle().
		Foreground(styles.StatusWarningColor).
		Render(styles.TruncateString("○ live updates paused", innerWidth))
}
