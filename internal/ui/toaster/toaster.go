// Package toaster provides the transient notice overlay. Components never
// touch the toaster directly; they return Notify commands and the shell
// routes the resulting ShowMsg to the single toaster it owns.
package toaster

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rcastell/wheelhouse/internal/ui/overlay"
	"github.com/rcastell/wheelhouse/internal/ui/styles"
)

// Style determines the toast's icon, border color, and lifetime.
type Style int

const (
	StyleSuccess Style = iota
	StyleError
	StyleInfo
	StyleWarn
)

// Lifetime returns how long a toast of this style stays on screen.
// Warnings and errors linger: they carry things like failed state writes
// that the user should actually read.
func (s Style) Lifetime() time.Duration {
	switch s {
	case StyleError, StyleWarn:
		return 5 * time.Second
	default:
		return 3 * time.Second
	}
}

// icon returns the glyph prepended to the message.
func (s Style) icon() string {
	switch s {
	case StyleError:
		return "❌"
	case StyleInfo:
		return "ℹ️"
	case StyleWarn:
		return "⚠️"
	default:
		return "✅"
	}
}

// borderColor returns the border color for this style.
func (s Style) borderColor() lipgloss.TerminalColor {
	switch s {
	case StyleError:
		return styles.ToastBorderErrorColor
	case StyleInfo:
		return styles.ToastBorderInfoColor
	case StyleWarn:
		return styles.ToastBorderWarnColor
	default:
		return styles.ToastBorderSuccessColor
	}
}

// ShowMsg asks the shell to display a toast.
type ShowMsg struct {
	Message string
	Style   Style
}

// DismissMsg signals that the toast should be dismissed.
type DismissMsg struct{}

// Notify returns a command that raises a toast. This is the only way
// components outside the shell surface a notice.
func Notify(message string, style Style) tea.Cmd {
	return func() tea.Msg {
		return ShowMsg{Message: message, Style: style}
	}
}

// ScheduleDismiss returns a command that dismisses the toast after a
// duration, normally the style's Lifetime.
func ScheduleDismiss(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(_ time.Time) tea.Msg {
		return DismissMsg{}
	})
}

// Model holds the toaster state. A later Show replaces whatever toast is
// still on screen.
type Model struct {
	message string
	style   Style
	visible bool
	width   int
	height  int
}

// New creates a new toaster model.
func New() Model {
	return Model{}
}

// Show displays a toast with the given message and style.
func (m Model) Show(message string, style Style) Model {
	m.message = message
	m.style = style
	m.visible = true
	return m
}

// Hide dismisses the toast.
func (m Model) Hide() Model {
	m.visible = false
	m.message = ""
	return m
}

// Visible returns whether the toast is currently showing.
func (m Model) Visible() bool {
	return m.visible
}

// SetSize records the viewport dimensions used for clamping and placement.
func (m Model) SetSize(width, height int) Model {
	m.width = width
	m.height = height
	return m
}

// View renders the toast box. Messages wider than the viewport are
// truncated so the box never overflows the screen edge.
func (m Model) View() string {
	if !m.visible || m.message == "" {
		return ""
	}

	message := m.message
	// Border (2) + padding (2) + icon and its trailing space (3)
	if limit := m.width - 7; m.width > 0 && limit > 0 {
		message = styles.TruncateString(message, limit)
	}

	return lipgloss.NewStyle().
		Padding(0, 1).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.style.borderColor()).
		Render(m.style.icon() + " " + message)
}

// Overlay renders the toast bottom-centered over the background, one row
// above the status bar.
func (m Model) Overlay(bg string) string {
	if !m.visible || m.message == "" {
		return bg
	}

	return overlay.Place(overlay.Config{
		Width:    m.width,
		Height:   m.height,
		Position: overlay.Bottom,
		PadY:     1,
	}, m.View(), bg)
}
