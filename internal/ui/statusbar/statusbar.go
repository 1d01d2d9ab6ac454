// Package statusbar renders the single-line bar across the bottom of
// the shell: backend health, push-channel state, the derived working
// directory, and the short key help.
package statusbar

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"

	"github.com/rcastell/wheelhouse/internal/connectivity"
	"github.com/rcastell/wheelhouse/internal/keys"
	"github.com/rcastell/wheelhouse/internal/ui/styles"
)

const segmentDivider = " │ "

// Model holds the status bar state.
type Model struct {
	width      int
	spinner    spinner.Model
	snapshot   connectivity.Snapshot
	workingDir string
	help       help.Model
	keys       keys.KeyMap
}

// New creates a status bar. The spinner animates only while the first
// health probe is still in flight.
func New(keyMap keys.KeyMap) Model {
	s := spinner.New()
	s.Spinner = spinner.MiniDot
	s.Style = lipgloss.NewStyle().Foreground(styles.SpinnerColor)

	h := help.New()
	h.ShowAll = false

	return Model{
		spinner: s,
		help:    h,
		keys:    keyMap,
	}
}

// Init starts the spinner animation.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update advances the spinner while connectivity is still resolving.
// Once the first probe lands the tick chain is dropped; health never
// returns to the checking state.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if tick, ok := msg.(spinner.TickMsg); ok {
		if m.snapshot.Health != connectivity.HealthChecking {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(tick)
		return m, cmd
	}
	return m, nil
}

// SetSize sets the render width. The bar is always one line tall.
func (m Model) SetSize(width int) Model {
	m.width = width
	m.help.Width = width
	return m
}

// SetSnapshot replaces the connectivity view the bar renders.
func (m Model) SetSnapshot(s connectivity.Snapshot) Model {
	m.snapshot = s
	return m
}

// SetWorkingDir sets the derived working directory path.
func (m Model) SetWorkingDir(path string) Model {
	m.workingDir = path
	return m
}

// View renders the status bar line.
func (m Model) View() string {
	if m.width <= 0 {
		return ""
	}

	dividerStyle := lipgloss.NewStyle().Foreground(styles.TextMutedColor)
	divider := dividerStyle.Render(segmentDivider)

	segments := []string{m.healthSegment(), m.transportSegment()}
	if m.workingDir != "" {
		segments = append(segments, m.workingDirSegment())
	}
	left := strings.Join(segments, divider)

	right := m.help.View(m.keys)

	innerWidth := m.width - 2 // StatusBarStyle pads one cell each side
	gap := innerWidth - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		// Key help is the first thing to go on narrow screens
		right = ""
		gap = innerWidth - lipgloss.Width(left)
		if gap < 0 {
			left = styles.TruncateString(left, innerWidth)
			gap = 0
		}
	}

	return styles.StatusBarStyle.Width(m.width).Render(left + strings.Repeat(" ", gap) + right)
}

// healthSegment renders the pull-channel state: a spinner until the
// first probe resolves, then a colored dot with optional uptime.
func (m Model) healthSegment() string {
	mutedStyle := lipgloss.NewStyle().Foreground(styles.TextMutedColor)

	switch m.snapshot.Health {
	case connectivity.HealthOnline:
		seg := lipgloss.NewStyle().Foreground(styles.StatusSuccessColor).Render("● online")
		if m.snapshot.UptimeSeconds != nil {
			seg += mutedStyle.Render(" up " + formatUptime(*m.snapshot.UptimeSeconds))
		}
		return seg
	case connectivity.HealthOffline:
		return lipgloss.NewStyle().Foreground(styles.StatusErrorColor).Render("○ offline")
	default:
		return m.spinner.View() + mutedStyle.Render(" checking")
	}
}

// transportSegment renders the push-channel state.
func (m Model) transportSegment() string {
	if m.snapshot.TransportConnected {
		return lipgloss.NewStyle().Foreground(styles.StatusSuccessColor).Render("● push")
	}
	return lipgloss.NewStyle().Foreground(styles.TextMutedColor).Render("○ push")
}

// workingDirSegment renders the working directory, truncated from the
// right so the leading path segments stay readable.
func (m Model) workingDirSegment() string {
	maxWidth := m.width / 3
	if maxWidth < 8 {
		maxWidth = 8
	}
	path := truncate.StringWithTail(m.workingDir, uint(maxWidth), "…")
	return lipgloss.NewStyle().Foreground(styles.TextMutedColor).Render(path)
}

// formatUptime renders backend-reported uptime seconds compactly.
// Sub-minute precision is dropped once uptime passes an hour.
func formatUptime(seconds float64) string {
	d := time.Duration(seconds * float64(time.Second)).Round(time.Second)
	if d < time.Second {
		return "0s"
	}
	if d >= time.Hour {
		return strings.TrimSuffix(d.Round(time.Minute).String(), "0s")
	}
	return d.String()
}
