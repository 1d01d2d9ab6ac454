package toaster

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	m := New()

	assert.False(t, m.Visible())
	assert.Empty(t, m.View())
}

func TestShow(t *testing.T) {
	m := New().Show("Refreshing projects", StyleInfo)

	assert.True(t, m.Visible())
	assert.Contains(t, m.View(), "Refreshing projects")
}

func TestHide(t *testing.T) {
	m := New().Show("Refreshing projects", StyleInfo).Hide()

	assert.False(t, m.Visible())
	assert.Empty(t, m.View())
}

func TestShow_ReplacesExisting(t *testing.T) {
	m := New().
		Show("Refreshing projects", StyleInfo).
		Show("Couldn't load projects", StyleWarn)

	assert.True(t, m.Visible())
	assert.Contains(t, m.View(), "Couldn't load projects")
	assert.NotContains(t, m.View(), "Refreshing")
}

func TestView_IconPerStyle(t *testing.T) {
	tests := []struct {
		name    string
		style   Style
		message string
		icon    string
	}{
		{"success", StyleSuccess, "Connected", "✅"},
		{"error", StyleError, "Store unavailable", "❌"},
		{"info", StyleInfo, "Refreshing projects", "ℹ️"},
		{"warn", StyleWarn, "Sidebar state won't survive a restart", "⚠️"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view := New().Show(tt.message, tt.style).View()

			assert.Contains(t, view, tt.icon)
			assert.Contains(t, view, tt.message)
			assert.Contains(t, view, "╭", "toast should carry a rounded border")
		})
	}
}

func TestView_EmptyWhenMessageEmpty(t *testing.T) {
	m := Model{visible: true, message: ""}

	assert.Empty(t, m.View())
}

func TestView_TruncatesToViewport(t *testing.T) {
	long := "Selection state could not be persisted to the local store"
	m := New().SetSize(30, 10).Show(long, StyleWarn)

	view := m.View()
	assert.Contains(t, view, "...")
	for i, line := range strings.Split(view, "\n") {
		w := lipgloss.Width(line)
		assert.LessOrEqual(t, w, 30, "line %d overflows the viewport: %q", i, line)
	}
}

func TestView_NoSizeSkipsTruncation(t *testing.T) {
	long := "Selection state could not be persisted to the local store"
	m := New().Show(long, StyleWarn)

	assert.Contains(t, m.View(), long)
}

func TestNotify(t *testing.T) {
	cmd := Notify("Couldn't load projects", StyleWarn)
	require.NotNil(t, cmd)

	msg, ok := cmd().(ShowMsg)
	require.True(t, ok)
	assert.Equal(t, "Couldn't load projects", msg.Message)
	assert.Equal(t, StyleWarn, msg.Style)
}

func TestLifetime(t *testing.T) {
	assert.Equal(t, 3*time.Second, StyleSuccess.Lifetime())
	assert.Equal(t, 3*time.Second, StyleInfo.Lifetime())
	assert.Equal(t, 5*time.Second, StyleWarn.Lifetime())
	assert.Equal(t, 5*time.Second, StyleError.Lifetime())
}

func TestOverlay_NotVisibleReturnsBackground(t *testing.T) {
	m := New().SetSize(20, 10)
	bg := "Background\nContent"

	assert.Equal(t, bg, m.Overlay(bg))
}

func TestOverlay_EmptyMessageReturnsBackground(t *testing.T) {
	m := Model{visible: true, message: "", width: 20, height: 10}

	assert.Equal(t, "Background", m.Overlay("Background"))
}

func TestOverlay_PlacesNearBottom(t *testing.T) {
	m := New().SetSize(20, 10).Show("Saved", StyleSuccess)
	bg := strings.TrimSuffix(strings.Repeat(strings.Repeat(".", 20)+"\n", 10), "\n")

	lines := strings.Split(m.Overlay(bg), "\n")
	require.GreaterOrEqual(t, len(lines), 5)

	var found bool
	for _, line := range lines[len(lines)-5:] {
		if strings.Contains(line, "Saved") {
			found = true
			break
		}
	}
	assert.True(t, found, "toast should sit near the bottom edge")
}

func TestScheduleDismiss(t *testing.T) {
	assert.NotNil(t, ScheduleDismiss(StyleInfo.Lifetime()))
}

func TestValueSemantics(t *testing.T) {
	m1 := New()
	m2 := m1.Show("Connected", StyleSuccess)
	m3 := m2.Hide()

	assert.False(t, m1.Visible())
	assert.True(t, m2.Visible())
	assert.False(t, m3.Visible())
}
