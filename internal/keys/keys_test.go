package keys

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultKeyMap_GlobalCombos(t *testing.T) {
	km := DefaultKeyMap()

	cases := []struct {
		name    string
		msg     tea.KeyMsg
		binding key.Binding
	}{
		{"search palette", tea.KeyMsg{Type: tea.KeyCtrlK}, km.SearchPalette},
		{"toggle sidebar", tea.KeyMsg{Type: tea.KeyCtrlB}, km.ToggleSidebar},
		{"toggle chat", tea.KeyMsg{Type: tea.KeyCtrlT}, km.ToggleChat},
		{"docs palette", tea.KeyMsg{Type: tea.KeyCtrlD}, km.DocsPalette},
		{"log overlay", tea.KeyMsg{Type: tea.KeyCtrlX}, km.LogOverlay},
		{"quit", tea.KeyMsg{Type: tea.KeyCtrlC}, km.Quit},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.True(t, key.Matches(tc.msg, tc.binding),
				"%s should match %v", tc.name, tc.msg)
		})
	}
}

func TestDefaultKeyMap_Refresh(t *testing.T) {
	km := DefaultKeyMap()

	msg := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}}
	assert.True(t, key.Matches(msg, km.Refresh))
}

func TestDefaultKeyMap_NavigationAcceptsVimAndArrows(t *testing.T) {
	km := DefaultKeyMap()

	assert.True(t, key.Matches(tea.KeyMsg{Type: tea.KeyUp}, km.Up))
	assert.True(t, key.Matches(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}}, km.Up))
	assert.True(t, key.Matches(tea.KeyMsg{Type: tea.KeyDown}, km.Down))
	assert.True(t, key.Matches(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}}, km.Down))
}

// TestDefaultKeyMap_CombosDoNotOverlap verifies that at most one global combo
// can fire for any key event.
func TestDefaultKeyMap_CombosDoNotOverlap(t *testing.T) {
	km := DefaultKeyMap()
	combos := []key.Binding{
		km.SearchPalette, km.ToggleSidebar, km.ToggleChat, km.DocsPalette, km.LogOverlay, km.Quit,
	}

	seen := make(map[string]bool)
	for _, b := range combos {
		for _, k := range b.Keys() {
			require.False(t, seen[k], "key %q is bound twice", k)
			seen[k] = true
		}
	}
}

func TestDefaultKeyMap_HelpTextDefined(t *testing.T) {
	km := DefaultKeyMap()
	bindings := []struct {
		name    string
		binding key.Binding
	}{
		{"SearchPalette", km.SearchPalette},
		{"ToggleSidebar", km.ToggleSidebar},
		{"ToggleChat", km.ToggleChat},
		{"DocsPalette", km.DocsPalette},
		{"LogOverlay", km.LogOverlay},
		{"Refresh", km.Refresh},
		{"Escape", km.Escape},
		{"Quit", km.Quit},
	}

	for _, b := range bindings {
		t.Run(b.name, func(t *testing.T) {
			help := b.binding.Help()
			require.NotEmpty(t, help.Key, "key help should not be empty")
			require.NotEmpty(t, help.Desc, "description help should not be empty")
		})
	}
}

func TestKeyMap_ShortHelp(t *testing.T) {
	km := DefaultKeyMap()

	short := km.ShortHelp()
	require.NotEmpty(t, short)
	assert.Contains(t, short, km.SearchPalette)
	assert.Contains(t, short, km.Quit)
}

func TestKeyMap_FullHelp(t *testing.T) {
	km := DefaultKeyMap()

	full := km.FullHelp()
	require.Len(t, full, 3)

	// First row: navigation
	assert.Contains(t, full[0], km.Up)
	assert.Contains(t, full[0], km.Down)

	// Second row: overlays and panels
	assert.Contains(t, full[1], km.SearchPalette)
	assert.Contains(t, full[1], km.DocsPalette)

	// Third row: general
	assert.Contains(t, full[2], km.Quit)
}
