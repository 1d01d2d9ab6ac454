package content

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rcastell/wheelhouse/internal/selection"
)

func TestView_EmptyWithoutSize(t *testing.T) {
	m := New()

	require.Empty(t, m.View())
}

func TestView_WelcomeWhenNothingSelected(t *testing.T) {
	m := New().SetSize(80, 24)

	view := m.View()

	require.Contains(t, view, "Home")
	require.Contains(t, view, "wheelhouse")
}

func TestView_ProjectOverview(t *testing.T) {
	m := New().
		SetSize(80, 24).
		SetTarget(selection.Project("p1"), "acme")

	view := m.View()

	require.Contains(t, view, "Overview")
	require.Contains(t, view, "acme")
}

func TestView_ChangeShowsID(t *testing.T) {
	m := New().
		SetSize(80, 24).
		SetTarget(selection.Change("p1", "chg-42"), "acme")

	view := m.View()

	require.Contains(t, view, "Change")
	require.Contains(t, view, "chg-42")
}

func TestView_NotFoundForUnknownProject(t *testing.T) {
	m := New().
		SetSize(80, 24).
		SetTarget(selection.Backlog("ghost"), "")

	view := m.View()

	require.Contains(t, view, "Not found")
	require.Contains(t, view, "no longer in the directory")
}

func TestView_GlobalSettingsNeedsNoProject(t *testing.T) {
	m := New().
		SetSize(80, 24).
		SetTarget(selection.Settings(), "")

	view := m.View()

	require.Contains(t, view, "Settings")
	require.NotContains(t, view, "Not found")
}

// Every navigation kind must have a titled surface. A failure here
// means a kind was added without extending the pane.
func TestPaneTitle_CoversEveryKind(t *testing.T) {
	for _, kind := range selection.Kinds() {
		require.NotEmpty(t, paneTitle(kind), "no pane title for kind %q", kind)
	}
}

func TestPaneBody_CoversEveryProjectKind(t *testing.T) {
	for _, kind := range selection.Kinds() {
		if kind == selection.KindNone {
			continue
		}
		m := New().SetTarget(selection.Item{Kind: kind, ProjectID: "p1", ChangeID: "c1"}, "acme")
		require.NotEmpty(t, m.paneBody(), "no pane body for kind %q", kind)
	}
}
