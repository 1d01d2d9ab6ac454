// Package commandpalette provides the searchable quick-select overlay
// behind the search and docs palettes: type to filter, enter to jump.
package commandpalette

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/rcastell/wheelhouse/internal/ui/overlay"
	"github.com/rcastell/wheelhouse/internal/ui/styles"
)

const (
	defaultMaxWidth = 80
	defaultVisible  = 5
	linesPerEntry   = 3 // spacer, name, description
	chromeLines     = 8 // border, title and search rows, their dividers
)

// Item is one jump target offered by the palette.
type Item struct {
	ID          string                 // Opaque identifier handed back on select
	Name        string                 // First line; matched runes are highlighted
	Description string                 // Second line, muted; searched as a fallback
	Color       lipgloss.TerminalColor // Optional name tint
}

// Config wires one palette instance.
type Config struct {
	Title           string             // Header line; empty hides the header
	Placeholder     string             // Search input placeholder
	Items           []Item             // Jump targets in preferred order
	OnSelect        func(Item) tea.Msg // Overrides SelectMsg when set
	OnCancel        func() tea.Msg     // Overrides CancelMsg when set
	MaxWidth        int                // Box width (default 80)
	MaxVisibleItems int                // Entry slots before scrolling (default 5)
}

// SelectMsg reports the chosen item when no OnSelect hook is configured.
type SelectMsg struct {
	Item Item
}

// CancelMsg reports dismissal when no OnCancel hook is configured.
type CancelMsg struct{}

// match pairs an item with the rune positions the query hit in its name.
// Description-only matches carry no positions and rank after name hits.
type match struct {
	Item
	nameRunes []int
}

// Model holds the palette state.
type Model struct {
	config         Config
	textInput      textinput.Model
	filtered       []match
	cursor         int
	scrollOffset   int
	viewportWidth  int
	viewportHeight int
}

// New builds a palette offering every configured item.
func New(cfg Config) Model {
	ti := textinput.New()
	ti.Placeholder = cfg.Placeholder
	if ti.Placeholder == "" {
		ti.Placeholder = "Search..."
	}
	ti.Prompt = ""
	ti.Focus()

	m := Model{config: cfg, textInput: ti}
	return m.updateFilter()
}

// Init starts the search cursor blinking.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles palette input. Keys the palette does not own are typed
// into the search field, so plain letters never navigate.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyDown, tea.KeyCtrlN:
			return m.moveCursor(1), nil

		case tea.KeyUp, tea.KeyCtrlP:
			return m.moveCursor(-1), nil

		case tea.KeyEnter:
			return m, m.selectCmd()

		case tea.KeyEsc:
			return m, m.cancelCmd()

		case tea.KeyCtrlU:
			m.textInput.SetValue("")
			return m.updateFilter(), nil

		default:
			var cmd tea.Cmd
			m.textInput, cmd = m.textInput.Update(msg)
			return m.updateFilter(), cmd
		}

	case tea.MouseMsg:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			return m.scrollBy(-1), nil
		case tea.MouseButtonWheelDown:
			return m.scrollBy(1), nil
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.viewportWidth = msg.Width
		m.viewportHeight = msg.Height
	}

	return m, nil
}

// moveCursor shifts the cursor within the filtered list and keeps the
// cursor row on screen.
func (m Model) moveCursor(delta int) Model {
	next := m.cursor + delta
	if next < 0 || next >= len(m.filtered) {
		return m
	}
	m.cursor = next

	maxVisible := m.maxVisibleItems()
	if m.cursor >= m.scrollOffset+maxVisible {
		m.scrollOffset = m.cursor - maxVisible + 1
	}
	if m.cursor < m.scrollOffset {
		m.scrollOffset = m.cursor
	}
	return m
}

// scrollBy moves the visible window without touching the cursor.
func (m Model) scrollBy(delta int) Model {
	maxOffset := max(0, len(m.filtered)-m.maxVisibleItems())
	m.scrollOffset = min(max(m.scrollOffset+delta, 0), maxOffset)
	return m
}

// names adapts the item list to fuzzy.Source for the primary pass.
type names []Item

func (n names) String(i int) string { return n[i].Name }
func (n names) Len() int            { return len(n) }

// descriptions adapts the item list for the fallback pass.
type descriptions []Item

func (d descriptions) String(i int) string { return d[i].Description }
func (d descriptions) Len() int            { return len(d) }

// updateFilter recomputes the visible list for the current query.
// An empty query keeps the configured order. Otherwise items are ranked
// fuzzy matches on the name, followed by items whose description matched,
// so a project always beats a path fragment.
func (m Model) updateFilter() Model {
	query := strings.TrimSpace(m.textInput.Value())

	if query == "" {
		m.filtered = make([]match, len(m.config.Items))
		for i, item := range m.config.Items {
			m.filtered[i] = match{Item: item}
		}
	} else {
		items := m.config.Items
		var out []match
		hitNames := make(map[int]struct{})
		for _, hit := range fuzzy.FindFrom(query, names(items)) {
			hitNames[hit.Index] = struct{}{}
			out = append(out, match{Item: items[hit.Index], nameRunes: hit.MatchedIndexes})
		}
		for _, hit := range fuzzy.FindFrom(query, descriptions(items)) {
			if _, ok := hitNames[hit.Index]; ok {
				continue
			}
			out = append(out, match{Item: items[hit.Index]})
		}
		m.filtered = out
	}

	if m.cursor >= len(m.filtered) {
		m.cursor = 0
		m.scrollOffset = 0
	}
	return m
}

// maxVisibleItems returns how many entry slots the box renders. The
// configured count only shrinks when the viewport cannot fit it.
func (m Model) maxVisibleItems() int {
	target := m.config.MaxVisibleItems
	if target <= 0 {
		target = defaultVisible
	}
	if m.viewportHeight > 0 {
		fit := max((m.viewportHeight-chromeLines)/linesPerEntry, 2)
		if fit < target {
			return fit
		}
	}
	return target
}

// selectCmd wraps the configured select hook, or falls back to SelectMsg.
func (m Model) selectCmd() tea.Cmd {
	if len(m.filtered) == 0 {
		return nil
	}
	chosen := m.filtered[m.cursor].Item
	if m.config.OnSelect != nil {
		return func() tea.Msg { return m.config.OnSelect(chosen) }
	}
	return func() tea.Msg { return SelectMsg{Item: chosen} }
}

// cancelCmd wraps the configured cancel hook, or falls back to CancelMsg.
func (m Model) cancelCmd() tea.Cmd {
	if m.config.OnCancel != nil {
		return func() tea.Msg { return m.config.OnCancel() }
	}
	return func() tea.Msg { return CancelMsg{} }
}

// SetSize records the viewport so Overlay can center the box.
func (m Model) SetSize(width, height int) Model {
	m.viewportWidth = width
	m.viewportHeight = height
	return m
}

// SetItems replaces the jump targets, refiltering against the live query.
func (m Model) SetItems(items []Item) Model {
	m.config.Items = items
	return m.updateFilter()
}

// Selected returns the item under the cursor.
func (m Model) Selected() (Item, bool) {
	if m.cursor >= 0 && m.cursor < len(m.filtered) {
		return m.filtered[m.cursor].Item, true
	}
	return Item{}, false
}

// Cursor returns the cursor position within the filtered list.
func (m Model) Cursor() int {
	return m.cursor
}

// FilteredItems returns the items currently shown, in display order.
func (m Model) FilteredItems() []Item {
	items := make([]Item, len(m.filtered))
	for i, f := range m.filtered {
		items[i] = f.Item
	}
	return items
}

// SearchText returns the live query.
func (m Model) SearchText() string {
	return m.textInput.Value()
}

// View renders the palette box at its configured width.
func (m Model) View() string {
	width := m.config.MaxWidth
	if width == 0 {
		width = defaultMaxWidth
	}

	divider := lipgloss.NewStyle().
		Foreground(styles.OverlayBorderColor).
		Render(strings.Repeat("─", width))

	rows := make([]string, 0, chromeLines+m.maxVisibleItems()*linesPerEntry)
	if m.config.Title != "" {
		rows = append(rows, m.headerRow(width), divider)
	}
	rows = append(rows, m.searchRow(width), divider)
	rows = append(rows, m.entryRows(width)...)

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.OverlayBorderColor).
		Width(width).
		Render(strings.Join(rows, "\n"))
}

// headerRow lays the title left and the key hints right.
func (m Model) headerRow(width int) string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(styles.OverlayTitleColor).
		PaddingLeft(1).
		Render(m.config.Title)
	hints := lipgloss.NewStyle().
		Foreground(styles.TextMutedColor).
		Render("↑/↓ • Enter • Esc")
	gap := max(width-lipgloss.Width(title)-lipgloss.Width(hints)-1, 1)
	return title + strings.Repeat(" ", gap) + hints
}

// searchRow renders the prompt and the live query.
func (m Model) searchRow(width int) string {
	prompt := lipgloss.NewStyle().Foreground(styles.TextMutedColor).Render(" > ")
	m.textInput.Width = width - 4
	return prompt + m.textInput.View()
}

// entryRows renders a fixed number of entry slots so the box height never
// jumps while typing, plus a trailing indicator when rows exist below the
// window.
func (m Model) entryRows(width int) []string {
	maxVisible := m.maxVisibleItems()
	rows := make([]string, 0, maxVisible*linesPerEntry+1)

	if len(m.filtered) == 0 {
		noMatch := lipgloss.NewStyle().
			Foreground(styles.TextMutedColor).
			Italic(true).
			PaddingLeft(1).
			Render("No matching items")
		rows = append(rows, "", noMatch, "")
		for i := 1; i < maxVisible; i++ {
			rows = append(rows, "", "", "")
		}
		return rows
	}

	end := min(m.scrollOffset+maxVisible, len(m.filtered))
	for i := m.scrollOffset; i < end; i++ {
		name, desc := m.entryLines(m.filtered[i], i == m.cursor, width)
		rows = append(rows, "", name, desc)
	}
	for i := end - m.scrollOffset; i < maxVisible; i++ {
		rows = append(rows, "", "", "")
	}

	if end < len(m.filtered) {
		more := lipgloss.NewStyle().Foreground(styles.TextMutedColor).Render("↓ more")
		gap := max((width-lipgloss.Width(more))/2, 0)
		rows = append(rows, strings.Repeat(" ", gap)+more)
	}
	return rows
}

// entryLines renders one entry: the name with matched runes underlined in
// the accent color, and the muted description beneath it. Both stay on a
// single line so the slot height holds.
func (m Model) entryLines(entry match, selected bool, width int) (string, string) {
	base := lipgloss.NewStyle()
	if entry.Color != nil {
		base = base.Foreground(entry.Color)
	}
	if selected {
		base = base.Bold(true)
	}
	hit := base.Foreground(styles.AccentColor).Underline(true)

	name := styles.TruncateString(entry.Name, width-2)
	line := lipgloss.StyleRunes(name, entry.nameRunes, hit, base)

	marker := " "
	if selected {
		marker = styles.SelectionIndicatorStyle.Render(">")
	}

	var desc string
	if entry.Description != "" {
		desc = "  " + lipgloss.NewStyle().
			Foreground(styles.TextMutedColor).
			Render(styles.TruncateString(entry.Description, width-4))
	}
	return marker + line, desc
}

// Overlay centers the palette over the shell view.
func (m Model) Overlay(background string) string {
	box := m.View()

	if background == "" {
		return lipgloss.Place(
			m.viewportWidth, m.viewportHeight,
			lipgloss.Center, lipgloss.Center,
			box,
		)
	}

	return overlay.Place(overlay.Config{
		Width:    m.viewportWidth,
		Height:   m.viewportHeight,
		Position: overlay.Center,
	}, box, background)
}
