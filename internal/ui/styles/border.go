package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// paneBorder is the rounded glyph set shared by every framed pane, matching
// the overlay boxes.
var paneBorder = lipgloss.RoundedBorder()

// RenderWithTitleBorder frames content in a rounded border with the title
// woven into the top edge, lazygit style: ╭─ Title ─────╮. Focus swaps the
// frame color for focusedBorderColor; the title always renders in titleColor.
func RenderWithTitleBorder(content, title string, width, height int, focused bool, titleColor, focusedBorderColor lipgloss.TerminalColor) string {
	var borderColor lipgloss.TerminalColor = BorderDefaultColor
	if focused {
		borderColor = focusedBorderColor
	}

	borderStyle := lipgloss.NewStyle().Foreground(borderColor)
	titleStyle := lipgloss.NewStyle().Foreground(titleColor)

	// Two columns and two rows belong to the frame itself.
	innerWidth := max(width-2, 1)
	contentHeight := max(height-2, 1)

	// Width wraps overlong lines and Height pads missing ones, so the body
	// splits into at least contentHeight rows of at most innerWidth cells.
	// Rows past contentHeight are clipped.
	body := lipgloss.NewStyle().Width(innerWidth).Height(contentHeight).Render(content)
	bodyRows := strings.Split(body, "\n")

	left := borderStyle.Render(paneBorder.Left)
	right := borderStyle.Render(paneBorder.Right)

	lines := make([]string, 0, contentHeight+2)
	lines = append(lines, buildTopBorder(title, innerWidth, borderStyle, titleStyle))
	for i := 0; i < contentHeight; i++ {
		var row string
		if i < len(bodyRows) {
			row = bodyRows[i]
		}
		// Pad to innerWidth so the right edge stays aligned.
		if gap := innerWidth - lipgloss.Width(row); gap > 0 {
			row += strings.Repeat(" ", gap)
		}
		lines = append(lines, left+row+right)
	}
	lines = append(lines, borderStyle.Render(paneBorder.BottomLeft+strings.Repeat(paneBorder.Bottom, innerWidth)+paneBorder.BottomRight))

	return strings.Join(lines, "\n")
}

// buildTopBorder renders the top edge. A title that has at least one cell of
// room sits after the corner as ╭─ Title ──╮; untitled or too narrow edges
// stay plain.
func buildTopBorder(title string, innerWidth int, borderStyle, titleStyle lipgloss.Style) string {
	if innerWidth < 1 {
		return borderStyle.Render(paneBorder.TopLeft + paneBorder.TopRight)
	}

	// The decoration around the title ("─ " and " ─") costs four cells.
	room := innerWidth - 4
	if title == "" || room < 1 {
		return borderStyle.Render(paneBorder.TopLeft + strings.Repeat(paneBorder.Top, innerWidth) + paneBorder.TopRight)
	}

	text := TruncateString(title, room)
	tail := max(innerWidth-3-lipgloss.Width(text), 0)

	return borderStyle.Render(paneBorder.TopLeft+paneBorder.Top+" ") +
		titleStyle.Render(text) +
		borderStyle.Render(" "+strings.Repeat(paneBorder.Top, tail)+paneBorder.TopRight)
}
