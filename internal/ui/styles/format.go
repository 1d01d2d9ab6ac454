package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ellipsis marks cut text. Targets of 3 cells or fewer get dots only.
const ellipsis = "..."

// TruncateString fits s into maxWidth terminal cells, ending in "..." when
// anything was cut. Widths are display cells, so CJK runes count as two.
func TruncateString(s string, maxWidth int) string {
	switch {
	case maxWidth < 1:
		return ""
	case lipgloss.Width(s) <= maxWidth:
		return s
	case maxWidth <= len(ellipsis):
		return ellipsis[:maxWidth]
	}

	var b strings.Builder
	budget := maxWidth - len(ellipsis)
	for _, r := range s {
		w := lipgloss.Width(string(r))
		if w > budget {
			break
		}
		budget -= w
		b.WriteRune(r)
	}
	b.WriteString(ellipsis)

	return b.String()
}
