// Package overlay composites modal content over an already rendered
// background without clearing the screen. The shell uses it for the
// palettes and the log viewer (centered) and for toasts (bottom).
package overlay

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Position specifies where to place the overlay content.
type Position int

const (
	// Center places the overlay in the middle of the viewport.
	Center Position = iota
	// Bottom places the overlay bottom-centered, PadY rows above the
	// bottom edge.
	Bottom
)

// Config controls overlay rendering behavior.
type Config struct {
	// Width and Height are the full viewport dimensions.
	Width  int
	Height int
	// Position selects the placement strategy.
	Position Position
	// PadY lifts a Bottom overlay off the bottom edge. Center ignores it.
	PadY int
}

// Place renders foreground content on top of background.
// Uses ANSI-aware string manipulation to preserve styling in both
// the foreground and background content.
func Place(cfg Config, fg, bg string) string {
	fgLines := strings.Split(fg, "\n")
	bgLines := strings.Split(bg, "\n")

	// Pad background to full height
	for len(bgLines) < cfg.Height {
		bgLines = append(bgLines, strings.Repeat(" ", cfg.Width))
	}

	fgHeight := len(fgLines)
	fgWidth := lipgloss.Width(fg)

	startX, startY := calculatePosition(cfg, fgWidth, fgHeight)

	for i, fgLine := range fgLines {
		bgY := startY + i
		if bgY >= len(bgLines) {
			break
		}
		bgLines[bgY] = spliceLine(bgLines[bgY], fgLine, startX)
	}

	return strings.Join(bgLines, "\n")
}

// spliceLine overlays fgLine onto bgLine starting at column startX,
// keeping the background visible on both sides. Truncation is
// ANSI-aware so styled backgrounds survive the cut.
func spliceLine(bgLine, fgLine string, startX int) string {
	leftPart := ansi.Truncate(bgLine, startX, "")

	// Pad left part if background is shorter than startX
	leftWidth := ansi.StringWidth(leftPart)
	if leftWidth < startX {
		leftPart += strings.Repeat(" ", startX-leftWidth)
	}

	// Keep whatever background extends past the overlay
	endX := startX + ansi.StringWidth(fgLine)
	var rightPart string
	if endX < ansi.StringWidth(bgLine) {
		rightPart = ansi.TruncateLeft(bgLine, endX, "")
	}

	return leftPart + fgLine + rightPart
}

// calculatePosition resolves the top-left cell for the overlay. An
// oversized foreground clamps to the origin instead of going negative.
func calculatePosition(cfg Config, fgWidth, fgHeight int) (x, y int) {
	x = (cfg.Width - fgWidth) / 2
	if cfg.Position == Bottom {
		y = cfg.Height - fgHeight - cfg.PadY
	} else {
		y = (cfg.Height - fgHeight) / 2
	}

	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	return x, y
}
