package formatter

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	filledBlock = "█"
	emptyBlock  = " "
)

// RenderBar draws the span [x0, x1] of a plotting area totalWidth pixels wide
// as a fixed-width character bar. Non-empty spans always fill at least one cell.
func RenderBar(x0, x1, totalWidth float64, cells int, hex string) string {
	if cells < 1 {
		cells = 1
	}
	if totalWidth <= 0 || math.IsNaN(x0) || math.IsNaN(x1) {
		return strings.Repeat(emptyBlock, cells)
	}

	start := int(math.Floor(x0 / totalWidth * float64(cells)))
	end := int(math.Ceil(x1 / totalWidth * float64(cells)))
	start = clampInt(start, 0, cells-1)
	end = clampInt(end, start+1, cells)

	bar := lipgloss.NewStyle().Foreground(lipgloss.Color(hex)).Render(strings.Repeat(filledBlock, end-start))
	return strings.Repeat(emptyBlock, start) + bar + strings.Repeat(emptyBlock, cells-end)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
