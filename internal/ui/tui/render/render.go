package render

import (
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/GreyHak/satisfactory-save-monitor/internal/ui/tui/theme"
)

// Frame boxes content to width. While highlight is set the border is painted
// with a gradient that shifts with phase.
func Frame(content string, width int, highlight bool, phase int, panelStyle lipgloss.Style) string {
	innerWidth := width - panelStyle.GetHorizontalFrameSize()
	innerWidth = max(innerWidth, 1)
	framed := panelStyle.Width(innerWidth).Render(content)
	if !highlight {
		return framed
	}
	return paintFrameBorders(framed, phase)
}

func paintFrameBorders(framed string, phase int) string {
	lines := strings.Split(framed, "\n")
	out := make([]string, len(lines))
	last := len(lines) - 1
	for y, line := range lines {
		switch {
		case y == 0 || y == last:
			out[y] = paintHorizontalBorder(line, y, phase)
		default:
			out[y] = paintVerticalEdges(line, y, phase)
		}
	}
	return strings.Join(out, "\n")
}

func paintHorizontalBorder(line string, y int, phase int) string {
	var b strings.Builder
	x := 0
	for _, r := range line {
		ch := string(r)
		if isFrameBorderRune(r) {
			ch = paintBorderChar(ch, x, y, phase)
		}
		b.WriteString(ch)
		x++
	}
	return b.String()
}

func paintVerticalEdges(line string, y int, phase int) string {
	if line == "" {
		return line
	}
	leftRune, leftSize := utf8.DecodeRuneInString(line)
	if leftRune != '│' {
		return line
	}
	rightIdx := strings.LastIndex(line, "│")
	if rightIdx <= 0 {
		return line
	}
	rightX := ansi.StringWidth(line[:rightIdx])
	return paintBorderChar("│", 0, y, phase) + line[leftSize:rightIdx] + paintBorderChar("│", rightX, y, phase)
}

func isFrameBorderRune(r rune) bool {
	switch r {
	case '╭', '╮', '╰', '╯', '─', '│':
		return true
	default:
		return false
	}
}

func paintBorderChar(ch string, x int, y int, phase int) string {
	position := float64(x+y)/3.0 - float64(phase)*0.35
	return lipgloss.NewStyle().Foreground(lipgloss.Color(theme.RainbowColorAt(position))).Render(ch)
}

// Line clips a single line to width display cells.
func Line(value string, width int) string {
	if width <= 0 {
		return ""
	}
	return ansi.Truncate(value, width, "…")
}
