package theme

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	PanelStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("69"))
	MutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	HelpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

	CountdownStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	SavingStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("214")).Padding(0, 1)
	OverrunStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("160")).Padding(0, 1)
	WaitingStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("245"))

	LinkBaseStyle    = lipgloss.NewStyle().Padding(0, 1)
	LinkLiveStyle    = LinkBaseStyle.Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("10"))
	LinkPendingStyle = LinkBaseStyle.Foreground(lipgloss.Color("0")).Background(lipgloss.Color("214"))
	LinkDownStyle    = LinkBaseStyle.Foreground(lipgloss.Color("245")).Background(lipgloss.Color("236"))
)

// Saving borders cycle through these stops.
var rainbowStops = []string{
	"#ff8f1f", "#ffe44d", "#ffb000", "#ff6a00", "#ffd27a",
}

func RainbowColorAt(position float64) string {
	n := float64(len(rainbowStops))
	if n == 0 {
		return "#ffffff"
	}
	wrapped := math.Mod(position, n)
	if wrapped < 0 {
		wrapped += n
	}
	i0 := int(math.Floor(wrapped))
	i1 := (i0 + 1) % len(rainbowStops)
	t := wrapped - float64(i0)
	return interpolateHex(rainbowStops[i0], rainbowStops[i1], t)
}

func interpolateHex(a string, b string, t float64) string {
	ar, ag, ab := parseHexRGB(a)
	br, bg, bb := parseHexRGB(b)
	lerp := func(x int, y int) int {
		return int(float64(x) + (float64(y)-float64(x))*t)
	}
	return fmt.Sprintf("#%02x%02x%02x", lerp(ar, br), lerp(ag, bg), lerp(ab, bb))
}

func parseHexRGB(s string) (int, int, int) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return 255, 255, 255
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 255, 255, 255
	}
	return int((v >> 16) & 0xff), int((v >> 8) & 0xff), int(v & 0xff)
}
