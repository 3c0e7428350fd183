package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/GreyHak/satisfactory-save-monitor/internal/display"
	"github.com/GreyHak/satisfactory-save-monitor/internal/runstatus"
	"github.com/GreyHak/satisfactory-save-monitor/internal/ui/tui/render"
	"github.com/GreyHak/satisfactory-save-monitor/internal/ui/tui/theme"
)

const targetLayout = "15:04:05"

func (m *model) View() string {
	width := m.contentWidth()
	f := m.frame

	header := lipgloss.JoinHorizontal(lipgloss.Center,
		theme.TitleStyle.Render("Satisfactory save monitor"),
		" ",
		theme.MutedStyle.Render(m.address),
		" ",
		linkBadge(f.Snapshot.Link),
	)

	lines := []string{
		render.Line(header, width),
		"",
		m.headline(),
		m.progress.ViewAs(f.Progress),
		render.Line(theme.MutedStyle.Render(m.targets()), width),
	}
	if m.details {
		lines = append(lines, "", lipgloss.NewStyle().Width(width).Render(display.Describe(f, nil)))
	}
	if m.lastLog != "" {
		lines = append(lines, "", render.Line(theme.MutedStyle.Render(m.lastLog), width))
	}
	lines = append(lines, "", theme.HelpStyle.Render(m.help.View(m.keys)))

	return render.Frame(strings.Join(lines, "\n"), m.width, f.IsSaving(), m.anim, theme.PanelStyle)
}

func (m *model) headline() string {
	f := m.frame
	switch f.Phase {
	case display.PhaseCountdown:
		return theme.CountdownStyle.Render("Next save in " + display.Clock(f.Remaining))
	case display.PhaseSaving:
		label := "SAVING"
		if f.Speculative {
			label = "SAVING (expected)"
		}
		return theme.SavingStyle.Render(label) + " " + display.Clock(f.Remaining) + " left"
	case display.PhaseOverrun:
		return theme.OverrunStyle.Render("SAVE RUNNING LONG")
	default:
		return m.spinner.View() + " " + theme.WaitingStyle.Render(display.CountdownLine(f))
	}
}

func (m *model) targets() string {
	f := m.frame
	if !f.Snapshot.HasStatus() {
		return "No prediction received yet"
	}
	return fmt.Sprintf("Next save %s  ends %s  interval %ss",
		f.NextSaveStart.Local().Format(targetLayout),
		f.SaveEnd.Local().Format(targetLayout),
		formatSeconds(f.Snapshot.Status.AutosaveIntervalSeconds),
	)
}

func linkBadge(status string) string {
	if status == "" {
		status = runstatus.Connecting
	}
	switch {
	case runstatus.IsLive(status):
		return theme.LinkLiveStyle.Render(status)
	case runstatus.Key(status) == runstatus.KeyDisconnected:
		return theme.LinkDownStyle.Render(status)
	default:
		return theme.LinkPendingStyle.Render(status)
	}
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
