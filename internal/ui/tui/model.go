package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/GreyHak/satisfactory-save-monitor/internal/app"
	"github.com/GreyHak/satisfactory-save-monitor/internal/display"
	"github.com/GreyHak/satisfactory-save-monitor/internal/ui/tui/keyboard"
)

const (
	defaultWidth = 72
	minWidth     = 32
)

type tickMsg time.Time
type logMsg string

type model struct {
	frames  app.Ticker
	address string
	logCh   chan string

	keys     keyboard.Map
	help     help.Model
	spinner  spinner.Model
	progress progress.Model

	frame   display.Frame
	lastLog string
	details bool
	anim    int
	width   int
}

func newModel(frames app.Ticker, address string) *model {
	m := &model{
		frames:   frames,
		address:  address,
		logCh:    make(chan string, logChannelBufferSize),
		keys:     keyboard.New(),
		help:     help.New(),
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
		progress: progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
	}
	m.resize(defaultWidth)
	return m
}

func (m *model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		func() tea.Msg { return tickMsg(time.Now()) },
		waitForLog(m.logCh),
	)
}

func waitForLog(ch <-chan string) tea.Cmd {
	return func() tea.Msg {
		line, ok := <-ch
		if !ok {
			return nil
		}
		return logMsg(line)
	}
}

func scheduleTick(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width)
		return m, nil
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.details = !m.details
		}
		return m, nil
	case tickMsg:
		m.frame = m.frames.Tick(time.Time(msg))
		m.anim++
		return m, scheduleTick(m.frame.NextTick)
	case logMsg:
		m.lastLog = string(msg)
		return m, waitForLog(m.logCh)
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *model) resize(width int) {
	m.width = max(width, minWidth)
	m.help.Width = m.width
	m.progress.Width = m.contentWidth()
}

// contentWidth is the room left inside the panel border and padding.
func (m *model) contentWidth() int {
	return max(m.width-6, 1)
}
