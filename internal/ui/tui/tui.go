// Package tui renders the save countdown as a full-screen terminal view.
package tui

import (
	"context"
	"errors"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/GreyHak/satisfactory-save-monitor/internal/app"
	"github.com/GreyHak/satisfactory-save-monitor/internal/logging"
)

const logChannelBufferSize = 64

type Options struct {
	Address string
	// Input and Output default to the process terminal.
	Input  io.Reader
	Output io.Writer
}

type Renderer struct {
	opts   Options
	logger *logging.Logger
}

func New(opts Options, logger *logging.Logger) *Renderer {
	if logger == nil {
		panic("tui.New: logger must not be nil")
	}
	return &Renderer{opts: opts, logger: logger}
}

// Run shows the countdown until the user quits or ctx ends.
func (r *Renderer) Run(ctx context.Context, frames app.Ticker) error {
	m := newModel(frames, r.opts.Address)
	unsubscribe := r.logger.Subscribe(func(event logging.Event) {
		line := logging.FormatEventLine(event)
		select {
		case m.logCh <- line:
		default:
			select {
			case <-m.logCh:
			default:
			}
			select {
			case m.logCh <- line:
			default:
			}
		}
	})
	defer unsubscribe()

	programOpts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}
	if r.opts.Input != nil {
		programOpts = append(programOpts, tea.WithInput(r.opts.Input))
	}
	if r.opts.Output != nil {
		programOpts = append(programOpts, tea.WithOutput(r.opts.Output))
	}

	r.logger.Debug("starting countdown screen", logging.Field("address", r.opts.Address))
	_, err := tea.NewProgram(m, programOpts...).Run()
	if err != nil && errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
