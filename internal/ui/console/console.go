// Package console renders the save countdown as plain text lines, for
// terminals without cursor control and for redirected output.
package console

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/GreyHak/satisfactory-save-monitor/internal/app"
	"github.com/GreyHak/satisfactory-save-monitor/internal/display"
	"github.com/GreyHak/satisfactory-save-monitor/internal/runctx"
)

const savingBanner = "******** SAVING ********"

type Printer struct {
	out io.Writer
	loc *time.Location
	now func() time.Time

	lastLink string
	lastLine string
}

func New(out io.Writer) *Printer {
	if out == nil {
		panic("console.New: writer must not be nil")
	}
	return &Printer{out: out, loc: time.Local, now: time.Now}
}

// Run prints one frame per tick until ctx ends.
func (p *Printer) Run(ctx context.Context, frames app.Ticker) error {
	for {
		frame := frames.Tick(p.now())
		if err := p.render(frame); err != nil {
			return err
		}
		if !runctx.SleepOrDone(ctx, frame.NextTick) {
			return nil
		}
	}
}

func (p *Printer) render(f display.Frame) error {
	if link := f.Snapshot.Link; link != p.lastLink {
		p.lastLink = link
		if _, err := fmt.Fprintf(p.out, "[%s] %s\n", f.Now.In(p.loc).Format("15:04:05"), link); err != nil {
			return err
		}
	}
	if f.Fresh && f.Snapshot.HasStatus() {
		if _, err := fmt.Fprintf(p.out, "\n%s\n\n", display.Describe(f, p.loc)); err != nil {
			return err
		}
	}
	if f.Alert {
		if _, err := fmt.Fprintln(p.out, savingBanner); err != nil {
			return err
		}
	}

	line := display.CountdownLine(f)
	// Waiting and overrun lines do not change per tick; print them once.
	if line == p.lastLine && (f.Phase == display.PhaseWaiting || f.Phase == display.PhaseOverrun) {
		return nil
	}
	p.lastLine = line
	_, err := fmt.Fprintln(p.out, line)
	return err
}
