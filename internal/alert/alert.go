package alert

import (
	"io"
	"sync"
	"time"
)

const (
	DefaultFrequency = 2500
	DefaultDuration  = 200 * time.Millisecond
)

// Alerter sounds the cue that a save is starting.
type Alerter interface {
	Alert() error
}

type Nop struct{}

func (Nop) Alert() error { return nil }

// Bell writes the terminal BEL character.
type Bell struct {
	mu sync.Mutex
	W  io.Writer
}

func (b *Bell) Alert() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, err := b.W.Write([]byte{'\a'})
	return err
}

type Options struct {
	Disabled  bool
	Frequency uint32
	Duration  time.Duration
	// Fallback receives the terminal bell when no tone device is available.
	Fallback io.Writer
}

// New picks the platform tone when available and the terminal bell otherwise.
func New(opts Options) Alerter {
	if opts.Disabled {
		return Nop{}
	}
	if opts.Frequency == 0 {
		opts.Frequency = DefaultFrequency
	}
	if opts.Duration <= 0 {
		opts.Duration = DefaultDuration
	}
	if tone, ok := newTone(opts.Frequency, opts.Duration); ok {
		return tone
	}
	if opts.Fallback == nil {
		return Nop{}
	}
	return &Bell{W: opts.Fallback}
}
