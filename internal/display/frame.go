package display

import "time"

type Phase int

const (
	PhaseWaiting Phase = iota
	PhaseCountdown
	PhaseSaving
	PhaseOverrun
)

func (p Phase) String() string {
	switch p {
	case PhaseCountdown:
		return "countdown"
	case PhaseSaving:
		return "saving"
	case PhaseOverrun:
		return "overrun"
	default:
		return "waiting"
	}
}

// Frame is what the display shows at one instant.
type Frame struct {
	Now   time.Time
	Phase Phase
	// Target is the instant Remaining counts down to: the next save start
	// while counting down, the save end while saving.
	Target    time.Time
	Remaining time.Duration
	// Progress is the elapsed fraction of the interval or save, in [0, 1].
	Progress float64

	// Speculative is set when the save was inferred from the clock alone.
	Speculative bool
	// Alert is set on the one frame where a save begins.
	Alert bool
	// Fresh is set when a new frame arrived since the previous tick.
	Fresh bool

	// NextSaveStart and SaveEnd are the predictions in effect, rolled
	// forward locally after a speculative start.
	NextSaveStart time.Time
	SaveEnd       time.Time

	Snapshot Snapshot
	NextTick time.Duration
}

func (f Frame) IsSaving() bool {
	return f.Phase == PhaseSaving || f.Phase == PhaseOverrun
}
