package display

import "time"

const (
	DefaultRefresh        = time.Second
	DefaultStaleTolerance = 3 * time.Second
	minOverrunGrace       = time.Minute
	minTick               = 10 * time.Millisecond
)

// confirmedAlertWindow bounds how long after its start a confirmed save still
// alerts; an observer joining later stays silent.
const confirmedAlertWindow = 3 * time.Second

type Options struct {
	Refresh        time.Duration
	StaleTolerance time.Duration
}

// Display extrapolates the last received prediction against the wall clock.
// Tick is called from a single render loop.
type Display struct {
	store *Store
	opts  Options

	lastRevision uint64
	inSave       bool
	alertedFor   time.Time
}

func New(store *Store, opts Options) *Display {
	if store == nil {
		panic("display.New: store must not be nil")
	}
	if opts.Refresh <= 0 {
		opts.Refresh = DefaultRefresh
	}
	if opts.StaleTolerance < 0 {
		opts.StaleTolerance = DefaultStaleTolerance
	}
	return &Display{store: store, opts: opts}
}

func (d *Display) Refresh() time.Duration {
	return d.opts.Refresh
}

func (d *Display) Tick(now time.Time) Frame {
	snap := d.store.Snapshot()
	frame := Frame{
		Now:      now,
		Snapshot: snap,
		Fresh:    snap.Revision != d.lastRevision,
		NextTick: d.opts.Refresh,
	}
	d.lastRevision = snap.Revision
	if !snap.HasStatus() {
		return d.waiting(frame)
	}

	st := snap.Status
	next, end := st.PredictedNextSaveStart, st.PredictedSaveEnd
	interval := seconds(st.AutosaveIntervalSeconds)
	lastDur := seconds(st.LastSaveDurationSeconds)
	frame.NextSaveStart, frame.SaveEnd = next, end

	if st.IsSaving {
		if now.Before(end) {
			frame.Phase = PhaseSaving
			frame.Target = end
			frame.Remaining = end.Sub(now)
			frame.Progress = progress(lastDur, frame.Remaining)
			frame.Alert = d.confirmedAlert(now, end.Add(-lastDur))
			frame.NextTick = nextTick(frame.Remaining, d.opts.Refresh)
			return frame
		}
		grace := max(interval, minOverrunGrace)
		if now.Before(end.Add(grace)) {
			frame.Phase = PhaseOverrun
			frame.Target = end
			frame.Progress = 1
			frame.Alert = d.confirmedAlert(now, end.Add(-lastDur))
			return frame
		}
		return d.waiting(frame)
	}

	if end.Before(now.Add(-d.opts.StaleTolerance)) {
		return d.waiting(frame)
	}

	if !now.Before(next) {
		specEnd := end
		if alt := next.Add(lastDur); alt.After(specEnd) {
			specEnd = alt
		}
		frame.Phase = PhaseSaving
		frame.Speculative = true
		frame.Target = specEnd
		frame.Remaining = max(specEnd.Sub(now), 0)
		frame.Progress = progress(lastDur, frame.Remaining)
		frame.NextSaveStart = next.Add(interval + lastDur)
		frame.SaveEnd = specEnd
		frame.Alert = d.enterSave(next)
		frame.NextTick = nextTick(frame.Remaining, d.opts.Refresh)
		return frame
	}

	d.inSave = false
	frame.Phase = PhaseCountdown
	frame.Target = next
	frame.Remaining = next.Sub(now)
	frame.Progress = progress(interval, frame.Remaining)
	frame.NextTick = nextTick(frame.Remaining, d.opts.Refresh)
	return frame
}

func (d *Display) waiting(frame Frame) Frame {
	d.inSave = false
	frame.Phase = PhaseWaiting
	frame.Remaining = 0
	return frame
}

// enterSave reports whether this frame starts a save that has not been
// alerted yet. key identifies the save by its start instant.
func (d *Display) enterSave(key time.Time) bool {
	if d.inSave {
		return false
	}
	d.inSave = true
	if key.Equal(d.alertedFor) {
		return false
	}
	d.alertedFor = key
	return true
}

func (d *Display) confirmedAlert(now, start time.Time) bool {
	entered := d.enterSave(start)
	return entered && !now.After(start.Add(confirmedAlertWindow))
}

// nextTick keeps ticks on whole multiples of refresh before the target so
// the last tick lands on the boundary itself.
func nextTick(remaining, refresh time.Duration) time.Duration {
	if remaining <= 0 {
		return refresh
	}
	if remaining <= refresh {
		return max(remaining, minTick)
	}
	step := remaining % refresh
	if step == 0 {
		return refresh
	}
	if step < minTick {
		step += refresh
	}
	return step
}

func progress(span, remaining time.Duration) float64 {
	if span <= 0 {
		return 1
	}
	p := 1 - float64(remaining)/float64(span)
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}

func seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}
