package predict

import (
	"context"
	"errors"
	"time"

	"github.com/looplab/fsm"

	"github.com/GreyHak/satisfactory-save-monitor/internal/gamelog"
	"github.com/GreyHak/satisfactory-save-monitor/internal/logging"
)

const (
	phaseIdle   = "idle"
	phaseSaving = "saving"

	eventSaveStarted   = "save_started"
	eventSaveCompleted = "save_completed"
	eventReanchor      = "reanchor"

	// A save starting within this multiple of the last save duration after a
	// logoff is attributed to that logoff.
	logoffWindowFactor = 1.25
)

type Option func(*Predictor)

// WithClock replaces time.Now for the login staleness check.
func WithClock(now func() time.Time) Option {
	return func(p *Predictor) {
		p.now = now
	}
}

// Predictor is the only writer of a Store. It is not safe for concurrent use.
type Predictor struct {
	store  *Store
	logger *logging.Logger
	now    func() time.Time
	phase  *fsm.FSM

	lastLogoff time.Time
	logoffSave bool
	stashNext  time.Time
	stashEnd   time.Time
}

func NewPredictor(store *Store, logger *logging.Logger, opts ...Option) *Predictor {
	if store == nil {
		panic("predict.NewPredictor: store must not be nil")
	}
	if logger == nil {
		panic("predict.NewPredictor: logger must not be nil")
	}
	p := &Predictor{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	both := []string{phaseIdle, phaseSaving}
	p.phase = fsm.NewFSM(
		phaseIdle,
		fsm.Events{
			{Name: eventSaveStarted, Src: both, Dst: phaseSaving},
			{Name: eventSaveCompleted, Src: both, Dst: phaseIdle},
			{Name: eventReanchor, Src: both, Dst: phaseIdle},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				p.logger.Debug("save phase changed", logging.Field("from", e.Src), logging.Field("to", e.Dst))
			},
		},
	)
	return p
}

// Phase is "idle" or "saving".
func (p *Predictor) Phase() string {
	return p.phase.Current()
}

// Apply folds one classified event into the shared record and reports
// whether the record changed.
func (p *Predictor) Apply(ctx context.Context, ev gamelog.Event) (Record, bool) {
	before := p.store.Revision()
	var rec Record
	switch ev.Kind {
	case gamelog.KindPlayerLogin:
		rec = p.store.Mutate(func(r *Record) bool { return p.login(ctx, r, ev) })
	case gamelog.KindPlayerLogoff:
		p.lastLogoff = ev.Time
		p.logger.Debug("player logoff noted", logging.Field("at", ev.Time))
		return p.store.Snapshot(), false
	case gamelog.KindIntervalReconfigured:
		rec = p.store.Mutate(func(r *Record) bool { return p.reconfigure(r, ev) })
	case gamelog.KindSaveStarted:
		rec = p.store.Mutate(func(r *Record) bool { return p.saveStarted(ctx, r, ev) })
	case gamelog.KindSaveCompleted:
		rec = p.store.Mutate(func(r *Record) bool { return p.saveCompleted(ctx, r, ev) })
	default:
		return p.store.Snapshot(), false
	}
	return rec, rec.Revision != before
}

func (p *Predictor) login(ctx context.Context, r *Record, ev gamelog.Event) bool {
	if r.HasPrediction() && !r.PredictedSaveEnd.Before(p.now()) {
		return false
	}
	r.IsSaving = false
	r.PredictedNextSaveStart = ev.Time.Add(r.interval())
	r.PredictedSaveEnd = r.PredictedNextSaveStart.Add(r.lastDuration())
	p.logoffSave = false
	p.transition(ctx, eventReanchor)
	p.logger.Info("prediction expired; re-anchored on player login",
		logging.Field("player", ev.Player),
		logging.Field("next_save", r.PredictedNextSaveStart),
		logging.Field("save_end", r.PredictedSaveEnd),
	)
	return true
}

// reconfigure only changes the interval. The pending prediction is corrected
// by the next save event, since the log does not say whether the setting was
// read before or after it was computed.
func (p *Predictor) reconfigure(r *Record, ev gamelog.Event) bool {
	if r.AutosaveIntervalSeconds == ev.NewIntervalSeconds {
		return false
	}
	p.logger.Info("autosave interval changed",
		logging.Field("from_seconds", r.AutosaveIntervalSeconds),
		logging.Field("to_seconds", ev.NewIntervalSeconds),
	)
	r.AutosaveIntervalSeconds = ev.NewIntervalSeconds
	return true
}

func (p *Predictor) saveStarted(ctx context.Context, r *Record, ev gamelog.Event) bool {
	start := ev.InferredStart()
	end := start.Add(r.lastDuration())

	if p.logoffTriggered(r, start) {
		if !p.logoffSave {
			p.stashNext, p.stashEnd = r.PredictedNextSaveStart, r.PredictedSaveEnd
			p.logoffSave = true
		}
		p.lastLogoff = time.Time{}
		next := p.stashNext
		if next.Before(end) {
			next = end.Add(r.interval())
		}
		r.PredictedSaveEnd = end
		r.PredictedNextSaveStart = next
		p.logger.Info("logoff save detected; keeping regular schedule",
			logging.Field("started", start),
			logging.Field("save_end", end),
			logging.Field("kept_next_save", p.stashNext),
		)
	} else {
		p.logoffSave = false
		r.PredictedSaveEnd = end
		r.PredictedNextSaveStart = end.Add(r.interval())
		p.logger.Info("save detected",
			logging.Field("started", start),
			logging.Field("elapsed_seconds", ev.ElapsedSeconds),
			logging.Field("save_end", r.PredictedSaveEnd),
			logging.Field("next_save", r.PredictedNextSaveStart),
		)
	}
	r.IsSaving = true
	p.transition(ctx, eventSaveStarted)
	return true
}

func (p *Predictor) logoffTriggered(r *Record, start time.Time) bool {
	if p.lastLogoff.IsZero() || !r.HasPrediction() {
		return false
	}
	gap := start.Sub(p.lastLogoff)
	window := time.Duration(r.LastSaveDurationSeconds * logoffWindowFactor * float64(time.Second))
	return gap >= 0 && gap <= window
}

func (p *Predictor) saveCompleted(ctx context.Context, r *Record, ev gamelog.Event) bool {
	r.IsSaving = false
	r.LastSaveDurationSeconds = ev.TotalSeconds
	if p.logoffSave {
		r.PredictedNextSaveStart = p.stashNext
		r.PredictedSaveEnd = p.stashEnd
		p.logoffSave = false
		p.stashNext, p.stashEnd = time.Time{}, time.Time{}
		p.logger.Info("logoff save completed; restored regular schedule",
			logging.Field("took_seconds", ev.TotalSeconds),
			logging.Field("next_save", r.PredictedNextSaveStart),
			logging.Field("save_end", r.PredictedSaveEnd),
		)
	} else {
		r.PredictedNextSaveStart = ev.Time.Add(r.interval())
		r.PredictedSaveEnd = r.PredictedNextSaveStart.Add(seconds(ev.TotalSeconds))
		p.logger.Info("save completed",
			logging.Field("took_seconds", ev.TotalSeconds),
			logging.Field("next_save", r.PredictedNextSaveStart),
			logging.Field("save_end", r.PredictedSaveEnd),
		)
	}
	p.transition(ctx, eventSaveCompleted)
	return true
}

// transition moves the phase machine. Repeating the current phase, such as a
// completion seen without its start after a rotation, is not an error.
func (p *Predictor) transition(ctx context.Context, event string) {
	err := p.phase.Event(ctx, event)
	if err == nil {
		return
	}
	var noTransition fsm.NoTransitionError
	if errors.As(err, &noTransition) {
		return
	}
	p.logger.Warn("save phase transition failed", logging.Field("event", event), logging.Field("error", err))
}
