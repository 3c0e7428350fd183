package predict

import (
	"context"
	"testing"
	"time"

	"github.com/GreyHak/satisfactory-save-monitor/internal/gamelog"
	"github.com/GreyHak/satisfactory-save-monitor/internal/logging"
)

var t0 = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func quietLogger() *logging.Logger {
	logger := logging.New(false)
	logger.SetTerminalOutputEnabled(false)
	return logger
}

func sec(n float64) time.Duration {
	return time.Duration(n * float64(time.Second))
}

func newTestPredictor(interval float64, now time.Time) (*Store, *Predictor) {
	store := NewStore(interval)
	p := NewPredictor(store, quietLogger(), WithClock(func() time.Time { return now }))
	return store, p
}

func started(at time.Time, elapsed float64) gamelog.Event {
	return gamelog.Event{Kind: gamelog.KindSaveStarted, Time: at, ElapsedSeconds: elapsed}
}

func completed(at time.Time, total float64) gamelog.Event {
	return gamelog.Event{Kind: gamelog.KindSaveCompleted, Time: at, TotalSeconds: total}
}

func requireTime(t *testing.T, name string, got, want time.Time) {
	t.Helper()
	if !got.Equal(want) {
		t.Fatalf("%s = %v, want %v", name, got, want)
	}
}

func TestSaveCycleScenario(t *testing.T) {
	ctx := context.Background()
	store, p := newTestPredictor(300, t0)
	store.Mutate(func(r *Record) bool {
		r.LastSaveDurationSeconds = 10
		return true
	})

	rec, changed := p.Apply(ctx, started(t0, 2))
	if !changed || !rec.IsSaving {
		t.Fatalf("Apply(SaveStarted) = %#v, changed=%v", rec, changed)
	}
	requireTime(t, "save end", rec.PredictedSaveEnd, t0.Add(sec(8)))
	requireTime(t, "next start", rec.PredictedNextSaveStart, t0.Add(sec(308)))
	if p.Phase() != phaseSaving {
		t.Fatalf("Phase() = %q, want saving", p.Phase())
	}

	rec, _ = p.Apply(ctx, completed(t0.Add(sec(9)), 9))
	if rec.IsSaving {
		t.Fatalf("IsSaving = true after completion")
	}
	requireTime(t, "next start", rec.PredictedNextSaveStart, t0.Add(sec(309)))
	requireTime(t, "save end", rec.PredictedSaveEnd, t0.Add(sec(318)))
	if rec.LastSaveDurationSeconds != 9 {
		t.Fatalf("LastSaveDurationSeconds = %v, want 9", rec.LastSaveDurationSeconds)
	}
	if p.Phase() != phaseIdle {
		t.Fatalf("Phase() = %q, want idle", p.Phase())
	}
}

func TestRevisionStrictlyIncreases(t *testing.T) {
	ctx := context.Background()
	store, p := newTestPredictor(300, t0)
	events := []gamelog.Event{
		{Kind: gamelog.KindPlayerLogin, Time: t0, Player: "a"},
		started(t0.Add(sec(300)), 1),
		completed(t0.Add(sec(305)), 5),
		{Kind: gamelog.KindIntervalReconfigured, Time: t0.Add(sec(306)), NewIntervalSeconds: 600},
		{Kind: gamelog.KindPlayerLogoff, Time: t0.Add(sec(400))},
		started(t0.Add(sec(402)), 0),
		completed(t0.Add(sec(407)), 5),
		completed(t0.Add(sec(408)), 5),
	}
	last := store.Revision()
	for i, ev := range events {
		rec, changed := p.Apply(ctx, ev)
		switch {
		case changed && rec.Revision != last+1:
			t.Fatalf("event %d: revision %d after %d, want +1", i, rec.Revision, last)
		case !changed && rec.Revision != last:
			t.Fatalf("event %d: revision moved without a change", i)
		}
		last = rec.Revision
	}
	if last == 0 {
		t.Fatalf("revision never advanced")
	}
}

func TestRegularCompletionInvariant(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		interval float64
		total    float64
	}{
		{interval: 300, total: 9},
		{interval: 600, total: 42.5},
		{interval: 0, total: 3},
	}
	for _, tc := range tests {
		_, p := newTestPredictor(tc.interval, t0)
		at := t0.Add(sec(123.456))
		rec, _ := p.Apply(ctx, completed(at, tc.total))
		requireTime(t, "next start", rec.PredictedNextSaveStart, at.Add(sec(tc.interval)))
		requireTime(t, "save end", rec.PredictedSaveEnd, rec.PredictedNextSaveStart.Add(sec(tc.total)))
	}
}

func TestLogoffTriggeredSaveRestoresSchedule(t *testing.T) {
	ctx := context.Background()
	_, p := newTestPredictor(300, t0)

	p.Apply(ctx, started(t0, 0))
	before, _ := p.Apply(ctx, completed(t0.Add(sec(10)), 10))
	requireTime(t, "next start", before.PredictedNextSaveStart, t0.Add(sec(310)))

	logoff := t0.Add(sec(100))
	p.Apply(ctx, gamelog.Event{Kind: gamelog.KindPlayerLogoff, Time: logoff})
	// Starts 12s after the logoff, inside 10s * 1.25.
	during, _ := p.Apply(ctx, started(logoff.Add(sec(13)), 1))
	if !during.IsSaving {
		t.Fatalf("IsSaving = false during logoff save")
	}
	requireTime(t, "transient end", during.PredictedSaveEnd, logoff.Add(sec(22)))
	requireTime(t, "transient next", during.PredictedNextSaveStart, before.PredictedNextSaveStart)

	after, _ := p.Apply(ctx, completed(logoff.Add(sec(20)), 8))
	requireTime(t, "restored next", after.PredictedNextSaveStart, before.PredictedNextSaveStart)
	requireTime(t, "restored end", after.PredictedSaveEnd, before.PredictedSaveEnd)
	if after.LastSaveDurationSeconds != 8 {
		t.Fatalf("LastSaveDurationSeconds = %v, want 8", after.LastSaveDurationSeconds)
	}

	t.Run("kept next start before logoff save end", func(t *testing.T) {
		_, p := newTestPredictor(300, t0)
		p.Apply(ctx, started(t0, 0))
		before, _ := p.Apply(ctx, completed(t0.Add(sec(10)), 10))
		requireTime(t, "next start", before.PredictedNextSaveStart, t0.Add(sec(310)))
		requireTime(t, "save end", before.PredictedSaveEnd, t0.Add(sec(320)))

		logoff := t0.Add(sec(305))
		p.Apply(ctx, gamelog.Event{Kind: gamelog.KindPlayerLogoff, Time: logoff})
		// Ends at t0+316, after the kept next start of t0+310.
		during, _ := p.Apply(ctx, started(logoff.Add(sec(1)), 0))
		requireTime(t, "transient end", during.PredictedSaveEnd, t0.Add(sec(316)))
		requireTime(t, "transient next", during.PredictedNextSaveStart, t0.Add(sec(616)))

		after, _ := p.Apply(ctx, completed(t0.Add(sec(315)), 9))
		if after.IsSaving {
			t.Fatalf("IsSaving = true after completion")
		}
		requireTime(t, "restored next", after.PredictedNextSaveStart, before.PredictedNextSaveStart)
		requireTime(t, "restored end", after.PredictedSaveEnd, before.PredictedSaveEnd)
	})
}

func TestLogoffOutsideWindowIsRegularSave(t *testing.T) {
	ctx := context.Background()
	_, p := newTestPredictor(300, t0)
	p.Apply(ctx, started(t0, 0))
	p.Apply(ctx, completed(t0.Add(sec(10)), 10))

	logoff := t0.Add(sec(100))
	p.Apply(ctx, gamelog.Event{Kind: gamelog.KindPlayerLogoff, Time: logoff})
	rec, _ := p.Apply(ctx, started(logoff.Add(sec(20)), 0))
	requireTime(t, "next start", rec.PredictedNextSaveStart, logoff.Add(sec(330)))

	rec, _ = p.Apply(ctx, completed(logoff.Add(sec(29)), 9))
	requireTime(t, "next start", rec.PredictedNextSaveStart, logoff.Add(sec(329)))
}

func TestLoginReanchorsOnlyExpiredPredictions(t *testing.T) {
	ctx := context.Background()
	now := t0.Add(time.Hour)
	store, p := newTestPredictor(300, now)

	login := gamelog.Event{Kind: gamelog.KindPlayerLogin, Time: now.Add(-sec(5)), Player: "Pioneer"}
	rec, changed := p.Apply(ctx, login)
	if !changed {
		t.Fatalf("login without prediction did not re-anchor")
	}
	requireTime(t, "next start", rec.PredictedNextSaveStart, login.Time.Add(sec(300)))
	requireTime(t, "save end", rec.PredictedSaveEnd, rec.PredictedNextSaveStart)

	if _, changed := p.Apply(ctx, login); changed {
		t.Fatalf("login with a future prediction should not change the record")
	}

	store.Mutate(func(r *Record) bool {
		r.IsSaving = true
		r.PredictedSaveEnd = now.Add(-time.Minute)
		return true
	})
	rec, changed = p.Apply(ctx, login)
	if !changed || rec.IsSaving {
		t.Fatalf("expired prediction not re-anchored: %#v", rec)
	}
}

func TestIntervalChangeIsProspective(t *testing.T) {
	ctx := context.Background()
	_, p := newTestPredictor(300, t0)
	before, _ := p.Apply(ctx, completed(t0, 10))

	rec, changed := p.Apply(ctx, gamelog.Event{Kind: gamelog.KindIntervalReconfigured, Time: t0.Add(sec(5)), NewIntervalSeconds: 600})
	if !changed || rec.AutosaveIntervalSeconds != 600 {
		t.Fatalf("interval not applied: %#v", rec)
	}
	requireTime(t, "next start", rec.PredictedNextSaveStart, before.PredictedNextSaveStart)

	if _, changed := p.Apply(ctx, gamelog.Event{Kind: gamelog.KindIntervalReconfigured, Time: t0.Add(sec(6)), NewIntervalSeconds: 600}); changed {
		t.Fatalf("same interval should not bump the revision")
	}

	rec, _ = p.Apply(ctx, completed(t0.Add(sec(320)), 10))
	requireTime(t, "next start", rec.PredictedNextSaveStart, t0.Add(sec(920)))
}
