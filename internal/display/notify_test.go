package display

import (
	"strings"
	"testing"
	"time"
)

func TestDescribe(t *testing.T) {
	store, d := newTestDisplay()
	store.Apply(countdownStatus(), t0)
	frame := d.Tick(t0)

	got := Describe(frame, time.UTC)
	want := "Server save completed.  Save took 10 seconds.  Next save expected to start at 2024-03-01 12:05:00 (local time) based on 300 second interval and end at 2024-03-01 12:05:10."
	if got != want {
		t.Fatalf("Describe() = %q, want %q", got, want)
	}

	st := countdownStatus()
	st.IsSaving = true
	store.Apply(st, t0)
	got = Describe(d.Tick(t0), time.UTC)
	if !strings.HasPrefix(got, "Server is in the process of saving.  Expected to complete at 2024-03-01 12:05:10") {
		t.Fatalf("Describe() saving = %q", got)
	}
}

func TestClock(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{in: 0, want: "0:00"},
		{in: -time.Second, want: "0:00"},
		{in: 300 * time.Millisecond, want: "0:01"},
		{in: 65 * time.Second, want: "1:05"},
		{in: time.Hour + 2*time.Minute + 3*time.Second, want: "1:02:03"},
	}
	for _, tc := range tests {
		if got := Clock(tc.in); got != tc.want {
			t.Fatalf("Clock(%s) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCountdownLine(t *testing.T) {
	if got := CountdownLine(Frame{Phase: PhaseCountdown, Remaining: 90 * time.Second}); got != "Countdown until save: 1:30" {
		t.Fatalf("CountdownLine() = %q", got)
	}
	if got := CountdownLine(Frame{}); !strings.HasPrefix(got, "Waiting") {
		t.Fatalf("CountdownLine() waiting = %q", got)
	}
}
