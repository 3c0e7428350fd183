package display

import (
	"fmt"
	"strconv"
	"time"
)

const clockLayout = "2006-01-02 15:04:05"

// Describe is the one-off notice printed when a new prediction arrives.
func Describe(f Frame, loc *time.Location) string {
	if !f.Snapshot.HasStatus() {
		return "Waiting for the first prediction from the server."
	}
	st := f.Snapshot.Status
	if st.IsSaving {
		return fmt.Sprintf(
			"Server is in the process of saving.  Expected to complete at %s based on last save that took %s seconds.  Next save expected to start at %s (local time) based on %s second interval.",
			clock(st.PredictedSaveEnd, loc),
			number(st.LastSaveDurationSeconds),
			clock(st.PredictedNextSaveStart, loc),
			number(st.AutosaveIntervalSeconds),
		)
	}
	return fmt.Sprintf(
		"Server save completed.  Save took %s seconds.  Next save expected to start at %s (local time) based on %s second interval and end at %s.",
		number(st.LastSaveDurationSeconds),
		clock(st.PredictedNextSaveStart, loc),
		number(st.AutosaveIntervalSeconds),
		clock(st.PredictedSaveEnd, loc),
	)
}

// CountdownLine is the status line refreshed on every tick.
func CountdownLine(f Frame) string {
	switch f.Phase {
	case PhaseCountdown:
		return "Countdown until save: " + Clock(f.Remaining)
	case PhaseSaving:
		if f.Speculative {
			return "Save should be under way; time to complete: " + Clock(f.Remaining)
		}
		return "Saving; time to complete: " + Clock(f.Remaining)
	case PhaseOverrun:
		return "Save is taking longer than the last one (expected end " + f.Target.Local().Format("15:04:05") + ")"
	default:
		if f.Snapshot.HasStatus() {
			return "Prediction expired; waiting for the server to report a save"
		}
		return "Waiting for the first prediction from the server"
	}
}

// Clock renders a duration as H:MM:SS, or M:SS under an hour.
func Clock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64((d + time.Second - 1) / time.Second)
	h, m, s := total/3600, (total/60)%60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

func clock(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(clockLayout)
}

func number(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 32)
}
