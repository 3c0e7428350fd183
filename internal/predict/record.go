package predict

import (
	"time"

	"github.com/GreyHak/satisfactory-save-monitor/internal/wire"
)

// Record is the server's single shared prediction. It is only ever read as a
// whole copy from a Store.
type Record struct {
	Revision                uint64
	IsSaving                bool
	PredictedSaveEnd        time.Time
	PredictedNextSaveStart  time.Time
	AutosaveIntervalSeconds float64
	LastSaveDurationSeconds float64
}

// HasPrediction is false until a login or save event has scheduled a save.
func (r Record) HasPrediction() bool {
	return !r.PredictedNextSaveStart.IsZero()
}

func (r Record) Status() wire.Status {
	return wire.Status{
		IsSaving:                r.IsSaving,
		PredictedNextSaveStart:  r.PredictedNextSaveStart,
		PredictedSaveEnd:        r.PredictedSaveEnd,
		AutosaveIntervalSeconds: r.AutosaveIntervalSeconds,
		LastSaveDurationSeconds: r.LastSaveDurationSeconds,
	}
}

func (r Record) interval() time.Duration {
	return seconds(r.AutosaveIntervalSeconds)
}

func (r Record) lastDuration() time.Duration {
	return seconds(r.LastSaveDurationSeconds)
}

func seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}
