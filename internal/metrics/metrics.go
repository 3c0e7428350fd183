// Package metrics exposes the save monitor server's state to Prometheus.
//
// Metrics exposed:
//   - savemon_observers: currently connected observers
//   - savemon_status_sent_total: prediction frames written to observers
//   - savemon_log_events_total: recognized log lines by kind
//   - savemon_log_malformed_total: recognized lines whose payload did not parse
//   - savemon_log_rotations_total: times the log was seen truncated or replaced
//   - savemon_prediction_revision, savemon_saving,
//     savemon_next_save_timestamp_seconds, savemon_save_end_timestamp_seconds,
//     savemon_autosave_interval_seconds, savemon_last_save_duration_seconds:
//     the current prediction record
//
// Every method is safe to call on a nil *Metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/GreyHak/satisfactory-save-monitor/internal/predict"
)

type Metrics struct {
	registry *prometheus.Registry

	Observers       prometheus.Gauge
	StatusSent      prometheus.Counter
	LogEvents       *prometheus.CounterVec
	LogMalformed    prometheus.Counter
	LogRotations    prometheus.Counter
	Revision        prometheus.Gauge
	Saving          prometheus.Gauge
	NextSave        prometheus.Gauge
	SaveEnd         prometheus.Gauge
	IntervalSeconds prometheus.Gauge
	LastDuration    prometheus.Gauge
}

// New registers all metrics on a private registry, alongside the Go runtime
// and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		Observers: factory.NewGauge(prometheus.GaugeOpts{
			Name: "savemon_observers",
			Help: "Observers currently connected",
		}),
		StatusSent: factory.NewCounter(prometheus.CounterOpts{
			Name: "savemon_status_sent_total",
			Help: "Prediction frames written to observers",
		}),
		LogEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "savemon_log_events_total",
			Help: "Recognized log lines by kind",
		}, []string{"kind"}),
		LogMalformed: factory.NewCounter(prometheus.CounterOpts{
			Name: "savemon_log_malformed_total",
			Help: "Recognized log lines whose payload failed to parse",
		}),
		LogRotations: factory.NewCounter(prometheus.CounterOpts{
			Name: "savemon_log_rotations_total",
			Help: "Times the log file was truncated or replaced",
		}),
		Revision: factory.NewGauge(prometheus.GaugeOpts{
			Name: "savemon_prediction_revision",
			Help: "Revision of the current prediction record",
		}),
		Saving: factory.NewGauge(prometheus.GaugeOpts{
			Name: "savemon_saving",
			Help: "1 while a save is believed to be in progress",
		}),
		NextSave: factory.NewGauge(prometheus.GaugeOpts{
			Name: "savemon_next_save_timestamp_seconds",
			Help: "Predicted start of the next save, Unix seconds",
		}),
		SaveEnd: factory.NewGauge(prometheus.GaugeOpts{
			Name: "savemon_save_end_timestamp_seconds",
			Help: "Predicted end of the current or next save, Unix seconds",
		}),
		IntervalSeconds: factory.NewGauge(prometheus.GaugeOpts{
			Name: "savemon_autosave_interval_seconds",
			Help: "Autosave interval in effect",
		}),
		LastDuration: factory.NewGauge(prometheus.GaugeOpts{
			Name: "savemon_last_save_duration_seconds",
			Help: "Duration of the most recently completed save",
		}),
	}
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ObserverConnected() {
	if m == nil {
		return
	}
	m.Observers.Inc()
}

func (m *Metrics) ObserverDisconnected() {
	if m == nil {
		return
	}
	m.Observers.Dec()
}

func (m *Metrics) RecordStatusSent() {
	if m == nil {
		return
	}
	m.StatusSent.Inc()
}

func (m *Metrics) RecordLogEvent(kind string) {
	if m == nil {
		return
	}
	m.LogEvents.WithLabelValues(kind).Inc()
}

func (m *Metrics) RecordMalformedLine() {
	if m == nil {
		return
	}
	m.LogMalformed.Inc()
}

func (m *Metrics) RecordRotation() {
	if m == nil {
		return
	}
	m.LogRotations.Inc()
}

// SetPrediction mirrors a prediction record into the gauges.
func (m *Metrics) SetPrediction(rec predict.Record) {
	if m == nil {
		return
	}
	m.Revision.Set(float64(rec.Revision))
	if rec.IsSaving {
		m.Saving.Set(1)
	} else {
		m.Saving.Set(0)
	}
	if rec.HasPrediction() {
		m.NextSave.Set(float64(rec.PredictedNextSaveStart.Unix()))
		m.SaveEnd.Set(float64(rec.PredictedSaveEnd.Unix()))
	}
	m.IntervalSeconds.Set(rec.AutosaveIntervalSeconds)
	m.LastDuration.Set(rec.LastSaveDurationSeconds)
}
