package metrics

import (
	"context"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/GreyHak/satisfactory-save-monitor/internal/logging"
	"github.com/GreyHak/satisfactory-save-monitor/internal/predict"
)

func TestSetPredictionMirrorsRecord(t *testing.T) {
	m := New()
	next := time.Date(2024, 3, 1, 12, 5, 0, 0, time.UTC)
	m.SetPrediction(predict.Record{
		Revision:                4,
		IsSaving:                true,
		PredictedNextSaveStart:  next,
		PredictedSaveEnd:        next.Add(9 * time.Second),
		AutosaveIntervalSeconds: 300,
		LastSaveDurationSeconds: 9,
	})

	if got := testutil.ToFloat64(m.Revision); got != 4 {
		t.Fatalf("revision = %v, want 4", got)
	}
	if got := testutil.ToFloat64(m.Saving); got != 1 {
		t.Fatalf("saving = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.NextSave); got != float64(next.Unix()) {
		t.Fatalf("next save = %v, want %d", got, next.Unix())
	}
	if got := testutil.ToFloat64(m.LastDuration); got != 9 {
		t.Fatalf("last duration = %v, want 9", got)
	}
}

func TestCountersAndObservers(t *testing.T) {
	m := New()
	m.ObserverConnected()
	m.ObserverConnected()
	m.ObserverDisconnected()
	m.RecordStatusSent()
	m.RecordLogEvent("save_started")
	m.RecordLogEvent("save_started")
	m.RecordMalformedLine()

	if got := testutil.ToFloat64(m.Observers); got != 1 {
		t.Fatalf("observers = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.LogEvents.WithLabelValues("save_started")); got != 2 {
		t.Fatalf("save_started events = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.LogMalformed); got != 1 {
		t.Fatalf("malformed = %v, want 1", got)
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.ObserverConnected()
	m.RecordStatusSent()
	m.SetPrediction(predict.Record{})
	if m.Registry() != nil {
		t.Fatalf("Registry() on nil = non-nil")
	}
}

func TestServeListenerExposesMetrics(t *testing.T) {
	logger := logging.New(false)
	logger.SetTerminalOutputEnabled(false)
	m := New()
	m.RecordStatusSent()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.ServeListener(ctx, ln, logger) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics error = %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if !strings.Contains(string(body), "savemon_status_sent_total 1") {
		t.Fatalf("metrics body missing counter:\n%s", body)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("ServeListener() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("ServeListener() did not stop")
	}
}
