package subscribe

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/GreyHak/satisfactory-save-monitor/internal/logging"
	"github.com/GreyHak/satisfactory-save-monitor/internal/runstatus"
	"github.com/GreyHak/satisfactory-save-monitor/internal/wire"
)

type recordingSink struct {
	mu       sync.Mutex
	statuses []wire.Status
	links    []string
}

func (r *recordingSink) Apply(status wire.Status, _ time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = append(r.statuses, status)
}

func (r *recordingSink) SetLink(status string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.links = append(r.links, status)
}

func (r *recordingSink) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.statuses)
}

func (r *recordingSink) first() wire.Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.statuses[0]
}

func (r *recordingSink) sawLink(status string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.links {
		if l == status {
			return true
		}
	}
	return false
}

func quietLogger() *logging.Logger {
	logger := logging.New(false)
	logger.SetTerminalOutputEnabled(false)
	return logger
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestSubscriberReconnectsAfterConnectionLoss(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	defer ln.Close()
	port := ln.Addr().(*net.TCPAddr).Port

	next := time.Unix(1_700_000_300, 0).UTC()
	status := wire.Status{
		PredictedNextSaveStart:  next,
		PredictedSaveEnd:        next.Add(10 * time.Second),
		AutosaveIntervalSeconds: 300,
		LastSaveDurationSeconds: 10,
	}
	go func() {
		for i := 0; i < 2; i++ {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			_ = wire.WriteStatus(conn, status)
			if i == 0 {
				buf := wire.Encode(status)
				_, _ = conn.Write(buf[:5]) // torn frame, then hang up
			}
			_ = conn.Close()
		}
	}()

	sink := &recordingSink{}
	sub := New(Options{Address: "127.0.0.1", Port: port, RetryDelay: 20 * time.Millisecond}, sink, quietLogger())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sub.RunContext(ctx) }()

	waitFor(t, "two frames across reconnects", func() bool { return sink.count() >= 2 })
	if !sink.sawLink(runstatus.Reconnecting) {
		t.Fatalf("links = %v, want a reconnecting state", sink.links)
	}
	got := sink.first()
	if got.IsSaving != status.IsSaving ||
		!got.PredictedNextSaveStart.Equal(status.PredictedNextSaveStart) ||
		!got.PredictedSaveEnd.Equal(status.PredictedSaveEnd) ||
		got.AutosaveIntervalSeconds != status.AutosaveIntervalSeconds ||
		got.LastSaveDurationSeconds != status.LastSaveDurationSeconds {
		t.Fatalf("status = %#v, want %#v", got, status)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("RunContext() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("RunContext() did not stop")
	}
	if !sink.sawLink(runstatus.Disconnected) {
		t.Fatalf("links = %v, want disconnected on exit", sink.links)
	}
}

func TestSubscriberWaitsForRefusingServer(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	_ = ln.Close()

	sink := &recordingSink{}
	sub := New(Options{Address: "127.0.0.1", Port: port, RefusedDelay: time.Hour}, sink, quietLogger())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sub.RunContext(ctx) }()

	waitFor(t, "waiting-for-server state", func() bool { return sink.sawLink(runstatus.WaitingForServer) })
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("RunContext() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("RunContext() did not stop during the refused delay")
	}
}

func TestRetryErrorDelays(t *testing.T) {
	sink := &recordingSink{}
	sub := New(Options{RetryDelay: time.Second, RefusedDelay: 10 * time.Second}, sink, quietLogger())

	refused := fmt.Errorf("%w: %w", ErrConnectionRefused, syscall.ECONNREFUSED)
	var after *backoff.RetryAfterError
	if !errors.As(sub.retryError(refused), &after) || after.Duration != 10*time.Second {
		t.Fatalf("retryError(refused) = %v, want RetryAfter 10s", after)
	}

	lost := sub.retryError(wire.ErrConnectionLost)
	if errors.As(lost, &after) {
		t.Fatalf("retryError(lost) should use the constant backoff")
	}
	if !errors.Is(lost, wire.ErrConnectionLost) {
		t.Fatalf("retryError(lost) = %v", lost)
	}
}

func TestIsConnectionRefused(t *testing.T) {
	if !IsConnectionRefused(&net.OpError{Op: "dial", Err: syscall.ECONNREFUSED}) {
		t.Fatalf("ECONNREFUSED not recognized")
	}
	if IsConnectionRefused(syscall.ECONNRESET) {
		t.Fatalf("ECONNRESET treated as refused")
	}
}
