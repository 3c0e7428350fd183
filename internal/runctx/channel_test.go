package runctx

import (
	"context"
	"testing"
	"time"

	"github.com/GreyHak/satisfactory-save-monitor/internal/logging"
)

func quietLogger() *logging.Logger {
	logger := logging.New(false)
	logger.SetTerminalOutputEnabled(false)
	return logger
}

func TestSendOrDoneStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out := make(chan string)
	if SendOrDone(ctx, "test", quietLogger(), out, "line") {
		t.Fatalf("SendOrDone() = true on canceled context with no receiver")
	}
}

func TestRecvOrDoneReportsClosedChannel(t *testing.T) {
	in := make(chan int)
	close(in)
	if _, ok := RecvOrDone(context.Background(), "test", quietLogger(), in); ok {
		t.Fatalf("RecvOrDone() ok = true on closed channel")
	}
}

func TestSleepOrDone(t *testing.T) {
	if !SleepOrDone(context.Background(), time.Millisecond) {
		t.Fatalf("SleepOrDone() = false without cancellation")
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if SleepOrDone(ctx, time.Hour) {
		t.Fatalf("SleepOrDone() = true on canceled context")
	}
}
