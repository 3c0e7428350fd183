package logging

import (
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestOrderedFieldKeys_ErrorLast(t *testing.T) {
	fields := map[string]any{
		"line":  "abc",
		"error": "parse failed",
		"kind":  "save_started",
	}
	keys := orderedFieldKeys(fields)
	if len(keys) != 3 {
		t.Fatalf("unexpected keys length: %d", len(keys))
	}
	if keys[0] != "kind" || keys[len(keys)-1] != "error" {
		t.Fatalf("keys = %v, want kind first and error last", keys)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "  ", want: "<empty>"},
		{name: "newlines", in: "a\nb\rc", want: "a b c"},
		{name: "short", in: "LogGame: hello", want: "LogGame: hello"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Truncate(tc.in); got != tc.want {
				t.Fatalf("Truncate(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}

	long := strings.Repeat("x", clipLimit+10)
	if got := Truncate(long); len(got) != clipLimit+3 || !strings.HasSuffix(got, "...") {
		t.Fatalf("Truncate(long) length = %d", len(got))
	}
}

func TestFormatEventLine(t *testing.T) {
	event := Event{
		Time:    time.Date(2024, 1, 1, 9, 30, 0, 0, time.Local),
		Level:   slog.LevelInfo,
		Message: "observer connected",
		Fields: map[string]any{
			"remote": "127.0.0.1:5000",
			"error":  "none yet",
		},
	}
	got := FormatEventLine(event)
	want := "09:30:00 [INFO] observer connected remote=127.0.0.1:5000 error=\"none yet\"\n"
	if got != want {
		t.Fatalf("FormatEventLine() = %q, want %q", got, want)
	}
}

func TestSubscribeReceivesEventsUntilCancelled(t *testing.T) {
	logger := New(false)
	logger.SetTerminalOutputEnabled(false)

	var got []string
	cancel := logger.Subscribe(func(event Event) {
		got = append(got, event.Message)
	})
	logger.Info("first")
	logger.Debug("hidden while debug disabled")
	cancel()
	logger.Info("second")

	if len(got) != 1 || got[0] != "first" {
		t.Fatalf("subscriber got %v, want [first]", got)
	}
}
