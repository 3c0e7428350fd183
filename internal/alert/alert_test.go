package alert

import (
	"bytes"
	"runtime"
	"testing"
)

func TestBellWritesBEL(t *testing.T) {
	var buf bytes.Buffer
	b := &Bell{W: &buf}
	if err := b.Alert(); err != nil {
		t.Fatalf("Alert() error = %v", err)
	}
	if buf.String() != "\a" {
		t.Fatalf("Bell wrote %q, want BEL", buf.String())
	}
}

func TestNewDisabledIsNop(t *testing.T) {
	if _, ok := New(Options{Disabled: true}).(Nop); !ok {
		t.Fatalf("New(Disabled) should return Nop")
	}
}

func TestNewFallsBackToBell(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("windows uses the kernel32 tone")
	}
	var buf bytes.Buffer
	a := New(Options{Fallback: &buf})
	if err := a.Alert(); err != nil {
		t.Fatalf("Alert() error = %v", err)
	}
	if buf.String() != "\a" {
		t.Fatalf("fallback wrote %q, want BEL", buf.String())
	}
}
