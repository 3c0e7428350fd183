//go:build windows

package alert

import (
	"fmt"
	"time"

	"golang.org/x/sys/windows"
)

var procBeep = windows.NewLazySystemDLL("kernel32.dll").NewProc("Beep")

type tone struct {
	frequency uint32
	duration  time.Duration
}

func newTone(frequency uint32, duration time.Duration) (Alerter, bool) {
	if err := procBeep.Find(); err != nil {
		return nil, false
	}
	return tone{frequency: frequency, duration: duration}, true
}

// Alert blocks for the tone's duration.
func (t tone) Alert() error {
	r, _, err := procBeep.Call(uintptr(t.frequency), uintptr(t.duration.Milliseconds()))
	if r == 0 {
		return fmt.Errorf("beep: %w", err)
	}
	return nil
}
