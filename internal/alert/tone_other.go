//go:build !windows

package alert

import "time"

func newTone(uint32, time.Duration) (Alerter, bool) {
	return nil, false
}
