package app

import (
	"strings"
	"sync"

	"github.com/GreyHak/satisfactory-save-monitor/internal/logging"
)

type runtimeStatusState struct {
	mu      sync.Mutex
	current string
}

func (s *runtimeStatusState) update(status string) (string, string, bool) {
	trimmed := strings.TrimSpace(status)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == trimmed {
		return s.current, trimmed, false
	}
	previous := s.current
	s.current = trimmed
	return previous, trimmed, true
}

func logStatusTransition(logger *logging.Logger, state *runtimeStatusState, status string, notify func(string)) {
	previous, next, changed := state.update(status)
	if !changed {
		return
	}
	logger.Debug("runtime status transition",
		logging.Field("from", previous),
		logging.Field("to", next),
	)
	if notify != nil {
		notify(next)
	}
}
