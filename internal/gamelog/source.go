package gamelog

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/afero"

	"github.com/GreyHak/satisfactory-save-monitor/internal/logging"
	"github.com/GreyHak/satisfactory-save-monitor/internal/runctx"
)

const defaultPollInterval = time.Second

func NewSource(opts SourceOptions, logger *logging.Logger) *Source {
	if logger == nil {
		panic("gamelog.NewSource: logger must not be nil")
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultPollInterval
	}
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	return &Source{
		opts:   opts,
		logger: logger,
		tailer: &Tailer{Path: opts.Path, Fs: opts.Fs},
	}
}

// OnRotation registers fn to run after the log was seen rotating.
func (s *Source) OnRotation(fn func()) {
	s.onRotation = fn
}

// Run delivers every line of the log, history first, then each line as it is
// appended. A missing or unreadable file is waited out; only ctx ends Run.
func (s *Source) Run(ctx context.Context, out chan<- string) error {
	s.logger.Debug("starting log source",
		logging.Field("path", s.opts.Path),
		logging.Field("poll_interval", s.opts.PollInterval),
	)

	var events <-chan fsnotify.Event
	var watchErrors <-chan error
	var watcher *fsnotify.Watcher
	if s.opts.Watch {
		w, err := fsnotify.NewWatcher()
		if err != nil {
			s.logger.Warn("file notifications unavailable; polling only", logging.Field("error", err))
		} else {
			watcher = w
			defer watcher.Close()
			events = watcher.Events
			watchErrors = watcher.Errors
			s.ensureWatch(watcher)
		}
	}

	ticker := time.NewTicker(s.opts.PollInterval)
	defer ticker.Stop()

	if !s.drain(ctx, out) {
		return nil
	}
	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("stopping log source: context canceled", logging.Field("lines", s.lineCount))
			return nil
		case event, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if filepath.Clean(event.Name) != filepath.Clean(s.opts.Path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if !s.drain(ctx, out) {
				return nil
			}
		case err, ok := <-watchErrors:
			if !ok {
				watchErrors = nil
				continue
			}
			s.logger.Warn("watcher error", logging.Field("error", err))
		case <-ticker.C:
			if watcher != nil {
				s.ensureWatch(watcher)
			}
			if !s.drain(ctx, out) {
				return nil
			}
		}
	}
}

// ensureWatch subscribes to the log directory once it exists.
func (s *Source) ensureWatch(watcher *fsnotify.Watcher) {
	if s.watching {
		return
	}
	dir := filepath.Dir(s.opts.Path)
	if err := watcher.Add(dir); err != nil {
		return
	}
	s.watching = true
	s.logger.Debugf("watching directory: %s", dir)
}

// drain forwards every complete line currently available. It returns false
// once ctx is done.
func (s *Source) drain(ctx context.Context, out chan<- string) bool {
	lines, err := s.tailer.ReadNewLines()
	if err != nil {
		s.reportReadError(err)
		return ctx.Err() == nil
	}
	s.setHealth(healthTailing, nil)
	if s.tailer.Rotated() {
		s.logger.Info("log file rotated; reading from the start", logging.Field("path", s.opts.Path))
		if s.onRotation != nil {
			s.onRotation()
		}
	}
	for _, line := range lines {
		if !runctx.SendOrDone(ctx, "log source", s.logger, out, line) {
			return false
		}
		s.lineCount++
	}
	return true
}

func (s *Source) reportReadError(err error) {
	if errors.Is(err, fs.ErrNotExist) {
		// Drop the watch; the directory may be recreated.
		s.watching = false
		s.setHealth(healthMissing, err)
		return
	}
	s.setHealth(healthUnreadable, err)
}

func (s *Source) setHealth(next sourceHealth, err error) {
	if s.health == next {
		return
	}
	prev := s.health
	s.health = next
	switch next {
	case healthMissing:
		s.logger.Warn("log file not found; waiting for it to appear", logging.Field("path", s.opts.Path))
	case healthUnreadable:
		s.logger.Warn("log file unreadable; retrying", logging.Field("path", s.opts.Path), logging.Field("error", err))
	case healthTailing:
		if prev == healthUnknown {
			s.logger.Info("tailing log file", logging.Field("path", s.opts.Path))
		} else {
			s.logger.Info("log file available again", logging.Field("path", s.opts.Path))
		}
	}
}
