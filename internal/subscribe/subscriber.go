package subscribe

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/GreyHak/satisfactory-save-monitor/internal/logging"
	"github.com/GreyHak/satisfactory-save-monitor/internal/runstatus"
	"github.com/GreyHak/satisfactory-save-monitor/internal/wire"
)

const (
	defaultRetryDelay   = time.Second
	defaultRefusedDelay = 10 * time.Second
	defaultDialTimeout  = 5 * time.Second
)

// Sink receives decoded frames and link changes; display.Store is one.
type Sink interface {
	Apply(status wire.Status, receivedAt time.Time)
	SetLink(status string)
}

type Options struct {
	Address      string
	Port         int
	RetryDelay   time.Duration
	RefusedDelay time.Duration
	DialTimeout  time.Duration
}

type Subscriber struct {
	opts   Options
	sink   Sink
	logger *logging.Logger
	now    func() time.Time
}

func New(opts Options, sink Sink, logger *logging.Logger) *Subscriber {
	if sink == nil {
		panic("subscribe.New: sink must not be nil")
	}
	if logger == nil {
		panic("subscribe.New: logger must not be nil")
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = defaultRetryDelay
	}
	if opts.RefusedDelay <= 0 {
		opts.RefusedDelay = defaultRefusedDelay
	}
	if opts.DialTimeout <= 0 {
		opts.DialTimeout = defaultDialTimeout
	}
	return &Subscriber{opts: opts, sink: sink, logger: logger, now: time.Now}
}

func (s *Subscriber) Address() string {
	return net.JoinHostPort(s.opts.Address, strconv.Itoa(s.opts.Port))
}

// RunContext connects, reads frames into the sink and reconnects after any
// failure until ctx ends.
func (s *Subscriber) RunContext(ctx context.Context) error {
	s.sink.SetLink(runstatus.Connecting)
	defer s.sink.SetLink(runstatus.Disconnected)

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		err := s.session(ctx)
		if ctx.Err() != nil {
			return struct{}{}, backoff.Permanent(ctx.Err())
		}
		return struct{}{}, s.retryError(err)
	},
		backoff.WithBackOff(backoff.NewConstantBackOff(s.opts.RetryDelay)),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(func(err error, next time.Duration) {
			s.logger.Debug("reconnecting to server",
				logging.Field("address", s.Address()),
				logging.Field("error", err),
				logging.Field("next_retry", next.String()))
		}),
	)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		s.logger.Debug("stopping subscriber: context canceled")
		return nil
	}
	return err
}

// retryError maps a session failure to the delay before the next attempt:
// the long delay when the server refused, the short constant one otherwise.
func (s *Subscriber) retryError(err error) error {
	if IsConnectionRefused(err) {
		s.sink.SetLink(runstatus.WaitingForServer)
		s.logger.Info("server not accepting connections; waiting",
			logging.Field("address", s.Address()),
			logging.Field("retry_in", s.opts.RefusedDelay.String()))
		return &backoff.RetryAfterError{Duration: s.opts.RefusedDelay}
	}
	s.sink.SetLink(runstatus.Reconnecting)
	if errors.Is(err, wire.ErrConnectionLost) {
		s.logger.Warn("lost connection to the server", logging.Field("address", s.Address()))
	} else {
		s.logger.Warn("server connection failed", logging.Field("address", s.Address()), logging.Field("error", err))
	}
	return err
}

func (s *Subscriber) session(ctx context.Context) error {
	dialer := net.Dialer{Timeout: s.opts.DialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", s.Address())
	if err != nil {
		if isRefusedErrno(err) {
			return fmt.Errorf("%w: %w", ErrConnectionRefused, err)
		}
		return err
	}
	defer conn.Close()
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	s.sink.SetLink(runstatus.Connected)
	s.logger.Info("connected; monitoring for status", logging.Field("address", s.Address()))
	for {
		status, err := wire.ReadStatus(conn)
		if err != nil {
			return err
		}
		s.sink.Apply(status, s.now())
		s.logger.Debug("received status",
			logging.Field("saving", status.IsSaving),
			logging.Field("next_save", status.PredictedNextSaveStart),
			logging.Field("save_end", status.PredictedSaveEnd))
	}
}
