package publish

import (
	"context"
	"errors"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/GreyHak/satisfactory-save-monitor/internal/logging"
	"github.com/GreyHak/satisfactory-save-monitor/internal/metrics"
	"github.com/GreyHak/satisfactory-save-monitor/internal/predict"
	"github.com/GreyHak/satisfactory-save-monitor/internal/runctx"
)

const (
	defaultProbeTimeout = time.Second
	defaultWriteTimeout = 5 * time.Second
	bindRetryDelay      = time.Second
	bindRetryMaxDelay   = 30 * time.Second
	acceptRetryDelay    = 100 * time.Millisecond
)

type Options struct {
	Host         string
	Port         int
	ProbeTimeout time.Duration
	WriteTimeout time.Duration
}

// Server pushes the shared prediction to every connected observer.
type Server struct {
	opts    Options
	store   *predict.Store
	logger  *logging.Logger
	metrics *metrics.Metrics
}

func NewServer(opts Options, store *predict.Store, logger *logging.Logger, m *metrics.Metrics) *Server {
	if store == nil {
		panic("publish.NewServer: store must not be nil")
	}
	if logger == nil {
		panic("publish.NewServer: logger must not be nil")
	}
	if opts.ProbeTimeout <= 0 {
		opts.ProbeTimeout = defaultProbeTimeout
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = defaultWriteTimeout
	}
	return &Server{opts: opts, store: store, logger: logger, metrics: m}
}

func (s *Server) Address() string {
	return net.JoinHostPort(s.opts.Host, strconv.Itoa(s.opts.Port))
}

func (s *Server) RunContext(ctx context.Context) error {
	return s.ListenAndServe(ctx)
}

// ListenAndServe binds the observer port, retrying while it is busy, and
// serves until ctx ends.
func (s *Server) ListenAndServe(ctx context.Context) error {
	addr := s.Address()
	var lc net.ListenConfig

	retry := backoff.NewExponentialBackOff()
	retry.InitialInterval = bindRetryDelay
	retry.MaxInterval = bindRetryMaxDelay
	retry.Reset()

	ln, err := backoff.Retry(ctx, func() (net.Listener, error) {
		ln, err := lc.Listen(ctx, "tcp", addr)
		if err != nil {
			if ctx.Err() != nil {
				return nil, backoff.Permanent(ctx.Err())
			}
			return nil, err
		}
		return ln, nil
	},
		backoff.WithBackOff(retry),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(func(err error, next time.Duration) {
			s.logger.Warn("cannot bind observer port; retrying",
				logging.Field("address", addr),
				logging.Field("error", err),
				logging.Field("next_retry", next.String()))
		}),
	)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil
		}
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts observers on ln until ctx ends, then closes ln and waits for
// every publisher to return.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	stop := context.AfterFunc(ctx, func() { _ = ln.Close() })
	defer stop()
	defer ln.Close()

	s.logger.Info("listening for observers", logging.Field("address", ln.Addr().String()))

	var wg sync.WaitGroup
	defer wg.Wait()
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				s.logger.Debug("stopping observer listener: context canceled")
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return err
			}
			s.logger.Warn("accept failed", logging.Field("error", err))
			if !runctx.SleepOrDone(ctx, acceptRetryDelay) {
				return nil
			}
			continue
		}
		wg.Go(func() {
			s.serveObserver(ctx, conn)
		})
	}
}
