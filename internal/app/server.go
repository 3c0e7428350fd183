package app

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/GreyHak/satisfactory-save-monitor/internal/config"
	"github.com/GreyHak/satisfactory-save-monitor/internal/gamelog"
	"github.com/GreyHak/satisfactory-save-monitor/internal/logging"
	"github.com/GreyHak/satisfactory-save-monitor/internal/metrics"
	"github.com/GreyHak/satisfactory-save-monitor/internal/predict"
	"github.com/GreyHak/satisfactory-save-monitor/internal/publish"
	"github.com/GreyHak/satisfactory-save-monitor/internal/runctx"
)

const lineBufferSize = 256

// ServerDeps overrides the collaborators a ServerApp builds by default.
type ServerDeps struct {
	Fs      afero.Fs
	Metrics *metrics.Metrics
	Clock   func() time.Time
	// Listener, when set, is served instead of binding the configured port.
	Listener        net.Listener
	MetricsListener net.Listener
}

// ServerApp tails the dedicated server log, keeps the save prediction and
// publishes it to observers.
type ServerApp struct {
	opts      config.ServeOptions
	deps      ServerDeps
	logger    *logging.Logger
	store     *predict.Store
	predictor *predict.Predictor
	source    *gamelog.Source
	server    *publish.Server
}

func NewServer(opts config.ServeOptions, logger *logging.Logger, deps ServerDeps) *ServerApp {
	if logger == nil {
		panic("app.NewServer: logger must not be nil")
	}
	if deps.Fs == nil {
		deps.Fs = afero.NewOsFs()
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.New()
	}

	a := &ServerApp{opts: opts, deps: deps, logger: logger}
	a.store = predict.NewStore(a.seedInterval())

	var predictOpts []predict.Option
	if deps.Clock != nil {
		predictOpts = append(predictOpts, predict.WithClock(deps.Clock))
	}
	a.predictor = predict.NewPredictor(a.store, logger, predictOpts...)

	_, onDisk := deps.Fs.(*afero.OsFs)
	a.source = gamelog.NewSource(gamelog.SourceOptions{
		Path:         opts.LogFile,
		Fs:           deps.Fs,
		PollInterval: opts.PollInterval,
		Watch:        onDisk,
	}, logger)
	a.source.OnRotation(deps.Metrics.RecordRotation)

	a.server = publish.NewServer(publish.Options{
		Host:         opts.Listen,
		Port:         opts.Port,
		ProbeTimeout: opts.ProbeTimeout,
		WriteTimeout: opts.WriteTimeout,
	}, a.store, logger, deps.Metrics)
	deps.Metrics.SetPrediction(a.store.Snapshot())
	return a
}

func (a *ServerApp) Store() *predict.Store {
	return a.store
}

// seedInterval reads the configured autosave interval once at startup.
func (a *ServerApp) seedInterval() float64 {
	fallback := a.opts.DefaultInterval
	if a.opts.SettingsFile == "" {
		return fallback
	}
	interval, found, err := config.LoadAutosaveInterval(a.deps.Fs, a.opts.SettingsFile)
	if err != nil {
		a.logger.Warn("using default autosave interval",
			logging.Field("path", a.opts.SettingsFile),
			logging.Field("interval_seconds", fallback),
			logging.Field("error", fmt.Errorf("%w: %w", ErrSeedInterval, err)),
		)
		return fallback
	}
	if !found {
		a.logger.Info("autosave interval not configured; using default",
			logging.Field("path", a.opts.SettingsFile),
			logging.Field("interval_seconds", fallback),
		)
		return fallback
	}
	a.logger.Info("loaded autosave interval",
		logging.Field("path", a.opts.SettingsFile),
		logging.Field("interval_seconds", interval),
	)
	return interval
}

func (a *ServerApp) RunContext(ctx context.Context) error {
	a.logger.Info("save monitor server starting",
		logging.Field("log_file", a.opts.LogFile),
		logging.Field("address", a.server.Address()),
		logging.Field("interval_seconds", a.store.Snapshot().AutosaveIntervalSeconds),
	)

	lines := make(chan string, lineBufferSize)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(lines)
		return a.source.Run(gctx, lines)
	})
	g.Go(func() error {
		return a.consumeLines(gctx, lines)
	})
	g.Go(func() error {
		if a.deps.Listener != nil {
			return a.server.Serve(gctx, a.deps.Listener)
		}
		return a.server.ListenAndServe(gctx)
	})
	switch {
	case a.deps.MetricsListener != nil:
		g.Go(func() error {
			return a.deps.Metrics.ServeListener(gctx, a.deps.MetricsListener, a.logger)
		})
	case a.opts.MetricsListen != "":
		g.Go(func() error {
			return a.deps.Metrics.Serve(gctx, a.opts.MetricsListen, a.logger)
		})
	}

	if err := g.Wait(); err != nil {
		a.logger.Warn("save monitor server stopped with error", logging.Field("error", err))
		return err
	}
	a.logger.Info("save monitor server stopped")
	return nil
}

// consumeLines classifies each log line and feeds events to the predictor.
func (a *ServerApp) consumeLines(ctx context.Context, lines <-chan string) error {
	for {
		line, ok := runctx.RecvOrDone(ctx, "log line classifier", a.logger, lines)
		if !ok {
			return nil
		}
		ev, matched, err := gamelog.Classify(line)
		if err != nil {
			a.deps.Metrics.RecordMalformedLine()
			a.logger.Warn("skipping malformed log line",
				logging.Field("line", logging.Truncate(line)),
				logging.Field("error", err),
			)
			continue
		}
		if !matched {
			continue
		}
		a.deps.Metrics.RecordLogEvent(ev.Kind.String())
		rec, changed := a.predictor.Apply(ctx, ev)
		if changed {
			a.deps.Metrics.SetPrediction(rec)
		}
	}
}
