package app

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/GreyHak/satisfactory-save-monitor/internal/alert"
	"github.com/GreyHak/satisfactory-save-monitor/internal/config"
	"github.com/GreyHak/satisfactory-save-monitor/internal/display"
	"github.com/GreyHak/satisfactory-save-monitor/internal/logging"
	"github.com/GreyHak/satisfactory-save-monitor/internal/subscribe"
	"github.com/GreyHak/satisfactory-save-monitor/internal/wire"
)

// Ticker produces the frame to show at a given instant.
type Ticker interface {
	Tick(now time.Time) display.Frame
}

// Renderer draws frames until ctx ends or the user quits.
type Renderer interface {
	Run(ctx context.Context, frames Ticker) error
}

// WatchCallbacks lets a renderer follow link changes as they happen.
type WatchCallbacks struct {
	OnStatusChange func(string)
}

// WatchApp receives predictions from a server and drives a renderer with
// locally extrapolated frames.
type WatchApp struct {
	opts       config.WatchOptions
	logger     *logging.Logger
	store      *display.Store
	display    *display.Display
	subscriber *subscribe.Subscriber
	renderer   Renderer
	alerter    alert.Alerter
	hooks      WatchCallbacks
	status     runtimeStatusState
}

func NewWatcher(opts config.WatchOptions, logger *logging.Logger, renderer Renderer, alerter alert.Alerter, hooks WatchCallbacks) *WatchApp {
	if logger == nil {
		panic("app.NewWatcher: logger must not be nil")
	}
	if renderer == nil {
		panic("app.NewWatcher: renderer must not be nil")
	}
	if alerter == nil {
		alerter = alert.Nop{}
	}
	a := &WatchApp{
		opts:     opts,
		logger:   logger,
		store:    display.NewStore(),
		renderer: renderer,
		alerter:  alerter,
		hooks:    hooks,
	}
	a.display = display.New(a.store, display.Options{
		Refresh:        opts.Refresh,
		StaleTolerance: opts.StaleTolerance,
	})
	a.subscriber = subscribe.New(subscribe.Options{
		Address:      opts.Address,
		Port:         opts.Port,
		RetryDelay:   opts.RetryDelay,
		RefusedDelay: opts.RefusedDelay,
	}, watchSink{app: a}, logger)
	return a
}

func (a *WatchApp) Address() string {
	return a.subscriber.Address()
}

func (a *WatchApp) RunContext(ctx context.Context) error {
	a.logger.Info("save monitor watcher starting",
		logging.Field("address", a.subscriber.Address()),
		logging.Field("refresh", a.display.Refresh()),
	)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.subscriber.RunContext(gctx)
	})
	g.Go(func() error {
		defer cancel()
		if err := a.renderer.Run(gctx, a); err != nil && gctx.Err() == nil {
			return fmt.Errorf("%w: %w", ErrRendererExited, err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		a.logger.Warn("save monitor watcher stopped with error", logging.Field("error", err))
		return err
	}
	a.logger.Info("save monitor watcher stopped")
	return nil
}

// Tick advances the display and sounds the alert on the frame a save begins.
func (a *WatchApp) Tick(now time.Time) display.Frame {
	frame := a.display.Tick(now)
	if frame.Alert {
		a.logger.Info("save starting",
			logging.Field("speculative", frame.Speculative),
			logging.Field("save_end", frame.SaveEnd),
		)
		go func() {
			if err := a.alerter.Alert(); err != nil {
				a.logger.Debug("alert failed", logging.Field("error", err))
			}
		}()
	}
	return frame
}

func (a *WatchApp) setLink(status string) {
	a.store.SetLink(status)
	logStatusTransition(a.logger, &a.status, status, a.hooks.OnStatusChange)
}

type watchSink struct {
	app *WatchApp
}

func (s watchSink) Apply(status wire.Status, receivedAt time.Time) {
	s.app.logger.Debug("prediction received",
		logging.Field("saving", status.IsSaving),
		logging.Field("next_save_start", status.PredictedNextSaveStart),
		logging.Field("save_end", status.PredictedSaveEnd),
	)
	s.app.store.Apply(status, receivedAt)
}

func (s watchSink) SetLink(status string) {
	s.app.setLink(status)
}
