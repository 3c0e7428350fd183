package runtime

import (
	"context"

	"github.com/GreyHak/satisfactory-save-monitor/internal/alert"
	"github.com/GreyHak/satisfactory-save-monitor/internal/app"
	"github.com/GreyHak/satisfactory-save-monitor/internal/config"
	"github.com/GreyHak/satisfactory-save-monitor/internal/logging"
)

type Service interface {
	RunContext(ctx context.Context) error
}

// WatchHooks carries the pieces of the watch service chosen by the front end.
type WatchHooks struct {
	Renderer       app.Renderer
	Alerter        alert.Alerter
	OnStatusChange func(string)
}

func NewServeService(opts config.ServeOptions, logger *logging.Logger) (Service, error) {
	if logger == nil {
		panic("runtime.NewServeService: logger must not be nil")
	}
	if err := config.ValidateServe(opts); err != nil {
		return nil, err
	}
	logger.Debug("constructed serve service",
		logging.Field("fg_path", opts.FGPath),
		logging.Field("log_file", opts.LogFile),
		logging.Field("settings_file", opts.SettingsFile),
		logging.Field("listen", opts.Listen),
		logging.Field("port", opts.Port),
		logging.Field("metrics_listen", opts.MetricsListen),
	)
	return app.NewServer(opts, logger, app.ServerDeps{}), nil
}

func NewWatchService(opts config.WatchOptions, logger *logging.Logger, hooks WatchHooks) (Service, error) {
	if logger == nil {
		panic("runtime.NewWatchService: logger must not be nil")
	}
	if err := config.ValidateWatch(opts); err != nil {
		return nil, err
	}
	logger.Debug("constructed watch service",
		logging.Field("address", opts.Address),
		logging.Field("port", opts.Port),
		logging.Field("refresh", opts.Refresh),
		logging.Field("plain", opts.Plain),
	)
	return app.NewWatcher(opts, logger, hooks.Renderer, hooks.Alerter, app.WatchCallbacks{
		OnStatusChange: hooks.OnStatusChange,
	}), nil
}
