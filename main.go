package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"os/signal"
	goruntime "runtime"
	"strconv"
	"syscall"

	flags "github.com/jessevdk/go-flags"
	"github.com/mattn/go-isatty"

	"github.com/GreyHak/satisfactory-save-monitor/internal/alert"
	"github.com/GreyHak/satisfactory-save-monitor/internal/app"
	"github.com/GreyHak/satisfactory-save-monitor/internal/config"
	"github.com/GreyHak/satisfactory-save-monitor/internal/logging"
	"github.com/GreyHak/satisfactory-save-monitor/internal/runtime"
	"github.com/GreyHak/satisfactory-save-monitor/internal/ui/console"
	"github.com/GreyHak/satisfactory-save-monitor/internal/ui/tui"
)

var BuildVersion = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	rootCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	opts, command, err := config.ParseOptions(os.Args[1:])
	if err != nil {
		var flagErr *flags.Error
		if errors.As(err, &flagErr) && flagErr.Type == flags.ErrHelp {
			return 0
		}
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	enableVirtualTerminal()
	logger := logging.New(opts.Debug)
	defer func() {
		_ = logger.Close()
	}()
	if opts.PersistLogs {
		if err := logger.EnableFilePersistence(0); err != nil {
			logger.Warn("failed to enable file log persistence", logging.Field("error", err))
		}
	}
	logger.Debug("starting save monitor", logging.Field("version", BuildVersion), logging.Field("command", command))

	switch command {
	case config.CommandServe:
		err = runServe(rootCtx, opts.Serve, logger)
	case config.CommandWatch:
		err = runWatch(rootCtx, opts.Watch, logger)
	default:
		err = fmt.Errorf("unknown command %q", command)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runServe(ctx context.Context, opts config.ServeOptions, logger *logging.Logger) error {
	opts = config.ResolveServe(opts, goruntime.GOOS)
	service, err := runtime.NewServeService(opts, logger)
	if err != nil {
		return err
	}

	lock, lockedByOther, err := acquireInstanceLock(opts.Port)
	if err != nil {
		return fmt.Errorf("failed to initialize single-instance lock: %w", err)
	}
	if lockedByOther {
		return fmt.Errorf("a save monitor is already serving port %d", opts.Port)
	}
	defer func() {
		_ = lock.Release()
	}()

	return service.RunContext(ctx)
}

func runWatch(ctx context.Context, opts config.WatchOptions, logger *logging.Logger) error {
	saved, err := config.LoadSettings()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn("ignoring unreadable watch settings", logging.Field("error", err))
	}
	opts = config.MergeOptionsWithSettings(opts, saved)
	if opts.Remember {
		if err := config.SaveSettings(config.SettingsFromOptions(opts)); err != nil {
			logger.Warn("failed to save watch settings", logging.Field("error", err))
		}
	}

	interactive := !opts.Plain && isatty.IsTerminal(os.Stdout.Fd())
	var renderer app.Renderer
	if interactive {
		logger.SetTerminalOutputEnabled(false)
		renderer = tui.New(tui.Options{Address: net.JoinHostPort(opts.Address, strconv.Itoa(opts.Port))}, logger)
	} else {
		renderer = console.New(os.Stdout)
	}

	alerter := alert.New(alert.Options{
		Disabled:  opts.NoAlert,
		Frequency: opts.AlertFrequency,
		Duration:  opts.AlertDuration,
		Fallback:  os.Stdout,
	})

	service, err := runtime.NewWatchService(opts, logger, runtime.WatchHooks{
		Renderer: renderer,
		Alerter:  alerter,
	})
	if err != nil {
		return err
	}
	return service.RunContext(ctx)
}
