package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	flags "github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
)

const (
	CommandServe = "serve"
	CommandWatch = "watch"

	DefaultPort            = 15001
	DefaultIntervalSeconds = 300.0
	maxDisplayRefresh      = 5 * time.Second
)

type Options struct {
	Debug       bool `long:"debug" env:"SAVEMON_DEBUG" description:"Enable verbose debug output"`
	PersistLogs bool `long:"persist-logs" env:"SAVEMON_PERSIST_LOGS" description:"Also write a rotating JSONL log under the user cache directory"`

	Serve ServeOptions `command:"serve" description:"Tail the dedicated server log and publish save predictions"`
	Watch WatchOptions `command:"watch" description:"Connect to a server and count down to its next save"`
}

type ServeOptions struct {
	FGPath          string        `long:"fg-path" env:"SAVEMON_FG_PATH" description:"FactoryGame folder of the dedicated server"`
	LogFile         string        `long:"log-file" env:"SAVEMON_LOG_FILE" description:"FactoryGame.log to tail (overrides --fg-path)"`
	SettingsFile    string        `long:"settings-file" env:"SAVEMON_SETTINGS_FILE" description:"GameUserSettings.ini holding the seed autosave interval (overrides --fg-path)"`
	Listen          string        `long:"listen" env:"SAVEMON_LISTEN" description:"Host to bind; empty binds all interfaces"`
	Port            int           `long:"port" env:"SAVEMON_PORT" default:"15001" description:"TCP port observers connect to"`
	MetricsListen   string        `long:"metrics-listen" env:"SAVEMON_METRICS_LISTEN" description:"Serve Prometheus metrics on this address (e.g. :9115); disabled when empty"`
	PollInterval    time.Duration `long:"poll-interval" env:"SAVEMON_POLL_INTERVAL" default:"1s" description:"How often the log is checked when no file events arrive"`
	ProbeTimeout    time.Duration `long:"probe-timeout" env:"SAVEMON_PROBE_TIMEOUT" default:"1s" description:"Observer liveness probe timeout"`
	WriteTimeout    time.Duration `long:"write-timeout" env:"SAVEMON_WRITE_TIMEOUT" default:"5s" description:"Deadline for sending one update to an observer"`
	DefaultInterval float64       `long:"default-interval" env:"SAVEMON_DEFAULT_INTERVAL" default:"300" description:"Autosave interval in seconds when the settings file has none"`
}

type WatchOptions struct {
	Address        string        `long:"address" env:"SAVEMON_ADDRESS" description:"Server IP address or host name"`
	Port           int           `long:"port" env:"SAVEMON_PORT" description:"Server TCP port (default 15001)"`
	Refresh        time.Duration `long:"refresh" env:"SAVEMON_REFRESH" default:"1s" description:"Display refresh cadence (below 5s)"`
	StaleTolerance time.Duration `long:"stale-tolerance" env:"SAVEMON_STALE_TOLERANCE" default:"3s" description:"How far past its predicted end a snapshot may be before showing waiting"`
	Plain          bool          `long:"plain" env:"SAVEMON_PLAIN" description:"Print plain text lines instead of the interactive screen"`
	NoAlert        bool          `long:"no-alert" env:"SAVEMON_NO_ALERT" description:"Do not sound an alert when a save begins"`
	AlertFrequency uint32        `long:"alert-frequency" env:"SAVEMON_ALERT_FREQUENCY" default:"2500" description:"Alert tone frequency in Hz (Windows)"`
	AlertDuration  time.Duration `long:"alert-duration" env:"SAVEMON_ALERT_DURATION" default:"200ms" description:"Alert tone length (Windows)"`
	RetryDelay     time.Duration `long:"retry-delay" env:"SAVEMON_RETRY_DELAY" default:"1s" description:"Delay before reconnecting after a transient error"`
	RefusedDelay   time.Duration `long:"refused-delay" env:"SAVEMON_REFUSED_DELAY" default:"10s" description:"Delay before reconnecting after the server refused the connection"`
	Remember       bool          `long:"remember" env:"SAVEMON_REMEMBER" description:"Save address and port as defaults for later runs"`
}

// ParseOptions loads .env, parses args and reports which sub-command ran.
func ParseOptions(args []string) (Options, string, error) {
	_ = godotenv.Load()
	opts := Options{}
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.ParseArgs(args); err != nil {
		return Options{}, "", err
	}
	if parser.Active == nil {
		return Options{}, "", errors.New("a command is required: serve or watch")
	}
	return opts, parser.Active.Name, nil
}

// ResolveServe fills log and settings paths from the FactoryGame folder.
func ResolveServe(opts ServeOptions, goos string) ServeOptions {
	opts.FGPath = strings.TrimSpace(opts.FGPath)
	if opts.FGPath == "" {
		opts.FGPath = DefaultFGPath()
	}
	if strings.TrimSpace(opts.LogFile) == "" && opts.FGPath != "" {
		opts.LogFile = LogPath(opts.FGPath)
	}
	if strings.TrimSpace(opts.SettingsFile) == "" && opts.FGPath != "" {
		opts.SettingsFile = SeedConfigPath(opts.FGPath, goos)
	}
	return opts
}

func ValidateServe(opts ServeOptions) error {
	if strings.TrimSpace(opts.LogFile) == "" {
		return errors.New("set either --fg-path or --log-file")
	}
	if opts.Port <= 0 || opts.Port > 65535 {
		return fmt.Errorf("port %d out of range", opts.Port)
	}
	if opts.PollInterval <= 0 {
		return errors.New("poll interval must be positive")
	}
	if opts.ProbeTimeout <= 0 {
		return errors.New("probe timeout must be positive")
	}
	if opts.DefaultInterval < 0 {
		return errors.New("default interval must not be negative")
	}
	return nil
}

func ValidateWatch(opts WatchOptions) error {
	if strings.TrimSpace(opts.Address) == "" {
		return errors.New("server address is required")
	}
	if opts.Port <= 0 || opts.Port > 65535 {
		return fmt.Errorf("port %d out of range", opts.Port)
	}
	if opts.Refresh <= 0 || opts.Refresh >= maxDisplayRefresh {
		return fmt.Errorf("refresh must be between 0 and %s", maxDisplayRefresh)
	}
	if opts.StaleTolerance < 0 {
		return errors.New("stale tolerance must not be negative")
	}
	if opts.RetryDelay <= 0 || opts.RefusedDelay <= 0 {
		return errors.New("retry delays must be positive")
	}
	return nil
}
