package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
)

// WatchSettings are the observer defaults remembered between runs.
type WatchSettings struct {
	Address string `json:"address"`
	Port    int    `json:"port,omitempty"`
	Plain   bool   `json:"plain,omitempty"`
	NoAlert bool   `json:"no_alert,omitempty"`
}

func SettingsPath() (string, error) {
	root, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, "satisfactory-save-monitor", "watch-settings.json"), nil
}

func LoadSettings() (WatchSettings, error) {
	path, err := SettingsPath()
	if err != nil {
		return WatchSettings{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return WatchSettings{}, err
	}
	var settings WatchSettings
	if err := json.Unmarshal(data, &settings); err != nil {
		return WatchSettings{}, err
	}
	return settings, nil
}

func SaveSettings(settings WatchSettings) error {
	path, err := SettingsPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	payload, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o600)
}

// MergeOptionsWithSettings fills unset watch flags from saved settings and
// falls back to the default port.
func MergeOptionsWithSettings(cli WatchOptions, saved WatchSettings) WatchOptions {
	cli.Address = strings.TrimSpace(cli.Address)
	if cli.Address == "" {
		cli.Address = strings.TrimSpace(saved.Address)
	}
	if cli.Port == 0 {
		cli.Port = saved.Port
	}
	if cli.Port == 0 {
		cli.Port = DefaultPort
	}
	if !cli.Plain {
		cli.Plain = saved.Plain
	}
	if !cli.NoAlert {
		cli.NoAlert = saved.NoAlert
	}
	return cli
}

func SettingsFromOptions(opts WatchOptions) WatchSettings {
	return WatchSettings{
		Address: strings.TrimSpace(opts.Address),
		Port:    opts.Port,
		Plain:   opts.Plain,
		NoAlert: opts.NoAlert,
	}
}
