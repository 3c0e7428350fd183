//go:build !windows

package config

import (
	"os"
	"path/filepath"
)

func DefaultFGPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".steam", "steam", "steamapps", "common", "SatisfactoryDedicatedServer", "FactoryGame")
}
