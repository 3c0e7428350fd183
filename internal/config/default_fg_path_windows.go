//go:build windows

package config

import (
	"os"
	"path/filepath"
)

func DefaultFGPath() string {
	root := os.Getenv("ProgramFiles(x86)")
	if root == "" {
		return ""
	}
	return filepath.Join(root, "Steam", "steamapps", "common", "SatisfactoryDedicatedServer", "FactoryGame")
}
