package config

import "path/filepath"

func LogPath(fgPath string) string {
	return filepath.Join(fgPath, "Saved", "Logs", "FactoryGame.log")
}

// SeedConfigPath points at the dedicated server's GameUserSettings.ini,
// which lives under WindowsServer or LinuxServer depending on the host.
func SeedConfigPath(fgPath, goos string) string {
	platform := "LinuxServer"
	if goos == "windows" {
		platform = "WindowsServer"
	}
	return filepath.Join(fgPath, "Saved", "Config", platform, "GameUserSettings.ini")
}
