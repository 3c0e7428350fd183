package runstatus

import "strings"

// Link states an observer reports for its connection to the server.
const (
	Connecting       = "Connecting"
	Connected        = "Connected"
	Reconnecting     = "Reconnecting"
	WaitingForServer = "Waiting for server"
	Disconnected     = "Disconnected"
)

const (
	KeyConnecting       = "connecting"
	KeyConnected        = "connected"
	KeyReconnecting     = "reconnecting"
	KeyWaitingForServer = "waiting for server"
	KeyDisconnected     = "disconnected"
)

func Key(status string) string {
	return strings.ToLower(strings.TrimSpace(status))
}

// IsLive reports whether updates can currently arrive over the link.
func IsLive(status string) bool {
	return Key(status) == KeyConnected
}
