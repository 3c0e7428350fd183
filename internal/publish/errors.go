package publish

import (
	"errors"
	"io"
	"net"
	"syscall"
)

// IsClosedConn reports errors that mean the observer simply went away.
func IsClosedConn(err error) bool {
	return errors.Is(err, io.EOF) ||
		errors.Is(err, net.ErrClosed) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE)
}
