//go:build windows

package subscribe

import (
	"errors"
	"syscall"

	"golang.org/x/sys/windows"
)

func isRefusedErrno(err error) bool {
	var errno syscall.Errno
	if !errors.As(err, &errno) {
		return false
	}
	return uintptr(errno) == uintptr(windows.WSAECONNREFUSED) || errno == syscall.ECONNREFUSED
}
