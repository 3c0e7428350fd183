//go:build !windows

package subscribe

import (
	"errors"
	"syscall"
)

func isRefusedErrno(err error) bool {
	return errors.Is(err, syscall.ECONNREFUSED)
}
