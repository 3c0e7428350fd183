package subscribe

import "errors"

// ErrConnectionRefused means nothing is listening at the server address yet.
var ErrConnectionRefused = errors.New("connection refused")

func IsConnectionRefused(err error) bool {
	return errors.Is(err, ErrConnectionRefused) || isRefusedErrno(err)
}
