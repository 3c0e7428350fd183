package wire

import "errors"

var (
	// ErrConnectionLost means the peer went away before a full frame arrived.
	ErrConnectionLost = errors.New("connection lost")
	ErrInvalidFrame   = errors.New("invalid status frame")
)
