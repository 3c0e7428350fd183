package app

import "errors"

var (
	ErrSeedInterval   = errors.New("savemon: autosave interval seed unreadable")
	ErrRendererExited = errors.New("savemon: display renderer stopped")
)
