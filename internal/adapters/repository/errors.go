package repository

import "errors"

// Sentinel kinds for dataset store errors.
var (
	ErrClosed = errors.New("store closed")
)
