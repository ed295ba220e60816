package model

import "errors"

// Sentinel kinds for model validation errors.
var (
	ErrMissingStart   = errors.New("event start is required")
	ErrEndBeforeStart = errors.New("event end is before its start")
)
