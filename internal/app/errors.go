package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrSubmissionFailed  = errors.New("submission failed")
	ErrAlreadySubscribed = errors.New("already subscribed")
	ErrStale             = errors.New("result superseded by a newer request")
	ErrClosed            = errors.New("view closed")
	ErrNotStarted        = errors.New("service not started")
)
