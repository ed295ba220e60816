package repository

import (
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	ErrStatusField   = errors.New("status is set by the store, not by callers")
	ErrInvalidSize   = errors.New("invalid image size")
	ErrUnknownBucket = errors.New("unknown image bucket")
)

// RepositoryError reports a failed document operation. The cause stays
// reachable through errors.Is and errors.As.
type RepositoryError struct {
	Err        error
	Op         string
	Collection string
}

func (e *RepositoryError) Error() string {
	return fmt.Sprintf("repository %s %s: %v", e.Op, e.Collection, e.Err)
}

func (e *RepositoryError) Unwrap() error { return e.Err }
