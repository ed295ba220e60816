package forms

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel errors.
var (
	ErrValidationFailed = errors.New("validation failed")
	ErrUnknownKind      = errors.New("unknown form kind")
)

// ValidationError lists per-field problems. It matches ErrValidationFailed
// under errors.Is.
type ValidationError struct {
	Fields map[string]string
	Kind   string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+e.Fields[name])
	}
	return fmt.Sprintf("%s form: %s (%s)", e.Kind, ErrValidationFailed, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error { return ErrValidationFailed }
