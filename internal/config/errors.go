package config

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
)

// ConfigurationError lists every required key that is missing or invalid.
// It is reported at startup before any fetch is attempted.
type ConfigurationError struct {
	Missing []string
	Invalid map[string]string
}

func (e *ConfigurationError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing "+strings.Join(e.Missing, ", "))
	}
	for _, k := range sortedKeys(e.Invalid) {
		parts = append(parts, fmt.Sprintf("%s %s", k, e.Invalid[k]))
	}
	return fmt.Sprintf("%s: %s", ErrInvalidConfig, strings.Join(parts, "; "))
}

func (e *ConfigurationError) Unwrap() error { return ErrInvalidConfig }
