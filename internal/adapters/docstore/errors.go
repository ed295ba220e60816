package docstore

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors.
var (
	ErrNotFound         = errors.New("document not found")
	ErrConflict         = errors.New("document already exists")
	ErrUnsupportedQuery = errors.New("unsupported query")
)

// APIError is an error body returned by the remote document service.
type APIError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    int    `json:"code"`
	Status  int    `json:"-"`
}

func (e *APIError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("document service: %s (%d %s)", e.Message, e.Status, e.Type)
	}
	return fmt.Sprintf("document service: %s (%d)", e.Message, e.Status)
}

// Is maps HTTP statuses onto the package sentinels.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrConflict:
		return e.Status == http.StatusConflict
	}
	return false
}
