package api

import (
	"errors"
	"net/http"

	"github.com/okian/clubhouse/internal/adapters/docstore"
	service "github.com/okian/clubhouse/internal/app"
	"github.com/okian/clubhouse/internal/domain/forms"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest = errors.New("bad request")
)

type errorResponse struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// statusFor maps a service error to an HTTP status and error code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, forms.ErrValidationFailed), errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, "validation_failed"
	case errors.Is(err, service.ErrAlreadySubscribed):
		return http.StatusConflict, "already_subscribed"
	case errors.Is(err, service.ErrSubmissionFailed):
		return http.StatusBadGateway, "submission_failed"
	case errors.Is(err, docstore.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, service.ErrClosed):
		return http.StatusServiceUnavailable, "unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	status, code := statusFor(err)
	resp := errorResponse{Code: code, Message: err.Error()}
	var verr *forms.ValidationError
	if errors.As(err, &verr) {
		resp.Fields = verr.Fields
	}
	writeJSON(w, status, resp)
}
