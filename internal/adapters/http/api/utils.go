package api

import (
	"encoding/json"
	"net/http"

	service "github.com/okian/clubhouse/internal/app"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeView renders a view state. A failed load is a bad gateway: the
// content backend is upstream of this process.
func writeView[T any](w http.ResponseWriter, v service.ViewState[T]) {
	status := http.StatusOK
	if v.Phase == service.Failed {
		status = http.StatusBadGateway
	}
	writeJSON(w, status, v)
}
