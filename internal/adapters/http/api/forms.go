package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/okian/clubhouse/internal/domain/model"
	"github.com/okian/clubhouse/pkg/logger"
)

const (
	// maxFormBytes bounds a submission body.
	maxFormBytes = 64 << 10
	// refreshTimeout bounds a manual refresh once the caller has gone.
	refreshTimeout = 30 * time.Second
)

// FormsHandler accepts submissions and manual refreshes.
type FormsHandler struct {
	forms     Submitter
	refresher Refresher
	log       logger.Logger
}

// NewFormsHandler creates a new forms handler.
func NewFormsHandler(forms Submitter, refresher Refresher, log logger.Logger) *FormsHandler {
	return &FormsHandler{forms: forms, refresher: refresher, log: log}
}

type submitResponse struct {
	Status string `json:"status"`
	ID     string `json:"id"`
}

// HandleSubmit handles POST /v1/forms/{kind}. The body is a flat JSON
// object of string fields.
func (h *FormsHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	kind := model.SubmissionKind(r.PathValue("kind"))

	var fields map[string]string
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxFormBytes))
	if err := dec.Decode(&fields); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}

	id, err := h.forms.Submit(r.Context(), kind, fields)
	if err != nil {
		h.log.Info(r.Context(), "submission rejected",
			logger.String("kind", string(kind)),
			logger.Error(err),
		)
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, submitResponse{Status: "accepted", ID: id})
}

// HandleRefresh handles POST /v1/refresh. The refresh outlives the request
// so a disconnecting client cannot leave the views half reloaded.
func (h *FormsHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), refreshTimeout)
	defer cancel()
	if err := h.refresher.Refresh(ctx); err != nil {
		h.log.Warn(r.Context(), "refresh failed", logger.Error(err))
		writeError(w, http.StatusBadGateway, "refresh_failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
