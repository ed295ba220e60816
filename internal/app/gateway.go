package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/okian/clubhouse/internal/adapters/docstore"
	"github.com/okian/clubhouse/internal/domain/forms"
	"github.com/okian/clubhouse/internal/domain/model"
	"github.com/okian/clubhouse/internal/domain/temporal"
	"github.com/okian/clubhouse/pkg/logger"
	"github.com/okian/clubhouse/pkg/metrics"
)

// SubmissionStore persists contact messages or team applications.
type SubmissionStore interface {
	Create(ctx context.Context, fields map[string]string) (model.Submission, error)
}

// SubscriberStore persists newsletter subscriptions.
type SubscriberStore interface {
	Subscribe(ctx context.Context, email string) (model.Subscriber, error)
}

// Notifier accepts notifications for asynchronous delivery.
type Notifier interface {
	Enqueue(ctx context.Context, n model.Notification) error
}

// GatewayOption configures a Gateway.
type GatewayOption func(*Gateway)

// WithNotifier enqueues a notification for every accepted submission.
func WithNotifier(n Notifier) GatewayOption {
	return func(g *Gateway) { g.notifier = n }
}

// WithGatewayClock sets the clock stamped on notifications.
func WithGatewayClock(c temporal.Clock) GatewayOption {
	return func(g *Gateway) {
		if c != nil {
			g.clock = c
		}
	}
}

// WithGatewayLogger sets a custom logger.
func WithGatewayLogger(l logger.Logger) GatewayOption {
	return func(g *Gateway) {
		if l != nil {
			g.logger = l
		}
	}
}

// Gateway validates form payloads and hands them to the store exactly once.
type Gateway struct {
	contact      SubmissionStore
	applications SubmissionStore
	newsletter   SubscriberStore
	notifier     Notifier
	clock        temporal.Clock
	logger       logger.Logger
}

// NewGateway builds a gateway over the three form stores.
func NewGateway(contact, applications SubmissionStore, newsletter SubscriberStore, opts ...GatewayOption) *Gateway {
	g := &Gateway{
		contact:      contact,
		applications: applications,
		newsletter:   newsletter,
		clock:        temporal.SystemClock,
		logger:       logger.Get().Named("gateway"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Submit validates fields against the form's schema and stores them. It
// returns the stored document ID as confirmation. Errors match
// forms.ErrValidationFailed, ErrAlreadySubscribed or ErrSubmissionFailed.
func (g *Gateway) Submit(ctx context.Context, kind model.SubmissionKind, fields map[string]string) (string, error) {
	schema, err := forms.SchemaFor(kind)
	if err != nil {
		metrics.RecordSubmission(string(kind), "invalid")
		return "", &forms.ValidationError{Kind: string(kind), Fields: map[string]string{"kind": err.Error()}}
	}
	clean, err := schema.Validate(fields)
	if err != nil {
		metrics.RecordSubmission(string(kind), "invalid")
		return "", err
	}

	var id string
	switch kind {
	case model.KindNewsletter:
		var sub model.Subscriber
		sub, err = g.newsletter.Subscribe(ctx, clean["email"])
		id = sub.ID
		if err != nil && IsDuplicate(err) {
			metrics.RecordSubmission(string(kind), "duplicate")
			return "", fmt.Errorf("%w: %w", ErrAlreadySubscribed, err)
		}
	case model.KindApplication:
		var sub model.Submission
		sub, err = g.applications.Create(ctx, clean)
		id = sub.ID
	default:
		var sub model.Submission
		sub, err = g.contact.Create(ctx, clean)
		id = sub.ID
	}
	if err != nil {
		metrics.RecordSubmission(string(kind), "failed")
		g.logger.Warn(ctx, "submission not stored", logger.String("kind", string(kind)), logger.Error(err))
		return "", fmt.Errorf("%w: %w", ErrSubmissionFailed, err)
	}

	metrics.RecordSubmission(string(kind), "ok")
	g.notify(ctx, kind, id)
	return id, nil
}

func (g *Gateway) notify(ctx context.Context, kind model.SubmissionKind, id string) {
	if g.notifier == nil {
		return
	}
	n := model.Notification{ID: uuid.NewString(), Kind: kind, Confirmation: id, At: g.clock()}
	if err := g.notifier.Enqueue(ctx, n); err != nil {
		g.logger.Warn(ctx, "notification dropped",
			logger.String("kind", string(kind)),
			logger.String("confirmation", id),
			logger.Error(err),
		)
	}
}

var duplicateMarkers = []string{"duplicate", "already exists", "unique"}

// documentExistsType is the document service's error type for a taken ID
// or unique attribute.
const documentExistsType = "document_already_exists"

// IsDuplicate reports whether a store error signals an existing record. It
// trusts the docstore conflict sentinel and HTTP 409 first, then falls back
// to matching the backend's own message, which depends on its wording.
// Wrapping context such as the operation and collection name is never
// matched.
func IsDuplicate(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, docstore.ErrConflict) {
		return true
	}
	var apiErr *docstore.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code == http.StatusConflict || apiErr.Status == http.StatusConflict || apiErr.Type == documentExistsType {
			return true
		}
		return hasDuplicateMarker(apiErr.Message)
	}
	return hasDuplicateMarker(rootCause(err).Error())
}

func hasDuplicateMarker(msg string) bool {
	msg = strings.ToLower(msg)
	for _, m := range duplicateMarkers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}

func rootCause(err error) error {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
}
