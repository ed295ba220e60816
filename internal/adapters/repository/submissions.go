package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/okian/clubhouse/internal/adapters/docstore"
	"github.com/okian/clubhouse/internal/domain/model"
)

const (
	attrEmail          = "email"
	attrInterestedRole = "interestedRole"
)

// Submissions accesses a form submission collection.
type Submissions struct {
	c collection[model.Submission]
}

// GetAll lists submissions, newest first.
func (s *Submissions) GetAll(ctx context.Context) ([]model.Submission, error) {
	return s.c.newest(ctx)
}

// GetByID returns one submission.
func (s *Submissions) GetByID(ctx context.Context, id string) (model.Submission, error) {
	return s.c.get(ctx, id)
}

// GetByStatus lists submissions in status, newest first.
func (s *Submissions) GetByStatus(ctx context.Context, status string) ([]model.Submission, error) {
	return s.c.newest(ctx, docstore.Equal(model.StatusField, status))
}

// Create stores a submission. The status attribute is owned by the store and
// is rejected when present.
func (s *Submissions) Create(ctx context.Context, fields map[string]string) (model.Submission, error) {
	if _, ok := fields[model.StatusField]; ok {
		return model.Submission{}, s.c.wrap(opCreate, ErrStatusField)
	}
	data := make(map[string]any, len(fields))
	for k, v := range fields {
		data[k] = v
	}
	return s.c.create(ctx, data)
}

// UpdateStatus moves a submission to status.
func (s *Submissions) UpdateStatus(ctx context.Context, id, status string) (model.Submission, error) {
	return s.c.update(ctx, id, map[string]any{model.StatusField: status})
}

// Update applies a partial update.
func (s *Submissions) Update(ctx context.Context, id string, patch map[string]any) (model.Submission, error) {
	return s.c.update(ctx, id, patch)
}

// Delete removes a submission.
func (s *Submissions) Delete(ctx context.Context, id string) error {
	return s.c.remove(ctx, id)
}

// Applications accesses team applications.
type Applications struct {
	Submissions
}

// GetByRole lists applications for role, newest first.
func (a *Applications) GetByRole(ctx context.Context, role string) ([]model.Submission, error) {
	return a.c.newest(ctx, docstore.Equal(attrInterestedRole, role))
}

// Newsletter accesses newsletter subscribers.
type Newsletter struct {
	c collection[model.Subscriber]
}

// Subscribe stores email as subscribed. A repeated address fails with the
// store's conflict error.
func (n *Newsletter) Subscribe(ctx context.Context, email string) (model.Subscriber, error) {
	return n.c.create(ctx, map[string]any{
		attrEmail:         strings.TrimSpace(email),
		model.StatusField: model.Subscribed,
	})
}

// Unsubscribe marks a subscriber unsubscribed.
func (n *Newsletter) Unsubscribe(ctx context.Context, id string) (model.Subscriber, error) {
	return n.c.update(ctx, id, map[string]any{model.StatusField: model.Unsubscribed})
}

// GetAll lists subscribers, newest first.
func (n *Newsletter) GetAll(ctx context.Context) ([]model.Subscriber, error) {
	return n.c.newest(ctx)
}

// Delete removes a subscriber.
func (n *Newsletter) Delete(ctx context.Context, id string) error {
	return n.c.remove(ctx, id)
}

// submissionDecoder keeps every scalar attribute except status as a form field.
func submissionDecoder(kind model.SubmissionKind) func(docstore.Document) (model.Submission, error) {
	return func(doc docstore.Document) (model.Submission, error) {
		sub := model.Submission{
			ID:        doc.ID,
			Kind:      kind,
			CreatedAt: doc.CreatedAt,
			Fields:    make(map[string]string, len(doc.Data)),
		}
		for k, v := range doc.Data {
			switch x := v.(type) {
			case nil:
				continue
			case string:
				if k == model.StatusField {
					sub.Status = x
					continue
				}
				sub.Fields[k] = x
			case map[string]any, []any:
				return model.Submission{}, fmt.Errorf("failed to decode %s document %s: attribute %q is not a scalar", doc.Collection, doc.ID, k)
			default:
				if k == model.StatusField {
					continue
				}
				sub.Fields[k] = fmt.Sprint(x)
			}
		}
		return sub, nil
	}
}
