// Package docstore defines the document client the content repository is
// built on, with an Appwrite SDK implementation, a local SQLite store and
// MinIO-backed file URLs.
package docstore

import (
	"context"
	"time"
)

// Unique asks the store to assign a fresh document ID.
const Unique = "unique()"

// AttrCreatedAt is the store-managed creation timestamp attribute.
const AttrCreatedAt = "$createdAt"

// Document is a stored record. Data holds user attributes only.
type Document struct {
	CreatedAt  time.Time      `json:"$createdAt"`
	UpdatedAt  time.Time      `json:"$updatedAt"`
	Data       map[string]any `json:"-"`
	ID         string         `json:"$id"`
	Collection string         `json:"$collectionId"`
}

// Map returns the attributes merged with id and createdAt, the shape the
// repository decodes into models.
func (d Document) Map() map[string]any {
	m := make(map[string]any, len(d.Data)+2)
	for k, v := range d.Data {
		m[k] = v
	}
	m["id"] = d.ID
	m["createdAt"] = d.CreatedAt
	return m
}

// Query method names.
const (
	MethodOrderDesc = "orderDesc"
	MethodEqual     = "equal"
)

// Query is a list filter.
type Query struct {
	Method    string `json:"method"`
	Attribute string `json:"attribute"`
	Values    []any  `json:"values,omitempty"`
}

// OrderDesc orders by attribute, newest or largest first.
func OrderDesc(attribute string) Query {
	return Query{Method: MethodOrderDesc, Attribute: attribute}
}

// Equal keeps documents whose attribute equals any of values.
func Equal(attribute string, values ...any) Query {
	return Query{Method: MethodEqual, Attribute: attribute, Values: values}
}

// Documents manages documents in named collections.
type Documents interface {
	List(ctx context.Context, collection string, queries ...Query) ([]Document, error)
	Get(ctx context.Context, collection, id string) (Document, error)
	// Create stores data under id, or a generated ID when id is Unique.
	Create(ctx context.Context, collection, id string, data map[string]any) (Document, error)
	Update(ctx context.Context, collection, id string, data map[string]any) (Document, error)
	Delete(ctx context.Context, collection, id string) error
}

// Files resolves stored files to public URLs.
type Files interface {
	FilePreviewURL(ctx context.Context, bucket, fileID string, width, height int) (string, error)
}

// Client is the full document client.
type Client interface {
	Documents
	Files
}

// Combine pairs a document store with a separate file backend.
func Combine(d Documents, f Files) Client {
	return combined{Documents: d, Files: f}
}

type combined struct {
	Documents
	Files
}
