package docstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/appwrite/sdk-for-go/appwrite"
	"github.com/appwrite/sdk-for-go/client"
	"github.com/appwrite/sdk-for-go/databases"
	"github.com/appwrite/sdk-for-go/models"
	"github.com/appwrite/sdk-for-go/query"

	"github.com/okian/clubhouse/pkg/logger"
)

const defaultHTTPTimeout = 15 * time.Second

// AppwriteOption applies a configuration option to the Appwrite client.
type AppwriteOption func(*Appwrite)

// WithAPIKey authenticates requests with a server API key.
func WithAPIKey(key string) AppwriteOption {
	return func(a *Appwrite) {
		if key != "" {
			a.sdkOpts = append(a.sdkOpts, appwrite.WithKey(key))
		}
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) AppwriteOption {
	return func(a *Appwrite) {
		if c != nil {
			a.sdkOpts = append(a.sdkOpts, func(clt *client.Client) error {
				clt.Client = c
				return nil
			})
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) AppwriteOption {
	return func(a *Appwrite) {
		if d > 0 {
			a.sdkOpts = append(a.sdkOpts, appwrite.WithTimeout(d))
		}
	}
}

// WithAppwriteLogger sets a custom logger.
func WithAppwriteLogger(l logger.Logger) AppwriteOption {
	return func(a *Appwrite) {
		if l != nil {
			a.logger = l
		}
	}
}

// Appwrite is the document client for an Appwrite project database, built
// on the Appwrite Go SDK.
type Appwrite struct {
	db       *databases.Databases
	logger   logger.Logger
	sdkOpts  []client.ClientOption
	endpoint string
	project  string
	database string
}

// NewAppwrite returns a client for one project database. endpoint is the
// API root, e.g. https://cloud.appwrite.io/v1.
func NewAppwrite(endpoint, project, database string, opts ...AppwriteOption) *Appwrite {
	a := &Appwrite{
		logger:   logger.Get().Named("appwrite"),
		endpoint: strings.TrimSuffix(endpoint, "/"),
		project:  project,
		database: database,
	}
	a.sdkOpts = []client.ClientOption{
		appwrite.WithEndpoint(a.endpoint),
		appwrite.WithProject(project),
		appwrite.WithTimeout(defaultHTTPTimeout),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.db = appwrite.NewDatabases(appwrite.NewClient(a.sdkOpts...))
	return a
}

// List returns the documents of a collection matching queries.
func (a *Appwrite) List(ctx context.Context, collection string, queries ...Query) ([]Document, error) {
	encoded, err := encodeQueries(queries)
	if err != nil {
		return nil, err
	}
	var listOpts []databases.ListDocumentsOption
	if len(encoded) > 0 {
		listOpts = append(listOpts, a.db.WithListDocumentsQueries(encoded))
	}

	a.logger.Debug(ctx, "document request", logger.String("op", "list"), logger.String("collection", collection))
	list, err := call(ctx, func() (*models.DocumentList, error) {
		return a.db.ListDocuments(a.database, collection, listOpts...)
	})
	if err != nil {
		return nil, translateError(err)
	}

	var body struct {
		Documents []json.RawMessage `json:"documents"`
	}
	if err := list.Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode document list: %w", err)
	}
	docs := make([]Document, 0, len(body.Documents))
	for _, raw := range body.Documents {
		d, err := parseDocument(raw)
		if err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, nil
}

// Get returns one document.
func (a *Appwrite) Get(ctx context.Context, collection, id string) (Document, error) {
	a.logger.Debug(ctx, "document request", logger.String("op", "get"), logger.String("collection", collection))
	doc, err := call(ctx, func() (*models.Document, error) {
		return a.db.GetDocument(a.database, collection, id)
	})
	if err != nil {
		return Document{}, translateError(err)
	}
	return decodeDocument(doc)
}

// Create stores a new document.
func (a *Appwrite) Create(ctx context.Context, collection, id string, data map[string]any) (Document, error) {
	a.logger.Debug(ctx, "document request", logger.String("op", "create"), logger.String("collection", collection))
	doc, err := call(ctx, func() (*models.Document, error) {
		return a.db.CreateDocument(a.database, collection, id, data)
	})
	if err != nil {
		return Document{}, translateError(err)
	}
	return decodeDocument(doc)
}

// Update patches the given attributes of a document.
func (a *Appwrite) Update(ctx context.Context, collection, id string, data map[string]any) (Document, error) {
	a.logger.Debug(ctx, "document request", logger.String("op", "update"), logger.String("collection", collection))
	doc, err := call(ctx, func() (*models.Document, error) {
		return a.db.UpdateDocument(a.database, collection, id, a.db.WithUpdateDocumentData(data))
	})
	if err != nil {
		return Document{}, translateError(err)
	}
	return decodeDocument(doc)
}

// Delete removes a document.
func (a *Appwrite) Delete(ctx context.Context, collection, id string) error {
	a.logger.Debug(ctx, "document request", logger.String("op", "delete"), logger.String("collection", collection))
	_, err := call(ctx, func() (*any, error) {
		return a.db.DeleteDocument(a.database, collection, id)
	})
	if err != nil {
		return translateError(err)
	}
	return nil
}

// FilePreviewURL builds the public preview URL of a stored file. No request
// is made; the SDK's preview call downloads the image instead.
func (a *Appwrite) FilePreviewURL(_ context.Context, bucket, fileID string, width, height int) (string, error) {
	params := url.Values{}
	if width > 0 {
		params.Set("width", strconv.Itoa(width))
	}
	if height > 0 {
		params.Set("height", strconv.Itoa(height))
	}
	params.Set("project", a.project)
	return fmt.Sprintf("%s/storage/buckets/%s/files/%s/preview?%s",
		a.endpoint, url.PathEscape(bucket), url.PathEscape(fileID), params.Encode()), nil
}

func encodeQueries(queries []Query) ([]string, error) {
	out := make([]string, 0, len(queries))
	for _, q := range queries {
		switch q.Method {
		case MethodOrderDesc:
			out = append(out, query.OrderDesc(q.Attribute))
		case MethodEqual:
			out = append(out, query.Equal(q.Attribute, q.Values))
		default:
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedQuery, q.Method)
		}
	}
	return out, nil
}

// call runs an SDK request, which takes no context. A request abandoned by
// ctx keeps running until the HTTP client timeout; its result is dropped.
func call[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	type outcome struct {
		val T
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		v, err := fn()
		done <- outcome{v, err}
	}()
	select {
	case o := <-done:
		return o.val, o.err
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// translateError turns SDK failures into *APIError so callers can match
// ErrNotFound and ErrConflict.
func translateError(err error) error {
	var awErr *client.AppwriteError
	if !errors.As(err, &awErr) {
		return fmt.Errorf("document request failed: %w", err)
	}
	apiErr := &APIError{Status: awErr.GetStatusCode(), Message: awErr.GetMessage()}
	var body APIError
	if raw := awErr.GetResponse(); raw != "" && json.Unmarshal([]byte(raw), &body) == nil {
		apiErr.Type, apiErr.Code = body.Type, body.Code
		if body.Message != "" {
			apiErr.Message = body.Message
		}
	}
	apiErr.Message = strings.TrimSpace(apiErr.Message)
	if apiErr.Message == "" || apiErr.Message == "N/A" {
		apiErr.Message = http.StatusText(apiErr.Status)
	}
	return apiErr
}

func decodeDocument(doc *models.Document) (Document, error) {
	var raw json.RawMessage
	if err := doc.Decode(&raw); err != nil {
		return Document{}, fmt.Errorf("failed to decode document: %w", err)
	}
	return parseDocument(raw)
}

// parseDocument splits the $-prefixed system attributes from user data.
func parseDocument(raw json.RawMessage) (Document, error) {
	var fields map[string]any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&fields); err != nil {
		return Document{}, fmt.Errorf("failed to decode document: %w", err)
	}

	d := Document{Data: make(map[string]any, len(fields))}
	for k, v := range fields {
		if !strings.HasPrefix(k, "$") {
			d.Data[k] = v
			continue
		}
		s, _ := v.(string)
		switch k {
		case "$id":
			d.ID = s
		case "$collectionId":
			d.Collection = s
		case AttrCreatedAt:
			d.CreatedAt = parseTimestamp(s)
		case "$updatedAt":
			d.UpdatedAt = parseTimestamp(s)
		}
	}
	return d, nil
}

func parseTimestamp(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
