package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"

	"github.com/okian/clubhouse/internal/adapters/docstore"
	"github.com/okian/clubhouse/pkg/logger"
	"github.com/okian/clubhouse/pkg/metrics"
)

// Operation names used in errors and metrics.
const (
	opList   = "list"
	opGet    = "get"
	opCreate = "create"
	opUpdate = "update"
	opDelete = "delete"
)

// collection wraps one document collection with decoding, metrics and error wrapping.
type collection[T any] struct {
	client docstore.Documents
	logger logger.Logger
	decode func(docstore.Document) (T, error)
	name   string
}

func newCollection[T any](client docstore.Documents, l logger.Logger, name string, decode func(docstore.Document) (T, error)) collection[T] {
	return collection[T]{client: client, logger: l, decode: decode, name: name}
}

func (c collection[T]) list(ctx context.Context, queries ...docstore.Query) ([]T, error) {
	var docs []docstore.Document
	err := c.observe(ctx, opList, func() (err error) {
		docs, err = c.client.List(ctx, c.name, queries...)
		return err
	})
	if err != nil {
		return nil, err
	}

	out := make([]T, 0, len(docs))
	for _, d := range docs {
		v, err := c.decode(d)
		if err != nil {
			return nil, c.wrap(opList, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// newest lists the collection ordered by creation time descending.
func (c collection[T]) newest(ctx context.Context, filters ...docstore.Query) ([]T, error) {
	return c.list(ctx, append(filters, docstore.OrderDesc(docstore.AttrCreatedAt))...)
}

func (c collection[T]) get(ctx context.Context, id string) (T, error) {
	var doc docstore.Document
	err := c.observe(ctx, opGet, func() (err error) {
		doc, err = c.client.Get(ctx, c.name, id)
		return err
	})
	return c.materialize(opGet, doc, err)
}

func (c collection[T]) create(ctx context.Context, data map[string]any) (T, error) {
	var doc docstore.Document
	err := c.observe(ctx, opCreate, func() (err error) {
		doc, err = c.client.Create(ctx, c.name, docstore.Unique, data)
		return err
	})
	return c.materialize(opCreate, doc, err)
}

func (c collection[T]) update(ctx context.Context, id string, data map[string]any) (T, error) {
	var doc docstore.Document
	err := c.observe(ctx, opUpdate, func() (err error) {
		doc, err = c.client.Update(ctx, c.name, id, data)
		return err
	})
	return c.materialize(opUpdate, doc, err)
}

func (c collection[T]) remove(ctx context.Context, id string) error {
	return c.observe(ctx, opDelete, func() error {
		return c.client.Delete(ctx, c.name, id)
	})
}

func (c collection[T]) materialize(op string, doc docstore.Document, err error) (T, error) {
	var zero T
	if err != nil {
		return zero, err
	}
	v, err := c.decode(doc)
	if err != nil {
		return zero, c.wrap(op, err)
	}
	return v, nil
}

// observe runs call, records its outcome and wraps any failure.
func (c collection[T]) observe(ctx context.Context, op string, call func() error) error {
	start := time.Now()
	err := call()
	metrics.RecordDocumentLatency(c.name, op, float64(time.Since(start).Milliseconds()))

	if err != nil {
		metrics.RecordDocumentRequest(c.name, op, "error")
		c.logger.Debug(ctx, "document operation failed",
			logger.String("collection", c.name),
			logger.String("op", op),
			logger.Error(err),
		)
		return c.wrap(op, err)
	}
	metrics.RecordDocumentRequest(c.name, op, "ok")
	return nil
}

func (c collection[T]) wrap(op string, err error) error {
	return &RepositoryError{Op: op, Collection: c.name, Err: err}
}

var (
	timeType    = reflect.TypeOf(time.Time{})
	timePtrType = reflect.TypeOf(&time.Time{})
)

// timeHook parses store timestamps. Blank strings decode to a nil pointer
// or the zero time.
func timeHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	if to != timeType && to != timePtrType {
		return data, nil
	}
	s, ok := data.(string)
	if !ok {
		return data, nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		if to == timePtrType {
			return nil, nil
		}
		return time.Time{}, nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return nil, fmt.Errorf("unparseable timestamp %q", s)
}

// decodeInto decodes a document onto a model using its json tags.
func decodeInto[T any](doc docstore.Document) (T, error) {
	var out T
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       timeHook,
		Result:           &out,
		TagName:          "json",
		Squash:           true,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return out, fmt.Errorf("failed to build decoder: %w", err)
	}
	if err := dec.Decode(doc.Map()); err != nil {
		return out, fmt.Errorf("failed to decode %s document %s: %w", doc.Collection, doc.ID, err)
	}
	return out, nil
}

// encode turns a model into document attributes via its json tags, dropping
// the store-managed keys.
func encode(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	data := make(map[string]any)
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	delete(data, "id")
	delete(data, "createdAt")
	return data, nil
}
