package docstore

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // driver

	"github.com/okian/clubhouse/pkg/logger"
)

const (
	sqliteBusyTimeoutMS = 5000
	timestampLayout     = "2006-01-02T15:04:05.000000000Z07:00"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	seq        INTEGER PRIMARY KEY AUTOINCREMENT,
	collection TEXT NOT NULL,
	id         TEXT NOT NULL,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL,
	data       TEXT NOT NULL,
	UNIQUE (collection, id)
);
CREATE INDEX IF NOT EXISTS documents_created ON documents (collection, created_at DESC);
`

var attributePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLiteOption applies a configuration option to the SQLite store.
type SQLiteOption func(*SQLite)

// WithUniqueField makes field unique within collection. Violations return ErrConflict.
func WithUniqueField(collection, field string) SQLiteOption {
	return func(s *SQLite) {
		s.unique[collection] = append(s.unique[collection], field)
	}
}

// WithClock replaces the clock used for document timestamps.
func WithClock(now func() time.Time) SQLiteOption {
	return func(s *SQLite) {
		if now != nil {
			s.now = now
		}
	}
}

// WithSQLiteLogger sets a custom logger.
func WithSQLiteLogger(l logger.Logger) SQLiteOption {
	return func(s *SQLite) {
		if l != nil {
			s.logger = l
		}
	}
}

// SQLite is a local document store keeping JSON attributes in one table.
type SQLite struct {
	db     *sqlx.DB
	logger logger.Logger
	now    func() time.Time
	unique map[string][]string
}

type documentRow struct {
	Collection string `db:"collection"`
	ID         string `db:"id"`
	CreatedAt  string `db:"created_at"`
	UpdatedAt  string `db:"updated_at"`
	Data       string `db:"data"`
}

// OpenSQLite opens or creates the database at path and applies the schema.
func OpenSQLite(ctx context.Context, path string, opts ...SQLiteOption) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory for database: %w", err)
		}
	}

	dsn := fmt.Sprintf("%s?_journal=WAL&_synchronous=NORMAL&_busy_timeout=%d", path, sqliteBusyTimeoutMS)
	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Uniqueness checks run inside a transaction; one writer keeps them race-free.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	s := &SQLite{
		db:     db,
		logger: logger.Get().Named("sqlite"),
		now:    time.Now,
		unique: make(map[string][]string),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.logger.Info(ctx, "document store opened", logger.String("path", path))
	return s, nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// List returns the documents of a collection matching queries. Without an
// explicit order, documents come back in insertion order.
func (s *SQLite) List(ctx context.Context, collection string, queries ...Query) ([]Document, error) {
	where := []string{"collection = ?"}
	args := []any{collection}
	var order []string

	for _, q := range queries {
		column, colArgs, err := columnFor(q.Attribute)
		if err != nil {
			return nil, err
		}
		switch q.Method {
		case MethodEqual:
			if len(q.Values) == 0 {
				return nil, fmt.Errorf("%w: equal on %q without values", ErrUnsupportedQuery, q.Attribute)
			}
			marks := strings.TrimSuffix(strings.Repeat("?,", len(q.Values)), ",")
			where = append(where, fmt.Sprintf("%s IN (%s)", column, marks))
			args = append(args, colArgs...)
			for _, v := range q.Values {
				args = append(args, bindValue(v))
			}
		case MethodOrderDesc:
			order = append(order, column+" DESC")
			args = appendOrderArgs(args, colArgs)
		default:
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedQuery, q.Method)
		}
	}
	order = append(order, "seq DESC")
	if len(order) == 1 {
		order[0] = "seq ASC"
	}

	query := fmt.Sprintf("SELECT collection, id, created_at, updated_at, data FROM documents WHERE %s ORDER BY %s",
		strings.Join(where, " AND "), strings.Join(order, ", "))

	// ORDER BY placeholders follow the WHERE placeholders.
	var rows []documentRow
	if err := s.db.SelectContext(ctx, &rows, query, reorderArgs(args)...); err != nil {
		return nil, fmt.Errorf("database query failed: %w", err)
	}

	docs := make([]Document, 0, len(rows))
	for _, r := range rows {
		d, err := r.document()
		if err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, nil
}

// Get returns one document.
func (s *SQLite) Get(ctx context.Context, collection, id string) (Document, error) {
	row, err := getRow(ctx, s.db, collection, id)
	if err != nil {
		return Document{}, err
	}
	return row.document()
}

// Create stores a new document.
func (s *SQLite) Create(ctx context.Context, collection, id string, data map[string]any) (Document, error) {
	if id == "" || id == Unique {
		id = uuid.NewString()
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return Document{}, fmt.Errorf("failed to encode document: %w", err)
	}
	ts := s.now().UTC().Format(timestampLayout)

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return Document{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if err := s.checkUnique(ctx, tx, collection, "", data); err != nil {
		return Document{}, err
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO documents (collection, id, created_at, updated_at, data) VALUES (?, ?, ?, ?, ?)`,
		collection, id, ts, ts, string(raw))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return Document{}, fmt.Errorf("%w: %s/%s", ErrConflict, collection, id)
		}
		return Document{}, fmt.Errorf("failed to insert document: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return Document{}, fmt.Errorf("failed to commit: %w", err)
	}

	return s.Get(ctx, collection, id)
}

// Update merges data into the stored attributes.
func (s *SQLite) Update(ctx context.Context, collection, id string, data map[string]any) (Document, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return Document{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	row, err := getRow(ctx, tx, collection, id)
	if err != nil {
		return Document{}, err
	}
	current, err := decodeData(row.Data)
	if err != nil {
		return Document{}, err
	}
	for k, v := range data {
		current[k] = v
	}
	if err := s.checkUnique(ctx, tx, collection, id, data); err != nil {
		return Document{}, err
	}

	raw, err := json.Marshal(current)
	if err != nil {
		return Document{}, fmt.Errorf("failed to encode document: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		`UPDATE documents SET data = ?, updated_at = ? WHERE collection = ? AND id = ?`,
		string(raw), s.now().UTC().Format(timestampLayout), collection, id)
	if err != nil {
		return Document{}, fmt.Errorf("failed to update document: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return Document{}, fmt.Errorf("failed to commit: %w", err)
	}

	return s.Get(ctx, collection, id)
}

// Delete removes a document.
func (s *SQLite) Delete(ctx context.Context, collection, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE collection = ? AND id = ?`, collection, id)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s/%s", ErrNotFound, collection, id)
	}
	return nil
}

func (s *SQLite) checkUnique(ctx context.Context, tx *sqlx.Tx, collection, selfID string, data map[string]any) error {
	for _, field := range s.unique[collection] {
		v, ok := data[field]
		if !ok {
			continue
		}
		var n int
		err := tx.GetContext(ctx, &n,
			`SELECT COUNT(*) FROM documents WHERE collection = ? AND id != ? AND json_extract(data, ?) = ?`,
			collection, selfID, "$."+field, bindValue(v))
		if err != nil {
			return fmt.Errorf("failed to check %s uniqueness: %w", field, err)
		}
		if n > 0 {
			return fmt.Errorf("%w: %s with this %s", ErrConflict, collection, field)
		}
	}
	return nil
}

type queryer interface {
	GetContext(ctx context.Context, dest any, query string, args ...any) error
}

func getRow(ctx context.Context, q queryer, collection, id string) (documentRow, error) {
	var row documentRow
	err := q.GetContext(ctx, &row,
		`SELECT collection, id, created_at, updated_at, data FROM documents WHERE collection = ? AND id = ?`,
		collection, id)
	if errors.Is(err, sql.ErrNoRows) {
		return row, fmt.Errorf("%w: %s/%s", ErrNotFound, collection, id)
	}
	if err != nil {
		return row, fmt.Errorf("database query failed: %w", err)
	}
	return row, nil
}

func (r documentRow) document() (Document, error) {
	data, err := decodeData(r.Data)
	if err != nil {
		return Document{}, err
	}
	created, _ := time.Parse(timestampLayout, r.CreatedAt)
	updated, _ := time.Parse(timestampLayout, r.UpdatedAt)
	return Document{
		ID:         r.ID,
		Collection: r.Collection,
		CreatedAt:  created,
		UpdatedAt:  updated,
		Data:       data,
	}, nil
}

func decodeData(raw string) (map[string]any, error) {
	data := make(map[string]any)
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()
	if err := dec.Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	return data, nil
}

// columnFor maps a query attribute onto a SQL expression and its arguments.
func columnFor(attribute string) (string, []any, error) {
	switch attribute {
	case "$id":
		return "id", nil, nil
	case AttrCreatedAt:
		return "created_at", nil, nil
	case "$updatedAt":
		return "updated_at", nil, nil
	}
	if !attributePattern.MatchString(attribute) {
		return "", nil, fmt.Errorf("%w: attribute %q", ErrUnsupportedQuery, attribute)
	}
	return "json_extract(data, ?)", []any{"$." + attribute}, nil
}

// orderArg marks arguments that belong to the ORDER BY clause.
type orderArg struct{ v any }

func appendOrderArgs(args, colArgs []any) []any {
	for _, a := range colArgs {
		args = append(args, orderArg{a})
	}
	return args
}

func reorderArgs(args []any) []any {
	out := make([]any, 0, len(args))
	var tail []any
	for _, a := range args {
		if o, ok := a.(orderArg); ok {
			tail = append(tail, o.v)
			continue
		}
		out = append(out, a)
	}
	return append(out, tail...)
}

// bindValue converts JSON-ish values to what json_extract compares against.
func bindValue(v any) any {
	switch t := v.(type) {
	case bool:
		if t {
			return 1
		}
		return 0
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		f, _ := t.Float64()
		return f
	}
	return v
}
