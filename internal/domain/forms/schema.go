// Package forms holds the explicit schemas of the public forms and checks
// payloads against them before anything reaches the store.
package forms

import (
	"fmt"
	"net/mail"
	"net/url"
	"strings"

	"github.com/okian/clubhouse/internal/domain/model"
)

// FieldType constrains a field's syntax.
type FieldType int

// Field types.
const (
	Text FieldType = iota
	Email
	URL
	Phone
)

const minPhoneDigits = 6

// Field describes one named form input.
type Field struct {
	Name     string
	Type     FieldType
	Required bool
}

// Schema is the set of fields a form accepts.
type Schema struct {
	Kind   model.SubmissionKind
	Fields []Field
}

var schemas = map[model.SubmissionKind]Schema{
	model.KindContact: {
		Kind: model.KindContact,
		Fields: []Field{
			{Name: "name", Type: Text, Required: true},
			{Name: "email", Type: Email, Required: true},
			{Name: "subject", Type: Text, Required: true},
			{Name: "message", Type: Text, Required: true},
		},
	},
	model.KindApplication: {
		Kind: model.KindApplication,
		Fields: []Field{
			{Name: "fullName", Type: Text, Required: true},
			{Name: "email", Type: Email, Required: true},
			{Name: "phone", Type: Phone, Required: true},
			{Name: "university", Type: Text, Required: true},
			{Name: "program", Type: Text, Required: true},
			{Name: "interestedRole", Type: Text, Required: true},
			{Name: "motivation", Type: Text, Required: true},
			{Name: "experience", Type: Text, Required: true},
			{Name: "linkedin", Type: URL},
		},
	},
	model.KindNewsletter: {
		Kind: model.KindNewsletter,
		Fields: []Field{
			{Name: "email", Type: Email, Required: true},
		},
	},
}

// SchemaFor returns the schema of a form kind.
func SchemaFor(kind model.SubmissionKind) (Schema, error) {
	s, ok := schemas[kind]
	if !ok {
		return Schema{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return s, nil
}

// Kinds lists the form kinds with a schema.
func Kinds() []model.SubmissionKind {
	return []model.SubmissionKind{model.KindContact, model.KindApplication, model.KindNewsletter}
}

// Validate checks fields against the schema and returns the trimmed payload
// with empty optional fields dropped. Failures are a *ValidationError.
func (s Schema) Validate(fields map[string]string) (map[string]string, error) {
	problems := make(map[string]string)
	known := make(map[string]struct{}, len(s.Fields))
	out := make(map[string]string, len(s.Fields))

	for _, f := range s.Fields {
		known[f.Name] = struct{}{}
		v := strings.TrimSpace(fields[f.Name])
		if v == "" {
			if f.Required {
				problems[f.Name] = "is required"
			}
			continue
		}
		if msg := checkType(f.Type, v); msg != "" {
			problems[f.Name] = msg
			continue
		}
		out[f.Name] = v
	}

	for name := range fields {
		if name == model.StatusField {
			problems[name] = "is managed by the store"
			continue
		}
		if _, ok := known[name]; !ok {
			problems[name] = "is not a field of this form"
		}
	}

	if len(problems) > 0 {
		return nil, &ValidationError{Kind: string(s.Kind), Fields: problems}
	}
	return out, nil
}

func checkType(t FieldType, v string) string {
	switch t {
	case Email:
		if !ValidEmail(v) {
			return "must be a valid email address"
		}
	case URL:
		u, err := url.ParseRequestURI(v)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return "must be an http(s) URL"
		}
	case Phone:
		if !validPhone(v) {
			return "must be a phone number"
		}
	}
	return ""
}

// ValidEmail reports whether v is a bare addr-spec with a dotted domain.
func ValidEmail(v string) bool {
	addr, err := mail.ParseAddress(v)
	if err != nil || addr.Address != v || addr.Name != "" {
		return false
	}
	at := strings.LastIndexByte(v, '@')
	domain := v[at+1:]
	return strings.Contains(domain, ".") && !strings.HasSuffix(domain, ".")
}

func validPhone(v string) bool {
	digits := 0
	for _, r := range v {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '+' || r == '-' || r == ' ' || r == '(' || r == ')' || r == '.':
		default:
			return false
		}
	}
	return digits >= minPhoneDigits
}
