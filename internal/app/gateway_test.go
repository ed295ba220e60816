package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/okian/clubhouse/internal/adapters/docstore"
	"github.com/okian/clubhouse/internal/adapters/repository"
	service "github.com/okian/clubhouse/internal/app"
	"github.com/okian/clubhouse/internal/domain/forms"
	"github.com/okian/clubhouse/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

type fakeSubmissions struct {
	created []map[string]string
	err     error
}

func (f *fakeSubmissions) Create(_ context.Context, fields map[string]string) (model.Submission, error) {
	if f.err != nil {
		return model.Submission{}, f.err
	}
	f.created = append(f.created, fields)
	return model.Submission{ID: fmt.Sprintf("sub-%d", len(f.created)), Fields: fields}, nil
}

type fakeSubscribers struct {
	emails map[string]bool
	err    error
}

func (f *fakeSubscribers) Subscribe(_ context.Context, email string) (model.Subscriber, error) {
	if f.err != nil {
		return model.Subscriber{}, f.err
	}
	if f.emails[email] {
		return model.Subscriber{}, fmt.Errorf("%w: newsletter with this email", docstore.ErrConflict)
	}
	f.emails[email] = true
	return model.Subscriber{ID: "subscriber-" + email, Email: email, Status: model.Subscribed}, nil
}

type fakeNotifier struct {
	sent []model.Notification
	err  error
}

func (f *fakeNotifier) Enqueue(_ context.Context, n model.Notification) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, n)
	return nil
}

func validContact() map[string]string {
	return map[string]string{
		"name":    "Ada Lovelace",
		"email":   "ada@example.edu",
		"subject": "Sponsorship",
		"message": "Hello!",
	}
}

func TestGateway(t *testing.T) {
	Convey("Given a gateway over working stores", t, func() {
		contact := &fakeSubmissions{}
		apps := &fakeSubmissions{}
		subs := &fakeSubscribers{emails: map[string]bool{}}
		notes := &fakeNotifier{}
		at := time.Date(2025, time.October, 5, 9, 0, 0, 0, time.UTC)
		g := service.NewGateway(contact, apps, subs,
			service.WithNotifier(notes),
			service.WithGatewayClock(func() time.Time { return at }),
		)
		ctx := context.Background()

		Convey("When a valid contact form is submitted", func() {
			id, err := g.Submit(ctx, model.KindContact, validContact())

			Convey("Then it is stored once and a notification queued", func() {
				So(err, ShouldBeNil)
				So(id, ShouldEqual, "sub-1")
				So(contact.created, ShouldHaveLength, 1)
				So(contact.created[0], ShouldNotContainKey, "status")
				So(notes.sent, ShouldHaveLength, 1)
				So(notes.sent[0].Confirmation, ShouldEqual, "sub-1")
				So(notes.sent[0].Kind, ShouldEqual, model.KindContact)
				So(notes.sent[0].At.Equal(at), ShouldBeTrue)
			})
		})

		Convey("When the email is malformed", func() {
			fields := validContact()
			fields["email"] = "not-an-email"
			_, err := g.Submit(ctx, model.KindContact, fields)

			Convey("Then validation fails before any store call", func() {
				So(errors.Is(err, forms.ErrValidationFailed), ShouldBeTrue)
				var verr *forms.ValidationError
				So(errors.As(err, &verr), ShouldBeTrue)
				So(verr.Fields, ShouldContainKey, "email")
				So(contact.created, ShouldBeEmpty)
				So(notes.sent, ShouldBeEmpty)
			})
		})

		Convey("When the caller tries to set status", func() {
			fields := validContact()
			fields["status"] = "read"
			_, err := g.Submit(ctx, model.KindContact, fields)

			Convey("Then it is a validation failure", func() {
				So(errors.Is(err, forms.ErrValidationFailed), ShouldBeTrue)
				So(contact.created, ShouldBeEmpty)
			})
		})

		Convey("When the form kind is unknown", func() {
			_, err := g.Submit(ctx, model.SubmissionKind("survey"), validContact())

			Convey("Then it is a validation failure", func() {
				So(errors.Is(err, forms.ErrValidationFailed), ShouldBeTrue)
			})
		})

		Convey("When the same email subscribes twice", func() {
			first, err1 := g.Submit(ctx, model.KindNewsletter, map[string]string{"email": "ada@example.edu"})
			_, err2 := g.Submit(ctx, model.KindNewsletter, map[string]string{"email": "ada@example.edu"})

			Convey("Then the second attempt reports already subscribed", func() {
				So(err1, ShouldBeNil)
				So(first, ShouldEqual, "subscriber-ada@example.edu")
				So(errors.Is(err2, service.ErrAlreadySubscribed), ShouldBeTrue)
				So(errors.Is(err2, service.ErrSubmissionFailed), ShouldBeFalse)
				So(notes.sent, ShouldHaveLength, 1)
			})
		})

		Convey("When an application is submitted", func() {
			id, err := g.Submit(ctx, model.KindApplication, map[string]string{
				"fullName":       "Grace Hopper",
				"email":          "grace@example.edu",
				"phone":          "+1 555 010 2030",
				"university":     "State University",
				"program":        "Computer Science",
				"interestedRole": "Events",
				"motivation":     "Community",
				"experience":     "Organised hackathons",
				"linkedin":       "",
			})

			Convey("Then it goes to the applications store without blank optionals", func() {
				So(err, ShouldBeNil)
				So(id, ShouldEqual, "sub-1")
				So(apps.created, ShouldHaveLength, 1)
				So(apps.created[0], ShouldNotContainKey, "linkedin")
				So(contact.created, ShouldBeEmpty)
			})
		})
	})

	Convey("Given stores that fail", t, func() {
		cause := errors.New("network unreachable")
		notes := &fakeNotifier{}
		g := service.NewGateway(&fakeSubmissions{err: cause}, &fakeSubmissions{}, &fakeSubscribers{err: cause},
			service.WithNotifier(notes))

		Convey("When a contact form is submitted", func() {
			_, err := g.Submit(context.Background(), model.KindContact, validContact())

			Convey("Then it is a submission failure wrapping the cause", func() {
				So(errors.Is(err, service.ErrSubmissionFailed), ShouldBeTrue)
				So(errors.Is(err, cause), ShouldBeTrue)
				So(notes.sent, ShouldBeEmpty)
			})
		})

		Convey("When a newsletter subscription fails for another reason", func() {
			_, err := g.Submit(context.Background(), model.KindNewsletter, map[string]string{"email": "a@b.co"})

			Convey("Then it is not mistaken for a duplicate", func() {
				So(errors.Is(err, service.ErrSubmissionFailed), ShouldBeTrue)
				So(errors.Is(err, service.ErrAlreadySubscribed), ShouldBeFalse)
			})
		})
	})

	Convey("Given a notifier that rejects everything", t, func() {
		g := service.NewGateway(&fakeSubmissions{}, &fakeSubmissions{}, &fakeSubscribers{emails: map[string]bool{}},
			service.WithNotifier(&fakeNotifier{err: errors.New("queue full")}))

		Convey("Then the submission still succeeds", func() {
			id, err := g.Submit(context.Background(), model.KindContact, validContact())
			So(err, ShouldBeNil)
			So(id, ShouldNotBeBlank)
		})
	})
}

func TestIsDuplicate(t *testing.T) {
	cases := []struct {
		err  error
		name string
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "conflict sentinel", err: fmt.Errorf("wrapped: %w", docstore.ErrConflict), want: true},
		{name: "api 409 code", err: &docstore.APIError{Message: "x", Code: 409}, want: true},
		{name: "message duplicate", err: errors.New("Duplicate entry"), want: true},
		{name: "message already exists", err: errors.New("Document with the requested ID already exists."), want: true},
		{name: "message unique", err: errors.New("UNIQUE constraint failed: documents.id"), want: true},
		{name: "other", err: errors.New("timeout"), want: false},
		{name: "api 500", err: &docstore.APIError{Message: "server error", Code: 500, Status: 500}, want: false},
		{name: "api exists type", err: &docstore.APIError{Message: "Conflict", Type: "document_already_exists", Status: 400}, want: true},
		{name: "api message", err: &docstore.APIError{Message: "Duplicate key for email", Status: 400}, want: true},
		{
			name: "collection name is not the message",
			err: &repository.RepositoryError{
				Op: "create", Collection: "unique_subscribers",
				Err: &docstore.APIError{Message: "Server error", Type: "general_unknown", Status: 500},
			},
			want: false,
		},
		{
			name: "wrapping context is not the message",
			err: fmt.Errorf("subscribe to unique list: %w", &repository.RepositoryError{
				Op: "create", Collection: "newsletter", Err: errors.New("connection reset"),
			}),
			want: false,
		},
		{
			name: "wrapped driver message",
			err: &repository.RepositoryError{
				Op: "create", Collection: "newsletter", Err: errors.New("UNIQUE constraint failed: newsletter.email"),
			},
			want: true,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := service.IsDuplicate(tc.err); got != tc.want {
				t.Errorf("IsDuplicate(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}
