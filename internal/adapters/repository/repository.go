package repository

import (
	"context"
	"fmt"

	"github.com/okian/clubhouse/internal/adapters/docstore"
	"github.com/okian/clubhouse/internal/domain/model"
	"github.com/okian/clubhouse/pkg/logger"
)

// Collections names the store collection of each content type.
type Collections struct {
	Events                string
	Blogs                 string
	TeamMembers           string
	ContactSubmissions    string
	TeamApplications      string
	NewsletterSubscribers string
}

// Buckets names the file bucket of each image kind.
type Buckets struct {
	EventImages string
	BlogImages  string
	TeamImages  string
}

// ImageKind selects a bucket and its default preview size.
type ImageKind string

// Image kinds.
const (
	EventImage ImageKind = "event"
	BlogImage  ImageKind = "blog"
	TeamImage  ImageKind = "team"
)

type previewSize struct{ width, height int }

var defaultPreview = map[ImageKind]previewSize{
	EventImage: {800, 600},
	BlogImage:  {800, 600},
	TeamImage:  {300, 300},
}

// Repository groups the typed accessors of every collection.
type Repository struct {
	Events       *Events
	Blogs        *Blogs
	Team         *Team
	Contact      *Submissions
	Applications *Applications
	Newsletter   *Newsletter

	files   docstore.Files
	logger  logger.Logger
	buckets Buckets
}

// New builds a repository over client. The client is injected so tests can
// substitute a fake store.
func New(client docstore.Client, cols Collections, buckets Buckets, opts ...Option) *Repository {
	r := &Repository{
		files:   client,
		logger:  logger.Get().Named("repository"),
		buckets: buckets,
	}
	for _, opt := range opts {
		opt(r)
	}

	r.Events = &Events{c: newCollection(client, r.logger, cols.Events, decodeInto[model.Event])}
	r.Blogs = &Blogs{c: newCollection(client, r.logger, cols.Blogs, decodeInto[model.Blog])}
	r.Team = &Team{c: newCollection(client, r.logger, cols.TeamMembers, decodeInto[model.TeamMember])}
	r.Contact = &Submissions{c: newCollection(client, r.logger, cols.ContactSubmissions, submissionDecoder(model.KindContact))}
	r.Applications = &Applications{Submissions{c: newCollection(client, r.logger, cols.TeamApplications, submissionDecoder(model.KindApplication))}}
	r.Newsletter = &Newsletter{c: newCollection(client, r.logger, cols.NewsletterSubscribers, decodeInto[model.Subscriber])}
	return r
}

// ImageURL resolves an image file to a preview URL. Zero width or height
// picks the kind's default size.
func (r *Repository) ImageURL(ctx context.Context, kind ImageKind, fileID string, width, height int) (string, error) {
	size, ok := defaultPreview[kind]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownBucket, kind)
	}
	if width < 0 || height < 0 {
		return "", fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	if width == 0 {
		width = size.width
	}
	if height == 0 {
		height = size.height
	}

	bucket := r.bucket(kind)
	u, err := r.files.FilePreviewURL(ctx, bucket, fileID, width, height)
	if err != nil {
		return "", &RepositoryError{Op: "preview", Collection: bucket, Err: err}
	}
	return u, nil
}

func (r *Repository) bucket(kind ImageKind) string {
	switch kind {
	case BlogImage:
		return r.buckets.BlogImages
	case TeamImage:
		return r.buckets.TeamImages
	default:
		return r.buckets.EventImages
	}
}
