// Package backend opens the configured document and file stores and
// builds the content repository over them.
package backend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/okian/clubhouse/internal/adapters/docstore"
	"github.com/okian/clubhouse/internal/adapters/repository"
	"github.com/okian/clubhouse/internal/config"
	"github.com/okian/clubhouse/pkg/logger"
)

const healthCheckTimeout = 5 * time.Second

// Backend is an opened content backend.
type Backend struct {
	Repository *repository.Repository

	checks  map[string]func() error
	closers []func() error
}

// Open connects the document store named by cfg.Backend and, when an
// endpoint is configured, MinIO for image URLs. Appwrite serves both
// documents and files; MinIO takes over files when set.
func Open(ctx context.Context, cfg *config.Config) (*Backend, error) {
	log := logger.Get().Named("backend")
	b := &Backend{checks: make(map[string]func() error)}

	var (
		docs  docstore.Documents
		files docstore.Files = docstore.NoFiles{}
	)
	switch cfg.Backend {
	case config.BackendAppwrite:
		aw := docstore.NewAppwrite(cfg.Appwrite.Endpoint, cfg.Appwrite.Project, cfg.Appwrite.Database,
			docstore.WithAPIKey(cfg.Appwrite.APIKey),
			docstore.WithTimeout(cfg.Feed.HTTPTimeout),
		)
		docs, files = aw, aw
	case config.BackendSQLite:
		store, err := docstore.OpenSQLite(ctx, cfg.SQLite.Path,
			docstore.WithUniqueField(cfg.Collections.NewsletterSubscribers, "email"),
		)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		docs = store
		b.closers = append(b.closers, store.Close)
	default:
		return nil, fmt.Errorf("%w: unknown backend %q", config.ErrInvalidConfig, cfg.Backend)
	}

	if cfg.MinIO.Endpoint != "" {
		m, err := docstore.NewMinIOFiles(docstore.MinIOConfig{
			Endpoint:  cfg.MinIO.Endpoint,
			AccessKey: cfg.MinIO.AccessKey,
			SecretKey: cfg.MinIO.SecretKey,
			Region:    cfg.MinIO.Region,
			URLExpiry: cfg.MinIO.URLExpiry,
			UseSSL:    cfg.MinIO.UseSSL,
		})
		if err != nil {
			_ = b.Close()
			return nil, fmt.Errorf("open minio: %w", err)
		}
		files = m
		bucket := cfg.Buckets.EventImages
		b.checks["minio"] = func() error {
			ctx, cancel := context.WithTimeout(context.Background(), healthCheckTimeout)
			defer cancel()
			return m.HealthCheck(ctx, bucket)
		}
	}

	b.Repository = repository.New(docstore.Combine(docs, files),
		repository.Collections{
			Events:                cfg.Collections.Events,
			Blogs:                 cfg.Collections.Blogs,
			TeamMembers:           cfg.Collections.TeamMembers,
			ContactSubmissions:    cfg.Collections.ContactSubmissions,
			TeamApplications:      cfg.Collections.TeamApplications,
			NewsletterSubscribers: cfg.Collections.NewsletterSubscribers,
		},
		repository.Buckets{
			EventImages: cfg.Buckets.EventImages,
			BlogImages:  cfg.Buckets.BlogImages,
			TeamImages:  cfg.Buckets.TeamImages,
		},
		repository.WithLogger(log.Named("repository")),
	)

	log.Info(ctx, "content backend opened",
		logger.String("backend", cfg.Backend),
		logger.Bool("minio", cfg.MinIO.Endpoint != ""),
	)
	return b, nil
}

// Checks returns the health checks of the opened dependencies.
func (b *Backend) Checks() map[string]func() error { return b.checks }

// AddCheck registers an extra health check.
func (b *Backend) AddCheck(name string, check func() error) { b.checks[name] = check }

// Close releases every opened store.
func (b *Backend) Close() error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		errs = append(errs, b.closers[i]())
	}
	b.closers = nil
	return errors.Join(errs...)
}
