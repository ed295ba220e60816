package backend_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/clubhouse/internal/adapters/backend"
	"github.com/okian/clubhouse/internal/adapters/docstore"
	"github.com/okian/clubhouse/internal/adapters/repository"
	"github.com/okian/clubhouse/internal/config"
	"github.com/okian/clubhouse/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func sqliteConfig(t *testing.T) *config.Config {
	cfg := config.New(context.Background())
	cfg.Backend = config.BackendSQLite
	cfg.SQLite.Path = filepath.Join(t.TempDir(), "club.db")
	cfg.LocalDefaults()
	return cfg
}

func TestOpen(t *testing.T) {
	Convey("Given a sqlite configuration", t, func() {
		ctx := context.Background()
		cfg := sqliteConfig(t)

		Convey("When the backend is opened", func() {
			b, err := backend.Open(ctx, cfg)
			So(err, ShouldBeNil)
			defer b.Close()

			Convey("Then the repository round-trips content", func() {
				_, err := b.Repository.Events.Create(ctx, model.Event{
					ContentItem: model.ContentItem{Title: "Kickoff", Category: model.CategoryCommunity},
					Start:       time.Date(2025, time.September, 1, 18, 0, 0, 0, time.UTC),
				})
				So(err, ShouldBeNil)
				all, err := b.Repository.Events.GetAll(ctx)
				So(err, ShouldBeNil)
				So(all, ShouldHaveLength, 1)
			})

			Convey("Then newsletter emails are unique", func() {
				_, err := b.Repository.Newsletter.Subscribe(ctx, "ada@example.edu")
				So(err, ShouldBeNil)
				_, err = b.Repository.Newsletter.Subscribe(ctx, "ada@example.edu")
				So(errors.Is(err, docstore.ErrConflict), ShouldBeTrue)
			})

			Convey("Then images are unavailable without a file backend", func() {
				_, err := b.Repository.ImageURL(ctx, repository.EventImage, "f1", 0, 0)
				So(errors.Is(err, docstore.ErrNoFileBackend), ShouldBeTrue)
				So(b.Checks(), ShouldBeEmpty)
			})

			Convey("Then closing twice is harmless", func() {
				So(b.Close(), ShouldBeNil)
				So(b.Close(), ShouldBeNil)
			})
		})

		Convey("When MinIO is configured", func() {
			cfg.MinIO.Endpoint = "localhost:9000"
			cfg.MinIO.AccessKey = "minio"
			cfg.MinIO.SecretKey = "minio123"
			b, err := backend.Open(ctx, cfg)
			So(err, ShouldBeNil)
			defer b.Close()

			Convey("Then image URLs are presigned against the bucket", func() {
				u, err := b.Repository.ImageURL(ctx, repository.EventImage, "poster.png", 0, 0)
				So(err, ShouldBeNil)
				So(u, ShouldContainSubstring, "/event-images/poster.png")
				So(u, ShouldContainSubstring, "X-Amz-Signature")
				So(b.Checks(), ShouldContainKey, "minio")
			})
		})
	})

	Convey("Given an appwrite configuration", t, func() {
		cfg := sqliteConfig(t)
		cfg.Backend = config.BackendAppwrite
		cfg.Appwrite.Endpoint = "https://cloud.example.io/v1"
		cfg.Appwrite.Project = "club"
		cfg.Appwrite.Database = "main"

		Convey("When the backend is opened", func() {
			b, err := backend.Open(context.Background(), cfg)

			Convey("Then no request is made and preview URLs are built locally", func() {
				So(err, ShouldBeNil)
				u, err := b.Repository.ImageURL(context.Background(), repository.TeamImage, "ada", 0, 0)
				So(err, ShouldBeNil)
				So(u, ShouldStartWith, "https://cloud.example.io/v1/storage/buckets/team-images/files/ada/preview")
				So(b.Close(), ShouldBeNil)
			})
		})
	})

	Convey("Given an unknown backend", t, func() {
		cfg := sqliteConfig(t)
		cfg.Backend = "mongo"

		Convey("Then opening fails", func() {
			_, err := backend.Open(context.Background(), cfg)
			So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)
		})
	})
}
