package service_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/okian/clubhouse/internal/adapters/docstore"
	"github.com/okian/clubhouse/internal/adapters/repository"
	service "github.com/okian/clubhouse/internal/app"
	"github.com/okian/clubhouse/internal/domain/feed"
	"github.com/okian/clubhouse/internal/domain/model"
	"github.com/okian/clubhouse/internal/domain/slideshow"
	"github.com/okian/clubhouse/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

type capturePublisher struct {
	mu   sync.Mutex
	sent []model.Notification
}

func (p *capturePublisher) Publish(_ context.Context, n model.Notification) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, n)
	return nil
}

func (p *capturePublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.sent)
}

func newStoreRepo(t *testing.T) *repository.Repository {
	t.Helper()
	store, err := docstore.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "club.db"),
		docstore.WithUniqueField("newsletter", "email"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return repository.New(docstore.Combine(store, docstore.NoFiles{}), repository.Collections{
		Events:                "events",
		Blogs:                 "blogs",
		TeamMembers:           "team",
		ContactSubmissions:    "contact",
		TeamApplications:      "applications",
		NewsletterSubscribers: "newsletter",
	}, repository.Buckets{EventImages: "ei", BlogImages: "bi", TeamImages: "ti"})
}

func TestService(t *testing.T) {
	Convey("Given a service over a seeded store", t, func() {
		repo := newStoreRepo(t)
		ctx := context.Background()
		now := time.Date(2025, time.November, 15, 15, 0, 0, 0, time.UTC)

		for _, e := range []model.Event{ev("", now.Add(48*time.Hour)), ev("", now.Add(-48*time.Hour))} {
			_, err := repo.Events.Create(ctx, e)
			So(err, ShouldBeNil)
		}
		_, err := repo.Team.Create(ctx, model.TeamMember{Name: "Ada", Role: "President", ImageID: "ada.png"})
		So(err, ShouldBeNil)

		pub := &capturePublisher{}
		svc := service.New(repo,
			service.WithClock(func() time.Time { return now }),
			service.WithPublisher(pub),
			service.WithRefreshInterval(0),
			service.WithWorkerCount(1),
			service.WithSlideshow(slideshow.WithScheduler(manualScheduler{})),
		)
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop(ctx)

		Convey("When it has started", func() {
			Convey("Then every view is ready", func() {
				banner := svc.Banner().View()
				So(banner.Phase, ShouldEqual, service.Ready)
				So(banner.Data.Feed.Len(), ShouldEqual, 2)
				So(banner.Data.Slide.Length, ShouldEqual, 2)

				listing := svc.Events().View(feed.BucketUpcoming, "")
				So(listing.Data.Items, ShouldHaveLength, 1)

				So(svc.Blogs().View("").Phase, ShouldEqual, service.Ready)

				team := svc.Team().View()
				So(*team.Data, ShouldHaveLength, 1)
				So((*team.Data)[0].ImageURL, ShouldBeEmpty)

				stats := svc.GetStats()
				So(stats["started"], ShouldEqual, true)
				So(stats["views"], ShouldResemble, map[string]string{
					"banner": "ready", "events": "ready", "blogs": "ready", "team": "ready",
				})
			})
		})

		Convey("When a newsletter subscription is repeated", func() {
			id, err1 := svc.Submit(ctx, model.KindNewsletter, map[string]string{"email": "ada@example.edu"})
			_, err2 := svc.Submit(ctx, model.KindNewsletter, map[string]string{"email": "ada@example.edu"})

			Convey("Then the store's conflict surfaces as already subscribed", func() {
				So(err1, ShouldBeNil)
				So(id, ShouldNotBeBlank)
				So(errors.Is(err2, service.ErrAlreadySubscribed), ShouldBeTrue)
			})

			Convey("Then one notification is published", func() {
				So(eventuallyTrue(func() bool { return pub.count() == 1 }), ShouldBeTrue)
			})
		})

		Convey("When content changes and the service refreshes", func() {
			_, err := repo.Events.Create(ctx, ev("", now.Add(72*time.Hour)))
			So(err, ShouldBeNil)
			So(svc.Refresh(ctx), ShouldBeNil)

			Convey("Then the banner and listing see it", func() {
				So(svc.Banner().View().Data.Slide.Length, ShouldEqual, 3)
				So(svc.Events().View(feed.BucketUpcoming, "").Data.Items, ShouldHaveLength, 2)
			})
		})
	})
}

func eventuallyTrue(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return false
}
