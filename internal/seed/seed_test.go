package seed_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/clubhouse/internal/adapters/docstore"
	"github.com/okian/clubhouse/internal/adapters/repository"
	"github.com/okian/clubhouse/internal/domain/model"
	"github.com/okian/clubhouse/internal/seed"
	. "github.com/smartystreets/goconvey/convey"
)

func newRepo(t *testing.T) *repository.Repository {
	t.Helper()
	store, err := docstore.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "club.db"))
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

func TestGenerate(t *testing.T) {
	Convey("Given generated content", t, func() {
		now := time.Date(2025, time.November, 15, 15, 0, 0, 0, time.UTC)
		span := 10 * 24 * time.Hour
		events := seed.GenerateEvents(50, now, span)

		Convey("Then every event is valid and starts within the span", func() {
			So(events, ShouldHaveLength, 50)
			for _, e := range events {
				So(e.Validate(), ShouldBeNil)
				So(e.Start.After(now.Add(-span-time.Hour)), ShouldBeTrue)
				So(e.Start.Before(now.Add(span+time.Hour)), ShouldBeTrue)
				So(e.Category.Known(), ShouldBeTrue)
			}
		})

		Convey("Then only the first post is featured and the team is ordered", func() {
			blogs := seed.GenerateBlogs(3)
			So(blogs[0].Featured, ShouldBeTrue)
			So(blogs[1].Featured || blogs[2].Featured, ShouldBeFalse)

			team := seed.GenerateTeam(3)
			So(team[0].Order, ShouldEqual, 1)
			So(team[2].Role, ShouldEqual, "Treasurer")
		})
	})
}

func TestRun(t *testing.T) {
	Convey("Given an empty store", t, func() {
		ctx := context.Background()
		repo := newRepo(t)
		out := filepath.Join(t.TempDir(), "out", "seed.json")
		now := time.Date(2025, time.November, 15, 15, 0, 0, 0, time.UTC)

		Convey("When it is seeded", func() {
			stats, err := seed.Run(ctx, repo, &seed.Config{
				Events: 20, Blogs: 3, Team: 4, Workers: 3, Now: now, OutputFile: out,
			})

			Convey("Then everything is written and classified", func() {
				So(err, ShouldBeNil)
				So(stats.EventsWritten, ShouldEqual, 20)
				So(stats.BlogsWritten, ShouldEqual, 3)
				So(stats.TeamWritten, ShouldEqual, 4)
				So(stats.Failed, ShouldEqual, 0)
				So(stats.Upcoming+stats.Past, ShouldEqual, 20)
			})

			Convey("Then the team lists the last written member first", func() {
				team, err := repo.Team.GetAll(ctx)
				So(err, ShouldBeNil)
				So(team, ShouldHaveLength, 4)
				for i, m := range team {
					So(m.Order, ShouldEqual, len(team)-i)
				}
			})

			Convey("Then the output file lists the stored IDs", func() {
				data, err := os.ReadFile(out)
				So(err, ShouldBeNil)
				var w seed.Written
				So(json.Unmarshal(data, &w), ShouldBeNil)
				So(w.Events, ShouldHaveLength, 20)
				So(w.Events[0].ID, ShouldNotBeBlank)
				So(w.Blogs[0].Featured, ShouldBeTrue)
			})

			Convey("Then the featured post is queryable", func() {
				featured, err := repo.Blogs.GetFeatured(ctx)
				So(err, ShouldBeNil)
				So(featured, ShouldHaveLength, 1)
			})
		})

		Convey("When the context is already cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := seed.Run(cctx, repo, &seed.Config{Events: 5, Now: now})

			Convey("Then the run reports cancellation", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}

func TestCategoryCoverage(t *testing.T) {
	events := seed.GenerateEvents(len(model.Categories()), time.Now(), time.Hour)
	seen := map[model.Category]bool{}
	for _, e := range events {
		seen[e.Category] = true
	}
	if len(seen) != len(model.Categories()) {
		t.Fatalf("expected every category once, got %v", seen)
	}
}
