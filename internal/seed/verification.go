package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/clubhouse/internal/adapters/repository"
	"github.com/okian/clubhouse/internal/domain/feed"
	"github.com/okian/clubhouse/internal/domain/model"
	"github.com/okian/clubhouse/internal/domain/temporal"
)

// Verify reads the store back and checks that every written item is there
// and that the events classify consistently.
func Verify(ctx context.Context, repo *repository.Repository, now time.Time, w Written, stats *Stats) error {
	events, err := repo.Events.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to read events: %w", err)
	}
	if err := containsAll(ids(events, eventID), ids(w.Events, eventID)); err != nil {
		return fmt.Errorf("events: %w", err)
	}

	blogs, err := repo.Blogs.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to read blogs: %w", err)
	}
	if err := containsAll(ids(blogs, blogID), ids(w.Blogs, blogID)); err != nil {
		return fmt.Errorf("blogs: %w", err)
	}

	team, err := repo.Team.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to read team: %w", err)
	}
	if err := containsAll(ids(team, memberID), ids(w.Team, memberID)); err != nil {
		return fmt.Errorf("team: %w", err)
	}

	day := feed.Build(events, now, temporal.DayFloorPolicy)
	instant := feed.Build(events, now, temporal.InstantPolicy)
	if day.UpcomingCount+day.PastCount != day.Len() {
		return fmt.Errorf("day-floor feed lost items: %d+%d != %d", day.UpcomingCount, day.PastCount, day.Len())
	}
	// the day floor is never later than the instant, so it can only see more upcoming
	if day.UpcomingCount < instant.UpcomingCount {
		return fmt.Errorf("day-floor upcoming %d below instant upcoming %d", day.UpcomingCount, instant.UpcomingCount)
	}

	stats.Upcoming = day.UpcomingCount
	stats.Past = day.PastCount
	return nil
}

func containsAll(have, want []string) error {
	set := make(map[string]struct{}, len(have))
	for _, id := range have {
		set[id] = struct{}{}
	}
	for _, id := range want {
		if _, ok := set[id]; !ok {
			return fmt.Errorf("written item %s not found in store", id)
		}
	}
	return nil
}

func ids[T any](items []T, id func(T) string) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = id(it)
	}
	return out
}

func eventID(e model.Event) string       { return e.ID }
func blogID(b model.Blog) string         { return b.ID }
func memberID(m model.TeamMember) string { return m.ID }
