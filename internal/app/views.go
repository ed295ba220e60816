package service

import (
	"context"
	"time"

	"github.com/okian/clubhouse/internal/adapters/repository"
	"github.com/okian/clubhouse/internal/domain/feed"
	"github.com/okian/clubhouse/internal/domain/model"
	"github.com/okian/clubhouse/internal/domain/slideshow"
	"github.com/okian/clubhouse/internal/domain/temporal"
	"github.com/okian/clubhouse/pkg/logger"
	"github.com/okian/clubhouse/pkg/metrics"
)

// View names used in metrics and logs.
const (
	ViewBanner = "banner"
	ViewEvents = "events"
	ViewBlogs  = "blogs"
	ViewTeam   = "team"
)

// EventLister lists events.
type EventLister interface {
	GetAll(ctx context.Context) ([]model.Event, error)
}

// BlogLister lists blog posts.
type BlogLister interface {
	GetAll(ctx context.Context) ([]model.Blog, error)
}

// TeamLister lists team members.
type TeamLister interface {
	GetAll(ctx context.Context) ([]model.TeamMember, error)
}

// ImageResolver turns an image file ID into a URL.
type ImageResolver interface {
	ImageURL(ctx context.Context, kind repository.ImageKind, fileID string, width, height int) (string, error)
}

// ViewState is the rendered form of a loader state. Data is set only when
// Phase is Ready and Error only when it is Failed.
type ViewState[T any] struct {
	Data      *T        `json:"data,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitzero"`
	Error     string    `json:"error,omitempty"`
	Phase     Phase     `json:"state"`
}

func render[T, R any](s State[T], f func(T) R) ViewState[R] {
	out := ViewState[R]{Phase: s.Phase, UpdatedAt: s.UpdatedAt}
	switch s.Phase {
	case Failed:
		out.Error = s.Err.Error()
	case Ready:
		r := f(s.Data)
		out.Data = &r
	}
	return out
}

// Banner is the home page slideshow: every event, classified at the instant.
type Banner struct {
	Feed    feed.Feed          `json:"feed"`
	Current *feed.DisplayItem  `json:"current,omitempty"`
	Slide   slideshow.Snapshot `json:"slide"`
}

// BannerView owns the banner's loader and slideshow.
type BannerView struct {
	loader *Loader[[]model.Event]
	slides *slideshow.Controller
	clock  temporal.Clock
}

// NewBannerView builds the banner over events. The slideshow starts Idle
// and is resized on every successful refresh.
func NewBannerView(events EventLister, clock temporal.Clock, opts ...slideshow.Option) *BannerView {
	if clock == nil {
		clock = temporal.SystemClock
	}
	v := &BannerView{
		loader: NewLoader(ViewBanner, events.GetAll, clock),
		slides: slideshow.New(0, opts...),
		clock:  clock,
	}
	v.loader.OnReady(func(raw []model.Event) {
		f := feed.Build(raw, v.clock(), temporal.InstantPolicy)
		metrics.RecordFeedBuild(ViewBanner, f.UpcomingCount, f.PastCount)
		v.slides.SetLength(f.Len())
	})
	return v
}

// Refresh reloads the events.
func (v *BannerView) Refresh(ctx context.Context) error {
	_, err := v.loader.Refresh(ctx)
	return err
}

// View renders the banner at the current instant.
func (v *BannerView) View() ViewState[Banner] {
	snap := v.slides.Snapshot()
	return render(v.loader.State(), func(raw []model.Event) Banner {
		b := Banner{Feed: feed.Build(raw, v.clock(), temporal.InstantPolicy), Slide: snap}
		if snap.Index >= 0 && snap.Index < b.Feed.Len() {
			item := b.Feed.Items[snap.Index]
			b.Current = &item
		}
		return b
	})
}

// Next advances the slideshow manually.
func (v *BannerView) Next() bool {
	metrics.RecordSlideAdvance("manual")
	return v.slides.Next()
}

// Previous steps the slideshow back manually.
func (v *BannerView) Previous() bool {
	metrics.RecordSlideAdvance("manual")
	return v.slides.Previous()
}

// Goto jumps to slide i. Out of range is a no-op.
func (v *BannerView) Goto(i int) bool {
	ok := v.slides.Goto(i)
	if ok {
		metrics.RecordSlideAdvance("manual")
	}
	return ok
}

// Slide reports the slideshow position.
func (v *BannerView) Slide() slideshow.Snapshot { return v.slides.Snapshot() }

// Slides exposes the controller for observers.
func (v *BannerView) Slides() *slideshow.Controller { return v.slides }

// Close stops the slideshow and drops late results.
func (v *BannerView) Close() {
	v.loader.Close()
	v.slides.Close()
}

// Listing is the events page for one bucket.
type Listing struct {
	Items    []feed.DisplayItem `json:"items"`
	Bucket   feed.Bucket        `json:"bucket"`
	Category string             `json:"category,omitempty"`
	Feed     feed.Feed          `json:"feed"`
}

// EventsView is the events page, classified by calendar day.
type EventsView struct {
	loader *Loader[[]model.Event]
	clock  temporal.Clock
}

// NewEventsView builds the events listing.
func NewEventsView(events EventLister, clock temporal.Clock) *EventsView {
	if clock == nil {
		clock = temporal.SystemClock
	}
	return &EventsView{loader: NewLoader(ViewEvents, events.GetAll, clock), clock: clock}
}

// Refresh reloads the events.
func (v *EventsView) Refresh(ctx context.Context) error {
	_, err := v.loader.Refresh(ctx)
	return err
}

// View renders bucket b, optionally narrowed to one category.
func (v *EventsView) View(b feed.Bucket, category string) ViewState[Listing] {
	return v.ViewWith(b, category, temporal.DayFloorPolicy)
}

// ViewWith renders bucket b under an explicit policy.
func (v *EventsView) ViewWith(b feed.Bucket, category string, policy temporal.Policy) ViewState[Listing] {
	return render(v.loader.State(), func(raw []model.Event) Listing {
		f := feed.Build(raw, v.clock(), policy)
		metrics.RecordFeedBuild(ViewEvents, f.UpcomingCount, f.PastCount)
		return Listing{Items: feed.Filter(f.Bucket(b), category), Bucket: b, Category: category, Feed: f}
	})
}

// Close drops late results.
func (v *EventsView) Close() { v.loader.Close() }

// BlogsView is the blog page.
type BlogsView struct {
	loader *Loader[[]model.Blog]
}

// NewBlogsView builds the blog listing.
func NewBlogsView(blogs BlogLister, clock temporal.Clock) *BlogsView {
	return &BlogsView{loader: NewLoader(ViewBlogs, blogs.GetAll, clock)}
}

// Refresh reloads the posts.
func (v *BlogsView) Refresh(ctx context.Context) error {
	_, err := v.loader.Refresh(ctx)
	return err
}

// View renders the posts filtered by category ("" or "All" for every post).
func (v *BlogsView) View(category string) ViewState[feed.BlogFeed] {
	return render(v.loader.State(), func(raw []model.Blog) feed.BlogFeed {
		return feed.BuildBlogFeed(raw, category)
	})
}

// Close drops late results.
func (v *BlogsView) Close() { v.loader.Close() }

// TeamCard is a team member with a resolved portrait URL.
type TeamCard struct {
	model.TeamMember
	ImageURL string `json:"imageUrl,omitempty"`
}

// TeamView is the leadership page.
type TeamView struct {
	loader *Loader[[]TeamCard]
}

// NewTeamView builds the team page. Portraits are resolved while loading;
// a member whose image cannot be resolved is shown without one.
func NewTeamView(team TeamLister, images ImageResolver, clock temporal.Clock) *TeamView {
	log := logger.Get().Named("team-view")
	fetch := func(ctx context.Context) ([]TeamCard, error) {
		members, err := team.GetAll(ctx)
		if err != nil {
			return nil, err
		}
		cards := make([]TeamCard, len(members))
		for i, m := range members {
			cards[i] = TeamCard{TeamMember: m}
			if m.ImageID == "" || images == nil {
				continue
			}
			u, err := images.ImageURL(ctx, repository.TeamImage, m.ImageID, 0, 0)
			if err != nil {
				log.Debug(ctx, "portrait unavailable", logger.String("member", m.ID), logger.Error(err))
				continue
			}
			cards[i].ImageURL = u
		}
		return cards, nil
	}
	return &TeamView{loader: NewLoader(ViewTeam, fetch, clock)}
}

// Refresh reloads the team.
func (v *TeamView) Refresh(ctx context.Context) error {
	_, err := v.loader.Refresh(ctx)
	return err
}

// View renders the team newest first, as listed by the repository.
func (v *TeamView) View() ViewState[[]TeamCard] {
	return render(v.loader.State(), func(cards []TeamCard) []TeamCard { return cards })
}

// Close drops late results.
func (v *TeamView) Close() { v.loader.Close() }
