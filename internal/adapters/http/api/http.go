// Package api exposes the club view-models over HTTP.
package api

import (
	"context"
	"net/http"

	service "github.com/okian/clubhouse/internal/app"
	"github.com/okian/clubhouse/internal/domain/feed"
	"github.com/okian/clubhouse/internal/domain/model"
	"github.com/okian/clubhouse/internal/domain/slideshow"
	"github.com/okian/clubhouse/internal/domain/temporal"
	"github.com/okian/clubhouse/pkg/logger"
)

// BannerSource renders the home page banner and drives its slideshow.
type BannerSource interface {
	View() service.ViewState[service.Banner]
	Slide() slideshow.Snapshot
	Next() bool
	Previous() bool
	Goto(i int) bool
}

// EventsSource renders the events listing.
type EventsSource interface {
	ViewWith(b feed.Bucket, category string, policy temporal.Policy) service.ViewState[service.Listing]
}

// BlogsSource renders the blog listing.
type BlogsSource interface {
	View(category string) service.ViewState[feed.BlogFeed]
}

// TeamSource renders the team page.
type TeamSource interface {
	View() service.ViewState[[]service.TeamCard]
}

// Submitter accepts form submissions.
type Submitter interface {
	Submit(ctx context.Context, kind model.SubmissionKind, fields map[string]string) (string, error)
}

// Refresher reloads every view.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Dependencies required by HTTP handlers.
type Dependencies struct {
	Banner    BannerSource
	Events    EventsSource
	Blogs     BlogsSource
	Team      TeamSource
	Forms     Submitter
	Refresher Refresher
	Stats     StatsProvider
	Checks    map[string]HealthCheck
}

// FromService bundles a service's views as handler dependencies.
func FromService(s *service.Service) Dependencies {
	return Dependencies{
		Banner:    s.Banner(),
		Events:    s.Events(),
		Blogs:     s.Blogs(),
		Team:      s.Team(),
		Forms:     s,
		Refresher: s,
		Stats:     s,
	}
}

// Server wires HTTP routes for the club API.
type Server struct {
	healthHandler *HealthHandler
	statsHandler  *StatsHandler
	feedsHandler  *FeedsHandler
	formsHandler  *FormsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies) *Server {
	log := logger.Get().Named("api")
	return &Server{
		healthHandler: NewHealthHandler(deps.Checks),
		statsHandler:  NewStatsHandler(deps.Stats),
		feedsHandler:  NewFeedsHandler(deps, log),
		formsHandler:  NewFormsHandler(deps.Forms, deps.Refresher, log),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.Handle("GET /metrics", s.healthHandler.MetricsHandler())
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("GET /v1/feeds/banner", MetricsMiddleware(s.feedsHandler.HandleBanner, "banner"))
	mux.HandleFunc("POST /v1/feeds/banner/next", MetricsMiddleware(s.feedsHandler.HandleNext, "banner_nav"))
	mux.HandleFunc("POST /v1/feeds/banner/previous", MetricsMiddleware(s.feedsHandler.HandlePrevious, "banner_nav"))
	mux.HandleFunc("POST /v1/feeds/banner/goto/{index}", MetricsMiddleware(s.feedsHandler.HandleGoto, "banner_nav"))
	mux.HandleFunc("GET /v1/feeds/events", MetricsMiddleware(s.feedsHandler.HandleEvents, "events"))
	mux.HandleFunc("GET /v1/blogs", MetricsMiddleware(s.feedsHandler.HandleBlogs, "blogs"))
	mux.HandleFunc("GET /v1/team", MetricsMiddleware(s.feedsHandler.HandleTeam, "team"))

	mux.HandleFunc("POST /v1/forms/{kind}", MetricsMiddleware(s.formsHandler.HandleSubmit, "forms"))
	mux.HandleFunc("POST /v1/refresh", MetricsMiddleware(s.formsHandler.HandleRefresh, "refresh"))
}
