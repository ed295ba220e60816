package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/okian/clubhouse/internal/domain/feed"
	"github.com/okian/clubhouse/internal/domain/slideshow"
	"github.com/okian/clubhouse/internal/domain/temporal"
	"github.com/okian/clubhouse/pkg/logger"
)

// FeedsHandler serves the read views and banner navigation.
type FeedsHandler struct {
	banner BannerSource
	events EventsSource
	blogs  BlogsSource
	team   TeamSource
	log    logger.Logger
}

// NewFeedsHandler creates a new feeds handler.
func NewFeedsHandler(deps Dependencies, log logger.Logger) *FeedsHandler {
	return &FeedsHandler{
		banner: deps.Banner,
		events: deps.Events,
		blogs:  deps.Blogs,
		team:   deps.Team,
		log:    log,
	}
}

type navigationResponse struct {
	Moved bool               `json:"moved"`
	Slide slideshow.Snapshot `json:"slide"`
}

// HandleBanner handles GET /v1/feeds/banner.
func (h *FeedsHandler) HandleBanner(w http.ResponseWriter, _ *http.Request) {
	writeView(w, h.banner.View())
}

// HandleNext handles POST /v1/feeds/banner/next.
func (h *FeedsHandler) HandleNext(w http.ResponseWriter, _ *http.Request) {
	moved := h.banner.Next()
	writeJSON(w, http.StatusOK, navigationResponse{Moved: moved, Slide: h.banner.Slide()})
}

// HandlePrevious handles POST /v1/feeds/banner/previous.
func (h *FeedsHandler) HandlePrevious(w http.ResponseWriter, _ *http.Request) {
	moved := h.banner.Previous()
	writeJSON(w, http.StatusOK, navigationResponse{Moved: moved, Slide: h.banner.Slide()})
}

// HandleGoto handles POST /v1/feeds/banner/goto/{index}. An index outside
// the banner leaves the slideshow where it is.
func (h *FeedsHandler) HandleGoto(w http.ResponseWriter, r *http.Request) {
	i, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: index must be an integer", ErrBadRequest))
		return
	}
	moved := h.banner.Goto(i)
	writeJSON(w, http.StatusOK, navigationResponse{Moved: moved, Slide: h.banner.Slide()})
}

// HandleEvents handles GET /v1/feeds/events?bucket=&category=&policy=.
func (h *FeedsHandler) HandleEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	bucket := feed.BucketUpcoming
	if s := q.Get("bucket"); s != "" {
		b, err := feed.ParseBucket(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", err)
			return
		}
		bucket = b
	}

	policy := temporal.DayFloorPolicy
	if s := q.Get("policy"); s != "" {
		p, ok := temporal.ParsePolicy(s)
		if !ok {
			writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: unknown policy %q", ErrBadRequest, s))
			return
		}
		policy = p
	}

	v := h.events.ViewWith(bucket, q.Get("category"), policy)
	if v.Error != "" {
		h.log.Debug(r.Context(), "events view failed", logger.String("error", v.Error))
	}
	writeView(w, v)
}

// HandleBlogs handles GET /v1/blogs?category=.
func (h *FeedsHandler) HandleBlogs(w http.ResponseWriter, r *http.Request) {
	writeView(w, h.blogs.View(r.URL.Query().Get("category")))
}

// HandleTeam handles GET /v1/team.
func (h *FeedsHandler) HandleTeam(w http.ResponseWriter, _ *http.Request) {
	writeView(w, h.team.View())
}
