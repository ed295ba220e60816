// Package service wires the content views, the form gateway and the
// notification pipeline into the service the HTTP API and CLI use.
package service

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"time"

	"github.com/okian/clubhouse/internal/adapters/mq/queue"
	"github.com/okian/clubhouse/internal/adapters/mq/worker"
	"github.com/okian/clubhouse/internal/adapters/repository"
	"github.com/okian/clubhouse/internal/domain/model"
	"github.com/okian/clubhouse/internal/domain/slideshow"
	"github.com/okian/clubhouse/internal/domain/temporal"
	"github.com/okian/clubhouse/pkg/logger"
	"github.com/okian/clubhouse/pkg/metrics"
)

const (
	defaultRefreshInterval = 5 * time.Minute
	defaultQueueSize       = 1024
	defaultWorkerCount     = 2
	systemMetricsInterval  = 10 * time.Second
)

// Service owns one instance of every view plus the submission pipeline.
type Service struct {
	mu sync.RWMutex

	repo    *repository.Repository
	banner  *BannerView
	events  *EventsView
	blogs   *BlogsView
	team    *TeamView
	gateway *Gateway

	notifications *queue.InMemoryQueue
	pool          *worker.Pool
	publisher     worker.Publisher

	refreshInterval time.Duration
	queueSize       int
	workerCount     int
	slideOpts       []slideshow.Option
	clock           temporal.Clock

	started bool
	stopCh  chan struct{}
	wg      sync.WaitGroup

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithRefreshInterval sets how often views reload in the background. Zero
// disables background refresh.
func WithRefreshInterval(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.refreshInterval = d
		}
	}
}

// WithQueueSize sets the notification queue capacity.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithWorkerCount sets the number of notification workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithPublisher sets where notifications are delivered. Without one they
// are only logged.
func WithPublisher(p worker.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithSlideshow passes options to the banner's slideshow controller.
func WithSlideshow(opts ...slideshow.Option) Option {
	return func(s *Service) { s.slideOpts = append(s.slideOpts, opts...) }
}

// WithClock sets the clock views classify against.
func WithClock(c temporal.Clock) Option {
	return func(s *Service) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs the service over repo. Views start in the Loading phase
// until Start or Refresh runs.
func New(repo *repository.Repository, opts ...Option) *Service {
	s := &Service{
		repo:            repo,
		refreshInterval: defaultRefreshInterval,
		queueSize:       defaultQueueSize,
		workerCount:     defaultWorkerCount,
		clock:           temporal.SystemClock,
		stopCh:          make(chan struct{}),
		logger:          logger.Get().Named("service"),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.banner = NewBannerView(repo.Events, s.clock, s.slideOpts...)
	s.events = NewEventsView(repo.Events, s.clock)
	s.blogs = NewBlogsView(repo.Blogs, s.clock)
	s.team = NewTeamView(repo.Team, repo, s.clock)
	s.notifications = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.gateway = NewGateway(repo.Contact, repo.Applications, repo.Newsletter,
		WithNotifier(s.notifications),
		WithGatewayClock(s.clock),
		WithGatewayLogger(s.logger.Named("gateway")),
	)
	return s
}

// Start runs the notification workers, loads every view once and starts
// background refresh. A failed initial load leaves that view in the error
// phase; it does not fail Start.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return nil
	}
	s.logger.Info(ctx, "starting club service...")

	pub := s.publisher
	if pub == nil {
		pub = worker.PublisherFunc(s.logNotification)
	}
	s.pool = worker.NewPool(s.workerCount, s.notifications, pub)
	s.pool.Start(ctx)
	s.started = true
	s.mu.Unlock()

	if err := s.Refresh(ctx); err != nil {
		s.logger.Warn(ctx, "initial load incomplete", logger.Error(err))
	}

	if s.refreshInterval > 0 {
		s.wg.Add(1)
		go s.refreshLoop(s.refreshInterval)
	}
	s.wg.Add(1)
	go s.systemMetricsLoop()

	s.logger.Info(ctx, "club service started",
		logger.Int("workers", s.pool.Size()),
		logger.Int("queueSize", s.queueSize),
		logger.Duration("refreshInterval", s.refreshInterval),
	)
	return nil
}

// Stop closes the views, drains the notification pipeline and stops
// background goroutines. A stopped service is not restarted.
func (s *Service) Stop(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.logger.Info(ctx, "stopping club service...")

	close(s.stopCh)
	s.banner.Close()
	s.events.Close()
	s.blogs.Close()
	s.team.Close()

	if err := s.pool.Shutdown(ctx); err != nil {
		s.logger.Error(ctx, "worker pool shutdown failed", logger.Error(err))
	}
	s.wg.Wait()

	s.started = false
	s.logger.Info(ctx, "club service stopped")
}

// Refresh reloads every view concurrently. Superseded loads are not errors.
func (s *Service) Refresh(ctx context.Context) error {
	refreshers := map[string]func(context.Context) error{
		ViewBanner: s.banner.Refresh,
		ViewEvents: s.events.Refresh,
		ViewBlogs:  s.blogs.Refresh,
		ViewTeam:   s.team.Refresh,
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for name, refresh := range refreshers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := refresh(ctx)
			if err == nil || errors.Is(err, ErrStale) || errors.Is(err, ErrClosed) {
				return
			}
			s.logger.Warn(ctx, "view refresh failed", logger.String("view", name), logger.Error(err))
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
		}()
	}
	wg.Wait()
	return errors.Join(errs...)
}

func (s *Service) refreshLoop(every time.Duration) {
	defer s.wg.Done()
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-s.stopCh
		cancel()
	}()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			_ = s.Refresh(ctx)
		}
	}
}

func (s *Service) systemMetricsLoop() {
	defer s.wg.Done()
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			var m runtime.MemStats
			runtime.ReadMemStats(&m)
			metrics.UpdateSystemMemoryUsage(m.HeapAlloc)
			metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
			if m.NumGC > 0 {
				metrics.RecordSystemGCPauseTime(float64(m.PauseTotalNs) / float64(m.NumGC) / 1e6)
			}
		}
	}
}

func (s *Service) logNotification(ctx context.Context, n model.Notification) error {
	s.logger.Info(ctx, "submission received",
		logger.String("kind", string(n.Kind)),
		logger.String("confirmation", n.Confirmation),
	)
	return nil
}

// Submit validates and stores a form submission.
func (s *Service) Submit(ctx context.Context, kind model.SubmissionKind, fields map[string]string) (string, error) {
	return s.gateway.Submit(ctx, kind, fields)
}

// Banner returns the banner view.
func (s *Service) Banner() *BannerView { return s.banner }

// Events returns the events listing view.
func (s *Service) Events() *EventsView { return s.events }

// Blogs returns the blog view.
func (s *Service) Blogs() *BlogsView { return s.blogs }

// Team returns the team view.
func (s *Service) Team() *TeamView { return s.team }

// Repository returns the underlying content repository.
func (s *Service) Repository() *repository.Repository { return s.repo }

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]any{
		"started":         s.started,
		"workerCount":     s.workerCount,
		"queueSize":       s.queueSize,
		"queueLength":     s.notifications.Len(),
		"refreshInterval": s.refreshInterval.String(),
		"slideshow":       s.banner.Slides().Snapshot(),
	}
	views := map[string]string{
		ViewBanner: s.banner.loader.State().Phase.String(),
		ViewEvents: s.events.loader.State().Phase.String(),
		ViewBlogs:  s.blogs.loader.State().Phase.String(),
		ViewTeam:   s.team.loader.State().Phase.String(),
	}
	stats["views"] = views
	return stats
}
