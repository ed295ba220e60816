// Package seed fills a content store with generated events, posts and
// team members for local development.
package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/clubhouse/internal/adapters/repository"
	"github.com/okian/clubhouse/internal/domain/model"
	"github.com/okian/clubhouse/pkg/logger"
)

const (
	directoryPermission = 0o750
	defaultWorkers      = 4
	defaultSpan         = 60 * 24 * time.Hour
)

// Written is everything a run stored, with store-assigned IDs.
type Written struct {
	Events []model.Event      `json:"events"`
	Blogs  []model.Blog       `json:"blogs"`
	Team   []model.TeamMember `json:"team"`
}

// Run generates content, writes it through repo and verifies the result.
func Run(ctx context.Context, repo *repository.Repository, cfg *Config) (*Stats, error) {
	log := logger.Get().Named("seed")
	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkers
	}
	if cfg.Span <= 0 {
		cfg.Span = defaultSpan
	}
	if cfg.Now.IsZero() {
		cfg.Now = time.Now()
	}
	stats := &Stats{StartTime: time.Now()}

	log.Info(ctx, "starting seed",
		logger.Int("events", cfg.Events),
		logger.Int("blogs", cfg.Blogs),
		logger.Int("team", cfg.Team),
		logger.Int("workers", cfg.Workers),
	)

	events := GenerateEvents(cfg.Events, cfg.Now, cfg.Span)
	stats.EventsGenerated = len(events)

	var (
		w      Written
		failed atomic.Int64
	)
	w.Events = writeAll(ctx, cfg.Workers, events, repo.Events.Create, &failed)
	w.Blogs = writeAll(ctx, cfg.Workers, GenerateBlogs(cfg.Blogs), repo.Blogs.Create, &failed)
	// members are written one at a time so creation order follows Order
	w.Team = writeAll(ctx, 1, GenerateTeam(cfg.Team), repo.Team.Create, &failed)

	stats.EventsWritten = len(w.Events)
	stats.BlogsWritten = len(w.Blogs)
	stats.TeamWritten = len(w.Team)
	stats.Failed = int(failed.Load())
	if err := ctx.Err(); err != nil {
		return stats, fmt.Errorf("seed cancelled: %w", err)
	}

	if err := Verify(ctx, repo, cfg.Now, w, stats); err != nil {
		return stats, fmt.Errorf("seed verification failed: %w", err)
	}

	if cfg.OutputFile != "" {
		if err := saveToFile(cfg.OutputFile, w); err != nil {
			log.Warn(ctx, "failed to save seed output", logger.Error(err))
		} else {
			log.Info(ctx, "seed output saved", logger.String("filename", cfg.OutputFile))
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, log, stats)
	return stats, nil
}

// writeAll creates items with a bounded number of concurrent writers and
// returns the stored copies in input order. Failures are counted and skipped.
func writeAll[T any](ctx context.Context, workers int, items []T, create func(context.Context, T) (T, error), failed *atomic.Int64) []T {
	log := logger.Get().Named("seed")
	out := make([]T, len(items))
	ok := make([]bool, len(items))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for range min(workers, max(len(items), 1)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				stored, err := create(ctx, items[i])
				if err != nil {
					failed.Add(1)
					log.Warn(ctx, "failed to write item", logger.Int("index", i), logger.Error(err))
					continue
				}
				out[i], ok[i] = stored, true
			}
		}()
	}

send:
	for i := range items {
		select {
		case <-ctx.Done():
			break send
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	written := make([]T, 0, len(items))
	for i, stored := range out {
		if ok[i] {
			written = append(written, stored)
		}
	}
	return written
}

func saveToFile(filename string, w Written) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(w, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal seed output: %w", err)
	}
	if err := os.WriteFile(filename, data, 0o600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

func displayFinalStats(ctx context.Context, log logger.Logger, stats *Stats) {
	log.Info(ctx, "final statistics",
		logger.Int("eventsGenerated", stats.EventsGenerated),
		logger.Int("eventsWritten", stats.EventsWritten),
		logger.Int("blogsWritten", stats.BlogsWritten),
		logger.Int("teamWritten", stats.TeamWritten),
		logger.Int("failed", stats.Failed),
		logger.Int("upcoming", stats.Upcoming),
		logger.Int("past", stats.Past),
		logger.Duration("duration", stats.Duration),
	)
}
