package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/okian/clubhouse/internal/adapters/backend"
	app "github.com/okian/clubhouse/internal/app"
	"github.com/okian/clubhouse/internal/config"
	"github.com/okian/clubhouse/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		_ = logger.Init()
		ctx := context.Background()

		convey.Convey("When configuration comes from the environment", func() {
			_ = os.Setenv("CLUB_BACKEND", "sqlite")
			_ = os.Setenv("CLUB_SQLITE__PATH", filepath.Join(t.TempDir(), "club.db"))
			_ = os.Setenv("CLUB_NOTIFY__WORKERS", "3")
			_ = os.Setenv("CLUB_FEED__REFRESH_INTERVAL", "0s")
			defer func() {
				for _, k := range []string{"CLUB_BACKEND", "CLUB_SQLITE__PATH", "CLUB_NOTIFY__WORKERS", "CLUB_FEED__REFRESH_INTERVAL"} {
					_ = os.Unsetenv(k)
				}
			}()

			cfg, err := config.Load(ctx)
			convey.So(err, convey.ShouldBeNil)

			b, err := backend.Open(ctx, cfg)
			convey.So(err, convey.ShouldBeNil)
			defer b.Close()

			svc := app.New(b.Repository, serviceOptions(cfg, logger.Get())...)
			convey.So(svc.Start(ctx), convey.ShouldBeNil)
			defer svc.Stop(ctx)

			convey.Convey("Then the service carries the configured settings", func() {
				stats := svc.GetStats()
				convey.So(stats["workerCount"], convey.ShouldEqual, 3)
				convey.So(svc.Banner().Slide().Length, convey.ShouldEqual, 0)
			})

			convey.Convey("Then the mux serves the API, docs and health", func() {
				mux := newMux(ctx, svc, map[string]func() error{"store": func() error { return nil }})

				for _, path := range []string{"/v1/feeds/banner", "/v1/feeds/events", "/v1/blogs", "/v1/team", "/healthz", "/stats", "/metrics", "/api-docs", "/openapi.yaml"} {
					w := httptest.NewRecorder()
					mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, http.NoBody))
					convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				}
			})

			convey.Convey("Then a newsletter signup round-trips through the mux", func() {
				mux := newMux(ctx, svc, nil)
				post := func() int {
					w := httptest.NewRecorder()
					req := httptest.NewRequest(http.MethodPost, "/v1/forms/newsletter", strings.NewReader(`{"email":"ada@example.edu"}`))
					mux.ServeHTTP(w, req)
					return w.Code
				}
				convey.So(post(), convey.ShouldEqual, http.StatusCreated)
				convey.So(post(), convey.ShouldEqual, http.StatusConflict)
			})

			convey.Convey("Then a failing health check makes the service unavailable", func() {
				mux := newMux(ctx, svc, map[string]func() error{"minio": func() error { return errors.New("bucket missing") }})
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", http.NoBody))
				convey.So(w.Code, convey.ShouldEqual, http.StatusServiceUnavailable)
			})
		})
	})
}

func TestServiceOptions(t *testing.T) {
	convey.Convey("Given a default configuration", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then every tunable becomes a service option", func() {
			opts := serviceOptions(cfg, logger.Nop())
			convey.So(opts, convey.ShouldHaveLength, 5)
			convey.So(cfg.Feed.TickInterval, convey.ShouldEqual, 4*time.Second)
		})
	})
}
