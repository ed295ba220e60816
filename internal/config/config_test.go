package config_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/okian/clubhouse/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.Backend, convey.ShouldEqual, config.BackendAppwrite)
			convey.So(cfg.Feed.TickInterval, convey.ShouldEqual, 4*time.Second)
			convey.So(cfg.Feed.ResumeDelay, convey.ShouldEqual, 8*time.Second)
			convey.So(cfg.Notify.QueueSize, convey.ShouldEqual, 1024)
		})

		convey.Convey("Then the appwrite backend reports every missing identifier", func() {
			err := cfg.Validate()
			var cerr *config.ConfigurationError
			convey.So(errors.As(err, &cerr), convey.ShouldBeTrue)
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			convey.So(cerr.Missing, convey.ShouldHaveLength, 12)
			convey.So(cerr.Missing, convey.ShouldContain, "appwrite.endpoint")
			convey.So(cerr.Missing, convey.ShouldContain, "collections.newsletter_subscribers")
			convey.So(cerr.Missing, convey.ShouldContain, "buckets.team_images")
		})

		convey.Convey("When local defaults are applied for sqlite", func() {
			cfg.Backend = config.BackendSQLite
			cfg.LocalDefaults()

			convey.Convey("Then it validates", func() {
				convey.So(cfg.Validate(), convey.ShouldBeNil)
				convey.So(cfg.Collections.Events, convey.ShouldEqual, "events")
			})
		})

		convey.Convey("When the backend or timings are invalid", func() {
			cfg.Backend = "mongo"
			cfg.Feed.TickInterval = 0
			err := cfg.Validate()

			convey.Convey("Then each is named", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, `backend must be "appwrite" or "sqlite"`)
				convey.So(err.Error(), convey.ShouldContainSubstring, "feed.tick_interval must be positive")
			})
		})
	})
}
