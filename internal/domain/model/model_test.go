package model_test

import (
	"testing"
	"time"

	model "github.com/okian/clubhouse/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestEventValidate(t *testing.T) {
	convey.Convey("Given an event", t, func() {
		start := time.Date(2025, time.November, 15, 18, 0, 0, 0, time.UTC)

		convey.Convey("When only the start is set", func() {
			e := model.Event{Start: start}

			convey.Convey("Then it should be valid", func() {
				convey.So(e.Validate(), convey.ShouldBeNil)
			})
		})

		convey.Convey("When the end equals the start", func() {
			end := start
			e := model.Event{Start: start, End: &end}

			convey.Convey("Then it should be valid", func() {
				convey.So(e.Validate(), convey.ShouldBeNil)
			})
		})

		convey.Convey("When the end is before the start", func() {
			end := start.Add(-time.Hour)
			e := model.Event{Start: start, End: &end}

			convey.Convey("Then it should be rejected", func() {
				convey.So(e.Validate(), convey.ShouldEqual, model.ErrEndBeforeStart)
			})
		})

		convey.Convey("When the start is missing", func() {
			e := model.Event{}

			convey.Convey("Then it should be rejected", func() {
				convey.So(e.Validate(), convey.ShouldEqual, model.ErrMissingStart)
			})
		})
	})
}

func TestParseCategory(t *testing.T) {
	convey.Convey("Given category strings", t, func() {
		convey.Convey("When the value is known in a different case", func() {
			c, ok := model.ParseCategory("  community ")

			convey.Convey("Then the canonical category is returned", func() {
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(c, convey.ShouldEqual, model.CategoryCommunity)
				convey.So(c.Known(), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the value is multi-word", func() {
			c, ok := model.ParseCategory("industry insights")

			convey.Convey("Then it should still match", func() {
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(c, convey.ShouldEqual, model.CategoryIndustryInsights)
			})
		})

		convey.Convey("When the value is unknown", func() {
			c, ok := model.ParseCategory("Unobtainium")

			convey.Convey("Then it is passed through without error", func() {
				convey.So(ok, convey.ShouldBeFalse)
				convey.So(c, convey.ShouldEqual, model.Category("Unobtainium"))
				convey.So(c.Known(), convey.ShouldBeFalse)
			})
		})

		convey.Convey("When listing categories", func() {
			convey.So(model.Categories(), convey.ShouldHaveLength, 7)
			convey.So(model.Categories()[0], convey.ShouldEqual, model.CategoryEntrepreneurship)
		})
	})
}
