package temporal_test

import (
	"testing"
	"time"

	"github.com/okian/clubhouse/internal/domain/temporal"
	. "github.com/smartystreets/goconvey/convey"
)

func TestClassify(t *testing.T) {
	berlin := time.FixedZone("CET", 3600)
	now := time.Date(2025, time.November, 15, 15, 0, 0, 0, berlin)

	Convey("Given an evaluation instant of today at 15:00", t, func() {
		Convey("When the event started today at 09:00", func() {
			start := time.Date(2025, time.November, 15, 9, 0, 0, 0, berlin)

			Convey("Then the day-floor policy keeps it upcoming", func() {
				So(temporal.DayFloorPolicy.Classify(start, now), ShouldEqual, temporal.Upcoming)
			})
			Convey("And the instant policy calls it past", func() {
				So(temporal.InstantPolicy.Classify(start, now), ShouldEqual, temporal.Past)
			})
		})

		Convey("When the event was yesterday", func() {
			start := time.Date(2025, time.November, 14, 20, 0, 0, 0, berlin)

			Convey("Then both policies call it past", func() {
				So(temporal.InstantPolicy.Classify(start, now), ShouldEqual, temporal.Past)
				So(temporal.DayFloorPolicy.Classify(start, now), ShouldEqual, temporal.Past)
			})
		})

		Convey("When the event starts exactly now", func() {
			Convey("Then it is not strictly before now and stays upcoming", func() {
				So(temporal.InstantPolicy.Classify(now, now), ShouldEqual, temporal.Upcoming)
			})
		})

		Convey("When the event starts at midnight today", func() {
			midnight := temporal.StartOfDay(now)

			Convey("Then the day-floor policy keeps it upcoming", func() {
				So(temporal.DayFloorPolicy.Classify(midnight, now), ShouldEqual, temporal.Upcoming)
				So(temporal.DayFloorPolicy.Classify(midnight.Add(-time.Nanosecond), now), ShouldEqual, temporal.Past)
			})
		})

		Convey("When the event is next week", func() {
			start := now.AddDate(0, 0, 7)

			Convey("Then both policies call it upcoming", func() {
				So(temporal.InstantPolicy.Classify(start, now), ShouldEqual, temporal.Upcoming)
				So(temporal.DayFloorPolicy.Classify(start, now), ShouldEqual, temporal.Upcoming)
			})
		})
	})
}

func TestStartOfDayKeepsLocation(t *testing.T) {
	loc := time.FixedZone("X", -5*3600)
	ts := time.Date(2026, time.January, 10, 23, 30, 0, 0, loc)
	got := temporal.StartOfDay(ts)
	want := time.Date(2026, time.January, 10, 0, 0, 0, 0, loc)
	if !got.Equal(want) || got.Location() != loc {
		t.Fatalf("StartOfDay(%v) = %v, want %v", ts, got, want)
	}
}

func TestSortByStartIsStable(t *testing.T) {
	type item struct {
		id    string
		start time.Time
	}
	base := time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC)
	items := []item{
		{"c", base.Add(48 * time.Hour)},
		{"a1", base},
		{"b", base.Add(24 * time.Hour)},
		{"a2", base},
	}

	temporal.SortByStart(items, func(i item) time.Time { return i.start })

	want := []string{"a1", "a2", "b", "c"}
	for i, id := range want {
		if items[i].id != id {
			t.Fatalf("position %d: got %s, want %s", i, items[i].id, id)
		}
	}
}

func TestParsePolicy(t *testing.T) {
	cases := map[string]temporal.Policy{
		"instant":   temporal.InstantPolicy,
		"day-floor": temporal.DayFloorPolicy,
		"dayfloor":  temporal.DayFloorPolicy,
	}
	for in, want := range cases {
		got, ok := temporal.ParsePolicy(in)
		if !ok || got != want {
			t.Errorf("ParsePolicy(%q) = %v,%v want %v", in, got, ok, want)
		}
		if want.String() == "" {
			t.Errorf("empty name for %v", want)
		}
	}
	if _, ok := temporal.ParsePolicy("weekly"); ok {
		t.Error("expected unknown policy to be rejected")
	}
}
