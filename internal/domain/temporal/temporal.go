// Package temporal classifies dated content as past or upcoming.
//
// Two policies exist because the events listing and the events banner
// disagree on what "past" means. Both are kept under their own names.
package temporal

import (
	"sort"
	"time"
)

// Status is the classification of an item relative to an evaluation instant.
type Status string

// Classifications.
const (
	Upcoming Status = "upcoming"
	Past     Status = "past"
)

// Policy decides whether a start instant lies in the past.
type Policy int

const (
	// InstantPolicy compares raw instants: past iff start < now.
	InstantPolicy Policy = iota
	// DayFloorPolicy floors now to local midnight first, so an event stays
	// upcoming for the whole of its day.
	DayFloorPolicy
)

// String returns the policy name.
func (p Policy) String() string {
	switch p {
	case DayFloorPolicy:
		return "day-floor"
	default:
		return "instant"
	}
}

// ParsePolicy maps a policy name back to a Policy.
func ParsePolicy(s string) (Policy, bool) {
	switch s {
	case "instant":
		return InstantPolicy, true
	case "day-floor", "dayfloor":
		return DayFloorPolicy, true
	}
	return InstantPolicy, false
}

// Classify returns Past or Upcoming for an item starting at start, evaluated at now.
func (p Policy) Classify(start, now time.Time) Status {
	if start.Before(p.Reference(now)) {
		return Past
	}
	return Upcoming
}

// Reference is the instant start times are compared against.
func (p Policy) Reference(now time.Time) time.Time {
	if p == DayFloorPolicy {
		return StartOfDay(now)
	}
	return now
}

// StartOfDay returns midnight of t's calendar day in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Compare orders two start instants ascending. It returns -1, 0 or 1.
func Compare(a, b time.Time) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	default:
		return 0
	}
}

// SortByStart stably sorts items ascending by the start returned from key.
func SortByStart[T any](items []T, key func(T) time.Time) {
	sort.SliceStable(items, func(i, j int) bool {
		return Compare(key(items[i]), key(items[j])) < 0
	})
}

// Clock returns the current instant. Every classification pass reads it anew.
type Clock func() time.Time

// SystemClock reads the wall clock.
func SystemClock() time.Time { return time.Now() }
