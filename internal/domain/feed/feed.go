// Package feed turns raw events into display-ready, classified feeds.
//
// Build is pure: the same events, instant and policy always give the same
// feed. Callers only invoke it with a complete fetch result.
package feed

import (
	"fmt"
	"strings"
	"time"

	"github.com/okian/clubhouse/internal/domain/model"
	"github.com/okian/clubhouse/internal/domain/temporal"
)

// Bucket selects one half of the listing.
type Bucket string

// Buckets.
const (
	BucketUpcoming Bucket = "Upcoming"
	BucketPrevious Bucket = "Previous"
)

// ParseBucket accepts exactly "Upcoming" or "Previous".
func ParseBucket(s string) (Bucket, error) {
	switch Bucket(s) {
	case BucketUpcoming, BucketPrevious:
		return Bucket(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownBucket, s)
}

// Status returns the classification a bucket holds.
func (b Bucket) Status() temporal.Status {
	if b == BucketPrevious {
		return temporal.Past
	}
	return temporal.Upcoming
}

// DisplayItem is an event ready for rendering.
type DisplayItem struct {
	Event     model.Event     `json:"event"`
	Status    temporal.Status `json:"status"`
	DateLabel string          `json:"dateLabel"`
	Theme     Theme           `json:"theme"`
}

// Feed is the classified, chronologically ordered event sequence.
type Feed struct {
	Items                     []DisplayItem          `json:"items"`
	CategoryTally             map[model.Category]int `json:"categoryTally"`
	Policy                    string                 `json:"policy"`
	UpcomingCount             int                    `json:"upcomingCount"`
	PastCount                 int                    `json:"pastCount"`
	TotalParticipantsEstimate int                    `json:"totalParticipantsEstimate"`
}

// Build de-duplicates raw by ID (first occurrence wins), sorts ascending by
// start keeping input order on ties, and classifies each item under policy
// at now. Nothing is excluded.
func Build(raw []model.Event, now time.Time, policy temporal.Policy) Feed {
	f := Feed{
		Items:         make([]DisplayItem, 0, len(raw)),
		CategoryTally: make(map[model.Category]int),
		Policy:        policy.String(),
	}

	seen := make(map[string]struct{}, len(raw))
	events := make([]model.Event, 0, len(raw))
	for _, e := range raw {
		if e.ID != "" {
			if _, dup := seen[e.ID]; dup {
				continue
			}
			seen[e.ID] = struct{}{}
		}
		events = append(events, e)
	}
	temporal.SortByStart(events, func(e model.Event) time.Time { return e.Start })

	for _, e := range events {
		status := policy.Classify(e.Start, now)
		f.Items = append(f.Items, DisplayItem{
			Event:     e,
			Status:    status,
			DateLabel: DateLabel(e.Start, e.End),
			Theme:     DisplayTheme(e.Category, status),
		})
		if status == temporal.Past {
			f.PastCount++
		} else {
			f.UpcomingCount++
		}
		if e.Participants > 0 {
			f.TotalParticipantsEstimate += e.Participants
		}
		f.CategoryTally[e.Category]++
	}
	return f
}

// Len is the number of items.
func (f Feed) Len() int { return len(f.Items) }

// Bucket returns the items of one bucket in feed order.
func (f Feed) Bucket(b Bucket) []DisplayItem {
	want := b.Status()
	out := make([]DisplayItem, 0, len(f.Items))
	for _, it := range f.Items {
		if it.Status == want {
			out = append(out, it)
		}
	}
	return out
}

// Filter returns items of one category in feed order. "" and "All" match everything.
func Filter(items []DisplayItem, category string) []DisplayItem {
	if category == "" || strings.EqualFold(category, "All") {
		return items
	}
	c, _ := model.ParseCategory(category)
	out := make([]DisplayItem, 0, len(items))
	for _, it := range items {
		if it.Event.Category == c {
			out = append(out, it)
		}
	}
	return out
}
