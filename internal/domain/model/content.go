// Package model contains domain models passed between layers.
package model

import (
	"time"
)

// ContentItem holds the fields shared by events and blog posts.
type ContentItem struct {
	ID          string    `json:"id"` // assigned by the document store on creation
	Category    Category  `json:"category"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ImageID     string    `json:"imageId,omitempty"`
	CreatedAt   time.Time `json:"createdAt"` // assigned by the store, immutable
}

// Event is a club event.
type Event struct {
	ContentItem
	Start           time.Time  `json:"eventDate"`
	End             *time.Time `json:"eventDateEnd,omitempty"`
	Time            string     `json:"time,omitempty"` // free-text slot, e.g. "18:00 - 21:00"
	Location        string     `json:"location"`
	RegistrationURL string     `json:"registrationLink,omitempty"`
	Participants    int        `json:"participants,omitempty"`
}

// Validate checks the event's own invariants.
func (e Event) Validate() error {
	if e.Start.IsZero() {
		return ErrMissingStart
	}
	if e.End != nil && e.End.Before(e.Start) {
		return ErrEndBeforeStart
	}
	return nil
}

// Blog is a blog post.
type Blog struct {
	ContentItem
	Author   string `json:"author"`
	ReadTime string `json:"readTime"`
	Featured bool   `json:"featured"`
}

// TeamMember is a leadership team entry.
type TeamMember struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Role       string    `json:"role"`
	Bio        string    `json:"bio"`
	ImageID    string    `json:"imageId,omitempty"`
	ProfileURL string    `json:"linkedin,omitempty"`
	Order      int       `json:"order,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}
