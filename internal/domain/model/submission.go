package model

import "time"

// SubmissionKind names a form.
type SubmissionKind string

// Form kinds.
const (
	KindContact     SubmissionKind = "contact"
	KindApplication SubmissionKind = "application"
	KindNewsletter  SubmissionKind = "newsletter"
)

// StatusField is the store-managed status attribute. Callers never set it on create.
const StatusField = "status"

// Submission is a stored contact message or team application.
type Submission struct {
	ID        string            `json:"id"`
	Kind      SubmissionKind    `json:"kind"`
	Fields    map[string]string `json:"fields"`
	Status    string            `json:"status,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
}

// Subscription states.
const (
	Subscribed   = "subscribed"
	Unsubscribed = "unsubscribed"
)

// Subscriber is a newsletter subscriber.
type Subscriber struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// Notification announces an accepted submission to downstream consumers.
type Notification struct {
	ID           string         `json:"id"`
	Kind         SubmissionKind `json:"kind"`
	Confirmation string         `json:"confirmation"`
	At           time.Time      `json:"at"`
}
