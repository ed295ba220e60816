package seed

import "time"

// Config holds configuration for a seeding run.
type Config struct {
	Events     int           // Number of events to generate
	Blogs      int           // Number of blog posts to generate
	Team       int           // Number of team members to generate
	Workers    int           // Number of concurrent writers
	Now        time.Time     // Instant the generated dates are spread around
	Span       time.Duration // Events start within Now +/- Span
	OutputFile string        // Optional JSON dump of what was written
}

// Stats holds seeding statistics.
type Stats struct {
	EventsGenerated int
	EventsWritten   int
	BlogsWritten    int
	TeamWritten     int
	Failed          int
	Upcoming        int // upcoming under the day-floor policy at Now
	Past            int
	StartTime       time.Time
	EndTime         time.Time
	Duration        time.Duration
}
