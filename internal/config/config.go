// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Load layers a YAML file and CLUB_ environment variables over the defaults.
// - Validation failures are *ConfigurationError values listing every bad key.
package config

import (
	"context"
	"time"
)

// Backends.
const (
	BackendAppwrite = "appwrite"
	BackendSQLite   = "sqlite"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// Backend selects the document store: appwrite or sqlite.
	Backend string `koanf:"backend"`

	Appwrite    Appwrite    `koanf:"appwrite"`
	Collections Collections `koanf:"collections"`
	Buckets     Buckets     `koanf:"buckets"`
	SQLite      SQLite      `koanf:"sqlite"`
	MinIO       MinIO       `koanf:"minio"`
	Notify      Notify      `koanf:"notify"`
	Feed        Feed        `koanf:"feed"`
}

// Appwrite addresses the hosted document service.
type Appwrite struct {
	Endpoint string `koanf:"endpoint"`
	Project  string `koanf:"project"`
	APIKey   string `koanf:"api_key"`
	Database string `koanf:"database"`
}

// Collections names the collection of each content type.
type Collections struct {
	Events                string `koanf:"events"`
	Blogs                 string `koanf:"blogs"`
	TeamMembers           string `koanf:"team_members"`
	ContactSubmissions    string `koanf:"contact_submissions"`
	TeamApplications      string `koanf:"team_applications"`
	NewsletterSubscribers string `koanf:"newsletter_subscribers"`
}

// Buckets names the image buckets.
type Buckets struct {
	EventImages string `koanf:"event_images"`
	BlogImages  string `koanf:"blog_images"`
	TeamImages  string `koanf:"team_images"`
}

// SQLite configures the local document store.
type SQLite struct {
	Path string `koanf:"path"`
}

// MinIO configures image URLs for the local store. An empty endpoint
// disables image URLs.
type MinIO struct {
	Endpoint  string        `koanf:"endpoint"`
	AccessKey string        `koanf:"access_key"`
	SecretKey string        `koanf:"secret_key"`
	Region    string        `koanf:"region"`
	URLExpiry time.Duration `koanf:"url_expiry"`
	UseSSL    bool          `koanf:"use_ssl"`
}

// Notify configures submission notifications. An empty AMQPURL keeps them
// in-process.
type Notify struct {
	AMQPURL   string `koanf:"amqp_url"`
	Exchange  string `koanf:"exchange"`
	QueueSize int    `koanf:"queue_size"`
	Workers   int    `koanf:"workers"`
}

// Feed configures view refresh and the banner slideshow.
type Feed struct {
	RefreshInterval time.Duration `koanf:"refresh_interval"`
	TickInterval    time.Duration `koanf:"tick_interval"`
	ResumeDelay     time.Duration `koanf:"resume_delay"`
	HTTPTimeout     time.Duration `koanf:"http_timeout"`
}

// New creates a Config with defaults. The collection and bucket IDs have
// none; the appwrite backend requires them.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:  "info",
		LogFormat: "text",
		Addr:      ":9080",
		Backend:   BackendAppwrite,
		SQLite:    SQLite{Path: "club.db"},
		MinIO:     MinIO{Region: "us-east-1", URLExpiry: time.Hour},
		Notify: Notify{
			Exchange:  "club.submissions",
			QueueSize: 1024,
			Workers:   2,
		},
		Feed: Feed{
			RefreshInterval: 5 * time.Minute,
			TickInterval:    4000 * time.Millisecond,
			ResumeDelay:     8000 * time.Millisecond,
			HTTPTimeout:     10 * time.Second,
		},
	}
}

// LocalDefaults fills collection and bucket names for the sqlite backend,
// which creates collections on first write.
func (c *Config) LocalDefaults() {
	set := func(dst *string, v string) {
		if *dst == "" {
			*dst = v
		}
	}
	set(&c.Collections.Events, "events")
	set(&c.Collections.Blogs, "blogs")
	set(&c.Collections.TeamMembers, "team_members")
	set(&c.Collections.ContactSubmissions, "contact_submissions")
	set(&c.Collections.TeamApplications, "team_applications")
	set(&c.Collections.NewsletterSubscribers, "newsletter_subscribers")
	set(&c.Buckets.EventImages, "event-images")
	set(&c.Buckets.BlogImages, "blog-images")
	set(&c.Buckets.TeamImages, "team-images")
}
