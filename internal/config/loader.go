package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix     = "CLUB_"
	envConfig     = "CLUB_CONFIG"
	envDotFile    = "CLUB_ENV_FILE"
	defaultDotenv = ".env"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New(ctx))
//  2. file (YAML) if CLUB_CONFIG is set
//  3. env (prefix CLUB_, "__" separates nested keys)
//
// A .env file (or CLUB_ENV_FILE) is read first; it never overrides variables
// already set in the process environment.
func Load(ctx context.Context) (*Config, error) {
	if err := loadDotenv(); err != nil {
		return nil, err
	}

	k := koanf.New(".")

	if path := os.Getenv(envConfig); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// CLUB_APPWRITE__ENDPOINT -> appwrite.endpoint, CLUB_LOG_LEVEL -> log_level
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, envPrefix)
		return strings.ReplaceAll(strings.ToLower(s), "__", ".")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := New(ctx)
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}
	if cfg.Backend == BackendSQLite {
		cfg.LocalDefaults()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadDotenv() error {
	path := os.Getenv(envDotFile)
	explicit := path != ""
	if !explicit {
		path = defaultDotenv
	}
	err := godotenv.Load(path)
	if err == nil || (!explicit && errors.Is(err, fs.ErrNotExist)) {
		return nil
	}
	return fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
}

// Validate reports every missing or invalid key at once.
func (c *Config) Validate() error {
	e := &ConfigurationError{Invalid: map[string]string{}}
	require := func(key, v string) {
		if strings.TrimSpace(v) == "" {
			e.Missing = append(e.Missing, key)
		}
	}

	require("addr", c.Addr)
	switch c.Backend {
	case BackendAppwrite:
		require("appwrite.endpoint", c.Appwrite.Endpoint)
		require("appwrite.project", c.Appwrite.Project)
		require("appwrite.database", c.Appwrite.Database)
	case BackendSQLite:
		require("sqlite.path", c.SQLite.Path)
	default:
		e.Invalid["backend"] = fmt.Sprintf("must be %q or %q, got %q", BackendAppwrite, BackendSQLite, c.Backend)
	}

	require("collections.events", c.Collections.Events)
	require("collections.blogs", c.Collections.Blogs)
	require("collections.team_members", c.Collections.TeamMembers)
	require("collections.contact_submissions", c.Collections.ContactSubmissions)
	require("collections.team_applications", c.Collections.TeamApplications)
	require("collections.newsletter_subscribers", c.Collections.NewsletterSubscribers)
	require("buckets.event_images", c.Buckets.EventImages)
	require("buckets.blog_images", c.Buckets.BlogImages)
	require("buckets.team_images", c.Buckets.TeamImages)

	if c.Feed.TickInterval <= 0 {
		e.Invalid["feed.tick_interval"] = "must be positive"
	}
	if c.Feed.ResumeDelay <= 0 {
		e.Invalid["feed.resume_delay"] = "must be positive"
	}
	if c.Feed.RefreshInterval < 0 {
		e.Invalid["feed.refresh_interval"] = "must not be negative"
	}
	if c.Notify.AMQPURL != "" && c.Notify.Exchange == "" {
		e.Missing = append(e.Missing, "notify.exchange")
	}

	if len(e.Missing) == 0 && len(e.Invalid) == 0 {
		return nil
	}
	return e
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
