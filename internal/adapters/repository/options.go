// Package repository exposes typed accessors over the document store collections.
package repository

import "github.com/okian/clubhouse/pkg/logger"

// Option applies a configuration option to the Repository.
type Option func(*Repository)

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(r *Repository) {
		if l != nil {
			r.logger = l
		}
	}
}
