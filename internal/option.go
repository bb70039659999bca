package internal

import "github.com/starford/pocketnotes/internal/kv"

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config *Config
	store  kv.Store
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithStore makes Run use store instead of opening the configured backend.
// Run does not close a store passed this way.
func WithStore(store kv.Store) Option {
	return func(a *application) {
		a.store = store
	}
}
