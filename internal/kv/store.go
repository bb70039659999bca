// Package kv defines the on-device key-value store that notes persist into,
// together with its file, SQLite, Redis, and in-memory backends.
package kv

import (
	"context"
	"errors"
)

// Store is an opaque byte store addressed by string keys in a single namespace.
//
// Implementations make each call atomic on its own but never serialise a
// Get followed by a Set; callers doing read-modify-write accept that
// concurrent writers may overwrite each other.
type Store interface {
	// Get returns the value stored under key, or (nil, nil) when absent.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set replaces the value stored under key.
	Set(ctx context.Context, key string, value []byte) error
	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
	// Close releases the backend's resources.
	Close() error
}

// Backend names selectable in configuration.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// ErrEmptyKey is returned for operations on the empty key.
var ErrEmptyKey = errors.New("kv: empty key")

func checkKey(key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	return nil
}
