package kv

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	fileExt        = ".json"
	tempPrefix     = ".pocketnotes-tmp-"
	defaultPerm    = 0o644
	defaultDirPerm = 0o755
)

// FS implements Store with one file per key under a root directory.
type FS struct {
	root string // absolute path
}

var _ Store = (*FS)(nil)

// NewFS creates a file-backed store rooted at dir, creating it if needed.
func NewFS(dir string) (*FS, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("kv: resolve root: %w", err)
	}
	if err := os.MkdirAll(abs, defaultDirPerm); err != nil {
		return nil, fmt.Errorf("kv: create root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("kv: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("kv: root is not a directory: %s", abs)
	}
	return &FS{root: abs}, nil
}

// Root returns the absolute directory holding the key files.
func (f *FS) Root() string { return f.root }

// KeyFile returns the absolute path of the file backing key. Keys are
// base64url-encoded so any string maps to a safe, unique file name.
func (f *FS) KeyFile(key string) string {
	return filepath.Join(f.root, base64.RawURLEncoding.EncodeToString([]byte(key))+fileExt)
}

// keyFromFile is the inverse of KeyFile for names inside root.
func keyFromFile(name string) (string, bool) {
	base := filepath.Base(name)
	if strings.HasPrefix(base, tempPrefix) || !strings.HasSuffix(base, fileExt) {
		return "", false
	}
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimSuffix(base, fileExt))
	if err != nil {
		return "", false
	}
	return string(raw), true
}

// Get reads the file backing key.
func (f *FS) Get(_ context.Context, key string) ([]byte, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.KeyFile(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("kv: read %s: %w", key, err)
	}
	return data, nil
}

// Set atomically writes value: tmp file → fsync → rename.
func (f *FS) Set(_ context.Context, key string, value []byte) error {
	if err := checkKey(key); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(f.root, tempPrefix+"*")
	if err != nil {
		return fmt.Errorf("kv: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(value); err != nil {
		return fmt.Errorf("kv: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("kv: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("kv: close temp: %w", err)
	}
	if err := os.Chmod(tmpName, defaultPerm); err != nil {
		return fmt.Errorf("kv: chmod temp: %w", err)
	}
	if err := os.Rename(tmpName, f.KeyFile(key)); err != nil {
		return fmt.Errorf("kv: rename: %w", err)
	}
	success = true
	return nil
}

// Remove deletes the file backing key.
func (f *FS) Remove(_ context.Context, key string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	if err := os.Remove(f.KeyFile(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("kv: remove %s: %w", key, err)
	}
	return nil
}

// Close is a no-op for the file store.
func (f *FS) Close() error { return nil }
