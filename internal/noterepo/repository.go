// Package noterepo persists the note collection as a single JSON document in
// a key-value store.
//
// Every mutation reads the whole collection, changes it in memory, and writes
// the whole collection back. Nothing serialises these read-modify-write
// cycles: two writers racing can lose one of the updates.
package noterepo

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/starford/pocketnotes/internal/apperr"
	"github.com/starford/pocketnotes/internal/kv"
	"github.com/starford/pocketnotes/internal/models"
)

// DefaultKey is the store key holding the note collection.
const DefaultKey = "@pocketnotes:notes"

// ErrorReporter receives read failures that ListAll degrades to an empty result.
type ErrorReporter func(error)

// Repository is the note persistence service.
type Repository struct {
	store    kv.Store
	key      string
	now      func() time.Time
	newID    func() string
	logger   *slog.Logger
	reporter ErrorReporter
}

// Option configures a Repository.
type Option func(*Repository)

// WithKey overrides the store key.
func WithKey(key string) Option {
	return func(r *Repository) { r.key = key }
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) { r.now = now }
}

// WithIDGenerator overrides id generation.
func WithIDGenerator(gen func() string) Option {
	return func(r *Repository) { r.newID = gen }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Repository) { r.logger = logger }
}

// WithErrorReporter sets where degraded read failures go. The default logs
// them at warn level.
func WithErrorReporter(fn ErrorReporter) Option {
	return func(r *Repository) { r.reporter = fn }
}

// New creates a repository over store.
func New(store kv.Store, opts ...Option) *Repository {
	r := &Repository{
		store:  store,
		key:    DefaultKey,
		now:    time.Now,
		newID:  uuid.NewString,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.reporter == nil {
		r.reporter = func(err error) {
			r.logger.Warn("notes unreadable, treating store as empty",
				slog.String("key", r.key), slog.String("error", err.Error()))
		}
	}
	return r
}

// Key returns the store key the collection lives under.
func (r *Repository) Key() string { return r.key }

// ListAll returns every stored note in stored order. An absent key yields an
// empty slice. A read or decode failure is handed to the ErrorReporter and
// also yields an empty slice.
func (r *Repository) ListAll(ctx context.Context) []models.Note {
	data, err := r.store.Get(ctx, r.key)
	if err != nil {
		r.reporter(fmt.Errorf("%w: %w", apperr.ErrStoreRead, err))
		return []models.Note{}
	}
	if data == nil {
		return []models.Note{}
	}
	return r.decodeOrEmpty(data)
}

// load is ListAll for mutations: a failed store read is returned instead of
// degrading, so a write never replaces notes it could not see. Undecodable
// bytes still degrade to an empty collection.
func (r *Repository) load(ctx context.Context) ([]models.Note, error) {
	data, err := r.store.Get(ctx, r.key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperr.ErrStoreRead, err)
	}
	if data == nil {
		return []models.Note{}, nil
	}
	return r.decodeOrEmpty(data), nil
}

func (r *Repository) decodeOrEmpty(data []byte) []models.Note {
	notes, err := decode(data)
	if err != nil {
		r.reporter(fmt.Errorf("%w: %w", apperr.ErrStoreRead, err))
		return []models.Note{}
	}
	return notes
}

// Create appends a new note and persists the collection.
func (r *Repository) Create(ctx context.Context, title, content string, tags []string) (models.Note, error) {
	notes, err := r.load(ctx)
	if err != nil {
		return models.Note{}, err
	}

	now := r.timestamp()
	note := models.Note{
		ID:        r.newID(),
		Title:     title,
		Content:   content,
		Tags:      append([]string{}, tags...),
		CreatedAt: now,
		UpdatedAt: now,
	}
	notes = append(notes, note)
	if err := r.save(ctx, notes); err != nil {
		return models.Note{}, err
	}
	r.logger.Debug("note created", slog.String("id", note.ID))
	return note.Clone(), nil
}

// Update merges patch over the note with id and refreshes its UpdatedAt.
func (r *Repository) Update(ctx context.Context, id string, patch models.NotePatch) (models.Note, error) {
	notes, err := r.load(ctx)
	if err != nil {
		return models.Note{}, err
	}

	idx := indexOf(notes, id)
	if idx < 0 {
		return models.Note{}, fmt.Errorf("update note %s: %w", id, apperr.ErrNotFound)
	}

	updated := patch.Apply(notes[idx])
	updated.UpdatedAt = r.timestamp()
	if updated.UpdatedAt.Before(updated.CreatedAt) {
		updated.UpdatedAt = updated.CreatedAt
	}
	notes[idx] = updated

	if err := r.save(ctx, notes); err != nil {
		return models.Note{}, err
	}
	r.logger.Debug("note updated", slog.String("id", id))
	return updated.Clone(), nil
}

// Delete removes every note with id and reports whether any matched. A
// missing id is not an error; the collection is still written back.
func (r *Repository) Delete(ctx context.Context, id string) (bool, error) {
	notes, err := r.load(ctx)
	if err != nil {
		return false, err
	}

	kept := notes[:0]
	for _, n := range notes {
		if n.ID != id {
			kept = append(kept, n)
		}
	}
	found := len(kept) != len(notes)
	if err := r.save(ctx, kept); err != nil {
		return false, err
	}
	r.logger.Debug("note deleted", slog.String("id", id), slog.Bool("found", found))
	return found, nil
}

// GetByID scans the collection for id.
func (r *Repository) GetByID(ctx context.Context, id string) (models.Note, error) {
	notes := r.ListAll(ctx)
	if idx := indexOf(notes, id); idx >= 0 {
		return notes[idx], nil
	}
	return models.Note{}, fmt.Errorf("note %s: %w", id, apperr.ErrNotFound)
}

func (r *Repository) save(ctx context.Context, notes []models.Note) error {
	data, err := encode(notes)
	if err != nil {
		return fmt.Errorf("%w: %w", apperr.ErrStoreWrite, err)
	}
	if err := r.store.Set(ctx, r.key, data); err != nil {
		return fmt.Errorf("%w: %w", apperr.ErrStoreWrite, err)
	}
	return nil
}

// timestamp returns the current time without its monotonic reading, so a
// freshly created note compares equal to its decoded copy.
func (r *Repository) timestamp() time.Time {
	return r.now().Round(0)
}

func indexOf(notes []models.Note, id string) int {
	for i, n := range notes {
		if n.ID == id {
			return i
		}
	}
	return -1
}
