// Package viewmodel holds the UI-facing note state and the form helpers that
// turn raw screen input into repository calls.
package viewmodel

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/starford/pocketnotes/internal/models"
)

// Repository is the persistence the view-model drives.
type Repository interface {
	ListAll(ctx context.Context) []models.Note
	Create(ctx context.Context, title, content string, tags []string) (models.Note, error)
	Update(ctx context.Context, id string, patch models.NotePatch) (models.Note, error)
	Delete(ctx context.Context, id string) (bool, error)
	GetByID(ctx context.Context, id string) (models.Note, error)
}

// NoteList is the in-memory, sorted view of the note collection owned by one
// screen. After every mutation it reloads from the repository instead of
// patching its own copy.
//
// The mutex guards the snapshot fields only and is never held across a
// repository call.
type NoteList struct {
	repo   Repository
	logger *slog.Logger

	mu         sync.RWMutex
	notes      []models.Note
	loading    bool
	refreshing bool
}

// ListOption configures a NoteList.
type ListOption func(*NoteList)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ListOption {
	return func(l *NoteList) { l.logger = logger }
}

// NewNoteList returns a list that has not loaded yet; Loading reports true
// until the first Load finishes.
func NewNoteList(repo Repository, opts ...ListOption) *NoteList {
	l := &NoteList{
		repo:    repo,
		logger:  slog.Default(),
		notes:   []models.Note{},
		loading: true,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load fetches all notes, sorts them most-recently-updated first, and
// replaces the snapshot. Loading is false afterwards.
func (l *NoteList) Load(ctx context.Context) {
	notes := l.repo.ListAll(ctx)
	SortByUpdated(notes)

	l.mu.Lock()
	l.notes = notes
	l.loading = false
	l.mu.Unlock()

	l.logger.Debug("notes loaded", slog.Int("count", len(notes)))
}

// Refresh is Load with the refreshing flag raised for its duration.
func (l *NoteList) Refresh(ctx context.Context) {
	l.setRefreshing(true)
	defer l.setRefreshing(false)
	l.Load(ctx)
}

// Create stores a new note from d, then reloads.
func (l *NoteList) Create(ctx context.Context, d Draft) (models.Note, error) {
	defer l.Load(ctx)
	note, err := l.repo.Create(ctx, d.Title, d.Content, d.Tags)
	if err != nil {
		l.logger.Error("create note failed", slog.String("error", err.Error()))
		return models.Note{}, err
	}
	return note, nil
}

// Update applies patch to the note with id, then reloads.
func (l *NoteList) Update(ctx context.Context, id string, patch models.NotePatch) (models.Note, error) {
	defer l.Load(ctx)
	note, err := l.repo.Update(ctx, id, patch)
	if err != nil {
		l.logger.Error("update note failed", slog.String("id", id), slog.String("error", err.Error()))
		return models.Note{}, err
	}
	return note, nil
}

// Delete removes the note with id, then reloads. It reports whether a note
// was removed.
func (l *NoteList) Delete(ctx context.Context, id string) (bool, error) {
	defer l.Load(ctx)
	found, err := l.repo.Delete(ctx, id)
	if err != nil {
		l.logger.Error("delete note failed", slog.String("id", id), slog.String("error", err.Error()))
		return false, err
	}
	return found, nil
}

// GetByID reads one note straight from the repository.
func (l *NoteList) GetByID(ctx context.Context, id string) (models.Note, error) {
	return l.repo.GetByID(ctx, id)
}

// Notes returns a copy of the current snapshot.
func (l *NoteList) Notes() []models.Note {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]models.Note, len(l.notes))
	for i, n := range l.notes {
		out[i] = n.Clone()
	}
	return out
}

// Loading reports whether the first load is still pending.
func (l *NoteList) Loading() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.loading
}

// Refreshing reports whether a Refresh is in progress.
func (l *NoteList) Refreshing() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.refreshing
}

func (l *NoteList) setRefreshing(v bool) {
	l.mu.Lock()
	l.refreshing = v
	l.mu.Unlock()
}

// SortByUpdated orders notes by UpdatedAt, newest first. Ties keep their
// stored order.
func SortByUpdated(notes []models.Note) {
	sort.SliceStable(notes, func(i, j int) bool {
		return notes[i].UpdatedAt.After(notes[j].UpdatedAt)
	})
}
