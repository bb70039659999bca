package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/starford/pocketnotes/internal/apperr"
	"github.com/starford/pocketnotes/internal/sse"
	"github.com/starford/pocketnotes/internal/viewmodel"
)

// Publisher receives note mutations for live clients.
type Publisher interface {
	PublishNoteEvent(change sse.NoteChange, id string)
}

// Handler holds API route handlers. Every request drives its own
// viewmodel.NoteList.
type Handler struct {
	repo   viewmodel.Repository
	events Publisher
	logger *slog.Logger
	now    func() time.Time
}

// NewHandler creates a new Handler. events may be nil.
func NewHandler(repo viewmodel.Repository, events Publisher, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{repo: repo, events: events, logger: logger, now: time.Now}
}

func (h *Handler) list() *viewmodel.NoteList {
	return viewmodel.NewNoteList(h.repo, viewmodel.WithLogger(h.logger))
}

func (h *Handler) publish(change sse.NoteChange, id string) {
	if h.events != nil {
		h.events.PublishNoteEvent(change, id)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	case errors.Is(err, apperr.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	default:
		h.logger.Error(op+" failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

// ListNotes handles GET /api/notes.
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	l := h.list()
	l.Load(r.Context())

	notes := l.Notes()
	now := h.now()
	items := make([]NoteListItem, 0, len(notes))
	for _, n := range notes {
		items = append(items, newListItem(n, now))
	}
	writeJSON(w, http.StatusOK, NoteListResponse{Notes: items, Total: len(items)})
}

// GetNote handles GET /api/notes/{id}.
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	note, err := h.list().GetByID(r.Context(), id)
	if err != nil {
		h.writeError(w, "get note", err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// CreateNote handles POST /api/notes.
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req CreateNoteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	draft := viewmodel.NewDraft(req.Title, req.Content, req.Tags)
	if err := draft.Validate(); err != nil {
		h.writeError(w, "create note", err)
		return
	}
	note, err := h.list().Create(r.Context(), draft)
	if err != nil {
		h.writeError(w, "create note", err)
		return
	}
	h.publish(sse.NoteCreated, note.ID)
	writeJSON(w, http.StatusCreated, note)
}

// UpdateNote handles PATCH /api/notes/{id}.
func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	id := chi.URLParam(r, "id")

	var req UpdateNoteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	patch, err := viewmodel.NewPatch(viewmodel.PatchFields{Title: req.Title, Content: req.Content, Tags: req.Tags})
	if err != nil {
		h.writeError(w, "update note", err)
		return
	}
	note, err := h.list().Update(r.Context(), id, patch)
	if err != nil {
		h.writeError(w, "update note", err)
		return
	}
	h.publish(sse.NoteUpdated, note.ID)
	writeJSON(w, http.StatusOK, note)
}

// DeleteNote handles DELETE /api/notes/{id}. Deleting an absent id succeeds.
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	found, err := h.list().Delete(r.Context(), id)
	if err != nil {
		h.writeError(w, "delete note", err)
		return
	}
	if found {
		h.publish(sse.NoteDeleted, id)
	}
	w.WriteHeader(http.StatusNoContent)
}
