package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/time/rate"

	"github.com/starford/pocketnotes/internal/viewmodel"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// events, if non-nil, receives note mutations and is mounted at GET /events
// inside the auth group. limiter, if non-nil, caps the request rate.
func NewRouter(repo viewmodel.Repository, authEnabled bool, token string, events EventSource, limiter *rate.Limiter, logger *slog.Logger) chi.Router {
	h := NewHandler(repo, events, logger)

	r := chi.NewRouter()
	r.Use(RateLimitMiddleware(limiter))
	r.Use(AuthMiddleware(authEnabled, token))

	r.Get("/notes", h.ListNotes)
	r.Post("/notes", h.CreateNote)
	r.Get("/notes/{id}", h.GetNote)
	r.Patch("/notes/{id}", h.UpdateNote)
	r.Delete("/notes/{id}", h.DeleteNote)

	if events != nil {
		r.Get("/events", events.ServeHTTP)
	}

	return r
}

// EventSource is a Publisher that also streams events to HTTP clients.
type EventSource interface {
	Publisher
	http.Handler
}
