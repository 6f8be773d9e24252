package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jjacobsen/almanak/internal/eventservice"
	"github.com/jjacobsen/almanak/internal/remote"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// streamHandler, if non-nil, is mounted at GET /stream inside the auth group.
func NewRouter(svc *eventservice.Service, holidays *remote.HolidayService, dayInfo *remote.DayInfoService,
	authEnabled bool, token string, streamHandler http.Handler) chi.Router {
	h := NewHandler(svc, holidays, dayInfo)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Events CRUD.
	r.Get("/events", h.ListEvents)
	r.Post("/events", h.CreateEvent)
	r.Delete("/events", h.DeleteAllEvents)
	r.Get("/events/{id}", h.GetEvent)
	r.Put("/events/{id}", h.UpdateEvent)
	r.Delete("/events/{id}", h.DeleteEvent)

	// Occurrence operations.
	r.Post("/events/{id}/split", h.SplitEvent)
	r.Delete("/events/{id}/occurrences/{date}", h.DeleteOccurrence)

	// Per-day composition.
	r.Get("/days/{date}", h.GetDay)

	// SSE change stream (protected by same auth middleware).
	if streamHandler != nil {
		r.Get("/stream", streamHandler.ServeHTTP)
	}

	return r
}
