package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/jjacobsen/almanak/internal/apperr"
	"github.com/jjacobsen/almanak/internal/datemath"
	"github.com/jjacobsen/almanak/internal/eventservice"
	"github.com/jjacobsen/almanak/internal/remote"
)

// Handler holds API route handlers.
type Handler struct {
	svc      *eventservice.Service
	holidays *remote.HolidayService
	dayInfo  *remote.DayInfoService
	now      func() time.Time
}

// NewHandler creates a new Handler.
func NewHandler(svc *eventservice.Service, holidays *remote.HolidayService, dayInfo *remote.DayInfoService) *Handler {
	return &Handler{svc: svc, holidays: holidays, dayInfo: dayInfo, now: time.Now}
}

func eventID(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	return id, err == nil
}

// ListEvents handles GET /events.
func (h *Handler) ListEvents(w http.ResponseWriter, _ *http.Request) {
	events := h.svc.Events()
	writeJSON(w, http.StatusOK, EventListResponse{Events: events, Total: len(events)})
}

// GetEvent handles GET /events/{id}.
func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := eventID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid event id"))
		return
	}
	e, err := h.svc.Get(id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// CreateEvent handles POST /events.
func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req EventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Title == "" || req.Start.IsZero() {
		writeJSON(w, http.StatusBadRequest, errorBody("title and start are required"))
		return
	}
	e, err := h.svc.Add(r.Context(), req.toInput())
	if err != nil {
		slog.Error("create event failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

// UpdateEvent handles PUT /events/{id}.
func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	id, ok := eventID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid event id"))
		return
	}
	var req EventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Title == "" || req.Start.IsZero() {
		writeJSON(w, http.StatusBadRequest, errorBody("title and start are required"))
		return
	}
	e, err := h.svc.Update(r.Context(), id, req.toInput())
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("update event failed", slog.String("id", id.String()), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// SplitEvent handles POST /events/{id}/split.
func (h *Handler) SplitEvent(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	id, ok := eventID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid event id"))
		return
	}
	var req SplitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Occurrence.IsZero() {
		writeJSON(w, http.StatusBadRequest, errorBody("occurrence is required"))
		return
	}
	e, err := h.svc.SplitOccurrence(r.Context(), id, req.Occurrence, req.toInput())
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("split event failed", slog.String("id", id.String()), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

// DeleteOccurrence handles DELETE /events/{id}/occurrences/{date}.
func (h *Handler) DeleteOccurrence(w http.ResponseWriter, r *http.Request) {
	id, ok := eventID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid event id"))
		return
	}
	day, err := datemath.ParseDayKey(chi.URLParam(r, "date"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid date, want yyyy-MM-dd"))
		return
	}
	if err := h.svc.DeleteOccurrence(r.Context(), id, day); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("delete occurrence failed", slog.String("id", id.String()), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteEvent handles DELETE /events/{id}.
func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := eventID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid event id"))
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteAllEvents handles DELETE /events. Development/testing reset.
func (h *Handler) DeleteAllEvents(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteAll(r.Context()); err != nil {
		slog.Error("reset failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetDay handles GET /days/{date}: the events occurring on that day plus the
// holiday and weather/astronomy annotations. The three results are
// independent; missing remote data is rendered as absent.
func (h *Handler) GetDay(w http.ResponseWriter, r *http.Request) {
	day, err := datemath.ParseDayKey(chi.URLParam(r, "date"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid date, want yyyy-MM-dd"))
		return
	}

	now := h.now()
	events := h.svc.EventsForDay(day)
	dayEvents := make([]DayEvent, len(events))
	for i, e := range events {
		dayEvents[i] = DayEvent{Event: e, Finished: e.HasFinished(day, now)}
	}

	resp := DayResponse{
		Date:   datemath.DayKey(day),
		Events: dayEvents,
	}
	if holiday := h.holidays.Lookup(day); holiday != nil {
		resp.Holiday = &HolidayView{Title: holiday.Title, Year: holiday.Year}
	}
	if info := h.dayInfo.Lookup(r.Context(), day); info != nil {
		resp.DayInfo = &DayInfoView{
			Sunrise: info.Sunrise,
			Sunset:  info.Sunset,
			TempMin: info.TempMin,
			TempMax: info.TempMax,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
