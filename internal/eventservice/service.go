// Package eventservice implements the event mutation API. Events are
// immutable values held in a map keyed by id; every mutation replaces the
// value at its key, re-derives the sorted visible collection, persists
// best-effort, and publishes a change notification.
package eventservice

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jjacobsen/almanak/internal/apperr"
	"github.com/jjacobsen/almanak/internal/models"
	"github.com/jjacobsen/almanak/internal/notify"
	"github.com/jjacobsen/almanak/internal/store"
)

// ChangePublisher receives a notification after every mutation.
type ChangePublisher interface {
	PublishChange(kind, id string)
}

// Input carries the user-editable fields for add and update.
type Input struct {
	Title                string
	Details              string
	Start                time.Time
	EndTime              *time.Time
	Color                models.Color
	Recurrence           models.Recurrence
	NotificationsEnabled bool
}

// SplitInput carries the field values for the detached occurrence.
type SplitInput struct {
	Title                string
	Details              string
	Color                models.Color
	EndTime              *time.Time
	NotificationsEnabled bool
}

// Service is the single writer of event truth. Store writes happen inside
// the same locked region as the in-memory mutation, so the backing store
// sees mutations in the same order the collection applied them.
type Service struct {
	db        *store.DB
	scheduler notify.Scheduler
	changes   ChangePublisher
	logger    *slog.Logger

	mu     sync.RWMutex
	byID   map[uuid.UUID]models.Event
	sorted []models.Event
}

// NewService creates the event service and loads the stored events into the
// visible collection.
func NewService(db *store.DB, scheduler notify.Scheduler, changes ChangePublisher, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		db:        db,
		scheduler: scheduler,
		changes:   changes,
		logger:    logger,
		byID:      make(map[uuid.UUID]models.Event),
	}

	events, err := db.AllEvents()
	if err != nil {
		return nil, err
	}
	for _, e := range events {
		s.byID[e.ID] = e
	}
	s.rederive()
	return s, nil
}

// Events returns the visible collection, sorted ascending by start instant.
func (s *Service) Events() []models.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Event, len(s.sorted))
	copy(out, s.sorted)
	return out
}

// EventsForDay returns the events occurring on day's calendar day, in
// visible-collection order.
func (s *Service) EventsForDay(day time.Time) []models.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Event
	for _, e := range s.sorted {
		if e.OccursOn(day) {
			out = append(out, e)
		}
	}
	return out
}

// Get returns the event with the given id.
func (s *Service) Get(id uuid.UUID) (*models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.byID[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return &e, nil
}

// Add creates a new event with a fresh id. The reminder side effect fires
// after the record is committed and never affects the result.
func (s *Service) Add(_ context.Context, in Input) (*models.Event, error) {
	now := time.Now()
	e := models.Event{
		ID:                   uuid.New(),
		Title:                in.Title,
		Details:              in.Details,
		Start:                in.Start,
		EndTime:              in.EndTime,
		Color:                in.Color,
		Recurrence:           in.Recurrence,
		NotificationsEnabled: in.NotificationsEnabled,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	s.mu.Lock()
	s.byID[e.ID] = e
	s.rederive()
	s.commit(e, "created")
	s.mu.Unlock()

	if e.NotificationsEnabled {
		s.schedule(e)
	}
	return &e, nil
}

// Update overwrites all mutable fields of an existing event. An edit to the
// entire series resets any prior split history: exception days and the
// repeat end date are cleared. The reminder is cancelled and, when enabled,
// rescheduled.
func (s *Service) Update(_ context.Context, id uuid.UUID, in Input) (*models.Event, error) {
	s.mu.Lock()
	e, ok := s.byID[id]
	if !ok {
		s.mu.Unlock()
		return nil, apperr.ErrNotFound
	}
	e.Title = in.Title
	e.Details = in.Details
	e.Start = in.Start
	e.EndTime = in.EndTime
	e.Color = in.Color
	e.Recurrence = in.Recurrence
	e.NotificationsEnabled = in.NotificationsEnabled
	e.ExceptionDates = nil
	e.RepeatEnd = nil
	e.UpdatedAt = time.Now()
	s.byID[id] = e
	s.rederive()
	s.commit(e, "updated")
	s.mu.Unlock()

	s.scheduler.Cancel(id)
	if e.NotificationsEnabled {
		s.schedule(e)
	}
	return &e, nil
}

// SplitOccurrence detaches a single occurrence of a recurring series into an
// independent event. For a non-recurring event it is an in-place edit of the
// single record, re-anchored to the occurrence instant. For a series: the
// occurrence day is added to the exception set (suppressing the original
// occurrence) and a new non-recurring record anchored at the occurrence
// instant carries the new field values. The original series' reminder is
// left untouched.
func (s *Service) SplitOccurrence(_ context.Context, id uuid.UUID, occurrence time.Time, in SplitInput) (*models.Event, error) {
	s.mu.Lock()
	e, ok := s.byID[id]
	if !ok {
		s.mu.Unlock()
		return nil, apperr.ErrNotFound
	}

	if e.Recurrence == models.RecurrenceNone {
		e.Title = in.Title
		e.Details = in.Details
		e.Start = occurrence
		e.EndTime = in.EndTime
		e.Color = in.Color
		e.NotificationsEnabled = in.NotificationsEnabled
		e.UpdatedAt = time.Now()
		s.byID[id] = e
		s.rederive()
		s.commit(e, "updated")
		s.mu.Unlock()

		s.scheduler.Cancel(id)
		if e.NotificationsEnabled {
			s.schedule(e)
		}
		return &e, nil
	}

	if !e.ExceptionDates.Contains(occurrence) {
		e.ExceptionDates = e.ExceptionDates.Clone().Add(occurrence)
		e.UpdatedAt = time.Now()
		s.byID[id] = e
	}

	now := time.Now()
	clone := models.Event{
		ID:                   uuid.New(),
		Title:                in.Title,
		Details:              in.Details,
		Start:                occurrence,
		EndTime:              in.EndTime,
		Color:                in.Color,
		Recurrence:           models.RecurrenceNone,
		NotificationsEnabled: in.NotificationsEnabled,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	s.byID[clone.ID] = clone
	s.rederive()
	s.commit(e, "updated")
	s.commit(clone, "created")
	s.mu.Unlock()

	if clone.NotificationsEnabled {
		s.schedule(clone)
	}
	return &clone, nil
}

// DeleteOccurrence suppresses a single occurrence by adding day to the
// event's exception set. The series' scheduled reminder is cancelled; it
// comes back on the next series update.
func (s *Service) DeleteOccurrence(_ context.Context, id uuid.UUID, day time.Time) error {
	s.mu.Lock()
	e, ok := s.byID[id]
	if !ok {
		s.mu.Unlock()
		return apperr.ErrNotFound
	}
	e.ExceptionDates = e.ExceptionDates.Clone().Add(day)
	e.UpdatedAt = time.Now()
	s.byID[id] = e
	s.rederive()
	s.commit(e, "updated")
	s.mu.Unlock()

	s.scheduler.Cancel(id)
	return nil
}

// Delete removes the event permanently and cancels its reminder.
func (s *Service) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	if _, ok := s.byID[id]; !ok {
		s.mu.Unlock()
		return apperr.ErrNotFound
	}
	delete(s.byID, id)
	s.rederive()
	if err := s.db.DeleteEvent(id); err != nil {
		s.logger.Warn("event delete not persisted",
			slog.String("id", id.String()), slog.String("error", err.Error()))
	}
	s.publish("deleted", id)
	s.mu.Unlock()

	s.scheduler.Cancel(id)
	return nil
}

// DeleteAll cancels every event's reminder and removes all records.
// Development/testing reset.
func (s *Service) DeleteAll(_ context.Context) error {
	s.mu.Lock()
	ids := make([]uuid.UUID, 0, len(s.byID))
	for id := range s.byID {
		ids = append(ids, id)
	}
	s.byID = make(map[uuid.UUID]models.Event)
	s.rederive()
	if err := s.db.DeleteAllEvents(); err != nil {
		s.logger.Warn("event reset not persisted", slog.String("error", err.Error()))
	}
	for _, id := range ids {
		s.publish("deleted", id)
	}
	s.mu.Unlock()

	for _, id := range ids {
		s.scheduler.Cancel(id)
	}
	return nil
}

// rederive rebuilds the sorted visible collection. Callers hold mu.
func (s *Service) rederive() {
	sorted := make([]models.Event, 0, len(s.byID))
	for _, e := range s.byID {
		sorted = append(sorted, e)
	}
	models.SortEvents(sorted)
	s.sorted = sorted
}

// commit writes e through to storage and publishes kind. Callers hold mu, so
// store writes land in the same order the in-memory mutations applied. A
// failed save is logged; the in-memory state is not rolled back.
func (s *Service) commit(e models.Event, kind string) {
	if err := s.db.UpsertEvent(e); err != nil {
		s.logger.Warn("event not persisted",
			slog.String("id", e.ID.String()), slog.String("error", err.Error()))
	}
	s.publish(kind, e.ID)
}

// schedule fires the reminder side effect. Failures never propagate.
func (s *Service) schedule(e models.Event) {
	if err := s.scheduler.Schedule(notify.ReminderFor(e)); err != nil {
		s.logger.Warn("reminder not scheduled",
			slog.String("id", e.ID.String()), slog.String("error", err.Error()))
	}
}

func (s *Service) publish(kind string, id uuid.UUID) {
	if s.changes != nil {
		s.changes.PublishChange(kind, id.String())
	}
}
