// Package notify defines the reminder collaborator consumed by the event
// service. Delivery mechanics live outside this module; the shipped
// implementation records the schedule via the structured log.
package notify

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jjacobsen/almanak/internal/models"
)

// Trigger describes when a reminder fires. Only the fields named by the
// reminder's repeat shape are meaningful; see TriggerFor.
type Trigger struct {
	Year    int          `json:"year,omitempty"`
	Month   time.Month   `json:"month,omitempty"`
	Day     int          `json:"day,omitempty"`
	Weekday time.Weekday `json:"weekday,omitempty"`
	Hour    int          `json:"hour"`
	Minute  int          `json:"minute"`
	HasDate bool         `json:"has_date"`
	HasWeek bool         `json:"has_week"`
}

// Reminder is a scheduled notification for an event series, keyed by the
// series id.
type Reminder struct {
	ID      uuid.UUID
	Title   string
	Body    string
	Trigger Trigger
	Repeats bool
}

// Scheduler schedules and cancels reminders. Calls are fire-and-forget from
// the mutation API's perspective: failures are logged, never propagated.
type Scheduler interface {
	Schedule(r Reminder) error
	Cancel(id uuid.UUID)
}

// TriggerFor derives the trigger shape for a start instant and recurrence:
// a one-shot full date+time for non-recurring events, otherwise the minimal
// repeating component set for the recurrence.
func TriggerFor(start time.Time, recurrence models.Recurrence) (Trigger, bool) {
	switch recurrence {
	case models.RecurrenceDaily:
		return Trigger{Hour: start.Hour(), Minute: start.Minute()}, true
	case models.RecurrenceWeekly:
		return Trigger{Weekday: start.Weekday(), HasWeek: true, Hour: start.Hour(), Minute: start.Minute()}, true
	case models.RecurrenceMonthly:
		return Trigger{Day: start.Day(), Hour: start.Hour(), Minute: start.Minute()}, true
	case models.RecurrenceYearly:
		return Trigger{Month: start.Month(), Day: start.Day(), Hour: start.Hour(), Minute: start.Minute()}, true
	default:
		return Trigger{
			Year: start.Year(), Month: start.Month(), Day: start.Day(),
			Hour: start.Hour(), Minute: start.Minute(), HasDate: true,
		}, false
	}
}

// ReminderFor builds the reminder for an event series.
func ReminderFor(e models.Event) Reminder {
	trigger, repeats := TriggerFor(e.Start, e.Recurrence)
	return Reminder{
		ID:      e.ID,
		Title:   e.Title,
		Body:    e.Details,
		Trigger: trigger,
		Repeats: repeats,
	}
}

// LogScheduler is the shipped Scheduler: it records schedule and cancel
// calls on the structured log.
type LogScheduler struct {
	logger *slog.Logger
}

// NewLogScheduler creates a LogScheduler. A nil logger uses the default.
func NewLogScheduler(logger *slog.Logger) *LogScheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogScheduler{logger: logger}
}

// Schedule implements Scheduler.
func (s *LogScheduler) Schedule(r Reminder) error {
	s.logger.Info("reminder scheduled",
		slog.String("id", r.ID.String()),
		slog.String("title", r.Title),
		slog.Bool("repeats", r.Repeats),
		slog.Int("hour", r.Trigger.Hour),
		slog.Int("minute", r.Trigger.Minute))
	return nil
}

// Cancel implements Scheduler.
func (s *LogScheduler) Cancel(id uuid.UUID) {
	s.logger.Info("reminder cancelled", slog.String("id", id.String()))
}
