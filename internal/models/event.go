// Package models defines the domain types for almanak.
package models

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/jjacobsen/almanak/internal/datemath"
)

// Event represents a user-created calendar item. Events are immutable
// values; mutation replaces the stored value under the same ID.
type Event struct {
	ID                   uuid.UUID  `json:"id"`
	Title                string     `json:"title"`
	Details              string     `json:"details"`
	Start                time.Time  `json:"start"`
	EndTime              *time.Time `json:"end_time,omitempty"`
	Color                Color      `json:"color"`
	Recurrence           Recurrence `json:"recurrence"`
	RepeatEnd            *time.Time `json:"repeat_end,omitempty"`
	ExceptionDates       DaySet     `json:"exception_dates,omitempty"`
	NotificationsEnabled bool       `json:"notifications_enabled"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// OccursOn reports whether the event generates an occurrence on day's
// calendar day. Pure: depends only on the event value and day.
func (e *Event) OccursOn(day time.Time) bool {
	if e.ExceptionDates.Contains(day) {
		return false
	}
	if e.Start.IsZero() {
		return false
	}
	if e.RepeatEnd != nil && datemath.AfterDay(day, *e.RepeatEnd) {
		return false
	}
	if datemath.BeforeDay(day, e.Start) {
		return false
	}

	switch e.Recurrence {
	case RecurrenceNone:
		return datemath.SameDay(day, e.Start)
	case RecurrenceDaily:
		return true
	case RecurrenceWeekly:
		return day.Weekday() == e.Start.Weekday()
	case RecurrenceMonthly:
		// An anchor day absent from a shorter month simply never matches.
		return day.Day() == e.Start.Day()
	case RecurrenceYearly:
		return day.Month() == e.Start.Month() && day.Day() == e.Start.Day()
	default:
		return false
	}
}

// EffectiveEnd returns the end instant of the occurrence on occurrence's day.
func (e *Event) EffectiveEnd(occurrence time.Time) time.Time {
	start := e.Start
	return datemath.EffectiveEnd(occurrence, e.EndTime, &start)
}

// HasFinished reports whether the occurrence on occurrence's day has ended
// relative to now.
func (e *Event) HasFinished(occurrence, now time.Time) bool {
	start := e.Start
	return datemath.HasFinished(occurrence, e.EndTime, &start, now)
}

// SortEvents orders events ascending by start instant, ties broken by ID for
// a stable visible collection.
func SortEvents(events []Event) {
	sort.Slice(events, func(i, j int) bool {
		if !events[i].Start.Equal(events[j].Start) {
			return events[i].Start.Before(events[j].Start)
		}
		return events[i].ID.String() < events[j].ID.String()
	})
}
