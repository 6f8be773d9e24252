package api

import (
	"time"

	"github.com/jjacobsen/almanak/internal/eventservice"
	"github.com/jjacobsen/almanak/internal/models"
)

// EventRequest is the request body for creating or updating an event.
type EventRequest struct {
	Title                string     `json:"title"`
	Details              string     `json:"details"`
	Start                time.Time  `json:"start"`
	EndTime              *time.Time `json:"end_time,omitempty"`
	Color                string     `json:"color"`
	Recurrence           string     `json:"recurrence"`
	NotificationsEnabled bool       `json:"notifications_enabled"`
}

func (r EventRequest) toInput() eventservice.Input {
	return eventservice.Input{
		Title:                r.Title,
		Details:              r.Details,
		Start:                r.Start,
		EndTime:              r.EndTime,
		Color:                models.ParseColor(r.Color),
		Recurrence:           models.ParseRecurrence(r.Recurrence),
		NotificationsEnabled: r.NotificationsEnabled,
	}
}

// SplitRequest is the request body for detaching a single occurrence.
type SplitRequest struct {
	Occurrence           time.Time  `json:"occurrence"`
	Title                string     `json:"title"`
	Details              string     `json:"details"`
	Color                string     `json:"color"`
	EndTime              *time.Time `json:"end_time,omitempty"`
	NotificationsEnabled bool       `json:"notifications_enabled"`
}

func (r SplitRequest) toInput() eventservice.SplitInput {
	return eventservice.SplitInput{
		Title:                r.Title,
		Details:              r.Details,
		Color:                models.ParseColor(r.Color),
		EndTime:              r.EndTime,
		NotificationsEnabled: r.NotificationsEnabled,
	}
}

// EventListResponse wraps the visible event collection.
type EventListResponse struct {
	Events []models.Event `json:"events"`
	Total  int            `json:"total"`
}

// DayEvent is one occurrence in a day view.
type DayEvent struct {
	models.Event
	Finished bool `json:"finished"`
}

// HolidayView is the per-day holiday annotation.
type HolidayView struct {
	Title string `json:"title"`
	Year  int    `json:"year"`
}

// DayInfoView is the per-day weather/astronomy annotation.
type DayInfoView struct {
	Sunrise string  `json:"sunrise"`
	Sunset  string  `json:"sunset"`
	TempMin float64 `json:"temp_min"`
	TempMax float64 `json:"temp_max"`
}

// DayResponse composes the three independent per-day results. Holiday and
// DayInfo are absent (not zero-valued) when no data is available.
type DayResponse struct {
	Date    string       `json:"date"`
	Events  []DayEvent   `json:"events"`
	Holiday *HolidayView `json:"holiday,omitempty"`
	DayInfo *DayInfoView `json:"day_info,omitempty"`
}
