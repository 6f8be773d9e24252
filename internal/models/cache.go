package models

import (
	"time"

	"github.com/google/uuid"
)

// Holiday is a cached, read-only public-holiday fact. At most one record
// exists per calendar day; only the holiday preload import creates them.
type Holiday struct {
	ID    uuid.UUID `json:"id"`
	Date  time.Time `json:"date"`
	Title string    `json:"title"`
	Year  int       `json:"year"`
}

// DayInfo is a cached, read-only per-day weather/astronomy snapshot.
// Sunrise and sunset are kept as the provider's display strings.
type DayInfo struct {
	Date    time.Time `json:"date"`
	Sunrise string    `json:"sunrise"`
	Sunset  string    `json:"sunset"`
	TempMin float64   `json:"temp_min"`
	TempMax float64   `json:"temp_max"`
}
