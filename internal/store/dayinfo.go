package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/jjacobsen/almanak/internal/datemath"
	"github.com/jjacobsen/almanak/internal/models"
)

// InsertDayInfo stores a day-info snapshot. At most one record exists per
// calendar day; a duplicate import is ignored (first wins).
func (db *DB) InsertDayInfo(d models.DayInfo) error {
	_, err := db.conn.Exec(`
		INSERT INTO day_info (day_key, date, sunrise, sunset, temp_min, temp_max)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(day_key) DO NOTHING
	`, datemath.DayKey(d.Date), d.Date, d.Sunrise, d.Sunset, d.TempMin, d.TempMax)
	if err != nil {
		return fmt.Errorf("store: insert day info: %w", err)
	}
	return nil
}

// DayInfoOn returns the snapshot whose date falls within day's calendar day,
// or nil when none is stored.
func (db *DB) DayInfoOn(day time.Time) (*models.DayInfo, error) {
	start := datemath.StartOfDay(day)
	row := db.conn.QueryRow(`
		SELECT date, sunrise, sunset, temp_min, temp_max FROM day_info
		WHERE date >= ? AND date < ?
		LIMIT 1
	`, start, datemath.NextDay(start))

	var d models.DayInfo
	err := row.Scan(&d.Date, &d.Sunrise, &d.Sunset, &d.TempMin, &d.TempMax)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: day info on %s: %w", datemath.DayKey(day), err)
	}
	d.Date = d.Date.Local()
	return &d, nil
}

// DeleteAllDayInfo removes every snapshot. Test/reset only.
func (db *DB) DeleteAllDayInfo() error {
	if _, err := db.conn.Exec(`DELETE FROM day_info`); err != nil {
		return fmt.Errorf("store: delete all day info: %w", err)
	}
	return nil
}
