package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jjacobsen/almanak/internal/datemath"
	"github.com/jjacobsen/almanak/internal/models"
)

// InsertHoliday stores a holiday record. At most one record exists per
// calendar day; a second import for the same day is ignored (first wins).
func (db *DB) InsertHoliday(h models.Holiday) error {
	_, err := db.conn.Exec(`
		INSERT INTO holidays (id, day_key, date, title, year)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(day_key) DO NOTHING
	`, h.ID.String(), datemath.DayKey(h.Date), h.Date, h.Title, h.Year)
	if err != nil {
		return fmt.Errorf("store: insert holiday: %w", err)
	}
	return nil
}

// InsertHolidays stores a batch of holiday records in one transaction so a
// concurrent reader never observes a half-imported year.
func (db *DB) InsertHolidays(hs []models.Holiday) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	stmt, err := tx.Prepare(`
		INSERT INTO holidays (id, day_key, date, title, year)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(day_key) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("store: prepare holiday insert: %w", err)
	}
	defer stmt.Close()

	for _, h := range hs {
		if _, err := stmt.Exec(h.ID.String(), datemath.DayKey(h.Date), h.Date, h.Title, h.Year); err != nil {
			return fmt.Errorf("store: insert holiday: %w", err)
		}
	}
	return tx.Commit()
}

// HolidayOn returns the holiday whose date falls within day's calendar day,
// or nil when none is stored.
func (db *DB) HolidayOn(day time.Time) (*models.Holiday, error) {
	start := datemath.StartOfDay(day)
	row := db.conn.QueryRow(`
		SELECT id, date, title, year FROM holidays
		WHERE date >= ? AND date < ?
		LIMIT 1
	`, start, datemath.NextDay(start))

	var (
		h  models.Holiday
		id string
	)
	err := row.Scan(&id, &h.Date, &h.Title, &h.Year)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: holiday on %s: %w", datemath.DayKey(day), err)
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("store: parse holiday id %q: %w", id, err)
	}
	h.ID = parsed
	h.Date = h.Date.Local()
	return &h, nil
}

// HolidayYearCount returns how many holiday records are tagged with year.
func (db *DB) HolidayYearCount(year int) (int, error) {
	var n int
	err := db.conn.QueryRow(`SELECT count(*) FROM holidays WHERE year = ?`, year).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("store: holiday year count: %w", err)
	}
	return n, nil
}

// DeleteAllHolidays removes every holiday record. Test/reset only.
func (db *DB) DeleteAllHolidays() error {
	if _, err := db.conn.Exec(`DELETE FROM holidays`); err != nil {
		return fmt.Errorf("store: delete all holidays: %w", err)
	}
	return nil
}
