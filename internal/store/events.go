package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jjacobsen/almanak/internal/apperr"
	"github.com/jjacobsen/almanak/internal/models"
)

// UpsertEvent inserts or replaces an event row.
func (db *DB) UpsertEvent(e models.Event) error {
	exceptions, err := json.Marshal(e.ExceptionDates.Keys())
	if err != nil {
		return fmt.Errorf("store: marshal exceptions: %w", err)
	}

	_, err = db.conn.Exec(`
		INSERT INTO events (id, title, details, start, end_time, color, recurrence,
		                    repeat_end, exceptions, notifications, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title         = excluded.title,
			details       = excluded.details,
			start         = excluded.start,
			end_time      = excluded.end_time,
			color         = excluded.color,
			recurrence    = excluded.recurrence,
			repeat_end    = excluded.repeat_end,
			exceptions    = excluded.exceptions,
			notifications = excluded.notifications,
			updated_at    = excluded.updated_at
	`, e.ID.String(), e.Title, e.Details, e.Start, nullTime(e.EndTime), string(e.Color),
		string(e.Recurrence), nullTime(e.RepeatEnd), string(exceptions),
		e.NotificationsEnabled, e.CreatedAt, e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("store: upsert event: %w", err)
	}
	return nil
}

// GetEvent returns the event with the given id.
func (db *DB) GetEvent(id uuid.UUID) (*models.Event, error) {
	row := db.conn.QueryRow(`
		SELECT id, title, details, start, end_time, color, recurrence,
		       repeat_end, exceptions, notifications, created_at, updated_at
		FROM events WHERE id = ?
	`, id.String())
	e, err := scanEvent(row)
	if err == sql.ErrNoRows {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get event: %w", err)
	}
	return e, nil
}

// AllEvents returns every stored event sorted ascending by start instant.
func (db *DB) AllEvents() ([]models.Event, error) {
	rows, err := db.conn.Query(`
		SELECT id, title, details, start, end_time, color, recurrence,
		       repeat_end, exceptions, notifications, created_at, updated_at
		FROM events ORDER BY start ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("store: all events: %w", err)
	}
	defer rows.Close()

	var out []models.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan event: %w", err)
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

// DeleteEvent removes an event row.
func (db *DB) DeleteEvent(id uuid.UUID) error {
	res, err := db.conn.Exec(`DELETE FROM events WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("store: delete event: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// DeleteAllEvents removes every event row. Development/testing reset.
func (db *DB) DeleteAllEvents() error {
	if _, err := db.conn.Exec(`DELETE FROM events`); err != nil {
		return fmt.Errorf("store: delete all events: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*models.Event, error) {
	var (
		e          models.Event
		id         string
		endTime    sql.NullTime
		repeatEnd  sql.NullTime
		color      string
		recurrence string
		exceptions string
	)
	err := row.Scan(&id, &e.Title, &e.Details, &e.Start, &endTime, &color,
		&recurrence, &repeatEnd, &exceptions, &e.NotificationsEnabled,
		&e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parse id %q: %w", id, err)
	}
	e.ID = parsed
	e.Color = models.ParseColor(color)
	e.Recurrence = models.ParseRecurrence(recurrence)
	if endTime.Valid {
		t := endTime.Time.Local()
		e.EndTime = &t
	}
	if repeatEnd.Valid {
		t := repeatEnd.Time.Local()
		e.RepeatEnd = &t
	}
	e.Start = e.Start.Local()
	var keys []string
	if err := json.Unmarshal([]byte(exceptions), &keys); err != nil {
		return nil, fmt.Errorf("parse exceptions: %w", err)
	}
	if len(keys) > 0 {
		set := make(models.DaySet, len(keys))
		for _, k := range keys {
			set[k] = struct{}{}
		}
		e.ExceptionDates = set
	}
	return &e, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
