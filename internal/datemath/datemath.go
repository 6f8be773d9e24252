// Package datemath provides calendar-day arithmetic shared by the event
// predicate, the stores, and the remote caches. All computations use the
// local calendar; day keys are timezone-naive.
package datemath

import "time"

// DayKeyLayout is the normalized calendar-day format used for exception
// sets, storage keys, and API payloads.
const DayKeyLayout = "2006-01-02"

// Combine merges the calendar day of day with the clock of clock.
// An invalid combination falls back to returning day unchanged.
func Combine(day, clock time.Time) time.Time {
	merged := time.Date(
		day.Year(), day.Month(), day.Day(),
		clock.Hour(), clock.Minute(), clock.Second(),
		0, day.Location(),
	)
	// time.Date normalizes rather than erroring; a shifted day means the
	// inputs did not combine into a valid instant.
	if merged.Year() != day.Year() || merged.Month() != day.Month() || merged.Day() != day.Day() {
		return day
	}
	return merged
}

// EffectiveEnd returns the end instant of an occurrence on occurrence's day.
// An explicit end time always wins; otherwise the start's clock is reused;
// with neither, the occurrence runs until start of the next day.
func EffectiveEnd(occurrence time.Time, endTime, start *time.Time) time.Time {
	if endTime != nil {
		return Combine(occurrence, *endTime)
	}
	if start != nil {
		return Combine(occurrence, *start)
	}
	return NextDay(StartOfDay(occurrence))
}

// HasFinished reports whether the occurrence's effective end lies at or
// before now.
func HasFinished(occurrence time.Time, endTime, start *time.Time, now time.Time) bool {
	return !now.Before(EffectiveEnd(occurrence, endTime, start))
}

// StartOfDay truncates t to midnight of its calendar day.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// NextDay returns the same clock time one calendar day later.
func NextDay(t time.Time) time.Time {
	return t.AddDate(0, 0, 1)
}

// SameDay reports whether a and b fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

// DayKey returns the normalized day key for t.
func DayKey(t time.Time) string {
	return t.Format(DayKeyLayout)
}

// ParseDayKey parses a normalized day key in the local calendar.
func ParseDayKey(key string) (time.Time, error) {
	return time.ParseInLocation(DayKeyLayout, key, time.Local)
}

// BeforeDay reports whether a's calendar day is strictly before b's.
func BeforeDay(a, b time.Time) bool {
	return StartOfDay(a).Before(StartOfDay(b))
}

// AfterDay reports whether a's calendar day is strictly after b's.
func AfterDay(a, b time.Time) bool {
	return StartOfDay(a).After(StartOfDay(b))
}
