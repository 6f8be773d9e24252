package models

// Recurrence describes how often an event repeats.
type Recurrence string

const (
	RecurrenceNone    Recurrence = "none"
	RecurrenceDaily   Recurrence = "daily"
	RecurrenceWeekly  Recurrence = "weekly"
	RecurrenceMonthly Recurrence = "monthly"
	RecurrenceYearly  Recurrence = "yearly"
)

// Valid reports whether r is a known recurrence.
func (r Recurrence) Valid() bool {
	switch r {
	case RecurrenceNone, RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly, RecurrenceYearly:
		return true
	}
	return false
}

// ParseRecurrence maps a raw value onto a recurrence, falling back to none.
func ParseRecurrence(raw string) Recurrence {
	r := Recurrence(raw)
	if !r.Valid() {
		return RecurrenceNone
	}
	return r
}
