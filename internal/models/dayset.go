package models

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/jjacobsen/almanak/internal/datemath"
)

// DaySet is a set of calendar days keyed by normalized day key.
// Membership ignores time-of-day. It marshals as a sorted list of
// "yyyy-MM-dd" strings.
type DaySet map[string]struct{}

// Contains reports whether t's calendar day is in the set.
func (s DaySet) Contains(t time.Time) bool {
	if s == nil {
		return false
	}
	_, ok := s[datemath.DayKey(t)]
	return ok
}

// Add inserts t's calendar day. It returns a set usable when s is nil.
func (s DaySet) Add(t time.Time) DaySet {
	if s == nil {
		s = make(DaySet)
	}
	s[datemath.DayKey(t)] = struct{}{}
	return s
}

// Clone returns an independent copy of the set.
func (s DaySet) Clone() DaySet {
	if s == nil {
		return nil
	}
	out := make(DaySet, len(s))
	for k := range s {
		out[k] = struct{}{}
	}
	return out
}

// Keys returns the day keys in ascending order.
func (s DaySet) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// MarshalJSON implements json.Marshaler.
func (s DaySet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Keys())
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *DaySet) UnmarshalJSON(data []byte) error {
	var keys []string
	if err := json.Unmarshal(data, &keys); err != nil {
		return err
	}
	set := make(DaySet, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}
	*s = set
	return nil
}
