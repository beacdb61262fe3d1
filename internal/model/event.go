package model

import "strings"

// Event is a calendar event normalized across calendars.
// Start and End hold RFC 3339 timestamps for timed events and plain
// YYYY-MM-DD dates for all-day events.
type Event struct {
	ID           string       `json:"id,omitempty"`
	Summary      string       `json:"summary"`
	Start        string       `json:"start"`
	End          string       `json:"end,omitempty"`
	Date         string       `json:"date,omitempty"`
	Location     string       `json:"location,omitempty"`
	Description  string       `json:"description,omitempty"`
	Calendar     string       `json:"calendar,omitempty"`
	CalendarType CalendarType `json:"calendar_type,omitempty"`
}

// Day returns the YYYY-MM-DD the event belongs to: the explicit Date if
// set, otherwise the date portion of Start.
func (e Event) Day() string {
	if e.Date != "" {
		return e.Date
	}
	day, _, _ := strings.Cut(e.Start, "T")
	return day
}

// AllDay reports whether the event has no start time.
func (e Event) AllDay() bool {
	return !strings.Contains(e.Start, "T")
}
