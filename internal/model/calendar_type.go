package model

import "strings"

// CalendarType categorizes a calendar by what it is used for.
type CalendarType string

// Calendar categories.
const (
	CalendarBirthdays CalendarType = "birthdays"
	CalendarSocial    CalendarType = "social"
	CalendarWork      CalendarType = "work"
	CalendarPersonal  CalendarType = "personal"
	CalendarRecurring CalendarType = "recurring"
	CalendarUnknown   CalendarType = "unknown"
)

// ParseCalendarType validates a configured calendar type name.
func ParseCalendarType(s string) (CalendarType, bool) {
	switch t := CalendarType(strings.ToLower(strings.TrimSpace(s))); t {
	case CalendarBirthdays, CalendarSocial, CalendarWork, CalendarPersonal, CalendarRecurring, CalendarUnknown:
		return t, true
	default:
		return CalendarUnknown, false
	}
}
