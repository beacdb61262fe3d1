// Package temporal extracts date ranges from natural-language phrases such as
// "tomorrow", "next week" or "next Friday".
package temporal

import (
	"fmt"
	"time"
)

// Pattern identifies which rule produced a TimeRange.
type Pattern string

// Recognized temporal patterns.
const (
	PatternNone            Pattern = "none"
	PatternToday           Pattern = "today"
	PatternTomorrow        Pattern = "tomorrow"
	PatternYesterday       Pattern = "yesterday"
	PatternThisWeek        Pattern = "this week"
	PatternNextWeek        Pattern = "next week"
	PatternNextNDays       Pattern = "next N days"
	PatternSpecificWeekday Pattern = "specific weekday"
)

// DateLayout is the ISO date layout used for range bounds.
const DateLayout = "2006-01-02"

// TimeRange is an inclusive range of calendar days. Start and End are
// midnight UTC values; only their dates are meaningful.
type TimeRange struct {
	Start       time.Time
	End         time.Time
	Description string
	Pattern     Pattern
}

// Day normalizes t to midnight UTC of its local calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NewTimeRange builds a range, rejecting one whose start is after its end.
func NewTimeRange(start, end time.Time, description string, pattern Pattern) (TimeRange, error) {
	start, end = Day(start), Day(end)
	if start.After(end) {
		return TimeRange{}, fmt.Errorf("invalid range %s..%s", start.Format(DateLayout), end.Format(DateLayout))
	}
	return TimeRange{Start: start, End: end, Description: description, Pattern: pattern}, nil
}

// IsSingleDay reports whether the range covers exactly one day.
func (r TimeRange) IsSingleDay() bool {
	return r.Start.Equal(r.End)
}

// Days is the number of days in the range, inclusive.
func (r TimeRange) Days() int {
	return int(r.End.Sub(r.Start).Hours()/24) + 1
}

// StartDate returns Start as YYYY-MM-DD.
func (r TimeRange) StartDate() string { return r.Start.Format(DateLayout) }

// EndDate returns End as YYYY-MM-DD.
func (r TimeRange) EndDate() string { return r.End.Format(DateLayout) }

// Contains reports whether the YYYY-MM-DD day lies inside the range.
func (r TimeRange) Contains(day string) bool {
	return day >= r.StartDate() && day <= r.EndDate()
}

func (r TimeRange) String() string {
	if r.IsSingleDay() {
		return fmt.Sprintf("%s (%s)", r.Description, r.StartDate())
	}
	return fmt.Sprintf("%s (%s..%s)", r.Description, r.StartDate(), r.EndDate())
}

// mondayIndex returns the weekday with Monday as 0 and Sunday as 6.
func mondayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

func singleDay(d time.Time, description string, pattern Pattern) TimeRange {
	d = Day(d)
	return TimeRange{Start: d, End: d, Description: description, Pattern: pattern}
}

// Today is the single-day range for ref's date.
func Today(ref time.Time) TimeRange {
	return singleDay(ref, "today", PatternToday)
}

// Tomorrow is the single-day range for the day after ref.
func Tomorrow(ref time.Time) TimeRange {
	return singleDay(Day(ref).AddDate(0, 0, 1), "tomorrow", PatternTomorrow)
}

// Yesterday is the single-day range for the day before ref.
func Yesterday(ref time.Time) TimeRange {
	return singleDay(Day(ref).AddDate(0, 0, -1), "yesterday", PatternYesterday)
}

// ThisWeek runs from the Monday of ref's week through the following Sunday.
func ThisWeek(ref time.Time) TimeRange {
	monday := Day(ref).AddDate(0, 0, -mondayIndex(ref))
	return TimeRange{Start: monday, End: monday.AddDate(0, 0, 6), Description: "this week", Pattern: PatternThisWeek}
}

// NextWeek runs Monday to Sunday of the week after ref's week.
func NextWeek(ref time.Time) TimeRange {
	monday := Day(ref).AddDate(0, 0, 7-mondayIndex(ref))
	return TimeRange{Start: monday, End: monday.AddDate(0, 0, 6), Description: "next week", Pattern: PatternNextWeek}
}

// NextNDays starts at ref and spans n days. n below 1 is treated as 1.
func NextNDays(ref time.Time, n int) TimeRange {
	if n < 1 {
		n = 1
	}
	start := Day(ref)
	return TimeRange{
		Start:       start,
		End:         start.AddDate(0, 0, n-1),
		Description: fmt.Sprintf("next %d days", n),
		Pattern:     PatternNextNDays,
	}
}
