package transcoder

import (
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/nova/internal/temporal"
)

// Relative date labels.
const (
	LabelToday    = "TODAY"
	LabelTomorrow = "TOMORROW"
)

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// parseDay reads the YYYY-MM-DD prefix of an ISO date or timestamp.
func parseDay(value string) (time.Time, bool) {
	day, _, _ := strings.Cut(value, "T")
	d, err := time.Parse(temporal.DateLayout, day)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// daySuffix returns the English ordinal suffix for a day of the month.
func daySuffix(day int) string {
	if day >= 11 && day <= 13 {
		return "th"
	}
	switch day % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	default:
		return "th"
	}
}

// FormatDateFull renders "Tuesday, December 9th, 2025". Unparseable input
// is returned as-is.
func (t *Transcoder) FormatDateFull(value string) string {
	d, ok := parseDay(value)
	if !ok {
		return value
	}
	return fmt.Sprintf("%s, %s %d%s, %d", d.Weekday(), d.Month(), d.Day(), daySuffix(d.Day()), d.Year())
}

// FormatDateShort renders "Dec 9".
func (t *Transcoder) FormatDateShort(value string) string {
	d, ok := parseDay(value)
	if !ok {
		return value
	}
	return d.Format("Jan 2")
}

// FormatTime renders the wall-clock time of an ISO timestamp as "9:30 AM",
// or "09:30" in 24-hour mode. A date without a time is "All day".
func (t *Transcoder) FormatTime(value string) string {
	if !strings.Contains(value, "T") {
		return "All day"
	}

	for _, layout := range timeLayouts {
		ts, err := time.Parse(layout, value)
		if err != nil {
			continue
		}
		if t.cfg.TimeFormat24h {
			return ts.Format("15:04")
		}
		return ts.Format("3:04 PM")
	}

	t.logger.Debug("unparseable time", "value", value)
	return value
}

// RelativeLabel returns TODAY or TOMORROW for those dates and "" otherwise.
func (t *Transcoder) RelativeLabel(value string) string {
	d, ok := parseDay(value)
	if !ok {
		return ""
	}
	today := temporal.Day(t.now())
	switch {
	case d.Equal(today):
		return LabelToday
	case d.Equal(today.AddDate(0, 0, 1)):
		return LabelTomorrow
	default:
		return ""
	}
}

// label returns the relative label (when enabled) and full date of value.
func (t *Transcoder) label(value string) (relative, full string) {
	full = t.FormatDateFull(value)
	if t.cfg.IncludeRelativeDates {
		relative = t.RelativeLabel(value)
	}
	return relative, full
}
