package transcoder

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Veraticus/nova/internal/model"
	"github.com/Veraticus/nova/internal/temporal"
)

// Events renders events grouped by day in date order, each day sorted by
// start time. Events without a date are listed last. A non-nil tr adds a closing total line and names the range in
// the empty message.
func (t *Transcoder) Events(events []model.Event, tr *temporal.TimeRange) string {
	if len(events) == 0 {
		desc := "the requested period"
		if tr != nil {
			desc = tr.Description
		}
		return fmt.Sprintf("No events scheduled for %s.", desc)
	}

	byDay := make(map[string][]model.Event)
	var undated []model.Event
	for _, e := range events {
		if day := e.Day(); day != "" {
			byDay[day] = append(byDay[day], e)
		} else {
			undated = append(undated, e)
		}
	}

	days := make([]string, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Strings(days)

	var lines []string
	for _, day := range days {
		dayEvents := byDay[day]
		sort.SliceStable(dayEvents, func(i, j int) bool {
			return dayEvents[i].Start < dayEvents[j].Start
		})

		relative, full := t.label(day)
		if relative != "" {
			lines = append(lines, fmt.Sprintf("EVENTS FOR %s (%s):", relative, full))
		} else {
			lines = append(lines, fmt.Sprintf("EVENTS FOR %s:", full))
		}
		lines = append(lines, "")

		for _, e := range dayEvents {
			lines = append(lines, t.event(e))
		}
		lines = append(lines, fmt.Sprintf("  (%s)", plural(len(dayEvents), "event")), "")
	}

	if len(undated) > 0 {
		lines = append(lines, "EVENTS (no date):", "")
		for _, e := range undated {
			lines = append(lines, t.event(e))
		}
		lines = append(lines, fmt.Sprintf("  (%s)", plural(len(undated), "event")), "")
	}

	if tr != nil {
		lines = append(lines, fmt.Sprintf("Total: %s for %s", plural(len(events), "event"), tr.Description))
	}

	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func (t *Transcoder) event(e model.Event) string {
	summary := e.Summary
	if summary == "" {
		summary = "Untitled Event"
	}

	var main string
	switch {
	case e.Start == "":
		main = "  " + summary
	case e.AllDay():
		marker := ""
		if t.cfg.UseEmoji && isBirthday(e) {
			marker = "🎂 "
		}
		main = fmt.Sprintf("  %s%s (all day)", marker, summary)
	case strings.Contains(e.End, "T"):
		main = fmt.Sprintf("  %s - %s: %s", t.FormatTime(e.Start), t.FormatTime(e.End), summary)
	default:
		main = fmt.Sprintf("  %s: %s", t.FormatTime(e.Start), summary)
	}

	lines := []string{main}
	if e.Location != "" {
		lines = append(lines, "    "+t.emoji("📍 ")+e.Location)
	}
	if e.Calendar != "" {
		lines = append(lines, "    "+t.emoji("📅 ")+e.Calendar+" calendar")
	}
	return strings.Join(lines, "\n")
}

func (t *Transcoder) emoji(s string) string {
	if t.cfg.UseEmoji {
		return s
	}
	return ""
}

func isBirthday(e model.Event) bool {
	return e.CalendarType == model.CalendarBirthdays ||
		strings.Contains(strings.ToLower(e.Summary), "birthday")
}
