// Package calendar fetches events from Google Calendar and classifies
// calendars by name.
package calendar

import (
	"encoding/json"
	"log/slog"
	"regexp"
	"strings"

	"github.com/Veraticus/nova/internal/common"
	"github.com/Veraticus/nova/internal/model"
)

type calendarPattern struct {
	re  *regexp.Regexp
	typ model.CalendarType
}

// Patterns are tried in order; the first match wins.
var calendarPatterns = []calendarPattern{
	{regexp.MustCompile(`(?i)\b(birthday|birthdays|bday|bdays)\b`), model.CalendarBirthdays},
	{regexp.MustCompile(`(?i)\b(food|drinks|social|friends|hangout|hangouts|lunch|dinner|coffee|brunch)\b`), model.CalendarSocial},
	{regexp.MustCompile(`(?i)\b(work|office|meetings|job|business|professional)\b`), model.CalendarWork},
	{regexp.MustCompile(`(?i)\b(personal|private|me|self|my)\b`), model.CalendarPersonal},
	{regexp.MustCompile(`(?i)\b(bills|recurring|subscriptions|chores|routine|reminders)\b`), model.CalendarRecurring},
}

// Classifier maps calendar names to a CalendarType.
type Classifier struct {
	logger    *slog.Logger
	overrides map[string]model.CalendarType
}

// NewClassifier creates a classifier. Override keys are matched
// case-insensitively against the full calendar name.
func NewClassifier(overrides map[string]model.CalendarType, logger *slog.Logger) *Classifier {
	c := &Classifier{
		logger:    common.LoggerOrDefault(logger),
		overrides: make(map[string]model.CalendarType, len(overrides)),
	}
	for name, typ := range overrides {
		c.overrides[strings.ToLower(name)] = typ
	}
	return c
}

// ParseOverrides reads a JSON object of calendar name to type name.
// Malformed JSON yields no overrides and unknown types are skipped; both
// are logged as warnings.
func ParseOverrides(raw string, logger *slog.Logger) map[string]model.CalendarType {
	logger = common.LoggerOrDefault(logger)
	result := make(map[string]model.CalendarType)
	if strings.TrimSpace(raw) == "" {
		return result
	}

	var parsed map[string]string
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		logger.Warn("failed to parse calendar type overrides", "error", err)
		return result
	}

	for name, value := range parsed {
		typ, ok := model.ParseCalendarType(value)
		if !ok {
			logger.Warn("invalid calendar type override", "calendar", name, "type", value)
			continue
		}
		result[strings.ToLower(name)] = typ
	}
	return result
}

// Classify returns the override for name if one exists, otherwise the
// first matching name pattern, otherwise CalendarUnknown.
func (c *Classifier) Classify(name string) model.CalendarType {
	if typ, ok := c.overrides[strings.ToLower(name)]; ok {
		c.logger.Debug("calendar classified", "calendar", name, "type", typ, "source", "override")
		return typ
	}

	for _, p := range calendarPatterns {
		if p.re.MatchString(name) {
			c.logger.Debug("calendar classified", "calendar", name, "type", p.typ, "source", "pattern")
			return p.typ
		}
	}

	c.logger.Debug("calendar classified", "calendar", name, "type", model.CalendarUnknown)
	return model.CalendarUnknown
}

// ClassifyAll classifies each name.
func (c *Classifier) ClassifyAll(names []string) map[string]model.CalendarType {
	result := make(map[string]model.CalendarType, len(names))
	for _, name := range names {
		result[name] = c.Classify(name)
	}
	return result
}

