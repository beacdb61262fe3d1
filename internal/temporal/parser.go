package temporal

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/nova/internal/common"
)

// DefaultMaxDays caps "next N days" requests.
const DefaultMaxDays = 30

var (
	todayPattern     = regexp.MustCompile(`(?i)\btoday\b`)
	tomorrowPattern  = regexp.MustCompile(`(?i)\btomorrow\b`)
	yesterdayPattern = regexp.MustCompile(`(?i)\byesterday\b`)
	thisWeekPattern  = regexp.MustCompile(`(?i)\bthis\s+week\b`)
	nextWeekPattern  = regexp.MustCompile(`(?i)\bnext\s+week\b`)
	nextNDaysPattern = regexp.MustCompile(`(?i)\bnext\s+(\d+)\s+days?\b`)
	weekdayPattern   = regexp.MustCompile(`(?i)\b(next\s+)?(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`)
)

var weekdayNames = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// Parser resolves temporal expressions relative to a reference date.
type Parser struct {
	logger  *slog.Logger
	maxDays int
}

// Option configures a Parser.
type Option func(*Parser)

// WithMaxDays overrides the "next N days" cap.
func WithMaxDays(n int) Option {
	return func(p *Parser) {
		if n > 0 {
			p.maxDays = n
		}
	}
}

// WithLogger sets the parser's logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Parser) { p.logger = l }
}

// NewParser creates a parser.
func NewParser(opts ...Option) *Parser {
	p := &Parser{maxDays: DefaultMaxDays}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = common.LoggerOrDefault(p.logger)
	return p
}

// Parse extracts a date range from message. The first matching rule wins,
// most specific first. ok is false when the message names no range.
func (p *Parser) Parse(message string, ref time.Time) (TimeRange, bool) {
	r, ok := p.matchRelative(message, ref)
	if !ok {
		r, ok = matchWeekday(message, ref)
	}

	if ok {
		p.logger.Debug("temporal parse",
			"message", common.Truncate(message, 50),
			"range", r.String())
	} else {
		p.logger.Debug("temporal parse: no pattern found",
			"message", common.Truncate(message, 50))
	}
	return r, ok
}

func (p *Parser) matchRelative(message string, ref time.Time) (TimeRange, bool) {
	if m := nextNDaysPattern.FindStringSubmatch(message); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil || n > p.maxDays {
			n = p.maxDays
		}
		return NextNDays(ref, n), true
	}

	switch {
	case tomorrowPattern.MatchString(message):
		return Tomorrow(ref), true
	case yesterdayPattern.MatchString(message):
		return Yesterday(ref), true
	case nextWeekPattern.MatchString(message):
		return NextWeek(ref), true
	case thisWeekPattern.MatchString(message):
		return ThisWeek(ref), true
	case todayPattern.MatchString(message):
		return Today(ref), true
	}

	return TimeRange{}, false
}

// matchWeekday resolves "Friday" to the nearest Friday on or after ref, and
// "next Friday" to the Friday of the week after ref's week.
func matchWeekday(message string, ref time.Time) (TimeRange, bool) {
	m := weekdayPattern.FindStringSubmatch(message)
	if m == nil {
		return TimeRange{}, false
	}

	name := strings.ToLower(m[2])
	target := 0
	for i, n := range weekdayNames {
		if n == name {
			target = i
			break
		}
	}

	day := Day(ref)
	current := mondayIndex(ref)
	label := strings.ToUpper(name[:1]) + name[1:]

	if m[1] != "" {
		nextMonday := day.AddDate(0, 0, 7-current)
		return singleDay(nextMonday.AddDate(0, 0, target), "next "+label, PatternSpecificWeekday), true
	}

	daysUntil := (target - current + 7) % 7
	return singleDay(day.AddDate(0, 0, daysUntil), label, PatternSpecificWeekday), true
}

// DetectTemporalIntent is a fast check for whether message contains any
// recognized temporal expression.
func DetectTemporalIntent(message string) bool {
	for _, re := range []*regexp.Regexp{
		todayPattern, tomorrowPattern, yesterdayPattern,
		thisWeekPattern, nextWeekPattern, nextNDaysPattern,
		weekdayPattern,
	} {
		if re.MatchString(message) {
			return true
		}
	}
	return false
}
