// Package transcoder turns weather, calendar and task payloads into grouped,
// plain-text summaries so the language model never has to reason about
// dates or parse JSON.
package transcoder

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/nova/internal/common"
	"github.com/Veraticus/nova/internal/model"
	"github.com/Veraticus/nova/internal/temporal"
)

// Empty-input sentinels.
const (
	NoWeather = "Weather data unavailable."
	NoTodos   = "No tasks scheduled."
	NoData    = "No data available."
)

// SectionSeparator joins the sections produced by All.
const SectionSeparator = "\n\n---\n\n"

// Config controls output formatting.
type Config struct {
	UseEmoji             bool `mapstructure:"use_emoji"`
	IncludeRelativeDates bool `mapstructure:"include_relative_dates"`
	TimeFormat24h        bool `mapstructure:"time_format_24h"`
}

// DefaultConfig uses emoji, relative labels and 12-hour times.
func DefaultConfig() Config {
	return Config{UseEmoji: true, IncludeRelativeDates: true}
}

// Data is the input to All. A nil field is an absent section; an empty but
// non-nil slice is a present section with nothing in it.
type Data struct {
	Weather *model.Weather `json:"weather,omitempty"`
	Events  []model.Event  `json:"events"`
	Todos   []model.Todo   `json:"todos"`
}

// Transcoder formats payloads. It holds no state beyond its configuration.
type Transcoder struct {
	now    func() time.Time
	logger *slog.Logger
	cfg    Config
}

// Option configures a Transcoder.
type Option func(*Transcoder)

// WithClock replaces time.Now for relative date labels.
func WithClock(now func() time.Time) Option {
	return func(t *Transcoder) { t.now = now }
}

// WithLogger sets the transcoder logger.
func WithLogger(l *slog.Logger) Option {
	return func(t *Transcoder) { t.logger = l }
}

// New creates a transcoder.
func New(cfg Config, opts ...Option) *Transcoder {
	t := &Transcoder{cfg: cfg, now: time.Now}
	for _, opt := range opts {
		opt(t)
	}
	t.logger = common.LoggerOrDefault(t.logger)
	return t
}

// Config returns the formatting configuration.
func (t *Transcoder) Config() Config {
	return t.cfg
}

// All renders every present section of d, separated by SectionSeparator.
func (t *Transcoder) All(d Data, tr *temporal.TimeRange) string {
	var sections []string

	if d.Weather != nil {
		if text := t.Weather(d.Weather); text != "" {
			sections = append(sections, text)
		}
	}
	if d.Events != nil {
		if text := t.Events(d.Events, tr); text != "" {
			sections = append(sections, text)
		}
	}
	if d.Todos != nil {
		if text := t.Todos(d.Todos); text != "" {
			sections = append(sections, text)
		}
	}

	if len(sections) == 0 {
		return NoData
	}
	return strings.Join(sections, SectionSeparator)
}

// plural returns "<n> <word>" with an "s" unless n is 1.
func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return fmt.Sprintf("%d %ss", n, word)
}
