// Package assistant answers questions about the user's day. It detects what
// a message is about, gathers the matching data through the cache, renders
// it as text and hands it to the language model.
package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Veraticus/nova/internal/cache"
	"github.com/Veraticus/nova/internal/common"
	"github.com/Veraticus/nova/internal/llm"
	"github.com/Veraticus/nova/internal/model"
	"github.com/Veraticus/nova/internal/temporal"
	"github.com/Veraticus/nova/internal/transcoder"
)

// WeatherSource provides the forecast.
type WeatherSource interface {
	Forecast(ctx context.Context) (*model.Weather, error)
}

// EventSource provides calendar events between two days, inclusive.
type EventSource interface {
	Events(ctx context.Context, start, end time.Time) ([]model.Event, error)
}

// TodoSource provides tasks due between two days, inclusive.
type TodoSource interface {
	Tasks(ctx context.Context, start, end time.Time) ([]model.Todo, error)
}

// IntentDetector classifies a message.
type IntentDetector interface {
	Detect(ctx context.Context, message string) model.IntentSet
}

// Chatter produces the final reply.
type Chatter interface {
	Chat(ctx context.Context, system string, messages []llm.Message) (string, error)
}

// Sources are the data providers. A nil source is treated as unavailable.
type Sources struct {
	Weather WeatherSource
	Events  EventSource
	Todos   TodoSource
}

// Answer is the result of Ask or Briefing.
type Answer struct {
	Intents model.IntentSet
	Range   temporal.TimeRange
	Text    string
	Context string
}

// Assistant wires detection, caching, transcoding and chat together.
type Assistant struct {
	cache      *cache.Cache
	detector   IntentDetector
	parser     *temporal.Parser
	transcoder *transcoder.Transcoder
	chat       Chatter
	logger     *slog.Logger
	now        func() time.Time
	sources    Sources
}

// Option configures an Assistant.
type Option func(*Assistant)

// WithParser replaces the default temporal parser.
func WithParser(p *temporal.Parser) Option {
	return func(a *Assistant) { a.parser = p }
}

// WithTranscoder replaces the default transcoder.
func WithTranscoder(t *transcoder.Transcoder) Option {
	return func(a *Assistant) { a.transcoder = t }
}

// WithLogger sets the assistant logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *Assistant) { a.logger = l }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(a *Assistant) { a.now = now }
}

var errNoChat = fmt.Errorf("%w: no chat model", common.ErrMissingConfig)

// New creates an assistant. chat may be nil when only Prepare, Gather and
// Snapshot are used.
func New(c *cache.Cache, detector IntentDetector, chat Chatter, sources Sources, opts ...Option) *Assistant {
	a := &Assistant{
		cache:    c,
		detector: detector,
		chat:     chat,
		sources:  sources,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = common.LoggerOrDefault(a.logger)
	if a.parser == nil {
		a.parser = temporal.NewParser(temporal.WithLogger(a.logger))
	}
	if a.transcoder == nil {
		a.transcoder = transcoder.New(transcoder.DefaultConfig(),
			transcoder.WithClock(a.now), transcoder.WithLogger(a.logger))
	}
	return a
}

// Prepare detects intents and the time range of message and renders the
// data they call for, without calling the chat model.
func (a *Assistant) Prepare(ctx context.Context, message string) Answer {
	now := a.now()
	intents := a.detector.Detect(ctx, message)

	tr, ok := a.parser.Parse(message, now)
	if !ok {
		tr = temporal.Today(now)
	}

	return Answer{Intents: intents, Range: tr, Context: a.Gather(ctx, intents, tr)}
}

// Ask answers message. Data is fetched only for the intents the message
// carries; a refresh intent bypasses fresh cache entries.
func (a *Assistant) Ask(ctx context.Context, message string) (Answer, error) {
	if a.chat == nil {
		return Answer{}, errNoChat
	}

	answer := a.Prepare(ctx, message)
	system := SystemPrompt(a.now(), answer.Context)

	text, err := a.chat.Chat(ctx, system, []llm.Message{{Role: llm.RoleUser, Content: message}})
	if err != nil {
		return Answer{}, fmt.Errorf("chat: %w", err)
	}

	a.logger.Info("answered message",
		"intents", answer.Intents.Names(),
		"range", answer.Range.String(),
		"context_bytes", len(answer.Context))

	answer.Text = text
	return answer, nil
}

// Briefing summarizes today's weather, events and tasks.
func (a *Assistant) Briefing(ctx context.Context) (Answer, error) {
	if a.chat == nil {
		return Answer{}, errNoChat
	}

	now := a.now()
	tr := temporal.Today(now)
	intents := model.NewIntentSet(model.IntentWeather, model.IntentEvents, model.IntentTodos)

	block := a.Gather(ctx, intents, tr)
	system := BriefingPrompt(now, block)

	text, err := a.chat.Chat(ctx, system, []llm.Message{{Role: llm.RoleUser, Content: briefingRequest}})
	if err != nil {
		return Answer{}, fmt.Errorf("briefing: %w", err)
	}
	return Answer{Text: text, Intents: intents, Range: tr, Context: block}, nil
}

// Gather fetches the data intents call for within tr and renders it. A
// refresh intent with no data intent refreshes everything. The general
// intent alone fetches nothing.
func (a *Assistant) Gather(ctx context.Context, intents model.IntentSet, tr temporal.TimeRange) string {
	force := intents.Has(model.IntentRefresh)
	wantWeather := intents.Has(model.IntentWeather)
	wantEvents := intents.Has(model.IntentEvents)
	wantTodos := intents.Has(model.IntentTodos)
	if force && !wantWeather && !wantEvents && !wantTodos {
		wantWeather, wantEvents, wantTodos = true, true, true
	}

	var (
		data                                 transcoder.Data
		eventsMissing, todosMissing, anyWant bool
	)

	g, gctx := errgroup.WithContext(ctx)

	if wantWeather {
		anyWant = true
		g.Go(func() error {
			data.Weather = a.weather(gctx, force)
			return nil
		})
	}
	if wantEvents {
		anyWant = true
		g.Go(func() error {
			data.Events, eventsMissing = a.events(gctx, tr, force)
			return nil
		})
	}
	if wantTodos {
		anyWant = true
		g.Go(func() error {
			data.Todos, todosMissing = a.todos(gctx, tr, force)
			return nil
		})
	}
	_ = g.Wait()

	if !anyWant {
		return ""
	}
	return a.render(data, tr, eventsMissing, todosMissing)
}

// Snapshot renders whatever fresh data the cache holds for today without
// any I/O.
func (a *Assistant) Snapshot() string {
	tr := temporal.Today(a.now())
	var data transcoder.Data

	if w, ok := cache.Lookup[*model.Weather](a.cache, cache.KeyWeather, false); ok {
		data.Weather = w
	}
	if all, ok := cache.Lookup[[]model.Event](a.cache, cache.WindowKey, false); ok {
		data.Events = filterEvents(all, tr)
	}
	if todos, ok := cache.Lookup[[]model.Todo](a.cache, todoKey(tr, a.now()), false); ok {
		data.Todos = nonNil(todos)
	}

	return a.transcoder.All(data, &tr)
}

func (a *Assistant) weather(ctx context.Context, force bool) *model.Weather {
	if a.sources.Weather == nil {
		return &model.Weather{}
	}
	w, ok := cache.Fetch(ctx, a.cache, cache.KeyWeather, a.sources.Weather.Forecast, force)
	if !ok || w == nil {
		return &model.Weather{}
	}
	return w
}

func (a *Assistant) events(ctx context.Context, tr temporal.TimeRange, force bool) ([]model.Event, bool) {
	if a.sources.Events == nil {
		return nil, true
	}
	events, ok := a.cache.GetEvents(ctx, tr.Start, tr.End, a.sources.Events.Events, force)
	if !ok {
		return nil, true
	}
	return nonNil(events), false
}

func (a *Assistant) todos(ctx context.Context, tr temporal.TimeRange, force bool) ([]model.Todo, bool) {
	if a.sources.Todos == nil {
		return nil, true
	}
	todos, ok := cache.Fetch(ctx, a.cache, todoKey(tr, a.now()), func(ctx context.Context) ([]model.Todo, error) {
		return a.sources.Todos.Tasks(ctx, tr.Start, tr.End)
	}, force)
	if !ok {
		return nil, true
	}
	return nonNil(todos), false
}

// render transcodes data and notes any source that could not be reached.
func (a *Assistant) render(data transcoder.Data, tr temporal.TimeRange, eventsMissing, todosMissing bool) string {
	text := a.transcoder.All(data, &tr)
	if text == transcoder.NoData {
		text = ""
	}

	var notes []string
	if eventsMissing {
		notes = append(notes, "Calendar data unavailable.")
	}
	if todosMissing {
		notes = append(notes, "Task data unavailable.")
	}
	for _, note := range notes {
		if text != "" {
			text += transcoder.SectionSeparator
		}
		text += note
	}
	return text
}

// todoKey caches today's tasks under the plain todos key and other ranges
// under a key naming their bounds.
func todoKey(tr temporal.TimeRange, now time.Time) string {
	if tr.IsSingleDay() && tr.Start.Equal(temporal.Day(now)) {
		return cache.KeyTodos
	}
	return fmt.Sprintf("%s:%s:%s", cache.KeyTodos, tr.StartDate(), tr.EndDate())
}

func filterEvents(all []model.Event, tr temporal.TimeRange) []model.Event {
	out := make([]model.Event, 0, len(all))
	for _, e := range all {
		if tr.Contains(e.Day()) {
			out = append(out, e)
		}
	}
	return out
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
