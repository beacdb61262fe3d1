package calendar

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/Veraticus/nova/internal/common"
	"github.com/Veraticus/nova/internal/gauth"
	"github.com/Veraticus/nova/internal/model"
)

const (
	untitledEvent = "Untitled Event"
	maxParallel   = 4
)

// Config selects the calendars to read.
type Config struct {
	Auth        gauth.Config
	CalendarIDs []string
}

// Client reads events from every configured calendar.
type Client struct {
	service    *gcal.Service
	classifier *Classifier
	logger     *slog.Logger
	ids        []string
}

// NewClient authenticates with cfg.Auth and creates a client. Extra
// options are appended after authentication and may replace it.
func NewClient(ctx context.Context, cfg Config, classifier *Classifier, logger *slog.Logger, opts ...option.ClientOption) (*Client, error) {
	if len(cfg.CalendarIDs) == 0 {
		return nil, fmt.Errorf("%w: no calendars configured", common.ErrMissingConfig)
	}

	if len(opts) == 0 {
		auth, err := gauth.ClientOption(ctx, cfg.Auth, gcal.CalendarReadonlyScope)
		if err != nil {
			return nil, fmt.Errorf("failed to authenticate calendar client: %w", err)
		}
		opts = []option.ClientOption{auth}
	}

	service, err := gcal.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create calendar service: %w", err)
	}

	if classifier == nil {
		classifier = NewClassifier(nil, logger)
	}

	return &Client{
		service:    service,
		classifier: classifier,
		logger:     common.LoggerOrDefault(logger),
		ids:        cfg.CalendarIDs,
	}, nil
}

// Events returns events on the days start through end from all calendars,
// sorted by start. A calendar that fails is logged and skipped.
func (c *Client) Events(ctx context.Context, start, end time.Time) ([]model.Event, error) {
	if start.After(end) {
		return nil, fmt.Errorf("%w: %s after %s", common.ErrInvalidDateRange,
			start.Format(time.DateOnly), end.Format(time.DateOnly))
	}

	timeMin := start.Format(time.DateOnly) + "T00:00:00Z"
	timeMax := end.Format(time.DateOnly) + "T23:59:59Z"

	perCalendar := make([][]model.Event, len(c.ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallel)

	for i, id := range c.ids {
		g.Go(func() error {
			events, err := c.calendarEvents(gctx, id, timeMin, timeMax)
			if err != nil {
				c.logger.Warn("failed to fetch calendar", "calendar_id", id, "error", err)
				return nil
			}
			perCalendar[i] = events
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var all []model.Event
	for _, events := range perCalendar {
		all = append(all, events...)
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].Start < all[j].Start })

	c.logger.Info("fetched calendar events",
		"events", len(all),
		"calendars", len(c.ids),
		"start", start.Format(time.DateOnly),
		"end", end.Format(time.DateOnly))
	return all, nil
}

func (c *Client) calendarEvents(ctx context.Context, id, timeMin, timeMax string) ([]model.Event, error) {
	name := c.calendarName(ctx, id)
	typ := c.classifier.Classify(name)

	var events []model.Event
	call := c.service.Events.List(id).
		TimeMin(timeMin).
		TimeMax(timeMax).
		SingleEvents(true).
		OrderBy("startTime")

	err := call.Pages(ctx, func(page *gcal.Events) error {
		for _, item := range page.Items {
			events = append(events, convertEvent(item, name, typ))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list events for %s: %w", name, err)
	}

	c.logger.Debug("fetched calendar", "calendar", name, "type", typ, "events", len(events))
	return events, nil
}

// calendarName looks up the display name, falling back to the local part
// of the calendar ID.
func (c *Client) calendarName(ctx context.Context, id string) string {
	cal, err := c.service.Calendars.Get(id).Context(ctx).Do()
	if err == nil && cal.Summary != "" {
		return cal.Summary
	}
	if err != nil {
		c.logger.Debug("calendar name lookup failed", "calendar_id", id, "error", err)
	}
	name, _, _ := strings.Cut(id, "@")
	return name
}

func convertEvent(item *gcal.Event, calendar string, typ model.CalendarType) model.Event {
	summary := item.Summary
	if summary == "" {
		summary = untitledEvent
	}
	return model.Event{
		ID:           item.Id,
		Summary:      summary,
		Start:        eventTime(item.Start),
		End:          eventTime(item.End),
		Location:     item.Location,
		Description:  item.Description,
		Calendar:     calendar,
		CalendarType: typ,
	}
}

func eventTime(t *gcal.EventDateTime) string {
	if t == nil {
		return ""
	}
	if t.DateTime != "" {
		return t.DateTime
	}
	return t.Date
}
