// Package todoist reads tasks from the Todoist REST API.
package todoist

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/Veraticus/nova/internal/common"
	"github.com/Veraticus/nova/internal/model"
)

// DefaultBaseURL is the Todoist REST v2 root.
const DefaultBaseURL = "https://api.todoist.com/rest/v2"

// Config holds API credentials.
type Config struct {
	APIToken   string        `mapstructure:"api_token"`
	BaseURL    string        `mapstructure:"base_url"`
	MaxRetries int           `mapstructure:"max_retries"`
	RetryDelay time.Duration `mapstructure:"retry_delay"`
}

// Client fetches active tasks.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	cfg        Config
}

type apiTask struct {
	ID          string `json:"id"`
	Content     string `json:"content"`
	Description string `json:"description"`
	Due         *struct {
		Date     string `json:"date"`
		String   string `json:"string"`
		Datetime string `json:"datetime"`
	} `json:"due"`
	Priority int `json:"priority"`
}

// NewClient creates a client. The token falls back to TODOIST_API_TOKEN.
func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.APIToken == "" {
		cfg.APIToken = os.Getenv("TODOIST_API_TOKEN")
	}
	if cfg.APIToken == "" {
		return nil, fmt.Errorf("%w: todoist API token is required", common.ErrMissingConfig)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}

	return &Client{
		cfg:        cfg,
		logger:     common.LoggerOrDefault(logger),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// Filter returns the Todoist filter query for tasks due between start and
// end inclusive.
func Filter(start, end time.Time) string {
	if !start.Before(end) {
		return "due: " + start.Format(time.DateOnly)
	}
	return fmt.Sprintf("due after: %s & due before: %s",
		start.AddDate(0, 0, -1).Format(time.DateOnly),
		end.AddDate(0, 0, 1).Format(time.DateOnly))
}

// Tasks returns active tasks due between start and end.
func (c *Client) Tasks(ctx context.Context, start, end time.Time) ([]model.Todo, error) {
	if start.After(end) {
		return nil, fmt.Errorf("%w: %s after %s", common.ErrInvalidDateRange,
			start.Format(time.DateOnly), end.Format(time.DateOnly))
	}
	return c.list(ctx, Filter(start, end))
}

// AllTasks returns every active task.
func (c *Client) AllTasks(ctx context.Context) ([]model.Todo, error) {
	return c.list(ctx, "")
}

func (c *Client) list(ctx context.Context, filter string) ([]model.Todo, error) {
	var tasks []apiTask
	err := common.WithRetry(ctx, func() error {
		var fetchErr error
		tasks, fetchErr = c.fetch(ctx, filter)
		return fetchErr
	}, common.RetryOptions{
		Logger:       c.logger,
		Operation:    "todoist tasks",
		MaxAttempts:  c.cfg.MaxRetries,
		InitialDelay: c.cfg.RetryDelay,
		MaxDelay:     10 * time.Second,
		Multiplier:   2.0,
	})
	if err != nil {
		return nil, fmt.Errorf("todoist tasks: %w", err)
	}

	todos := make([]model.Todo, 0, len(tasks))
	for _, t := range tasks {
		todos = append(todos, convertTask(t))
	}
	c.logger.Info("fetched tasks", "filter", filter, "count", len(todos))
	return todos, nil
}

func (c *Client) fetch(ctx context.Context, filter string) ([]apiTask, error) {
	endpoint := c.cfg.BaseURL + "/tasks"
	if filter != "" {
		endpoint += "?" + url.Values{"filter": {filter}}.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &common.RetryableError{Err: fmt.Errorf("request failed: %w", err), Retryable: true}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, common.StatusError("todoist", resp.StatusCode, string(body))
	}

	var tasks []apiTask
	if err := json.Unmarshal(body, &tasks); err != nil {
		return nil, &common.RetryableError{Err: fmt.Errorf("failed to parse response: %w", err)}
	}
	return tasks, nil
}

func convertTask(t apiTask) model.Todo {
	todo := model.Todo{
		ID:       t.ID,
		Content:  t.Content,
		Priority: t.Priority,
	}
	if todo.Priority < model.PriorityNone || todo.Priority > model.PriorityHigh {
		todo.Priority = model.PriorityNone
	}
	if t.Due != nil {
		date := t.Due.Date
		if date == "" && len(t.Due.Datetime) >= len(time.DateOnly) {
			date = t.Due.Datetime[:len(time.DateOnly)]
		}
		todo.Due = &model.Due{Date: date, String: t.Due.String}
	}
	return todo
}
