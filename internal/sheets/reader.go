package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/Veraticus/nova/internal/common"
	"github.com/Veraticus/nova/internal/gauth"
	"github.com/Veraticus/nova/internal/model"
)

// Task sheet header names, matched case-insensitively.
const (
	ColumnContent  = "content"
	ColumnPriority = "priority"
	ColumnDue      = "due"
)

// Info describes a spreadsheet.
type Info struct {
	Title  string
	URL    string
	Sheets []string
}

// Reader reads rows and tasks from a spreadsheet.
type Reader struct {
	service *sheets.Service
	logger  *slog.Logger
	config  Config
}

// NewReader creates a new Google Sheets reader. Extra options are applied
// instead of the configured credentials.
func NewReader(ctx context.Context, config Config, logger *slog.Logger, opts ...option.ClientOption) (*Reader, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if len(opts) == 0 {
		auth, err := gauth.ClientOption(ctx, config.Auth, sheets.SpreadsheetsReadonlyScope)
		if err != nil {
			return nil, fmt.Errorf("failed to authenticate sheets client: %w", err)
		}
		opts = []option.ClientOption{auth}
	}

	service, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}

	return &Reader{
		config:  config,
		service: service,
		logger:  common.LoggerOrDefault(logger),
	}, nil
}

func (r *Reader) retryOptions() common.RetryOptions {
	return common.RetryOptions{
		Logger:       r.logger,
		Operation:    "sheets read",
		MaxAttempts:  r.config.RetryAttempts,
		InitialDelay: r.config.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}
}

// Values returns the configured range as strings.
func (r *Reader) Values(ctx context.Context) ([][]string, error) {
	var resp *sheets.ValueRange
	err := common.WithRetry(ctx, func() error {
		var callErr error
		resp, callErr = r.service.Spreadsheets.Values.Get(r.config.SpreadsheetID, r.config.Range).Context(ctx).Do()
		return r.classify(callErr)
	}, r.retryOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", r.config.Range, err)
	}

	values := make([][]string, 0, len(resp.Values))
	for _, row := range resp.Values {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = strings.TrimSpace(fmt.Sprint(cell))
		}
		values = append(values, cells)
	}

	r.logger.Info("read spreadsheet values",
		"spreadsheet_id", r.config.SpreadsheetID,
		"range", r.config.Range,
		"rows", len(values))
	return values, nil
}

// Rows returns data rows keyed by the header row. Short rows are padded
// with empty strings.
func (r *Reader) Rows(ctx context.Context) ([]map[string]string, error) {
	values, err := r.Values(ctx)
	if err != nil {
		return nil, err
	}
	return rowsToMaps(values), nil
}

// Info returns the spreadsheet title, sheet names and URL.
func (r *Reader) Info(ctx context.Context) (Info, error) {
	var resp *sheets.Spreadsheet
	err := common.WithRetry(ctx, func() error {
		var callErr error
		resp, callErr = r.service.Spreadsheets.Get(r.config.SpreadsheetID).
			Fields("properties.title", "sheets.properties.title", "spreadsheetUrl").
			Context(ctx).Do()
		return r.classify(callErr)
	}, r.retryOptions())
	if err != nil {
		return Info{}, fmt.Errorf("failed to get spreadsheet info: %w", err)
	}

	info := Info{Title: "Untitled", URL: resp.SpreadsheetUrl}
	if resp.Properties != nil && resp.Properties.Title != "" {
		info.Title = resp.Properties.Title
	}
	for _, s := range resp.Sheets {
		if s.Properties != nil {
			info.Sheets = append(info.Sheets, s.Properties.Title)
		}
	}
	return info, nil
}

// AllTasks returns every task row.
func (r *Reader) AllTasks(ctx context.Context) ([]model.Todo, error) {
	rows, err := r.Rows(ctx)
	if err != nil {
		return nil, err
	}
	return rowsToTodos(rows), nil
}

// Tasks returns task rows due between start and end inclusive.
func (r *Reader) Tasks(ctx context.Context, start, end time.Time) ([]model.Todo, error) {
	if start.After(end) {
		return nil, fmt.Errorf("%w: %s after %s", common.ErrInvalidDateRange,
			start.Format(time.DateOnly), end.Format(time.DateOnly))
	}

	all, err := r.AllTasks(ctx)
	if err != nil {
		return nil, err
	}

	from, to := start.Format(time.DateOnly), end.Format(time.DateOnly)
	var due []model.Todo
	for _, todo := range all {
		if d := todo.DueDate(); d != "" && d >= from && d <= to {
			due = append(due, todo)
		}
	}
	return due, nil
}

// classify marks Sheets API errors as retryable or not and maps 404 to
// ErrNotFound.
func (r *Reader) classify(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return &common.RetryableError{Err: err, Retryable: true}
	}

	if apiErr.Code == http.StatusNotFound {
		return &common.RetryableError{
			Err: fmt.Errorf("%w: spreadsheet %s (check the ID and sharing): %w",
				common.ErrNotFound, r.config.SpreadsheetID, err),
		}
	}
	return common.StatusError("sheets", apiErr.Code, apiErr.Message)
}

func rowsToMaps(values [][]string) []map[string]string {
	if len(values) < 2 {
		return nil
	}

	headers := values[0]
	rows := make([]map[string]string, 0, len(values)-1)
	for _, row := range values[1:] {
		m := make(map[string]string, len(headers))
		for i, h := range headers {
			if i < len(row) {
				m[h] = row[i]
			} else {
				m[h] = ""
			}
		}
		rows = append(rows, m)
	}
	return rows
}

func rowsToTodos(rows []map[string]string) []model.Todo {
	var todos []model.Todo
	for _, row := range rows {
		fields := make(map[string]string, len(row))
		for k, v := range row {
			fields[strings.ToLower(strings.TrimSpace(k))] = v
		}

		content := fields[ColumnContent]
		if content == "" {
			continue
		}

		todo := model.Todo{Content: content, Priority: parsePriority(fields[ColumnPriority])}
		if due := fields[ColumnDue]; due != "" {
			todo.Due = &model.Due{Date: normalizeDate(due), String: due}
		}
		todos = append(todos, todo)
	}
	return todos
}

// parsePriority accepts Todoist's 1-4 scale or the words none, low,
// medium and high.
func parsePriority(s string) int {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high", "urgent", "p1":
		return model.PriorityHigh
	case "medium", "p2":
		return model.PriorityMedium
	case "low", "p3":
		return model.PriorityLow
	}
	if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil && n >= model.PriorityNone && n <= model.PriorityHigh {
		return n
	}
	return model.PriorityNone
}

var dueLayouts = []string{time.DateOnly, "1/2/2006", "01/02/2006", "Jan 2, 2006", "January 2, 2006"}

// normalizeDate converts common spreadsheet date formats to YYYY-MM-DD.
// Unrecognized values are returned unchanged.
func normalizeDate(s string) string {
	for _, layout := range dueLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return d.Format(time.DateOnly)
		}
	}
	return s
}
