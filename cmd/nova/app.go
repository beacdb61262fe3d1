package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/nova/internal/assistant"
	"github.com/Veraticus/nova/internal/cache"
	"github.com/Veraticus/nova/internal/calendar"
	"github.com/Veraticus/nova/internal/cli"
	"github.com/Veraticus/nova/internal/common"
	"github.com/Veraticus/nova/internal/config"
	"github.com/Veraticus/nova/internal/intent"
	"github.com/Veraticus/nova/internal/llm"
	"github.com/Veraticus/nova/internal/observability"
	"github.com/Veraticus/nova/internal/sheets"
	"github.com/Veraticus/nova/internal/storage"
	"github.com/Veraticus/nova/internal/temporal"
	"github.com/Veraticus/nova/internal/todoist"
	"github.com/Veraticus/nova/internal/transcoder"
	"github.com/Veraticus/nova/internal/weather"
)

// registry collects the counters of one process run.
var registry = prometheus.NewRegistry()

// app holds the components built from configuration for one command.
type app struct {
	cfg        *config.Config
	logger     *slog.Logger
	store      *storage.SQLiteStorage
	cache      *cache.Cache
	metrics    *observability.Metrics
	llm        *llm.Service
	detector   *intent.Detector
	parser     *temporal.Parser
	transcoder *transcoder.Transcoder
	sources    assistant.Sources
}

// appOptions selects the parts of the app a command needs.
type appOptions struct {
	llm     bool
	store   bool
	sources bool
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, common.NewUserError("configuration is invalid", err)
	}
	return cfg, nil
}

func newApp(ctx context.Context, opts appOptions) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	metrics, err := observability.NewMetrics(registry)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:        cfg,
		logger:     slog.Default(),
		metrics:    metrics,
		parser:     temporal.NewParser(temporal.WithMaxDays(cfg.MaxDays)),
		transcoder: transcoder.New(cfg.Transcoder),
	}

	if opts.llm {
		client, clientErr := llm.NewClient(ctx, cfg.LLM)
		if clientErr != nil {
			return nil, common.NewUserError("language model is not configured", clientErr)
		}
		a.llm = llm.NewService(client, cfg.LLM, a.logger, metrics)
	}

	// A nil classifier keeps detection on the regex path.
	var classifier intent.Classifier
	if a.llm != nil {
		classifier = a.llm
	}
	a.detector, err = intent.NewDetector(classifier, cfg.Intent, intent.WithLogger(a.logger), intent.WithMetrics(metrics))
	if err != nil {
		return nil, err
	}

	cacheOpts := []cache.Option{
		cache.WithTTLs(cfg.CacheTTLs),
		cache.WithLogger(a.logger),
		cache.WithMetrics(metrics),
	}
	if opts.store {
		a.store, err = storage.Open(ctx, cfg.DatabasePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		cacheOpts = append(cacheOpts, cache.WithStore(a.store))
	}
	a.cache, err = cache.New(ctx, cacheOpts...)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	if opts.sources {
		a.sources = a.buildSources(ctx)
	}
	return a, nil
}

// buildSources creates every configured provider. A provider that cannot
// be built is logged and left nil, which the assistant treats as
// unavailable.
func (a *app) buildSources(ctx context.Context) assistant.Sources {
	var sources assistant.Sources

	if w, err := weather.NewClient(a.cfg.Weather, a.logger); err != nil {
		a.logger.Warn("weather disabled", "error", err)
	} else {
		sources.Weather = w
	}

	if len(a.cfg.Calendar.CalendarIDs) > 0 {
		classifier := calendar.NewClassifier(calendar.ParseOverrides(a.cfg.CalendarOverrides, a.logger), a.logger)
		if c, err := calendar.NewClient(ctx, a.cfg.Calendar, classifier, a.logger); err != nil {
			a.logger.Warn("calendar disabled", "error", err)
		} else {
			sources.Events = c
		}
	}

	switch a.cfg.TodoSource {
	case config.TodoSourceTodoist:
		if t, err := todoist.NewClient(a.cfg.Todoist, a.logger); err != nil {
			a.logger.Warn("todoist disabled", "error", err)
		} else {
			sources.Todos = t
		}
	case config.TodoSourceSheets:
		if r, err := sheets.NewReader(ctx, a.cfg.Sheets, a.logger); err != nil {
			a.logger.Warn("sheets disabled", "error", err)
		} else {
			sources.Todos = r
		}
	}

	return sources
}

func (a *app) assistant() *assistant.Assistant {
	var chat assistant.Chatter
	if a.llm != nil {
		chat = a.llm
	}
	return assistant.New(a.cache, a.detector, chat, a.sources,
		assistant.WithParser(a.parser),
		assistant.WithTranscoder(a.transcoder),
		assistant.WithLogger(a.logger),
	)
}

func (a *app) Close() error {
	if a.store == nil {
		return nil
	}
	return a.store.Close()
}

// withApp builds the app, runs fn and closes the app.
func withApp(cmd *cobra.Command, opts appOptions, fn func(*app) error) error {
	a, err := newApp(cmd.Context(), opts)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := a.Close(); closeErr != nil {
			slog.Warn("Failed to close database", "error", closeErr)
		}
	}()
	return fn(a)
}

// reportMetrics prints every non-zero counter when --metrics is set.
func reportMetrics(cmd *cobra.Command, _ []string) error {
	show, _ := cmd.Flags().GetBool("metrics")
	if !show {
		return nil
	}

	families, err := registry.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}

	var rows [][]string
	for _, family := range families {
		for _, m := range family.GetMetric() {
			value := m.GetCounter().GetValue()
			if value == 0 {
				continue
			}
			labels := make([]string, 0, len(m.GetLabel()))
			for _, l := range m.GetLabel() {
				labels = append(labels, l.GetName()+"="+l.GetValue())
			}
			rows = append(rows, []string{family.GetName(), strings.Join(labels, ","), fmt.Sprintf("%.0f", value)})
		}
	}
	if len(rows) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("No metrics recorded."))
		return nil
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i][0] < rows[j][0] })
	fmt.Fprintln(cmd.OutOrStdout(), cli.RenderTable([]string{"METRIC", "LABELS", "VALUE"}, rows))
	return nil
}

var errUsage = errors.New("invalid usage")
