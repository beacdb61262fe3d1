// Package config provides configuration utilities for the application.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Veraticus/nova/internal/cache"
	"github.com/Veraticus/nova/internal/calendar"
	"github.com/Veraticus/nova/internal/common"
	"github.com/Veraticus/nova/internal/gauth"
	"github.com/Veraticus/nova/internal/intent"
	"github.com/Veraticus/nova/internal/llm"
	"github.com/Veraticus/nova/internal/sheets"
	"github.com/Veraticus/nova/internal/temporal"
	"github.com/Veraticus/nova/internal/todoist"
	"github.com/Veraticus/nova/internal/transcoder"
	"github.com/Veraticus/nova/internal/weather"
)

// Todo sources.
const (
	TodoSourceTodoist = "todoist"
	TodoSourceSheets  = "sheets"
	TodoSourceNone    = "none"
)

// Config is the assembled configuration of every component.
type Config struct {
	CacheTTLs         map[string]time.Duration
	LogLevel          string
	LogFormat         string
	DatabasePath      string
	TodoSource        string
	CalendarOverrides string
	LLM               llm.Config
	Sheets            sheets.Config
	Todoist           todoist.Config
	Calendar          calendar.Config
	Weather           weather.Config
	Intent            intent.Config
	Transcoder        transcoder.Config
	MaxDays           int
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("database.path", filepath.Join(DataDir(), "nova.db"))

	for key, ttl := range cache.DefaultTTLs {
		v.SetDefault("cache.ttl."+key, ttl)
	}

	ic := intent.DefaultConfig()
	v.SetDefault("intent.inclusion_threshold", ic.InclusionThreshold)
	v.SetDefault("intent.high_confidence", ic.HighConfidence)
	v.SetDefault("intent.single_match", ic.SingleMatch)
	v.SetDefault("intent.multi_match", ic.MultiMatch)
	v.SetDefault("intent.similarity_threshold", ic.SimilarityThreshold)
	v.SetDefault("intent.cache_size", ic.CacheSize)

	v.SetDefault("temporal.max_days", temporal.DefaultMaxDays)

	tc := transcoder.DefaultConfig()
	v.SetDefault("transcoder.use_emoji", tc.UseEmoji)
	v.SetDefault("transcoder.include_relative_dates", tc.IncludeRelativeDates)
	v.SetDefault("transcoder.time_format_24h", tc.TimeFormat24h)

	wc := weather.DefaultConfig()
	v.SetDefault("weather.base_url", wc.BaseURL)
	v.SetDefault("weather.latitude", wc.Latitude)
	v.SetDefault("weather.longitude", wc.Longitude)
	v.SetDefault("weather.timezone", wc.Timezone)
	v.SetDefault("weather.temperature_unit", wc.TemperatureUnit)
	v.SetDefault("weather.forecast_days", wc.ForecastDays)
	v.SetDefault("weather.max_retries", wc.MaxRetries)
	v.SetDefault("weather.retry_delay", wc.RetryDelay)

	v.SetDefault("todos.source", TodoSourceTodoist)
	v.SetDefault("sheets.range", sheets.DefaultConfig().Range)

	v.SetDefault("llm.provider", llm.ProviderGemini)
	v.SetDefault("llm.max_retries", 3)
	v.SetDefault("llm.retry_delay", time.Second)
}

// Load reads every component configuration from v.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		LogLevel:          v.GetString("logging.level"),
		LogFormat:         v.GetString("logging.format"),
		DatabasePath:      ExpandPath(v.GetString("database.path")),
		CacheTTLs:         make(map[string]time.Duration),
		MaxDays:           v.GetInt("temporal.max_days"),
		TodoSource:        strings.ToLower(v.GetString("todos.source")),
		CalendarOverrides: v.GetString("calendar.type_overrides"),
		Intent: intent.Config{
			InclusionThreshold:  v.GetFloat64("intent.inclusion_threshold"),
			HighConfidence:      v.GetFloat64("intent.high_confidence"),
			SingleMatch:         v.GetFloat64("intent.single_match"),
			MultiMatch:          v.GetFloat64("intent.multi_match"),
			SimilarityThreshold: v.GetFloat64("intent.similarity_threshold"),
			CacheSize:           v.GetInt("intent.cache_size"),
		},
		Transcoder: transcoder.Config{
			UseEmoji:             v.GetBool("transcoder.use_emoji"),
			IncludeRelativeDates: v.GetBool("transcoder.include_relative_dates"),
			TimeFormat24h:        v.GetBool("transcoder.time_format_24h"),
		},
		Weather: weather.Config{
			BaseURL:         v.GetString("weather.base_url"),
			Latitude:        v.GetFloat64("weather.latitude"),
			Longitude:       v.GetFloat64("weather.longitude"),
			Timezone:        v.GetString("weather.timezone"),
			TemperatureUnit: v.GetString("weather.temperature_unit"),
			ForecastDays:    v.GetInt("weather.forecast_days"),
			MaxRetries:      v.GetInt("weather.max_retries"),
			RetryDelay:      v.GetDuration("weather.retry_delay"),
		},
		Todoist: todoist.Config{
			APIToken: v.GetString("todoist.api_token"),
			BaseURL:  v.GetString("todoist.base_url"),
		},
		LLM: llm.Config{
			Provider:    strings.ToLower(v.GetString("llm.provider")),
			APIKey:      v.GetString("llm.api_key"),
			Model:       v.GetString("llm.model"),
			BaseURL:     v.GetString("llm.base_url"),
			MaxRetries:  v.GetInt("llm.max_retries"),
			RetryDelay:  v.GetDuration("llm.retry_delay"),
			RateLimit:   v.GetInt("llm.rate_limit"),
			Temperature: v.GetFloat64("llm.temperature"),
			MaxTokens:   v.GetInt("llm.max_tokens"),
		},
	}

	for key := range cache.DefaultTTLs {
		cfg.CacheTTLs[key] = v.GetDuration("cache.ttl." + key)
	}
	for key := range v.GetStringMap("cache.ttl") {
		cfg.CacheTTLs[key] = v.GetDuration("cache.ttl." + key)
	}

	google := loadGoogleAuth(v)
	cfg.Calendar = calendar.Config{Auth: google, CalendarIDs: stringList(v, "calendar.ids")}

	cfg.Sheets = sheets.DefaultConfig()
	cfg.Sheets.Auth = google
	cfg.Sheets.SpreadsheetID = v.GetString("sheets.spreadsheet_id")
	cfg.Sheets.Range = v.GetString("sheets.range")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field settings.
func (c *Config) Validate() error {
	switch c.TodoSource {
	case TodoSourceTodoist, TodoSourceSheets, TodoSourceNone:
	default:
		return fmt.Errorf("%w: todos.source %q (want todoist, sheets or none)", common.ErrInvalidConfig, c.TodoSource)
	}

	if c.MaxDays < 1 {
		return fmt.Errorf("%w: temporal.max_days must be positive", common.ErrInvalidConfig)
	}

	for key, ttl := range c.CacheTTLs {
		if ttl <= 0 {
			return fmt.Errorf("%w: cache.ttl.%s must be positive", common.ErrInvalidConfig, key)
		}
	}

	if c.Intent.InclusionThreshold < 0 || c.Intent.InclusionThreshold > 1 {
		return fmt.Errorf("%w: intent.inclusion_threshold must be within [0, 1]", common.ErrInvalidConfig)
	}

	return c.Weather.Validate()
}

// loadGoogleAuth reads google.* keys, falling back to GOOGLE_* variables
// and a saved token file.
func loadGoogleAuth(v *viper.Viper) gauth.Config {
	cfg := gauth.Config{
		ClientID:           v.GetString("google.client_id"),
		ClientSecret:       v.GetString("google.client_secret"),
		RefreshToken:       v.GetString("google.refresh_token"),
		ServiceAccountPath: ExpandPath(v.GetString("google.service_account_path")),
	}
	cfg.LoadFromEnv()
	cfg.ServiceAccountPath = ExpandPath(cfg.ServiceAccountPath)

	if cfg.RefreshToken == "" && cfg.ServiceAccountPath == "" {
		if token, err := gauth.RefreshToken(TokenPath(v)); err == nil {
			cfg.RefreshToken = token
		}
	}
	return cfg
}

// TokenPath is where the interactive Google flow saves its token.
func TokenPath(v *viper.Viper) string {
	if p := v.GetString("google.token_file"); p != "" {
		return ExpandPath(p)
	}
	return filepath.Join(ConfigDir(), "google_token.json")
}

// stringList accepts either a YAML list or a comma-separated string, which
// is how list values arrive from environment variables.
func stringList(v *viper.Viper, key string) []string {
	var out []string
	for _, item := range v.GetStringSlice(key) {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
