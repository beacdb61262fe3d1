// Package weather fetches forecasts from the Open-Meteo API.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/nova/internal/common"
	"github.com/Veraticus/nova/internal/model"
)

// DefaultBaseURL is the Open-Meteo forecast endpoint.
const DefaultBaseURL = "https://api.open-meteo.com/v1/forecast"

// Requested variables.
var (
	CurrentParams = []string{"temperature_2m", "precipitation"}
	DailyParams   = []string{"temperature_2m_max", "temperature_2m_min", "sunrise", "sunset", "precipitation_hours"}
)

// Config locates the forecast.
type Config struct {
	BaseURL         string        `mapstructure:"base_url"`
	Timezone        string        `mapstructure:"timezone"`
	TemperatureUnit string        `mapstructure:"temperature_unit"`
	Latitude        float64       `mapstructure:"latitude"`
	Longitude       float64       `mapstructure:"longitude"`
	ForecastDays    int           `mapstructure:"forecast_days"`
	MaxRetries      int           `mapstructure:"max_retries"`
	RetryDelay      time.Duration `mapstructure:"retry_delay"`
}

// DefaultConfig is Manhattan in Fahrenheit.
func DefaultConfig() Config {
	return Config{
		BaseURL:         DefaultBaseURL,
		Latitude:        40.784208,
		Longitude:       -73.980252,
		Timezone:        "America/New_York",
		TemperatureUnit: "fahrenheit",
		ForecastDays:    7,
		MaxRetries:      3,
		RetryDelay:      time.Second,
	}
}

// Validate checks coordinates and units.
func (c Config) Validate() error {
	if c.Latitude < -90 || c.Latitude > 90 {
		return fmt.Errorf("%w: latitude %v out of range", common.ErrInvalidConfig, c.Latitude)
	}
	if c.Longitude < -180 || c.Longitude > 180 {
		return fmt.Errorf("%w: longitude %v out of range", common.ErrInvalidConfig, c.Longitude)
	}
	switch c.TemperatureUnit {
	case "", "celsius", "fahrenheit":
	default:
		return fmt.Errorf("%w: temperature unit %q", common.ErrInvalidConfig, c.TemperatureUnit)
	}
	return nil
}

// Client queries Open-Meteo.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	cfg        Config
}

// NewClient validates cfg and creates a client.
func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 1
	}

	return &Client{
		cfg:        cfg,
		logger:     common.LoggerOrDefault(logger),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// URL returns the forecast request URL.
func (c *Client) URL() string {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(c.cfg.Latitude, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(c.cfg.Longitude, 'f', -1, 64))
	q.Set("current", strings.Join(CurrentParams, ","))
	q.Set("daily", strings.Join(DailyParams, ","))
	if c.cfg.TemperatureUnit != "" {
		q.Set("temperature_unit", c.cfg.TemperatureUnit)
	}
	if c.cfg.Timezone != "" {
		q.Set("timezone", c.cfg.Timezone)
	}
	if c.cfg.ForecastDays > 0 {
		q.Set("forecast_days", strconv.Itoa(c.cfg.ForecastDays))
	}
	return c.cfg.BaseURL + "?" + q.Encode()
}

// Forecast returns current conditions and the daily forecast.
func (c *Client) Forecast(ctx context.Context) (*model.Weather, error) {
	var weather *model.Weather
	err := common.WithRetry(ctx, func() error {
		var fetchErr error
		weather, fetchErr = c.fetch(ctx)
		return fetchErr
	}, common.RetryOptions{
		Logger:       c.logger,
		Operation:    "weather forecast",
		MaxAttempts:  c.cfg.MaxRetries,
		InitialDelay: c.cfg.RetryDelay,
		MaxDelay:     10 * time.Second,
		Multiplier:   2.0,
	})
	if err != nil {
		return nil, fmt.Errorf("weather forecast: %w", err)
	}

	days := 0
	if weather.Daily != nil {
		days = len(weather.Daily.Time)
	}
	c.logger.Info("fetched weather", "timezone", weather.Timezone, "days", days)
	return weather, nil
}

func (c *Client) fetch(ctx context.Context) (*model.Weather, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

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
		return nil, common.StatusError("open-meteo", resp.StatusCode, string(body))
	}

	var weather model.Weather
	if err := json.Unmarshal(body, &weather); err != nil {
		return nil, &common.RetryableError{Err: fmt.Errorf("failed to parse response: %w", err)}
	}
	return &weather, nil
}
