package common

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func fastRetry(attempts int) RetryOptions {
	return RetryOptions{MaxAttempts: attempts, InitialDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}
}

func TestWithRetry(t *testing.T) {
	tests := []struct {
		errs      []error
		wantIs    error
		name      string
		wantCalls int
	}{
		{name: "success first try", errs: []error{nil}, wantCalls: 1},
		{name: "success after failures", errs: []error{errBoom, errBoom, nil}, wantCalls: 3},
		{name: "exhausted", errs: []error{errBoom, errBoom, errBoom}, wantCalls: 3, wantIs: ErrMaxRetries},
		{
			name:      "non-retryable stops",
			errs:      []error{&RetryableError{Err: errBoom, Retryable: false}},
			wantCalls: 1,
			wantIs:    errBoom,
		},
		{
			name:      "rate limit retried",
			errs:      []error{StatusError("todoist", 429, "slow down"), nil},
			wantCalls: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := WithRetry(context.Background(), func() error {
				err := tt.errs[calls]
				calls++
				return err
			}, fastRetry(3))

			assert.Equal(t, tt.wantCalls, calls)
			if tt.wantIs == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantIs)
		})
	}
}

func TestWithRetryContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := WithRetry(ctx, func() error { return errBoom }, RetryOptions{MaxAttempts: 3, InitialDelay: time.Hour})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStatusError(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		retryable bool
		rateLimit bool
	}{
		{"rate limited", 429, true, true},
		{"server error", 503, true, false},
		{"client error", 400, false, false},
		{"not found", 404, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := StatusError("weather", tt.status, "body")
			assert.ErrorIs(t, err, ErrUnexpectedStatus)
			assert.Equal(t, tt.retryable, IsRetryable(err))
			assert.Equal(t, tt.rateLimit, errors.Is(err, ErrRateLimit))
			assert.Contains(t, err.Error(), "weather returned")
		})
	}
}

func TestUserError(t *testing.T) {
	err := NewUserError("configuration is invalid", errBoom)
	assert.Equal(t, "configuration is invalid: boom", err.Error())
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, "just this", NewUserError("just this", nil).Error())
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"", slog.LevelInfo, false},
		{"WARNING", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidConfig)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(&buf, slog.LevelInfo, "json")
	require.NoError(t, err)
	logger.Info("hello", Fields{"key": "value"}.Attrs()...)
	assert.Contains(t, buf.String(), `"key":"value"`)

	_, err = NewLogger(&buf, slog.LevelInfo, "xml")
	require.ErrorIs(t, err, ErrInvalidConfig)

	assert.Same(t, logger, LoggerOrDefault(logger))
	assert.NotNil(t, LoggerOrDefault(nil))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 5))
	assert.Equal(t, "ab...", Truncate("abcdef", 2))
	assert.Equal(t, "abcdef", Truncate("abcdef", 0))
}
