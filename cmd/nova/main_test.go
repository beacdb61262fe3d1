package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const forecastJSON = `{
  "timezone": "UTC",
  "current_units": {"temperature_2m": "°F"},
  "current": {"time": "2025-12-09T08:00", "temperature_2m": 41.6, "precipitation": 0},
  "daily_units": {"temperature_2m_max": "°F", "temperature_2m_min": "°F"},
  "daily": {
    "time": ["2025-12-09"],
    "temperature_2m_max": [45.1],
    "temperature_2m_min": [30.2]
  }
}`

// writeConfig writes a config file pointing the database into a temp dir.
func writeConfig(t *testing.T, extra string) string {
	t.Helper()
	dir := t.TempDir()
	body := "database:\n  path: " + filepath.Join(dir, "nova.db") + "\n" +
		"todos:\n  source: none\n" + extra
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func runNova(t *testing.T, cfgPath, stdin string, args ...string) (string, error) {
	t.Helper()
	viper.Reset()
	cfgFile = ""

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--config", cfgPath, "--log-level", "error"}, args...))

	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := runNova(t, writeConfig(t, ""), "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "nova dev")
}

func TestWhenCommand(t *testing.T) {
	cfg := writeConfig(t, "")

	tests := []struct {
		name    string
		message string
		want    []string
	}{
		{"tomorrow", "what about tomorrow", []string{"2025-12-10"}},
		{"next n days", "anything in the next 3 days", []string{"2025-12-09", "2025-12-11", "3"}},
		{"no reference", "tell me a joke", []string{"No time reference found", "2025-12-09"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runNova(t, cfg, "", "when", tt.message, "--date", "2025-12-09")
			require.NoError(t, err)
			for _, want := range tt.want {
				assert.Contains(t, out, want)
			}
		})
	}

	_, err := runNova(t, cfg, "", "when", "tomorrow", "--date", "12/09/2025")
	assert.Error(t, err)
}

func TestIntentCommand(t *testing.T) {
	out, err := runNova(t, writeConfig(t, ""), "", "--metrics", "intent", "what's the weather forecast")
	require.NoError(t, err)

	assert.Contains(t, out, "0.90")
	assert.Contains(t, out, "path: regex")
	assert.Contains(t, out, "[weather]")
	assert.Contains(t, out, "nova_intent_detections_total")
}

func TestTranscodeCommand(t *testing.T) {
	cfg := writeConfig(t, "")
	payload := `{
  "events": [{"summary": "Standup", "start": "2025-12-09T10:00:00Z", "end": "2025-12-09T10:15:00Z"}],
  "todos": [{"content": "File taxes", "priority": 4}]
}`
	dataPath := filepath.Join(t.TempDir(), "data.json")
	require.NoError(t, os.WriteFile(dataPath, []byte(payload), 0o600))

	t.Run("file with range", func(t *testing.T) {
		out, err := runNova(t, cfg, "", "transcode", dataPath, "--start", "2025-12-09", "--description", "today")
		require.NoError(t, err)
		assert.Contains(t, out, "Standup")
		assert.Contains(t, out, "File taxes")
		assert.Contains(t, out, "Total: 1 task")
	})

	t.Run("stdin single section", func(t *testing.T) {
		out, err := runNova(t, cfg, payload, "transcode", "-", "--section", "todos")
		require.NoError(t, err)
		assert.Contains(t, out, "File taxes")
		assert.NotContains(t, out, "Standup")
	})

	t.Run("invalid input", func(t *testing.T) {
		_, err := runNova(t, cfg, payload, "transcode", "-", "--section", "mail")
		require.ErrorIs(t, err, errUsage)

		_, err = runNova(t, cfg, "{not json", "transcode", "-")
		require.Error(t, err)

		_, err = runNova(t, cfg, payload, "transcode", "-", "--start", "2025-12-10", "--end", "2025-12-09")
		require.ErrorIs(t, err, errUsage)
	})
}

func TestMigrateCommand(t *testing.T) {
	cfg := writeConfig(t, "")

	out, err := runNova(t, cfg, "", "migrate", "--status")
	require.NoError(t, err)
	assert.Contains(t, out, "Migrations pending")
	assert.Contains(t, out, "Create cache entries table")

	out, err = runNova(t, cfg, "", "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "schema version")

	out, err = runNova(t, cfg, "", "migrate", "--status")
	require.NoError(t, err)
	assert.NotContains(t, out, "Migrations pending")
}

func TestAskDryRunAndCacheCommands(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(forecastJSON))
	}))
	defer srv.Close()

	cfg := writeConfig(t, "weather:\n  base_url: "+srv.URL+"\n  retry_delay: 1ms\n")

	out, err := runNova(t, cfg, "", "cache", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Cache is empty.")

	out, err = runNova(t, cfg, "", "ask", "--dry-run", "what's the weather forecast")
	require.NoError(t, err)
	assert.Contains(t, out, "[weather]")
	assert.Contains(t, out, "CURRENT WEATHER:")
	assert.Equal(t, int32(1), calls.Load())

	// The entry survives the process through the database.
	out, err = runNova(t, cfg, "", "ask", "--dry-run", "is it cold outside")
	require.NoError(t, err)
	assert.Contains(t, out, "CURRENT WEATHER:")
	assert.Equal(t, int32(1), calls.Load())

	out, err = runNova(t, cfg, "", "cache", "status", "--snapshot")
	require.NoError(t, err)
	assert.Contains(t, out, "weather")
	assert.Contains(t, out, "fresh")
	assert.Contains(t, out, "1 entries")
	assert.Contains(t, out, "CURRENT WEATHER:")

	out, err = runNova(t, cfg, "", "cache", "invalidate", "weather", "events:window")
	require.NoError(t, err)
	assert.Contains(t, out, "Invalidated weather")
	assert.Contains(t, out, "No entry for events:window")

	out, err = runNova(t, cfg, "", "cache", "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "Cleared 0 entries")

	out, err = runNova(t, cfg, "", "cache", "prune")
	require.NoError(t, err)
	assert.Contains(t, out, "Pruned 0 entries")
}

func TestAskRequiresMessage(t *testing.T) {
	_, err := runNova(t, writeConfig(t, ""), "", "ask")
	assert.Error(t, err)
}
