package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/nova/internal/common"
)

func TestOpenAIClient_Complete(t *testing.T) {
	var got openAIRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{\"weather\": 0.9}"}}]}`))
	}))
	defer server.Close()

	client, err := newOpenAIClient(Config{APIKey: "test-key", BaseURL: server.URL, Model: "gpt-test"})
	require.NoError(t, err)

	text, err := client.Complete(context.Background(), Request{
		System:      "classify",
		Messages:    []Message{{Role: RoleUser, Content: "rain?"}, {Role: RoleAssistant, Content: "no"}, {Role: RoleUser, Content: "sure?"}},
		Temperature: 0.1,
		JSON:        true,
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"weather": 0.9}`, text)

	assert.Equal(t, "gpt-test", got.Model)
	require.Len(t, got.Messages, 4)
	assert.Equal(t, Message{Role: RoleSystem, Content: "classify"}, got.Messages[0])
	assert.Equal(t, RoleAssistant, got.Messages[2].Role)
	assert.InDelta(t, 0.1, got.Temperature, 1e-9)
	require.NotNil(t, got.ResponseFormat)
	assert.Equal(t, "json_object", got.ResponseFormat.Type)
}

func TestOpenAIClient_Errors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantRate    bool
		wantRetried bool
	}{
		{name: "rate limited", status: http.StatusTooManyRequests, body: `{}`, wantRate: true, wantRetried: true},
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{}`},
		{name: "no choices", status: http.StatusOK, body: `{"choices":[]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client, err := newOpenAIClient(Config{APIKey: "test-key", BaseURL: server.URL})
			require.NoError(t, err)

			_, err = client.Complete(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "hi"}}})
			require.Error(t, err)
			assert.Equal(t, tt.wantRate, errors.Is(err, common.ErrRateLimit))
			assert.Equal(t, tt.wantRetried, common.IsRetryable(err))
		})
	}
}

func TestNewOpenAIClient_MissingKey(t *testing.T) {
	_, err := newOpenAIClient(Config{})
	require.ErrorIs(t, err, common.ErrMissingConfig)
}
