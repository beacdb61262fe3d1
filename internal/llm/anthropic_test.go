package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/nova/internal/common"
)

func TestNewAnthropicClient(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{name: "valid config", config: Config{APIKey: "test-key"}},
		{name: "missing API key", config: Config{}, wantErr: true},
		{
			name:   "custom model and settings",
			config: Config{APIKey: "test-key", Model: "claude-3-opus-20240229", Temperature: 0.5, MaxTokens: 200},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := newAnthropicClient(tt.config)
			if tt.wantErr {
				require.ErrorIs(t, err, common.ErrMissingConfig)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "anthropic", client.Provider())
		})
	}
}

func TestAnthropicClient_Complete(t *testing.T) {
	tests := []struct {
		name          string
		body          string
		statusCode    int
		want          string
		wantErr       bool
		wantRetryable bool
	}{
		{
			name:       "joins text blocks",
			statusCode: http.StatusOK,
			body:       `{"content":[{"type":"text","text":"It is "},{"type":"tool_use"},{"type":"text","text":"sunny."}]}`,
			want:       "It is sunny.",
		},
		{
			name:       "no content",
			statusCode: http.StatusOK,
			body:       `{"content":[]}`,
			wantErr:    true,
		},
		{
			name:          "server error is retryable",
			statusCode:    http.StatusInternalServerError,
			body:          `{"error":"overloaded"}`,
			wantErr:       true,
			wantRetryable: true,
		},
		{
			name:       "bad request is not retryable",
			statusCode: http.StatusBadRequest,
			body:       `{"error":"bad"}`,
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/v1/messages", r.URL.Path)
				assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
				assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))

				var req anthropicRequest
				assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
				assert.Equal(t, "You are Nova.", req.System)
				assert.Equal(t, []Message{{Role: RoleUser, Content: "weather?"}}, req.Messages)
				assert.Equal(t, 1024, req.MaxTokens)

				w.WriteHeader(tt.statusCode)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client, err := newAnthropicClient(Config{APIKey: "test-key", BaseURL: server.URL})
			require.NoError(t, err)

			got, err := client.Complete(context.Background(), Request{
				System:   "You are Nova.",
				Messages: []Message{{Role: RoleUser, Content: "weather?"}},
			})
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, tt.wantRetryable, common.IsRetryable(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAnthropicClient_RejectsUnknownRole(t *testing.T) {
	client, err := newAnthropicClient(Config{APIKey: "test-key", BaseURL: "http://127.0.0.1:0"})
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), Request{
		Messages: []Message{{Role: "narrator", Content: "hi"}},
	})
	require.ErrorIs(t, err, common.ErrInvalidRole)
}
