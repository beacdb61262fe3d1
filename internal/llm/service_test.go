package llm

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/nova/internal/common"
	"github.com/Veraticus/nova/internal/observability"
)

type flakyClient struct {
	errs  []error
	calls int
}

func (f *flakyClient) Provider() string { return "flaky" }

func (f *flakyClient) Complete(_ context.Context, _ Request) (string, error) {
	f.calls++
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		return "", err
	}
	return "ok", nil
}

func TestService_Generate(t *testing.T) {
	mock := &MockClient{Responses: []string{`{"weather": 0.9}`}}
	svc := NewService(mock, Config{}, nil, nil)

	text, err := svc.Generate(context.Background(), "classify this")
	require.NoError(t, err)
	assert.Equal(t, `{"weather": 0.9}`, text)

	require.Len(t, mock.Requests, 1)
	req := mock.Requests[0]
	assert.True(t, req.JSON)
	assert.Equal(t, []Message{{Role: RoleUser, Content: "classify this"}}, req.Messages)
	assert.Equal(t, "mock", svc.Provider())
}

func TestService_Chat(t *testing.T) {
	mock := &MockClient{Responses: []string{"Hello!"}}
	svc := NewService(mock, Config{}, nil, nil)

	text, err := svc.Chat(context.Background(), "system", []Message{{Role: RoleUser, Content: "hi"}})
	require.NoError(t, err)
	assert.Equal(t, "Hello!", text)
	assert.Equal(t, "system", mock.Requests[0].System)
	assert.False(t, mock.Requests[0].JSON)

	_, err = svc.Chat(context.Background(), "system", []Message{{Role: RoleSystem, Content: "nope"}})
	require.ErrorIs(t, err, common.ErrInvalidRole)
	assert.Equal(t, 1, mock.Calls())
}

func TestService_Retries(t *testing.T) {
	cfg := Config{MaxRetries: 3, RetryDelay: time.Millisecond}

	t.Run("retries transient errors", func(t *testing.T) {
		client := &flakyClient{errs: []error{
			common.StatusError("flaky", http.StatusBadGateway, "bad gateway"),
			common.StatusError("flaky", http.StatusServiceUnavailable, "unavailable"),
		}}
		svc := NewService(client, cfg, nil, nil)
		svc.retryOpts.MaxDelay = 5 * time.Millisecond

		text, err := svc.Generate(context.Background(), "p")
		require.NoError(t, err)
		assert.Equal(t, "ok", text)
		assert.Equal(t, 3, client.calls)
	})

	t.Run("stops on permanent errors", func(t *testing.T) {
		client := &flakyClient{errs: []error{common.StatusError("flaky", http.StatusUnauthorized, "no")}}
		svc := NewService(client, cfg, nil, nil)

		_, err := svc.Generate(context.Background(), "p")
		require.ErrorIs(t, err, common.ErrUnexpectedStatus)
		assert.Equal(t, 1, client.calls)
	})

	t.Run("gives up after max attempts", func(t *testing.T) {
		boom := errors.New("boom")
		client := &flakyClient{errs: []error{boom, boom, boom, boom}}
		svc := NewService(client, cfg, nil, nil)
		svc.retryOpts.MaxDelay = 5 * time.Millisecond

		_, err := svc.Generate(context.Background(), "p")
		require.ErrorIs(t, err, common.ErrMaxRetries)
		require.ErrorIs(t, err, boom)
		assert.Equal(t, 3, client.calls)
	})
}

func TestService_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	svc := NewService(&MockClient{Responses: []string{"ok"}}, Config{}, nil, metrics)
	_, err = svc.Chat(context.Background(), "", []Message{{Role: RoleUser, Content: "hi"}})
	require.NoError(t, err)

	count, err := testutil.GatherAndCount(reg, "nova_llm_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
