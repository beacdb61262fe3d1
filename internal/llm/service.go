package llm

import (
	"context"
	"log/slog"
	"time"

	"github.com/Veraticus/nova/internal/common"
	"github.com/Veraticus/nova/internal/observability"
)

// Service wraps a Client with rate limiting, retries and metrics. It is the
// entry point the rest of the assistant uses.
type Service struct {
	client      Client
	logger      *slog.Logger
	metrics     *observability.Metrics
	rateLimiter *rateLimiter
	retryOpts   common.RetryOptions
}

// NewService wraps client. Zero values in cfg select the defaults: three
// attempts starting at one second, 60 requests per minute.
func NewService(client Client, cfg Config, logger *slog.Logger, metrics *observability.Metrics) *Service {
	retryOpts := common.RetryOptions{
		Logger:       common.LoggerOrDefault(logger),
		Operation:    "llm completion",
		MaxAttempts:  cfg.MaxRetries,
		InitialDelay: cfg.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}
	if retryOpts.MaxAttempts == 0 {
		retryOpts.MaxAttempts = 3
	}
	if retryOpts.InitialDelay == 0 {
		retryOpts.InitialDelay = time.Second
	}
	if retryOpts.MaxDelay < retryOpts.InitialDelay {
		retryOpts.MaxDelay = retryOpts.InitialDelay
	}

	return &Service{
		client:      client,
		logger:      common.LoggerOrDefault(logger),
		metrics:     metrics,
		retryOpts:   retryOpts,
		rateLimiter: newRateLimiter(cfg.RateLimit),
	}
}

// Provider names the underlying client.
func (s *Service) Provider() string {
	return s.client.Provider()
}

// Generate sends a single user prompt and asks for a JSON reply. It is used
// for classification.
func (s *Service) Generate(ctx context.Context, prompt string) (string, error) {
	return s.complete(ctx, "generate", Request{
		Messages:    []Message{{Role: RoleUser, Content: prompt}},
		Temperature: 0.1,
		JSON:        true,
	})
}

// Chat sends a conversation with a system prompt and returns the reply.
func (s *Service) Chat(ctx context.Context, system string, messages []Message) (string, error) {
	return s.complete(ctx, "chat", Request{System: system, Messages: messages})
}

func (s *Service) complete(ctx context.Context, operation string, req Request) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}

	var text string
	err := common.WithRetry(ctx, func() error {
		if err := s.rateLimiter.wait(ctx); err != nil {
			return &common.RetryableError{Err: err, Retryable: false}
		}

		var callErr error
		text, callErr = s.client.Complete(ctx, req)
		return callErr
	}, s.retryOpts)

	s.metrics.LLMRequest(s.client.Provider(), operation, err)
	if err != nil {
		s.logger.Error("LLM request failed",
			"provider", s.client.Provider(),
			"operation", operation,
			"error", err)
		return "", err
	}

	s.logger.Debug("LLM request completed",
		"provider", s.client.Provider(),
		"operation", operation,
		"response", common.Truncate(text, 120))
	return text, nil
}
