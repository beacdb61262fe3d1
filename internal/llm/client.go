package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/Veraticus/nova/internal/common"
)

// Role is the author of a chat message.
type Role string

// Chat roles.
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of a conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Request is a provider-neutral completion request.
type Request struct {
	System      string
	Messages    []Message
	Temperature float64
	MaxTokens   int
	// JSON asks the provider for a bare JSON object where supported.
	JSON bool
}

// Client defines the interface for LLM providers.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
	Provider() string
}

// Config configures a provider client and the Service wrapped around it.
type Config struct {
	Provider    string
	APIKey      string
	Model       string
	BaseURL     string
	MaxRetries  int
	RetryDelay  time.Duration
	RateLimit   int
	Temperature float64
	MaxTokens   int
}

// Validate checks a request before it is sent. System messages belong in
// Request.System.
func (r Request) Validate() error {
	if len(r.Messages) == 0 {
		return fmt.Errorf("%w: request has no messages", common.ErrInvalidConfig)
	}
	for i, m := range r.Messages {
		switch m.Role {
		case RoleUser, RoleAssistant:
		default:
			return fmt.Errorf("%w: message %d has role %q", common.ErrInvalidRole, i, m.Role)
		}
	}
	return nil
}

func (c Config) temperature() float64 {
	if c.Temperature == 0 {
		return 0.3
	}
	return c.Temperature
}

func (c Config) maxTokens() int {
	if c.MaxTokens == 0 {
		return 1024
	}
	return c.MaxTokens
}
