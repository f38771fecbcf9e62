// Package llm provides the chat-completion boundary to the language model.
package llm

import (
	"context"
	"time"

	"github.com/glemmtal/alpbot/internal/model"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gpt-4o-mini"

// DefaultTimeout bounds a single completion call. Expiry is treated as a
// retryable failure by the caller.
const DefaultTimeout = 60 * time.Second

// Request is a chat-style completion request.
type Request struct {
	Model            string
	Messages         []model.Turn
	Temperature      float64
	MaxTokens        int
	TopP             float64
	FrequencyPenalty float64
	PresencePenalty  float64
}

// Response is a single text completion plus the model that produced it.
type Response struct {
	Text  string
	Model string
}

// Client sends chat completions to a language model.
type Client interface {
	Complete(ctx context.Context, req Request) (*Response, error)
}

// Config holds connection settings for a provider client.
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}
