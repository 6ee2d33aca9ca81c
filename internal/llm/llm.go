// Package llm provides single-turn completion clients for the language
// models the being thinks with.
package llm

import (
	"context"
	"errors"
	"time"
)

// Request is a single-turn completion request. The being never holds a
// conversation; every thought is one prompt, optionally steered by a system
// instruction.
type Request struct {
	Prompt      string  `json:"prompt"`
	System      string  `json:"system,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
}

// Completion is a provider's answer to a request.
type Completion struct {
	Content      string `json:"content"`
	Model        string `json:"model"`
	FinishReason string `json:"finish_reason"`
	Usage        Usage  `json:"usage"`
}

// Usage tracks token consumption.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Provider is a completion backend.
type Provider interface {
	ID() string
	Name() string
	Complete(ctx context.Context, req Request) (*Completion, error)
	HealthCheck(ctx context.Context) error
}

// Config holds configuration for a provider instance.
type Config struct {
	ID       string
	Name     string
	Endpoint string
	APIKey   string
	Model    string
	Timeout  time.Duration
}

// ErrNoProviders is returned when a completion is requested with an empty
// failover chain.
var ErrNoProviders = errors.New("no completion providers configured")
