package skill

import (
	"context"
	"fmt"

	"github.com/veleth/anima/internal/llm"
	"go.uber.org/zap"
)

// Completer is the completion surface the chat skill rides on.
type Completer interface {
	Complete(ctx context.Context, req llm.Request) (*llm.Completion, error)
	HealthCheck(ctx context.Context) error
}

// ChatSkill gives activities language: prompts in, completions out.
type ChatSkill struct {
	completer Completer
	logger    *zap.Logger
}

// NewChatSkill wraps a completer, usually the llm failover chain.
func NewChatSkill(completer Completer, logger *zap.Logger) *ChatSkill {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatSkill{completer: completer, logger: logger}
}

// Initialize probes the completion backend.
func (s *ChatSkill) Initialize(ctx context.Context) error {
	if s.completer == nil {
		return fmt.Errorf("%w: no completion provider", ErrNotConfigured)
	}
	return s.completer.HealthCheck(ctx)
}

// Think sends a prompt and returns the completion.
func (s *ChatSkill) Think(ctx context.Context, prompt, system string, maxTokens int) (*llm.Completion, error) {
	if s.completer == nil {
		return nil, fmt.Errorf("%w: no completion provider", ErrNotConfigured)
	}
	comp, err := s.completer.Complete(ctx, llm.Request{
		Prompt:    prompt,
		System:    system,
		MaxTokens: maxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("completion: %w", err)
	}
	s.logger.Debug("chat completion",
		zap.String("model", comp.Model),
		zap.Int("tokens", comp.Usage.TotalTokens))
	return comp, nil
}
