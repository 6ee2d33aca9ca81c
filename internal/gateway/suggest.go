package gateway

import (
	"context"
	"fmt"
	"strings"

	"github.com/veleth/anima/internal/memory"
	"go.uber.org/zap"
)

// Suggester turns "suggest <topic>" messages into the research topic
// slot, which the next web research run consumes.
type Suggester struct {
	mem    *memory.Log
	logger *zap.Logger
}

// NewSuggester creates the suggestion intake.
func NewSuggester(mem *memory.Log, logger *zap.Logger) *Suggester {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Suggester{mem: mem, logger: logger}
}

// Handle implements MessageHandler. Non-suggestion messages are ignored.
func (s *Suggester) Handle(msg *InboundMessage) string {
	topic, ok := ParseSuggestion(msg.Content)
	if !ok {
		return ""
	}
	s.mem.Store(context.Background(), memory.SlotResearchTopic, topic)
	s.logger.Info("research topic suggested",
		zap.String("topic", topic),
		zap.String("platform", msg.Platform),
		zap.String("user", msg.UserName))
	return fmt.Sprintf("Noted. I'll look into %q on my next research pass.", topic)
}

// ParseSuggestion extracts the topic from a suggestion command.
func ParseSuggestion(content string) (string, bool) {
	const cmd = "suggest"
	trimmed := strings.TrimSpace(content)
	if len(trimmed) <= len(cmd) || !strings.EqualFold(trimmed[:len(cmd)], cmd) {
		return "", false
	}
	rest := trimmed[len(cmd):]
	// Require a break after the keyword so "suggestion" does not match.
	if rest[0] != ' ' && rest[0] != '\t' {
		return "", false
	}
	topic := strings.TrimSpace(rest)
	if topic == "" {
		return "", false
	}
	return topic, true
}
