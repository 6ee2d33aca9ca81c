package activity

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/veleth/anima/internal/being"
	"github.com/veleth/anima/internal/memory"
	"github.com/veleth/anima/internal/skill"
	"go.uber.org/zap"
)

const dailyThoughtName = "daily_thought"

const dailyThoughtSystem = `You are a curious and insightful AI that generates thought-provoking daily reflections inspired by cutting-edge research and emergent patterns. Your goal is to:
1. Push the boundaries of conventional thinking
2. Explore novel connections and possibilities
3. Question assumptions and paradigms
4. Inspire new ways of seeing familiar concepts

Keep responses concise (2-3 sentences) but make them intellectually stimulating and focused on unexplored territories and emerging patterns in science and technology.
If the reflection points toward a concrete research direction, add a separate final line "Next: <topic>" naming it.`

// DailyThought generates a short reflection. When emergent insights are
// waiting in memory the thought grows out of them; otherwise the being
// free-wheels. A reflection may close with a research direction, which
// seeds the research_topic slot for the next web research run.
type DailyThought struct {
	thinker Thinker
	logger  *zap.Logger
}

// NewDailyThought creates the reflection activity.
func NewDailyThought(thinker Thinker, logger *zap.Logger) *DailyThought {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DailyThought{thinker: thinker, logger: logger}
}

// Spec implements being.Activity.
func (a *DailyThought) Spec() being.Spec {
	return being.Spec{
		Name:           dailyThoughtName,
		EnergyCost:     0.4,
		Cooldown:       30 * time.Minute,
		RequiredSkills: []string{skill.Chat},
	}
}

// Execute implements being.Activity.
func (a *DailyThought) Execute(ctx context.Context, sc *being.Context) being.Result {
	insights, hasInsights := a.retrieveInsights(sc)

	prompt := `Generate a thought-provoking reflection that challenges conventional thinking and explores the frontiers of what's possible. Focus on emerging patterns and unexplored territories in science and technology.`
	inspiredBy := "exploration"
	if hasInsights {
		prompt = fmt.Sprintf(`Drawing inspiration from recent research insights:
%s

Generate a thought-provoking reflection that explores the unknowns and possibilities suggested by these patterns. Focus on novel angles and unexplored implications.`, clip(str(insights, "content"), 4000))
		inspiredBy = "emergent_insights"
	}

	comp, err := a.thinker.Think(ctx, prompt, dailyThoughtSystem, 100)
	if err != nil {
		return being.Fail("chat completion failed: %v", err)
	}
	thought, nextTopic := splitNextTopic(comp.Content)

	sc.Memory.Store(ctx, memory.SlotLatestThought, map[string]any{
		"content":              thought,
		"timestamp":            sc.Now.UTC().Format(time.RFC3339),
		"inspired_by":          inspiredBy,
		"has_research_context": hasInsights,
	})
	if nextTopic != "" {
		// An operator suggestion waiting in the slot wins over the
		// being's own curiosity.
		if _, taken := sc.Memory.Retrieve(memory.SlotResearchTopic); !taken {
			sc.Memory.Store(ctx, memory.SlotResearchTopic, nextTopic)
			a.logger.Debug("thought seeded next research topic",
				zap.String("topic", nextTopic))
		}
	}

	a.logger.Debug("thought generated", zap.String("inspired_by", inspiredBy))

	res := being.Succeed(map[string]any{
		"thought":              thought,
		"has_research_context": hasInsights,
	})
	res.Metadata = map[string]any{
		"model":         comp.Model,
		"finish_reason": comp.FinishReason,
		"inspired_by":   inspiredBy,
	}
	if nextTopic != "" {
		res.Metadata["next_topic"] = nextTopic
	}
	return res
}

// retrieveInsights reads the emergent insight slot, tolerating both live and
// journal-restored shapes.
func (a *DailyThought) retrieveInsights(sc *being.Context) (map[string]any, bool) {
	v, ok := sc.Memory.Retrieve(memory.SlotEmergentInsights)
	if !ok {
		return nil, false
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, false
	}
	return m, true
}

// splitNextTopic peels a trailing "Next: <topic>" line off a completion.
// The thought proper is returned without it.
func splitNextTopic(content string) (thought, topic string) {
	thought = strings.TrimSpace(content)
	i := strings.LastIndex(thought, "\n")
	if i < 0 {
		return thought, ""
	}
	last := strings.TrimSpace(thought[i+1:])
	const marker = "next:"
	if len(last) <= len(marker) || !strings.EqualFold(last[:len(marker)], marker) {
		return thought, ""
	}
	topic = strings.TrimSpace(last[len(marker):])
	if topic == "" {
		return thought, ""
	}
	return strings.TrimSpace(thought[:i]), topic
}
