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

const emergentResearchName = "emergent_research"

const emergentSystem = `You are an innovative AI researcher skilled at identifying patterns, connections, and novel insights across different research papers and web content. Your goal is to practice combinatory play - connecting seemingly unrelated ideas to generate new insights and hypotheses. Focus on:
1. Identifying common themes and patterns
2. Finding unexpected connections between different topics
3. Generating novel hypotheses and research directions
4. Highlighting potential breakthroughs or innovative applications

Be specific and concrete in your analysis while maintaining scientific rigor.`

// EmergentResearch combs recent memory for research material deposited by
// the fetch and web research activities and distills it into insights.
// The insights land in the emergent_insights slot, where the reflection
// activity picks them up.
type EmergentResearch struct {
	thinker Thinker
	logger  *zap.Logger
}

// NewEmergentResearch creates the insight synthesis activity.
func NewEmergentResearch(thinker Thinker, logger *zap.Logger) *EmergentResearch {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmergentResearch{thinker: thinker, logger: logger}
}

// Spec implements being.Activity.
func (a *EmergentResearch) Spec() being.Spec {
	return being.Spec{
		Name:           emergentResearchName,
		EnergyCost:     0.5,
		Cooldown:       2 * time.Hour,
		RequiredSkills: []string{skill.Chat},
	}
}

// Execute implements being.Activity.
func (a *EmergentResearch) Execute(ctx context.Context, sc *being.Context) being.Result {
	items := gatherResearch(sc.Memory.Recent(20))
	if len(items) == 0 {
		return being.Fail("No research data found in memory")
	}
	a.logger.Info("analyzing research material", zap.Int("items", len(items)))

	prompt := fmt.Sprintf(`Analyze the following research data and generate emergent insights:

Research Data:
%s

Please provide:
1. Key patterns and themes identified across sources
2. Novel connections between different topics
3. Potential breakthrough ideas or hypotheses
4. Suggested directions for future research`, buildResearchSummary(items))

	comp, err := a.thinker.Think(ctx, prompt, emergentSystem, 1000)
	if err != nil {
		return being.Fail("chat completion failed: %v", err)
	}

	sc.Memory.Store(ctx, memory.SlotEmergentInsights, map[string]any{
		"content":   comp.Content,
		"sources":   len(items),
		"timestamp": sc.Now.UTC().Format(time.RFC3339),
	})

	res := being.Succeed(map[string]any{
		"insights": comp.Content,
		"source_counts": map[string]any{
			"research_data": len(items),
		},
	})
	res.Metadata = map[string]any{
		"model":         comp.Model,
		"finish_reason": comp.FinishReason,
	}
	return res
}

// gatherResearch extracts paper and finding items from successful
// research records, most recent first.
func gatherResearch(records []memory.Record) []map[string]any {
	var items []map[string]any
	for _, rec := range records {
		if !rec.Success {
			continue
		}
		switch rec.ActivityType {
		case fetchResearchName:
			items = append(items, itemList(rec.Data["papers"])...)
		case webResearchName:
			items = append(items, itemList(rec.Data["findings"])...)
		}
	}
	return items
}

// buildResearchSummary formats items for the analysis prompt. Papers carry
// a summary field; web findings carry the query they answered.
func buildResearchSummary(items []map[string]any) string {
	var b strings.Builder
	for _, item := range items {
		title := str(item, "title")
		if title == "" {
			title = str(item, "query")
		}
		fmt.Fprintf(&b, "- Title: %s\n", title)
		if _, ok := item["summary"]; ok {
			fmt.Fprintf(&b, "  Abstract: %s\n", clip(str(item, "summary"), 1000))
			fmt.Fprintf(&b, "  Categories: %s\n\n", strings.Join(stringList(item["categories"]), ", "))
			continue
		}
		fmt.Fprintf(&b, "  Content: %s\n", clip(str(item, "content"), 2000))
		if url := str(item, "url"); url != "" {
			fmt.Fprintf(&b, "  URL: %s\n", url)
		}
		b.WriteString("\n")
	}
	return b.String()
}
