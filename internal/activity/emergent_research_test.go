package activity

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/veleth/anima/internal/memory"
	"go.uber.org/zap"
)

func TestEmergentResearchNoMaterial(t *testing.T) {
	sc := newTestContext(t)
	act := NewEmergentResearch(&fakeThinker{}, zap.NewNop())

	res := act.Execute(context.Background(), sc)
	if res.Success {
		t.Fatal("Execute should fail on an empty log")
	}
	if res.Error != "No research data found in memory" {
		t.Errorf("error = %q, want %q", res.Error, "No research data found in memory")
	}
}

func TestEmergentResearchFromPapers(t *testing.T) {
	sc := newTestContext(t)
	sc.Memory.Record(context.Background(), memory.Record{
		ActivityType: "fetch_research",
		Success:      true,
		Data: map[string]any{
			"papers": []map[string]any{
				{"title": "Grokking Revisited", "summary": "Delayed generalization.", "categories": []string{"cs.LG"}},
				{"title": "Sparse Probes", "summary": "Interpretability at scale.", "categories": []string{"cs.AI", "cs.LG"}},
			},
		},
	})
	thinker := &fakeThinker{replies: []string{"Both papers point at phase transitions."}}
	act := NewEmergentResearch(thinker, zap.NewNop())

	res := act.Execute(context.Background(), sc)
	if !res.Success {
		t.Fatalf("Execute failed: %s", res.Error)
	}
	if res.Data["insights"] != "Both papers point at phase transitions." {
		t.Errorf("insights = %v", res.Data["insights"])
	}
	counts := res.Data["source_counts"].(map[string]any)
	if counts["research_data"] != 2 {
		t.Errorf("research_data = %v, want 2", counts["research_data"])
	}
	if thinker.tokens[0] != 1000 {
		t.Errorf("maxTokens = %d, want 1000", thinker.tokens[0])
	}

	prompt := thinker.prompts[0]
	if !strings.Contains(prompt, "Grokking Revisited") {
		t.Error("prompt should list paper titles")
	}
	if !strings.Contains(prompt, "Abstract: Delayed generalization.") {
		t.Error("prompt should carry abstracts")
	}
	if !strings.Contains(prompt, "Categories: cs.AI, cs.LG") {
		t.Error("prompt should carry categories")
	}

	v, ok := sc.Memory.Retrieve(memory.SlotEmergentInsights)
	if !ok {
		t.Fatal("emergent_insights slot not stored")
	}
	entry := v.(map[string]any)
	if entry["content"] != "Both papers point at phase transitions." {
		t.Errorf("stored content = %v", entry["content"])
	}
	if entry["sources"] != 2 {
		t.Errorf("stored sources = %v, want 2", entry["sources"])
	}
	if entry["timestamp"] != "2025-03-14T09:26:53Z" {
		t.Errorf("stored timestamp = %v", entry["timestamp"])
	}
}

func TestEmergentResearchFromWebFindings(t *testing.T) {
	sc := newTestContext(t)
	// Journal-restored records carry []any instead of []map[string]any.
	sc.Memory.Record(context.Background(), memory.Record{
		ActivityType: "web_research",
		Success:      true,
		Data: map[string]any{
			"findings": []any{
				map[string]any{"query": "fusion startups", "content": "Funding doubled."},
			},
		},
	})
	thinker := &fakeThinker{replies: []string{"Private fusion is heating up."}}
	act := NewEmergentResearch(thinker, zap.NewNop())

	res := act.Execute(context.Background(), sc)
	if !res.Success {
		t.Fatalf("Execute failed: %s", res.Error)
	}

	prompt := thinker.prompts[0]
	if !strings.Contains(prompt, "- Title: fusion startups") {
		t.Error("web findings should be titled by their query")
	}
	if !strings.Contains(prompt, "Content: Funding doubled.") {
		t.Error("prompt should carry finding content")
	}
}

func TestEmergentResearchSkipsFailedRecords(t *testing.T) {
	sc := newTestContext(t)
	sc.Memory.Record(context.Background(), memory.Record{
		ActivityType: "fetch_research",
		Success:      false,
		Data: map[string]any{
			"papers": []map[string]any{{"title": "Ghost Paper", "summary": "x"}},
		},
	})
	act := NewEmergentResearch(&fakeThinker{}, zap.NewNop())

	res := act.Execute(context.Background(), sc)
	if res.Success {
		t.Fatal("failed records must not count as material")
	}
	if res.Error != "No research data found in memory" {
		t.Errorf("error = %q", res.Error)
	}
}

func TestEmergentResearchIgnoresUnrelatedRecords(t *testing.T) {
	sc := newTestContext(t)
	sc.Memory.Record(context.Background(), memory.Record{
		ActivityType: "daily_thought",
		Success:      true,
		Data:         map[string]any{"thought": "hm"},
	})
	act := NewEmergentResearch(&fakeThinker{}, zap.NewNop())

	if res := act.Execute(context.Background(), sc); res.Success {
		t.Fatal("non-research records must not count as material")
	}
}

func TestEmergentResearchChatFailure(t *testing.T) {
	sc := newTestContext(t)
	sc.Memory.Record(context.Background(), memory.Record{
		ActivityType: "fetch_research",
		Success:      true,
		Data: map[string]any{
			"papers": []map[string]any{{"title": "T", "summary": "s"}},
		},
	})
	act := NewEmergentResearch(&fakeThinker{err: errors.New("no providers")}, zap.NewNop())

	res := act.Execute(context.Background(), sc)
	if res.Success {
		t.Fatal("Execute should fail when chat fails")
	}
	if !strings.Contains(res.Error, "chat completion failed") {
		t.Errorf("error = %q", res.Error)
	}
	if _, ok := sc.Memory.Retrieve(memory.SlotEmergentInsights); ok {
		t.Error("failed run must not store insights")
	}
}
