package activity

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/veleth/anima/internal/memory"
	"go.uber.org/zap"
)

func TestDailyThoughtWithoutInsights(t *testing.T) {
	sc := newTestContext(t)
	thinker := &fakeThinker{replies: []string{"What if memory is a verb?"}}
	act := NewDailyThought(thinker, zap.NewNop())

	res := act.Execute(context.Background(), sc)
	if !res.Success {
		t.Fatalf("Execute failed: %s", res.Error)
	}
	if res.Data["thought"] != "What if memory is a verb?" {
		t.Errorf("thought = %v", res.Data["thought"])
	}
	if res.Data["has_research_context"] != false {
		t.Errorf("has_research_context = %v, want false", res.Data["has_research_context"])
	}
	if res.Metadata["inspired_by"] != "exploration" {
		t.Errorf("inspired_by = %v, want exploration", res.Metadata["inspired_by"])
	}
	if strings.Contains(thinker.prompts[0], "Drawing inspiration") {
		t.Error("generic path should not reference research insights")
	}
	if thinker.tokens[0] != 100 {
		t.Errorf("maxTokens = %d, want 100", thinker.tokens[0])
	}

	v, ok := sc.Memory.Retrieve(memory.SlotLatestThought)
	if !ok {
		t.Fatal("latest_thought slot not stored")
	}
	entry := v.(map[string]any)
	if entry["inspired_by"] != "exploration" {
		t.Errorf("stored inspired_by = %v", entry["inspired_by"])
	}
	if entry["has_research_context"] != false {
		t.Errorf("stored has_research_context = %v", entry["has_research_context"])
	}
	if _, ok := sc.Memory.Retrieve(memory.SlotResearchTopic); ok {
		t.Error("thought without a Next line must not seed a topic")
	}
}

func TestDailyThoughtDrawsOnInsights(t *testing.T) {
	sc := newTestContext(t)
	sc.Memory.Store(context.Background(), memory.SlotEmergentInsights, map[string]any{
		"content": "attention heads specialize early in training",
	})
	thinker := &fakeThinker{replies: []string{"Specialization may be inevitable."}}
	act := NewDailyThought(thinker, zap.NewNop())

	res := act.Execute(context.Background(), sc)
	if !res.Success {
		t.Fatalf("Execute failed: %s", res.Error)
	}
	if res.Data["has_research_context"] != true {
		t.Errorf("has_research_context = %v, want true", res.Data["has_research_context"])
	}
	if res.Metadata["inspired_by"] != "emergent_insights" {
		t.Errorf("inspired_by = %v, want emergent_insights", res.Metadata["inspired_by"])
	}
	if !strings.Contains(thinker.prompts[0], "attention heads specialize early in training") {
		t.Error("prompt should embed the insight content")
	}

	v, _ := sc.Memory.Retrieve(memory.SlotLatestThought)
	if entry := v.(map[string]any); entry["inspired_by"] != "emergent_insights" {
		t.Errorf("stored inspired_by = %v", entry["inspired_by"])
	}
}

func TestDailyThoughtSeedsNextTopic(t *testing.T) {
	sc := newTestContext(t)
	thinker := &fakeThinker{replies: []string{
		"Forgetting may be compression.\nNext: lossy memory in biological networks",
	}}
	act := NewDailyThought(thinker, zap.NewNop())

	res := act.Execute(context.Background(), sc)
	if !res.Success {
		t.Fatalf("Execute failed: %s", res.Error)
	}
	if res.Data["thought"] != "Forgetting may be compression." {
		t.Errorf("thought = %v, marker line should be stripped", res.Data["thought"])
	}
	if res.Metadata["next_topic"] != "lossy memory in biological networks" {
		t.Errorf("next_topic = %v", res.Metadata["next_topic"])
	}

	v, ok := sc.Memory.Retrieve(memory.SlotResearchTopic)
	if !ok || v != "lossy memory in biological networks" {
		t.Errorf("research_topic slot = %v (%v)", v, ok)
	}
}

func TestDailyThoughtKeepsOperatorSuggestion(t *testing.T) {
	sc := newTestContext(t)
	sc.Memory.Store(context.Background(), memory.SlotResearchTopic, "quantum error correction")
	thinker := &fakeThinker{replies: []string{"A thought.\nNext: something else"}}
	act := NewDailyThought(thinker, zap.NewNop())

	if res := act.Execute(context.Background(), sc); !res.Success {
		t.Fatalf("Execute failed: %s", res.Error)
	}
	if v, _ := sc.Memory.Retrieve(memory.SlotResearchTopic); v != "quantum error correction" {
		t.Errorf("suggestion clobbered: slot = %v", v)
	}
}

func TestSplitNextTopic(t *testing.T) {
	tests := []struct {
		in, thought, topic string
	}{
		{"Plain thought.", "Plain thought.", ""},
		{"Thought.\nNext: sparse attention", "Thought.", "sparse attention"},
		{"Thought.\nnext:   spaced out  ", "Thought.", "spaced out"},
		{"Thought.\nNext:", "Thought.\nNext:", ""},
		{"Next: lines in the middle\nstay put", "Next: lines in the middle\nstay put", ""},
	}
	for _, tt := range tests {
		thought, topic := splitNextTopic(tt.in)
		if thought != tt.thought || topic != tt.topic {
			t.Errorf("splitNextTopic(%q) = (%q, %q), want (%q, %q)",
				tt.in, thought, topic, tt.thought, tt.topic)
		}
	}
}

func TestDailyThoughtIgnoresMalformedInsights(t *testing.T) {
	sc := newTestContext(t)
	sc.Memory.Store(context.Background(), memory.SlotEmergentInsights, "just a string")
	thinker := &fakeThinker{}
	act := NewDailyThought(thinker, zap.NewNop())

	res := act.Execute(context.Background(), sc)
	if !res.Success {
		t.Fatalf("Execute failed: %s", res.Error)
	}
	if res.Metadata["inspired_by"] != "exploration" {
		t.Errorf("inspired_by = %v, want exploration", res.Metadata["inspired_by"])
	}
}

func TestDailyThoughtChatFailure(t *testing.T) {
	sc := newTestContext(t)
	act := NewDailyThought(&fakeThinker{err: errors.New("no providers")}, zap.NewNop())

	res := act.Execute(context.Background(), sc)
	if res.Success {
		t.Fatal("Execute should fail when chat fails")
	}
	if !strings.Contains(res.Error, "chat completion failed") {
		t.Errorf("error = %q", res.Error)
	}
	if _, ok := sc.Memory.Retrieve(memory.SlotLatestThought); ok {
		t.Error("failed run must not store a thought")
	}
}
