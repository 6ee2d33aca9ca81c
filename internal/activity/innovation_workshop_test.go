package activity

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/veleth/anima/internal/memory"
	"github.com/veleth/anima/internal/skill"
	"go.uber.org/zap"
)

func TestInnovationWorkshopConcept(t *testing.T) {
	sc := newTestContext(t)
	papers := &fakePapers{papers: []skill.Paper{
		{Title: "Self-Improving Agents"},
		{Title: "Tool Use Benchmarks"},
	}}
	thinker := &fakeThinker{replies: []string{"A workbench for agent self-audits."}}
	act := NewInnovationWorkshop(thinker, papers, nil, zap.NewNop())

	res := act.Execute(context.Background(), sc)
	if !res.Success {
		t.Fatalf("Execute failed: %s", res.Error)
	}
	if res.Data["concept"] != "A workbench for agent self-audits." {
		t.Errorf("concept = %v", res.Data["concept"])
	}
	if res.Data["papers"] != 2 {
		t.Errorf("papers = %v, want 2", res.Data["papers"])
	}
	if _, ok := res.Data["image_url"]; ok {
		t.Error("no illustrator, no image_url")
	}
	if papers.queries[0] != "emerging trends in AI innovation" {
		t.Errorf("trend query = %q", papers.queries[0])
	}
	if !strings.Contains(thinker.prompts[0], "- Self-Improving Agents") {
		t.Error("prompt should list paper titles")
	}

	v, ok := sc.Memory.Retrieve(memory.SlotLatestInnovation)
	if !ok {
		t.Fatal("latest_innovation slot not stored")
	}
	entry := v.(map[string]any)
	if entry["concept"] != "A workbench for agent self-audits." {
		t.Errorf("stored concept = %v", entry["concept"])
	}
	if entry["timestamp"] != "2025-03-14T09:26:53Z" {
		t.Errorf("stored timestamp = %v", entry["timestamp"])
	}
}

func TestInnovationWorkshopRendersImage(t *testing.T) {
	sc := newTestContext(t)
	ill := &fakeIllustrator{url: "https://img.example/concept.png"}
	thinker := &fakeThinker{replies: []string{"A haptic knowledge graph."}}
	act := NewInnovationWorkshop(thinker, &fakePapers{}, ill, zap.NewNop())

	res := act.Execute(context.Background(), sc)
	if !res.Success {
		t.Fatalf("Execute failed: %s", res.Error)
	}
	if res.Data["image_url"] != "https://img.example/concept.png" {
		t.Errorf("image_url = %v", res.Data["image_url"])
	}
	if !strings.Contains(ill.prompts[0], "A haptic knowledge graph.") {
		t.Error("image prompt should carry the concept")
	}

	v, _ := sc.Memory.Retrieve(memory.SlotLatestInnovation)
	if entry := v.(map[string]any); entry["image_url"] != "https://img.example/concept.png" {
		t.Errorf("stored image_url = %v", entry["image_url"])
	}
}

func TestInnovationWorkshopToleratesImageFailure(t *testing.T) {
	sc := newTestContext(t)
	ill := &fakeIllustrator{err: errors.New("images api down")}
	act := NewInnovationWorkshop(&fakeThinker{}, &fakePapers{}, ill, zap.NewNop())

	res := act.Execute(context.Background(), sc)
	if !res.Success {
		t.Fatalf("image failure must not sink the workshop: %s", res.Error)
	}
	if _, ok := res.Data["image_url"]; ok {
		t.Error("failed render should omit image_url")
	}
}

func TestInnovationWorkshopDrawsOnInsights(t *testing.T) {
	sc := newTestContext(t)
	sc.Memory.Store(context.Background(), memory.SlotEmergentInsights, map[string]any{
		"content": "agents prefer composable tools",
	})
	thinker := &fakeThinker{}
	act := NewInnovationWorkshop(thinker, &fakePapers{}, nil, zap.NewNop())

	if res := act.Execute(context.Background(), sc); !res.Success {
		t.Fatalf("Execute failed: %s", res.Error)
	}
	if !strings.Contains(thinker.prompts[0], "agents prefer composable tools") {
		t.Error("prompt should embed stored insights")
	}
}

func TestInnovationWorkshopPaperFailure(t *testing.T) {
	sc := newTestContext(t)
	act := NewInnovationWorkshop(&fakeThinker{}, &fakePapers{err: errors.New("arxiv down")}, nil, zap.NewNop())

	res := act.Execute(context.Background(), sc)
	if res.Success {
		t.Fatal("Execute should fail when trend papers are unavailable")
	}
	if !strings.Contains(res.Error, "fetch trend papers") {
		t.Errorf("error = %q", res.Error)
	}
}
