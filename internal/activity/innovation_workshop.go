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

const innovationWorkshopName = "innovation_workshop"

const workshopSystem = `You are running an innovation workshop. Combine the provided research signals into one concrete invention concept: what it is, who it serves, and why it is feasible now. Keep it under four paragraphs.`

// InnovationWorkshop drafts an invention concept from fresh paper trends
// and any synthesized insights, then optionally renders a concept image.
type InnovationWorkshop struct {
	thinker     Thinker
	papers      PaperFinder
	illustrator Illustrator
	logger      *zap.Logger
}

// NewInnovationWorkshop creates the workshop activity. The illustrator is
// optional; without one the concept ships unillustrated.
func NewInnovationWorkshop(thinker Thinker, papers PaperFinder, illustrator Illustrator, logger *zap.Logger) *InnovationWorkshop {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InnovationWorkshop{
		thinker:     thinker,
		papers:      papers,
		illustrator: illustrator,
		logger:      logger,
	}
}

// Spec implements being.Activity.
func (a *InnovationWorkshop) Spec() being.Spec {
	return being.Spec{
		Name:           innovationWorkshopName,
		EnergyCost:     0.7,
		Cooldown:       2 * time.Hour,
		RequiredSkills: []string{skill.Chat, skill.ArxivSearch},
	}
}

// Execute implements being.Activity.
func (a *InnovationWorkshop) Execute(ctx context.Context, sc *being.Context) being.Result {
	papers, err := a.papers.Search(ctx, "emerging trends in AI innovation", 5, "")
	if err != nil {
		return being.Fail("fetch trend papers: %v", err)
	}

	comp, err := a.thinker.Think(ctx, a.buildPrompt(sc, papers), workshopSystem, 800)
	if err != nil {
		return being.Fail("chat completion failed: %v", err)
	}
	concept := comp.Content

	imageURL := a.illustrate(ctx, concept)

	entry := map[string]any{
		"concept":   concept,
		"timestamp": sc.Now.UTC().Format(time.RFC3339),
	}
	if imageURL != "" {
		entry["image_url"] = imageURL
	}
	sc.Memory.Store(ctx, memory.SlotLatestInnovation, entry)

	data := map[string]any{
		"concept": concept,
		"papers":  len(papers),
	}
	if imageURL != "" {
		data["image_url"] = imageURL
	}
	res := being.Succeed(data)
	res.Metadata = map[string]any{
		"model":         comp.Model,
		"finish_reason": comp.FinishReason,
	}
	return res
}

func (a *InnovationWorkshop) buildPrompt(sc *being.Context, papers []skill.Paper) string {
	var b strings.Builder
	b.WriteString("Generate creative ideas for an AI-assisted innovation workshop.\n\nCurrent paper trends:\n")
	for _, p := range papers {
		fmt.Fprintf(&b, "- %s\n", p.Title)
	}
	if v, ok := sc.Memory.Retrieve(memory.SlotEmergentInsights); ok {
		if m, ok := v.(map[string]any); ok {
			if content := str(m, "content"); content != "" {
				fmt.Fprintf(&b, "\nRecent insights:\n%s\n", clip(content, 2000))
			}
		}
	}
	b.WriteString("\nPropose one concrete invention concept building on these signals.")
	return b.String()
}

// illustrate renders a concept image when an illustrator is configured.
// Image trouble never sinks the workshop.
func (a *InnovationWorkshop) illustrate(ctx context.Context, concept string) string {
	if a.illustrator == nil {
		return ""
	}
	prompt := fmt.Sprintf("Visual representation of this invention concept: %s", clip(concept, 600))
	img, err := a.illustrator.Generate(ctx, prompt)
	if err != nil {
		a.logger.Warn("concept image generation failed", zap.Error(err))
		return ""
	}
	return img.URL
}
