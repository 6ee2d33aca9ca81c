package activity

import (
	"context"
	"time"

	"github.com/veleth/anima/internal/being"
	"github.com/veleth/anima/internal/memory"
	"github.com/veleth/anima/internal/skill"
	"go.uber.org/zap"
)

const fetchResearchName = "fetch_research"

// FetchResearch pulls fresh papers from arXiv across a fixed set of
// categories and leaves them in memory for the synthesis activities.
type FetchResearch struct {
	papers      PaperFinder
	categories  []string
	perCategory int
	query       string
	logger      *zap.Logger
}

// NewFetchResearch creates the paper fetching activity.
func NewFetchResearch(papers PaperFinder, logger *zap.Logger) *FetchResearch {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FetchResearch{
		papers:      papers,
		categories:  []string{"cs.AI", "cs.CL", "cs.LG"},
		perCategory: 5,
		query:       "artificial intelligence OR machine learning OR neural networks",
		logger:      logger,
	}
}

// Spec implements being.Activity.
func (a *FetchResearch) Spec() being.Spec {
	return being.Spec{
		Name:           fetchResearchName,
		EnergyCost:     0.3,
		Cooldown:       time.Hour,
		RequiredSkills: []string{skill.ArxivSearch},
	}
}

// Execute implements being.Activity.
func (a *FetchResearch) Execute(ctx context.Context, sc *being.Context) being.Result {
	var all []map[string]any
	for _, category := range a.categories {
		papers, err := a.papers.Search(ctx, a.query, a.perCategory, category)
		if err != nil {
			return being.Fail("fetch papers for %s: %v", category, err)
		}
		for _, p := range papers {
			all = append(all, paperItem(p))
		}
	}

	sc.Memory.Store(ctx, memory.SlotLatestResearch, all)
	a.logger.Debug("papers fetched", zap.Int("count", len(all)))

	res := being.Succeed(map[string]any{
		"papers": all,
		"count":  len(all),
	})
	res.Metadata = map[string]any{
		"categories":              a.categories,
		"max_papers_per_category": a.perCategory,
		"query":                   a.query,
	}
	return res
}

// paperItem flattens a paper for memory storage.
func paperItem(p skill.Paper) map[string]any {
	item := map[string]any{
		"title":      p.Title,
		"summary":    p.Summary,
		"authors":    p.Authors,
		"categories": p.Categories,
	}
	if !p.Published.IsZero() {
		item["published"] = p.Published.Format(time.RFC3339)
	}
	if len(p.Links) > 0 {
		item["url"] = p.Links[0]
	}
	if p.PDFURL != "" {
		item["pdf_url"] = p.PDFURL
	}
	if p.DOI != "" {
		item["doi"] = p.DOI
	}
	return item
}
