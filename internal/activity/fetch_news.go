package activity

import (
	"context"
	"time"

	"github.com/veleth/anima/internal/being"
	"github.com/veleth/anima/internal/memory"
	"github.com/veleth/anima/internal/skill"
	"go.uber.org/zap"
)

const fetchNewsName = "fetch_news"

// FetchNews scrapes the configured news sources for headlines and keeps
// the latest batch in memory.
type FetchNews struct {
	reader HeadlineReader
	logger *zap.Logger
}

// NewFetchNews creates the news fetching activity.
func NewFetchNews(reader HeadlineReader, logger *zap.Logger) *FetchNews {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FetchNews{reader: reader, logger: logger}
}

// Spec implements being.Activity.
func (a *FetchNews) Spec() being.Spec {
	return being.Spec{
		Name:           fetchNewsName,
		EnergyCost:     0.3,
		Cooldown:       30 * time.Minute,
		RequiredSkills: []string{skill.WebScraping},
	}
}

// Execute implements being.Activity.
func (a *FetchNews) Execute(ctx context.Context, sc *being.Context) being.Result {
	headlines, err := a.reader.Headlines(ctx)
	if err != nil {
		return being.Fail("scrape news sources: %v", err)
	}

	articles := make([]map[string]any, 0, len(headlines))
	sources := map[string]bool{}
	for _, h := range headlines {
		item := map[string]any{
			"source": h.Source,
			"title":  h.Title,
		}
		if h.URL != "" {
			item["url"] = h.URL
		}
		articles = append(articles, item)
		sources[h.Source] = true
	}

	sc.Memory.Store(ctx, memory.SlotLatestNews, articles)
	a.logger.Debug("headlines fetched", zap.Int("count", len(articles)))

	res := being.Succeed(map[string]any{
		"articles": articles,
		"count":    len(articles),
	})
	res.Metadata = map[string]any{
		"sources": len(sources),
	}
	return res
}
