package skill

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// ScrapeSource names a site and the selector its headlines live under.
type ScrapeSource struct {
	Name     string
	URL      string
	Selector string
	Limit    int
}

// Headline is one scraped item.
type Headline struct {
	Source string `json:"source"`
	Title  string `json:"title"`
	URL    string `json:"url,omitempty"`
}

// ScraperSkill pulls headlines from configured news sources.
type ScraperSkill struct {
	sources []ScrapeSource
	client  *http.Client
	logger  *zap.Logger
}

// NewScraperSkill creates the scraping skill.
func NewScraperSkill(sources []ScrapeSource, logger *zap.Logger) *ScraperSkill {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScraperSkill{
		sources: sources,
		client:  &http.Client{Timeout: 30 * time.Second},
		logger:  logger,
	}
}

// Initialize checks that at least one source is configured.
func (s *ScraperSkill) Initialize(_ context.Context) error {
	if len(s.sources) == 0 {
		return fmt.Errorf("%w: no scrape sources", ErrNotConfigured)
	}
	return nil
}

// Headlines scrapes every source. Sources that fail are logged and skipped;
// an error is returned only when nothing could be read at all.
func (s *ScraperSkill) Headlines(ctx context.Context) ([]Headline, error) {
	var out []Headline
	var lastErr error
	for _, src := range s.sources {
		items, err := s.scrapeSource(ctx, src)
		if err != nil {
			lastErr = err
			s.logger.Warn("source unreachable",
				zap.String("source", src.Name),
				zap.Error(err))
			continue
		}
		out = append(out, items...)
	}
	if len(out) == 0 && lastErr != nil {
		return nil, fmt.Errorf("all sources failed: %w", lastErr)
	}
	return out, nil
}

func (s *ScraperSkill) scrapeSource(ctx context.Context, src ScrapeSource) ([]Headline, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("User-Agent", "anima/1.0 (autonomous research agent)")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", src.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", src.URL, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", src.URL, err)
	}

	limit := src.Limit
	if limit <= 0 {
		limit = 10
	}

	base, _ := url.Parse(src.URL)
	var items []Headline
	doc.Find(src.Selector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		title := strings.Join(strings.Fields(sel.Text()), " ")
		if title == "" {
			return true
		}
		h := Headline{Source: src.Name, Title: title}
		if href, ok := sel.Attr("href"); ok {
			h.URL = resolveURL(base, href)
		} else if href, ok := sel.Find("a").Attr("href"); ok {
			h.URL = resolveURL(base, href)
		}
		items = append(items, h)
		return len(items) < limit
	})
	return items, nil
}

func resolveURL(base *url.URL, href string) string {
	if base == nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
