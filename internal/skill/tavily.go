package skill

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// TavilyConfig holds Tavily API settings.
type TavilyConfig struct {
	APIKey   string
	Endpoint string
}

// SearchOptions tune a web search. Zero values fall back to the defaults
// the research activities expect: advanced depth, general topic, the last
// month, a 4000-token context budget.
type SearchOptions struct {
	Depth     string
	Topic     string
	TimeRange string
	MaxTokens int
}

// SearchContext is a search result compacted into prompt-ready text.
type SearchContext struct {
	Context    string         `json:"context"`
	UsedConfig map[string]any `json:"used_config"`
}

// TavilySkill searches the web through the Tavily API.
type TavilySkill struct {
	config TavilyConfig
	client *http.Client
	logger *zap.Logger
}

// NewTavilySkill creates the web search skill.
func NewTavilySkill(cfg TavilyConfig, logger *zap.Logger) *TavilySkill {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "https://api.tavily.com"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TavilySkill{
		config: cfg,
		client: &http.Client{Timeout: 30 * time.Second},
		logger: logger,
	}
}

// Initialize checks that an API key is present.
func (s *TavilySkill) Initialize(_ context.Context) error {
	if s.config.APIKey == "" {
		return fmt.Errorf("%w: tavily api key missing", ErrNotConfigured)
	}
	return nil
}

type tavilyRequest struct {
	APIKey      string `json:"api_key"`
	Query       string `json:"query"`
	SearchDepth string `json:"search_depth,omitempty"`
	Topic       string `json:"topic,omitempty"`
	TimeRange   string `json:"time_range,omitempty"`
	MaxResults  int    `json:"max_results,omitempty"`
}

type tavilyResponse struct {
	Query   string `json:"query"`
	Results []struct {
		Title   string  `json:"title"`
		URL     string  `json:"url"`
		Content string  `json:"content"`
		Score   float64 `json:"score"`
	} `json:"results"`
}

// Search runs one query and returns the compacted context.
func (s *TavilySkill) Search(ctx context.Context, query string, opts SearchOptions) (*SearchContext, error) {
	if s.config.APIKey == "" {
		return nil, fmt.Errorf("%w: tavily api key missing", ErrNotConfigured)
	}
	if opts.Depth == "" {
		opts.Depth = "advanced"
	}
	if opts.Topic == "" {
		opts.Topic = "general"
	}
	if opts.TimeRange == "" {
		opts.TimeRange = "month"
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 4000
	}

	body, err := json.Marshal(tavilyRequest{
		APIKey:      s.config.APIKey,
		Query:       query,
		SearchDepth: opts.Depth,
		Topic:       opts.Topic,
		TimeRange:   opts.TimeRange,
		MaxResults:  8,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.config.Endpoint+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API error %d: %s", resp.StatusCode, string(respBody))
	}

	var tr tavilyResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	s.logger.Debug("web search complete",
		zap.String("query", query),
		zap.Int("results", len(tr.Results)))

	return &SearchContext{
		Context: buildContext(tr, opts.MaxTokens),
		UsedConfig: map[string]any{
			"search_depth": opts.Depth,
			"topic":        opts.Topic,
			"time_range":   opts.TimeRange,
			"max_tokens":   opts.MaxTokens,
		},
	}, nil
}

// buildContext joins results into prompt text, clipped to roughly the given
// token budget (4 chars per token).
func buildContext(tr tavilyResponse, maxTokens int) string {
	var b strings.Builder
	for _, r := range tr.Results {
		fmt.Fprintf(&b, "### %s\n%s\n%s\n\n", r.Title, r.URL, r.Content)
	}
	text := b.String()
	budget := maxTokens * 4
	if len(text) > budget {
		text = text[:budget]
	}
	return text
}
