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

const webResearchName = "web_research"

const defaultResearchTopic = "latest developments in artificial intelligence"

const queryGenSystem = `You are a research assistant helping to break down a topic into specific search queries.
Generate up to 3 specific, focused search queries that will help gather comprehensive information about the topic.
Each query should target a different aspect of the topic.
Answer with one query per line and nothing else.`

const synthesisSystem = `You are a research assistant tasked with synthesizing information from multiple sources.
Create a comprehensive but concise summary of the key findings, ensuring to:
1. Highlight the most important points
2. Note any conflicting information
3. Identify areas that might need further research
Be factual and objective in your synthesis.`

// synthesisPlaceholder is stored when the synthesis call fails; the
// gathered findings are still worth keeping.
const synthesisPlaceholder = "Failed to synthesize research findings."

// WebResearch searches the web for a topic and synthesizes the findings.
// The topic comes from the research_topic slot when one has been
// suggested, otherwise a configured default.
type WebResearch struct {
	search       Searcher
	thinker      Thinker
	defaultTopic string
	logger       *zap.Logger
}

// NewWebResearch creates the web research activity.
func NewWebResearch(search Searcher, thinker Thinker, defaultTopic string, logger *zap.Logger) *WebResearch {
	if defaultTopic == "" {
		defaultTopic = defaultResearchTopic
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebResearch{
		search:       search,
		thinker:      thinker,
		defaultTopic: defaultTopic,
		logger:       logger,
	}
}

// Spec implements being.Activity.
func (a *WebResearch) Spec() being.Spec {
	return being.Spec{
		Name:           webResearchName,
		EnergyCost:     0.4,
		Cooldown:       45 * time.Minute,
		RequiredSkills: []string{skill.WebSearch, skill.Chat},
	}
}

// Execute implements being.Activity.
func (a *WebResearch) Execute(ctx context.Context, sc *being.Context) being.Result {
	topic, suggested := a.currentTopic(sc)
	a.logger.Info("starting web research", zap.String("topic", topic))

	queries := a.generateQueries(ctx, topic)

	var findings []map[string]any
	var contexts []string
	for _, q := range queries {
		res, err := a.search.Search(ctx, q, skill.SearchOptions{})
		if err != nil {
			a.logger.Warn("search failed", zap.String("query", q), zap.Error(err))
			continue
		}
		contexts = append(contexts, res.Context)
		findings = append(findings, map[string]any{"query": q, "content": res.Context})
	}
	if len(contexts) == 0 {
		return being.Fail("failed to gather any research data")
	}

	synthesis := a.synthesize(ctx, topic, contexts)

	sc.Memory.Store(ctx, memory.SlotLatestWebResearch, map[string]any{
		"topic":     topic,
		"queries":   queries,
		"synthesis": synthesis,
		"timestamp": sc.Now.UTC().Format(time.RFC3339),
	})
	if suggested {
		sc.Memory.Delete(ctx, memory.SlotResearchTopic)
	}

	res := being.Succeed(map[string]any{
		"topic":     topic,
		"findings":  findings,
		"synthesis": synthesis,
	})
	res.Metadata = map[string]any{
		"queries":  queries,
		"contexts": len(contexts),
	}
	return res
}

// currentTopic reads a suggested topic from memory, falling back to the
// default. The second return reports whether a suggestion was used.
func (a *WebResearch) currentTopic(sc *being.Context) (string, bool) {
	v, ok := sc.Memory.Retrieve(memory.SlotResearchTopic)
	if !ok {
		return a.defaultTopic, false
	}
	topic, ok := v.(string)
	if !ok || strings.TrimSpace(topic) == "" {
		return a.defaultTopic, false
	}
	return strings.TrimSpace(topic), true
}

// generateQueries asks the chat skill to split the topic into focused
// queries. On any failure the topic itself is the only query.
func (a *WebResearch) generateQueries(ctx context.Context, topic string) []string {
	prompt := fmt.Sprintf("Generate specific search queries to research this topic: %s", topic)
	comp, err := a.thinker.Think(ctx, prompt, queryGenSystem, 200)
	if err != nil {
		a.logger.Warn("query generation failed", zap.Error(err))
		return []string{topic}
	}
	queries := parseQueries(comp.Content)
	if len(queries) == 0 {
		return []string{topic}
	}
	return queries
}

func (a *WebResearch) synthesize(ctx context.Context, topic string, contexts []string) string {
	prompt := fmt.Sprintf("Synthesize the following research findings about '%s':\n\n%s",
		topic, strings.Join(contexts, "\n---\n"))
	comp, err := a.thinker.Think(ctx, prompt, synthesisSystem, 500)
	if err != nil {
		a.logger.Warn("synthesis failed", zap.Error(err))
		return synthesisPlaceholder
	}
	return comp.Content
}

// parseQueries extracts queries from a one-per-line completion, tolerating
// the bullets, numbering and quoting models add anyway.
func parseQueries(content string) []string {
	var out []string
	for _, line := range strings.Split(content, "\n") {
		q := cleanQueryLine(line)
		if q == "" {
			continue
		}
		out = append(out, q)
		if len(out) == 3 {
			break
		}
	}
	return out
}

func cleanQueryLine(line string) string {
	q := strings.TrimSpace(line)
	q = strings.Trim(q, "[]")
	q = strings.TrimLeft(q, "-*• \t")
	i := 0
	for i < len(q) && q[i] >= '0' && q[i] <= '9' {
		i++
	}
	if i > 0 && i < len(q) && (q[i] == '.' || q[i] == ')') {
		q = q[i+1:]
	}
	q = strings.TrimSpace(q)
	q = strings.Trim(q, `"',`)
	return strings.TrimSpace(q)
}
