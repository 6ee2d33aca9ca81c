// Package activity implements the being's behaviors. Activities never call
// each other; everything they exchange flows through the shared memory log,
// which is what turns independent behaviors into a research pipeline:
// fetch_research and web_research deposit material, emergent_research
// distills it into insights, daily_thought folds the insights into the
// being's reflections.
package activity

import (
	"context"

	"github.com/veleth/anima/internal/llm"
	"github.com/veleth/anima/internal/skill"
)

// Thinker is the chat completion surface activities use.
type Thinker interface {
	Think(ctx context.Context, prompt, system string, maxTokens int) (*llm.Completion, error)
}

// Searcher runs web searches.
type Searcher interface {
	Search(ctx context.Context, query string, opts skill.SearchOptions) (*skill.SearchContext, error)
}

// PaperFinder queries arXiv.
type PaperFinder interface {
	Search(ctx context.Context, query string, maxResults int, category string) ([]skill.Paper, error)
}

// HeadlineReader scrapes news headlines.
type HeadlineReader interface {
	Headlines(ctx context.Context) ([]skill.Headline, error)
}

// Illustrator renders concept images.
type Illustrator interface {
	Generate(ctx context.Context, prompt string) (*skill.ImageResult, error)
}

// clip bounds text destined for a prompt.
func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

// itemList normalizes a record data value into item maps. Values read from
// live memory keep their Go types; values restored from the journal come
// back JSON-shaped, so both forms appear here.
func itemList(v any) []map[string]any {
	switch items := v.(type) {
	case []map[string]any:
		return items
	case []any:
		out := make([]map[string]any, 0, len(items))
		for _, it := range items {
			if m, ok := it.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out
	default:
		return nil
	}
}

// str reads a string field from an item map.
func str(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

// stringList normalizes a list-of-strings value, live or journal-restored.
func stringList(v any) []string {
	switch vals := v.(type) {
	case []string:
		return vals
	case []any:
		out := make([]string, 0, len(vals))
		for _, it := range vals {
			if s, ok := it.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
