// Package recall gives the being semantic memory: salient text from
// activity outcomes is embedded and indexed in Qdrant, and can be
// searched by meaning rather than recency. Optional, like the journal.
package recall

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Hit is a single semantic search result.
type Hit struct {
	ID       string  `json:"id"`
	Score    float32 `json:"score"`
	Content  string  `json:"content"`
	Activity string  `json:"activity"`
}

// Index embeds text and stores it in a single Qdrant collection.
type Index struct {
	embedder   Embedder
	qdrant     *qdrantClient
	collection string
	logger     *zap.Logger
}

// NewIndex dials Qdrant and ensures the collection exists.
func NewIndex(qcfg QdrantConfig, ecfg EmbedConfig, logger *zap.Logger) (*Index, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	client, err := dialQdrant(qcfg)
	if err != nil {
		return nil, err
	}

	collection := qcfg.Collection
	if collection == "" {
		collection = "memories"
	}
	embedder := NewEmbedder(ecfg)

	dim := uint64(embedder.Dimension())
	if dim == 0 {
		dim = 1536
	}
	if err := client.ensureCollection(context.Background(), collection, dim); err != nil {
		client.close()
		return nil, err
	}

	logger.Info("Qdrant connected", zap.String("collection", collection))
	return &Index{
		embedder:   embedder,
		qdrant:     client,
		collection: collection,
		logger:     logger,
	}, nil
}

// Remember embeds content and upserts it under the given point ID.
func (ix *Index) Remember(ctx context.Context, id, content string, payload map[string]string) error {
	vectors, err := ix.embedder.Embed(ctx, []string{content})
	if err != nil {
		return fmt.Errorf("embed content: %w", err)
	}
	if len(vectors) == 0 {
		return fmt.Errorf("empty embedding result")
	}

	p := make(map[string]string, len(payload)+1)
	for k, v := range payload {
		p[k] = v
	}
	p["content"] = content

	return ix.qdrant.upsert(ctx, ix.collection, id, vectors[0], p)
}

// Search embeds the query and returns the topK nearest memories.
func (ix *Index) Search(ctx context.Context, query string, topK int) ([]Hit, error) {
	if topK <= 0 {
		topK = 5
	}
	vectors, err := ix.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vectors) == 0 {
		return nil, nil
	}
	return ix.qdrant.search(ctx, ix.collection, vectors[0], uint64(topK))
}

// Close tears down the Qdrant connection.
func (ix *Index) Close() error {
	return ix.qdrant.close()
}
