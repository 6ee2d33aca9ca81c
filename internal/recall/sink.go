package recall

import (
	"context"
	"time"

	"github.com/veleth/anima/internal/being"
	"github.com/veleth/anima/internal/memory"
	"go.uber.org/zap"
)

// salientKeys are the outcome fields worth finding again, in priority
// order. Outcomes without any of them (raw paper or headline dumps) are
// not indexed.
var salientKeys = []string{"insights", "synthesis", "thought", "concept"}

// Sink indexes the salient text of successful outcomes.
type Sink struct {
	index  *Index
	logger *zap.Logger
}

// NewSink wraps an index as a runner sink.
func NewSink(index *Index, logger *zap.Logger) *Sink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sink{index: index, logger: logger}
}

// Name implements being.Sink.
func (s *Sink) Name() string { return "recall" }

// OnOutcome implements being.Sink.
func (s *Sink) OnOutcome(ctx context.Context, rec memory.Record, _ being.Result) error {
	if !rec.Success {
		return nil
	}
	content := salientText(rec.Data)
	if content == "" {
		return nil
	}
	s.logger.Debug("indexing outcome", zap.String("activity", rec.ActivityType))
	return s.index.Remember(ctx, rec.ID, content, map[string]string{
		"activity":    rec.ActivityType,
		"recorded_at": rec.Timestamp.UTC().Format(time.RFC3339),
	})
}

func salientText(data map[string]any) string {
	for _, key := range salientKeys {
		if s, ok := data[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
