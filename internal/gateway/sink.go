package gateway

import (
	"context"

	"github.com/veleth/anima/internal/being"
	"github.com/veleth/anima/internal/memory"
)

// Sink turns notable outcomes into announcements. Only thoughts, insights
// and innovation concepts go out; raw research dumps stay internal.
type Sink struct {
	bc *Broadcaster
}

// NewSink wraps a broadcaster as a runner sink.
func NewSink(bc *Broadcaster) *Sink {
	return &Sink{bc: bc}
}

// Name implements being.Sink.
func (s *Sink) Name() string { return "gateway" }

// OnOutcome implements being.Sink.
func (s *Sink) OnOutcome(ctx context.Context, rec memory.Record, _ being.Result) error {
	if !rec.Success {
		return nil
	}
	ann, ok := announcementFor(rec)
	if !ok {
		return nil
	}
	s.bc.Announce(ctx, ann)
	return nil
}

func announcementFor(rec memory.Record) (Announcement, bool) {
	for _, c := range announceable {
		if body, ok := rec.Data[c.key].(string); ok && body != "" {
			return Announcement{
				Kind:  c.kind,
				Title: c.title,
				Body:  body,
				At:    rec.Timestamp,
			}, true
		}
	}
	return Announcement{}, false
}

var announceable = []struct {
	key   string
	kind  string
	title string
}{
	{"insights", "insight", "Emergent insights"},
	{"concept", "innovation", "Innovation concept"},
	{"thought", "thought", "A thought"},
}
