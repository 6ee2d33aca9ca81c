package pulse

import (
	"context"

	"github.com/veleth/anima/internal/being"
	"github.com/veleth/anima/internal/memory"
)

// Sink forwards activity outcomes to the event stream.
type Sink struct {
	bus *Bus
}

// NewSink wraps a bus as a runner sink.
func NewSink(bus *Bus) *Sink {
	return &Sink{bus: bus}
}

// Name implements being.Sink.
func (s *Sink) Name() string { return "pulse" }

// OnOutcome implements being.Sink.
func (s *Sink) OnOutcome(ctx context.Context, rec memory.Record, _ being.Result) error {
	return s.bus.Publish(ctx, Event{
		Type:      "outcome",
		Activity:  rec.ActivityType,
		Success:   rec.Success,
		Error:     rec.Error,
		Timestamp: rec.Timestamp,
	})
}
