package gateway

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/veleth/anima/internal/being"
	"github.com/veleth/anima/internal/memory"
	"go.uber.org/zap"
)

type fakeAdapter struct {
	name     string
	startErr error
	annErr   error

	started  bool
	stopped  bool
	handler  MessageHandler
	received []Announcement
}

func (f *fakeAdapter) Name() string { return f.name }

func (f *fakeAdapter) OnMessage(h MessageHandler) { f.handler = h }

func (f *fakeAdapter) Start(_ context.Context) error {
	if f.startErr != nil {
		return f.startErr
	}
	f.started = true
	return nil
}

func (f *fakeAdapter) Announce(_ context.Context, a Announcement) error {
	if f.annErr != nil {
		return f.annErr
	}
	f.received = append(f.received, a)
	return nil
}

func (f *fakeAdapter) Stop() error {
	f.stopped = true
	return nil
}

func TestBroadcasterFanOut(t *testing.T) {
	bc := NewBroadcaster(zap.NewNop())
	a := &fakeAdapter{name: "slack"}
	b := &fakeAdapter{name: "discord", annErr: errors.New("channel gone")}
	bc.Register(a, nil)
	bc.Register(b, nil)

	bc.Announce(context.Background(), Announcement{Kind: "thought", Title: "T", Body: "b"})

	if len(a.received) != 1 {
		t.Fatalf("healthy adapter got %d announcements, want 1", len(a.received))
	}
	if a.received[0].At.IsZero() {
		t.Error("Announce should stamp At")
	}
	// The failing platform must not block history or the other platform.
	if h := bc.History(0); len(h) != 1 {
		t.Errorf("history = %d entries, want 1", len(h))
	}
}

func TestBroadcasterStartAllSkipsBroken(t *testing.T) {
	bc := NewBroadcaster(zap.NewNop())
	broken := &fakeAdapter{name: "discord", startErr: errors.New("bad token")}
	healthy := &fakeAdapter{name: "slack"}
	bc.Register(broken, nil)
	bc.Register(healthy, nil)

	bc.StartAll(context.Background())

	if !healthy.started {
		t.Error("healthy adapter should start even when another fails")
	}
	if broken.started {
		t.Error("broken adapter should not be marked started")
	}
}

func TestBroadcasterHistoryCap(t *testing.T) {
	bc := NewBroadcaster(zap.NewNop())
	for i := 0; i < 150; i++ {
		bc.Announce(context.Background(), Announcement{Kind: "thought", Body: "x"})
	}
	if h := bc.History(0); len(h) != 100 {
		t.Errorf("history = %d entries, want capped at 100", len(h))
	}
	if h := bc.History(5); len(h) != 5 {
		t.Errorf("History(5) = %d entries", len(h))
	}
}

func TestAnnouncementMapping(t *testing.T) {
	tests := []struct {
		name string
		data map[string]any
		kind string
		ok   bool
	}{
		{"thought", map[string]any{"thought": "hm"}, "thought", true},
		{"insight", map[string]any{"insights": "deep"}, "insight", true},
		{"innovation", map[string]any{"concept": "new"}, "innovation", true},
		{"insight beats thought", map[string]any{"thought": "hm", "insights": "deep"}, "insight", true},
		{"research dump stays internal", map[string]any{"papers": []any{}, "count": 3}, "", false},
		{"synthesis stays internal", map[string]any{"synthesis": "s", "topic": "t"}, "", false},
	}
	for _, tt := range tests {
		ann, ok := announcementFor(memory.Record{Success: true, Data: tt.data})
		if ok != tt.ok {
			t.Errorf("%s: ok = %v, want %v", tt.name, ok, tt.ok)
			continue
		}
		if ok && ann.Kind != tt.kind {
			t.Errorf("%s: kind = %q, want %q", tt.name, ann.Kind, tt.kind)
		}
	}
}

func TestSinkAnnouncesSuccessesOnly(t *testing.T) {
	bc := NewBroadcaster(zap.NewNop())
	ad := &fakeAdapter{name: "slack"}
	bc.Register(ad, nil)
	sink := NewSink(bc)

	rec := memory.Record{
		ActivityType: "daily_thought",
		Timestamp:    time.Now(),
		Success:      false,
		Data:         map[string]any{"thought": "quiet"},
	}
	if err := sink.OnOutcome(context.Background(), rec, being.Result{}); err != nil {
		t.Fatalf("OnOutcome: %v", err)
	}
	if len(ad.received) != 0 {
		t.Fatal("failures must not be announced")
	}

	rec.Success = true
	if err := sink.OnOutcome(context.Background(), rec, being.Result{}); err != nil {
		t.Fatalf("OnOutcome: %v", err)
	}
	if len(ad.received) != 1 || ad.received[0].Body != "quiet" {
		t.Fatalf("announced = %+v", ad.received)
	}
}

func TestParseSuggestion(t *testing.T) {
	tests := []struct {
		in    string
		topic string
		ok    bool
	}{
		{"suggest liquid neural networks", "liquid neural networks", true},
		{"Suggest RISC-V vector extensions", "RISC-V vector extensions", true},
		{"  suggest   spaced out topic  ", "spaced out topic", true},
		{"suggestion boxes", "", false},
		{"suggest", "", false},
		{"suggest   ", "", false},
		{"what should I suggest?", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		topic, ok := ParseSuggestion(tt.in)
		if ok != tt.ok || topic != tt.topic {
			t.Errorf("ParseSuggestion(%q) = (%q, %v), want (%q, %v)", tt.in, topic, ok, tt.topic, tt.ok)
		}
	}
}

func TestSuggesterWritesSlot(t *testing.T) {
	mem := memory.NewLog(zap.NewNop())
	s := NewSuggester(mem, zap.NewNop())

	reply := s.Handle(&InboundMessage{Platform: "slack", UserName: "ada", Content: "suggest analog computing"})
	if !strings.Contains(reply, "analog computing") {
		t.Errorf("reply = %q, want acknowledgement naming the topic", reply)
	}

	v, ok := mem.Retrieve(memory.SlotResearchTopic)
	if !ok || v != "analog computing" {
		t.Errorf("research_topic = %v, %v", v, ok)
	}

	if reply := s.Handle(&InboundMessage{Content: "hello there"}); reply != "" {
		t.Errorf("chatter should be ignored, got %q", reply)
	}
}
