// Package gateway connects the being to chat platforms. Outcomes worth
// sharing are announced outward; inbound suggestion commands feed the
// research topic slot.
package gateway

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Announcement is one outward-facing piece of news.
type Announcement struct {
	Kind  string    `json:"kind"` // "thought", "insight", "innovation"
	Title string    `json:"title"`
	Body  string    `json:"body"`
	At    time.Time `json:"at"`
}

// InboundMessage is a normalized message from any platform.
type InboundMessage struct {
	Platform  string    `json:"platform"`
	ChannelID string    `json:"channel_id"`
	UserID    string    `json:"user_id"`
	UserName  string    `json:"user_name"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// MessageHandler processes inbound messages. A non-empty return value is
// sent back to the originating channel as an acknowledgement.
type MessageHandler func(msg *InboundMessage) string

// Adapter is one platform connection.
type Adapter interface {
	Name() string
	Start(ctx context.Context) error
	Announce(ctx context.Context, a Announcement) error
	OnMessage(h MessageHandler)
	Stop() error
}

// Broadcaster manages the adapters and fans announcements out to all of
// them.
type Broadcaster struct {
	adapters []Adapter
	history  []Announcement
	mu       sync.RWMutex
	logger   *zap.Logger
}

// NewBroadcaster creates an empty broadcaster.
func NewBroadcaster(logger *zap.Logger) *Broadcaster {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Broadcaster{logger: logger}
}

// Register adds an adapter and wires its inbound handler.
func (b *Broadcaster) Register(adapter Adapter, handler MessageHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	adapter.OnMessage(handler)
	b.adapters = append(b.adapters, adapter)
	b.logger.Info("registered gateway adapter", zap.String("platform", adapter.Name()))
}

// StartAll connects every adapter. A platform that fails to start is
// logged and skipped; the rest keep serving.
func (b *Broadcaster) StartAll(ctx context.Context) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, adapter := range b.adapters {
		if err := adapter.Start(ctx); err != nil {
			b.logger.Warn("gateway adapter failed to start",
				zap.String("platform", adapter.Name()), zap.Error(err))
			continue
		}
		b.logger.Info("gateway adapter started", zap.String("platform", adapter.Name()))
	}
}

// Announce fans one announcement out to every adapter. Per-platform
// failures are logged, never returned; the announcement still counts as
// sent.
func (b *Broadcaster) Announce(ctx context.Context, a Announcement) {
	if a.At.IsZero() {
		a.At = time.Now().UTC()
	}

	b.mu.Lock()
	b.history = append(b.history, a)
	if len(b.history) > 100 {
		b.history = b.history[len(b.history)-100:]
	}
	adapters := make([]Adapter, len(b.adapters))
	copy(adapters, b.adapters)
	b.mu.Unlock()

	for _, adapter := range adapters {
		if err := adapter.Announce(ctx, a); err != nil {
			b.logger.Warn("announcement failed",
				zap.String("platform", adapter.Name()),
				zap.String("kind", a.Kind),
				zap.Error(err))
		}
	}
}

// History returns the most recent announcements, oldest first.
func (b *Broadcaster) History(limit int) []Announcement {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if limit <= 0 || limit > len(b.history) {
		limit = len(b.history)
	}
	out := make([]Announcement, limit)
	copy(out, b.history[len(b.history)-limit:])
	return out
}

// Platforms returns the registered platform names.
func (b *Broadcaster) Platforms() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	names := make([]string, 0, len(b.adapters))
	for _, a := range b.adapters {
		names = append(names, a.Name())
	}
	return names
}

// Close stops every adapter.
func (b *Broadcaster) Close() {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, adapter := range b.adapters {
		if err := adapter.Stop(); err != nil {
			b.logger.Error("adapter close failed",
				zap.String("platform", adapter.Name()), zap.Error(err))
		}
	}
}
