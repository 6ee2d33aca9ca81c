// Package memory holds the being's shared memory: an append-only history of
// activity outcomes plus overwrite key/value slots. Activities never call each
// other; everything one activity leaves for another passes through here.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Well-known slot keys the activities hand material through.
const (
	SlotLatestThought     = "latest_thought"
	SlotLatestResearch    = "latest_research"
	SlotLatestWebResearch = "latest_web_research"
	SlotEmergentInsights  = "emergent_insights"
	SlotLatestNews        = "latest_news"
	SlotLatestInnovation  = "latest_innovation"
	SlotResearchTopic     = "research_topic"
)

// Record is one activity outcome appended to the history.
type Record struct {
	ID           string         `json:"id"`
	ActivityType string         `json:"activity_type"`
	Timestamp    time.Time      `json:"timestamp"`
	Success      bool           `json:"success"`
	Data         map[string]any `json:"data,omitempty"`
	Error        string         `json:"error,omitempty"`
}

// Mirror receives a copy of every write for durable storage. Mirror errors
// never fail the in-memory write.
type Mirror interface {
	AppendRecord(ctx context.Context, rec Record) error
	SaveSlot(ctx context.Context, key string, value any) error
}

// Log is the in-process memory store. All methods are safe for concurrent use.
type Log struct {
	mu      sync.RWMutex
	records []Record
	slots   map[string]any
	mirror  Mirror
	logger  *zap.Logger
}

// NewLog creates an empty memory log.
func NewLog(logger *zap.Logger) *Log {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Log{
		slots:  make(map[string]any),
		logger: logger,
	}
}

// SetMirror attaches a durable mirror. Pass nil to detach.
func (l *Log) SetMirror(m Mirror) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.mirror = m
}

// Record appends an outcome to the history. It never rejects a record: a
// missing ID or timestamp is filled in. Returns the stored record.
func (l *Log) Record(ctx context.Context, rec Record) Record {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}

	l.mu.Lock()
	l.records = append(l.records, rec)
	mirror := l.mirror
	l.mu.Unlock()

	if mirror != nil {
		if err := mirror.AppendRecord(ctx, rec); err != nil {
			l.logger.Warn("journal append failed",
				zap.String("activity", rec.ActivityType),
				zap.Error(err))
		}
	}
	return rec
}

// Recent returns up to limit records, most recent first. The result is a
// copy; callers may not mutate stored records through it.
func (l *Log) Recent(limit int) []Record {
	l.mu.RLock()
	defer l.mu.RUnlock()

	n := len(l.records)
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]Record, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, l.records[i])
	}
	return out
}

// Len returns the number of recorded outcomes.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}

// Store writes a key/value slot, replacing any previous value.
func (l *Log) Store(ctx context.Context, key string, value any) {
	l.mu.Lock()
	l.slots[key] = value
	mirror := l.mirror
	l.mu.Unlock()

	if mirror != nil {
		if err := mirror.SaveSlot(ctx, key, value); err != nil {
			l.logger.Warn("journal slot save failed",
				zap.String("key", key),
				zap.Error(err))
		}
	}
}

// Retrieve reads a slot. The second return is false when the key was never
// stored.
func (l *Log) Retrieve(key string) (any, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	v, ok := l.slots[key]
	return v, ok
}

// Delete removes a slot, if present.
func (l *Log) Delete(ctx context.Context, key string) {
	l.mu.Lock()
	delete(l.slots, key)
	mirror := l.mirror
	l.mu.Unlock()

	if mirror != nil {
		if err := mirror.SaveSlot(ctx, key, nil); err != nil {
			l.logger.Warn("journal slot delete failed",
				zap.String("key", key),
				zap.Error(err))
		}
	}
}

// Slots returns a snapshot copy of all key/value slots.
func (l *Log) Slots() map[string]any {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make(map[string]any, len(l.slots))
	for k, v := range l.slots {
		out[k] = v
	}
	return out
}

// Restore seeds the log from durable storage at boot. Records must be in
// chronological order. Restore does not write back to the mirror.
func (l *Log) Restore(records []Record, slots map[string]any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, records...)
	for k, v := range slots {
		l.slots[k] = v
	}
}
