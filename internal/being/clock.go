package being

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// TickListener receives clock ticks carrying the being's current time.
type TickListener interface {
	OnTick(now time.Time)
}

// Clock drives the being's pulse with a configurable tick interval and a
// time speed multiplier. With speed > 1 the being experiences accelerated
// time: cooldowns and energy regeneration elapse faster than wall time.
type Clock struct {
	speed     float64
	interval  time.Duration
	listeners []TickListener
	now       time.Time
	mu        sync.RWMutex
	cancel    context.CancelFunc
	logger    *zap.Logger
}

// NewClock creates a clock with the given tick interval and speed multiplier.
func NewClock(interval time.Duration, speed float64, logger *zap.Logger) *Clock {
	if interval <= 0 {
		interval = time.Minute
	}
	if speed <= 0 {
		speed = 1.0
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Clock{
		speed:    speed,
		interval: interval,
		now:      time.Now(),
		logger:   logger,
	}
}

// AddListener registers a tick listener.
func (c *Clock) AddListener(l TickListener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, l)
}

// Now returns the being's current time.
func (c *Clock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.now
}

// Start begins the tick loop in a background goroutine.
func (c *Clock) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	go c.run(ctx)
	c.logger.Info("clock started",
		zap.Duration("interval", c.interval),
		zap.Float64("speed", c.speed))
}

// Stop halts the tick loop.
func (c *Clock) Stop() {
	if c.cancel != nil {
		c.cancel()
		c.logger.Info("clock stopped")
	}
}

func (c *Clock) run(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.tick()
		}
	}
}

func (c *Clock) tick() {
	c.mu.Lock()
	c.now = c.now.Add(time.Duration(float64(c.interval) * c.speed))
	now := c.now
	listeners := make([]TickListener, len(c.listeners))
	copy(listeners, c.listeners)
	c.mu.Unlock()

	for _, l := range listeners {
		l.OnTick(now)
	}
}
