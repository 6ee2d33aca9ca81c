// Package skill hosts the being's capabilities: external clients wrapped in
// small skill types, plus the readiness registry the scheduler gates on.
package skill

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

// Capability names used in activity specs.
const (
	Chat            = "chat"
	WebSearch       = "web_search"
	ArxivSearch     = "arxiv_search"
	WebScraping     = "web_scraping"
	ImageGeneration = "image_generation"
)

// ErrNotConfigured marks a skill whose credentials or sources are missing.
var ErrNotConfigured = errors.New("skill not configured")

// Registry tracks which capabilities are ready. A skill becomes ready only
// after its initialization probe succeeds; until then every activity
// requiring it stays ineligible, and the being keeps running.
type Registry struct {
	mu     sync.RWMutex
	ready  map[string]bool
	order  []string
	logger *zap.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		ready:  make(map[string]bool),
		logger: logger,
	}
}

// Register declares a capability, initially not ready. Re-registering is a
// no-op.
func (r *Registry) Register(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.ready[name]; ok {
		return
	}
	r.ready[name] = false
	r.order = append(r.order, name)
}

// SetReady flips a capability's readiness. Unknown names are registered.
func (r *Registry) SetReady(name string, ready bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.ready[name]; !ok {
		r.order = append(r.order, name)
	}
	r.ready[name] = ready
}

// Ready reports whether a capability is ready. Satisfies being.SkillGate.
func (r *Registry) Ready(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.ready[name]
}

// Names returns all registered capability names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Snapshot returns a copy of the readiness table.
func (r *Registry) Snapshot() map[string]bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]bool, len(r.ready))
	for k, v := range r.ready {
		out[k] = v
	}
	return out
}

// Activate registers the capability and marks it ready when the probe
// succeeds. A failed probe leaves the skill registered but not ready.
func (r *Registry) Activate(ctx context.Context, name string, probe func(context.Context) error) bool {
	r.Register(name)
	if err := probe(ctx); err != nil {
		r.logger.Warn("skill unavailable",
			zap.String("skill", name),
			zap.Error(err))
		return false
	}
	r.SetReady(name, true)
	r.logger.Info("skill ready", zap.String("skill", name))
	return true
}
