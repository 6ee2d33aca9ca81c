package llm

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Failover tries providers in registration order until one answers. The
// being keeps thinking as long as any configured provider is up.
type Failover struct {
	mu     sync.RWMutex
	chain  []Provider
	logger *zap.Logger
}

// NewFailover creates an empty failover chain.
func NewFailover(logger *zap.Logger) *Failover {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Failover{logger: logger}
}

// Add appends a provider to the chain.
func (f *Failover) Add(p Provider) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.chain = append(f.chain, p)
	f.logger.Info("registered provider",
		zap.String("id", p.ID()),
		zap.String("name", p.Name()))
}

// Providers returns the chain in order.
func (f *Failover) Providers() []Provider {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]Provider, len(f.chain))
	copy(out, f.chain)
	return out
}

// Complete routes the request through the chain.
func (f *Failover) Complete(ctx context.Context, req Request) (*Completion, error) {
	providers := f.Providers()
	if len(providers) == 0 {
		return nil, ErrNoProviders
	}

	var lastErr error
	for i, p := range providers {
		comp, err := p.Complete(ctx, req)
		if err == nil {
			return comp, nil
		}
		lastErr = err
		if i < len(providers)-1 {
			f.logger.Warn("provider failed, trying next",
				zap.String("provider", p.ID()),
				zap.Error(err))
		}
	}
	return nil, fmt.Errorf("all providers failed: %w", lastErr)
}

// HealthCheck succeeds when any provider in the chain is reachable.
func (f *Failover) HealthCheck(ctx context.Context) error {
	providers := f.Providers()
	if len(providers) == 0 {
		return ErrNoProviders
	}

	var lastErr error
	for _, p := range providers {
		err := p.HealthCheck(ctx)
		if err == nil {
			return nil
		}
		lastErr = err
	}
	return fmt.Errorf("no provider healthy: %w", lastErr)
}
