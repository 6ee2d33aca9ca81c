package being

import (
	"sync"
	"time"

	"github.com/veleth/anima/internal/memory"
)

// Context carries the collaborators an activity may touch during one run.
// Memory is always non-nil; construction fails otherwise. Scratch data is
// partitioned by category so unrelated activities cannot collide.
type Context struct {
	Memory *memory.Log
	Now    time.Time

	mu   sync.Mutex
	data map[string]map[string]any
}

// NewContext builds a shared context for one activity run.
func NewContext(mem *memory.Log, now time.Time) (*Context, error) {
	if mem == nil {
		return nil, ErrNilMemory
	}
	return &Context{
		Memory: mem,
		Now:    now,
		data:   make(map[string]map[string]any),
	}, nil
}

// Put stores a scratch value under a category partition.
func (c *Context) Put(category, key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	part, ok := c.data[category]
	if !ok {
		part = make(map[string]any)
		c.data[category] = part
	}
	part[key] = value
}

// Get reads a scratch value from a category partition.
func (c *Context) Get(category, key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	part, ok := c.data[category]
	if !ok {
		return nil, false
	}
	v, ok := part[key]
	return v, ok
}

// Category returns a copy of one partition's contents.
func (c *Context) Category(name string) map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]any, len(c.data[name]))
	for k, v := range c.data[name] {
		out[k] = v
	}
	return out
}
