// Package being contains the admission-controlled cycle loop that drives the
// digital being: energy metabolism, cooldowns, skill gating, activity
// selection, and fault-isolated execution.
package being

import (
	"context"
	"fmt"
	"time"
)

// Spec is the static declaration of an activity: what it costs, how often it
// may run, and which skills must be ready before it is considered.
type Spec struct {
	Name           string        `json:"name"`
	EnergyCost     float64       `json:"energy_cost"`
	Cooldown       time.Duration `json:"cooldown"`
	RequiredSkills []string      `json:"required_skills,omitempty"`
}

// Result is the outcome of one activity attempt. Data is persisted into the
// memory record; Metadata is advisory and only reaches sinks.
type Result struct {
	Success  bool           `json:"success"`
	Data     map[string]any `json:"data,omitempty"`
	Error    string         `json:"error,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Activity is a pluggable unit of behavior. Execute must communicate with
// other activities only through the shared context's memory log.
type Activity interface {
	Spec() Spec
	Execute(ctx context.Context, sc *Context) Result
}

// Succeed builds a successful result carrying the given data.
func Succeed(data map[string]any) Result {
	return Result{Success: true, Data: data}
}

// Fail builds a failed result with a formatted error message.
func Fail(format string, args ...any) Result {
	return Result{Success: false, Error: fmt.Sprintf(format, args...)}
}
