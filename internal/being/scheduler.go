package being

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// SkillGate reports whether a named skill is ready for use. A nil gate
// treats every skill as ready.
type SkillGate interface {
	Ready(name string) bool
}

// activityState is the per-activity dynamic admission state.
type activityState struct {
	spec    Spec
	lastRun time.Time
	runs    int
}

// Scheduler is the admission controller: it decides which activity, if any,
// may run on a given tick. Eligibility requires enough energy, an expired
// cooldown, and every required skill ready. Selection is round-robin over
// registration order, so no eligible activity starves.
type Scheduler struct {
	mu        sync.Mutex
	order     []string
	state     map[string]*activityState
	cursor    int
	energy    float64
	maxEnergy float64
	regen     float64 // energy restored per minute
	lastRegen time.Time
	gate      SkillGate
	logger    *zap.Logger
}

// NewScheduler creates a scheduler with the given energy metabolism.
func NewScheduler(maxEnergy, startEnergy, regenPerMinute float64, gate SkillGate, logger *zap.Logger) *Scheduler {
	if maxEnergy <= 0 {
		maxEnergy = 1.0
	}
	if startEnergy < 0 || startEnergy > maxEnergy {
		startEnergy = maxEnergy
	}
	if regenPerMinute < 0 {
		regenPerMinute = 0
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		state:     make(map[string]*activityState),
		cursor:    -1,
		energy:    startEnergy,
		maxEnergy: maxEnergy,
		regen:     regenPerMinute,
		gate:      gate,
		logger:    logger,
	}
}

// Register adds an activity spec. Registration order is selection order.
func (s *Scheduler) Register(spec Spec) error {
	if spec.Name == "" {
		return fmt.Errorf("register activity: name required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.state[spec.Name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateActivity, spec.Name)
	}
	s.state[spec.Name] = &activityState{spec: spec}
	s.order = append(s.order, spec.Name)
	return nil
}

// Specs returns all registered specs in registration order.
func (s *Scheduler) Specs() []Spec {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Spec, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.state[name].spec)
	}
	return out
}

// Energy returns the current energy after applying regeneration up to now.
func (s *Scheduler) Energy(now time.Time) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.regenerate(now)
	return s.energy
}

// Eligible reports whether the named activity could run at now.
func (s *Scheduler) Eligible(name string, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.state[name]
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrUnknownActivity, name)
	}
	s.regenerate(now)
	return s.eligible(st, now), nil
}

// SelectNext picks at most one eligible activity. The scan starts one past
// the previously selected activity and wraps, so two always-eligible
// activities alternate. Returns false when nothing is eligible.
func (s *Scheduler) SelectNext(now time.Time) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.regenerate(now)

	n := len(s.order)
	if n == 0 {
		return "", false
	}
	for i := 1; i <= n; i++ {
		idx := (s.cursor + i) % n
		st := s.state[s.order[idx]]
		if s.eligible(st, now) {
			s.cursor = idx
			return st.spec.Name, true
		}
	}
	return "", false
}

// Charge applies post-attempt accounting: the activity's last-run time moves
// to now and its energy cost is deducted, clamped at zero. Every attempt is
// charged, failures included.
func (s *Scheduler) Charge(name string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.state[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownActivity, name)
	}
	s.regenerate(now)

	st.lastRun = now
	st.runs++
	s.energy -= st.spec.EnergyCost
	if s.energy < 0 {
		s.energy = 0
	}
	s.logger.Debug("activity charged",
		zap.String("activity", name),
		zap.Float64("cost", st.spec.EnergyCost),
		zap.Float64("energy", s.energy))
	return nil
}

// eligible checks the admission triple for one activity. Caller holds the
// lock and has already regenerated.
func (s *Scheduler) eligible(st *activityState, now time.Time) bool {
	if s.energy < st.spec.EnergyCost {
		return false
	}
	if !st.lastRun.IsZero() && now.Sub(st.lastRun) < st.spec.Cooldown {
		return false
	}
	if s.gate != nil {
		for _, skill := range st.spec.RequiredSkills {
			if !s.gate.Ready(skill) {
				return false
			}
		}
	}
	return true
}

// regenerate applies lazy linear regeneration up to now, clamped to the
// energy ceiling. Time moving backward is ignored. Caller holds the lock.
func (s *Scheduler) regenerate(now time.Time) {
	if s.lastRegen.IsZero() {
		s.lastRegen = now
		return
	}
	elapsed := now.Sub(s.lastRegen)
	if elapsed <= 0 {
		return
	}
	s.lastRegen = now
	s.energy += s.regen * elapsed.Minutes()
	if s.energy > s.maxEnergy {
		s.energy = s.maxEnergy
	}
}

// ActivityStatus describes one activity's admission state for the API.
type ActivityStatus struct {
	Spec     Spec       `json:"spec"`
	LastRun  *time.Time `json:"last_run,omitempty"`
	Runs     int        `json:"runs"`
	Eligible bool       `json:"eligible"`
}

// Status is a point-in-time scheduler snapshot.
type Status struct {
	Energy     float64          `json:"energy"`
	MaxEnergy  float64          `json:"max_energy"`
	RegenPerMn float64          `json:"regen_per_minute"`
	Activities []ActivityStatus `json:"activities"`
}

// Snapshot reports the scheduler state as of now.
func (s *Scheduler) Snapshot(now time.Time) Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.regenerate(now)

	out := Status{
		Energy:     s.energy,
		MaxEnergy:  s.maxEnergy,
		RegenPerMn: s.regen,
		Activities: make([]ActivityStatus, 0, len(s.order)),
	}
	for _, name := range s.order {
		st := s.state[name]
		as := ActivityStatus{
			Spec:     st.spec,
			Runs:     st.runs,
			Eligible: s.eligible(st, now),
		}
		if !st.lastRun.IsZero() {
			lr := st.lastRun
			as.LastRun = &lr
		}
		out.Activities = append(out.Activities, as)
	}
	return out
}
