package being

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// ActivityVitals tracks longitudinal counters for one activity.
type ActivityVitals struct {
	Runs      int        `json:"runs"`
	Successes int        `json:"successes"`
	Failures  int        `json:"failures"`
	LastError string     `json:"last_error,omitempty"`
	LastRun   *time.Time `json:"last_run,omitempty"`
}

// VitalsReport is a point-in-time view of the being's life so far.
type VitalsReport struct {
	StartedAt     time.Time                 `json:"started_at"`
	Ticks         int                       `json:"ticks"`
	IdleTicks     int                       `json:"idle_ticks"`
	Runs          int                       `json:"runs"`
	Successes     int                       `json:"successes"`
	Failures      int                       `json:"failures"`
	CurrentStreak int                       `json:"current_streak"`
	LongestStreak int                       `json:"longest_streak"`
	// LowestEnergy is -1 until the first observation.
	LowestEnergy float64                   `json:"lowest_energy"`
	Activities   map[string]ActivityVitals `json:"activities"`
}

// Vitals accumulates run statistics across the being's lifetime.
type Vitals struct {
	mu            sync.Mutex
	startedAt     time.Time
	ticks         int
	idleTicks     int
	runs          int
	successes     int
	failures      int
	currentStreak int
	longestStreak int
	lowestEnergy  float64
	activities    map[string]*ActivityVitals
	logger        *zap.Logger
}

// NewVitals creates an empty vitals tracker.
func NewVitals(logger *zap.Logger) *Vitals {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Vitals{
		startedAt:    time.Now().UTC(),
		lowestEnergy: -1,
		activities:   make(map[string]*ActivityVitals),
		logger:       logger,
	}
}

// RecordTick counts a loop tick; idle marks a tick where nothing ran.
func (v *Vitals) RecordTick(idle bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.ticks++
	if idle {
		v.idleTicks++
	}
}

// RecordRun counts one activity attempt.
func (v *Vitals) RecordRun(name string, success bool, errText string, at time.Time) {
	v.mu.Lock()
	defer v.mu.Unlock()

	av, ok := v.activities[name]
	if !ok {
		av = &ActivityVitals{}
		v.activities[name] = av
	}
	av.Runs++
	t := at
	av.LastRun = &t
	v.runs++

	if success {
		av.Successes++
		av.LastError = ""
		v.successes++
		v.currentStreak++
		if v.currentStreak > v.longestStreak {
			v.longestStreak = v.currentStreak
		}
		if v.currentStreak > 0 && v.currentStreak%10 == 0 {
			v.logger.Info("activity streak milestone",
				zap.Int("streak", v.currentStreak))
		}
	} else {
		av.Failures++
		av.LastError = errText
		v.failures++
		v.currentStreak = 0
	}
}

// ObserveEnergy tracks the low-water mark of the energy budget.
func (v *Vitals) ObserveEnergy(energy float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.lowestEnergy < 0 || energy < v.lowestEnergy {
		v.lowestEnergy = energy
	}
}

// Snapshot returns a copy of the accumulated vitals.
func (v *Vitals) Snapshot() VitalsReport {
	v.mu.Lock()
	defer v.mu.Unlock()

	report := VitalsReport{
		StartedAt:     v.startedAt,
		Ticks:         v.ticks,
		IdleTicks:     v.idleTicks,
		Runs:          v.runs,
		Successes:     v.successes,
		Failures:      v.failures,
		CurrentStreak: v.currentStreak,
		LongestStreak: v.longestStreak,
		LowestEnergy:  v.lowestEnergy,
		Activities:    make(map[string]ActivityVitals, len(v.activities)),
	}
	for name, av := range v.activities {
		report.Activities[name] = *av
	}
	return report
}
