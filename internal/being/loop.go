package being

import (
	"context"
	"sync"
	"time"

	"github.com/veleth/anima/internal/memory"
	"go.uber.org/zap"
)

// Loop is the being's cycle: on every clock tick it asks the scheduler for
// at most one eligible activity and runs it. Ticks that arrive while an
// activity is in flight are skipped, never queued.
type Loop struct {
	sched      *Scheduler
	runner     *Runner
	mem        *memory.Log
	vitals     *Vitals
	activities map[string]Activity
	nowFn      func() time.Time
	busy       sync.Mutex
	logger     *zap.Logger
}

// NewLoop creates the cycle loop. nowFn supplies the being's current time
// for forced pulses; nil defaults to time.Now.
func NewLoop(sched *Scheduler, runner *Runner, mem *memory.Log, vitals *Vitals, nowFn func() time.Time, logger *zap.Logger) *Loop {
	if nowFn == nil {
		nowFn = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loop{
		sched:      sched,
		runner:     runner,
		mem:        mem,
		vitals:     vitals,
		activities: make(map[string]Activity),
		nowFn:      nowFn,
		logger:     logger,
	}
}

// Register adds an activity to the loop and its spec to the scheduler.
func (l *Loop) Register(act Activity) error {
	spec := act.Spec()
	if err := l.sched.Register(spec); err != nil {
		return err
	}
	l.activities[spec.Name] = act
	l.logger.Info("activity registered",
		zap.String("activity", spec.Name),
		zap.Float64("cost", spec.EnergyCost),
		zap.Duration("cooldown", spec.Cooldown),
		zap.Strings("skills", spec.RequiredSkills))
	return nil
}

// OnTick implements TickListener.
func (l *Loop) OnTick(now time.Time) {
	if !l.busy.TryLock() {
		l.logger.Debug("tick skipped, activity in flight")
		return
	}
	defer l.busy.Unlock()
	l.cycle(context.Background(), now)
}

// PulseNow forces an immediate cycle, waiting out any in-flight run.
// Returns the activity that ran, or false when nothing was eligible.
func (l *Loop) PulseNow() (string, bool) {
	l.busy.Lock()
	defer l.busy.Unlock()
	return l.cycle(context.Background(), l.nowFn())
}

// Drain blocks until any in-flight activity run has finished.
func (l *Loop) Drain() {
	l.busy.Lock()
	defer l.busy.Unlock()
}

func (l *Loop) cycle(ctx context.Context, now time.Time) (string, bool) {
	name, ok := l.sched.SelectNext(now)
	if !ok {
		if l.vitals != nil {
			l.vitals.RecordTick(true)
		}
		l.logger.Debug("idle tick, nothing eligible",
			zap.Float64("energy", l.sched.Energy(now)))
		return "", false
	}

	act := l.activities[name]
	sc, err := NewContext(l.mem, now)
	if err != nil {
		l.logger.Error("shared context unavailable", zap.Error(err))
		return "", false
	}

	l.logger.Info("activity selected", zap.String("activity", name))
	l.runner.Run(ctx, act, sc)
	if l.vitals != nil {
		l.vitals.RecordTick(false)
	}
	return name, true
}
