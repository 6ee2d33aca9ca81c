package being

import (
	"context"
	"time"

	"github.com/veleth/anima/internal/memory"
	"go.uber.org/zap"
)

// Sink observes finished activity attempts. Sink errors are logged and never
// reach the activity or the loop.
type Sink interface {
	Name() string
	OnOutcome(ctx context.Context, rec memory.Record, res Result) error
}

// Runner executes one activity attempt with full fault isolation: a panic
// inside Execute becomes a failed result, exactly one record is appended,
// and the scheduler is charged exactly once, success or failure.
type Runner struct {
	sched   *Scheduler
	mem     *memory.Log
	vitals  *Vitals
	sinks   []Sink
	timeout time.Duration
	logger  *zap.Logger
}

// NewRunner creates a runner. A non-positive timeout defaults to two minutes.
func NewRunner(sched *Scheduler, mem *memory.Log, vitals *Vitals, timeout time.Duration, logger *zap.Logger) *Runner {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		sched:   sched,
		mem:     mem,
		vitals:  vitals,
		timeout: timeout,
		logger:  logger,
	}
}

// AddSink registers an outcome observer.
func (r *Runner) AddSink(s Sink) {
	r.sinks = append(r.sinks, s)
}

// Run performs a single attempt of the activity and returns the stored record.
func (r *Runner) Run(ctx context.Context, act Activity, sc *Context) memory.Record {
	spec := act.Spec()
	runCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	res := r.execute(runCtx, act, sc)
	elapsed := time.Since(start)

	rec := r.mem.Record(ctx, memory.Record{
		ActivityType: spec.Name,
		Timestamp:    sc.Now,
		Success:      res.Success,
		Data:         res.Data,
		Error:        res.Error,
	})

	if err := r.sched.Charge(spec.Name, sc.Now); err != nil {
		r.logger.Warn("charge failed", zap.String("activity", spec.Name), zap.Error(err))
	}
	if r.vitals != nil {
		r.vitals.RecordRun(spec.Name, res.Success, res.Error, sc.Now)
		r.vitals.ObserveEnergy(r.sched.Energy(sc.Now))
	}

	if res.Success {
		r.logger.Info("activity completed",
			zap.String("activity", spec.Name),
			zap.Duration("took", elapsed))
	} else {
		r.logger.Warn("activity failed",
			zap.String("activity", spec.Name),
			zap.String("error", res.Error),
			zap.Duration("took", elapsed))
	}

	for _, sink := range r.sinks {
		if err := sink.OnOutcome(ctx, rec, res); err != nil {
			r.logger.Warn("sink rejected outcome",
				zap.String("sink", sink.Name()),
				zap.String("activity", spec.Name),
				zap.Error(err))
		}
	}
	return rec
}

// execute invokes the activity under panic recovery.
func (r *Runner) execute(ctx context.Context, act Activity, sc *Context) (res Result) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("activity panicked",
				zap.String("activity", act.Spec().Name),
				zap.Any("panic", p))
			res = Fail("activity panic: %v", p)
		}
	}()
	return act.Execute(ctx, sc)
}
