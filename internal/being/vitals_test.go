package being

import (
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestVitalsTracksRunsAndStreaks(t *testing.T) {
	v := NewVitals(zap.NewNop())
	now := time.Now()

	v.RecordRun("daily_thought", true, "", now)
	v.RecordRun("fetch_research", true, "", now)
	v.RecordRun("web_research", false, "network down", now)
	v.RecordRun("daily_thought", true, "", now)

	report := v.Snapshot()
	if report.Runs != 4 || report.Successes != 3 || report.Failures != 1 {
		t.Errorf("totals off: %+v", report)
	}
	if report.CurrentStreak != 1 || report.LongestStreak != 2 {
		t.Errorf("streaks = %d/%d, want 1/2", report.CurrentStreak, report.LongestStreak)
	}

	wr := report.Activities["web_research"]
	if wr.Failures != 1 || wr.LastError != "network down" {
		t.Errorf("web_research vitals off: %+v", wr)
	}
	dt := report.Activities["daily_thought"]
	if dt.Runs != 2 || dt.Successes != 2 {
		t.Errorf("daily_thought vitals off: %+v", dt)
	}
}

func TestVitalsEnergyLowWaterMark(t *testing.T) {
	v := NewVitals(zap.NewNop())
	if got := v.Snapshot().LowestEnergy; got != -1 {
		t.Errorf("unobserved low-water mark = %v, want -1", got)
	}
	v.ObserveEnergy(0.8)
	v.ObserveEnergy(0.2)
	v.ObserveEnergy(0.5)
	if got := v.Snapshot().LowestEnergy; got != 0.2 {
		t.Errorf("low-water mark = %v, want 0.2", got)
	}
}

func TestVitalsSnapshotIsACopy(t *testing.T) {
	v := NewVitals(zap.NewNop())
	v.RecordRun("a", true, "", time.Now())

	report := v.Snapshot()
	entry := report.Activities["a"]
	entry.Runs = 99
	report.Activities["a"] = entry

	if v.Snapshot().Activities["a"].Runs != 1 {
		t.Error("snapshot leaked internal state")
	}
}
