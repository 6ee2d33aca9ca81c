package being

import (
	"errors"
	"math"
	"testing"
	"time"

	"go.uber.org/zap"
)

type gateMap map[string]bool

func (g gateMap) Ready(name string) bool { return g[name] }

func mustRegister(t *testing.T, s *Scheduler, spec Spec) {
	t.Helper()
	if err := s.Register(spec); err != nil {
		t.Fatalf("register %s: %v", spec.Name, err)
	}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestEnergyBudgetDepletes(t *testing.T) {
	s := NewScheduler(1.0, 1.0, 0, nil, zap.NewNop())
	mustRegister(t, s, Spec{Name: "ponder", EnergyCost: 0.5})
	now := time.Now()

	for i := 0; i < 2; i++ {
		name, ok := s.SelectNext(now)
		if !ok || name != "ponder" {
			t.Fatalf("selection %d: got (%q, %v), want ponder", i, name, ok)
		}
		if err := s.Charge(name, now); err != nil {
			t.Fatalf("charge %d: %v", i, err)
		}
	}

	if name, ok := s.SelectNext(now); ok {
		t.Errorf("expected exhaustion, selected %q with energy %v", name, s.Energy(now))
	}
	if !almostEqual(s.Energy(now), 0) {
		t.Errorf("energy = %v, want 0", s.Energy(now))
	}
}

func TestEnergyRegeneratesLazilyAndClamps(t *testing.T) {
	s := NewScheduler(1.0, 0, 0.1, nil, zap.NewNop())
	t0 := time.Now()

	if e := s.Energy(t0); !almostEqual(e, 0) {
		t.Fatalf("initial energy = %v, want 0", e)
	}
	if e := s.Energy(t0.Add(5 * time.Minute)); !almostEqual(e, 0.5) {
		t.Errorf("after 5m = %v, want 0.5", e)
	}
	// Re-reading at the same instant must not regenerate again.
	if e := s.Energy(t0.Add(5 * time.Minute)); !almostEqual(e, 0.5) {
		t.Errorf("repeated read = %v, want 0.5", e)
	}
	if e := s.Energy(t0.Add(3 * time.Hour)); !almostEqual(e, 1.0) {
		t.Errorf("after 3h = %v, want ceiling 1.0", e)
	}
	// Time moving backward is ignored.
	if e := s.Energy(t0); !almostEqual(e, 1.0) {
		t.Errorf("backward read = %v, want 1.0", e)
	}
}

func TestChargeClampsAtZero(t *testing.T) {
	s := NewScheduler(1.0, 1.0, 0, nil, zap.NewNop())
	mustRegister(t, s, Spec{Name: "heavy", EnergyCost: 0.8})
	now := time.Now()

	_ = s.Charge("heavy", now)
	_ = s.Charge("heavy", now)
	if e := s.Energy(now); e < 0 || !almostEqual(e, 0) {
		t.Errorf("energy = %v, want clamp at 0", e)
	}
}

func TestCooldownGates(t *testing.T) {
	s := NewScheduler(1.0, 1.0, 0, nil, zap.NewNop())
	mustRegister(t, s, Spec{Name: "reflect", Cooldown: 10 * time.Minute})
	t0 := time.Now()

	if ok, _ := s.Eligible("reflect", t0); !ok {
		t.Fatal("never-run activity should be eligible")
	}
	if err := s.Charge("reflect", t0); err != nil {
		t.Fatalf("charge: %v", err)
	}
	if ok, _ := s.Eligible("reflect", t0.Add(5*time.Minute)); ok {
		t.Error("eligible inside cooldown window")
	}
	if ok, _ := s.Eligible("reflect", t0.Add(10*time.Minute)); !ok {
		t.Error("not eligible after cooldown elapsed")
	}
}

func TestSkillGateBlocksUntilReady(t *testing.T) {
	gate := gateMap{}
	s := NewScheduler(1.0, 1.0, 0, gate, zap.NewNop())
	mustRegister(t, s, Spec{Name: "muse", RequiredSkills: []string{"chat"}})
	now := time.Now()

	if ok, _ := s.Eligible("muse", now); ok {
		t.Error("eligible with skill not ready")
	}
	if _, ok := s.SelectNext(now); ok {
		t.Error("selected with skill not ready")
	}

	gate["chat"] = true
	if ok, _ := s.Eligible("muse", now); !ok {
		t.Error("not eligible after skill became ready")
	}
}

func TestRoundRobinAlternates(t *testing.T) {
	s := NewScheduler(1.0, 1.0, 0, nil, zap.NewNop())
	mustRegister(t, s, Spec{Name: "alpha"})
	mustRegister(t, s, Spec{Name: "beta"})
	now := time.Now()

	want := []string{"alpha", "beta", "alpha", "beta"}
	for i, w := range want {
		name, ok := s.SelectNext(now)
		if !ok || name != w {
			t.Fatalf("selection %d: got (%q, %v), want %q", i, name, ok, w)
		}
	}
}

func TestRoundRobinSkipsIneligible(t *testing.T) {
	gate := gateMap{"web": true}
	s := NewScheduler(1.0, 1.0, 0, gate, zap.NewNop())
	mustRegister(t, s, Spec{Name: "blocked", RequiredSkills: []string{"arxiv"}})
	mustRegister(t, s, Spec{Name: "open", RequiredSkills: []string{"web"}})
	now := time.Now()

	for i := 0; i < 3; i++ {
		name, ok := s.SelectNext(now)
		if !ok || name != "open" {
			t.Fatalf("selection %d: got (%q, %v), want open", i, name, ok)
		}
	}
}

func TestSelectNextEmpty(t *testing.T) {
	s := NewScheduler(1.0, 1.0, 0, nil, zap.NewNop())
	if name, ok := s.SelectNext(time.Now()); ok {
		t.Errorf("selected %q from empty scheduler", name)
	}
}

func TestRegisterDuplicate(t *testing.T) {
	s := NewScheduler(1.0, 1.0, 0, nil, zap.NewNop())
	mustRegister(t, s, Spec{Name: "once"})
	if err := s.Register(Spec{Name: "once"}); !errors.Is(err, ErrDuplicateActivity) {
		t.Errorf("err = %v, want ErrDuplicateActivity", err)
	}
}

func TestUnknownActivity(t *testing.T) {
	s := NewScheduler(1.0, 1.0, 0, nil, zap.NewNop())
	if _, err := s.Eligible("ghost", time.Now()); !errors.Is(err, ErrUnknownActivity) {
		t.Errorf("Eligible err = %v, want ErrUnknownActivity", err)
	}
	if err := s.Charge("ghost", time.Now()); !errors.Is(err, ErrUnknownActivity) {
		t.Errorf("Charge err = %v, want ErrUnknownActivity", err)
	}
}

func TestSnapshotReportsState(t *testing.T) {
	s := NewScheduler(1.0, 1.0, 0, nil, zap.NewNop())
	mustRegister(t, s, Spec{Name: "first", EnergyCost: 0.2, Cooldown: time.Hour})
	mustRegister(t, s, Spec{Name: "second", EnergyCost: 0.2})
	t0 := time.Now()
	_ = s.Charge("first", t0)

	snap := s.Snapshot(t0)
	if len(snap.Activities) != 2 {
		t.Fatalf("activities = %d, want 2", len(snap.Activities))
	}
	first := snap.Activities[0]
	if first.Spec.Name != "first" || first.Runs != 1 || first.LastRun == nil {
		t.Errorf("first status off: %+v", first)
	}
	if first.Eligible {
		t.Error("first should be cooling down")
	}
	if !snap.Activities[1].Eligible {
		t.Error("second should be eligible")
	}
	if !almostEqual(snap.Energy, 0.8) {
		t.Errorf("energy = %v, want 0.8", snap.Energy)
	}
}
