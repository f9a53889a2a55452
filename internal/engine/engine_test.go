package engine

import (
	"errors"
	"math"
	"testing"
)

const dt = 1.0 / 60.0

func newTestEngine() *Engine {
	return New(Config{TimeStep: dt, MaxIterations: 1000, StabilityThreshold: 0.01})
}

func TestAddWheelDuplicate(t *testing.T) {
	e := newTestEngine()
	if err := e.AddWheel("outer", WheelConfig{Inertia: 1}, nil); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	err := e.AddWheel("outer", WheelConfig{Inertia: 2}, nil)
	if !errors.Is(err, ErrWheelExists) {
		t.Fatalf("expected ErrWheelExists, got %v", err)
	}
	st, _ := e.WheelState("outer")
	if st.Inertia != 1 {
		t.Errorf("duplicate add mutated wheel: inertia %v", st.Inertia)
	}
}

func TestAddWheelInitialState(t *testing.T) {
	e := newTestEngine()
	initial := &State{Angle: 7.0, Velocity: 3.0}
	if err := e.AddWheel("w", WheelConfig{Inertia: 2}, initial); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	st, ok := e.WheelState("w")
	if !ok {
		t.Fatal("wheel not found after add")
	}
	if st.Velocity != 3.0 {
		t.Errorf("velocity = %v, want 3", st.Velocity)
	}
	if st.Inertia != 2.0 {
		t.Errorf("inertia = %v, want 2 (from config)", st.Inertia)
	}
	// 7 rad is past a full turn and must come back into [0, 2π).
	if st.Angle < 0 || st.Angle >= 2*math.Pi {
		t.Errorf("initial angle not normalized: %v", st.Angle)
	}
}

func TestUnregisteredWheelErrors(t *testing.T) {
	e := newTestEngine()
	if err := e.AddWheel("outer", WheelConfig{Inertia: 1}, nil); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	tests := []struct {
		name string
		call func() error
	}{
		{"apply torque", func() error { return e.ApplyTorque("ghost", 1.0) }},
		{"set velocity", func() error { return e.SetVelocity("ghost", 1.0) }},
		{"clutch unknown inner", func() error { return e.SetClutch("outer", "ghost") }},
		{"clutch unknown outer", func() error { return e.SetClutch("ghost", "outer") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); !errors.Is(err, ErrWheelNotFound) {
				t.Errorf("expected ErrWheelNotFound, got %v", err)
			}
		})
	}
}

func TestRemoveWheelPurgesClutchBothSides(t *testing.T) {
	e := newTestEngine()
	for _, id := range []string{"outer", "inner", "spare"} {
		if err := e.AddWheel(id, WheelConfig{Inertia: 1, ClutchRatio: 1}, nil); err != nil {
			t.Fatalf("add %s: %v", id, err)
		}
	}
	if err := e.SetClutch("outer", "inner"); err != nil {
		t.Fatalf("set clutch: %v", err)
	}

	// Removing the outer member must not leave a dangling link that
	// still drags the inner wheel.
	e.RemoveWheel("outer")
	if err := e.SetVelocity("inner", 0.0); err != nil {
		t.Fatal(err)
	}
	if err := e.SetVelocity("spare", 10.0); err != nil {
		t.Fatal(err)
	}
	e.Step(dt)
	st, _ := e.WheelState("inner")
	if st.Velocity != 0 {
		t.Errorf("inner wheel moved through removed clutch: v = %v", st.Velocity)
	}
}

func TestStepDeterminism(t *testing.T) {
	setup := func() *Engine {
		e := newTestEngine()
		e.AddWheel("outer", WheelConfig{Inertia: 2, Friction: 0.3}, &State{Velocity: 20})
		e.AddWheel("inner", WheelConfig{Inertia: 0.5, Friction: 0.1, ClutchRatio: 0.2}, nil)
		e.SetClutch("outer", "inner")
		return e
	}

	a := setup()
	b := setup()

	// Engine b receives the same total time in half-size chunks;
	// both must consume the identical substep sequence.
	for i := 0; i < 600; i++ {
		a.Step(dt)
		b.Step(dt / 2)
		b.Step(dt / 2)

		for _, id := range []string{"outer", "inner"} {
			sa, _ := a.WheelState(id)
			sb, _ := b.WheelState(id)
			if math.Abs(sa.Angle-sb.Angle) > 1e-10 {
				t.Fatalf("step %d: %s angle diverged: %v vs %v", i, id, sa.Angle, sb.Angle)
			}
			if math.Abs(sa.Velocity-sb.Velocity) > 1e-10 {
				t.Fatalf("step %d: %s velocity diverged: %v vs %v", i, id, sa.Velocity, sb.Velocity)
			}
		}
	}
}

func TestAngleNormalization(t *testing.T) {
	e := newTestEngine()
	// 500 rad/s wraps just over one revolution per 1/60 s substep.
	e.AddWheel("w", WheelConfig{Inertia: 1, Friction: 0.05}, &State{Velocity: 500})

	for i := 0; i < 300; i++ {
		e.Step(dt)
		st, _ := e.WheelState("w")
		if st.Angle < 0 || st.Angle >= 2*math.Pi {
			t.Fatalf("step %d: angle %v outside [0, 2π)", i, st.Angle)
		}
	}
}

func TestFrictionMonotonicity(t *testing.T) {
	run := func(friction float64) float64 {
		e := newTestEngine()
		e.AddWheel("w", WheelConfig{Inertia: 1, Friction: friction}, &State{Velocity: 10})
		for i := 0; i < 120; i++ {
			e.Step(dt)
		}
		st, _ := e.WheelState("w")
		return math.Abs(st.Velocity)
	}

	v1 := run(0.1)
	v2 := run(0.5)
	if v2 > v1 {
		t.Errorf("higher friction left more speed: |v| %v (c=0.5) > %v (c=0.1)", v2, v1)
	}
	if v1 >= 10 {
		t.Errorf("friction did not slow the wheel: |v| = %v", v1)
	}
}

func TestFrictionDecayFromTen(t *testing.T) {
	e := newTestEngine()
	e.AddWheel("w", WheelConfig{Inertia: 1, Friction: 0.1}, &State{Velocity: 10})

	e.Step(dt)
	st, _ := e.WheelState("w")
	// One substep: v -= |v|·c·dt = 10·0.1/60.
	want := 10.0 - 10.0*0.1*dt
	if math.Abs(st.Velocity-want) > 1e-12 {
		t.Errorf("velocity after one step = %v, want %v", st.Velocity, want)
	}
}

func TestSnapToZero(t *testing.T) {
	e := New(Config{TimeStep: dt, MaxIterations: 10, StabilityThreshold: 0.05})
	e.AddWheel("w", WheelConfig{Inertia: 1, Friction: 0.1}, &State{Velocity: 0.04})

	e.Step(dt)
	st, _ := e.WheelState("w")
	if st.Velocity != 0 {
		t.Errorf("velocity below threshold not snapped to zero: %v", st.Velocity)
	}
	if !e.Stable() {
		t.Error("engine not stable after snap")
	}
}

func TestSemiImplicitOrdering(t *testing.T) {
	e := newTestEngine()
	e.AddWheel("w", WheelConfig{Inertia: 1, Friction: 0}, nil)

	if err := e.ApplyTorque("w", 1.0); err != nil {
		t.Fatal(err)
	}
	e.Step(dt)

	st, _ := e.WheelState("w")
	// Position must be integrated with the updated velocity.
	if math.Abs(st.Velocity-dt) > 1e-15 {
		t.Errorf("velocity = %v, want %v", st.Velocity, dt)
	}
	if math.Abs(st.Angle-st.Velocity*dt) > 1e-15 {
		t.Errorf("angle = %v, want v·dt = %v", st.Angle, st.Velocity*dt)
	}
}

func TestTorqueConsumedAfterSubstep(t *testing.T) {
	e := newTestEngine()
	e.AddWheel("w", WheelConfig{Inertia: 1, Friction: 0}, nil)

	e.ApplyTorque("w", 1.0)
	e.Step(dt)
	before, _ := e.WheelState("w")

	// No new torque: the wheel must coast, not keep accelerating.
	e.Step(dt)
	after, _ := e.WheelState("w")
	if math.Abs(after.Velocity-before.Velocity) > 1e-15 {
		t.Errorf("torque persisted across substeps: %v -> %v", before.Velocity, after.Velocity)
	}
}

func TestClutchMomentumConservation(t *testing.T) {
	e := newTestEngine()
	e.AddWheel("outer", WheelConfig{Inertia: 2, Friction: 0}, &State{Velocity: 10})
	e.AddWheel("inner", WheelConfig{Inertia: 0.5, Friction: 0, ClutchRatio: 0.3}, &State{Velocity: 1})
	if err := e.SetClutch("outer", "inner"); err != nil {
		t.Fatal(err)
	}

	momentum := func() float64 {
		o, _ := e.WheelState("outer")
		i, _ := e.WheelState("inner")
		return o.Inertia*o.Velocity + i.Inertia*i.Velocity
	}

	initial := momentum()
	for i := 0; i < 600; i++ {
		e.Step(dt)
		if math.Abs(momentum()-initial) > 1e-9 {
			t.Fatalf("step %d: angular momentum drifted: %v -> %v", i, initial, momentum())
		}
	}
}

func TestClutchRatioZeroIsolates(t *testing.T) {
	e := newTestEngine()
	e.AddWheel("outer", WheelConfig{Inertia: 1, Friction: 0}, &State{Velocity: 10})
	e.AddWheel("inner", WheelConfig{Inertia: 1, Friction: 0, ClutchRatio: 0}, nil)
	if err := e.SetClutch("outer", "inner"); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 10; i++ {
		e.Step(dt)
	}
	st, _ := e.WheelState("inner")
	if st.Velocity != 0 {
		t.Errorf("clutch ratio 0 transferred torque: inner v = %v", st.Velocity)
	}
}

func TestClutchConvergence(t *testing.T) {
	e := newTestEngine()
	e.AddWheel("outer", WheelConfig{Inertia: 1, Friction: 0}, &State{Velocity: 10})
	e.AddWheel("inner", WheelConfig{Inertia: 1, Friction: 0, ClutchRatio: 1}, nil)
	if err := e.SetClutch("outer", "inner"); err != nil {
		t.Fatal(err)
	}

	prevGap := 10.0
	for i := 0; i < 600; i++ {
		e.Step(dt)
		o, _ := e.WheelState("outer")
		in, _ := e.WheelState("inner")
		gap := math.Abs(o.Velocity - in.Velocity)
		if gap > prevGap+1e-12 {
			t.Fatalf("step %d: velocity gap grew: %v -> %v", i, prevGap, gap)
		}
		prevGap = gap
	}
	if prevGap > 0.01 {
		t.Errorf("velocities did not converge: gap %v after 600 steps", prevGap)
	}
}

func TestNegativeFrictionAccelerates(t *testing.T) {
	e := newTestEngine()
	e.AddWheel("w", WheelConfig{Inertia: 1, Friction: -0.1}, &State{Velocity: 1})

	for i := 0; i < 60; i++ {
		e.Step(dt)
	}
	st, _ := e.WheelState("w")
	if st.Velocity <= 1 {
		t.Errorf("negative friction should amplify motion: v = %v", st.Velocity)
	}
}

func TestMaxIterationsTruncates(t *testing.T) {
	e := New(Config{TimeStep: dt, MaxIterations: 5, StabilityThreshold: 0.01})
	e.AddWheel("w", WheelConfig{Inertia: 1, Friction: 0.1}, &State{Velocity: 10})

	// A full second of catch-up, but only 5 substeps may run.
	steps := e.Step(1.0)
	if steps != 5 {
		t.Errorf("steps = %d, want 5", steps)
	}

	// Leftover time is kept, so the next call keeps catching up
	// without any new time.
	steps = e.Step(0)
	if steps != 5 {
		t.Errorf("steps after zero dt = %d, want 5", steps)
	}
}

func TestStableAndReset(t *testing.T) {
	e := newTestEngine()
	e.AddWheel("outer", WheelConfig{Inertia: 1, Friction: 0.5}, &State{Velocity: 8})
	e.AddWheel("inner", WheelConfig{Inertia: 0.5, Friction: 0.3, ClutchRatio: 0.2}, nil)
	if err := e.SetClutch("outer", "inner"); err != nil {
		t.Fatal(err)
	}

	if e.Stable() {
		t.Fatal("engine stable while spinning")
	}

	for i := 0; i < 60*60 && !e.Stable(); i++ {
		e.Step(dt)
	}
	if !e.Stable() {
		t.Fatal("engine never came to rest")
	}

	e.Reset()
	for id, st := range e.States() {
		if st.Angle != 0 || st.Velocity != 0 || st.Acceleration != 0 {
			t.Errorf("%s not zeroed after reset: %+v", id, st)
		}
	}

	// Topology survives reset: spinning the outer still drags the inner.
	e.SetVelocity("outer", 10)
	for i := 0; i < 10; i++ {
		e.Step(dt)
	}
	st, _ := e.WheelState("inner")
	if st.Velocity == 0 {
		t.Error("clutch topology lost after reset")
	}
}

func TestWheelStateIsCopy(t *testing.T) {
	e := newTestEngine()
	e.AddWheel("w", WheelConfig{Inertia: 1}, &State{Velocity: 5})

	st, _ := e.WheelState("w")
	st.Velocity = 99
	again, _ := e.WheelState("w")
	if again.Velocity != 5 {
		t.Error("WheelState returned a live reference")
	}

	all := e.States()
	all["w"] = State{Velocity: -1}
	again, _ = e.WheelState("w")
	if again.Velocity != 5 {
		t.Error("States returned live references")
	}
}

func TestUpdateConfigMerges(t *testing.T) {
	e := New(Config{})
	def := DefaultConfig()
	if e.Config() != def {
		t.Fatalf("zero config should fall back to defaults: %+v", e.Config())
	}

	e.UpdateConfig(Config{TimeStep: 0.002})
	got := e.Config()
	if got.TimeStep != 0.002 {
		t.Errorf("TimeStep = %v, want 0.002", got.TimeStep)
	}
	if got.MaxIterations != def.MaxIterations || got.StabilityThreshold != def.StabilityThreshold {
		t.Errorf("untouched fields changed: %+v", got)
	}
}
