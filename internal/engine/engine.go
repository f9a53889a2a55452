package engine

import (
	"fmt"
	"math"
	"sort"
)

const twoPi = 2 * math.Pi

// State describes one wheel's angular motion. Angle is kept in
// [0, 2π). Acceleration is a per-substep scratch accumulator combining
// external torque, friction, and clutch transfer; it is cleared after
// every integration substep.
type State struct {
	Angle        float64
	Velocity     float64
	Acceleration float64
	Inertia      float64
}

// WheelConfig holds a wheel's immutable physical parameters.
// ClutchRatio is only meaningful on the inner member of a clutch pair;
// zero disables torque transfer. None of the fields are range checked.
type WheelConfig struct {
	Inertia     float64
	Friction    float64
	ClutchRatio float64
}

// Config holds engine-wide tunables.
type Config struct {
	// TimeStep is the fixed substep duration in seconds.
	TimeStep float64
	// MaxIterations caps substeps per Step call; excess catch-up time
	// stays in the accumulator.
	MaxIterations int
	// StabilityThreshold is the velocity magnitude (rad/s) below which
	// a wheel is snapped to rest.
	StabilityThreshold float64
}

func DefaultConfig() Config {
	return Config{
		TimeStep:           1.0 / 60.0,
		MaxIterations:      10,
		StabilityThreshold: 0.01,
	}
}

// Engine owns all wheel state and the clutch topology. The wheel and
// clutch tables are mutated only by the engine itself; readers receive
// copies.
type Engine struct {
	cfg         Config
	states      map[string]*State
	configs     map[string]WheelConfig
	clutch      map[string]string // inner id -> outer id
	order       []string          // sorted wheel ids, for deterministic iteration
	accumulated float64
}

// New creates an engine. Zero-valued fields of cfg fall back to
// DefaultConfig values.
func New(cfg Config) *Engine {
	e := &Engine{
		cfg:     DefaultConfig(),
		states:  make(map[string]*State),
		configs: make(map[string]WheelConfig),
		clutch:  make(map[string]string),
	}
	e.UpdateConfig(cfg)
	return e
}

// AddWheel registers a wheel under id. Angle, velocity, and
// acceleration default to zero and inertia to cfg.Inertia; a non-nil
// initial overrides the motion fields, and its Inertia when non-zero.
// Re-using an id is rejected with ErrWheelExists.
func (e *Engine) AddWheel(id string, cfg WheelConfig, initial *State) error {
	if _, ok := e.states[id]; ok {
		return fmt.Errorf("%w: %q", ErrWheelExists, id)
	}

	st := &State{Inertia: cfg.Inertia}
	if initial != nil {
		st.Angle = normalizeAngle(initial.Angle)
		st.Velocity = initial.Velocity
		st.Acceleration = initial.Acceleration
		if initial.Inertia != 0 {
			st.Inertia = initial.Inertia
		}
	}

	e.states[id] = st
	e.configs[id] = cfg
	e.order = append(e.order, id)
	sort.Strings(e.order)
	return nil
}

// RemoveWheel deletes a wheel along with every clutch link that
// references it, on either side.
func (e *Engine) RemoveWheel(id string) {
	delete(e.states, id)
	delete(e.configs, id)
	delete(e.clutch, id)
	for inner, outer := range e.clutch {
		if outer == id {
			delete(e.clutch, inner)
		}
	}
	for i, other := range e.order {
		if other == id {
			e.order = append(e.order[:i], e.order[i+1:]...)
			break
		}
	}
}

// SetClutch couples innerID to outerID. Each inner wheel has at most
// one outer partner; calling again replaces the previous link. Both
// wheels must already be registered.
func (e *Engine) SetClutch(outerID, innerID string) error {
	if _, ok := e.states[outerID]; !ok {
		return fmt.Errorf("%w: %q", ErrWheelNotFound, outerID)
	}
	if _, ok := e.states[innerID]; !ok {
		return fmt.Errorf("%w: %q", ErrWheelNotFound, innerID)
	}
	e.clutch[innerID] = outerID
	return nil
}

// ApplyTorque accumulates torque/inertia into the wheel's acceleration
// scratch. The contribution is consumed by the next substep; torques
// are not persistent and must be reapplied every substep.
func (e *Engine) ApplyTorque(id string, torque float64) error {
	st, ok := e.states[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrWheelNotFound, id)
	}
	st.Acceleration += torque / st.Inertia
	return nil
}

// SetVelocity overrides a wheel's angular velocity directly, e.g. when
// a player releases the power meter.
func (e *Engine) SetVelocity(id string, v float64) error {
	st, ok := e.states[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrWheelNotFound, id)
	}
	st.Velocity = v
	return nil
}

// Step advances the simulation by dt seconds. Time accumulates across
// calls and is consumed in fixed TimeStep increments, so results are
// deterministic regardless of how dt is chunked. At most MaxIterations
// substeps run per call; leftover time stays in the accumulator.
// Returns the number of substeps performed.
func (e *Engine) Step(dt float64) int {
	e.accumulated += dt
	steps := 0
	for e.accumulated >= e.cfg.TimeStep && steps < e.cfg.MaxIterations {
		e.substep(e.cfg.TimeStep)
		e.accumulated -= e.cfg.TimeStep
		steps++
	}
	return steps
}

// substep performs one fixed-timestep physics update: friction, clutch
// transfer, semi-implicit Euler integration, angle normalization, and
// scratch reset. Clutch torques are fully resolved before any wheel
// integrates.
func (e *Engine) substep(dt float64) {
	for _, id := range e.order {
		e.applyFriction(id)
	}
	for _, id := range e.order {
		e.applyClutch(id)
	}
	for _, id := range e.order {
		st := e.states[id]
		st.Velocity += st.Acceleration * dt
		st.Angle = normalizeAngle(st.Angle + st.Velocity*dt)
		st.Acceleration = 0
	}
}

// applyFriction adds a friction torque opposing the wheel's motion,
// proportional to speed, or snaps the wheel to rest when it is slower
// than the stability threshold.
func (e *Engine) applyFriction(id string) {
	st := e.states[id]
	if math.Abs(st.Velocity) <= e.cfg.StabilityThreshold {
		st.Velocity = 0
		return
	}
	cfg := e.configs[id]
	torque := math.Abs(st.Velocity) * cfg.Friction * st.Inertia
	if st.Velocity > 0 {
		st.Acceleration -= torque / st.Inertia
	} else {
		st.Acceleration += torque / st.Inertia
	}
}

// applyClutch transfers torque from the wheel's outer partner,
// proportional to their relative velocity. The outer wheel receives
// the equal and opposite reaction. Links whose endpoints are gone are
// skipped.
func (e *Engine) applyClutch(innerID string) {
	outerID, ok := e.clutch[innerID]
	if !ok {
		return
	}
	inner, ok := e.states[innerID]
	if !ok {
		return
	}
	outer, ok := e.states[outerID]
	if !ok {
		return
	}
	ratio := e.configs[innerID].ClutchRatio
	if ratio <= 0 {
		return
	}

	dv := outer.Velocity - inner.Velocity
	torque := dv * ratio * inner.Inertia
	inner.Acceleration += torque / inner.Inertia
	outer.Acceleration -= torque / outer.Inertia
}

// Stable reports whether every wheel is at or below the stability
// threshold. Pure query, no side effects.
func (e *Engine) Stable() bool {
	for _, st := range e.states {
		if math.Abs(st.Velocity) > e.cfg.StabilityThreshold {
			return false
		}
	}
	return true
}

// WheelState returns a copy of the wheel's state and whether the wheel
// is registered.
func (e *Engine) WheelState(id string) (State, bool) {
	st, ok := e.states[id]
	if !ok {
		return State{}, false
	}
	return *st, true
}

// States returns copies of all wheel states keyed by id.
func (e *Engine) States() map[string]State {
	out := make(map[string]State, len(e.states))
	for id, st := range e.states {
		out[id] = *st
	}
	return out
}

// Wheels returns the registered wheel ids in sorted order.
func (e *Engine) Wheels() []string {
	out := make([]string, len(e.order))
	copy(out, e.order)
	return out
}

// Reset zeroes every wheel's motion and clears the time accumulator.
// Wheel configs and the clutch topology are preserved.
func (e *Engine) Reset() {
	for _, st := range e.states {
		st.Angle = 0
		st.Velocity = 0
		st.Acceleration = 0
	}
	e.accumulated = 0
}

// Config returns the engine-wide tunables.
func (e *Engine) Config() Config {
	return e.cfg
}

// UpdateConfig merges cfg into the current tunables: positive fields
// are applied, zero fields keep their current value. A TimeStep change
// takes effect on the next Step call.
func (e *Engine) UpdateConfig(cfg Config) {
	if cfg.TimeStep > 0 {
		e.cfg.TimeStep = cfg.TimeStep
	}
	if cfg.MaxIterations > 0 {
		e.cfg.MaxIterations = cfg.MaxIterations
	}
	if cfg.StabilityThreshold > 0 {
		e.cfg.StabilityThreshold = cfg.StabilityThreshold
	}
}

// normalizeAngle wraps a into [0, 2π).
func normalizeAngle(a float64) float64 {
	for a >= twoPi {
		a -= twoPi
	}
	for a < 0 {
		a += twoPi
	}
	return a
}
