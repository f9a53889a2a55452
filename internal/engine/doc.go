// Package engine implements the rotational physics for a spinner wheel.
//
// An [Engine] owns the angular state of every registered wheel and
// advances it with a fixed-timestep, semi-implicit Euler integrator:
//
//   - [Engine.AddWheel] / [Engine.RemoveWheel]: wheel lifecycle
//   - [Engine.ApplyTorque] / [Engine.SetVelocity]: actuation
//   - [Engine.SetClutch]: viscous coupling between two wheels
//   - [Engine.Step]: fixed-timestep driver with a time accumulator
//   - [Engine.Stable]: rest detection for ending a spin
//
// Each substep applies a speed-proportional friction torque, transfers
// clutch torque between coupled wheels (equal and opposite, so the
// pair's angular momentum is conserved apart from friction), then
// integrates velocity before position. Wheels slower than the
// stability threshold are snapped to exactly zero velocity.
//
// The engine performs no validation of wheel parameters: a negative
// friction coefficient accelerates instead of damping, and a near-zero
// inertia produces very large accelerations. Range checks belong to
// the configuration layer, not the integrator.
//
// # Thread Safety
//
// Engine instances are NOT thread-safe. All operations are synchronous
// and must be driven from a single goroutine, or guarded by one
// external lock.
package engine
