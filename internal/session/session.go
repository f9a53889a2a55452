// Package session drives a spinner game round: it owns the physics
// engine, maps a power-meter release to an initial spin, steps the
// simulation on a frame cadence until the wheels come to rest, and
// determines the result.
package session

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/san-kum/spinsim/internal/engine"
	"github.com/san-kum/spinsim/internal/wedge"
)

// Wheel ids registered by every session.
const (
	OuterWheel = "outer"
	InnerWheel = "inner"
)

// Options configures a session. Zero-valued fields fall back to
// sensible defaults.
type Options struct {
	Engine engine.Config
	Outer  engine.WheelConfig
	Inner  engine.WheelConfig
	Wedges []wedge.Wedge

	// MinVelocity and MaxVelocity bound the initial angular velocity
	// mapped from the power meter's [0,1] release value.
	MinVelocity float64
	MaxVelocity float64

	// FrameRate is the cadence (frames per second) at which the engine
	// is stepped, emulating a render loop.
	FrameRate int

	// MaxSpinTime caps a spin's simulated duration in seconds; a spin
	// that has not settled by then is reported as incomplete.
	MaxSpinTime float64

	Seed int64
}

// Frame is one recorded sample of the spin trace.
type Frame struct {
	Time          float64
	OuterAngle    float64
	OuterVelocity float64
	InnerAngle    float64
	InnerVelocity float64
}

// Observer receives every trace frame during a spin.
type Observer interface {
	OnFrame(f Frame)
}

// Result describes a finished spin. Landed is the wedge under the
// needle at the final angle; Drawn is the independent weighted draw
// the game may use instead of the visual position.
type Result struct {
	Power      float64
	FinalAngle float64
	Landed     wedge.Wedge
	Drawn      wedge.Wedge
	Steps      int
	Duration   float64
	Completed  bool
	Trace      []Frame
}

// Session owns one engine with an outer wheel clutch-coupled to an
// inner wheel. Not safe for concurrent use.
type Session struct {
	eng       *engine.Engine
	set       *wedge.Set
	rng       *rand.Rand
	opts      Options
	observers []Observer
}

func New(opts Options) (*Session, error) {
	if opts.MinVelocity <= 0 {
		opts.MinVelocity = 4.0
	}
	if opts.MaxVelocity <= 0 {
		opts.MaxVelocity = 30.0
	}
	if opts.FrameRate <= 0 {
		opts.FrameRate = 60
	}
	if opts.MaxSpinTime <= 0 {
		opts.MaxSpinTime = 60.0
	}
	if opts.Outer.Inertia == 0 {
		opts.Outer = engine.WheelConfig{Inertia: 2.0, Friction: 0.3}
	}
	if opts.Inner.Inertia == 0 {
		opts.Inner = engine.WheelConfig{Inertia: 0.5, Friction: 0.1, ClutchRatio: 0.15}
	}
	if len(opts.Wedges) == 0 {
		opts.Wedges = []wedge.Wedge{
			{Label: "win", Weight: 1, Payout: 2},
			{Label: "lose", Weight: 1},
		}
	}

	set, err := wedge.NewSet(opts.Wedges)
	if err != nil {
		return nil, err
	}

	eng := engine.New(opts.Engine)
	if err := eng.AddWheel(OuterWheel, opts.Outer, nil); err != nil {
		return nil, fmt.Errorf("register outer wheel: %w", err)
	}
	if err := eng.AddWheel(InnerWheel, opts.Inner, nil); err != nil {
		return nil, fmt.Errorf("register inner wheel: %w", err)
	}
	if err := eng.SetClutch(OuterWheel, InnerWheel); err != nil {
		return nil, fmt.Errorf("couple wheels: %w", err)
	}

	return &Session{
		eng:  eng,
		set:  set,
		rng:  rand.New(rand.NewSource(opts.Seed)),
		opts: opts,
	}, nil
}

func (s *Session) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// Engine exposes the underlying engine, e.g. for a live view that
// steps it on its own tick.
func (s *Session) Engine() *engine.Engine { return s.eng }

// Wedges exposes the wedge ring.
func (s *Session) Wedges() *wedge.Set { return s.set }

// LaunchVelocity maps a power-meter value in [0,1] (clamped) to an
// initial angular velocity.
func (s *Session) LaunchVelocity(power float64) float64 {
	if power < 0 {
		power = 0
	}
	if power > 1 {
		power = 1
	}
	return s.opts.MinVelocity + power*(s.opts.MaxVelocity-s.opts.MinVelocity)
}

// Spin resets the wheels, injects the spin for the given power value,
// and steps the engine frame by frame until it is stable or
// MaxSpinTime elapses. The context cancels a spin between frames.
func (s *Session) Spin(ctx context.Context, power float64) (*Result, error) {
	s.eng.Reset()
	if err := s.eng.SetVelocity(OuterWheel, s.LaunchVelocity(power)); err != nil {
		return nil, err
	}

	frameDt := 1.0 / float64(s.opts.FrameRate)
	maxFrames := int(s.opts.MaxSpinTime * float64(s.opts.FrameRate))

	res := &Result{
		Power: power,
		Trace: make([]Frame, 0, maxFrames),
	}

	t := 0.0
	for i := 0; i < maxFrames; i++ {
		select {
		case <-ctx.Done():
			return res, ctx.Err()
		default:
		}

		res.Steps += s.eng.Step(frameDt)
		t += frameDt

		f := s.frame(t)
		res.Trace = append(res.Trace, f)
		for _, o := range s.observers {
			o.OnFrame(f)
		}

		if s.eng.Stable() {
			res.Completed = true
			break
		}
	}

	outer, _ := s.eng.WheelState(OuterWheel)
	res.FinalAngle = outer.Angle
	res.Duration = t
	res.Landed = s.set.At(outer.Angle)
	res.Drawn = s.set.Pick(s.rng)
	return res, nil
}

// Reset returns the wheels to rest at angle zero.
func (s *Session) Reset() { s.eng.Reset() }

func (s *Session) frame(t float64) Frame {
	outer, _ := s.eng.WheelState(OuterWheel)
	inner, _ := s.eng.WheelState(InnerWheel)
	return Frame{
		Time:          t,
		OuterAngle:    outer.Angle,
		OuterVelocity: outer.Velocity,
		InnerAngle:    inner.Angle,
		InnerVelocity: inner.Velocity,
	}
}
