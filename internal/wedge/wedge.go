// Package wedge models the prize wedges around a spinner wheel and
// turns physics output into a result. A wedge's weight sets both the
// arc it occupies on the rim and its probability in the independent
// weighted draw; the two paths are intentionally decoupled so a game
// can overlay a probability-driven outcome on a physically plausible
// spin.
package wedge

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
)

const twoPi = 2 * math.Pi

var ErrEmptySet = errors.New("wedge: set needs at least one wedge with positive total weight")

// Wedge is one prize sector on the wheel rim.
type Wedge struct {
	Label  string
	Weight float64
	Payout int
}

// Set is an immutable ring of wedges laid out clockwise from angle 0,
// each spanning an arc proportional to its weight.
type Set struct {
	wedges []Wedge
	bounds []float64 // cumulative end angle of each wedge, last == 2π
	total  float64
}

// NewSet builds a wedge ring. Weights must be non-negative and sum to
// a positive total; a zero-weight wedge occupies no arc and is never
// drawn.
func NewSet(wedges []Wedge) (*Set, error) {
	total := 0.0
	for _, w := range wedges {
		if w.Weight < 0 {
			return nil, fmt.Errorf("wedge: negative weight %v for %q", w.Weight, w.Label)
		}
		total += w.Weight
	}
	if len(wedges) == 0 || total <= 0 {
		return nil, ErrEmptySet
	}

	s := &Set{
		wedges: make([]Wedge, len(wedges)),
		bounds: make([]float64, len(wedges)),
		total:  total,
	}
	copy(s.wedges, wedges)

	acc := 0.0
	for i, w := range wedges {
		acc += w.Weight
		s.bounds[i] = acc / total * twoPi
	}
	s.bounds[len(s.bounds)-1] = twoPi
	return s, nil
}

// Len returns the number of wedges.
func (s *Set) Len() int { return len(s.wedges) }

// Wedges returns a copy of the ring.
func (s *Set) Wedges() []Wedge {
	out := make([]Wedge, len(s.wedges))
	copy(out, s.wedges)
	return out
}

// At returns the wedge under a needle pointing at the given angle.
// The angle is normalized into [0, 2π) first.
func (s *Set) At(angle float64) Wedge {
	a := math.Mod(angle, twoPi)
	if a < 0 {
		a += twoPi
	}
	for i, end := range s.bounds {
		if a < end {
			return s.wedges[i]
		}
	}
	return s.wedges[len(s.wedges)-1]
}

// Arc returns the [start, end) angle span of wedge i.
func (s *Set) Arc(i int) (start, end float64) {
	if i > 0 {
		start = s.bounds[i-1]
	}
	return start, s.bounds[i]
}

// Pick draws a wedge by weight, independent of any angle.
func (s *Set) Pick(r *rand.Rand) Wedge {
	x := r.Float64() * s.total
	acc := 0.0
	for _, w := range s.wedges {
		acc += w.Weight
		if x < acc {
			return w
		}
	}
	return s.wedges[len(s.wedges)-1]
}
