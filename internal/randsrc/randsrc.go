// Package randsrc provides the random draws used by the animation.
//
// Everything that needs randomness takes a Source so tests can substitute a
// scripted sequence and check exact numeric outcomes.
package randsrc

import (
	"math/rand/v2"
	"time"
)

// Source supplies the three kinds of draws the animation uses.
type Source interface {
	// Float64 returns a uniform value in [0, 1) for probability checks.
	Float64() float64
	// Uniform returns a uniform value in [lo, hi].
	Uniform(lo, hi float64) float64
	// IntRange returns a uniform integer in [lo, hi], both inclusive.
	IntRange(lo, hi int) int
}

// Rand is the production Source. It is not safe for concurrent use; the
// animation loop owns its instance.
type Rand struct {
	r *rand.Rand
}

// New returns a Rand seeded with seed. A zero seed picks one from the clock
// so separate runs differ.
func New(seed uint64) *Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &Rand{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Float64 implements Source.
func (s *Rand) Float64() float64 {
	return s.r.Float64()
}

// Uniform implements Source.
func (s *Rand) Uniform(lo, hi float64) float64 {
	return lo + (hi-lo)*s.r.Float64()
}

// IntRange implements Source.
func (s *Rand) IntRange(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + s.r.IntN(hi-lo+1)
}
