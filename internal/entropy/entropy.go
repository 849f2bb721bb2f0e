// Package entropy supplies the uniform random draws behind every stochastic
// branch in the simulation. All sampling goes through a single Source so a
// deterministic sequence can be substituted in tests.
package entropy

import (
	"math/rand/v2"
	"time"
)

// Source yields uniform random draws.
type Source interface {
	// Float64 returns a draw in [0, 1).
	Float64() float64
	// IntN returns a draw in [0, n). Panics if n <= 0.
	IntN(n int) int
}

// NewSource returns a PRNG-backed Source. A zero seed picks a wall-clock seed.
func NewSource(seed int64) Source {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &randSource{rng: rand.New(rand.NewPCG(uint64(seed), uint64(seed)>>32|0x9e3779b97f4a7c15))}
}

type randSource struct {
	rng *rand.Rand
}

func (s *randSource) Float64() float64 { return s.rng.Float64() }
func (s *randSource) IntN(n int) int   { return s.rng.IntN(n) }

// Range returns a uniform draw in [lo, hi).
func Range(src Source, lo, hi float64) float64 {
	return lo + src.Float64()*(hi-lo)
}

// IntBetween returns a uniform integer in [lo, hi] inclusive.
func IntBetween(src Source, lo, hi int) int {
	return lo + src.IntN(hi-lo+1)
}

// Pick returns a uniformly chosen element. Panics on an empty slice.
func Pick[T any](src Source, items []T) T {
	return items[src.IntN(len(items))]
}

// Sample returns k distinct elements drawn without replacement, preserving
// the original order of the chosen elements. k is capped at len(items).
func Sample[T any](src Source, items []T, k int) []T {
	if k > len(items) {
		k = len(items)
	}
	if k <= 0 {
		return []T{}
	}
	chosen := make([]bool, len(items))
	for picked := 0; picked < k; {
		i := src.IntN(len(items))
		if !chosen[i] {
			chosen[i] = true
			picked++
		}
	}
	out := make([]T, 0, k)
	for i, ok := range chosen {
		if ok {
			out = append(out, items[i])
		}
	}
	return out
}

// Seq is a Source that replays scripted draws, then falls back to a seeded
// PRNG once the script runs out. Tests use it to force exact branch paths
// through probabilistic code.
type Seq struct {
	Floats   []float64
	Ints     []int
	fallback Source
	fi, ii   int
}

// NewSeq builds a Seq with the given scripted Float64 draws and a
// deterministic fallback.
func NewSeq(floats ...float64) *Seq {
	return &Seq{Floats: floats, fallback: NewSource(1)}
}

func (s *Seq) Float64() float64 {
	if s.fi < len(s.Floats) {
		v := s.Floats[s.fi]
		s.fi++
		return v
	}
	if s.fallback == nil {
		s.fallback = NewSource(1)
	}
	return s.fallback.Float64()
}

func (s *Seq) IntN(n int) int {
	if s.ii < len(s.Ints) {
		v := s.Ints[s.ii] % n
		s.ii++
		return v
	}
	if s.fallback == nil {
		s.fallback = NewSource(1)
	}
	return s.fallback.IntN(n)
}
