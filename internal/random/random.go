package random

import "math/rand/v2"

// Source is the only randomness the engine consumes.
type Source interface {
	// Float64 returns a value in [0,1).
	Float64() float64
	// IntN returns a value in [0,n). n must be positive.
	IntN(n int) int
}

// New returns a PCG-backed source. The same seed yields the same sequence.
func New(seed uint64) Source {
	return rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15))
}

// Sequence replays a fixed list of values cyclically.
type Sequence struct {
	values []float64
	pos    int
}

// NewSequence creates a Sequence. Values are expected in [0,1); an empty list behaves as 0.5.
func NewSequence(values ...float64) *Sequence {
	if len(values) == 0 {
		values = []float64{0.5}
	}
	return &Sequence{values: values}
}

func (s *Sequence) Float64() float64 {
	v := s.values[s.pos%len(s.values)]
	s.pos++
	return v
}

func (s *Sequence) IntN(n int) int {
	if n <= 0 {
		return 0
	}
	i := int(s.Float64() * float64(n))
	if i >= n {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}

// Pick returns one element of a non-empty menu.
func Pick[T any](src Source, menu []T) T {
	return menu[src.IntN(len(menu))]
}

// Between returns a value in [lo,hi).
func Between(src Source, lo, hi float64) float64 {
	return lo + src.Float64()*(hi-lo)
}
