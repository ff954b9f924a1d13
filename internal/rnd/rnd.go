// Package rnd provides the uniform integer source used by quest drop and reward logic.
package rnd

import (
	"math/rand/v2"
	"sync"
)

// Source draws uniform integers in [0, n).
type Source interface {
	IntN(n int) int
}

type globalSource struct{}

func (globalSource) IntN(n int) int {
	if n <= 0 {
		return 0
	}
	return rand.IntN(n)
}

// Default returns the process-wide source backed by math/rand/v2.
func Default() Source {
	return globalSource{}
}

// Seeded is a reproducible source. Safe for concurrent use.
type Seeded struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewSeeded creates a PCG source from the given seed.
func NewSeeded(seed uint64) *Seeded {
	return &Seeded{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// IntN returns a value in [0, n). Returns 0 when n <= 0.
func (s *Seeded) IntN(n int) int {
	if n <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.IntN(n)
}

// FromSeed returns a seeded source, or Default when seed is zero.
func FromSeed(seed uint64) Source {
	if seed == 0 {
		return Default()
	}
	return NewSeeded(seed)
}
