// Package random derives independent, reproducible random streams from a
// single run seed.
package random

import (
	"math/rand/v2"

	"github.com/cespare/xxhash/v2"
)

// Source hands out named PCG streams. The same seed and name always yield
// the same sequence, and streams with different names are independent, so
// enabling or disabling one stage never shifts another stage's randomness.
type Source struct {
	seed int64
}

// NewSource creates a source for the given run seed.
func NewSource(seed int64) *Source {
	return &Source{seed: seed}
}

// Seed returns the run seed.
func (s *Source) Seed() int64 { return s.seed }

// Stream returns a fresh generator for the named consumer.
func (s *Source) Stream(name string) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(s.seed), xxhash.Sum64String(name)))
}

// DerivedSeed returns an int64 seed for libraries that take one, such as
// noise permutation tables.
func (s *Source) DerivedSeed(name string) int64 {
	return int64(s.Stream(name).Uint64())
}
