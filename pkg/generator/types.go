// Package generator produces structured, randomized inputs for a reference
// solution. Every generator ramps the size of its items from small to the
// configured ceiling so that early cases stay cheap.
package generator

import (
	"math/rand/v2"

	"pkg.jsn.cam/casegen/pkg/casegen"
)

// Generator produces a sequence of inputs for one category
type Generator interface {
	// Init initializes the generator with a per-run random source.
	// The same source state always yields the same sequence.
	Init(r *rand.Rand)

	// Generate returns exactly count specs; the first two are samples
	Generate(count int) []casegen.GenerationSpec

	// Category returns the category this generator serves
	Category() casegen.Category

	// Description returns a human-readable description of the input format
	Description() string

	// DefaultCount returns the suggested number of items to generate
	DefaultCount() int
}

const defaultCount = 25

// sampleCount is how many leading items of a sequence are flagged as samples.
const sampleCount = 2

func isSample(i int) bool {
	return i < sampleCount
}

// NewRand returns a PCG-backed source seeded from a single value.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
