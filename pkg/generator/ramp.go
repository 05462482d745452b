package generator

import "math/rand/v2"

// complexity is the fraction of the sequence reached by item i.
func complexity(i, count int) float64 {
	return float64(i+1) / float64(count)
}

// position is the fraction of the sequence before item i; buckets use it.
func position(i, count int) float64 {
	return float64(i) / float64(count)
}

// ramp interpolates from floor towards ceiling by the complexity of item i,
// caps the result at capBase+capStep*i and clamps it into [lo, ceiling].
// The cap grows with the index only, so early items stay small whatever the
// ceiling is.
func ramp(i, count, floor, ceiling, capBase, capStep, lo int) int {
	v := floor + int(float64(ceiling-floor)*complexity(i, count))
	v = min(v, capBase+capStep*i)
	return clamp(v, lo, ceiling)
}

func clamp[T int | int64](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// int64Between returns a uniform value in [lo, hi]. Callers guarantee lo <= hi.
func int64Between(r *rand.Rand, lo, hi int64) int64 {
	return lo + r.Int64N(hi-lo+1)
}

// pick returns a or b with equal probability.
func pick[T any](r *rand.Rand, a, b T) T {
	if r.IntN(2) == 0 {
		return a
	}
	return b
}
