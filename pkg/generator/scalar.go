package generator

import (
	"math/rand/v2"
	"strconv"

	"pkg.jsn.cam/casegen/pkg/casegen"
)

// ScalarGenerator generates two whitespace-separated integers per item.
// The upper end of the range ramps from MinValue to MaxValue.
type ScalarGenerator struct {
	Bounds casegen.Bounds
	rand   *rand.Rand
}

const (
	scalarUniform = iota
	scalarOneEdge
	scalarBothEdges
	scalarEqual
	scalarStrategies
)

func (g *ScalarGenerator) Init(r *rand.Rand) {
	g.rand = r
}

func (g *ScalarGenerator) Generate(count int) []casegen.GenerationSpec {
	lo, hi := g.Bounds.MinValue, g.Bounds.MaxValue
	specs := make([]casegen.GenerationSpec, 0, count)

	for i := range count {
		upper := lo + int64(float64(hi-lo)*complexity(i, count))
		upper = clamp(upper, lo, hi)

		a, b := g.pair(i%scalarStrategies, lo, upper)
		payload := strconv.FormatInt(a, 10) + " " + strconv.FormatInt(b, 10)
		specs = append(specs, casegen.GenerationSpec{Payload: payload, IsSample: isSample(i)})
	}
	return specs
}

// pair draws two values from [lo, hi] using one of the cycling strategies.
func (g *ScalarGenerator) pair(strategy int, lo, hi int64) (int64, int64) {
	r := g.rand
	switch strategy {
	case scalarOneEdge:
		edge := pick(r, lo, hi)
		other := int64Between(r, lo, hi)
		if r.IntN(2) == 0 {
			return edge, other
		}
		return other, edge
	case scalarBothEdges:
		return pick(r, lo, hi), pick(r, lo, hi)
	case scalarEqual:
		v := int64Between(r, lo, hi)
		return v, v
	default:
		return int64Between(r, lo, hi), int64Between(r, lo, hi)
	}
}

func (g *ScalarGenerator) Category() casegen.Category {
	return casegen.CategoryScalar
}

func (g *ScalarGenerator) Description() string {
	return "Two integers: a b"
}

func (g *ScalarGenerator) DefaultCount() int {
	return defaultCount
}
