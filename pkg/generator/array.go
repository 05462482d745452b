package generator

import (
	"math/rand/v2"
	"slices"
	"strconv"
	"strings"

	"pkg.jsn.cam/casegen/pkg/casegen"
)

// ArrayGenerator generates a size line followed by a line of values.
// MaxValue bounds the magnitude of every value; negative values appear in the
// middle and late parts of the sequence.
type ArrayGenerator struct {
	Bounds casegen.Bounds
	rand   *rand.Rand
}

const (
	arraySizeFloor      = 5
	arraySizeCapBase    = 100
	arraySizeCapStep    = 20
	arrayMagnitudeFloor = 100
	arrayConstantMax    = 1000

	arrayPositiveUntil = 0.3
	arrayMixedUntil    = 0.6
)

func (g *ArrayGenerator) Init(r *rand.Rand) {
	g.rand = r
}

func (g *ArrayGenerator) Generate(count int) []casegen.GenerationSpec {
	specs := make([]casegen.GenerationSpec, 0, count)

	for i := range count {
		size := ramp(i, count, arraySizeFloor, g.Bounds.MaxSize, arraySizeCapBase, arraySizeCapStep, g.Bounds.MinSize)
		values := g.values(i, count, size, g.magnitude(i, count))
		specs = append(specs, casegen.GenerationSpec{Payload: formatArray(values), IsSample: isSample(i)})
	}
	return specs
}

// magnitude ramps the largest absolute value independently of the size.
func (g *ArrayGenerator) magnitude(i, count int) int64 {
	ceiling := max(g.Bounds.MaxValue, 1)
	m := arrayMagnitudeFloor + int64(float64(ceiling-arrayMagnitudeFloor)*complexity(i, count))
	return clamp(m, 1, ceiling)
}

func (g *ArrayGenerator) values(i, count, size int, mag int64) []int64 {
	if size == 0 {
		return nil
	}
	r := g.rand
	low := clamp(g.Bounds.MinValue, 1, mag)
	arr := make([]int64, size)

	switch pos := position(i, count); {
	case pos < arrayPositiveUntil:
		for k := range arr {
			arr[k] = int64Between(r, low, mag)
		}
	case pos < arrayMixedUntil:
		for k := range arr {
			arr[k] = int64Between(r, -mag, mag)
		}
	case r.IntN(2) == 0:
		// sorted with outliers
		for k := range arr {
			arr[k] = int64Between(r, low, mag)
		}
		slices.Sort(arr)
		g.injectOutliers(arr, size/10, mag)
	default:
		// near-constant
		base := int64Between(r, 1, min(arrayConstantMax, mag))
		for k := range arr {
			arr[k] = base
		}
		g.injectOutliers(arr, size/5, mag)
	}
	return arr
}

func (g *ArrayGenerator) injectOutliers(arr []int64, n int, mag int64) {
	for range n {
		arr[g.rand.IntN(len(arr))] = int64Between(g.rand, -mag, mag)
	}
}

func formatArray(values []int64) string {
	var sb strings.Builder
	sb.WriteString(strconv.Itoa(len(values)))
	sb.WriteByte('\n')
	buf := make([]byte, 0, 24)
	for k, v := range values {
		if k > 0 {
			sb.WriteByte(' ')
		}
		buf = strconv.AppendInt(buf[:0], v, 10)
		sb.Write(buf)
	}
	return sb.String()
}

func (g *ArrayGenerator) Category() casegen.Category {
	return casegen.CategoryArray
}

func (g *ArrayGenerator) Description() string {
	return "Array: n on the first line, n space-separated integers on the second"
}

func (g *ArrayGenerator) DefaultCount() int {
	return defaultCount
}
