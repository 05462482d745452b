package generator

import (
	"math"
	"math/rand/v2"
	"strconv"
	"strings"

	"pkg.jsn.cam/casegen/pkg/casegen"
)

// GraphGenerator generates undirected graphs as "n m" followed by m edge lines.
// The first part of the sequence yields spanning trees, the middle sparse
// graphs and the last part dense graphs.
type GraphGenerator struct {
	Bounds casegen.Bounds
	rand   *rand.Rand
}

// Edge is an undirected edge with 1-indexed labels and U < V.
type Edge struct {
	U, V int
}

func newEdge(a, b int) Edge {
	if a > b {
		a, b = b, a
	}
	return Edge{U: a, V: b}
}

const (
	graphNodeFloor   = 3
	graphNodeCapBase = 20
	graphNodeCapStep = 5

	graphTreeUntil   = 0.3
	graphSparseUntil = 0.6
)

func (g *GraphGenerator) Init(r *rand.Rand) {
	g.rand = r
}

func (g *GraphGenerator) Generate(count int) []casegen.GenerationSpec {
	specs := make([]casegen.GenerationSpec, 0, count)

	for i := range count {
		nodes := ramp(i, count, graphNodeFloor, g.Bounds.MaxNodes, graphNodeCapBase, graphNodeCapStep, g.Bounds.MinNodes)
		edges := g.edges(i, count, nodes)
		specs = append(specs, casegen.GenerationSpec{Payload: formatGraph(nodes, edges), IsSample: isSample(i)})
	}
	return specs
}

func (g *GraphGenerator) edges(i, count, nodes int) []Edge {
	if nodes <= 1 {
		return nil
	}
	total := pairCount(nodes)
	capEdges := int64(g.Bounds.MaxEdges)

	switch pos := position(i, count); {
	case pos < graphTreeUntil:
		return randomTree(g.rand, nodes)
	case pos < graphSparseUntil:
		m := min(2*int64(nodes), capEdges, total)
		return samplePairs(g.rand, nodes, m)
	default:
		hi := min(total, capEdges)
		// A small edge cap can fall below n-1; the lower bound follows it down.
		lo := min(int64(nodes-1), hi)
		return samplePairs(g.rand, nodes, int64Between(g.rand, lo, hi))
	}
}

// randomTree attaches every node to a uniformly chosen earlier node, then
// relabels through a random permutation so shape and labels are independent.
// It always returns exactly nodes-1 edges forming a connected acyclic graph.
func randomTree(r *rand.Rand, nodes int) []Edge {
	if nodes <= 1 {
		return nil
	}
	labels := r.Perm(nodes)
	edges := make([]Edge, 0, nodes-1)
	for j := 1; j < nodes; j++ {
		parent := r.IntN(j)
		edges = append(edges, newEdge(labels[j]+1, labels[parent]+1))
	}
	return edges
}

func pairCount(nodes int) int64 {
	n := int64(nodes)
	return n * (n - 1) / 2
}

// samplePairs draws m distinct unordered pairs over nodes labels using
// Floyd's algorithm on pair indices, then shuffles them.
func samplePairs(r *rand.Rand, nodes int, m int64) []Edge {
	total := pairCount(nodes)
	m = clamp(m, 0, total)
	if m == 0 {
		return nil
	}

	seen := make(map[int64]struct{}, m)
	picked := make([]int64, 0, m)
	for j := total - m; j < total; j++ {
		t := r.Int64N(j + 1)
		if _, dup := seen[t]; dup {
			t = j
		}
		seen[t] = struct{}{}
		picked = append(picked, t)
	}
	r.Shuffle(len(picked), func(a, b int) {
		picked[a], picked[b] = picked[b], picked[a]
	})

	edges := make([]Edge, len(picked))
	for k, idx := range picked {
		edges[k] = pairAt(nodes, idx)
	}
	return edges
}

// rowStart is the index of the first pair (u, u+1) in row-major order over
// the upper triangle, 0-indexed.
func rowStart(nodes, u int) int64 {
	return int64(u) * int64(2*nodes-u-1) / 2
}

// pairAt maps a pair index in [0, pairCount(nodes)) back to its edge.
func pairAt(nodes int, idx int64) Edge {
	d := float64(2*nodes - 1)
	u := int((d - math.Sqrt(d*d-8*float64(idx))) / 2)
	u = clamp(u, 0, nodes-2)
	for u > 0 && rowStart(nodes, u) > idx {
		u--
	}
	for u < nodes-2 && rowStart(nodes, u+1) <= idx {
		u++
	}
	v := u + 1 + int(idx-rowStart(nodes, u))
	return Edge{U: u + 1, V: v + 1}
}

func formatGraph(nodes int, edges []Edge) string {
	var sb strings.Builder
	sb.WriteString(strconv.Itoa(nodes))
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(len(edges)))
	for _, e := range edges {
		sb.WriteByte('\n')
		sb.WriteString(strconv.Itoa(e.U))
		sb.WriteByte(' ')
		sb.WriteString(strconv.Itoa(e.V))
	}
	return sb.String()
}

func (g *GraphGenerator) Category() casegen.Category {
	return casegen.CategoryGraph
}

func (g *GraphGenerator) Description() string {
	return "Undirected graph: n m, then m lines u v (1-indexed)"
}

func (g *GraphGenerator) DefaultCount() int {
	return defaultCount
}
