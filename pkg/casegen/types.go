package casegen

import (
	"fmt"
	"strings"
)

// Category selects which input generator drives a run.
type Category string

const (
	CategoryScalar Category = "scalar"
	CategoryArray  Category = "array"
	CategoryText   Category = "text"
	CategoryGraph  Category = "graph"
)

// Categories lists every supported category in a stable order.
func Categories() []Category {
	return []Category{CategoryScalar, CategoryArray, CategoryText, CategoryGraph}
}

// categoryAliases keeps the names used by older generator scripts working.
var categoryAliases = map[string]Category{
	"scalar": CategoryScalar,
	"number": CategoryScalar,
	"array":  CategoryArray,
	"text":   CategoryText,
	"string": CategoryText,
	"graph":  CategoryGraph,
}

// ParseCategory resolves a category name (case-insensitive).
func ParseCategory(name string) (Category, error) {
	c, ok := categoryAliases[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, name)
	}
	return c, nil
}

// Valid reports whether c is one of the four known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryScalar, CategoryArray, CategoryText, CategoryGraph:
		return true
	}
	return false
}

// MaxValueLimit caps value bounds so range arithmetic stays inside int64.
const MaxValueLimit int64 = 1e18

// MaxSizeLimit caps sizes, node counts and edge counts so the complexity
// ramp can be computed in float64 and converted back to int.
const MaxSizeLimit = 1e9

// Bounds carries the per-category limits a generator ramps towards.
// Sizes are array lengths or text lengths depending on the category.
type Bounds struct {
	MinValue int64 `json:"min_value" yaml:"min_value"`
	MaxValue int64 `json:"max_value" yaml:"max_value"`
	MinSize  int   `json:"min_size" yaml:"min_size"`
	MaxSize  int   `json:"max_size" yaml:"max_size"`
	MinNodes int   `json:"min_nodes" yaml:"min_nodes"`
	MaxNodes int   `json:"max_nodes" yaml:"max_nodes"`
	MaxEdges int   `json:"max_edges" yaml:"max_edges"`
}

// DefaultBounds returns the limits used when the caller does not override them.
func DefaultBounds() Bounds {
	return Bounds{
		MinValue: 1,
		MaxValue: 1e9,
		MinSize:  0,
		MaxSize:  1e5,
		MinNodes: 0,
		MaxNodes: 1e5,
		MaxEdges: 1e5,
	}
}

// Validate rejects negative or oversized bounds.
func (b Bounds) Validate() error {
	if b.MinValue < 0 || b.MaxValue < 0 || b.MinSize < 0 || b.MaxSize < 0 ||
		b.MinNodes < 0 || b.MaxNodes < 0 || b.MaxEdges < 0 {
		return ErrNegativeBound
	}
	if b.MinValue > MaxValueLimit || b.MaxValue > MaxValueLimit {
		return fmt.Errorf("%w: limit is %d", ErrBoundTooLarge, MaxValueLimit)
	}
	if b.MinSize > MaxSizeLimit || b.MaxSize > MaxSizeLimit ||
		b.MinNodes > MaxSizeLimit || b.MaxNodes > MaxSizeLimit || b.MaxEdges > MaxSizeLimit {
		return fmt.Errorf("%w: size, node and edge limit is %d", ErrBoundTooLarge, int64(MaxSizeLimit))
	}
	return nil
}

// Normalize clamps every minimum down to its maximum.
func (b Bounds) Normalize() Bounds {
	b.MinValue = min(b.MinValue, b.MaxValue)
	b.MinSize = min(b.MinSize, b.MaxSize)
	b.MinNodes = min(b.MinNodes, b.MaxNodes)
	return b
}

// GenerationRequest drives a generator.
type GenerationRequest struct {
	Category Category `json:"category"`
	Count    int      `json:"count"`
	Bounds   Bounds   `json:"bounds"`
}

// Validate checks the request before any compilation is attempted.
func (r GenerationRequest) Validate() error {
	if !r.Category.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, r.Category)
	}
	if r.Count <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidCount, r.Count)
	}
	return r.Bounds.Validate()
}

// GenerationSpec is one generated input. IsSample marks the first two items
// of a sequence.
type GenerationSpec struct {
	Payload  string
	IsSample bool
}

// TestCase is a retained (input, output) pair.
type TestCase struct {
	Input    string `json:"input"`
	Output   string `json:"output"`
	IsSample bool   `json:"isSample"`
}

// Suite is an ordered list of test cases, 1-indexed for external naming.
type Suite []TestCase

// Case returns the i-th case using 1-based indexing.
func (s Suite) Case(i int) (TestCase, bool) {
	if i < 1 || i > len(s) {
		return TestCase{}, false
	}
	return s[i-1], true
}

// Samples returns the cases flagged as samples.
func (s Suite) Samples() Suite {
	var out Suite
	for _, tc := range s {
		if tc.IsSample {
			out = append(out, tc)
		}
	}
	return out
}
