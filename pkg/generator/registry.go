package generator

import (
	"fmt"
	"slices"

	"pkg.jsn.cam/casegen/pkg/casegen"
)

// Registry maps categories to generator factory functions.
// Factories take the bounds so each run can be parameterized.
var Registry = map[casegen.Category]func(casegen.Bounds) Generator{
	casegen.CategoryScalar: func(b casegen.Bounds) Generator { return &ScalarGenerator{Bounds: b} },
	casegen.CategoryArray:  func(b casegen.Bounds) Generator { return &ArrayGenerator{Bounds: b} },
	casegen.CategoryText:   func(b casegen.Bounds) Generator { return &TextGenerator{Bounds: b} },
	casegen.CategoryGraph:  func(b casegen.Bounds) Generator { return &GraphGenerator{Bounds: b} },
}

// Get returns an uninitialized generator for a category
func Get(category casegen.Category, bounds casegen.Bounds) (Generator, error) {
	factory, exists := Registry[category]
	if !exists {
		return nil, fmt.Errorf("%w: %q", casegen.ErrUnknownCategory, category)
	}
	return factory(bounds), nil
}

// List returns all registered categories, sorted
func List() []casegen.Category {
	var names []casegen.Category
	for name := range Registry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// New validates req and returns a generator seeded with seed.
func New(req casegen.GenerationRequest, seed uint64) (Generator, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	g, err := Get(req.Category, req.Bounds.Normalize())
	if err != nil {
		return nil, err
	}
	g.Init(NewRand(seed))
	return g, nil
}

// Generate is a convenience wrapper around New followed by Generate.
func Generate(req casegen.GenerationRequest, seed uint64) ([]casegen.GenerationSpec, error) {
	g, err := New(req, seed)
	if err != nil {
		return nil, err
	}
	return g.Generate(req.Count), nil
}
