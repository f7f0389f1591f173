// Package graph builds name-dependency graphs over sibling declarations and
// derives topological orders from them.
package graph

import (
	"sort"

	"github.com/phobologic/pyorder/internal/model"
)

// Graph is the dependency graph of one sibling scope. It is built once by
// Build and never modified.
type Graph struct {
	deps [][]int
}

// Build creates the dependency graph for decls.
//
// Names are bound by assignments, functions, classes and by the targets of
// compound statements. An assignment depends on the siblings binding the
// identifiers of its right-hand side; a function or class depends on the
// siblings binding what it reads when defined. When several siblings bind the
// same name, the closest earlier one is the dependency; a name bound only
// later depends on all its binders.
func Build(decls []model.Declaration) Graph {
	definers := make(map[string][]int)
	for i := range decls {
		for _, name := range decls[i].Defines() {
			definers[name] = append(definers[name], i)
		}
	}

	g := Graph{deps: make([][]int, len(decls))}
	for j := range decls {
		d := &decls[j]
		var refs []string
		switch d.Kind {
		case model.Assign:
			refs = d.References
		case model.Function, model.Class:
			refs = d.DefinitionRefs
		default:
			continue
		}

		seen := make(map[int]struct{})
		for _, ref := range refs {
			for _, i := range resolve(definers[ref], j) {
				if _, ok := seen[i]; !ok {
					seen[i] = struct{}{}
					g.deps[j] = append(g.deps[j], i)
				}
			}
		}
		sort.Ints(g.deps[j])
	}
	return g
}

// resolve picks which binders of a name declaration j depends on.
func resolve(binders []int, j int) []int {
	closest := -1
	var later []int
	for _, i := range binders {
		switch {
		case i < j:
			closest = i
		case i > j:
			later = append(later, i)
		}
	}
	if closest >= 0 {
		return []int{closest}
	}
	return later
}

// Independent reports whether declaration i references no sibling binding.
func (g Graph) Independent(i int) bool {
	return len(g.deps[i]) == 0
}

// DependsOn returns the indices of the declarations declaration i references.
func (g Graph) DependsOn(i int) []int {
	return append([]int(nil), g.deps[i]...)
}

// DependencyOrder returns indices ordered so that every declaration follows
// the declarations it depends on. Only dependencies inside indices count.
// Ties, and declarations caught in a cycle, keep declaration order.
func DependencyOrder(g Graph, indices []int) []int {
	members := make(map[int]struct{}, len(indices))
	for _, i := range indices {
		members[i] = struct{}{}
	}

	inDegree := make(map[int]int, len(indices))
	children := make(map[int][]int)
	for _, i := range indices {
		for _, dep := range g.deps[i] {
			if _, ok := members[dep]; !ok || dep == i {
				continue
			}
			inDegree[i]++
			children[dep] = append(children[dep], i)
		}
	}

	var ready []int
	for _, i := range indices {
		if inDegree[i] == 0 {
			ready = append(ready, i)
		}
	}
	sort.Ints(ready)

	order := make([]int, 0, len(indices))
	placed := make(map[int]struct{}, len(indices))
	for len(ready) > 0 {
		curr := ready[0]
		ready = ready[1:]
		order = append(order, curr)
		placed[curr] = struct{}{}
		for _, child := range children[curr] {
			inDegree[child]--
			if inDegree[child] == 0 {
				ready = insertSorted(ready, child)
			}
		}
	}

	if len(order) < len(indices) {
		rest := make([]int, 0, len(indices)-len(order))
		for _, i := range indices {
			if _, ok := placed[i]; !ok {
				rest = append(rest, i)
			}
		}
		sort.Ints(rest)
		order = append(order, rest...)
	}
	return order
}

func insertSorted(s []int, v int) []int {
	pos := sort.SearchInts(s, v)
	s = append(s, 0)
	copy(s[pos+1:], s[pos:])
	s[pos] = v
	return s
}
