package graph

import (
	"sort"

	"github.com/phobologic/pyorder/internal/model"
)

// InheritanceOrder returns the sibling class names of decls ordered so that
// every base class precedes its subclasses. Among classes that are ready at
// the same time the alphabetically smallest comes first.
//
// Bases that are not sibling classes (builtins, imports, attribute paths) add
// no constraint. Classes caught in an inheritance cycle cannot be ordered and
// are returned, sorted, in unresolved instead of order.
func InheritanceOrder(decls []model.Declaration) (order, unresolved []string) {
	classes := make(map[string]struct{})
	for i := range decls {
		if decls[i].Kind == model.Class && decls[i].Name != "" {
			classes[decls[i].Name] = struct{}{}
		}
	}
	if len(classes) == 0 {
		return nil, nil
	}

	inDegree := make(map[string]int, len(classes))
	children := make(map[string][]string)
	type edge struct{ base, sub string }
	seen := make(map[edge]struct{})
	for i := range decls {
		d := &decls[i]
		if d.Kind != model.Class {
			continue
		}
		for _, base := range d.Bases {
			if _, ok := classes[base]; !ok || base == d.Name {
				continue
			}
			e := edge{base, d.Name}
			if _, dup := seen[e]; dup {
				continue
			}
			seen[e] = struct{}{}
			inDegree[d.Name]++
			children[base] = append(children[base], d.Name)
		}
	}

	var ready []string
	for name := range classes {
		if inDegree[name] == 0 {
			ready = append(ready, name)
		}
	}
	sort.Strings(ready)

	for len(ready) > 0 {
		curr := ready[0]
		ready = ready[1:]
		order = append(order, curr)
		for _, child := range children[curr] {
			inDegree[child]--
			if inDegree[child] == 0 {
				pos := sort.SearchStrings(ready, child)
				ready = append(ready, "")
				copy(ready[pos+1:], ready[pos:])
				ready[pos] = child
			}
		}
	}

	for name := range classes {
		if inDegree[name] > 0 {
			unresolved = append(unresolved, name)
		}
	}
	sort.Strings(unresolved)
	return order, unresolved
}
