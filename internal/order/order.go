// Package order computes the canonical declaration order of a module and
// renders it back to source text.
package order

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/phobologic/pyorder/internal/classify"
	"github.com/phobologic/pyorder/internal/graph"
	"github.com/phobologic/pyorder/internal/model"
)

// Options tunes the ordering.
type Options struct {
	// HelperDecorators mark module-level functions as helpers regardless of
	// their name.
	HelperDecorators []string
	// AnchorAssignments moves an independent assignment next to the helper
	// function or class that is its first user.
	AnchorAssignments bool
	// BlankLines separates module-level declarations. Class members are
	// always separated by one blank line.
	BlankLines int
}

// DefaultOptions returns the options pyorder uses when nothing is configured.
func DefaultOptions() Options {
	return Options{
		HelperDecorators:  []string{"composite"},
		AnchorAssignments: true,
		BlankLines:        1,
	}
}

// Result is the outcome of reordering one module.
type Result struct {
	Text    []byte
	Changed bool
	// Unresolved lists classes whose position could not be derived from
	// their bases; they were placed after every other class of their scope.
	Unresolved []string
}

// Reorder returns m's source with declarations in canonical order. Class
// bodies are reordered first, then the module body. Frozen modules and
// modules without declarations come back unchanged.
func Reorder(m *model.Module, opts Options) Result {
	body := m.Body
	if body == nil || body.Frozen || len(body.Declarations) == 0 {
		return Result{Text: m.Source}
	}

	r := &reorderer{opts: opts}
	text := r.scope(body, "")
	if body.Trailer != "" {
		text += "\n\n" + trimBlankLines(body.Trailer)
	}
	out := []byte(trimBlankLines(text) + "\n")

	return Result{
		Text:       out,
		Changed:    !bytes.Equal(out, m.Source),
		Unresolved: r.unresolved,
	}
}

type reorderer struct {
	opts       Options
	unresolved []string
}

// item is one declaration ready to be emitted.
type item struct {
	decl   *model.Declaration
	index  int
	cat    model.Category
	text   string
	header *model.Header
}

// scope renders the declarations of s in canonical order. owner names the
// enclosing class for diagnostics.
func (r *reorderer) scope(s *model.Scope, owner string) string {
	decls := s.Declarations
	texts := make([]string, len(decls))
	for i := range decls {
		texts[i] = trimBlankLines(r.declaration(&decls[i], owner))
	}

	g := graph.Build(decls)
	ctx := classify.Context{
		Scope:            s.Kind,
		Decls:            decls,
		Graph:            g,
		HelperDecorators: r.opts.HelperDecorators,
	}
	cats := classify.All(ctx)

	keys := r.sortKeys(decls, cats, g, owner)
	demote(cats, keys, g)

	var order []int
	var candidates []int
	anchoring := s.Kind == model.ModuleScope && r.opts.AnchorAssignments
	for i := range decls {
		if anchoring && cats[i] == model.CategoryIndependentAssignment {
			candidates = append(candidates, i)
			continue
		}
		order = append(order, i)
	}
	sort.SliceStable(order, func(a, b int) bool {
		return keys[order[a]].less(keys[order[b]])
	})

	satellites, unanchored := anchorSatellites(decls, cats, order, candidates)
	if len(unanchored) > 0 {
		order = append(order, unanchored...)
		sort.SliceStable(order, func(a, b int) bool {
			return keys[order[a]].less(keys[order[b]])
		})
	}

	items := make([]item, 0, len(decls))
	for _, i := range order {
		for _, sat := range satellites[i] {
			items = append(items, item{decl: &decls[sat], index: sat, cat: cats[i], text: texts[sat]})
		}
		items = append(items, item{decl: &decls[i], index: i, cat: cats[i], text: texts[i]})
	}

	insertHeaders(items, s.Kind)

	blank := 1
	if s.Kind == model.ModuleScope {
		blank = max(r.opts.BlankLines, 0)
	}
	return render(items, s.Indent, blank)
}

// declaration returns the text of d, reordering the body of classes.
func (r *reorderer) declaration(d *model.Declaration, owner string) string {
	if d.Kind != model.Class || d.Body == nil || d.Body.Frozen || len(d.Body.Declarations) == 0 {
		return d.Text
	}
	name := d.Name
	if owner != "" {
		name = owner + "." + d.Name
	}
	return d.Head + "\n" + r.scope(d.Body, name)
}

// sortKey orders declarations within a scope: by category, then by a
// category-specific position, then by name, accessor kind and finally
// declaration order.
type sortKey struct {
	cat   model.Category
	pos   int
	name  string
	sub   int
	index int
}

func (k sortKey) less(o sortKey) bool {
	if k.cat != o.cat {
		return k.cat < o.cat
	}
	if k.pos != o.pos {
		return k.pos < o.pos
	}
	if k.name != o.name {
		return k.name < o.name
	}
	if k.sub != o.sub {
		return k.sub < o.sub
	}
	return k.index < o.index
}

func (r *reorderer) sortKeys(decls []model.Declaration, cats []model.Category, g graph.Graph, owner string) []sortKey {
	keys := make([]sortKey, len(decls))

	classPos := make(map[string]int)
	order, unresolved := graph.InheritanceOrder(decls)
	for i, name := range order {
		classPos[name] = i
	}
	for i, name := range unresolved {
		classPos[name] = len(order) + i
		qualified := name
		if owner != "" {
			qualified = owner + "." + name
		}
		r.unresolved = append(r.unresolved, fmt.Sprintf("class %s: inheritance cycle", qualified))
	}

	var dependent []int
	for i := range decls {
		if cats[i] == model.CategoryDependentAssignment {
			dependent = append(dependent, i)
		}
	}
	depPos := make(map[int]int, len(dependent))
	for pos, i := range graph.DependencyOrder(g, dependent) {
		depPos[i] = pos
	}

	for i := range decls {
		d := &decls[i]
		k := sortKey{cat: cats[i], index: i}
		switch cats[i] {
		case model.CategoryClass:
			k.pos = classPos[d.Name]
		case model.CategoryHelperFunction, model.CategoryPublicFunction, model.CategoryInstanceMethod:
			k.name = d.Name
		case model.CategoryPropertyAccessor:
			k.name = d.Name
			k.sub = classify.Accessor(d.Decorators)
		case model.CategoryDependentAssignment:
			k.pos = depPos[i]
		default:
			k.pos = i
		}
		keys[i] = k
	}
	return keys
}

// demote moves every declaration that would sort ahead of a sibling it
// reads when it runs to the end of the scope, where such declarations keep
// their source order among the other statements. Demotion repeats until no
// declaration precedes one of its dependencies.
func demote(cats []model.Category, keys []sortKey, g graph.Graph) {
	for changed := true; changed; {
		changed = false
		for i := range keys {
			if cats[i] == model.CategoryOther {
				continue
			}
			for _, dep := range g.DependsOn(i) {
				if keys[dep].less(keys[i]) {
					continue
				}
				cats[i] = model.CategoryOther
				keys[i] = sortKey{cat: model.CategoryOther, pos: i, index: i}
				changed = true
				break
			}
		}
	}
}

// anchorSatellites finds, for each candidate independent assignment, the
// first declaration in order that references one of its targets. When that
// declaration is a helper function or a class, the assignment becomes its
// satellite and is emitted right before it. Candidates without such an anchor
// are returned in unanchored.
func anchorSatellites(decls []model.Declaration, cats []model.Category, order, candidates []int) (map[int][]int, []int) {
	satellites := make(map[int][]int)
	var unanchored []int
	for _, c := range candidates {
		anchor := -1
		for _, i := range order {
			if references(&decls[i], decls[c].Targets) {
				anchor = i
				break
			}
		}
		if anchor >= 0 && (cats[anchor] == model.CategoryHelperFunction || cats[anchor] == model.CategoryClass) {
			satellites[anchor] = append(satellites[anchor], c)
			continue
		}
		unanchored = append(unanchored, c)
	}
	return satellites, unanchored
}

func references(d *model.Declaration, names []string) bool {
	for _, ref := range d.References {
		for _, name := range names {
			if ref == name {
				return true
			}
		}
	}
	return false
}

// insertHeaders attaches section headers to the first item of each section.
func insertHeaders(items []item, kind model.ScopeKind) {
	has := make(map[model.Category]bool)
	for i := range items {
		has[items[i].cat] = true
	}

	first := func(cat model.Category) int {
		for i := range items {
			if items[i].cat == cat {
				return i
			}
		}
		return -1
	}
	attach := func(cat model.Category, h *model.Header) {
		if i := first(cat); i >= 0 {
			items[i].header = h
		}
	}

	switch kind {
	case model.ModuleScope:
		if has[model.CategoryHelperFunction] {
			attach(model.CategoryHelperFunction, &model.HelpersHeader)
			attach(model.CategoryPublicFunction, &model.MainHeader)
		}
	case model.ClassScope:
		if has[model.CategoryPropertyAccessor] {
			attach(model.CategoryPropertyAccessor, &model.PropertiesHeader)
			attach(model.CategoryInstanceMethod, &model.InstanceMethodsHeader)
		}
	}
}

// trimBlankLines drops whitespace-only lines at both ends of s.
func trimBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	start, end := 0, len(lines)
	for start < end && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	for end > start && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	return strings.Join(lines[start:end], "\n")
}
