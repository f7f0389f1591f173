// Package classify assigns declarations to sort categories.
package classify

import (
	"strings"

	"github.com/phobologic/pyorder/internal/graph"
	"github.com/phobologic/pyorder/internal/model"
)

// Context is the sibling scope a declaration is classified in.
type Context struct {
	Scope            model.ScopeKind
	Decls            []model.Declaration
	Graph            graph.Graph
	HelperDecorators []string
}

// Classify returns the category of ctx.Decls[i].
func Classify(ctx Context, i int) model.Category {
	d := &ctx.Decls[i]
	switch d.Kind {
	case model.Docstring:
		return model.CategoryDocstring
	case model.Import:
		return model.CategoryImport
	case model.Class:
		return model.CategoryClass
	case model.Function:
		return classifyFunction(ctx, d)
	case model.Assign:
		return classifyAssign(ctx, i)
	case model.Other:
		return model.CategoryOther
	}
	return model.CategoryOther
}

// All classifies every declaration of ctx.
func All(ctx Context) []model.Category {
	cats := make([]model.Category, len(ctx.Decls))
	for i := range ctx.Decls {
		cats[i] = Classify(ctx, i)
	}
	return cats
}

func classifyFunction(ctx Context, d *model.Declaration) model.Category {
	if ctx.Scope == model.ClassScope {
		if IsPropertyAccessor(d.Decorators) {
			return model.CategoryPropertyAccessor
		}
		return model.CategoryInstanceMethod
	}
	if strings.HasPrefix(d.Name, "_") || HasMarker(d.Decorators, ctx.HelperDecorators) {
		return model.CategoryHelperFunction
	}
	return model.CategoryPublicFunction
}

func classifyAssign(ctx Context, i int) model.Category {
	d := &ctx.Decls[i]
	if d.AttributeTarget && len(d.Targets) == 0 {
		// Attribute assignments sit between classes and functions, so they
		// may only lean on classes and on independent assignments.
		for _, dep := range ctx.Graph.DependsOn(i) {
			other := &ctx.Decls[dep]
			switch {
			case other.Kind == model.Class:
			case other.Kind == model.Assign && !other.AttributeTarget && ctx.Graph.Independent(dep):
			default:
				return model.CategoryDependentAssignment
			}
		}
		return model.CategoryAttributeAssignment
	}
	if ctx.Graph.Independent(i) {
		return model.CategoryIndependentAssignment
	}
	return model.CategoryDependentAssignment
}
