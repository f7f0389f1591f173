// Package parse turns Python source into a declaration tree using tree-sitter.
package parse

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/pyorder/internal/errors"
	"github.com/phobologic/pyorder/internal/lang"
	"github.com/phobologic/pyorder/internal/model"
)

// Module parses source and returns its declaration tree.
// The parser must be created for Python. Source that does not parse cleanly
// yields a ParseFailure and no tree.
func Module(ctx context.Context, parser *sitter.Parser, source []byte) (*model.Module, error) {
	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, errors.Wrap(errors.ParseFailure, err, "parsing")
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return nil, errors.New(errors.ParseFailure, "invalid syntax near line %d", firstErrorRow(root)+1)
	}

	b := &builder{source: source, lines: SplitLines(source)}
	body := b.scope(model.ModuleScope, lang.Statements(root), 0)

	if n := len(body.Declarations); n > 0 {
		last := body.Declarations[n-1].EndLine // 1-based, so this is the next 0-based row
		body.Trailer = b.text(last, len(b.lines)-1, len(b.lines))
	} else {
		body.Trailer = b.text(0, len(b.lines)-1, len(b.lines))
	}
	if strings.TrimSpace(body.Trailer) == "" {
		body.Trailer = ""
	}

	return &model.Module{Source: source, Body: body}, nil
}

// SplitLines splits source into lines without their terminating newline.
// A trailing newline does not produce an empty final line.
func SplitLines(source []byte) []string {
	if len(source) == 0 {
		return nil
	}
	lines := strings.Split(string(source), "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

type builder struct {
	source []byte
	lines  []string
}

// scope builds the declarations for stmts. lower is the first row a leading
// comment block may extend up to.
func (b *builder) scope(kind model.ScopeKind, stmts []*sitter.Node, lower int) *model.Scope {
	s := &model.Scope{Kind: kind}
	if len(stmts) == 0 {
		return s
	}
	s.Indent = lang.LeadingIndent(b.lines[stmts[0].StartPoint().Row])

	prevEnd := lower - 1
	for i, stmt := range stmts {
		start := int(stmt.StartPoint().Row)
		end := lang.LastCodeRow(stmt)
		if start <= prevEnd {
			s.Frozen = true
		}

		first := start
		for first-1 > prevEnd && first-1 >= lower && lang.IsCommentOrBlank(b.lines[first-1]) {
			first--
		}

		d := b.declaration(stmt, i == 0)
		d.Text = b.text(first, end, start)
		d.StartLine = first + 1
		d.EndLine = end + 1
		if d.Kind == model.Class {
			b.classBody(&d, stmt, first, start)
		}
		s.Declarations = append(s.Declarations, d)

		if end > prevEnd {
			prevEnd = end
		}
	}
	return s
}

func (b *builder) declaration(stmt *sitter.Node, first bool) model.Declaration {
	switch {
	case first && lang.IsDocstring(stmt):
		return model.Declaration{Kind: model.Docstring}
	case lang.IsImport(stmt), lang.IsImportBlock(stmt):
		return model.Declaration{Kind: model.Import, Name: lang.CollapseWhitespace(lang.NodeText(stmt, b.source))}
	}

	def := stmt
	var decorators []string
	if stmt.Type() == "decorated_definition" {
		decorators = lang.Decorators(stmt, b.source)
		if inner := stmt.ChildByFieldName("definition"); inner != nil {
			def = inner
		}
	}

	switch def.Type() {
	case "function_definition":
		return model.Declaration{
			Kind:           model.Function,
			Name:           lang.DefinitionName(def, b.source),
			Decorators:     decorators,
			References:     lang.Identifiers(stmt, b.source),
			DefinitionRefs: lang.DefinitionReferences(stmt, b.source),
		}
	case "class_definition":
		return model.Declaration{
			Kind:           model.Class,
			Name:           lang.DefinitionName(def, b.source),
			Decorators:     decorators,
			Bases:          lang.ClassBases(def, b.source),
			References:     lang.Identifiers(stmt, b.source),
			DefinitionRefs: lang.DefinitionReferences(stmt, b.source),
		}
	}

	if a, ok := lang.ParseAssignment(stmt, b.source); ok {
		d := model.Declaration{
			Kind:            model.Assign,
			Targets:         a.Targets,
			AttributeTarget: a.Attribute,
		}
		for _, n := range a.RHS {
			d.References = appendUnique(d.References, lang.Identifiers(n, b.source)...)
		}
		if len(a.Targets) > 0 {
			d.Name = a.Targets[0]
		} else if left := stmt.NamedChild(0).ChildByFieldName("left"); left != nil {
			d.Name = lang.CollapseWhitespace(lang.NodeText(left, b.source))
		}
		return d
	}

	return model.Declaration{
		Kind:       model.Other,
		Targets:    lang.BoundNames(stmt, b.source),
		References: lang.Identifiers(stmt, b.source),
	}
}

// classBody fills Head and Body of a class declaration whose decorated span
// starts at row first and whose own first line is row start.
func (b *builder) classBody(d *model.Declaration, stmt *sitter.Node, first, start int) {
	def := stmt
	if stmt.Type() == "decorated_definition" {
		if inner := stmt.ChildByFieldName("definition"); inner != nil {
			def = inner
		}
	}
	block := def.ChildByFieldName("body")
	colon := lang.BodyColonRow(def)
	if block == nil {
		d.Head = d.Text
		d.Body = &model.Scope{Kind: model.ClassScope, Frozen: true}
		return
	}

	body := b.scope(model.ClassScope, lang.Statements(block), colon+1)
	if len(body.Declarations) == 0 || int(block.StartPoint().Row) <= colon {
		// Single-line body: "class A: pass".
		body.Frozen = true
		d.Head = d.Text
		d.Body = body
		return
	}
	bodyStart := body.Declarations[0].StartLine - 1
	d.Head = b.text(first, bodyStart-1, start)
	d.Body = body
}

// text joins rows [from, to]. Section header lines are dropped from the
// leading comment region, i.e. rows before codeStart.
func (b *builder) text(from, to, codeStart int) string {
	if from > to {
		return ""
	}
	var out []string
	for row := from; row <= to; row++ {
		line := b.lines[row]
		if row < codeStart && model.IsHeaderLine(line) {
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

func firstErrorRow(root *sitter.Node) int {
	stack := []*sitter.Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n.Type() == "ERROR" || n.IsMissing() {
			return int(n.StartPoint().Row)
		}
		if !n.HasError() {
			continue
		}
		for i := int(n.ChildCount()) - 1; i >= 0; i-- {
			stack = append(stack, n.Child(i))
		}
	}
	return int(root.StartPoint().Row)
}

func appendUnique(dst []string, names ...string) []string {
	for _, name := range names {
		found := false
		for _, existing := range dst {
			if existing == name {
				found = true
				break
			}
		}
		if !found {
			dst = append(dst, name)
		}
	}
	return dst
}
