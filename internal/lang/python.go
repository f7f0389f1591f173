package lang

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

func init() {
	Languages["python"] = &Language{
		Name:       "python",
		Extensions: []string{".py", ".pyi"},
		lang:       python.GetLanguage(),
	}
}

// Python returns the registered Python language.
func Python() *Language {
	return Languages["python"]
}

// Statements returns the non-comment named children of a module or block node.
func Statements(node *sitter.Node) []*sitter.Node {
	var stmts []*sitter.Node
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child.Type() == "comment" {
			continue
		}
		stmts = append(stmts, child)
	}
	return stmts
}

// LastCodeRow returns the 0-based row of the last non-comment token under node.
// Comments trailing a block are attached to it by the grammar but belong to
// whatever follows.
func LastCodeRow(node *sitter.Node) int {
	n := node
	for {
		var last *sitter.Node
		for i := int(n.ChildCount()) - 1; i >= 0; i-- {
			child := n.Child(i)
			if child.Type() != "comment" {
				last = child
				break
			}
		}
		if last == nil {
			return endRow(n)
		}
		n = last
	}
}

func endRow(n *sitter.Node) int {
	end := n.EndPoint()
	if end.Column == 0 && end.Row > n.StartPoint().Row {
		return int(end.Row) - 1
	}
	return int(end.Row)
}

// Identifiers returns the distinct identifier names under node in source order.
func Identifiers(node *sitter.Node, source []byte) []string {
	if node == nil {
		return nil
	}
	seen := make(map[string]struct{})
	var names []string
	stack := []*sitter.Node{node}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n.Type() == "identifier" {
			name := NodeText(n, source)
			if _, ok := seen[name]; !ok {
				seen[name] = struct{}{}
				names = append(names, name)
			}
			continue
		}
		// Push in reverse so children are visited left to right.
		for i := int(n.NamedChildCount()) - 1; i >= 0; i-- {
			stack = append(stack, n.NamedChild(i))
		}
	}
	return names
}

// DefinitionName returns the name of a function_definition or class_definition.
func DefinitionName(node *sitter.Node, source []byte) string {
	if name := node.ChildByFieldName("name"); name != nil {
		return NodeText(name, source)
	}
	return ""
}

// Decorators returns the decorator expressions of a decorated_definition with
// the leading "@" and any call arguments removed, e.g. "property",
// "value.setter", "functools.lru_cache".
func Decorators(node *sitter.Node, source []byte) []string {
	var decorators []string
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child.Type() != "decorator" {
			continue
		}
		expr := firstNamedNonComment(child)
		if expr == nil {
			continue
		}
		if expr.Type() == "call" {
			if fn := expr.ChildByFieldName("function"); fn != nil {
				expr = fn
			}
		}
		decorators = append(decorators, CollapseWhitespace(NodeText(expr, source)))
	}
	return decorators
}

// ClassBases returns the positional superclasses of a class_definition as
// written, e.g. "Base" or "abc.ABC". Keyword arguments such as metaclass=
// are skipped.
func ClassBases(node *sitter.Node, source []byte) []string {
	args := node.ChildByFieldName("superclasses")
	if args == nil {
		return nil
	}
	var bases []string
	for i := 0; i < int(args.NamedChildCount()); i++ {
		child := args.NamedChild(i)
		switch child.Type() {
		case "identifier", "attribute":
			bases = append(bases, CollapseWhitespace(NodeText(child, source)))
		}
	}
	return bases
}

// BodyColonRow returns the row of the ":" ending a class header.
func BodyColonRow(node *sitter.Node) int {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() == ":" {
			return int(child.StartPoint().Row)
		}
	}
	return int(node.StartPoint().Row)
}

// IsDocstring reports whether stmt is a bare string expression statement.
func IsDocstring(stmt *sitter.Node) bool {
	if stmt.Type() != "expression_statement" || stmt.NamedChildCount() != 1 {
		return false
	}
	switch stmt.NamedChild(0).Type() {
	case "string", "concatenated_string":
		return true
	}
	return false
}

// IsImport reports whether stmt is an import statement.
func IsImport(stmt *sitter.Node) bool {
	switch stmt.Type() {
	case "import_statement", "import_from_statement", "future_import_statement":
		return true
	}
	return false
}

// IsImportBlock reports whether stmt is a try or if statement whose body
// consists solely of imports, e.g. an optional dependency guarded by
// ImportError or a TYPE_CHECKING block.
func IsImportBlock(stmt *sitter.Node) bool {
	var body *sitter.Node
	switch stmt.Type() {
	case "try_statement":
		body = stmt.ChildByFieldName("body")
	case "if_statement":
		body = stmt.ChildByFieldName("consequence")
	}
	if body == nil {
		return false
	}
	stmts := Statements(body)
	if len(stmts) == 0 {
		return false
	}
	for _, s := range stmts {
		if !IsImport(s) {
			return false
		}
	}
	return true
}

// Assignment describes the binding side of an assignment statement.
type Assignment struct {
	Targets   []string
	Attribute bool
	RHS       []*sitter.Node
	Augmented bool
}

// ParseAssignment inspects an expression_statement and reports the
// assignment it holds, if any. Chained assignments (a = b = 1) and tuple
// unpacking contribute every simple name as a target.
func ParseAssignment(stmt *sitter.Node, source []byte) (Assignment, bool) {
	if stmt.Type() != "expression_statement" || stmt.NamedChildCount() != 1 {
		return Assignment{}, false
	}
	node := stmt.NamedChild(0)
	var a Assignment
	switch node.Type() {
	case "assignment":
		for node != nil && node.Type() == "assignment" {
			if left := node.ChildByFieldName("left"); left != nil {
				collectTargets(left, source, &a)
			}
			if typ := node.ChildByFieldName("type"); typ != nil {
				a.RHS = append(a.RHS, typ)
			}
			right := node.ChildByFieldName("right")
			if right == nil {
				break
			}
			if right.Type() != "assignment" {
				a.RHS = append(a.RHS, right)
			}
			node = right
		}
	case "augmented_assignment":
		a.Augmented = true
		if left := node.ChildByFieldName("left"); left != nil {
			collectTargets(left, source, &a)
			a.RHS = append(a.RHS, left)
		}
		if right := node.ChildByFieldName("right"); right != nil {
			a.RHS = append(a.RHS, right)
		}
	default:
		return Assignment{}, false
	}
	return a, true
}

func collectTargets(n *sitter.Node, source []byte, a *Assignment) {
	switch n.Type() {
	case "identifier":
		a.Targets = append(a.Targets, NodeText(n, source))
	case "pattern_list", "tuple_pattern", "list_pattern", "tuple", "list",
		"list_splat_pattern", "list_splat", "parenthesized_expression", "expression_list",
		"as_pattern_target":
		for i := 0; i < int(n.NamedChildCount()); i++ {
			collectTargets(n.NamedChild(i), source, a)
		}
	case "comment":
	default:
		// attribute, subscript and anything else that is not a bare name;
		// the object being assigned into is itself a reference
		a.Attribute = true
		a.RHS = append(a.RHS, n)
	}
}

// BoundNames returns the names a compound statement such as if, try, for
// or with binds in the enclosing scope: assignment, loop and with targets,
// except aliases, walrus names, imports and nested definitions. Function,
// class and lambda bodies and comprehensions are not entered.
func BoundNames(node *sitter.Node, source []byte) []string {
	var names []string
	seen := make(map[string]struct{})
	add := func(ns ...string) {
		for _, name := range ns {
			if _, ok := seen[name]; ok || name == "" {
				continue
			}
			seen[name] = struct{}{}
			names = append(names, name)
		}
	}

	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		switch n.Type() {
		case "function_definition", "class_definition":
			add(DefinitionName(n, source))
			return
		case "lambda", "list_comprehension", "set_comprehension",
			"dictionary_comprehension", "generator_expression":
			return
		case "import_statement", "import_from_statement":
			add(importedNames(n, source)...)
			return
		case "assignment", "augmented_assignment", "for_statement":
			if left := n.ChildByFieldName("left"); left != nil {
				add(targetNames(left, source)...)
			}
		case "named_expression":
			if name := n.ChildByFieldName("name"); name != nil {
				add(NodeText(name, source))
			}
		case "as_pattern", "with_item":
			if alias := n.ChildByFieldName("alias"); alias != nil {
				add(targetNames(alias, source)...)
			}
		case "except_clause":
			// Older grammars spell "except E as e" without an as_pattern.
			afterAs := false
			for i := 0; i < int(n.ChildCount()); i++ {
				child := n.Child(i)
				if child.Type() == "as" {
					afterAs = true
					continue
				}
				if afterAs && child.IsNamed() {
					add(targetNames(child, source)...)
					break
				}
			}
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			walk(n.NamedChild(i))
		}
	}
	walk(node)
	return names
}

func targetNames(n *sitter.Node, source []byte) []string {
	var a Assignment
	collectTargets(n, source, &a)
	return a.Targets
}

// importedNames returns the names an import statement binds: the alias,
// the imported name, or the first segment of a plain "import a.b".
func importedNames(n *sitter.Node, source []byte) []string {
	module := n.ChildByFieldName("module_name")
	var names []string
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if module != nil && child.StartByte() == module.StartByte() {
			continue
		}
		switch child.Type() {
		case "aliased_import":
			if alias := child.ChildByFieldName("alias"); alias != nil {
				names = append(names, NodeText(alias, source))
			}
		case "dotted_name":
			name := NodeText(child, source)
			if n.Type() == "import_statement" {
				name, _, _ = strings.Cut(name, ".")
			}
			names = append(names, name)
		}
	}
	return names
}

// DefinitionReferences returns the names a function or class statement reads
// while it executes, before any call: decorators, default values,
// annotations and bases. For classes the body statements count as well,
// minus the names the body binds itself and the bodies of its methods.
// Attribute chains contribute only their root object.
func DefinitionReferences(stmt *sitter.Node, source []byte) []string {
	r := &refCollector{source: source, seen: make(map[string]struct{})}
	r.definition(stmt)
	return r.names
}

type refCollector struct {
	source []byte
	names  []string
	seen   map[string]struct{}
	local  map[string]struct{}
}

func (r *refCollector) definition(n *sitter.Node) {
	if n.Type() == "decorated_definition" {
		for i := 0; i < int(n.NamedChildCount()); i++ {
			if child := n.NamedChild(i); child.Type() == "decorator" {
				r.expression(child)
			}
		}
		if def := n.ChildByFieldName("definition"); def != nil {
			r.definition(def)
		}
		return
	}

	switch n.Type() {
	case "function_definition":
		if params := n.ChildByFieldName("parameters"); params != nil {
			for i := 0; i < int(params.NamedChildCount()); i++ {
				param := params.NamedChild(i)
				for _, field := range []string{"value", "type"} {
					if v := param.ChildByFieldName(field); v != nil {
						r.expression(v)
					}
				}
			}
		}
		if ret := n.ChildByFieldName("return_type"); ret != nil {
			r.expression(ret)
		}
	case "class_definition":
		if bases := n.ChildByFieldName("superclasses"); bases != nil {
			r.expression(bases)
		}
		body := n.ChildByFieldName("body")
		if body == nil {
			return
		}
		outer := r.local
		r.local = make(map[string]struct{})
		for _, name := range BoundNames(body, r.source) {
			r.local[name] = struct{}{}
		}
		for _, stmt := range Statements(body) {
			r.expression(stmt)
		}
		r.local = outer
	}
}

func (r *refCollector) expression(n *sitter.Node) {
	switch n.Type() {
	case "identifier":
		name := NodeText(n, r.source)
		if _, ok := r.local[name]; ok {
			return
		}
		if _, ok := r.seen[name]; !ok {
			r.seen[name] = struct{}{}
			r.names = append(r.names, name)
		}
		return
	case "attribute":
		if obj := n.ChildByFieldName("object"); obj != nil {
			r.expression(obj)
		}
		return
	case "keyword_argument":
		if v := n.ChildByFieldName("value"); v != nil {
			r.expression(v)
		}
		return
	case "function_definition", "class_definition", "decorated_definition":
		r.definition(n)
		return
	case "lambda", "import_statement", "import_from_statement":
		return
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		r.expression(n.NamedChild(i))
	}
}

func firstNamedNonComment(n *sitter.Node) *sitter.Node {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child.Type() != "comment" {
			return child
		}
	}
	return nil
}

// IsCommentOrBlank reports whether a source line holds only a comment or whitespace.
func IsCommentOrBlank(line string) bool {
	trimmed := strings.TrimSpace(line)
	return trimmed == "" || strings.HasPrefix(trimmed, "#")
}

// LeadingIndent returns the whitespace prefix of line.
func LeadingIndent(line string) string {
	return line[:len(line)-len(strings.TrimLeft(line, " \t"))]
}
