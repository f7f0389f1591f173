package parse

import (
	"context"
	"slices"
	"testing"

	"github.com/phobologic/pyorder/internal/errors"
	"github.com/phobologic/pyorder/internal/lang"
	"github.com/phobologic/pyorder/internal/model"
)

func setup(t *testing.T) func(source string) *model.Module {
	t.Helper()
	p := lang.Python().NewParser()
	return func(source string) *model.Module {
		t.Helper()
		m, err := Module(context.Background(), p, []byte(source))
		if err != nil {
			t.Fatalf("Module: %v", err)
		}
		return m
	}
}

func TestModuleKinds(t *testing.T) {
	t.Parallel()
	parse := setup(t)

	m := parse(`"""Module doc."""
import os
try:
    import numpy
except ImportError:
    numpy = None
x = 1
def f():
    pass
class C:
    pass
print(x)
`)
	var kinds []model.Kind
	for _, d := range m.Body.Declarations {
		kinds = append(kinds, d.Kind)
	}
	want := []model.Kind{model.Docstring, model.Import, model.Import, model.Assign, model.Function, model.Class, model.Other}
	if !slices.Equal(kinds, want) {
		t.Errorf("kinds = %v, want %v", kinds, want)
	}
}

func TestCompoundStatementBindings(t *testing.T) {
	t.Parallel()
	parse := setup(t)

	m := parse(`if FAST:
    LIMIT = 10
else:
    LIMIT = 1
@cache(LIMIT)
def f(n=LIMIT):
    return g(n)
`)
	other, fn := m.Body.Declarations[0], m.Body.Declarations[1]
	if other.Kind != model.Other || !slices.Equal(other.Defines(), []string{"LIMIT"}) {
		t.Errorf("if statement: %v defines %v, want LIMIT", other.Kind, other.Defines())
	}
	if !slices.Equal(fn.DefinitionRefs, []string{"cache", "LIMIT"}) {
		t.Errorf("DefinitionRefs = %v, want [cache LIMIT]", fn.DefinitionRefs)
	}
}

func TestDocstringOnlyWhenFirst(t *testing.T) {
	t.Parallel()
	parse := setup(t)

	m := parse("import os\n\"\"\"Not a docstring.\"\"\"\n")
	if got := m.Body.Declarations[1].Kind; got != model.Other {
		t.Errorf("second string kind = %v, want other", got)
	}
}

func TestDecoratedSpan(t *testing.T) {
	t.Parallel()
	parse := setup(t)

	m := parse(`import os

# leading comment
@decorator
def f():
    pass
`)
	d := m.Body.Declarations[1]
	if d.Name != "f" || d.Kind != model.Function {
		t.Fatalf("got %v %q", d.Kind, d.Name)
	}
	want := "\n# leading comment\n@decorator\ndef f():\n    pass"
	if d.Text != want {
		t.Errorf("Text = %q, want %q", d.Text, want)
	}
	if d.StartLine != 2 || d.EndLine != 6 {
		t.Errorf("lines = %d-%d, want 2-6", d.StartLine, d.EndLine)
	}
	if !slices.Equal(d.Decorators, []string{"decorator"}) {
		t.Errorf("Decorators = %v", d.Decorators)
	}
}

func TestHeadersStripped(t *testing.T) {
	t.Parallel()
	parse := setup(t)

	m := parse(`import os

# --- Helpers --- #
# --------------- #
# keeps this comment
def _h():
    pass

# API Functions #
# ------------- #
def g():
    pass
`)
	h := m.Body.Declarations[1]
	if h.Text != "\n# keeps this comment\ndef _h():\n    pass" {
		t.Errorf("helper Text = %q", h.Text)
	}
	g := m.Body.Declarations[2]
	if g.Text != "\ndef g():\n    pass" {
		t.Errorf("g Text = %q", g.Text)
	}
}

func TestHeaderInsideBodyKept(t *testing.T) {
	t.Parallel()
	parse := setup(t)

	src := "def f():\n    # --- Main --- #\n    return 1\n"
	m := parse(src)
	if got := m.Body.Declarations[0].Text; got != "def f():\n    # --- Main --- #\n    return 1" {
		t.Errorf("Text = %q", got)
	}
}

func TestAssignments(t *testing.T) {
	t.Parallel()
	parse := setup(t)

	m := parse(`a, b = 1, 2
c = d = a
Foo.attr = b
`)
	decls := m.Body.Declarations
	if !slices.Equal(decls[0].Targets, []string{"a", "b"}) || decls[0].Name != "a" {
		t.Errorf("tuple: %+v", decls[0])
	}
	if !slices.Equal(decls[1].Targets, []string{"c", "d"}) || !slices.Equal(decls[1].References, []string{"a"}) {
		t.Errorf("chained: %+v", decls[1])
	}
	attr := decls[2]
	if !attr.AttributeTarget || len(attr.Targets) != 0 || attr.Name != "Foo.attr" {
		t.Errorf("attribute: %+v", attr)
	}
	if !slices.Equal(attr.References, []string{"Foo", "attr", "b"}) {
		t.Errorf("attribute references = %v", attr.References)
	}
	if got := decls[0].Defines(); !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("Defines = %v", got)
	}
}

func TestClassBody(t *testing.T) {
	t.Parallel()
	parse := setup(t)

	m := parse(`@dataclass
class Foo(Base, metaclass=Meta):
    """Doc."""

    x = 1

    def m(self):
        return self.x
`)
	c := m.Body.Declarations[0]
	if c.Kind != model.Class || c.Name != "Foo" {
		t.Fatalf("got %v %q", c.Kind, c.Name)
	}
	if c.Head != "@dataclass\nclass Foo(Base, metaclass=Meta):" {
		t.Errorf("Head = %q", c.Head)
	}
	if !slices.Equal(c.Bases, []string{"Base"}) {
		t.Errorf("Bases = %v", c.Bases)
	}
	body := c.Body
	if body == nil || body.Kind != model.ClassScope || body.Frozen {
		t.Fatalf("Body = %+v", body)
	}
	if body.Indent != "    " {
		t.Errorf("Indent = %q", body.Indent)
	}
	var kinds []model.Kind
	for _, d := range body.Declarations {
		kinds = append(kinds, d.Kind)
	}
	if !slices.Equal(kinds, []model.Kind{model.Docstring, model.Assign, model.Function}) {
		t.Errorf("body kinds = %v", kinds)
	}
	if got := body.Declarations[1].Text; got != "\n    x = 1" {
		t.Errorf("member Text = %q", got)
	}
}

func TestFrozenScopes(t *testing.T) {
	t.Parallel()
	parse := setup(t)

	if m := parse("import a; import b\n"); !m.Body.Frozen {
		t.Error("module with shared line should be frozen")
	}

	m := parse("class A: pass\n\nx = 1\n")
	if m.Body.Frozen {
		t.Error("module should not be frozen")
	}
	c := m.Body.Declarations[0]
	if !c.Body.Frozen || c.Head != "class A: pass" {
		t.Errorf("one-line class: frozen=%v head=%q", c.Body.Frozen, c.Head)
	}
}

func TestTrailer(t *testing.T) {
	t.Parallel()
	parse := setup(t)

	m := parse("x = 1\n\n# trailing\n# comments\n")
	if m.Body.Trailer != "\n# trailing\n# comments" {
		t.Errorf("Trailer = %q", m.Body.Trailer)
	}

	m = parse("x = 1\n\n\n")
	if m.Body.Trailer != "" {
		t.Errorf("blank Trailer = %q", m.Body.Trailer)
	}
}

func TestParseFailure(t *testing.T) {
	t.Parallel()

	p := lang.Python().NewParser()
	_, err := Module(context.Background(), p, []byte("def f(:\n    pass\n"))
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, errors.ParseFailure) {
		t.Errorf("code = %q, want %q", errors.GetCode(err), errors.ParseFailure)
	}
}

func TestEmptyModule(t *testing.T) {
	t.Parallel()
	parse := setup(t)

	m := parse("")
	if len(m.Body.Declarations) != 0 || m.Body.Trailer != "" {
		t.Errorf("empty module = %+v", m.Body)
	}

	m = parse("# only a comment\n")
	if m.Body.Trailer != "# only a comment" {
		t.Errorf("Trailer = %q", m.Body.Trailer)
	}
}

func TestSplitLines(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"a", []string{"a"}},
		{"a\n", []string{"a"}},
		{"a\n\nb\n", []string{"a", "", "b"}},
	}
	for _, tc := range tests {
		if got := SplitLines([]byte(tc.in)); !slices.Equal(got, tc.want) {
			t.Errorf("SplitLines(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
