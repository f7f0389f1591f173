// Package model defines core data structures for pyorder.
package model

// Kind is the syntactic kind of a declaration.
type Kind int

const (
	Other Kind = iota
	Import
	Assign
	Function
	Class
	Docstring
)

func (k Kind) String() string {
	switch k {
	case Import:
		return "import"
	case Assign:
		return "assign"
	case Function:
		return "function"
	case Class:
		return "class"
	case Docstring:
		return "docstring"
	default:
		return "other"
	}
}

// Category is the sort class of a declaration within its scope.
// Declarations are emitted in ascending Category order.
type Category int

const (
	CategoryDocstring Category = iota
	CategoryImport
	CategoryIndependentAssignment
	CategoryClass
	CategoryAttributeAssignment
	CategoryHelperFunction
	CategoryPublicFunction
	CategoryPropertyAccessor
	CategoryInstanceMethod
	CategoryDependentAssignment
	CategoryOther
)

var categoryNames = [...]string{
	CategoryDocstring:             "docstring",
	CategoryImport:                "import",
	CategoryIndependentAssignment: "independent-assignment",
	CategoryClass:                 "class",
	CategoryAttributeAssignment:   "attribute-assignment",
	CategoryHelperFunction:        "helper-function",
	CategoryPublicFunction:        "public-function",
	CategoryPropertyAccessor:      "property-accessor",
	CategoryInstanceMethod:        "instance-method",
	CategoryDependentAssignment:   "dependent-assignment",
	CategoryOther:                 "other",
}

func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return "unknown"
	}
	return categoryNames[c]
}

// ScopeKind distinguishes module bodies from class bodies.
type ScopeKind int

const (
	ModuleScope ScopeKind = iota
	ClassScope
)

// Declaration is one statement directly inside a module or class body.
// Text is the decorated span: leading comment lines, decorators and the
// statement itself, with canonical section headers removed.
type Declaration struct {
	Kind            Kind
	Name            string
	Targets         []string
	AttributeTarget bool
	Decorators      []string
	Bases           []string
	References      []string
	// DefinitionRefs are the names a function or class statement reads when
	// it runs: decorators, defaults, annotations, bases and class bodies.
	DefinitionRefs  []string
	Text            string
	StartLine       int // 1-based, first line of Text
	EndLine         int // 1-based, last line of Text

	// Class declarations only. Head is Text up to (not including) the first
	// body line; Body holds the class members.
	Head string
	Body *Scope
}

// Defines returns the sibling names this declaration binds.
func (d *Declaration) Defines() []string {
	switch d.Kind {
	case Assign, Other:
		return d.Targets
	case Function, Class:
		if d.Name == "" {
			return nil
		}
		return []string{d.Name}
	default:
		return nil
	}
}

// Scope is the ordered list of declarations in one block.
type Scope struct {
	Kind         ScopeKind
	Declarations []Declaration
	Indent       string
	Trailer      string

	// Frozen scopes have statements sharing source lines and are emitted
	// unchanged.
	Frozen bool
}

// Module is a parsed source file.
type Module struct {
	Source []byte
	Body   *Scope
}
