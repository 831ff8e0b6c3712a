package elab

// This file defines the structural AST consumed by the engine. It is the
// contract with the (external) parser: definitions, body statements, and
// expressions, already lifted out of textual syntax.

// CompKind is the component kind of a definition.
type CompKind int

const (
	CompAddrmap CompKind = iota
	CompRegfile
	CompReg
	CompField
	CompMem
	CompSignal
)

func (k CompKind) String() string {
	switch k {
	case CompAddrmap:
		return "addrmap"
	case CompRegfile:
		return "regfile"
	case CompReg:
		return "reg"
	case CompField:
		return "field"
	case CompMem:
		return "mem"
	case CompSignal:
		return "signal"
	}
	return "unknown"
}

// ComponentDef is a named component template: formal parameters plus an
// ordered body of instantiation and assignment statements. Definitions are
// registered once and read-only thereafter.
type ComponentDef struct {
	Name    string
	Kind    CompKind
	Formals []Formal
	Body    []Stmt
}

// Formal declares one formal parameter. A nil Default makes the parameter
// required: every instantiation site must override it.
type Formal struct {
	Name    string
	Type    TypeRef
	Default Expr
}

// Stmt is a sealed interface over the body statement forms.
type Stmt interface{ isStmt() }

// InstStmt instantiates a sub-component. Extent, when non-nil, declares an
// instance array; it is evaluated against the enclosing environment and
// must yield a non-negative integer.
type InstStmt struct {
	Def       string
	Name      string
	Overrides []Override
	Extent    Expr
}

// Override is one caller-side named parameter binding, e.g. `.SIZE(16)`.
type Override struct {
	Formal string
	Value  Expr
}

// AssignStmt assigns a property. An empty Target assigns on the component
// being specialized; otherwise Target names a previously instantiated
// sub-component in the same body.
type AssignStmt struct {
	Target string
	Prop   string
	Value  Expr
}

// LocalStmt binds a named local value visible to later statements in the
// same body.
type LocalStmt struct {
	Name  string
	Value Expr
}

func (InstStmt) isStmt()   {}
func (AssignStmt) isStmt() {}
func (LocalStmt) isStmt()  {}

// ---------------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------------

// Expr is a sealed interface over the expression forms.
type Expr interface{ isExpr() }

type IntLit struct{ Val int64 }

type BoolLit struct{ Val bool }

type StrLit struct{ Val string }

// EnumLit references a builtin enum member, e.g. AccessType::rw.
type EnumLit struct {
	Type   string
	Member string
}

// Ref looks up a name in the evaluation scope: a formal parameter, a local,
// or a previously instantiated sub-component.
type Ref struct{ Name string }

// Member accesses a struct field: Base must evaluate to a struct instance
// declaring Field.
type Member struct {
	Base  Expr
	Field string
}

// Index accesses an array element: Base must evaluate to an array and
// Index to a non-negative integer within range.
type Index struct {
	Base  Expr
	Index Expr
}

// StructLit constructs a struct instance: `Type'{field: expr, ...}`.
// Fields may appear in any order; all declared members must be present.
type StructLit struct {
	Type   string
	Fields []FieldInit
}

type FieldInit struct {
	Name  string
	Value Expr
}

// ArrayLit constructs an array: `'{e1, e2, ...}`. The empty literal is
// permitted where a dynamically-sized array type is declared.
type ArrayLit struct{ Elems []Expr }

// Binary applies an integer, relational, logical, or shift operator.
type Binary struct {
	Op          string
	Left, Right Expr
}

// Unary applies +, -, ~ or !.
type Unary struct {
	Op      string
	Operand Expr
}

// Ternary is the conditional operator `cond ? then : else`.
type Ternary struct {
	Cond, Then, Else Expr
}

func (IntLit) isExpr()    {}
func (BoolLit) isExpr()   {}
func (StrLit) isExpr()    {}
func (EnumLit) isExpr()   {}
func (Ref) isExpr()       {}
func (Member) isExpr()    {}
func (Index) isExpr()     {}
func (StructLit) isExpr() {}
func (ArrayLit) isExpr()  {}
func (Binary) isExpr()    {}
func (Unary) isExpr()     {}
func (Ternary) isExpr()   {}

// collectRefs appends every Ref name reachable from e, in evaluation order.
// Used by the binder to detect forward references in default expressions.
func collectRefs(e Expr, names []string) []string {
	switch x := e.(type) {
	case Ref:
		names = append(names, x.Name)
	case Member:
		names = collectRefs(x.Base, names)
	case Index:
		names = collectRefs(x.Base, names)
		names = collectRefs(x.Index, names)
	case StructLit:
		for _, f := range x.Fields {
			names = collectRefs(f.Value, names)
		}
	case ArrayLit:
		for _, el := range x.Elems {
			names = collectRefs(el, names)
		}
	case Binary:
		names = collectRefs(x.Left, names)
		names = collectRefs(x.Right, names)
	case Unary:
		names = collectRefs(x.Operand, names)
	case Ternary:
		names = collectRefs(x.Cond, names)
		names = collectRefs(x.Then, names)
		names = collectRefs(x.Else, names)
	}
	return names
}
