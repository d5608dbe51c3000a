package hir

// Span locates a node in source text for diagnostics (spec §7); parsing
// owns construction, MIR only carries it through to diag.Error sites.
type Span struct {
	File        string
	Line, Col   int
	EndLine     int
	EndCol      int
}

// BinOp enumerates binary operators the lowerer recognizes (spec §4.2's
// operator-expression lowering table).
type BinOp int

const (
	BinAdd BinOp = iota
	BinSub
	BinMul
	BinDiv
	BinRem
	BinAnd // bitwise / short-circuit desugars to If, this is bitwise &
	BinOr  // bitwise |
	BinXor
	BinShl
	BinShr
	BinEq
	BinNe
	BinLt
	BinLe
	BinGt
	BinGe
)

// UnOp enumerates unary operators.
type UnOp int

const (
	UnNeg UnOp = iota
	UnNot
)

// Expr is a typed HIR expression node. Every variant below corresponds to
// a construct spec §4.2 names as a lowering target; the set is closed and
// the lowerer's dispatch switch in lower.go must be total over it.
type Expr interface {
	exprNode()
	Span() Span
	Type() *TypeRef
}

type exprBase struct {
	span Span
	ty   *TypeRef
}

func (exprBase) exprNode()         {}
func (e exprBase) Span() Span      { return e.span }
func (e exprBase) Type() *TypeRef  { return e.ty }

// Block is a sequence of statements ending in an optional tail expression.
type Block struct {
	exprBase
	Stmts []Stmt
	Tail  Expr // nil if the block evaluates to ()
}

// Stmt is one statement inside a Block.
type Stmt interface{ stmtNode() }

type stmtBase struct{}

func (stmtBase) stmtNode() {}

// LetStmt introduces a binding, optionally destructured through Pattern.
type LetStmt struct {
	stmtBase
	Span    Span
	Pat     Pattern
	Type    *TypeRef
	Init    Expr // nil for `let x: T;` with no initializer
	ElseArm *Block // `let ... else { ... }` divergent fallback, nil if absent
}

// ExprStmt is a bare expression-statement (its value is dropped).
type ExprStmt struct {
	stmtBase
	Value Expr
}

// Return evaluates Value (or nothing, for `return;`) and exits the function.
type Return struct {
	exprBase
	Value Expr // nil for a bare `return;`
}

// Loop is an unconditional loop; exits only through Break/Return/divergence.
type Loop struct {
	exprBase
	Label string // "" if unlabeled
	Body  *Block
}

// Break exits the nearest (or Label-named) enclosing Loop, optionally
// yielding Value as that loop's result.
type Break struct {
	exprBase
	Label string
	Value Expr // nil if the loop has unit result type
}

// Continue restarts the nearest (or Label-named) enclosing Loop.
type Continue struct {
	exprBase
	Label string
}

// If is a conditional; Else is nil for a statement-position `if` with no
// else branch (result type is then unit).
type If struct {
	exprBase
	Cond Expr
	Then *Block
	Else Expr // *Block or *If (else-if chain), or nil
}

// Match compiles to either the SIMPLE or DECISION TREE strategy per
// spec §4.2.2, chosen by the lowerer, not recorded on this node.
type Match struct {
	exprBase
	Scrutinee Expr
	Arms      []MatchArm
}

// MatchArm is one `pattern [if guard] => body` arm.
type MatchArm struct {
	Pat   Pattern
	Guard Expr // nil if unguarded
	Body  Expr
}

// Assign is `place = value` or a compound assignment (`place += value`,
// in which case Op is set and the lowerer expands it to a read-modify-write).
type Assign struct {
	exprBase
	Place Expr
	Value Expr
	Op    BinOp
	IsOp  bool // true for compound assignment
}

// BinOpExpr is a binary operator application.
type BinOpExpr struct {
	exprBase
	Op          BinOp
	Left, Right Expr
}

// UnOpExpr is a unary operator application.
type UnOpExpr struct {
	exprBase
	Op      UnOp
	Operand Expr
}

// LogicalAnd/LogicalOr short-circuit and desugar to If in the lowerer
// rather than BinOpExpr, since they don't always evaluate both operands.
type LogicalAnd struct {
	exprBase
	Left, Right Expr
}

type LogicalOr struct {
	exprBase
	Left, Right Expr
}

// Field projects a named or positional field off a struct/tuple/union place.
type Field struct {
	exprBase
	Base Expr
	Name string
}

// Index projects a slice/array element by a dynamic index.
type Index struct {
	exprBase
	Base, Idx Expr
}

// Deref dereferences a borrow/pointer/Box place.
type Deref struct {
	exprBase
	Base Expr
}

// Downcast asserts Base is enum variant Variant and projects into its
// payload, used by match-arm lowering for non-trivial enums.
type Downcast struct {
	exprBase
	Base    Expr
	Variant string
}

// CallKind distinguishes the call-site shapes the cleanup pass later
// discriminates between (spec §4.6.1/§4.6.2).
type CallKind int

const (
	CallFunction   CallKind = iota // direct call to a known fn item / fn pointer
	CallMethod                     // `recv.method(args)`, statically resolved
	CallTraitDyn                   // call through a `dyn Trait` vtable
	CallClosure                    // call through a closure/Fn-trait value
)

// Call is any call-expression shape; Kind records which lowering path MIR
// construction should take (spec §4.2.1's call table).
type Call struct {
	exprBase
	Kind     CallKind
	Callee   Expr   // nil for CallFunction when FnPath is set directly
	FnPath   Path   // populated for CallFunction
	Trait    Path   // populated for CallTraitDyn
	Method   string // populated for CallMethod / CallTraitDyn
	Args     []Expr
}

// TupleLit constructs a tuple value.
type TupleLit struct {
	exprBase
	Elems []Expr
}

// ArrayLit constructs an array, either as explicit elements or a single
// Repeat expression replicated Count times.
type ArrayLit struct {
	exprBase
	Elems  []Expr
	Repeat Expr // non-nil selects the [expr; count] form
	Count  uint64
}

// StructLit constructs a struct value; FieldNames[i] pairs with Fields[i].
type StructLit struct {
	exprBase
	StructPath Path
	FieldNames []string
	Fields     []Expr
	Base       Expr // `..base` functional-update source, nil if absent
}

// VariantLit constructs an enum value for the named variant.
type VariantLit struct {
	exprBase
	EnumPath   Path
	Variant    string
	FieldNames []string
	Fields     []Expr
}

// LiteralKind distinguishes scalar-literal payload encodings.
type LiteralKind int

const (
	LitInt LiteralKind = iota
	LitFloat
	LitBool
	LitChar
	LitString
	LitByteString
)

// Literal is an immediate scalar constant.
type Literal struct {
	exprBase
	Kind  LiteralKind
	Int   int64
	Float float64
	Bool  bool
	Str   string
	Bytes []byte
}

// ConstRef names a compile-time `const` item used by value.
type ConstRef struct {
	exprBase
	Path Path
}

// StaticRef names a `static` item used by place (always a borrow target).
type StaticRef struct {
	exprBase
	Path Path
}

// VarRef names a local variable or function parameter by its declaration site.
type VarRef struct {
	exprBase
	Name string
}

// FnItemRef names a function item used as a zero-sized value (e.g. taken
// by reference to coerce to a function pointer).
type FnItemRef struct {
	exprBase
	Path Path
}

// BorrowExpr takes a shared or mutable reference to a place.
type BorrowExpr struct {
	exprBase
	Mode  PointerMode
	Place Expr
}

// Cast is an explicit `as` conversion (numeric widen/narrow, unsize coercion,
// or pointer cast); it lowers to a Cast rvalue, which the cleanup pass
// leaves as it is.
type Cast struct {
	exprBase
	Value Expr
	To    *TypeRef
}

// ClosureLit constructs a closure value; captures are already resolved to
// named upvars by this point (name resolution's job, not this repository's).
type ClosureLit struct {
	exprBase
	Tag      string
	Captures []string
	Params   []string
	ParamTys []*TypeRef
	Body     *Block
}
