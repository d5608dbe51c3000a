// Package mir is the mid-level intermediate representation: a control-flow
// graph of basic blocks over typed lvalues and rvalues, built from a typed
// HIR expression tree and consumed by cleanup, borrow analysis, the
// optimisation pipeline, and eventually code generation.
package mir

import "github.com/vellum-lang/vellum/internal/hir"

// Function is a MIR function: locals, drop flags, and basic blocks,
// indexed from 0 (spec §3.2). BB0 is always the entry block.
type Function struct {
	Path       hir.Path
	Generics   []hir.GenericParam
	ArgCount   int // Locals[1:1+ArgCount] are the function's arguments; Locals[0] is the return slot
	RetType    *hir.TypeRef
	Locals     []Local
	DropFlags  []DropFlag
	Blocks     []*BasicBlock
}

// Local is one entry in a function's local-variable table. Local 0 is
// always the return slot; it is never an argument and never a user local.
type Local struct {
	Type *hir.TypeRef
	Name string // empty for compiler-introduced temporaries
}

// DropFlag is a boolean cell governing a conditional drop (spec §3.7's
// SetDropFlag / §4.2.1's scope-exit rule).
type DropFlag struct {
	Initial bool
}

// BasicBlock is a straight-line run of statements ending in a terminator.
// A freshly allocated block's Terminator is Incomplete until lowering
// fills it in; MIR_Validate rejects any block still Incomplete.
type BasicBlock struct {
	Statements []Statement
	Terminator Terminator
}

const (
	// ReturnLocal is Local index 0 in every function, fixed identity
	// distinct from arguments and user locals (spec §3.2).
	ReturnLocal = 0
)

// NewFunction returns a function with only the return slot allocated.
// Callers add arguments via NewLocal before lowering the body.
func NewFunction(path hir.Path, generics []hir.GenericParam, retType *hir.TypeRef) *Function {
	return &Function{
		Path:     path,
		Generics: generics,
		RetType:  retType,
		Locals:   []Local{{Type: retType}},
	}
}
