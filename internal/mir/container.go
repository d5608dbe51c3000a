package mir

import "github.com/vellum-lang/vellum/internal/hir"

// NewLocal appends a fresh local of type ty and returns its index. Locals
// are append-only within a pass; existing indices never shift under a
// live reference (spec §5).
func (f *Function) NewLocal(ty *hir.TypeRef, name string) int {
	f.Locals = append(f.Locals, Local{Type: ty, Name: name})
	return len(f.Locals) - 1
}

// NewBlock appends a fresh block with an Incomplete terminator and
// returns its index.
func (f *Function) NewBlock() int {
	f.Blocks = append(f.Blocks, &BasicBlock{Terminator: &Incomplete{}})
	return len(f.Blocks) - 1
}

// NewDropFlag appends a fresh drop flag with the given initial value and
// returns its index.
func (f *Function) NewDropFlag(initial bool) int {
	f.DropFlags = append(f.DropFlags, DropFlag{Initial: initial})
	return len(f.DropFlags) - 1
}

// Block returns the block at index i.
func (f *Function) Block(i int) *BasicBlock { return f.Blocks[i] }

// Emit appends a statement to block i.
func (f *Function) Emit(block int, s Statement) {
	bb := f.Blocks[block]
	bb.Statements = append(bb.Statements, s)
}

// Terminate sets block i's terminator, replacing Incomplete.
func (f *Function) Terminate(block int, t Terminator) {
	f.Blocks[block].Terminator = t
}

// Clone produces an independent function with identical semantics and
// index assignments (spec §4.1's deep-clone contract). TypeRefs are
// shared (TypeRef.Clone is itself shallow, spec §3.1); locals, blocks,
// and statement/terminator slices are copied so mutating the clone never
// disturbs the original.
func (f *Function) Clone() *Function {
	clone := &Function{
		Path:     f.Path,
		Generics: append([]hir.GenericParam(nil), f.Generics...),
		ArgCount: f.ArgCount,
		RetType:  f.RetType,
		Locals:   append([]Local(nil), f.Locals...),
		DropFlags: append([]DropFlag(nil), f.DropFlags...),
		Blocks:   make([]*BasicBlock, len(f.Blocks)),
	}
	for i, bb := range f.Blocks {
		clone.Blocks[i] = &BasicBlock{
			Statements: append([]Statement(nil), bb.Statements...),
			Terminator: bb.Terminator,
		}
	}
	return clone
}

// Successors returns the block indices t can transfer control to, in a
// stable order (fallthrough/return edge first where applicable). Used by
// the dataflow passes in §4.4/§4.7 and by SortBlocks' reachability walk.
func Successors(t Terminator) []int {
	switch term := t.(type) {
	case *Goto:
		return []int{term.Target}
	case *Panic:
		return []int{term.Target}
	case *If:
		return []int{term.TrueTarget, term.FalseTarget}
	case *Switch:
		return append([]int(nil), term.Targets...)
	case *SwitchValue:
		out := append([]int(nil), term.Targets...)
		return append(out, term.DefTarget)
	case *Call:
		return []int{term.RetTarget, term.PanicTarget}
	default: // Return, Diverge, Incomplete
		return nil
	}
}
