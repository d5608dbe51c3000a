package mir

import "github.com/vellum-lang/vellum/internal/diag"

// ValState is the three-point lattice value-state validation tracks per
// local at each program point (spec §4.4): Invalid (uninitialised or
// moved-from), Either (disagreement between merged predecessors), Valid.
type ValState int

const (
	VSInvalid ValState = iota
	VSEither
	VSValid
)

func mergeValState(a, b ValState) ValState {
	if a == b {
		return a
	}
	return VSEither
}

// entryStates is one worklist entry: the state map at a block's entry.
type entryStates map[int]ValState

func (s entryStates) clone() entryStates {
	out := make(entryStates, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// ValidateValState runs MIR_Validate_ValState (spec §4.4): a worklist
// dataflow pass over basic blocks checking that every local used as a
// statement/terminator source is Valid at that point, grounded on the
// same worklist-plus-merge shape as the type-checker's symbolic-state
// analysis engine.
func ValidateValState(fn *Function) error {
	entry := make(entryStates, len(fn.Locals))
	for i := range fn.Locals {
		entry[i] = VSInvalid
	}
	for i := 0; i < fn.ArgCount; i++ {
		entry[fn.argLocal(i)] = VSValid
	}

	blockEntry := make([]entryStates, len(fn.Blocks))
	blockEntry[0] = entry
	worklist := []int{0}
	visited := make([]bool, len(fn.Blocks))

	for len(worklist) > 0 {
		idx := worklist[0]
		worklist = worklist[1:]
		state := blockEntry[idx].clone()
		bb := fn.Blocks[idx]

		for _, s := range bb.Statements {
			if err := transferStatement(fn, state, s); err != nil {
				return err
			}
		}
		if err := transferTerminator(fn, state, bb.Terminator); err != nil {
			return err
		}

		for _, succ := range Successors(bb.Terminator) {
			if blockEntry[succ] == nil {
				blockEntry[succ] = state.clone()
				worklist = append(worklist, succ)
				continue
			}
			changed := false
			for local, s := range state {
				existing := blockEntry[succ][local]
				merged := mergeValState(existing, s)
				if merged != existing {
					blockEntry[succ][local] = merged
					changed = true
				}
			}
			if changed && !visited[succ] {
				worklist = append(worklist, succ)
			}
		}
		visited[idx] = true
	}
	return nil
}

// argLocal maps argument index n to its local-table index: arguments
// occupy Locals[1:1+ArgCount] since Locals[0] is always the return slot.
func (f *Function) argLocal(n int) int { return 1 + n }

func transferStatement(fn *Function, state entryStates, s Statement) error {
	switch st := s.(type) {
	case *Assign:
		if err := requireValid(fn, state, st.Src); err != nil {
			return err
		}
		markRValueMoves(fn, state, st.Src)
		setPlaceValid(fn, state, st.Dst)
	case *Drop:
		if root, ok := simpleLocal(fn, st.LValue); ok {
			if state[root] != VSValid && st.FlagIdx < 0 {
				return bugf(diag.Span{}, "drop of non-valid local _%d", root)
			}
			state[root] = VSInvalid
		}
	case *Asm:
		for _, in := range st.Inputs {
			if root, ok := simpleLocal(fn, in.LValue); ok && state[root] != VSValid {
				return bugf(diag.Span{}, "asm input local _%d not valid", root)
			}
		}
		for _, out := range st.Outputs {
			if root, ok := simpleLocal(fn, out.LValue); ok {
				state[root] = VSValid
			}
		}
	case *Asm2:
		for _, p := range st.Params {
			if root, ok := simpleLocal(fn, p.LValue); ok {
				state[root] = VSValid
			}
		}
	case *SetDropFlag, *ScopeEnd:
		// no value-state change (spec §4.4).
	}
	return nil
}

func transferTerminator(fn *Function, state entryStates, t Terminator) error {
	switch term := t.(type) {
	case *Return:
		if state[ReturnLocal] != VSValid {
			return bugf(diag.Span{}, "function returns without initialising the return slot")
		}
		// Non-Copy locals still Valid here leak: diagnostic only, not fatal.
	case *If:
		if root, ok := simpleLocal(fn, term.Cond); ok && state[root] != VSValid {
			return bugf(diag.Span{}, "If discriminant local _%d not valid", root)
		}
	case *Switch:
		if root, ok := simpleLocal(fn, term.Value); ok && state[root] != VSValid {
			return bugf(diag.Span{}, "Switch discriminant local _%d not valid", root)
		}
	case *SwitchValue:
		if root, ok := simpleLocal(fn, term.Value); ok && state[root] != VSValid {
			return bugf(diag.Span{}, "SwitchValue discriminant local _%d not valid", root)
		}
	case *Call:
		if term.Target.Kind == CallValue {
			if root, ok := simpleLocal(fn, term.Target.LValue); ok && state[root] != VSValid {
				return bugf(diag.Span{}, "call target local _%d not valid", root)
			}
		}
		for _, a := range term.Args {
			if a.Kind == ParamLValue {
				if root, ok := simpleLocal(fn, a.LValue); ok && state[root] != VSValid {
					return bugf(diag.Span{}, "call argument local _%d not valid", root)
				}
			}
		}
		if root, ok := simpleLocal(fn, term.RetLValue); ok {
			state[root] = VSValid
		}
	}
	return nil
}

func requireValid(fn *Function, state entryStates, rv RValue) error {
	for _, lv := range rvalueLValueSources(rv) {
		if root, ok := simpleLocal(fn, lv); ok && state[root] != VSValid {
			return bugf(diag.Span{}, "use of non-valid local _%d", root)
		}
	}
	return nil
}

func rvalueLValueSources(rv RValue) []LValue {
	var out []LValue
	add := func(p Param) {
		if p.Kind != ParamConstant {
			out = append(out, p.LValue)
		}
	}
	switch rv.Kind {
	case RVUse, RVCast, RVUniOp, RVDstMeta, RVDstPtr:
		out = append(out, rv.LValue)
	case RVBorrow:
		// A borrow source is not itself "used" for move-validity purposes.
	case RVSizedArray:
		add(rv.Elem)
	case RVBinOp:
		add(rv.Left)
		add(rv.Right)
	case RVMakeDst:
		add(rv.Ptr)
		add(rv.Meta)
	case RVTuple, RVArray, RVStruct, RVEnumVariant:
		for _, p := range rv.Params {
			add(p)
		}
	case RVUnionVariant:
		add(rv.VariantParam)
	}
	return out
}

// markRValueMoves transitions every non-Copy lvalue consumed by Use (not
// Borrow) to Invalid, mirroring the builder's MarkMoved bookkeeping
// during lowering (spec §4.4: "a Use of a non-Copy local transitions it
// to Invalid"). This package re-derives it independently at validation
// time rather than trusting the lowerer, since validation exists to catch
// lowering bugs.
func markRValueMoves(fn *Function, state entryStates, rv RValue) {
	for _, lv := range rvalueLValueSources(rv) {
		if root, ok := simpleLocal(fn, lv); ok {
			state[root] = VSInvalid
		}
	}
}

func setPlaceValid(fn *Function, state entryStates, l LValue) {
	if root, ok := simpleLocal(fn, l); ok {
		state[root] = VSValid
	}
}

func simpleLocal(fn *Function, l LValue) (int, bool) {
	if len(l.Wrappers) != 0 {
		return 0, false
	}
	switch l.Root.Kind {
	case RootReturn:
		return ReturnLocal, true
	case RootArgument:
		return fn.argLocal(l.Root.Index), true
	case RootLocal:
		return l.Root.Index, true
	default:
		return 0, false
	}
}
