package optimize

import (
	"github.com/vellum-lang/vellum/internal/hir"
	"github.com/vellum-lang/vellum/internal/mir"
)

// CalleeLookup resolves a call target path to the callee's MIR, when
// available. The driver has no collaborator of its own (spec §1 keeps
// cross-function knowledge external); Inlining is a no-op until a caller
// registers one via WithCalleeLookup.
type CalleeLookup func(p hir.Path) (*mir.Function, bool)

var lookupCallee CalleeLookup

// WithCalleeLookup installs the function-body lookup Inlining consults.
// Call once before running the pipeline; nil disables inlining.
func WithCalleeLookup(l CalleeLookup) { lookupCallee = l }

// Inlining replaces a Call terminator whose callee is a small, non-
// recursive candidate with the callee's cloned body (spec §4.7 step 12).
// A candidate is: a single block of at most ten statements ending in a
// non-Goto terminator, three blocks with a leading Call and the rest
// Return/Diverge, or an outermost Switch fanning out to simple Return
// arms; self-recursive callees are never inlined.
func Inlining(_ hir.StaticTraitResolve, fn *mir.Function) bool {
	if lookupCallee == nil {
		return false
	}
	changed := false
	for bi := 0; bi < len(fn.Blocks); bi++ {
		call, ok := fn.Blocks[bi].Terminator.(*mir.Call)
		if !ok || call.Target.Kind != mir.CallPath {
			continue
		}
		if call.Target.Path.Equal(fn.Path) {
			continue // recursive
		}
		callee, ok := lookupCallee(call.Target.Path)
		if !ok || !isInlineCandidate(callee) {
			continue
		}
		inlineCall(fn, bi, call, callee)
		changed = true
	}
	return changed
}

func isInlineCandidate(callee *mir.Function) bool {
	switch len(callee.Blocks) {
	case 1:
		bb := callee.Blocks[0]
		if len(bb.Statements) > 10 {
			return false
		}
		_, isGoto := bb.Terminator.(*mir.Goto)
		return !isGoto
	case 3:
		if _, ok := callee.Blocks[0].Terminator.(*mir.Call); !ok {
			return false
		}
		for _, bb := range callee.Blocks[1:] {
			switch bb.Terminator.(type) {
			case *mir.Return, *mir.Diverge:
			default:
				return false
			}
		}
		return true
	default:
		if sw, ok := callee.Blocks[0].Terminator.(*mir.Switch); ok {
			for _, t := range sw.Targets {
				if _, ok := callee.Blocks[t].Terminator.(*mir.Return); !ok {
					return false
				}
			}
			return true
		}
		return false
	}
}

// inlineCall clones callee's blocks/locals/flags into fn with additive
// offsets, binds its argument locals to temporaries holding call.Args
// (Copy/Constant args are stored in a fresh temporary first to preserve
// move semantics), rewires Return into a Goto to the call's success
// target and Diverge into a Goto to its panic target, and splices the
// clone in place of the call block's terminator. In the clone, reads of
// the callee's arguments go to those bound locals, writes to its return
// slot go to the cloned return local, and each rewired Return first
// copies that local into call.RetLValue.
func inlineCall(fn *mir.Function, callBlock int, call *mir.Call, callee *mir.Function) {
	localBase := len(fn.Locals)
	blockBase := len(fn.Blocks)
	flagBase := len(fn.DropFlags)

	for _, l := range callee.Locals {
		fn.Locals = append(fn.Locals, l)
	}
	for _, f := range callee.DropFlags {
		fn.DropFlags = append(fn.DropFlags, f)
	}

	remapLocal := func(l mir.LValue) mir.LValue {
		switch l.Root.Kind {
		case mir.RootLocal:
			l.Root.Index += localBase
		case mir.RootArgument:
			l.Root = mir.LocalPlace(localBase + 1 + l.Root.Index).Root
		case mir.RootReturn:
			l.Root = mir.LocalPlace(localBase).Root
		}
		out := mir.LValue{Root: l.Root}
		for _, w := range l.Wrappers {
			if w.Kind == mir.WrapIndex {
				w.IndexLocal += localBase
			}
			out = appendWrapper(out, w)
		}
		return out
	}
	remapParam := func(p mir.Param) mir.Param {
		if p.Kind != mir.ParamConstant {
			p.LValue = remapLocal(p.LValue)
		}
		return p
	}
	prelude := make([]mir.Statement, 0, len(call.Args))
	for i, arg := range call.Args {
		argLocal := localBase + 1 + i
		switch arg.Kind {
		case mir.ParamLValue:
			prelude = append(prelude, &mir.Assign{Dst: mir.LocalPlace(argLocal), Src: mir.Use(arg.LValue)})
		case mir.ParamBorrow:
			prelude = append(prelude, &mir.Assign{Dst: mir.LocalPlace(argLocal), Src: mir.BorrowRValue(arg.Borrow, arg.LValue)})
		case mir.ParamConstant:
			prelude = append(prelude, &mir.Assign{Dst: mir.LocalPlace(argLocal), Src: mir.ConstRValue(arg.Const)})
		}
	}

	newBlocks := make([]*mir.BasicBlock, len(callee.Blocks))
	for i, bb := range callee.Blocks {
		stmts := make([]mir.Statement, len(bb.Statements))
		for j, s := range bb.Statements {
			stmts[j] = remapStatement(s, remapLocal, remapParam, flagBase)
		}
		newBlocks[i] = &mir.BasicBlock{Statements: stmts}
	}
	// Return is rewired to the caller's success continuation and Diverge
	// to its panic continuation; every other terminator is remapped by
	// the block-index offset the clone was appended at.
	for i, bb := range newBlocks {
		switch t := callee.Blocks[i].Terminator.(type) {
		case *mir.Return:
			bb.Statements = append(bb.Statements, &mir.Assign{Dst: call.RetLValue, Src: mir.Use(mir.LocalPlace(localBase))})
			bb.Terminator = &mir.Goto{Target: call.RetTarget}
		case *mir.Diverge:
			bb.Terminator = &mir.Goto{Target: call.PanicTarget}
		case *mir.Goto:
			bb.Terminator = &mir.Goto{Target: t.Target + blockBase}
		case *mir.Panic:
			bb.Terminator = &mir.Panic{Target: t.Target + blockBase}
		case *mir.If:
			bb.Terminator = &mir.If{Cond: remapLocal(t.Cond), TrueTarget: t.TrueTarget + blockBase, FalseTarget: t.FalseTarget + blockBase}
		case *mir.Switch:
			targets := make([]int, len(t.Targets))
			for k, tg := range t.Targets {
				targets[k] = tg + blockBase
			}
			bb.Terminator = &mir.Switch{Value: remapLocal(t.Value), Targets: targets}
		case *mir.SwitchValue:
			targets := make([]int, len(t.Targets))
			for k, tg := range t.Targets {
				targets[k] = tg + blockBase
			}
			sv := *t
			sv.Value = remapLocal(t.Value)
			sv.Targets = targets
			sv.DefTarget = t.DefTarget + blockBase
			bb.Terminator = &sv
		case *mir.Call:
			nc := &mir.Call{
				Target:      t.Target,
				RetLValue:   remapLocal(t.RetLValue),
				RetTarget:   t.RetTarget + blockBase,
				PanicTarget: t.PanicTarget + blockBase,
			}
			if t.Target.Kind == mir.CallValue {
				nc.Target.LValue = remapLocal(t.Target.LValue)
			}
			args := make([]mir.Param, len(t.Args))
			for k, a := range t.Args {
				args[k] = remapParam(a)
			}
			nc.Args = args
			bb.Terminator = nc
		}
	}
	entryIdx := blockBase
	fn.Blocks = append(fn.Blocks, newBlocks...)
	callerBlock := fn.Blocks[callBlock]
	callerBlock.Statements = append(callerBlock.Statements, prelude...)
	callerBlock.Terminator = &mir.Goto{Target: entryIdx}
}

func remapStatement(s mir.Statement, remapLocal func(mir.LValue) mir.LValue, remapParam func(mir.Param) mir.Param, flagBase int) mir.Statement {
	switch st := s.(type) {
	case *mir.Assign:
		return &mir.Assign{Dst: remapLocal(st.Dst), Src: remapRValueWith(st.Src, remapLocal, remapParam)}
	case *mir.Drop:
		flagIdx := st.FlagIdx
		if flagIdx >= 0 {
			flagIdx += flagBase
		}
		return &mir.Drop{Kind: st.Kind, LValue: remapLocal(st.LValue), FlagIdx: flagIdx}
	case *mir.SetDropFlag:
		otherIdx := st.OtherIdx
		if otherIdx >= 0 {
			otherIdx += flagBase
		}
		return &mir.SetDropFlag{FlagIdx: st.FlagIdx + flagBase, NewValue: st.NewValue, OtherIdx: otherIdx}
	case *mir.ScopeEnd:
		locals := make([]int, len(st.Locals))
		for i, l := range st.Locals {
			locals[i] = remapLocal(mir.LocalPlace(l)).Root.Index
		}
		return &mir.ScopeEnd{Locals: locals}
	default:
		return s
	}
}

func remapRValueWith(rv mir.RValue, remapLocal func(mir.LValue) mir.LValue, remapParam func(mir.Param) mir.Param) mir.RValue {
	switch rv.Kind {
	case mir.RVUse, mir.RVCast, mir.RVUniOp, mir.RVDstMeta, mir.RVDstPtr, mir.RVBorrow:
		rv.LValue = remapLocal(rv.LValue)
	case mir.RVBinOp:
		rv.Left = remapParam(rv.Left)
		rv.Right = remapParam(rv.Right)
	case mir.RVMakeDst:
		rv.Ptr = remapParam(rv.Ptr)
		rv.Meta = remapParam(rv.Meta)
	case mir.RVSizedArray:
		rv.Elem = remapParam(rv.Elem)
	case mir.RVTuple, mir.RVArray, mir.RVStruct, mir.RVEnumVariant:
		params := append([]mir.Param(nil), rv.Params...)
		for i, p := range params {
			params[i] = remapParam(p)
		}
		rv.Params = params
	case mir.RVUnionVariant:
		rv.VariantParam = remapParam(rv.VariantParam)
	}
	return rv
}
