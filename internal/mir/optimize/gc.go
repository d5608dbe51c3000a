package optimize

import (
	"github.com/vellum-lang/vellum/internal/hir"
	"github.com/vellum-lang/vellum/internal/mir"
)

// GCPartial marks every block unreachable from block 0 as empty with an
// Incomplete terminator, without renumbering anything (spec §4.7: run
// between optimisation rounds, cheaper than a full GarbageCollect since no
// reference needs rewriting).
func GCPartial(_ hir.StaticTraitResolve, fn *mir.Function) bool {
	reachable := reachableBlocks(fn)
	changed := false
	for i, bb := range fn.Blocks {
		if reachable[i] {
			continue
		}
		if len(bb.Statements) != 0 {
			bb.Statements = nil
			changed = true
		}
		if _, already := bb.Terminator.(*mir.Incomplete); !already {
			bb.Terminator = &mir.Incomplete{}
			changed = true
		}
	}
	return changed
}

func reachableBlocks(fn *mir.Function) map[int]bool {
	reachable := map[int]bool{0: true}
	worklist := []int{0}
	for len(worklist) > 0 {
		i := worklist[0]
		worklist = worklist[1:]
		for _, s := range mir.Successors(fn.Blocks[i].Terminator) {
			if !reachable[s] {
				reachable[s] = true
				worklist = append(worklist, s)
			}
		}
	}
	return reachable
}

// GarbageCollect renumbers fn's surviving locals, blocks, and drop flags
// densely by reachability/use, invalidating every prior index (spec §4.7,
// §5: "the only renumbering point"). The return slot (local 0) and every
// argument local are always kept even if structurally unused, since
// ArgCount depends on their positions.
func GarbageCollect(fn *mir.Function) {
	reachable := reachableBlocks(fn)
	blockMap := make(map[int]int)
	newBlocks := make([]*mir.BasicBlock, 0, len(fn.Blocks))
	for i, bb := range fn.Blocks {
		if !reachable[i] {
			continue
		}
		blockMap[i] = len(newBlocks)
		newBlocks = append(newBlocks, bb)
	}
	for _, bb := range newBlocks {
		rewriteTargets(bb.Terminator, func(t int) int { return blockMap[t] })
	}

	usedLocals := map[int]bool{mir.ReturnLocal: true}
	for i := 0; i < fn.ArgCount; i++ {
		usedLocals[1+i] = true
	}
	for _, bb := range newBlocks {
		for _, s := range bb.Statements {
			if a, ok := s.(*mir.Assign); ok {
				if a.Dst.Root.Kind == mir.RootLocal {
					usedLocals[a.Dst.Root.Index] = true
				}
				for _, lv := range rvalueReads(a.Src) {
					if lv.Root.Kind == mir.RootLocal {
						usedLocals[lv.Root.Index] = true
					}
				}
			}
		}
	}

	localMap := make(map[int]int)
	newLocals := make([]mir.Local, 0, len(usedLocals))
	for i, l := range fn.Locals {
		if !usedLocals[i] {
			continue
		}
		localMap[i] = len(newLocals)
		newLocals = append(newLocals, l)
	}
	for _, bb := range newBlocks {
		for i, s := range bb.Statements {
			if a, ok := s.(*mir.Assign); ok {
				bb.Statements[i] = &mir.Assign{
					Dst: remapLocals(a.Dst, localMap),
					Src: remapRValueLocals(a.Src, localMap),
				}
			}
		}
		remapTerminatorLocals(bb.Terminator, localMap)
	}

	usedFlags := map[int]bool{}
	for _, bb := range newBlocks {
		for _, s := range bb.Statements {
			switch st := s.(type) {
			case *mir.Drop:
				if st.FlagIdx >= 0 {
					usedFlags[st.FlagIdx] = true
				}
			case *mir.SetDropFlag:
				usedFlags[st.FlagIdx] = true
				if st.OtherIdx >= 0 {
					usedFlags[st.OtherIdx] = true
				}
			}
		}
	}
	flagMap := make(map[int]int)
	newFlags := make([]mir.DropFlag, 0, len(usedFlags))
	for i, f := range fn.DropFlags {
		if !usedFlags[i] {
			continue
		}
		flagMap[i] = len(newFlags)
		newFlags = append(newFlags, f)
	}
	for _, bb := range newBlocks {
		for _, s := range bb.Statements {
			switch st := s.(type) {
			case *mir.Drop:
				if st.FlagIdx >= 0 {
					st.FlagIdx = flagMap[st.FlagIdx]
				}
			case *mir.SetDropFlag:
				st.FlagIdx = flagMap[st.FlagIdx]
				if st.OtherIdx >= 0 {
					st.OtherIdx = flagMap[st.OtherIdx]
				}
			}
		}
	}

	fn.Blocks = newBlocks
	fn.Locals = newLocals
	fn.DropFlags = newFlags
}

func remapLocals(l mir.LValue, localMap map[int]int) mir.LValue {
	if l.Root.Kind == mir.RootLocal {
		if idx, ok := localMap[l.Root.Index]; ok {
			l.Root.Index = idx
		}
	}
	out := mir.LValue{Root: l.Root}
	for _, w := range l.Wrappers {
		if w.Kind == mir.WrapIndex {
			if idx, ok := localMap[w.IndexLocal]; ok {
				w.IndexLocal = idx
			}
		}
		out = appendWrapper(out, w)
	}
	return out
}

func remapRValueLocals(rv mir.RValue, localMap map[int]int) mir.RValue {
	remapParam := func(p mir.Param) mir.Param {
		if p.Kind != mir.ParamConstant {
			p.LValue = remapLocals(p.LValue, localMap)
		}
		return p
	}
	switch rv.Kind {
	case mir.RVUse, mir.RVCast, mir.RVUniOp, mir.RVDstMeta, mir.RVDstPtr, mir.RVBorrow:
		rv.LValue = remapLocals(rv.LValue, localMap)
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

func remapTerminatorLocals(t mir.Terminator, localMap map[int]int) {
	switch term := t.(type) {
	case *mir.If:
		term.Cond = remapLocals(term.Cond, localMap)
	case *mir.Switch:
		term.Value = remapLocals(term.Value, localMap)
	case *mir.SwitchValue:
		term.Value = remapLocals(term.Value, localMap)
	case *mir.Call:
		term.RetLValue = remapLocals(term.RetLValue, localMap)
		if term.Target.Kind == mir.CallValue {
			term.Target.LValue = remapLocals(term.Target.LValue, localMap)
		}
		for i, a := range term.Args {
			if a.Kind != mir.ParamConstant {
				a.LValue = remapLocals(a.LValue, localMap)
			}
			term.Args[i] = a
		}
	}
}
