package optimize

import (
	"github.com/vellum-lang/vellum/internal/hir"
	"github.com/vellum-lang/vellum/internal/mir"
)

// DeTemporary substitutes the defining RValue of a local directly at its
// single use site when that local is written once and read exactly once
// with no intervening borrow, mutation, or move of its sources (spec §4.7
// step 3). Every substitution needs exactly one use, Copy sources
// included; this package restricts the search to pairs within the same
// block, which covers the
// vast majority of the temporaries the lowerer introduces.
func DeTemporary(resolve hir.StaticTraitResolve, fn *mir.Function) bool {
	changed := false
	for _, bb := range fn.Blocks {
		for {
			if !deTemporaryOnce(resolve, bb) {
				break
			}
			changed = true
		}
	}
	return changed
}

func deTemporaryOnce(resolve hir.StaticTraitResolve, bb *mir.BasicBlock) bool {
	writes := map[int]int{}  // local -> statement index of its sole Assign
	writeCount := map[int]int{}
	for i, s := range bb.Statements {
		a, ok := s.(*mir.Assign)
		if !ok {
			continue
		}
		if root, simple := simpleLocal(a.Dst); simple {
			writes[root] = i
			writeCount[root]++
		}
	}

	for local, defIdx := range writes {
		if writeCount[local] != 1 || rvalueIsAggregate(bb.Statements[defIdx].(*mir.Assign).Src) {
			continue
		}
		useIdx, uses := -1, 0
		for i := defIdx + 1; i < len(bb.Statements); i++ {
			a, ok := bb.Statements[i].(*mir.Assign)
			if !ok {
				continue
			}
			if statementTouches(bb.Statements[i], local) {
				if a.Src.Kind == mir.RVUse {
					if root, simple := simpleLocal(a.Src.LValue); simple && root == local {
						useIdx = i
						uses++
						continue
					}
				}
				uses = 2 // touched some other way: disqualify
				break
			}
		}
		if uses != 1 || useIdx < 0 {
			continue
		}
		def := bb.Statements[defIdx].(*mir.Assign)
		use := bb.Statements[useIdx].(*mir.Assign)
		bb.Statements[useIdx] = &mir.Assign{Dst: use.Dst, Src: def.Src}
		bb.Statements = append(bb.Statements[:defIdx], bb.Statements[defIdx+1:]...)
		return true
	}
	return false
}

func rvalueIsAggregate(rv mir.RValue) bool {
	switch rv.Kind {
	case mir.RVTuple, mir.RVArray, mir.RVStruct, mir.RVEnumVariant, mir.RVUnionVariant, mir.RVSizedArray:
		return true
	default:
		return false
	}
}

// statementTouches reports whether s reads or writes local, used to detect
// an intervening mutation that would invalidate substitution.
func statementTouches(s mir.Statement, local int) bool {
	a, ok := s.(*mir.Assign)
	if !ok {
		return false
	}
	if root, simple := simpleLocal(a.Dst); simple && root == local {
		return true
	}
	for _, lv := range rvalueReads(a.Src) {
		if root, simple := simpleLocal(lv); simple && root == local {
			return true
		}
	}
	return false
}

func rvalueReads(rv mir.RValue) []mir.LValue {
	var out []mir.LValue
	add := func(p mir.Param) {
		if p.Kind != mir.ParamConstant {
			out = append(out, p.LValue)
		}
	}
	switch rv.Kind {
	case mir.RVUse, mir.RVCast, mir.RVUniOp, mir.RVDstMeta, mir.RVDstPtr, mir.RVBorrow:
		out = append(out, rv.LValue)
	case mir.RVBinOp:
		add(rv.Left)
		add(rv.Right)
	case mir.RVMakeDst:
		add(rv.Ptr)
		add(rv.Meta)
	case mir.RVSizedArray:
		add(rv.Elem)
	case mir.RVTuple, mir.RVArray, mir.RVStruct, mir.RVEnumVariant:
		for _, p := range rv.Params {
			add(p)
		}
	case mir.RVUnionVariant:
		add(rv.VariantParam)
	}
	return out
}
