package optimize

import (
	"github.com/vellum-lang/vellum/internal/hir"
	"github.com/vellum-lang/vellum/internal/mir"
)

// PropagateSingleAssignments (spec §4.7 step 6) forward-moves a Use-only
// assignment into its unique consumer and backward-retargets a call
// result that only ever flows through a Use into its eventual
// destination. It does not remove writes that have no readers; that is
// left to DeadAssignments.
func PropagateSingleAssignments(resolve hir.StaticTraitResolve, fn *mir.Function) bool {
	changed := false
	for _, bb := range fn.Blocks {
		if forwardMoveUseOnly(bb) {
			changed = true
		}
		if backwardRetargetCallResult(fn, bb) {
			changed = true
		}
	}
	return changed
}

// forwardMoveUseOnly finds `tmp = Use(src)` followed by tmp's single
// reader `dst = Use(tmp)` and collapses the chain to `dst = Use(src)`.
func forwardMoveUseOnly(bb *mir.BasicBlock) bool {
	for i, s := range bb.Statements {
		a, ok := s.(*mir.Assign)
		if !ok || a.Src.Kind != mir.RVUse {
			continue
		}
		tmp, simple := simpleLocal(a.Dst)
		if !simple {
			continue
		}
		readers := 0
		readerIdx := -1
		for j := i + 1; j < len(bb.Statements); j++ {
			if statementTouches(bb.Statements[j], tmp) {
				readers++
				readerIdx = j
			}
		}
		if readers != 1 {
			continue
		}
		next, ok := bb.Statements[readerIdx].(*mir.Assign)
		if !ok || next.Src.Kind != mir.RVUse {
			continue
		}
		if root, simple := simpleLocal(next.Src.LValue); !simple || root != tmp {
			continue
		}
		bb.Statements[readerIdx] = &mir.Assign{Dst: next.Dst, Src: a.Src}
		bb.Statements = append(bb.Statements[:i], bb.Statements[i+1:]...)
		return true
	}
	return false
}

// backwardRetargetCallResult finds a Call writing into temporary `tmp`
// whose only subsequent use is `dst = Use(tmp)`, and rewires the call to
// write directly into dst.
func backwardRetargetCallResult(fn *mir.Function, bb *mir.BasicBlock) bool {
	call, ok := bb.Terminator.(*mir.Call)
	if !ok {
		return false
	}
	tmp, simple := simpleLocal(call.RetLValue)
	if !simple {
		return false
	}
	succ := fn.Blocks[call.RetTarget]
	if len(succ.Statements) == 0 {
		return false
	}
	first, ok := succ.Statements[0].(*mir.Assign)
	if !ok || first.Src.Kind != mir.RVUse {
		return false
	}
	if root, simple := simpleLocal(first.Src.LValue); !simple || root != tmp {
		return false
	}
	for _, s := range succ.Statements[1:] {
		if statementTouches(s, tmp) {
			return false
		}
	}
	call.RetLValue = first.Dst
	succ.Statements = succ.Statements[1:]
	return true
}
