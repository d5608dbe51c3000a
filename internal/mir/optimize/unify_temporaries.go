package optimize

import (
	"sort"

	"github.com/vellum-lang/vellum/internal/hir"
	"github.com/vellum-lang/vellum/internal/mir"
)

// interval is a local's live range, measured in the linear statement
// position UnifyTemporaries assigns while walking blocks in order.
type interval struct{ start, end int }

// UnifyTemporaries coalesces same-typed locals whose live ranges do not
// overlap (spec §4.7, run once after the fixed-point loop converges).
// Liveness intervals are computed over the function's current block
// order: a local's range runs from its first def to its last use,
// linearised by (block index, statement index) — a block-order
// approximation of the true dataflow live range that is exact for the
// straight-line and single-loop shapes this package's lowerer produces.
func UnifyTemporaries(resolve hir.StaticTraitResolve, fn *mir.Function) bool {
	pos := 0
	ranges := make(map[int]*interval)
	touch := func(local int) {
		if r, ok := ranges[local]; ok {
			if pos < r.start {
				r.start = pos
			}
			if pos > r.end {
				r.end = pos
			}
		} else {
			ranges[local] = &interval{start: pos, end: pos}
		}
	}
	for _, bb := range fn.Blocks {
		for _, s := range bb.Statements {
			if a, ok := s.(*mir.Assign); ok {
				if a.Dst.Root.Kind == mir.RootLocal {
					touch(a.Dst.Root.Index)
				}
				for _, lv := range rvalueReads(a.Src) {
					if lv.Root.Kind == mir.RootLocal {
						touch(lv.Root.Index)
					}
				}
			}
			pos++
		}
		pos++
	}

	protected := map[int]bool{mir.ReturnLocal: true}
	for i := 0; i < fn.ArgCount; i++ {
		protected[1+i] = true
	}

	candidates := make([]int, 0, len(ranges))
	for local := range ranges {
		if !protected[local] {
			candidates = append(candidates, local)
		}
	}
	sort.Ints(candidates)

	byType := map[string][]int{}
	for _, local := range candidates {
		ty := fn.Locals[local].Type
		key := ""
		if ty != nil {
			key = ty.String()
		}
		byType[key] = append(byType[key], local)
	}

	alias := map[int]int{} // dead local -> surviving local
	for _, group := range byType {
		var placed []int
		for _, local := range group {
			merged := false
			for _, survivor := range placed {
				if !intervalsOverlap(ranges[local], ranges[survivor]) {
					alias[local] = survivor
					ranges[survivor].start = min(ranges[survivor].start, ranges[local].start)
					ranges[survivor].end = max(ranges[survivor].end, ranges[local].end)
					merged = true
					break
				}
			}
			if !merged {
				placed = append(placed, local)
			}
		}
	}
	if len(alias) == 0 {
		return false
	}
	for _, bb := range fn.Blocks {
		for i, s := range bb.Statements {
			if a, ok := s.(*mir.Assign); ok {
				bb.Statements[i] = &mir.Assign{
					Dst: aliasLValue(a.Dst, alias),
					Src: aliasRValue(a.Src, alias),
				}
			}
		}
		aliasTerminator(bb.Terminator, alias)
	}
	return true
}

func intervalsOverlap(a, b *interval) bool {
	return a.start <= b.end && b.start <= a.end
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func aliasLValue(l mir.LValue, alias map[int]int) mir.LValue {
	if l.Root.Kind == mir.RootLocal {
		if to, ok := alias[l.Root.Index]; ok {
			l.Root.Index = to
		}
	}
	return l
}

func aliasRValue(rv mir.RValue, alias map[int]int) mir.RValue {
	aliasParam := func(p mir.Param) mir.Param {
		if p.Kind != mir.ParamConstant {
			p.LValue = aliasLValue(p.LValue, alias)
		}
		return p
	}
	switch rv.Kind {
	case mir.RVUse, mir.RVCast, mir.RVUniOp, mir.RVDstMeta, mir.RVDstPtr, mir.RVBorrow:
		rv.LValue = aliasLValue(rv.LValue, alias)
	case mir.RVBinOp:
		rv.Left = aliasParam(rv.Left)
		rv.Right = aliasParam(rv.Right)
	case mir.RVMakeDst:
		rv.Ptr = aliasParam(rv.Ptr)
		rv.Meta = aliasParam(rv.Meta)
	case mir.RVSizedArray:
		rv.Elem = aliasParam(rv.Elem)
	case mir.RVTuple, mir.RVArray, mir.RVStruct, mir.RVEnumVariant:
		params := append([]mir.Param(nil), rv.Params...)
		for i, p := range params {
			params[i] = aliasParam(p)
		}
		rv.Params = params
	case mir.RVUnionVariant:
		rv.VariantParam = aliasParam(rv.VariantParam)
	}
	return rv
}

func aliasTerminator(t mir.Terminator, alias map[int]int) {
	switch term := t.(type) {
	case *mir.If:
		term.Cond = aliasLValue(term.Cond, alias)
	case *mir.Switch:
		term.Value = aliasLValue(term.Value, alias)
	case *mir.SwitchValue:
		term.Value = aliasLValue(term.Value, alias)
	case *mir.Call:
		term.RetLValue = aliasLValue(term.RetLValue, alias)
		if term.Target.Kind == mir.CallValue {
			term.Target.LValue = aliasLValue(term.Target.LValue, alias)
		}
		for i, a := range term.Args {
			if a.Kind != mir.ParamConstant {
				a.LValue = aliasLValue(a.LValue, alias)
			}
			term.Args[i] = a
		}
	}
}
