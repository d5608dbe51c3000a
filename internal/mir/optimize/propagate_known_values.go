package optimize

import (
	"github.com/vellum-lang/vellum/internal/hir"
	"github.com/vellum-lang/vellum/internal/mir"
)

// PropagateKnownValues replaces a read of `X.f` with `a_f` when a
// dominating assignment `X = Tuple(a, b, ...)` exists earlier in the same
// block, X is Copy, and neither `a_f` nor `X` has been reassigned in
// between (spec §4.7 step 5).
func PropagateKnownValues(resolve hir.StaticTraitResolve, fn *mir.Function) bool {
	changed := false
	for _, bb := range fn.Blocks {
		known := map[int][]mir.Param{}
		for i, s := range bb.Statements {
			a, ok := s.(*mir.Assign)
			if !ok {
				continue
			}
			newSrc := substituteFieldReads(resolve, fn, known, a.Src)
			if newSrc != nil {
				bb.Statements[i] = &mir.Assign{Dst: a.Dst, Src: *newSrc}
				a = bb.Statements[i].(*mir.Assign)
				changed = true
			}

			if root, simple := simpleLocal(a.Dst); simple {
				delete(known, root)
				for k, params := range known {
					for _, p := range params {
						if touchesLocal(p, root) {
							delete(known, k)
							break
						}
					}
				}
				if a.Src.Kind == mir.RVTuple && isCopyType(resolve, lvalueType(fn, a.Dst)) {
					known[root] = append([]mir.Param(nil), a.Src.Params...)
				}
			}
		}
	}
	return changed
}

func touchesLocal(p mir.Param, local int) bool {
	if p.Kind == mir.ParamConstant {
		return false
	}
	root, simple := simpleLocal(p.LValue)
	return simple && root == local
}

func isCopyType(resolve hir.StaticTraitResolve, ty *hir.TypeRef) bool {
	if ty == nil || resolve == nil {
		return false
	}
	return resolve.TypeIsCopy(ty)
}

// substituteFieldReads rewrites any `X.f` read inside rv with the known
// field value for X, when available.
func substituteFieldReads(resolve hir.StaticTraitResolve, fn *mir.Function, known map[int][]mir.Param, rv mir.RValue) *mir.RValue {
	changedAny := false
	subst := func(l mir.LValue) (mir.Param, bool) {
		if len(l.Wrappers) != 1 || l.Wrappers[0].Kind != mir.WrapField || l.Root.Kind != mir.RootLocal {
			return mir.Param{}, false
		}
		params, ok := known[l.Root.Index]
		idx := l.Wrappers[0].FieldIndex
		if !ok || idx >= len(params) {
			return mir.Param{}, false
		}
		return params[idx], true
	}

	out := rv
	switch rv.Kind {
	case mir.RVUse:
		if p, ok := subst(rv.LValue); ok {
			changedAny = true
			if p.Kind == mir.ParamConstant {
				out = mir.ConstRValue(p.Const)
			} else {
				out = mir.RValue{Kind: mir.RVUse, LValue: p.LValue}
			}
		}
	case mir.RVBinOp:
		if p, ok := subst(rv.Left.LValue); ok && rv.Left.Kind == mir.ParamLValue {
			out.Left = p
			changedAny = true
		}
		if p, ok := subst(rv.Right.LValue); ok && rv.Right.Kind == mir.ParamLValue {
			out.Right = p
			changedAny = true
		}
	}
	if !changedAny {
		return nil
	}
	return &out
}
