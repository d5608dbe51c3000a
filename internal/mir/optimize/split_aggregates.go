package optimize

import (
	"github.com/vellum-lang/vellum/internal/hir"
	"github.com/vellum-lang/vellum/internal/mir"
)

// SplitAggregates decomposes a local assigned a single Tuple rvalue and
// only ever read back through Field projections into one fresh local per
// field, splitting the original assignment element-wise (spec §4.7 step
// 4). This lets DeadAssignments and PropagateKnownValues reach through
// fields the aggregate assignment would otherwise hide.
func SplitAggregates(resolve hir.StaticTraitResolve, fn *mir.Function) bool {
	changed := false
	for _, bb := range fn.Blocks {
		for i, s := range bb.Statements {
			a, ok := s.(*mir.Assign)
			if !ok || a.Src.Kind != mir.RVTuple {
				continue
			}
			root, simple := simpleLocal(a.Dst)
			if !simple {
				continue
			}
			if !onlyFieldReads(fn, root) {
				continue
			}
			fieldLocals := make([]int, len(a.Src.Params))
			for fi, p := range a.Src.Params {
				ty := paramType(resolve, fn, p)
				fieldLocals[fi] = fn.NewLocal(ty, "")
			}
			replacement := make([]mir.Statement, len(fieldLocals))
			for fi, fl := range fieldLocals {
				replacement[fi] = &mir.Assign{Dst: mir.LocalPlace(fl), Src: mir.RValue{Kind: mir.RVUse, LValue: paramAsLValue(a.Src.Params[fi])}}
				if a.Src.Params[fi].Kind == mir.ParamConstant {
					replacement[fi] = &mir.Assign{Dst: mir.LocalPlace(fl), Src: mir.ConstRValue(a.Src.Params[fi].Const)}
				}
			}
			bb.Statements = append(bb.Statements[:i], append(replacement, bb.Statements[i+1:]...)...)
			rewriteFieldReads(fn, root, fieldLocals)
			changed = true
			break // statement indices shifted; resume on next outer pass
		}
	}
	return changed
}

func onlyFieldReads(fn *mir.Function, local int) bool {
	ok := true
	bare := 0
	walkLValues(fn, func(l mir.LValue) {
		if l.Root.Kind != mir.RootLocal || l.Root.Index != local {
			return
		}
		if len(l.Wrappers) == 0 {
			bare++ // the defining write; any other whole-value use disqualifies
			return
		}
		if l.Wrappers[0].Kind != mir.WrapField {
			ok = false
		}
	})
	return ok && bare == 1
}

func rewriteFieldReads(fn *mir.Function, local int, fieldLocals []int) {
	for _, bb := range fn.Blocks {
		for i, s := range bb.Statements {
			a, isAssign := s.(*mir.Assign)
			if !isAssign {
				continue
			}
			bb.Statements[i] = &mir.Assign{
				Dst: retargetLValue(a.Dst, local, fieldLocals),
				Src: retargetRValue(a.Src, local, fieldLocals),
			}
		}
	}
}

func retargetLValue(l mir.LValue, local int, fieldLocals []int) mir.LValue {
	if l.Root.Kind == mir.RootLocal && l.Root.Index == local && len(l.Wrappers) > 0 && l.Wrappers[0].Kind == mir.WrapField {
		idx := l.Wrappers[0].FieldIndex
		if idx < len(fieldLocals) {
			rest := mir.LocalPlace(fieldLocals[idx])
			for _, w := range l.Wrappers[1:] {
				rest = appendWrapper(rest, w)
			}
			return rest
		}
	}
	return l
}

func appendWrapper(l mir.LValue, w mir.Wrapper) mir.LValue {
	switch w.Kind {
	case mir.WrapDeref:
		return l.Deref()
	case mir.WrapField:
		return l.Field(w.FieldIndex)
	case mir.WrapDowncast:
		return l.Downcast(w.VariantIdx)
	case mir.WrapIndex:
		return l.Index(w.IndexLocal)
	}
	return l
}

func retargetRValue(rv mir.RValue, local int, fieldLocals []int) mir.RValue {
	switch rv.Kind {
	case mir.RVUse, mir.RVCast, mir.RVUniOp, mir.RVDstMeta, mir.RVDstPtr, mir.RVBorrow:
		rv.LValue = retargetLValue(rv.LValue, local, fieldLocals)
	case mir.RVBinOp:
		rv.Left = retargetParam(rv.Left, local, fieldLocals)
		rv.Right = retargetParam(rv.Right, local, fieldLocals)
	case mir.RVTuple, mir.RVArray, mir.RVStruct, mir.RVEnumVariant:
		params := append([]mir.Param(nil), rv.Params...)
		for i, p := range params {
			params[i] = retargetParam(p, local, fieldLocals)
		}
		rv.Params = params
	}
	return rv
}

func retargetParam(p mir.Param, local int, fieldLocals []int) mir.Param {
	if p.Kind != mir.ParamConstant {
		p.LValue = retargetLValue(p.LValue, local, fieldLocals)
	}
	return p
}

func paramAsLValue(p mir.Param) mir.LValue {
	return p.LValue
}

func paramType(resolve hir.StaticTraitResolve, fn *mir.Function, p mir.Param) *hir.TypeRef {
	if p.Kind == mir.ParamConstant {
		return p.Const.Type
	}
	return lvalueType(fn, p.LValue)
}

// lvalueType best-effort resolves a place's static type, mirroring
// Validate's typeOfLValue for the handful of wrapper kinds this pass needs.
func lvalueType(fn *mir.Function, l mir.LValue) *hir.TypeRef {
	var cur *hir.TypeRef
	switch l.Root.Kind {
	case mir.RootReturn:
		cur = fn.RetType
	case mir.RootArgument:
		if 1+l.Root.Index >= len(fn.Locals) {
			return nil
		}
		cur = fn.Locals[1+l.Root.Index].Type
	case mir.RootStatic:
		return nil
	default:
		if l.Root.Index >= len(fn.Locals) {
			return nil
		}
		cur = fn.Locals[l.Root.Index].Type
	}
	for _, w := range l.Wrappers {
		if cur == nil {
			return nil
		}
		switch w.Kind {
		case mir.WrapDeref:
			cur = cur.Inner()
		case mir.WrapField:
			if cur.Kind() == hir.KindTuple && w.FieldIndex < len(cur.Elems()) {
				cur = cur.Elems()[w.FieldIndex]
			} else {
				return nil
			}
		default:
			return nil
		}
	}
	return cur
}

// walkLValues visits every lvalue read or written anywhere in fn.
func walkLValues(fn *mir.Function, visit func(mir.LValue)) {
	for _, bb := range fn.Blocks {
		for _, s := range bb.Statements {
			if a, ok := s.(*mir.Assign); ok {
				visit(a.Dst)
				for _, lv := range rvalueReads(a.Src) {
					visit(lv)
				}
			}
		}
		switch t := bb.Terminator.(type) {
		case *mir.If:
			visit(t.Cond)
		case *mir.Switch:
			visit(t.Value)
		case *mir.SwitchValue:
			visit(t.Value)
		case *mir.Call:
			visit(t.RetLValue)
			for _, a := range t.Args {
				if a.Kind != mir.ParamConstant {
					visit(a.LValue)
				}
			}
		}
	}
}
