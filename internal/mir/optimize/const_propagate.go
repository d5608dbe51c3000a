package optimize

import (
	"github.com/vellum-lang/vellum/internal/hir"
	"github.com/vellum-lang/vellum/internal/mir"
)

// ConstPropagate folds BinOp/UniOp rvalues whose operands are Constants
// (or locals already known to hold one), and tracks known bool/int/variant
// values within a block to collapse If/Switch terminators into a Goto
// (spec §4.7 step 2). Intrinsic calls are not folded, and SetDropFlag/Drop
// statements are left unchanged: the flag values it tracks are not used
// to rewrite them.
func ConstPropagate(resolve hir.StaticTraitResolve, fn *mir.Function) bool {
	changed := false
	for _, bb := range fn.Blocks {
		known := map[int]mir.Constant{}
		flags := map[int]bool{}
		for i, s := range bb.Statements {
			a, ok := s.(*mir.Assign)
			if !ok {
				if sf, ok := s.(*mir.SetDropFlag); ok {
					if sf.OtherIdx < 0 {
						flags[sf.FlagIdx] = sf.NewValue
					} else if v, ok := flags[sf.OtherIdx]; ok {
						flags[sf.FlagIdx] = sf.NewValue != v
					} else {
						delete(flags, sf.FlagIdx)
					}
				}
				continue
			}
			if root, simple := simpleLocal(a.Dst); simple {
				delete(known, root)
			}
			folded := foldRValue(resolve, known, a.Src)
			if folded != nil {
				bb.Statements[i] = &mir.Assign{Dst: a.Dst, Src: *folded}
				a = bb.Statements[i].(*mir.Assign)
				changed = true
			}
			if a.Src.Kind == mir.RVConstant {
				if root, simple := simpleLocal(a.Dst); simple {
					known[root] = a.Src.Const
				}
			}
		}

		switch t := bb.Terminator.(type) {
		case *mir.If:
			if root, simple := simpleLocal(t.Cond); simple {
				if c, ok := known[root]; ok && c.Kind == mir.ConstBool {
					target := t.FalseTarget
					if c.Bool {
						target = t.TrueTarget
					}
					bb.Terminator = &mir.Goto{Target: target}
					changed = true
				}
			}
		case *mir.Switch:
			if root, simple := simpleLocal(t.Value); simple {
				// A Switch discriminant is only known once an EnumVariant
				// constant representation exists; this package's Constant
				// model encodes that as ConstUint (the variant index).
				if c, ok := known[root]; ok && c.Kind == mir.ConstUint && int(c.Uint) < len(t.Targets) {
					bb.Terminator = &mir.Goto{Target: t.Targets[c.Uint]}
					changed = true
				}
			}
		}
	}
	return changed
}

func simpleLocal(l mir.LValue) (int, bool) {
	if len(l.Wrappers) != 0 {
		return 0, false
	}
	if l.Root.Kind == mir.RootLocal {
		return l.Root.Index, true
	}
	if l.Root.Kind == mir.RootReturn {
		return mir.ReturnLocal, true
	}
	return 0, false
}

// foldRValue returns a replacement RValue when rv can be statically
// evaluated, or nil when it cannot.
func foldRValue(resolve hir.StaticTraitResolve, known map[int]mir.Constant, rv mir.RValue) *mir.RValue {
	switch rv.Kind {
	case mir.RVBinOp:
		l, lok := resolveParam(known, rv.Left)
		r, rok := resolveParam(known, rv.Right)
		if !lok || !rok {
			return nil
		}
		if out, ok := foldBinOp(rv.BinOp, l, r); ok {
			res := mir.ConstRValue(out)
			return &res
		}
	case mir.RVUniOp:
		if root, simple := simpleLocal(rv.LValue); simple {
			if c, ok := known[root]; ok {
				if out, ok := foldUnOp(rv.UnOp, c); ok {
					res := mir.ConstRValue(out)
					return &res
				}
			}
		}
	}
	return nil
}

func resolveParam(known map[int]mir.Constant, p mir.Param) (mir.Constant, bool) {
	if p.Kind == mir.ParamConstant {
		return p.Const, true
	}
	if p.Kind == mir.ParamLValue {
		if root, simple := simpleLocal(p.LValue); simple {
			if c, ok := known[root]; ok {
				return c, true
			}
		}
	}
	return mir.Constant{}, false
}

func foldBinOp(op mir.BinOp, l, r mir.Constant) (mir.Constant, bool) {
	if op.IsOverflowChecked() {
		return mir.Constant{}, false // produces a tuple; left to a later pass
	}
	switch {
	case l.Kind == mir.ConstInt && r.Kind == mir.ConstInt:
		return foldIntOp(op, l.Int, r.Int, l.Type)
	case l.Kind == mir.ConstUint && r.Kind == mir.ConstUint:
		return foldUintOp(op, l.Uint, r.Uint, l.Type)
	case l.Kind == mir.ConstBool && r.Kind == mir.ConstBool:
		switch op {
		case mir.OpEq:
			return mir.BoolConst(l.Bool == r.Bool), true
		case mir.OpNe:
			return mir.BoolConst(l.Bool != r.Bool), true
		}
	}
	return mir.Constant{}, false
}

func foldIntOp(op mir.BinOp, l, r int64, ty *hir.TypeRef) (mir.Constant, bool) {
	switch op {
	case mir.OpAdd:
		return mir.IntConst(l+r, ty), true
	case mir.OpSub:
		return mir.IntConst(l-r, ty), true
	case mir.OpMul:
		return mir.IntConst(l*r, ty), true
	case mir.OpDiv:
		if r == 0 {
			return mir.Constant{}, false
		}
		return mir.IntConst(l/r, ty), true
	case mir.OpMod:
		if r == 0 {
			return mir.Constant{}, false
		}
		return mir.IntConst(l%r, ty), true
	case mir.OpEq:
		return mir.BoolConst(l == r), true
	case mir.OpNe:
		return mir.BoolConst(l != r), true
	case mir.OpLt:
		return mir.BoolConst(l < r), true
	case mir.OpLe:
		return mir.BoolConst(l <= r), true
	case mir.OpGt:
		return mir.BoolConst(l > r), true
	case mir.OpGe:
		return mir.BoolConst(l >= r), true
	}
	return mir.Constant{}, false
}

func foldUintOp(op mir.BinOp, l, r uint64, ty *hir.TypeRef) (mir.Constant, bool) {
	switch op {
	case mir.OpAdd:
		return mir.UintConst(l+r, ty), true
	case mir.OpSub:
		return mir.UintConst(l-r, ty), true
	case mir.OpMul:
		return mir.UintConst(l*r, ty), true
	case mir.OpDiv:
		if r == 0 {
			return mir.Constant{}, false
		}
		return mir.UintConst(l/r, ty), true
	case mir.OpMod:
		if r == 0 {
			return mir.Constant{}, false
		}
		return mir.UintConst(l%r, ty), true
	case mir.OpBitOr:
		return mir.UintConst(l|r, ty), true
	case mir.OpBitAnd:
		return mir.UintConst(l&r, ty), true
	case mir.OpBitXor:
		return mir.UintConst(l^r, ty), true
	case mir.OpBitShl:
		return mir.UintConst(l<<r, ty), true
	case mir.OpBitShr:
		return mir.UintConst(l>>r, ty), true
	case mir.OpEq:
		return mir.BoolConst(l == r), true
	case mir.OpNe:
		return mir.BoolConst(l != r), true
	case mir.OpLt:
		return mir.BoolConst(l < r), true
	case mir.OpLe:
		return mir.BoolConst(l <= r), true
	case mir.OpGt:
		return mir.BoolConst(l > r), true
	case mir.OpGe:
		return mir.BoolConst(l >= r), true
	}
	return mir.Constant{}, false
}

func foldUnOp(op mir.UnOp, c mir.Constant) (mir.Constant, bool) {
	switch {
	case op == mir.OpNeg && c.Kind == mir.ConstInt:
		return mir.IntConst(-c.Int, c.Type), true
	case op == mir.OpInv && c.Kind == mir.ConstBool:
		return mir.BoolConst(!c.Bool), true
	case op == mir.OpInv && c.Kind == mir.ConstUint:
		return mir.UintConst(^c.Uint, c.Type), true
	}
	return mir.Constant{}, false
}
