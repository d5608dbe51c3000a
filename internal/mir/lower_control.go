package mir

import "github.com/vellum-lang/vellum/internal/hir"

// lowerReturn assigns Value (if any) into the return slot and terminates
// the current block with Return, then opens a fresh unreachable block so
// later statements in the same source block still have somewhere to land
// (spec §4.2.2).
func (b *Builder) lowerReturn(r *hir.Return) {
	if r.Value != nil {
		rv := b.lowerExprToRValue(r.Value)
		if rv != nil {
			b.Emit(&Assign{Dst: Return(), Src: *rv})
		}
	}
	b.Terminate(&Return{})
	b.markEarlyExit()
	b.OpenBlock()
}

func (b *Builder) markEarlyExit() {
	for i := len(b.scopes) - 1; i >= 0; i-- {
		if b.scopes[i].Kind == ScopeSplit {
			if n := len(b.scopes[i].Arms); n > 0 {
				b.scopes[i].Arms[n-1].AlwaysEarlyTerminated = true
			}
			return
		}
	}
}

// loopScope finds the loop scope matching label ("" selects the
// innermost loop).
func (b *Builder) loopScope(label string) *Scope {
	for i := len(b.scopes) - 1; i >= 0; i-- {
		if b.scopes[i].Kind == ScopeLoop && (label == "" || b.scopes[i].Label == label) {
			return &b.scopes[i]
		}
	}
	return nil
}

func (b *Builder) lowerLoop(l *hir.Loop) {
	head := b.Fn.NewBlock()
	next := b.Fn.NewBlock()
	b.Terminate(&Goto{Target: head})
	b.Current = head

	b.scopes = append(b.scopes, Scope{Kind: ScopeLoop, Label: l.Label, HeadBlock: head, NextBlock: next})
	b.lowerBlock(l.Body)
	if _, incomplete := b.Fn.Blocks[b.Current].Terminator.(*Incomplete); incomplete {
		b.Terminate(&Goto{Target: head})
	}
	b.scopes = b.scopes[:len(b.scopes)-1]

	b.Current = next
}

func (b *Builder) lowerBreak(br *hir.Break) {
	scope := b.loopScope(br.Label)
	if br.Value != nil {
		rv := b.lowerExprToRValue(br.Value)
		if rv != nil {
			b.Emit(&Assign{Dst: Return(), Src: *rv})
		}
	}
	target := 0
	if scope != nil {
		target = scope.NextBlock
	}
	b.Terminate(&Goto{Target: target})
	b.markEarlyExit()
	b.OpenBlock()
}

func (b *Builder) lowerContinue(c *hir.Continue) {
	scope := b.loopScope(c.Label)
	target := 0
	if scope != nil {
		target = scope.HeadBlock
	}
	b.Terminate(&Goto{Target: target})
	b.markEarlyExit()
	b.OpenBlock()
}

// lowerIf lowers `if cond { then } [else else]`, joining both arms'
// results into a fresh local shared by the whole expression (spec
// §4.2.2's "join" step). A single `_` catch-all arm (handled by the
// match lowerer) is the only case permitted to skip the branch entirely.
func (b *Builder) lowerIf(i *hir.If) *RValue {
	cond := b.lowerExprToLValue(i.Cond)
	thenBB := b.Fn.NewBlock()
	elseBB := b.Fn.NewBlock()
	joinBB := b.Fn.NewBlock()
	b.Terminate(&If{Cond: cond, TrueTarget: thenBB, FalseTarget: elseBB})

	var resultLocal int
	hasResult := i.Type() != nil && i.Type().Kind() != hir.KindDiverge
	if hasResult {
		resultLocal = b.NewTemp(i.Type())
	}

	b.Current = thenBB
	thenArm := b.PushScope(ScopeSplit)
	_ = thenArm
	tr := b.lowerBlock(i.Then)
	if _, incomplete := b.Fn.Blocks[b.Current].Terminator.(*Incomplete); incomplete {
		if hasResult && tr != nil {
			b.Emit(&Assign{Dst: LocalPlace(resultLocal), Src: *tr})
		}
		b.Terminate(&Goto{Target: joinBB})
	}
	b.PopScope()

	b.Current = elseBB
	if i.Else != nil {
		er := b.lowerExprToRValue(i.Else)
		if _, incomplete := b.Fn.Blocks[b.Current].Terminator.(*Incomplete); incomplete {
			if hasResult && er != nil {
				b.Emit(&Assign{Dst: LocalPlace(resultLocal), Src: *er})
			}
			b.Terminate(&Goto{Target: joinBB})
		}
	} else {
		b.Terminate(&Goto{Target: joinBB})
	}

	b.Current = joinBB
	if hasResult {
		rv := Use(LocalPlace(resultLocal))
		return &rv
	}
	return nil
}

// lowerAssign lowers a plain or compound assignment (spec §4.2.2's
// Assignment node). A compound op is expanded here into a read-modify-write
// `dst = dst op value` BinOp assignment.
func (b *Builder) lowerAssign(a *hir.Assign) {
	dst := b.lowerExprToLValue(a.Place)
	if !a.IsOp {
		rv := b.lowerExprToRValue(a.Value)
		if rv != nil {
			b.Emit(&Assign{Dst: dst, Src: *rv})
		}
		return
	}
	left := UseParam(dst)
	right := b.lowerExprToParam(a.Value)
	b.Emit(&Assign{Dst: dst, Src: BinOpRValue(left, hirBinOp(a.Op), right)})
}

// lowerBinOp lowers a binary operator application. Overflow-checked
// arithmetic (checked mode) emits the _OV variant into a (T,bool)
// temporary and branches to Diverge on true (spec §4.2.2).
func (b *Builder) lowerBinOp(ex *hir.BinOpExpr) *RValue {
	left := b.lowerExprToParam(ex.Left)
	right := b.lowerExprToParam(ex.Right)
	op := hirBinOp(ex.Op)
	if b.CheckedArith {
		switch op {
		case OpAdd, OpSub, OpMul, OpDiv:
			rv := b.LowerCheckedArith(op, left, right, ex.Type())
			return &rv
		}
	}
	rv := BinOpRValue(left, op, right)
	return &rv
}

// LowerCheckedArith is the overflow-checked-mode path: it emits the _OV
// rvalue into a tuple temporary, branches to Diverge when the overflow
// flag is set, and returns the checked result value (spec §4.2.2).
func (b *Builder) LowerCheckedArith(op BinOp, left, right Param, resultTy *hir.TypeRef) RValue {
	ovOp := checkedVariant(op)
	tupleTy := hir.Tuple(resultTy, hir.Prim(hir.PrimBool))
	tmp := b.NewTemp(tupleTy)
	b.Emit(&Assign{Dst: LocalPlace(tmp), Src: BinOpRValue(left, ovOp, right)})
	b.SetState(tmp, StateInit)

	flagLocal := b.NewTemp(hir.Prim(hir.PrimBool))
	b.Emit(&Assign{Dst: LocalPlace(flagLocal), Src: Use(LocalPlace(tmp).Field(1))})
	b.SetState(flagLocal, StateInit)

	panicBB := b.Fn.NewBlock()
	b.Fn.Terminate(panicBB, &Diverge{})
	okBB := b.Fn.NewBlock()
	b.Terminate(&If{Cond: LocalPlace(flagLocal), TrueTarget: panicBB, FalseTarget: okBB})
	b.Current = okBB

	return Use(LocalPlace(tmp).Field(0))
}

func checkedVariant(op BinOp) BinOp {
	switch op {
	case OpAdd:
		return OpAddOv
	case OpSub:
		return OpSubOv
	case OpMul:
		return OpMulOv
	case OpDiv:
		return OpDivOv
	default:
		return op
	}
}

func hirBinOp(op hir.BinOp) BinOp {
	table := [...]BinOp{
		hir.BinAdd: OpAdd, hir.BinSub: OpSub, hir.BinMul: OpMul, hir.BinDiv: OpDiv, hir.BinRem: OpMod,
		hir.BinAnd: OpBitAnd, hir.BinOr: OpBitOr, hir.BinXor: OpBitXor, hir.BinShl: OpBitShl, hir.BinShr: OpBitShr,
		hir.BinEq: OpEq, hir.BinNe: OpNe, hir.BinLt: OpLt, hir.BinLe: OpLe, hir.BinGt: OpGt, hir.BinGe: OpGe,
	}
	if int(op) < len(table) {
		return table[op]
	}
	return OpEq
}

// lowerLogical desugars short-circuit && / || to an If (spec's note that
// these "don't always evaluate both operands").
func (b *Builder) lowerLogical(left, right hir.Expr, isAnd bool) *RValue {
	l := b.lowerExprToLValue(left)
	thenBB := b.Fn.NewBlock()
	elseBB := b.Fn.NewBlock()
	joinBB := b.Fn.NewBlock()
	if isAnd {
		b.Terminate(&If{Cond: l, TrueTarget: thenBB, FalseTarget: elseBB})
	} else {
		b.Terminate(&If{Cond: l, TrueTarget: elseBB, FalseTarget: thenBB})
	}

	result := b.NewTemp(hir.Prim(hir.PrimBool))

	b.Current = thenBB
	r := b.lowerExprToParam(right)
	b.Emit(&Assign{Dst: LocalPlace(result), Src: Use(paramToLValueOrTemp(b, r))})
	b.Terminate(&Goto{Target: joinBB})

	b.Current = elseBB
	b.Emit(&Assign{Dst: LocalPlace(result), Src: ConstRValue(BoolConst(!isAnd))})
	b.Terminate(&Goto{Target: joinBB})

	b.Current = joinBB
	rv := Use(LocalPlace(result))
	return &rv
}

func paramToLValueOrTemp(b *Builder, p Param) LValue {
	if p.Kind == ParamLValue {
		return p.LValue
	}
	ty := hir.Prim(hir.PrimBool)
	tmp := b.NewTemp(ty)
	if p.Kind == ParamConstant {
		b.Emit(&Assign{Dst: LocalPlace(tmp), Src: ConstRValue(p.Const)})
	} else {
		b.Emit(&Assign{Dst: LocalPlace(tmp), Src: BorrowRValue(p.Borrow, p.LValue)})
	}
	return LocalPlace(tmp)
}

// lowerCall lowers a call expression of any CallKind (spec §4.2.2's Call
// node); devirtualisation happens later, in cleanup (§4.6), so here every
// call just records its surface shape. A CallClosure call becomes a
// CallValue call, which cleanup does not expand further.
func (b *Builder) lowerCall(c *hir.Call) *RValue {
	args := make([]Param, len(c.Args))
	for i, a := range c.Args {
		args[i] = b.lowerExprToParam(a)
	}

	var target CallTarget
	switch c.Kind {
	case hir.CallFunction:
		target = CallTarget{Kind: CallPath, Path: c.FnPath}
	case hir.CallMethod:
		target = CallTarget{Kind: CallPath, Path: c.FnPath}
	case hir.CallTraitDyn:
		target = CallTarget{Kind: CallPath, Path: hir.NewPath(c.Trait.Crate, append(append([]string(nil), c.Trait.Segments...), c.Method)...)}
	case hir.CallClosure:
		lv := b.lowerExprToLValue(c.Callee)
		target = CallTarget{Kind: CallValue, LValue: lv}
	}

	retTy := c.Type()
	retLocal := b.NewTemp(retTy)
	retBB := b.Fn.NewBlock()
	panicBB := b.Fn.NewBlock()
	b.Fn.Terminate(panicBB, &Diverge{})

	b.Terminate(&Call{
		Target:      target,
		Args:        args,
		RetLValue:   LocalPlace(retLocal),
		RetTarget:   retBB,
		PanicTarget: panicBB,
	})
	b.Current = retBB
	b.SetState(retLocal, StateInit)
	rv := Use(LocalPlace(retLocal))
	return &rv
}
