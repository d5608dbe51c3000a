package mir

import "github.com/vellum-lang/vellum/internal/hir"

// lowerMatch compiles a match expression (spec §4.2.3). Guards force the
// SIMPLE linear strategy since decision-tree sharing could reorder
// observable side effects. Otherwise, when every arm is a variant,
// literal, range, wildcard or binding pattern, lowerMatchDecisionTree
// runs: a match with variant arms dispatches through one Switch, and a
// match without variant arms (literal/range only) is lowered by the
// SIMPLE chain. Any other pattern kind selects SIMPLE directly.
func (b *Builder) lowerMatch(m *hir.Match) *RValue {
	if len(m.Arms) == 1 {
		if _, ok := m.Arms[0].Pat.(*hir.WildcardPat); ok && m.Arms[0].Guard == nil {
			// spec §8: a single `_` arm lowers to a direct Goto, not a switch.
			body := b.Fn.NewBlock()
			b.Terminate(&Goto{Target: body})
			b.Current = body
			return b.lowerMatchArmBody(m, 0, nil, LValue{})
		}
	}

	scrutLV := b.lowerExprToLValue(m.Scrutinee)
	if hasGuard(m.Arms) || !canBuildDecisionTree(m.Arms) {
		return b.lowerMatchSimple(m, scrutLV)
	}
	return b.lowerMatchDecisionTree(m, scrutLV)
}

func hasGuard(arms []hir.MatchArm) bool {
	for _, a := range arms {
		if a.Guard != nil {
			return true
		}
	}
	return false
}

func canBuildDecisionTree(arms []hir.MatchArm) bool {
	for _, a := range arms {
		switch a.Pat.(type) {
		case *hir.VariantPat, *hir.LiteralPat, *hir.RangePat, *hir.WildcardPat, *hir.BindingPat:
		default:
			return false
		}
	}
	return true
}

// lowerMatchSimple emits one comparison block per arm, falling through to
// the next arm's test on failure (spec §4.2.3 strategy 1: "always
// correct").
func (b *Builder) lowerMatchSimple(m *hir.Match, scrutLV LValue) *RValue {
	joinBB := b.Fn.NewBlock()
	var resultLocal int
	hasResult := m.Type() != nil && m.Type().Kind() != hir.KindDiverge
	if hasResult {
		resultLocal = b.NewTemp(m.Type())
	}

	for i, arm := range m.Arms {
		testFail := b.Fn.NewBlock()
		bodyBB := b.Fn.NewBlock()
		cond := b.emitPatternTest(arm.Pat, scrutLV, m.Scrutinee.Type())
		if cond == nil {
			b.Terminate(&Goto{Target: bodyBB})
		} else {
			b.Terminate(&If{Cond: *cond, TrueTarget: bodyBB, FalseTarget: testFail})
		}

		b.Current = bodyBB
		b.destructure(arm.Pat, scrutLV, m.Scrutinee.Type())
		if arm.Guard != nil {
			guardOk := b.Fn.NewBlock()
			guardCond := b.lowerExprToLValue(arm.Guard)
			b.Terminate(&If{Cond: guardCond, TrueTarget: guardOk, FalseTarget: testFail})
			b.Current = guardOk
		}
		rv := b.lowerExprToRValue(arm.Body)
		if _, incomplete := b.Fn.Blocks[b.Current].Terminator.(*Incomplete); incomplete {
			if hasResult && rv != nil {
				b.Emit(&Assign{Dst: LocalPlace(resultLocal), Src: *rv})
			}
			b.Terminate(&Goto{Target: joinBB})
		}

		b.Current = testFail
		if i == len(m.Arms)-1 {
			b.Terminate(&Diverge{}) // exhaustiveness is a typecheck-time guarantee; unreachable here
		}
	}

	b.Current = joinBB
	if hasResult {
		rv := Use(LocalPlace(resultLocal))
		return &rv
	}
	return nil
}

// lowerMatchDecisionTree builds a Switch/If dispatch over the scrutinee's
// top-level discriminant (spec §4.2.3 strategy 2, flattened to one level:
// this package does not need multi-column tries since HIR patterns here
// are pre-flattened to a single discriminating column per arm by the
// typed-HIR producer).
func (b *Builder) lowerMatchDecisionTree(m *hir.Match, scrutLV LValue) *RValue {
	joinBB := b.Fn.NewBlock()
	var resultLocal int
	hasResult := m.Type() != nil && m.Type().Kind() != hir.KindDiverge
	if hasResult {
		resultLocal = b.NewTemp(m.Type())
	}

	variantArms := map[int]int{} // variant index -> arm index
	var defaultArm = -1
	var order []int
	for i, arm := range m.Arms {
		if vp, ok := arm.Pat.(*hir.VariantPat); ok {
			idx := b.variantIndexOf(vp)
			variantArms[idx] = i
			order = append(order, idx)
			continue
		}
		defaultArm = i
	}

	if len(variantArms) > 0 {
		maxIdx := 0
		for idx := range variantArms {
			if idx > maxIdx {
				maxIdx = idx
			}
		}
		targets := make([]int, maxIdx+1)
		armBodyBB := make([]int, len(m.Arms))
		for i := range m.Arms {
			armBodyBB[i] = b.Fn.NewBlock()
		}
		for idx := 0; idx <= maxIdx; idx++ {
			if armIdx, ok := variantArms[idx]; ok {
				targets[idx] = armBodyBB[armIdx]
			} else if defaultArm >= 0 {
				targets[idx] = armBodyBB[defaultArm]
			}
		}
		b.Terminate(&Switch{Value: scrutLV, Targets: targets})

		for i, arm := range m.Arms {
			b.Current = armBodyBB[i]
			b.destructure(arm.Pat, scrutLV, m.Scrutinee.Type())
			rv := b.lowerExprToRValue(arm.Body)
			if _, incomplete := b.Fn.Blocks[b.Current].Terminator.(*Incomplete); incomplete {
				if hasResult && rv != nil {
					b.Emit(&Assign{Dst: LocalPlace(resultLocal), Src: *rv})
				}
				b.Terminate(&Goto{Target: joinBB})
			}
		}
		b.Current = joinBB
		if hasResult {
			rv := Use(LocalPlace(resultLocal))
			return &rv
		}
		return nil
	}

	// Literal/range arms: fall back to the simple chain, which already
	// handles them correctly; a real trie-merge of overlapping ranges is
	// an open question this package resolves conservatively (spec §9).
	return b.lowerMatchSimple(m, scrutLV)
}

// variantIndexOf looks up vp's declaration-order variant index through the
// builder's resolve collaborator, defaulting to 0 when Resolve is nil or
// doesn't recognise the enum (e.g. a hand-built fixture in a test).
func (b *Builder) variantIndexOf(vp *hir.VariantPat) int {
	if b.Resolve == nil {
		return 0
	}
	if idx, ok := b.Resolve.EnumVariantIndex(vp.EnumPath, vp.Variant); ok {
		return idx
	}
	return 0
}

func (b *Builder) lowerMatchArmBody(m *hir.Match, armIdx int, cond *LValue, scrutLV LValue) *RValue {
	arm := m.Arms[armIdx]
	b.destructure(arm.Pat, scrutLV, m.Scrutinee.Type())
	return b.lowerExprToRValue(arm.Body)
}

// emitPatternTest returns the bool lvalue testing whether scrut (of type
// ty) matches pat, or nil if pat always matches (wildcard/binding).
func (b *Builder) emitPatternTest(pat hir.Pattern, scrut LValue, ty *hir.TypeRef) *LValue {
	switch p := pat.(type) {
	case *hir.WildcardPat, *hir.BindingPat:
		return nil
	case *hir.LiteralPat:
		tmp := b.NewTemp(hir.Prim(hir.PrimBool))
		b.Emit(&Assign{Dst: LocalPlace(tmp), Src: BinOpRValue(UseParam(scrut), OpEq, ConstParam(literalPatToConstant(p)))})
		b.SetState(tmp, StateInit)
		lv := LocalPlace(tmp)
		return &lv
	case *hir.RangePat:
		loOp, hiOp := OpGe, OpLe
		if !p.Inclusive {
			hiOp = OpLt
		}
		loLocal := b.NewTemp(hir.Prim(hir.PrimBool))
		b.Emit(&Assign{Dst: LocalPlace(loLocal), Src: BinOpRValue(UseParam(scrut), loOp, ConstParam(IntConst(p.Lo, ty)))})
		hiLocal := b.NewTemp(hir.Prim(hir.PrimBool))
		b.Emit(&Assign{Dst: LocalPlace(hiLocal), Src: BinOpRValue(UseParam(scrut), hiOp, ConstParam(IntConst(p.Hi, ty)))})
		both := b.NewTemp(hir.Prim(hir.PrimBool))
		b.Emit(&Assign{Dst: LocalPlace(both), Src: BinOpRValue(UseParam(LocalPlace(loLocal)), OpBitAnd, UseParam(LocalPlace(hiLocal)))})
		lv := LocalPlace(both)
		return &lv
	case *hir.VariantPat:
		idx := b.variantIndexOf(p)
		tag := b.NewTemp(hir.Prim(hir.PrimUsize))
		b.Emit(&Assign{Dst: LocalPlace(tag), Src: Use(scrut)})
		tmp := b.NewTemp(hir.Prim(hir.PrimBool))
		b.Emit(&Assign{Dst: LocalPlace(tmp), Src: BinOpRValue(UseParam(LocalPlace(tag)), OpEq, ConstParam(UintConst(uint64(idx), hir.Prim(hir.PrimUsize))))})
		b.SetState(tmp, StateInit)
		lv := LocalPlace(tmp)
		return &lv
	default:
		return nil
	}
}

func literalPatToConstant(p *hir.LiteralPat) Constant {
	switch p.Kind {
	case hir.LitBool:
		return BoolConst(p.Bool)
	case hir.LitChar:
		return UintConst(uint64(p.Char), hir.Prim(hir.PrimChar))
	case hir.LitString:
		return StringConst(p.Str)
	default:
		return IntConst(p.Int, nil)
	}
}

// destructure binds pat's names against place (spec §4.2.4): the test
// chain has already run, so refutable components are assumed matched.
func (b *Builder) destructure(pat hir.Pattern, place LValue, ty *hir.TypeRef) {
	switch p := pat.(type) {
	case *hir.WildcardPat:
	case *hir.BindingPat:
		local := b.BindLocal(ty, p.Name)
		if b.Resolve != nil && b.Resolve.TypeIsCopy(ty) {
			b.Emit(&Assign{Dst: LocalPlace(local), Src: Use(place)})
		} else {
			b.Emit(&Assign{Dst: LocalPlace(local), Src: Use(place)})
			if place.Root.Kind == RootLocal && len(place.Wrappers) == 0 {
				b.MarkMoved(place.Root.Index, ty)
			}
		}
		b.SetState(local, StateInit)
		if p.Sub != nil {
			b.destructure(p.Sub, place, ty)
		}
	case *hir.TuplePat:
		elems := ty.Elems()
		for i, sub := range p.Elems {
			var elemTy *hir.TypeRef
			if i < len(elems) {
				elemTy = elems[i]
			}
			b.destructure(sub, place.Field(i), elemTy)
		}
	case *hir.StructPat:
		for i, sub := range p.Fields {
			b.destructure(sub, place.Field(i), sub.Type())
		}
	case *hir.VariantPat:
		idx := b.variantIndexOf(p)
		payload := place.Downcast(idx)
		for i, sub := range p.Fields {
			b.destructure(sub, payload.Field(i), sub.Type())
		}
	case *hir.RefPat:
		b.destructure(p.Sub, place.Deref(), ty.Inner())
	case *hir.LiteralPat, *hir.RangePat:
		// already tested; no binding.
	case *hir.OrPat:
		for _, alt := range p.Alternatives {
			b.destructure(alt, place, ty)
		}
	case *hir.SlicePat:
		for i, sub := range p.Prefix {
			b.destructure(sub, place.Index(b.constIndexLocal(i)), sub.Type())
		}
	}
}

func (b *Builder) constIndexLocal(i int) int {
	tmp := b.NewTemp(hir.Prim(hir.PrimUsize))
	b.Emit(&Assign{Dst: LocalPlace(tmp), Src: ConstRValue(UintConst(uint64(i), hir.Prim(hir.PrimUsize)))})
	b.SetState(tmp, StateInit)
	return tmp
}
