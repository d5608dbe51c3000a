package mir

import "github.com/vellum-lang/vellum/internal/hir"

// Build lowers a typed HIR function body to a MIR function (spec §4.2,
// the `build(fn_path, args, ret_ty, hir_expr)` entry point of §6).
// argNames/argTypes describe the declared parameter list in order;
// the caller has already run typecheck, so no inference happens here.
func Build(path hir.Path, generics []hir.GenericParam, argNames []string, argTypes []*hir.TypeRef, retType *hir.TypeRef, body *hir.Block, resolve hir.StaticTraitResolve, checkedArith bool) *Function {
	b := NewBuilder(path, generics, retType, resolve)
	b.CheckedArith = checkedArith
	for i, ty := range argTypes {
		name := ""
		if i < len(argNames) {
			name = argNames[i]
		}
		b.AddArg(ty, name)
	}

	b.PushScope(ScopeVariables)
	result := b.lowerBlock(body)
	if _, isTerm := b.Fn.Blocks[b.Current].Terminator.(*Incomplete); isTerm {
		if result != nil {
			b.Emit(&Assign{Dst: Return(), Src: *result})
		}
		b.PopScope()
		b.Terminate(&Return{})
	} else {
		b.PopScope()
	}
	return b.Fn
}

// lowerBlock lowers a Block expression: each non-tail statement is lowered
// and its value dropped, the tail expression (if any) becomes the block's
// result rvalue (spec §4.2.2).
func (b *Builder) lowerBlock(blk *hir.Block) *RValue {
	b.PushScope(ScopeVariables)
	defer b.PopScope()

	for _, stmt := range blk.Stmts {
		if _, incomplete := b.Fn.Blocks[b.Current].Terminator.(*Incomplete); !incomplete {
			break // statement is unreachable; current block already terminated
		}
		b.lowerStmt(stmt)
	}
	if _, incomplete := b.Fn.Blocks[b.Current].Terminator.(*Incomplete); !incomplete {
		return nil
	}
	if blk.Tail == nil {
		return nil
	}
	return b.lowerExprToRValue(blk.Tail)
}

func (b *Builder) lowerStmt(stmt hir.Stmt) {
	switch s := stmt.(type) {
	case *hir.LetStmt:
		b.lowerLet(s)
	case *hir.ExprStmt:
		rv := b.lowerExprToRValue(s.Value)
		if rv != nil {
			tmp := b.NewTemp(s.Value.Type())
			b.Emit(&Assign{Dst: LocalPlace(tmp), Src: *rv})
			b.SetState(tmp, StateInit)
			b.dropLocal(tmp, s.Value.Type())
		}
	}
}

func (b *Builder) lowerLet(s *hir.LetStmt) {
	if s.Init == nil {
		b.declarePattern(s.Pat, s.Type)
		return
	}
	rv := b.lowerExprToRValue(s.Init)
	tmp := b.NewTemp(s.Init.Type())
	b.Emit(&Assign{Dst: LocalPlace(tmp), Src: *rv})
	b.SetState(tmp, StateInit)
	b.destructure(s.Pat, LocalPlace(tmp), s.Init.Type())
}

// declarePattern binds every name in a binding or tuple pattern to a fresh
// Uninit local, without an initializer (used for `let x: T;`). Other
// pattern kinds bind nothing here.
func (b *Builder) declarePattern(pat hir.Pattern, ty *hir.TypeRef) {
	switch p := pat.(type) {
	case *hir.BindingPat:
		b.BindLocal(ty, p.Name)
	case *hir.WildcardPat:
	case *hir.TuplePat:
		for i, sub := range p.Elems {
			_ = i
			b.declarePattern(sub, sub.Type())
		}
	}
}

// dropLocal emits an unconditional Drop for a non-Copy temporary right
// after its statement-position use (bare expression statements discard
// their value immediately rather than living until scope close).
func (b *Builder) dropLocal(local int, ty *hir.TypeRef) {
	if b.Resolve != nil && b.Resolve.TypeIsCopy(ty) {
		return
	}
	b.Emit(&Drop{Kind: DropDeep, LValue: LocalPlace(local), FlagIdx: -1})
	b.SetState(local, StateDropped)
}

// lowerExprToRValue lowers e and materialises its result as an RValue
// (wrapping a place in Use() when the node already produced an lvalue).
func (b *Builder) lowerExprToRValue(e hir.Expr) *RValue {
	switch ex := e.(type) {
	case *hir.Literal:
		rv := ConstRValue(literalToConstant(ex))
		return &rv
	case *hir.TupleLit:
		params := make([]Param, len(ex.Elems))
		for i, el := range ex.Elems {
			params[i] = b.lowerExprToParam(el)
		}
		rv := TupleRValue(params...)
		return &rv
	case *hir.ArrayLit:
		if ex.Repeat != nil {
			rv := SizedArray(b.lowerExprToParam(ex.Repeat), ex.Count)
			return &rv
		}
		params := make([]Param, len(ex.Elems))
		for i, el := range ex.Elems {
			params[i] = b.lowerExprToParam(el)
		}
		rv := ArrayRValue(params...)
		return &rv
	case *hir.StructLit:
		params := make([]Param, len(ex.Fields))
		for i, f := range ex.Fields {
			params[i] = b.lowerExprToParam(f)
		}
		rv := StructRValue(ex.StructPath, params...)
		return &rv
	case *hir.VariantLit:
		params := make([]Param, len(ex.Fields))
		for i, f := range ex.Fields {
			params[i] = b.lowerExprToParam(f)
		}
		rv := EnumVariant(ex.EnumPath, b.enumVariantIndex(ex), params...)
		return &rv
	case *hir.BinOpExpr:
		return b.lowerBinOp(ex)
	case *hir.UnOpExpr:
		lv := b.lowerExprToLValue(ex.Operand)
		rv := UniOpRValue(hirUnOp(ex.Op), lv)
		return &rv
	case *hir.LogicalAnd:
		return b.lowerLogical(ex.Left, ex.Right, true)
	case *hir.LogicalOr:
		return b.lowerLogical(ex.Left, ex.Right, false)
	case *hir.BorrowExpr:
		lv := b.lowerExprToLValue(ex.Place)
		rv := BorrowRValue(hirPointerModeToBorrowKind(ex.Mode), lv)
		return &rv
	case *hir.Cast:
		lv := b.lowerExprToLValue(ex.Value)
		rv := Cast(lv, ex.To)
		return &rv
	case *hir.If:
		return b.lowerIf(ex)
	case *hir.Match:
		return b.lowerMatch(ex)
	case *hir.Call:
		return b.lowerCall(ex)
	case *hir.Block:
		return b.lowerBlock(ex)
	case *hir.Return:
		b.lowerReturn(ex)
		return nil
	case *hir.Loop:
		b.lowerLoop(ex)
		return nil
	case *hir.Break:
		b.lowerBreak(ex)
		return nil
	case *hir.Continue:
		b.lowerContinue(ex)
		return nil
	case *hir.Assign:
		b.lowerAssign(ex)
		return nil
	default:
		lv := b.lowerExprToLValue(e)
		rv := Use(lv)
		return &rv
	}
}

// lowerExprToLValue lowers e as a place (spec §4.2.2's Field/Index/Deref/
// Downcast node family, plus variable references).
func (b *Builder) lowerExprToLValue(e hir.Expr) LValue {
	switch ex := e.(type) {
	case *hir.VarRef:
		idx, ok := b.Lookup(ex.Name)
		if !ok {
			return LocalPlace(0)
		}
		return LocalPlace(idx)
	case *hir.StaticRef:
		return StaticPlace(ex.Path)
	case *hir.Field:
		base := b.lowerExprToLValue(ex.Base)
		return base.Field(fieldIndex(ex.Name))
	case *hir.Index:
		base := b.lowerExprToLValue(ex.Base)
		idxLocal := b.materializeToLocal(ex.Idx)
		return base.Index(idxLocal)
	case *hir.Deref:
		base := b.lowerExprToLValue(ex.Base)
		return base.Deref()
	case *hir.Downcast:
		base := b.lowerExprToLValue(ex.Base)
		idx := 0
		if b.Resolve != nil && ex.Base.Type() != nil && ex.Base.Type().Kind() == hir.KindPath {
			if i, ok := b.Resolve.EnumVariantIndex(ex.Base.Type().Path(), ex.Variant); ok {
				idx = i
			}
		}
		return base.Downcast(idx)
	default:
		rv := b.lowerExprToRValue(e)
		tmp := b.NewTemp(e.Type())
		if rv != nil {
			b.Emit(&Assign{Dst: LocalPlace(tmp), Src: *rv})
		}
		b.SetState(tmp, StateInit)
		return LocalPlace(tmp)
	}
}

func (b *Builder) materializeToLocal(e hir.Expr) int {
	if v, ok := e.(*hir.VarRef); ok {
		if idx, ok := b.Lookup(v.Name); ok {
			return idx
		}
	}
	lv := b.lowerExprToLValue(e)
	if lv.Root.Kind == RootLocal && len(lv.Wrappers) == 0 {
		return lv.Root.Index
	}
	tmp := b.NewTemp(e.Type())
	b.Emit(&Assign{Dst: LocalPlace(tmp), Src: Use(lv)})
	b.SetState(tmp, StateInit)
	return tmp
}

// lowerExprToParam lowers e to whatever Param shape fits best: a constant
// literal stays a ConstParam, a bare borrow becomes a BorrowParam,
// everything else becomes a UseParam over a materialised lvalue.
func (b *Builder) lowerExprToParam(e hir.Expr) Param {
	if lit, ok := e.(*hir.Literal); ok {
		return ConstParam(literalToConstant(lit))
	}
	if borrow, ok := e.(*hir.BorrowExpr); ok {
		lv := b.lowerExprToLValue(borrow.Place)
		return BorrowParam(hirPointerModeToBorrowKind(borrow.Mode), lv)
	}
	lv := b.lowerExprToLValue(e)
	if local := lv.Root; local.Kind == RootLocal && len(lv.Wrappers) == 0 {
		b.MarkMoved(local.Index, e.Type())
	}
	return UseParam(lv)
}

func literalToConstant(l *hir.Literal) Constant {
	switch l.Kind {
	case hir.LitInt:
		if ty := l.Type(); ty != nil && ty.Kind() == hir.KindPrimitive && !ty.Primitive().IsSigned() {
			return UintConst(uint64(l.Int), ty)
		}
		return IntConst(l.Int, l.Type())
	case hir.LitFloat:
		return FloatConst(l.Float, l.Type())
	case hir.LitBool:
		return BoolConst(l.Bool)
	case hir.LitString:
		return StringConst(l.Str)
	case hir.LitByteString:
		return ByteStringConst(l.Bytes)
	default:
		return UintConst(uint64(l.Int), l.Type())
	}
}

func fieldIndex(name string) int {
	// Tuple-like/positional field names are small decimal strings; named
	// fields are resolved to an index by the caller (name resolution) and
	// arrive here already as "0", "1", ... Field name -> offset is a
	// resolver concern outside this package's scope.
	n := 0
	for _, r := range name {
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + int(r-'0')
	}
	return n
}

func (b *Builder) enumVariantIndex(ex *hir.VariantLit) int {
	if b.Resolve == nil {
		return 0
	}
	if idx, ok := b.Resolve.EnumVariantIndex(ex.EnumPath, ex.Variant); ok {
		return idx
	}
	return 0
}

func hirUnOp(u hir.UnOp) UnOp {
	if u == hir.UnNeg {
		return OpNeg
	}
	return OpInv
}

func hirPointerModeToBorrowKind(m hir.PointerMode) BorrowKind {
	switch m {
	case hir.ModeMut:
		return BorrowMut
	case hir.ModeOwned:
		return BorrowOwned
	default:
		return BorrowShared
	}
}
