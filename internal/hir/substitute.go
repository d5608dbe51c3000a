package hir

// Substitute walks t and replaces every KindGeneric parameter bound in subst
// with its concrete type, recursing into every composite TypeRef variant.
// This must be total over the Kind enum (spec §9): a missing case would
// leave a stray generic parameter in monomorphised MIR.
func Substitute(t *TypeRef, subst Subst) *TypeRef {
	if t == nil {
		return nil
	}
	switch t.Kind() {
	case KindInfer, KindDiverge, KindPrimitive, KindNamedFunction, KindClosure, KindGenerator:
		return t
	case KindPath:
		return PathType(SubstitutePath(t.Path(), subst))
	case KindGeneric:
		if repl, ok := subst.Lookup(t.GenericName()); ok {
			return repl
		}
		return t
	case KindTraitObject:
		traits := make([]Path, len(t.Traits()))
		for i, tr := range t.Traits() {
			traits[i] = SubstitutePath(tr, subst)
		}
		return TraitObject(t.ObjectLifetime(), traits...)
	case KindErasedAlias:
		traits := make([]Path, len(t.Traits()))
		for i, tr := range t.Traits() {
			traits[i] = SubstitutePath(tr, subst)
		}
		return ErasedAlias(t.ErasedTag(), traits...)
	case KindArray:
		return Array(Substitute(t.Inner(), subst), t.ArraySize())
	case KindSlice:
		return Slice(Substitute(t.Inner(), subst))
	case KindTuple:
		elems := make([]*TypeRef, len(t.Elems()))
		for i, e := range t.Elems() {
			elems[i] = Substitute(e, subst)
		}
		return Tuple(elems...)
	case KindBorrow:
		return Borrow(t.PointerMode(), t.Lifetime(), Substitute(t.Inner(), subst))
	case KindPointer:
		return Pointer(t.PointerMode(), Substitute(t.Inner(), subst))
	case KindFunctionPointer:
		return FunctionPointer(substituteSig(t.FnSig(), subst))
	default:
		return t
	}
}

func substituteSig(f *FunctionSig, subst Subst) *FunctionSig {
	if f == nil {
		return nil
	}
	params := make([]*TypeRef, len(f.Params))
	for i, p := range f.Params {
		params[i] = Substitute(p, subst)
	}
	return &FunctionSig{Params: params, Ret: Substitute(f.Ret, subst), Variadic: f.Variadic}
}

// SubstitutePath substitutes a Path's own generic arguments (not its Self,
// which callers fold in as an ordinary generic binding when relevant).
func SubstitutePath(p Path, subst Subst) Path {
	if len(p.Params.Types) == 0 {
		return p
	}
	types := make([]*TypeRef, len(p.Params.Types))
	for i, t := range p.Params.Types {
		types[i] = Substitute(t, subst)
	}
	return p.WithParams(types...)
}
