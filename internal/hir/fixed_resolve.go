package hir

// FixedResolve is an in-memory StaticTraitResolve implementation built
// from fixture tables. It stands in for a real typecheck/trait-solver
// collaborator in this repository's own tests (spec §1 treats that
// collaborator as external); it does no inference of its own, it only
// answers queries from data the test registered up front.
type FixedResolve struct {
	Copy    map[string]bool // TypeRef.String() -> is Copy
	Sized   map[string]bool // TypeRef.String() -> is Sized (default true unless unsized-shaped)
	Sizes   map[string]uint64
	Aligns  map[string]uint64
	Reprs   map[string]TypeRepr
	VTables map[string]*TypeRef // trait path string -> vtable type
	VTableIdx map[string]int    // "trait::method" -> slot
	Values  map[string]Value    // path string -> resolved value
	Impls   []Impl
	Enums   map[string]*Enum // enum path string -> declaration, for EnumVariantIndex
}

// NewFixedResolve returns an empty FixedResolve ready for a test to populate.
func NewFixedResolve() *FixedResolve {
	return &FixedResolve{
		Copy:      make(map[string]bool),
		Sized:     make(map[string]bool),
		Sizes:     make(map[string]uint64),
		Aligns:    make(map[string]uint64),
		Reprs:     make(map[string]TypeRepr),
		VTables:   make(map[string]*TypeRef),
		VTableIdx: make(map[string]int),
		Values:    make(map[string]Value),
		Enums:     make(map[string]*Enum),
	}
}

func (r *FixedResolve) TypeIsCopy(t *TypeRef) bool {
	if t == nil {
		return false
	}
	switch t.Kind() {
	case KindPrimitive:
		return true
	case KindPointer:
		return true
	}
	if v, ok := r.Copy[t.String()]; ok {
		return v
	}
	return false
}

func (r *FixedResolve) TypeIsSized(t *TypeRef) bool {
	if t == nil {
		return true
	}
	if t.Kind() == KindSlice || t.Kind() == KindTraitObject || t.Kind() == KindErasedAlias {
		return false
	}
	if v, ok := r.Sized[t.String()]; ok {
		return v
	}
	return true
}

func (r *FixedResolve) MetadataType(t *TypeRef) *TypeRef {
	switch t.Class() {
	case MetadataLength:
		return Prim(PrimUsize)
	case MetadataVTable:
		return Pointer(ModeShared, Prim(PrimU8)) // opaque *const VTable stand-in
	default:
		return nil
	}
}

func (r *FixedResolve) SizeOf(t *TypeRef) (uint64, bool) {
	if s, ok := r.Sizes[t.String()]; ok {
		return s, true
	}
	return primitiveSize(t)
}

func (r *FixedResolve) AlignOf(t *TypeRef) (uint64, bool) {
	if a, ok := r.Aligns[t.String()]; ok {
		return a, true
	}
	return primitiveSize(t)
}

func primitiveSize(t *TypeRef) (uint64, bool) {
	if t == nil || t.Kind() != KindPrimitive {
		return 0, false
	}
	switch t.Primitive() {
	case PrimI8, PrimU8, PrimBool:
		return 1, true
	case PrimI16, PrimU16:
		return 2, true
	case PrimI32, PrimU32, PrimF32, PrimChar:
		return 4, true
	case PrimI64, PrimU64, PrimF64, PrimIsize, PrimUsize:
		return 8, true
	case PrimI128, PrimU128:
		return 16, true
	default:
		return 0, false
	}
}

func (r *FixedResolve) TypeRepr(t *TypeRef) (TypeRepr, bool) {
	repr, ok := r.Reprs[t.String()]
	return repr, ok
}

func (r *FixedResolve) GetVTableType(trait Path) (*TypeRef, bool) {
	t, ok := r.VTables[trait.String()]
	return t, ok
}

func (r *FixedResolve) GetVTableIndex(trait Path, item string) (int, bool) {
	idx, ok := r.VTableIdx[trait.String()+"::"+item]
	return idx, ok
}

func (r *FixedResolve) GetValue(p Path) (Value, bool) {
	v, ok := r.Values[p.String()]
	return v, ok
}

func (r *FixedResolve) FindImpl(trait Path, selfTy *TypeRef, cb func(Impl) bool) (Impl, bool) {
	best := -1
	var bestImpl Impl
	for _, impl := range r.Impls {
		if !impl.Trait.Equal(trait) {
			continue
		}
		if !impl.SelfType.Equal(selfTy) {
			continue
		}
		if impl.Rank <= best {
			continue
		}
		if cb(impl) {
			best = impl.Rank
			bestImpl = impl
		}
	}
	if best < 0 {
		return Impl{}, false
	}
	return bestImpl, true
}

func (r *FixedResolve) EnumVariantIndex(enumPath Path, variant string) (int, bool) {
	e, ok := r.Enums[enumPath.String()]
	if !ok {
		return 0, false
	}
	idx := e.VariantIndex(variant)
	if idx < 0 {
		return 0, false
	}
	return idx, true
}

func (r *FixedResolve) Monomorphize(t *TypeRef, subst Subst) *TypeRef {
	return Substitute(t, subst)
}

func (r *FixedResolve) MonomorphizePath(p Path, subst Subst) Path {
	return SubstitutePath(p, subst)
}

var _ StaticTraitResolve = (*FixedResolve)(nil)
