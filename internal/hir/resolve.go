package hir

// Subst is a generic-parameter substitution: type parameters (by name) and
// an optional Self override, threaded through monomorphisation (spec §6,
// §9 "Post-monomorph type/lvalue rewriting").
type Subst struct {
	Self *TypeRef
	Args map[string]*TypeRef
}

// Lookup resolves a generic parameter name through the substitution, or
// returns (nil, false) if it isn't bound here (e.g. it belongs to an outer
// generic scope the caller must substitute first).
func (s Subst) Lookup(name string) (*TypeRef, bool) {
	if s.Args == nil {
		return nil, false
	}
	t, ok := s.Args[name]
	return t, ok
}

// Impl describes a trait implementation: which concrete function
// implements each trait method, and any associated-type bindings.
type Impl struct {
	Trait      Path
	SelfType   *TypeRef
	Generics   []GenericParam
	Methods    map[string]Path // trait method name -> concrete fn path
	AssocTypes map[string]*TypeRef
	// Specialization rank: higher wins when multiple impls match (spec §6
	// "find_impl(trait, self_ty, callback) with optional specialisation ranking").
	Rank int
}

// StaticTraitResolve is the query surface the MIR core consumes from its
// typed-HIR collaborator (spec §1, §6). It is never implemented by this
// repository for real code — only FixedResolve, an in-memory test double,
// stands in for it in tests; a real implementation requires the trait
// solver and type checker, both non-goals here.
type StaticTraitResolve interface {
	// TypeIsCopy reports whether values of t may be implicitly duplicated.
	TypeIsCopy(t *TypeRef) bool
	// TypeIsSized reports whether t has a statically-known size. Always
	// true for non-generic types except slices and trait objects.
	TypeIsSized(t *TypeRef) bool
	// MetadataType returns the fat-pointer metadata type for an unsized t
	// (usize for slices, *const VTable for trait objects), or nil if t is sized.
	MetadataType(t *TypeRef) *TypeRef
	// SizeOf returns t's size in bytes, or ok=false if t depends on an
	// unresolved generic parameter.
	SizeOf(t *TypeRef) (size uint64, ok bool)
	// AlignOf returns t's alignment in bytes, or ok=false as SizeOf.
	AlignOf(t *TypeRef) (align uint64, ok bool)
	// TypeRepr returns field-offset/layout information for a struct/union/enum type.
	TypeRepr(t *TypeRef) (TypeRepr, bool)
	// GetVTableType returns the generated vtable struct type for a trait.
	GetVTableType(trait Path) (*TypeRef, bool)
	// GetVTableIndex returns the vtable slot of a trait method.
	GetVTableIndex(trait Path, item string) (index int, ok bool)
	// GetValue resolves a path to the item it names.
	GetValue(p Path) (Value, bool)
	// FindImpl invokes cb for every impl of trait for selfTy (or types selfTy
	// unifies with), in specialization-rank order; it stops and returns the
	// first impl for which cb returns true.
	FindImpl(trait Path, selfTy *TypeRef, cb func(Impl) bool) (Impl, bool)
	// Monomorphize substitutes generic parameters in t through subst and
	// expands any associated-type projections, recursively and totally
	// over every TypeRef variant (spec §9).
	Monomorphize(t *TypeRef, subst Subst) *TypeRef
	// MonomorphizePath is Monomorphize's counterpart for Paths (substitutes
	// the path's own generic arguments).
	MonomorphizePath(p Path, subst Subst) Path
	// EnumVariantIndex returns the declaration-order index of variant
	// within the enum at enumPath, or ok=false if either is unknown.
	EnumVariantIndex(enumPath Path, variant string) (index int, ok bool)
}
