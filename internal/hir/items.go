package hir

// GenericParam describes one generic parameter of a struct/enum/trait/fn.
type GenericParam struct {
	Name   string
	Bounds []Path // trait bounds
}

// Field is a named, typed struct/union field.
type Field struct {
	Name string
	Type *TypeRef
}

// ItemPathRepr is how StructRepr/UnionRepr/EnumRepr refer back to their
// defining item without an owning pointer, breaking the HIR Trait<->vtable
// cycle described in spec §9 ("Cyclic references ... resolved by storing
// the vtable as a simple path that is looked up via the crate").
type ItemPathRepr = Path

// Struct describes a user struct item (spec §3.1's "user path" target).
type Struct struct {
	Path       ItemPathRepr
	Generics   []GenericParam
	Fields     []Field
	TupleLike  bool // fields are positional (Field.Name == "0", "1", ...)
	UnsizedTag bool // true if the last field may itself be unsized (DST struct)
}

// EnumVariant is one arm of an Enum, carrying zero or more payload fields.
type EnumVariant struct {
	Name    string
	Payload []Field // empty for a unit variant
}

// Enum describes a tagged-union (ADT) item.
type Enum struct {
	Path     ItemPathRepr
	Generics []GenericParam
	Variants []EnumVariant
}

// VariantIndex returns the index of the named variant, or -1.
func (e *Enum) VariantIndex(name string) int {
	for i, v := range e.Variants {
		if v.Name == name {
			return i
		}
	}
	return -1
}

// Union describes a union item: exactly one field is active at a time.
type Union struct {
	Path     ItemPathRepr
	Generics []GenericParam
	Fields   []Field
}

// TraitMethod is one method in a trait's vtable, in vtable-slot order.
type TraitMethod struct {
	Name       string
	Sig        *FunctionSig
	HasDefault bool
	// ByValueSelf is true when the method takes `self` by value (requires
	// devirtualisation to wrap the receiver in &move, per spec §4.6.1.3).
	ByValueSelf bool
}

// Trait describes a trait item: its vtable layout and associated types.
type Trait struct {
	Path       ItemPathRepr
	Generics   []GenericParam
	Methods    []TraitMethod
	AssocTypes []string
	// VTablePath names the generated vtable struct item, looked up lazily
	// to avoid an owning Trait<->VTable cycle (spec §9).
	VTablePath ItemPathRepr
}

// MethodIndex returns the vtable slot of the named method, or -1.
func (t *Trait) MethodIndex(name string) int {
	for i, m := range t.Methods {
		if m.Name == name {
			return i
		}
	}
	return -1
}

// Function describes a function item's signature (the body is the HIR
// expression tree passed separately to §4.2's build entry point).
type Function struct {
	Path       ItemPathRepr
	Generics   []GenericParam
	Params     []*TypeRef
	ParamNames []string
	Ret        *TypeRef
	Variadic   bool
}

// Sig returns the function's signature as a bare FunctionSig.
func (f *Function) Sig() *FunctionSig {
	return &FunctionSig{Params: f.Params, Ret: f.Ret, Variadic: f.Variadic}
}

// Static describes a `static` item.
type Static struct {
	Path ItemPathRepr
	Type *TypeRef
}

// ConstItem describes a `const` item: a compile-time value with a type,
// resolved to an EncodedLiteral by §4.6.3's constant expansion.
type ConstItem struct {
	Path  ItemPathRepr
	Type  *TypeRef
	Value EncodedLiteral
}

// FieldOffset pairs a field with its byte offset, as produced by the
// `type_repr` collaborator query (spec §6).
type FieldOffset struct {
	Field  Field
	Offset uint64
}

// TypeRepr is the layout information the cleanup pass (§4.6.3) needs to
// decompose a constant's encoded bytes into per-field RValues.
type TypeRepr struct {
	Size       uint64
	Align      uint64
	Fields     []FieldOffset // struct/union: offset of each field
	VariantTag []uint64      // enum: byte offset of the discriminant per variant (shared layout assumed)
	IsEnum     bool
	IsUnion    bool // union: exactly one of Fields is active per value
}
