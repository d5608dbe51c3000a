// Package hir defines the typed intermediate representation that the MIR
// layer consumes: type references, paths, struct/enum/trait descriptions,
// and the StaticTraitResolve query surface. Producing these values is the
// job of parsing, name resolution, and typecheck — all external to this
// repository; hir only carries the shapes those phases hand to §4.2.
package hir

import (
	"fmt"
	"strings"
)

// Kind identifies which field of typeData is populated.
type Kind int

const (
	KindInfer           Kind = iota // unresolved inference hole
	KindDiverge                     // `!`
	KindPrimitive                   // i32, bool, str, ...
	KindPath                        // struct/enum/union/opaque/extern item
	KindGeneric                     // generic type parameter
	KindTraitObject                 // dyn Trait
	KindErasedAlias                 // impl Trait (erased existential)
	KindArray                       // [T; N]
	KindSlice                       // [T]
	KindTuple                       // (T0, T1, ...)
	KindBorrow                      // &T / &mut T / &move T
	KindPointer                     // *const T / *mut T / *move T
	KindNamedFunction               // fn item (zero-sized, unique per fn)
	KindFunctionPointer             // fn(T) -> U value
	KindClosure                     // closure environment type
	KindGenerator                   // generator/coroutine type
)

func (k Kind) String() string {
	switch k {
	case KindInfer:
		return "infer"
	case KindDiverge:
		return "!"
	case KindPrimitive:
		return "primitive"
	case KindPath:
		return "path"
	case KindGeneric:
		return "generic"
	case KindTraitObject:
		return "dyn"
	case KindErasedAlias:
		return "erased"
	case KindArray:
		return "array"
	case KindSlice:
		return "slice"
	case KindTuple:
		return "tuple"
	case KindBorrow:
		return "borrow"
	case KindPointer:
		return "pointer"
	case KindNamedFunction:
		return "fn-item"
	case KindFunctionPointer:
		return "fn-ptr"
	case KindClosure:
		return "closure"
	case KindGenerator:
		return "generator"
	default:
		return "?kind"
	}
}

// PointerMode is shared by borrows and raw pointers: shared, mutable, or owning (Box-like).
type PointerMode int

const (
	ModeShared PointerMode = iota
	ModeMut
	ModeOwned
)

func (m PointerMode) String() string {
	switch m {
	case ModeShared:
		return "shared"
	case ModeMut:
		return "mut"
	case ModeOwned:
		return "owned"
	default:
		return "?mode"
	}
}

// Lifetime is the 32-bit lifetime reference tag described in spec §3.9.
// UNKNOWN is the placeholder every HIR type carries before §4.5 runs;
// STATIC names 'static; anything >= FirstInferenceVar was allocated by
// the borrow/lifetime pass.
type Lifetime uint32

const (
	LifetimeUnknown       Lifetime = 0
	LifetimeStatic        Lifetime = 0xFFFF
	FirstInferenceVar     Lifetime = 0x14000
	firstSourceParamStart Lifetime = 1
)

func (l Lifetime) String() string {
	switch {
	case l == LifetimeUnknown:
		return "'_"
	case l == LifetimeStatic:
		return "'static"
	case l >= FirstInferenceVar:
		return fmt.Sprintf("'_%d", l-FirstInferenceVar)
	default:
		return fmt.Sprintf("'%d", l)
	}
}

// PrimitiveKind enumerates the non-composite scalar types.
type PrimitiveKind int

const (
	PrimI8 PrimitiveKind = iota
	PrimI16
	PrimI32
	PrimI64
	PrimI128
	PrimIsize
	PrimU8
	PrimU16
	PrimU32
	PrimU64
	PrimU128
	PrimUsize
	PrimF32
	PrimF64
	PrimBool
	PrimChar
	PrimStr
)

var primitiveNames = map[PrimitiveKind]string{
	PrimI8: "i8", PrimI16: "i16", PrimI32: "i32", PrimI64: "i64", PrimI128: "i128", PrimIsize: "isize",
	PrimU8: "u8", PrimU16: "u16", PrimU32: "u32", PrimU64: "u64", PrimU128: "u128", PrimUsize: "usize",
	PrimF32: "f32", PrimF64: "f64", PrimBool: "bool", PrimChar: "char", PrimStr: "str",
}

func (p PrimitiveKind) String() string {
	if s, ok := primitiveNames[p]; ok {
		return s
	}
	return "?primitive"
}

// IsInteger reports whether p is a signed or unsigned integer kind.
func (p PrimitiveKind) IsInteger() bool {
	switch p {
	case PrimI8, PrimI16, PrimI32, PrimI64, PrimI128, PrimIsize,
		PrimU8, PrimU16, PrimU32, PrimU64, PrimU128, PrimUsize:
		return true
	default:
		return false
	}
}

// IsSigned reports whether p is a signed integer kind.
func (p PrimitiveKind) IsSigned() bool {
	switch p {
	case PrimI8, PrimI16, PrimI32, PrimI64, PrimI128, PrimIsize:
		return true
	default:
		return false
	}
}

// IsFloat reports whether p is f32/f64.
func (p PrimitiveKind) IsFloat() bool {
	return p == PrimF32 || p == PrimF64
}

// typeData is the shared, shallow-cloneable payload behind a TypeRef.
// Only the field matching Kind is meaningful.
type typeData struct {
	Kind Kind

	Primitive PrimitiveKind

	// KindPath
	Path Path

	// KindGeneric
	GenericName  string
	GenericIndex int

	// KindTraitObject / KindErasedAlias
	Traits    []Path // the first is the principal trait, rest are auxiliary bounds
	ObjectLt  Lifetime
	ErasedTag string // stable name for an `impl Trait` alias site

	// KindArray / KindSlice
	Inner *TypeRef
	Size  uint64

	// KindTuple
	Elems []*TypeRef

	// KindBorrow / KindPointer
	Mode     PointerMode
	Lifetime Lifetime // only meaningful for KindBorrow

	// KindNamedFunction / KindFunctionPointer / KindClosure / KindGenerator
	Fn *FunctionSig
	// Unique discriminator for named-function / closure / generator
	// instance types (same signature, distinct underlying zero-sized type).
	InstanceTag string
}

// TypeRef is a reference-counted handle onto a type: structurally equal
// TypeRefs may or may not share storage, but Clone always shares it
// (clones are shallow, per spec §3.1).
type TypeRef struct {
	d *typeData
}

// FunctionSig is the parameter/return shape carried by function-like types.
type FunctionSig struct {
	Params   []*TypeRef
	Ret      *TypeRef
	Variadic bool
}

func newType(d *typeData) *TypeRef { return &TypeRef{d: d} }

// Infer returns a fresh inference-hole TypeRef.
func Infer() *TypeRef { return newType(&typeData{Kind: KindInfer}) }

// Diverge returns the `!` type.
func Diverge() *TypeRef { return newType(&typeData{Kind: KindDiverge}) }

// Prim returns a primitive TypeRef.
func Prim(k PrimitiveKind) *TypeRef { return newType(&typeData{Kind: KindPrimitive, Primitive: k}) }

// PathType returns a TypeRef naming a struct/enum/union/opaque/extern item.
func PathType(p Path) *TypeRef { return newType(&typeData{Kind: KindPath, Path: p}) }

// Generic returns a TypeRef naming a generic parameter by name and index.
func Generic(name string, index int) *TypeRef {
	return newType(&typeData{Kind: KindGeneric, GenericName: name, GenericIndex: index})
}

// TraitObject returns a `dyn Trait (+ Aux)*` TypeRef.
func TraitObject(lt Lifetime, traits ...Path) *TypeRef {
	return newType(&typeData{Kind: KindTraitObject, Traits: traits, ObjectLt: lt})
}

// ErasedAlias returns an `impl Trait` existential TypeRef identified by tag.
func ErasedAlias(tag string, traits ...Path) *TypeRef {
	return newType(&typeData{Kind: KindErasedAlias, ErasedTag: tag, Traits: traits})
}

// Array returns `[inner; size]`.
func Array(inner *TypeRef, size uint64) *TypeRef {
	return newType(&typeData{Kind: KindArray, Inner: inner, Size: size})
}

// Slice returns `[inner]`.
func Slice(inner *TypeRef) *TypeRef {
	return newType(&typeData{Kind: KindSlice, Inner: inner})
}

// Tuple returns `(elems...)`.
func Tuple(elems ...*TypeRef) *TypeRef {
	return newType(&typeData{Kind: KindTuple, Elems: elems})
}

// Borrow returns `&'lt mode inner`.
func Borrow(mode PointerMode, lt Lifetime, inner *TypeRef) *TypeRef {
	return newType(&typeData{Kind: KindBorrow, Mode: mode, Lifetime: lt, Inner: inner})
}

// Pointer returns `*mode inner`.
func Pointer(mode PointerMode, inner *TypeRef) *TypeRef {
	return newType(&typeData{Kind: KindPointer, Mode: mode, Inner: inner})
}

// NamedFunction returns the unique zero-sized type of a fn item.
func NamedFunction(tag string, sig *FunctionSig) *TypeRef {
	return newType(&typeData{Kind: KindNamedFunction, InstanceTag: tag, Fn: sig})
}

// FunctionPointer returns an `fn(params) -> ret` value type.
func FunctionPointer(sig *FunctionSig) *TypeRef {
	return newType(&typeData{Kind: KindFunctionPointer, Fn: sig})
}

// Closure returns the unique environment type of a closure literal.
func Closure(tag string, sig *FunctionSig) *TypeRef {
	return newType(&typeData{Kind: KindClosure, InstanceTag: tag, Fn: sig})
}

// Generator returns the unique state-machine type of a generator literal.
func Generator(tag string, sig *FunctionSig) *TypeRef {
	return newType(&typeData{Kind: KindGenerator, InstanceTag: tag, Fn: sig})
}

// Kind reports which variant this TypeRef holds.
func (t *TypeRef) Kind() Kind {
	if t == nil {
		return KindInfer
	}
	return t.d.Kind
}

// Clone returns a new handle sharing the same underlying storage
// (shallow clone, per spec §3.1).
func (t *TypeRef) Clone() *TypeRef {
	if t == nil {
		return nil
	}
	return &TypeRef{d: t.d}
}

// Unique returns a TypeRef guaranteed not to alias t's storage, deep-copying
// one level so the caller may mutate composite fields (array size, borrow
// lifetime, ...) without disturbing other holders of t. This is the
// copy-on-write discipline described in spec §9: "before editing, ensure
// unique ownership; otherwise clone shallowly."
func (t *TypeRef) Unique() *TypeRef {
	if t == nil {
		return nil
	}
	cp := *t.d
	return &TypeRef{d: &cp}
}

func (t *TypeRef) Primitive() PrimitiveKind { return t.d.Primitive }
func (t *TypeRef) Path() Path               { return t.d.Path }
func (t *TypeRef) GenericName() string      { return t.d.GenericName }
func (t *TypeRef) GenericIndex() int        { return t.d.GenericIndex }
func (t *TypeRef) Traits() []Path           { return t.d.Traits }
func (t *TypeRef) ObjectLifetime() Lifetime { return t.d.ObjectLt }
func (t *TypeRef) ErasedTag() string        { return t.d.ErasedTag }
func (t *TypeRef) Inner() *TypeRef          { return t.d.Inner }
func (t *TypeRef) ArraySize() uint64        { return t.d.Size }
func (t *TypeRef) Elems() []*TypeRef        { return t.d.Elems }
func (t *TypeRef) PointerMode() PointerMode { return t.d.Mode }
func (t *TypeRef) Lifetime() Lifetime       { return t.d.Lifetime }
func (t *TypeRef) FnSig() *FunctionSig      { return t.d.Fn }
func (t *TypeRef) InstanceTag() string      { return t.d.InstanceTag }

// SetLifetime mutates the lifetime of a borrow type in place. Callers must
// hold a Unique() handle (or know they own the only reference) per the
// copy-on-write discipline.
func (t *TypeRef) SetLifetime(lt Lifetime) {
	if t.d.Kind != KindBorrow {
		panic("hir: SetLifetime on non-borrow type")
	}
	t.d.Lifetime = lt
}

// SetObjectLifetime mutates the bounding lifetime of a trait-object type.
func (t *TypeRef) SetObjectLifetime(lt Lifetime) {
	if t.d.Kind != KindTraitObject {
		panic("hir: SetObjectLifetime on non-trait-object type")
	}
	t.d.ObjectLt = lt
}

// Equal reports structural equality between two TypeRefs.
func (t *TypeRef) Equal(o *TypeRef) bool {
	return t.Compare(o) == 0
}

// Compare gives a total order over TypeRefs (structural, as required by §3.1).
func (t *TypeRef) Compare(o *TypeRef) int {
	if t == nil && o == nil {
		return 0
	}
	if t == nil {
		return -1
	}
	if o == nil {
		return 1
	}
	if t.d.Kind != o.d.Kind {
		if t.d.Kind < o.d.Kind {
			return -1
		}
		return 1
	}
	switch t.d.Kind {
	case KindInfer, KindDiverge:
		return 0
	case KindPrimitive:
		return intCmp(int(t.d.Primitive), int(o.d.Primitive))
	case KindPath:
		return t.d.Path.Compare(o.d.Path)
	case KindGeneric:
		if c := strings.Compare(t.d.GenericName, o.d.GenericName); c != 0 {
			return c
		}
		return intCmp(t.d.GenericIndex, o.d.GenericIndex)
	case KindTraitObject, KindErasedAlias:
		if c := intCmp(len(t.d.Traits), len(o.d.Traits)); c != 0 {
			return c
		}
		for i := range t.d.Traits {
			if c := t.d.Traits[i].Compare(o.d.Traits[i]); c != 0 {
				return c
			}
		}
		return 0
	case KindArray:
		if c := t.d.Inner.Compare(o.d.Inner); c != 0 {
			return c
		}
		return intCmp(int(t.d.Size), int(o.d.Size))
	case KindSlice:
		return t.d.Inner.Compare(o.d.Inner)
	case KindTuple:
		if c := intCmp(len(t.d.Elems), len(o.d.Elems)); c != 0 {
			return c
		}
		for i := range t.d.Elems {
			if c := t.d.Elems[i].Compare(o.d.Elems[i]); c != 0 {
				return c
			}
		}
		return 0
	case KindBorrow:
		if c := intCmp(int(t.d.Mode), int(o.d.Mode)); c != 0 {
			return c
		}
		return t.d.Inner.Compare(o.d.Inner)
	case KindPointer:
		if c := intCmp(int(t.d.Mode), int(o.d.Mode)); c != 0 {
			return c
		}
		return t.d.Inner.Compare(o.d.Inner)
	case KindNamedFunction, KindClosure, KindGenerator:
		return strings.Compare(t.d.InstanceTag, o.d.InstanceTag)
	case KindFunctionPointer:
		return t.d.Fn.compare(o.d.Fn)
	default:
		return 0
	}
}

func (f *FunctionSig) compare(o *FunctionSig) int {
	if c := intCmp(len(f.Params), len(o.Params)); c != 0 {
		return c
	}
	for i := range f.Params {
		if c := f.Params[i].Compare(o.Params[i]); c != 0 {
			return c
		}
	}
	return f.Ret.Compare(o.Ret)
}

func intCmp(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// String renders a type the way mrustc-derived dumps do: close to source
// syntax, used only for diagnostics and the §4.8 pretty-printer.
func (t *TypeRef) String() string {
	if t == nil {
		return "<null>"
	}
	switch t.d.Kind {
	case KindInfer:
		return "_"
	case KindDiverge:
		return "!"
	case KindPrimitive:
		return t.d.Primitive.String()
	case KindPath:
		return t.d.Path.String()
	case KindGeneric:
		return t.d.GenericName
	case KindTraitObject:
		return "dyn " + joinPaths(t.d.Traits)
	case KindErasedAlias:
		return "impl " + joinPaths(t.d.Traits)
	case KindArray:
		return fmt.Sprintf("[%s; %d]", t.d.Inner, t.d.Size)
	case KindSlice:
		return fmt.Sprintf("[%s]", t.d.Inner)
	case KindTuple:
		parts := make([]string, len(t.d.Elems))
		for i, e := range t.d.Elems {
			parts[i] = e.String()
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case KindBorrow:
		prefix := "&"
		if t.d.Lifetime != LifetimeUnknown {
			prefix += t.d.Lifetime.String() + " "
		}
		switch t.d.Mode {
		case ModeMut:
			prefix += "mut "
		case ModeOwned:
			prefix += "move "
		}
		return prefix + t.d.Inner.String()
	case KindPointer:
		switch t.d.Mode {
		case ModeMut:
			return "*mut " + t.d.Inner.String()
		case ModeOwned:
			return "*move " + t.d.Inner.String()
		default:
			return "*const " + t.d.Inner.String()
		}
	case KindNamedFunction:
		return "fn-item:" + t.d.InstanceTag
	case KindFunctionPointer:
		return t.d.Fn.String()
	case KindClosure:
		return "closure:" + t.d.InstanceTag
	case KindGenerator:
		return "generator:" + t.d.InstanceTag
	default:
		return "?"
	}
}

func (f *FunctionSig) String() string {
	parts := make([]string, len(f.Params))
	for i, p := range f.Params {
		parts[i] = p.String()
	}
	ret := "()"
	if f.Ret != nil {
		ret = f.Ret.String()
	}
	return "fn(" + strings.Join(parts, ", ") + ") -> " + ret
}

func joinPaths(ps []Path) string {
	parts := make([]string, len(ps))
	for i, p := range ps {
		parts[i] = p.String()
	}
	return strings.Join(parts, " + ")
}

// IsMetadataCarrying reports whether a pointer/borrow to this type needs a
// fat-pointer metadata word (slice length or vtable pointer): the type is
// unsized. It handles the two unsized shapes this package can name locally;
// trailing-unsized-field structs are additionally unsized via their last
// field, which callers resolve with StaticTraitResolve.TypeIsSized.
func (t *TypeRef) IsMetadataCarrying() bool {
	switch t.Kind() {
	case KindSlice, KindTraitObject, KindErasedAlias:
		return true
	default:
		return false
	}
}

// MetadataClass distinguishes the two fat-pointer metadata shapes.
type MetadataClass int

const (
	MetadataNone MetadataClass = iota
	MetadataLength                // slice: usize element count
	MetadataVTable                // trait object: *const VTable
)

// Class reports which metadata class a pointer/borrow to this (possibly
// unsized) type would need.
func (t *TypeRef) Class() MetadataClass {
	switch t.Kind() {
	case KindSlice:
		return MetadataLength
	case KindTraitObject, KindErasedAlias:
		return MetadataVTable
	default:
		return MetadataNone
	}
}
