package hir

// EncodedLiteral is the precomputed byte encoding of a `const` item's value,
// the input to §4.6.3's constant expansion: a flat byte buffer plus any
// relocations (pointers embedded in the bytes, e.g. a borrow to a static).
type EncodedLiteral struct {
	Bytes       []byte
	Relocations []Relocation
	Type        *TypeRef
}

// Relocation records that the bytes at [Offset, Offset+PointerSize) encode
// a pointer to Target rather than raw data.
type Relocation struct {
	Offset uint64
	Target RelocationTarget
}

// RelocationTarget is either a static/function item address or inline data
// (e.g. a string literal's backing bytes) addressed by a synthetic path.
type RelocationTarget struct {
	IsInlineData bool
	Path         Path
	InlineBytes  []byte
}

// ValueKind distinguishes the possible results of a get_value(path) query.
type ValueKind int

const (
	ValueFunction ValueKind = iota
	ValueConst
	ValueStatic
	ValueEnumCtor
	ValueStructCtor
)

// Value is the tagged result of resolving a path to an item (spec §6's
// "get_value(path) -> Function | Constant | Static | EnumCtor | StructCtor").
type Value struct {
	Kind      ValueKind
	Function  *Function
	Const     *ConstItem
	Static    *Static
	EnumPath  Path // ValueEnumCtor: enum path + which variant
	Variant   string
	StructPath Path // ValueStructCtor
}
