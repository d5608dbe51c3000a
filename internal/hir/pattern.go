package hir

// Pattern is a typed HIR pattern node, the input to §4.2.2's match
// compilation (both the SIMPLE linear strategy and the DECISION TREE trie
// strategy walk this same closed set of variants).
type Pattern interface {
	patternNode()
	Span() Span
	Type() *TypeRef
}

type patBase struct {
	span Span
	ty   *TypeRef
}

func (patBase) patternNode()       {}
func (p patBase) Span() Span       { return p.span }
func (p patBase) Type() *TypeRef   { return p.ty }

// WildcardPat is `_`: matches anything, binds nothing.
type WildcardPat struct{ patBase }

// BindingPat binds the scrutinee (or, if Sub is non-nil, the part of it
// matched by Sub) to Name.
type BindingPat struct {
	patBase
	Name string
	Mode PointerMode // ModeShared for `ref`, ModeMut for `ref mut`, ModeOwned for by-value
	Sub  Pattern      // `name @ sub_pattern`, nil if absent
}

// TuplePat destructures a tuple or tuple-struct positionally.
type TuplePat struct {
	patBase
	Elems []Pattern
}

// StructPat destructures a struct by field name. FieldNames[i] pairs with
// Fields[i]; unlisted fields are permitted only when Rest is true.
type StructPat struct {
	patBase
	StructPath Path
	FieldNames []string
	Fields     []Pattern
	Rest       bool // `..` present
}

// VariantPat matches one enum variant and destructures its payload.
type VariantPat struct {
	patBase
	EnumPath   Path
	Variant    string
	FieldNames []string
	Fields     []Pattern
	Rest       bool
}

// RefPat matches through one level of borrow (`&pat` / `&mut pat`).
type RefPat struct {
	patBase
	Mode PointerMode
	Sub  Pattern
}

// LiteralPat matches an exact scalar value.
type LiteralPat struct {
	patBase
	Kind LiteralKind
	Int  int64
	Bool bool
	Char rune
	Str  string
}

// RangePat matches an inclusive or half-open numeric range `lo..=hi` / `lo..hi`.
type RangePat struct {
	patBase
	Lo, Hi    int64
	Inclusive bool
}

// OrPat matches if any alternative matches (`pat1 | pat2`); all
// alternatives must bind the same set of names with the same types.
type OrPat struct {
	patBase
	Alternatives []Pattern
}

// SlicePat matches a fixed-length or variable-length (one Rest-marked
// sub-pattern) slice/array pattern.
type SlicePat struct {
	patBase
	Prefix   []Pattern
	RestName string  // "" if no `..rest` / `..` capture
	HasRest  bool
	Suffix   []Pattern
}
