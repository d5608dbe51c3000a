package mir

import (
	"fmt"

	"github.com/vellum-lang/vellum/internal/hir"
)

// LValue is a place: a root plus a sequence of wrappers applied outer to
// inner-last (spec §3.3). Compact tagged-pointer encoding is explicitly
// permitted but not required; this repository keeps the straightforward
// struct-plus-slice shape since nothing here is on a hot allocation path.
type LValue struct {
	Root     Root
	Wrappers []Wrapper
}

// RootKind distinguishes the four place roots.
type RootKind int

const (
	RootReturn RootKind = iota
	RootArgument
	RootLocal
	RootStatic
)

// Root is the base of a place.
type Root struct {
	Kind   RootKind
	Index  int      // RootArgument / RootLocal
	Static hir.Path // RootStatic
}

// WrapperKind distinguishes the four place wrappers.
type WrapperKind int

const (
	WrapDeref WrapperKind = iota
	WrapField
	WrapDowncast
	WrapIndex
)

// Wrapper is one step appended to a place (spec §3.3).
type Wrapper struct {
	Kind        WrapperKind
	FieldIndex  int // WrapField
	VariantIdx  int // WrapDowncast
	IndexLocal  int // WrapIndex: the local holding the dynamic index
}

// Return is the canonical place naming the return slot.
func Return() LValue { return LValue{Root: Root{Kind: RootReturn}} }

// Argument is the canonical place naming argument n.
func Argument(n int) LValue { return LValue{Root: Root{Kind: RootArgument, Index: n}} }

// LocalPlace is the canonical place naming local n (spec §3.3's Local(u)).
func LocalPlace(n int) LValue { return LValue{Root: Root{Kind: RootLocal, Index: n}} }

// StaticPlace is the canonical place naming a static item.
func StaticPlace(p hir.Path) LValue { return LValue{Root: Root{Kind: RootStatic, Static: p}} }

func (l LValue) appended(w Wrapper) LValue {
	next := make([]Wrapper, len(l.Wrappers)+1)
	copy(next, l.Wrappers)
	next[len(l.Wrappers)] = w
	return LValue{Root: l.Root, Wrappers: next}
}

// Deref appends a pointer/borrow dereference wrapper.
func (l LValue) Deref() LValue { return l.appended(Wrapper{Kind: WrapDeref}) }

// Field appends a field-projection wrapper.
func (l LValue) Field(idx int) LValue { return l.appended(Wrapper{Kind: WrapField, FieldIndex: idx}) }

// Downcast appends an enum-variant-assumption wrapper.
func (l LValue) Downcast(variantIdx int) LValue {
	return l.appended(Wrapper{Kind: WrapDowncast, VariantIdx: variantIdx})
}

// Index appends a dynamic-index wrapper; idxLocal names the local holding
// the index value (spec §3.3's Index(local_u)).
func (l LValue) Index(idxLocal int) LValue {
	return l.appended(Wrapper{Kind: WrapIndex, IndexLocal: idxLocal})
}

// IsSubsetOf reports whether l's wrapper list is a prefix of o's and their
// roots match (spec §3.3's SUBSET relation, used by the drop/move
// conflict checks in §4.2.1 and value-state validation).
func (l LValue) IsSubsetOf(o LValue) bool {
	if l.Root != o.Root {
		return false
	}
	if len(l.Wrappers) > len(o.Wrappers) {
		return false
	}
	for i, w := range l.Wrappers {
		if w != o.Wrappers[i] {
			return false
		}
	}
	return true
}

// Equal reports structural equality.
func (l LValue) Equal(o LValue) bool {
	return l.IsSubsetOf(o) && len(l.Wrappers) == len(o.Wrappers)
}

// Compare gives a total order over places (spec §3.3: "ordering and
// equality are structural").
func (l LValue) Compare(o LValue) int {
	if c := intCmp(int(l.Root.Kind), int(o.Root.Kind)); c != 0 {
		return c
	}
	switch l.Root.Kind {
	case RootArgument, RootLocal:
		if c := intCmp(l.Root.Index, o.Root.Index); c != 0 {
			return c
		}
	case RootStatic:
		if c := l.Root.Static.Compare(o.Root.Static); c != 0 {
			return c
		}
	}
	if c := intCmp(len(l.Wrappers), len(o.Wrappers)); c != 0 {
		return c
	}
	for i := range l.Wrappers {
		a, b := l.Wrappers[i], o.Wrappers[i]
		if c := intCmp(int(a.Kind), int(b.Kind)); c != 0 {
			return c
		}
		switch a.Kind {
		case WrapField:
			if c := intCmp(a.FieldIndex, b.FieldIndex); c != 0 {
				return c
			}
		case WrapDowncast:
			if c := intCmp(a.VariantIdx, b.VariantIdx); c != 0 {
				return c
			}
		case WrapIndex:
			if c := intCmp(a.IndexLocal, b.IndexLocal); c != 0 {
				return c
			}
		}
	}
	return 0
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

// String renders a place the way the §4.8 dumper does.
func (l LValue) String() string {
	var s string
	switch l.Root.Kind {
	case RootReturn:
		s = "retval"
	case RootArgument:
		s = fmt.Sprintf("arg%d", l.Root.Index)
	case RootLocal:
		s = fmt.Sprintf("_%d", l.Root.Index)
	case RootStatic:
		s = l.Root.Static.String()
	}
	for _, w := range l.Wrappers {
		switch w.Kind {
		case WrapDeref:
			s = "(*" + s + ")"
		case WrapField:
			s = fmt.Sprintf("%s.%d", s, w.FieldIndex)
		case WrapDowncast:
			s = fmt.Sprintf("(%s as V%d)", s, w.VariantIdx)
		case WrapIndex:
			s = fmt.Sprintf("%s[_%d]", s, w.IndexLocal)
		}
	}
	return s
}
