package mir

import (
	"fmt"

	"github.com/vellum-lang/vellum/internal/hir"
)

// ConstKind distinguishes the ten Constant variants (spec §3.4).
type ConstKind int

const (
	ConstInt ConstKind = iota
	ConstUint
	ConstFloat
	ConstBool
	ConstByteString
	ConstString
	ConstItem      // reference to a `const` item, by path
	ConstFnItem    // reference to a `fn` item, by path
	ConstGeneric   // generic placeholder (unresolved until monomorphisation)
	ConstItemAddr  // address of a static/function, by path
)

// Constant is a compile-time value (spec §3.4). Only the field(s) for Kind
// are meaningful.
type Constant struct {
	Kind  ConstKind
	Type  *hir.TypeRef
	Int   int64
	Uint  uint64
	Float float64
	Bool  bool
	Bytes []byte
	Str   string
	Path  hir.Path // ConstItem / ConstFnItem / ConstItemAddr
	Name  string   // ConstGeneric: the parameter name
}

func IntConst(v int64, ty *hir.TypeRef) Constant    { return Constant{Kind: ConstInt, Int: v, Type: ty} }
func UintConst(v uint64, ty *hir.TypeRef) Constant  { return Constant{Kind: ConstUint, Uint: v, Type: ty} }
func FloatConst(v float64, ty *hir.TypeRef) Constant { return Constant{Kind: ConstFloat, Float: v, Type: ty} }
func BoolConst(v bool) Constant                      { return Constant{Kind: ConstBool, Bool: v, Type: hir.Prim(hir.PrimBool)} }
func ByteStringConst(b []byte) Constant              { return Constant{Kind: ConstByteString, Bytes: b} }
func StringConst(s string) Constant                  { return Constant{Kind: ConstString, Str: s} }
func ItemConst(p hir.Path, ty *hir.TypeRef) Constant { return Constant{Kind: ConstItem, Path: p, Type: ty} }
func FnItemConst(p hir.Path, ty *hir.TypeRef) Constant {
	return Constant{Kind: ConstFnItem, Path: p, Type: ty}
}
func GenericConst(name string, ty *hir.TypeRef) Constant {
	return Constant{Kind: ConstGeneric, Name: name, Type: ty}
}
func ItemAddrConst(p hir.Path, ty *hir.TypeRef) Constant {
	return Constant{Kind: ConstItemAddr, Path: p, Type: ty}
}

// Compare gives a total order over constants (spec §3.4).
func (c Constant) Compare(o Constant) int {
	if c.Kind != o.Kind {
		return intCmp(int(c.Kind), int(o.Kind))
	}
	switch c.Kind {
	case ConstInt:
		return int64Cmp(c.Int, o.Int)
	case ConstUint:
		return uint64Cmp(c.Uint, o.Uint)
	case ConstFloat:
		switch {
		case c.Float < o.Float:
			return -1
		case c.Float > o.Float:
			return 1
		default:
			return 0
		}
	case ConstBool:
		return intCmp(boolInt(c.Bool), boolInt(o.Bool))
	case ConstByteString:
		return bytesCmp(c.Bytes, o.Bytes)
	case ConstString:
		return stringCmp(c.Str, o.Str)
	case ConstItem, ConstFnItem, ConstItemAddr:
		return c.Path.Compare(o.Path)
	case ConstGeneric:
		return stringCmp(c.Name, o.Name)
	default:
		return 0
	}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func int64Cmp(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func uint64Cmp(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func bytesCmp(a, b []byte) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return intCmp(int(a[i]), int(b[i]))
		}
	}
	return intCmp(len(a), len(b))
}

func stringCmp(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// String renders a constant for dumps.
func (c Constant) String() string {
	switch c.Kind {
	case ConstInt:
		return fmt.Sprintf("%d", c.Int)
	case ConstUint:
		return fmt.Sprintf("%d", c.Uint)
	case ConstFloat:
		return fmt.Sprintf("%g", c.Float)
	case ConstBool:
		return fmt.Sprintf("%t", c.Bool)
	case ConstByteString:
		return fmt.Sprintf("b%q", string(c.Bytes))
	case ConstString:
		return fmt.Sprintf("%q", c.Str)
	case ConstItem:
		return "const:" + c.Path.String()
	case ConstFnItem:
		return "fn:" + c.Path.String()
	case ConstGeneric:
		return "generic:" + c.Name
	case ConstItemAddr:
		return "&" + c.Path.String()
	default:
		return "?const"
	}
}
