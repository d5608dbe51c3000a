package mir

import (
	"fmt"
	"strings"

	"github.com/vellum-lang/vellum/internal/hir"
)

// BinOp enumerates MIR binary operators (spec §3.6). The _OV variants
// return a (result, overflow bool) tuple rather than wrapping.
type BinOp int

const (
	OpAdd BinOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpAddOv
	OpSubOv
	OpMulOv
	OpDivOv
	OpBitOr
	OpBitAnd
	OpBitXor
	OpBitShl
	OpBitShr
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
)

// IsOverflowChecked reports whether op produces a (T, bool) tuple.
func (op BinOp) IsOverflowChecked() bool {
	switch op {
	case OpAddOv, OpSubOv, OpMulOv, OpDivOv:
		return true
	default:
		return false
	}
}

func (op BinOp) String() string {
	names := [...]string{"+", "-", "*", "/", "%", "+ov", "-ov", "*ov", "/ov",
		"|", "&", "^", "<<", ">>", "==", "!=", "<", "<=", ">", ">="}
	if int(op) < len(names) {
		return names[op]
	}
	return "?op"
}

// UnOp enumerates MIR unary operators.
type UnOp int

const (
	OpNeg UnOp = iota
	OpInv
)

func (op UnOp) String() string {
	if op == OpNeg {
		return "-"
	}
	return "!"
}

// RValueKind distinguishes RValue's fifteen constructors (spec §3.6).
type RValueKind int

const (
	RVUse RValueKind = iota
	RVConstant
	RVSizedArray
	RVBorrow
	RVCast
	RVBinOp
	RVUniOp
	RVDstMeta
	RVDstPtr
	RVMakeDst
	RVTuple
	RVArray
	RVUnionVariant
	RVEnumVariant
	RVStruct
)

// RValue is the right-hand side of an Assign statement (spec §3.6). Only
// the fields matching Kind are meaningful.
type RValue struct {
	Kind RValueKind

	LValue LValue // RVUse, RVCast, RVUniOp, RVDstMeta, RVDstPtr

	Const Constant // RVConstant

	Elem  Param // RVSizedArray's repeated element
	Count uint64

	BorrowKind BorrowKind // RVBorrow

	CastTo *hir.TypeRef // RVCast

	BinOp        BinOp // RVBinOp
	Left, Right  Param

	UnOp UnOp // RVUniOp

	Ptr  Param // RVMakeDst
	Meta Param

	Params []Param // RVTuple, RVArray

	Path         hir.Path // RVUnionVariant, RVEnumVariant, RVStruct
	VariantIdx   int      // RVUnionVariant, RVEnumVariant
	VariantParam Param    // RVUnionVariant (single payload value)
}

func Use(l LValue) RValue               { return RValue{Kind: RVUse, LValue: l} }
func ConstRValue(c Constant) RValue     { return RValue{Kind: RVConstant, Const: c} }
func SizedArray(elem Param, n uint64) RValue {
	return RValue{Kind: RVSizedArray, Elem: elem, Count: n}
}
func BorrowRValue(kind BorrowKind, l LValue) RValue {
	return RValue{Kind: RVBorrow, BorrowKind: kind, LValue: l}
}
func Cast(l LValue, to *hir.TypeRef) RValue { return RValue{Kind: RVCast, LValue: l, CastTo: to} }
func BinOpRValue(left Param, op BinOp, right Param) RValue {
	return RValue{Kind: RVBinOp, BinOp: op, Left: left, Right: right}
}
func UniOpRValue(op UnOp, l LValue) RValue { return RValue{Kind: RVUniOp, UnOp: op, LValue: l} }
func DstMeta(l LValue) RValue              { return RValue{Kind: RVDstMeta, LValue: l} }
func DstPtr(l LValue) RValue               { return RValue{Kind: RVDstPtr, LValue: l} }
func MakeDst(ptr, meta Param) RValue       { return RValue{Kind: RVMakeDst, Ptr: ptr, Meta: meta} }
func TupleRValue(params ...Param) RValue  { return RValue{Kind: RVTuple, Params: params} }
func ArrayRValue(params ...Param) RValue  { return RValue{Kind: RVArray, Params: params} }
func UnionVariant(path hir.Path, idx int, p Param) RValue {
	return RValue{Kind: RVUnionVariant, Path: path, VariantIdx: idx, VariantParam: p}
}
func EnumVariant(path hir.Path, idx int, params ...Param) RValue {
	return RValue{Kind: RVEnumVariant, Path: path, VariantIdx: idx, Params: params}
}
func StructRValue(path hir.Path, params ...Param) RValue {
	return RValue{Kind: RVStruct, Path: path, Params: params}
}

// IsMakeDstPlaceholder reports whether this is the unresolved-unsize-coercion
// placeholder `MakeDst(ptr, ItemAddr(nil))` that §4.6.5 must materialise.
func (r RValue) IsMakeDstPlaceholder() bool {
	return r.Kind == RVMakeDst && r.Meta.Kind == ParamConstant &&
		r.Meta.Const.Kind == ConstItemAddr && r.Meta.Const.Path.Segments == nil
}

func (r RValue) String() string {
	switch r.Kind {
	case RVUse:
		return r.LValue.String()
	case RVConstant:
		return r.Const.String()
	case RVSizedArray:
		return fmt.Sprintf("[%s; %d]", r.Elem, r.Count)
	case RVBorrow:
		return fmt.Sprintf("&%s %s", borrowKindStr(r.BorrowKind), r.LValue)
	case RVCast:
		return fmt.Sprintf("%s as %s", r.LValue, r.CastTo)
	case RVBinOp:
		return fmt.Sprintf("%s %s %s", r.Left, r.BinOp, r.Right)
	case RVUniOp:
		return fmt.Sprintf("%s%s", r.UnOp, r.LValue)
	case RVDstMeta:
		return fmt.Sprintf("DSTMETA(%s)", r.LValue)
	case RVDstPtr:
		return fmt.Sprintf("DSTPTR(%s)", r.LValue)
	case RVMakeDst:
		return fmt.Sprintf("MAKEDST(%s, %s)", r.Ptr, r.Meta)
	case RVTuple:
		return "(" + joinParams(r.Params) + ")"
	case RVArray:
		return "[" + joinParams(r.Params) + "]"
	case RVUnionVariant:
		return fmt.Sprintf("%s#%d{%s}", r.Path, r.VariantIdx, r.VariantParam)
	case RVEnumVariant:
		return fmt.Sprintf("%s#%d(%s)", r.Path, r.VariantIdx, joinParams(r.Params))
	case RVStruct:
		return fmt.Sprintf("%s{%s}", r.Path, joinParams(r.Params))
	default:
		return "?rvalue"
	}
}

func borrowKindStr(k BorrowKind) string {
	switch k {
	case BorrowMut:
		return "mut"
	case BorrowOwned:
		return "move"
	default:
		return ""
	}
}

func joinParams(ps []Param) string {
	parts := make([]string, len(ps))
	for i, p := range ps {
		parts[i] = p.String()
	}
	return strings.Join(parts, ", ")
}
