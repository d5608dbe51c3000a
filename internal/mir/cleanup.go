package mir

import (
	"bytes"

	"github.com/vellum-lang/vellum/internal/hir"
)

// Cleanup runs the two cleanup responsibilities over fn (spec §4.6):
// devirtualisation (virtual-call lowering) and constant materialisation
// (const expansion, Box deref expansion, unsize coercion), then
// re-validates. Fn-trait calls are not rewritten, and types are not
// deduplicated.
func Cleanup(resolve hir.StaticTraitResolve, fn *Function) error {
	for _, bb := range fn.Blocks {
		if call, ok := bb.Terminator.(*Call); ok {
			devirtualiseCall(resolve, fn, bb, call)
		}
	}
	for _, bb := range fn.Blocks {
		expandBoxDerefs(fn, bb)
	}
	for _, bb := range fn.Blocks {
		for i, s := range bb.Statements {
			if a, ok := s.(*Assign); ok {
				bb.Statements[i] = &Assign{Dst: a.Dst, Src: expandConstant(resolve, a.Src)}
			}
		}
	}
	for _, bb := range fn.Blocks {
		for i, s := range bb.Statements {
			if a, ok := s.(*Assign); ok && a.Src.IsMakeDstPlaceholder() {
				bb.Statements[i] = &Assign{Dst: a.Dst, Src: materialiseUnsize(resolve, fn, a.Dst, a.Src)}
			}
		}
	}
	return Validate(resolve, fn)
}

// devirtualiseCall implements §4.6.1: a CallPath call whose path, minus
// its last segment, names a trait with a vtable slot for that last segment
// is rewritten into an indirect call through that vtable-slot lvalue. The
// receiver argument is passed on as dstPtrOf returns it; by-value
// receivers are not wrapped in a borrow.
func devirtualiseCall(resolve hir.StaticTraitResolve, fn *Function, bb *BasicBlock, call *Call) {
	if call.Target.Kind != CallPath || resolve == nil {
		return
	}
	trait, method, ok := splitTraitMethod(call.Target.Path)
	if !ok || len(call.Args) == 0 {
		return
	}
	receiver := call.Args[0]
	if receiver.Kind != ParamLValue && receiver.Kind != ParamBorrow {
		return
	}
	idx, ok := resolve.GetVTableIndex(trait, method)
	if !ok {
		return
	}

	recvLV := receiver.LValue
	ptr := dstPtrOf(recvLV)
	vtableLocal := fn.NewLocal(hir.Pointer(hir.ModeShared, hir.Prim(hir.PrimU8)), "")
	bb.Statements = append(bb.Statements, &Assign{Dst: LocalPlace(vtableLocal), Src: DstMeta(recvLV)})

	slot := LocalPlace(vtableLocal).Deref().Field(idx)
	call.Target = CallTarget{Kind: CallValue, LValue: slot}
	call.Args[0] = UseParam(ptr)
}

func splitTraitMethod(p hir.Path) (hir.Path, string, bool) {
	if len(p.Segments) < 2 {
		return hir.Path{}, "", false
	}
	trait := hir.NewPath(p.Crate, p.Segments[:len(p.Segments)-1]...)
	return trait, p.Segments[len(p.Segments)-1], true
}

// dstPtrOf returns the receiver place unchanged: no DstPtr is taken of a
// fat receiver, and an owning pointer such as Box is not recursed into.
func dstPtrOf(recv LValue) LValue {
	return recv
}

// expandBoxDerefs rewrites a Deref on a Box<T> lvalue into Field(0).Deref,
// since this implementation represents Box<T> as a struct wrapping the
// raw pointer in field 0 (spec §4.6.4).
func expandBoxDerefs(fn *Function, bb *BasicBlock) {
	for i, s := range bb.Statements {
		a, ok := s.(*Assign)
		if !ok {
			continue
		}
		bb.Statements[i] = &Assign{Dst: rewriteBoxDerefsInLValue(fn, a.Dst), Src: rewriteBoxDerefsInRValue(fn, a.Src)}
	}
}

func rewriteBoxDerefsInLValue(fn *Function, l LValue) LValue {
	out := LValue{Root: l.Root}
	cur := boxLValueType(fn, LValue{Root: l.Root})
	for _, w := range l.Wrappers {
		if w.Kind == WrapDeref && cur != nil && isBoxType(cur) {
			out = out.Field(0)
		}
		out = out.appended(w)
		cur = stepWrapperType(cur, w)
	}
	return out
}

func rewriteBoxDerefsInRValue(fn *Function, rv RValue) RValue {
	switch rv.Kind {
	case RVUse, RVCast, RVUniOp, RVDstMeta, RVDstPtr:
		rv.LValue = rewriteBoxDerefsInLValue(fn, rv.LValue)
	case RVBorrow:
		rv.LValue = rewriteBoxDerefsInLValue(fn, rv.LValue)
	}
	return rv
}

// isBoxType recognises the struct path this repository's standard
// library uses for Box: a single-field struct named "Box".
func isBoxType(t *hir.TypeRef) bool {
	return t.Kind() == hir.KindPath && t.Path().Name() == "Box"
}

func boxLValueType(fn *Function, l LValue) *hir.TypeRef {
	switch l.Root.Kind {
	case RootReturn:
		return fn.RetType
	default:
		if l.Root.Index < len(fn.Locals) {
			return fn.Locals[l.Root.Index].Type
		}
	}
	return nil
}

func stepWrapperType(t *hir.TypeRef, w Wrapper) *hir.TypeRef {
	if t == nil {
		return nil
	}
	switch w.Kind {
	case WrapDeref:
		return t.Inner()
	case WrapField:
		if t.Kind() == hir.KindTuple && w.FieldIndex < len(t.Elems()) {
			return t.Elems()[w.FieldIndex]
		}
		return nil
	default:
		return nil
	}
}

// expandConstant implements §4.6.3: a Constant::Const(p) rvalue is
// resolved to its precomputed encoded literal and re-expressed as the
// corresponding value constructor. Everything else passes through
// unchanged.
func expandConstant(resolve hir.StaticTraitResolve, rv RValue) RValue {
	if rv.Kind != RVConstant || rv.Const.Kind != ConstItem || resolve == nil {
		return rv
	}
	val, ok := resolve.GetValue(rv.Const.Path)
	if !ok || val.Kind != hir.ValueConst {
		return rv
	}
	lit := val.Const.Value
	return decodeLiteral(resolve, lit)
}

// decodeLiteral walks lit's type layout and emits the corresponding
// value-constructor RValue (spec §4.6.3 steps 2-4): primitives are
// reinterpreted from the proper-width byte slice, tuples/structs use
// TypeRepr field offsets, arrays collapse to SizedArray when every
// element's bytes are identical, enums read their discriminant to pick
// a variant, and unions pick the first field covering the whole body.
func decodeLiteral(resolve hir.StaticTraitResolve, lit hir.EncodedLiteral) RValue {
	ty := lit.Type
	if ty == nil {
		return ConstRValue(ByteStringConst(lit.Bytes))
	}
	switch ty.Kind() {
	case hir.KindPrimitive:
		return ConstRValue(decodePrimitive(ty, lit.Bytes))
	case hir.KindTuple:
		repr, ok := resolve.TypeRepr(ty)
		if !ok {
			return ConstRValue(ByteStringConst(lit.Bytes))
		}
		params := make([]Param, len(ty.Elems()))
		for i, elemTy := range ty.Elems() {
			off := uint64(0)
			if i < len(repr.Fields) {
				off = repr.Fields[i].Offset
			}
			sz, _ := resolve.SizeOf(elemTy)
			params[i] = ConstParam(decodePrimitiveOrBytes(elemTy, sliceAt(lit.Bytes, off, sz)))
		}
		rv := TupleRValue(params...)
		return rv
	case hir.KindArray:
		return decodeArrayLiteral(resolve, ty, lit.Bytes)
	case hir.KindPath:
		repr, ok := resolve.TypeRepr(ty)
		if !ok {
			return ConstRValue(ByteStringConst(lit.Bytes))
		}
		switch {
		case repr.IsEnum:
			return decodeEnumLiteral(resolve, ty, repr, lit.Bytes)
		case repr.IsUnion:
			return decodeUnionLiteral(resolve, ty, repr, lit.Bytes)
		default:
			return decodeStructLiteral(resolve, ty, repr, lit.Bytes)
		}
	default:
		return ConstRValue(ByteStringConst(lit.Bytes))
	}
}

// decodeFields decodes one RValue Param per entry of repr.Fields, reading
// each field's bytes at its recorded offset — the layout struct, enum
// payload, and union decoders all share this.
func decodeFields(resolve hir.StaticTraitResolve, repr hir.TypeRepr, b []byte) []Param {
	params := make([]Param, len(repr.Fields))
	for i, f := range repr.Fields {
		sz, _ := resolve.SizeOf(f.Field.Type)
		params[i] = ConstParam(decodePrimitiveOrBytes(f.Field.Type, sliceAt(b, f.Offset, sz)))
	}
	return params
}

// decodeStructLiteral implements §4.6.3 step 2: walk repr's field offsets
// and emit one param per field.
func decodeStructLiteral(resolve hir.StaticTraitResolve, ty *hir.TypeRef, repr hir.TypeRepr, b []byte) RValue {
	return StructRValue(ty.Path(), decodeFields(resolve, repr, b)...)
}

// decodeArrayLiteral implements §4.6.3 step 3: slice the byte string into
// ArraySize() equal-width elements and collapse to SizedArray when every
// element decodes to the same bytes.
func decodeArrayLiteral(resolve hir.StaticTraitResolve, ty *hir.TypeRef, b []byte) RValue {
	elemTy := ty.Inner()
	n := ty.ArraySize()
	sz, ok := resolve.SizeOf(elemTy)
	if !ok || n == 0 {
		return ConstRValue(ByteStringConst(b))
	}

	chunks := make([][]byte, n)
	for i := uint64(0); i < n; i++ {
		chunks[i] = sliceAt(b, i*sz, sz)
	}
	uniform := true
	for i := uint64(1); i < n; i++ {
		if !bytes.Equal(chunks[i], chunks[0]) {
			uniform = false
			break
		}
	}
	if uniform {
		return SizedArray(ConstParam(decodePrimitiveOrBytes(elemTy, chunks[0])), n)
	}

	params := make([]Param, n)
	for i, c := range chunks {
		params[i] = ConstParam(decodePrimitiveOrBytes(elemTy, c))
	}
	return ArrayRValue(params...)
}

// decodeEnumLiteral implements §4.6.3 step 4: read the discriminant at
// the tag offset to pick a variant index, then decode that variant's
// payload fields using repr's shared field layout.
func decodeEnumLiteral(resolve hir.StaticTraitResolve, ty *hir.TypeRef, repr hir.TypeRepr, b []byte) RValue {
	idx := 0
	if len(repr.VariantTag) > 0 {
		off := repr.VariantTag[0]
		width := uint64(4) // standard discriminant width
		if off+width > repr.Size {
			width = repr.Size - off
		}
		tag := int(decodeUint(sliceAt(b, off, width)))
		if tag >= 0 && tag < len(repr.VariantTag) {
			idx = tag
		}
	}
	return EnumVariant(ty.Path(), idx, decodeFields(resolve, repr, b)...)
}

// decodeUnionLiteral implements §4.6.3 step 4: pick the first field
// whose size covers the whole union body (the common case of a single
// dominant field, e.g. MaybeUninit<T>'s value variant).
func decodeUnionLiteral(resolve hir.StaticTraitResolve, ty *hir.TypeRef, repr hir.TypeRepr, b []byte) RValue {
	if len(repr.Fields) == 0 {
		return ConstRValue(ByteStringConst(b))
	}
	idx := 0
	for i, f := range repr.Fields {
		if sz, ok := resolve.SizeOf(f.Field.Type); ok && f.Offset == 0 && sz == repr.Size {
			idx = i
			break
		}
	}
	f := repr.Fields[idx]
	sz, _ := resolve.SizeOf(f.Field.Type)
	param := ConstParam(decodePrimitiveOrBytes(f.Field.Type, sliceAt(b, f.Offset, sz)))
	return UnionVariant(ty.Path(), idx, param)
}

func decodePrimitiveOrBytes(ty *hir.TypeRef, b []byte) Constant {
	if ty.Kind() == hir.KindPrimitive {
		return decodePrimitive(ty, b)
	}
	return ByteStringConst(b)
}

func sliceAt(b []byte, off, size uint64) []byte {
	if off+size > uint64(len(b)) {
		return nil
	}
	return b[off : off+size]
}

func decodeUint(b []byte) uint64 {
	var u uint64
	for i := len(b) - 1; i >= 0; i-- {
		u = u<<8 | uint64(b[i])
	}
	return u
}

func decodePrimitive(ty *hir.TypeRef, b []byte) Constant {
	u := decodeUint(b)
	if ty.Primitive().IsSigned() {
		return IntConst(int64(u), ty)
	}
	if ty.Primitive() == hir.PrimBool {
		return BoolConst(u != 0)
	}
	return UintConst(u, ty)
}

// materialiseUnsize resolves a remaining MakeDst(ptr, ItemAddr(nil))
// placeholder (spec §4.6.5): the destination pointee's metadata class
// picks either a usize length (array->slice) or a vtable pointer
// (array/struct->trait object).
func materialiseUnsize(resolve hir.StaticTraitResolve, fn *Function, dst LValue, rv RValue) RValue {
	dstTy := typeOfLValue(resolve, fn, dst)
	if dstTy == nil || dstTy.Inner() == nil {
		return rv
	}
	switch dstTy.Inner().Class() {
	case hir.MetadataLength:
		if srcTy := typeOfLValue(resolve, fn, rv.Ptr.LValue); srcTy != nil && srcTy.Kind() == hir.KindArray {
			return MakeDst(rv.Ptr, ConstParam(UintConst(srcTy.ArraySize(), hir.Prim(hir.PrimUsize))))
		}
		return rv
	case hir.MetadataVTable:
		vt, ok := resolve.GetVTableType(dstTy.Inner().Traits()[0])
		if !ok {
			return rv
		}
		return MakeDst(rv.Ptr, ConstParam(ItemAddrConst(hir.Path{}, vt)))
	default:
		return rv
	}
}
