package mir_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vellum-lang/vellum/internal/hir"
	"github.com/vellum-lang/vellum/internal/mir"
)

func u32() *hir.TypeRef { return hir.Prim(hir.PrimU32) }

// E4 (spec §8): a call through a trait method path is rewritten into an
// indirect call through the receiver's vtable slot.
func TestCleanupDevirtualisesTraitCall(t *testing.T) {
	resolve := hir.NewFixedResolve()
	traitPath := hir.NewPath("test", "Animal")
	resolve.VTableIdx[traitPath.String()+"::speak"] = 2

	fn := mir.NewFunction(hir.NewPath("test", "call_speak"), nil, u32())
	recv := fn.NewLocal(hir.Pointer(hir.ModeShared, hir.Prim(hir.PrimU8)), "")
	fn.NewBlock()
	fn.Terminate(0, &mir.Call{
		Target:      mir.CallTarget{Kind: mir.CallPath, Path: hir.NewPath("test", "Animal", "speak")},
		Args:        []mir.Param{mir.UseParam(mir.LocalPlace(recv))},
		RetLValue:   mir.Return(),
		RetTarget:   0,
		PanicTarget: 0,
	})

	err := mir.Cleanup(resolve, fn)
	require.NoError(t, err)

	call := fn.Blocks[0].Terminator.(*mir.Call)
	assert.Equal(t, mir.CallValue, call.Target.Kind, "the call target should become an indirect vtable-slot call")
	require.NotEmpty(t, fn.Blocks[0].Statements, "a vtable-pointer local should have been materialised")
}

// Box<T> is represented as a single-field struct; a Deref on a Box place
// rewrites to Field(0).Deref (spec §4.6.4).
func TestCleanupExpandsBoxDeref(t *testing.T) {
	resolve := hir.NewFixedResolve()
	boxTy := hir.PathType(hir.NewPath("test", "Box"))

	fn := mir.NewFunction(hir.NewPath("test", "deref_box"), nil, u32())
	box := fn.NewLocal(boxTy, "")
	fn.NewBlock()
	fn.Emit(0, &mir.Assign{Dst: mir.Return(), Src: mir.Use(mir.LocalPlace(box).Deref())})
	fn.Terminate(0, &mir.Return{})

	err := mir.Cleanup(resolve, fn)
	require.NoError(t, err)

	a := fn.Blocks[0].Statements[0].(*mir.Assign)
	require.Len(t, a.Src.LValue.Wrappers, 2)
	assert.Equal(t, mir.WrapField, a.Src.LValue.Wrappers[0].Kind)
	assert.Equal(t, 0, a.Src.LValue.Wrappers[0].FieldIndex)
	assert.Equal(t, mir.WrapDeref, a.Src.LValue.Wrappers[1].Kind)
}

// A Constant::Const reference to a primitive const item expands to the
// literal value it was precomputed from (spec §4.6.3).
func TestCleanupExpandsPrimitiveConstant(t *testing.T) {
	resolve := hir.NewFixedResolve()
	constPath := hir.NewPath("test", "FORTY_TWO")
	resolve.Values[constPath.String()] = hir.Value{
		Kind: hir.ValueConst,
		Const: &hir.ConstItem{
			Type:  u32(),
			Value: hir.EncodedLiteral{Bytes: []byte{42, 0, 0, 0}, Type: u32()},
		},
	}

	fn := mir.NewFunction(hir.NewPath("test", "read_const"), nil, u32())
	fn.NewBlock()
	fn.Emit(0, &mir.Assign{Dst: mir.Return(), Src: mir.ConstRValue(mir.ItemConst(constPath, u32()))})
	fn.Terminate(0, &mir.Return{})

	err := mir.Cleanup(resolve, fn)
	require.NoError(t, err)

	a := fn.Blocks[0].Statements[0].(*mir.Assign)
	require.Equal(t, mir.RVConstant, a.Src.Kind)
	require.Equal(t, mir.ConstUint, a.Src.Const.Kind)
	assert.Equal(t, uint64(42), a.Src.Const.Uint)
}

// A tuple-typed const item decodes each field from its TypeRepr offset.
func TestCleanupExpandsTupleConstant(t *testing.T) {
	resolve := hir.NewFixedResolve()
	tupleTy := hir.Tuple(u32(), u32())
	resolve.Reprs[tupleTy.String()] = hir.TypeRepr{
		Fields: []hir.FieldOffset{{Offset: 0}, {Offset: 4}},
	}
	constPath := hir.NewPath("test", "PAIR")
	resolve.Values[constPath.String()] = hir.Value{
		Kind: hir.ValueConst,
		Const: &hir.ConstItem{
			Type:  tupleTy,
			Value: hir.EncodedLiteral{Bytes: []byte{1, 0, 0, 0, 2, 0, 0, 0}, Type: tupleTy},
		},
	}

	fn := mir.NewFunction(hir.NewPath("test", "read_pair"), nil, tupleTy)
	fn.NewBlock()
	fn.Emit(0, &mir.Assign{Dst: mir.Return(), Src: mir.ConstRValue(mir.ItemConst(constPath, tupleTy))})
	fn.Terminate(0, &mir.Return{})

	err := mir.Cleanup(resolve, fn)
	require.NoError(t, err)

	a := fn.Blocks[0].Statements[0].(*mir.Assign)
	require.Equal(t, mir.RVTuple, a.Src.Kind)
	require.Len(t, a.Src.Params, 2)
	assert.Equal(t, uint64(1), a.Src.Params[0].Const.Uint)
	assert.Equal(t, uint64(2), a.Src.Params[1].Const.Uint)
}

// A struct-typed const item decodes each field from its TypeRepr offset
// and emits a StructRValue (spec §4.6.3 step 2).
func TestCleanupExpandsStructConstant(t *testing.T) {
	resolve := hir.NewFixedResolve()
	structPath := hir.NewPath("test", "Point")
	structTy := hir.PathType(structPath)
	resolve.Reprs[structTy.String()] = hir.TypeRepr{
		Size: 8,
		Fields: []hir.FieldOffset{
			{Field: hir.Field{Name: "x", Type: u32()}, Offset: 0},
			{Field: hir.Field{Name: "y", Type: u32()}, Offset: 4},
		},
	}
	constPath := hir.NewPath("test", "ORIGIN")
	resolve.Values[constPath.String()] = hir.Value{
		Kind: hir.ValueConst,
		Const: &hir.ConstItem{
			Type:  structTy,
			Value: hir.EncodedLiteral{Bytes: []byte{3, 0, 0, 0, 4, 0, 0, 0}, Type: structTy},
		},
	}

	fn := mir.NewFunction(hir.NewPath("test", "read_origin"), nil, structTy)
	fn.NewBlock()
	fn.Emit(0, &mir.Assign{Dst: mir.Return(), Src: mir.ConstRValue(mir.ItemConst(constPath, structTy))})
	fn.Terminate(0, &mir.Return{})

	err := mir.Cleanup(resolve, fn)
	require.NoError(t, err)

	a := fn.Blocks[0].Statements[0].(*mir.Assign)
	require.Equal(t, mir.RVStruct, a.Src.Kind)
	assert.Equal(t, structPath, a.Src.Path)
	require.Len(t, a.Src.Params, 2)
	assert.Equal(t, uint64(3), a.Src.Params[0].Const.Uint)
	assert.Equal(t, uint64(4), a.Src.Params[1].Const.Uint)
}

// An array const item with every element's bytes identical collapses to a
// SizedArray rather than a full element list (spec §4.6.3 step 3).
func TestCleanupExpandsUniformArrayConstantToSizedArray(t *testing.T) {
	resolve := hir.NewFixedResolve()
	arrTy := hir.Array(u32(), 3)
	constPath := hir.NewPath("test", "ZEROS")
	resolve.Values[constPath.String()] = hir.Value{
		Kind: hir.ValueConst,
		Const: &hir.ConstItem{
			Type:  arrTy,
			Value: hir.EncodedLiteral{Bytes: []byte{7, 0, 0, 0, 7, 0, 0, 0, 7, 0, 0, 0}, Type: arrTy},
		},
	}

	fn := mir.NewFunction(hir.NewPath("test", "read_zeros"), nil, arrTy)
	fn.NewBlock()
	fn.Emit(0, &mir.Assign{Dst: mir.Return(), Src: mir.ConstRValue(mir.ItemConst(constPath, arrTy))})
	fn.Terminate(0, &mir.Return{})

	err := mir.Cleanup(resolve, fn)
	require.NoError(t, err)

	a := fn.Blocks[0].Statements[0].(*mir.Assign)
	require.Equal(t, mir.RVSizedArray, a.Src.Kind)
	assert.Equal(t, uint64(3), a.Src.Count)
	assert.Equal(t, uint64(7), a.Src.Elem.Const.Uint)
}

// An array const item whose elements differ decodes to a full element
// list instead of collapsing (spec §4.6.3 step 3).
func TestCleanupExpandsMixedArrayConstant(t *testing.T) {
	resolve := hir.NewFixedResolve()
	arrTy := hir.Array(u32(), 2)
	constPath := hir.NewPath("test", "PAIR_ARR")
	resolve.Values[constPath.String()] = hir.Value{
		Kind: hir.ValueConst,
		Const: &hir.ConstItem{
			Type:  arrTy,
			Value: hir.EncodedLiteral{Bytes: []byte{1, 0, 0, 0, 2, 0, 0, 0}, Type: arrTy},
		},
	}

	fn := mir.NewFunction(hir.NewPath("test", "read_pair_arr"), nil, arrTy)
	fn.NewBlock()
	fn.Emit(0, &mir.Assign{Dst: mir.Return(), Src: mir.ConstRValue(mir.ItemConst(constPath, arrTy))})
	fn.Terminate(0, &mir.Return{})

	err := mir.Cleanup(resolve, fn)
	require.NoError(t, err)

	a := fn.Blocks[0].Statements[0].(*mir.Assign)
	require.Equal(t, mir.RVArray, a.Src.Kind)
	require.Len(t, a.Src.Params, 2)
	assert.Equal(t, uint64(1), a.Src.Params[0].Const.Uint)
	assert.Equal(t, uint64(2), a.Src.Params[1].Const.Uint)
}

// An enum const item reads its discriminant to pick a variant, then
// decodes that variant's payload fields (spec §4.6.3 step 4).
func TestCleanupExpandsEnumConstant(t *testing.T) {
	resolve := hir.NewFixedResolve()
	enumPath := hir.NewPath("test", "Opt")
	enumTy := hir.PathType(enumPath)
	resolve.Reprs[enumTy.String()] = hir.TypeRepr{
		Size:       8,
		IsEnum:     true,
		VariantTag: []uint64{0, 0},
		Fields:     []hir.FieldOffset{{Field: hir.Field{Name: "0", Type: u32()}, Offset: 4}},
	}
	constPath := hir.NewPath("test", "SOME_ONE")
	resolve.Values[constPath.String()] = hir.Value{
		Kind: hir.ValueConst,
		Const: &hir.ConstItem{
			Type:  enumTy,
			Value: hir.EncodedLiteral{Bytes: []byte{1, 0, 0, 0, 1, 0, 0, 0}, Type: enumTy},
		},
	}

	fn := mir.NewFunction(hir.NewPath("test", "read_opt"), nil, enumTy)
	fn.NewBlock()
	fn.Emit(0, &mir.Assign{Dst: mir.Return(), Src: mir.ConstRValue(mir.ItemConst(constPath, enumTy))})
	fn.Terminate(0, &mir.Return{})

	err := mir.Cleanup(resolve, fn)
	require.NoError(t, err)

	a := fn.Blocks[0].Statements[0].(*mir.Assign)
	require.Equal(t, mir.RVEnumVariant, a.Src.Kind)
	assert.Equal(t, enumPath, a.Src.Path)
	assert.Equal(t, 1, a.Src.VariantIdx)
	require.Len(t, a.Src.Params, 1)
	assert.Equal(t, uint64(1), a.Src.Params[0].Const.Uint)
}

// A union const item picks the first field that covers the whole body
// (spec §4.6.3 step 4).
func TestCleanupExpandsUnionConstant(t *testing.T) {
	resolve := hir.NewFixedResolve()
	unionPath := hir.NewPath("test", "Raw")
	unionTy := hir.PathType(unionPath)
	resolve.Reprs[unionTy.String()] = hir.TypeRepr{
		Size:    4,
		IsUnion: true,
		Fields:  []hir.FieldOffset{{Field: hir.Field{Name: "bits", Type: u32()}, Offset: 0}},
	}
	constPath := hir.NewPath("test", "RAW_BITS")
	resolve.Values[constPath.String()] = hir.Value{
		Kind: hir.ValueConst,
		Const: &hir.ConstItem{
			Type:  unionTy,
			Value: hir.EncodedLiteral{Bytes: []byte{9, 0, 0, 0}, Type: unionTy},
		},
	}

	fn := mir.NewFunction(hir.NewPath("test", "read_raw"), nil, unionTy)
	fn.NewBlock()
	fn.Emit(0, &mir.Assign{Dst: mir.Return(), Src: mir.ConstRValue(mir.ItemConst(constPath, unionTy))})
	fn.Terminate(0, &mir.Return{})

	err := mir.Cleanup(resolve, fn)
	require.NoError(t, err)

	a := fn.Blocks[0].Statements[0].(*mir.Assign)
	require.Equal(t, mir.RVUnionVariant, a.Src.Kind)
	assert.Equal(t, unionPath, a.Src.Path)
	assert.Equal(t, 0, a.Src.VariantIdx)
	assert.Equal(t, uint64(9), a.Src.VariantParam.Const.Uint)
}
