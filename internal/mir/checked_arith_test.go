package mir_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vellum-lang/vellum/internal/hir"
	"github.com/vellum-lang/vellum/internal/mir"
)

// Checked-mode addition emits ADD_OV into a (T,bool) temporary and
// branches to Diverge on the overflow flag (spec §4.2.2).
func TestLowerCheckedArithBranchesToDiverge(t *testing.T) {
	u32 := hir.Prim(hir.PrimU32)
	b := mir.NewBuilder(hir.NewPath("test", "add_checked"), nil, u32, nil)
	b.CheckedArith = true
	arg := b.AddArg(u32, "x")

	left := mir.UseParam(mir.LocalPlace(arg))
	right := mir.ConstParam(mir.UintConst(1, u32))
	rv := b.LowerCheckedArith(mir.OpAddOv, left, right, u32)
	b.Emit(&mir.Assign{Dst: mir.Return(), Src: rv})
	b.Terminate(&mir.Return{})

	fn := b.Fn
	var sawDiverge bool
	var sawIf bool
	for _, bb := range fn.Blocks {
		if _, ok := bb.Terminator.(*mir.Diverge); ok {
			sawDiverge = true
		}
		if _, ok := bb.Terminator.(*mir.If); ok {
			sawIf = true
		}
	}
	assert.True(t, sawIf, "checked arithmetic must branch on the overflow flag")
	assert.True(t, sawDiverge, "checked arithmetic must abort on overflow")

	err := mir.Validate(hir.NewFixedResolve(), fn)
	require.NoError(t, err)
}

// Given the plain OpAdd (the operator lowerBinOp passes on in checked mode),
// LowerCheckedArith returns a read of field 0 of its (T,bool) temporary.
func TestLowerCheckedArithReturnsFieldZeroForPlainOp(t *testing.T) {
	u32 := hir.Prim(hir.PrimU32)

	b := mir.NewBuilder(hir.NewPath("test", "dispatch_check"), nil, u32, nil)
	b.CheckedArith = true
	arg := b.AddArg(u32, "x")

	left := mir.UseParam(mir.LocalPlace(arg))
	right := mir.ConstParam(mir.UintConst(1, u32))
	rv := b.LowerCheckedArith(mir.OpAdd, left, right, u32)

	require.Equal(t, mir.RVUse, rv.Kind)
	require.Len(t, rv.LValue.Wrappers, 1)
	assert.Equal(t, mir.WrapField, rv.LValue.Wrappers[0].Kind)
	assert.Equal(t, 0, rv.LValue.Wrappers[0].FieldIndex)
}
