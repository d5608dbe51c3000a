package mir_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vellum-lang/vellum/internal/hir"
	"github.com/vellum-lang/vellum/internal/mir"
)

// These scenarios are the ones spec TESTABLE-PROPERTIES names directly (E1,
// E5, E6). E2 (constant folding) lives in optimize/const_propagate_test.go,
// E3 (trivial-callee inlining) in optimize/inlining_test.go, and E4
// (devirtualisation) in cleanup_test.go — each exercised closer to the pass
// that implements it.

// E1: a second move of an already-moved non-Copy local fails value-state
// validation.
func TestE1MoveThenUseFailsValidation(t *testing.T) {
	sTy := hir.PathType(hir.NewPath("test", "S"))

	fn := mir.NewFunction(hir.NewPath("test", "move_then_use"), nil, sTy)
	fn.ArgCount = 1
	fn.NewLocal(sTy, "s") // local 1, arg0
	tmp := fn.NewLocal(sTy, "")
	fn.NewBlock()
	fn.Emit(0, &mir.Assign{Dst: mir.LocalPlace(tmp), Src: mir.Use(mir.Argument(0))})
	fn.Emit(0, &mir.Assign{Dst: mir.Return(), Src: mir.Use(mir.Argument(0))})
	fn.Terminate(0, &mir.Return{})

	err := mir.ValidateValState(fn)
	assert.Error(t, err, "a second move of an already-moved local must be rejected")
}

// E5: `match x { Some(v) => v, None => 0 }` dispatches through a Switch,
// extracts the payload via Downcast(0).Field(0), and both arms join into a
// single result-producing block.
func TestE5MatchOnOptionLowersToSwitchAndDowncast(t *testing.T) {
	optionTy := hir.PathType(hir.NewPath("test", "Option"))
	u32 := hir.Prim(hir.PrimU32)

	fn := mir.NewFunction(hir.NewPath("test", "unwrap_or_zero"), nil, u32)
	fn.ArgCount = 1
	x := fn.NewLocal(optionTy, "x") // local 1, arg0
	v := fn.NewLocal(u32, "v")
	result := fn.NewLocal(u32, "")

	dispatch := fn.NewBlock()
	someBB := fn.NewBlock()
	noneBB := fn.NewBlock()
	joinBB := fn.NewBlock()

	fn.Terminate(dispatch, &mir.Switch{Value: mir.LocalPlace(x), Targets: []int{someBB, noneBB}})

	fn.Emit(someBB, &mir.Assign{Dst: mir.LocalPlace(v), Src: mir.Use(mir.LocalPlace(x).Downcast(0).Field(0))})
	fn.Emit(someBB, &mir.Assign{Dst: mir.LocalPlace(result), Src: mir.Use(mir.LocalPlace(v))})
	fn.Terminate(someBB, &mir.Goto{Target: joinBB})

	fn.Emit(noneBB, &mir.Assign{Dst: mir.LocalPlace(result), Src: mir.ConstRValue(mir.UintConst(0, u32))})
	fn.Terminate(noneBB, &mir.Goto{Target: joinBB})

	fn.Emit(joinBB, &mir.Assign{Dst: mir.Return(), Src: mir.Use(mir.LocalPlace(result))})
	fn.Terminate(joinBB, &mir.Return{})

	err := mir.Validate(hir.NewFixedResolve(), fn)
	require.NoError(t, err)

	sw := fn.Blocks[dispatch].Terminator.(*mir.Switch)
	require.Len(t, sw.Targets, 2)

	extract := fn.Blocks[someBB].Statements[0].(*mir.Assign)
	require.Len(t, extract.Src.LValue.Wrappers, 2)
	assert.Equal(t, mir.WrapDowncast, extract.Src.LValue.Wrappers[0].Kind)
	assert.Equal(t, mir.WrapField, extract.Src.LValue.Wrappers[1].Kind)
	assert.Equal(t, 0, extract.Src.LValue.Wrappers[1].FieldIndex)
}

// E6: a range-pattern match over u8 (0..=9 => A, 10..=19 => B, _ => C)
// collapses to a chain of two range comparisons, with the default arm
// reached only once both have failed.
func TestE6RangeMatchCollapsesToTwoComparisons(t *testing.T) {
	u8 := hir.Prim(hir.PrimU8)

	fn := mir.NewFunction(hir.NewPath("test", "classify"), nil, u8)
	fn.ArgCount = 1
	x := fn.NewLocal(u8, "x") // local 1, arg0

	testLow := fn.NewBlock()
	armA := fn.NewBlock()
	testMid := fn.NewBlock()
	armB := fn.NewBlock()
	armC := fn.NewBlock()
	joinBB := fn.NewBlock()

	emitRangeTest := func(bb int, lo, hi uint64, trueTarget, falseTarget int) {
		loLocal := fn.NewLocal(hir.Prim(hir.PrimBool), "")
		fn.Emit(bb, &mir.Assign{
			Dst: mir.LocalPlace(loLocal),
			Src: mir.BinOpRValue(mir.UseParam(mir.LocalPlace(x)), mir.OpGe, mir.ConstParam(mir.UintConst(lo, u8))),
		})
		hiLocal := fn.NewLocal(hir.Prim(hir.PrimBool), "")
		fn.Emit(bb, &mir.Assign{
			Dst: mir.LocalPlace(hiLocal),
			Src: mir.BinOpRValue(mir.UseParam(mir.LocalPlace(x)), mir.OpLe, mir.ConstParam(mir.UintConst(hi, u8))),
		})
		both := fn.NewLocal(hir.Prim(hir.PrimBool), "")
		fn.Emit(bb, &mir.Assign{
			Dst: mir.LocalPlace(both),
			Src: mir.BinOpRValue(mir.UseParam(mir.LocalPlace(loLocal)), mir.OpBitAnd, mir.UseParam(mir.LocalPlace(hiLocal))),
		})
		fn.Terminate(bb, &mir.If{Cond: mir.LocalPlace(both), TrueTarget: trueTarget, FalseTarget: falseTarget})
	}

	emitRangeTest(testLow, 0, 9, armA, testMid)
	emitRangeTest(testMid, 10, 19, armB, armC)

	fn.Emit(armA, &mir.Assign{Dst: mir.Return(), Src: mir.ConstRValue(mir.UintConst(0, u8))})
	fn.Terminate(armA, &mir.Goto{Target: joinBB})
	fn.Emit(armB, &mir.Assign{Dst: mir.Return(), Src: mir.ConstRValue(mir.UintConst(1, u8))})
	fn.Terminate(armB, &mir.Goto{Target: joinBB})
	fn.Emit(armC, &mir.Assign{Dst: mir.Return(), Src: mir.ConstRValue(mir.UintConst(2, u8))})
	fn.Terminate(armC, &mir.Goto{Target: joinBB})
	fn.Terminate(joinBB, &mir.Return{})

	err := mir.Validate(hir.NewFixedResolve(), fn)
	require.NoError(t, err)

	lowIf := fn.Blocks[testLow].Terminator.(*mir.If)
	assert.Equal(t, testMid, lowIf.FalseTarget, "the low-range test's failure edge must reach the mid-range test")
	midIf := fn.Blocks[testMid].Terminator.(*mir.If)
	assert.Equal(t, armC, midIf.FalseTarget, "the default arm is reached only once both range tests fail")
}
