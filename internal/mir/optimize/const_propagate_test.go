package optimize_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vellum-lang/vellum/internal/hir"
	"github.com/vellum-lang/vellum/internal/mir"
	"github.com/vellum-lang/vellum/internal/mir/optimize"
)

// E2 (spec §8): _1 = 2 + 3 folds to the constant 5.
func TestConstPropagateFoldsBinOp(t *testing.T) {
	fn := mir.NewFunction(path("add"), nil, u32())
	_1 := fn.NewLocal(u32(), "")
	fn.NewBlock()
	fn.Emit(0, &mir.Assign{
		Dst: mir.LocalPlace(_1),
		Src: mir.BinOpRValue(mir.ConstParam(mir.UintConst(2, u32())), mir.OpAdd, mir.ConstParam(mir.UintConst(3, u32()))),
	})
	fn.Terminate(0, &mir.Return{})

	changed := optimize.ConstPropagate(hir.NewFixedResolve(), fn)
	require.True(t, changed)

	a := fn.Blocks[0].Statements[0].(*mir.Assign)
	require.Equal(t, mir.RVConstant, a.Src.Kind)
	assert.Equal(t, uint64(5), a.Src.Const.Uint)
}

// If a known bool local feeds an If terminator, the branch collapses to
// a Goto on the taken arm.
func TestConstPropagateCollapsesIf(t *testing.T) {
	fn := mir.NewFunction(path("branch"), nil, u32())
	_1 := fn.NewLocal(hir.Prim(hir.PrimBool), "")
	fn.NewBlock() // 0
	fn.NewBlock() // 1: true arm
	fn.NewBlock() // 2: false arm

	fn.Emit(0, &mir.Assign{Dst: mir.LocalPlace(_1), Src: mir.ConstRValue(mir.BoolConst(true))})
	fn.Terminate(0, &mir.If{Cond: mir.LocalPlace(_1), TrueTarget: 1, FalseTarget: 2})
	fn.Terminate(1, &mir.Return{})
	fn.Terminate(2, &mir.Return{})

	changed := optimize.ConstPropagate(hir.NewFixedResolve(), fn)
	require.True(t, changed)

	g, ok := fn.Blocks[0].Terminator.(*mir.Goto)
	require.True(t, ok)
	assert.Equal(t, 1, g.Target)
}

func TestConstPropagateLeavesUnknownOperandsAlone(t *testing.T) {
	fn := mir.NewFunction(path("unknown"), nil, u32())
	_1 := fn.NewLocal(u32(), "")
	_2 := fn.NewLocal(u32(), "")
	fn.NewBlock()
	fn.Emit(0, &mir.Assign{
		Dst: mir.LocalPlace(_2),
		Src: mir.BinOpRValue(mir.UseParam(mir.LocalPlace(_1)), mir.OpAdd, mir.ConstParam(mir.UintConst(1, u32()))),
	})
	fn.Terminate(0, &mir.Return{})

	changed := optimize.ConstPropagate(hir.NewFixedResolve(), fn)
	assert.False(t, changed, "a BinOp over a non-constant local must not be folded")
}
