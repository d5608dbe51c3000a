package optimize_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vellum-lang/vellum/internal/hir"
	"github.com/vellum-lang/vellum/internal/mir"
	"github.com/vellum-lang/vellum/internal/mir/optimize"
)

// `_1 = 1 + 2; retval = _1` collapses to `retval = 1 + 2` since _1 is
// written once and read exactly once with nothing intervening.
func TestDeTemporarySubstitutesSoleUse(t *testing.T) {
	fn := mir.NewFunction(path("single_use"), nil, u32())
	_1 := fn.NewLocal(u32(), "")
	fn.NewBlock()
	fn.Emit(0, &mir.Assign{
		Dst: mir.LocalPlace(_1),
		Src: mir.BinOpRValue(mir.ConstParam(mir.UintConst(1, u32())), mir.OpAdd, mir.ConstParam(mir.UintConst(2, u32()))),
	})
	fn.Emit(0, &mir.Assign{Dst: mir.Return(), Src: mir.Use(mir.LocalPlace(_1))})
	fn.Terminate(0, &mir.Return{})

	changed := optimize.DeTemporary(hir.NewFixedResolve(), fn)
	require.True(t, changed)
	require.Len(t, fn.Blocks[0].Statements, 1)

	a := fn.Blocks[0].Statements[0].(*mir.Assign)
	assert.True(t, a.Dst.Equal(mir.Return()))
	assert.Equal(t, mir.RVBinOp, a.Src.Kind)
}

func TestDeTemporaryLeavesAggregateDefsAlone(t *testing.T) {
	fn := mir.NewFunction(path("aggregate"), nil, u32())
	_1 := fn.NewLocal(u32(), "")
	fn.NewBlock()
	fn.Emit(0, &mir.Assign{Dst: mir.LocalPlace(_1), Src: mir.TupleRValue(mir.ConstParam(mir.UintConst(1, u32())))})
	fn.Emit(0, &mir.Assign{Dst: mir.Return(), Src: mir.Use(mir.LocalPlace(_1))})
	fn.Terminate(0, &mir.Return{})

	changed := optimize.DeTemporary(hir.NewFixedResolve(), fn)
	assert.False(t, changed, "aggregate-valued defs are excluded from substitution")
}
