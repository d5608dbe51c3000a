package optimize_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vellum-lang/vellum/internal/hir"
	"github.com/vellum-lang/vellum/internal/mir"
	"github.com/vellum-lang/vellum/internal/mir/optimize"
)

// `_1 = (1, 2); retval = _1.0` splits _1 into two fresh locals and
// retargets the field read onto the first one, since _1 is never used
// as a whole value.
func TestSplitAggregatesSplitsFieldOnlyTuple(t *testing.T) {
	fn := mir.NewFunction(path("pair"), nil, u32())
	pairTy := hir.Tuple(u32(), u32())
	_1 := fn.NewLocal(pairTy, "")
	fn.NewBlock()
	fn.Emit(0, &mir.Assign{
		Dst: mir.LocalPlace(_1),
		Src: mir.TupleRValue(mir.ConstParam(mir.UintConst(1, u32())), mir.ConstParam(mir.UintConst(2, u32()))),
	})
	fn.Emit(0, &mir.Assign{Dst: mir.Return(), Src: mir.Use(mir.LocalPlace(_1).Field(0))})
	fn.Terminate(0, &mir.Return{})

	changed := optimize.SplitAggregates(hir.NewFixedResolve(), fn)
	require.True(t, changed)

	require.Len(t, fn.Blocks[0].Statements, 3, "tuple assign becomes two field assigns, plus the original read")
	last := fn.Blocks[0].Statements[2].(*mir.Assign)
	require.Equal(t, mir.RVUse, last.Src.Kind)
	assert.NotEqual(t, _1, last.Src.LValue.Root.Index, "the field read should now target a fresh per-field local")
}

func TestSplitAggregatesSkipsWholeValueUse(t *testing.T) {
	fn := mir.NewFunction(path("whole"), nil, hir.Tuple(u32(), u32()))
	_1 := fn.NewLocal(hir.Tuple(u32(), u32()), "")
	fn.NewBlock()
	fn.Emit(0, &mir.Assign{
		Dst: mir.LocalPlace(_1),
		Src: mir.TupleRValue(mir.ConstParam(mir.UintConst(1, u32())), mir.ConstParam(mir.UintConst(2, u32()))),
	})
	fn.Emit(0, &mir.Assign{Dst: mir.Return(), Src: mir.Use(mir.LocalPlace(_1))})
	fn.Terminate(0, &mir.Return{})

	changed := optimize.SplitAggregates(hir.NewFixedResolve(), fn)
	assert.False(t, changed, "a whole-value read disqualifies the split")
}
