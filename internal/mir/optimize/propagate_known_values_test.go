package optimize_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vellum-lang/vellum/internal/hir"
	"github.com/vellum-lang/vellum/internal/mir"
	"github.com/vellum-lang/vellum/internal/mir/optimize"
)

// `_1 = (1, 2); retval = _1.0` with _1's type marked Copy should substitute
// the known field value directly, leaving _1 untouched (SplitAggregates
// handles the field-only-read case; this pass handles the Copy case where
// _1 is still read as a whole elsewhere too).
func TestPropagateKnownValuesSubstitutesKnownField(t *testing.T) {
	pairTy := hir.Tuple(u32(), u32())
	resolve := hir.NewFixedResolve()
	resolve.Copy[pairTy.String()] = true

	fn := mir.NewFunction(path("known_field"), nil, u32())
	_1 := fn.NewLocal(pairTy, "")
	fn.NewBlock()
	fn.Emit(0, &mir.Assign{
		Dst: mir.LocalPlace(_1),
		Src: mir.TupleRValue(mir.ConstParam(mir.UintConst(1, u32())), mir.ConstParam(mir.UintConst(2, u32()))),
	})
	fn.Emit(0, &mir.Assign{Dst: mir.Return(), Src: mir.Use(mir.LocalPlace(_1).Field(0))})
	fn.Terminate(0, &mir.Return{})

	changed := optimize.PropagateKnownValues(resolve, fn)
	require.True(t, changed)

	a := fn.Blocks[0].Statements[1].(*mir.Assign)
	require.Equal(t, mir.RVConstant, a.Src.Kind)
	assert.Equal(t, uint64(1), a.Src.Const.Uint)
}

func TestPropagateKnownValuesIgnoresNonCopyAggregate(t *testing.T) {
	pairTy := hir.Tuple(u32(), u32())
	resolve := hir.NewFixedResolve() // not marked Copy

	fn := mir.NewFunction(path("not_copy"), nil, u32())
	_1 := fn.NewLocal(pairTy, "")
	fn.NewBlock()
	fn.Emit(0, &mir.Assign{
		Dst: mir.LocalPlace(_1),
		Src: mir.TupleRValue(mir.ConstParam(mir.UintConst(1, u32())), mir.ConstParam(mir.UintConst(2, u32()))),
	})
	fn.Emit(0, &mir.Assign{Dst: mir.Return(), Src: mir.Use(mir.LocalPlace(_1).Field(0))})
	fn.Terminate(0, &mir.Return{})

	changed := optimize.PropagateKnownValues(resolve, fn)
	assert.False(t, changed)
}
