package optimize_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vellum-lang/vellum/internal/hir"
	"github.com/vellum-lang/vellum/internal/mir"
	"github.com/vellum-lang/vellum/internal/mir/optimize"
)

// Two same-typed locals with disjoint live ranges (_1 dies before _2 is
// born) should be coalesced onto one local.
func TestUnifyTemporariesMergesDisjointRanges(t *testing.T) {
	fn := mir.NewFunction(path("disjoint"), nil, u32())
	_1 := fn.NewLocal(u32(), "")
	_2 := fn.NewLocal(u32(), "")
	fn.NewBlock()
	fn.Emit(0, &mir.Assign{Dst: mir.LocalPlace(_1), Src: mir.ConstRValue(mir.UintConst(1, u32()))})
	fn.Emit(0, &mir.Assign{Dst: mir.LocalPlace(fn.NewLocal(u32(), "")), Src: mir.Use(mir.LocalPlace(_1))})
	fn.Emit(0, &mir.Assign{Dst: mir.LocalPlace(_2), Src: mir.ConstRValue(mir.UintConst(2, u32()))})
	fn.Emit(0, &mir.Assign{Dst: mir.Return(), Src: mir.Use(mir.LocalPlace(_2))})
	fn.Terminate(0, &mir.Return{})

	changed := optimize.UnifyTemporaries(hir.NewFixedResolve(), fn)
	require.True(t, changed)

	last := fn.Blocks[0].Statements[3].(*mir.Assign)
	assert.Equal(t, _1, last.Src.LValue.Root.Index, "the final read of _2 should alias onto _1's now-dead slot")
}

func TestUnifyTemporariesNeverTouchesArgsOrReturnSlot(t *testing.T) {
	fn := mir.NewFunction(path("protected"), nil, u32())
	fn.ArgCount = 1
	fn.NewLocal(u32(), "x") // local 1, the argument
	fn.NewBlock()
	fn.Emit(0, &mir.Assign{Dst: mir.Return(), Src: mir.Use(mir.Argument(0))})
	fn.Terminate(0, &mir.Return{})

	changed := optimize.UnifyTemporaries(hir.NewFixedResolve(), fn)
	assert.False(t, changed)
}
