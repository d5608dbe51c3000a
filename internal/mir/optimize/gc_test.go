package optimize_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vellum-lang/vellum/internal/hir"
	"github.com/vellum-lang/vellum/internal/mir"
	"github.com/vellum-lang/vellum/internal/mir/optimize"
)

func TestGCPartialBlanksUnreachableBlock(t *testing.T) {
	fn := mir.NewFunction(path("unreachable"), nil, u32())
	fn.NewBlock() // 0: entry, returns directly
	fn.NewBlock() // 1: unreachable
	fn.Terminate(0, &mir.Return{})
	fn.Emit(1, &mir.Assign{Dst: mir.Return(), Src: mir.ConstRValue(mir.UintConst(1, u32()))})
	fn.Terminate(1, &mir.Return{})

	changed := optimize.GCPartial(hir.NewFixedResolve(), fn)
	assert.True(t, changed)
	assert.Empty(t, fn.Blocks[1].Statements)
	_, incomplete := fn.Blocks[1].Terminator.(*mir.Incomplete)
	assert.True(t, incomplete)
	assert.Len(t, fn.Blocks, 2, "GCPartial never renumbers, only blanks")
}

func TestGarbageCollectRenumbersDenselyAndKeepsArgsAndReturn(t *testing.T) {
	fn := mir.NewFunction(path("gc"), nil, u32())
	fn.ArgCount = 1
	arg := fn.NewLocal(u32(), "x") // local 1
	unused := fn.NewLocal(u32(), "")
	fn.NewBlock() // 0
	fn.NewBlock() // 1: unreachable, should be dropped
	fn.Emit(0, &mir.Assign{Dst: mir.Return(), Src: mir.Use(mir.LocalPlace(arg))})
	fn.Terminate(0, &mir.Return{})
	fn.Terminate(1, &mir.Return{})
	_ = unused

	optimize.GarbageCollect(fn)

	require.Len(t, fn.Blocks, 1, "the unreachable block should be dropped")
	require.Len(t, fn.Locals, 2, "return slot and the used argument survive; the unused local is collected")
	a := fn.Blocks[0].Terminator
	_, isReturn := a.(*mir.Return)
	assert.True(t, isReturn)
}
