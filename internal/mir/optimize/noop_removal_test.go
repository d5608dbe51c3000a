package optimize_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vellum-lang/vellum/internal/hir"
	"github.com/vellum-lang/vellum/internal/mir"
	"github.com/vellum-lang/vellum/internal/mir/optimize"
)

func TestNoopRemovalDropsSelfUse(t *testing.T) {
	fn := mir.NewFunction(path("selfuse"), nil, u32())
	local := fn.NewLocal(u32(), "")
	fn.NewBlock()
	fn.Emit(0, &mir.Assign{Dst: mir.LocalPlace(local), Src: mir.Use(mir.LocalPlace(local))})
	fn.Emit(0, &mir.Assign{Dst: mir.Return(), Src: mir.Use(mir.LocalPlace(local))})
	fn.Terminate(0, &mir.Return{})

	changed := optimize.NoopRemoval(hir.NewFixedResolve(), fn)
	require.True(t, changed)
	assert.Len(t, fn.Blocks[0].Statements, 1)
}

func TestNoopRemovalDropsSharedBorrowOfOwnDeref(t *testing.T) {
	fn := mir.NewFunction(path("reborrow"), nil, u32())
	local := fn.NewLocal(u32(), "")
	fn.NewBlock()
	fn.Emit(0, &mir.Assign{
		Dst: mir.LocalPlace(local),
		Src: mir.BorrowRValue(mir.BorrowShared, mir.LocalPlace(local).Deref()),
	})
	fn.Terminate(0, &mir.Return{})

	changed := optimize.NoopRemoval(hir.NewFixedResolve(), fn)
	require.True(t, changed)
	assert.Empty(t, fn.Blocks[0].Statements)
}

func TestNoopRemovalKeepsRealAssignment(t *testing.T) {
	fn := mir.NewFunction(path("real"), nil, u32())
	local := fn.NewLocal(u32(), "")
	fn.NewBlock()
	fn.Emit(0, &mir.Assign{Dst: mir.LocalPlace(local), Src: mir.ConstRValue(mir.UintConst(1, u32()))})
	fn.Terminate(0, &mir.Return{})

	changed := optimize.NoopRemoval(hir.NewFixedResolve(), fn)
	assert.False(t, changed)
}
