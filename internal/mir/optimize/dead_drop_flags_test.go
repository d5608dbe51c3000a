package optimize_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vellum-lang/vellum/internal/hir"
	"github.com/vellum-lang/vellum/internal/mir"
	"github.com/vellum-lang/vellum/internal/mir/optimize"
)

func TestDeadDropFlagsRemovesFlagNeverConsulted(t *testing.T) {
	fn := mir.NewFunction(path("unconsulted_flag"), nil, u32())
	flag := fn.NewDropFlag(false)
	fn.NewBlock()
	fn.Emit(0, &mir.SetDropFlag{FlagIdx: flag, NewValue: true, OtherIdx: -1})
	fn.Emit(0, &mir.Assign{Dst: mir.Return(), Src: mir.ConstRValue(mir.UintConst(1, u32()))})
	fn.Terminate(0, &mir.Return{})

	changed := optimize.DeadDropFlags(hir.NewFixedResolve(), fn)
	require.True(t, changed)
	assert.Len(t, fn.Blocks[0].Statements, 1)
}

func TestDeadDropFlagsKeepsFlagConsultedByDrop(t *testing.T) {
	fn := mir.NewFunction(path("consulted_flag"), nil, u32())
	local := fn.NewLocal(u32(), "")
	flag := fn.NewDropFlag(false)
	fn.NewBlock()
	fn.Emit(0, &mir.SetDropFlag{FlagIdx: flag, NewValue: true, OtherIdx: -1})
	fn.Emit(0, &mir.Drop{Kind: mir.DropShallow, LValue: mir.LocalPlace(local), FlagIdx: flag})
	fn.Terminate(0, &mir.Return{})

	changed := optimize.DeadDropFlags(hir.NewFixedResolve(), fn)
	assert.False(t, changed)
	assert.Len(t, fn.Blocks[0].Statements, 2)
}
