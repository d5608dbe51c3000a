package optimize_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vellum-lang/vellum/internal/hir"
	"github.com/vellum-lang/vellum/internal/mir"
	"github.com/vellum-lang/vellum/internal/mir/optimize"
)

func TestDeadAssignmentsRemovesUnreadLocal(t *testing.T) {
	fn := mir.NewFunction(path("dead"), nil, u32())
	dead := fn.NewLocal(u32(), "")
	fn.NewBlock()
	fn.Emit(0, &mir.Assign{Dst: mir.LocalPlace(dead), Src: mir.ConstRValue(mir.UintConst(9, u32()))})
	fn.Emit(0, &mir.Assign{Dst: mir.Return(), Src: mir.ConstRValue(mir.UintConst(1, u32()))})
	fn.Terminate(0, &mir.Return{})

	changed := optimize.DeadAssignments(hir.NewFixedResolve(), fn)
	assert.True(t, changed)
	assert.Len(t, fn.Blocks[0].Statements, 1, "the write to the unread local should be removed")
}

func TestDeadAssignmentsKeepsReadLocal(t *testing.T) {
	fn := mir.NewFunction(path("live"), nil, u32())
	live := fn.NewLocal(u32(), "")
	fn.NewBlock()
	fn.Emit(0, &mir.Assign{Dst: mir.LocalPlace(live), Src: mir.ConstRValue(mir.UintConst(9, u32()))})
	fn.Emit(0, &mir.Assign{Dst: mir.Return(), Src: mir.Use(mir.LocalPlace(live))})
	fn.Terminate(0, &mir.Return{})

	changed := optimize.DeadAssignments(hir.NewFixedResolve(), fn)
	assert.False(t, changed)
	assert.Len(t, fn.Blocks[0].Statements, 2)
}

func TestDeadAssignmentsNeverRemovesReturnSlotWrite(t *testing.T) {
	fn := mir.NewFunction(path("ret"), nil, u32())
	fn.NewBlock()
	fn.Emit(0, &mir.Assign{Dst: mir.Return(), Src: mir.ConstRValue(mir.UintConst(1, u32()))})
	fn.Terminate(0, &mir.Return{})

	changed := optimize.DeadAssignments(hir.NewFixedResolve(), fn)
	assert.False(t, changed)
	assert.Len(t, fn.Blocks[0].Statements, 1)
}
