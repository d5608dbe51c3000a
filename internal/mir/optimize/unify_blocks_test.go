package optimize_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vellum-lang/vellum/internal/hir"
	"github.com/vellum-lang/vellum/internal/mir"
	"github.com/vellum-lang/vellum/internal/mir/optimize"
)

func TestUnifyBlocksMergesStructurallyIdenticalBlocks(t *testing.T) {
	fn := mir.NewFunction(path("dup"), nil, u32())
	fn.NewBlock() // 0: entry
	fn.NewBlock() // 1: duplicate A
	fn.NewBlock() // 2: duplicate B

	fn.Terminate(0, &mir.If{Cond: mir.LocalPlace(fn.NewLocal(hir.Prim(hir.PrimBool), "")), TrueTarget: 1, FalseTarget: 2})
	fn.Emit(1, &mir.Assign{Dst: mir.Return(), Src: mir.ConstRValue(mir.UintConst(1, u32()))})
	fn.Terminate(1, &mir.Return{})
	fn.Emit(2, &mir.Assign{Dst: mir.Return(), Src: mir.ConstRValue(mir.UintConst(1, u32()))})
	fn.Terminate(2, &mir.Return{})

	changed := optimize.UnifyBlocks(hir.NewFixedResolve(), fn)
	require.True(t, changed)

	ifTerm := fn.Blocks[0].Terminator.(*mir.If)
	assert.Equal(t, ifTerm.TrueTarget, ifTerm.FalseTarget, "both arms should now point at the single surviving block")
}

func TestUnifyBlocksLeavesDistinctBlocksAlone(t *testing.T) {
	fn := mir.NewFunction(path("nodup"), nil, u32())
	fn.NewBlock()
	fn.NewBlock()
	fn.Emit(0, &mir.Assign{Dst: mir.Return(), Src: mir.ConstRValue(mir.UintConst(1, u32()))})
	fn.Terminate(0, &mir.Return{})
	fn.Emit(1, &mir.Assign{Dst: mir.Return(), Src: mir.ConstRValue(mir.UintConst(2, u32()))})
	fn.Terminate(1, &mir.Return{})

	changed := optimize.UnifyBlocks(hir.NewFixedResolve(), fn)
	assert.False(t, changed)
}
