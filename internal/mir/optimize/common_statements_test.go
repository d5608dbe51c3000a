package optimize_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vellum-lang/vellum/internal/hir"
	"github.com/vellum-lang/vellum/internal/mir"
	"github.com/vellum-lang/vellum/internal/mir/optimize"
)

// Two predecessors of bb2 both end with an identical ScopeEnd; it should
// hoist to the front of bb2 and disappear from both predecessors.
func TestCommonStatementsHoistsSharedTail(t *testing.T) {
	fn := mir.NewFunction(path("diamond"), nil, u32())
	fn.NewBlock() // 0: entry
	fn.NewBlock() // 1: left arm
	fn.NewBlock() // 2: right arm
	fn.NewBlock() // 3: join

	fn.Terminate(0, &mir.If{Cond: mir.LocalPlace(fn.NewLocal(hir.Prim(hir.PrimBool), "")), TrueTarget: 1, FalseTarget: 2})
	fn.Emit(1, &mir.ScopeEnd{Locals: []int{1}})
	fn.Terminate(1, &mir.Goto{Target: 3})
	fn.Emit(2, &mir.ScopeEnd{Locals: []int{1}})
	fn.Terminate(2, &mir.Goto{Target: 3})
	fn.Terminate(3, &mir.Return{})

	changed := optimize.CommonStatements(hir.NewFixedResolve(), fn)
	require.True(t, changed)

	assert.Empty(t, fn.Blocks[1].Statements)
	assert.Empty(t, fn.Blocks[2].Statements)
	require.Len(t, fn.Blocks[3].Statements, 1)
	se, ok := fn.Blocks[3].Statements[0].(*mir.ScopeEnd)
	require.True(t, ok)
	assert.Equal(t, []int{1}, se.Locals)
}

func TestCommonStatementsSkipsSingletonPredecessor(t *testing.T) {
	fn := mir.NewFunction(path("linear"), nil, u32())
	fn.NewBlock()
	fn.NewBlock()
	fn.Emit(0, &mir.ScopeEnd{Locals: []int{1}})
	fn.Terminate(0, &mir.Goto{Target: 1})
	fn.Terminate(1, &mir.Return{})

	changed := optimize.CommonStatements(hir.NewFixedResolve(), fn)
	assert.False(t, changed)
}
