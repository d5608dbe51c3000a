package optimize_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vellum-lang/vellum/internal/hir"
	"github.com/vellum-lang/vellum/internal/mir"
	"github.com/vellum-lang/vellum/internal/mir/optimize"
)

// bb0 -> bb1 (empty, just a Goto) -> bb2 (return). BlockSimplify should
// redirect bb0 straight to bb2 and fold the adjacent ScopeEnds in bb2.
func TestBlockSimplifyFoldsEmptyGotoChain(t *testing.T) {
	fn := mir.NewFunction(path("chain"), nil, u32())
	fn.NewBlock() // 0
	fn.NewBlock() // 1: empty goto-only
	fn.NewBlock() // 2: return

	fn.Terminate(0, &mir.Goto{Target: 1})
	fn.Terminate(1, &mir.Goto{Target: 2})
	fn.Emit(2, &mir.ScopeEnd{Locals: []int{1}})
	fn.Emit(2, &mir.ScopeEnd{Locals: []int{2}})
	fn.Terminate(2, &mir.Return{})

	changed := optimize.BlockSimplify(hir.NewFixedResolve(), fn)
	assert.True(t, changed)

	g, ok := fn.Blocks[0].Terminator.(*mir.Goto)
	assert.True(t, ok)
	assert.Equal(t, 2, g.Target, "bb0 should jump straight past the empty relay block")

	assert.Len(t, fn.Blocks[2].Statements, 1, "adjacent ScopeEnds should merge into one")
}

func TestBlockSimplifyNoopOnAlreadySimpleFunction(t *testing.T) {
	fn := mir.NewFunction(path("simple"), nil, u32())
	fn.NewBlock()
	fn.Terminate(0, &mir.Return{})

	changed := optimize.BlockSimplify(hir.NewFixedResolve(), fn)
	assert.False(t, changed)
}
