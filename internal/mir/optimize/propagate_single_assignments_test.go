package optimize_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vellum-lang/vellum/internal/hir"
	"github.com/vellum-lang/vellum/internal/mir"
	"github.com/vellum-lang/vellum/internal/mir/optimize"
)

// `_2 = Use(_1); retval = Use(_2)` collapses to `retval = Use(_1)`.
func TestPropagateSingleAssignmentsForwardsMoveChain(t *testing.T) {
	fn := mir.NewFunction(path("forward"), nil, u32())
	src := fn.NewLocal(u32(), "")
	_1 := fn.NewLocal(u32(), "")
	fn.NewBlock()
	fn.Emit(0, &mir.Assign{Dst: mir.LocalPlace(_1), Src: mir.Use(mir.LocalPlace(src))})
	fn.Emit(0, &mir.Assign{Dst: mir.Return(), Src: mir.Use(mir.LocalPlace(_1))})
	fn.Terminate(0, &mir.Return{})

	changed := optimize.PropagateSingleAssignments(hir.NewFixedResolve(), fn)
	require.True(t, changed)
	require.Len(t, fn.Blocks[0].Statements, 1)

	a := fn.Blocks[0].Statements[0].(*mir.Assign)
	assert.True(t, a.Dst.Equal(mir.Return()))
	root, simple := a.Src.LValue.Root, a.Src.LValue.Root.Kind == mir.RootLocal
	assert.True(t, simple)
	assert.Equal(t, src, root.Index)
}

// A Call writing into a temporary whose only successor statement is a
// plain forwarding Use should retarget the call's result directly.
func TestPropagateSingleAssignmentsRetargetsCallResult(t *testing.T) {
	fn := mir.NewFunction(path("call_retarget"), nil, u32())
	tmp := fn.NewLocal(u32(), "")
	dst := fn.NewLocal(u32(), "")
	fn.NewBlock() // 0: call
	fn.NewBlock() // 1: success continuation
	fn.NewBlock() // 2: panic continuation

	fn.Terminate(0, &mir.Call{
		Target:      mir.CallTarget{Kind: mir.CallPath, Path: path("callee")},
		RetLValue:   mir.LocalPlace(tmp),
		RetTarget:   1,
		PanicTarget: 2,
	})
	fn.Emit(1, &mir.Assign{Dst: mir.LocalPlace(dst), Src: mir.Use(mir.LocalPlace(tmp))})
	fn.Terminate(1, &mir.Return{})
	fn.Terminate(2, &mir.Diverge{})

	changed := optimize.PropagateSingleAssignments(hir.NewFixedResolve(), fn)
	require.True(t, changed)

	call := fn.Blocks[0].Terminator.(*mir.Call)
	assert.True(t, call.RetLValue.Equal(mir.LocalPlace(dst)))
	assert.Empty(t, fn.Blocks[1].Statements)
}
