package optimize_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vellum-lang/vellum/internal/hir"
	"github.com/vellum-lang/vellum/internal/mir"
	"github.com/vellum-lang/vellum/internal/mir/optimize"
)

func u32() *hir.TypeRef { return hir.Prim(hir.PrimU32) }

func path(name string) hir.Path { return hir.NewPath("test", name) }

// sumThenDouble builds `fn f() -> u32 { _1 = 1 + 2; _2 = _1; _2 = _2 * 2; return _2 via retval }`
// with one dead local thrown in, feeding the full fixed-point pipeline.
func sumThenDouble() *mir.Function {
	fn := mir.NewFunction(path("sum_then_double"), nil, u32())
	_1 := fn.NewLocal(u32(), "") // folds to a constant
	_2 := fn.NewLocal(u32(), "") // doubled result
	_3 := fn.NewLocal(u32(), "") // dead: written, never read
	fn.NewBlock()

	fn.Emit(0, &mir.Assign{
		Dst: mir.LocalPlace(_1),
		Src: mir.BinOpRValue(mir.ConstParam(mir.UintConst(1, u32())), mir.OpAdd, mir.ConstParam(mir.UintConst(2, u32()))),
	})
	fn.Emit(0, &mir.Assign{Dst: mir.LocalPlace(_2), Src: mir.Use(mir.LocalPlace(_1))})
	fn.Emit(0, &mir.Assign{
		Dst: mir.LocalPlace(_2),
		Src: mir.BinOpRValue(mir.UseParam(mir.LocalPlace(_2)), mir.OpMul, mir.ConstParam(mir.UintConst(2, u32()))),
	})
	fn.Emit(0, &mir.Assign{Dst: mir.LocalPlace(_3), Src: mir.Use(mir.LocalPlace(_2))})
	fn.Emit(0, &mir.Assign{Dst: mir.Return(), Src: mir.Use(mir.LocalPlace(_2))})
	fn.Terminate(0, &mir.Return{})
	return fn
}

func TestRunConvergesAndValidates(t *testing.T) {
	resolve := hir.NewFixedResolve()
	fn := sumThenDouble()

	err := optimize.Run(resolve, fn)
	require.NoError(t, err)

	err = mir.Validate(resolve, fn)
	assert.NoError(t, err, "optimized function must still validate")
}

func TestRunIsIdempotent(t *testing.T) {
	resolve := hir.NewFixedResolve()
	fn := sumThenDouble()
	require.NoError(t, optimize.Run(resolve, fn))

	before := mir.DumpString(fn, "")
	require.NoError(t, optimize.Run(resolve, fn))
	after := mir.DumpString(fn, "")

	assert.Equal(t, before, after, "a converged function must be a fixed point of a second run")
}

func TestRunMinimalConverges(t *testing.T) {
	resolve := hir.NewFixedResolve()
	optimize.WithCalleeLookup(nil)
	fn := sumThenDouble()

	err := optimize.RunMinimal(resolve, fn)
	require.NoError(t, err)
	assert.NoError(t, mir.Validate(resolve, fn))
}
