// Package optimize implements the MIR optimisation pipeline (spec §4.7): a
// fixed-point driver over thirteen local passes, followed by temporary
// unification, a final garbage collection, and deterministic block sort.
package optimize

import (
	"fmt"

	"github.com/vellum-lang/vellum/internal/hir"
	"github.com/vellum-lang/vellum/internal/mir"
)

// maxRounds bounds the fixed-point loop; exceeding it is a compiler bug
// (spec §4.7: "exceeding is a bug"), not a tuning knob to raise silently.
const maxRounds = 100

// pass is one of the thirteen numbered optimisations. It reports whether
// it changed fn.
type pass func(resolve hir.StaticTraitResolve, fn *mir.Function) bool

var passes = []pass{
	BlockSimplify,
	ConstPropagate,
	DeTemporary,
	SplitAggregates,
	PropagateKnownValues,
	PropagateSingleAssignments,
	CommonStatements,
	UnifyBlocks,
	DeadDropFlags,
	DeadAssignments,
	NoopRemoval,
	Inlining,
	GCPartial,
}

// Run iterates every pass to a fixed point, then unifies temporaries,
// garbage-collects, and sorts blocks (spec §4.7).
func Run(resolve hir.StaticTraitResolve, fn *mir.Function) error {
	round := 0
	for {
		changed := false
		for _, p := range passes {
			if p(resolve, fn) {
				changed = true
			}
		}
		GCPartial(resolve, fn)
		round++
		if !changed {
			break
		}
		if round >= maxRounds {
			return fmt.Errorf("optimize: %s did not reach a fixed point within %d rounds", fn.Path, maxRounds)
		}
	}
	UnifyTemporaries(resolve, fn)
	GarbageCollect(fn)
	SortBlocks(fn)
	return mir.Validate(resolve, fn)
}

// RunMinimal runs only BlockSimplify and Inlining, then GC + sort (spec
// §4.7's "minimal variant", for pre-codegen of already-optimised code).
func RunMinimal(resolve hir.StaticTraitResolve, fn *mir.Function) error {
	BlockSimplify(resolve, fn)
	Inlining(resolve, fn)
	GarbageCollect(fn)
	SortBlocks(fn)
	return mir.Validate(resolve, fn)
}
