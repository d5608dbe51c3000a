package optimize

import (
	"reflect"

	"github.com/vellum-lang/vellum/internal/hir"
	"github.com/vellum-lang/vellum/internal/mir"
)

// UnifyBlocks merges structurally-identical blocks (same statements, same
// terminator shape and targets) and rewrites every reference to the
// duplicate onto the surviving block (spec §4.7 step 8).
func UnifyBlocks(_ hir.StaticTraitResolve, fn *mir.Function) bool {
	changed := false
	canon := map[int]int{} // dup block index -> surviving block index
	for i := 0; i < len(fn.Blocks); i++ {
		if _, dup := canon[i]; dup {
			continue
		}
		for j := i + 1; j < len(fn.Blocks); j++ {
			if _, dup := canon[j]; dup {
				continue
			}
			if blocksEqual(fn.Blocks[i], fn.Blocks[j]) {
				canon[j] = i
				changed = true
			}
		}
	}
	if !changed {
		return false
	}
	resolve := func(b int) int {
		for {
			t, ok := canon[b]
			if !ok {
				return b
			}
			b = t
		}
	}
	for _, bb := range fn.Blocks {
		rewriteTargets(bb.Terminator, resolve)
	}
	return true
}

func blocksEqual(a, b *mir.BasicBlock) bool {
	if len(a.Statements) != len(b.Statements) {
		return false
	}
	for i := range a.Statements {
		if !reflect.DeepEqual(a.Statements[i], b.Statements[i]) {
			return false
		}
	}
	return reflect.DeepEqual(a.Terminator, b.Terminator)
}
