package optimize

import (
	"reflect"

	"github.com/vellum-lang/vellum/internal/hir"
	"github.com/vellum-lang/vellum/internal/mir"
)

// CommonStatements hoists a statement into block B's front when every
// predecessor of B ends its statement list with that exact statement
// (spec §4.7 step 7).
func CommonStatements(_ hir.StaticTraitResolve, fn *mir.Function) bool {
	preds := predecessors(fn)
	changed := false
	for b, ps := range preds {
		if len(ps) < 2 {
			continue
		}
		for {
			var last mir.Statement
			ok := true
			for _, p := range ps {
				bb := fn.Blocks[p]
				if len(bb.Statements) == 0 {
					ok = false
					break
				}
				s := bb.Statements[len(bb.Statements)-1]
				if last == nil {
					last = s
				} else if !reflect.DeepEqual(last, s) {
					ok = false
					break
				}
			}
			if !ok || last == nil {
				break
			}
			for _, p := range ps {
				bb := fn.Blocks[p]
				bb.Statements = bb.Statements[:len(bb.Statements)-1]
			}
			target := fn.Blocks[b]
			target.Statements = append([]mir.Statement{last}, target.Statements...)
			changed = true
		}
	}
	return changed
}

func predecessors(fn *mir.Function) map[int][]int {
	out := make(map[int][]int)
	for i, bb := range fn.Blocks {
		for _, s := range mir.Successors(bb.Terminator) {
			out[s] = append(out[s], i)
		}
	}
	return out
}
