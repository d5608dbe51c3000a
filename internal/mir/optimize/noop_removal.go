package optimize

import (
	"github.com/vellum-lang/vellum/internal/hir"
	"github.com/vellum-lang/vellum/internal/mir"
)

// NoopRemoval deletes `x = Use(x)` and `x = &*x` statements (spec §4.7
// step 11).
func NoopRemoval(_ hir.StaticTraitResolve, fn *mir.Function) bool {
	changed := false
	for _, bb := range fn.Blocks {
		out := bb.Statements[:0]
		for _, s := range bb.Statements {
			if a, ok := s.(*mir.Assign); ok && isNoop(a) {
				changed = true
				continue
			}
			out = append(out, s)
		}
		bb.Statements = out
	}
	return changed
}

func isNoop(a *mir.Assign) bool {
	switch a.Src.Kind {
	case mir.RVUse:
		return a.Dst.Equal(a.Src.LValue)
	case mir.RVBorrow:
		if a.Src.BorrowKind != mir.BorrowShared {
			return false
		}
		deref := a.Src.LValue
		if len(deref.Wrappers) == 0 || deref.Wrappers[len(deref.Wrappers)-1].Kind != mir.WrapDeref {
			return false
		}
		base := mir.LValue{Root: deref.Root, Wrappers: deref.Wrappers[:len(deref.Wrappers)-1]}
		return a.Dst.Equal(base)
	default:
		return false
	}
}
