package optimize

import (
	"github.com/vellum-lang/vellum/internal/hir"
	"github.com/vellum-lang/vellum/internal/mir"
)

// DeadDropFlags removes SetDropFlag statements whose flag is never
// consulted by a Drop or another SetDropFlag's OtherIdx (spec §4.7 step 9).
func DeadDropFlags(_ hir.StaticTraitResolve, fn *mir.Function) bool {
	consulted := make(map[int]bool)
	for _, bb := range fn.Blocks {
		for _, s := range bb.Statements {
			switch st := s.(type) {
			case *mir.Drop:
				if st.FlagIdx >= 0 {
					consulted[st.FlagIdx] = true
				}
			case *mir.SetDropFlag:
				if st.OtherIdx >= 0 {
					consulted[st.OtherIdx] = true
				}
			}
		}
	}
	changed := false
	for _, bb := range fn.Blocks {
		out := bb.Statements[:0]
		for _, s := range bb.Statements {
			if sf, ok := s.(*mir.SetDropFlag); ok && !consulted[sf.FlagIdx] {
				changed = true
				continue
			}
			out = append(out, s)
		}
		bb.Statements = out
	}
	return changed
}
