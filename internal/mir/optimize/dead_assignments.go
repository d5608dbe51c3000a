package optimize

import (
	"github.com/vellum-lang/vellum/internal/hir"
	"github.com/vellum-lang/vellum/internal/mir"
)

// DeadAssignments removes assignments to locals that are never read,
// anywhere in the function, and are not the return slot (spec §4.7 step
// 10). An assignment whose RValue has side effects beyond its own value
// (none of this repository's RValue constructors do) would need to be
// preserved regardless; none of the fifteen do.
func DeadAssignments(_ hir.StaticTraitResolve, fn *mir.Function) bool {
	reads := make(map[int]bool)
	markRead := func(l mir.LValue) {
		if l.Root.Kind == mir.RootLocal {
			reads[l.Root.Index] = true
		}
		for _, w := range l.Wrappers {
			if w.Kind == mir.WrapIndex {
				reads[w.IndexLocal] = true
			}
		}
	}
	for _, bb := range fn.Blocks {
		for _, s := range bb.Statements {
			if a, ok := s.(*mir.Assign); ok {
				for _, lv := range rvalueReads(a.Src) {
					markRead(lv)
				}
				// Any wrapper beyond a bare local also reads the root
				// (e.g. a Field write still reads the struct being updated).
				if len(a.Dst.Wrappers) > 0 {
					markRead(a.Dst)
				}
			}
			if dr, ok := s.(*mir.Drop); ok {
				markRead(dr.LValue)
			}
		}
		switch t := bb.Terminator.(type) {
		case *mir.If:
			markRead(t.Cond)
		case *mir.Switch:
			markRead(t.Value)
		case *mir.SwitchValue:
			markRead(t.Value)
		case *mir.Call:
			for _, a := range t.Args {
				if a.Kind != mir.ParamConstant {
					markRead(a.LValue)
				}
			}
			if t.Target.Kind == mir.CallValue {
				markRead(t.Target.LValue)
			}
		}
	}

	changed := false
	for _, bb := range fn.Blocks {
		out := bb.Statements[:0]
		for _, s := range bb.Statements {
			a, ok := s.(*mir.Assign)
			if ok {
				root, simple := simpleLocal(a.Dst)
				if simple && root != mir.ReturnLocal && !reads[root] {
					changed = true
					continue
				}
			}
			out = append(out, s)
		}
		bb.Statements = out
	}
	return changed
}
