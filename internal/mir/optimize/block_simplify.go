package optimize

import (
	"github.com/vellum-lang/vellum/internal/hir"
	"github.com/vellum-lang/vellum/internal/mir"
)

// BlockSimplify folds a block that contains nothing but a Goto into its
// predecessors (every terminator/jump that named it is rewritten to jump
// straight to its target), and merges adjacent ScopeEnd statements (spec
// §4.7 step 1).
func BlockSimplify(_ hir.StaticTraitResolve, fn *mir.Function) bool {
	changed := false

	redirect := make(map[int]int)
	for i, bb := range fn.Blocks {
		if len(bb.Statements) == 0 {
			if g, ok := bb.Terminator.(*mir.Goto); ok && g.Target != i {
				redirect[i] = g.Target
			}
		}
	}
	// Follow chains of empty-goto blocks to their final target.
	resolve := func(i int) int {
		seen := map[int]bool{}
		for {
			t, ok := redirect[i]
			if !ok || seen[t] {
				return i
			}
			seen[i] = true
			i = t
		}
	}
	if len(redirect) > 0 {
		for _, bb := range fn.Blocks {
			rewriteTargets(bb.Terminator, func(t int) int {
				r := resolve(t)
				return r
			})
		}
		for from, to := range redirect {
			if resolve(from) != from {
				changed = true
			}
			_ = to
		}
	}

	for _, bb := range fn.Blocks {
		out := bb.Statements[:0]
		for _, s := range bb.Statements {
			if se, ok := s.(*mir.ScopeEnd); ok && len(out) > 0 {
				if prev, ok := out[len(out)-1].(*mir.ScopeEnd); ok {
					prev.Locals = append(prev.Locals, se.Locals...)
					changed = true
					continue
				}
			}
			out = append(out, s)
		}
		if len(out) != len(bb.Statements) {
			changed = true
		}
		bb.Statements = out
	}
	return changed
}

// rewriteTargets applies f to every block-index field a terminator carries.
func rewriteTargets(t mir.Terminator, f func(int) int) {
	switch term := t.(type) {
	case *mir.Goto:
		term.Target = f(term.Target)
	case *mir.Panic:
		term.Target = f(term.Target)
	case *mir.If:
		term.TrueTarget = f(term.TrueTarget)
		term.FalseTarget = f(term.FalseTarget)
	case *mir.Switch:
		for i, tgt := range term.Targets {
			term.Targets[i] = f(tgt)
		}
	case *mir.SwitchValue:
		for i, tgt := range term.Targets {
			term.Targets[i] = f(tgt)
		}
		term.DefTarget = f(term.DefTarget)
	case *mir.Call:
		term.RetTarget = f(term.RetTarget)
		term.PanicTarget = f(term.PanicTarget)
	}
}
