// Package lifetime implements borrow/lifetime inference (spec §4.5): a
// diagnostic-only pass that assigns inference variables to every
// UNKNOWN-tagged lifetime and records assignment constraints between
// them. It never changes the shape of MIR statements or terminators, and
// it emits no diagnostics itself: it returns the recorded constraints.
package lifetime

import (
	"github.com/vellum-lang/vellum/internal/hir"
	"github.com/vellum-lang/vellum/internal/mir"
)

// Var is one lifetime inference variable: srcs/dsts record which other
// variables it was assigned from/to, the edges the constraint solver
// would walk to report conflicting regions.
type Var struct {
	Tag  hir.Lifetime
	Srcs []hir.Lifetime
	Dsts []hir.Lifetime
}

// Constraints is the result of running Infer over one function: every
// inference variable allocated, plus the assign-edges recorded between
// them (spec §4.5).
type Constraints struct {
	Vars map[hir.Lifetime]*Var
	next hir.Lifetime
}

func newConstraints() *Constraints {
	return &Constraints{Vars: make(map[hir.Lifetime]*Var), next: hir.FirstInferenceVar}
}

func (c *Constraints) fresh() hir.Lifetime {
	tag := c.next
	c.next++
	c.Vars[tag] = &Var{Tag: tag}
	return tag
}

func (c *Constraints) equate(a, b hir.Lifetime) {
	if a == hir.LifetimeUnknown || b == hir.LifetimeUnknown {
		return
	}
	va, ok := c.Vars[a]
	if !ok {
		va = &Var{Tag: a}
		c.Vars[a] = va
	}
	vb, ok := c.Vars[b]
	if !ok {
		vb = &Var{Tag: b}
		c.Vars[b] = vb
	}
	va.Dsts = append(va.Dsts, b)
	vb.Srcs = append(vb.Srcs, a)
}

// AssignFreshVars walks every local's type in fn and allocates a fresh
// inference variable for each UNKNOWN-tagged lifetime found (spec §4.5's
// preparatory step), replacing each local's type with a rebuilt TypeRef
// that carries the fresh variables; the original TypeRefs are not mutated.
func AssignFreshVars(fn *mir.Function) *Constraints {
	c := newConstraints()
	for i, l := range fn.Locals {
		fn.Locals[i].Type = assignFreshInType(c, l.Type)
	}
	return c
}

func assignFreshInType(c *Constraints, t *hir.TypeRef) *hir.TypeRef {
	if t == nil {
		return nil
	}
	switch t.Kind() {
	case hir.KindBorrow:
		inner := assignFreshInType(c, t.Inner())
		lt := t.Lifetime()
		if lt == hir.LifetimeUnknown {
			lt = c.fresh()
		}
		return hir.Borrow(t.PointerMode(), lt, inner)
	case hir.KindTraitObject:
		lt := t.ObjectLifetime()
		if lt == hir.LifetimeUnknown {
			lt = c.fresh()
		}
		return hir.TraitObject(lt, t.Traits()...)
	case hir.KindArray:
		return hir.Array(assignFreshInType(c, t.Inner()), t.ArraySize())
	case hir.KindSlice:
		return hir.Slice(assignFreshInType(c, t.Inner()))
	case hir.KindTuple:
		elems := make([]*hir.TypeRef, len(t.Elems()))
		for i, e := range t.Elems() {
			elems[i] = assignFreshInType(c, e)
		}
		return hir.Tuple(elems...)
	case hir.KindPointer:
		return hir.Pointer(t.PointerMode(), assignFreshInType(c, t.Inner()))
	default:
		return t
	}
}

// Infer runs the full borrow/lifetime inference pass over fn (spec §4.5):
// allocate fresh variables, then walk every statement recording
// assign-constraints between lifetimes that flow together. Terminators are
// walked too, but a Call records no constraints (see walkTerminator).
// This pass never mutates fn's statement/terminator shape, only (via
// AssignFreshVars) the placeholder lifetimes inside its locals' types.
func Infer(resolve hir.StaticTraitResolve, fn *mir.Function) *Constraints {
	c := AssignFreshVars(fn)
	// Dominator-tree preorder visits every block after the ones that can
	// reach it along every path, so a borrow's fresh variable (allocated
	// the first time its defining block is walked) is always equated
	// against, never ahead of, the constraints flowing from its dominators.
	for _, idx := range mir.DominancePreorder(fn) {
		bb := fn.Blocks[idx]
		for _, s := range bb.Statements {
			walkStatement(c, fn, s)
		}
		walkTerminator(c, fn, bb.Terminator)
	}
	return c
}

func walkStatement(c *Constraints, fn *mir.Function, s mir.Statement) {
	a, ok := s.(*mir.Assign)
	if !ok {
		return
	}
	dstTy := localType(fn, a.Dst)
	switch a.Src.Kind {
	case mir.RVUse:
		srcTy := localType(fn, a.Src.LValue)
		equateTypes(c, dstTy, srcTy)
	case mir.RVBorrow:
		// A fresh lifetime is allocated per borrow site and assigned into
		// dst's outer lifetime; the borrowed lvalue itself is not recorded.
		fresh := c.fresh()
		if dstTy != nil && dstTy.Kind() == hir.KindBorrow {
			c.equate(fresh, dstTy.Lifetime())
		}
	case mir.RVTuple, mir.RVArray, mir.RVStruct, mir.RVEnumVariant:
		if dstTy == nil {
			return
		}
		fields := dstTy.Elems()
		for i, p := range a.Src.Params {
			if p.Kind != mir.ParamLValue || i >= len(fields) {
				continue
			}
			equateTypes(c, fields[i], localType(fn, p.LValue))
		}
	case mir.RVCast:
		srcTy := localType(fn, a.Src.LValue)
		if srcTy != nil && dstTy != nil && srcTy.Kind() == hir.KindBorrow && dstTy.Kind() == hir.KindBorrow {
			equateTypes(c, dstTy, srcTy)
		}
	}
}

// walkTerminator records no constraints: a Call's argument and return
// types are looked up but not paired with the callee's signature.
func walkTerminator(c *Constraints, fn *mir.Function, t mir.Terminator) {
	call, ok := t.(*mir.Call)
	if !ok {
		return
	}
	retTy := localType(fn, call.RetLValue)
	_ = retTy
	for _, a := range call.Args {
		if a.Kind == mir.ParamLValue {
			_ = localType(fn, a.LValue)
		}
	}
}

// equateTypes recurses into paired types, equating lifetimes structurally
// (borrow<->borrow, trait-object<->trait-object, tuple element-wise), per
// spec §4.5.
func equateTypes(c *Constraints, a, b *hir.TypeRef) {
	if a == nil || b == nil || a.Kind() != b.Kind() {
		return
	}
	switch a.Kind() {
	case hir.KindBorrow:
		c.equate(a.Lifetime(), b.Lifetime())
		equateTypes(c, a.Inner(), b.Inner())
	case hir.KindTraitObject:
		c.equate(a.ObjectLifetime(), b.ObjectLifetime())
	case hir.KindTuple:
		ae, be := a.Elems(), b.Elems()
		for i := 0; i < len(ae) && i < len(be); i++ {
			equateTypes(c, ae[i], be[i])
		}
	case hir.KindArray, hir.KindSlice, hir.KindPointer:
		equateTypes(c, a.Inner(), b.Inner())
	case hir.KindFunctionPointer:
		as, bs := a.FnSig(), b.FnSig()
		if as == nil || bs == nil {
			return
		}
		for i := 0; i < len(as.Params) && i < len(bs.Params); i++ {
			equateTypes(c, as.Params[i], bs.Params[i])
		}
		equateTypes(c, as.Ret, bs.Ret)
	}
}

func localType(fn *mir.Function, l mir.LValue) *hir.TypeRef {
	switch l.Root.Kind {
	case mir.RootReturn:
		return typeThroughWrappers(fn.RetType, l.Wrappers)
	default:
		if l.Root.Index < len(fn.Locals) {
			return typeThroughWrappers(fn.Locals[l.Root.Index].Type, l.Wrappers)
		}
		return nil
	}
}

func typeThroughWrappers(t *hir.TypeRef, wrappers []mir.Wrapper) *hir.TypeRef {
	cur := t
	for _, w := range wrappers {
		if cur == nil {
			return nil
		}
		switch w.Kind {
		case mir.WrapDeref:
			cur = cur.Inner()
		case mir.WrapField:
			if cur.Kind() == hir.KindTuple && w.FieldIndex < len(cur.Elems()) {
				cur = cur.Elems()[w.FieldIndex]
			} else {
				return nil
			}
		default:
			return nil
		}
	}
	return cur
}
