package hir

import "strings"

// Path names an item: a crate-qualified sequence of segments, each
// optionally parameterised by generic arguments (spec §3.1's "user path").
type Path struct {
	Crate    string
	Segments []string
	Params   PathParams
}

// PathParams is the generic argument list attached to the final segment of
// a Path (spec §6's "monomorphisation ... substitute a generic TypeRef/
// Path/PathParams").
type PathParams struct {
	Types []*TypeRef
}

// NewPath builds a Path with no generic arguments.
func NewPath(crate string, segments ...string) Path {
	return Path{Crate: crate, Segments: append([]string(nil), segments...)}
}

// WithParams returns a copy of p with the given generic type arguments attached.
func (p Path) WithParams(types ...*TypeRef) Path {
	p.Params = PathParams{Types: types}
	return p
}

// Compare gives a total order over Paths (structural equality/ordering, per §3.1).
func (p Path) Compare(o Path) int {
	if c := strings.Compare(p.Crate, o.Crate); c != 0 {
		return c
	}
	if c := intCmp(len(p.Segments), len(o.Segments)); c != 0 {
		return c
	}
	for i := range p.Segments {
		if c := strings.Compare(p.Segments[i], o.Segments[i]); c != 0 {
			return c
		}
	}
	if c := intCmp(len(p.Params.Types), len(o.Params.Types)); c != 0 {
		return c
	}
	for i := range p.Params.Types {
		if c := p.Params.Types[i].Compare(o.Params.Types[i]); c != 0 {
			return c
		}
	}
	return 0
}

// Equal reports structural equality between two Paths.
func (p Path) Equal(o Path) bool { return p.Compare(o) == 0 }

func (p Path) String() string {
	var b strings.Builder
	if p.Crate != "" {
		b.WriteString(p.Crate)
		b.WriteString("::")
	}
	b.WriteString(strings.Join(p.Segments, "::"))
	if len(p.Params.Types) > 0 {
		b.WriteString("<")
		parts := make([]string, len(p.Params.Types))
		for i, t := range p.Params.Types {
			parts[i] = t.String()
		}
		b.WriteString(strings.Join(parts, ", "))
		b.WriteString(">")
	}
	return b.String()
}

// Name returns the last segment, the item's own name.
func (p Path) Name() string {
	if len(p.Segments) == 0 {
		return ""
	}
	return p.Segments[len(p.Segments)-1]
}
