package mir

import (
	"sort"

	"github.com/vellum-lang/vellum/internal/diag"
)

// Reporter collects diagnostics so that all problems in a function can be
// reported together. Validate and ValidateValState do not use it: each
// returns a *ValidationError carrying the first Bug diagnostic it finds
// (spec §7: "no error is recovered locally").
type Reporter struct {
	diags []diag.Diagnostic
}

// NewReporter returns an empty Reporter.
func NewReporter() *Reporter { return &Reporter{} }

func (r *Reporter) report(d diag.Diagnostic) { r.diags = append(r.diags, d) }

// Error records a user-facing error.
func (r *Reporter) Error(span diag.Span, code diag.Code, format string, args ...any) {
	r.report(diag.Error(span, code, format, args...))
}

// Bug records an internal invariant violation.
func (r *Reporter) Bug(span diag.Span, format string, args ...any) {
	r.report(diag.Bug(span, format, args...))
}

// Diagnostics returns all collected diagnostics in span order.
func (r *Reporter) Diagnostics() []diag.Diagnostic {
	out := append([]diag.Diagnostic(nil), r.diags...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Span.Line != out[j].Span.Line {
			return out[i].Span.Line < out[j].Span.Line
		}
		return out[i].Span.Column < out[j].Span.Column
	})
	return out
}

// HasErrors reports whether any diagnostic was recorded.
func (r *Reporter) HasErrors() bool { return len(r.diags) > 0 }

// ValidationError is a structural/value-state validation failure: these
// are always compiler bugs (spec §7) and abort compilation for the
// offending function rather than being collected.
type ValidationError struct {
	Diagnostic diag.Diagnostic
}

func (e *ValidationError) Error() string { return e.Diagnostic.Message }

func bugf(span diag.Span, format string, args ...any) error {
	return &ValidationError{Diagnostic: diag.Bug(span, format, args...)}
}
