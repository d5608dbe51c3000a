package diag

import "fmt"

func sprintf(format string, args ...any) string {
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}

// Stage identifies which compiler phase produced the diagnostic.
type Stage string

const (
	StageMIR Stage = "mir"
)

// Domain distinguishes a user-facing error from an internal invariant
// violation, so post-mortem tooling can classify failures (spec §7: "two
// error domains"). Every MIR-stage diagnostic carries one.
type Domain string

const (
	DomainError Domain = "error" // e.g. a borrow conflict: tied to user source
	DomainBug   Domain = "bug"   // an invariant violation in the compiler itself
)

// Severity captures how impactful the diagnostic is.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityNote    Severity = "note"
)

// Code is a stable identifier for a diagnostic.
type Code string

const (
	CodeMIRBug             Code = "MIR_BUG"
	CodeMIRBorrowConflict  Code = "MIR_BORROW_CONFLICT"
	CodeMIRInlineRecursion Code = "MIR_INLINE_RECURSION"
)

// Span represents a location in source code.
type Span struct {
	Filename string
	Line     int
	Column   int
	Start    int
	End      int
}

// IsValid reports whether span names a real source location.
func (s Span) IsValid() bool { return s.Filename != "" || s.Line != 0 || s.Start != 0 || s.End != 0 }

// String renders span as "file:line:column".
func (s Span) String() string {
	if s.Filename == "" {
		return fmt.Sprintf("%d:%d", s.Line, s.Column)
	}
	return fmt.Sprintf("%s:%d:%d", s.Filename, s.Line, s.Column)
}

// Diagnostic is a compiler diagnostic surfaced to end-users.
type Diagnostic struct {
	Stage    Stage
	Severity Severity
	Code     Code
	Message  string
	Span     Span
	Domain   Domain // zero value ("") for stages that predate the domain split
}

// Error builds a user-facing MIR diagnostic tied to a span (spec §7).
func Error(span Span, code Code, format string, args ...any) Diagnostic {
	return Diagnostic{
		Stage: StageMIR, Severity: SeverityError, Domain: DomainError,
		Code: code, Span: span, Message: sprintf(format, args...),
	}
}

// Bug builds an internal-invariant-violation diagnostic (spec §7).
func Bug(span Span, format string, args ...any) Diagnostic {
	return Diagnostic{
		Stage: StageMIR, Severity: SeverityError, Domain: DomainBug,
		Code: CodeMIRBug, Span: span, Message: sprintf(format, args...),
	}
}
