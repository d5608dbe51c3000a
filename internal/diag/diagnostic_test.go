package diag_test

import (
	"testing"

	"github.com/vellum-lang/vellum/internal/diag"
)

func TestErrorBuildsUserFacingDiagnostic(t *testing.T) {
	span := diag.Span{Filename: "lib.vl", Line: 4, Column: 9, Start: 40, End: 47}
	d := diag.Error(span, diag.CodeMIRBorrowConflict, "cannot borrow %q as mutable more than once", "x")

	if d.Stage != diag.StageMIR {
		t.Fatalf("expected stage %q, got %q", diag.StageMIR, d.Stage)
	}
	if d.Domain != diag.DomainError {
		t.Fatalf("expected domain %q, got %q", diag.DomainError, d.Domain)
	}
	if d.Severity != diag.SeverityError {
		t.Fatalf("expected severity %q, got %q", diag.SeverityError, d.Severity)
	}
	if d.Code != diag.CodeMIRBorrowConflict {
		t.Fatalf("expected code %q, got %q", diag.CodeMIRBorrowConflict, d.Code)
	}
	if d.Span != span {
		t.Fatalf("expected span %+v, got %+v", span, d.Span)
	}
	want := `cannot borrow "x" as mutable more than once`
	if d.Message != want {
		t.Fatalf("expected message %q, got %q", want, d.Message)
	}
}

func TestBugBuildsInternalInvariantDiagnostic(t *testing.T) {
	span := diag.Span{Line: 1}
	d := diag.Bug(span, "use of non-valid local _%d", 3)

	if d.Domain != diag.DomainBug {
		t.Fatalf("expected domain %q, got %q", diag.DomainBug, d.Domain)
	}
	if d.Code != diag.CodeMIRBug {
		t.Fatalf("expected code %q, got %q", diag.CodeMIRBug, d.Code)
	}
	if d.Message != "use of non-valid local _3" {
		t.Fatalf("unexpected message %q", d.Message)
	}
}
