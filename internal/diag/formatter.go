package diag

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

// Formatter formats diagnostics in a Rust-style format with source code
// snippets, colored the way `error[E...]`/`-->`/underline output is in
// rustc and its imitators.
type Formatter struct {
	sourceCache map[string]string // cache of source files by filename
}

// NewFormatter creates a new diagnostic formatter.
func NewFormatter() *Formatter {
	return &Formatter{sourceCache: make(map[string]string)}
}

// LoadSource loads source code for a file (cached).
func (f *Formatter) LoadSource(filename string) (string, error) {
	if filename == "" {
		return "", nil
	}
	if src, ok := f.sourceCache[filename]; ok {
		return src, nil
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		return "", err
	}
	src := string(data)
	f.sourceCache[filename] = src
	return src, nil
}

// Format writes d to w in Rust-style format: a colored header, the
// offending source line with an underline when Span names a real
// location, and the bug/error domain tag (spec §7's "two error domains").
func (f *Formatter) Format(w io.Writer, d Diagnostic) {
	f.printHeader(w, d)
	if !d.Span.IsValid() {
		return
	}
	src, err := f.LoadSource(d.Span.Filename)
	if err != nil || src == "" {
		fmt.Fprintf(w, "  %s %s\n", dim("-->"), d.Span.String())
		return
	}
	f.printSourceSnippet(w, src, d)
}

func (f *Formatter) levelColor(sev Severity) func(...any) string {
	switch sev {
	case SeverityWarning:
		return color.New(color.FgYellow, color.Bold).SprintFunc()
	case SeverityNote:
		return color.New(color.FgBlue, color.Bold).SprintFunc()
	default:
		return color.New(color.FgRed, color.Bold).SprintFunc()
	}
}

var dim = color.New(color.Faint).SprintFunc()
var bold = color.New(color.Bold).SprintFunc()

// printHeader prints "error[CODE]: message", tagging Bug-domain
// diagnostics distinctly from user-facing ones (spec §7).
func (f *Formatter) printHeader(w io.Writer, d Diagnostic) {
	severity := string(d.Severity)
	if severity == "" {
		severity = string(SeverityError)
	}
	levelColor := f.levelColor(d.Severity)

	label := levelColor(severity)
	if d.Domain == DomainBug {
		label = levelColor(severity) + " " + dim("(internal compiler bug)")
	}

	if d.Code != "" {
		fmt.Fprintf(w, "%s[%s]: %s\n", label, d.Code, d.Message)
	} else {
		fmt.Fprintf(w, "%s: %s\n", label, d.Message)
	}
}

// printSourceSnippet prints the offending line (and one line of context on
// either side) with a caret underline spanning Start..End.
func (f *Formatter) printSourceSnippet(w io.Writer, src string, d Diagnostic) {
	lines := strings.Split(src, "\n")
	span := d.Span
	if span.Line <= 0 || span.Line > len(lines) {
		fmt.Fprintf(w, "  %s %s\n", dim("-->"), span.String())
		return
	}

	width := lineNumberWidth(span.Line)
	indent := strings.Repeat(" ", width)

	fmt.Fprintf(w, "%s %s %s:%d:%d\n", indent, dim("-->"), span.Filename, span.Line, span.Column)
	fmt.Fprintf(w, "%s %s\n", indent, dim("|"))

	if span.Line > 1 {
		fmt.Fprintf(w, "%s %s %s\n", dim(fmt.Sprintf("%*d", width, span.Line-1)), dim("|"), lines[span.Line-2])
	}

	lineContent := lines[span.Line-1]
	fmt.Fprintf(w, "%s %s %s\n", bold(fmt.Sprintf("%*d", width, span.Line)), dim("|"), lineContent)
	fmt.Fprintf(w, "%s %s %s\n", indent, dim("|"), marker(span, d.Severity))

	if span.Line < len(lines) {
		fmt.Fprintf(w, "%s %s %s\n", dim(fmt.Sprintf("%*d", width, span.Line+1)), dim("|"), lines[span.Line])
	}
}

// marker builds the "    ^^^^" underline beneath a span, colored by the
// diagnostic's severity.
func marker(span Span, sev Severity) string {
	length := span.End - span.Start
	if length <= 0 {
		length = 1
	}
	col := span.Column - 1
	if col < 0 {
		col = 0
	}
	markerColor := color.New(color.FgYellow, color.Bold).SprintFunc()
	if sev != SeverityWarning {
		markerColor = color.New(color.FgRed, color.Bold).SprintFunc()
	}
	return strings.Repeat(" ", col) + markerColor(strings.Repeat("^", length))
}

func lineNumberWidth(line int) int {
	width := len(fmt.Sprintf("%d", line))
	if width < 3 {
		width = 3
	}
	return width
}
