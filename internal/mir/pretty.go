package mir

import (
	"fmt"
	"io"
	"strings"
)

// Dump renders fn as deterministic text to w: a signature line, the local/
// drop-flag tables, then one block per textual section with one statement
// per line (spec §4.8's `dump(writer, mir, indent)` contract). indent is
// prepended to every line and is entirely under caller control; Dump
// mutates nothing.
func Dump(w io.Writer, fn *Function, indent string) {
	fmt.Fprintf(w, "%sfn %s(%d args) -> %s {\n", indent, fn.Path, fn.ArgCount, fn.RetType)

	inner := indent + "    "
	for i, l := range fn.Locals {
		name := l.Name
		if name == "" {
			name = "_"
		}
		fmt.Fprintf(w, "%slet _%d: %s; // %s\n", inner, i, l.Type, name)
	}
	for i, f := range fn.DropFlags {
		fmt.Fprintf(w, "%sdrop-flag %d = %t;\n", inner, i, f.Initial)
	}

	for i, bb := range fn.Blocks {
		fmt.Fprintf(w, "%sbb%d: {\n", inner, i)
		stmtIndent := inner + "    "
		for _, s := range bb.Statements {
			fmt.Fprintf(w, "%s%s;\n", stmtIndent, s)
		}
		fmt.Fprintf(w, "%s%s;\n", stmtIndent, bb.Terminator)
		fmt.Fprintf(w, "%s}\n", inner)
	}

	fmt.Fprintf(w, "%s}\n", indent)
}

// DumpString renders fn the same way Dump does, returning the result as a
// string for callers (tests, log lines) that want the text directly rather
// than an io.Writer to write through.
func DumpString(fn *Function, indent string) string {
	var b strings.Builder
	Dump(&b, fn, indent)
	return b.String()
}
