package mir

import "fmt"

// DropKind distinguishes a shallow drop (top-level value only, used when a
// nested field has already been moved out) from a deep (recursive) drop.
type DropKind int

const (
	DropShallow DropKind = iota
	DropDeep
)

// Statement is a non-terminating MIR operation (spec §3.7).
type Statement interface {
	stmtNode()
}

// Assign is `dst = src`.
type Assign struct {
	Dst LValue
	Src RValue
}

func (*Assign) stmtNode() {}

// Drop destroys the value at LValue. FlagIdx, if >= 0, names the drop flag
// guarding whether the drop actually runs (conditional drop for a
// MaybeMoved local, spec §4.2.1).
type Drop struct {
	Kind    DropKind
	LValue  LValue
	FlagIdx int // -1 if unconditional
}

func (*Drop) stmtNode() {}

// SetDropFlag sets flag FlagIdx to NewValue, or (if OtherIdx >= 0) to
// `NewValue XOR flags[OtherIdx]` (spec §3.7).
type SetDropFlag struct {
	FlagIdx  int
	NewValue bool
	OtherIdx int // -1 if absent
}

func (*SetDropFlag) stmtNode() {}

// AsmRegister names one inline-asm operand's storage.
type AsmRegister struct {
	Name    string // explicit register name, or "" for a class constraint
	Class   string
	LValue  LValue
	IsInput bool
}

// Asm is the legacy inline-asm statement: a template string plus
// input/output/clobber lists.
type Asm struct {
	Template string
	Inputs   []AsmRegister
	Outputs  []AsmRegister
	Clobbers []string
}

func (*Asm) stmtNode() {}

// AsmV2Options is the options bitmask carried by Asm2 (spec §3.7).
type AsmV2Options uint32

const (
	AsmOptNoMem AsmV2Options = 1 << iota
	AsmOptReadOnly
	AsmOptPreservesFlags
	AsmOptNoReturn
	AsmOptPure
)

// AsmV2Param is one typed register/const/sym operand of an Asm2 statement.
type AsmV2Param struct {
	IsConst bool
	IsSym   bool
	LValue  LValue
	Reg     string
}

// Asm2 is the modernised inline-asm statement: template lines plus typed
// register/const/sym parameters and an options bitmask.
type Asm2 struct {
	Lines   []string
	Params  []AsmV2Param
	Options AsmV2Options
}

func (*Asm2) stmtNode() {}

// ScopeEnd is informational: it records which locals a lexical scope
// closed over, for diagnostics and the dumper; it has no runtime effect
// and BlockSimplify (§4.7 step 1) may merge adjacent ScopeEnds.
type ScopeEnd struct {
	Locals []int
}

func (*ScopeEnd) stmtNode() {}

func (s *Assign) String() string      { return fmt.Sprintf("%s = %s", s.Dst, s.Src) }
func (s *Drop) String() string {
	kind := "SHALLOW"
	if s.Kind == DropDeep {
		kind = "DEEP"
	}
	if s.FlagIdx >= 0 {
		return fmt.Sprintf("drop(%s) %s [flag %d]", kind, s.LValue, s.FlagIdx)
	}
	return fmt.Sprintf("drop(%s) %s", kind, s.LValue)
}
func (s *SetDropFlag) String() string {
	if s.OtherIdx >= 0 {
		return fmt.Sprintf("flag%d = %t ^ flag%d", s.FlagIdx, s.NewValue, s.OtherIdx)
	}
	return fmt.Sprintf("flag%d = %t", s.FlagIdx, s.NewValue)
}
func (s *ScopeEnd) String() string { return fmt.Sprintf("ScopeEnd(%v)", s.Locals) }
func (s *Asm) String() string      { return "asm!(" + s.Template + ")" }
func (s *Asm2) String() string     { return "asm2!(...)" }
