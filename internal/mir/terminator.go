package mir

import (
	"fmt"
	"strings"

	"github.com/vellum-lang/vellum/internal/hir"
)

// Terminator is the control transfer at the end of a block (spec §3.8).
type Terminator interface {
	terminatorNode()
}

// Incomplete marks a block lowering hasn't finished yet; MIR_Validate
// rejects any block still carrying this after lowering completes.
type Incomplete struct{}

func (*Incomplete) terminatorNode() {}

// Return hands control back to the caller through the return slot.
type Return struct{}

func (*Return) terminatorNode() {}

// Diverge unwinds the current function (panic propagation / abort path).
type Diverge struct{}

func (*Diverge) terminatorNode() {}

// Goto is an unconditional jump.
type Goto struct {
	Target int // block index
}

func (*Goto) terminatorNode() {}

// Panic jumps to the function's panic/cleanup block.
type Panic struct {
	Target int
}

func (*Panic) terminatorNode() {}

// If branches on a bool lvalue.
type If struct {
	Cond        LValue
	TrueTarget  int
	FalseTarget int
}

func (*If) terminatorNode() {}

// Switch dispatches on an enum lvalue's discriminant: Targets[i] is the
// block for variant index i.
type Switch struct {
	Value   LValue
	Targets []int
}

func (*Switch) terminatorNode() {}

// SwitchValueKind distinguishes SwitchValue's four comparable-value shapes.
type SwitchValueKind int

const (
	SwitchUint SwitchValueKind = iota
	SwitchInt
	SwitchString
	SwitchBytes
)

// SwitchValue dispatches on an arbitrary scalar value against a sorted
// table of candidate values, falling to DefTarget when none match (spec
// §3.8; with zero Targets it falls directly to DefTarget per spec §8).
type SwitchValue struct {
	Value     LValue
	Kind      SwitchValueKind
	UintVals  []uint64
	IntVals   []int64
	StrVals   []string
	ByteVals  [][]byte
	Targets   []int
	DefTarget int
}

func (*SwitchValue) terminatorNode() {}

// CallTargetKind distinguishes Call's three callee shapes.
type CallTargetKind int

const (
	CallValue CallTargetKind = iota
	CallPath
	CallIntrinsic
)

// CallTarget is the callee of a Call terminator.
type CallTarget struct {
	Kind          CallTargetKind
	LValue        LValue   // CallValue
	Path          hir.Path // CallPath
	IntrinsicName string   // CallIntrinsic
	IntrinsicArgs []Param  // CallIntrinsic: non-value type/const params
}

// Call performs a function call and is a terminator because it must name
// both the success and panic continuation blocks (spec §3.8).
type Call struct {
	Target    CallTarget
	Args      []Param
	RetLValue LValue
	RetTarget int
	PanicTarget int
}

func (*Call) terminatorNode() {}

func (t *Incomplete) String() string { return "INCOMPLETE" }
func (t *Return) String() string     { return "return" }
func (t *Diverge) String() string    { return "diverge" }
func (t *Goto) String() string       { return fmt.Sprintf("goto bb%d", t.Target) }
func (t *Panic) String() string      { return fmt.Sprintf("panic bb%d", t.Target) }
func (t *If) String() string {
	return fmt.Sprintf("if %s -> bb%d else bb%d", t.Cond, t.TrueTarget, t.FalseTarget)
}
func (t *Switch) String() string {
	parts := make([]string, len(t.Targets))
	for i, tg := range t.Targets {
		parts[i] = fmt.Sprintf("%d: bb%d", i, tg)
	}
	return fmt.Sprintf("switch %s [%s]", t.Value, strings.Join(parts, ", "))
}
func (t *SwitchValue) String() string {
	return fmt.Sprintf("switch-value %s [...] default bb%d", t.Value, t.DefTarget)
}
func (t *Call) String() string {
	return fmt.Sprintf("%s = call %s(%s) -> bb%d unwind bb%d", t.RetLValue, t.Target, joinParams(t.Args), t.RetTarget, t.PanicTarget)
}

func (ct CallTarget) String() string {
	switch ct.Kind {
	case CallValue:
		return ct.LValue.String()
	case CallPath:
		return ct.Path.String()
	case CallIntrinsic:
		return "intrinsic:" + ct.IntrinsicName
	default:
		return "?callee"
	}
}
