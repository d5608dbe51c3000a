package mir

import "github.com/vellum-lang/vellum/internal/hir"

// VarState is the drop-tracking state machine a builder maintains for
// every local and temporary during lowering (spec §4.2.1).
type VarState int

const (
	StateUninit VarState = iota
	StateInit
	StateMaybeMoved
	StateMoved
	StateDropped
)

// ScopeKind distinguishes the four scope shapes the builder's stack holds.
type ScopeKind int

const (
	ScopeVariables ScopeKind = iota
	ScopeTemporaries
	ScopeSplit
	ScopeLoop
)

// SplitArm records one arm's var-state deltas within a Split scope, to be
// merged at scope close (spec §4.2.1's merge rule).
type SplitArm struct {
	States             map[int]VarState
	AlwaysEarlyTerminated bool
}

// Scope is one entry on the builder's scope stack.
type Scope struct {
	Kind ScopeKind

	// ScopeVariables / ScopeTemporaries
	Owned []int // local indices owned by this scope, drop in reverse order on exit

	// ScopeSplit
	Arms []SplitArm

	// ScopeLoop
	Label      string
	HeadBlock  int
	NextBlock  int
}

// Builder holds all per-function lowering state (spec §4.2.1). It is
// created fresh for each function and discarded once lowering completes;
// the MIR core carries no state across functions (spec §9).
type Builder struct {
	Fn      *Function
	Resolve hir.StaticTraitResolve

	// CheckedArith selects overflow-checked lowering (BinOp(_OV) into a
	// (T,bool) temporary, branching to Diverge on overflow) for ADD/SUB/
	// MUL/DIV over wrapping BinOp (spec §4.2.2's "abort on overflow in
	// checked mode"). Off by default: wrapping arithmetic.
	CheckedArith bool

	Current int // current block index
	scopes  []Scope

	states   map[int]VarState // per-local/temporary var state
	dropFlag map[int]int      // local index -> drop flag index, for conditionally-initialised locals

	names map[string]int // innermost binding of a source name -> local index
}

// NewBuilder starts lowering fn's body into a fresh MIR function whose
// first block (BB0) is already open as Current.
func NewBuilder(path hir.Path, generics []hir.GenericParam, retType *hir.TypeRef, resolve hir.StaticTraitResolve) *Builder {
	fn := NewFunction(path, generics, retType)
	entry := fn.NewBlock()
	return &Builder{
		Fn:       fn,
		Resolve:  resolve,
		Current:  entry,
		states:   make(map[int]VarState),
		dropFlag: make(map[int]int),
		names:    make(map[string]int),
	}
}

// AddArg declares argument n with the given type and optional source name.
func (b *Builder) AddArg(ty *hir.TypeRef, name string) int {
	idx := b.Fn.NewLocal(ty, name)
	b.Fn.ArgCount++
	b.states[idx] = StateInit
	if name != "" {
		b.names[name] = idx
	}
	return idx
}

// PushScope opens a new scope of the given kind.
func (b *Builder) PushScope(kind ScopeKind) *Scope {
	b.scopes = append(b.scopes, Scope{Kind: kind})
	return &b.scopes[len(b.scopes)-1]
}

// TopScope returns the innermost scope.
func (b *Builder) TopScope() *Scope {
	if len(b.scopes) == 0 {
		return nil
	}
	return &b.scopes[len(b.scopes)-1]
}

// NewTemp allocates a synthetic temporary owned by the innermost scope
// that is either a Temporaries or a Variables scope.
func (b *Builder) NewTemp(ty *hir.TypeRef) int {
	idx := b.Fn.NewLocal(ty, "")
	b.states[idx] = StateUninit
	for i := len(b.scopes) - 1; i >= 0; i-- {
		if b.scopes[i].Kind == ScopeTemporaries || b.scopes[i].Kind == ScopeVariables {
			b.scopes[i].Owned = append(b.scopes[i].Owned, idx)
			break
		}
	}
	return idx
}

// BindLocal registers a user local (from a `let` or arg pattern) in the
// innermost Variables scope.
func (b *Builder) BindLocal(ty *hir.TypeRef, name string) int {
	idx := b.Fn.NewLocal(ty, name)
	b.states[idx] = StateUninit
	if name != "" {
		b.names[name] = idx
	}
	for i := len(b.scopes) - 1; i >= 0; i-- {
		if b.scopes[i].Kind == ScopeVariables {
			b.scopes[i].Owned = append(b.scopes[i].Owned, idx)
			return idx
		}
	}
	return idx
}

// Lookup resolves a source variable name to its local index.
func (b *Builder) Lookup(name string) (int, bool) {
	idx, ok := b.names[name]
	return idx, ok
}

// SetState records local's current var state.
func (b *Builder) SetState(local int, s VarState) { b.states[local] = s }

// State reports local's current var state (StateUninit if never set).
func (b *Builder) State(local int) VarState { return b.states[local] }

// MarkMoved transitions a non-Copy local's state to Moved after a Use,
// per spec §4.2.1; Copy locals (queried from Resolve) are left Init.
func (b *Builder) MarkMoved(local int, ty *hir.TypeRef) {
	if b.Resolve != nil && b.Resolve.TypeIsCopy(ty) {
		return
	}
	b.states[local] = StateMoved
}

// Emit appends a statement to the current block.
func (b *Builder) Emit(s Statement) { b.Fn.Emit(b.Current, s) }

// Terminate sets the current block's terminator.
func (b *Builder) Terminate(t Terminator) { b.Fn.Terminate(b.Current, t) }

// OpenBlock allocates a new block and switches Current to it.
func (b *Builder) OpenBlock() int {
	id := b.Fn.NewBlock()
	b.Current = id
	return id
}

// PopScope closes the innermost scope, emitting Drop statements in
// reverse order for every owned local currently Init, and a guarded Drop
// (via its drop flag) for every MaybeMoved local (spec §4.2.1). Moved,
// Uninit, Dropped, and Copy locals are skipped.
func (b *Builder) PopScope() {
	n := len(b.scopes)
	if n == 0 {
		return
	}
	scope := b.scopes[n-1]
	b.scopes = b.scopes[:n-1]
	if scope.Kind != ScopeVariables && scope.Kind != ScopeTemporaries {
		return
	}
	for i := len(scope.Owned) - 1; i >= 0; i-- {
		local := scope.Owned[i]
		ty := b.Fn.Locals[local].Type
		if b.Resolve != nil && b.Resolve.TypeIsCopy(ty) {
			continue
		}
		switch b.states[local] {
		case StateInit:
			b.Emit(&Drop{Kind: DropDeep, LValue: LocalPlace(local), FlagIdx: -1})
			b.states[local] = StateDropped
		case StateMaybeMoved:
			flag, ok := b.dropFlag[local]
			if !ok {
				flag = b.Fn.NewDropFlag(true)
				b.dropFlag[local] = flag
			}
			b.Emit(&Drop{Kind: DropDeep, LValue: LocalPlace(local), FlagIdx: flag})
			b.states[local] = StateDropped
		}
	}
}

// MergeArmStates folds one arm's exit states into its Split scope's record
// (spec §4.2.1's merge table). It does not consult the arm's
// AlwaysEarlyTerminated flag: every arm passed in is merged.
func MergeArmStates(into map[int]VarState, arm map[int]VarState) {
	for local, s := range arm {
		existing, ok := into[local]
		if !ok {
			into[local] = s
			continue
		}
		into[local] = mergeState(existing, s)
	}
}

func mergeState(a, b VarState) VarState {
	if a == b {
		return a
	}
	switch {
	case a == StateUninit || b == StateUninit:
		return StateMaybeMoved // "Uninit ∧ anything -> MaybeInit" (tracked here as MaybeMoved, the conditional-drop state)
	case (a == StateInit && b == StateMoved) || (a == StateMoved && b == StateInit):
		return StateMaybeMoved
	case a == StateMoved && b == StateMoved:
		return StateMoved
	default:
		return StateMaybeMoved
	}
}
