package mir

// ParamKind distinguishes Param's three shapes (spec §3.5).
type ParamKind int

const (
	ParamLValue ParamKind = iota
	ParamBorrow
	ParamConstant
)

// BorrowKind is shared by Param's borrow shape and RValue's Borrow
// constructor: shared, mutable, or owning (move-out).
type BorrowKind int

const (
	BorrowShared BorrowKind = iota
	BorrowMut
	BorrowOwned
)

// Param is an operand: an lvalue (read by value/copy), a borrow of an
// lvalue, or a constant (spec §3.5). RValues that need a copyable or
// movable operand take a Param rather than a bare LValue.
type Param struct {
	Kind   ParamKind
	LValue LValue
	Borrow BorrowKind
	Const  Constant
}

// UseParam wraps an lvalue read by value.
func UseParam(l LValue) Param { return Param{Kind: ParamLValue, LValue: l} }

// BorrowParam wraps a borrow of an lvalue.
func BorrowParam(kind BorrowKind, l LValue) Param {
	return Param{Kind: ParamBorrow, Borrow: kind, LValue: l}
}

// ConstParam wraps a constant.
func ConstParam(c Constant) Param { return Param{Kind: ParamConstant, Const: c} }

func (p Param) String() string {
	switch p.Kind {
	case ParamLValue:
		return p.LValue.String()
	case ParamBorrow:
		prefix := "&"
		switch p.Borrow {
		case BorrowMut:
			prefix = "&mut "
		case BorrowOwned:
			prefix = "&move "
		default:
			prefix = "& "
		}
		return prefix + p.LValue.String()
	case ParamConstant:
		return p.Const.String()
	default:
		return "?param"
	}
}
