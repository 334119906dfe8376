package plan

import (
	"fmt"
	"github.com/xiaobogaga/colsql/storage"
)

// BinaryExpr holds the two children of a binary operator.
type BinaryExpr struct {
	Left  Expr
	Right Expr
	Op    string
}

func (binary *BinaryExpr) String() string {
	return fmt.Sprintf("%s %s %s", binary.Left, binary.Op, binary.Right)
}

func (binary *BinaryExpr) Prepare(store storage.ReadStore) error {
	err := binary.Left.Prepare(store)
	if err != nil {
		return err
	}
	return binary.Right.Prepare(store)
}

type equalState byte

const (
	equalUninitialized equalState = iota
	equalBool
	equalLong
	equalDouble
	equalGeneric
)

var equalStateNames = map[equalState]string{
	equalUninitialized: "uninitialized",
	equalBool:          "bool",
	equalLong:          "long",
	equalDouble:        "double",
	equalGeneric:       "generic",
}

func (state equalState) String() string {
	return equalStateNames[state]
}

// EqualExpr is `=`, or `!=` when Negate is set.
//
// The first row is evaluated through the generic path and the node locks onto the operand kinds it saw: bool/bool,
// long/long or double/double are then compared unboxed through the children's typed evaluation. The first row
// that doesn't fit moves the node to the generic path for good, reusing the value the failing child produced.
type EqualExpr struct {
	BinaryExpr
	Negate bool
	state  equalState
}

func NewEqualExpr(left, right Expr) *EqualExpr {
	return &EqualExpr{BinaryExpr: BinaryExpr{Left: left, Right: right, Op: "="}}
}

// NewNotEqualExpr returns the negation of `=`, except that a null operand still compares false.
func NewNotEqualExpr(left, right Expr) *EqualExpr {
	return &EqualExpr{BinaryExpr: BinaryExpr{Left: left, Right: right, Op: "!="}, Negate: true}
}

func (equal *EqualExpr) Evaluate() (storage.Value, error) {
	ret, err := equal.EvaluateBool()
	if err != nil {
		return storage.Null, err
	}
	return storage.BoolValue(ret), nil
}

func (equal *EqualExpr) EvaluateBool() (bool, error) {
	switch equal.state {
	case equalBool:
		return evaluatePair(equal, Expr.EvaluateBool, storage.BoolValue)
	case equalLong:
		return evaluatePair(equal, Expr.EvaluateLong, storage.LongValue)
	case equalDouble:
		return evaluatePair(equal, Expr.EvaluateDouble, storage.DoubleValue)
	}
	left, err := equal.Left.Evaluate()
	if err != nil {
		return false, err
	}
	right, err := equal.Right.Evaluate()
	if err != nil {
		return false, err
	}
	if equal.state == equalUninitialized {
		equal.specialize(left, right)
	}
	return equal.apply(left, right), nil
}

func (equal *EqualExpr) EvaluateLong() (int64, error) { return expectLong(equal) }

func (equal *EqualExpr) EvaluateDouble() (float64, error) { return expectDouble(equal) }

func (equal *EqualExpr) specialize(left, right storage.Value) {
	switch {
	case left.Kind() != right.Kind():
		equal.state = equalGeneric
	case left.Kind() == storage.BoolKind:
		equal.state = equalBool
	case left.Kind() == storage.LongKind:
		equal.state = equalLong
	case left.Kind() == storage.DoubleKind:
		equal.state = equalDouble
	default:
		equal.state = equalGeneric
	}
}

// evaluatePair compares both children through their typed evaluation. When a child can't produce T, the value it
// produced instead is taken from the mismatch and the node turns generic.
func evaluatePair[T comparable](equal *EqualExpr, evaluate func(Expr) (T, error), box func(T) storage.Value) (bool, error) {
	left, err := evaluate(equal.Left)
	if err != nil {
		leftValue, ok := storage.MismatchValue(err)
		if !ok {
			return false, err
		}
		return equal.generalize(leftValue, nil)
	}
	right, err := evaluate(equal.Right)
	if err != nil {
		rightValue, ok := storage.MismatchValue(err)
		if !ok {
			return false, err
		}
		return equal.generalize(box(left), &rightValue)
	}
	return (left == right) != equal.Negate, nil
}

// generalize moves the node to the generic path and finishes the current row with it. right is nil when the right
// child hasn't been evaluated for this row yet.
func (equal *EqualExpr) generalize(left storage.Value, right *storage.Value) (bool, error) {
	planLog.DebugF("%s: %s -> %s", equal, equal.state, equalGeneric)
	equal.state = equalGeneric
	if right == nil {
		v, err := equal.Right.Evaluate()
		if err != nil {
			return false, err
		}
		right = &v
	}
	return equal.apply(left, *right), nil
}

func (equal *EqualExpr) apply(left, right storage.Value) bool {
	if !equal.Negate {
		return Equals(left, right)
	}
	if left.IsNull() || right.IsNull() {
		return false
	}
	return !Equals(left, right)
}

// Equals compares two values by the pair of their kinds. null never equals null, doubles follow IEEE 754 and any
// other pairing falls back to identity of the boxed values, which never holds for different kinds.
func Equals(left, right storage.Value) bool {
	switch {
	case left.Kind() == storage.BoolKind && right.Kind() == storage.BoolKind:
		l, _ := left.AsBool()
		r, _ := right.AsBool()
		return l == r
	case left.Kind() == storage.LongKind && right.Kind() == storage.LongKind:
		l, _ := left.AsLong()
		r, _ := right.AsLong()
		return l == r
	case left.Kind() == storage.DoubleKind && right.Kind() == storage.DoubleKind:
		l, _ := left.AsDouble()
		r, _ := right.AsDouble()
		return l == r
	case left.IsNull() && right.IsNull():
		return false
	case left.Kind() == storage.TextKind && right.Kind() == storage.TextKind:
		l, _ := left.AsText()
		r, _ := right.AsText()
		return l == r
	}
	return left == right
}
