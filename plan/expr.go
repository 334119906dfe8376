package plan

import (
	"errors"
	"github.com/xiaobogaga/colsql/storage"
	"github.com/xiaobogaga/colsql/util"
)

var (
	ErrNotPrepared  = errors.New("expression is not prepared")
	ErrKindMismatch = errors.New("column kind mismatch")
)

var planLog = util.GetLog("plan")

// Expr is a node of the expression tree. Evaluate* is called once per row, and every column read below the node
// must happen exactly once per row, so a node never evaluates a child twice for the same row.
//
// Evaluate always works. EvaluateBool, EvaluateLong and EvaluateDouble avoid boxing when the node can produce
// that type; otherwise they return a *storage.TypeMismatchError carrying the value produced for the row, which
// the caller has to use instead of evaluating again.
type Expr interface {
	String() string
	// Prepare binds the expression to the cursors of a scan. Must be called before the first row.
	Prepare(store storage.ReadStore) error
	Evaluate() (storage.Value, error)
	EvaluateBool() (bool, error)
	EvaluateLong() (int64, error)
	EvaluateDouble() (float64, error)
}

func expectBool(expr Expr) (bool, error) {
	v, err := expr.Evaluate()
	if err != nil {
		return false, err
	}
	return v.AsBool()
}

func expectLong(expr Expr) (int64, error) {
	v, err := expr.Evaluate()
	if err != nil {
		return 0, err
	}
	return v.AsLong()
}

func expectDouble(expr Expr) (float64, error) {
	v, err := expr.Evaluate()
	if err != nil {
		return 0, err
	}
	return v.AsDouble()
}
