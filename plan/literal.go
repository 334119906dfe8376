package plan

import (
	"github.com/xiaobogaga/colsql/storage"
)

// LiteralExpr is a constant. Data keeps the text it was parsed from, for printing.
type LiteralExpr struct {
	Value storage.Value
	Data  string
}

// NewLiteralExpr parses data with storage.InferenceValue.
func NewLiteralExpr(data string) (*LiteralExpr, error) {
	v, err := storage.InferenceValue(data)
	if err != nil {
		return nil, err
	}
	return &LiteralExpr{Value: v, Data: data}, nil
}

func (literal *LiteralExpr) String() string {
	if literal.Data != "" {
		return literal.Data
	}
	return literal.Value.String()
}

func (literal *LiteralExpr) Prepare(_ storage.ReadStore) error { return nil }

func (literal *LiteralExpr) Evaluate() (storage.Value, error) { return literal.Value, nil }

func (literal *LiteralExpr) EvaluateBool() (bool, error) { return expectBool(literal) }

func (literal *LiteralExpr) EvaluateLong() (int64, error) { return expectLong(literal) }

func (literal *LiteralExpr) EvaluateDouble() (float64, error) { return expectDouble(literal) }
