package plan

import (
	"errors"
	"fmt"
	"github.com/xiaobogaga/colsql/storage"
	"github.com/xiaobogaga/colsql/util"
	"strings"
)

var ErrBadComparison = errors.New("bad comparison")

// BuildColumns makes one column expression per dotted path, like "address.zip".
func BuildColumns(schema storage.Schema, paths ...string) ([]Expr, error) {
	ret := make([]Expr, 0, len(paths))
	for _, path := range paths {
		expr, err := NewAssembleColumnExpr(schema, util.SplitDotString(path)...)
		if err != nil {
			return nil, err
		}
		ret = append(ret, expr)
	}
	return ret, nil
}

// BuildComparison parses `operand=operand` or `operand!=operand`. An operand is a literal when it parses as one,
// a dotted column path otherwise.
func BuildComparison(schema storage.Schema, text string) (Expr, error) {
	op, loc := "!=", strings.Index(text, "!=")
	if loc < 0 {
		op, loc = "=", strings.Index(text, "=")
	}
	if loc < 0 {
		return nil, fmt.Errorf("%w: %s has no = or !=", ErrBadComparison, text)
	}
	left, err := buildOperand(schema, text[:loc])
	if err != nil {
		return nil, err
	}
	right, err := buildOperand(schema, text[loc+len(op):])
	if err != nil {
		return nil, err
	}
	if op == "!=" {
		return NewNotEqualExpr(left, right), nil
	}
	return NewEqualExpr(left, right), nil
}

func buildOperand(schema storage.Schema, text string) (Expr, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: missing operand", ErrBadComparison)
	}
	if literal, err := NewLiteralExpr(text); err == nil {
		return literal, nil
	}
	return NewAssembleColumnExpr(schema, util.SplitDotString(text)...)
}
