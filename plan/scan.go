package plan

import (
	"context"
	"errors"
	"fmt"
	"github.com/xiaobogaga/colsql/storage"
	"github.com/xiaobogaga/colsql/util"
	"strings"
	"time"
)

var (
	ErrNoColumn         = errors.New("scan reads no column")
	ErrRowCountMismatch = errors.New("columns have different row counts")
	ErrFilterNotBool    = errors.New("filter is not a boolean")
)

var scanLog = util.GetLog("scan")

// RowSink receives the rows of a scan. row is only valid during the call.
type RowSink interface {
	Accept(row []storage.Value) error
}

// Scan evaluates Projections for every row of a store and sends the rows Filter accepts to a sink. A row passes the
// filter only when it evaluates to true, null doesn't pass.
//
// Every expression is evaluated for every row, filtered or not, so each column cursor moves exactly once per row.
type Scan struct {
	Projections []Expr
	Filter      Expr
	// Limit stops the scan after that many rows are sent. 0 means no limit.
	Limit int64
}

func (scan *Scan) String() string {
	names := make([]string, len(scan.Projections))
	for i, expr := range scan.Projections {
		names[i] = expr.String()
	}
	ret := fmt.Sprintf("scan [%s]", strings.Join(names, ", "))
	if scan.Filter != nil {
		ret += fmt.Sprintf(" where %s", scan.Filter)
	}
	return ret
}

func (scan *Scan) exprs() []Expr {
	ret := append([]Expr(nil), scan.Projections...)
	if scan.Filter != nil {
		ret = append(ret, scan.Filter)
	}
	return ret
}

// Run prepares the expressions against store and evaluates them row by row. It returns how many rows were sent to
// sink. Cancelling ctx stops the scan between two rows.
func (scan *Scan) Run(ctx context.Context, store storage.ReadStore, sink RowSink) (int64, error) {
	exprs := scan.exprs()
	for _, expr := range exprs {
		if err := expr.Prepare(store); err != nil {
			return 0, err
		}
	}
	rows, err := rowCount(exprs)
	if err != nil {
		return 0, err
	}
	scanLog.InfoF("%s: %d rows", scan, rows)
	start := time.Now()
	row := make([]storage.Value, len(scan.Projections))
	var sent int64
	for i := int64(0); i < rows; i++ {
		if scan.Limit > 0 && sent >= scan.Limit {
			break
		}
		if err := ctx.Err(); err != nil {
			scanLog.WarnF("%s: stopped at row %d: %v", scan, i, err)
			return sent, err
		}
		pass, err := scan.evaluateFilter()
		if err != nil {
			return sent, fmt.Errorf("row %d: %w", i, err)
		}
		for j, expr := range scan.Projections {
			row[j], err = expr.Evaluate()
			if err != nil {
				return sent, fmt.Errorf("row %d: %w", i, err)
			}
		}
		if !pass {
			continue
		}
		if err := sink.Accept(row); err != nil {
			return sent, err
		}
		sent++
	}
	scanLog.InfoF("%s: sent %d rows in %v", scan, sent, time.Since(start))
	return sent, nil
}

func (scan *Scan) evaluateFilter() (bool, error) {
	if scan.Filter == nil {
		return true, nil
	}
	pass, err := scan.Filter.EvaluateBool()
	if err == nil {
		return pass, nil
	}
	v, ok := storage.MismatchValue(err)
	if !ok {
		return false, err
	}
	if v.IsNull() {
		return false, nil
	}
	return false, fmt.Errorf("%w: %s gives %s", ErrFilterNotBool, scan.Filter, v.Kind())
}

// rowCount is the value count shared by every column read by exprs.
func rowCount(exprs []Expr) (int64, error) {
	var columns []*AssembleColumnExpr
	for _, expr := range exprs {
		columns = appendColumns(columns, expr)
	}
	if len(columns) == 0 {
		return 0, ErrNoColumn
	}
	rows := columns[0].TotalValueCount()
	for _, column := range columns[1:] {
		if column.TotalValueCount() != rows {
			return 0, fmt.Errorf("%w: %s has %d, %s has %d", ErrRowCountMismatch, columns[0], rows, column,
				column.TotalValueCount())
		}
	}
	return rows, nil
}

func appendColumns(columns []*AssembleColumnExpr, expr Expr) []*AssembleColumnExpr {
	switch e := expr.(type) {
	case *AssembleColumnExpr:
		return append(columns, e)
	case *EqualExpr:
		columns = appendColumns(columns, e.Left)
		return appendColumns(columns, e.Right)
	default:
		return columns
	}
}
