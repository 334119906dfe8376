package executors

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/xiaobogaga/colsql/plan"
	"github.com/xiaobogaga/colsql/storage"
)

var (
	_ plan.RowSink = (*Collector)(nil)
	_ plan.RowSink = (*TableWriter)(nil)
)

// Collector keeps every row in memory.
type Collector struct {
	Rows [][]storage.Value
}

func (collector *Collector) Accept(row []storage.Value) error {
	collector.Rows = append(collector.Rows, append([]storage.Value(nil), row...))
	return nil
}

// Column returns the i-th value of every collected row.
func (collector *Collector) Column(i int) []storage.Value {
	ret := make([]storage.Value, len(collector.Rows))
	for j, row := range collector.Rows {
		ret[j] = row[i]
	}
	return ret
}

// TableWriter renders rows as a text table, like:
// +----+-------+
// | ID | SCORE |
// +----+-------+
// |  1 |     5 |
// |  2 | NULL  |
// +----+-------+
type TableWriter struct {
	writer table.Writer
	rows   int
}

func NewTableWriter(out io.Writer, header ...string) *TableWriter {
	writer := table.NewWriter()
	writer.SetOutputMirror(out)
	row := make(table.Row, len(header))
	for i, name := range header {
		row[i] = name
	}
	writer.AppendHeader(row)
	return &TableWriter{writer: writer}
}

func (tableWriter *TableWriter) Accept(row []storage.Value) error {
	r := make(table.Row, len(row))
	for i, v := range row {
		r[i] = cell(v)
	}
	tableWriter.writer.AppendRow(r)
	tableWriter.rows++
	return nil
}

func (tableWriter *TableWriter) Rows() int {
	return tableWriter.rows
}

// Render writes the table to the output and returns it.
func (tableWriter *TableWriter) Render() string {
	return tableWriter.writer.Render()
}

// cell keeps numbers as numbers so the table aligns them right.
func cell(v storage.Value) interface{} {
	switch v.Kind() {
	case storage.LongKind:
		l, _ := v.AsLong()
		return l
	case storage.DoubleKind:
		d, _ := v.AsDouble()
		return d
	case storage.BoolKind:
		b, _ := v.AsBool()
		return b
	default:
		return v.String()
	}
}
