package storage

import "errors"

var ErrCursorExhausted = errors.New("column cursor exhausted")

// ColumnCursor reads one physical column value by value. The current value stays the same until Consume is called,
// and Consume must be called exactly once for each row read through the cursor.
type ColumnCursor interface {
	// DefinitionLevel of the current value. The value is absent when it's less than the column's max
	// definition level.
	DefinitionLevel() int
	Bool() bool
	Long() int64
	Double() float64
	Bytes() []byte
	// Consume moves to the next value.
	Consume() error
	TotalValueCount() int64
}

// ReadStore hands out cursors. Every call returns a new, independent cursor positioned at the first value.
type ReadStore interface {
	ColumnCursor(binding ColumnBinding) (ColumnCursor, error)
}
