package storage

import (
	"fmt"
	"math"
	"sync"
)

// MemColumn is one column kept in memory. DefinitionLevels and Values are aligned by row, the value of a row whose
// definition level is below the max is ignored.
type MemColumn struct {
	DefinitionLevels []int
	Values           []Value
}

// MemStore is a ReadStore over MemColumns keyed by dotted column path. It remembers every cursor it opened so
// callers can check how far each one advanced.
type MemStore struct {
	lock    sync.Mutex
	columns map[string]*MemColumn
	cursors map[string][]*MemCursor
}

func NewMemStore() *MemStore {
	return &MemStore{
		columns: map[string]*MemColumn{},
		cursors: map[string][]*MemCursor{},
	}
}

// AddColumn registers column data for path (like "a.b").
func (store *MemStore) AddColumn(path string, column *MemColumn) error {
	if len(column.DefinitionLevels) != len(column.Values) {
		return fmt.Errorf("column %s has %d definition levels but %d values", path, len(column.DefinitionLevels),
			len(column.Values))
	}
	store.lock.Lock()
	defer store.lock.Unlock()
	store.columns[path] = column
	return nil
}

// AddValues registers a column from values only, a Null value gets definition level maxDefinitionLevel-1 and
// any other value gets maxDefinitionLevel.
func (store *MemStore) AddValues(path string, maxDefinitionLevel int, values ...Value) error {
	column := &MemColumn{DefinitionLevels: make([]int, len(values)), Values: values}
	for i, v := range values {
		column.DefinitionLevels[i] = maxDefinitionLevel
		if v.IsNull() {
			if maxDefinitionLevel == 0 {
				return fmt.Errorf("column %s is required but row %d is null", path, i)
			}
			column.DefinitionLevels[i] = maxDefinitionLevel - 1
		}
	}
	return store.AddColumn(path, column)
}

func (store *MemStore) ColumnCursor(binding ColumnBinding) (ColumnCursor, error) {
	store.lock.Lock()
	defer store.lock.Unlock()
	path := binding.String()
	column, ok := store.columns[path]
	if !ok {
		return nil, fmt.Errorf("%w: no data for %s", ErrColumnNotFound, path)
	}
	cursor := &MemCursor{column: column}
	store.cursors[path] = append(store.cursors[path], cursor)
	return cursor, nil
}

// Cursors returns the cursors opened for path, in opening order.
func (store *MemStore) Cursors(path string) []*MemCursor {
	store.lock.Lock()
	defer store.lock.Unlock()
	return store.cursors[path]
}

type MemCursor struct {
	column *MemColumn
	pos    int
	// Advances counts successful Consume calls.
	Advances int
}

func (cursor *MemCursor) current() Value {
	if cursor.pos >= len(cursor.column.Values) {
		return Null
	}
	return cursor.column.Values[cursor.pos]
}

func (cursor *MemCursor) DefinitionLevel() int {
	if cursor.pos >= len(cursor.column.DefinitionLevels) {
		return 0
	}
	return cursor.column.DefinitionLevels[cursor.pos]
}

func (cursor *MemCursor) Bool() bool {
	v := cursor.current()
	return v.kind == BoolKind && v.bits != 0
}

func (cursor *MemCursor) Long() int64 {
	v := cursor.current()
	if v.kind != LongKind {
		return 0
	}
	return int64(v.bits)
}

func (cursor *MemCursor) Double() float64 {
	v := cursor.current()
	if v.kind != DoubleKind {
		return 0
	}
	return math.Float64frombits(v.bits)
}

func (cursor *MemCursor) Bytes() []byte {
	v := cursor.current()
	if v.kind != TextKind {
		return nil
	}
	return []byte(v.text)
}

func (cursor *MemCursor) Consume() error {
	if cursor.pos >= len(cursor.column.Values) {
		return ErrCursorExhausted
	}
	cursor.pos++
	cursor.Advances++
	return nil
}

func (cursor *MemCursor) TotalValueCount() int64 {
	return int64(len(cursor.column.Values))
}
