package storage

import (
	"errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestMemStore_Cursor(t *testing.T) {
	store := NewMemStore()
	require.Nil(t, store.AddValues("score", 1, LongValue(5), Null, LongValue(9)))
	binding := ColumnBinding{Path: []string{"score"}, Kind: LongPrimitive, Optional: true, MaxDefinitionLevel: 1}
	cursor, err := store.ColumnCursor(binding)
	require.Nil(t, err)
	assert.Equal(t, int64(3), cursor.TotalValueCount())

	assert.Equal(t, 1, cursor.DefinitionLevel())
	assert.Equal(t, int64(5), cursor.Long())
	assert.Nil(t, cursor.Consume())
	assert.Equal(t, 0, cursor.DefinitionLevel())
	assert.Nil(t, cursor.Consume())
	assert.Equal(t, int64(9), cursor.Long())
	assert.Nil(t, cursor.Consume())
	assert.Equal(t, ErrCursorExhausted, cursor.Consume())

	cursors := store.Cursors("score")
	assert.Len(t, cursors, 1)
	assert.Equal(t, 3, cursors[0].Advances)
}

func TestMemStore_IndependentCursors(t *testing.T) {
	store := NewMemStore()
	require.Nil(t, store.AddValues("name", 0, TextValue("a"), TextValue("b")))
	binding := ColumnBinding{Path: []string{"name"}, Kind: TextPrimitive}
	first, err := store.ColumnCursor(binding)
	require.Nil(t, err)
	second, err := store.ColumnCursor(binding)
	require.Nil(t, err)
	assert.Nil(t, first.Consume())
	assert.Equal(t, []byte("b"), first.Bytes())
	assert.Equal(t, []byte("a"), second.Bytes())
	assert.Len(t, store.Cursors("name"), 2)
}

func TestMemStore_Errors(t *testing.T) {
	store := NewMemStore()
	assert.NotNil(t, store.AddValues("id", 0, LongValue(1), Null))
	assert.NotNil(t, store.AddColumn("id", &MemColumn{DefinitionLevels: []int{0}}))
	_, err := store.ColumnCursor(ColumnBinding{Path: []string{"missing"}})
	assert.True(t, errors.Is(err, ErrColumnNotFound))
}
