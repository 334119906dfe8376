package plan

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xiaobogaga/colsql/storage"
	"math"
	"testing"
)

func TestEquals(t *testing.T) {
	negativeZero := math.Copysign(0, -1)
	cases := []struct {
		left, right storage.Value
		expect      bool
	}{
		{storage.BoolValue(true), storage.BoolValue(true), true},
		{storage.BoolValue(true), storage.BoolValue(false), false},
		{storage.LongValue(5), storage.LongValue(5), true},
		{storage.LongValue(5), storage.LongValue(6), false},
		{storage.DoubleValue(1.5), storage.DoubleValue(1.5), true},
		{storage.DoubleValue(math.NaN()), storage.DoubleValue(math.NaN()), false},
		{storage.DoubleValue(negativeZero), storage.DoubleValue(0), true},
		{storage.Null, storage.Null, false},
		{storage.TextValue("abc"), storage.TextValue("abc"), true},
		{storage.TextValue("abc"), storage.TextValue("abd"), false},
		// Mixed kinds fall back to identity.
		{storage.LongValue(1), storage.DoubleValue(1), false},
		{storage.LongValue(1), storage.BoolValue(true), false},
		{storage.TextValue("5"), storage.LongValue(5), false},
		{storage.Null, storage.LongValue(0), false},
		{storage.LongValue(0), storage.Null, false},
	}
	for _, c := range cases {
		assert.Equal(t, c.expect, Equals(c.left, c.right), "%s = %s", c.left, c.right)
	}
}

func evaluateBoolsForTesting(t *testing.T, expr Expr, rows int) []bool {
	var ret []bool
	for i := 0; i < rows; i++ {
		v, err := expr.EvaluateBool()
		require.Nil(t, err)
		ret = append(ret, v)
	}
	return ret
}

// Long column [5, 5, 6, NULL] = 5.
func TestEqualExpr_ColumnAndLiteral(t *testing.T) {
	store := storage.NewMemStore()
	require.Nil(t, store.AddValues("score", 1, storage.LongValue(5), storage.LongValue(5), storage.LongValue(6), storage.Null))
	column := makeColumnForTesting(t, store, "score")
	literal, err := NewLiteralExpr("5")
	require.Nil(t, err)
	equal := NewEqualExpr(column, literal)
	assert.Equal(t, "score = 5", equal.String())

	var ret []bool
	var states []equalState
	for i := 0; i < 4; i++ {
		v, err := equal.EvaluateBool()
		require.Nil(t, err)
		ret = append(ret, v)
		states = append(states, equal.state)
	}
	assert.Equal(t, []bool{true, true, false, false}, ret)
	assert.Equal(t, []equalState{equalLong, equalLong, equalLong, equalGeneric}, states)
	assert.Equal(t, TierBoxed, column.Tier())
	assert.Equal(t, []int{4}, advances(store, "score"))
}

func TestNotEqualExpr(t *testing.T) {
	store := storage.NewMemStore()
	require.Nil(t, store.AddValues("score", 1, storage.LongValue(5), storage.LongValue(6), storage.Null, storage.LongValue(7)))
	column := makeColumnForTesting(t, store, "score")
	literal, err := NewLiteralExpr("5")
	require.Nil(t, err)
	notEqual := NewNotEqualExpr(column, literal)
	assert.Equal(t, "score != 5", notEqual.String())
	assert.Equal(t, []bool{false, true, false, true}, evaluateBoolsForTesting(t, notEqual, 4))
	assert.Equal(t, equalGeneric, notEqual.state)
}

func TestNotEqualExpr_MixedKinds(t *testing.T) {
	notEqual := NewNotEqualExpr(&LiteralExpr{Value: storage.LongValue(1)}, &LiteralExpr{Value: storage.TextValue("1")})
	assert.Equal(t, []bool{true}, evaluateBoolsForTesting(t, notEqual, 1))
	notEqual = NewNotEqualExpr(&LiteralExpr{Value: storage.Null}, &LiteralExpr{Value: storage.Null})
	assert.Equal(t, []bool{false}, evaluateBoolsForTesting(t, notEqual, 1))
}

// The right child fails its typed evaluation: its value is reused, the left one is not read again.
func TestEqualExpr_RightMismatch(t *testing.T) {
	store := storage.NewMemStore()
	require.Nil(t, store.AddValues("id", 0, storage.LongValue(1), storage.LongValue(2), storage.LongValue(3)))
	require.Nil(t, store.AddValues("score", 1, storage.LongValue(1), storage.Null, storage.LongValue(3)))
	equal := NewEqualExpr(makeColumnForTesting(t, store, "id"), makeColumnForTesting(t, store, "score"))
	assert.Equal(t, []bool{true}, evaluateBoolsForTesting(t, equal, 1))
	assert.Equal(t, equalLong, equal.state)
	assert.Equal(t, []bool{false, true}, evaluateBoolsForTesting(t, equal, 2))
	assert.Equal(t, equalGeneric, equal.state)
	assert.Equal(t, []int{3}, advances(store, "id"))
	assert.Equal(t, []int{3}, advances(store, "score"))
}

func TestEqualExpr_FirstRowNull(t *testing.T) {
	store := storage.NewMemStore()
	require.Nil(t, store.AddValues("score", 1, storage.Null, storage.LongValue(4)))
	require.Nil(t, store.AddValues("ratio", 1, storage.Null, storage.DoubleValue(4)))
	equal := NewEqualExpr(makeColumnForTesting(t, store, "score"), makeColumnForTesting(t, store, "ratio"))
	assert.Equal(t, []bool{false, false}, evaluateBoolsForTesting(t, equal, 2))
	assert.Equal(t, equalGeneric, equal.state)
}

func TestEqualExpr_Double(t *testing.T) {
	store := storage.NewMemStore()
	require.Nil(t, store.AddValues("weight", 0, storage.DoubleValue(math.NaN()), storage.DoubleValue(math.Copysign(0, -1)),
		storage.DoubleValue(2.5)))
	require.Nil(t, store.AddValues("ratio", 1, storage.DoubleValue(math.NaN()), storage.DoubleValue(0),
		storage.DoubleValue(2.5)))
	equal := NewEqualExpr(makeColumnForTesting(t, store, "weight"), makeColumnForTesting(t, store, "ratio"))
	assert.Equal(t, []bool{false, true, true}, evaluateBoolsForTesting(t, equal, 3))
	assert.Equal(t, equalDouble, equal.state)
}

func TestEqualExpr_Bool(t *testing.T) {
	store := storage.NewMemStore()
	require.Nil(t, store.AddValues("active", 0, storage.BoolValue(true), storage.BoolValue(false), storage.BoolValue(true)))
	require.Nil(t, store.AddValues("flag", 1, storage.BoolValue(true), storage.BoolValue(true), storage.Null))
	equal := NewEqualExpr(makeColumnForTesting(t, store, "active"), makeColumnForTesting(t, store, "flag"))
	assert.Equal(t, []bool{true, false, false}, evaluateBoolsForTesting(t, equal, 3))
	assert.Equal(t, equalGeneric, equal.state)
}

func TestEqualExpr_Text(t *testing.T) {
	store := storage.NewMemStore()
	require.Nil(t, store.AddValues("name", 1, storage.TextValue("a"), storage.Null, storage.TextValue("b")))
	literal, err := NewLiteralExpr("'a'")
	require.Nil(t, err)
	equal := NewEqualExpr(makeColumnForTesting(t, store, "name"), literal)
	assert.Equal(t, []bool{true, false, false}, evaluateBoolsForTesting(t, equal, 3))
	assert.Equal(t, equalGeneric, equal.state)
}

// (score = 5) = true: the inner node is read through its bool entry.
func TestEqualExpr_Nested(t *testing.T) {
	store := storage.NewMemStore()
	require.Nil(t, store.AddValues("score", 1, storage.LongValue(5), storage.LongValue(6), storage.Null))
	five, err := NewLiteralExpr("5")
	require.Nil(t, err)
	yes, err := NewLiteralExpr("true")
	require.Nil(t, err)
	inner := NewEqualExpr(makeColumnForTesting(t, store, "score"), five)
	outer := NewEqualExpr(inner, yes)
	assert.Equal(t, []bool{true, false, false}, evaluateBoolsForTesting(t, outer, 3))
	assert.Equal(t, equalBool, outer.state)
	assert.Equal(t, []int{3}, advances(store, "score"))
}

func TestEqualExpr_TypedEntries(t *testing.T) {
	equal := NewEqualExpr(&LiteralExpr{Value: storage.LongValue(1)}, &LiteralExpr{Value: storage.LongValue(1)})
	_, err := equal.EvaluateLong()
	v, ok := storage.MismatchValue(err)
	assert.True(t, ok)
	assert.Equal(t, storage.BoolValue(true), v)
	_, err = equal.EvaluateDouble()
	_, ok = storage.MismatchValue(err)
	assert.True(t, ok)
	v, err = equal.Evaluate()
	assert.Nil(t, err)
	assert.Equal(t, storage.BoolValue(true), v)
}

func TestEqualExpr_PropagatesCursorError(t *testing.T) {
	store := storage.NewMemStore()
	require.Nil(t, store.AddValues("id", 0, storage.LongValue(1)))
	literal, err := NewLiteralExpr("1")
	require.Nil(t, err)
	column, err := NewAssembleColumnExpr(makeSchemaForTesting(), "id")
	require.Nil(t, err)
	equal := NewEqualExpr(column, literal)
	require.Nil(t, equal.Prepare(brokenStore{store}))
	_, err = equal.EvaluateBool()
	assert.Equal(t, errBrokenPage, err)
}

func TestLiteralExpr(t *testing.T) {
	literal, err := NewLiteralExpr("1.5")
	require.Nil(t, err)
	assert.Equal(t, "1.5", literal.String())
	d, err := literal.EvaluateDouble()
	assert.Nil(t, err)
	assert.Equal(t, 1.5, d)
	_, err = literal.EvaluateLong()
	v, ok := storage.MismatchValue(err)
	assert.True(t, ok)
	assert.Equal(t, storage.DoubleValue(1.5), v)
	_, err = NewLiteralExpr("what")
	assert.NotNil(t, err)
	assert.Equal(t, "NULL", (&LiteralExpr{Value: storage.Null}).String())
}
