package plan

import (
	"errors"
	"fmt"
	"github.com/xiaobogaga/colsql/storage"
)

// AssembleTier is the path an AssembleColumnExpr reads its column with.
type AssembleTier byte

const (
	// TierFast reads required columns without looking at definition levels.
	TierFast AssembleTier = iota
	// TierOptimistic reads optional columns unboxed for as long as no null shows up.
	TierOptimistic
	// TierBoxed checks every row for null and returns boxed values.
	TierBoxed
)

var assembleTierNames = map[AssembleTier]string{
	TierFast:       "fast",
	TierOptimistic: "optimistic",
	TierBoxed:      "boxed",
}

func (tier AssembleTier) String() string {
	return assembleTierNames[tier]
}

// errNotDefined is returned by the optimistic tier when the current value is absent. It never leaves the node.
var errNotDefined = errors.New("value not defined")

// AssembleColumnExpr reads one physical column into row values.
//
// The node starts on the cheapest tier its column allows: TierFast for required boolean, long and double columns,
// TierOptimistic for optional ones and TierBoxed for text. The optimistic tier gives up the first time it sees an
// absent value, without consuming it, and the same row is read again by the boxed tier. From then on the node
// stays boxed. Whatever tier serves a row, the cursor is consumed exactly once for it.
type AssembleColumnExpr struct {
	Binding storage.ColumnBinding
	cursor  storage.ColumnCursor
	tier    AssembleTier
}

func NewAssembleColumnExpr(schema storage.Schema, path ...string) (*AssembleColumnExpr, error) {
	binding, err := schema.Resolve(path...)
	if err != nil {
		return nil, err
	}
	return &AssembleColumnExpr{Binding: binding, tier: initialTier(binding)}, nil
}

// NewTypedAssembleColumnExpr is NewAssembleColumnExpr for callers that need the column to have a given physical kind.
func NewTypedAssembleColumnExpr(schema storage.Schema, kind storage.PrimitiveKind, path ...string) (*AssembleColumnExpr, error) {
	expr, err := NewAssembleColumnExpr(schema, path...)
	if err != nil {
		return nil, err
	}
	if expr.Binding.Kind != kind {
		return nil, fmt.Errorf("%w: %s is %s, not %s", ErrKindMismatch, expr.Binding, expr.Binding.Kind, kind)
	}
	return expr, nil
}

func initialTier(binding storage.ColumnBinding) AssembleTier {
	switch {
	case binding.Kind == storage.TextPrimitive:
		return TierBoxed
	case binding.Optional:
		return TierOptimistic
	default:
		return TierFast
	}
}

func (assemble *AssembleColumnExpr) String() string {
	return assemble.Binding.String()
}

func (assemble *AssembleColumnExpr) Tier() AssembleTier {
	return assemble.tier
}

func (assemble *AssembleColumnExpr) Prepare(store storage.ReadStore) error {
	cursor, err := store.ColumnCursor(assemble.Binding)
	if err != nil {
		return fmt.Errorf("prepare column %s: %w", assemble.Binding, err)
	}
	assemble.cursor = cursor
	return nil
}

// TotalValueCount is the number of values of the bound column, which is the number of rows for a column that isn't
// repeated.
func (assemble *AssembleColumnExpr) TotalValueCount() int64 {
	if assemble.cursor == nil {
		return 0
	}
	return assemble.cursor.TotalValueCount()
}

func (assemble *AssembleColumnExpr) Evaluate() (storage.Value, error) {
	return assembleValue(assemble, assemble.readValue, boxed)
}

func (assemble *AssembleColumnExpr) EvaluateBool() (bool, error) {
	if assemble.Binding.Kind != storage.BooleanPrimitive {
		return false, assemble.mismatch(storage.BoolKind)
	}
	return assembleValue(assemble, func() bool { return assemble.cursor.Bool() }, storage.Value.AsBool)
}

func (assemble *AssembleColumnExpr) EvaluateLong() (int64, error) {
	if assemble.Binding.Kind != storage.LongPrimitive {
		return 0, assemble.mismatch(storage.LongKind)
	}
	return assembleValue(assemble, func() int64 { return assemble.cursor.Long() }, storage.Value.AsLong)
}

func (assemble *AssembleColumnExpr) EvaluateDouble() (float64, error) {
	if assemble.Binding.Kind != storage.DoublePrimitive {
		return 0, assemble.mismatch(storage.DoubleKind)
	}
	return assembleValue(assemble, func() float64 { return assemble.cursor.Double() }, storage.Value.AsDouble)
}

// assembleValue runs the current tier. read fetches the current value unboxed, unbox converts the result of the
// boxed tier.
func assembleValue[T any](assemble *AssembleColumnExpr, read func() T, unbox func(storage.Value) (T, error)) (T, error) {
	var zero T
	if assemble.cursor == nil {
		return zero, fmt.Errorf("%w: %s", ErrNotPrepared, assemble)
	}
	switch assemble.tier {
	case TierFast:
		return consume(assemble.cursor, read)
	case TierOptimistic:
		v, err := tryConsume(assemble, read)
		if !errors.Is(err, errNotDefined) {
			return v, err
		}
		// The row is still under the cursor, the boxed tier reads it again.
		assemble.demote()
	}
	v, err := assemble.getNullable()
	if err != nil {
		return zero, err
	}
	return unbox(v)
}

func consume[T any](cursor storage.ColumnCursor, read func() T) (T, error) {
	v := read()
	if err := cursor.Consume(); err != nil {
		var zero T
		return zero, err
	}
	return v, nil
}

func tryConsume[T any](assemble *AssembleColumnExpr, read func() T) (T, error) {
	if assemble.isNull() {
		var zero T
		return zero, errNotDefined
	}
	return consume(assemble.cursor, read)
}

func (assemble *AssembleColumnExpr) getNullable() (storage.Value, error) {
	if assemble.isNull() {
		if err := assemble.cursor.Consume(); err != nil {
			return storage.Null, err
		}
		return storage.Null, nil
	}
	return consume(assemble.cursor, assemble.readValue)
}

func (assemble *AssembleColumnExpr) isNull() bool {
	return assemble.cursor.DefinitionLevel() < assemble.Binding.MaxDefinitionLevel
}

func (assemble *AssembleColumnExpr) readValue() storage.Value {
	switch assemble.Binding.Kind {
	case storage.BooleanPrimitive:
		return storage.BoolValue(assemble.cursor.Bool())
	case storage.LongPrimitive:
		return storage.LongValue(assemble.cursor.Long())
	case storage.DoublePrimitive:
		return storage.DoubleValue(assemble.cursor.Double())
	default:
		return storage.TextValue(string(assemble.cursor.Bytes()))
	}
}

// mismatch consumes the row through the generic path and reports it as a type mismatch.
func (assemble *AssembleColumnExpr) mismatch(expected storage.ValueKind) error {
	v, err := assemble.Evaluate()
	if err != nil {
		return err
	}
	return storage.NewTypeMismatch(expected, v)
}

func (assemble *AssembleColumnExpr) demote() {
	planLog.DebugF("column %s: first null seen, %s -> %s", assemble, assemble.tier, TierBoxed)
	assemble.tier = TierBoxed
}

func boxed(v storage.Value) (storage.Value, error) {
	return v, nil
}
