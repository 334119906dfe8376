package storage

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

type ValueKind byte

const (
	NullKind ValueKind = iota
	BoolKind
	LongKind
	DoubleKind
	TextKind
)

var valueKindNames = map[ValueKind]string{
	NullKind:   "null",
	BoolKind:   "bool",
	LongKind:   "long",
	DoubleKind: "double",
	TextKind:   "text",
}

func (kind ValueKind) String() string {
	name, ok := valueKindNames[kind]
	if !ok {
		return fmt.Sprintf("kind(%d)", byte(kind))
	}
	return name
}

// Value is the scalar every expression produces for a row. bool, long and double payloads are kept in bits so a
// Value is comparable with ==, which compares kind and payload, the identity used by the generic operator paths.
type Value struct {
	kind ValueKind
	bits uint64
	text string
}

// Null is the only null value. It carries no type.
var Null = Value{}

func BoolValue(v bool) Value {
	if v {
		return Value{kind: BoolKind, bits: 1}
	}
	return Value{kind: BoolKind}
}

func LongValue(v int64) Value {
	return Value{kind: LongKind, bits: uint64(v)}
}

func DoubleValue(v float64) Value {
	return Value{kind: DoubleKind, bits: math.Float64bits(v)}
}

func TextValue(v string) Value {
	return Value{kind: TextKind, text: v}
}

func (v Value) Kind() ValueKind { return v.kind }

func (v Value) IsNull() bool { return v.kind == NullKind }

var ErrTypeMismatch = errors.New("type mismatch")

// TypeMismatchError is returned when a precise type is requested from a value of another kind. Value is the result
// that was actually produced, so the caller can go on with it instead of evaluating again.
type TypeMismatchError struct {
	Expected ValueKind
	Value    Value
}

func (err *TypeMismatchError) Error() string {
	return fmt.Sprintf("type mismatch: expect %s, got %s", err.Expected, err.Value.Kind())
}

func (err *TypeMismatchError) Unwrap() error {
	return ErrTypeMismatch
}

func NewTypeMismatch(expected ValueKind, got Value) error {
	return &TypeMismatchError{Expected: expected, Value: got}
}

// MismatchValue extracts the produced value from a type mismatch error.
func MismatchValue(err error) (Value, bool) {
	var mismatch *TypeMismatchError
	if errors.As(err, &mismatch) {
		return mismatch.Value, true
	}
	return Null, false
}

func (v Value) AsBool() (bool, error) {
	if v.kind != BoolKind {
		return false, NewTypeMismatch(BoolKind, v)
	}
	return v.bits != 0, nil
}

func (v Value) AsLong() (int64, error) {
	if v.kind != LongKind {
		return 0, NewTypeMismatch(LongKind, v)
	}
	return int64(v.bits), nil
}

func (v Value) AsDouble() (float64, error) {
	if v.kind != DoubleKind {
		return 0, NewTypeMismatch(DoubleKind, v)
	}
	return math.Float64frombits(v.bits), nil
}

func (v Value) AsText() (string, error) {
	if v.kind != TextKind {
		return "", NewTypeMismatch(TextKind, v)
	}
	return v.text, nil
}

func (v Value) String() string {
	switch v.kind {
	case BoolKind:
		return strconv.FormatBool(v.bits != 0)
	case LongKind:
		return strconv.FormatInt(int64(v.bits), 10)
	case DoubleKind:
		return strconv.FormatFloat(math.Float64frombits(v.bits), 'g', -1, 64)
	case TextKind:
		return v.text
	default:
		return "NULL"
	}
}

// InferenceValue parses a literal written in a query. The type is strict: true/false are bools,
// digits are longs, numbers with a dot or exponent are doubles, 'xxx' or "xxx" is text and null is Null.
func InferenceValue(data string) (Value, error) {
	data = strings.TrimSpace(data)
	if data == "" {
		return Null, errors.New("empty literal")
	}
	switch strings.ToLower(data) {
	case "null":
		return Null, nil
	case "true":
		return BoolValue(true), nil
	case "false":
		return BoolValue(false), nil
	}
	if len(data) >= 2 && (data[0] == '\'' || data[0] == '"') && data[len(data)-1] == data[0] {
		return TextValue(data[1 : len(data)-1]), nil
	}
	if v, err := strconv.ParseInt(data, 10, 64); err == nil {
		return LongValue(v), nil
	}
	if v, err := strconv.ParseFloat(data, 64); err == nil {
		return DoubleValue(v), nil
	}
	return Null, fmt.Errorf("cannot inference type of literal %s", data)
}
