package storage

import (
	"errors"
	"fmt"
	"github.com/xiaobogaga/colsql/util"
)

// PrimitiveKind is the physical type of a leaf column. Int32 and int64 are both long, float and double are both
// double, byte arrays are text.
type PrimitiveKind byte

const (
	UnknownPrimitive PrimitiveKind = iota
	BooleanPrimitive
	LongPrimitive
	DoublePrimitive
	TextPrimitive
)

var primitiveKindNames = map[PrimitiveKind]string{
	UnknownPrimitive: "unknown",
	BooleanPrimitive: "boolean",
	LongPrimitive:    "long",
	DoublePrimitive:  "double",
	TextPrimitive:    "text",
}

func (kind PrimitiveKind) String() string {
	return primitiveKindNames[kind]
}

// ValueKind returns the kind of the values read from a column of this physical kind.
func (kind PrimitiveKind) ValueKind() ValueKind {
	switch kind {
	case BooleanPrimitive:
		return BoolKind
	case LongPrimitive:
		return LongKind
	case DoublePrimitive:
		return DoubleKind
	case TextPrimitive:
		return TextKind
	default:
		return NullKind
	}
}

type Repetition byte

const (
	RequiredRepetition Repetition = iota
	OptionalRepetition
	RepeatedRepetition
)

var (
	ErrColumnNotFound    = errors.New("column not found")
	ErrUnsupportedColumn = errors.New("unsupported column")
)

// ColumnBinding is what an expression needs to know about one leaf column. It's resolved once when the expression
// tree is built and never changes.
type ColumnBinding struct {
	Path []string
	Kind PrimitiveKind
	// Optional is true when the value can be absent for a row, that is when the leaf or any of its ancestors
	// is optional.
	Optional           bool
	MaxDefinitionLevel int
	ColumnIndex        int
}

func (binding ColumnBinding) String() string {
	return util.BuildDotString(binding.Path...)
}

// Schema resolves field paths to column bindings.
type Schema interface {
	Resolve(path ...string) (ColumnBinding, error)
}

// Field is a node of a MessageSchema: a leaf column when Fields is empty, a group otherwise.
type Field struct {
	Name       string
	Repetition Repetition
	Kind       PrimitiveKind
	Fields     []*Field
}

func Required(name string, kind PrimitiveKind) *Field {
	return &Field{Name: name, Repetition: RequiredRepetition, Kind: kind}
}

func Optional(name string, kind PrimitiveKind) *Field {
	return &Field{Name: name, Repetition: OptionalRepetition, Kind: kind}
}

func Repeated(name string, kind PrimitiveKind) *Field {
	return &Field{Name: name, Repetition: RepeatedRepetition, Kind: kind}
}

func Group(name string, repetition Repetition, fields ...*Field) *Field {
	return &Field{Name: name, Repetition: repetition, Fields: fields}
}

func (field *Field) IsLeaf() bool {
	return len(field.Fields) == 0
}

// MessageSchema is the root of a record schema. Leaf columns are numbered in depth first order, the same order
// columnar files store their column chunks in.
type MessageSchema struct {
	Name   string
	Fields []*Field
}

func NewMessageSchema(name string, fields ...*Field) *MessageSchema {
	return &MessageSchema{Name: name, Fields: fields}
}

func (schema *MessageSchema) Resolve(path ...string) (ColumnBinding, error) {
	if len(path) == 0 {
		return ColumnBinding{}, fmt.Errorf("%w: empty path", ErrColumnNotFound)
	}
	fields := schema.Fields
	columnIndex, definitionLevel, repeated := 0, 0, false
	for i, name := range path {
		var found *Field
		for _, field := range fields {
			if field.Name == name {
				found = field
				break
			}
			columnIndex += countLeaves(field)
		}
		if found == nil {
			return ColumnBinding{}, fmt.Errorf("%w: %s in %s", ErrColumnNotFound, util.BuildDotString(path...), schema.Name)
		}
		switch found.Repetition {
		case OptionalRepetition:
			definitionLevel++
		case RepeatedRepetition:
			definitionLevel++
			repeated = true
		}
		if i < len(path)-1 {
			if found.IsLeaf() {
				return ColumnBinding{}, fmt.Errorf("%w: %s in %s", ErrColumnNotFound, util.BuildDotString(path...), schema.Name)
			}
			fields = found.Fields
			continue
		}
		if !found.IsLeaf() {
			return ColumnBinding{}, fmt.Errorf("%w: %s is a group", ErrUnsupportedColumn, util.BuildDotString(path...))
		}
		if repeated {
			return ColumnBinding{}, fmt.Errorf("%w: %s is repeated", ErrUnsupportedColumn, util.BuildDotString(path...))
		}
		if found.Kind == UnknownPrimitive {
			return ColumnBinding{}, fmt.Errorf("%w: %s has an unsupported physical type", ErrUnsupportedColumn,
				util.BuildDotString(path...))
		}
		return ColumnBinding{
			Path:               append([]string(nil), path...),
			Kind:               found.Kind,
			Optional:           definitionLevel > 0,
			MaxDefinitionLevel: definitionLevel,
			ColumnIndex:        columnIndex,
		}, nil
	}
	panic("unreachable")
}

func countLeaves(field *Field) int {
	if field.IsLeaf() {
		return 1
	}
	ret := 0
	for _, child := range field.Fields {
		ret += countLeaves(child)
	}
	return ret
}

// Columns returns the dotted paths of the leaf columns that resolve, in column order.
func (schema *MessageSchema) Columns() []string {
	var ret []string
	var walk func(prefix []string, fields []*Field)
	walk = func(prefix []string, fields []*Field) {
		for _, field := range fields {
			path := append(append([]string(nil), prefix...), field.Name)
			if !field.IsLeaf() {
				walk(path, field.Fields)
				continue
			}
			if _, err := schema.Resolve(path...); err == nil {
				ret = append(ret, util.BuildDotString(path...))
			}
		}
	}
	walk(nil, schema.Fields)
	return ret
}
