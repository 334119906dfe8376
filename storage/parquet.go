package storage

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/parquet-go/parquet-go"
)

const parquetValueBufferSize = 1024

// ParquetStore is a ReadStore over a parquet file. A cursor walks the column chunk of every row group in order, so
// the file looks like a single column per leaf.
type ParquetStore struct {
	file   *parquet.File
	schema *MessageSchema
	closer io.Closer
}

// OpenParquetFile opens the parquet file at path. The store must be closed.
func OpenParquetFile(path string) (*ParquetStore, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to get file stats: %w", err)
	}
	store, err := NewParquetStore(f, stat.Size())
	if err != nil {
		f.Close()
		return nil, err
	}
	store.closer = f
	return store, nil
}

func NewParquetStore(r io.ReaderAt, size int64) (*ParquetStore, error) {
	file, err := parquet.OpenFile(r, size)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	return &ParquetStore{file: file, schema: SchemaFromParquet(file.Schema())}, nil
}

func (store *ParquetStore) Schema() *MessageSchema {
	return store.schema
}

func (store *ParquetStore) NumRows() int64 {
	return store.file.NumRows()
}

func (store *ParquetStore) Close() error {
	if store.closer == nil {
		return nil
	}
	return store.closer.Close()
}

func (store *ParquetStore) ColumnCursor(binding ColumnBinding) (ColumnCursor, error) {
	leaf, ok := store.file.Schema().Lookup(binding.Path...)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrColumnNotFound, binding)
	}
	cursor := &parquetCursor{
		path: binding.String(),
		kind: leaf.Node.Type().Kind(),
		buf:  make([]parquet.Value, parquetValueBufferSize),
	}
	for _, rowGroup := range store.file.RowGroups() {
		chunk := rowGroup.ColumnChunks()[leaf.ColumnIndex]
		cursor.chunks = append(cursor.chunks, chunk)
		cursor.total += chunk.NumValues()
	}
	if err := cursor.load(); err != nil {
		return nil, err
	}
	return cursor, nil
}

// SchemaFromParquet converts a parquet schema. Leaves of a physical type the engine can't read (int96) are kept with
// UnknownPrimitive so column numbering still matches the file.
func SchemaFromParquet(schema *parquet.Schema) *MessageSchema {
	return NewMessageSchema(schema.Name(), fieldsFromParquet(schema.Fields())...)
}

func fieldsFromParquet(fields []parquet.Field) []*Field {
	ret := make([]*Field, 0, len(fields))
	for _, field := range fields {
		f := &Field{Name: field.Name(), Repetition: RequiredRepetition}
		switch {
		case field.Optional():
			f.Repetition = OptionalRepetition
		case field.Repeated():
			f.Repetition = RepeatedRepetition
		}
		if field.Leaf() {
			f.Kind = primitiveFromParquet(field.Type().Kind())
		} else {
			f.Fields = fieldsFromParquet(field.Fields())
		}
		ret = append(ret, f)
	}
	return ret
}

func primitiveFromParquet(kind parquet.Kind) PrimitiveKind {
	switch kind {
	case parquet.Boolean:
		return BooleanPrimitive
	case parquet.Int32, parquet.Int64:
		return LongPrimitive
	case parquet.Float, parquet.Double:
		return DoublePrimitive
	case parquet.ByteArray, parquet.FixedLenByteArray:
		return TextPrimitive
	default:
		return UnknownPrimitive
	}
}

type parquetCursor struct {
	path   string
	kind   parquet.Kind
	chunks []parquet.ColumnChunk
	total  int64

	chunk  int
	pages  parquet.Pages
	values parquet.ValueReader

	buf       []parquet.Value
	n, i      int
	exhausted bool
}

func (cursor *parquetCursor) current() parquet.Value {
	if cursor.exhausted {
		return parquet.Value{}
	}
	return cursor.buf[cursor.i]
}

func (cursor *parquetCursor) DefinitionLevel() int {
	return cursor.current().DefinitionLevel()
}

func (cursor *parquetCursor) Bool() bool {
	return cursor.current().Boolean()
}

func (cursor *parquetCursor) Long() int64 {
	v := cursor.current()
	if cursor.kind == parquet.Int32 {
		return int64(v.Int32())
	}
	return v.Int64()
}

func (cursor *parquetCursor) Double() float64 {
	v := cursor.current()
	if cursor.kind == parquet.Float {
		return float64(v.Float())
	}
	return v.Double()
}

func (cursor *parquetCursor) Bytes() []byte {
	return cursor.current().ByteArray()
}

func (cursor *parquetCursor) Consume() error {
	if cursor.exhausted {
		return ErrCursorExhausted
	}
	cursor.i++
	return cursor.load()
}

func (cursor *parquetCursor) TotalValueCount() int64 {
	return cursor.total
}

// load makes buf[i] the current value, reading the next page or the next row group's chunk when needed.
func (cursor *parquetCursor) load() error {
	for cursor.i >= cursor.n {
		if cursor.values != nil {
			n, err := cursor.values.ReadValues(cursor.buf)
			if n > 0 {
				cursor.n, cursor.i = n, 0
				return nil
			}
			if err != nil && !errors.Is(err, io.EOF) {
				return fmt.Errorf("read column %s: %w", cursor.path, err)
			}
			cursor.values = nil
		}
		if cursor.pages != nil {
			page, err := cursor.pages.ReadPage()
			if err == nil {
				cursor.values = page.Values()
				continue
			}
			if !errors.Is(err, io.EOF) {
				return fmt.Errorf("read page of column %s: %w", cursor.path, err)
			}
			cursor.pages.Close()
			cursor.pages = nil
		}
		if cursor.chunk >= len(cursor.chunks) {
			cursor.exhausted = true
			return nil
		}
		cursor.pages = cursor.chunks[cursor.chunk].Pages()
		cursor.chunk++
	}
	return nil
}
