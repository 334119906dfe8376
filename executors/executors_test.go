package executors

import (
	"bytes"
	"github.com/stretchr/testify/assert"
	"github.com/xiaobogaga/colsql/storage"
	"strings"
	"testing"
)

func TestCollector_CopiesRows(t *testing.T) {
	collector := &Collector{}
	row := []storage.Value{storage.LongValue(1), storage.Null}
	assert.Nil(t, collector.Accept(row))
	row[0] = storage.LongValue(2)
	assert.Nil(t, collector.Accept(row))
	assert.Len(t, collector.Rows, 2)
	assert.Equal(t, []storage.Value{storage.LongValue(1), storage.LongValue(2)}, collector.Column(0))
	assert.Equal(t, []storage.Value{storage.Null, storage.Null}, collector.Column(1))
}

func TestTableWriter_Render(t *testing.T) {
	buf := new(bytes.Buffer)
	writer := NewTableWriter(buf, "id", "name", "score")
	assert.Nil(t, writer.Accept([]storage.Value{storage.LongValue(1), storage.TextValue("alice"), storage.DoubleValue(0.5)}))
	assert.Nil(t, writer.Accept([]storage.Value{storage.LongValue(2), storage.Null, storage.BoolValue(true)}))
	assert.Equal(t, 2, writer.Rows())
	out := writer.Render()
	assert.Equal(t, out, strings.TrimSuffix(buf.String(), "\n"))
	for _, s := range []string{"ID", "NAME", "SCORE", "alice", "0.5", "NULL", "true"} {
		assert.Contains(t, out, s)
	}
}
