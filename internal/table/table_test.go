package table

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vvka-141/dsdist/pkg/dsdist"
)

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name    string
		columns []string
		rows    [][]Value
	}{
		{"empty column name", []string{"a", ""}, nil},
		{"duplicate column", []string{"a", "a"}, nil},
		{"short row", []string{"a", "b"}, [][]Value{{String("x")}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.columns, tt.rows)
			require.Error(t, err)
			assert.True(t, errors.Is(err, dsdist.ErrValidation))
		})
	}
}

func TestFromRecords(t *testing.T) {
	tbl, err := FromRecords([]string{"image_path", "label"}, [][]interface{}{
		{"a.tif", 1},
		{"b.tif", nil},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"image_path", "label"}, tbl.Columns())
	assert.Equal(t, 2, tbl.Len())
	assert.True(t, tbl.HasColumn("label"))
	assert.False(t, tbl.HasColumn("missing"))

	text, ok := tbl.Cell(0, "image_path").Text()
	require.True(t, ok)
	assert.Equal(t, "a.tif", text)
	assert.True(t, tbl.Cell(1, "label").IsNull())
	assert.True(t, tbl.Cell(5, "label").IsNull())
	assert.True(t, tbl.Cell(0, "missing").IsNull())
}

func TestWriteCSV(t *testing.T) {
	tbl, err := FromRecords([]string{"path", "n", "ok"}, [][]interface{}{
		{"a,b.tif", 1.5, true},
		{"c.tif", nil, false},
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, tbl.WriteCSV(&buf))
	assert.Equal(t, "path,n,ok\n\"a,b.tif\",1.5,True\nc.tif,,False\n", buf.String())
}
