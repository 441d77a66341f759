package table

import (
	"bytes"
	"context"
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
)

// ReadParquet decodes a Parquet file held in memory.
// Strings, booleans and floats map onto their Value variants and integers
// of every width stay exact. Other logical types (dates, timestamps,
// decimals) are kept in their canonical text form. Binary columns are Opaque.
func ReadParquet(ctx context.Context, data []byte) (*Table, error) {
	pf, err := file.NewParquetReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet data: %w", err)
	}
	defer pf.Close()

	fr, err := pqarrow.NewFileReader(pf, pqarrow.ArrowReadProperties{}, memory.DefaultAllocator)
	if err != nil {
		return nil, fmt.Errorf("failed to create arrow reader: %w", err)
	}

	tbl, err := fr.ReadTable(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read parquet table: %w", err)
	}
	defer tbl.Release()

	schema := tbl.Schema()
	columns := make([]string, schema.NumFields())
	for i, field := range schema.Fields() {
		columns[i] = field.Name
	}

	rows := make([][]Value, tbl.NumRows())
	for r := range rows {
		rows[r] = make([]Value, len(columns))
	}

	for c := 0; c < int(tbl.NumCols()); c++ {
		offset := 0
		for _, chunk := range tbl.Column(c).Data().Chunks() {
			for i := 0; i < chunk.Len(); i++ {
				rows[offset+i][c] = arrowValue(chunk, i)
			}
			offset += chunk.Len()
		}
	}

	return New(columns, rows)
}

func arrowValue(arr arrow.Array, i int) Value {
	if arr.IsNull(i) {
		return Null()
	}

	switch a := arr.(type) {
	case *array.String:
		return String(a.Value(i))
	case *array.LargeString:
		return String(a.Value(i))
	case *array.Boolean:
		return Bool(a.Value(i))
	case *array.Int8:
		return Int(int64(a.Value(i)))
	case *array.Int16:
		return Int(int64(a.Value(i)))
	case *array.Int32:
		return Int(int64(a.Value(i)))
	case *array.Int64:
		return Int(a.Value(i))
	case *array.Uint8:
		return Uint(uint64(a.Value(i)))
	case *array.Uint16:
		return Uint(uint64(a.Value(i)))
	case *array.Uint32:
		return Uint(uint64(a.Value(i)))
	case *array.Uint64:
		return Uint(a.Value(i))
	case *array.Float32:
		return Number(float64(a.Value(i)))
	case *array.Float64:
		return Number(a.Value(i))
	case *array.Binary:
		return ValueOf(append([]byte(nil), a.Value(i)...))
	}
	return String(arr.ValueStr(i))
}
