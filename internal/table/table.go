package table

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/vvka-141/dsdist/pkg/dsdist"
)

// Table is an ordered sequence of rows over uniquely named, ordered columns.
type Table struct {
	columns []string
	index   map[string]int
	rows    [][]Value
	source  string // file the table was read from, "" for in-memory tables
	baseDir string // directory relative file paths resolve against, "" = working directory
}

// New builds a table from already-typed cells.
// Column names must be unique and non-empty; every row must have one cell per column.
func New(columns []string, rows [][]Value) (*Table, error) {
	index := make(map[string]int, len(columns))
	for i, name := range columns {
		if name == "" {
			return nil, fmt.Errorf("column %d has an empty name: %w", i, dsdist.ErrValidation)
		}
		if _, dup := index[name]; dup {
			return nil, fmt.Errorf("duplicate column %q: %w", name, dsdist.ErrValidation)
		}
		index[name] = i
	}

	for r, row := range rows {
		if len(row) != len(columns) {
			return nil, fmt.Errorf("row %d has %d cells, expected %d: %w", r, len(row), len(columns), dsdist.ErrValidation)
		}
	}

	return &Table{
		columns: append([]string(nil), columns...),
		index:   index,
		rows:    rows,
	}, nil
}

// FromRecords builds a table from untyped cells, converting each through ValueOf.
func FromRecords(columns []string, records [][]interface{}) (*Table, error) {
	rows := make([][]Value, len(records))
	for r, rec := range records {
		row := make([]Value, len(rec))
		for c, cell := range rec {
			row[c] = ValueOf(cell)
		}
		rows[r] = row
	}
	return New(columns, rows)
}

// WithBaseDir returns a shallow copy of t whose relative paths resolve against dir.
func (t *Table) WithBaseDir(dir string) *Table {
	clone := *t
	clone.baseDir = dir
	return &clone
}

// Columns returns a copy of the column names in order.
func (t *Table) Columns() []string {
	return append([]string(nil), t.columns...)
}

// HasColumn reports whether name is a column of t.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Cell returns the value at row r in column name.
// Unknown columns and out-of-range rows yield Null.
func (t *Table) Cell(r int, name string) Value {
	c, ok := t.index[name]
	if !ok || r < 0 || r >= len(t.rows) {
		return Null()
	}
	return t.rows[r][c]
}

// Source returns the file the table was loaded from, or "" for in-memory tables.
func (t *Table) Source() string { return t.source }

// BaseDir returns the directory relative paths resolve against ("" = working directory).
func (t *Table) BaseDir() string { return t.baseDir }

// WriteCSV writes the table, header first, as CSV.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	record := make([]string, len(t.columns))
	for r, row := range t.rows {
		for c, cell := range row {
			record[c] = cell.String()
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write row %d: %w", r, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
