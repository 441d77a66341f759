// Package table holds the immutable tabular dataset description that dsdist
// distributes: ordered, uniquely named columns and rows of scalar cells.
//
// Cells are Values, a closed tagged union (Null, String, Number, Bool) decided
// when the table is built. Inputs that cannot be represented as a JSON
// primitive are kept as Opaque values so that a table can still carry them in
// columns that are never distributed; they are rejected only when a consumer
// asks for their JSON form.
//
// Tables are built from CSV files, Parquet files (through arrow-go) or
// in-memory records. Load dispatches on the source type:
//
//	tbl, err := table.Load(fsProvider, "data/example.csv")
//	tbl, err := table.Load(fsProvider, existingTable)
//
// Tables are read-only after construction and safe for concurrent reads.
package table
