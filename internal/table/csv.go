package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/vvka-141/dsdist/pkg/dsdist"
)

// nullTokens are the cell spellings read as a missing value.
var nullTokens = map[string]struct{}{
	"":     {},
	"NA":   {},
	"N/A":  {},
	"NULL": {},
	"null": {},
	"NaN":  {},
	"nan":  {},
	"None": {},
	"nil":  {},
}

func isNullToken(s string) bool {
	_, ok := nullTokens[strings.TrimSpace(s)]
	return ok
}

func parseBool(s string) (bool, bool) {
	switch strings.TrimSpace(s) {
	case "true", "True", "TRUE":
		return true, true
	case "false", "False", "FALSE":
		return false, true
	}
	return false, false
}

// parseNumber reads an integer exactly when it fits 64 bits and falls back
// to a finite float.
func parseNumber(s string) (Value, bool) {
	s = strings.TrimSpace(s)
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Int(i), true
	}
	if u, err := strconv.ParseUint(s, 10, 64); err == nil {
		return Uint(u), true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return Value{}, false
	}
	return Number(f), true
}

// inferColumn decides one Kind per column: Bool when every non-null cell is a
// boolean token, Number when every non-null cell parses as a number,
// String otherwise. A column of only nulls stays Null.
func inferColumn(records [][]string, c int) Kind {
	allBool, allNumber, seen := true, true, false
	for _, rec := range records {
		cell := rec[c]
		if isNullToken(cell) {
			continue
		}
		seen = true
		if _, ok := parseBool(cell); !ok {
			allBool = false
		}
		if _, ok := parseNumber(cell); !ok {
			allNumber = false
		}
		if !allBool && !allNumber {
			return KindString
		}
	}

	switch {
	case !seen:
		return KindNull
	case allBool:
		return KindBool
	case allNumber:
		return KindNumber
	}
	return KindString
}

func convertCell(cell string, kind Kind) Value {
	if isNullToken(cell) {
		return Null()
	}
	switch kind {
	case KindBool:
		b, _ := parseBool(cell)
		return Bool(b)
	case KindNumber:
		n, _ := parseNumber(cell)
		return n
	}
	return String(cell)
}

// ReadCSV reads a header row followed by data rows. Every row must have as
// many fields as the header. Column types are inferred per column.
func ReadCSV(r io.Reader, delimiter rune) (*Table, error) {
	reader := csv.NewReader(r)
	reader.Comma = delimiter

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("CSV has no header row: %w", dsdist.ErrValidation)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV rows: %w", err)
	}

	kinds := make([]Kind, len(header))
	for c := range header {
		kinds[c] = inferColumn(records, c)
	}

	rows := make([][]Value, len(records))
	for r, rec := range records {
		row := make([]Value, len(rec))
		for c, cell := range rec {
			row[c] = convertCell(cell, kinds[c])
		}
		rows[r] = row
	}

	return New(header, rows)
}
