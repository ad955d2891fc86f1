package spreadsheet

import (
	"fmt"
	"strings"

	db "github.com/KazanKK/pgtransfer/database"
)

// DefaultBooleanColumns are coerced to boolean on import.
var DefaultBooleanColumns = []string{"negative", "proof_reqd"}

// NormalizeColumnName trims, lowercases and replaces spaces with underscores.
func NormalizeColumnName(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}

// NormalizeColumns rewrites every column name of rs in place. Two columns that
// normalize to the same name are an error.
func NormalizeColumns(rs *db.RowSet) error {
	seen := make(map[string]string, len(rs.Columns))
	for i, col := range rs.Columns {
		name := NormalizeColumnName(col)
		if prev, ok := seen[name]; ok {
			return fmt.Errorf("columns %q and %q both normalize to %q", prev, col, name)
		}
		seen[name] = col
		rs.Columns[i] = name
	}
	return nil
}

// CoerceBool maps a null to false and any other value to true.
//
// NOTE: this is deliberately literal: 0, "0", "" and "N" are all true.
func CoerceBool(v any) bool {
	return v != nil
}

// CoerceBooleans replaces the values of the named columns with CoerceBool.
// Columns missing from rs are ignored.
func CoerceBooleans(rs *db.RowSet, columns ...string) {
	for _, col := range columns {
		idx := rs.ColumnIndex(col)
		if idx < 0 {
			continue
		}
		for _, row := range rs.Rows {
			row[idx] = CoerceBool(row[idx])
		}
	}
}
