package db

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// insertBatchRows caps the rows sent in one INSERT statement.
	insertBatchRows = 500
	// maxBindParams stays under the PostgreSQL limit of 65535 parameters.
	maxBindParams = 65000
)

// ReplaceTable drops table, recreates it with a column type per column
// inferred from the row set, and inserts every row. All steps share one
// transaction.
func (m *Manager) ReplaceTable(ctx context.Context, schema, table string, rows *RowSet) error {
	if m.DB == nil {
		return errNoConnection
	}
	if rows == nil || len(rows.Columns) == 0 {
		return &SchemaReplaceError{Table: table, Stage: "create", Err: errors.New("row set has no columns")}
	}
	schema = m.schemaOrDefault(schema)
	target := m.qualify(schema, table)
	kinds := rows.ColumnKinds()

	tx, err := m.DB.BeginTx(ctx, nil)
	if err != nil {
		return &SchemaReplaceError{Table: table, Stage: "begin", Err: err}
	}
	defer tx.Rollback()

	dropSQL := fmt.Sprintf("DROP TABLE IF EXISTS %s", target)
	m.logSQL(fmt.Sprintf("Drop Table %s", table), dropSQL)
	if _, err := tx.ExecContext(ctx, dropSQL); err != nil {
		return &SchemaReplaceError{Table: table, Stage: "drop", Err: err}
	}

	createSQL := m.createTableSQL(target, rows.Columns, kinds)
	m.logSQL(fmt.Sprintf("Create Table %s", table), createSQL)
	if _, err := tx.ExecContext(ctx, createSQL); err != nil {
		return &SchemaReplaceError{Table: table, Stage: "create", Err: err}
	}

	batch := insertBatchRows
	if perRow := maxBindParams / len(rows.Columns); perRow < batch {
		batch = perRow
	}
	if batch < 1 {
		batch = 1
	}

	for start := 0; start < len(rows.Rows); start += batch {
		end := start + batch
		if end > len(rows.Rows) {
			end = len(rows.Rows)
		}
		insertSQL, args := m.insertSQL(target, rows.Columns, kinds, rows.Rows[start:end])
		if _, err := tx.ExecContext(ctx, insertSQL, args...); err != nil {
			return &SchemaReplaceError{Table: table, Stage: "insert", Err: fmt.Errorf("rows %d-%d: %w", start+1, end, err)}
		}
	}

	if err := tx.Commit(); err != nil {
		return &SchemaReplaceError{Table: table, Stage: "commit", Err: err}
	}

	m.log("Replaced table %s with %d rows", table, len(rows.Rows))
	return nil
}

func (m *Manager) createTableSQL(target string, columns []string, kinds []ValueKind) string {
	defs := make([]string, len(columns))
	for i, col := range columns {
		defs[i] = m.dialect.QuoteIdentifier(col) + " " + m.dialect.ColumnType(kinds[i])
	}
	return fmt.Sprintf("CREATE TABLE %s (\n  %s\n)", target, strings.Join(defs, ",\n  "))
}

func (m *Manager) insertSQL(target string, columns []string, kinds []ValueKind, rows [][]any) (string, []any) {
	quoted := make([]string, len(columns))
	for i, col := range columns {
		quoted[i] = m.dialect.QuoteIdentifier(col)
	}

	args := make([]any, 0, len(rows)*len(columns))
	tuples := make([]string, len(rows))
	placeholders := make([]string, len(columns))
	for r, row := range rows {
		for c := range columns {
			args = append(args, insertValue(row[c], kinds[c]))
			placeholders[c] = m.dialect.Placeholder(len(args))
		}
		tuples[r] = "(" + strings.Join(placeholders, ", ") + ")"
	}

	return fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
		target, strings.Join(quoted, ", "), strings.Join(tuples, ", ")), args
}

// insertValue converts v to the Go type matching its column kind.
func insertValue(v any, kind ValueKind) any {
	if v == nil {
		return nil
	}
	switch kind {
	case KindText:
		return textValue(v)
	case KindFloat:
		switch n := v.(type) {
		case int64:
			return float64(n)
		case int:
			return float64(n)
		case float32:
			return float64(n)
		}
	case KindInteger:
		if n, ok := v.(int); ok {
			return int64(n)
		}
	}
	return v
}

func textValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case time.Time:
		return t.Format(time.RFC3339Nano)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", t)
	}
}
