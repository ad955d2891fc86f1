package db

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Layouts used for time values in exported files. CSVTimeLayout applies to
// columns that carry a zone.
const (
	CSVTimeLayout      = "2006-01-02 15:04:05.999999-07:00"
	CSVLocalTimeLayout = "2006-01-02 15:04:05.999999"
	CSVDateLayout      = "2006-01-02"
)

// ListTables returns the base tables of a schema in catalog order.
func (m *Manager) ListTables(ctx context.Context, schema string) ([]string, error) {
	if m.DB == nil {
		return nil, errNoConnection
	}
	schema = m.schemaOrDefault(schema)

	query := m.dialect.TablesQuery()
	rows, err := m.DB.QueryContext(ctx, query, schema)
	if err != nil {
		return nil, &QueryError{Query: query, Err: err}
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var tableName string
		if err := rows.Scan(&tableName); err != nil {
			return nil, &QueryError{Query: query, Err: fmt.Errorf("scanning table name: %w", err)}
		}
		tables = append(tables, tableName)
	}
	if err := rows.Err(); err != nil {
		return nil, &QueryError{Query: query, Err: err}
	}
	return tables, nil
}

// CountRows returns the number of rows in a table.
func (m *Manager) CountRows(ctx context.Context, schema, table string) (int64, error) {
	if m.DB == nil {
		return 0, errNoConnection
	}
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", m.qualify(m.schemaOrDefault(schema), table))
	m.logSQL(fmt.Sprintf("Count Table %s", table), query)

	var count int64
	if err := m.DB.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, &QueryError{Table: table, Query: query, Err: err}
	}
	return count, nil
}

// ExportToCSV writes every base table of schema to <outputDir>/<table>.csv.
// The first failing table aborts the export.
func (m *Manager) ExportToCSV(ctx context.Context, schema, outputDir string) error {
	if m.DB == nil {
		return errNoConnection
	}
	schema = m.schemaOrDefault(schema)

	tables, err := m.ListTables(ctx, schema)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return &FileWriteError{Path: outputDir, Err: err}
	}

	for _, tableName := range tables {
		if err := m.exportTableToCSV(ctx, schema, tableName, outputDir); err != nil {
			return fmt.Errorf("exporting table %s: %w", tableName, err)
		}
		m.log("✅ Exported %s.csv", tableName)
	}

	return nil
}

func (m *Manager) exportTableToCSV(ctx context.Context, schema, tableName, outputDir string) (err error) {
	csvPath, err := csvFilePath(outputDir, tableName)
	if err != nil {
		return err
	}

	query := fmt.Sprintf("SELECT * FROM %s", m.qualify(schema, tableName))
	m.logSQL(fmt.Sprintf("Export Table %s", tableName), query)

	dataRows, err := m.DB.QueryContext(ctx, query)
	if err != nil {
		return &QueryError{Table: tableName, Query: query, Err: err}
	}
	defer dataRows.Close()

	columns, err := dataRows.Columns()
	if err != nil {
		return &QueryError{Table: tableName, Query: query, Err: err}
	}
	columnTypes, err := dataRows.ColumnTypes()
	if err != nil {
		return &QueryError{Table: tableName, Query: query, Err: err}
	}
	typeNames := make([]string, len(columnTypes))
	for i, ct := range columnTypes {
		typeNames[i] = strings.ToUpper(ct.DatabaseTypeName())
	}

	file, err := os.Create(csvPath)
	if err != nil {
		return &FileWriteError{Path: csvPath, Err: err}
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = &FileWriteError{Path: csvPath, Err: cerr}
		}
	}()

	writer := csv.NewWriter(file)
	if err := writer.Write(columns); err != nil {
		return &FileWriteError{Path: csvPath, Err: fmt.Errorf("writing CSV header: %w", err)}
	}

	values := make([]interface{}, len(columns))
	valuePtrs := make([]interface{}, len(columns))
	for i := range values {
		valuePtrs[i] = &values[i]
	}

	record := make([]string, len(columns))
	for dataRows.Next() {
		if err := dataRows.Scan(valuePtrs...); err != nil {
			return &QueryError{Table: tableName, Query: query, Err: fmt.Errorf("scanning row: %w", err)}
		}
		for i, val := range values {
			record[i] = formatCSVValue(val, typeNames[i])
		}
		if err := writer.Write(record); err != nil {
			return &FileWriteError{Path: csvPath, Err: fmt.Errorf("writing CSV row: %w", err)}
		}
	}
	if err := dataRows.Err(); err != nil {
		return &QueryError{Table: tableName, Query: query, Err: err}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return &FileWriteError{Path: csvPath, Err: err}
	}
	return nil
}

// csvFilePath returns <outputDir>/<table>.csv. Table names come from the
// catalog and must not lead outside outputDir.
func csvFilePath(outputDir, tableName string) (string, error) {
	csvPath := filepath.Join(outputDir, tableName+".csv")
	if tableName == "" || strings.ContainsAny(tableName, "/\\\x00") || filepath.Dir(csvPath) != filepath.Clean(outputDir) {
		return "", &FileWriteError{Path: csvPath, Err: fmt.Errorf("table name %q is not a valid file name", tableName)}
	}
	return csvPath, nil
}

// formatCSVValue renders a scanned value as a CSV field. NULL becomes an
// empty field. dbType is the column's database type name and decides how
// time values are written.
func formatCSVValue(val interface{}, dbType string) string {
	switch v := val.(type) {
	case nil:
		return ""
	case []byte:
		return string(v)
	case string:
		return v
	case time.Time:
		switch dbType {
		case "DATE":
			return v.Format(CSVDateLayout)
		case "TIMESTAMP", "DATETIME":
			return v.Format(CSVLocalTimeLayout)
		}
		return v.Format(CSVTimeLayout)
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return fmt.Sprintf("%v", v)
	}
}
