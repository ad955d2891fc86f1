package spreadsheet

import (
	"context"
	"fmt"
	"io"
	"os"

	db "github.com/KazanKK/pgtransfer/database"
)

// DefaultTable is the destination table for imported sheets.
const DefaultTable = "parameter_master"

// TableReplacer replaces a table's definition and contents with a row set.
type TableReplacer interface {
	ReplaceTable(ctx context.Context, schema, table string, rows *db.RowSet) error
}

// Importer loads every sheet of a workbook into one table. Each sheet replaces
// the table, so the last sheet wins.
type Importer struct {
	Target         TableReplacer
	Schema         string
	Table          string
	BooleanColumns []string
	LogJSON        bool
	Out            io.Writer
}

// NewImporter returns an importer with the default table, boolean columns and
// JSON logging to stdout.
func NewImporter(target TableReplacer) *Importer {
	return &Importer{
		Target:         target,
		Table:          DefaultTable,
		BooleanColumns: DefaultBooleanColumns,
		LogJSON:        true,
		Out:            os.Stdout,
	}
}

// ImportWorkbook imports the sheets of the workbook at path in order and
// returns how many were imported. The first failing sheet aborts the import.
func (im *Importer) ImportWorkbook(ctx context.Context, path string) (int, error) {
	wb, err := Open(path)
	if err != nil {
		return 0, err
	}
	defer wb.Close()

	imported := 0
	for _, name := range wb.SheetNames() {
		if err := im.importSheet(ctx, wb, name); err != nil {
			return imported, err
		}
		imported++
	}
	return imported, nil
}

func (im *Importer) importSheet(ctx context.Context, wb *Workbook, name string) error {
	fmt.Fprintf(im.Out, "\nImporting sheet: %s\n", name)

	rs, err := wb.ReadSheet(name)
	if err != nil {
		return err
	}
	if err := NormalizeColumns(rs); err != nil {
		return &WorkbookError{Path: wb.Path, Sheet: name, Err: err}
	}
	CoerceBooleans(rs, im.BooleanColumns...)

	if im.LogJSON {
		data, err := RecordsJSON(rs)
		if err != nil {
			return fmt.Errorf("converting sheet %s to JSON: %w", name, err)
		}
		fmt.Fprintln(im.Out, "Data in JSON format:")
		fmt.Fprintln(im.Out, string(data))
	}

	if err := im.Target.ReplaceTable(ctx, im.Schema, im.Table, rs); err != nil {
		return fmt.Errorf("importing sheet %s: %w", name, err)
	}
	return nil
}
