package db

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ReadCSV loads a file written by ExportToCSV. The first record is the
// header and empty fields become NULL.
func ReadCSV(path string) (*RowSet, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("reading %s: file has no header", path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	rs := &RowSet{Columns: header}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		row := make([]any, len(record))
		for i, field := range record {
			if field != "" {
				row[i] = field
			}
		}
		rs.Rows = append(rs.Rows, row)
	}
	return rs, nil
}

// RestoreFromCSV replaces one table per <table>.csv file in directory, in
// file name order. Every column is restored as text. The first failing file
// stops the restore; tables already replaced stay replaced.
func (m *Manager) RestoreFromCSV(ctx context.Context, schema, directory string) (int, error) {
	if m.DB == nil {
		return 0, errNoConnection
	}

	files, err := filepath.Glob(filepath.Join(directory, "*.csv"))
	if err != nil {
		return 0, fmt.Errorf("listing CSV files: %w", err)
	}
	if len(files) == 0 {
		return 0, fmt.Errorf("no CSV files found in %s", directory)
	}
	sort.Strings(files)

	restored := 0
	for _, csvPath := range files {
		tableName := strings.TrimSuffix(filepath.Base(csvPath), ".csv")
		m.log("Importing data for table: %s", tableName)

		rows, err := ReadCSV(csvPath)
		if err != nil {
			return restored, err
		}
		if err := m.ReplaceTable(ctx, schema, tableName, rows); err != nil {
			return restored, fmt.Errorf("importing data for table %s: %w", tableName, err)
		}
		restored++
	}
	return restored, nil
}
