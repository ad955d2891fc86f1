package spreadsheet

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var updated = time.Date(2025, 8, 4, 9, 30, 0, 0, time.UTC)

// writeWorkbook saves a workbook with one sheet per entry of sheets, in order.
func writeWorkbook(t *testing.T, sheets []string, rows map[string][][]interface{}) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for i, name := range sheets {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", name))
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		for r, row := range rows[name] {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(name, cell, &row))
		}
	}

	path := filepath.Join(t.TempDir(), "parameters.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestReadSheet(t *testing.T) {
	path := writeWorkbook(t, []string{"Jan"}, map[string][][]interface{}{
		"Jan": {
			{"Param Name", " Negative ", "Proof Reqd", "Value", "Updated", "Count"},
			{"alpha", 0, true, 1.5, updated, 3},
			{"beta", "N", false, 2.25, updated, 4},
		},
	})

	wb, err := Open(path)
	require.NoError(t, err)
	defer wb.Close()

	assert.Equal(t, []string{"Jan"}, wb.SheetNames())

	rs, err := wb.ReadSheet("Jan")
	require.NoError(t, err)
	assert.Equal(t, []string{"Param Name", " Negative ", "Proof Reqd", "Value", "Updated", "Count"}, rs.Columns)
	require.Equal(t, 2, rs.Len())

	first := rs.Rows[0]
	assert.Equal(t, "alpha", first[0])
	assert.Equal(t, int64(0), first[1])
	assert.Equal(t, true, first[2])
	assert.Equal(t, 1.5, first[3])
	require.IsType(t, time.Time{}, first[4])
	assert.Equal(t, "2025-08-04 09:30:00", first[4].(time.Time).Format("2006-01-02 15:04:05"))
	assert.Equal(t, int64(3), first[5])

	assert.Equal(t, "N", rs.Rows[1][1])
	assert.Equal(t, false, rs.Rows[1][2])
}

func TestReadSheetMissingCellsAndBlankRows(t *testing.T) {
	path := writeWorkbook(t, []string{"Data"}, map[string][][]interface{}{
		"Data": {
			{"a", "", "a", "b"},
			{"x"},
			{},
			{"y", nil, nil, nil, "extra"},
		},
	})

	wb, err := Open(path)
	require.NoError(t, err)
	defer wb.Close()

	rs, err := wb.ReadSheet("Data")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "Unnamed: 1", "a.1", "b", "Unnamed: 4"}, rs.Columns)
	assert.Equal(t, [][]any{
		{"x", nil, nil, nil, nil},
		{"y", nil, nil, nil, "extra"},
	}, rs.Rows)
}

func TestReadSheetWithoutHeader(t *testing.T) {
	path := writeWorkbook(t, []string{"Empty"}, nil)

	wb, err := Open(path)
	require.NoError(t, err)
	defer wb.Close()

	_, err = wb.ReadSheet("Empty")
	assert.ErrorIs(t, err, ErrNoHeader)

	var werr *WorkbookError
	require.True(t, errors.As(err, &werr))
	assert.Equal(t, "Empty", werr.Sheet)
}

func TestOpenMissingWorkbook(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.xlsx"))
	var werr *WorkbookError
	assert.True(t, errors.As(err, &werr))
}

func TestHeaderNames(t *testing.T) {
	assert.Equal(t,
		[]string{"a", "Unnamed: 1", "a.1", "a.2", "Unnamed: 4"},
		headerNames([]string{"a", " ", "a", "a"}, 5))
	assert.Equal(t,
		[]string{"A", "A.1", "A.1.1"},
		headerNames([]string{"A", "A", "A.1"}, 3))
	assert.Equal(t,
		[]string{"A", "A.1", "A.2"},
		headerNames([]string{"A", "A.1", "A"}, 3))
}

func TestIsDateFormat(t *testing.T) {
	tests := []struct {
		code     string
		expected bool
	}{
		{"yyyy-mm-dd", true},
		{"dd/mm/yyyy hh:mm", true},
		{"h:mm AM/PM", true},
		{"General", false},
		{"0.00", false},
		{"#,##0", false},
		{"[Red]0.00", false},
		{`"Days "0`, false},
		{`0\d`, false},
		{"0.00E+00", false},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, isDateFormat(tt.code))
		})
	}
}

func TestIsBuiltInDateFormat(t *testing.T) {
	assert.True(t, isBuiltInDateFormat(14))
	assert.True(t, isBuiltInDateFormat(22))
	assert.True(t, isBuiltInDateFormat(46))
	assert.False(t, isBuiltInDateFormat(2))
	assert.False(t, isBuiltInDateFormat(49))
}
