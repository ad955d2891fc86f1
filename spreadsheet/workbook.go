// Package spreadsheet reads workbook sheets into row sets and loads them into
// a database table.
package spreadsheet

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	db "github.com/KazanKK/pgtransfer/database"
	"github.com/xuri/excelize/v2"
)

// ErrNoHeader is returned for a sheet that has no header row.
var ErrNoHeader = errors.New("sheet has no header row")

// WorkbookError wraps a failure to open or read a workbook or one of its sheets.
type WorkbookError struct {
	Path  string
	Sheet string
	Err   error
}

func (e *WorkbookError) Error() string {
	if e.Sheet == "" {
		return fmt.Sprintf("reading workbook %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("reading sheet %q of %s: %v", e.Sheet, e.Path, e.Err)
}

func (e *WorkbookError) Unwrap() error { return e.Err }

// Workbook is an open spreadsheet file.
type Workbook struct {
	Path string

	f          *excelize.File
	date1904   bool
	dateStyles map[int]bool
}

// Open opens the workbook at path.
func Open(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, &WorkbookError{Path: path, Err: err}
	}
	wb := &Workbook{Path: path, f: f, dateStyles: map[int]bool{}}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		wb.date1904 = *props.Date1904
	}
	return wb, nil
}

func (w *Workbook) Close() error {
	return w.f.Close()
}

// SheetNames returns the sheet names in workbook order.
func (w *Workbook) SheetNames() []string {
	return w.f.GetSheetList()
}

// ReadSheet parses a sheet into a row set, using the first row as headers.
// Rows with no values are skipped and missing trailing cells are nil.
func (w *Workbook) ReadSheet(name string) (*db.RowSet, error) {
	raw, err := w.f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, &WorkbookError{Path: w.Path, Sheet: name, Err: err}
	}
	if len(raw) == 0 {
		return nil, &WorkbookError{Path: w.Path, Sheet: name, Err: ErrNoHeader}
	}

	width := 0
	for _, r := range raw {
		if len(r) > width {
			width = len(r)
		}
	}

	rs := &db.RowSet{Columns: headerNames(raw[0], width)}
	for r := 1; r < len(raw); r++ {
		if isBlank(raw[r]) {
			continue
		}
		row := make([]any, width)
		for c, cell := range raw[r] {
			v, err := w.cellValue(name, c+1, r+1, cell)
			if err != nil {
				return nil, &WorkbookError{Path: w.Path, Sheet: name, Err: err}
			}
			row[c] = v
		}
		rs.Rows = append(rs.Rows, row)
	}
	return rs, nil
}

// headerNames fills blank headers with "Unnamed: <index>" and suffixes
// repeated headers with ".1", ".2", ...
func headerNames(header []string, width int) []string {
	names := make([]string, width)
	seen := map[string]int{}
	for i := 0; i < width; i++ {
		name := ""
		if i < len(header) {
			name = header[i]
		}
		if strings.TrimSpace(name) == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		if n, ok := seen[name]; ok {
			base := name
			for {
				n++
				name = fmt.Sprintf("%s.%d", base, n)
				if _, taken := seen[name]; !taken {
					break
				}
			}
			seen[base] = n
		}
		seen[name] = 0
		names[i] = name
	}
	return names
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if cell != "" {
			return false
		}
	}
	return true
}

func (w *Workbook) cellValue(sheet string, col, row int, raw string) (any, error) {
	if raw == "" {
		return nil, nil
	}
	axis, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return nil, err
	}
	typ, err := w.f.GetCellType(sheet, axis)
	if err != nil {
		return nil, fmt.Errorf("cell %s: %w", axis, err)
	}

	switch typ {
	case excelize.CellTypeBool:
		return raw == "1" || strings.EqualFold(raw, "true"), nil
	case excelize.CellTypeDate:
		if t, ok := parseISOTime(raw); ok {
			return t, nil
		}
		return raw, nil
	case excelize.CellTypeUnset, excelize.CellTypeNumber:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return raw, nil
		}
		isDate, err := w.isDateCell(sheet, axis)
		if err != nil {
			return nil, err
		}
		if isDate {
			t, err := excelize.ExcelDateToTime(f, w.date1904)
			if err != nil {
				return nil, fmt.Errorf("cell %s: %w", axis, err)
			}
			return t, nil
		}
		if !strings.ContainsAny(raw, ".eE") && f == math.Trunc(f) && math.Abs(f) < 1<<53 {
			return int64(f), nil
		}
		return f, nil
	default:
		return raw, nil
	}
}

// isDateCell reports whether the cell's number format renders a date or time.
func (w *Workbook) isDateCell(sheet, axis string) (bool, error) {
	styleID, err := w.f.GetCellStyle(sheet, axis)
	if err != nil {
		return false, fmt.Errorf("cell %s style: %w", axis, err)
	}
	if isDate, ok := w.dateStyles[styleID]; ok {
		return isDate, nil
	}

	isDate := false
	if styleID != 0 {
		style, err := w.f.GetStyle(styleID)
		if err != nil {
			return false, fmt.Errorf("style %d: %w", styleID, err)
		}
		switch {
		case style.CustomNumFmt != nil:
			isDate = isDateFormat(*style.CustomNumFmt)
		default:
			isDate = isBuiltInDateFormat(style.NumFmt)
		}
	}
	w.dateStyles[styleID] = isDate
	return isDate, nil
}

func isBuiltInDateFormat(id int) bool {
	return (id >= 14 && id <= 22) || (id >= 45 && id <= 47)
}

// isDateFormat checks a custom number format code for date or time tokens,
// ignoring quoted literals, escapes and bracketed sections.
func isDateFormat(code string) bool {
	code = strings.ToLower(code)
	if code == "general" {
		return false
	}
	var b strings.Builder
	inQuote, inBracket, escaped := false, false, false
	for _, r := range code {
		switch {
		case escaped:
			escaped = false
		case inQuote:
			inQuote = r != '"'
		case inBracket:
			inBracket = r != ']'
		case r == '\\':
			escaped = true
		case r == '"':
			inQuote = true
		case r == '[':
			inBracket = true
		default:
			b.WriteRune(r)
		}
	}
	return strings.ContainsAny(b.String(), "ymdhs")
}

func parseISOTime(s string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
