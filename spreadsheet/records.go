package spreadsheet

import (
	"bytes"
	"encoding/json"
	"math"
	"time"

	db "github.com/KazanKK/pgtransfer/database"
)

// JSONTimeLayout renders timestamps as ISO-8601 with millisecond precision.
const JSONTimeLayout = "2006-01-02T15:04:05.000"

// record marshals one row as a JSON object with keys in column order.
type record struct {
	columns []string
	values  []any
}

func (r record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, col := range r.columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := marshalJSON(col, "")
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		val, err := marshalJSON(jsonValue(r.values[i]), "")
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func jsonValue(v any) any {
	switch t := v.(type) {
	case time.Time:
		return t.Format(JSONTimeLayout)
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return nil
		}
	}
	return v
}

// RecordsJSON renders rs as an indented JSON array with one object per row.
func RecordsJSON(rs *db.RowSet) ([]byte, error) {
	records := make([]record, len(rs.Rows))
	for i, row := range rs.Rows {
		records[i] = record{columns: rs.Columns, values: row}
	}
	return marshalJSON(records, "  ")
}

// marshalJSON encodes v without HTML escaping, so <, > and & stay literal.
func marshalJSON(v any, indent string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent != "" {
		enc.SetIndent("", indent)
	}
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
