package db

import "time"

// ValueKind is the semantic kind of a row value, used to pick a column type.
type ValueKind int

const (
	KindNull ValueKind = iota
	KindText
	KindInteger
	KindFloat
	KindBoolean
	KindTimestamp
)

func (k ValueKind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindText:
		return "text"
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindBoolean:
		return "boolean"
	case KindTimestamp:
		return "timestamp"
	}
	return "unknown"
}

// RowSet is tabular data held in memory: ordered column names and ordered rows.
// Every row has exactly len(Columns) values; a nil value is a null.
type RowSet struct {
	Columns []string
	Rows    [][]any
}

// Len returns the number of rows.
func (r *RowSet) Len() int {
	return len(r.Rows)
}

// ColumnIndex returns the position of the named column, or -1.
func (r *RowSet) ColumnIndex(name string) int {
	for i, col := range r.Columns {
		if col == name {
			return i
		}
	}
	return -1
}

// KindOf reports the kind of a single value.
func KindOf(v any) ValueKind {
	switch v.(type) {
	case nil:
		return KindNull
	case bool:
		return KindBoolean
	case int, int8, int16, int32, int64, uint8, uint16, uint32:
		return KindInteger
	case float32, float64:
		return KindFloat
	case time.Time:
		return KindTimestamp
	default:
		return KindText
	}
}

// ColumnKinds infers one kind per column from the non-null values in it.
// Integers mixed with floats widen to float; any other mix, or a column of
// nulls only, is text.
func (r *RowSet) ColumnKinds() []ValueKind {
	kinds := make([]ValueKind, len(r.Columns))
	for i := range r.Columns {
		kind := KindNull
		for _, row := range r.Rows {
			kind = mergeKinds(kind, KindOf(row[i]))
			if kind == KindText {
				break
			}
		}
		if kind == KindNull {
			kind = KindText
		}
		kinds[i] = kind
	}
	return kinds
}

func mergeKinds(a, b ValueKind) ValueKind {
	switch {
	case a == KindNull:
		return b
	case b == KindNull, a == b:
		return a
	case (a == KindInteger && b == KindFloat) || (a == KindFloat && b == KindInteger):
		return KindFloat
	default:
		return KindText
	}
}
