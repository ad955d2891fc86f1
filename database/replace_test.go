package db

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplaceTable(t *testing.T) {
	m, mock, out := newMockPostgres(t)
	updated := time.Date(2025, 8, 4, 0, 0, 0, 0, time.UTC)

	rows := &RowSet{
		Columns: []string{"param_name", "value", "negative", "updated", "code"},
		Rows: [][]any{
			{"alpha", int64(1), true, updated, "A1"},
			{"beta", 2.5, false, nil, int64(7)},
		},
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DROP TABLE IF EXISTS "public"."parameter_master"`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`CREATE TABLE "public"."parameter_master" ( "param_name" TEXT, "value" DOUBLE PRECISION, "negative" BOOLEAN, "updated" TIMESTAMP, "code" TEXT )`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "public"."parameter_master" ("param_name", "value", "negative", "updated", "code") VALUES ($1, $2, $3, $4, $5), ($6, $7, $8, $9, $10)`)).
		WithArgs("alpha", 1.0, true, updated, "A1", "beta", 2.5, false, nil, "7").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	require.NoError(t, m.ReplaceTable(testContext(t), "public", "parameter_master", rows))
	assert.NoError(t, mock.ExpectationsWereMet())
	assert.Contains(t, out.String(), "Replaced table parameter_master with 2 rows")
}

func TestReplaceTableWithoutRows(t *testing.T) {
	m, mock, _ := newMockPostgres(t)

	mock.ExpectBegin()
	mock.ExpectExec("DROP TABLE IF EXISTS").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`CREATE TABLE "public"."parameter_master" ( "a" TEXT )`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	rows := &RowSet{Columns: []string{"a"}}
	require.NoError(t, m.ReplaceTable(testContext(t), "", "parameter_master", rows))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceTableBatchesInserts(t *testing.T) {
	m, mock, _ := newMockPostgres(t)

	rows := &RowSet{Columns: []string{"n"}}
	for i := 0; i < 1001; i++ {
		rows.Rows = append(rows.Rows, []any{int64(i)})
	}

	mock.ExpectBegin()
	mock.ExpectExec("DROP TABLE").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO").WillReturnResult(sqlmock.NewResult(0, 500))
	mock.ExpectExec("INSERT INTO").WillReturnResult(sqlmock.NewResult(0, 500))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "public"."t" ("n") VALUES ($1)`)).
		WithArgs(int64(1000)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, m.ReplaceTable(testContext(t), "public", "t", rows))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceTableErrors(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(mock sqlmock.Sqlmock)
		stage     string
	}{
		{
			name: "begin fails",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin().WillReturnError(errors.New("connection reset"))
			},
			stage: "begin",
		},
		{
			name: "drop fails",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec("DROP TABLE").WillReturnError(errors.New("must be owner"))
				mock.ExpectRollback()
			},
			stage: "drop",
		},
		{
			name: "create fails",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec("DROP TABLE").WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectExec("CREATE TABLE").WillReturnError(errors.New("type conflict"))
				mock.ExpectRollback()
			},
			stage: "create",
		},
		{
			name: "insert fails",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec("DROP TABLE").WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectExec("CREATE TABLE").WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectExec("INSERT INTO").WillReturnError(errors.New("value too long"))
				mock.ExpectRollback()
			},
			stage: "insert",
		},
		{
			name: "commit fails",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec("DROP TABLE").WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectExec("CREATE TABLE").WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectExec("INSERT INTO").WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit().WillReturnError(errors.New("connection lost"))
			},
			stage: "commit",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, mock, _ := newMockPostgres(t)
			tt.setupMock(mock)

			rows := &RowSet{Columns: []string{"a"}, Rows: [][]any{{"x"}}}
			err := m.ReplaceTable(testContext(t), "public", "parameter_master", rows)
			require.Error(t, err)

			var serr *SchemaReplaceError
			require.True(t, errors.As(err, &serr))
			assert.Equal(t, tt.stage, serr.Stage)
			assert.Equal(t, "parameter_master", serr.Table)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestReplaceTableRejectsEmptyColumns(t *testing.T) {
	m, _, _ := newMockPostgres(t)

	err := m.ReplaceTable(testContext(t), "public", "parameter_master", &RowSet{})
	var serr *SchemaReplaceError
	require.True(t, errors.As(err, &serr))
}

func TestMySQLInsertSQL(t *testing.T) {
	m := NewMySQLManager()
	kinds := []ValueKind{KindText, KindInteger}

	query, args := m.insertSQL(m.qualify("shop", "parameter_master"), []string{"name", "qty"}, kinds,
		[][]any{{"a", int64(1)}, {nil, int64(2)}})

	assert.Equal(t, "INSERT INTO `shop`.`parameter_master` (`name`, `qty`) VALUES (?, ?), (?, ?)", query)
	assert.Equal(t, []any{"a", int64(1), nil, int64(2)}, args)
}

func TestMySQLCreateTableSQL(t *testing.T) {
	m := NewMySQLManager()
	kinds := []ValueKind{KindText, KindInteger, KindFloat, KindBoolean, KindTimestamp}

	query := m.createTableSQL("`t`", []string{"a", "b", "c", "d", "e"}, kinds)
	assert.Equal(t, "CREATE TABLE `t` (\n  `a` TEXT,\n  `b` BIGINT,\n  `c` DOUBLE,\n  `d` BOOLEAN,\n  `e` DATETIME(6)\n)", query)
}

func TestInsertValue(t *testing.T) {
	ts := time.Date(2025, 8, 4, 9, 0, 0, 0, time.UTC)
	tests := []struct {
		name     string
		value    any
		kind     ValueKind
		expected any
	}{
		{"null stays null", nil, KindInteger, nil},
		{"integer widened to float", int64(3), KindFloat, 3.0},
		{"int to int64", 4, KindInteger, int64(4)},
		{"number in text column", 2.75, KindText, "2.75"},
		{"bool in text column", true, KindText, "true"},
		{"time in text column", ts, KindText, "2025-08-04T09:00:00Z"},
		{"timestamp unchanged", ts, KindTimestamp, ts},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, insertValue(tt.value, tt.kind))
		})
	}
}
