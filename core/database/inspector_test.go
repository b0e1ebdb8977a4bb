package database

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func TestGetTableColumns(t *testing.T) {
	db, err := Connect(Config{Driver: DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)

	err = db.Exec("CREATE TABLE test_results (ts TEXT PRIMARY KEY, p1_name TEXT NOT NULL, deposit INTEGER)").Error
	require.NoError(t, err)

	columns, err := GetTableColumns(db, "test_results")
	assert.NoError(t, err)
	assert.Len(t, columns, 3)

	colMap := make(map[string]ColumnInfo)
	for _, col := range columns {
		colMap[col.Field] = col
	}

	assert.Equal(t, "text", colMap["ts"].Type)
	assert.Equal(t, "PRI", colMap["ts"].Key)
	assert.Equal(t, "NO", colMap["p1_name"].Null)
	assert.Equal(t, "integer", colMap["deposit"].Type)

	// PRAGMA table_info returns no rows for an unknown table
	cols, err := GetTableColumns(db, "non_existent")
	assert.NoError(t, err)
	assert.Empty(t, cols)
}

func TestMissingColumns(t *testing.T) {
	db, err := Connect(Config{Driver: DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, db.Exec("CREATE TABLE remarks (thread_ts TEXT, event_ts TEXT)").Error)

	missing, err := MissingColumns(db, "remarks", []string{"thread_ts", "name", "event_ts", "matter"})
	assert.NoError(t, err)
	assert.Equal(t, []string{"matter", "name"}, missing)

	missing, err = MissingColumns(db, "absent", []string{"ts"})
	assert.NoError(t, err)
	assert.Equal(t, []string{"ts"}, missing)
}

func TestGetTableColumns_MySQL(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}), &gorm.Config{})
	require.NoError(t, err)

	rows := sqlmock.NewRows([]string{"Field", "Type", "Null", "Key", "Default", "Extra"}).
		AddRow("TS", "VARCHAR(32)", "NO", "PRI", nil, "").
		AddRow("Deposit", "INT", "YES", "", "0", "")
	mock.ExpectQuery("SHOW COLUMNS FROM `result`").WillReturnRows(rows)

	columns, err := GetTableColumns(db, "result")
	require.NoError(t, err)
	require.Len(t, columns, 2)
	assert.Equal(t, "ts", columns[0].Field)
	assert.Equal(t, "varchar(32)", columns[0].Type)
	assert.Equal(t, "int", columns[1].Type)
	assert.NoError(t, mock.ExpectationsWereMet())
}
