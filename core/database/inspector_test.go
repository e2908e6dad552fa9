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
	// Setup In-Memory DB
	cfg := Config{
		Driver: DriverSQLite,
		Name:   ":memory:",
	}
	db, err := Connect(cfg)
	assert.NoError(t, err)
	assert.NotNil(t, db)

	// Create a test table
	// SQLite specific types: INTEGER, TEXT.
	err = db.Exec("CREATE TABLE test_jobs (id INTEGER PRIMARY KEY, name TEXT, description TEXT)").Error
	assert.NoError(t, err)

	// Test GetTableColumns
	columns, err := GetTableColumns(db, "test_jobs")
	assert.NoError(t, err)
	assert.Len(t, columns, 3)

	set, err := ColumnSet(db, "test_jobs")
	assert.NoError(t, err)
	assert.Equal(t, "integer", set["id"].Type)
	assert.Equal(t, "text", set["name"].Type)
	assert.Equal(t, "text", set["description"].Type)

	// Test non-existent table
	cols, err := GetTableColumns(db, "non_existent")
	// PRAGMA table_info yields no rows for a missing table.
	assert.NoError(t, err)
	assert.Empty(t, cols)
}

func TestGetTableColumns_MySQL(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	db, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}), &gorm.Config{})
	require.NoError(t, err)

	rows := sqlmock.NewRows([]string{"Field", "Type", "Null", "Key", "Default", "Extra"}).
		AddRow("ID", "VARCHAR(36)", "NO", "PRI", nil, "").
		AddRow("version", "bigint", "NO", "", "0", "")
	mock.ExpectQuery("SHOW COLUMNS FROM `jobs`").WillReturnRows(rows)

	columns, err := GetTableColumns(db, "jobs")
	require.NoError(t, err)
	require.Len(t, columns, 2)
	assert.Equal(t, "id", columns[0].Field)
	assert.Equal(t, "varchar(36)", columns[0].Type)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetTableColumns_NilDB(t *testing.T) {
	_, err := GetTableColumns(nil, "jobs")
	assert.Error(t, err)
}
