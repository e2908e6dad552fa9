// Package database handles database connections and schema inspection.
//
// It wraps GORM to open either MySQL (production) or SQLite (local runs and tests)
// from the application's configuration.
//
// # Connect
//
// Connect builds the dialector for the configured driver, applies pool settings and
// verifies the connection with a bounded ping.
//
// # Schema Inspection
//
// GetTableColumns and ColumnSet read the live column definitions of a table
// (SHOW COLUMNS on MySQL, PRAGMA table_info on SQLite). The integrity feature compares
// them with the job models to detect a database that was never migrated.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//
//	columns, err := database.ColumnSet(db, "jobs")
package database
