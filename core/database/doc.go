// Package database handles database connections and schema inspection.
//
// It provides a wrapper around GORM to configure either a MySQL connection or a
// SQLite file (or in-memory) database from the application's configuration.
//
// # Connect
//
// Connect picks the dialector from Config.Driver, applies pool settings and pings
// the server before handing the connection back.
//
// # Schema Inspection
//
// GetTableColumns and MissingColumns back the `check` command, which verifies that
// the ledger tables carry every column the store writes.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//
//	missing, err := database.MissingColumns(db, "result", []string{"ts", "deposit"})
package database
