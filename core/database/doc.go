// Package database handles database connections and schema inspection.
//
// It provides a wrapper around GORM (Go Object Relational Mapping) to properly configure
// MySQL connections based on the application's configuration. SQLite is supported
// for local runs and tests.
//
// # Connect
//
// The generic Connect function establishes a connection to the database. Connection
// establishment is agnostic to the target schema; the Schema Inspector relies on
// knowing the expected tables.
//
// # Schema Inspection
//
// The package includes tools to inspect the database schema. The inventory service
// uses it to verify that a collection's target table declares its natural-key and
// foreign-key columns before a reconciliation pass touches it.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//
//	columns, err := database.GetTableColumns(db, "devices")
package database
