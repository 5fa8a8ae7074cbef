package sqlite

import (
	"database/sql"
	"fmt"
)

// Schema DDL. sheet_rows holds only non-empty rows; a missing row_index is
// an empty row.
const (
	createSheets = `CREATE TABLE sheets (
    name TEXT PRIMARY KEY,
    gid INTEGER NOT NULL UNIQUE,
    position INTEGER NOT NULL,
    formats TEXT NOT NULL DEFAULT '{}'
);`

	createSheetRows = `CREATE TABLE sheet_rows (
    sheet TEXT NOT NULL,
    row_index INTEGER NOT NULL,
    width INTEGER NOT NULL,
    cells TEXT NOT NULL,
    PRIMARY KEY (sheet, row_index),
    FOREIGN KEY (sheet) REFERENCES sheets(name) ON DELETE CASCADE
);`
)

const (
	idxSheetsPosition = `CREATE INDEX idx_sheets_position ON sheets(position);`
)

var schemaDDL = []string{
	createSheets,
	createSheetRows,
}

var indexDDL = []string{
	idxSheetsPosition,
}

// createSchema executes every DDL statement against db.
func createSchema(db *sql.DB) error {
	for _, stmt := range schemaDDL {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("creating table: %w", err)
		}
	}
	for _, stmt := range indexDDL {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("creating index: %w", err)
		}
	}
	return nil
}
