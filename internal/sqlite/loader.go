package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
)

// loadAllJSONL reads sheets.jsonl and sheet_rows.jsonl from dataDir into the
// SQLite tables. Loading is transactional: all succeed or the database
// remains empty. Malformed lines and records that violate constraints are
// skipped; unknown fields are ignored.
func loadAllJSONL(db *sql.DB, dataDir string) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning load transaction: %w", err)
	}
	defer tx.Rollback()

	sheets, err := readJSONL(filepath.Join(dataDir, sheetsFile))
	if err != nil {
		return fmt.Errorf("reading %s: %w", sheetsFile, err)
	}
	if err := loadSheets(tx, sheets); err != nil {
		return fmt.Errorf("loading %s: %w", sheetsFile, err)
	}

	rows, err := readJSONL(filepath.Join(dataDir, rowsFile))
	if err != nil {
		return fmt.Errorf("reading %s: %w", rowsFile, err)
	}
	if err := loadRows(tx, rows); err != nil {
		return fmt.Errorf("loading %s: %w", rowsFile, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing load transaction: %w", err)
	}
	return nil
}

func loadSheets(tx *sql.Tx, records []json.RawMessage) error {
	stmt, err := tx.Prepare("INSERT INTO sheets (name, gid, position, formats) VALUES (?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("preparing sheet insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		var s sheetJSON
		if err := json.Unmarshal(rec, &s); err != nil || s.Name == "" {
			continue
		}
		formats, err := json.Marshal(s.Formats)
		if err != nil {
			continue
		}
		if _, err := stmt.Exec(s.Name, s.GID, s.Position, string(formats)); err != nil {
			continue
		}
	}
	return nil
}

func loadRows(tx *sql.Tx, records []json.RawMessage) error {
	stmt, err := tx.Prepare("INSERT INTO sheet_rows (sheet, row_index, width, cells) VALUES (?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("preparing row insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		var r rowJSON
		if err := json.Unmarshal(rec, &r); err != nil || r.Sheet == "" || r.RowIndex < 1 {
			continue
		}
		cells, width, ok, err := encodeRow(r.Cells)
		if err != nil || !ok {
			continue
		}
		if _, err := stmt.Exec(r.Sheet, r.RowIndex, width, cells); err != nil {
			continue
		}
	}
	return nil
}
