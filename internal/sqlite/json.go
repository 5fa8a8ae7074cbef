package sqlite

import "github.com/mesh-intelligence/shadowsync/pkg/types"

// JSONL file names in DataDir. These files are the source of truth; the
// SQLite database is rebuilt from them on every Attach.
const (
	sheetsFile = "sheets.jsonl"
	rowsFile   = "sheet_rows.jsonl"
	dbFile     = "workbook.db"
)

// sheetJSON is one line of sheets.jsonl.
type sheetJSON struct {
	Name     string       `json:"name"`
	GID      int64        `json:"gid"`
	Position int          `json:"position"`
	Formats  sheetFormats `json:"formats"`
}

// sheetFormats holds the text styles and data validations of the header
// block, indexed like types.Header.
type sheetFormats struct {
	Styles      [][]types.TextStyle       `json:"styles,omitempty"`
	Validations [][]*types.DataValidation `json:"validations,omitempty"`
}

// rowJSON is one line of sheet_rows.jsonl.
type rowJSON struct {
	Sheet    string    `json:"sheet"`
	RowIndex int       `json:"row_index"`
	Cells    types.Row `json:"cells"`
}
