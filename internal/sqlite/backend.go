// Package sqlite implements the SQLite workbook backend. SQLite is the query
// engine; JSONL files in DataDir are the source of truth and are reloaded on
// every Attach.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/shadowsync/pkg/types"
)

var _ types.Workbook = (*Backend)(nil)

// Backend implements types.Workbook using SQLite over JSONL files.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	db       *sql.DB

	// pending holds deferred JSONL writes keyed by file name, used by the
	// on_close sync strategy. Repeated writes to one file coalesce.
	pending map[string]func() error
}

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
func NewBackend() *Backend {
	return &Backend{pending: make(map[string]func() error)}
}

// Attach initializes the backend with the given configuration.
// Creates DataDir if it does not exist, rebuilds the SQLite database from
// the JSONL files, and starts serving sheets.
// Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}

	if config.DataDir == "" {
		config.DataDir = "."
	}
	if err := os.MkdirAll(config.DataDir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	// The database is a cache of the JSONL files; start from a fresh one.
	dbPath := filepath.Join(config.DataDir, dbFile)
	_ = os.Remove(dbPath)

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := createSchema(db); err != nil {
		db.Close()
		return err
	}

	for _, name := range []string{sheetsFile, rowsFile} {
		if err := ensureJSONLFile(filepath.Join(config.DataDir, name)); err != nil {
			db.Close()
			return err
		}
	}
	if err := loadAllJSONL(db, config.DataDir); err != nil {
		db.Close()
		return fmt.Errorf("load JSONL: %w", err)
	}

	b.db = db
	b.config = config
	b.attached = true
	return nil
}

// Detach flushes pending JSONL writes and closes the database.
// Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}
	if err := b.flushPendingLocked(); err != nil {
		return fmt.Errorf("flush pending writes: %w", err)
	}
	if err := b.db.Close(); err != nil {
		return err
	}
	b.db = nil
	b.attached = false
	return nil
}

func (b *Backend) ID() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.config.SpreadsheetID
}

// Sheet returns the named sheet or ErrSheetNotFound.
func (b *Backend) Sheet(name string) (types.Sheet, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrWorkbookDetached
	}
	gid, ok, err := b.lookupGIDLocked(name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, types.ErrSheetNotFound
	}
	return &sheet{backend: b, name: name, gid: gid}, nil
}

// EnsureSheet returns the named sheet, creating it with header when absent.
func (b *Backend) EnsureSheet(name string, header *types.Header) (types.Sheet, bool, error) {
	if name == "" {
		return nil, false, types.ErrInvalidSheetName
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil, false, types.ErrWorkbookDetached
	}
	gid, ok, err := b.lookupGIDLocked(name)
	if err != nil {
		return nil, false, err
	}
	if ok {
		return &sheet{backend: b, name: name, gid: gid}, false, nil
	}

	var count int
	if err := b.db.QueryRow("SELECT COUNT(*) FROM sheets").Scan(&count); err != nil {
		return nil, false, fmt.Errorf("counting sheets: %w", err)
	}
	gid = 0
	if count > 0 {
		gid, err = b.freshGIDLocked()
		if err != nil {
			return nil, false, err
		}
	}

	if _, err := b.db.Exec(
		"INSERT INTO sheets (name, gid, position, formats) VALUES (?, ?, ?, '{}')",
		name, gid, count,
	); err != nil {
		return nil, false, fmt.Errorf("inserting sheet %q: %w", name, err)
	}
	s := &sheet{backend: b, name: name, gid: gid}
	if header != nil {
		if err := s.setHeaderLocked(header); err != nil {
			return nil, false, err
		}
	}
	if err := b.persistLocked(sheetsFile, b.writeSheetsJSONL); err != nil {
		return nil, false, err
	}
	return s, true, nil
}

// SheetGID resolves a sheet name to its gid.
func (b *Backend) SheetGID(name string) (int64, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return 0, false, types.ErrWorkbookDetached
	}
	return b.lookupGIDLocked(name)
}

// SheetNames lists sheets in creation order.
func (b *Backend) SheetNames() ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrWorkbookDetached
	}
	rows, err := b.db.Query("SELECT name FROM sheets ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("listing sheets: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning sheet name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (b *Backend) lookupGIDLocked(name string) (int64, bool, error) {
	var gid int64
	err := b.db.QueryRow("SELECT gid FROM sheets WHERE name = ?", name).Scan(&gid)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("looking up sheet %q: %w", name, err)
	}
	return gid, true, nil
}

// freshGIDLocked draws gids until one is unused.
func (b *Backend) freshGIDLocked() (int64, error) {
	for {
		gid := types.NewSheetGID()
		var exists int
		err := b.db.QueryRow("SELECT 1 FROM sheets WHERE gid = ?", gid).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return gid, nil
		}
		if err != nil {
			return 0, fmt.Errorf("checking gid: %w", err)
		}
	}
}

// Persistence.

// persistLocked runs write now for the immediate strategy, or queues it
// until Detach for on_close. The caller must hold b.mu for writing.
func (b *Backend) persistLocked(file string, write func() error) error {
	if b.config.GetSyncStrategy() == types.SyncImmediate {
		return write()
	}
	b.pending[file] = write
	return nil
}

// flushPendingLocked executes queued writes in file-name order.
func (b *Backend) flushPendingLocked() error {
	files := make([]string, 0, len(b.pending))
	for f := range b.pending {
		files = append(files, f)
	}
	sort.Strings(files)
	for _, f := range files {
		if err := b.pending[f](); err != nil {
			return fmt.Errorf("flush %s: %w", f, err)
		}
		delete(b.pending, f)
	}
	return nil
}

// writeSheetsJSONL rewrites sheets.jsonl from the sheets table.
func (b *Backend) writeSheetsJSONL() error {
	rows, err := b.db.Query("SELECT name, gid, position, formats FROM sheets ORDER BY position")
	if err != nil {
		return fmt.Errorf("querying sheets for JSONL: %w", err)
	}
	defer rows.Close()

	var records []json.RawMessage
	for rows.Next() {
		var rec sheetJSON
		var formats string
		if err := rows.Scan(&rec.Name, &rec.GID, &rec.Position, &formats); err != nil {
			return fmt.Errorf("scanning sheet: %w", err)
		}
		if err := json.Unmarshal([]byte(formats), &rec.Formats); err != nil {
			return fmt.Errorf("parsing formats of %q: %w", rec.Name, err)
		}
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshaling sheet %q: %w", rec.Name, err)
		}
		records = append(records, data)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating sheets: %w", err)
	}
	return writeJSONL(filepath.Join(b.config.DataDir, sheetsFile), records)
}

// writeRowsJSONL rewrites sheet_rows.jsonl from the sheet_rows table.
func (b *Backend) writeRowsJSONL() error {
	rows, err := b.db.Query(`
		SELECT r.sheet, r.row_index, r.cells
		FROM sheet_rows r JOIN sheets s ON s.name = r.sheet
		ORDER BY s.position, r.row_index`)
	if err != nil {
		return fmt.Errorf("querying rows for JSONL: %w", err)
	}
	defer rows.Close()

	var records []json.RawMessage
	for rows.Next() {
		var rec rowJSON
		var cells string
		if err := rows.Scan(&rec.Sheet, &rec.RowIndex, &cells); err != nil {
			return fmt.Errorf("scanning row: %w", err)
		}
		if rec.Cells, err = decodeRow(cells); err != nil {
			return err
		}
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshaling row %d of %q: %w", rec.RowIndex, rec.Sheet, err)
		}
		records = append(records, data)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating rows: %w", err)
	}
	return writeJSONL(filepath.Join(b.config.DataDir, rowsFile), records)
}
