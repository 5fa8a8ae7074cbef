package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mesh-intelligence/shadowsync/pkg/types"
)

var _ types.Sheet = (*sheet)(nil)

// sheet implements types.Sheet for one named sheet. It holds no state of
// its own; every call goes to the backend's database.
type sheet struct {
	name    string
	gid     int64
	backend *Backend
}

func (s *sheet) Name() string { return s.name }
func (s *sheet) GID() int64   { return s.gid }

// encodeRow trims trailing empty cells and serializes the rest. ok is false
// for a row with no content, which is stored as an absent row.
func encodeRow(r types.Row) (cells string, width int, ok bool, err error) {
	width = len(r)
	for width > 0 && r[width-1] == (types.Cell{}) {
		width--
	}
	if width == 0 {
		return "", 0, false, nil
	}
	data, err := json.Marshal(r[:width])
	if err != nil {
		return "", 0, false, fmt.Errorf("encoding row: %w", err)
	}
	return string(data), width, true, nil
}

func decodeRow(cells string) (types.Row, error) {
	var r types.Row
	if err := json.Unmarshal([]byte(cells), &r); err != nil {
		return nil, fmt.Errorf("decoding row: %w", err)
	}
	return r, nil
}

func (s *sheet) checkAttached() error {
	if !s.backend.attached {
		return types.ErrWorkbookDetached
	}
	return nil
}

func (s *sheet) LastRow() (int, error) {
	s.backend.mu.RLock()
	defer s.backend.mu.RUnlock()

	if err := s.checkAttached(); err != nil {
		return 0, err
	}
	return s.lastRowLocked()
}

func (s *sheet) lastRowLocked() (int, error) {
	var last int
	err := s.backend.db.QueryRow(
		"SELECT COALESCE(MAX(row_index), 0) FROM sheet_rows WHERE sheet = ?", s.name,
	).Scan(&last)
	if err != nil {
		return 0, fmt.Errorf("reading last row of %q: %w", s.name, err)
	}
	return last, nil
}

func (s *sheet) LastColumn() (int, error) {
	s.backend.mu.RLock()
	defer s.backend.mu.RUnlock()

	if err := s.checkAttached(); err != nil {
		return 0, err
	}
	return s.lastColumnLocked()
}

func (s *sheet) lastColumnLocked() (int, error) {
	var width int
	err := s.backend.db.QueryRow(
		"SELECT COALESCE(MAX(width), 0) FROM sheet_rows WHERE sheet = ?", s.name,
	).Scan(&width)
	if err != nil {
		return 0, fmt.Errorf("reading last column of %q: %w", s.name, err)
	}
	return width, nil
}

func (s *sheet) GetRow(row int) (types.Row, error) {
	if err := types.ValidateRow(row); err != nil {
		return nil, err
	}
	s.backend.mu.RLock()
	defer s.backend.mu.RUnlock()

	if err := s.checkAttached(); err != nil {
		return nil, err
	}
	return s.getRowLocked(row)
}

func (s *sheet) getRowLocked(row int) (types.Row, error) {
	var cells string
	err := s.backend.db.QueryRow(
		"SELECT cells FROM sheet_rows WHERE sheet = ? AND row_index = ?", s.name, row,
	).Scan(&cells)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Row{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading row %d of %q: %w", row, s.name, err)
	}
	return decodeRow(cells)
}

func (s *sheet) SetRow(row int, data types.Row) error {
	if err := types.ValidateRow(row); err != nil {
		return err
	}
	s.backend.mu.Lock()
	defer s.backend.mu.Unlock()

	if err := s.checkAttached(); err != nil {
		return err
	}
	if err := s.mergeRowLocked(row, data); err != nil {
		return err
	}
	return s.backend.persistLocked(rowsFile, s.backend.writeRowsJSONL)
}

// mergeRowLocked writes data over the first len(data) cells of row.
func (s *sheet) mergeRowLocked(row int, data types.Row) error {
	cur, err := s.getRowLocked(row)
	if err != nil {
		return err
	}
	for i, c := range data {
		cur = cur.SetCell(i+1, c)
	}
	return s.putRowLocked(row, cur)
}

// putRowLocked stores r as row, removing the row record when r is empty.
func (s *sheet) putRowLocked(row int, r types.Row) error {
	cells, width, ok, err := encodeRow(r)
	if err != nil {
		return err
	}
	if !ok {
		_, err = s.backend.db.Exec(
			"DELETE FROM sheet_rows WHERE sheet = ? AND row_index = ?", s.name, row)
	} else {
		_, err = s.backend.db.Exec(`
			INSERT INTO sheet_rows (sheet, row_index, width, cells) VALUES (?, ?, ?, ?)
			ON CONFLICT(sheet, row_index) DO UPDATE SET
				width = excluded.width,
				cells = excluded.cells`,
			s.name, row, width, cells)
	}
	if err != nil {
		return fmt.Errorf("writing row %d of %q: %w", row, s.name, err)
	}
	return nil
}

func (s *sheet) AppendRow(data types.Row) (int, error) {
	s.backend.mu.Lock()
	defer s.backend.mu.Unlock()

	if err := s.checkAttached(); err != nil {
		return 0, err
	}
	last, err := s.lastRowLocked()
	if err != nil {
		return 0, err
	}
	row := last + 1
	if err := s.putRowLocked(row, data); err != nil {
		return 0, err
	}
	if err := s.backend.persistLocked(rowsFile, s.backend.writeRowsJSONL); err != nil {
		return 0, err
	}
	return row, nil
}

// DeleteRow removes row and shifts later rows up. The shift goes through
// negative indexes so the primary key never collides mid-update.
func (s *sheet) DeleteRow(row int) error {
	if err := types.ValidateRow(row); err != nil {
		return err
	}
	s.backend.mu.Lock()
	defer s.backend.mu.Unlock()

	if err := s.checkAttached(); err != nil {
		return err
	}

	tx, err := s.backend.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning delete: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		"DELETE FROM sheet_rows WHERE sheet = ? AND row_index = ?", s.name, row,
	); err != nil {
		return fmt.Errorf("deleting row %d of %q: %w", row, s.name, err)
	}
	if _, err := tx.Exec(
		"UPDATE sheet_rows SET row_index = -(row_index - 1) WHERE sheet = ? AND row_index > ?",
		s.name, row,
	); err != nil {
		return fmt.Errorf("shifting rows of %q: %w", s.name, err)
	}
	if _, err := tx.Exec(
		"UPDATE sheet_rows SET row_index = -row_index WHERE sheet = ? AND row_index < 0",
		s.name,
	); err != nil {
		return fmt.Errorf("shifting rows of %q: %w", s.name, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing delete: %w", err)
	}
	return s.backend.persistLocked(rowsFile, s.backend.writeRowsJSONL)
}

// FindByKey scans data rows in order for the first whose column col equals
// key. An empty key never matches.
func (s *sheet) FindByKey(col int, key string) (int, bool, error) {
	if col < 1 {
		return 0, false, types.ErrInvalidColumn
	}
	if key == "" {
		return 0, false, nil
	}
	s.backend.mu.RLock()
	defer s.backend.mu.RUnlock()

	if err := s.checkAttached(); err != nil {
		return 0, false, err
	}
	var row int
	err := s.backend.db.QueryRow(`
		SELECT row_index FROM sheet_rows
		WHERE sheet = ? AND row_index >= ?
		  AND json_extract(cells, '$[' || ? || '].v') = ?
		ORDER BY row_index LIMIT 1`,
		s.name, types.FirstDataRow, col-1, key,
	).Scan(&row)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("finding %q in %q: %w", key, s.name, err)
	}
	return row, true, nil
}

// Rows returns rows from through LastRow; gaps come back as empty rows.
func (s *sheet) Rows(from int) ([]types.Row, error) {
	if err := types.ValidateRow(from); err != nil {
		return nil, err
	}
	s.backend.mu.RLock()
	defer s.backend.mu.RUnlock()

	if err := s.checkAttached(); err != nil {
		return nil, err
	}
	return s.rowsLocked(from)
}

func (s *sheet) rowsLocked(from int) ([]types.Row, error) {
	rows, err := s.backend.db.Query(
		"SELECT row_index, cells FROM sheet_rows WHERE sheet = ? AND row_index >= ? ORDER BY row_index",
		s.name, from,
	)
	if err != nil {
		return nil, fmt.Errorf("reading rows of %q: %w", s.name, err)
	}
	defer rows.Close()

	var out []types.Row
	next := from
	for rows.Next() {
		var idx int
		var cells string
		if err := rows.Scan(&idx, &cells); err != nil {
			return nil, fmt.Errorf("scanning row of %q: %w", s.name, err)
		}
		for ; next < idx; next++ {
			out = append(out, types.Row{})
		}
		r, err := decodeRow(cells)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
		next = idx + 1
	}
	return out, rows.Err()
}

func (s *sheet) GetCell(row, col int) (types.Cell, error) {
	if err := types.ValidateCell(row, col); err != nil {
		return types.Cell{}, err
	}
	r, err := s.GetRow(row)
	if err != nil {
		return types.Cell{}, err
	}
	return r.Cell(col), nil
}

func (s *sheet) SetCell(row, col int, c types.Cell) error {
	if err := types.ValidateCell(row, col); err != nil {
		return err
	}
	s.backend.mu.Lock()
	defer s.backend.mu.Unlock()

	if err := s.checkAttached(); err != nil {
		return err
	}
	cur, err := s.getRowLocked(row)
	if err != nil {
		return err
	}
	if err := s.putRowLocked(row, cur.SetCell(col, c)); err != nil {
		return err
	}
	return s.backend.persistLocked(rowsFile, s.backend.writeRowsJSONL)
}

// Header returns rows 1..n padded to the sheet width, with their formats.
func (s *sheet) Header(n int) (*types.Header, error) {
	if err := types.ValidateRow(n); err != nil {
		return nil, err
	}
	s.backend.mu.RLock()
	defer s.backend.mu.RUnlock()

	if err := s.checkAttached(); err != nil {
		return nil, err
	}
	width, err := s.lastColumnLocked()
	if err != nil {
		return nil, err
	}
	formats, err := s.formatsLocked()
	if err != nil {
		return nil, err
	}

	h := &types.Header{}
	for i := 1; i <= n; i++ {
		r, err := s.getRowLocked(i)
		if err != nil {
			return nil, err
		}
		for len(r) < width {
			r = append(r, types.Cell{})
		}
		h.Values = append(h.Values, r)
		if i <= len(formats.Styles) {
			h.Styles = append(h.Styles, formats.Styles[i-1])
		} else {
			h.Styles = append(h.Styles, nil)
		}
		if i <= len(formats.Validations) {
			h.Validations = append(h.Validations, formats.Validations[i-1])
		} else {
			h.Validations = append(h.Validations, nil)
		}
	}
	return h, nil
}

func (s *sheet) formatsLocked() (sheetFormats, error) {
	var raw string
	var f sheetFormats
	if err := s.backend.db.QueryRow(
		"SELECT formats FROM sheets WHERE name = ?", s.name,
	).Scan(&raw); err != nil {
		return f, fmt.Errorf("reading formats of %q: %w", s.name, err)
	}
	if err := json.Unmarshal([]byte(raw), &f); err != nil {
		return f, fmt.Errorf("parsing formats of %q: %w", s.name, err)
	}
	return f, nil
}

func (s *sheet) SetHeader(h *types.Header) error {
	s.backend.mu.Lock()
	defer s.backend.mu.Unlock()

	if err := s.checkAttached(); err != nil {
		return err
	}
	if err := s.setHeaderLocked(h); err != nil {
		return err
	}
	return s.backend.persistLocked(sheetsFile, s.backend.writeSheetsJSONL)
}

// setHeaderLocked writes header values into the leading rows and stores the
// formats on the sheet record.
func (s *sheet) setHeaderLocked(h *types.Header) error {
	for i, r := range h.Values {
		if err := s.mergeRowLocked(i+1, r); err != nil {
			return err
		}
	}
	formats, err := json.Marshal(sheetFormats{Styles: h.Styles, Validations: h.Validations})
	if err != nil {
		return fmt.Errorf("encoding formats: %w", err)
	}
	if _, err := s.backend.db.Exec(
		"UPDATE sheets SET formats = ? WHERE name = ?", string(formats), s.name,
	); err != nil {
		return fmt.Errorf("writing formats of %q: %w", s.name, err)
	}
	return s.backend.persistLocked(rowsFile, s.backend.writeRowsJSONL)
}
