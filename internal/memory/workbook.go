// Package memory implements an in-memory Workbook. It backs tests and
// throwaway runs; nothing is persisted.
package memory

import (
	"slices"
	"sync"

	"github.com/mesh-intelligence/shadowsync/pkg/types"
)

var (
	_ types.Workbook = (*Workbook)(nil)
	_ types.Sheet    = (*sheet)(nil)
)

// Workbook is an in-memory types.Workbook.
type Workbook struct {
	mu       sync.RWMutex
	attached bool
	id       string
	order    []string
	sheets   map[string]*sheet
}

type sheet struct {
	wb          *Workbook
	name        string
	gid         int64
	rows        []types.Row // rows[i] is row i+1
	styles      [][]types.TextStyle
	validations [][]*types.DataValidation
}

// NewWorkbook creates an unattached in-memory workbook.
func NewWorkbook() *Workbook {
	return &Workbook{sheets: make(map[string]*sheet)}
}

// Attach validates config and makes the workbook usable.
func (w *Workbook) Attach(config types.Config) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}
	w.id = config.SpreadsheetID
	w.attached = true
	return nil
}

// Detach marks the workbook detached. Contents are kept so a test can
// re-attach and inspect them.
func (w *Workbook) Detach() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.attached = false
	return nil
}

func (w *Workbook) ID() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.id
}

func (w *Workbook) Sheet(name string) (types.Sheet, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if !w.attached {
		return nil, types.ErrWorkbookDetached
	}
	s, ok := w.sheets[name]
	if !ok {
		return nil, types.ErrSheetNotFound
	}
	return s, nil
}

func (w *Workbook) EnsureSheet(name string, header *types.Header) (types.Sheet, bool, error) {
	if name == "" {
		return nil, false, types.ErrInvalidSheetName
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.attached {
		return nil, false, types.ErrWorkbookDetached
	}
	if s, ok := w.sheets[name]; ok {
		return s, false, nil
	}

	s := &sheet{wb: w, name: name, gid: types.NewSheetGID()}
	if len(w.order) == 0 {
		s.gid = 0
	}
	w.sheets[name] = s
	w.order = append(w.order, name)
	if header != nil {
		s.setHeaderLocked(header)
	}
	return s, true, nil
}

func (w *Workbook) SheetGID(name string) (int64, bool, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if !w.attached {
		return 0, false, types.ErrWorkbookDetached
	}
	s, ok := w.sheets[name]
	if !ok {
		return 0, false, nil
	}
	return s.gid, true, nil
}

func (w *Workbook) SheetNames() ([]string, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if !w.attached {
		return nil, types.ErrWorkbookDetached
	}
	return slices.Clone(w.order), nil
}

// Sheet methods.

func (s *sheet) Name() string { return s.name }
func (s *sheet) GID() int64   { return s.gid }

func (s *sheet) LastRow() (int, error) {
	s.wb.mu.RLock()
	defer s.wb.mu.RUnlock()

	if !s.wb.attached {
		return 0, types.ErrWorkbookDetached
	}
	return s.lastRowLocked(), nil
}

func (s *sheet) lastRowLocked() int {
	for i := len(s.rows) - 1; i >= 0; i-- {
		if !s.rows[i].Equal(nil) {
			return i + 1
		}
	}
	return 0
}

func (s *sheet) LastColumn() (int, error) {
	s.wb.mu.RLock()
	defer s.wb.mu.RUnlock()

	if !s.wb.attached {
		return 0, types.ErrWorkbookDetached
	}
	return s.lastColumnLocked(), nil
}

func (s *sheet) lastColumnLocked() int {
	w := 0
	for _, r := range s.rows {
		if len(r) > w {
			w = len(r)
		}
	}
	return w
}

func (s *sheet) GetRow(row int) (types.Row, error) {
	if err := types.ValidateRow(row); err != nil {
		return nil, err
	}
	s.wb.mu.RLock()
	defer s.wb.mu.RUnlock()

	if !s.wb.attached {
		return nil, types.ErrWorkbookDetached
	}
	if row > len(s.rows) {
		return types.Row{}, nil
	}
	return s.rows[row-1].Clone(), nil
}

func (s *sheet) SetRow(row int, data types.Row) error {
	if err := types.ValidateRow(row); err != nil {
		return err
	}
	s.wb.mu.Lock()
	defer s.wb.mu.Unlock()

	if !s.wb.attached {
		return types.ErrWorkbookDetached
	}
	s.setRowLocked(row, data)
	return nil
}

func (s *sheet) setRowLocked(row int, data types.Row) {
	for len(s.rows) < row {
		s.rows = append(s.rows, nil)
	}
	cur := s.rows[row-1].Clone()
	for i, c := range data {
		cur = cur.SetCell(i+1, c)
	}
	s.rows[row-1] = cur
}

func (s *sheet) AppendRow(data types.Row) (int, error) {
	s.wb.mu.Lock()
	defer s.wb.mu.Unlock()

	if !s.wb.attached {
		return 0, types.ErrWorkbookDetached
	}
	row := s.lastRowLocked() + 1
	s.rows = s.rows[:row-1]
	s.setRowLocked(row, data)
	return row, nil
}

func (s *sheet) DeleteRow(row int) error {
	if err := types.ValidateRow(row); err != nil {
		return err
	}
	s.wb.mu.Lock()
	defer s.wb.mu.Unlock()

	if !s.wb.attached {
		return types.ErrWorkbookDetached
	}
	if row > len(s.rows) {
		return nil
	}
	s.rows = slices.Delete(s.rows, row-1, row)
	return nil
}

func (s *sheet) FindByKey(col int, key string) (int, bool, error) {
	if col < 1 {
		return 0, false, types.ErrInvalidColumn
	}
	if key == "" {
		return 0, false, nil
	}
	s.wb.mu.RLock()
	defer s.wb.mu.RUnlock()

	if !s.wb.attached {
		return 0, false, types.ErrWorkbookDetached
	}
	for i := types.FirstDataRow - 1; i < len(s.rows); i++ {
		if s.rows[i].Get(col) == key {
			return i + 1, true, nil
		}
	}
	return 0, false, nil
}

func (s *sheet) Rows(from int) ([]types.Row, error) {
	if err := types.ValidateRow(from); err != nil {
		return nil, err
	}
	s.wb.mu.RLock()
	defer s.wb.mu.RUnlock()

	if !s.wb.attached {
		return nil, types.ErrWorkbookDetached
	}
	last := s.lastRowLocked()
	var out []types.Row
	for i := from; i <= last; i++ {
		out = append(out, s.rows[i-1].Clone())
	}
	return out, nil
}

func (s *sheet) GetCell(row, col int) (types.Cell, error) {
	if err := types.ValidateCell(row, col); err != nil {
		return types.Cell{}, err
	}
	s.wb.mu.RLock()
	defer s.wb.mu.RUnlock()

	if !s.wb.attached {
		return types.Cell{}, types.ErrWorkbookDetached
	}
	if row > len(s.rows) {
		return types.Cell{}, nil
	}
	return s.rows[row-1].Cell(col), nil
}

func (s *sheet) SetCell(row, col int, c types.Cell) error {
	if err := types.ValidateCell(row, col); err != nil {
		return err
	}
	s.wb.mu.Lock()
	defer s.wb.mu.Unlock()

	if !s.wb.attached {
		return types.ErrWorkbookDetached
	}
	for len(s.rows) < row {
		s.rows = append(s.rows, nil)
	}
	s.rows[row-1] = s.rows[row-1].Clone().SetCell(col, c)
	return nil
}

func (s *sheet) Header(n int) (*types.Header, error) {
	if err := types.ValidateRow(n); err != nil {
		return nil, err
	}
	s.wb.mu.RLock()
	defer s.wb.mu.RUnlock()

	if !s.wb.attached {
		return nil, types.ErrWorkbookDetached
	}
	width := s.lastColumnLocked()
	h := &types.Header{}
	for i := 0; i < n; i++ {
		var r types.Row
		if i < len(s.rows) {
			r = s.rows[i].Clone()
		}
		for len(r) < width {
			r = append(r, types.Cell{})
		}
		h.Values = append(h.Values, r)
		if i < len(s.styles) {
			h.Styles = append(h.Styles, slices.Clone(s.styles[i]))
		} else {
			h.Styles = append(h.Styles, nil)
		}
		if i < len(s.validations) {
			h.Validations = append(h.Validations, slices.Clone(s.validations[i]))
		} else {
			h.Validations = append(h.Validations, nil)
		}
	}
	return h.Clone(), nil
}

func (s *sheet) SetHeader(h *types.Header) error {
	s.wb.mu.Lock()
	defer s.wb.mu.Unlock()

	if !s.wb.attached {
		return types.ErrWorkbookDetached
	}
	s.setHeaderLocked(h)
	return nil
}

func (s *sheet) setHeaderLocked(h *types.Header) {
	h = h.Clone()
	for i, r := range h.Values {
		s.setRowLocked(i+1, r)
	}
	s.styles = h.Styles
	s.validations = h.Validations
}
