// Package xlsx moves workbook contents to and from Excel files.
package xlsx

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/mesh-intelligence/shadowsync/pkg/types"
)

// ErrEmptyWorkbook is returned when exporting a workbook with no sheets.
var ErrEmptyWorkbook = errors.New("workbook has no sheets")

// defaultSheet is the sheet excelize creates with every new file.
const defaultSheet = "Sheet1"

// headerColWidth is the column width given to every titled column.
const headerColWidth = 18

// Export writes every sheet of wb, in workbook order, to a new xlsx file at
// path. Header text styles, data validations, cell hyperlinks and formulas
// are carried over.
func Export(wb types.Workbook, path string) error {
	names, err := wb.SheetNames()
	if err != nil {
		return fmt.Errorf("listing sheets: %w", err)
	}
	if len(names) == 0 {
		return ErrEmptyWorkbook
	}

	f := excelize.NewFile()
	defer f.Close()

	w := &writer{f: f, styles: make(map[types.TextStyle]int)}
	for i, name := range names {
		if i == 0 {
			err = f.SetSheetName(defaultSheet, name)
		} else {
			_, err = f.NewSheet(name)
		}
		if err != nil {
			return fmt.Errorf("creating xlsx sheet %q: %w", name, err)
		}
		s, err := wb.Sheet(name)
		if err != nil {
			return fmt.Errorf("opening %q: %w", name, err)
		}
		if err := w.writeSheet(s); err != nil {
			return fmt.Errorf("exporting %q: %w", name, err)
		}
	}
	f.SetActiveSheet(0)

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}

type writer struct {
	f      *excelize.File
	styles map[types.TextStyle]int
}

func (w *writer) writeSheet(s types.Sheet) error {
	name := s.Name()
	rows, err := s.Rows(1)
	if err != nil {
		return err
	}
	for i, r := range rows {
		for j, c := range r {
			if c == (types.Cell{}) {
				continue
			}
			if err := w.writeCell(name, j+1, i+1, c); err != nil {
				return err
			}
		}
	}

	n := min(headerRows(name), len(rows))
	if n == 0 {
		return nil
	}
	h, err := s.Header(n)
	if err != nil {
		return err
	}
	if err := w.applyStyles(name, h); err != nil {
		return err
	}
	if err := w.sizeColumns(name, h); err != nil {
		return err
	}
	return w.applyValidations(name, h, max(len(rows), n+1))
}

func (w *writer) writeCell(sheet string, col, row int, c types.Cell) error {
	ref, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	if strings.HasPrefix(c.Value, "=") {
		return w.f.SetCellFormula(sheet, ref, strings.TrimPrefix(c.Value, "="))
	}
	if err := w.f.SetCellStr(sheet, ref, c.Value); err != nil {
		return err
	}
	if c.Link != "" {
		return w.f.SetCellHyperLink(sheet, ref, c.Link, "External")
	}
	return nil
}

// sizeColumns widens the columns spanned by the header.
func (w *writer) sizeColumns(sheet string, h *types.Header) error {
	width := h.Width()
	if width == 0 {
		return nil
	}
	last, err := excelize.ColumnNumberToName(width)
	if err != nil {
		return err
	}
	return w.f.SetColWidth(sheet, "A", last, headerColWidth)
}

func (w *writer) applyStyles(sheet string, h *types.Header) error {
	for r := 1; r <= len(h.Styles); r++ {
		for c := 1; c <= len(h.Styles[r-1]); c++ {
			st := h.Style(r, c)
			if st == (types.TextStyle{}) {
				continue
			}
			id, err := w.styleID(st)
			if err != nil {
				return err
			}
			ref, err := excelize.CoordinatesToCellName(c, r)
			if err != nil {
				return err
			}
			if err := w.f.SetCellStyle(sheet, ref, ref, id); err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *writer) styleID(st types.TextStyle) (int, error) {
	if id, ok := w.styles[st]; ok {
		return id, nil
	}
	id, err := w.f.NewStyle(&excelize.Style{Font: &excelize.Font{
		Bold:   st.Bold,
		Italic: st.Italic,
		Size:   st.FontSize,
		Color:  strings.TrimPrefix(st.FontColor, "#"),
	}})
	if err != nil {
		return 0, fmt.Errorf("creating style: %w", err)
	}
	w.styles[st] = id
	return id, nil
}

// applyValidations attaches each header validation to the data cells of its
// column, rows len(h.Values)+1 through last.
func (w *writer) applyValidations(sheet string, h *types.Header, last int) error {
	first := len(h.Values) + 1
	for r := 1; r <= len(h.Validations); r++ {
		for c := 1; c <= len(h.Validations[r-1]); c++ {
			v := h.Validation(r, c)
			if v == nil {
				continue
			}
			from, err := excelize.CoordinatesToCellName(c, first)
			if err != nil {
				return err
			}
			to, err := excelize.CoordinatesToCellName(c, last)
			if err != nil {
				return err
			}

			dv := excelize.NewDataValidation(true)
			dv.Sqref = from + ":" + to
			values := v.Values
			if v.Kind == types.ValidationCheckbox {
				values = []string{"TRUE", "FALSE"}
			}
			if err := dv.SetDropList(values); err != nil {
				return fmt.Errorf("validation for column %d: %w", c, err)
			}
			if v.Strict {
				dv.SetError(excelize.DataValidationErrorStyleStop, "Invalid value", "Pick a value from the list.")
			}
			if err := w.f.AddDataValidation(sheet, dv); err != nil {
				return err
			}
		}
	}
	return nil
}

// headerRows is the size of a sheet's header block by role.
func headerRows(name string) int {
	switch types.ResolveRole(name).Role {
	case types.RoleFormIntake, types.RoleAuditLog:
		return 1
	default:
		return types.FirstDataRow - 1
	}
}
