package mirror

import (
	"errors"
	"fmt"

	"github.com/mesh-intelligence/shadowsync/pkg/types"
)

// headerRows is the size of the header block cloned into category sheets.
const headerRows = types.FirstDataRow - 1

// lookupSheet returns the named sheet; a missing sheet is reported as
// found == false rather than an error.
func lookupSheet(wb types.Workbook, name string) (types.Sheet, bool, error) {
	s, err := wb.Sheet(name)
	if errors.Is(err, types.ErrSheetNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("opening %q: %w", name, err)
	}
	return s, true, nil
}

// readFullRow returns row padded to the sheet's last column, so that writing
// it elsewhere also clears cells that are empty here.
func readFullRow(s types.Sheet, row int) (types.Row, error) {
	r, err := s.GetRow(row)
	if err != nil {
		return nil, fmt.Errorf("reading row %d of %q: %w", row, s.Name(), err)
	}
	width, err := s.LastColumn()
	if err != nil {
		return nil, fmt.Errorf("reading width of %q: %w", s.Name(), err)
	}
	for len(r) < width {
		r = append(r, types.Cell{})
	}
	return r, nil
}
