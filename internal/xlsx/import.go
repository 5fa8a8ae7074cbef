package xlsx

import (
	"errors"
	"fmt"
	"slices"

	log "github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"github.com/mesh-intelligence/shadowsync/internal/mirror"
	"github.com/mesh-intelligence/shadowsync/pkg/types"
)

// ErrSheetMissing is returned when the requested sheet is not in the file.
var ErrSheetMissing = errors.New("sheet not in xlsx file")

// ImportReport lists the identifiers assigned to imported responses, in
// file order.
type ImportReport struct {
	Rows        int      `json:"rows"`
	Identifiers []string `json:"identifiers"`
}

// ReadResponses reads form responses from an xlsx file. sheet names the
// sheet to read; when empty, a sheet named Form Responses is preferred and
// the first sheet is used otherwise. Row 1 is the header and is skipped.
// Blank rows are dropped and every row is padded to the header width.
func ReadResponses(path, sheet string) ([]types.Row, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	list := f.GetSheetList()
	switch {
	case sheet != "":
		if !slices.Contains(list, sheet) {
			return nil, fmt.Errorf("%q: %w", sheet, ErrSheetMissing)
		}
	case slices.Contains(list, types.SheetFormResponses):
		sheet = types.SheetFormResponses
	case len(list) > 0:
		sheet = list[0]
	default:
		return nil, ErrSheetMissing
	}

	raw, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", sheet, err)
	}
	if len(raw) < 2 {
		return nil, nil
	}
	width := len(raw[0])

	var out []types.Row
	for i, values := range raw[1:] {
		if blank(values) {
			continue
		}
		row := types.RowOf(values...)
		for len(row) < width {
			row = append(row, types.Cell{})
		}
		for c := range values {
			ref, err := excelize.CoordinatesToCellName(c+1, i+2)
			if err != nil {
				return nil, err
			}
			ok, link, err := f.GetCellHyperLink(sheet, ref)
			if err != nil {
				return nil, fmt.Errorf("reading hyperlink %s: %w", ref, err)
			}
			if ok {
				row[c].Link = link
			}
		}
		out = append(out, row)
	}
	return out, nil
}

// Import submits every response in the xlsx file through h, one form
// submission per row.
func Import(h *mirror.Handler, path, sheet string) (*ImportReport, error) {
	rows, err := ReadResponses(path, sheet)
	if err != nil {
		return nil, err
	}

	report := &ImportReport{}
	for i, r := range rows {
		res, err := h.SubmitResponse(r)
		if err != nil {
			return report, fmt.Errorf("importing response %d: %w", i+1, err)
		}
		report.Rows++
		if res != nil {
			report.Identifiers = append(report.Identifiers, res.Identifier)
		}
	}
	log.WithFields(log.Fields{"path": path, "rows": report.Rows}).Info("Imported form responses")
	return report, nil
}

func blank(values []string) bool {
	for _, v := range values {
		if v != "" {
			return false
		}
	}
	return true
}
