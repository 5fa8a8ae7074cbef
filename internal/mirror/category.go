package mirror

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/mesh-intelligence/shadowsync/pkg/types"
)

// CategoryResult describes what one category sync changed.
type CategoryResult struct {
	Identifier  string `json:"identifier"`
	OldCategory string `json:"old_category"`
	NewCategory string `json:"new_category"`
	// OldKnown is false when the category cell was edited and the event
	// carried no pre-edit value.
	OldKnown    bool     `json:"old_known"`
	Created     bool     `json:"created,omitempty"`      // NewCategory's sheet was created by this sync.
	RemovedFrom []string `json:"removed_from,omitempty"` // Sheets a stale copy was deleted from.
	Row         int      `json:"row,omitempty"`          // Row of the copy in NewCategory's sheet.
	Appended    bool     `json:"appended,omitempty"`     // The copy was appended rather than overwritten.
	Skipped     string   `json:"skipped,omitempty"`      // Why nothing was synced, if so.
}

// Reasons a category sync does nothing.
const (
	SkipNoIdentifier     = "row has no identifier"
	SkipReservedCategory = "category names a reserved sheet"
	SkipNoMaster         = "master sheet missing"
)

// CategorySync copies master rows into the sheet named after their
// category and removes the copy from the sheet of the previous category.
type CategorySync struct {
	wb    types.Workbook
	sweep bool
}

// NewCategorySync returns a CategorySync over wb. With sweep set, a category
// edit whose previous value is unknown removes the record from every other
// category sheet.
func NewCategorySync(wb types.Workbook, sweep bool) *CategorySync {
	return &CategorySync{wb: wb, sweep: sweep}
}

// Sync mirrors the master row edited by ev. ev must be a master edit at a
// data row.
func (c *CategorySync) Sync(ev types.EditEvent) (*CategoryResult, error) {
	master, ok, err := lookupSheet(c.wb, types.SheetMaster)
	if err != nil {
		return nil, err
	}
	if !ok {
		log.WithField("sheet", types.SheetMaster).Warn("Master sheet missing; category sync skipped")
		return &CategoryResult{Skipped: SkipNoMaster}, nil
	}

	rowData, err := readFullRow(master, ev.Row)
	if err != nil {
		return nil, err
	}

	res := &CategoryResult{
		Identifier:  rowData.Get(types.ColIdentifier),
		NewCategory: rowData.Get(types.ColCategory),
		OldKnown:    true,
	}
	res.OldCategory = res.NewCategory
	if ev.Column == types.ColCategory {
		if ev.OldValue != nil {
			res.OldCategory = *ev.OldValue
		} else {
			res.OldKnown = false
		}
	}

	logger := log.WithFields(log.Fields{
		"row":          ev.Row,
		"identifier":   res.Identifier,
		"old_category": res.OldCategory,
		"new_category": res.NewCategory,
	})
	logger.Debug("Category sync")

	if res.Identifier == "" {
		logger.Warn("Master row has no identifier; waiting for backfill")
		res.Skipped = SkipNoIdentifier
		return res, nil
	}
	if res.NewCategory != "" && types.IsReserved(res.NewCategory) {
		logger.Warn("Category names a reserved sheet; not mirrored")
		res.Skipped = SkipReservedCategory
		return res, nil
	}

	var target types.Sheet
	if res.NewCategory != "" {
		header, err := master.Header(headerRows)
		if err != nil {
			return nil, fmt.Errorf("reading master header: %w", err)
		}
		target, res.Created, err = c.wb.EnsureSheet(res.NewCategory, header)
		if err != nil {
			return nil, fmt.Errorf("ensuring category sheet %q: %w", res.NewCategory, err)
		}
		if res.Created {
			logger.Info("Created category sheet")
		}
	}

	stale, err := c.staleSheets(res)
	if err != nil {
		return nil, err
	}
	for _, name := range stale {
		removed, err := c.removeCopy(name, res.Identifier)
		if err != nil {
			return nil, err
		}
		if removed {
			logger.WithField("sheet", name).Info("Removed row from previous category sheet")
			res.RemovedFrom = append(res.RemovedFrom, name)
		}
	}

	if target != nil {
		row, found, err := target.FindByKey(types.ColIdentifier, res.Identifier)
		if err != nil {
			return nil, err
		}
		if found {
			if err := target.SetRow(row, rowData); err != nil {
				return nil, fmt.Errorf("updating %q row %d: %w", target.Name(), row, err)
			}
			res.Row = row
		} else {
			if res.Row, err = target.AppendRow(rowData); err != nil {
				return nil, fmt.Errorf("appending to %q: %w", target.Name(), err)
			}
			res.Appended = true
		}
		logger.WithFields(log.Fields{"sheet": target.Name(), "target_row": res.Row, "appended": res.Appended}).
			Debug("Mirrored row into category sheet")
	}

	if err := master.SetRow(ev.Row, rowData); err != nil {
		return nil, fmt.Errorf("writing back master row %d: %w", ev.Row, err)
	}
	return res, nil
}

// staleSheets lists the sheets that may still hold a copy of the record
// under a category it no longer has.
func (c *CategorySync) staleSheets(res *CategoryResult) ([]string, error) {
	if res.OldKnown || !c.sweep {
		if res.OldCategory != "" && res.OldCategory != res.NewCategory && !types.IsReserved(res.OldCategory) {
			return []string{res.OldCategory}, nil
		}
		return nil, nil
	}

	names, err := c.wb.SheetNames()
	if err != nil {
		return nil, fmt.Errorf("listing sheets: %w", err)
	}
	var out []string
	for _, name := range names {
		if name != res.NewCategory && !types.IsReserved(name) {
			out = append(out, name)
		}
	}
	return out, nil
}

// removeCopy deletes the row holding identifier from the named sheet. A
// missing sheet or row is not an error.
func (c *CategorySync) removeCopy(name, identifier string) (bool, error) {
	s, ok, err := lookupSheet(c.wb, name)
	if err != nil || !ok {
		return false, err
	}
	row, found, err := s.FindByKey(types.ColIdentifier, identifier)
	if err != nil || !found {
		return false, err
	}
	if err := s.DeleteRow(row); err != nil {
		return false, fmt.Errorf("deleting %q row %d: %w", name, row, err)
	}
	return true, nil
}
