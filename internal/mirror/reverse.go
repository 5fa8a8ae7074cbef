package mirror

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/mesh-intelligence/shadowsync/pkg/types"
)

// ReverseResult describes a reverse sync.
type ReverseResult struct {
	Identifier string `json:"identifier"`
	MasterRow  int    `json:"master_row,omitempty"`
	Found      bool   `json:"found"`
}

// ReverseSync copies rows edited inside a category sheet back over the
// master row with the same identifier. All columns are copied, category
// included.
type ReverseSync struct {
	wb types.Workbook
}

func NewReverseSync(wb types.Workbook) *ReverseSync {
	return &ReverseSync{wb: wb}
}

// Sync applies ev, an edit at a data row of a category sheet.
func (r *ReverseSync) Sync(ev types.EditEvent) (*ReverseResult, error) {
	edited, ok, err := lookupSheet(r.wb, ev.Sheet)
	if err != nil || !ok {
		return &ReverseResult{}, err
	}
	rowData, err := readFullRow(edited, ev.Row)
	if err != nil {
		return nil, err
	}

	res := &ReverseResult{Identifier: rowData.Get(types.ColIdentifier)}
	logger := log.WithFields(log.Fields{"sheet": ev.Sheet, "row": ev.Row, "identifier": res.Identifier})
	if res.Identifier == "" {
		logger.Debug("Category row has no identifier; nothing to sync back")
		return res, nil
	}

	master, ok, err := lookupSheet(r.wb, types.SheetMaster)
	if err != nil || !ok {
		return res, err
	}
	res.MasterRow, res.Found, err = master.FindByKey(types.ColIdentifier, res.Identifier)
	if err != nil {
		return nil, err
	}
	if !res.Found {
		logger.Debug("No master row for identifier")
		return res, nil
	}
	if err := master.SetRow(res.MasterRow, rowData); err != nil {
		return nil, fmt.Errorf("updating master row %d: %w", res.MasterRow, err)
	}
	logger.WithField("master_row", res.MasterRow).Debug("Synced category edit back to master")
	return res, nil
}
