package mirror

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/mesh-intelligence/shadowsync/pkg/types"
)

// BackfillReport counts the updates a backfill applied.
type BackfillReport struct {
	Scanned     int `json:"scanned"` // Master data rows with a name.
	Identifiers int `json:"identifiers"`
	Timestamps  int `json:"timestamps"`
	Links       int `json:"links"`
}

// Updates returns the total number of cells written.
func (r BackfillReport) Updates() int {
	return r.Identifiers + r.Timestamps + 2*r.Links
}

type cellUpdate struct {
	row, col int
	cell     types.Cell
}

// Backfiller repairs master rows that predate ingestion: missing
// identifiers, missing created timestamps, and question links kept only as
// a hyperlink on the question text.
type Backfiller struct {
	wb  types.Workbook
	ids IDGenerator
	now Clock
}

func NewBackfiller(wb types.Workbook, ids IDGenerator, now Clock) *Backfiller {
	return &Backfiller{wb: wb, ids: ids, now: now}
}

// Run scans the master sheet and writes all collected updates after the
// scan. A second run over the same sheet reports no updates.
func (b *Backfiller) Run() (BackfillReport, error) {
	var report BackfillReport

	master, ok, err := lookupSheet(b.wb, types.SheetMaster)
	if err != nil {
		return report, err
	}
	if !ok {
		log.WithField("sheet", types.SheetMaster).Warn("Master sheet missing; nothing to backfill")
		return report, nil
	}
	rows, err := master.Rows(types.FirstDataRow)
	if err != nil {
		return report, fmt.Errorf("reading master rows: %w", err)
	}

	stamp := b.now().Format(types.TimestampLayout)
	var updates []cellUpdate
	for i, r := range rows {
		rec := types.ParseMasterRecord(r)
		if rec.Name == "" {
			continue
		}
		rowIdx := types.FirstDataRow + i
		report.Scanned++

		if rec.Identifier == "" {
			updates = append(updates, cellUpdate{rowIdx, types.ColIdentifier, types.Cell{Value: b.ids.NewID()}})
			report.Identifiers++
		}
		if rec.Created == "" {
			updates = append(updates, cellUpdate{rowIdx, types.ColCreated, types.Cell{Value: stamp}})
			report.Timestamps++
		}
		question := r.Cell(types.ColQuestionText)
		if rec.QuestionURL == "" && question.Link != "" {
			updates = append(updates,
				cellUpdate{rowIdx, types.ColQuestionText, types.Cell{Value: question.Value}},
				cellUpdate{rowIdx, types.ColQuestionURL, types.Cell{Value: question.Link}},
			)
			report.Links++
		}
	}

	for _, u := range updates {
		if err := master.SetCell(u.row, u.col, u.cell); err != nil {
			return report, fmt.Errorf("writing master row %d column %d: %w", u.row, u.col, err)
		}
	}

	log.WithFields(log.Fields{
		"scanned":     report.Scanned,
		"identifiers": report.Identifiers,
		"timestamps":  report.Timestamps,
		"links":       report.Links,
	}).Info("Backfill complete")
	return report, nil
}
