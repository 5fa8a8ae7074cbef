package mirror

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/mesh-intelligence/shadowsync/pkg/types"
)

// ingestDefaults follow the identifier in every ingested row: Status,
// Category, Restrictions and Question Name blank, Availability unchecked.
var ingestDefaults = []string{"", "", "", "", "FALSE"}

// IngestResult describes one ingested form response.
type IngestResult struct {
	Identifier string `json:"identifier"`
	FormRow    int    `json:"form_row"` // Row read from Form Responses.
	Row        int    `json:"row"`      // Row appended to the master sheet.
}

// Ingestor copies the latest form response into the master sheet.
type Ingestor struct {
	wb    types.Workbook
	ids   IDGenerator
	audit *AuditWriter
}

func NewIngestor(wb types.Workbook, ids IDGenerator, audit *AuditWriter) *Ingestor {
	return &Ingestor{wb: wb, ids: ids, audit: audit}
}

// Ingest appends the last Form Responses row to the master sheet followed by
// a fresh identifier and the ingest defaults. It returns nil when the form
// sheet holds no response. The caller has already checked ev's source.
func (in *Ingestor) Ingest(ev types.FormSubmitEvent) (*IngestResult, error) {
	if _, err := in.audit.EnsureLog(); err != nil {
		return nil, err
	}

	form, ok, err := lookupSheet(in.wb, types.SheetFormResponses)
	if err != nil {
		return nil, err
	}
	if !ok {
		log.WithField("sheet", types.SheetFormResponses).Warn("Form sheet missing; nothing to ingest")
		return nil, nil
	}
	last, err := form.LastRow()
	if err != nil {
		return nil, fmt.Errorf("reading last form row: %w", err)
	}
	if last < 2 {
		log.Debug("Form sheet holds no responses")
		return nil, nil
	}
	formRow, err := readFullRow(form, last)
	if err != nil {
		return nil, err
	}
	if len(formRow) != types.FormResponseCols {
		log.WithFields(log.Fields{"width": len(formRow), "want": types.FormResponseCols}).
			Warn("Form row width differs from master layout; identifier column will shift")
	}

	master, _, err := in.wb.EnsureSheet(types.SheetMaster, types.DefaultMasterHeader())
	if err != nil {
		return nil, fmt.Errorf("ensuring master sheet: %w", err)
	}

	res := &IngestResult{Identifier: in.ids.NewID(), FormRow: last}
	row := formRow.Clone()
	row = append(row, types.Cell{Value: res.Identifier})
	row = append(row, types.RowOf(ingestDefaults...)...)
	if res.Row, err = master.AppendRow(row); err != nil {
		return nil, fmt.Errorf("appending form response to master: %w", err)
	}
	log.WithFields(log.Fields{"source_id": ev.SourceID, "identifier": res.Identifier, "form_row": last, "row": res.Row}).
		Info("Ingested form response")
	return res, nil
}
