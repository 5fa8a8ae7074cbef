package mirror

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/mesh-intelligence/shadowsync/pkg/types"
)

// AuditWriter appends edit records to the Event Log sheet.
type AuditWriter struct {
	wb  types.Workbook
	now Clock
}

// NewAuditWriter returns an AuditWriter over wb.
func NewAuditWriter(wb types.Workbook, now Clock) *AuditWriter {
	return &AuditWriter{wb: wb, now: now}
}

// EnsureLog returns the Event Log sheet, creating it with its header row
// when absent.
func (a *AuditWriter) EnsureLog() (types.Sheet, error) {
	s, created, err := a.wb.EnsureSheet(types.SheetEventLog, types.AuditHeader())
	if err != nil {
		return nil, fmt.Errorf("ensuring %s: %w", types.SheetEventLog, err)
	}
	if created {
		log.WithField("sheet", types.SheetEventLog).Info("Created audit sheet")
	}
	return s, nil
}

// Record appends one AuditEntry for ev. Edits to the form and audit sheets
// and to header rows are not recorded; the boolean reports whether an entry
// was written. A missing actor is recorded as empty.
func (a *AuditWriter) Record(ev types.EditEvent) (bool, error) {
	role := types.ResolveRole(ev.Sheet).Role
	if role == types.RoleFormIntake || role == types.RoleAuditLog || ev.Row < types.FirstDataRow {
		return false, nil
	}

	logSheet, err := a.EnsureLog()
	if err != nil {
		return false, err
	}
	link, err := RowLink(a.wb, a.wb.ID(), ev.Sheet, ev.Row)
	if err != nil {
		return false, err
	}

	entry := types.AuditEntry{
		Timestamp: a.now(),
		Actor:     ev.Actor,
		Row:       ev.Row,
		Column:    ev.Column,
		Value:     ev.Value,
		Link:      link,
	}
	if _, err := logSheet.AppendRow(entry.Cells()); err != nil {
		return false, fmt.Errorf("appending audit entry: %w", err)
	}
	return true, nil
}
