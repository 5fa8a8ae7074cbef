package types

import (
	"strconv"
	"time"
)

// TimestampLayout is the layout of timestamps written into cells.
const TimestampLayout = "2006-01-02 15:04:05"

// AuditColumnTitles is the header row of the Event Log sheet.
var AuditColumnTitles = []string{"Timestamp", "User", "Edited Row", "Edited Column", "New Value", "Row Link"}

// AuditEntry records one cell edit. Entries are only ever appended.
type AuditEntry struct {
	Timestamp time.Time
	Actor     string // Email of the editing user; empty when unknown.
	Row       int
	Column    int
	Value     string
	Link      string // Row link formula pointing at the edited row.
}

// Cells renders the entry in Event Log column order.
func (e AuditEntry) Cells() Row {
	return RowOf(
		e.Timestamp.Format(TimestampLayout),
		e.Actor,
		strconv.Itoa(e.Row),
		strconv.Itoa(e.Column),
		e.Value,
		e.Link,
	)
}

// AuditHeader returns the single-row header of the Event Log sheet.
func AuditHeader() *Header {
	styles := make([]TextStyle, len(AuditColumnTitles))
	for i := range styles {
		styles[i] = TextStyle{Bold: true}
	}
	return &Header{
		Values: []Row{RowOf(AuditColumnTitles...)},
		Styles: [][]TextStyle{styles},
	}
}
