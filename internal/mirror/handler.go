// Package mirror keeps per-category copies of the Shadower Admins sheet in
// step with the master, logs edits to the Event Log and ingests form
// responses. Handler is the entry point; the engines it dispatches to are
// exported for direct use and testing.
package mirror

import (
	"errors"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/mesh-intelligence/shadowsync/pkg/types"
)

// Reasons an edit is ignored.
const (
	IgnoreForeignSource = "source is not the target workbook"
	IgnoreHeaderRow     = "edit is in a header row"
	IgnoreFormSheet     = "edit is in the form sheet"
	IgnoreAuditSheet    = "edit is in the audit sheet"
)

// ErrNotTarget is returned by operations that act on the local workbook when
// it is not the configured target.
var ErrNotTarget = errors.New("workbook is not the sync target")

// Options configures a Handler.
type Options struct {
	// TargetID is the workbook identity every event must carry.
	TargetID string
	// SweepStaleCopies removes a record from all other category sheets when
	// its category changed and the previous value is unknown.
	SweepStaleCopies bool
	IDs              IDGenerator
	Now              Clock
}

// EditOutcome describes how an edit was handled.
type EditOutcome struct {
	Role     types.TableRole `json:"role"`
	Ignored  string          `json:"ignored,omitempty"` // Non-empty when the edit was not processed.
	Logged   bool            `json:"logged"`            // An audit entry was written.
	Category *CategoryResult `json:"category,omitempty"`
	Reverse  *ReverseResult  `json:"reverse,omitempty"`
}

// Handler dispatches trigger events to the sync engines. Invocations are
// serialized.
type Handler struct {
	mu       sync.Mutex
	wb       types.Workbook
	target   string
	audit    *AuditWriter
	category *CategorySync
	reverse  *ReverseSync
	ingest   *Ingestor
	backfill *Backfiller
}

// NewHandler returns a Handler over an attached workbook.
func NewHandler(wb types.Workbook, opts Options) *Handler {
	if opts.IDs == nil {
		opts.IDs = UUIDGenerator{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	audit := NewAuditWriter(wb, opts.Now)
	return &Handler{
		wb:       wb,
		target:   opts.TargetID,
		audit:    audit,
		category: NewCategorySync(wb, opts.SweepStaleCopies),
		reverse:  NewReverseSync(wb),
		ingest:   NewIngestor(wb, opts.IDs, audit),
		backfill: NewBackfiller(wb, opts.IDs, opts.Now),
	}
}

// Workbook returns the workbook the handler writes to.
func (h *Handler) Workbook() types.Workbook { return h.wb }

// OnEdit handles a committed cell edit: the edit is logged, then a master
// edit is mirrored into its category sheet and a category sheet edit is
// copied back to the master.
func (h *Handler) OnEdit(ev types.EditEvent) (*EditOutcome, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.onEditLocked(ev)
}

func (h *Handler) onEditLocked(ev types.EditEvent) (*EditOutcome, error) {
	resolved := types.ResolveRole(ev.Sheet)
	out := &EditOutcome{Role: resolved.Role}
	logger := log.WithFields(log.Fields{
		"sheet":  ev.Sheet,
		"row":    ev.Row,
		"column": ev.Column,
		"role":   resolved.Role,
	})

	if ev.SourceID != h.target {
		logger.WithField("source_id", ev.SourceID).Debug("Ignoring edit from foreign source")
		out.Ignored = IgnoreForeignSource
		return out, nil
	}
	if _, err := h.audit.EnsureLog(); err != nil {
		return nil, err
	}

	switch resolved.Role {
	case types.RoleFormIntake:
		out.Ignored = IgnoreFormSheet
		return out, nil
	case types.RoleAuditLog:
		out.Ignored = IgnoreAuditSheet
		return out, nil
	}
	if ev.Row < types.FirstDataRow {
		out.Ignored = IgnoreHeaderRow
		return out, nil
	}

	var err error
	if out.Logged, err = h.audit.Record(ev); err != nil {
		return nil, fmt.Errorf("recording edit: %w", err)
	}

	if resolved.Role == types.RoleMaster {
		if out.Category, err = h.category.Sync(ev); err != nil {
			return nil, fmt.Errorf("syncing category: %w", err)
		}
	} else {
		if out.Reverse, err = h.reverse.Sync(ev); err != nil {
			return nil, fmt.Errorf("syncing back to master: %w", err)
		}
	}
	logger.Debug("Edit handled")
	return out, nil
}

// OnFormSubmit ingests the latest form response. It returns nil when the
// event comes from another workbook or there is nothing to ingest.
func (h *Handler) OnFormSubmit(ev types.FormSubmitEvent) (*IngestResult, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.onFormSubmitLocked(ev)
}

func (h *Handler) onFormSubmitLocked(ev types.FormSubmitEvent) (*IngestResult, error) {
	if ev.SourceID != h.target {
		log.WithField("source_id", ev.SourceID).Debug("Ignoring form submission from foreign source")
		return nil, nil
	}
	return h.ingest.Ingest(ev)
}

// Backfill runs the backfill routine when sourceID is the target. The
// boolean is false when the call was ignored.
func (h *Handler) Backfill(sourceID string) (BackfillReport, bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if sourceID != h.target {
		log.WithField("source_id", sourceID).Debug("Ignoring backfill for foreign source")
		return BackfillReport{}, false, nil
	}
	report, err := h.backfill.Run()
	return report, true, err
}

// SubmitResponse appends row to the Form Responses sheet of the local
// workbook and ingests it, the way a form submission would.
func (h *Handler) SubmitResponse(row types.Row) (*IngestResult, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.wb.ID() != h.target {
		return nil, ErrNotTarget
	}
	form, _, err := h.wb.EnsureSheet(types.SheetFormResponses, types.DefaultFormHeader())
	if err != nil {
		return nil, fmt.Errorf("ensuring form sheet: %w", err)
	}
	if _, err := form.AppendRow(row); err != nil {
		return nil, fmt.Errorf("appending form response: %w", err)
	}
	return h.onFormSubmitLocked(types.FormSubmitEvent{SourceID: h.wb.ID()})
}

// ApplyEdit writes value into a cell of the local workbook and handles the
// edit with the cell's previous value attached.
func (h *Handler) ApplyEdit(sheetName string, row, col int, value, actor string) (*EditOutcome, error) {
	if err := types.ValidateCell(row, col); err != nil {
		return nil, err
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.wb.ID() != h.target {
		return nil, ErrNotTarget
	}
	s, err := h.wb.Sheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("opening %q: %w", sheetName, err)
	}
	old, err := s.GetCell(row, col)
	if err != nil {
		return nil, fmt.Errorf("reading cell: %w", err)
	}
	if err := s.SetCell(row, col, types.Cell{Value: value}); err != nil {
		return nil, fmt.Errorf("writing cell: %w", err)
	}
	return h.onEditLocked(types.EditEvent{
		SourceID: h.wb.ID(),
		Sheet:    sheetName,
		Row:      row,
		Column:   col,
		Value:    value,
		OldValue: &old.Value,
		Actor:    actor,
	})
}
