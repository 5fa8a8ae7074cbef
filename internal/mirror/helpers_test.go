package mirror

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/shadowsync/internal/memory"
	"github.com/mesh-intelligence/shadowsync/pkg/types"
)

const testTarget = "sheet-under-test"

var fixedNow = time.Date(2025, 3, 4, 9, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

// seqIDs issues id-1, id-2, ...
type seqIDs struct{ n int }

func (s *seqIDs) NewID() string {
	s.n++
	return fmt.Sprintf("id-%d", s.n)
}

func setupWorkbook(t *testing.T) types.Workbook {
	t.Helper()
	wb := memory.NewWorkbook()
	require.NoError(t, wb.Attach(types.Config{Backend: types.BackendMemory, SpreadsheetID: testTarget}))
	t.Cleanup(func() { wb.Detach() })
	return wb
}

func setupHandler(t *testing.T, sweep bool) (*Handler, types.Workbook) {
	t.Helper()
	wb := setupWorkbook(t)
	h := NewHandler(wb, Options{
		TargetID:         testTarget,
		SweepStaleCopies: sweep,
		IDs:              &seqIDs{},
		Now:              fixedClock,
	})
	return h, wb
}

func record(name, id, category string) types.Row {
	return types.MasterRecord{
		Created:      "2025-01-01 08:00:00",
		Name:         name,
		QuestionText: "What does " + name + " own?",
		Identifier:   id,
		Status:       "Open",
		Category:     category,
		Availability: "TRUE",
	}.Row()
}

// seedMaster creates the master sheet with the default header and appends
// rows starting at row 3.
func seedMaster(t *testing.T, wb types.Workbook, rows ...types.Row) types.Sheet {
	t.Helper()
	master, _, err := wb.EnsureSheet(types.SheetMaster, types.DefaultMasterHeader())
	require.NoError(t, err)
	for _, r := range rows {
		_, err := master.AppendRow(r)
		require.NoError(t, err)
	}
	return master
}

// seedCategory creates a category sheet with the master header and the
// given rows.
func seedCategory(t *testing.T, wb types.Workbook, name string, rows ...types.Row) types.Sheet {
	t.Helper()
	s, _, err := wb.EnsureSheet(name, types.DefaultMasterHeader())
	require.NoError(t, err)
	for _, r := range rows {
		_, err := s.AppendRow(r)
		require.NoError(t, err)
	}
	return s
}

func sheet(t *testing.T, wb types.Workbook, name string) types.Sheet {
	t.Helper()
	s, err := wb.Sheet(name)
	require.NoError(t, err)
	return s
}

func dataRows(t *testing.T, s types.Sheet) []types.Row {
	t.Helper()
	rows, err := s.Rows(types.FirstDataRow)
	require.NoError(t, err)
	return rows
}

func identifiers(t *testing.T, s types.Sheet) []string {
	t.Helper()
	var ids []string
	for _, r := range dataRows(t, s) {
		ids = append(ids, r.Get(types.ColIdentifier))
	}
	return ids
}

func strPtr(s string) *string { return &s }
