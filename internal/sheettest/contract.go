// Package sheettest holds the behavioural contract every types.Workbook
// backend must satisfy. Backend packages run it from their own tests.
package sheettest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/shadowsync/pkg/types"
)

// Factory returns a freshly attached, empty workbook whose ID is
// "contract-sheet". The factory registers its own cleanup.
type Factory func(t *testing.T) types.Workbook

// ContractID is the spreadsheet id factories must attach with.
const ContractID = "contract-sheet"

// Run exercises the Workbook and Sheet contract against newWorkbook.
func Run(t *testing.T, newWorkbook Factory) {
	tests := []struct {
		name  string
		check func(t *testing.T, wb types.Workbook)
	}{
		{
			name: "ID reports the configured spreadsheet id",
			check: func(t *testing.T, wb types.Workbook) {
				assert.Equal(t, ContractID, wb.ID())
			},
		},
		{
			name: "Sheet returns ErrSheetNotFound for a missing sheet",
			check: func(t *testing.T, wb types.Workbook) {
				_, err := wb.Sheet("missing")
				assert.ErrorIs(t, err, types.ErrSheetNotFound)

				_, ok, err := wb.SheetGID("missing")
				require.NoError(t, err)
				assert.False(t, ok)
			},
		},
		{
			name: "EnsureSheet creates once and clones the header",
			check: func(t *testing.T, wb types.Workbook) {
				header := types.DefaultMasterHeader()
				s, created, err := wb.EnsureSheet("Billing", header)
				require.NoError(t, err)
				assert.True(t, created)
				assert.Equal(t, "Billing", s.Name())

				again, created, err := wb.EnsureSheet("Billing", nil)
				require.NoError(t, err)
				assert.False(t, created)
				assert.Equal(t, s.GID(), again.GID())

				got, err := s.Header(2)
				require.NoError(t, err)
				require.Len(t, got.Values, 2)
				assert.Equal(t, "Category", got.Values[0].Get(types.ColCategory))
				assert.True(t, got.Style(1, types.ColName).Bold)
				require.NotNil(t, got.Validation(2, types.ColStatus))
				assert.Equal(t, []string{"Open", "In Progress", "Closed"}, got.Validation(2, types.ColStatus).Values)

				last, err := s.LastRow()
				require.NoError(t, err)
				assert.Equal(t, 2, last)
			},
		},
		{
			name: "EnsureSheet rejects an empty name",
			check: func(t *testing.T, wb types.Workbook) {
				_, _, err := wb.EnsureSheet("", nil)
				assert.ErrorIs(t, err, types.ErrInvalidSheetName)
			},
		},
		{
			name: "SheetNames keeps creation order and gids are distinct",
			check: func(t *testing.T, wb types.Workbook) {
				for _, n := range []string{"Shadower Admins", "Event Log", "Support"} {
					_, _, err := wb.EnsureSheet(n, nil)
					require.NoError(t, err)
				}
				names, err := wb.SheetNames()
				require.NoError(t, err)
				assert.Equal(t, []string{"Shadower Admins", "Event Log", "Support"}, names)

				seen := map[int64]bool{}
				for _, n := range names {
					gid, ok, err := wb.SheetGID(n)
					require.NoError(t, err)
					require.True(t, ok)
					assert.False(t, seen[gid], "duplicate gid %d", gid)
					seen[gid] = true
				}
			},
		},
		{
			name: "AppendRow writes after the last row",
			check: func(t *testing.T, wb types.Workbook) {
				s, _, err := wb.EnsureSheet("Support", &types.Header{Values: []types.Row{types.RowOf("h1"), types.RowOf("h2")}})
				require.NoError(t, err)

				row, err := s.AppendRow(types.RowOf("a", "b"))
				require.NoError(t, err)
				assert.Equal(t, 3, row)

				row, err = s.AppendRow(types.RowOf("c"))
				require.NoError(t, err)
				assert.Equal(t, 4, row)

				got, err := s.GetRow(3)
				require.NoError(t, err)
				assert.Equal(t, []string{"a", "b"}, got.Values())

				width, err := s.LastColumn()
				require.NoError(t, err)
				assert.Equal(t, 2, width)
			},
		},
		{
			name: "GetRow past the end is empty",
			check: func(t *testing.T, wb types.Workbook) {
				s, _, err := wb.EnsureSheet("Support", nil)
				require.NoError(t, err)
				got, err := s.GetRow(10)
				require.NoError(t, err)
				assert.Empty(t, got)

				_, err = s.GetRow(0)
				assert.ErrorIs(t, err, types.ErrInvalidRow)
			},
		},
		{
			name: "SetRow overwrites only the written columns",
			check: func(t *testing.T, wb types.Workbook) {
				s, _, err := wb.EnsureSheet("Support", nil)
				require.NoError(t, err)
				require.NoError(t, s.SetRow(3, types.RowOf("a", "b", "c")))
				require.NoError(t, s.SetRow(3, types.RowOf("x")))

				got, err := s.GetRow(3)
				require.NoError(t, err)
				assert.Equal(t, []string{"x", "b", "c"}, got.Values())
			},
		},
		{
			name: "DeleteRow shifts later rows up",
			check: func(t *testing.T, wb types.Workbook) {
				s, _, err := wb.EnsureSheet("Support", nil)
				require.NoError(t, err)
				for _, v := range []string{"r1", "r2", "r3", "r4", "r5"} {
					_, err := s.AppendRow(types.RowOf(v))
					require.NoError(t, err)
				}

				require.NoError(t, s.DeleteRow(3))

				rows, err := s.Rows(1)
				require.NoError(t, err)
				require.Len(t, rows, 4)
				assert.Equal(t, "r4", rows[2].Get(1))
				assert.Equal(t, "r5", rows[3].Get(1))

				last, err := s.LastRow()
				require.NoError(t, err)
				assert.Equal(t, 4, last)

				require.NoError(t, s.DeleteRow(99))
			},
		},
		{
			name: "FindByKey scans data rows only",
			check: func(t *testing.T, wb types.Workbook) {
				s, _, err := wb.EnsureSheet("Support", nil)
				require.NoError(t, err)
				require.NoError(t, s.SetRow(1, types.RowOf("", "", "id-1")))
				require.NoError(t, s.SetRow(3, types.RowOf("", "", "id-2")))
				require.NoError(t, s.SetRow(5, types.RowOf("", "", "id-1")))

				row, ok, err := s.FindByKey(3, "id-1")
				require.NoError(t, err)
				assert.True(t, ok)
				assert.Equal(t, 5, row)

				_, ok, err = s.FindByKey(3, "id-9")
				require.NoError(t, err)
				assert.False(t, ok)

				_, ok, err = s.FindByKey(3, "")
				require.NoError(t, err)
				assert.False(t, ok)

				_, _, err = s.FindByKey(0, "id-1")
				assert.ErrorIs(t, err, types.ErrInvalidColumn)
			},
		},
		{
			name: "Rows fills gaps with empty rows",
			check: func(t *testing.T, wb types.Workbook) {
				s, _, err := wb.EnsureSheet("Support", nil)
				require.NoError(t, err)
				require.NoError(t, s.SetRow(3, types.RowOf("a")))
				require.NoError(t, s.SetRow(5, types.RowOf("c")))

				rows, err := s.Rows(3)
				require.NoError(t, err)
				require.Len(t, rows, 3)
				assert.Equal(t, "a", rows[0].Get(1))
				assert.Empty(t, rows[1].Get(1))
				assert.Equal(t, "c", rows[2].Get(1))
			},
		},
		{
			name: "cells keep hyperlinks",
			check: func(t *testing.T, wb types.Workbook) {
				s, _, err := wb.EnsureSheet("Support", nil)
				require.NoError(t, err)
				link := types.Cell{Value: "Question", Link: "https://example.com/q"}
				require.NoError(t, s.SetCell(3, types.ColQuestionText, link))

				got, err := s.GetCell(3, types.ColQuestionText)
				require.NoError(t, err)
				assert.Equal(t, link, got)

				_, err = s.GetCell(3, 0)
				assert.ErrorIs(t, err, types.ErrInvalidColumn)
			},
		},
		{
			name: "Detach makes operations fail",
			check: func(t *testing.T, wb types.Workbook) {
				s, _, err := wb.EnsureSheet("Support", nil)
				require.NoError(t, err)
				require.NoError(t, wb.Detach())
				require.NoError(t, wb.Detach())

				_, err = wb.Sheet("Support")
				assert.ErrorIs(t, err, types.ErrWorkbookDetached)
				_, err = s.GetRow(3)
				assert.ErrorIs(t, err, types.ErrWorkbookDetached)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, newWorkbook(t))
		})
	}
}
