package xlsx

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/mesh-intelligence/shadowsync/internal/memory"
	"github.com/mesh-intelligence/shadowsync/internal/mirror"
	"github.com/mesh-intelligence/shadowsync/pkg/types"
)

const target = "sheet-under-test"

type seqIDs struct{ n int }

func (s *seqIDs) NewID() string {
	s.n++
	return fmt.Sprintf("id-%d", s.n)
}

func setupWorkbook(t *testing.T) types.Workbook {
	t.Helper()
	wb := memory.NewWorkbook()
	require.NoError(t, wb.Attach(types.Config{Backend: types.BackendMemory, SpreadsheetID: target}))
	t.Cleanup(func() { wb.Detach() })
	return wb
}

func openFile(t *testing.T, path string) *excelize.File {
	t.Helper()
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func TestExport(t *testing.T) {
	wb := setupWorkbook(t)
	master, _, err := wb.EnsureSheet(types.SheetMaster, types.DefaultMasterHeader())
	require.NoError(t, err)
	rec := types.MasterRecord{Name: "Alice", Identifier: "id-a", Category: "Support", Status: "Open"}.Row()
	rec = rec.SetCell(types.ColQuestionText, types.Cell{Value: "Refunds?", Link: "https://example.org/r"})
	_, err = master.AppendRow(rec)
	require.NoError(t, err)
	support, _, err := wb.EnsureSheet("Support", types.DefaultMasterHeader())
	require.NoError(t, err)
	_, err = support.AppendRow(rec)
	require.NoError(t, err)
	audit, _, err := wb.EnsureSheet(types.SheetEventLog, types.AuditHeader())
	require.NoError(t, err)
	link, err := mirror.RowLink(wb, target, types.SheetMaster, 3)
	require.NoError(t, err)
	_, err = audit.AppendRow(types.AuditEntry{Timestamp: time.Date(2025, 3, 4, 9, 30, 0, 0, time.UTC), Row: 3, Column: 9, Value: "Support", Link: link}.Cells())
	require.NoError(t, err)
	_, _, err = wb.EnsureSheet("Empty", nil)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, Export(wb, path))
	f := openFile(t, path)

	tests := []struct {
		name  string
		check func(t *testing.T)
	}{
		{
			name: "sheets keep workbook order",
			check: func(t *testing.T) {
				assert.Equal(t, []string{types.SheetMaster, "Support", types.SheetEventLog, "Empty"}, f.GetSheetList())
			},
		},
		{
			name: "values are written",
			check: func(t *testing.T) {
				rows, err := f.GetRows(types.SheetMaster)
				require.NoError(t, err)
				require.Len(t, rows, 3)
				assert.Equal(t, types.MasterColumnTitles, rows[0])
				assert.Equal(t, "generated", rows[1][types.ColIdentifier-1])
				assert.Equal(t, "id-a", rows[2][types.ColIdentifier-1])
			},
		},
		{
			name: "hyperlinks are carried",
			check: func(t *testing.T) {
				ok, url, err := f.GetCellHyperLink("Support", "C3")
				require.NoError(t, err)
				assert.True(t, ok)
				assert.Equal(t, "https://example.org/r", url)
			},
		},
		{
			name: "header styles are bold",
			check: func(t *testing.T) {
				idx, err := f.GetCellStyle(types.SheetMaster, "A1")
				require.NoError(t, err)
				style, err := f.GetStyle(idx)
				require.NoError(t, err)
				require.NotNil(t, style.Font)
				assert.True(t, style.Font.Bold)
			},
		},
		{
			name: "header columns are widened",
			check: func(t *testing.T) {
				for _, col := range []string{"A", "S"} {
					width, err := f.GetColWidth(types.SheetMaster, col)
					require.NoError(t, err)
					assert.Equal(t, float64(headerColWidth), width, col)
				}
				width, err := f.GetColWidth(types.SheetEventLog, "F")
				require.NoError(t, err)
				assert.Equal(t, float64(headerColWidth), width)
			},
		},
		{
			name: "validations cover data rows",
			check: func(t *testing.T) {
				dvs, err := f.GetDataValidations("Support")
				require.NoError(t, err)
				require.Len(t, dvs, 2)
				var cols []string
				for _, dv := range dvs {
					cols = append(cols, dv.Sqref[:2])
				}
				assert.ElementsMatch(t, []string{"H3", "L3"}, cols)
			},
		},
		{
			name: "audit links become formulas",
			check: func(t *testing.T) {
				formula, err := f.GetCellFormula(types.SheetEventLog, "F2")
				require.NoError(t, err)
				assert.Contains(t, formula, "HYPERLINK(")
				assert.Contains(t, formula, "range=A3")
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, tt.check)
	}
}

func TestExportEmptyWorkbook(t *testing.T) {
	wb := setupWorkbook(t)
	err := Export(wb, filepath.Join(t.TempDir(), "out.xlsx"))
	assert.ErrorIs(t, err, ErrEmptyWorkbook)
}

// writeResponses saves an xlsx file with a form header and rows.
func writeResponses(t *testing.T, sheet string, rows [][]string, links map[string]string) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	if sheet != "Sheet1" {
		require.NoError(t, f.SetSheetName("Sheet1", sheet))
	}
	all := append([][]string{types.FormResponseTitles}, rows...)
	for i, r := range all {
		ref, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		vals := make([]interface{}, len(r))
		for j, v := range r {
			vals[j] = v
		}
		require.NoError(t, f.SetSheetRow(sheet, ref, &vals))
	}
	for ref, link := range links {
		require.NoError(t, f.SetCellHyperLink(sheet, ref, link, "External"))
	}
	path := filepath.Join(t.TempDir(), "responses.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestReadResponses(t *testing.T) {
	path := writeResponses(t, types.SheetFormResponses, [][]string{
		{"2025-03-01 10:00:00", "Alice", "Refunds?", "", "Remote", "Dana"},
		{},
		{"2025-03-02 11:00:00", "Bo", "Disputes?"},
	}, map[string]string{"C2": "https://example.org/r"})

	rows, err := ReadResponses(path, "")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, types.Cell{Value: "Refunds?", Link: "https://example.org/r"}, rows[0].Cell(3))
	assert.Len(t, rows[1], types.FormResponseCols, "short rows are padded to the header width")
	assert.Equal(t, "Bo", rows[1].Get(types.ColName))

	_, err = ReadResponses(path, "Nope")
	assert.ErrorIs(t, err, ErrSheetMissing)
}

func TestReadResponsesFallsBackToFirstSheet(t *testing.T) {
	path := writeResponses(t, "Export", [][]string{{"t", "Alice"}}, nil)
	rows, err := ReadResponses(path, "")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Alice", rows[0].Get(types.ColName))
}

func TestImport(t *testing.T) {
	wb := setupWorkbook(t)
	h := mirror.NewHandler(wb, mirror.Options{TargetID: target, IDs: &seqIDs{}})
	path := writeResponses(t, types.SheetFormResponses, [][]string{
		{"2025-03-01 10:00:00", "Alice", "Refunds?", "", "Remote", "Dana"},
		{"2025-03-02 11:00:00", "Bo", "Disputes?", "", "Office", "Eve"},
	}, nil)

	report, err := Import(h, path, "")
	require.NoError(t, err)
	assert.Equal(t, &ImportReport{Rows: 2, Identifiers: []string{"id-1", "id-2"}}, report)

	master, err := wb.Sheet(types.SheetMaster)
	require.NoError(t, err)
	rows, err := master.Rows(types.FirstDataRow)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Alice", rows[0].Get(types.ColName))
	assert.Equal(t, "id-2", rows[1].Get(types.ColIdentifier))
	assert.Equal(t, "FALSE", rows[1].Get(types.ColAvailability))

	form, err := wb.Sheet(types.SheetFormResponses)
	require.NoError(t, err)
	last, err := form.LastRow()
	require.NoError(t, err)
	assert.Equal(t, 3, last)
}
