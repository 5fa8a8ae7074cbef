package mirror

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/shadowsync/pkg/types"
)

// moveCategory rewrites the category cell of master row 3 the way the host
// would before delivering the edit event.
func moveCategory(t *testing.T, master types.Sheet, row int, category string) {
	t.Helper()
	require.NoError(t, master.SetCell(row, types.ColCategory, types.Cell{Value: category}))
}

func TestCategorySync(t *testing.T) {
	tests := []struct {
		name  string
		check func(t *testing.T)
	}{
		{
			name: "category change moves the copy",
			check: func(t *testing.T) {
				wb := setupWorkbook(t)
				master := seedMaster(t, wb, record("Alice", "id-a", "Billing"))
				seedCategory(t, wb, "Billing", record("Alice", "id-a", "Billing"))
				moveCategory(t, master, 3, "Support")

				res, err := NewCategorySync(wb, false).Sync(types.EditEvent{
					Sheet: types.SheetMaster, Row: 3, Column: types.ColCategory,
					Value: "Support", OldValue: strPtr("Billing"),
				})
				require.NoError(t, err)

				assert.Equal(t, "Billing", res.OldCategory)
				assert.Equal(t, "Support", res.NewCategory)
				assert.True(t, res.Created)
				assert.True(t, res.Appended)
				assert.Equal(t, 3, res.Row)
				assert.Equal(t, []string{"Billing"}, res.RemovedFrom)

				assert.Empty(t, identifiers(t, sheet(t, wb, "Billing")))
				support := dataRows(t, sheet(t, wb, "Support"))
				require.Len(t, support, 1)
				want, err := master.GetRow(3)
				require.NoError(t, err)
				assert.True(t, want.Equal(support[0]))
			},
		},
		{
			name: "new category sheet clones the master header",
			check: func(t *testing.T) {
				wb := setupWorkbook(t)
				master := seedMaster(t, wb, record("Alice", "id-a", "Support"))

				_, err := NewCategorySync(wb, false).Sync(types.EditEvent{
					Sheet: types.SheetMaster, Row: 3, Column: types.ColCategory, Value: "Support",
				})
				require.NoError(t, err)

				want, err := master.Header(2)
				require.NoError(t, err)
				got, err := sheet(t, wb, "Support").Header(2)
				require.NoError(t, err)
				assert.Equal(t, want, got)
				assert.True(t, got.Style(1, 1).Bold)
				require.NotNil(t, got.Validation(2, types.ColStatus))
				assert.Equal(t, []string{"Open", "In Progress", "Closed"}, got.Validation(2, types.ColStatus).Values)
			},
		},
		{
			name: "non-category edit updates the copy in place",
			check: func(t *testing.T) {
				wb := setupWorkbook(t)
				master := seedMaster(t, wb, record("Alice", "id-a", "Billing"))
				seedCategory(t, wb,
					"Billing",
					record("Zed", "id-z", "Billing"),
					record("Alice", "id-a", "Billing"),
				)
				require.NoError(t, master.SetCell(3, types.ColStatus, types.Cell{Value: "Closed"}))

				res, err := NewCategorySync(wb, false).Sync(types.EditEvent{
					Sheet: types.SheetMaster, Row: 3, Column: types.ColStatus, Value: "Closed",
				})
				require.NoError(t, err)
				assert.False(t, res.Appended)
				assert.Equal(t, 4, res.Row)
				assert.Empty(t, res.RemovedFrom)

				billing := sheet(t, wb, "Billing")
				assert.Equal(t, []string{"id-z", "id-a"}, identifiers(t, billing))
				got, err := billing.GetRow(4)
				require.NoError(t, err)
				assert.Equal(t, "Closed", got.Get(types.ColStatus))
			},
		},
		{
			name: "repeated sync keeps a single copy",
			check: func(t *testing.T) {
				wb := setupWorkbook(t)
				seedMaster(t, wb, record("Alice", "id-a", "Support"))
				c := NewCategorySync(wb, false)
				ev := types.EditEvent{Sheet: types.SheetMaster, Row: 3, Column: types.ColName, Value: "Alice"}

				for i := 0; i < 3; i++ {
					_, err := c.Sync(ev)
					require.NoError(t, err)
				}
				assert.Equal(t, []string{"id-a"}, identifiers(t, sheet(t, wb, "Support")))
			},
		},
		{
			name: "cleared trailing cells propagate",
			check: func(t *testing.T) {
				wb := setupWorkbook(t)
				full := record("Alice", "id-a", "Support").Set(types.ColNotes, "call first")
				master := seedMaster(t, wb, full)
				seedCategory(t, wb, "Support", full)
				require.NoError(t, master.SetCell(3, types.ColNotes, types.Cell{}))

				_, err := NewCategorySync(wb, false).Sync(types.EditEvent{
					Sheet: types.SheetMaster, Row: 3, Column: types.ColNotes,
				})
				require.NoError(t, err)
				got, err := sheet(t, wb, "Support").GetRow(3)
				require.NoError(t, err)
				assert.Equal(t, "", got.Get(types.ColNotes))
			},
		},
		{
			name: "cleared category removes the copy",
			check: func(t *testing.T) {
				wb := setupWorkbook(t)
				master := seedMaster(t, wb, record("Alice", "id-a", "Billing"))
				seedCategory(t, wb, "Billing", record("Alice", "id-a", "Billing"))
				moveCategory(t, master, 3, "")

				res, err := NewCategorySync(wb, false).Sync(types.EditEvent{
					Sheet: types.SheetMaster, Row: 3, Column: types.ColCategory, OldValue: strPtr("Billing"),
				})
				require.NoError(t, err)
				assert.Equal(t, []string{"Billing"}, res.RemovedFrom)
				assert.Zero(t, res.Row)
				assert.Empty(t, identifiers(t, sheet(t, wb, "Billing")))

				names, err := wb.SheetNames()
				require.NoError(t, err)
				assert.Equal(t, []string{types.SheetMaster, "Billing"}, names)
			},
		},
		{
			name: "unknown old value leaves stale copy without sweep",
			check: func(t *testing.T) {
				wb := setupWorkbook(t)
				master := seedMaster(t, wb, record("Alice", "id-a", "Billing"))
				seedCategory(t, wb, "Billing", record("Alice", "id-a", "Billing"))
				moveCategory(t, master, 3, "Support")

				res, err := NewCategorySync(wb, false).Sync(types.EditEvent{
					Sheet: types.SheetMaster, Row: 3, Column: types.ColCategory, Value: "Support",
				})
				require.NoError(t, err)
				assert.False(t, res.OldKnown)
				assert.Empty(t, res.RemovedFrom)
				assert.Equal(t, []string{"id-a"}, identifiers(t, sheet(t, wb, "Billing")))
				assert.Equal(t, []string{"id-a"}, identifiers(t, sheet(t, wb, "Support")))
			},
		},
		{
			name: "sweep removes copies from every other category",
			check: func(t *testing.T) {
				wb := setupWorkbook(t)
				master := seedMaster(t, wb, record("Alice", "id-a", "Billing"), record("Bo", "id-b", "Billing"))
				seedCategory(t, wb, "Billing", record("Alice", "id-a", "Billing"), record("Bo", "id-b", "Billing"))
				seedCategory(t, wb, "Legacy", record("Alice", "id-a", "Legacy"))
				moveCategory(t, master, 3, "Support")

				res, err := NewCategorySync(wb, true).Sync(types.EditEvent{
					Sheet: types.SheetMaster, Row: 3, Column: types.ColCategory, Value: "Support",
				})
				require.NoError(t, err)
				assert.ElementsMatch(t, []string{"Billing", "Legacy"}, res.RemovedFrom)
				assert.Equal(t, []string{"id-b"}, identifiers(t, sheet(t, wb, "Billing")))
				assert.Empty(t, identifiers(t, sheet(t, wb, "Legacy")))
				assert.Equal(t, []string{"id-a"}, identifiers(t, sheet(t, wb, "Support")))
			},
		},
		{
			name: "row without identifier is skipped",
			check: func(t *testing.T) {
				wb := setupWorkbook(t)
				seedMaster(t, wb, record("Alice", "", "Support"))

				res, err := NewCategorySync(wb, false).Sync(types.EditEvent{
					Sheet: types.SheetMaster, Row: 3, Column: types.ColCategory, Value: "Support",
				})
				require.NoError(t, err)
				assert.Equal(t, SkipNoIdentifier, res.Skipped)
				_, err = wb.Sheet("Support")
				assert.ErrorIs(t, err, types.ErrSheetNotFound)
			},
		},
		{
			name: "reserved category is skipped",
			check: func(t *testing.T) {
				wb := setupWorkbook(t)
				seedMaster(t, wb, record("Alice", "id-a", types.SheetEventLog))

				res, err := NewCategorySync(wb, false).Sync(types.EditEvent{
					Sheet: types.SheetMaster, Row: 3, Column: types.ColCategory, Value: types.SheetEventLog,
				})
				require.NoError(t, err)
				assert.Equal(t, SkipReservedCategory, res.Skipped)
				_, err = wb.Sheet(types.SheetEventLog)
				assert.ErrorIs(t, err, types.ErrSheetNotFound)
			},
		},
		{
			name: "missing master sheet is skipped",
			check: func(t *testing.T) {
				wb := setupWorkbook(t)
				res, err := NewCategorySync(wb, false).Sync(types.EditEvent{Sheet: types.SheetMaster, Row: 3})
				require.NoError(t, err)
				assert.Equal(t, SkipNoMaster, res.Skipped)
			},
		},
		{
			name: "master row is written back unchanged",
			check: func(t *testing.T) {
				wb := setupWorkbook(t)
				master := seedMaster(t, wb, record("Alice", "id-a", "Support"))
				before, err := master.GetRow(3)
				require.NoError(t, err)

				_, err = NewCategorySync(wb, false).Sync(types.EditEvent{Sheet: types.SheetMaster, Row: 3, Column: types.ColName})
				require.NoError(t, err)
				after, err := master.GetRow(3)
				require.NoError(t, err)
				assert.True(t, before.Equal(after))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, tt.check)
	}
}
