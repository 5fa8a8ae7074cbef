package mirror

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/shadowsync/pkg/types"
)

func TestReverseSync(t *testing.T) {
	t.Run("category edit overwrites master row", func(t *testing.T) {
		wb := setupWorkbook(t)
		master := seedMaster(t, wb, record("Zed", "id-z", "Billing"), record("Alice", "id-a", "Support"))
		support := seedCategory(t, wb, "Support", record("Alice", "id-a", "Support"))
		require.NoError(t, support.SetCell(3, types.ColNotes, types.Cell{Value: "prefers mornings"}))

		res, err := NewReverseSync(wb).Sync(types.EditEvent{Sheet: "Support", Row: 3, Column: types.ColNotes})
		require.NoError(t, err)
		assert.True(t, res.Found)
		assert.Equal(t, 4, res.MasterRow)

		got, err := master.GetRow(4)
		require.NoError(t, err)
		assert.Equal(t, "prefers mornings", got.Get(types.ColNotes))
		untouched, err := master.GetRow(3)
		require.NoError(t, err)
		assert.Equal(t, "id-z", untouched.Get(types.ColIdentifier))
	})

	t.Run("category column is copied too", func(t *testing.T) {
		wb := setupWorkbook(t)
		master := seedMaster(t, wb, record("Alice", "id-a", "Support"))
		support := seedCategory(t, wb, "Support", record("Alice", "id-a", "Support"))
		require.NoError(t, support.SetCell(3, types.ColCategory, types.Cell{Value: "Billing"}))

		_, err := NewReverseSync(wb).Sync(types.EditEvent{Sheet: "Support", Row: 3, Column: types.ColCategory})
		require.NoError(t, err)
		got, err := master.GetRow(3)
		require.NoError(t, err)
		assert.Equal(t, "Billing", got.Get(types.ColCategory))
	})

	t.Run("unknown identifier is a no-op", func(t *testing.T) {
		wb := setupWorkbook(t)
		master := seedMaster(t, wb, record("Alice", "id-a", "Support"))
		seedCategory(t, wb, "Support", record("Ghost", "id-ghost", "Support"))
		before, err := master.Rows(1)
		require.NoError(t, err)

		res, err := NewReverseSync(wb).Sync(types.EditEvent{Sheet: "Support", Row: 3, Column: types.ColName})
		require.NoError(t, err)
		assert.False(t, res.Found)
		after, err := master.Rows(1)
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})

	t.Run("empty identifier is a no-op", func(t *testing.T) {
		wb := setupWorkbook(t)
		seedMaster(t, wb, record("Alice", "id-a", "Support"))
		seedCategory(t, wb, "Support", record("Nobody", "", "Support"))

		res, err := NewReverseSync(wb).Sync(types.EditEvent{Sheet: "Support", Row: 3, Column: types.ColName})
		require.NoError(t, err)
		assert.False(t, res.Found)
		assert.Empty(t, res.Identifier)
	})

	t.Run("missing master is a no-op", func(t *testing.T) {
		wb := setupWorkbook(t)
		seedCategory(t, wb, "Support", record("Alice", "id-a", "Support"))

		res, err := NewReverseSync(wb).Sync(types.EditEvent{Sheet: "Support", Row: 3, Column: types.ColName})
		require.NoError(t, err)
		assert.False(t, res.Found)
	})
}
