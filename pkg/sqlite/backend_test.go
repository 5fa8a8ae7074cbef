package sqlite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/shadowsync/pkg/types"
)

func TestNewBackend(t *testing.T) {
	dir := t.TempDir()
	wb := NewBackend()
	require.NoError(t, wb.Attach(types.Config{Backend: types.BackendSQLite, DataDir: dir, SpreadsheetID: "abc"}))

	_, created, err := wb.EnsureSheet(types.SheetMaster, types.DefaultMasterHeader())
	require.NoError(t, err)
	assert.True(t, created)
	require.NoError(t, wb.Detach())

	again := NewBackend()
	require.NoError(t, again.Attach(types.Config{Backend: types.BackendSQLite, DataDir: dir, SpreadsheetID: "abc"}))
	defer again.Detach()
	names, err := again.SheetNames()
	require.NoError(t, err)
	assert.Equal(t, []string{types.SheetMaster}, names)
}
