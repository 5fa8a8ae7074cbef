package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/shadowsync/internal/sheettest"
	"github.com/mesh-intelligence/shadowsync/pkg/types"
)

func newAttached(t *testing.T) types.Workbook {
	t.Helper()
	wb := NewWorkbook()
	require.NoError(t, wb.Attach(types.Config{Backend: types.BackendMemory, SpreadsheetID: sheettest.ContractID}))
	t.Cleanup(func() { wb.Detach() })
	return wb
}

func TestWorkbookContract(t *testing.T) {
	sheettest.Run(t, newAttached)
}

func TestAttachTwice(t *testing.T) {
	wb := NewWorkbook()
	cfg := types.Config{Backend: types.BackendMemory, SpreadsheetID: "x"}
	require.NoError(t, wb.Attach(cfg))
	assert.ErrorIs(t, wb.Attach(cfg), types.ErrAlreadyAttached)
}

func TestAttachValidatesConfig(t *testing.T) {
	wb := NewWorkbook()
	assert.ErrorIs(t, wb.Attach(types.Config{Backend: types.BackendMemory}), types.ErrSpreadsheetIDEmpty)
}

func TestReattachKeepsContents(t *testing.T) {
	wb := NewWorkbook()
	cfg := types.Config{Backend: types.BackendMemory, SpreadsheetID: "x"}
	require.NoError(t, wb.Attach(cfg))
	s, _, err := wb.EnsureSheet("Support", nil)
	require.NoError(t, err)
	_, err = s.AppendRow(types.RowOf("kept"))
	require.NoError(t, err)
	require.NoError(t, wb.Detach())

	require.NoError(t, wb.Attach(cfg))
	s, err = wb.Sheet("Support")
	require.NoError(t, err)
	got, err := s.GetRow(1)
	require.NoError(t, err)
	assert.Equal(t, "kept", got.Get(1))
}

func TestFirstSheetHasGIDZero(t *testing.T) {
	wb := newAttached(t)
	first, _, err := wb.EnsureSheet("Form Responses", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), first.GID())
}
