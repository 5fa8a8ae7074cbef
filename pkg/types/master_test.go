package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMasterRecord(t *testing.T) {
	row := RowOf("2024-01-01", "Alice", "Q?", "", "NYC", "Bob", "id-1", "Open", "Billing",
		"none", "qname", "TRUE", "s1", "yes", "s2", "", "", "", "notes")

	rec := ParseMasterRecord(row)
	assert.Equal(t, "Alice", rec.Name)
	assert.Equal(t, "id-1", rec.Identifier)
	assert.Equal(t, "Billing", rec.Category)
	assert.Equal(t, ShadowPair{Shadow: "s1", Completed: "yes"}, rec.Shadows[0])
	assert.Equal(t, "s2", rec.Shadows[1].Shadow)
	assert.Equal(t, "notes", rec.Notes)

	out := rec.Row()
	require.Len(t, out, MasterColumns)
	assert.True(t, row.Equal(out))
}

func TestParseMasterRecordShortRow(t *testing.T) {
	rec := ParseMasterRecord(RowOf("2024-01-01", "Alice"))
	assert.Equal(t, "Alice", rec.Name)
	assert.Empty(t, rec.Identifier)
	assert.Empty(t, rec.Category)
}

func TestDefaultHeaders(t *testing.T) {
	h := DefaultMasterHeader()
	require.Len(t, h.Values, 2)
	assert.Equal(t, MasterColumns, h.Width())
	assert.Equal(t, "ID", h.Values[0].Get(ColIdentifier))
	assert.Equal(t, "Category", h.Values[0].Get(ColCategory))
	assert.True(t, h.Style(1, ColName).Bold)
	assert.Equal(t, ValidationList, h.Validation(2, ColStatus).Kind)

	f := DefaultFormHeader()
	assert.Equal(t, FormResponseCols, f.Width())
}
