package mirror

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/shadowsync/pkg/types"
)

func formResponse() types.Row {
	return types.RowOf("2025-03-01 10:00:00", "Alice", "What is Billing?", "https://example.org/q", "Remote", "Dana")
}

func TestIngest(t *testing.T) {
	tests := []struct {
		name  string
		check func(t *testing.T)
	}{
		{
			name: "appends last response with identifier and defaults",
			check: func(t *testing.T) {
				wb := setupWorkbook(t)
				form, _, err := wb.EnsureSheet(types.SheetFormResponses, types.DefaultFormHeader())
				require.NoError(t, err)
				_, err = form.AppendRow(types.RowOf("old", "Older"))
				require.NoError(t, err)
				_, err = form.AppendRow(formResponse())
				require.NoError(t, err)
				seedMaster(t, wb)

				in := NewIngestor(wb, &seqIDs{}, NewAuditWriter(wb, fixedClock))
				res, err := in.Ingest(types.FormSubmitEvent{SourceID: testTarget})
				require.NoError(t, err)
				require.NotNil(t, res)
				assert.Equal(t, "id-1", res.Identifier)
				assert.Equal(t, 3, res.FormRow)
				assert.Equal(t, 3, res.Row)

				got, err := sheet(t, wb, types.SheetMaster).GetRow(3)
				require.NoError(t, err)
				want := append(formResponse().Values(), "id-1", "", "", "", "", "FALSE")
				assert.Equal(t, want, got.Values())
				assert.Equal(t, "id-1", got.Get(types.ColIdentifier))
				assert.Equal(t, "FALSE", got.Get(types.ColAvailability))
			},
		},
		{
			name: "creates master and audit sheets when absent",
			check: func(t *testing.T) {
				wb := setupWorkbook(t)
				form, _, err := wb.EnsureSheet(types.SheetFormResponses, types.DefaultFormHeader())
				require.NoError(t, err)
				_, err = form.AppendRow(formResponse())
				require.NoError(t, err)

				_, err = NewIngestor(wb, &seqIDs{}, NewAuditWriter(wb, fixedClock)).Ingest(types.FormSubmitEvent{})
				require.NoError(t, err)

				names, err := wb.SheetNames()
				require.NoError(t, err)
				assert.Equal(t, []string{types.SheetFormResponses, types.SheetEventLog, types.SheetMaster}, names)
				assert.Empty(t, dataRows(t, sheet(t, wb, types.SheetEventLog)), "ingestion is not an edit")
			},
		},
		{
			name: "header-only form is a no-op",
			check: func(t *testing.T) {
				wb := setupWorkbook(t)
				_, _, err := wb.EnsureSheet(types.SheetFormResponses, types.DefaultFormHeader())
				require.NoError(t, err)
				master := seedMaster(t, wb)

				res, err := NewIngestor(wb, &seqIDs{}, NewAuditWriter(wb, fixedClock)).Ingest(types.FormSubmitEvent{})
				require.NoError(t, err)
				assert.Nil(t, res)
				last, err := master.LastRow()
				require.NoError(t, err)
				assert.Equal(t, 2, last)
			},
		},
		{
			name: "each submission gets a distinct identifier",
			check: func(t *testing.T) {
				wb := setupWorkbook(t)
				form, _, err := wb.EnsureSheet(types.SheetFormResponses, types.DefaultFormHeader())
				require.NoError(t, err)
				in := NewIngestor(wb, UUIDGenerator{}, NewAuditWriter(wb, fixedClock))

				for i := 0; i < 3; i++ {
					_, err = form.AppendRow(formResponse())
					require.NoError(t, err)
					_, err = in.Ingest(types.FormSubmitEvent{})
					require.NoError(t, err)
				}
				ids := identifiers(t, sheet(t, wb, types.SheetMaster))
				require.Len(t, ids, 3)
				assert.NotEqual(t, ids[0], ids[1])
				assert.NotEqual(t, ids[1], ids[2])
				assert.NotEqual(t, ids[0], ids[2])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, tt.check)
	}
}
