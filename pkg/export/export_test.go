package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func financeDataset() Dataset {
	return Dataset{
		Headers: []string{"Month", "Income", "Expense", "Net"},
		Rows: []map[string]string{
			{"Month": "2024-01", "Income": "1500.00", "Expense": "900.00", "Net": "600.00"},
			{"Month": "2024-02", "Income": "0.00"},
		},
		Totals: map[string]string{"Month": "Total", "Income": "1500.00", "Expense": "900.00", "Net": "600.00"},
	}
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(financeDataset())
	require.NoError(t, err)
	expected := "Month,Income,Expense,Net\n" +
		"2024-01,1500.00,900.00,600.00\n" +
		"2024-02,0.00,,\n" +
		"Total,1500.00,900.00,600.00\n"
	assert.Equal(t, expected, string(out))
}

func TestExportersRequireHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.ErrorIs(t, err, ErrNoHeaders)
	_, err = NewPDFExporter().Render(Dataset{}, "x")
	assert.ErrorIs(t, err, ErrNoHeaders)
}

func TestPDFExporterRender(t *testing.T) {
	out, err := NewPDFExporter().Render(financeDataset(), "Finance 2024")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}
