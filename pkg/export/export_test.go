package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sample() Dataset {
	return Dataset{
		Headers: []string{"Name", "CGPA"},
		Rows: []map[string]string{
			{"Name": "Asha", "CGPA": "8.1"},
			{"Name": "Ravi"},
		},
	}
}

func TestCSVRendersPlaceholder(t *testing.T) {
	out, err := NewCSVExporter("N/A").Render(sample())
	require.NoError(t, err)
	assert.Equal(t, "Name,CGPA\nAsha,8.1\nRavi,N/A\n", string(out))

	_, err = NewCSVExporter("").Render(Dataset{})
	require.Error(t, err)
}

func TestXLSXRendersSheetPerName(t *testing.T) {
	out, err := NewXLSXExporter("N/A").Render([]Sheet{
		{Name: "CSE", Data: sample()},
		{Name: "IT", Data: sample()},
		{Name: "cse", Data: sample()},
	})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close() //nolint:errcheck

	assert.Equal(t, []string{"CSE", "IT", "cse (2)"}, f.GetSheetList())
	v, err := f.GetCellValue("IT", "B3")
	require.NoError(t, err)
	assert.Equal(t, "N/A", v)
	v, err = f.GetCellValue("CSE", "A2")
	require.NoError(t, err)
	assert.Equal(t, "Asha", v)
}

func TestSheetNameSanitises(t *testing.T) {
	assert.Equal(t, "A-B-C", SheetName("A/B:C"))
	assert.Equal(t, "Sheet", SheetName("  "))
	assert.Len(t, SheetName("Computer Science and Business Systems Department"), 31)
}

func TestPDFRenders(t *testing.T) {
	out, err := NewPDFExporter("N/A").Render(sample(), "Applications")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}
