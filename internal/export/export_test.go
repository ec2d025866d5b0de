package export

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/homefront-labs/leadscout/internal/model"
)

var fixedNow = time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)

func testLeads() []model.Lead {
	return []model.Lead{
		{
			FirstName:     "Jane",
			LastName:      "Doe",
			CompanyName:   "Lakeside Realty",
			WebsiteURL:    "https://lakeside.example.com",
			Email:         "jane@gmail.com",
			Phone:         "(512) 555-0147",
			LocationMatch: true,
			IntentMatch:   true,
			LeadSource:    model.SourceCSE,
			CreatedAt:     fixedNow.AddDate(0, 0, -1),
		},
		{
			WebsiteURL: "https://example.com/bare",
			LeadSource: model.SourceCSE,
			CreatedAt:  fixedNow.AddDate(0, 0, -100),
		},
	}
}

func TestExporter_CSV(t *testing.T) {
	dir := t.TempDir()
	e := New(dir, WithClock(func() time.Time { return fixedNow }))

	path, err := e.CSV(testLeads(), "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "leads_20260830_100000.csv"), path)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, columns, records[0])
	assert.Equal(t, "Jane", records[1][0])
	assert.Equal(t, "https://lakeside.example.com", records[1][3])
	// 35 + 30 + 20 recency + 20 contact + 3 source + 10 good = 100 cap
	assert.Equal(t, "100", records[1][6])
	assert.Equal(t, "20", records[1][7])
	assert.Equal(t, "true", records[1][8])
	assert.Equal(t, "false", records[2][8])
}

func TestExporter_CSV_NamedFile(t *testing.T) {
	dir := t.TempDir()
	e := New(dir)

	path, err := e.CSV(nil, "mylist")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "mylist.csv"), path)
}

func TestExporter_XLSX(t *testing.T) {
	dir := t.TempDir()
	e := New(dir, WithClock(func() time.Time { return fixedNow }))

	path, err := e.XLSX(testLeads(), "leads.xlsx")
	require.NoError(t, err)

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, f.Sheets, 1)

	sheet := f.Sheets[0]
	assert.Equal(t, sheetName, sheet.Name)
	require.Len(t, sheet.Rows, 3)

	header := make([]string, 0, len(columns))
	for _, cell := range sheet.Rows[0].Cells {
		header = append(header, cell.String())
	}
	assert.Equal(t, columns, header)

	assert.Equal(t, "Jane", sheet.Rows[1].Cells[0].String())
	assert.Equal(t, "100", sheet.Rows[1].Cells[6].String())
}
