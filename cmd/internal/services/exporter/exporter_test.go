package exporter

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleTable() Table {
	return Table{
		Name:    "listings",
		Columns: []string{"listing_id", "area_sqm", "floors_norm"},
		Rows: []map[string]any{
			{"listing_id": "a1", "area_sqm": 100.0, "floors_norm": "1–2"},
			{"listing_id": "b2", "area_sqm": nil, "floors_norm": nil},
		},
	}
}

func TestBuildXLSX(t *testing.T) {
	book, err := BuildXLSX([]Table{
		sampleTable(),
		{Name: "buildings", Columns: []string{"building_id"}, Rows: nil},
	})
	require.NoError(t, err)
	require.NotEmpty(t, book)

	f, err := excelize.OpenReader(bytes.NewReader(book))
	require.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t, []string{"listings", "buildings"}, f.GetSheetList())

	rows, err := f.GetRows("listings")
	require.NoError(t, err)
	require.Len(t, rows, 3, "шапка и две строки данных")
	assert.Equal(t, []string{"listing_id", "area_sqm", "floors_norm"}, rows[0])
	assert.Equal(t, "a1", rows[1][0])
	assert.Equal(t, "1–2", rows[1][2])

	t.Run("пустой лист содержит только шапку", func(t *testing.T) {
		rows, err := f.GetRows("buildings")
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, []string{"building_id"}, rows[0])
	})
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleTable()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"listing_id", "area_sqm", "floors_norm"}, records[0])
	assert.Equal(t, []string{"a1", "100", "1–2"}, records[1])
	assert.Equal(t, []string{"b2", "", ""}, records[2])
}
