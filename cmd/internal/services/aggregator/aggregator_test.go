package aggregator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zhukovvlad/listings-go/cmd/internal/api_models"
	"github.com/zhukovvlad/listings-go/cmd/internal/rules"
)

func strRef(s string) *string { return &s }

func TestCounterMode(t *testing.T) {
	t.Run("побеждает самое частое", func(t *testing.T) {
		c := newCounter()
		c.Add("а")
		c.Add("б")
		c.Add("б")

		got := c.Mode()
		require.NotNil(t, got)
		assert.Equal(t, "б", *got)
	})

	t.Run("при равенстве побеждает встреченное раньше", func(t *testing.T) {
		c := newCounter()
		c.Add("а")
		c.Add("б")
		c.Add("б")
		c.Add("а")

		got := c.Mode()
		require.NotNil(t, got)
		assert.Equal(t, "а", *got)
	})

	t.Run("пустой счетчик дает nil", func(t *testing.T) {
		assert.Nil(t, newCounter().Mode())
	})
}

func TestGroupToBuildingsSingleBuilding(t *testing.T) {
	r := rules.Default()
	objects := []api_models.ExtractedObject{
		{
			ObjectName: "Башня",
			Buildings: []api_models.ExtractedBuilding{
				{
					BuildingName: strRef("стр. 1"),
					Listings: []api_models.RawListing{
						{"use_type": "office", "area_sqm": 100, "rent_rate": 12000, "rent_vat": "не применяется", "floor": "1"},
						{"use_type": "office", "area_sqm": 50, "rent_rate": 18000, "rent_vat": "не применяется", "floor": "1-2"},
					},
				},
			},
		},
	}

	rows := GroupToBuildings(objects, r, "rid1", "/data/x.pdf")
	require.Len(t, rows, 1)
	row := rows[0]

	assert.Equal(t, "bashnya__str-1", row["building_id"])
	assert.Equal(t, "Башня, стр. 1", row["building_name"])
	assert.Equal(t, "1–2", row["floors_covered_norm"])
	assert.Equal(t, 150.0, row["area_sqm_total"])
	assert.Equal(t, 2, row["listing_count"])
	assert.Equal(t, "офис", row["use_type_set_norm"])
	assert.Equal(t, 12000.0, row["rent_rate_year_sqm_base_min"])
	assert.Equal(t, 15000.0, row["rent_rate_year_sqm_base_avg"])
	assert.Equal(t, 18000.0, row["rent_rate_year_sqm_base_max"])
	assert.Equal(t, "не применяется", row["rent_vat_norm_mode"])
	assert.Equal(t, "x.pdf", row["source_files"])
	assert.Equal(t, "rid1", row["request_id"])
}

func TestGroupToBuildingsTwoBuildings(t *testing.T) {
	r := rules.Default()
	objects := []api_models.ExtractedObject{
		{
			ObjectName: "Объект",
			Buildings: []api_models.ExtractedBuilding{
				{BuildingName: strRef("стр. 1"), Listings: []api_models.RawListing{{"area_sqm": 100}}},
				{BuildingName: strRef("стр. 2"), Listings: []api_models.RawListing{{"area_sqm": 50}}},
			},
		},
	}

	rows := GroupToBuildings(objects, r, "rid1", "x.pdf")
	require.Len(t, rows, 2)
	assert.Equal(t, "obekt__str-1", rows[0]["building_id"])
	assert.Equal(t, "obekt__str-2", rows[1]["building_id"])
	assert.Equal(t, "obekt", rows[0]["object_id"])
	assert.Equal(t, "obekt", rows[1]["object_id"])
}

func TestGroupToBuildingsDeliveryDates(t *testing.T) {
	r := rules.Default()

	t.Run("минимальная дата", func(t *testing.T) {
		objects := []api_models.ExtractedObject{{
			ObjectName: "Объект",
			Buildings: []api_models.ExtractedBuilding{{
				Listings: []api_models.RawListing{
					{"delivery_date": "01.03.2026"},
					{"delivery_date": "01.11.2025"},
				},
			}},
		}}
		rows := GroupToBuildings(objects, r, "rid", "x.pdf")
		require.Len(t, rows, 1)
		assert.Equal(t, "2025-11-01", rows[0]["delivery_date_earliest"])
	})

	t.Run("сейчас перекрывает любые даты", func(t *testing.T) {
		objects := []api_models.ExtractedObject{{
			ObjectName: "Объект",
			Buildings: []api_models.ExtractedBuilding{{
				Listings: []api_models.RawListing{
					{"delivery_date": "01.03.2026"},
					{"delivery_date": "свободно"},
				},
			}},
		}}
		rows := GroupToBuildings(objects, r, "rid", "x.pdf")
		require.Len(t, rows, 1)
		assert.Equal(t, "сейчас", rows[0]["delivery_date_earliest"])
	})
}

func TestGroupToBuildingsEmptyBuilding(t *testing.T) {
	r := rules.Default()
	objects := []api_models.ExtractedObject{{
		ObjectName: "Комета",
		Buildings:  []api_models.ExtractedBuilding{{BuildingName: nil}},
	}}

	rows := GroupToBuildings(objects, r, "rid", "x.pdf")
	require.Len(t, rows, 1, "здание без объявлений тоже получает строку")
	assert.Equal(t, "kometa", rows[0]["building_id"])
	assert.Equal(t, 0, rows[0]["listing_count"])
	assert.Nil(t, rows[0]["rent_rate_year_sqm_base_avg"])
}

func TestGroupToBuildingsColumnsExact(t *testing.T) {
	r := rules.Default()
	rows := GroupToBuildings([]api_models.ExtractedObject{{
		ObjectName: "Объект",
		Buildings:  []api_models.ExtractedBuilding{{Listings: []api_models.RawListing{{"area_sqm": 10}}}},
	}}, r, "rid", "x.pdf")

	require.Len(t, rows, 1)
	assert.Len(t, rows[0], len(r.Output.BuildingColumns))
	for _, col := range r.Output.BuildingColumns {
		_, ok := rows[0][col]
		assert.True(t, ok, "колонка %s должна присутствовать", col)
	}
}
