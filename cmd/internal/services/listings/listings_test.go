package listings

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zhukovvlad/listings-go/cmd/internal/rules"
	"github.com/zhukovvlad/listings-go/cmd/internal/testutil"
)

func TestFlattenObjects(t *testing.T) {
	r := rules.Default()
	payload := testutil.SamplePayload()

	rows := FlattenObjects(payload.Objects, r, "req-test-1", payload.SourceFile)
	require.Len(t, rows, 3)

	t.Run("идентификаторы уникальны и детерминированы", func(t *testing.T) {
		seen := make(map[string]struct{})
		for _, row := range rows {
			assert.NotEmpty(t, row.ListingID)
			_, dup := seen[row.ListingID]
			assert.False(t, dup, "дубликат %s", row.ListingID)
			seen[row.ListingID] = struct{}{}
		}

		again := FlattenObjects(payload.Objects, r, "req-test-1", payload.SourceFile)
		require.Len(t, again, 3)
		for i := range rows {
			assert.Equal(t, rows[i].ListingID, again[i].ListingID)
		}
	})

	t.Run("имена и идентификаторы зданий", func(t *testing.T) {
		assert.Equal(t, "Объект, стр. 1", rows[0].BuildingName)
		assert.Equal(t, "obekt__str-1", rows[0].BuildingID)
		assert.Equal(t, "Объект, корпус 2", rows[2].BuildingName)
		assert.Equal(t, "obekt__korpus-2", rows[2].BuildingID)
		for _, row := range rows {
			assert.Equal(t, "obekt", row.ObjectID)
		}
	})

	t.Run("провенанс", func(t *testing.T) {
		for _, row := range rows {
			assert.Equal(t, "report.pdf", row.SourceFile, "берется только имя файла")
			assert.Equal(t, "req-test-1", row.RequestID)
		}
	})

	t.Run("нормализованные поля", func(t *testing.T) {
		require.NotNil(t, rows[0].FloorsNorm)
		assert.Equal(t, "1", *rows[0].FloorsNorm)
		require.NotNil(t, rows[1].FloorsNorm)
		assert.Equal(t, "1–2", *rows[1].FloorsNorm)
		require.NotNil(t, rows[2].FloorsNorm)
		assert.Equal(t, "1; цоколь", *rows[2].FloorsNorm)

		require.NotNil(t, rows[0].DeliveryDateNorm)
		assert.Equal(t, "сейчас", *rows[0].DeliveryDateNorm)
		require.NotNil(t, rows[1].DeliveryDateNorm)
		assert.Equal(t, "2026-12-31", *rows[1].DeliveryDateNorm)
	})

	t.Run("денежные значения округлены до рублей", func(t *testing.T) {
		require.NotNil(t, rows[0].RentRateYearSqmBase)
		assert.Equal(t, 12000.0, *rows[0].RentRateYearSqmBase)
		require.NotNil(t, rows[1].RentRateYearSqmBase)
		assert.Equal(t, 18000.0, *rows[1].RentRateYearSqmBase)
		require.NotNil(t, rows[2].SalePricePerSqm)
		assert.Equal(t, 95000.0, *rows[2].SalePricePerSqm)
	})
}

func TestFlattenObjectsUncertain(t *testing.T) {
	r := rules.Default()
	payload := testutil.SamplePayload()
	payload.Objects[0].Buildings[0].Listings[0]["uncertain_parameters"] = []any{"floor", " floor ", "delivery_date"}
	payload.Objects[0].Buildings[0].Listings[0]["rent_rate"] = 500

	rows := FlattenObjects(payload.Objects, r, "rid", "x.pdf")
	require.NotEmpty(t, rows)
	require.NotNil(t, rows[0].UncertainParameters)

	parts := strings.Split(*rows[0].UncertainParameters, "; ")
	assert.ElementsMatch(t, []string{"delivery_date", "floor", "rent_rate_year_sqm_base"}, parts)
	assert.True(t, sortedStrings(parts))
}

func sortedStrings(xs []string) bool {
	for i := 1; i < len(xs); i++ {
		if xs[i-1] > xs[i] {
			return false
		}
	}
	return true
}

func TestSelectColumns(t *testing.T) {
	r := rules.Default()
	payload := testutil.SamplePayload()
	rows := FlattenObjects(payload.Objects, r, "rid", "x.pdf")

	out := SelectColumns(rows, r.Output.ListingColumns)
	require.Len(t, out, len(rows))
	for _, m := range out {
		assert.Len(t, m, len(r.Output.ListingColumns))
	}
	assert.Equal(t, "obekt", out[0]["object_id"])

	t.Run("незнакомая колонка дает nil", func(t *testing.T) {
		out := SelectColumns(rows, []string{"listing_id", "no_such_column"})
		require.NotEmpty(t, out)
		assert.Nil(t, out[0]["no_such_column"])
	})
}
