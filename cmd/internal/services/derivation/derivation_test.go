package derivation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zhukovvlad/listings-go/cmd/internal/rules"
	"github.com/zhukovvlad/listings-go/cmd/internal/services/normalizer"
)

func f64Ref(f float64) *float64 { return &f }

func TestRentRateYearSqmBase(t *testing.T) {
	r := rules.Default()

	t.Run("прямая ставка без ндс", func(t *testing.T) {
		in := Input{RentRate: f64Ref(12000)}
		got := RentRateYearSqmBase(in, r)
		require.NotNil(t, got)
		assert.Equal(t, 12000.0, *got)
	})

	t.Run("прямая ставка с включенным ндс очищается", func(t *testing.T) {
		in := Input{RentRate: f64Ref(12000), VATIncluded: true}
		got := RentRateYearSqmBase(in, r)
		require.NotNil(t, got)
		assert.Equal(t, 10000.0, *got)
	})

	t.Run("восстановление из месячного платежа", func(t *testing.T) {
		in := Input{RentCostMonthPerRoom: f64Ref(100000), AreaSqm: f64Ref(100)}
		got := RentRateYearSqmBase(in, r)
		require.NotNil(t, got)
		assert.Equal(t, 12000.0, *got)
	})

	t.Run("восстановление вычитает opex", func(t *testing.T) {
		in := Input{
			RentCostMonthPerRoom: f64Ref(100000),
			AreaSqm:              f64Ref(100),
			OpexIncluded:         true,
			OpexYearPerSqm:       f64Ref(2000),
		}
		got := RentRateYearSqmBase(in, r)
		require.NotNil(t, got)
		assert.Equal(t, 10000.0, *got)
	})

	t.Run("прямая ставка приоритетнее восстановления", func(t *testing.T) {
		in := Input{
			RentRate:             f64Ref(12000),
			RentCostMonthPerRoom: f64Ref(999999),
			AreaSqm:              f64Ref(100),
		}
		got := RentRateYearSqmBase(in, r)
		require.NotNil(t, got)
		assert.Equal(t, 12000.0, *got)
	})

	t.Run("выбросы отбрасываются", func(t *testing.T) {
		assert.Nil(t, RentRateYearSqmBase(Input{RentRate: f64Ref(500)}, r))
		assert.Nil(t, RentRateYearSqmBase(Input{RentRate: f64Ref(300000)}, r))
	})

	t.Run("нет данных — nil", func(t *testing.T) {
		assert.Nil(t, RentRateYearSqmBase(Input{}, r))
		assert.Nil(t, RentRateYearSqmBase(Input{RentCostMonthPerRoom: f64Ref(100000)}, r))
		assert.Nil(t, RentRateYearSqmBase(Input{RentCostMonthPerRoom: f64Ref(100000), AreaSqm: f64Ref(0)}, r))
	})
}

func TestGrossMonthTotal(t *testing.T) {
	r := rules.Default()

	t.Run("прямой месячный платеж возвращается как есть", func(t *testing.T) {
		got := GrossMonthTotal(Input{RentCostMonthPerRoom: f64Ref(123456.789)}, r)
		require.NotNil(t, got)
		assert.Equal(t, 123456.79, *got)
	})

	t.Run("восстановление из базовой ставки", func(t *testing.T) {
		in := Input{RentRate: f64Ref(12000), AreaSqm: f64Ref(100)}
		got := GrossMonthTotal(in, r)
		require.NotNil(t, got)
		assert.Equal(t, 100000.0, *got)
	})

	t.Run("ндс возвращается обратно", func(t *testing.T) {
		in := Input{RentRate: f64Ref(12000), AreaSqm: f64Ref(100), VATIncluded: true}
		got := GrossMonthTotal(in, r)
		require.NotNil(t, got)
		// 12000/1.2=10000 базовая, 10000*100/12*1.2 = 100000
		assert.Equal(t, 100000.0, *got)
	})

	t.Run("без ставки и площади — nil", func(t *testing.T) {
		assert.Nil(t, GrossMonthTotal(Input{}, r))
		assert.Nil(t, GrossMonthTotal(Input{RentRate: f64Ref(12000)}, r))
	})
}

func TestAll(t *testing.T) {
	r := rules.Default()

	t.Run("согласованность метрик", func(t *testing.T) {
		in := Input{RentRate: f64Ref(12000), AreaSqm: f64Ref(100)}
		m := All(in, r)

		require.NotNil(t, m.RentRateYearSqmBase)
		assert.Equal(t, 12000.0, *m.RentRateYearSqmBase)
		require.NotNil(t, m.RentMonthTotalGross)
		assert.Equal(t, 100000.0, *m.RentMonthTotalGross)
		assert.Empty(t, m.UncertainParameters)
	})

	t.Run("выброс обнуляется и помечается", func(t *testing.T) {
		in := Input{RentRate: f64Ref(500), AreaSqm: f64Ref(100)}
		m := All(in, r)

		assert.Nil(t, m.RentRateYearSqmBase)
		assert.Contains(t, m.UncertainParameters, "rent_rate_year_sqm_base")
	})

	t.Run("нулевая площадь помечается", func(t *testing.T) {
		m := All(Input{AreaSqm: f64Ref(0)}, r)
		assert.Contains(t, m.UncertainParameters, "area_sqm")
	})
}

func TestInputFromListing(t *testing.T) {
	r := rules.Default()
	raw := map[string]any{
		"use_type":                 "офис",
		"area_sqm":                 100,
		"rent_rate":                12000,
		"rent_cost_month_per_room": "110 000 ₽",
		"rent_vat":                 "с НДС",
		"opex_included":            true,
		"opex_year_per_sqm":        2000,
	}
	core := normalizer.NormalizeListingCore(raw, normalizer.ParentContext{ObjectName: "Объект"}, r)

	in := InputFromListing(core, raw)

	require.NotNil(t, in.RentRate)
	assert.Equal(t, 12000.0, *in.RentRate)
	require.NotNil(t, in.RentCostMonthPerRoom)
	assert.Equal(t, 110000.0, *in.RentCostMonthPerRoom)
	require.NotNil(t, in.AreaSqm)
	assert.Equal(t, 100.0, *in.AreaSqm)
	assert.True(t, in.VATIncluded, "нормализованный режим ндс должен раскрываться в флаг")
	assert.True(t, in.OpexIncluded)
	require.NotNil(t, in.OpexYearPerSqm)
	assert.Equal(t, 2000.0, *in.OpexYearPerSqm)
}
