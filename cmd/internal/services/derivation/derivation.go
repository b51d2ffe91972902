// Package derivation вычисляет производные метрики объявления:
// базовую годовую ставку аренды за м² и валовый месячный платеж.
package derivation

import (
	"math"
	"sort"

	"github.com/zhukovvlad/listings-go/cmd/internal/rules"
	"github.com/zhukovvlad/listings-go/cmd/internal/services/normalizer"
	"github.com/zhukovvlad/listings-go/cmd/internal/util"
)

// Input — поля объявления, участвующие в выводе метрик.
// Указатели отличают "значение отсутствует" от нуля.
type Input struct {
	RentRate             *float64
	RentCostMonthPerRoom *float64
	AreaSqm              *float64
	OpexYearPerSqm       *float64
	VATIncluded          bool
	OpexIncluded         bool
}

// Metrics — результат derive_all: обе метрики и список полей,
// достоверность которых под сомнением.
type Metrics struct {
	RentRateYearSqmBase *float64
	RentMonthTotalGross *float64
	UncertainParameters []string
}

// InputFromListing собирает вход вывода метрик из нормализованного ядра
// и сырого объявления. Месячный платеж за помещение в ядро не входит,
// поэтому берется напрямую из сырых данных.
func InputFromListing(core *normalizer.ListingCore, raw map[string]any) Input {
	return Input{
		RentRate:             core.RentRate,
		RentCostMonthPerRoom: normalizer.CoerceFloat(raw["rent_cost_month_per_room"]),
		AreaSqm:              core.AreaSqm,
		OpexYearPerSqm:       core.OpexYearPerSqm,
		VATIncluded:          util.Deref(core.RentVATNorm) == "включен",
		OpexIncluded:         core.OpexIncluded != nil && *core.OpexIncluded,
	}
}

func roundTo(x float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(x*pow) / pow
}

// rawBaseRate считает ставку по стратегиям в настроенном порядке,
// без фильтра выбросов. Округление уже применено.
func rawBaseRate(in Input, r *rules.Rules) *float64 {
	cfg := r.Derivation.RentRateYearSqmBase
	rc := cfg.ReconstructFromMonth

	stepDirect := func() *float64 {
		if in.RentRate == nil {
			return nil
		}
		v := *in.RentRate
		if rc.RespectVAT && in.VATIncluded {
			v = v / (1.0 + rc.VATFallback)
		}
		return &v
	}

	stepReconstruct := func() *float64 {
		if in.RentCostMonthPerRoom == nil || in.AreaSqm == nil || *in.AreaSqm == 0 {
			return nil
		}
		v := (*in.RentCostMonthPerRoom * 12.0) / *in.AreaSqm
		if rc.RespectVAT && in.VATIncluded {
			v = v / (1.0 + rc.VATFallback)
		}
		if rc.RespectOpex && in.OpexIncluded && in.OpexYearPerSqm != nil && *in.OpexYearPerSqm != 0 {
			v = v - *in.OpexYearPerSqm
		}
		return &v
	}

	var value *float64
	for _, key := range cfg.Priority {
		switch key {
		case "direct":
			value = stepDirect()
		case "reconstruct_from_month":
			value = stepReconstruct()
		}
		if value != nil {
			break
		}
	}
	if value == nil {
		return nil
	}
	rounded := roundTo(*value, rc.RoundDecimals)
	return &rounded
}

func withinBounds(v float64, b rules.Bounds) bool {
	if b.Min != nil && v < *b.Min {
		return false
	}
	if b.Max != nil && v > *b.Max {
		return false
	}
	return true
}

// RentRateYearSqmBase выводит базовую годовую ставку аренды за м²
// (без НДС и OPEX). Стратегии пробуются в настроенном порядке, побеждает
// первая давшая значение. Результат вне границ выбросов отбрасывается.
func RentRateYearSqmBase(in Input, r *rules.Rules) *float64 {
	v := rawBaseRate(in, r)
	if v == nil {
		return nil
	}
	if !withinBounds(*v, r.Quality.Outliers.RentRateYearSqmBase) {
		return nil
	}
	return v
}

// GrossMonthTotal выводит валовый месячный платеж за помещение.
// Прямо указанный месячный платеж имеет приоритет; иначе платеж
// восстанавливается из базовой ставки и площади, с возвратом НДС и OPEX.
// Это обратное преобразование к RentRateYearSqmBase и обязано оставаться
// с ним согласованным.
func GrossMonthTotal(in Input, r *rules.Rules) *float64 {
	decimals := r.Derivation.GrossMonthTotal.RoundDecimals

	if in.RentCostMonthPerRoom != nil {
		v := roundTo(*in.RentCostMonthPerRoom, decimals)
		return &v
	}

	base := RentRateYearSqmBase(in, r)
	if base == nil || in.AreaSqm == nil || *in.AreaSqm == 0 {
		return nil
	}
	monthly := (*base * *in.AreaSqm) / 12.0

	rc := r.Derivation.RentRateYearSqmBase.ReconstructFromMonth
	if in.VATIncluded {
		monthly *= 1.0 + rc.VATFallback
	}
	if in.OpexIncluded && in.OpexYearPerSqm != nil && *in.OpexYearPerSqm != 0 {
		monthly += *in.OpexYearPerSqm * *in.AreaSqm / 12.0
	}

	v := roundTo(monthly, decimals)
	return &v
}

// All считает обе метрики и набор сомнительных параметров.
//
// Ставка, попавшая за границы выбросов, обнуляется, но поле все равно
// помечается в UncertainParameters: потребителям нужны оба сигнала.
func All(in Input, r *rules.Rules) Metrics {
	uncertain := make(map[string]struct{})

	raw := rawBaseRate(in, r)
	bounds := r.Quality.Outliers.RentRateYearSqmBase

	var base *float64
	if raw != nil {
		if withinBounds(*raw, bounds) {
			base = raw
		} else {
			uncertain["rent_rate_year_sqm_base"] = struct{}{}
		}
	}

	if in.AreaSqm != nil && *in.AreaSqm <= 0 {
		uncertain["area_sqm"] = struct{}{}
	}

	m := Metrics{
		RentRateYearSqmBase: base,
		RentMonthTotalGross: GrossMonthTotal(in, r),
	}
	for k := range uncertain {
		m.UncertainParameters = append(m.UncertainParameters, k)
	}
	sort.Strings(m.UncertainParameters)
	return m
}
