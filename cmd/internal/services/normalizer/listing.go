package normalizer

import (
	"strings"

	"github.com/zhukovvlad/listings-go/cmd/internal/rules"
	"github.com/zhukovvlad/listings-go/cmd/internal/services/identifiers"
	"github.com/zhukovvlad/listings-go/cmd/internal/util"
)

// ParentContext — контекст объявления из вышестоящих узлов выгрузки:
// объект и здание, внутри которых оно находится.
type ParentContext struct {
	ObjectName    string
	BuildingName  *string
	ObjectRentVAT *string
}

// ListingCore — нормализованное ядро объявления. Все необязательные поля
// представлены указателями: nil означает "не удалось распознать", это штатное
// состояние данных, а не ошибка.
//
// Инвариант: числовые поля либо конечные неотрицательные, либо nil.
type ListingCore struct {
	ObjectName          string
	BuildingRaw         *string
	BuildingToken       *string
	UseTypeNorm         *string
	AreaSqm             *float64
	DivisibleFromSqm    *float64
	Floors              []Floor
	FloorsNorm          *string
	MarketType          *string
	FitoutConditionNorm *string
	DeliveryDateNorm    *string
	RentVATNorm         *string
	SaleVATNorm         *string
	OpexIncluded        *bool
	OpexYearPerSqm      *float64
	SalePricePerSqm     *float64
	RentRate            *float64
	RecognitionSummary  *string
}

// cleanSpace нормализует пробелы в свободном тексте.
func cleanSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func rawString(raw map[string]any, key string) *string {
	v, ok := raw[key]
	if !ok || v == nil {
		return nil
	}
	s, ok := v.(string)
	if !ok {
		return nil
	}
	return util.NilIfEmpty(cleanSpace(s))
}

func nonNegative(f *float64) *float64 {
	if f == nil || *f < 0 {
		return nil
	}
	return f
}

// NormalizeListingCore приводит сырое объявление к ядру ListingCore.
//
// Чистая оркестрация: чистка пробелов, канонизация категорий, разбор этажей
// и даты освобождения, приведение чисел, затем подстановки из
// rules.fallbacks для отсутствующих первичных полей. Никогда не возвращает
// ошибку: нераспознанные подполя нормализуются в nil.
func NormalizeListingCore(raw map[string]any, parent ParentContext, r *rules.Rules) *ListingCore {
	core := &ListingCore{
		ObjectName: cleanSpace(parent.ObjectName),
	}

	if parent.BuildingName != nil {
		core.BuildingRaw = util.NilIfEmpty(cleanSpace(*parent.BuildingName))
	}
	core.BuildingToken = identifiers.BuildingToken(core.BuildingRaw)

	if s := rawString(raw, "use_type"); s != nil {
		core.UseTypeNorm = MapToCanon(*s, r, "use_type")
	}
	if core.UseTypeNorm == nil && r.Fallbacks.UseType != "" {
		core.UseTypeNorm = strPtr(r.Fallbacks.UseType)
	}

	core.AreaSqm = nonNegative(CoerceFloat(raw["area_sqm"]))
	core.DivisibleFromSqm = nonNegative(CoerceFloat(raw["divisible_from_sqm"]))
	if core.DivisibleFromSqm == nil && r.Fallbacks.DivisibleFromArea {
		core.DivisibleFromSqm = core.AreaSqm
	}

	core.Floors = ParseFloors(raw["floor"], &r.Normalization.Floor)
	if len(core.Floors) > 0 {
		core.FloorsNorm = strPtr(RenderFloors(core.Floors, &r.Normalization.Floor))
	}

	if s := rawString(raw, "fitout_condition"); s != nil {
		core.FitoutConditionNorm = NormalizeFitout(*s, r)
	}

	core.MarketType = rawString(raw, "market_type")
	if core.MarketType == nil && core.FitoutConditionNorm != nil {
		if mt, ok := r.Fallbacks.MarketTypeByFitout[*core.FitoutConditionNorm]; ok && mt != "" {
			core.MarketType = strPtr(mt)
		}
	}

	if s := rawString(raw, "delivery_date"); s != nil {
		core.DeliveryDateNorm = NormalizeDeliveryDate(*s, r.Normalization.Dates.NowTokens)
	}

	// НДС аренды: свое поле, затем общее поле "vat", затем флаг объекта.
	core.RentVATNorm = normalizeVATChain(r, rawString(raw, "rent_vat"), rawString(raw, "vat"), parent.ObjectRentVAT)
	core.SaleVATNorm = normalizeVATChain(r, rawString(raw, "sale_vat"), rawString(raw, "vat"))

	core.OpexIncluded = NormalizeOpexIncluded(raw["opex_included"], r)
	core.OpexYearPerSqm = nonNegative(CoerceFloat(raw["opex_year_per_sqm"]))
	core.SalePricePerSqm = nonNegative(CoerceFloat(raw["sale_price_per_sqm"]))
	core.RentRate = nonNegative(CoerceFloat(raw["rent_rate"]))

	core.RecognitionSummary = rawString(raw, "recognition_summary")

	return core
}

// normalizeVATChain возвращает первый распознанный режим НДС из цепочки
// кандидатов в порядке убывания специфичности.
func normalizeVATChain(r *rules.Rules, candidates ...*string) *string {
	for _, c := range candidates {
		if c == nil {
			continue
		}
		if norm := NormalizeVAT(*c, r); norm != nil {
			return norm
		}
	}
	return nil
}
