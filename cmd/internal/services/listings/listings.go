// Package listings разворачивает иерархию объект -> здание -> объявление
// в плоские строки уровня объявления с идентификаторами и метриками.
package listings

import (
	"math"
	"sort"
	"strings"

	"github.com/zhukovvlad/listings-go/cmd/internal/api_models"
	"github.com/zhukovvlad/listings-go/cmd/internal/rules"
	"github.com/zhukovvlad/listings-go/cmd/internal/services/derivation"
	"github.com/zhukovvlad/listings-go/cmd/internal/services/identifiers"
	"github.com/zhukovvlad/listings-go/cmd/internal/services/normalizer"
)

// Row — одна плоская строка объявления: нормализованное ядро плюс
// идентификаторы, производные метрики и провенанс запроса.
type Row struct {
	ListingID           string
	ObjectID            string
	ObjectName          string
	BuildingID          string
	BuildingName        string
	UseTypeNorm         *string
	AreaSqm             *float64
	DivisibleFromSqm    *float64
	FloorsNorm          *string
	MarketType          *string
	FitoutConditionNorm *string
	DeliveryDateNorm    *string
	RentRateYearSqmBase *float64
	RentVATNorm         *string
	OpexYearPerSqm      *float64
	OpexIncluded        *bool
	RentMonthTotalGross *float64
	SalePricePerSqm     *float64
	SaleVATNorm         *string
	SourceFile          string
	RequestID           string
	UncertainParameters *string
	RecognitionSummary  *string
}

// roundMoney округляет денежное значение до целых рублей.
func roundMoney(v *float64) *float64 {
	if v == nil {
		return nil
	}
	r := math.Round(*v)
	return &r
}

func baseName(path string) string {
	if i := strings.LastIndex(path, "/"); i >= 0 {
		path = path[i+1:]
	}
	if i := strings.LastIndex(path, `\`); i >= 0 {
		path = path[i+1:]
	}
	return path
}

// joinUncertain объединяет сомнительные параметры из сырого объявления
// и из вывода метрик в отсортированную строку без дубликатов.
func joinUncertain(raw api_models.RawListing, derived []string) *string {
	set := make(map[string]struct{})
	if vals, ok := raw["uncertain_parameters"].([]any); ok {
		for _, v := range vals {
			if s, ok := v.(string); ok {
				if s = strings.TrimSpace(s); s != "" {
					set[s] = struct{}{}
				}
			}
		}
	}
	for _, s := range derived {
		if s = strings.TrimSpace(s); s != "" {
			set[s] = struct{}{}
		}
	}
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	joined := strings.Join(out, "; ")
	return &joined
}

func buildRow(core *normalizer.ListingCore, raw api_models.RawListing, r *rules.Rules, requestID, sourceFile string) Row {
	metrics := derivation.All(derivation.InputFromListing(core, raw), r)

	// Сырое значение ставки имеет приоритет над восстановленным.
	baseRate := core.RentRate
	if baseRate == nil {
		baseRate = metrics.RentRateYearSqmBase
	}

	return Row{
		ListingID: identifiers.ListingID(identifiers.Parts{
			ObjectName:  core.ObjectName,
			BuildingRaw: core.BuildingRaw,
			UseTypeNorm: core.UseTypeNorm,
			FloorsNorm:  core.FloorsNorm,
			AreaSqm:     core.AreaSqm,
		}, r, sourceFile),
		ObjectID:            identifiers.ObjectID(core.ObjectName),
		ObjectName:          core.ObjectName,
		BuildingID:          identifiers.BuildingID(core.ObjectName, core.BuildingRaw),
		BuildingName:        identifiers.ComposeBuildingName(core.ObjectName, core.BuildingRaw, r),
		UseTypeNorm:         core.UseTypeNorm,
		AreaSqm:             core.AreaSqm,
		DivisibleFromSqm:    core.DivisibleFromSqm,
		FloorsNorm:          core.FloorsNorm,
		MarketType:          core.MarketType,
		FitoutConditionNorm: core.FitoutConditionNorm,
		DeliveryDateNorm:    core.DeliveryDateNorm,
		RentRateYearSqmBase: roundMoney(baseRate),
		RentVATNorm:         core.RentVATNorm,
		OpexYearPerSqm:      roundMoney(core.OpexYearPerSqm),
		OpexIncluded:        core.OpexIncluded,
		RentMonthTotalGross: roundMoney(metrics.RentMonthTotalGross),
		SalePricePerSqm:     roundMoney(core.SalePricePerSqm),
		SaleVATNorm:         core.SaleVATNorm,
		SourceFile:          baseName(sourceFile),
		RequestID:           requestID,
		UncertainParameters: joinUncertain(raw, metrics.UncertainParameters),
		RecognitionSummary:  core.RecognitionSummary,
	}
}

// FlattenObjects обходит выгрузку и строит по одной строке на объявление.
func FlattenObjects(objects []api_models.ExtractedObject, r *rules.Rules, requestID, sourceFile string) []Row {
	var rows []Row
	for _, obj := range objects {
		for _, b := range obj.Buildings {
			for _, lst := range b.Listings {
				core := normalizer.NormalizeListingCore(lst, normalizer.ParentContext{
					ObjectName:    obj.ObjectName,
					BuildingName:  b.BuildingName,
					ObjectRentVAT: obj.ObjectRentVAT,
				}, r)
				rows = append(rows, buildRow(core, lst, r, requestID, sourceFile))
			}
		}
	}
	return rows
}

// Values раскладывает строку в map по именам выходных колонок.
// Отсутствующие значения представлены nil.
func (row Row) Values() map[string]any {
	return map[string]any{
		"listing_id":              row.ListingID,
		"object_id":               row.ObjectID,
		"object_name":             row.ObjectName,
		"building_id":             row.BuildingID,
		"building_name":           row.BuildingName,
		"use_type_norm":           anyString(row.UseTypeNorm),
		"area_sqm":                anyFloat(row.AreaSqm),
		"divisible_from_sqm":      anyFloat(row.DivisibleFromSqm),
		"floors_norm":             anyString(row.FloorsNorm),
		"market_type":             anyString(row.MarketType),
		"fitout_condition_norm":   anyString(row.FitoutConditionNorm),
		"delivery_date_norm":      anyString(row.DeliveryDateNorm),
		"rent_rate_year_sqm_base": anyFloat(row.RentRateYearSqmBase),
		"rent_vat_norm":           anyString(row.RentVATNorm),
		"opex_year_per_sqm":       anyFloat(row.OpexYearPerSqm),
		"opex_included":           anyBool(row.OpexIncluded),
		"rent_month_total_gross":  anyFloat(row.RentMonthTotalGross),
		"sale_price_per_sqm":      anyFloat(row.SalePricePerSqm),
		"sale_vat_norm":           anyString(row.SaleVATNorm),
		"source_file":             row.SourceFile,
		"request_id":              row.RequestID,
		"uncertain_parameters":    anyString(row.UncertainParameters),
		"recognition_summary":     anyString(row.RecognitionSummary),
	}
}

func anyString(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func anyFloat(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

func anyBool(p *bool) any {
	if p == nil {
		return nil
	}
	return *p
}

// SelectColumns проецирует строки на заданный список колонок,
// сохраняя их порядок. Незнакомая колонка дает nil-значение.
func SelectColumns(rows []Row, cols []string) []map[string]any {
	out := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		values := row.Values()
		m := make(map[string]any, len(cols))
		for _, col := range cols {
			if v, ok := values[col]; ok {
				m[col] = v
			} else {
				m[col] = nil
			}
		}
		out = append(out, m)
	}
	return out
}
