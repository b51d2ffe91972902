// Package aggregator сворачивает нормализованные объявления в строки
// уровня здания: по одной строке на building_id в пределах запроса.
package aggregator

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

// counter считает частоты строковых значений, помня порядок первого
// появления. Мода детерминирована: при равенстве частот побеждает
// значение, встреченное раньше.
type counter struct {
	counts map[string]int
	order  []string
}

func newCounter() *counter {
	return &counter{counts: make(map[string]int)}
}

func (c *counter) Add(v string) {
	if _, ok := c.counts[v]; !ok {
		c.order = append(c.order, v)
	}
	c.counts[v]++
}

func (c *counter) Mode() *string {
	var best *string
	bestCount := 0
	for _, v := range c.order {
		if c.counts[v] > bestCount {
			bestCount = c.counts[v]
			val := v
			best = &val
		}
	}
	return best
}

// accumulator копит значения объявлений одного здания до финализации.
type accumulator struct {
	buildingID   string
	buildingName string
	objectID     string
	objectName   string

	useTypeSet map[string]struct{}
	fitout     *counter
	rentVAT    *counter
	saleVAT    *counter

	areaTotal   float64
	baseRates   []float64
	opexValues  []float64
	grossValues []float64
	saleValues  []float64

	floors        []normalizer.Floor
	deliveryDates []string
	hasNow        bool

	sourceFiles  map[string]struct{}
	qualityFlags map[string]struct{}
	listingCount int
}

// Aggregator группирует объявления по building_id в пределах одного запроса.
// Порядок строк на выходе соответствует порядку первого появления зданий.
type Aggregator struct {
	rules      *rules.Rules
	requestID  string
	sourceFile string

	byKey map[string]*accumulator
	order []string
}

func New(r *rules.Rules, requestID, sourceFile string) *Aggregator {
	return &Aggregator{
		rules:      r,
		requestID:  requestID,
		sourceFile: sourceFile,
		byKey:      make(map[string]*accumulator),
	}
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

// Touch регистрирует здание и возвращает его аккумулятор. Здание без
// объявлений все равно получает строку на выходе.
func (a *Aggregator) Touch(objectName string, buildingRaw *string) *accumulator {
	bid := identifiers.BuildingID(objectName, buildingRaw)
	if acc, ok := a.byKey[bid]; ok {
		return acc
	}

	acc := &accumulator{
		buildingID:   bid,
		buildingName: identifiers.ComposeBuildingName(objectName, buildingRaw, a.rules),
		objectID:     identifiers.ObjectID(objectName),
		objectName:   objectName,
		useTypeSet:   make(map[string]struct{}),
		fitout:       newCounter(),
		rentVAT:      newCounter(),
		saleVAT:      newCounter(),
		sourceFiles:  make(map[string]struct{}),
		qualityFlags: make(map[string]struct{}),
	}
	if src := baseName(a.sourceFile); src != "" {
		acc.sourceFiles[src] = struct{}{}
	}
	a.byKey[bid] = acc
	a.order = append(a.order, bid)
	return acc
}

// Fold добавляет одно нормализованное объявление в аккумулятор его здания.
func (a *Aggregator) Fold(acc *accumulator, core *normalizer.ListingCore, raw api_models.RawListing) {
	if core.UseTypeNorm != nil {
		acc.useTypeSet[*core.UseTypeNorm] = struct{}{}
	}
	if core.FitoutConditionNorm != nil {
		acc.fitout.Add(*core.FitoutConditionNorm)
	}
	if core.RentVATNorm != nil {
		acc.rentVAT.Add(*core.RentVATNorm)
	}
	if core.SaleVATNorm != nil {
		acc.saleVAT.Add(*core.SaleVATNorm)
	}

	if core.AreaSqm != nil {
		acc.areaTotal += *core.AreaSqm
	}
	acc.floors = append(acc.floors, core.Floors...)

	if core.DeliveryDateNorm != nil {
		if *core.DeliveryDateNorm == normalizer.NowToken {
			acc.hasNow = true
		} else {
			acc.deliveryDates = append(acc.deliveryDates, *core.DeliveryDateNorm)
		}
	}

	if core.OpexIncluded != nil && *core.OpexIncluded && core.OpexYearPerSqm != nil {
		acc.opexValues = append(acc.opexValues, *core.OpexYearPerSqm)
	}

	in := derivation.InputFromListing(core, raw)
	if base := derivation.RentRateYearSqmBase(in, a.rules); base != nil {
		acc.baseRates = append(acc.baseRates, *base)
	}
	if gross := derivation.GrossMonthTotal(in, a.rules); gross != nil {
		acc.grossValues = append(acc.grossValues, *gross)
	}

	if core.SalePricePerSqm != nil {
		acc.saleValues = append(acc.saleValues, *core.SalePricePerSqm)
	}

	if flags, ok := raw["quality_flags"].([]any); ok {
		for _, f := range flags {
			if s, ok := f.(string); ok && s != "" {
				acc.qualityFlags[s] = struct{}{}
			}
		}
	}

	acc.listingCount++
}

func minF(xs []float64) *float64 {
	if len(xs) == 0 {
		return nil
	}
	m := xs[0]
	for _, x := range xs[1:] {
		if x < m {
			m = x
		}
	}
	return &m
}

func maxF(xs []float64) *float64 {
	if len(xs) == 0 {
		return nil
	}
	m := xs[0]
	for _, x := range xs[1:] {
		if x > m {
			m = x
		}
	}
	return &m
}

func avgF(xs []float64) *float64 {
	if len(xs) == 0 {
		return nil
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	m := sum / float64(len(xs))
	return &m
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func deref(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

func derefS(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

// Finalize собирает итоговые строки. Колонки берутся строго из
// output.building_columns; незнакомая колонка дает nil-значение.
func (a *Aggregator) Finalize() []map[string]any {
	cols := a.rules.Output.BuildingColumns
	joinSrc := a.rules.Aggregation.Building.SourceFiles.UniqueJoin
	floorCfg := &a.rules.Normalization.Floor

	rows := make([]map[string]any, 0, len(a.order))
	for _, key := range a.order {
		acc := a.byKey[key]

		floorsRendered := ""
		if len(acc.floors) > 0 {
			floorsRendered = normalizer.RenderFloors(acc.floors, floorCfg)
		}

		var earliest any
		if acc.hasNow {
			earliest = normalizer.NowToken
		} else if len(acc.deliveryDates) > 0 {
			ds := append([]string(nil), acc.deliveryDates...)
			sort.Strings(ds)
			earliest = ds[0]
		}

		data := map[string]any{
			"building_id":                 acc.buildingID,
			"building_name":               acc.buildingName,
			"object_id":                   acc.objectID,
			"object_name":                 acc.objectName,
			"use_type_set_norm":           strings.Join(sortedKeys(acc.useTypeSet), ", "),
			"fitout_condition_mode":       derefS(acc.fitout.Mode()),
			"delivery_date_earliest":      earliest,
			"floors_covered_norm":         floorsRendered,
			"area_sqm_total":              roundTo2(acc.areaTotal),
			"listing_count":               acc.listingCount,
			"rent_rate_year_sqm_base_min": deref(minF(acc.baseRates)),
			"rent_rate_year_sqm_base_avg": deref(avgF(acc.baseRates)),
			"rent_rate_year_sqm_base_max": deref(maxF(acc.baseRates)),
			"rent_vat_norm_mode":          derefS(acc.rentVAT.Mode()),
			"opex_year_per_sqm_avg":       deref(avgF(acc.opexValues)),
			"rent_month_total_gross_avg":  deref(avgF(acc.grossValues)),
			"sale_price_per_sqm_min":      deref(minF(acc.saleValues)),
			"sale_price_per_sqm_avg":      deref(avgF(acc.saleValues)),
			"sale_price_per_sqm_max":      deref(maxF(acc.saleValues)),
			"sale_vat_norm_mode":          derefS(acc.saleVAT.Mode()),
			"source_files":                strings.Join(sortedKeys(acc.sourceFiles), joinSrc),
			"request_id":                  a.requestID,
			"quality_flags":               strings.Join(sortedKeys(acc.qualityFlags), ";"),
		}
		// Под обоими именами: конфигурации колонок встречаются в обеих редакциях.
		data["uncertain_parameters"] = data["quality_flags"]

		row := make(map[string]any, len(cols))
		for _, col := range cols {
			if v, ok := data[col]; ok {
				row[col] = v
			} else {
				row[col] = nil
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func roundTo2(x float64) float64 {
	return math.Round(x*100) / 100
}

// GroupToBuildings прогоняет выгрузку целиком: нормализует объявления,
// считает производные метрики и сворачивает их по зданиям.
func GroupToBuildings(objects []api_models.ExtractedObject, r *rules.Rules, requestID, sourceFile string) []map[string]any {
	agg := New(r, requestID, sourceFile)
	for _, obj := range objects {
		for _, b := range obj.Buildings {
			acc := agg.Touch(obj.ObjectName, b.BuildingName)
			for _, lst := range b.Listings {
				core := normalizer.NormalizeListingCore(lst, normalizer.ParentContext{
					ObjectName:    obj.ObjectName,
					BuildingName:  b.BuildingName,
					ObjectRentVAT: obj.ObjectRentVAT,
				}, r)
				agg.Fold(acc, core, lst)
			}
		}
	}
	return agg.Finalize()
}
