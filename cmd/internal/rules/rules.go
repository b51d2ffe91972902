package rules

import (
	"os"
	"sync"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/zhukovvlad/listings-go/cmd/pkg/logging"
)

// Category описывает одну категорию канонизации: упорядоченный список
// канонических значений и таблицу синонимов для каждого из них.
// Порядок canon определяет приоритет при поиске совпадения — побеждает
// первое совпадение по объявленному порядку.
type Category struct {
	Canon    []string            `yaml:"canon"`
	Synonyms map[string][]string `yaml:"synonyms"`
}

// VATCategory — категория НДС с дополнительными правилами:
// токены, трактуемые как "не применяется" (УСН и пр.), и ставка по умолчанию
// для пересчета "включен" -> базовая ставка.
type VATCategory struct {
	Canon           []string            `yaml:"canon"`
	Synonyms        map[string][]string `yaml:"synonyms"`
	TreatNotApplied []string            `yaml:"treat_not_applied"`
	DefaultRate     float64             `yaml:"default_rate"`
}

// FloorRender управляет обратной сборкой списка этажей в строку.
type FloorRender struct {
	JoinToken        string `yaml:"join_token"`
	RangeDash        string `yaml:"range_dash"`
	SortNumericFirst bool   `yaml:"sort_numeric_first"`
	Uniq             bool   `yaml:"uniq"`
}

// FloorMulti — правила разбора многозначных обозначений этажей.
type FloorMulti struct {
	Enabled         bool        `yaml:"enabled"`
	SplitSeparators []string    `yaml:"split_separators"`
	RangeSeparators []string    `yaml:"range_separators"`
	Render          FloorRender `yaml:"render"`
}

// Floor — полный набор правил разбора этажей.
// MapSpecial сопоставляет канонические ключи (basement/socle/mezzanine)
// спискам распознаваемых синонимов, включая "-1" для подвала.
type Floor struct {
	DropTokens []string            `yaml:"drop_tokens"`
	MapSpecial map[string][]string `yaml:"map_special"`
	Multi      FloorMulti          `yaml:"multi"`
}

// Dates — дополнительные токены "доступно сейчас" поверх встроенных.
type Dates struct {
	NowTokens []string `yaml:"now_tokens"`
}

// Normalization группирует словари канонизации по категориям.
type Normalization struct {
	UseType         Category    `yaml:"use_type"`
	FitoutCondition Category    `yaml:"fitout_condition"`
	VAT             VATCategory `yaml:"vat"`
	Opex            Category    `yaml:"opex"`
	Floor           Floor       `yaml:"floor"`
	Dates           Dates       `yaml:"dates"`
}

// Category возвращает категорию канонизации по имени или nil,
// если категория не объявлена.
func (n *Normalization) Category(name string) *Category {
	switch name {
	case "use_type":
		return &n.UseType
	case "fitout_condition":
		return &n.FitoutCondition
	case "vat":
		return &Category{Canon: n.VAT.Canon, Synonyms: n.VAT.Synonyms}
	case "opex":
		return &n.Opex
	}
	return nil
}

// ReconstructFromMonth — параметры восстановления базовой ставки
// из месячного платежа.
type ReconstructFromMonth struct {
	RespectVAT    bool    `yaml:"respect_vat"`
	RespectOpex   bool    `yaml:"respect_opex"`
	VATFallback   float64 `yaml:"vat_fallback"`
	RoundDecimals int     `yaml:"round_decimals"`
}

// RentRateYearSqmBase — стратегии вывода базовой годовой ставки за м².
type RentRateYearSqmBase struct {
	Priority             []string             `yaml:"priority"`
	ReconstructFromMonth ReconstructFromMonth `yaml:"reconstruct_from_month"`
}

type GrossMonthTotal struct {
	RoundDecimals int `yaml:"round_decimals"`
}

type Derivation struct {
	RentRateYearSqmBase RentRateYearSqmBase `yaml:"rent_rate_year_sqm_base"`
	GrossMonthTotal     GrossMonthTotal     `yaml:"gross_month_total"`
}

// Bounds — допустимый диапазон для производной метрики.
// nil означает отсутствие границы.
type Bounds struct {
	Min *float64 `yaml:"min"`
	Max *float64 `yaml:"max"`
}

type Outliers struct {
	RentRateYearSqmBase Bounds `yaml:"rent_rate_year_sqm_base"`
}

type Quality struct {
	Outliers Outliers `yaml:"outliers"`
}

// BuildingName — шаблон составного имени здания.
// Плейсхолдеры: {object_name} и {suffix}.
type BuildingName struct {
	Compose string `yaml:"compose"`
}

type SourceFiles struct {
	UniqueJoin string `yaml:"unique_join"`
}

type Building struct {
	Name        BuildingName `yaml:"name"`
	SourceFiles SourceFiles  `yaml:"source_files"`
}

type Aggregation struct {
	Building Building `yaml:"building"`
}

type Output struct {
	ListingColumns  []string `yaml:"listing_columns"`
	BuildingColumns []string `yaml:"building_columns"`
}

// ListingID — правила сборки идентификатора объявления.
type ListingID struct {
	ComposeParts []string `yaml:"compose_parts"`
	HashLen      int      `yaml:"hash_len"`
	JoinToken    string   `yaml:"join_token"`
}

type Identifier struct {
	ListingID ListingID `yaml:"listing_id"`
}

// Fallbacks — подстановки для отсутствующих первичных полей.
type Fallbacks struct {
	UseType            string            `yaml:"use_type"`
	MarketTypeByFitout map[string]string `yaml:"market_type_by_fitout"`
	DivisibleFromArea  bool              `yaml:"divisible_from_area"`
}

// Rules — неизменяемый набор правил нормализации/агрегации.
// Загружается один раз на старте и разделяется всеми запросами только на чтение.
type Rules struct {
	Aggregation   Aggregation   `yaml:"aggregation"`
	Normalization Normalization `yaml:"normalization"`
	Derivation    Derivation    `yaml:"derivation"`
	Output        Output        `yaml:"output"`
	Quality       Quality       `yaml:"quality"`
	Identifier    Identifier    `yaml:"identifier"`
	Fallbacks     Fallbacks     `yaml:"fallbacks"`
}

func floatPtr(f float64) *float64 { return &f }

// Default возвращает встроенный набор правил. Он же служит базой,
// поверх которой накладывается yaml-файл при загрузке.
func Default() *Rules {
	return &Rules{
		Aggregation: Aggregation{
			Building: Building{
				Name:        BuildingName{Compose: "{object_name}{suffix}"},
				SourceFiles: SourceFiles{UniqueJoin: " | "},
			},
		},
		Normalization: Normalization{
			UseType: Category{
				Canon: []string{"офис", "торговое", "псн", "склад"},
				Synonyms: map[string][]string{
					"офис":     {"office", "open space", "open-space"},
					"торговое": {"retail", "street-retail", "стрит-ритейл"},
					"псн":      {"psn", "помещение свободного назначения", "свободного назначения"},
					"склад":    {"storage", "warehouse", "складское помещение"},
				},
			},
			FitoutCondition: Category{
				Canon: []string{"с отделкой", "под отделку"},
				Synonyms: map[string][]string{
					"с отделкой":  {"готово к въезду", "с мебелью", "есть отделка"},
					"под отделку": {"white box", "готово к отделке"},
				},
			},
			VAT: VATCategory{
				Canon: []string{"включен", "не включен", "не применяется"},
				Synonyms: map[string][]string{
					"включен":        {"включая ндс", "с ндс", "ндс включен"},
					"не включен":     {"без ндс", "ндс не включен", "не включая ндс"},
					"не применяется": {"усн", "освобождено", "не облагается ндс"},
				},
				TreatNotApplied: []string{"усн", "упрощенка", "ндс 5%"},
				DefaultRate:     0.20,
			},
			Opex: Category{
				Canon: []string{"включен", "не включен"},
				Synonyms: map[string][]string{
					"включен":    {"opex включен", "включая opex", "с учетом opex"},
					"не включен": {"opex не включен", "без opex"},
				},
			},
			Floor: Floor{
				DropTokens: []string{"этаж", "эт", "э."},
				MapSpecial: map[string][]string{
					"basement":  {"подвал", "-1"},
					"socle":     {"цоколь"},
					"mezzanine": {"мезонин"},
				},
				Multi: FloorMulti{
					Enabled:         true,
					SplitSeparators: []string{",", ";", "/", " и ", "&"},
					RangeSeparators: []string{"-", "–"},
					Render: FloorRender{
						JoinToken:        "; ",
						RangeDash:        "–",
						SortNumericFirst: true,
						Uniq:             true,
					},
				},
			},
			Dates: Dates{NowTokens: []string{"сейчас"}},
		},
		Derivation: Derivation{
			RentRateYearSqmBase: RentRateYearSqmBase{
				Priority: []string{"direct", "reconstruct_from_month"},
				ReconstructFromMonth: ReconstructFromMonth{
					RespectVAT:    true,
					RespectOpex:   true,
					VATFallback:   0.20,
					RoundDecimals: 2,
				},
			},
			GrossMonthTotal: GrossMonthTotal{RoundDecimals: 2},
		},
		Output: Output{
			ListingColumns: []string{
				"listing_id",
				"object_id",
				"object_name",
				"building_id",
				"building_name",
				"use_type_norm",
				"area_sqm",
				"divisible_from_sqm",
				"floors_norm",
				"market_type",
				"fitout_condition_norm",
				"delivery_date_norm",
				"rent_rate_year_sqm_base",
				"rent_vat_norm",
				"opex_year_per_sqm",
				"opex_included",
				"rent_month_total_gross",
				"sale_price_per_sqm",
				"sale_vat_norm",
				"source_file",
				"request_id",
				"uncertain_parameters",
			},
			BuildingColumns: []string{
				"building_id",
				"building_name",
				"object_id",
				"object_name",
				"use_type_set_norm",
				"fitout_condition_mode",
				"delivery_date_earliest",
				"floors_covered_norm",
				"area_sqm_total",
				"listing_count",
				"rent_rate_year_sqm_base_min",
				"rent_rate_year_sqm_base_avg",
				"rent_rate_year_sqm_base_max",
				"rent_vat_norm_mode",
				"opex_year_per_sqm_avg",
				"rent_month_total_gross_avg",
				"sale_price_per_sqm_min",
				"sale_price_per_sqm_avg",
				"sale_price_per_sqm_max",
				"sale_vat_norm_mode",
				"source_files",
				"request_id",
				"quality_flags",
			},
		},
		Quality: Quality{
			Outliers: Outliers{
				RentRateYearSqmBase: Bounds{Min: floatPtr(1000), Max: floatPtr(200000)},
			},
		},
		Identifier: Identifier{
			ListingID: ListingID{
				ComposeParts: []string{
					"object_id",
					"building_token_slug",
					"use_type_norm_slug",
					"floors_norm_slug",
					"area_1dp",
				},
				HashLen:   8,
				JoinToken: "__",
			},
		},
		Fallbacks: Fallbacks{
			MarketTypeByFitout: map[string]string{
				"под отделку": "новое",
				"с отделкой":  "вторичка",
			},
			DivisibleFromArea: true,
		},
	}
}

var (
	instance *Rules
	once     sync.Once
)

// GetRules загружает правила из yaml-файла поверх встроенных значений.
// Отсутствующий файл — не ошибка: в этом случае действуют значения по умолчанию.
// Результат кешируется на время жизни процесса.
func GetRules(path string) *Rules {
	once.Do(func() {
		logger := logging.GetLogger()
		instance = Default()
		if path == "" {
			logger.Info("путь к правилам не задан, используются правила по умолчанию")
			return
		}
		if _, err := os.Stat(path); err != nil {
			logger.Warnf("файл правил %s недоступен (%v), используются правила по умолчанию", path, err)
			return
		}
		if err := cleanenv.ReadConfig(path, instance); err != nil {
			logger.Fatalf("не удалось прочитать файл правил %s: %v", path, err)
		}
		logger.Infof("правила нормализации загружены из %s", path)
	})
	return instance
}

// Load читает правила без кеширования — для тестов и CLI-утилит.
func Load(path string) (*Rules, error) {
	r := Default()
	if path == "" {
		return r, nil
	}
	if _, err := os.Stat(path); err != nil {
		return r, nil
	}
	if err := cleanenv.ReadConfig(path, r); err != nil {
		return nil, err
	}
	return r, nil
}
