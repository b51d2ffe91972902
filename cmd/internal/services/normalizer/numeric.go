package normalizer

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Маркеры валюты и единиц площади, которые извлечение оставляет в числовых полях.
// Порядок важен: "руб." должен удаляться раньше "руб".
var (
	currencyTokens = []string{"₽", "$", "руб.", "руб", "р."}
	unitTokens     = []string{"/м^2", "/м²", "/м2", "/m2", "м²", "м2"}
)

// CoerceFloat приводит произвольное значение (число, строку в локальном
// формате, nil) к float64. Никогда не возвращает ошибку: нераспознанный
// остаток — это nil, обычные отсутствующие данные.
func CoerceFloat(value any) *float64 {
	switch v := value.(type) {
	case nil:
		return nil
	case float64:
		return finiteOrNil(v)
	case float32:
		return finiteOrNil(float64(v))
	case int:
		return finiteOrNil(float64(v))
	case int64:
		return finiteOrNil(float64(v))
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return nil
		}
		return finiteOrNil(f)
	case string:
		return coerceNumericString(v)
	}
	return nil
}

func finiteOrNil(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

func coerceNumericString(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	for _, tok := range currencyTokens {
		s = strings.ReplaceAll(s, tok, "")
	}
	for _, tok := range unitTokens {
		s = strings.ReplaceAll(s, tok, "")
	}

	// Тонкие и неразрывные пробелы служат разделителями тысяч.
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)

	// Юникодный минус и запятая как десятичный разделитель.
	s = strings.ReplaceAll(s, "−", "-")
	s = strings.ReplaceAll(s, ",", ".")

	// Все точки, кроме последней, считаются разделителями тысяч.
	if strings.Count(s, ".") > 1 {
		last := strings.LastIndex(s, ".")
		s = strings.ReplaceAll(s[:last], ".", "") + s[last:]
	}

	// Единственный ведущий знак сохраняется, остальной мусор — нет.
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return finiteOrNil(f)
}
