package normalizer

import (
	"strings"
	"unicode"

	"github.com/zhukovvlad/listings-go/cmd/internal/rules"
)

// NormalizeToken приводит свободный текст к сравнимому виду:
// нижний регистр, пунктуация схлопывается в пробелы, пробелы нормализуются.
func NormalizeToken(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// MapToCanon сопоставляет свободный текст каноническому значению категории.
//
// Порядок поиска: сначала синонимы каждого канонического значения в объявленном
// порядке категории, затем сами канонические значения. Совпадением считается
// равенство либо вхождение подстроки в любую сторону. Побеждает первое
// совпадение; нераспознанный текст — nil, не ошибка.
func MapToCanon(value string, r *rules.Rules, category string) *string {
	cat := r.Normalization.Category(category)
	if cat == nil {
		return nil
	}
	t := NormalizeToken(value)
	if t == "" {
		return nil
	}

	for _, canon := range cat.Canon {
		for _, syn := range cat.Synonyms[canon] {
			ns := NormalizeToken(syn)
			if ns == "" {
				continue
			}
			if t == ns || strings.Contains(t, ns) || strings.Contains(ns, t) {
				c := canon
				return &c
			}
		}
	}

	for _, canon := range cat.Canon {
		nc := NormalizeToken(canon)
		if nc == "" {
			continue
		}
		if t == nc || strings.Contains(t, nc) || strings.Contains(nc, t) {
			c := canon
			return &c
		}
	}

	return nil
}

// NormalizeFitout сводит состояние отделки к двум каноническим значениям.
// После словарного поиска применяется эвристика: корень "отдел" вместе с
// позитивным квалификатором ("с ", "есть") означает "с отделкой",
// корень без квалификатора — "под отделку".
func NormalizeFitout(value string, r *rules.Rules) *string {
	if m := MapToCanon(value, r, "fitout_condition"); m != nil {
		return m
	}
	t := NormalizeToken(value)
	if t == "" {
		return nil
	}
	if strings.Contains(t, "отдел") {
		if strings.Contains(t, "с ") || strings.HasPrefix(t, "с ") || strings.Contains(t, "есть") {
			return strPtr("с отделкой")
		}
		return strPtr("под отделку")
	}
	return nil
}

// NormalizeVAT приводит описание режима НДС к одному из канонических значений:
// "включен", "не включен", "не применяется" или nil.
//
// Порядок проверок фиксирован и менять его нельзя:
//  1. словарь категории (синонимы, затем каноны);
//  2. общее вхождение "включ" -> "включен";
//  3. настроенные токены "трактовать как не применяется" (УСН и пр.);
//  4. точное равенство с закрытым набором формулировок "не применяется".
func NormalizeVAT(value string, r *rules.Rules) *string {
	t := strings.ToLower(strings.TrimSpace(value))
	if t == "" {
		return nil
	}

	if m := MapToCanon(value, r, "vat"); m != nil {
		return m
	}

	if strings.Contains(t, "включ") {
		return strPtr("включен")
	}

	for _, tok := range r.Normalization.VAT.TreatNotApplied {
		tok = strings.ToLower(strings.TrimSpace(tok))
		if tok != "" && strings.Contains(t, tok) {
			return strPtr("не применяется")
		}
	}

	switch t {
	case "не применяется", "без ндс", "усн":
		return strPtr("не применяется")
	}

	return nil
}

// NormalizeOpexIncluded приводит признак включения OPEX к булеву значению.
// Извлечение может прислать как готовый bool, так и текст ("включен" и т.п.).
func NormalizeOpexIncluded(value any, r *rules.Rules) *bool {
	switch v := value.(type) {
	case nil:
		return nil
	case bool:
		b := v
		return &b
	case string:
		m := MapToCanon(v, r, "opex")
		if m == nil {
			return nil
		}
		b := *m == "включен"
		return &b
	}
	return nil
}

func strPtr(s string) *string { return &s }
