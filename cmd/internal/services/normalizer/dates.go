package normalizer

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// NowToken — каноническое значение "доступно сейчас" для даты освобождения.
const NowToken = "сейчас"

// DefaultYear подставляется, когда в тексте распознан месяц или число,
// но год отсутствует.
var DefaultYear = time.Now().Year()

// Встроенные синонимы немедленной доступности; правила могут дополнить список.
var builtinNowTokens = []string{"сейчас", "свободно", "готово к въезду", "сегодня"}

var (
	// Ведущие квалификаторы перед датой: "с 12.05.2025", ">= 01.02.2030" и т.п.
	datePrefixRe = regexp.MustCompile(`^(?:с|от|c|после|>=|<=|≥|≤|≈|~)\s+`)

	monthAlt = `(январ|феврал|март|апрел|май|мая|июн|июл|август|сентябр|октябр|ноябр|декабр)`

	ddmmyyyyRe     = regexp.MustCompile(`^(\d{1,2})[./](\d{1,2})[./](\d{4})$`)
	dayMonthYearRe = regexp.MustCompile(`(\d{1,2})\s+` + monthAlt + `[а-яё]*\s+(\d{4})`)
	monthYearRe    = regexp.MustCompile(`(?:^|[^а-яё])` + monthAlt + `[а-яё]*[\s,]*(\d{4})?`)

	romanQuarterRe  = regexp.MustCompile(`(iv|iii|ii|i)\s*квартал[а-яё]*\s*(\d{4})`)
	qQuarterRe      = regexp.MustCompile(`q\s*([1-4])\s*(\d{4})`)
	arabicQuarterRe = regexp.MustCompile(`([1-4])\s*кв(?:артал[а-яё]*)?\.?\s*(\d{4})`)

	ddmmRe = regexp.MustCompile(`(\d{1,2})[./](\d{1,2})`)
)

var monthByStem = map[string]time.Month{
	"январ":   time.January,
	"феврал":  time.February,
	"март":    time.March,
	"апрел":   time.April,
	"май":     time.May,
	"мая":     time.May,
	"июн":     time.June,
	"июл":     time.July,
	"август":  time.August,
	"сентябр": time.September,
	"октябр":  time.October,
	"ноябр":   time.November,
	"декабр":  time.December,
}

var romanQuarter = map[string]int{"i": 1, "ii": 2, "iii": 3, "iv": 4}

func isoDate(year int, month time.Month, day int) (string, bool) {
	if month < time.January || month > time.December {
		return "", false
	}
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if d.Year() != year || d.Month() != month || d.Day() != day {
		return "", false
	}
	return fmt.Sprintf("%04d-%02d-%02d", year, int(month), day), true
}

// quarterEndDate возвращает последний календарный день квартала q года year.
func quarterEndDate(q, year int) string {
	month := time.Month(3 * q)
	// День 0 следующего месяца — последний день нужного.
	d := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC)
	return fmt.Sprintf("%04d-%02d-%02d", d.Year(), int(d.Month()), d.Day())
}

func stripDatePrefixes(s string) string {
	for {
		m := datePrefixRe.FindString(s)
		if m == "" {
			return s
		}
		s = strings.TrimSpace(s[len(m):])
	}
}

// NormalizeDeliveryDate приводит срок освобождения/сдачи к ISO-дате
// "YYYY-MM-DD", токену "сейчас" либо nil.
//
// Форматы пробуются в фиксированном порядке, побеждает первый успешный разбор:
//  1. синонимы немедленной доступности (после отрезания ведущих квалификаторов);
//  2. строгий DD.MM.YYYY / DD/MM/YYYY;
//  3. "<день> <месяц> <год>" (родительный падеж);
//  4. "<месяц> [<год>]" — день 1, год по умолчанию DefaultYear;
//  5. кварталы: "Q4 2025", "4кв2026", "2 квартал 2028", римские "iv квартал 2027" —
//     последний календарный день квартала;
//  6. пара "DD.MM" без распознанного года — год DefaultYear.
func NormalizeDeliveryDate(value string, extraNowTokens []string) *string {
	t := strings.ToLower(strings.TrimSpace(value))
	if t == "" {
		return nil
	}
	t = stripDatePrefixes(t)

	for _, tok := range extraNowTokens {
		if t == strings.ToLower(strings.TrimSpace(tok)) {
			return strPtr(NowToken)
		}
	}
	for _, tok := range builtinNowTokens {
		if t == tok {
			return strPtr(NowToken)
		}
	}

	if m := ddmmyyyyRe.FindStringSubmatch(t); m != nil {
		day, _ := strconv.Atoi(m[1])
		mon, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if iso, ok := isoDate(year, time.Month(mon), day); ok {
			return &iso
		}
		return nil
	}

	if m := dayMonthYearRe.FindStringSubmatch(t); m != nil {
		day, _ := strconv.Atoi(m[1])
		year, _ := strconv.Atoi(m[3])
		if iso, ok := isoDate(year, monthByStem[m[2]], day); ok {
			return &iso
		}
		return nil
	}

	if m := monthYearRe.FindStringSubmatch(t); m != nil {
		year := DefaultYear
		if m[2] != "" {
			year, _ = strconv.Atoi(m[2])
		}
		if iso, ok := isoDate(year, monthByStem[m[1]], 1); ok {
			return &iso
		}
		return nil
	}

	if m := romanQuarterRe.FindStringSubmatch(t); m != nil {
		year, _ := strconv.Atoi(m[2])
		iso := quarterEndDate(romanQuarter[m[1]], year)
		return &iso
	}
	if m := qQuarterRe.FindStringSubmatch(t); m != nil {
		q, _ := strconv.Atoi(m[1])
		year, _ := strconv.Atoi(m[2])
		iso := quarterEndDate(q, year)
		return &iso
	}
	if m := arabicQuarterRe.FindStringSubmatch(t); m != nil {
		q, _ := strconv.Atoi(m[1])
		year, _ := strconv.Atoi(m[2])
		iso := quarterEndDate(q, year)
		return &iso
	}

	if m := ddmmRe.FindStringSubmatch(t); m != nil {
		day, _ := strconv.Atoi(m[1])
		mon, _ := strconv.Atoi(m[2])
		if iso, ok := isoDate(DefaultYear, time.Month(mon), day); ok {
			return &iso
		}
		return nil
	}

	return nil
}
