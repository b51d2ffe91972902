package normalizer

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/zhukovvlad/listings-go/cmd/internal/rules"
)

// Floor — один этаж: целое число либо специальная текстовая метка
// ("подвал", "цоколь", "мезонин"). Label пуст для числовых этажей.
type Floor struct {
	Number int
	Label  string
}

func (f Floor) IsNumeric() bool { return f.Label == "" }

// NumFloor возвращает числовой этаж.
func NumFloor(n int) Floor { return Floor{Number: n} }

// LabelFloor возвращает специальный текстовый этаж.
func LabelFloor(s string) Floor { return Floor{Label: s} }

// Канонические русские метки для ключей map_special из правил.
var specialCanonRu = map[string]string{
	"basement":  "подвал",
	"socle":     "цоколь",
	"mezzanine": "мезонин",
}

var bareIntRe = regexp.MustCompile(`^-?\d+$`)

// specialValues разворачивает map_special в плоскую таблицу
// синоним (в нижнем регистре) -> каноническая русская метка.
func specialValues(fr *rules.Floor) map[string]string {
	out := make(map[string]string)
	for key, vals := range fr.MapSpecial {
		canon, ok := specialCanonRu[key]
		if !ok {
			canon = key
		}
		for _, v := range vals {
			out[strings.ToLower(strings.TrimSpace(v))] = canon
		}
	}
	return out
}

func tokenizeFloors(value string, fr *rules.Floor) []string {
	s := strings.ToLower(strings.TrimSpace(value))
	for _, tok := range fr.DropTokens {
		s = strings.ReplaceAll(s, strings.ToLower(tok), " ")
	}
	for _, sep := range fr.Multi.SplitSeparators {
		s = strings.ReplaceAll(s, sep, "|")
	}
	parts := strings.Split(s, "|")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// expandRange разворачивает "A-B" в каждый целый этаж от min до max включительно.
// Перевернутый диапазон ("3-1") нормализуется.
func expandRange(token string, rangeSeps []string) ([]int, bool) {
	for _, d := range rangeSeps {
		re := regexp.MustCompile(`^\s*(-?\d+)\s*` + regexp.QuoteMeta(d) + `\s*(-?\d+)\s*$`)
		m := re.FindStringSubmatch(token)
		if m == nil {
			continue
		}
		a, errA := strconv.Atoi(m[1])
		b, errB := strconv.Atoi(m[2])
		if errA != nil || errB != nil {
			continue
		}
		if a > b {
			a, b = b, a
		}
		out := make([]int, 0, b-a+1)
		for n := a; n <= b; n++ {
			out = append(out, n)
		}
		return out, true
	}
	return nil, false
}

// ParseFloors разбирает значение поля "этаж" в список этажей.
// Поддерживаются скаляры, списки, диапазоны и специальные обозначения;
// нераспознанные текстовые токены молча отбрасываются.
func ParseFloors(value any, fr *rules.Floor) []Floor {
	if value == nil {
		return nil
	}

	specials := specialValues(fr)

	appendNum := func(out []Floor, n int) []Floor {
		if n == -1 {
			if canon, ok := specials["-1"]; ok {
				return append(out, LabelFloor(canon))
			}
		}
		return append(out, NumFloor(n))
	}

	var out []Floor
	handleToken := func(tok string) {
		if expanded, ok := expandRange(tok, fr.Multi.RangeSeparators); ok {
			for _, n := range expanded {
				out = appendNum(out, n)
			}
			return
		}
		if bareIntRe.MatchString(tok) {
			n, err := strconv.Atoi(tok)
			if err == nil {
				out = appendNum(out, n)
			}
			return
		}
		if canon, ok := specials[tok]; ok {
			out = append(out, LabelFloor(canon))
			return
		}
		// Прочий текст игнорируется: это сигнал качества данных, не ошибка.
	}

	switch v := value.(type) {
	case []any:
		for _, item := range v {
			for _, tok := range tokenizeFloors(fmt.Sprint(item), fr) {
				handleToken(tok)
			}
		}
		return out
	case []string:
		for _, item := range v {
			for _, tok := range tokenizeFloors(item, fr) {
				handleToken(tok)
			}
		}
		return out
	case int:
		return appendNum(nil, v)
	case int64:
		return appendNum(nil, int(v))
	case float64:
		// JSON-числа приходят как float64; целочисленные трактуем как номер этажа.
		if v == float64(int(v)) {
			return appendNum(nil, int(v))
		}
		return nil
	case string:
		for _, tok := range tokenizeFloors(v, fr) {
			handleToken(tok)
		}
		return out
	}

	for _, tok := range tokenizeFloors(fmt.Sprint(value), fr) {
		handleToken(tok)
	}
	return out
}

// collapseConsecutive сворачивает отсортированные номера этажей в максимальные
// непрерывные серии, каждая серия отображается как "N" либо "A<dash>B".
func collapseConsecutive(nums []int, dash string) []string {
	if len(nums) == 0 {
		return nil
	}
	var out []string
	start, prev := nums[0], nums[0]
	flush := func() {
		if start == prev {
			out = append(out, strconv.Itoa(start))
		} else {
			out = append(out, fmt.Sprintf("%d%s%d", start, dash, prev))
		}
	}
	for _, n := range nums[1:] {
		if n == prev+1 {
			prev = n
			continue
		}
		flush()
		start, prev = n, n
	}
	flush()
	return out
}

// RenderFloors собирает разобранный список этажей обратно в каноническую
// строку: числа сортируются и сворачиваются в диапазоны, текстовые метки
// сохраняют порядок первого появления. Повторный разбор отрендеренной строки
// и повторный рендер дают ту же строку.
func RenderFloors(floors []Floor, fr *rules.Floor) string {
	render := fr.Multi.Render

	var nums []int
	var texts []string
	for _, f := range floors {
		if f.IsNumeric() {
			nums = append(nums, f.Number)
		} else {
			texts = append(texts, f.Label)
		}
	}

	if render.Uniq {
		seen := make(map[int]struct{}, len(nums))
		uniq := nums[:0]
		for _, n := range nums {
			if _, ok := seen[n]; !ok {
				seen[n] = struct{}{}
				uniq = append(uniq, n)
			}
		}
		nums = uniq

		seenT := make(map[string]struct{}, len(texts))
		uniqT := texts[:0]
		for _, t := range texts {
			if _, ok := seenT[t]; !ok {
				seenT[t] = struct{}{}
				uniqT = append(uniqT, t)
			}
		}
		texts = uniqT
	}
	sort.Ints(nums)

	numParts := collapseConsecutive(nums, render.RangeDash)

	var pieces []string
	if render.SortNumericFirst {
		pieces = append(numParts, texts...)
	} else {
		pieces = append(texts, numParts...)
	}
	return strings.Join(pieces, render.JoinToken)
}
