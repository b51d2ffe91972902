// Package identifiers собирает стабильные идентификаторы объектов, зданий
// и объявлений: транслитерация, слаги, разбор строительных токенов
// ("стр. 1", "корпус 2", "литера А", "блок B") и составные listing_id.
package identifiers

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/zhukovvlad/listings-go/cmd/internal/rules"
	"github.com/zhukovvlad/listings-go/cmd/internal/util"
)

// Таблица транслитерации русских букв. Твердый и мягкий знаки опускаются.
var ruTranslit = map[rune]string{
	'а': "a", 'б': "b", 'в': "v", 'г': "g", 'д': "d", 'е': "e", 'ё': "e",
	'ж': "zh", 'з': "z", 'и': "i", 'й': "y", 'к': "k", 'л': "l", 'м': "m",
	'н': "n", 'о': "o", 'п': "p", 'р': "r", 'с': "s", 'т': "t", 'у': "u",
	'ф': "f", 'х': "h", 'ц': "c", 'ч': "ch", 'ш': "sh", 'щ': "shch",
	'ъ': "", 'ы': "y", 'ь': "", 'э': "e", 'ю': "yu", 'я': "ya",
}

func transliterateRu(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if t, ok := ruTranslit[r]; ok {
			b.WriteString(t)
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

var (
	nonSlugRe     = regexp.MustCompile(`[^a-z0-9]+`)
	multiHyphenRe = regexp.MustCompile(`-+`)
)

// Slug строит идентификатор из произвольного текста: транслитерация,
// нижний регистр, все прочие символы схлопываются в дефисы.
//
//	Slug("Башня на Набережной") == "bashnya-na-naberezhnoy"
func Slug(s string) string {
	t := transliterateRu(s)
	t = nonSlugRe.ReplaceAllString(t, "-")
	t = multiHyphenRe.ReplaceAllString(t, "-")
	return strings.Trim(t, "-")
}

// Граница слова в RE2 (\b) не работает рядом с кириллицей, поэтому перед
// токеном явно требуется начало строки или не-буквенный символ.
var (
	strRe    = regexp.MustCompile(`(?i)(?:^|[^0-9a-zа-яё])стр\.?\s*([0-9]+)`)
	korpusRe = regexp.MustCompile(`(?i)(?:^|[^0-9a-zа-яё])корпус\s*([0-9]+)`)
	literaRe = regexp.MustCompile(`(?i)(?:^|[^0-9a-zа-яё])литер(?:а|ы)?\s*([a-zа-яё])(?:$|[^0-9a-zа-яё])`)
	blokRe   = regexp.MustCompile(`(?i)(?:^|[^0-9a-zа-яё])блок\s*([a-zа-яё])(?:$|[^0-9a-zа-яё])`)
)

// BuildingToken извлекает канонический строительный токен из свободного
// названия здания: "стр. N", "корпус N", "литера X", "блок X".
// Если ни один шаблон не распознан, возвращается очищенный исходный текст;
// для пустого входа — nil.
func BuildingToken(raw *string) *string {
	if raw == nil {
		return nil
	}
	s := strings.TrimSpace(*raw)
	if s == "" {
		return nil
	}

	if m := strRe.FindStringSubmatch(s); m != nil {
		n, _ := strconv.Atoi(m[1])
		tok := fmt.Sprintf("стр. %d", n)
		return &tok
	}
	if m := korpusRe.FindStringSubmatch(s); m != nil {
		n, _ := strconv.Atoi(m[1])
		tok := fmt.Sprintf("корпус %d", n)
		return &tok
	}
	if m := literaRe.FindStringSubmatch(s); m != nil {
		tok := "литера " + strings.ToUpper(m[1])
		return &tok
	}
	if m := blokRe.FindStringSubmatch(s); m != nil {
		tok := "блок " + strings.ToUpper(m[1])
		return &tok
	}

	return &s
}

// BuildingTokenSlug — слаг строительного токена, пустая строка при его отсутствии.
func BuildingTokenSlug(raw *string) string {
	tok := BuildingToken(raw)
	if tok == nil {
		return ""
	}
	return Slug(*tok)
}

// ObjectID — идентификатор объекта, слаг его названия.
func ObjectID(objectName string) string {
	return Slug(objectName)
}

// BuildingID — идентификатор здания: "<object_id>__<building_token_slug>"
// либо просто object_id, если строительный токен отсутствует.
//
//	BuildingID("Объект", "стр. 1") == "obekt__str-1"
func BuildingID(objectName string, raw *string) string {
	oid := ObjectID(objectName)
	bslug := BuildingTokenSlug(raw)
	if bslug == "" {
		return oid
	}
	return oid + "__" + bslug
}

// ComposeBuildingName собирает отображаемое имя здания по шаблону
// aggregation.building.name.compose, где suffix — ", <токен>".
// Если сырое имя уже содержит название объекта, оно возвращается как есть.
func ComposeBuildingName(objectName string, raw *string, r *rules.Rules) string {
	rawClean := strings.TrimSpace(util.Deref(raw))
	objClean := strings.TrimSpace(objectName)
	if rawClean != "" && objClean != "" &&
		strings.Contains(strings.ToLower(rawClean), strings.ToLower(objClean)) {
		return rawClean
	}

	suffix := ""
	if tok := BuildingToken(raw); tok != nil {
		if objClean == "" || !strings.Contains(strings.ToLower(objClean), strings.ToLower(*tok)) {
			suffix = ", " + *tok
		}
	}

	template := r.Aggregation.Building.Name.Compose
	if template == "" {
		template = "{object_name}{suffix}"
	}
	base := objClean
	if base == "" {
		base = objectName
	}
	name := strings.ReplaceAll(template, "{object_name}", base)
	return strings.ReplaceAll(name, "{suffix}", suffix)
}

// Parts — нормализованные поля объявления, участвующие в сборке listing_id.
type Parts struct {
	ObjectName  string
	BuildingRaw *string
	UseTypeNorm *string
	FloorsNorm  *string
	AreaSqm     *float64
}

// ListingID собирает стабильный идентификатор объявления: значения
// compose_parts, соединенные join_token, плюс короткий хеш имени исходного
// файла. Отсутствующие части дают пустые сегменты, но не меняют структуру,
// поэтому идентификатор детерминирован для одинакового входа.
func ListingID(p Parts, r *rules.Rules, sourceFile string) string {
	ident := r.Identifier.ListingID
	joinToken := ident.JoinToken
	if joinToken == "" {
		joinToken = "__"
	}
	hashLen := ident.HashLen
	if hashLen <= 0 {
		hashLen = 8
	}

	area1dp := ""
	if p.AreaSqm != nil {
		area1dp = fmt.Sprintf("%.1f", *p.AreaSqm)
	}
	values := map[string]string{
		"object_id":           ObjectID(p.ObjectName),
		"building_token_slug": BuildingTokenSlug(p.BuildingRaw),
		"use_type_norm_slug":  Slug(util.Deref(p.UseTypeNorm)),
		"floors_norm_slug":    Slug(util.Deref(p.FloorsNorm)),
		"area_1dp":            area1dp,
	}

	seq := make([]string, 0, len(ident.ComposeParts))
	for _, key := range ident.ComposeParts {
		seq = append(seq, values[key])
	}
	base := strings.Join(seq, joinToken)

	baseName := sourceFile
	if i := strings.LastIndex(baseName, "/"); i >= 0 {
		baseName = baseName[i+1:]
	}
	if i := strings.LastIndex(baseName, `\`); i >= 0 {
		baseName = baseName[i+1:]
	}
	digest := util.ShortSHA256(baseName, hashLen)
	if base == "" {
		return digest
	}
	return base + joinToken + digest
}
