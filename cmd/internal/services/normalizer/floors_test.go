package normalizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/zhukovvlad/listings-go/cmd/internal/rules"
)

func renderValue(t *testing.T, value any) string {
	t.Helper()
	fr := &rules.Default().Normalization.Floor
	return RenderFloors(ParseFloors(value, fr), fr)
}

func TestParseAndRenderFloors(t *testing.T) {
	cases := []struct {
		name  string
		input any
		want  string
	}{
		{"союз и", "1 и 2", "1–2"},
		{"смешанные разделители", "1,3;5", "1; 3; 5"},
		{"специальный этаж с диапазоном", "цоколь/1-2", "1–2; цоколь"},
		{"перевернутый диапазон", "3-1", "1–3"},
		{"минус первый в подвал", "-1/1", "1; подвал"},
		{"токен этажа отбрасывается", "2 этаж", "2"},
		{"дубликаты схлопываются", "1, 1, 2", "1–2"},
		{"скалярное число", 4, "4"},
		{"json-число", 4.0, "4"},
		{"список значений", []any{"1", "мезонин"}, "1; мезонин"},
		{"нераспознанный текст игнорируется", "антресоль", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, renderValue(t, tc.input))
		})
	}
}

func TestParseFloorsNil(t *testing.T) {
	fr := &rules.Default().Normalization.Floor
	assert.Empty(t, ParseFloors(nil, fr))
	assert.Empty(t, ParseFloors("", fr))
}

// Повторный разбор отрендеренной строки обязан давать ту же строку.
func TestRenderFloorsIdempotent(t *testing.T) {
	fr := &rules.Default().Normalization.Floor
	inputs := []any{"1 и 2", "цоколь/1-2", "3-1", "-1/1", "подвал, 5-7, мезонин"}

	for _, input := range inputs {
		first := RenderFloors(ParseFloors(input, fr), fr)
		second := RenderFloors(ParseFloors(first, fr), fr)
		assert.Equal(t, first, second, "вход %v", input)
	}
}
