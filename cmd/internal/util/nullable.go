package util

import (
	"database/sql"
	"strconv"
	"time"
)

// Deref безопасно разыменовывает *string; nil превращается в пустую строку.
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// NilIfEmpty возвращает nil для пустой строки, иначе указатель на нее.
func NilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// NullableString преобразует *string в sql.NullString.
// Пустая строка ("") также будет считаться NULL для базы данных.
func NullableString(s *string) sql.NullString {
	if s == nil || *s == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: *s, Valid: true}
}

// NullableFloat64 преобразует *float64 в sql.NullFloat64.
func NullableFloat64(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{Valid: false}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

// NullableInt64 преобразует *int64 в sql.NullInt64.
func NullableInt64(i *int64) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{Valid: false}
	}
	return sql.NullInt64{Int64: *i, Valid: true}
}

// NullableBool преобразует *bool в sql.NullBool.
func NullableBool(b *bool) sql.NullBool {
	if b == nil {
		return sql.NullBool{Valid: false}
	}
	return sql.NullBool{Bool: *b, Valid: true}
}

// NullableTime преобразует *time.Time в sql.NullTime.
func NullableTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{Valid: false}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// ConvertNullFloat64ToNullString преобразует sql.NullFloat64 в sql.NullString.
func ConvertNullFloat64ToNullString(nf sql.NullFloat64) sql.NullString {
	if !nf.Valid {
		return sql.NullString{Valid: false}
	}
	// strconv.FormatFloat предлагает хороший контроль над форматированием:
	// 'f' - стандартное десятичное представление, -1 - минимально необходимое
	// количество знаков после запятой.
	s := strconv.FormatFloat(nf.Float64, 'f', -1, 64)
	return sql.NullString{String: s, Valid: true}
}
