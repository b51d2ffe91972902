package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// ========== Тесты для Deref ==========

func TestDeref(t *testing.T) {
	t.Run("разыменование непустого указателя", func(t *testing.T) {
		str := "test string"
		result := Deref(&str)
		assert.Equal(t, "test string", result)
	})

	t.Run("разыменование nil указателя", func(t *testing.T) {
		result := Deref(nil)
		assert.Equal(t, "", result)
	})
}

// ========== Тесты для NilIfEmpty ==========

func TestNilIfEmpty(t *testing.T) {
	t.Run("пустая строка превращается в nil", func(t *testing.T) {
		assert.Nil(t, NilIfEmpty(""))
	})

	t.Run("непустая строка возвращается указателем", func(t *testing.T) {
		p := NilIfEmpty("офис")
		assert.NotNil(t, p)
		assert.Equal(t, "офис", *p)
	})
}

// ========== Тесты для NullableString ==========

func TestNullableString(t *testing.T) {
	t.Run("валидная строка", func(t *testing.T) {
		str := "valid string"
		result := NullableString(&str)

		assert.True(t, result.Valid)
		assert.Equal(t, "valid string", result.String)
	})

	t.Run("nil указатель", func(t *testing.T) {
		result := NullableString(nil)

		assert.False(t, result.Valid)
	})

	t.Run("пустая строка", func(t *testing.T) {
		str := ""
		result := NullableString(&str)

		assert.False(t, result.Valid, "пустая строка должна быть невалидной")
	})
}

// ========== Тесты для NullableFloat64 ==========

func TestNullableFloat64(t *testing.T) {
	t.Run("валидное значение", func(t *testing.T) {
		val := 123.45
		result := NullableFloat64(&val)

		assert.True(t, result.Valid)
		assert.Equal(t, 123.45, result.Float64)
	})

	t.Run("nil указатель", func(t *testing.T) {
		result := NullableFloat64(nil)

		assert.False(t, result.Valid)
	})

	t.Run("нулевое значение", func(t *testing.T) {
		val := 0.0
		result := NullableFloat64(&val)

		assert.True(t, result.Valid, "0.0 должен быть валидным")
	})
}

// ========== Тесты для NullableInt64 / NullableBool / NullableTime ==========

func TestNullableInt64(t *testing.T) {
	val := int64(42)
	assert.True(t, NullableInt64(&val).Valid)
	assert.False(t, NullableInt64(nil).Valid)
}

func TestNullableBool(t *testing.T) {
	val := true
	assert.True(t, NullableBool(&val).Valid)
	assert.False(t, NullableBool(nil).Valid)
}

func TestNullableTime(t *testing.T) {
	now := time.Now()
	assert.True(t, NullableTime(&now).Valid)
	assert.False(t, NullableTime(nil).Valid)
}

// ========== Тесты для ConvertNullFloat64ToNullString ==========

func TestConvertNullFloat64ToNullString(t *testing.T) {
	t.Run("валидное значение форматируется без хвостовых нулей", func(t *testing.T) {
		val := 12000.5
		ns := ConvertNullFloat64ToNullString(NullableFloat64(&val))

		assert.True(t, ns.Valid)
		assert.Equal(t, "12000.5", ns.String)
	})

	t.Run("невалидное значение остается NULL", func(t *testing.T) {
		ns := ConvertNullFloat64ToNullString(NullableFloat64(nil))

		assert.False(t, ns.Valid)
	})
}
