package api_models

import "github.com/zhukovvlad/listings-go/cmd/internal/services/apierrors"

// RawListing — одно объявление в том виде, в каком его прислал сервис
// извлечения. Набор полей свободный, типы значений не гарантированы,
// поэтому нормализация работает поверх map.
type RawListing map[string]any

// GetString возвращает строковое значение поля или nil,
// если поле отсутствует либо имеет другой тип.
func (l RawListing) GetString(key string) *string {
	v, ok := l[key]
	if !ok || v == nil {
		return nil
	}
	s, ok := v.(string)
	if !ok {
		return nil
	}
	return &s
}

// ExtractedBuilding — здание внутри объекта с его объявлениями.
// BuildingName может отсутствовать: объект из одного здания.
type ExtractedBuilding struct {
	BuildingName *string      `json:"building_name"`
	Listings     []RawListing `json:"listings"`
}

// ExtractedObject — один объект недвижимости из выгрузки извлечения.
// ObjectRentVAT — режим НДС, заявленный на уровне всего объекта;
// используется как подстановка для объявлений без собственного поля.
type ExtractedObject struct {
	ObjectName    string              `json:"object_name"`
	ObjectRentVAT *string             `json:"object_rent_vat,omitempty"`
	Buildings     []ExtractedBuilding `json:"buildings"`
}

// ExtractionPayload — полный вход конвейера нормализации:
// результат извлечения одного исходного файла.
type ExtractionPayload struct {
	RequestID  string            `json:"request_id,omitempty"`
	SourceFile string            `json:"source_file,omitempty"`
	Objects    []ExtractedObject `json:"objects"`
}

// Validate проверяет структурную целостность выгрузки.
// Пустые списки зданий и объявлений допустимы, пустые имена объектов — нет.
func (p *ExtractionPayload) Validate() error {
	if p == nil {
		return apierrors.NewValidationError("payload is required")
	}
	if len(p.Objects) == 0 {
		return apierrors.NewValidationError("payload must contain at least one object")
	}
	for i, obj := range p.Objects {
		if obj.ObjectName == "" {
			return apierrors.NewValidationError("objects[%d]: object_name is required", i)
		}
	}
	return nil
}
