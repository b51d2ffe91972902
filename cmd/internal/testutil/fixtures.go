// Package testutil содержит общие фикстуры для тестов конвейера.
package testutil

import "github.com/zhukovvlad/listings-go/cmd/internal/api_models"

func strPtr(s string) *string { return &s }

// SamplePayload возвращает небольшую, но содержательную выгрузку:
// один объект, два здания, три объявления с типичной грязью в данных.
func SamplePayload() *api_models.ExtractionPayload {
	return &api_models.ExtractionPayload{
		RequestID:  "req-test-1",
		SourceFile: "/data/uploads/report.pdf",
		Objects: []api_models.ExtractedObject{
			{
				ObjectName:    "Объект",
				ObjectRentVAT: strPtr("включен"),
				Buildings: []api_models.ExtractedBuilding{
					{
						BuildingName: strPtr("стр. 1"),
						Listings: []api_models.RawListing{
							{
								"use_type":         "office",
								"area_sqm":         "100,0",
								"floor":            "1",
								"fitout_condition": "готово к въезду",
								"rent_rate":        12000,
								"rent_vat":         "не применяется",
								"delivery_date":    "свободно",
							},
							{
								"use_type":      "офис",
								"area_sqm":      50,
								"floor":         "1-2",
								"rent_rate":     "18 000 ₽",
								"rent_vat":      "не применяется",
								"delivery_date": "4кв2026",
							},
						},
					},
					{
						BuildingName: strPtr("корпус 2"),
						Listings: []api_models.RawListing{
							{
								"use_type":           "склад",
								"area_sqm":           200,
								"floor":              "цоколь/1",
								"sale_price_per_sqm": 95000,
								"sale_vat":           "без ндс",
							},
						},
					},
				},
			},
		},
	}
}
