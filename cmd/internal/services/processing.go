package services

import (
	"github.com/google/uuid"

	"github.com/zhukovvlad/listings-go/cmd/internal/api_models"
	"github.com/zhukovvlad/listings-go/cmd/internal/rules"
	"github.com/zhukovvlad/listings-go/cmd/internal/services/aggregator"
	"github.com/zhukovvlad/listings-go/cmd/internal/services/listings"
	"github.com/zhukovvlad/listings-go/cmd/pkg/logging"
)

// ProcessResult — полный результат обработки одной выгрузки:
// плоские строки объявлений и агрегаты по зданиям, плюс порядок колонок
// для табличных выгрузок.
type ProcessResult struct {
	RequestID       string           `json:"request_id"`
	Listings        []map[string]any `json:"listings"`
	Buildings       []map[string]any `json:"buildings"`
	ListingColumns  []string         `json:"listing_columns"`
	BuildingColumns []string         `json:"building_columns"`
	ListingRows     []listings.Row   `json:"-"`
}

// ListingProcessingService — конвейер нормализации выгрузки извлечения.
// Правила неизменяемы и разделяются всеми запросами.
type ListingProcessingService struct {
	rules  *rules.Rules
	logger *logging.Logger
}

func NewListingProcessingService(r *rules.Rules, logger *logging.Logger) *ListingProcessingService {
	return &ListingProcessingService{rules: r, logger: logger}
}

// ProcessExtraction прогоняет выгрузку через нормализацию, вывод метрик
// и агрегацию. Ошибки возможны только на валидации структуры входа;
// грязные данные внутри объявлений нормализуются в null-значения.
func (s *ListingProcessingService) ProcessExtraction(payload *api_models.ExtractionPayload, requestID string) (*ProcessResult, error) {
	if err := payload.Validate(); err != nil {
		return nil, err
	}

	if requestID == "" {
		requestID = payload.RequestID
	}
	if requestID == "" {
		requestID = uuid.NewString()
	}

	rows := listings.FlattenObjects(payload.Objects, s.rules, requestID, payload.SourceFile)
	buildings := aggregator.GroupToBuildings(payload.Objects, s.rules, requestID, payload.SourceFile)

	s.logger.Infof("запрос %s: объектов=%d, объявлений=%d, зданий=%d",
		requestID, len(payload.Objects), len(rows), len(buildings))

	return &ProcessResult{
		RequestID:       requestID,
		Listings:        listings.SelectColumns(rows, s.rules.Output.ListingColumns),
		Buildings:       buildings,
		ListingColumns:  s.rules.Output.ListingColumns,
		BuildingColumns: s.rules.Output.BuildingColumns,
		ListingRows:     rows,
	}, nil
}
