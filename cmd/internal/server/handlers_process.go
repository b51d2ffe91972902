package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/zhukovvlad/listings-go/cmd/internal/api_models"
	"github.com/zhukovvlad/listings-go/cmd/internal/services"
	"github.com/zhukovvlad/listings-go/cmd/internal/services/apierrors"
	"github.com/zhukovvlad/listings-go/cmd/internal/services/exporter"
)

// ProcessHandler принимает выгрузку извлечения и возвращает JSON
// с плоскими объявлениями и агрегатами по зданиям.
func (s *Server) ProcessHandler(c *gin.Context) {
	result, ok := s.process(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, result)
}

// ProcessXLSXHandler принимает ту же выгрузку, но возвращает xlsx-книгу
// с листами "listings" и "buildings".
func (s *Server) ProcessXLSXHandler(c *gin.Context) {
	result, ok := s.process(c)
	if !ok {
		return
	}

	book, err := exporter.BuildXLSX([]exporter.Table{
		{Name: "listings", Columns: result.ListingColumns, Rows: result.Listings},
		{Name: "buildings", Columns: result.BuildingColumns, Rows: result.Buildings},
	})
	if err != nil {
		s.logger.Errorf("запрос %s: сборка xlsx: %v", result.RequestID, err)
		c.JSON(http.StatusInternalServerError, errorResponse(err))
		return
	}

	filename := fmt.Sprintf("listings_%s.xlsx", result.RequestID)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", book)
}

// process разбирает тело запроса и прогоняет его через конвейер.
// Второй результат false означает, что ответ уже записан.
func (s *Server) process(c *gin.Context) (*services.ProcessResult, bool) {
	var payload api_models.ExtractionPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(fmt.Errorf("некорректное тело запроса: %w", err)))
		return nil, false
	}

	// Явный клиентский заголовок важнее request_id из тела выгрузки;
	// сгенерированный middleware идентификатор выгрузку не перекрывает.
	result, err := s.processing.ProcessExtraction(&payload, c.GetHeader("X-Request-ID"))
	if err != nil {
		var validationErr *apierrors.ValidationError
		if errors.As(err, &validationErr) {
			c.JSON(http.StatusBadRequest, errorResponse(err))
			return nil, false
		}
		s.logger.Errorf("запрос %s: обработка выгрузки: %v", requestID(c), err)
		c.JSON(http.StatusInternalServerError, errorResponse(err))
		return nil, false
	}

	if s.listingLog != nil {
		inserted, err := s.listingLog.RecordRows(c.Request.Context(), result.ListingRows)
		if err != nil {
			// Журнал вторичен: его сбой не должен ронять ответ клиенту.
			s.logger.Errorf("запрос %s: журнал объявлений: %v", result.RequestID, err)
		} else {
			s.logger.Infof("запрос %s: журнал объявлений пополнен на %d строк", result.RequestID, inserted)
		}
	}

	c.Header("X-Request-ID", result.RequestID)
	return result, true
}
