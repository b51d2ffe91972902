// Утилита json2xlsx прогоняет сохраненную выгрузку извлечения через
// конвейер нормализации и пишет xlsx-книгу с листами объявлений и зданий.
//
// Пример:
//
//	json2xlsx -in extraction.json -out listings.xlsx -source-file report.pdf
package main

import (
	"encoding/json"
	"flag"
	"os"

	"github.com/zhukovvlad/listings-go/cmd/internal/api_models"
	"github.com/zhukovvlad/listings-go/cmd/internal/rules"
	"github.com/zhukovvlad/listings-go/cmd/internal/services"
	"github.com/zhukovvlad/listings-go/cmd/internal/services/exporter"
	"github.com/zhukovvlad/listings-go/cmd/pkg/logging"
)

func main() {
	var (
		inPath     = flag.String("in", "", "путь к json-файлу выгрузки извлечения")
		outPath    = flag.String("out", "listings.xlsx", "путь к итоговой xlsx-книге")
		rulesPath  = flag.String("rules", "", "путь к yaml-файлу правил (опционально)")
		requestID  = flag.String("request-id", "", "идентификатор запроса (опционально)")
		sourceFile = flag.String("source-file", "", "имя исходного файла для провенанса")
	)
	flag.Parse()

	logger := logging.GetLogger()
	if *inPath == "" {
		logger.Fatal("флаг -in обязателен")
	}

	data, err := os.ReadFile(*inPath)
	if err != nil {
		logger.Fatalf("чтение %s: %v", *inPath, err)
	}

	var payload api_models.ExtractionPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		logger.Fatalf("разбор %s: %v", *inPath, err)
	}
	if *sourceFile != "" {
		payload.SourceFile = *sourceFile
	}

	r, err := rules.Load(*rulesPath)
	if err != nil {
		logger.Fatalf("загрузка правил %s: %v", *rulesPath, err)
	}

	processing := services.NewListingProcessingService(r, logger)
	result, err := processing.ProcessExtraction(&payload, *requestID)
	if err != nil {
		logger.Fatalf("обработка выгрузки: %v", err)
	}

	book, err := exporter.BuildXLSX([]exporter.Table{
		{Name: "listings", Columns: result.ListingColumns, Rows: result.Listings},
		{Name: "buildings", Columns: result.BuildingColumns, Rows: result.Buildings},
	})
	if err != nil {
		logger.Fatalf("сборка xlsx: %v", err)
	}

	if err := os.WriteFile(*outPath, book, 0o644); err != nil {
		logger.Fatalf("запись %s: %v", *outPath, err)
	}
	logger.Infof("записано %s: объявлений=%d, зданий=%d",
		*outPath, len(result.Listings), len(result.Buildings))
}
