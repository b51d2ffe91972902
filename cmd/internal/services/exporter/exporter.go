// Package exporter собирает табличные выгрузки результатов обработки:
// xlsx-книги с листами по объявлениям и зданиям и csv-файлы.
package exporter

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// Table — одна таблица выгрузки: имя листа, порядок колонок и строки.
type Table struct {
	Name    string
	Columns []string
	Rows    []map[string]any
}

// BuildXLSX собирает xlsx-книгу: по листу на таблицу, первая строка — шапка.
// Первый лист заменяет стандартный "Sheet1".
func BuildXLSX(tables []Table) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	for i, t := range tables {
		name := t.Name
		if name == "" {
			name = fmt.Sprintf("Sheet%d", i+1)
		}
		if i == 0 {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				return nil, fmt.Errorf("переименование листа %q: %w", name, err)
			}
		} else {
			if _, err := f.NewSheet(name); err != nil {
				return nil, fmt.Errorf("создание листа %q: %w", name, err)
			}
		}

		header := make([]any, len(t.Columns))
		for j, col := range t.Columns {
			header[j] = col
		}
		if err := f.SetSheetRow(name, "A1", &header); err != nil {
			return nil, fmt.Errorf("запись шапки листа %q: %w", name, err)
		}

		for rowIdx, row := range t.Rows {
			values := make([]any, len(t.Columns))
			for j, col := range t.Columns {
				values[j] = row[col]
			}
			cell, err := excelize.CoordinatesToCellName(1, rowIdx+2)
			if err != nil {
				return nil, fmt.Errorf("адрес строки %d листа %q: %w", rowIdx+2, name, err)
			}
			if err := f.SetSheetRow(name, cell, &values); err != nil {
				return nil, fmt.Errorf("запись строки %d листа %q: %w", rowIdx+2, name, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("сериализация книги: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteCSV пишет таблицу в csv: шапка, затем строки в порядке колонок.
// nil-значения сериализуются пустыми ячейками.
func WriteCSV(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return fmt.Errorf("запись шапки csv: %w", err)
	}
	record := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for j, col := range t.Columns {
			record[j] = cellString(row[col])
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("запись строки csv: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func cellString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return formatFloat(x)
	case bool:
		if x {
			return "true"
		}
		return "false"
	case int:
		return fmt.Sprintf("%d", x)
	}
	return fmt.Sprint(v)
}

func formatFloat(x float64) string {
	if x == float64(int64(x)) {
		return fmt.Sprintf("%d", int64(x))
	}
	return fmt.Sprintf("%g", x)
}
