// Package storage ведет журнал обработанных объявлений в Postgres.
// Журнал идемпотентен: повторная обработка того же файла не плодит дубликатов.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/zhukovvlad/listings-go/cmd/internal/services/listings"
	"github.com/zhukovvlad/listings-go/cmd/internal/util"
	"github.com/zhukovvlad/listings-go/cmd/pkg/logging"
)

// ListingLog — журнал обработанных объявлений поверх *sql.DB.
type ListingLog struct {
	db     *sql.DB
	logger *logging.Logger
}

func NewListingLog(db *sql.DB, logger *logging.Logger) *ListingLog {
	return &ListingLog{db: db, logger: logger}
}

// Init создает таблицу журнала, если ее еще нет.
func (l *ListingLog) Init(ctx context.Context) error {
	const query = `
		CREATE TABLE IF NOT EXISTS listing_log (
			listing_id              TEXT PRIMARY KEY,
			request_id              TEXT NOT NULL,
			source_file             TEXT,
			object_id               TEXT,
			building_id             TEXT,
			use_type_norm           TEXT,
			area_sqm                NUMERIC,
			rent_rate_year_sqm_base NUMERIC,
			created_at              TIMESTAMPTZ NOT NULL DEFAULT now()
		)`
	if _, err := l.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("создание таблицы listing_log: %w", err)
	}
	return nil
}

// RecordRows записывает строки объявлений в журнал. Конфликт по listing_id
// молча пропускается; возвращается число фактически вставленных строк.
func (l *ListingLog) RecordRows(ctx context.Context, rows []listings.Row) (int, error) {
	const query = `
		INSERT INTO listing_log (
			listing_id, request_id, source_file, object_id, building_id,
			use_type_norm, area_sqm, rent_rate_year_sqm_base
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (listing_id) DO NOTHING`

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("открытие транзакции журнала: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("подготовка запроса журнала: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, row := range rows {
		res, err := stmt.ExecContext(ctx,
			row.ListingID,
			row.RequestID,
			row.SourceFile,
			row.ObjectID,
			row.BuildingID,
			util.NullableString(row.UseTypeNorm),
			util.NullableFloat64(row.AreaSqm),
			util.NullableFloat64(row.RentRateYearSqmBase),
		)
		if err != nil {
			return inserted, fmt.Errorf("вставка объявления %s: %w", row.ListingID, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return inserted, fmt.Errorf("фиксация транзакции журнала: %w", err)
	}
	l.logger.Debugf("журнал объявлений: вставлено %d из %d строк", inserted, len(rows))
	return inserted, nil
}
