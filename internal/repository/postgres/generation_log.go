package postgres

import (
	"context"
	"fmt"

	"github.com/talktorobson/prima-facie-sub001/internal/domain/invoice"
	"github.com/talktorobson/prima-facie-sub001/internal/logger"
	"github.com/talktorobson/prima-facie-sub001/internal/postgres"
	"github.com/talktorobson/prima-facie-sub001/internal/types"
)

type generationLogRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewGenerationLogRepository(db *postgres.DB, logger *logger.Logger) invoice.GenerationLogRepository {
	return &generationLogRepository{db: db, logger: logger}
}

func (r *generationLogRepository) Create(ctx context.Context, log *invoice.GenerationLog) error {
	query := `
		INSERT INTO invoice_generation_logs (
			id,
			law_firm_id,
			batch_id,
			invoice_type,
			total_requested,
			successful,
			failed,
			errors,
			started_at,
			completed_at,
			status,
			created_at,
			updated_at,
			created_by,
			updated_by
		)
		VALUES (
			:id,
			:law_firm_id,
			:batch_id,
			:invoice_type,
			:total_requested,
			:successful,
			:failed,
			:errors,
			:started_at,
			:completed_at,
			:status,
			:created_at,
			:updated_at,
			:created_by,
			:updated_by
		)
	`

	r.logger.Debugw("creating generation log",
		"batch_id", log.BatchID,
		"invoice_type", log.InvoiceType,
		"successful", log.Successful,
		"failed", log.Failed,
	)

	_, err := r.db.NamedExecContext(ctx, query, log)
	if err != nil {
		r.logger.Errorw("failed to create generation log", "error", err, "batch_id", log.BatchID)
		return fmt.Errorf("failed to insert generation log: %w", err)
	}
	return nil
}

func (r *generationLogRepository) List(ctx context.Context, filter *types.QueryFilter) ([]*invoice.GenerationLog, error) {
	if filter == nil {
		filter = types.NewDefaultQueryFilter()
	}

	order := "DESC"
	if filter.GetOrder() == types.OrderAsc {
		order = "ASC"
	}

	query := fmt.Sprintf(`
		SELECT * FROM invoice_generation_logs
		WHERE law_firm_id = :law_firm_id
		AND status != :deleted
		ORDER BY started_at %s
	`, order)

	params := map[string]interface{}{
		"law_firm_id": types.GetLawFirmID(ctx),
		"deleted":     types.StatusDeleted,
	}
	if !filter.IsUnlimited() {
		query += ` LIMIT :limit OFFSET :offset`
		params["limit"] = filter.GetLimit()
		params["offset"] = filter.GetOffset()
	}

	rows, err := r.db.NamedQueryContext(ctx, query, params)
	if err != nil {
		r.logger.Errorw("failed to list generation logs", "error", err)
		return nil, err
	}
	defer rows.Close()

	var logs []*invoice.GenerationLog
	for rows.Next() {
		var log invoice.GenerationLog
		if err := rows.StructScan(&log); err != nil {
			return nil, err
		}
		logs = append(logs, &log)
	}
	return logs, rows.Err()
}
