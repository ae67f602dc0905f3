package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/talktorobson/prima-facie-sub001/internal/domain/timeentry"
	"github.com/talktorobson/prima-facie-sub001/internal/logger"
	"github.com/talktorobson/prima-facie-sub001/internal/postgres"
	"github.com/talktorobson/prima-facie-sub001/internal/types"
)

type timeEntryRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewTimeEntryRepository(db *postgres.DB, logger *logger.Logger) timeentry.Repository {
	return &timeEntryRepository{db: db, logger: logger}
}

func (r *timeEntryRepository) Create(ctx context.Context, entry *timeentry.TimeEntry) error {
	query := `
		INSERT INTO time_entries (
			id,
			law_firm_id,
			client_id,
			matter_id,
			subscription_id,
			category,
			description,
			effective_minutes,
			billable,
			billable_rate,
			work_date,
			status,
			created_at,
			updated_at,
			created_by,
			updated_by
		)
		VALUES (
			:id,
			:law_firm_id,
			:client_id,
			:matter_id,
			:subscription_id,
			:category,
			:description,
			:effective_minutes,
			:billable,
			:billable_rate,
			:work_date,
			:status,
			:created_at,
			:updated_at,
			:created_by,
			:updated_by
		)
	`

	r.logger.Debugw("creating time entry",
		"time_entry_id", entry.ID,
		"law_firm_id", entry.LawFirmID,
	)

	_, err := r.db.NamedExecContext(ctx, query, entry)
	if err != nil {
		r.logger.Errorw("failed to create time entry", "error", err)
		return fmt.Errorf("failed to insert time entry: %w", err)
	}
	return nil
}

func (r *timeEntryRepository) ListBySubscription(ctx context.Context, subscriptionID string, periodStart, periodEnd time.Time) ([]*timeentry.TimeEntry, error) {
	query := `
		SELECT * FROM time_entries
		WHERE subscription_id = :subscription_id
		AND law_firm_id = :law_firm_id
		AND work_date >= :period_start
		AND work_date <= :period_end
		AND status = :status
		ORDER BY work_date ASC
	`

	rows, err := r.db.NamedQueryContext(ctx, query, map[string]interface{}{
		"subscription_id": subscriptionID,
		"law_firm_id":     types.GetLawFirmID(ctx),
		"period_start":    periodStart,
		"period_end":      periodEnd,
		"status":          types.StatusActive,
	})
	if err != nil {
		r.logger.Errorw("failed to list time entries by subscription", "error", err)
		return nil, err
	}
	defer rows.Close()

	return scanTimeEntries(rows)
}

func (r *timeEntryRepository) ListByMatter(ctx context.Context, matterID string) ([]*timeentry.TimeEntry, error) {
	query := `
		SELECT * FROM time_entries
		WHERE matter_id = :matter_id
		AND law_firm_id = :law_firm_id
		AND status = :status
		ORDER BY work_date ASC
	`

	rows, err := r.db.NamedQueryContext(ctx, query, map[string]interface{}{
		"matter_id":   matterID,
		"law_firm_id": types.GetLawFirmID(ctx),
		"status":      types.StatusActive,
	})
	if err != nil {
		r.logger.Errorw("failed to list time entries by matter", "error", err)
		return nil, err
	}
	defer rows.Close()

	return scanTimeEntries(rows)
}

func scanTimeEntries(rows *sqlx.Rows) ([]*timeentry.TimeEntry, error) {
	var entries []*timeentry.TimeEntry
	for rows.Next() {
		var entry timeentry.TimeEntry
		if err := rows.StructScan(&entry); err != nil {
			return nil, err
		}
		entries = append(entries, &entry)
	}
	return entries, rows.Err()
}
