package postgres

import (
	"context"
	"fmt"

	"github.com/talktorobson/prima-facie-sub001/internal/domain/matter"
	ierr "github.com/talktorobson/prima-facie-sub001/internal/errors"
	"github.com/talktorobson/prima-facie-sub001/internal/logger"
	"github.com/talktorobson/prima-facie-sub001/internal/postgres"
	"github.com/talktorobson/prima-facie-sub001/internal/types"
)

type matterRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewMatterRepository(db *postgres.DB, logger *logger.Logger) matter.Repository {
	return &matterRepository{db: db, logger: logger}
}

func (r *matterRepository) Create(ctx context.Context, m *matter.Matter) error {
	query := `
		INSERT INTO matters (
			id,
			law_firm_id,
			client_id,
			title,
			area,
			opened_at,
			closed_at,
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
			:title,
			:area,
			:opened_at,
			:closed_at,
			:status,
			:created_at,
			:updated_at,
			:created_by,
			:updated_by
		)
	`

	r.logger.Debugw("creating matter",
		"matter_id", m.ID,
		"law_firm_id", m.LawFirmID,
	)

	_, err := r.db.NamedExecContext(ctx, query, m)
	if err != nil {
		r.logger.Errorw("failed to create matter", "error", err)
		return fmt.Errorf("failed to insert matter: %w", err)
	}
	return nil
}

func (r *matterRepository) Get(ctx context.Context, id string) (*matter.Matter, error) {
	query := `
		SELECT * FROM matters
		WHERE id = :id
		AND law_firm_id = :law_firm_id
		AND status != :deleted
	`

	rows, err := r.db.NamedQueryContext(ctx, query, map[string]interface{}{
		"id":          id,
		"law_firm_id": types.GetLawFirmID(ctx),
		"deleted":     types.StatusDeleted,
	})
	if err != nil {
		r.logger.Errorw("failed to get matter", "error", err, "matter_id", id)
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, ierr.NewError("matter not found").
			WithHint("Caso não encontrado").
			WithReportableDetails(map[string]any{"matter_id": id}).
			Mark(ierr.ErrNotFound)
	}

	var m matter.Matter
	if err := rows.StructScan(&m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *matterRepository) Update(ctx context.Context, m *matter.Matter) error {
	query := `
		UPDATE matters
		SET title = :title,
		area = :area,
		closed_at = :closed_at,
		updated_at = :updated_at,
		updated_by = :updated_by
		WHERE id = :id
		AND law_firm_id = :law_firm_id
	`

	r.logger.Debugw("updating matter", "matter_id", m.ID)

	_, err := r.db.NamedExecContext(ctx, query, m)
	if err != nil {
		r.logger.Errorw("failed to update matter", "error", err)
		return err
	}
	return nil
}

func (r *matterRepository) GetBillingConfig(ctx context.Context, matterID string) (*matter.BillingConfig, error) {
	query := `
		SELECT * FROM matter_billing_configs
		WHERE matter_id = :matter_id
		AND law_firm_id = :law_firm_id
		AND status != :deleted
	`

	rows, err := r.db.NamedQueryContext(ctx, query, map[string]interface{}{
		"matter_id":   matterID,
		"law_firm_id": types.GetLawFirmID(ctx),
		"deleted":     types.StatusDeleted,
	})
	if err != nil {
		r.logger.Errorw("failed to get billing config", "error", err, "matter_id", matterID)
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, ierr.NewError("billing config not found").
			WithHint("Configuração de cobrança não encontrada para este caso").
			WithReportableDetails(map[string]any{"matter_id": matterID}).
			Mark(ierr.ErrNotFound)
	}

	var config matter.BillingConfig
	if err := rows.StructScan(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

func (r *matterRepository) SetBillingConfig(ctx context.Context, config *matter.BillingConfig) error {
	// one config per matter; a re-set replaces the previous row
	query := `
		INSERT INTO matter_billing_configs (
			id,
			law_firm_id,
			matter_id,
			billing_method,
			hourly_rate,
			fixed_fee,
			percentage_rate,
			minimum_fee,
			status,
			created_at,
			updated_at,
			created_by,
			updated_by
		)
		VALUES (
			:id,
			:law_firm_id,
			:matter_id,
			:billing_method,
			:hourly_rate,
			:fixed_fee,
			:percentage_rate,
			:minimum_fee,
			:status,
			:created_at,
			:updated_at,
			:created_by,
			:updated_by
		)
		ON CONFLICT (law_firm_id, matter_id) DO UPDATE
		SET billing_method = EXCLUDED.billing_method,
		hourly_rate = EXCLUDED.hourly_rate,
		fixed_fee = EXCLUDED.fixed_fee,
		percentage_rate = EXCLUDED.percentage_rate,
		minimum_fee = EXCLUDED.minimum_fee,
		updated_at = EXCLUDED.updated_at,
		updated_by = EXCLUDED.updated_by
	`

	r.logger.Debugw("setting billing config",
		"matter_id", config.MatterID,
		"billing_method", config.BillingMethod,
	)

	_, err := r.db.NamedExecContext(ctx, query, config)
	if err != nil {
		r.logger.Errorw("failed to set billing config", "error", err)
		return fmt.Errorf("failed to upsert billing config: %w", err)
	}
	return nil
}

func (r *matterRepository) GetOutcome(ctx context.Context, matterID string) (*matter.Outcome, error) {
	query := `
		SELECT * FROM matter_outcomes
		WHERE matter_id = :matter_id
		AND law_firm_id = :law_firm_id
		AND status != :deleted
	`

	rows, err := r.db.NamedQueryContext(ctx, query, map[string]interface{}{
		"matter_id":   matterID,
		"law_firm_id": types.GetLawFirmID(ctx),
		"deleted":     types.StatusDeleted,
	})
	if err != nil {
		r.logger.Errorw("failed to get outcome", "error", err, "matter_id", matterID)
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, ierr.NewError("outcome not found").
			WithHint("Nenhum resultado registrado para este caso").
			WithReportableDetails(map[string]any{"matter_id": matterID}).
			Mark(ierr.ErrNotFound)
	}

	var outcome matter.Outcome
	if err := rows.StructScan(&outcome); err != nil {
		return nil, err
	}
	return &outcome, nil
}

func (r *matterRepository) SetOutcome(ctx context.Context, outcome *matter.Outcome) error {
	query := `
		INSERT INTO matter_outcomes (
			id,
			law_firm_id,
			matter_id,
			amount_recovered,
			success_fee,
			decided_at,
			status,
			created_at,
			updated_at,
			created_by,
			updated_by
		)
		VALUES (
			:id,
			:law_firm_id,
			:matter_id,
			:amount_recovered,
			:success_fee,
			:decided_at,
			:status,
			:created_at,
			:updated_at,
			:created_by,
			:updated_by
		)
		ON CONFLICT (law_firm_id, matter_id) DO UPDATE
		SET amount_recovered = EXCLUDED.amount_recovered,
		success_fee = EXCLUDED.success_fee,
		decided_at = EXCLUDED.decided_at,
		updated_at = EXCLUDED.updated_at,
		updated_by = EXCLUDED.updated_by
	`

	r.logger.Debugw("setting outcome", "matter_id", outcome.MatterID)

	_, err := r.db.NamedExecContext(ctx, query, outcome)
	if err != nil {
		r.logger.Errorw("failed to set outcome", "error", err)
		return fmt.Errorf("failed to upsert outcome: %w", err)
	}
	return nil
}

func (r *matterRepository) ListExpenses(ctx context.Context, matterID string) ([]*matter.Expense, error) {
	query := `
		SELECT * FROM matter_expenses
		WHERE matter_id = :matter_id
		AND law_firm_id = :law_firm_id
		AND status = :status
		ORDER BY incurred_at ASC
	`

	rows, err := r.db.NamedQueryContext(ctx, query, map[string]interface{}{
		"matter_id":   matterID,
		"law_firm_id": types.GetLawFirmID(ctx),
		"status":      types.StatusActive,
	})
	if err != nil {
		r.logger.Errorw("failed to list expenses", "error", err, "matter_id", matterID)
		return nil, err
	}
	defer rows.Close()

	var expenses []*matter.Expense
	for rows.Next() {
		var e matter.Expense
		if err := rows.StructScan(&e); err != nil {
			return nil, err
		}
		expenses = append(expenses, &e)
	}
	return expenses, rows.Err()
}

func (r *matterRepository) AddExpense(ctx context.Context, expense *matter.Expense) error {
	query := `
		INSERT INTO matter_expenses (
			id,
			law_firm_id,
			matter_id,
			description,
			amount,
			reimbursable,
			incurred_at,
			status,
			created_at,
			updated_at,
			created_by,
			updated_by
		)
		VALUES (
			:id,
			:law_firm_id,
			:matter_id,
			:description,
			:amount,
			:reimbursable,
			:incurred_at,
			:status,
			:created_at,
			:updated_at,
			:created_by,
			:updated_by
		)
	`

	r.logger.Debugw("adding expense",
		"matter_id", expense.MatterID,
		"amount", expense.Amount,
	)

	_, err := r.db.NamedExecContext(ctx, query, expense)
	if err != nil {
		r.logger.Errorw("failed to add expense", "error", err)
		return fmt.Errorf("failed to insert expense: %w", err)
	}
	return nil
}
