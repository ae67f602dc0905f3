package postgres

import (
	"context"
	"fmt"

	"github.com/talktorobson/prima-facie-sub001/internal/domain/paymentplan"
	"github.com/talktorobson/prima-facie-sub001/internal/logger"
	"github.com/talktorobson/prima-facie-sub001/internal/postgres"
	"github.com/talktorobson/prima-facie-sub001/internal/types"
)

type paymentPlanRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewPaymentPlanRepository(db *postgres.DB, logger *logger.Logger) paymentplan.Repository {
	return &paymentPlanRepository{db: db, logger: logger}
}

func (r *paymentPlanRepository) Create(ctx context.Context, plan *paymentplan.PaymentPlan) error {
	query := `
		INSERT INTO payment_plans (
			id,
			law_firm_id,
			client_id,
			matter_id,
			total_amount,
			installments,
			installment_amount,
			frequency,
			start_date,
			plan_status,
			late_fee_rate,
			grace_period_days,
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
			:total_amount,
			:installments,
			:installment_amount,
			:frequency,
			:start_date,
			:plan_status,
			:late_fee_rate,
			:grace_period_days,
			:status,
			:created_at,
			:updated_at,
			:created_by,
			:updated_by
		)
	`

	r.logger.Debugw("creating payment plan",
		"payment_plan_id", plan.ID,
		"law_firm_id", plan.LawFirmID,
	)

	_, err := r.db.NamedExecContext(ctx, query, plan)
	if err != nil {
		r.logger.Errorw("failed to create payment plan", "error", err)
		return fmt.Errorf("failed to insert payment plan: %w", err)
	}
	return nil
}

func (r *paymentPlanRepository) Get(ctx context.Context, id string) (*paymentplan.PaymentPlan, error) {
	query := `
		SELECT * FROM payment_plans
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
		r.logger.Errorw("failed to get payment plan", "error", err, "payment_plan_id", id)
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, paymentplan.ErrPlanNotFound
	}

	var plan paymentplan.PaymentPlan
	if err := rows.StructScan(&plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *paymentPlanRepository) Update(ctx context.Context, plan *paymentplan.PaymentPlan) error {
	query := `
		UPDATE payment_plans
		SET plan_status = :plan_status,
		late_fee_rate = :late_fee_rate,
		grace_period_days = :grace_period_days,
		updated_at = :updated_at,
		updated_by = :updated_by
		WHERE id = :id
		AND law_firm_id = :law_firm_id
	`

	r.logger.Debugw("updating payment plan",
		"payment_plan_id", plan.ID,
		"plan_status", plan.PlanStatus,
	)

	_, err := r.db.NamedExecContext(ctx, query, plan)
	if err != nil {
		r.logger.Errorw("failed to update payment plan", "error", err)
		return err
	}
	return nil
}

func (r *paymentPlanRepository) ListActive(ctx context.Context) ([]*paymentplan.PaymentPlan, error) {
	query := `
		SELECT * FROM payment_plans
		WHERE law_firm_id = :law_firm_id
		AND plan_status = :plan_status
		AND status = :status
		ORDER BY created_at ASC
	`

	rows, err := r.db.NamedQueryContext(ctx, query, map[string]interface{}{
		"law_firm_id": types.GetLawFirmID(ctx),
		"plan_status": types.PaymentPlanStatusActive,
		"status":      types.StatusActive,
	})
	if err != nil {
		r.logger.Errorw("failed to list active payment plans", "error", err)
		return nil, err
	}
	defer rows.Close()

	var plans []*paymentplan.PaymentPlan
	for rows.Next() {
		var plan paymentplan.PaymentPlan
		if err := rows.StructScan(&plan); err != nil {
			return nil, err
		}
		plans = append(plans, &plan)
	}
	return plans, rows.Err()
}
