package postgres

import (
	"context"
	"fmt"

	"github.com/talktorobson/prima-facie-sub001/internal/domain/plan"
	ierr "github.com/talktorobson/prima-facie-sub001/internal/errors"
	"github.com/talktorobson/prima-facie-sub001/internal/logger"
	"github.com/talktorobson/prima-facie-sub001/internal/postgres"
	"github.com/talktorobson/prima-facie-sub001/internal/types"
)

type planRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewPlanRepository(db *postgres.DB, logger *logger.Logger) plan.Repository {
	return &planRepository{db: db, logger: logger}
}

func (r *planRepository) Create(ctx context.Context, p *plan.Plan) error {
	query := `
		INSERT INTO plans (
			id,
			law_firm_id,
			name,
			description,
			monthly_price,
			currency,
			services,
			status,
			created_at,
			updated_at,
			created_by,
			updated_by
		)
		VALUES (
			:id,
			:law_firm_id,
			:name,
			:description,
			:monthly_price,
			:currency,
			:services,
			:status,
			:created_at,
			:updated_at,
			:created_by,
			:updated_by
		)
	`

	r.logger.Debugw("creating plan",
		"plan_id", p.ID,
		"law_firm_id", p.LawFirmID,
	)

	_, err := r.db.NamedExecContext(ctx, query, p)
	if err != nil {
		r.logger.Errorw("failed to create plan", "error", err)
		return fmt.Errorf("failed to insert plan: %w", err)
	}
	return nil
}

func (r *planRepository) Get(ctx context.Context, id string) (*plan.Plan, error) {
	query := `
		SELECT * FROM plans
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
		r.logger.Errorw("failed to get plan", "error", err, "plan_id", id)
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, ierr.NewError("plan not found").
			WithHint("Plano não encontrado").
			WithReportableDetails(map[string]any{"plan_id": id}).
			Mark(ierr.ErrNotFound)
	}

	var p plan.Plan
	if err := rows.StructScan(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *planRepository) Update(ctx context.Context, p *plan.Plan) error {
	query := `
		UPDATE plans
		SET name = :name,
		description = :description,
		monthly_price = :monthly_price,
		currency = :currency,
		services = :services,
		updated_at = :updated_at,
		updated_by = :updated_by
		WHERE id = :id
		AND law_firm_id = :law_firm_id
	`

	r.logger.Debugw("updating plan", "plan_id", p.ID)

	_, err := r.db.NamedExecContext(ctx, query, p)
	if err != nil {
		r.logger.Errorw("failed to update plan", "error", err)
		return err
	}
	return nil
}

func (r *planRepository) List(ctx context.Context) ([]*plan.Plan, error) {
	query := `
		SELECT * FROM plans
		WHERE law_firm_id = :law_firm_id
		AND status = :status
		ORDER BY created_at DESC
	`

	rows, err := r.db.NamedQueryContext(ctx, query, map[string]interface{}{
		"law_firm_id": types.GetLawFirmID(ctx),
		"status":      types.StatusActive,
	})
	if err != nil {
		r.logger.Errorw("failed to list plans", "error", err)
		return nil, err
	}
	defer rows.Close()

	var plans []*plan.Plan
	for rows.Next() {
		var p plan.Plan
		if err := rows.StructScan(&p); err != nil {
			return nil, err
		}
		plans = append(plans, &p)
	}
	return plans, rows.Err()
}
