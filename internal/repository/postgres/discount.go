package postgres

import (
	"context"
	"fmt"

	"github.com/talktorobson/prima-facie-sub001/internal/domain/discount"
	ierr "github.com/talktorobson/prima-facie-sub001/internal/errors"
	"github.com/talktorobson/prima-facie-sub001/internal/logger"
	"github.com/talktorobson/prima-facie-sub001/internal/postgres"
	"github.com/talktorobson/prima-facie-sub001/internal/types"
)

type discountRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewDiscountRepository(db *postgres.DB, logger *logger.Logger) discount.Repository {
	return &discountRepository{db: db, logger: logger}
}

func (r *discountRepository) Create(ctx context.Context, rule *discount.Rule) error {
	query := `
		INSERT INTO discount_rules (
			id,
			law_firm_id,
			name,
			applies_to,
			target_id,
			discount_type,
			value,
			priority,
			auto_apply,
			valid_from,
			valid_until,
			min_amount,
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
			:applies_to,
			:target_id,
			:discount_type,
			:value,
			:priority,
			:auto_apply,
			:valid_from,
			:valid_until,
			:min_amount,
			:status,
			:created_at,
			:updated_at,
			:created_by,
			:updated_by
		)
	`

	r.logger.Debugw("creating discount rule",
		"rule_id", rule.ID,
		"law_firm_id", rule.LawFirmID,
	)

	_, err := r.db.NamedExecContext(ctx, query, rule)
	if err != nil {
		r.logger.Errorw("failed to create discount rule", "error", err)
		return fmt.Errorf("failed to insert discount rule: %w", err)
	}
	return nil
}

func (r *discountRepository) Get(ctx context.Context, id string) (*discount.Rule, error) {
	query := `
		SELECT * FROM discount_rules
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
		r.logger.Errorw("failed to get discount rule", "error", err, "rule_id", id)
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, ierr.NewError("discount rule not found").
			WithHint("Regra de desconto não encontrada").
			WithReportableDetails(map[string]any{"rule_id": id}).
			Mark(ierr.ErrNotFound)
	}

	var rule discount.Rule
	if err := rows.StructScan(&rule); err != nil {
		return nil, err
	}
	return &rule, nil
}

func (r *discountRepository) Update(ctx context.Context, rule *discount.Rule) error {
	query := `
		UPDATE discount_rules
		SET name = :name,
		applies_to = :applies_to,
		target_id = :target_id,
		discount_type = :discount_type,
		value = :value,
		priority = :priority,
		auto_apply = :auto_apply,
		valid_from = :valid_from,
		valid_until = :valid_until,
		min_amount = :min_amount,
		updated_at = :updated_at,
		updated_by = :updated_by
		WHERE id = :id
		AND law_firm_id = :law_firm_id
	`

	r.logger.Debugw("updating discount rule", "rule_id", rule.ID)

	_, err := r.db.NamedExecContext(ctx, query, rule)
	if err != nil {
		r.logger.Errorw("failed to update discount rule", "error", err)
		return err
	}
	return nil
}

func (r *discountRepository) ListActive(ctx context.Context) ([]*discount.Rule, error) {
	// validity windows are evaluated at resolution time, which may be a
	// historical date; the query does not filter on valid_from/valid_until
	query := `
		SELECT * FROM discount_rules
		WHERE law_firm_id = :law_firm_id
		AND auto_apply = TRUE
		AND status = :status
		ORDER BY priority ASC, created_at ASC
	`

	rows, err := r.db.NamedQueryContext(ctx, query, map[string]interface{}{
		"law_firm_id": types.GetLawFirmID(ctx),
		"status":      types.StatusActive,
	})
	if err != nil {
		r.logger.Errorw("failed to list active discount rules", "error", err)
		return nil, err
	}
	defer rows.Close()

	var rules []*discount.Rule
	for rows.Next() {
		var rule discount.Rule
		if err := rows.StructScan(&rule); err != nil {
			return nil, err
		}
		rules = append(rules, &rule)
	}
	return rules, rows.Err()
}
