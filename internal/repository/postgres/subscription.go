package postgres

import (
	"context"
	"fmt"

	"github.com/talktorobson/prima-facie-sub001/internal/domain/subscription"
	ierr "github.com/talktorobson/prima-facie-sub001/internal/errors"
	"github.com/talktorobson/prima-facie-sub001/internal/logger"
	"github.com/talktorobson/prima-facie-sub001/internal/postgres"
	"github.com/talktorobson/prima-facie-sub001/internal/types"
)

type subscriptionRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewSubscriptionRepository(db *postgres.DB, logger *logger.Logger) subscription.Repository {
	return &subscriptionRepository{db: db, logger: logger}
}

func (r *subscriptionRepository) Create(ctx context.Context, sub *subscription.Subscription) error {
	query := `
		INSERT INTO subscriptions (
			id,
			law_firm_id,
			client_id,
			plan_id,
			subscription_status,
			start_date,
			end_date,
			auto_renew,
			next_billing_date,
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
			:plan_id,
			:subscription_status,
			:start_date,
			:end_date,
			:auto_renew,
			:next_billing_date,
			:status,
			:created_at,
			:updated_at,
			:created_by,
			:updated_by
		)
	`

	r.logger.Debugw("creating subscription",
		"subscription_id", sub.ID,
		"law_firm_id", sub.LawFirmID,
	)

	_, err := r.db.NamedExecContext(ctx, query, sub)
	if err != nil {
		r.logger.Errorw("failed to create subscription", "error", err)
		return fmt.Errorf("failed to insert subscription: %w", err)
	}
	return nil
}

func (r *subscriptionRepository) Get(ctx context.Context, id string) (*subscription.Subscription, error) {
	query := `
		SELECT * FROM subscriptions
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
		r.logger.Errorw("failed to get subscription", "error", err, "subscription_id", id)
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, ierr.NewError("subscription not found").
			WithHint("Assinatura não encontrada").
			WithReportableDetails(map[string]any{"subscription_id": id}).
			Mark(ierr.ErrNotFound)
	}

	var sub subscription.Subscription
	if err := rows.StructScan(&sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *subscriptionRepository) Update(ctx context.Context, sub *subscription.Subscription) error {
	query := `
		UPDATE subscriptions
		SET subscription_status = :subscription_status,
		end_date = :end_date,
		auto_renew = :auto_renew,
		next_billing_date = :next_billing_date,
		updated_at = :updated_at,
		updated_by = :updated_by
		WHERE id = :id
		AND law_firm_id = :law_firm_id
	`

	r.logger.Debugw("updating subscription", "subscription_id", sub.ID)

	_, err := r.db.NamedExecContext(ctx, query, sub)
	if err != nil {
		r.logger.Errorw("failed to update subscription", "error", err)
		return err
	}
	return nil
}

func (r *subscriptionRepository) ListActive(ctx context.Context) ([]*subscription.Subscription, error) {
	query := `
		SELECT * FROM subscriptions
		WHERE law_firm_id = :law_firm_id
		AND subscription_status = :subscription_status
		AND status = :status
		ORDER BY created_at ASC
	`

	rows, err := r.db.NamedQueryContext(ctx, query, map[string]interface{}{
		"law_firm_id":         types.GetLawFirmID(ctx),
		"subscription_status": types.SubscriptionStatusActive,
		"status":              types.StatusActive,
	})
	if err != nil {
		r.logger.Errorw("failed to list active subscriptions", "error", err)
		return nil, err
	}
	defer rows.Close()

	var subs []*subscription.Subscription
	for rows.Next() {
		var sub subscription.Subscription
		if err := rows.StructScan(&sub); err != nil {
			return nil, err
		}
		subs = append(subs, &sub)
	}
	return subs, rows.Err()
}
