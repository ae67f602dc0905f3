package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/talktorobson/prima-facie-sub001/internal/domain/invoice"
	"github.com/talktorobson/prima-facie-sub001/internal/logger"
	"github.com/talktorobson/prima-facie-sub001/internal/postgres"
	"github.com/talktorobson/prima-facie-sub001/internal/types"
)

type invoiceRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewInvoiceRepository(db *postgres.DB, logger *logger.Logger) invoice.Repository {
	return &invoiceRepository{db: db, logger: logger}
}

func (r *invoiceRepository) CreateWithDetails(ctx context.Context, inv *invoice.Invoice) error {
	r.logger.Debugw("creating invoice",
		"invoice_id", inv.ID,
		"invoice_type", inv.InvoiceType,
		"law_firm_id", inv.LawFirmID,
	)

	if err := r.insertHeader(ctx, inv); err != nil {
		if postgres.IsUniqueViolation(err) {
			return invoice.ErrInvoiceAlreadyExists
		}
		return fmt.Errorf("failed to insert invoice: %w", err)
	}

	for _, item := range inv.LineItems {
		if err := r.insertLineItem(ctx, item); err != nil {
			return fmt.Errorf("failed to insert invoice line item: %w", err)
		}
	}

	if err := r.insertDetail(ctx, inv); err != nil {
		if postgres.IsUniqueViolation(err) {
			return invoice.ErrInvoiceAlreadyExists
		}
		return fmt.Errorf("failed to insert invoice detail: %w", err)
	}

	return nil
}

func (r *invoiceRepository) insertHeader(ctx context.Context, inv *invoice.Invoice) error {
	query := `
		INSERT INTO invoices (
			id,
			law_firm_id,
			client_id,
			invoice_number,
			invoice_type,
			invoice_status,
			subtotal,
			discount_amount,
			tax_amount,
			total_amount,
			amount_paid,
			currency,
			payment_terms,
			issue_date,
			due_date,
			sent_at,
			viewed_at,
			paid_at,
			subscription_id,
			matter_id,
			payment_plan_id,
			description,
			applied_discounts,
			metadata,
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
			:invoice_number,
			:invoice_type,
			:invoice_status,
			:subtotal,
			:discount_amount,
			:tax_amount,
			:total_amount,
			:amount_paid,
			:currency,
			:payment_terms,
			:issue_date,
			:due_date,
			:sent_at,
			:viewed_at,
			:paid_at,
			:subscription_id,
			:matter_id,
			:payment_plan_id,
			:description,
			:applied_discounts,
			:metadata,
			:status,
			:created_at,
			:updated_at,
			:created_by,
			:updated_by
		)
	`

	_, err := r.db.NamedExecContext(ctx, query, inv)
	return err
}

func (r *invoiceRepository) insertLineItem(ctx context.Context, item *invoice.LineItem) error {
	query := `
		INSERT INTO invoice_line_items (
			id,
			law_firm_id,
			invoice_id,
			client_id,
			item_type,
			description,
			quantity,
			unit_price,
			line_total,
			currency,
			time_entry_id,
			service_type,
			status,
			created_at,
			updated_at,
			created_by,
			updated_by
		)
		VALUES (
			:id,
			:law_firm_id,
			:invoice_id,
			:client_id,
			:item_type,
			:description,
			:quantity,
			:unit_price,
			:line_total,
			:currency,
			:time_entry_id,
			:service_type,
			:status,
			:created_at,
			:updated_at,
			:created_by,
			:updated_by
		)
	`

	_, err := r.db.NamedExecContext(ctx, query, item)
	return err
}

func (r *invoiceRepository) insertDetail(ctx context.Context, inv *invoice.Invoice) error {
	switch {
	case inv.SubscriptionDetail != nil:
		query := `
			INSERT INTO subscription_invoice_details (
				id,
				law_firm_id,
				invoice_id,
				subscription_id,
				period_start,
				period_end,
				services_used,
				overage_charges,
				is_prorated,
				proration_factor,
				proration_reason,
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
				:invoice_id,
				:subscription_id,
				:period_start,
				:period_end,
				:services_used,
				:overage_charges,
				:is_prorated,
				:proration_factor,
				:proration_reason,
				:auto_renew,
				:next_billing_date,
				:status,
				:created_at,
				:updated_at,
				:created_by,
				:updated_by
			)
		`
		_, err := r.db.NamedExecContext(ctx, query, inv.SubscriptionDetail)
		return err

	case inv.CaseDetail != nil:
		query := `
			INSERT INTO case_invoice_details (
				id,
				law_firm_id,
				invoice_id,
				matter_id,
				billing_method,
				total_hours,
				billable_hours,
				hourly_rate,
				time_charges,
				fixed_fee,
				recovery_amount,
				percentage_rate,
				percentage_fee,
				success_fee,
				case_expenses,
				reimbursable_expenses,
				minimum_fee,
				minimum_fee_applied,
				status,
				created_at,
				updated_at,
				created_by,
				updated_by
			)
			VALUES (
				:id,
				:law_firm_id,
				:invoice_id,
				:matter_id,
				:billing_method,
				:total_hours,
				:billable_hours,
				:hourly_rate,
				:time_charges,
				:fixed_fee,
				:recovery_amount,
				:percentage_rate,
				:percentage_fee,
				:success_fee,
				:case_expenses,
				:reimbursable_expenses,
				:minimum_fee,
				:minimum_fee_applied,
				:status,
				:created_at,
				:updated_at,
				:created_by,
				:updated_by
			)
		`
		_, err := r.db.NamedExecContext(ctx, query, inv.CaseDetail)
		return err

	case inv.PaymentPlanDetail != nil:
		query := `
			INSERT INTO payment_plan_invoice_details (
				id,
				law_firm_id,
				invoice_id,
				payment_plan_id,
				installment_number,
				total_installments,
				installment_amount,
				scheduled_date,
				grace_period_days,
				late_fee_rate,
				late_fee_amount,
				is_final,
				auto_generate_next,
				status,
				created_at,
				updated_at,
				created_by,
				updated_by
			)
			VALUES (
				:id,
				:law_firm_id,
				:invoice_id,
				:payment_plan_id,
				:installment_number,
				:total_installments,
				:installment_amount,
				:scheduled_date,
				:grace_period_days,
				:late_fee_rate,
				:late_fee_amount,
				:is_final,
				:auto_generate_next,
				:status,
				:created_at,
				:updated_at,
				:created_by,
				:updated_by
			)
		`
		_, err := r.db.NamedExecContext(ctx, query, inv.PaymentPlanDetail)
		return err
	}

	return nil
}

func (r *invoiceRepository) Get(ctx context.Context, id string) (*invoice.Invoice, error) {
	query := `
		SELECT * FROM invoices
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
		r.logger.Errorw("failed to get invoice", "error", err, "invoice_id", id)
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, invoice.ErrInvoiceNotFound
	}

	var inv invoice.Invoice
	if err := rows.StructScan(&inv); err != nil {
		return nil, err
	}
	rows.Close()

	if err := r.loadLineItems(ctx, &inv); err != nil {
		return nil, err
	}
	if err := r.loadDetail(ctx, &inv); err != nil {
		return nil, err
	}

	return &inv, nil
}

func (r *invoiceRepository) loadLineItems(ctx context.Context, inv *invoice.Invoice) error {
	query := `
		SELECT * FROM invoice_line_items
		WHERE invoice_id = :invoice_id
		AND law_firm_id = :law_firm_id
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.db.NamedQueryContext(ctx, query, map[string]interface{}{
		"invoice_id":  inv.ID,
		"law_firm_id": types.GetLawFirmID(ctx),
	})
	if err != nil {
		return fmt.Errorf("failed to load invoice line items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item invoice.LineItem
		if err := rows.StructScan(&item); err != nil {
			return err
		}
		inv.LineItems = append(inv.LineItems, &item)
	}
	return rows.Err()
}

func (r *invoiceRepository) loadDetail(ctx context.Context, inv *invoice.Invoice) error {
	params := map[string]interface{}{
		"invoice_id":  inv.ID,
		"law_firm_id": types.GetLawFirmID(ctx),
	}

	switch inv.InvoiceType {
	case types.InvoiceTypeSubscription:
		rows, err := r.db.NamedQueryContext(ctx, `
			SELECT * FROM subscription_invoice_details
			WHERE invoice_id = :invoice_id AND law_firm_id = :law_firm_id
		`, params)
		if err != nil {
			return fmt.Errorf("failed to load subscription detail: %w", err)
		}
		defer rows.Close()
		if rows.Next() {
			var d invoice.SubscriptionInvoiceDetail
			if err := rows.StructScan(&d); err != nil {
				return err
			}
			inv.SubscriptionDetail = &d
		}
		return rows.Err()

	case types.InvoiceTypeCaseBilling:
		rows, err := r.db.NamedQueryContext(ctx, `
			SELECT * FROM case_invoice_details
			WHERE invoice_id = :invoice_id AND law_firm_id = :law_firm_id
		`, params)
		if err != nil {
			return fmt.Errorf("failed to load case detail: %w", err)
		}
		defer rows.Close()
		if rows.Next() {
			var d invoice.CaseInvoiceDetail
			if err := rows.StructScan(&d); err != nil {
				return err
			}
			inv.CaseDetail = &d
		}
		return rows.Err()

	case types.InvoiceTypePaymentPlan:
		rows, err := r.db.NamedQueryContext(ctx, `
			SELECT * FROM payment_plan_invoice_details
			WHERE invoice_id = :invoice_id AND law_firm_id = :law_firm_id
		`, params)
		if err != nil {
			return fmt.Errorf("failed to load payment plan detail: %w", err)
		}
		defer rows.Close()
		if rows.Next() {
			var d invoice.PaymentPlanInvoiceDetail
			if err := rows.StructScan(&d); err != nil {
				return err
			}
			inv.PaymentPlanDetail = &d
		}
		return rows.Err()
	}

	return nil
}

func (r *invoiceRepository) Update(ctx context.Context, inv *invoice.Invoice) error {
	query := `
		UPDATE invoices
		SET invoice_status = :invoice_status,
		amount_paid = :amount_paid,
		sent_at = :sent_at,
		viewed_at = :viewed_at,
		paid_at = :paid_at,
		description = :description,
		metadata = :metadata,
		updated_at = :updated_at,
		updated_by = :updated_by
		WHERE id = :id
		AND law_firm_id = :law_firm_id
	`

	r.logger.Debugw("updating invoice",
		"invoice_id", inv.ID,
		"invoice_status", inv.InvoiceStatus,
	)

	result, err := r.db.NamedExecContext(ctx, query, inv)
	if err != nil {
		r.logger.Errorw("failed to update invoice", "error", err, "invoice_id", inv.ID)
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return invoice.ErrInvoiceNotFound
	}
	return nil
}

// invoiceSortColumns is the allowlist for user supplied sort fields
var invoiceSortColumns = map[string]string{
	"created_at":   "created_at",
	"issue_date":   "issue_date",
	"due_date":     "due_date",
	"total_amount": "total_amount",
}

func buildInvoiceWhere(ctx context.Context, filter *types.InvoiceFilter) (string, map[string]interface{}) {
	where := `law_firm_id = :law_firm_id AND status != :deleted`
	params := map[string]interface{}{
		"law_firm_id": types.GetLawFirmID(ctx),
		"deleted":     types.StatusDeleted,
	}

	if filter == nil {
		return where, params
	}

	if filter.ClientID != "" {
		where += ` AND client_id = :client_id`
		params["client_id"] = filter.ClientID
	}
	if filter.SubscriptionID != "" {
		where += ` AND subscription_id = :filter_subscription_id`
		params["filter_subscription_id"] = filter.SubscriptionID
	}
	if filter.MatterID != "" {
		where += ` AND matter_id = :filter_matter_id`
		params["filter_matter_id"] = filter.MatterID
	}
	if filter.PaymentPlanID != "" {
		where += ` AND payment_plan_id = :filter_payment_plan_id`
		params["filter_payment_plan_id"] = filter.PaymentPlanID
	}
	if filter.InvoiceType != "" {
		where += ` AND invoice_type = :invoice_type`
		params["invoice_type"] = filter.InvoiceType
	}
	if len(filter.InvoiceStatus) > 0 {
		statuses := make([]string, len(filter.InvoiceStatus))
		for i, s := range filter.InvoiceStatus {
			statuses[i] = string(s)
		}
		where += ` AND invoice_status = ANY(:invoice_statuses)`
		params["invoice_statuses"] = pq.Array(statuses)
	}
	if filter.IssuedAfter != nil {
		where += ` AND issue_date >= :issued_after`
		params["issued_after"] = *filter.IssuedAfter
	}
	if filter.IssuedBefore != nil {
		where += ` AND issue_date <= :issued_before`
		params["issued_before"] = *filter.IssuedBefore
	}

	return where, params
}

func (r *invoiceRepository) List(ctx context.Context, filter *types.InvoiceFilter) ([]*invoice.Invoice, error) {
	where, params := buildInvoiceWhere(ctx, filter)

	if filter == nil {
		filter = types.NewInvoiceFilter()
	}

	sort, ok := invoiceSortColumns[filter.GetSort()]
	if !ok {
		sort = "created_at"
	}
	order := "DESC"
	if filter.GetOrder() == types.OrderAsc {
		order = "ASC"
	}

	query := fmt.Sprintf(`SELECT * FROM invoices WHERE %s ORDER BY %s %s`, where, sort, order)
	if !filter.IsUnlimited() {
		query += ` LIMIT :limit OFFSET :offset`
		params["limit"] = filter.GetLimit()
		params["offset"] = filter.GetOffset()
	}

	rows, err := r.db.NamedQueryContext(ctx, query, params)
	if err != nil {
		r.logger.Errorw("failed to list invoices", "error", err)
		return nil, err
	}
	defer rows.Close()

	var invoices []*invoice.Invoice
	for rows.Next() {
		var inv invoice.Invoice
		if err := rows.StructScan(&inv); err != nil {
			return nil, err
		}
		invoices = append(invoices, &inv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	for _, inv := range invoices {
		if err := r.loadLineItems(ctx, inv); err != nil {
			return nil, err
		}
		if err := r.loadDetail(ctx, inv); err != nil {
			return nil, err
		}
	}

	return invoices, nil
}

func (r *invoiceRepository) Count(ctx context.Context, filter *types.InvoiceFilter) (int, error) {
	where, params := buildInvoiceWhere(ctx, filter)

	rows, err := r.db.NamedQueryContext(ctx,
		fmt.Sprintf(`SELECT COUNT(*) FROM invoices WHERE %s`, where), params)
	if err != nil {
		r.logger.Errorw("failed to count invoices", "error", err)
		return 0, err
	}
	defer rows.Close()

	var count int
	if rows.Next() {
		if err := rows.Scan(&count); err != nil {
			return 0, err
		}
	}
	return count, rows.Err()
}

func (r *invoiceRepository) ExistsForPeriod(ctx context.Context, subscriptionID string, periodStart, periodEnd time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM subscription_invoice_details d
			JOIN invoices i ON i.id = d.invoice_id
			WHERE d.subscription_id = :subscription_id
			AND d.period_start = :period_start
			AND d.period_end = :period_end
			AND d.law_firm_id = :law_firm_id
			AND i.invoice_status != :cancelled
			AND i.status != :deleted
		)
	`

	return r.exists(ctx, query, map[string]interface{}{
		"subscription_id": subscriptionID,
		"period_start":    periodStart,
		"period_end":      periodEnd,
		"law_firm_id":     types.GetLawFirmID(ctx),
		"cancelled":       types.InvoiceStatusCancelled,
		"deleted":         types.StatusDeleted,
	})
}

func (r *invoiceRepository) ExistsForInstallment(ctx context.Context, paymentPlanID string, installmentNumber int) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM payment_plan_invoice_details d
			JOIN invoices i ON i.id = d.invoice_id
			WHERE d.payment_plan_id = :payment_plan_id
			AND d.installment_number = :installment_number
			AND d.law_firm_id = :law_firm_id
			AND i.invoice_status != :cancelled
			AND i.status != :deleted
		)
	`

	return r.exists(ctx, query, map[string]interface{}{
		"payment_plan_id":    paymentPlanID,
		"installment_number": installmentNumber,
		"law_firm_id":        types.GetLawFirmID(ctx),
		"cancelled":          types.InvoiceStatusCancelled,
		"deleted":            types.StatusDeleted,
	})
}

func (r *invoiceRepository) exists(ctx context.Context, query string, params map[string]interface{}) (bool, error) {
	rows, err := r.db.NamedQueryContext(ctx, query, params)
	if err != nil {
		return false, err
	}
	defer rows.Close()

	var found bool
	if rows.Next() {
		if err := rows.Scan(&found); err != nil {
			return false, err
		}
	}
	return found, rows.Err()
}

func (r *invoiceRepository) GetInstallmentNumbers(ctx context.Context, paymentPlanID string) ([]int, error) {
	query := `
		SELECT d.installment_number
		FROM payment_plan_invoice_details d
		JOIN invoices i ON i.id = d.invoice_id
		WHERE d.payment_plan_id = :payment_plan_id
		AND d.law_firm_id = :law_firm_id
		AND i.invoice_status != :cancelled
		AND i.status != :deleted
		ORDER BY d.installment_number ASC
	`

	rows, err := r.db.NamedQueryContext(ctx, query, map[string]interface{}{
		"payment_plan_id": paymentPlanID,
		"law_firm_id":     types.GetLawFirmID(ctx),
		"cancelled":       types.InvoiceStatusCancelled,
		"deleted":         types.StatusDeleted,
	})
	if err != nil {
		r.logger.Errorw("failed to get installment numbers", "error", err)
		return nil, err
	}
	defer rows.Close()

	var numbers []int
	for rows.Next() {
		var n int
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		numbers = append(numbers, n)
	}
	return numbers, rows.Err()
}
