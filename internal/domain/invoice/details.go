package invoice

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/talktorobson/prima-facie-sub001/internal/types"
)

// SubscriptionInvoiceDetail is 1:1 with an invoice of type subscription
type SubscriptionInvoiceDetail struct {
	ID             string    `db:"id" json:"id"`
	InvoiceID      string    `db:"invoice_id" json:"invoice_id"`
	SubscriptionID string    `db:"subscription_id" json:"subscription_id"`
	PeriodStart    time.Time `db:"period_start" json:"period_start"`
	PeriodEnd      time.Time `db:"period_end" json:"period_end"`

	ServicesUsed   types.ServiceUsageMap `db:"services_used" json:"services_used"`
	OverageCharges decimal.Decimal       `db:"overage_charges" json:"overage_charges"`

	IsProrated      bool            `db:"is_prorated" json:"is_prorated"`
	ProrationFactor decimal.Decimal `db:"proration_factor" json:"proration_factor"`
	ProrationReason string          `db:"proration_reason" json:"proration_reason,omitempty"`

	AutoRenew       bool       `db:"auto_renew" json:"auto_renew"`
	NextBillingDate *time.Time `db:"next_billing_date" json:"next_billing_date,omitempty"`

	types.BaseModel
}

func (d *SubscriptionInvoiceDetail) Validate() error {
	if d.SubscriptionID == "" {
		return NewValidationError("subscription_id", "must be set")
	}
	if d.PeriodEnd.Before(d.PeriodStart) {
		return NewValidationError("period_end", "must be after period_start")
	}
	one := decimal.NewFromInt(1)
	if d.ProrationFactor.IsNegative() || d.ProrationFactor.GreaterThan(one) {
		return NewValidationError("proration_factor", "must be within [0, 1]")
	}
	return nil
}

// CaseInvoiceDetail is 1:1 with an invoice of type case_billing
type CaseInvoiceDetail struct {
	ID        string `db:"id" json:"id"`
	InvoiceID string `db:"invoice_id" json:"invoice_id"`
	MatterID  string `db:"matter_id" json:"matter_id"`

	BillingMethod types.BillingMethod `db:"billing_method" json:"billing_method"`

	TotalHours    decimal.Decimal `db:"total_hours" json:"total_hours"`
	BillableHours decimal.Decimal `db:"billable_hours" json:"billable_hours"`
	HourlyRate    decimal.Decimal `db:"hourly_rate" json:"hourly_rate"`
	TimeCharges   decimal.Decimal `db:"time_charges" json:"time_charges"`

	FixedFee decimal.Decimal `db:"fixed_fee" json:"fixed_fee"`

	RecoveryAmount decimal.Decimal `db:"recovery_amount" json:"recovery_amount"`
	PercentageRate decimal.Decimal `db:"percentage_rate" json:"percentage_rate"`
	PercentageFee  decimal.Decimal `db:"percentage_fee" json:"percentage_fee"`
	SuccessFee     decimal.Decimal `db:"success_fee" json:"success_fee"`

	CaseExpenses         decimal.Decimal `db:"case_expenses" json:"case_expenses"`
	ReimbursableExpenses decimal.Decimal `db:"reimbursable_expenses" json:"reimbursable_expenses"`

	MinimumFee        decimal.Decimal `db:"minimum_fee" json:"minimum_fee"`
	MinimumFeeApplied bool            `db:"minimum_fee_applied" json:"minimum_fee_applied"`

	types.BaseModel
}

// PaymentPlanInvoiceDetail is 1:1 with an invoice of type payment_plan.
// One row exists per generated installment; installments are generated
// lazily, never all up front.
type PaymentPlanInvoiceDetail struct {
	ID            string `db:"id" json:"id"`
	InvoiceID     string `db:"invoice_id" json:"invoice_id"`
	PaymentPlanID string `db:"payment_plan_id" json:"payment_plan_id"`

	InstallmentNumber int             `db:"installment_number" json:"installment_number"`
	TotalInstallments int             `db:"total_installments" json:"total_installments"`
	InstallmentAmount decimal.Decimal `db:"installment_amount" json:"installment_amount"`
	ScheduledDate     time.Time       `db:"scheduled_date" json:"scheduled_date"`

	GracePeriodDays int             `db:"grace_period_days" json:"grace_period_days"`
	LateFeeRate     decimal.Decimal `db:"late_fee_rate" json:"late_fee_rate"`
	LateFeeAmount   decimal.Decimal `db:"late_fee_amount" json:"late_fee_amount"`

	IsFinal          bool `db:"is_final" json:"is_final"`
	AutoGenerateNext bool `db:"auto_generate_next" json:"auto_generate_next"`

	types.BaseModel
}

func (d *PaymentPlanInvoiceDetail) Validate() error {
	if d.PaymentPlanID == "" {
		return NewValidationError("payment_plan_id", "must be set")
	}
	if d.InstallmentNumber < 1 {
		return NewValidationError("installment_number", "must be at least 1")
	}
	if d.InstallmentNumber > d.TotalInstallments {
		return NewValidationError("installment_number", "must not exceed total_installments")
	}
	if d.InstallmentAmount.IsNegative() {
		return NewValidationError("installment_amount", "must be non negative")
	}
	return nil
}
