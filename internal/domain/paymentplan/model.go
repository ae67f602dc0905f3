package paymentplan

import (
	"time"

	"github.com/shopspring/decimal"

	ierr "github.com/talktorobson/prima-facie-sub001/internal/errors"
	"github.com/talktorobson/prima-facie-sub001/internal/types"
)

// PaymentPlan splits a total owed amount into scheduled installments.
// Installment invoices are generated lazily, one detail row per generated
// installment, never all up front.
type PaymentPlan struct {
	ID       string  `db:"id" json:"id"`
	ClientID string  `db:"client_id" json:"client_id"`
	MatterID *string `db:"matter_id" json:"matter_id,omitempty"`

	TotalAmount       decimal.Decimal `db:"total_amount" json:"total_amount"`
	Installments      int             `db:"installments" json:"installments"`
	InstallmentAmount decimal.Decimal `db:"installment_amount" json:"installment_amount"`

	Frequency types.PaymentPlanFrequency `db:"frequency" json:"frequency"`
	StartDate time.Time                  `db:"start_date" json:"start_date"`

	PlanStatus types.PaymentPlanStatus `db:"plan_status" json:"plan_status"`

	LateFeeRate     decimal.Decimal `db:"late_fee_rate" json:"late_fee_rate"`
	GracePeriodDays int             `db:"grace_period_days" json:"grace_period_days"`

	types.BaseModel
}

func (p *PaymentPlan) Validate() error {
	if p.Installments < 1 {
		return ierr.NewError("installments must be at least 1").
			WithHint("O número de parcelas deve ser no mínimo 1").
			Mark(ierr.ErrValidation)
	}
	if p.TotalAmount.IsNegative() {
		return ierr.NewError("total_amount must be non negative").
			WithHint("O valor total não pode ser negativo").
			Mark(ierr.ErrValidation)
	}
	if p.InstallmentAmount.IsNegative() {
		return ierr.NewError("installment_amount must be non negative").
			WithHint("O valor da parcela não pode ser negativo").
			Mark(ierr.ErrValidation)
	}
	if err := p.Frequency.Validate(); err != nil {
		return err
	}
	return nil
}
