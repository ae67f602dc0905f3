package billing

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/talktorobson/prima-facie-sub001/internal/domain/paymentplan"
	ierr "github.com/talktorobson/prima-facie-sub001/internal/errors"
)

// InstallmentParams holds the input for scheduling one installment of a
// payment plan.
type InstallmentParams struct {
	Plan              *paymentplan.PaymentPlan
	InstallmentNumber int
	// ScheduledDate overrides the computed due date when set
	ScheduledDate *time.Time
	Now           time.Time
	// LateFeeCapPercent caps the late fee as a percentage of the
	// installment amount
	LateFeeCapPercent int
}

// InstallmentResult is the schedule and late-fee computation for one
// installment.
type InstallmentResult struct {
	InstallmentNumber int
	DueDate           time.Time
	IsFinal           bool

	IsOverdue bool
	// DaysOverdue counts days past the grace window, zero when not overdue
	DaysOverdue int
	LateFee     decimal.Decimal
}

// ComputeInstallment computes the due date, overdue status and late fee of
// a single installment. The due date is the plan start advanced by
// (installment − 1) frequency periods. An installment is overdue once
// `now` is past due date + grace days; the late fee is
// amount × rate/100 × ceil(daysOverdueBeyondGrace/30), capped.
func ComputeInstallment(params InstallmentParams) (*InstallmentResult, error) {
	p := params.Plan
	if p == nil {
		return nil, ierr.NewError("payment plan missing").
			WithHint("Plano de pagamento não encontrado").
			Mark(ierr.ErrNotFound)
	}

	n := params.InstallmentNumber
	if n < 1 {
		return nil, ierr.NewError("invalid installment number").
			WithHint("Número de parcela inválido").
			WithReportableDetails(map[string]any{
				"installment_number": n,
			}).
			Mark(ierr.ErrValidation)
	}
	if n > p.Installments {
		return nil, ierr.NewError("installment number exceeds plan total").
			WithHintf("Parcela %d excede o total de %d parcelas do plano", n, p.Installments).
			WithReportableDetails(map[string]any{
				"installment_number": n,
				"total_installments": p.Installments,
			}).
			Mark(ierr.ErrValidation)
	}

	dueDate := p.Frequency.AddPeriods(p.StartDate, n-1)
	if params.ScheduledDate != nil {
		dueDate = *params.ScheduledDate
	}

	result := &InstallmentResult{
		InstallmentNumber: n,
		DueDate:           dueDate,
		IsFinal:           n == p.Installments,
		LateFee:           decimal.Zero,
	}

	graceEnd := dueDate.AddDate(0, 0, p.GracePeriodDays)
	if !params.Now.After(graceEnd) {
		return result, nil
	}

	result.IsOverdue = true
	result.DaysOverdue = int(math.Ceil(params.Now.Sub(graceEnd).Hours() / 24))

	periods := int64(math.Ceil(float64(result.DaysOverdue) / 30))
	fee := p.InstallmentAmount.
		Mul(p.LateFeeRate).
		Div(decimal.NewFromInt(100)).
		Mul(decimal.NewFromInt(periods))

	cap := p.InstallmentAmount.
		Mul(decimal.NewFromInt(int64(params.LateFeeCapPercent))).
		Div(decimal.NewFromInt(100))
	if fee.GreaterThan(cap) {
		fee = cap
	}

	result.LateFee = fee.Round(2)
	return result, nil
}

// NextInstallmentNumber returns the lowest unbilled installment number
// given the numbers already invoiced, or 0 when the plan is fully billed.
func NextInstallmentNumber(plan *paymentplan.PaymentPlan, billed []int) int {
	taken := make(map[int]bool, len(billed))
	for _, n := range billed {
		taken[n] = true
	}
	for n := 1; n <= plan.Installments; n++ {
		if !taken[n] {
			return n
		}
	}
	return 0
}
