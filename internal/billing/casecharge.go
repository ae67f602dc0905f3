package billing

import (
	"github.com/shopspring/decimal"

	"github.com/talktorobson/prima-facie-sub001/internal/domain/matter"
	"github.com/talktorobson/prima-facie-sub001/internal/domain/timeentry"
	ierr "github.com/talktorobson/prima-facie-sub001/internal/errors"
	"github.com/talktorobson/prima-facie-sub001/internal/types"
)

// CaseChargeParams holds everything needed to charge a matter: its billing
// configuration, the collected time entries and expenses, and the case
// outcome when one has been recorded (nil otherwise).
type CaseChargeParams struct {
	Config   *matter.BillingConfig
	Entries  []*timeentry.TimeEntry
	Expenses []*matter.Expense
	Outcome  *matter.Outcome
}

// CaseChargeResult breaks the computed charge into its components. The
// assembler turns each non-zero component into a line item.
type CaseChargeResult struct {
	TotalHours    decimal.Decimal
	BillableHours decimal.Decimal
	TimeCharges   decimal.Decimal

	FixedFee decimal.Decimal

	RecoveryAmount decimal.Decimal
	PercentageFee  decimal.Decimal
	SuccessFee     decimal.Decimal

	CaseExpenses         decimal.Decimal
	ReimbursableExpenses decimal.Decimal

	// Subtotal is the final charge after the minimum-fee floor
	Subtotal decimal.Decimal

	MinimumFee        decimal.Decimal
	MinimumFeeApplied bool
	// MinimumFeeAdjustment is the delta the floor added; the assembler
	// emits it as a visible adjustment line item
	MinimumFeeAdjustment decimal.Decimal
}

// CalculateCaseCharges computes the charge components for a matter per its
// billing method, adds expenses, and applies the minimum-fee floor.
func CalculateCaseCharges(params CaseChargeParams) (*CaseChargeResult, error) {
	if params.Config == nil {
		return nil, ierr.NewError("case billing configuration missing").
			WithHint("Configuração de cobrança não encontrada para este caso").
			Mark(ierr.ErrNotFound)
	}

	if err := params.Config.BillingMethod.Validate(); err != nil {
		return nil, err
	}

	result := &CaseChargeResult{}

	for _, entry := range params.Entries {
		result.TotalHours = result.TotalHours.Add(entry.Hours())
		if entry.Billable {
			result.BillableHours = result.BillableHours.Add(entry.Hours())
		}
	}

	method := params.Config.BillingMethod

	if method == types.BillingMethodHourly || method == types.BillingMethodHybrid {
		result.TimeCharges = timeCharges(params.Entries, params.Config.HourlyRate)
	}

	if method == types.BillingMethodFixed {
		result.FixedFee = params.Config.FixedFee
	}

	if method == types.BillingMethodPercentage || method == types.BillingMethodHybrid {
		// zero until an outcome is recorded
		if params.Outcome != nil {
			result.RecoveryAmount = params.Outcome.AmountRecovered
			result.PercentageFee = params.Outcome.AmountRecovered.
				Mul(params.Config.PercentageRate).
				Div(decimal.NewFromInt(100)).
				Round(2)
			result.SuccessFee = params.Outcome.SuccessFee
		}
	}

	for _, expense := range params.Expenses {
		result.CaseExpenses = result.CaseExpenses.Add(expense.Amount)
		if expense.Reimbursable {
			result.ReimbursableExpenses = result.ReimbursableExpenses.Add(expense.Amount)
		}
	}

	subtotal := result.TimeCharges.
		Add(result.FixedFee).
		Add(result.PercentageFee).
		Add(result.SuccessFee).
		Add(result.CaseExpenses).
		Add(result.ReimbursableExpenses)

	if params.Config.MinimumFee != nil {
		result.MinimumFee = *params.Config.MinimumFee
		if subtotal.LessThan(result.MinimumFee) {
			result.MinimumFeeAdjustment = result.MinimumFee.Sub(subtotal)
			result.MinimumFeeApplied = true
			subtotal = result.MinimumFee
		}
	}

	result.Subtotal = subtotal.Round(2)
	return result, nil
}

// timeCharges sums billable entries at each entry's effective rate:
// the entry's own billable_rate when set, else the configured default.
func timeCharges(entries []*timeentry.TimeEntry, defaultRate decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, entry := range entries {
		if !entry.Billable {
			continue
		}
		total = total.Add(entry.Hours().Mul(entry.EffectiveRate(defaultRate)))
	}
	return total.Round(2)
}
