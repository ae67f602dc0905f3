package billing

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	ierr "github.com/talktorobson/prima-facie-sub001/internal/errors"
)

// ProrationParams holds the subscription lifecycle bounds and the billing
// period being invoiced. Dates are inclusive.
type ProrationParams struct {
	SubscriptionStart time.Time
	SubscriptionEnd   *time.Time
	PeriodStart       time.Time
	PeriodEnd         time.Time
}

// ProrationResult reports whether the period is partial and by how much
type ProrationResult struct {
	IsProrated bool
	// Factor is the fraction of the period actually covered, in [0, 1]
	Factor decimal.Decimal
	Reason string
}

// CalculateProration computes the proration factor for a billing period.
// The factor is the covered overlap between the subscription lifetime and
// the period, in whole days (ceiling), over the period length. When the
// subscription both starts after the period start and ends before the
// period end, the two truncations compound into a single overlap fraction
// rather than the later rule overwriting the earlier one.
func CalculateProration(params ProrationParams) (*ProrationResult, error) {
	totalDays := wholeDaysBetween(params.PeriodStart, params.PeriodEnd)
	if totalDays <= 0 {
		return nil, ierr.NewError("invalid billing period").
			WithHintf("Período de faturamento inválido: %s a %s",
				params.PeriodStart.Format("2006-01-02"), params.PeriodEnd.Format("2006-01-02")).
			Mark(ierr.ErrValidation)
	}

	coverStart := params.PeriodStart
	coverEnd := params.PeriodEnd

	startsLate := params.SubscriptionStart.After(params.PeriodStart)
	if startsLate {
		coverStart = params.SubscriptionStart
	}

	endsEarly := params.SubscriptionEnd != nil && params.SubscriptionEnd.Before(params.PeriodEnd)
	if endsEarly {
		coverEnd = *params.SubscriptionEnd
	}

	if !startsLate && !endsEarly {
		return &ProrationResult{
			IsProrated: false,
			Factor:     decimal.NewFromInt(1),
		}, nil
	}

	coveredDays := wholeDaysBetween(coverStart, coverEnd)
	if coveredDays < 0 {
		coveredDays = 0
	}

	factor := decimal.NewFromInt(int64(coveredDays)).
		Div(decimal.NewFromInt(int64(totalDays)))

	// clamp to [0, 1]
	one := decimal.NewFromInt(1)
	if factor.GreaterThan(one) {
		factor = one
	}
	if factor.IsNegative() {
		factor = decimal.Zero
	}

	var reason string
	switch {
	case startsLate && endsEarly:
		reason = fmt.Sprintf("Assinatura vigente apenas de %s a %s dentro do período",
			coverStart.Format("2006-01-02"), coverEnd.Format("2006-01-02"))
	case startsLate:
		reason = fmt.Sprintf("Assinatura iniciada em %s, após o início do período",
			coverStart.Format("2006-01-02"))
	default:
		reason = fmt.Sprintf("Assinatura encerrada em %s, antes do fim do período",
			coverEnd.Format("2006-01-02"))
	}

	return &ProrationResult{
		IsProrated: true,
		Factor:     factor,
		Reason:     reason,
	}, nil
}

// wholeDaysBetween returns the number of whole days from a to b, rounded up
func wholeDaysBetween(a, b time.Time) int {
	if b.Before(a) {
		return -wholeDaysBetween(b, a)
	}
	return int(math.Ceil(b.Sub(a).Hours() / 24))
}
