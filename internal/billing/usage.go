package billing

import (
	"github.com/shopspring/decimal"

	"github.com/talktorobson/prima-facie-sub001/internal/domain/plan"
	"github.com/talktorobson/prima-facie-sub001/internal/domain/timeentry"
	"github.com/talktorobson/prima-facie-sub001/internal/types"
)

// UsageParams holds the input for tallying a subscription billing period.
// Entries must already be restricted to the period; the calculator itself
// has no side effects and performs no I/O.
type UsageParams struct {
	Inclusions plan.ServiceInclusions
	Entries    []*timeentry.TimeEntry
}

// UsageResult is the per-service tally plus the aggregate overage charge
type UsageResult struct {
	Services           types.ServiceUsageMap
	TotalOverageCharge decimal.Decimal
}

// CalculateUsage tallies consumed service units against plan inclusions.
// Count-type services (consultation, document review, contract analysis)
// count matching time entries; hour-type services (legal research and the
// default) sum effective minutes converted to whole hours, rounded up.
// A service with zero matching entries reports used = 0, overage = 0.
func CalculateUsage(params UsageParams) *UsageResult {
	result := &UsageResult{
		Services:           make(types.ServiceUsageMap, len(params.Inclusions)),
		TotalOverageCharge: decimal.Zero,
	}

	for _, inc := range params.Inclusions {
		used := 0
		minutes := 0
		for _, entry := range params.Entries {
			if entry.Category != inc.ServiceType {
				continue
			}
			if inc.ServiceType.CountsOccurrences() {
				used++
			} else {
				minutes += entry.EffectiveMinutes
			}
		}
		if !inc.ServiceType.CountsOccurrences() {
			used = wholeHours(minutes)
		}

		overage := used - inc.IncludedQty
		if overage < 0 {
			overage = 0
		}

		charge := decimal.NewFromInt(int64(overage)).Mul(inc.OverageRate).Round(2)

		result.Services[inc.ServiceType] = types.ServiceUsage{
			Included:      inc.IncludedQty,
			Used:          used,
			Overage:       overage,
			Unit:          inc.ServiceType.Unit(),
			OverageRate:   inc.OverageRate,
			OverageCharge: charge,
		}
		result.TotalOverageCharge = result.TotalOverageCharge.Add(charge)
	}

	return result
}

// wholeHours converts minutes to hours rounded up
func wholeHours(minutes int) int {
	if minutes <= 0 {
		return 0
	}
	return (minutes + 59) / 60
}
