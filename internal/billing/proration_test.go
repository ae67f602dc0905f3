package billing

import (
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateProration(t *testing.T) {
	periodStart := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	periodEnd := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name           string
		params         ProrationParams
		wantProrated   bool
		wantFactor     decimal.Decimal
		expectedError  bool
		reasonNonEmpty bool
	}{
		{
			name: "full_period_not_prorated",
			params: ProrationParams{
				SubscriptionStart: periodStart,
				PeriodStart:       periodStart,
				PeriodEnd:         periodEnd,
			},
			wantProrated: false,
			wantFactor:   decimal.NewFromInt(1),
		},
		{
			name: "subscription_bounds_exactly_period",
			params: ProrationParams{
				SubscriptionStart: periodStart,
				SubscriptionEnd:   lo.ToPtr(periodEnd),
				PeriodStart:       periodStart,
				PeriodEnd:         periodEnd,
			},
			wantProrated: false,
			wantFactor:   decimal.NewFromInt(1),
		},
		{
			name: "starts_mid_period",
			params: ProrationParams{
				SubscriptionStart: time.Date(2025, 3, 16, 0, 0, 0, 0, time.UTC),
				PeriodStart:       periodStart,
				PeriodEnd:         periodEnd,
			},
			wantProrated:   true,
			wantFactor:     decimal.NewFromInt(15).Div(decimal.NewFromInt(30)),
			reasonNonEmpty: true,
		},
		{
			name: "ends_mid_period",
			params: ProrationParams{
				SubscriptionStart: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
				SubscriptionEnd:   lo.ToPtr(time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC)),
				PeriodStart:       periodStart,
				PeriodEnd:         periodEnd,
			},
			wantProrated:   true,
			wantFactor:     decimal.NewFromInt(10).Div(decimal.NewFromInt(30)),
			reasonNonEmpty: true,
		},
		{
			name: "starts_late_and_ends_early_compounds",
			params: ProrationParams{
				SubscriptionStart: time.Date(2025, 3, 6, 0, 0, 0, 0, time.UTC),
				SubscriptionEnd:   lo.ToPtr(time.Date(2025, 3, 21, 0, 0, 0, 0, time.UTC)),
				PeriodStart:       periodStart,
				PeriodEnd:         periodEnd,
			},
			wantProrated:   true,
			wantFactor:     decimal.NewFromInt(15).Div(decimal.NewFromInt(30)),
			reasonNonEmpty: true,
		},
		{
			name: "subscription_entirely_outside_period",
			params: ProrationParams{
				SubscriptionStart: time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC),
				PeriodStart:       periodStart,
				PeriodEnd:         periodEnd,
			},
			wantProrated:   true,
			wantFactor:     decimal.Zero,
			reasonNonEmpty: true,
		},
		{
			name: "zero_length_period_rejected",
			params: ProrationParams{
				SubscriptionStart: periodStart,
				PeriodStart:       periodStart,
				PeriodEnd:         periodStart,
			},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := CalculateProration(tt.params)
			if tt.expectedError {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)

			assert.Equal(t, tt.wantProrated, result.IsProrated)
			assert.True(t, tt.wantFactor.Equal(result.Factor),
				"factor: want %s, got %s", tt.wantFactor, result.Factor)
			if tt.reasonNonEmpty {
				assert.NotEmpty(t, result.Reason)
			}

			// factor is always within [0, 1]
			assert.False(t, result.Factor.IsNegative())
			assert.False(t, result.Factor.GreaterThan(decimal.NewFromInt(1)))
		})
	}
}
