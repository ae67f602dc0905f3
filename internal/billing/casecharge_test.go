package billing

import (
	"testing"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talktorobson/prima-facie-sub001/internal/domain/matter"
	"github.com/talktorobson/prima-facie-sub001/internal/domain/timeentry"
	ierr "github.com/talktorobson/prima-facie-sub001/internal/errors"
	"github.com/talktorobson/prima-facie-sub001/internal/types"
)

func TestCalculateCaseCharges(t *testing.T) {
	t.Run("missing configuration is a not-found error", func(t *testing.T) {
		_, err := CalculateCaseCharges(CaseChargeParams{})
		require.Error(t, err)
		assert.True(t, ierr.IsNotFound(err))
	})

	t.Run("hourly sums billable entries with per-entry rate override", func(t *testing.T) {
		config := &matter.BillingConfig{
			BillingMethod: types.BillingMethodHourly,
			HourlyRate:    decimal.NewFromInt(300),
		}
		entries := []*timeentry.TimeEntry{
			{EffectiveMinutes: 120, Billable: true},
			{EffectiveMinutes: 90, Billable: true, BillableRate: lo.ToPtr(decimal.NewFromInt(400))},
			{EffectiveMinutes: 600, Billable: false},
		}

		result, err := CalculateCaseCharges(CaseChargeParams{Config: config, Entries: entries})
		require.NoError(t, err)

		// 2h * 300 + 1.5h * 400 = 1200
		assert.True(t, decimal.NewFromInt(1200).Equal(result.TimeCharges),
			"time_charges = %s", result.TimeCharges)
		assert.True(t, decimal.NewFromFloat(3.5).Equal(result.BillableHours))
		assert.True(t, decimal.NewFromFloat(13.5).Equal(result.TotalHours))
		assert.True(t, decimal.NewFromInt(1200).Equal(result.Subtotal))
	})

	t.Run("fixed fee charged regardless of hours", func(t *testing.T) {
		config := &matter.BillingConfig{
			BillingMethod: types.BillingMethodFixed,
			FixedFee:      decimal.NewFromInt(25000),
			HourlyRate:    decimal.NewFromInt(300),
		}
		entries := []*timeentry.TimeEntry{
			{EffectiveMinutes: 60, Billable: true},
		}

		result, err := CalculateCaseCharges(CaseChargeParams{Config: config, Entries: entries})
		require.NoError(t, err)

		assert.True(t, result.TimeCharges.IsZero())
		assert.True(t, decimal.NewFromInt(25000).Equal(result.Subtotal))
	})

	t.Run("percentage without outcome charges zero", func(t *testing.T) {
		config := &matter.BillingConfig{
			BillingMethod:  types.BillingMethodPercentage,
			PercentageRate: decimal.NewFromInt(20),
		}

		result, err := CalculateCaseCharges(CaseChargeParams{Config: config})
		require.NoError(t, err)

		assert.True(t, result.PercentageFee.IsZero())
		assert.True(t, result.Subtotal.IsZero())
	})

	t.Run("percentage with outcome adds success fee", func(t *testing.T) {
		config := &matter.BillingConfig{
			BillingMethod:  types.BillingMethodPercentage,
			PercentageRate: decimal.NewFromInt(20),
		}
		outcome := &matter.Outcome{
			AmountRecovered: decimal.NewFromInt(100000),
			SuccessFee:      decimal.NewFromInt(5000),
		}

		result, err := CalculateCaseCharges(CaseChargeParams{Config: config, Outcome: outcome})
		require.NoError(t, err)

		assert.True(t, decimal.NewFromInt(20000).Equal(result.PercentageFee))
		assert.True(t, decimal.NewFromInt(5000).Equal(result.SuccessFee))
		assert.True(t, decimal.NewFromInt(25000).Equal(result.Subtotal))
	})

	t.Run("hybrid sums hourly and percentage computations", func(t *testing.T) {
		config := &matter.BillingConfig{
			BillingMethod:  types.BillingMethodHybrid,
			HourlyRate:     decimal.NewFromInt(200),
			PercentageRate: decimal.NewFromInt(10),
		}
		entries := []*timeentry.TimeEntry{
			{EffectiveMinutes: 180, Billable: true},
		}
		outcome := &matter.Outcome{
			AmountRecovered: decimal.NewFromInt(50000),
		}

		result, err := CalculateCaseCharges(CaseChargeParams{
			Config:  config,
			Entries: entries,
			Outcome: outcome,
		})
		require.NoError(t, err)

		// 3h * 200 = 600, 10% of 50000 = 5000
		assert.True(t, decimal.NewFromInt(600).Equal(result.TimeCharges))
		assert.True(t, decimal.NewFromInt(5000).Equal(result.PercentageFee))
		assert.True(t, decimal.NewFromInt(5600).Equal(result.Subtotal))
	})

	t.Run("expenses added to subtotal", func(t *testing.T) {
		config := &matter.BillingConfig{
			BillingMethod: types.BillingMethodFixed,
			FixedFee:      decimal.NewFromInt(1000),
		}
		expenses := []*matter.Expense{
			{Amount: decimal.NewFromInt(200), Reimbursable: false},
			{Amount: decimal.NewFromInt(100), Reimbursable: true},
		}

		result, err := CalculateCaseCharges(CaseChargeParams{Config: config, Expenses: expenses})
		require.NoError(t, err)

		assert.True(t, decimal.NewFromInt(300).Equal(result.CaseExpenses))
		assert.True(t, decimal.NewFromInt(100).Equal(result.ReimbursableExpenses))
		assert.True(t, decimal.NewFromInt(1400).Equal(result.Subtotal))
	})

	t.Run("minimum fee floors the subtotal", func(t *testing.T) {
		config := &matter.BillingConfig{
			BillingMethod: types.BillingMethodHourly,
			HourlyRate:    decimal.NewFromInt(100),
			MinimumFee:    lo.ToPtr(decimal.NewFromInt(2000)),
		}
		entries := []*timeentry.TimeEntry{
			{EffectiveMinutes: 300, Billable: true}, // 5h * 100 = 500
		}

		result, err := CalculateCaseCharges(CaseChargeParams{Config: config, Entries: entries})
		require.NoError(t, err)

		assert.True(t, result.MinimumFeeApplied)
		assert.True(t, decimal.NewFromInt(2000).Equal(result.Subtotal))
		assert.True(t, decimal.NewFromInt(1500).Equal(result.MinimumFeeAdjustment))
	})

	t.Run("minimum fee not applied when subtotal clears it", func(t *testing.T) {
		config := &matter.BillingConfig{
			BillingMethod: types.BillingMethodFixed,
			FixedFee:      decimal.NewFromInt(5000),
			MinimumFee:    lo.ToPtr(decimal.NewFromInt(2000)),
		}

		result, err := CalculateCaseCharges(CaseChargeParams{Config: config})
		require.NoError(t, err)

		assert.False(t, result.MinimumFeeApplied)
		assert.True(t, decimal.NewFromInt(5000).Equal(result.Subtotal))
		assert.True(t, result.MinimumFeeAdjustment.IsZero())
	})
}
