package billing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talktorobson/prima-facie-sub001/internal/domain/paymentplan"
	ierr "github.com/talktorobson/prima-facie-sub001/internal/errors"
	"github.com/talktorobson/prima-facie-sub001/internal/types"
)

func monthlyPlan(installments int, amount int64) *paymentplan.PaymentPlan {
	return &paymentplan.PaymentPlan{
		ID:                "pplan_test",
		TotalAmount:       decimal.NewFromInt(amount * int64(installments)),
		Installments:      installments,
		InstallmentAmount: decimal.NewFromInt(amount),
		Frequency:         types.PaymentPlanFrequencyMonthly,
		StartDate:         time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
		LateFeeRate:       decimal.NewFromInt(2),
		GracePeriodDays:   5,
	}
}

func TestComputeInstallment(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("due dates follow the frequency", func(t *testing.T) {
		plan := monthlyPlan(10, 5000)

		first, err := ComputeInstallment(InstallmentParams{Plan: plan, InstallmentNumber: 1, Now: now})
		require.NoError(t, err)
		assert.Equal(t, plan.StartDate, first.DueDate)
		assert.False(t, first.IsFinal)

		second, err := ComputeInstallment(InstallmentParams{Plan: plan, InstallmentNumber: 2, Now: now})
		require.NoError(t, err)
		assert.Equal(t, plan.StartDate.AddDate(0, 1, 0), second.DueDate)

		last, err := ComputeInstallment(InstallmentParams{Plan: plan, InstallmentNumber: 10, Now: now})
		require.NoError(t, err)
		assert.Equal(t, plan.StartDate.AddDate(0, 9, 0), last.DueDate)
		assert.True(t, last.IsFinal)
	})

	t.Run("weekly frequency advances seven days", func(t *testing.T) {
		plan := monthlyPlan(4, 1000)
		plan.Frequency = types.PaymentPlanFrequencyWeekly

		result, err := ComputeInstallment(InstallmentParams{Plan: plan, InstallmentNumber: 3, Now: now})
		require.NoError(t, err)
		assert.Equal(t, plan.StartDate.AddDate(0, 0, 14), result.DueDate)
	})

	t.Run("installment number beyond the plan is rejected", func(t *testing.T) {
		plan := monthlyPlan(10, 5000)

		_, err := ComputeInstallment(InstallmentParams{Plan: plan, InstallmentNumber: 11, Now: now})
		require.Error(t, err)
		assert.True(t, ierr.IsValidation(err))

		_, err = ComputeInstallment(InstallmentParams{Plan: plan, InstallmentNumber: 0, Now: now})
		require.Error(t, err)
		assert.True(t, ierr.IsValidation(err))
	})

	t.Run("not overdue inside the grace window", func(t *testing.T) {
		plan := monthlyPlan(10, 5000)
		within := plan.StartDate.AddDate(0, 0, plan.GracePeriodDays)

		result, err := ComputeInstallment(InstallmentParams{
			Plan:              plan,
			InstallmentNumber: 1,
			Now:               within,
			LateFeeCapPercent: 50,
		})
		require.NoError(t, err)
		assert.False(t, result.IsOverdue)
		assert.True(t, result.LateFee.IsZero())
	})

	t.Run("late fee accrues per started thirty-day period", func(t *testing.T) {
		plan := monthlyPlan(10, 5000)
		// 10 days past the grace window, first period started
		overdue := plan.StartDate.AddDate(0, 0, plan.GracePeriodDays+10)

		result, err := ComputeInstallment(InstallmentParams{
			Plan:              plan,
			InstallmentNumber: 1,
			Now:               overdue,
			LateFeeCapPercent: 50,
		})
		require.NoError(t, err)
		assert.True(t, result.IsOverdue)
		assert.Equal(t, 10, result.DaysOverdue)
		// 5000 * 2% * 1 period
		assert.True(t, decimal.NewFromInt(100).Equal(result.LateFee),
			"late_fee = %s", result.LateFee)

		// 45 days past grace spans two started periods
		result, err = ComputeInstallment(InstallmentParams{
			Plan:              plan,
			InstallmentNumber: 1,
			Now:               plan.StartDate.AddDate(0, 0, plan.GracePeriodDays+45),
			LateFeeCapPercent: 50,
		})
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(200).Equal(result.LateFee))
	})

	t.Run("late fee is capped against the installment amount", func(t *testing.T) {
		plan := monthlyPlan(10, 5000)
		// far enough out that the uncapped fee would exceed fifty percent
		farOut := plan.StartDate.AddDate(0, 0, plan.GracePeriodDays+30*30)

		result, err := ComputeInstallment(InstallmentParams{
			Plan:              plan,
			InstallmentNumber: 1,
			Now:               farOut,
			LateFeeCapPercent: 50,
		})
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(2500).Equal(result.LateFee),
			"late_fee = %s", result.LateFee)
	})

	t.Run("scheduled date override wins over the computed one", func(t *testing.T) {
		plan := monthlyPlan(10, 5000)
		override := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

		result, err := ComputeInstallment(InstallmentParams{
			Plan:              plan,
			InstallmentNumber: 2,
			ScheduledDate:     &override,
			Now:               now,
		})
		require.NoError(t, err)
		assert.Equal(t, override, result.DueDate)
	})
}

func TestNextInstallmentNumber(t *testing.T) {
	plan := monthlyPlan(4, 1000)

	assert.Equal(t, 1, NextInstallmentNumber(plan, nil))
	assert.Equal(t, 3, NextInstallmentNumber(plan, []int{1, 2}))
	assert.Equal(t, 2, NextInstallmentNumber(plan, []int{1, 3}))
	assert.Equal(t, 0, NextInstallmentNumber(plan, []int{1, 2, 3, 4}))
}
