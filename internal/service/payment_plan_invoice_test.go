package service

import (
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/talktorobson/prima-facie-sub001/internal/api/dto"
	"github.com/talktorobson/prima-facie-sub001/internal/domain/paymentplan"
	ierr "github.com/talktorobson/prima-facie-sub001/internal/errors"
	"github.com/talktorobson/prima-facie-sub001/internal/testutil"
	"github.com/talktorobson/prima-facie-sub001/internal/types"
)

type PaymentPlanInvoiceServiceSuite struct {
	testutil.BaseServiceTestSuite
	service PaymentPlanInvoiceService
}

func TestPaymentPlanInvoiceService(t *testing.T) {
	suite.Run(t, new(PaymentPlanInvoiceServiceSuite))
}

func (s *PaymentPlanInvoiceServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewPaymentPlanInvoiceService(testServiceParams(&s.BaseServiceTestSuite))
}

// seedPlan stores a monthly plan of 10 installments of 5000 starting in
// the future, so installments are not overdue unless a test moves the
// start date back
func (s *PaymentPlanInvoiceServiceSuite) seedPlan(startDate time.Time) *paymentplan.PaymentPlan {
	ctx := s.GetContext()
	plan := &paymentplan.PaymentPlan{
		ID:                "payplan_1",
		ClientID:          "client_1",
		MatterID:          lo.ToPtr("matter_1"),
		TotalAmount:       decimal.NewFromInt(50000),
		Installments:      10,
		InstallmentAmount: decimal.NewFromInt(5000),
		Frequency:         types.PaymentPlanFrequencyMonthly,
		StartDate:         startDate,
		PlanStatus:        types.PaymentPlanStatusActive,
		LateFeeRate:       decimal.NewFromInt(2),
		GracePeriodDays:   5,
		BaseModel:         types.GetDefaultBaseModel(ctx),
	}
	s.NoError(s.GetStores().PaymentPlanRepo.Create(ctx, plan))
	return plan
}

func (s *PaymentPlanInvoiceServiceSuite) futureStart() time.Time {
	return time.Now().UTC().AddDate(0, 0, 7).Truncate(24 * time.Hour)
}

func (s *PaymentPlanInvoiceServiceSuite) generate(req dto.GeneratePaymentPlanInvoiceRequest) *dto.InvoiceGenerationResult {
	result, err := s.service.GeneratePaymentPlanInvoice(s.GetContext(), req)
	s.NoError(err)
	s.Require().NotNil(result)
	return result
}

func (s *PaymentPlanInvoiceServiceSuite) TestGenerateFirstInstallment() {
	plan := s.seedPlan(s.futureStart())

	result := s.generate(dto.GeneratePaymentPlanInvoiceRequest{
		PaymentPlanID: plan.ID,
	})
	inv := result.Invoice.Invoice

	s.Equal(types.InvoiceTypePaymentPlan, inv.InvoiceType)
	s.Equal(types.InvoiceStatusDraft, inv.InvoiceStatus)
	s.True(inv.Subtotal.Equal(decimal.NewFromInt(5000)))
	s.Equal("Parcela 1 de 10", inv.Description)

	s.Require().NotNil(inv.DueDate)
	s.True(inv.DueDate.Equal(plan.StartDate))

	s.Require().NotNil(inv.PaymentPlanDetail)
	detail := inv.PaymentPlanDetail
	s.Equal(1, detail.InstallmentNumber)
	s.Equal(10, detail.TotalInstallments)
	s.False(detail.IsFinal)
	s.True(detail.AutoGenerateNext)
	s.True(detail.LateFeeAmount.IsZero())

	s.Require().Len(inv.LineItems, 1)
	s.Equal(types.LineItemTypeServiceFee, inv.LineItems[0].ItemType)
}

func (s *PaymentPlanInvoiceServiceSuite) TestSequentialInstallmentDueDates() {
	plan := s.seedPlan(s.futureStart())

	s.generate(dto.GeneratePaymentPlanInvoiceRequest{PaymentPlanID: plan.ID})
	second := s.generate(dto.GeneratePaymentPlanInvoiceRequest{PaymentPlanID: plan.ID})

	s.Equal(2, second.Invoice.PaymentPlanDetail.InstallmentNumber)
	s.True(second.Invoice.DueDate.Equal(plan.StartDate.AddDate(0, 1, 0)))
}

func (s *PaymentPlanInvoiceServiceSuite) TestExplicitInstallmentNumber() {
	plan := s.seedPlan(s.futureStart())

	result := s.generate(dto.GeneratePaymentPlanInvoiceRequest{
		PaymentPlanID:     plan.ID,
		InstallmentNumber: lo.ToPtr(4),
	})
	s.Equal(4, result.Invoice.PaymentPlanDetail.InstallmentNumber)
	s.True(result.Invoice.DueDate.Equal(plan.StartDate.AddDate(0, 3, 0)))
}

func (s *PaymentPlanInvoiceServiceSuite) TestInstallmentBeyondPlanRejected() {
	plan := s.seedPlan(s.futureStart())

	_, err := s.service.GeneratePaymentPlanInvoice(s.GetContext(), dto.GeneratePaymentPlanInvoiceRequest{
		PaymentPlanID:     plan.ID,
		InstallmentNumber: lo.ToPtr(11),
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))

	// nothing was persisted
	invoices, listErr := s.GetStores().InvoiceRepo.List(s.GetContext(), nil)
	s.NoError(listErr)
	s.Empty(invoices)
}

func (s *PaymentPlanInvoiceServiceSuite) TestDuplicateInstallmentRejected() {
	plan := s.seedPlan(s.futureStart())

	s.generate(dto.GeneratePaymentPlanInvoiceRequest{PaymentPlanID: plan.ID})

	_, err := s.service.GeneratePaymentPlanInvoice(s.GetContext(), dto.GeneratePaymentPlanInvoiceRequest{
		PaymentPlanID:     plan.ID,
		InstallmentNumber: lo.ToPtr(1),
	})
	s.Error(err)
	s.True(ierr.IsAlreadyExists(err))
}

func (s *PaymentPlanInvoiceServiceSuite) TestOverdueInstallmentGetsLateFee() {
	// installment 1 fell due 40 days ago; 35 days past the 5 day grace
	// window means two started months of late fee
	plan := s.seedPlan(time.Now().UTC().AddDate(0, 0, -40))

	result := s.generate(dto.GeneratePaymentPlanInvoiceRequest{
		PaymentPlanID:     plan.ID,
		InstallmentNumber: lo.ToPtr(1),
	})
	inv := result.Invoice.Invoice

	s.Equal(types.InvoiceStatusOverdue, inv.InvoiceStatus)
	s.True(inv.PaymentPlanDetail.LateFeeAmount.Equal(decimal.NewFromInt(200)),
		"late fee %s", inv.PaymentPlanDetail.LateFeeAmount)
	s.True(inv.Subtotal.Equal(decimal.NewFromInt(5200)))

	s.Require().Len(inv.LineItems, 2)
	s.Equal(types.LineItemTypeLateFee, inv.LineItems[1].ItemType)
}

func (s *PaymentPlanInvoiceServiceSuite) TestLateFeeCapped() {
	// over two years late; the fee would be far above the 50% cap
	plan := s.seedPlan(time.Now().UTC().AddDate(-2, 0, 0))

	result := s.generate(dto.GeneratePaymentPlanInvoiceRequest{
		PaymentPlanID:     plan.ID,
		InstallmentNumber: lo.ToPtr(1),
	})
	s.True(result.Invoice.PaymentPlanDetail.LateFeeAmount.Equal(decimal.NewFromInt(2500)))
}

func (s *PaymentPlanInvoiceServiceSuite) TestFinalInstallmentCompletesPlan() {
	plan := s.seedPlan(s.futureStart())

	result := s.generate(dto.GeneratePaymentPlanInvoiceRequest{
		PaymentPlanID:     plan.ID,
		InstallmentNumber: lo.ToPtr(10),
	})
	s.True(result.Invoice.PaymentPlanDetail.IsFinal)
	s.False(result.Invoice.PaymentPlanDetail.AutoGenerateNext)

	updated, err := s.GetStores().PaymentPlanRepo.Get(s.GetContext(), plan.ID)
	s.NoError(err)
	s.Equal(types.PaymentPlanStatusCompleted, updated.PlanStatus)
}

func (s *PaymentPlanInvoiceServiceSuite) TestAllInstallmentsBilled() {
	ctx := s.GetContext()
	plan := s.seedPlan(s.futureStart())
	plan.Installments = 2
	plan.TotalAmount = decimal.NewFromInt(10000)
	s.NoError(s.GetStores().PaymentPlanRepo.Update(ctx, plan))

	s.generate(dto.GeneratePaymentPlanInvoiceRequest{PaymentPlanID: plan.ID})
	s.generate(dto.GeneratePaymentPlanInvoiceRequest{PaymentPlanID: plan.ID})

	_, err := s.service.GeneratePaymentPlanInvoice(ctx, dto.GeneratePaymentPlanInvoiceRequest{
		PaymentPlanID: plan.ID,
	})
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *PaymentPlanInvoiceServiceSuite) TestPlanNotFound() {
	_, err := s.service.GeneratePaymentPlanInvoice(s.GetContext(), dto.GeneratePaymentPlanInvoiceRequest{
		PaymentPlanID: "payplan_missing",
	})
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *PaymentPlanInvoiceServiceSuite) TestGenerateAllRemainingInstallments() {
	plan := s.seedPlan(s.futureStart())

	s.generate(dto.GeneratePaymentPlanInvoiceRequest{PaymentPlanID: plan.ID})

	result, err := s.service.GenerateAllRemainingInstallments(s.GetContext(), plan.ID)
	s.NoError(err)

	s.Equal(9, result.TotalRequested)
	s.Equal(9, result.SuccessfulGenerations)
	s.Equal(0, result.FailedGenerations)
	s.True(result.Success)

	billed, err := s.GetStores().InvoiceRepo.GetInstallmentNumbers(s.GetContext(), plan.ID)
	s.NoError(err)
	s.Equal([]int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, billed)
}

func (s *PaymentPlanInvoiceServiceSuite) TestGenerateOverdueInstallments() {
	// installments 1 to 3 are past due date and grace; 4 onward are not
	plan := s.seedPlan(time.Now().UTC().AddDate(0, -2, -10))

	result, err := s.service.GenerateOverdueInstallments(s.GetContext(), plan.GracePeriodDays)
	s.NoError(err)

	s.Equal(3, result.TotalRequested)
	s.Equal(3, result.SuccessfulGenerations)

	invoices, err := s.GetStores().InvoiceRepo.List(s.GetContext(), nil)
	s.NoError(err)
	s.Len(invoices, 3)
	for _, inv := range invoices {
		s.Equal(types.InvoiceStatusOverdue, inv.InvoiceStatus)
	}
}
