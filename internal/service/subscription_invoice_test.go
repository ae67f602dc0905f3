package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/talktorobson/prima-facie-sub001/internal/api/dto"
	"github.com/talktorobson/prima-facie-sub001/internal/domain/discount"
	"github.com/talktorobson/prima-facie-sub001/internal/domain/invoice"
	"github.com/talktorobson/prima-facie-sub001/internal/domain/plan"
	"github.com/talktorobson/prima-facie-sub001/internal/domain/subscription"
	"github.com/talktorobson/prima-facie-sub001/internal/domain/timeentry"
	ierr "github.com/talktorobson/prima-facie-sub001/internal/errors"
	"github.com/talktorobson/prima-facie-sub001/internal/testutil"
	"github.com/talktorobson/prima-facie-sub001/internal/types"
)

type SubscriptionInvoiceServiceSuite struct {
	testutil.BaseServiceTestSuite
	service  SubscriptionInvoiceService
	testData struct {
		plan         *plan.Plan
		subscription *subscription.Subscription
		periodStart  time.Time
		periodEnd    time.Time
	}
}

func TestSubscriptionInvoiceService(t *testing.T) {
	suite.Run(t, new(SubscriptionInvoiceServiceSuite))
}

func (s *SubscriptionInvoiceServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewSubscriptionInvoiceService(testServiceParams(&s.BaseServiceTestSuite))
	s.setupTestData()
}

func (s *SubscriptionInvoiceServiceSuite) setupTestData() {
	ctx := s.GetContext()

	s.testData.plan = &plan.Plan{
		ID:           "plan_empresarial",
		Name:         "Plano Empresarial",
		MonthlyPrice: decimal.NewFromInt(1000),
		Currency:     "BRL",
		Services: plan.ServiceInclusions{
			{
				ServiceType: types.LegalServiceConsultation,
				IncludedQty: 10,
				OverageRate: decimal.NewFromInt(100),
			},
			{
				ServiceType: types.LegalServiceLegalResearch,
				IncludedQty: 5,
				OverageRate: decimal.NewFromInt(150),
			},
		},
		BaseModel: types.GetDefaultBaseModel(ctx),
	}
	s.NoError(s.GetStores().PlanRepo.Create(ctx, s.testData.plan))

	s.testData.subscription = &subscription.Subscription{
		ID:                 "subs_1",
		ClientID:           "client_1",
		PlanID:             s.testData.plan.ID,
		SubscriptionStatus: types.SubscriptionStatusActive,
		StartDate:          time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC),
		AutoRenew:          true,
		BaseModel:          types.GetDefaultBaseModel(ctx),
	}
	s.NoError(s.GetStores().SubscriptionRepo.Create(ctx, s.testData.subscription))

	s.testData.periodStart = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s.testData.periodEnd = time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)
}

// seedConsultations records n billable consultation entries inside the test
// billing period
func (s *SubscriptionInvoiceServiceSuite) seedConsultations(n int) {
	ctx := s.GetContext()
	for i := 0; i < n; i++ {
		entry := &timeentry.TimeEntry{
			ID:               fmt.Sprintf("entry_%d", i+1),
			ClientID:         s.testData.subscription.ClientID,
			SubscriptionID:   lo.ToPtr(s.testData.subscription.ID),
			Category:         types.LegalServiceConsultation,
			EffectiveMinutes: 60,
			Billable:         true,
			WorkDate:         s.testData.periodStart.AddDate(0, 0, i%28),
			BaseModel:        types.GetDefaultBaseModel(ctx),
		}
		s.NoError(s.GetStores().TimeEntryRepo.Create(ctx, entry))
	}
}

func (s *SubscriptionInvoiceServiceSuite) generate(req dto.GenerateSubscriptionInvoiceRequest) *dto.InvoiceGenerationResult {
	if req.PeriodStart == nil {
		req.PeriodStart = lo.ToPtr(s.testData.periodStart)
		req.PeriodEnd = lo.ToPtr(s.testData.periodEnd)
	}
	result, err := s.service.GenerateSubscriptionInvoice(s.GetContext(), req)
	s.NoError(err)
	s.NotNil(result)
	return result
}

func (s *SubscriptionInvoiceServiceSuite) TestGenerateWithOverage() {
	s.seedConsultations(14)

	result := s.generate(dto.GenerateSubscriptionInvoiceRequest{
		SubscriptionID: s.testData.subscription.ID,
	})
	s.True(result.Success)
	s.NotNil(result.Invoice)

	inv := result.Invoice.Invoice
	s.Equal(types.InvoiceTypeSubscription, inv.InvoiceType)
	s.Equal(types.InvoiceStatusDraft, inv.InvoiceStatus)
	s.Equal("BRL", inv.Currency)
	s.Equal(s.testData.subscription.ClientID, inv.ClientID)
	s.True(inv.Subtotal.Equal(decimal.NewFromInt(1400)),
		"subtotal %s", inv.Subtotal)
	s.True(inv.TotalAmount.Equal(decimal.NewFromInt(1400)))

	s.Require().NotNil(inv.SubscriptionDetail)
	detail := inv.SubscriptionDetail
	s.Equal(s.testData.subscription.ID, detail.SubscriptionID)
	s.True(detail.PeriodStart.Equal(s.testData.periodStart))
	s.True(detail.PeriodEnd.Equal(s.testData.periodEnd))
	s.False(detail.IsProrated)

	usage := detail.ServicesUsed[types.LegalServiceConsultation]
	s.Equal(10, usage.Included)
	s.Equal(14, usage.Used)
	s.Equal(4, usage.Overage)
	s.True(usage.OverageCharge.Equal(decimal.NewFromInt(400)))
	s.True(detail.OverageCharges.Equal(decimal.NewFromInt(400)))

	// plan fee plus one overage line; legal research had no usage
	s.Require().Len(inv.LineItems, 2)
	s.Equal(types.LineItemTypeSubscriptionFee, inv.LineItems[0].ItemType)
	s.True(inv.LineItems[0].LineTotal.Equal(decimal.NewFromInt(1000)))
	s.Equal(types.LineItemTypeServiceFee, inv.LineItems[1].ItemType)
	s.True(inv.LineItems[1].Quantity.Equal(decimal.NewFromInt(4)))
	s.True(inv.LineItems[1].LineTotal.Equal(decimal.NewFromInt(400)))
}

func (s *SubscriptionInvoiceServiceSuite) TestGenerateWithinInclusions() {
	s.seedConsultations(7)

	result := s.generate(dto.GenerateSubscriptionInvoiceRequest{
		SubscriptionID: s.testData.subscription.ID,
	})

	inv := result.Invoice.Invoice
	s.True(inv.Subtotal.Equal(decimal.NewFromInt(1000)))
	s.Require().Len(inv.LineItems, 1)
	s.Equal(types.LineItemTypeSubscriptionFee, inv.LineItems[0].ItemType)

	usage := inv.SubscriptionDetail.ServicesUsed[types.LegalServiceConsultation]
	s.Equal(7, usage.Used)
	s.Equal(0, usage.Overage)
}

func (s *SubscriptionInvoiceServiceSuite) TestGenerateProratedMidPeriodStart() {
	s.testData.subscription.StartDate = time.Date(2025, 1, 16, 0, 0, 0, 0, time.UTC)
	s.NoError(s.GetStores().SubscriptionRepo.Update(s.GetContext(), s.testData.subscription))

	result := s.generate(dto.GenerateSubscriptionInvoiceRequest{
		SubscriptionID: s.testData.subscription.ID,
	})

	inv := result.Invoice.Invoice
	s.Require().NotNil(inv.SubscriptionDetail)
	s.True(inv.SubscriptionDetail.IsProrated)
	s.True(inv.SubscriptionDetail.ProrationFactor.Equal(decimal.NewFromFloat(0.5)),
		"factor %s", inv.SubscriptionDetail.ProrationFactor)
	s.NotEmpty(inv.SubscriptionDetail.ProrationReason)
	s.True(inv.Subtotal.Equal(decimal.NewFromInt(500)))
}

func (s *SubscriptionInvoiceServiceSuite) TestDuplicatePeriodRejected() {
	s.generate(dto.GenerateSubscriptionInvoiceRequest{
		SubscriptionID: s.testData.subscription.ID,
	})

	_, err := s.service.GenerateSubscriptionInvoice(s.GetContext(), dto.GenerateSubscriptionInvoiceRequest{
		SubscriptionID: s.testData.subscription.ID,
		PeriodStart:    lo.ToPtr(s.testData.periodStart),
		PeriodEnd:      lo.ToPtr(s.testData.periodEnd),
	})
	s.Error(err)
	s.True(ierr.IsAlreadyExists(err))

	// only the first invoice exists
	invoices, err := s.GetStores().InvoiceRepo.List(s.GetContext(), nil)
	s.NoError(err)
	s.Len(invoices, 1)
}

func (s *SubscriptionInvoiceServiceSuite) TestForceRegenerate() {
	s.generate(dto.GenerateSubscriptionInvoiceRequest{
		SubscriptionID: s.testData.subscription.ID,
	})
	result := s.generate(dto.GenerateSubscriptionInvoiceRequest{
		SubscriptionID:  s.testData.subscription.ID,
		ForceRegenerate: true,
	})
	s.True(result.Success)

	invoices, err := s.GetStores().InvoiceRepo.List(s.GetContext(), nil)
	s.NoError(err)
	s.Len(invoices, 2)
}

func (s *SubscriptionInvoiceServiceSuite) TestSubscriptionNotFound() {
	_, err := s.service.GenerateSubscriptionInvoice(s.GetContext(), dto.GenerateSubscriptionInvoiceRequest{
		SubscriptionID: "subs_missing",
		PeriodStart:    lo.ToPtr(s.testData.periodStart),
		PeriodEnd:      lo.ToPtr(s.testData.periodEnd),
	})
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *SubscriptionInvoiceServiceSuite) TestDiscountApplied() {
	ctx := s.GetContext()
	s.NoError(s.GetStores().DiscountRepo.Create(ctx, &discount.Rule{
		ID:           "disc_fidelidade",
		Name:         "Desconto fidelidade",
		AppliesTo:    types.DiscountScopeClient,
		TargetID:     s.testData.subscription.ClientID,
		DiscountType: types.DiscountTypePercentage,
		Value:        decimal.NewFromInt(10),
		Priority:     1,
		AutoApply:    true,
		ValidFrom:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		BaseModel:    types.GetDefaultBaseModel(ctx),
	}))
	s.seedConsultations(14)

	result := s.generate(dto.GenerateSubscriptionInvoiceRequest{
		SubscriptionID: s.testData.subscription.ID,
	})

	inv := result.Invoice.Invoice
	s.True(inv.Subtotal.Equal(decimal.NewFromInt(1400)))
	s.True(inv.DiscountAmount.Equal(decimal.NewFromInt(140)),
		"discount %s", inv.DiscountAmount)
	s.True(inv.TotalAmount.Equal(decimal.NewFromInt(1260)))

	s.Require().Len(inv.AppliedDiscounts, 1)
	s.Equal("disc_fidelidade", inv.AppliedDiscounts[0].RuleID)

	discountLine, found := lo.Find(inv.LineItems, func(item *invoice.LineItem) bool {
		return item.ItemType == types.LineItemTypeDiscount
	})
	s.True(found)
	s.True(discountLine.LineTotal.Equal(decimal.NewFromInt(-140)))
}

func (s *SubscriptionInvoiceServiceSuite) TestAutoSend() {
	result := s.generate(dto.GenerateSubscriptionInvoiceRequest{
		SubscriptionID: s.testData.subscription.ID,
		AutoSend:       true,
	})
	s.True(result.Success)
	s.Equal(types.InvoiceStatusSent, result.Invoice.InvoiceStatus)
	s.NotNil(result.Invoice.SentAt)
}

func (s *SubscriptionInvoiceServiceSuite) TestBatchGeneration() {
	ctx := s.GetContext()
	second := &subscription.Subscription{
		ID:                 "subs_2",
		ClientID:           "client_2",
		PlanID:             s.testData.plan.ID,
		SubscriptionStatus: types.SubscriptionStatusActive,
		StartDate:          time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		BaseModel:          types.GetDefaultBaseModel(ctx),
	}
	s.NoError(s.GetStores().SubscriptionRepo.Create(ctx, second))

	result, err := s.service.GenerateBatchSubscriptionInvoices(ctx, dto.GenerateBatchSubscriptionInvoicesRequest{
		SubscriptionIDs: []string{s.testData.subscription.ID, second.ID, "subs_missing"},
		PeriodStart:     lo.ToPtr(s.testData.periodStart),
		PeriodEnd:       lo.ToPtr(s.testData.periodEnd),
	})
	s.NoError(err)
	s.Require().NotNil(result)

	s.Equal(3, result.TotalRequested)
	s.Equal(2, result.SuccessfulGenerations)
	s.Equal(1, result.FailedGenerations)
	s.Equal(result.SuccessfulGenerations+result.FailedGenerations, result.TotalRequested)
	s.Len(result.Invoices, 2)
	s.Require().Len(result.Errors, 1)
	s.Equal("subs_missing", result.Errors[0].TargetID)
	s.False(result.Success)
	s.NotEmpty(result.BatchID)

	// one audit row per batch
	logs, err := s.GetStores().GenerationLogRepo.List(ctx, nil)
	s.NoError(err)
	s.Require().Len(logs, 1)
	s.Equal(result.BatchID, logs[0].BatchID)
	s.Equal(types.InvoiceTypeSubscription, logs[0].InvoiceType)
	s.Equal(3, logs[0].TotalRequested)
	s.Equal(2, logs[0].Successful)
	s.Equal(1, logs[0].Failed)
	s.Len(logs[0].Errors, 1)
}

func (s *SubscriptionInvoiceServiceSuite) TestBatchDefaultsToActiveSubscriptions() {
	ctx := s.GetContext()
	paused := &subscription.Subscription{
		ID:                 "subs_paused",
		ClientID:           "client_3",
		PlanID:             s.testData.plan.ID,
		SubscriptionStatus: types.SubscriptionStatusPaused,
		StartDate:          time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		BaseModel:          types.GetDefaultBaseModel(ctx),
	}
	s.NoError(s.GetStores().SubscriptionRepo.Create(ctx, paused))

	result, err := s.service.GenerateBatchSubscriptionInvoices(ctx, dto.GenerateBatchSubscriptionInvoicesRequest{
		PeriodStart: lo.ToPtr(s.testData.periodStart),
		PeriodEnd:   lo.ToPtr(s.testData.periodEnd),
	})
	s.NoError(err)
	s.Equal(1, result.TotalRequested)
	s.Equal(1, result.SuccessfulGenerations)
	s.True(result.Success)
}
