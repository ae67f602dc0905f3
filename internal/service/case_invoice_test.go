package service

import (
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/talktorobson/prima-facie-sub001/internal/api/dto"
	"github.com/talktorobson/prima-facie-sub001/internal/domain/invoice"
	"github.com/talktorobson/prima-facie-sub001/internal/domain/matter"
	"github.com/talktorobson/prima-facie-sub001/internal/domain/timeentry"
	ierr "github.com/talktorobson/prima-facie-sub001/internal/errors"
	"github.com/talktorobson/prima-facie-sub001/internal/testutil"
	"github.com/talktorobson/prima-facie-sub001/internal/types"
)

type CaseInvoiceServiceSuite struct {
	testutil.BaseServiceTestSuite
	service  CaseInvoiceService
	testData struct {
		matter *matter.Matter
	}
}

func TestCaseInvoiceService(t *testing.T) {
	suite.Run(t, new(CaseInvoiceServiceSuite))
}

func (s *CaseInvoiceServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewCaseInvoiceService(testServiceParams(&s.BaseServiceTestSuite))
	s.setupTestData()
}

func (s *CaseInvoiceServiceSuite) setupTestData() {
	ctx := s.GetContext()
	s.testData.matter = &matter.Matter{
		ID:        "matter_1",
		ClientID:  "client_1",
		Title:     "Ação trabalhista",
		Area:      "trabalhista",
		OpenedAt:  time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC),
		BaseModel: types.GetDefaultBaseModel(ctx),
	}
	s.NoError(s.GetStores().MatterRepo.Create(ctx, s.testData.matter))
}

func (s *CaseInvoiceServiceSuite) setBillingConfig(config *matter.BillingConfig) {
	ctx := s.GetContext()
	config.ID = types.GenerateUUID()
	config.MatterID = s.testData.matter.ID
	config.BaseModel = types.GetDefaultBaseModel(ctx)
	s.NoError(s.GetStores().MatterRepo.SetBillingConfig(ctx, config))
}

func (s *CaseInvoiceServiceSuite) seedTimeEntry(id string, hours float64, billable bool, rate *decimal.Decimal) {
	ctx := s.GetContext()
	entry := &timeentry.TimeEntry{
		ID:               id,
		ClientID:         s.testData.matter.ClientID,
		MatterID:         lo.ToPtr(s.testData.matter.ID),
		Category:         types.LegalServiceOther,
		EffectiveMinutes: int(hours * 60),
		Billable:         billable,
		BillableRate:     rate,
		WorkDate:         time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
		BaseModel:        types.GetDefaultBaseModel(ctx),
	}
	s.NoError(s.GetStores().TimeEntryRepo.Create(ctx, entry))
}

func (s *CaseInvoiceServiceSuite) generate() *dto.InvoiceGenerationResult {
	result, err := s.service.GenerateCaseInvoice(s.GetContext(), dto.GenerateCaseInvoiceRequest{
		MatterID: s.testData.matter.ID,
	})
	s.NoError(err)
	s.Require().NotNil(result)
	return result
}

func (s *CaseInvoiceServiceSuite) TestHourlyBilling() {
	s.setBillingConfig(&matter.BillingConfig{
		BillingMethod: types.BillingMethodHourly,
		HourlyRate:    decimal.NewFromInt(300),
	})
	s.seedTimeEntry("entry_1", 2, true, nil)
	s.seedTimeEntry("entry_2", 1.5, true, lo.ToPtr(decimal.NewFromInt(400)))
	s.seedTimeEntry("entry_3", 10, false, nil)

	result := s.generate()
	inv := result.Invoice.Invoice

	s.Equal(types.InvoiceTypeCaseBilling, inv.InvoiceType)
	// 2h at 300 plus 1.5h at the entry override of 400
	s.True(inv.Subtotal.Equal(decimal.NewFromInt(1200)), "subtotal %s", inv.Subtotal)

	s.Require().NotNil(inv.CaseDetail)
	s.Equal(types.BillingMethodHourly, inv.CaseDetail.BillingMethod)
	s.True(inv.CaseDetail.BillableHours.Equal(decimal.NewFromFloat(3.5)))
	s.True(inv.CaseDetail.TotalHours.Equal(decimal.NewFromFloat(13.5)))
	s.True(inv.CaseDetail.TimeCharges.Equal(decimal.NewFromInt(1200)))

	// one line per billable entry, none for the non-billable one
	s.Require().Len(inv.LineItems, 2)
	for _, item := range inv.LineItems {
		s.Equal(types.LineItemTypeTimeEntry, item.ItemType)
		s.NotNil(item.TimeEntryID)
	}
}

func (s *CaseInvoiceServiceSuite) TestFixedFeeBilling() {
	s.setBillingConfig(&matter.BillingConfig{
		BillingMethod: types.BillingMethodFixed,
		FixedFee:      decimal.NewFromInt(25000),
	})
	s.seedTimeEntry("entry_1", 40, true, nil)

	result := s.generate()
	inv := result.Invoice.Invoice

	// hours are informational under fixed billing
	s.True(inv.Subtotal.Equal(decimal.NewFromInt(25000)))
	s.Require().Len(inv.LineItems, 1)
	s.Equal(types.LineItemTypeCaseFee, inv.LineItems[0].ItemType)
	s.True(inv.CaseDetail.BillableHours.Equal(decimal.NewFromInt(40)))
}

func (s *CaseInvoiceServiceSuite) TestPercentageBillingWithOutcome() {
	ctx := s.GetContext()
	s.setBillingConfig(&matter.BillingConfig{
		BillingMethod:  types.BillingMethodPercentage,
		PercentageRate: decimal.NewFromInt(20),
	})
	s.NoError(s.GetStores().MatterRepo.SetOutcome(ctx, &matter.Outcome{
		ID:              types.GenerateUUID(),
		MatterID:        s.testData.matter.ID,
		AmountRecovered: decimal.NewFromInt(100000),
		SuccessFee:      decimal.NewFromInt(5000),
		DecidedAt:       time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC),
		BaseModel:       types.GetDefaultBaseModel(ctx),
	}))

	result := s.generate()
	inv := result.Invoice.Invoice

	s.True(inv.Subtotal.Equal(decimal.NewFromInt(25000)), "subtotal %s", inv.Subtotal)
	s.True(inv.CaseDetail.PercentageFee.Equal(decimal.NewFromInt(20000)))
	s.True(inv.CaseDetail.SuccessFee.Equal(decimal.NewFromInt(5000)))
	s.True(inv.CaseDetail.RecoveryAmount.Equal(decimal.NewFromInt(100000)))

	s.Require().Len(inv.LineItems, 2)
	s.Equal(types.LineItemTypeCaseFee, inv.LineItems[0].ItemType)
	s.Equal(types.LineItemTypeSuccessFee, inv.LineItems[1].ItemType)
}

func (s *CaseInvoiceServiceSuite) TestPercentageBillingWithoutOutcome() {
	s.setBillingConfig(&matter.BillingConfig{
		BillingMethod:  types.BillingMethodPercentage,
		PercentageRate: decimal.NewFromInt(20),
	})

	result := s.generate()
	inv := result.Invoice.Invoice

	s.True(inv.Subtotal.IsZero())
	s.True(inv.CaseDetail.PercentageFee.IsZero())
	s.Empty(inv.LineItems)
}

func (s *CaseInvoiceServiceSuite) TestExpensesBilled() {
	ctx := s.GetContext()
	s.setBillingConfig(&matter.BillingConfig{
		BillingMethod: types.BillingMethodFixed,
		FixedFee:      decimal.NewFromInt(1000),
	})
	s.NoError(s.GetStores().MatterRepo.AddExpense(ctx, &matter.Expense{
		ID:           "exp_1",
		MatterID:     s.testData.matter.ID,
		Description:  "Custas judiciais",
		Amount:       decimal.NewFromInt(200),
		Reimbursable: false,
		IncurredAt:   time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC),
		BaseModel:    types.GetDefaultBaseModel(ctx),
	}))
	s.NoError(s.GetStores().MatterRepo.AddExpense(ctx, &matter.Expense{
		ID:           "exp_2",
		MatterID:     s.testData.matter.ID,
		Description:  "Deslocamento",
		Amount:       decimal.NewFromInt(100),
		Reimbursable: true,
		IncurredAt:   time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC),
		BaseModel:    types.GetDefaultBaseModel(ctx),
	}))

	result := s.generate()
	inv := result.Invoice.Invoice

	// fee 1000, expenses 300, reimbursable share charged once more
	s.True(inv.Subtotal.Equal(decimal.NewFromInt(1400)), "subtotal %s", inv.Subtotal)
	s.True(inv.CaseDetail.CaseExpenses.Equal(decimal.NewFromInt(300)))
	s.True(inv.CaseDetail.ReimbursableExpenses.Equal(decimal.NewFromInt(100)))

	expenseLines := lo.Filter(inv.LineItems, func(item *invoice.LineItem, _ int) bool {
		return item.ItemType == types.LineItemTypeExpense
	})
	s.Len(expenseLines, 3)
}

func (s *CaseInvoiceServiceSuite) TestMinimumFeeApplied() {
	s.setBillingConfig(&matter.BillingConfig{
		BillingMethod: types.BillingMethodHourly,
		HourlyRate:    decimal.NewFromInt(250),
		MinimumFee:    lo.ToPtr(decimal.NewFromInt(2000)),
	})
	s.seedTimeEntry("entry_1", 2, true, nil)

	result := s.generate()
	inv := result.Invoice.Invoice

	s.True(inv.Subtotal.Equal(decimal.NewFromInt(2000)), "subtotal %s", inv.Subtotal)
	s.True(inv.CaseDetail.MinimumFeeApplied)

	adjustment, found := lo.Find(inv.LineItems, func(item *invoice.LineItem) bool {
		return item.ItemType == types.LineItemTypeAdjustment
	})
	s.Require().True(found)
	s.True(adjustment.LineTotal.Equal(decimal.NewFromInt(1500)))
}

func (s *CaseInvoiceServiceSuite) TestMissingBillingConfig() {
	_, err := s.service.GenerateCaseInvoice(s.GetContext(), dto.GenerateCaseInvoiceRequest{
		MatterID: s.testData.matter.ID,
	})
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *CaseInvoiceServiceSuite) TestPeriodFiltersTimeEntries() {
	s.setBillingConfig(&matter.BillingConfig{
		BillingMethod: types.BillingMethodHourly,
		HourlyRate:    decimal.NewFromInt(100),
	})
	s.seedTimeEntry("entry_in", 2, true, nil)

	ctx := s.GetContext()
	outOfPeriod := &timeentry.TimeEntry{
		ID:               "entry_out",
		ClientID:         s.testData.matter.ClientID,
		MatterID:         lo.ToPtr(s.testData.matter.ID),
		Category:         types.LegalServiceOther,
		EffectiveMinutes: 600,
		Billable:         true,
		WorkDate:         time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC),
		BaseModel:        types.GetDefaultBaseModel(ctx),
	}
	s.NoError(s.GetStores().TimeEntryRepo.Create(ctx, outOfPeriod))

	result, err := s.service.GenerateCaseInvoice(ctx, dto.GenerateCaseInvoiceRequest{
		MatterID:    s.testData.matter.ID,
		PeriodStart: lo.ToPtr(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)),
		PeriodEnd:   lo.ToPtr(time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)),
	})
	s.NoError(err)

	inv := result.Invoice.Invoice
	s.True(inv.Subtotal.Equal(decimal.NewFromInt(200)))
	s.Require().Len(inv.LineItems, 1)
}

func (s *CaseInvoiceServiceSuite) TestBatchGeneration() {
	ctx := s.GetContext()
	s.setBillingConfig(&matter.BillingConfig{
		BillingMethod: types.BillingMethodFixed,
		FixedFee:      decimal.NewFromInt(5000),
	})

	// a second matter without billing config fails inside the batch
	unconfigured := &matter.Matter{
		ID:        "matter_2",
		ClientID:  "client_2",
		Title:     "Consultoria societária",
		OpenedAt:  time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
		BaseModel: types.GetDefaultBaseModel(ctx),
	}
	s.NoError(s.GetStores().MatterRepo.Create(ctx, unconfigured))

	result, err := s.service.GenerateBatchCaseInvoices(ctx, dto.GenerateBatchCaseInvoicesRequest{
		MatterIDs: []string{s.testData.matter.ID, unconfigured.ID},
	})
	s.NoError(err)

	s.Equal(2, result.TotalRequested)
	s.Equal(1, result.SuccessfulGenerations)
	s.Equal(1, result.FailedGenerations)
	s.Len(result.Invoices, 1)
	s.Require().Len(result.Errors, 1)
	s.Equal(unconfigured.ID, result.Errors[0].TargetID)

	logs, err := s.GetStores().GenerationLogRepo.List(ctx, nil)
	s.NoError(err)
	s.Require().Len(logs, 1)
	s.Equal(types.InvoiceTypeCaseBilling, logs[0].InvoiceType)
	s.Equal(2, logs[0].TotalRequested)
}
