package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/talktorobson/prima-facie-sub001/internal/api/dto"
	"github.com/talktorobson/prima-facie-sub001/internal/billing"
	"github.com/talktorobson/prima-facie-sub001/internal/domain/invoice"
	"github.com/talktorobson/prima-facie-sub001/internal/domain/matter"
	"github.com/talktorobson/prima-facie-sub001/internal/domain/timeentry"
	ierr "github.com/talktorobson/prima-facie-sub001/internal/errors"
	"github.com/talktorobson/prima-facie-sub001/internal/types"
)

// CaseInvoiceService generates invoices for matters per their case billing
// configuration: hourly, fixed, percentage (contingency) or hybrid.
type CaseInvoiceService interface {
	GenerateCaseInvoice(ctx context.Context, req dto.GenerateCaseInvoiceRequest) (*dto.InvoiceGenerationResult, error)
	GenerateBatchCaseInvoices(ctx context.Context, req dto.GenerateBatchCaseInvoicesRequest) (*dto.BatchInvoiceGenerationResult, error)
}

type caseInvoiceService struct {
	ServiceParams
	invoiceService  InvoiceService
	discountService DiscountService
}

func NewCaseInvoiceService(params ServiceParams) CaseInvoiceService {
	return &caseInvoiceService{
		ServiceParams:   params,
		invoiceService:  NewInvoiceService(params),
		discountService: NewDiscountService(params),
	}
}

func (s *caseInvoiceService) GenerateCaseInvoice(ctx context.Context, req dto.GenerateCaseInvoiceRequest) (*dto.InvoiceGenerationResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	m, err := s.MatterRepo.Get(ctx, req.MatterID)
	if err != nil {
		return nil, err
	}

	// a matter without a billing configuration cannot be invoiced
	config, err := s.MatterRepo.GetBillingConfig(ctx, m.ID)
	if err != nil {
		return nil, err
	}

	entries, err := s.TimeEntryRepo.ListByMatter(ctx, m.ID)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Falha ao buscar registros de horas do caso").
			Mark(ierr.ErrDatabase)
	}
	entries = filterEntriesByPeriod(entries, req)

	expenses, err := s.MatterRepo.ListExpenses(ctx, m.ID)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Falha ao buscar despesas do caso").
			Mark(ierr.ErrDatabase)
	}

	// no outcome yet is a normal state, not a failure
	outcome, err := s.MatterRepo.GetOutcome(ctx, m.ID)
	if err != nil {
		if !ierr.IsNotFound(err) {
			return nil, err
		}
		outcome = nil
	}

	charges, err := billing.CalculateCaseCharges(billing.CaseChargeParams{
		Config:   config,
		Entries:  entries,
		Expenses: expenses,
		Outcome:  outcome,
	})
	if err != nil {
		return nil, err
	}

	result := &dto.InvoiceGenerationResult{}

	discounts := resolveDiscountsOrZero(ctx, s.discountService, s.ServiceParams, DiscountResolutionParams{
		ClientID:   m.ClientID,
		MatterID:   m.ID,
		BaseAmount: charges.Subtotal,
	}, result)

	inv := &invoice.Invoice{
		ClientID:         m.ClientID,
		InvoiceType:      types.InvoiceTypeCaseBilling,
		InvoiceStatus:    types.InvoiceStatusDraft,
		Subtotal:         charges.Subtotal,
		DiscountAmount:   discounts.TotalDiscount,
		MatterID:         &m.ID,
		Description:      fmt.Sprintf("Honorários do caso %s", m.Title),
		AppliedDiscounts: discounts.ApplicableDiscounts,
		CaseDetail: &invoice.CaseInvoiceDetail{
			MatterID:             m.ID,
			BillingMethod:        config.BillingMethod,
			TotalHours:           charges.TotalHours,
			BillableHours:        charges.BillableHours,
			HourlyRate:           config.HourlyRate,
			TimeCharges:          charges.TimeCharges,
			FixedFee:             charges.FixedFee,
			RecoveryAmount:       charges.RecoveryAmount,
			PercentageRate:       config.PercentageRate,
			PercentageFee:        charges.PercentageFee,
			SuccessFee:           charges.SuccessFee,
			CaseExpenses:         charges.CaseExpenses,
			ReimbursableExpenses: charges.ReimbursableExpenses,
			MinimumFee:           charges.MinimumFee,
			MinimumFeeApplied:    charges.MinimumFeeApplied,
		},
	}

	s.appendChargeLines(inv, config, entries, expenses, charges)
	appendDiscountLine(inv, discounts, inv.Currency)

	resp, err := s.invoiceService.CreateInvoice(ctx, inv)
	if err != nil {
		return nil, err
	}

	result.Success = true
	result.Invoice = resp

	autoSendInvoice(ctx, s.invoiceService, s.ServiceParams, req.AutoSend, resp.ID, result)
	return result, nil
}

func (s *caseInvoiceService) GenerateBatchCaseInvoices(ctx context.Context, req dto.GenerateBatchCaseInvoicesRequest) (*dto.BatchInvoiceGenerationResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	result := runBatchGeneration(ctx, s.ServiceParams, types.InvoiceTypeCaseBilling, req.MatterIDs,
		func(ctx context.Context, targetID string) (*dto.InvoiceGenerationResult, error) {
			return s.GenerateCaseInvoice(ctx, dto.GenerateCaseInvoiceRequest{
				MatterID:    targetID,
				PeriodStart: req.PeriodStart,
				PeriodEnd:   req.PeriodEnd,
				AutoSend:    req.AutoSend,
			})
		})
	return result, nil
}

// appendChargeLines turns each non-zero charge component into a visible
// line item
func (s *caseInvoiceService) appendChargeLines(
	inv *invoice.Invoice,
	config *matter.BillingConfig,
	entries []*timeentry.TimeEntry,
	expenses []*matter.Expense,
	charges *billing.CaseChargeResult,
) {
	method := config.BillingMethod

	// hourly and hybrid bill each billable entry on its own line with a
	// back-reference to the source entry
	if method == types.BillingMethodHourly || method == types.BillingMethodHybrid {
		for _, entry := range entries {
			if !entry.Billable {
				continue
			}
			entryID := entry.ID
			line := invoice.NewLineItem(
				types.LineItemTypeTimeEntry,
				entry.Description,
				entry.Hours(),
				entry.EffectiveRate(config.HourlyRate),
				inv.Currency,
			)
			line.TimeEntryID = &entryID
			category := entry.Category
			line.ServiceType = &category
			inv.LineItems = append(inv.LineItems, line)
		}
	}

	if method == types.BillingMethodFixed {
		inv.LineItems = append(inv.LineItems, invoice.NewLineItem(
			types.LineItemTypeCaseFee,
			"Honorários fixos",
			decimal.NewFromInt(1),
			charges.FixedFee,
			inv.Currency,
		))
	}

	if charges.PercentageFee.IsPositive() {
		inv.LineItems = append(inv.LineItems, invoice.NewLineItem(
			types.LineItemTypeCaseFee,
			fmt.Sprintf("Honorários de êxito (%s%% sobre valor recuperado)", config.PercentageRate),
			decimal.NewFromInt(1),
			charges.PercentageFee,
			inv.Currency,
		))
	}

	if charges.SuccessFee.IsPositive() {
		inv.LineItems = append(inv.LineItems, invoice.NewLineItem(
			types.LineItemTypeSuccessFee,
			"Prêmio de êxito",
			decimal.NewFromInt(1),
			charges.SuccessFee,
			inv.Currency,
		))
	}

	for _, expense := range expenses {
		description := expense.Description
		if expense.Reimbursable {
			description = fmt.Sprintf("%s (reembolsável)", description)
		}
		inv.LineItems = append(inv.LineItems, invoice.NewLineItem(
			types.LineItemTypeExpense,
			description,
			decimal.NewFromInt(1),
			expense.Amount,
			inv.Currency,
		))
	}

	// reimbursable expenses are charged a second time per the subtotal
	// composition; the extra charge shows up as its own line
	if charges.ReimbursableExpenses.IsPositive() {
		inv.LineItems = append(inv.LineItems, invoice.NewLineItem(
			types.LineItemTypeExpense,
			"Reembolso de despesas",
			decimal.NewFromInt(1),
			charges.ReimbursableExpenses,
			inv.Currency,
		))
	}

	if charges.MinimumFeeApplied {
		inv.LineItems = append(inv.LineItems, invoice.NewSignedLineItem(
			types.LineItemTypeAdjustment,
			fmt.Sprintf("Ajuste para honorário mínimo de %s", charges.MinimumFee),
			charges.MinimumFeeAdjustment,
			inv.Currency,
		))
	}
}

func filterEntriesByPeriod(entries []*timeentry.TimeEntry, req dto.GenerateCaseInvoiceRequest) []*timeentry.TimeEntry {
	if req.PeriodStart == nil || req.PeriodEnd == nil {
		return entries
	}
	filtered := make([]*timeentry.TimeEntry, 0, len(entries))
	for _, entry := range entries {
		if entry.WorkDate.Before(*req.PeriodStart) || entry.WorkDate.After(*req.PeriodEnd) {
			continue
		}
		filtered = append(filtered, entry)
	}
	return filtered
}
