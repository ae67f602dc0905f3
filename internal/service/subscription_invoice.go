package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/talktorobson/prima-facie-sub001/internal/api/dto"
	"github.com/talktorobson/prima-facie-sub001/internal/billing"
	"github.com/talktorobson/prima-facie-sub001/internal/domain/invoice"
	"github.com/talktorobson/prima-facie-sub001/internal/domain/subscription"
	ierr "github.com/talktorobson/prima-facie-sub001/internal/errors"
	"github.com/talktorobson/prima-facie-sub001/internal/types"
)

// SubscriptionInvoiceService generates invoices for legal-plan
// subscription periods: plan fee with proration, per-service overage
// charges and automatic discounts.
type SubscriptionInvoiceService interface {
	GenerateSubscriptionInvoice(ctx context.Context, req dto.GenerateSubscriptionInvoiceRequest) (*dto.InvoiceGenerationResult, error)
	GenerateBatchSubscriptionInvoices(ctx context.Context, req dto.GenerateBatchSubscriptionInvoicesRequest) (*dto.BatchInvoiceGenerationResult, error)
}

type subscriptionInvoiceService struct {
	ServiceParams
	invoiceService  InvoiceService
	discountService DiscountService
}

func NewSubscriptionInvoiceService(params ServiceParams) SubscriptionInvoiceService {
	return &subscriptionInvoiceService{
		ServiceParams:   params,
		invoiceService:  NewInvoiceService(params),
		discountService: NewDiscountService(params),
	}
}

func (s *subscriptionInvoiceService) GenerateSubscriptionInvoice(ctx context.Context, req dto.GenerateSubscriptionInvoiceRequest) (*dto.InvoiceGenerationResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	sub, err := s.SubscriptionRepo.Get(ctx, req.SubscriptionID)
	if err != nil {
		return nil, err
	}

	periodStart, periodEnd := billingPeriod(req.PeriodStart, req.PeriodEnd)

	if !req.ForceRegenerate {
		exists, err := s.InvoiceRepo.ExistsForPeriod(ctx, sub.ID, periodStart, periodEnd)
		if err != nil {
			return nil, ierr.WithError(err).
				WithHint("Falha ao verificar faturas existentes").
				Mark(ierr.ErrDatabase)
		}
		if exists {
			return nil, ierr.NewError("invoice already exists for period").
				WithHint("Já existe uma fatura para esta assinatura neste período").
				WithReportableDetails(map[string]any{
					"subscription_id": sub.ID,
					"period_start":    periodStart,
					"period_end":      periodEnd,
				}).
				Mark(ierr.ErrAlreadyExists)
		}
	}

	p, err := s.PlanRepo.Get(ctx, sub.PlanID)
	if err != nil {
		return nil, err
	}

	entries, err := s.TimeEntryRepo.ListBySubscription(ctx, sub.ID, periodStart, periodEnd)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Falha ao buscar registros de horas do período").
			Mark(ierr.ErrDatabase)
	}

	usage := billing.CalculateUsage(billing.UsageParams{
		Inclusions: p.Services,
		Entries:    entries,
	})

	proration, err := billing.CalculateProration(billing.ProrationParams{
		SubscriptionStart: sub.StartDate,
		SubscriptionEnd:   sub.EndDate,
		PeriodStart:       periodStart,
		PeriodEnd:         periodEnd,
	})
	if err != nil {
		return nil, err
	}

	planFee := p.MonthlyPrice.Mul(proration.Factor).Round(2)
	subtotal := planFee.Add(usage.TotalOverageCharge)

	result := &dto.InvoiceGenerationResult{}

	discounts := s.resolveDiscounts(ctx, DiscountResolutionParams{
		ClientID:       sub.ClientID,
		SubscriptionID: sub.ID,
		BaseAmount:     subtotal,
	}, result)

	inv := &invoice.Invoice{
		ClientID:         sub.ClientID,
		InvoiceType:      types.InvoiceTypeSubscription,
		InvoiceStatus:    types.InvoiceStatusDraft,
		Subtotal:         subtotal,
		DiscountAmount:   discounts.TotalDiscount,
		Currency:         p.Currency,
		SubscriptionID:   &sub.ID,
		Description:      fmt.Sprintf("Assinatura %s: %s a %s", p.Name, periodStart.Format("02/01/2006"), periodEnd.Format("02/01/2006")),
		AppliedDiscounts: discounts.ApplicableDiscounts,
		SubscriptionDetail: &invoice.SubscriptionInvoiceDetail{
			SubscriptionID:  sub.ID,
			PeriodStart:     periodStart,
			PeriodEnd:       periodEnd,
			ServicesUsed:    usage.Services,
			OverageCharges:  usage.TotalOverageCharge,
			IsProrated:      proration.IsProrated,
			ProrationFactor: proration.Factor,
			ProrationReason: proration.Reason,
			AutoRenew:       sub.AutoRenew,
			NextBillingDate: nextBillingDate(sub, periodEnd),
		},
	}

	planLine := invoice.NewLineItem(
		types.LineItemTypeSubscriptionFee,
		fmt.Sprintf("Mensalidade do plano %s", p.Name),
		decimal.NewFromInt(1),
		planFee,
		p.Currency,
	)
	inv.LineItems = append(inv.LineItems, planLine)

	for _, inc := range p.Services {
		su, ok := usage.Services[inc.ServiceType]
		if !ok || su.Overage == 0 {
			continue
		}
		serviceType := inc.ServiceType
		line := invoice.NewLineItem(
			types.LineItemTypeServiceFee,
			fmt.Sprintf("Excedente de %s (%d %s)", serviceType, su.Overage, serviceType.Unit()),
			decimal.NewFromInt(int64(su.Overage)),
			su.OverageRate,
			p.Currency,
		)
		line.ServiceType = &serviceType
		inv.LineItems = append(inv.LineItems, line)
	}

	appendDiscountLine(inv, discounts, p.Currency)

	resp, err := s.invoiceService.CreateInvoice(ctx, inv)
	if err != nil {
		return nil, err
	}

	result.Success = true
	result.Invoice = resp

	s.autoSend(ctx, req.AutoSend, resp.ID, result)
	return result, nil
}

func (s *subscriptionInvoiceService) GenerateBatchSubscriptionInvoices(ctx context.Context, req dto.GenerateBatchSubscriptionInvoicesRequest) (*dto.BatchInvoiceGenerationResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	targetIDs := req.SubscriptionIDs
	if len(targetIDs) == 0 {
		subs, err := s.SubscriptionRepo.ListActive(ctx)
		if err != nil {
			return nil, ierr.WithError(err).
				WithHint("Falha ao listar assinaturas ativas").
				Mark(ierr.ErrDatabase)
		}
		for _, sub := range subs {
			targetIDs = append(targetIDs, sub.ID)
		}
	}

	result := runBatchGeneration(ctx, s.ServiceParams, types.InvoiceTypeSubscription, targetIDs,
		func(ctx context.Context, targetID string) (*dto.InvoiceGenerationResult, error) {
			return s.GenerateSubscriptionInvoice(ctx, dto.GenerateSubscriptionInvoiceRequest{
				SubscriptionID:  targetID,
				PeriodStart:     req.PeriodStart,
				PeriodEnd:       req.PeriodEnd,
				AutoSend:        req.AutoSend,
				ForceRegenerate: req.ForceRegenerate,
			})
		})
	return result, nil
}

// resolveDiscounts never fails generation: lookup errors fall back to zero
// discount with a warning
func (s *subscriptionInvoiceService) resolveDiscounts(ctx context.Context, params DiscountResolutionParams, result *dto.InvoiceGenerationResult) *DiscountResolutionResult {
	return resolveDiscountsOrZero(ctx, s.discountService, s.ServiceParams, params, result)
}

// autoSend walks the freshly created draft through approval and sending;
// failures degrade to warnings since the invoice itself already exists
func (s *subscriptionInvoiceService) autoSend(ctx context.Context, enabled bool, invoiceID string, result *dto.InvoiceGenerationResult) {
	autoSendInvoice(ctx, s.invoiceService, s.ServiceParams, enabled, invoiceID, result)
}

// billingPeriod defaults to the previous calendar month
func billingPeriod(start, end *time.Time) (time.Time, time.Time) {
	if start != nil && end != nil {
		return *start, *end
	}
	now := time.Now().UTC()
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return firstOfMonth.AddDate(0, -1, 0), firstOfMonth.AddDate(0, 0, -1)
}

func nextBillingDate(sub *subscription.Subscription, periodEnd time.Time) *time.Time {
	if !sub.AutoRenew {
		return nil
	}
	if sub.NextBillingDate != nil && sub.NextBillingDate.After(periodEnd) {
		return sub.NextBillingDate
	}
	next := periodEnd.AddDate(0, 0, 1)
	return &next
}
