package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/talktorobson/prima-facie-sub001/internal/api/dto"
	"github.com/talktorobson/prima-facie-sub001/internal/billing"
	"github.com/talktorobson/prima-facie-sub001/internal/domain/invoice"
	"github.com/talktorobson/prima-facie-sub001/internal/domain/paymentplan"
	ierr "github.com/talktorobson/prima-facie-sub001/internal/errors"
	"github.com/talktorobson/prima-facie-sub001/internal/types"
)

// PaymentPlanInvoiceService generates installment invoices for payment
// plans: lazily, one detail row per generated installment, with late fees
// for installments generated past their grace period.
type PaymentPlanInvoiceService interface {
	GeneratePaymentPlanInvoice(ctx context.Context, req dto.GeneratePaymentPlanInvoiceRequest) (*dto.InvoiceGenerationResult, error)

	// GenerateAllRemainingInstallments generates every not-yet-invoiced
	// installment of the plan in one batch
	GenerateAllRemainingInstallments(ctx context.Context, paymentPlanID string) (*dto.BatchInvoiceGenerationResult, error)

	// GenerateOverdueInstallments sweeps all active plans of the law firm
	// and generates every unbilled installment already past the given
	// grace period
	GenerateOverdueInstallments(ctx context.Context, gracePeriodDays int) (*dto.BatchInvoiceGenerationResult, error)
}

type paymentPlanInvoiceService struct {
	ServiceParams
	invoiceService InvoiceService
}

func NewPaymentPlanInvoiceService(params ServiceParams) PaymentPlanInvoiceService {
	return &paymentPlanInvoiceService{
		ServiceParams:  params,
		invoiceService: NewInvoiceService(params),
	}
}

func (s *paymentPlanInvoiceService) GeneratePaymentPlanInvoice(ctx context.Context, req dto.GeneratePaymentPlanInvoiceRequest) (*dto.InvoiceGenerationResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	plan, err := s.getPlan(ctx, req.PaymentPlanID)
	if err != nil {
		return nil, err
	}

	billed, err := s.InvoiceRepo.GetInstallmentNumbers(ctx, plan.ID)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Falha ao buscar parcelas já faturadas").
			Mark(ierr.ErrDatabase)
	}

	installmentNumber := 0
	if req.InstallmentNumber != nil {
		installmentNumber = *req.InstallmentNumber
	} else {
		installmentNumber = billing.NextInstallmentNumber(plan, billed)
		if installmentNumber == 0 {
			return nil, ierr.NewError("all installments already invoiced").
				WithHint("Todas as parcelas deste plano já foram faturadas").
				WithReportableDetails(map[string]any{
					"payment_plan_id": plan.ID,
					"installments":    plan.Installments,
				}).
				Mark(ierr.ErrInvalidOperation)
		}
	}

	if !req.ForceRegenerate {
		exists, err := s.InvoiceRepo.ExistsForInstallment(ctx, plan.ID, installmentNumber)
		if err != nil {
			return nil, ierr.WithError(err).
				WithHint("Falha ao verificar faturas existentes").
				Mark(ierr.ErrDatabase)
		}
		if exists {
			return nil, ierr.NewError("invoice already exists for installment").
				WithHint("Já existe uma fatura para esta parcela").
				WithReportableDetails(map[string]any{
					"payment_plan_id":    plan.ID,
					"installment_number": installmentNumber,
				}).
				Mark(ierr.ErrAlreadyExists)
		}
	}

	installment, err := billing.ComputeInstallment(billing.InstallmentParams{
		Plan:              plan,
		InstallmentNumber: installmentNumber,
		ScheduledDate:     req.ScheduledDate,
		Now:               time.Now().UTC(),
		LateFeeCapPercent: s.Config.Billing.LateFeeCapPercent,
	})
	if err != nil {
		return nil, err
	}

	subtotal := plan.InstallmentAmount.Add(installment.LateFee)

	status := types.InvoiceStatusDraft
	if installment.IsOverdue {
		// an installment generated past its grace period starts overdue
		status = types.InvoiceStatusOverdue
	}

	dueDate := installment.DueDate
	inv := &invoice.Invoice{
		ClientID:      plan.ClientID,
		InvoiceType:   types.InvoiceTypePaymentPlan,
		InvoiceStatus: status,
		Subtotal:      subtotal,
		DueDate:       &dueDate,
		PaymentPlanID: &plan.ID,
		MatterID:      plan.MatterID,
		Description:   fmt.Sprintf("Parcela %d de %d", installment.InstallmentNumber, plan.Installments),
		PaymentPlanDetail: &invoice.PaymentPlanInvoiceDetail{
			PaymentPlanID:     plan.ID,
			InstallmentNumber: installment.InstallmentNumber,
			TotalInstallments: plan.Installments,
			InstallmentAmount: plan.InstallmentAmount,
			ScheduledDate:     installment.DueDate,
			GracePeriodDays:   plan.GracePeriodDays,
			LateFeeRate:       plan.LateFeeRate,
			LateFeeAmount:     installment.LateFee,
			IsFinal:           installment.IsFinal,
			AutoGenerateNext:  !installment.IsFinal,
		},
	}

	inv.LineItems = append(inv.LineItems, invoice.NewLineItem(
		types.LineItemTypeServiceFee,
		fmt.Sprintf("Parcela %d de %d", installment.InstallmentNumber, plan.Installments),
		decimal.NewFromInt(1),
		plan.InstallmentAmount,
		inv.Currency,
	))
	if installment.LateFee.IsPositive() {
		inv.LineItems = append(inv.LineItems, invoice.NewLineItem(
			types.LineItemTypeLateFee,
			fmt.Sprintf("Multa por atraso (%d dias)", installment.DaysOverdue),
			decimal.NewFromInt(1),
			installment.LateFee,
			inv.Currency,
		))
	}

	result := &dto.InvoiceGenerationResult{}

	resp, err := s.invoiceService.CreateInvoice(ctx, inv)
	if err != nil {
		return nil, err
	}

	result.Success = true
	result.Invoice = resp

	if installment.IsFinal {
		plan.PlanStatus = types.PaymentPlanStatusCompleted
		plan.UpdatedAt = time.Now().UTC()
		plan.UpdatedBy = types.GetUserID(ctx)
		if err := s.PaymentPlanRepo.Update(ctx, plan); err != nil {
			s.Logger.Errorw("failed to mark payment plan completed",
				"payment_plan_id", plan.ID,
				"error", err,
			)
			result.Warnings = append(result.Warnings, "Última parcela faturada mas o plano não foi marcado como concluído")
		}
	}

	autoSendInvoice(ctx, s.invoiceService, s.ServiceParams, req.AutoSend, resp.ID, result)
	return result, nil
}

func (s *paymentPlanInvoiceService) GenerateAllRemainingInstallments(ctx context.Context, paymentPlanID string) (*dto.BatchInvoiceGenerationResult, error) {
	plan, err := s.getPlan(ctx, paymentPlanID)
	if err != nil {
		return nil, err
	}

	billed, err := s.InvoiceRepo.GetInstallmentNumbers(ctx, plan.ID)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Falha ao buscar parcelas já faturadas").
			Mark(ierr.ErrDatabase)
	}

	targets := remainingInstallments(plan, billed, nil)
	return s.runInstallmentBatch(ctx, targets), nil
}

func (s *paymentPlanInvoiceService) GenerateOverdueInstallments(ctx context.Context, gracePeriodDays int) (*dto.BatchInvoiceGenerationResult, error) {
	plans, err := s.PaymentPlanRepo.ListActive(ctx)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Falha ao listar planos de parcelamento ativos").
			Mark(ierr.ErrDatabase)
	}

	now := time.Now().UTC()
	var targets []installmentTarget
	for _, plan := range plans {
		billed, err := s.InvoiceRepo.GetInstallmentNumbers(ctx, plan.ID)
		if err != nil {
			return nil, ierr.WithError(err).
				WithHint("Falha ao buscar parcelas já faturadas").
				Mark(ierr.ErrDatabase)
		}
		overdueOnly := func(dueDate time.Time) bool {
			return now.After(dueDate.AddDate(0, 0, gracePeriodDays))
		}
		targets = append(targets, remainingInstallments(plan, billed, overdueOnly)...)
	}

	return s.runInstallmentBatch(ctx, targets), nil
}

// installmentTarget identifies one (plan, installment) pair inside a batch
type installmentTarget struct {
	planID            string
	installmentNumber int
}

func (t installmentTarget) String() string {
	return fmt.Sprintf("%s/parcela-%d", t.planID, t.installmentNumber)
}

// remainingInstallments lists the plan's unbilled installment numbers,
// optionally restricted by a due-date predicate
func remainingInstallments(plan *paymentplan.PaymentPlan, billed []int, keep func(dueDate time.Time) bool) []installmentTarget {
	taken := make(map[int]bool, len(billed))
	for _, n := range billed {
		taken[n] = true
	}

	var targets []installmentTarget
	for n := 1; n <= plan.Installments; n++ {
		if taken[n] {
			continue
		}
		if keep != nil {
			dueDate := plan.Frequency.AddPeriods(plan.StartDate, n-1)
			if !keep(dueDate) {
				continue
			}
		}
		targets = append(targets, installmentTarget{planID: plan.ID, installmentNumber: n})
	}
	return targets
}

func (s *paymentPlanInvoiceService) runInstallmentBatch(ctx context.Context, targets []installmentTarget) *dto.BatchInvoiceGenerationResult {
	byID := make(map[string]installmentTarget, len(targets))
	targetIDs := make([]string, len(targets))
	for i, target := range targets {
		id := target.String()
		byID[id] = target
		targetIDs[i] = id
	}

	return runBatchGeneration(ctx, s.ServiceParams, types.InvoiceTypePaymentPlan, targetIDs,
		func(ctx context.Context, targetID string) (*dto.InvoiceGenerationResult, error) {
			target := byID[targetID]
			n := target.installmentNumber
			return s.GeneratePaymentPlanInvoice(ctx, dto.GeneratePaymentPlanInvoiceRequest{
				PaymentPlanID:     target.planID,
				InstallmentNumber: &n,
			})
		})
}

func (s *paymentPlanInvoiceService) getPlan(ctx context.Context, id string) (*paymentplan.PaymentPlan, error) {
	plan, err := s.PaymentPlanRepo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, paymentplan.ErrPlanNotFound) {
			return nil, ierr.WithError(err).
				WithHint("Plano de parcelamento não encontrado").
				WithReportableDetails(map[string]any{
					"payment_plan_id": id,
				}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Falha ao buscar plano de parcelamento").
			Mark(ierr.ErrDatabase)
	}
	return plan, nil
}
