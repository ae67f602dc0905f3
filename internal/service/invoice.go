package service

import (
	"context"
	"errors"
	"time"

	"github.com/talktorobson/prima-facie-sub001/internal/api/dto"
	"github.com/talktorobson/prima-facie-sub001/internal/domain/invoice"
	ierr "github.com/talktorobson/prima-facie-sub001/internal/errors"
	"github.com/talktorobson/prima-facie-sub001/internal/types"
)

// InvoiceService assembles invoices and drives their status machine. The
// assembler is the only writer of invoice rows: header, detail row and line
// items are persisted in one transaction, and the structure is immutable
// afterwards except for status transitions and payment allocation.
type InvoiceService interface {
	// CreateInvoice finalizes totals, fills identifiers and persists the
	// header, detail row and line items atomically
	CreateInvoice(ctx context.Context, inv *invoice.Invoice) (*dto.InvoiceResponse, error)

	GetInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error)
	ListInvoices(ctx context.Context, filter *types.InvoiceFilter) (*dto.ListInvoicesResponse, error)

	// ApproveInvoice moves a draft (through pending_review) to approved
	ApproveInvoice(ctx context.Context, id string) error
	// SendInvoice moves an approved invoice to sent and stamps SentAt
	SendInvoice(ctx context.Context, id string) error
	// MarkViewed moves a sent invoice to viewed and stamps ViewedAt
	MarkViewed(ctx context.Context, id string) error
	// RecordPayment allocates a payment and moves the invoice to paid or
	// partial_paid
	RecordPayment(ctx context.Context, id string, req dto.RecordPaymentRequest) error
	// CancelInvoice cancels the invoice if the status machine allows it
	CancelInvoice(ctx context.Context, id string) error

	// ListGenerationLogs returns the firm's batch generation audit rows,
	// newest first
	ListGenerationLogs(ctx context.Context, filter *types.QueryFilter) (*dto.ListGenerationLogsResponse, error)
}

type invoiceService struct {
	ServiceParams
}

func NewInvoiceService(params ServiceParams) InvoiceService {
	return &invoiceService{ServiceParams: params}
}

func (s *invoiceService) CreateInvoice(ctx context.Context, inv *invoice.Invoice) (*dto.InvoiceResponse, error) {
	if err := types.ValidateTenantContext(ctx); err != nil {
		return nil, err
	}

	s.prepare(ctx, inv)

	if err := inv.Validate(); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Fatura inválida").
			Mark(ierr.ErrValidation)
	}

	err := s.DB.WithTx(ctx, func(tx context.Context) error {
		return s.InvoiceRepo.CreateWithDetails(tx, inv)
	})
	if err != nil {
		if ierr.IsAlreadyExists(err) || errors.Is(err, invoice.ErrInvoiceAlreadyExists) {
			return nil, ierr.WithError(err).
				WithHint("Já existe uma fatura para este período ou parcela").
				WithReportableDetails(map[string]any{
					"invoice_number": inv.InvoiceNumber,
				}).
				Mark(ierr.ErrAlreadyExists)
		}
		return nil, ierr.WithError(err).
			WithHint("Falha ao criar fatura").
			Mark(ierr.ErrDatabase)
	}

	s.Logger.Infow("created invoice",
		"invoice_id", inv.ID,
		"invoice_number", inv.InvoiceNumber,
		"invoice_type", inv.InvoiceType,
		"total_amount", inv.TotalAmount,
	)

	return dto.NewInvoiceResponse(inv), nil
}

// prepare fills identifiers, dates, totals and back-references so callers
// only describe the billing content
func (s *invoiceService) prepare(ctx context.Context, inv *invoice.Invoice) {
	if inv.ID == "" {
		inv.ID = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE)
	}
	if inv.InvoiceNumber == "" {
		inv.InvoiceNumber = types.GenerateInvoiceNumber()
	}
	if inv.Currency == "" {
		inv.Currency = s.Config.Billing.DefaultCurrency
	}
	if inv.InvoiceStatus == "" {
		inv.InvoiceStatus = types.InvoiceStatusDraft
	}
	if inv.PaymentTerms == "" {
		inv.PaymentTerms = types.PaymentTermsNet10
	}
	if inv.IssueDate.IsZero() {
		inv.IssueDate = time.Now().UTC()
	}
	if inv.DueDate == nil {
		due := inv.IssueDate.AddDate(0, 0, inv.PaymentTerms.DueDays())
		inv.DueDate = &due
	}
	if inv.BaseModel.LawFirmID == "" {
		inv.BaseModel = types.GetDefaultBaseModel(ctx)
	}

	// total = subtotal - discount + tax
	inv.TotalAmount = inv.Subtotal.Sub(inv.DiscountAmount).Add(inv.TaxAmount).Round(2)

	for _, item := range inv.LineItems {
		item.InvoiceID = inv.ID
		item.ClientID = inv.ClientID
		if item.Currency == "" {
			item.Currency = inv.Currency
		}
		if item.BaseModel.LawFirmID == "" {
			item.BaseModel = inv.BaseModel
		}
	}

	if d := inv.SubscriptionDetail; d != nil {
		if d.ID == "" {
			d.ID = types.GenerateUUID()
		}
		d.InvoiceID = inv.ID
		if d.BaseModel.LawFirmID == "" {
			d.BaseModel = inv.BaseModel
		}
	}
	if d := inv.CaseDetail; d != nil {
		if d.ID == "" {
			d.ID = types.GenerateUUID()
		}
		d.InvoiceID = inv.ID
		if d.BaseModel.LawFirmID == "" {
			d.BaseModel = inv.BaseModel
		}
	}
	if d := inv.PaymentPlanDetail; d != nil {
		if d.ID == "" {
			d.ID = types.GenerateUUID()
		}
		d.InvoiceID = inv.ID
		if d.BaseModel.LawFirmID == "" {
			d.BaseModel = inv.BaseModel
		}
	}
}

func (s *invoiceService) GetInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	inv, err := s.getInvoice(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewInvoiceResponse(inv), nil
}

func (s *invoiceService) getInvoice(ctx context.Context, id string) (*invoice.Invoice, error) {
	inv, err := s.InvoiceRepo.Get(ctx, id)
	if err != nil {
		if invoice.IsNotFoundError(err) || ierr.IsNotFound(err) {
			return nil, ierr.WithError(err).
				WithHint("Fatura não encontrada").
				WithReportableDetails(map[string]any{
					"invoice_id": id,
				}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Falha ao buscar fatura").
			Mark(ierr.ErrDatabase)
	}
	return inv, nil
}

func (s *invoiceService) ListInvoices(ctx context.Context, filter *types.InvoiceFilter) (*dto.ListInvoicesResponse, error) {
	if filter == nil {
		filter = types.NewInvoiceFilter()
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	invoices, err := s.InvoiceRepo.List(ctx, filter)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Falha ao listar faturas").
			Mark(ierr.ErrDatabase)
	}

	total, err := s.InvoiceRepo.Count(ctx, filter)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Falha ao contar faturas").
			Mark(ierr.ErrDatabase)
	}

	items := make([]*dto.InvoiceResponse, len(invoices))
	for i, inv := range invoices {
		items[i] = dto.NewInvoiceResponse(inv)
	}

	resp := types.NewListResponse(items, total, filter.GetLimit(), filter.GetOffset())
	return &resp, nil
}

func (s *invoiceService) ApproveInvoice(ctx context.Context, id string) error {
	return s.withInvoice(ctx, id, func(inv *invoice.Invoice) error {
		if inv.InvoiceStatus == types.InvoiceStatusDraft {
			if err := s.transition(inv, types.InvoiceStatusPendingReview); err != nil {
				return err
			}
		}
		return s.transition(inv, types.InvoiceStatusApproved)
	})
}

func (s *invoiceService) SendInvoice(ctx context.Context, id string) error {
	return s.withInvoice(ctx, id, func(inv *invoice.Invoice) error {
		if err := s.transition(inv, types.InvoiceStatusSent); err != nil {
			return err
		}
		now := time.Now().UTC()
		inv.SentAt = &now
		return nil
	})
}

func (s *invoiceService) MarkViewed(ctx context.Context, id string) error {
	return s.withInvoice(ctx, id, func(inv *invoice.Invoice) error {
		if err := s.transition(inv, types.InvoiceStatusViewed); err != nil {
			return err
		}
		now := time.Now().UTC()
		inv.ViewedAt = &now
		return nil
	})
}

func (s *invoiceService) RecordPayment(ctx context.Context, id string, req dto.RecordPaymentRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	return s.withInvoice(ctx, id, func(inv *invoice.Invoice) error {
		newPaid := inv.AmountPaid.Add(req.Amount)
		if newPaid.GreaterThan(inv.TotalAmount) {
			return ierr.NewError("payment exceeds remaining amount").
				WithHint("Pagamento excede o valor restante da fatura").
				WithReportableDetails(map[string]any{
					"remaining": inv.GetRemainingAmount().String(),
					"amount":    req.Amount.String(),
				}).
				Mark(ierr.ErrValidation)
		}

		target := types.InvoiceStatusPartialPaid
		if newPaid.Equal(inv.TotalAmount) {
			target = types.InvoiceStatusPaid
		}
		if err := s.transition(inv, target); err != nil {
			return err
		}

		inv.AmountPaid = newPaid
		paidAt := time.Now().UTC()
		if req.PaymentDate != nil {
			paidAt = *req.PaymentDate
		}
		if target == types.InvoiceStatusPaid {
			inv.PaidAt = &paidAt
		}
		return nil
	})
}

func (s *invoiceService) CancelInvoice(ctx context.Context, id string) error {
	return s.withInvoice(ctx, id, func(inv *invoice.Invoice) error {
		return s.transition(inv, types.InvoiceStatusCancelled)
	})
}

// withInvoice loads, mutates and persists the invoice header
func (s *invoiceService) withInvoice(ctx context.Context, id string, fn func(inv *invoice.Invoice) error) error {
	inv, err := s.getInvoice(ctx, id)
	if err != nil {
		return err
	}

	if err := fn(inv); err != nil {
		return err
	}

	inv.UpdatedAt = time.Now().UTC()
	inv.UpdatedBy = types.GetUserID(ctx)

	if err := s.InvoiceRepo.Update(ctx, inv); err != nil {
		return ierr.WithError(err).
			WithHint("Falha ao atualizar fatura").
			Mark(ierr.ErrDatabase)
	}

	s.Logger.Infow("updated invoice status",
		"invoice_id", inv.ID,
		"invoice_status", inv.InvoiceStatus,
	)
	return nil
}

func (s *invoiceService) transition(inv *invoice.Invoice, target types.InvoiceStatus) error {
	if !inv.InvoiceStatus.CanTransitionTo(target) {
		return ierr.WithError(invoice.ErrInvalidStatusTransition).
			WithHint("Transição de status não permitida").
			WithReportableDetails(map[string]any{
				"from": inv.InvoiceStatus,
				"to":   target,
			}).
			Mark(ierr.ErrInvalidOperation)
	}
	inv.InvoiceStatus = target
	return nil
}

func (s *invoiceService) ListGenerationLogs(ctx context.Context, filter *types.QueryFilter) (*dto.ListGenerationLogsResponse, error) {
	if filter == nil {
		filter = types.NewDefaultQueryFilter()
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	logs, err := s.GenerationLogRepo.List(ctx, filter)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Falha ao listar registros de geração").
			Mark(ierr.ErrDatabase)
	}

	items := make([]*dto.GenerationLogResponse, len(logs))
	for i, log := range logs {
		items[i] = &dto.GenerationLogResponse{GenerationLog: log}
	}

	resp := types.NewListResponse(items, len(items), filter.GetLimit(), filter.GetOffset())
	return &resp, nil
}
