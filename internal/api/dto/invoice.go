package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/talktorobson/prima-facie-sub001/internal/domain/invoice"
	ierr "github.com/talktorobson/prima-facie-sub001/internal/errors"
	"github.com/talktorobson/prima-facie-sub001/internal/types"
	"github.com/talktorobson/prima-facie-sub001/internal/validator"
)

// InvoiceResponse is the external representation of an invoice together
// with its line items and type-specific detail row
type InvoiceResponse struct {
	*invoice.Invoice
}

// NewInvoiceResponse creates a new invoice response from an invoice
func NewInvoiceResponse(inv *invoice.Invoice) *InvoiceResponse {
	if inv == nil {
		return nil
	}
	return &InvoiceResponse{Invoice: inv}
}

// ListInvoicesResponse represents a paginated list of invoices
type ListInvoicesResponse = types.ListResponse[*InvoiceResponse]

// RecordPaymentRequest represents a payment allocation against an invoice
type RecordPaymentRequest struct {
	// amount is the payment amount to allocate against the invoice
	Amount decimal.Decimal `json:"amount" validate:"required"`

	// payment_date defaults to now when omitted
	PaymentDate *time.Time `json:"payment_date,omitempty"`
}

func (r *RecordPaymentRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if !r.Amount.IsPositive() {
		return ierr.NewError("amount must be positive").
			WithHint("O valor do pagamento deve ser positivo").
			WithReportableDetails(map[string]any{
				"amount": r.Amount.String(),
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// GenerationLogResponse is the external representation of a batch audit row
type GenerationLogResponse struct {
	*invoice.GenerationLog
}

// ListGenerationLogsResponse represents a paginated list of generation logs
type ListGenerationLogsResponse = types.ListResponse[*GenerationLogResponse]
