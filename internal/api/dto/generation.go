package dto

import (
	"time"

	ierr "github.com/talktorobson/prima-facie-sub001/internal/errors"
	"github.com/talktorobson/prima-facie-sub001/internal/validator"
)

// GenerateSubscriptionInvoiceRequest asks for one subscription invoice for
// a billing period. When the period is omitted the previous calendar month
// is billed.
type GenerateSubscriptionInvoiceRequest struct {
	SubscriptionID string `json:"subscription_id" validate:"required"`

	PeriodStart *time.Time `json:"period_start,omitempty"`
	PeriodEnd   *time.Time `json:"period_end,omitempty"`

	// auto_send moves the invoice straight through approval to sent
	AutoSend bool `json:"auto_send,omitempty"`

	// force_regenerate bypasses the (subscription, period) uniqueness check
	ForceRegenerate bool `json:"force_regenerate,omitempty"`
}

func (r *GenerateSubscriptionInvoiceRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	return validatePeriod(r.PeriodStart, r.PeriodEnd)
}

// GenerateBatchSubscriptionInvoicesRequest asks for invoices for many
// subscriptions in one run. An empty id list targets every active
// subscription of the law firm.
type GenerateBatchSubscriptionInvoicesRequest struct {
	SubscriptionIDs []string `json:"subscription_ids,omitempty"`

	PeriodStart *time.Time `json:"period_start,omitempty"`
	PeriodEnd   *time.Time `json:"period_end,omitempty"`

	AutoSend        bool `json:"auto_send,omitempty"`
	ForceRegenerate bool `json:"force_regenerate,omitempty"`
}

func (r *GenerateBatchSubscriptionInvoicesRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	return validatePeriod(r.PeriodStart, r.PeriodEnd)
}

// GenerateCaseInvoiceRequest asks for one case invoice for a matter. The
// optional period narrows which time entries are billed; by default every
// entry recorded on the matter is.
type GenerateCaseInvoiceRequest struct {
	MatterID string `json:"matter_id" validate:"required"`

	PeriodStart *time.Time `json:"period_start,omitempty"`
	PeriodEnd   *time.Time `json:"period_end,omitempty"`

	AutoSend bool `json:"auto_send,omitempty"`
}

func (r *GenerateCaseInvoiceRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	return validatePeriod(r.PeriodStart, r.PeriodEnd)
}

// GenerateBatchCaseInvoicesRequest asks for case invoices for many matters
// in one run
type GenerateBatchCaseInvoicesRequest struct {
	MatterIDs []string `json:"matter_ids" validate:"required,min=1"`

	PeriodStart *time.Time `json:"period_start,omitempty"`
	PeriodEnd   *time.Time `json:"period_end,omitempty"`

	AutoSend bool `json:"auto_send,omitempty"`
}

func (r *GenerateBatchCaseInvoicesRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	return validatePeriod(r.PeriodStart, r.PeriodEnd)
}

// GeneratePaymentPlanInvoiceRequest asks for one installment invoice.
// Without an explicit installment number the next unbilled installment is
// generated.
type GeneratePaymentPlanInvoiceRequest struct {
	PaymentPlanID string `json:"payment_plan_id" validate:"required"`

	InstallmentNumber *int `json:"installment_number,omitempty"`

	// scheduled_date overrides the due date computed from the plan schedule
	ScheduledDate *time.Time `json:"scheduled_date,omitempty"`

	AutoSend bool `json:"auto_send,omitempty"`

	// force_regenerate bypasses the (plan, installment) uniqueness check
	ForceRegenerate bool `json:"force_regenerate,omitempty"`
}

func (r *GeneratePaymentPlanInvoiceRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if r.InstallmentNumber != nil && *r.InstallmentNumber < 1 {
		return ierr.NewError("installment_number must be at least 1").
			WithHint("Número da parcela deve ser no mínimo 1").
			WithReportableDetails(map[string]any{
				"installment_number": *r.InstallmentNumber,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

func validatePeriod(start, end *time.Time) error {
	if start == nil || end == nil {
		if start != nil || end != nil {
			return ierr.NewError("period_start and period_end must be set together").
				WithHint("Informe o período completo ou nenhuma data").
				Mark(ierr.ErrValidation)
		}
		return nil
	}
	if end.Before(*start) {
		return ierr.NewError("period_end must not be before period_start").
			WithHint("Data final do período anterior à data inicial").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// InvoiceGenerationResult is the outcome of one invoice generation attempt
type InvoiceGenerationResult struct {
	Success  bool             `json:"success"`
	Invoice  *InvoiceResponse `json:"invoice,omitempty"`
	Error    string           `json:"error,omitempty"`
	Warnings []string         `json:"warnings,omitempty"`
}

// BatchGenerationError records one failed target inside a batch run
type BatchGenerationError struct {
	ClientID string `json:"client_id,omitempty"`
	TargetID string `json:"target_id"`
	Error    string `json:"error"`
}

// BatchInvoiceGenerationResult is the aggregate outcome of a batch run.
// SuccessfulGenerations + FailedGenerations always equals TotalRequested.
type BatchInvoiceGenerationResult struct {
	Success               bool                   `json:"success"`
	BatchID               string                 `json:"batch_id"`
	TotalRequested        int                    `json:"total_requested"`
	SuccessfulGenerations int                    `json:"successful_generations"`
	FailedGenerations     int                    `json:"failed_generations"`
	Invoices              []*InvoiceResponse     `json:"invoices"`
	Errors                []BatchGenerationError `json:"errors,omitempty"`
}
