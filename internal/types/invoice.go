package types

import (
	"github.com/samber/lo"

	ierr "github.com/talktorobson/prima-facie-sub001/internal/errors"
)

// InvoiceType categorizes what the invoice bills for. Exactly one detail row
// of the matching type exists per invoice.
type InvoiceType string

const (
	// InvoiceTypeSubscription bills a legal-plan subscription period,
	// including usage overages and proration
	InvoiceTypeSubscription InvoiceType = "subscription"
	// InvoiceTypeCaseBilling bills a matter per its case billing method
	InvoiceTypeCaseBilling InvoiceType = "case_billing"
	// InvoiceTypePaymentPlan bills one installment of a payment plan
	InvoiceTypePaymentPlan InvoiceType = "payment_plan"
	// InvoiceTypeTimeBased bills loose time entries outside a matter
	InvoiceTypeTimeBased InvoiceType = "time_based"
	// InvoiceTypeHybrid combines subscription and case charges
	InvoiceTypeHybrid InvoiceType = "hybrid"
	// InvoiceTypeAdjustment carries manual corrections
	InvoiceTypeAdjustment InvoiceType = "adjustment"
	// InvoiceTypeLateFee bills accumulated late fees on their own
	InvoiceTypeLateFee InvoiceType = "late_fee"
)

func (t InvoiceType) String() string {
	return string(t)
}

func (t InvoiceType) Validate() error {
	allowed := []InvoiceType{
		InvoiceTypeSubscription,
		InvoiceTypeCaseBilling,
		InvoiceTypePaymentPlan,
		InvoiceTypeTimeBased,
		InvoiceTypeHybrid,
		InvoiceTypeAdjustment,
		InvoiceTypeLateFee,
	}
	if !lo.Contains(allowed, t) {
		return ierr.NewError("invalid invoice type").
			WithHint("Tipo de fatura inválido").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// InvoiceStatus is the invoice lifecycle state. The assembler only ever
// creates invoices in draft (or overdue, for installment invoices generated
// past their grace period); everything after that is a recorded transition.
type InvoiceStatus string

const (
	InvoiceStatusDraft         InvoiceStatus = "draft"
	InvoiceStatusPendingReview InvoiceStatus = "pending_review"
	InvoiceStatusApproved      InvoiceStatus = "approved"
	InvoiceStatusSent          InvoiceStatus = "sent"
	InvoiceStatusViewed        InvoiceStatus = "viewed"
	InvoiceStatusPaid          InvoiceStatus = "paid"
	InvoiceStatusPartialPaid   InvoiceStatus = "partial_paid"
	InvoiceStatusOverdue       InvoiceStatus = "overdue"
	InvoiceStatusDisputed      InvoiceStatus = "disputed"
	InvoiceStatusCancelled     InvoiceStatus = "cancelled"
	InvoiceStatusRefunded      InvoiceStatus = "refunded"
)

func (s InvoiceStatus) String() string {
	return string(s)
}

func (s InvoiceStatus) Validate() error {
	allowed := []InvoiceStatus{
		InvoiceStatusDraft,
		InvoiceStatusPendingReview,
		InvoiceStatusApproved,
		InvoiceStatusSent,
		InvoiceStatusViewed,
		InvoiceStatusPaid,
		InvoiceStatusPartialPaid,
		InvoiceStatusOverdue,
		InvoiceStatusDisputed,
		InvoiceStatusCancelled,
		InvoiceStatusRefunded,
	}
	if !lo.Contains(allowed, s) {
		return ierr.NewError("invalid invoice status").
			WithHint("Status de fatura inválido").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// invoiceStatusTransitions encodes the legal status machine:
// draft → pending_review → approved → sent → viewed →
// {paid | partial_paid | overdue | disputed} → {cancelled | refunded}
var invoiceStatusTransitions = map[InvoiceStatus][]InvoiceStatus{
	InvoiceStatusDraft:         {InvoiceStatusPendingReview, InvoiceStatusCancelled},
	InvoiceStatusPendingReview: {InvoiceStatusApproved, InvoiceStatusDraft, InvoiceStatusCancelled},
	InvoiceStatusApproved:      {InvoiceStatusSent, InvoiceStatusCancelled},
	InvoiceStatusSent:          {InvoiceStatusViewed, InvoiceStatusPaid, InvoiceStatusPartialPaid, InvoiceStatusOverdue, InvoiceStatusDisputed, InvoiceStatusCancelled},
	InvoiceStatusViewed:        {InvoiceStatusPaid, InvoiceStatusPartialPaid, InvoiceStatusOverdue, InvoiceStatusDisputed, InvoiceStatusCancelled},
	InvoiceStatusPartialPaid:   {InvoiceStatusPaid, InvoiceStatusOverdue, InvoiceStatusDisputed, InvoiceStatusCancelled},
	InvoiceStatusOverdue:       {InvoiceStatusPaid, InvoiceStatusPartialPaid, InvoiceStatusDisputed, InvoiceStatusCancelled},
	InvoiceStatusDisputed:      {InvoiceStatusPaid, InvoiceStatusPartialPaid, InvoiceStatusCancelled, InvoiceStatusRefunded},
	InvoiceStatusPaid:          {InvoiceStatusRefunded},
	InvoiceStatusCancelled:     {},
	InvoiceStatusRefunded:      {},
}

// CanTransitionTo reports whether the status machine allows moving from s
// to target.
func (s InvoiceStatus) CanTransitionTo(target InvoiceStatus) bool {
	return lo.Contains(invoiceStatusTransitions[s], target)
}

// LineItemType tags what a line item charges for
type LineItemType string

const (
	LineItemTypeSubscriptionFee LineItemType = "subscription_fee"
	LineItemTypeCaseFee         LineItemType = "case_fee"
	LineItemTypeSuccessFee      LineItemType = "success_fee"
	LineItemTypeTimeEntry       LineItemType = "time_entry"
	LineItemTypeExpense         LineItemType = "expense"
	LineItemTypeDiscount        LineItemType = "discount"
	LineItemTypeTax             LineItemType = "tax"
	LineItemTypeAdjustment      LineItemType = "adjustment"
	LineItemTypeLateFee         LineItemType = "late_fee"
	LineItemTypeServiceFee      LineItemType = "service_fee"
)

func (t LineItemType) String() string {
	return string(t)
}

func (t LineItemType) Validate() error {
	allowed := []LineItemType{
		LineItemTypeSubscriptionFee,
		LineItemTypeCaseFee,
		LineItemTypeSuccessFee,
		LineItemTypeTimeEntry,
		LineItemTypeExpense,
		LineItemTypeDiscount,
		LineItemTypeTax,
		LineItemTypeAdjustment,
		LineItemTypeLateFee,
		LineItemTypeServiceFee,
	}
	if !lo.Contains(allowed, t) {
		return ierr.NewError("invalid line item type").
			WithHint("Tipo de item de fatura inválido").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// IsSigned reports whether the line carries a signed total directly instead
// of quantity × unit price. Discount and adjustment lines are signed.
func (t LineItemType) IsSigned() bool {
	return t == LineItemTypeDiscount || t == LineItemTypeAdjustment
}

// PaymentTerms controls the default due date offset from the issue date
type PaymentTerms string

const (
	PaymentTermsDueOnReceipt PaymentTerms = "due_on_receipt"
	PaymentTermsNet10        PaymentTerms = "net_10"
	PaymentTermsNet15        PaymentTerms = "net_15"
	PaymentTermsNet30        PaymentTerms = "net_30"
	PaymentTermsNet60        PaymentTerms = "net_60"
)

func (p PaymentTerms) Validate() error {
	allowed := []PaymentTerms{
		PaymentTermsDueOnReceipt,
		PaymentTermsNet10,
		PaymentTermsNet15,
		PaymentTermsNet30,
		PaymentTermsNet60,
	}
	if !lo.Contains(allowed, p) {
		return ierr.NewError("invalid payment terms").
			WithHint("Condição de pagamento inválida").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// DueDays returns the number of days between issue and due date
func (p PaymentTerms) DueDays() int {
	switch p {
	case PaymentTermsNet10:
		return 10
	case PaymentTermsNet15:
		return 15
	case PaymentTermsNet30:
		return 30
	case PaymentTermsNet60:
		return 60
	default:
		return 0
	}
}
