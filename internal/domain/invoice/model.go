package invoice

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/talktorobson/prima-facie-sub001/internal/types"
)

// Invoice is the header record. Exactly one detail row of the matching type
// exists per invoice; line items are exclusively owned and written
// atomically with the header.
type Invoice struct {
	ID             string              `db:"id" json:"id"`
	ClientID       string              `db:"client_id" json:"client_id"`
	InvoiceNumber  string              `db:"invoice_number" json:"invoice_number"`
	InvoiceType    types.InvoiceType   `db:"invoice_type" json:"invoice_type"`
	InvoiceStatus  types.InvoiceStatus `db:"invoice_status" json:"invoice_status"`
	Subtotal       decimal.Decimal     `db:"subtotal" json:"subtotal"`
	DiscountAmount decimal.Decimal     `db:"discount_amount" json:"discount_amount"`
	TaxAmount      decimal.Decimal     `db:"tax_amount" json:"tax_amount"`
	TotalAmount    decimal.Decimal     `db:"total_amount" json:"total_amount"`
	AmountPaid     decimal.Decimal     `db:"amount_paid" json:"amount_paid"`
	Currency       string              `db:"currency" json:"currency"`
	PaymentTerms   types.PaymentTerms  `db:"payment_terms" json:"payment_terms"`
	IssueDate      time.Time           `db:"issue_date" json:"issue_date"`
	DueDate        *time.Time          `db:"due_date" json:"due_date,omitempty"`
	SentAt         *time.Time          `db:"sent_at" json:"sent_at,omitempty"`
	ViewedAt       *time.Time          `db:"viewed_at" json:"viewed_at,omitempty"`
	PaidAt         *time.Time          `db:"paid_at" json:"paid_at,omitempty"`

	// Source references. At most one is semantically "the" source, though
	// the schema permits multiple (a hybrid invoice carries both a
	// subscription and a matter).
	SubscriptionID *string `db:"subscription_id" json:"subscription_id,omitempty"`
	MatterID       *string `db:"matter_id" json:"matter_id,omitempty"`
	PaymentPlanID  *string `db:"payment_plan_id" json:"payment_plan_id,omitempty"`

	Description      string           `db:"description" json:"description,omitempty"`
	AppliedDiscounts AppliedDiscounts `db:"applied_discounts" json:"applied_discounts,omitempty"`
	Metadata         types.Metadata   `db:"metadata" json:"metadata,omitempty"`

	LineItems []*LineItem `db:"-" json:"line_items,omitempty"`

	// Type-specific detail rows; exactly one is non-nil and must match
	// InvoiceType for the three detail-carrying types.
	SubscriptionDetail *SubscriptionInvoiceDetail `db:"-" json:"subscription_detail,omitempty"`
	CaseDetail         *CaseInvoiceDetail         `db:"-" json:"case_detail,omitempty"`
	PaymentPlanDetail  *PaymentPlanInvoiceDetail  `db:"-" json:"payment_plan_detail,omitempty"`

	types.BaseModel
}

// AppliedDiscount records one discount rule that was resolved against this
// invoice at generation time.
type AppliedDiscount struct {
	RuleID string             `json:"rule_id"`
	Name   string             `json:"name"`
	Type   types.DiscountType `json:"type"`
	Value  decimal.Decimal    `json:"value"`
	Amount decimal.Decimal    `json:"amount"`
}

// AppliedDiscounts is stored as JSONB on the invoice header
type AppliedDiscounts []AppliedDiscount

func (a *AppliedDiscounts) Scan(value interface{}) error {
	if value == nil {
		*a = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("failed to unmarshal JSONB value: %v", value)
	}
	return json.Unmarshal(bytes, a)
}

func (a AppliedDiscounts) Value() (driver.Value, error) {
	if a == nil {
		return json.Marshal(AppliedDiscounts{})
	}
	return json.Marshal(a)
}

// GetRemainingAmount returns how much of the invoice is still unpaid
func (i *Invoice) GetRemainingAmount() decimal.Decimal {
	return i.TotalAmount.Sub(i.AmountPaid)
}

// DetailType returns the invoice type the attached detail row corresponds
// to, or empty when no detail row is attached.
func (i *Invoice) DetailType() types.InvoiceType {
	switch {
	case i.SubscriptionDetail != nil:
		return types.InvoiceTypeSubscription
	case i.CaseDetail != nil:
		return types.InvoiceTypeCaseBilling
	case i.PaymentPlanDetail != nil:
		return types.InvoiceTypePaymentPlan
	}
	return ""
}

func (i *Invoice) Validate() error {
	if i.ClientID == "" {
		return NewValidationError("client_id", "must be set")
	}

	if err := i.InvoiceType.Validate(); err != nil {
		return err
	}

	if err := i.InvoiceStatus.Validate(); err != nil {
		return err
	}

	if i.Subtotal.IsNegative() {
		return NewValidationError("subtotal", "must be non negative")
	}

	if i.DiscountAmount.IsNegative() {
		return NewValidationError("discount_amount", "must be non negative")
	}

	if i.TaxAmount.IsNegative() {
		return NewValidationError("tax_amount", "must be non negative")
	}

	if i.AmountPaid.IsNegative() {
		return NewValidationError("amount_paid", "must be non negative")
	}

	if i.AmountPaid.GreaterThan(i.TotalAmount) {
		return NewValidationError("amount_paid", "must be less than or equal to total_amount")
	}

	// total_amount = subtotal - discount_amount + tax_amount
	expected := i.Subtotal.Sub(i.DiscountAmount).Add(i.TaxAmount)
	if !i.TotalAmount.Equal(expected) {
		return NewValidationError("total_amount", "must equal subtotal - discount_amount + tax_amount")
	}

	// the detail row must match the invoice type
	switch i.InvoiceType {
	case types.InvoiceTypeSubscription, types.InvoiceTypeCaseBilling, types.InvoiceTypePaymentPlan:
		if i.DetailType() != i.InvoiceType {
			return NewValidationError("invoice_type", "detail row must match invoice type")
		}
	}

	if i.SubscriptionDetail != nil {
		if err := i.SubscriptionDetail.Validate(); err != nil {
			return err
		}
	}
	if i.PaymentPlanDetail != nil {
		if err := i.PaymentPlanDetail.Validate(); err != nil {
			return err
		}
	}

	for _, item := range i.LineItems {
		if item.Currency != i.Currency {
			return NewValidationError("line_items", "currency must match invoice currency")
		}
		if err := item.Validate(); err != nil {
			return err
		}
	}

	return nil
}
