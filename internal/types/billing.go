package types

import (
	"time"

	"github.com/samber/lo"

	ierr "github.com/talktorobson/prima-facie-sub001/internal/errors"
)

// DefaultCurrency is the platform currency. Calculators operate on plain
// decimals; pt-BR / BRL rendering happens at the UI edge only.
const DefaultCurrency = "BRL"

// BillingMethod is how a matter is charged
type BillingMethod string

const (
	// BillingMethodHourly charges billable time entries at their rate
	BillingMethodHourly BillingMethod = "hourly"
	// BillingMethodFixed charges a configured flat fee
	BillingMethodFixed BillingMethod = "fixed"
	// BillingMethodPercentage charges a share of the recovered amount
	// (contingency) plus any flat success fee recorded on the outcome
	BillingMethodPercentage BillingMethod = "percentage"
	// BillingMethodHybrid sums the hourly and percentage computations
	BillingMethodHybrid BillingMethod = "hybrid"
)

func (m BillingMethod) String() string {
	return string(m)
}

func (m BillingMethod) Validate() error {
	allowed := []BillingMethod{
		BillingMethodHourly,
		BillingMethodFixed,
		BillingMethodPercentage,
		BillingMethodHybrid,
	}
	if !lo.Contains(allowed, m) {
		return ierr.NewError("invalid billing method").
			WithHint("Método de cobrança inválido").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// PaymentPlanFrequency is the spacing between installments
type PaymentPlanFrequency string

const (
	PaymentPlanFrequencyWeekly    PaymentPlanFrequency = "weekly"
	PaymentPlanFrequencyBiweekly  PaymentPlanFrequency = "biweekly"
	PaymentPlanFrequencyMonthly   PaymentPlanFrequency = "monthly"
	PaymentPlanFrequencyQuarterly PaymentPlanFrequency = "quarterly"
)

func (f PaymentPlanFrequency) String() string {
	return string(f)
}

func (f PaymentPlanFrequency) Validate() error {
	allowed := []PaymentPlanFrequency{
		PaymentPlanFrequencyWeekly,
		PaymentPlanFrequencyBiweekly,
		PaymentPlanFrequencyMonthly,
		PaymentPlanFrequencyQuarterly,
	}
	if !lo.Contains(allowed, f) {
		return ierr.NewError("invalid payment plan frequency").
			WithHint("Frequência de parcelamento inválida").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// AddPeriods returns start advanced by n frequency periods. Week-based
// frequencies use exact day offsets; month-based ones use calendar months.
func (f PaymentPlanFrequency) AddPeriods(start time.Time, n int) time.Time {
	switch f {
	case PaymentPlanFrequencyWeekly:
		return start.AddDate(0, 0, 7*n)
	case PaymentPlanFrequencyBiweekly:
		return start.AddDate(0, 0, 14*n)
	case PaymentPlanFrequencyQuarterly:
		return start.AddDate(0, 3*n, 0)
	default:
		return start.AddDate(0, n, 0)
	}
}

// PaymentPlanStatus is the payment plan lifecycle state
type PaymentPlanStatus string

const (
	PaymentPlanStatusActive    PaymentPlanStatus = "active"
	PaymentPlanStatusCompleted PaymentPlanStatus = "completed"
	PaymentPlanStatusCancelled PaymentPlanStatus = "cancelled"
)

func (s PaymentPlanStatus) Validate() error {
	allowed := []PaymentPlanStatus{
		PaymentPlanStatusActive,
		PaymentPlanStatusCompleted,
		PaymentPlanStatusCancelled,
	}
	if !lo.Contains(allowed, s) {
		return ierr.NewError("invalid payment plan status").
			WithHint("Status de parcelamento inválido").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// SubscriptionStatus is the legal-plan subscription lifecycle state
type SubscriptionStatus string

const (
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusPaused    SubscriptionStatus = "paused"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"
)

// DiscountType is how a discount rule value is interpreted
type DiscountType string

const (
	DiscountTypePercentage DiscountType = "percentage"
	DiscountTypeFixed      DiscountType = "fixed"
)

func (t DiscountType) Validate() error {
	allowed := []DiscountType{DiscountTypePercentage, DiscountTypeFixed}
	if !lo.Contains(allowed, t) {
		return ierr.NewError("invalid discount type").
			WithHint("Tipo de desconto inválido").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// DiscountScope is what a discount rule applies to
type DiscountScope string

const (
	DiscountScopeAll          DiscountScope = "all"
	DiscountScopeClient       DiscountScope = "client"
	DiscountScopeMatter       DiscountScope = "matter"
	DiscountScopeSubscription DiscountScope = "subscription"
)

func (s DiscountScope) Validate() error {
	allowed := []DiscountScope{
		DiscountScopeAll,
		DiscountScopeClient,
		DiscountScopeMatter,
		DiscountScopeSubscription,
	}
	if !lo.Contains(allowed, s) {
		return ierr.NewError("invalid discount scope").
			WithHint("Escopo de desconto inválido").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// LegalServiceType classifies plan service inclusions and time entries
type LegalServiceType string

const (
	LegalServiceConsultation     LegalServiceType = "consultation"
	LegalServiceDocumentReview   LegalServiceType = "document_review"
	LegalServiceContractAnalysis LegalServiceType = "contract_analysis"
	LegalServiceLegalResearch    LegalServiceType = "legal_research"
	LegalServiceOther            LegalServiceType = "other"
)

func (t LegalServiceType) String() string {
	return string(t)
}

// CountsOccurrences reports whether usage for this service is measured as
// the number of matching time entries. Everything else is measured in
// whole hours rounded up.
func (t LegalServiceType) CountsOccurrences() bool {
	switch t {
	case LegalServiceConsultation, LegalServiceDocumentReview, LegalServiceContractAnalysis:
		return true
	default:
		return false
	}
}

// Unit returns the usage unit label for the service
func (t LegalServiceType) Unit() string {
	if t.CountsOccurrences() {
		return "occurrences"
	}
	return "hours"
}
