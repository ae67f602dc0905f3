package discount

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/talktorobson/prima-facie-sub001/internal/types"
)

// Rule is a discount rule. Rules are independent of invoices: they are
// resolved against at calculation time and recorded on the invoice only as
// an applied_discounts entry.
type Rule struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"name"`

	AppliesTo types.DiscountScope `db:"applies_to" json:"applies_to"`
	// TargetID narrows the scope to a specific client/matter/subscription;
	// empty for scope "all"
	TargetID string `db:"target_id" json:"target_id,omitempty"`

	DiscountType types.DiscountType `db:"discount_type" json:"discount_type"`
	Value        decimal.Decimal    `db:"value" json:"value"`

	Priority  int  `db:"priority" json:"priority"`
	AutoApply bool `db:"auto_apply" json:"auto_apply"`

	ValidFrom  time.Time  `db:"valid_from" json:"valid_from"`
	ValidUntil *time.Time `db:"valid_until" json:"valid_until,omitempty"`

	// MinAmount, when set, is the minimum qualifying base amount
	MinAmount *decimal.Decimal `db:"min_amount" json:"min_amount,omitempty"`

	types.BaseModel
}

// IsActiveAt reports whether the rule's activation window covers t
func (r *Rule) IsActiveAt(t time.Time) bool {
	if t.Before(r.ValidFrom) {
		return false
	}
	if r.ValidUntil != nil && t.After(*r.ValidUntil) {
		return false
	}
	return true
}

// Matches reports whether the rule applies to the given target and base
// amount
func (r *Rule) Matches(clientID, matterID, subscriptionID string, baseAmount decimal.Decimal) bool {
	if r.MinAmount != nil && baseAmount.LessThan(*r.MinAmount) {
		return false
	}

	switch r.AppliesTo {
	case types.DiscountScopeAll:
		return true
	case types.DiscountScopeClient:
		return r.TargetID == clientID && clientID != ""
	case types.DiscountScopeMatter:
		return r.TargetID == matterID && matterID != ""
	case types.DiscountScopeSubscription:
		return r.TargetID == subscriptionID && subscriptionID != ""
	}
	return false
}

// AmountFor computes the discount amount this rule yields on a base amount
func (r *Rule) AmountFor(baseAmount decimal.Decimal) decimal.Decimal {
	var amount decimal.Decimal
	switch r.DiscountType {
	case types.DiscountTypePercentage:
		amount = baseAmount.Mul(r.Value).Div(decimal.NewFromInt(100))
	case types.DiscountTypeFixed:
		amount = r.Value
	}
	if amount.GreaterThan(baseAmount) {
		amount = baseAmount
	}
	return amount.Round(2)
}
