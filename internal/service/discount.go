package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/talktorobson/prima-facie-sub001/internal/cache"
	"github.com/talktorobson/prima-facie-sub001/internal/domain/discount"
	"github.com/talktorobson/prima-facie-sub001/internal/domain/invoice"
	"github.com/talktorobson/prima-facie-sub001/internal/types"
)

// DiscountResolutionParams identifies the target an invoice is being
// generated for. MatterID and SubscriptionID are optional and narrow the
// matching rule scopes.
type DiscountResolutionParams struct {
	ClientID       string
	MatterID       string
	SubscriptionID string
	BaseAmount     decimal.Decimal
	At             time.Time
}

// DiscountResolutionResult is what the resolver hands back to invoice
// assembly
type DiscountResolutionResult struct {
	TotalDiscount       decimal.Decimal
	FinalAmount         decimal.Decimal
	ApplicableDiscounts []invoice.AppliedDiscount
}

type DiscountService interface {
	// ResolveDiscounts selects all active auto-apply rules matching the
	// target, sorted by priority, and computes the aggregate discount.
	// Never fails invoice generation: lookup errors surface as an error so
	// the caller can fall back to zero discount and log.
	ResolveDiscounts(ctx context.Context, params DiscountResolutionParams) (*DiscountResolutionResult, error)
}

type discountService struct {
	ServiceParams
}

func NewDiscountService(params ServiceParams) DiscountService {
	return &discountService{ServiceParams: params}
}

func (s *discountService) ResolveDiscounts(ctx context.Context, params DiscountResolutionParams) (*DiscountResolutionResult, error) {
	rules, err := s.activeRules(ctx)
	if err != nil {
		return nil, err
	}

	at := params.At
	if at.IsZero() {
		at = time.Now().UTC()
	}

	result := &DiscountResolutionResult{
		FinalAmount: params.BaseAmount,
	}

	for _, rule := range rules {
		if !rule.IsActiveAt(at) {
			continue
		}
		if !rule.Matches(params.ClientID, params.MatterID, params.SubscriptionID, params.BaseAmount) {
			continue
		}

		amount := rule.AmountFor(params.BaseAmount)
		// cumulative discount never exceeds the base amount
		if remaining := params.BaseAmount.Sub(result.TotalDiscount); amount.GreaterThan(remaining) {
			amount = remaining
		}
		if amount.IsZero() {
			continue
		}

		result.TotalDiscount = result.TotalDiscount.Add(amount)
		result.ApplicableDiscounts = append(result.ApplicableDiscounts, invoice.AppliedDiscount{
			RuleID: rule.ID,
			Name:   rule.Name,
			Type:   rule.DiscountType,
			Value:  rule.Value,
			Amount: amount,
		})
	}

	result.FinalAmount = params.BaseAmount.Sub(result.TotalDiscount)
	return result, nil
}

// activeRules returns the firm's active auto-apply rules, cached briefly so
// batch runs do not hammer the rules table once per invoice
func (s *discountService) activeRules(ctx context.Context) ([]*discount.Rule, error) {
	key := cache.Key(cache.PrefixDiscountRules, types.GetLawFirmID(ctx))
	if s.Cache != nil {
		if cached, found := s.Cache.Get(ctx, key); found {
			if rules, ok := cached.([]*discount.Rule); ok {
				return rules, nil
			}
		}
	}

	rules, err := s.DiscountRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	if s.Cache != nil {
		s.Cache.Set(ctx, key, rules, cache.DefaultExpiration)
	}
	return rules, nil
}
