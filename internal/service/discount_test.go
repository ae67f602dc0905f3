package service

import (
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/talktorobson/prima-facie-sub001/internal/domain/discount"
	"github.com/talktorobson/prima-facie-sub001/internal/testutil"
	"github.com/talktorobson/prima-facie-sub001/internal/types"
)

type DiscountServiceSuite struct {
	testutil.BaseServiceTestSuite
	service DiscountService
	params  ServiceParams
}

func TestDiscountService(t *testing.T) {
	suite.Run(t, new(DiscountServiceSuite))
}

func (s *DiscountServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.params = testServiceParams(&s.BaseServiceTestSuite)
	s.service = NewDiscountService(s.params)
}

func (s *DiscountServiceSuite) seedRule(rule *discount.Rule) {
	ctx := s.GetContext()
	if rule.ValidFrom.IsZero() {
		rule.ValidFrom = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	rule.BaseModel = types.GetDefaultBaseModel(ctx)
	s.NoError(s.GetStores().DiscountRepo.Create(ctx, rule))
}

func (s *DiscountServiceSuite) resolve(params DiscountResolutionParams) *DiscountResolutionResult {
	result, err := s.service.ResolveDiscounts(s.GetContext(), params)
	s.NoError(err)
	s.Require().NotNil(result)
	return result
}

func (s *DiscountServiceSuite) TestNoRules() {
	result := s.resolve(DiscountResolutionParams{
		ClientID:   "client_1",
		BaseAmount: decimal.NewFromInt(1000),
	})
	s.True(result.TotalDiscount.IsZero())
	s.True(result.FinalAmount.Equal(decimal.NewFromInt(1000)))
	s.Empty(result.ApplicableDiscounts)
}

func (s *DiscountServiceSuite) TestPercentageAndFixedStack() {
	s.seedRule(&discount.Rule{
		ID:           "disc_pct",
		Name:         "Desconto anual",
		AppliesTo:    types.DiscountScopeAll,
		DiscountType: types.DiscountTypePercentage,
		Value:        decimal.NewFromInt(10),
		Priority:     1,
		AutoApply:    true,
	})
	s.seedRule(&discount.Rule{
		ID:           "disc_fix",
		Name:         "Cortesia",
		AppliesTo:    types.DiscountScopeClient,
		TargetID:     "client_1",
		DiscountType: types.DiscountTypeFixed,
		Value:        decimal.NewFromInt(50),
		Priority:     2,
		AutoApply:    true,
	})

	result := s.resolve(DiscountResolutionParams{
		ClientID:   "client_1",
		BaseAmount: decimal.NewFromInt(1000),
	})

	s.True(result.TotalDiscount.Equal(decimal.NewFromInt(150)))
	s.True(result.FinalAmount.Equal(decimal.NewFromInt(850)))
	s.Require().Len(result.ApplicableDiscounts, 2)
	// priority ascending
	s.Equal("disc_pct", result.ApplicableDiscounts[0].RuleID)
	s.Equal("disc_fix", result.ApplicableDiscounts[1].RuleID)
}

func (s *DiscountServiceSuite) TestScopeTargeting() {
	s.seedRule(&discount.Rule{
		ID:           "disc_other_client",
		Name:         "Desconto de outro cliente",
		AppliesTo:    types.DiscountScopeClient,
		TargetID:     "client_2",
		DiscountType: types.DiscountTypeFixed,
		Value:        decimal.NewFromInt(100),
		Priority:     1,
		AutoApply:    true,
	})
	s.seedRule(&discount.Rule{
		ID:           "disc_matter",
		Name:         "Desconto do caso",
		AppliesTo:    types.DiscountScopeMatter,
		TargetID:     "matter_1",
		DiscountType: types.DiscountTypeFixed,
		Value:        decimal.NewFromInt(30),
		Priority:     2,
		AutoApply:    true,
	})

	result := s.resolve(DiscountResolutionParams{
		ClientID:   "client_1",
		MatterID:   "matter_1",
		BaseAmount: decimal.NewFromInt(500),
	})

	s.Require().Len(result.ApplicableDiscounts, 1)
	s.Equal("disc_matter", result.ApplicableDiscounts[0].RuleID)
	s.True(result.TotalDiscount.Equal(decimal.NewFromInt(30)))
}

func (s *DiscountServiceSuite) TestMinAmountThreshold() {
	s.seedRule(&discount.Rule{
		ID:           "disc_big",
		Name:         "Desconto para faturas altas",
		AppliesTo:    types.DiscountScopeAll,
		DiscountType: types.DiscountTypePercentage,
		Value:        decimal.NewFromInt(5),
		Priority:     1,
		AutoApply:    true,
		MinAmount:    lo.ToPtr(decimal.NewFromInt(2000)),
	})

	below := s.resolve(DiscountResolutionParams{
		ClientID:   "client_1",
		BaseAmount: decimal.NewFromInt(1500),
	})
	s.True(below.TotalDiscount.IsZero())

	above := s.resolve(DiscountResolutionParams{
		ClientID:   "client_1",
		BaseAmount: decimal.NewFromInt(3000),
	})
	s.True(above.TotalDiscount.Equal(decimal.NewFromInt(150)))
}

func (s *DiscountServiceSuite) TestCumulativeDiscountCappedAtBase() {
	s.seedRule(&discount.Rule{
		ID:           "disc_fix_a",
		Name:         "Abatimento A",
		AppliesTo:    types.DiscountScopeAll,
		DiscountType: types.DiscountTypeFixed,
		Value:        decimal.NewFromInt(80),
		Priority:     1,
		AutoApply:    true,
	})
	s.seedRule(&discount.Rule{
		ID:           "disc_fix_b",
		Name:         "Abatimento B",
		AppliesTo:    types.DiscountScopeAll,
		DiscountType: types.DiscountTypeFixed,
		Value:        decimal.NewFromInt(80),
		Priority:     2,
		AutoApply:    true,
	})

	result := s.resolve(DiscountResolutionParams{
		ClientID:   "client_1",
		BaseAmount: decimal.NewFromInt(100),
	})

	s.True(result.TotalDiscount.Equal(decimal.NewFromInt(100)))
	s.True(result.FinalAmount.IsZero())
	s.Require().Len(result.ApplicableDiscounts, 2)
	s.True(result.ApplicableDiscounts[1].Amount.Equal(decimal.NewFromInt(20)))
}

func (s *DiscountServiceSuite) TestExpiredRuleSkipped() {
	s.seedRule(&discount.Rule{
		ID:           "disc_expired",
		Name:         "Campanha encerrada",
		AppliesTo:    types.DiscountScopeAll,
		DiscountType: types.DiscountTypeFixed,
		Value:        decimal.NewFromInt(100),
		Priority:     1,
		AutoApply:    true,
		ValidFrom:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		ValidUntil:   lo.ToPtr(time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)),
	})

	result := s.resolve(DiscountResolutionParams{
		ClientID:   "client_1",
		BaseAmount: decimal.NewFromInt(1000),
		At:         time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
	})
	s.True(result.TotalDiscount.IsZero())
}

func (s *DiscountServiceSuite) TestRulesAreCachedPerResolution() {
	result := s.resolve(DiscountResolutionParams{
		ClientID:   "client_1",
		BaseAmount: decimal.NewFromInt(1000),
	})
	s.True(result.TotalDiscount.IsZero())

	// a rule created after the first lookup is invisible until the cached
	// rule set expires or is flushed
	s.seedRule(&discount.Rule{
		ID:           "disc_late",
		Name:         "Desconto tardio",
		AppliesTo:    types.DiscountScopeAll,
		DiscountType: types.DiscountTypeFixed,
		Value:        decimal.NewFromInt(100),
		Priority:     1,
		AutoApply:    true,
	})

	cached := s.resolve(DiscountResolutionParams{
		ClientID:   "client_1",
		BaseAmount: decimal.NewFromInt(1000),
	})
	s.True(cached.TotalDiscount.IsZero())

	s.params.Cache.Flush(s.GetContext())
	fresh := s.resolve(DiscountResolutionParams{
		ClientID:   "client_1",
		BaseAmount: decimal.NewFromInt(1000),
	})
	s.True(fresh.TotalDiscount.Equal(decimal.NewFromInt(100)))
}
