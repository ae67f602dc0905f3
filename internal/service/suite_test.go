package service

import (
	"github.com/talktorobson/prima-facie-sub001/internal/cache"
	"github.com/talktorobson/prima-facie-sub001/internal/testutil"
)

// testServiceParams wires the shared in-memory stores into ServiceParams.
// Each call hands out a fresh cache so tests never observe one another's
// cached discount rules.
func testServiceParams(s *testutil.BaseServiceTestSuite) ServiceParams {
	stores := s.GetStores()
	return ServiceParams{
		Logger:            s.GetLogger(),
		Config:            s.GetConfig(),
		DB:                s.GetDB(),
		Cache:             cache.NewInMemoryCache(),
		InvoiceRepo:       stores.InvoiceRepo,
		GenerationLogRepo: stores.GenerationLogRepo,
		SubscriptionRepo:  stores.SubscriptionRepo,
		PlanRepo:          stores.PlanRepo,
		MatterRepo:        stores.MatterRepo,
		PaymentPlanRepo:   stores.PaymentPlanRepo,
		TimeEntryRepo:     stores.TimeEntryRepo,
		DiscountRepo:      stores.DiscountRepo,
	}
}
