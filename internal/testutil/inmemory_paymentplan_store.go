package testutil

import (
	"context"
	"fmt"

	"github.com/talktorobson/prima-facie-sub001/internal/domain/paymentplan"
	"github.com/talktorobson/prima-facie-sub001/internal/types"
)

// InMemoryPaymentPlanStore implements paymentplan.Repository
type InMemoryPaymentPlanStore struct {
	*InMemoryStore[*paymentplan.PaymentPlan]
}

// NewInMemoryPaymentPlanStore creates a new in-memory payment plan store
func NewInMemoryPaymentPlanStore() *InMemoryPaymentPlanStore {
	return &InMemoryPaymentPlanStore{
		InMemoryStore: NewInMemoryStore[*paymentplan.PaymentPlan](),
	}
}

func copyPaymentPlan(p *paymentplan.PaymentPlan) *paymentplan.PaymentPlan {
	if p == nil {
		return nil
	}
	planCopy := *p
	return &planCopy
}

func (s *InMemoryPaymentPlanStore) Create(ctx context.Context, p *paymentplan.PaymentPlan) error {
	if p == nil {
		return fmt.Errorf("payment plan cannot be nil")
	}
	return s.InMemoryStore.Create(ctx, p.ID, copyPaymentPlan(p))
}

func (s *InMemoryPaymentPlanStore) Get(ctx context.Context, id string) (*paymentplan.PaymentPlan, error) {
	p, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, paymentplan.ErrPlanNotFound
	}
	return copyPaymentPlan(p), nil
}

func (s *InMemoryPaymentPlanStore) Update(ctx context.Context, p *paymentplan.PaymentPlan) error {
	if p == nil {
		return fmt.Errorf("payment plan cannot be nil")
	}
	return s.InMemoryStore.Update(ctx, p.ID, copyPaymentPlan(p))
}

func (s *InMemoryPaymentPlanStore) ListActive(ctx context.Context) ([]*paymentplan.PaymentPlan, error) {
	return s.InMemoryStore.List(ctx, nil, func(ctx context.Context, p *paymentplan.PaymentPlan, _ interface{}) bool {
		return CheckLawFirmFilter(ctx, p.LawFirmID) &&
			p.PlanStatus == types.PaymentPlanStatusActive
	}, func(i, j *paymentplan.PaymentPlan) bool {
		return i.CreatedAt.Before(j.CreatedAt)
	})
}
