package testutil

import (
	"context"
	"fmt"

	ierr "github.com/talktorobson/prima-facie-sub001/internal/errors"

	"github.com/talktorobson/prima-facie-sub001/internal/domain/discount"
	"github.com/talktorobson/prima-facie-sub001/internal/types"
)

// InMemoryDiscountStore implements discount.Repository
type InMemoryDiscountStore struct {
	*InMemoryStore[*discount.Rule]
}

// NewInMemoryDiscountStore creates a new in-memory discount rule store
func NewInMemoryDiscountStore() *InMemoryDiscountStore {
	return &InMemoryDiscountStore{
		InMemoryStore: NewInMemoryStore[*discount.Rule](),
	}
}

func copyRule(rule *discount.Rule) *discount.Rule {
	if rule == nil {
		return nil
	}
	ruleCopy := *rule
	return &ruleCopy
}

func (s *InMemoryDiscountStore) Create(ctx context.Context, rule *discount.Rule) error {
	if rule == nil {
		return fmt.Errorf("discount rule cannot be nil")
	}
	return s.InMemoryStore.Create(ctx, rule.ID, copyRule(rule))
}

func (s *InMemoryDiscountStore) Get(ctx context.Context, id string) (*discount.Rule, error) {
	rule, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewError("discount rule not found").
			WithHint("Regra de desconto não encontrada").
			WithReportableDetails(map[string]any{"rule_id": id}).
			Mark(ierr.ErrNotFound)
	}
	return copyRule(rule), nil
}

func (s *InMemoryDiscountStore) Update(ctx context.Context, rule *discount.Rule) error {
	if rule == nil {
		return fmt.Errorf("discount rule cannot be nil")
	}
	return s.InMemoryStore.Update(ctx, rule.ID, copyRule(rule))
}

func (s *InMemoryDiscountStore) ListActive(ctx context.Context) ([]*discount.Rule, error) {
	return s.InMemoryStore.List(ctx, nil, func(ctx context.Context, rule *discount.Rule, _ interface{}) bool {
		return CheckLawFirmFilter(ctx, rule.LawFirmID) &&
			rule.AutoApply &&
			rule.BaseModel.Status == types.StatusActive
	}, func(i, j *discount.Rule) bool {
		if i.Priority != j.Priority {
			return i.Priority < j.Priority
		}
		return i.ID < j.ID
	})
}
