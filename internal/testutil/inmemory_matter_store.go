package testutil

import (
	"context"
	"fmt"
	"sync"

	ierr "github.com/talktorobson/prima-facie-sub001/internal/errors"

	"github.com/talktorobson/prima-facie-sub001/internal/domain/matter"
)

// InMemoryMatterStore implements matter.Repository. The satellite rows
// (billing config, outcome, expenses) are keyed by matter id.
type InMemoryMatterStore struct {
	*InMemoryStore[*matter.Matter]

	mu       sync.RWMutex
	configs  map[string]*matter.BillingConfig
	outcomes map[string]*matter.Outcome
	expenses map[string][]*matter.Expense
}

// NewInMemoryMatterStore creates a new in-memory matter store
func NewInMemoryMatterStore() *InMemoryMatterStore {
	return &InMemoryMatterStore{
		InMemoryStore: NewInMemoryStore[*matter.Matter](),
		configs:       make(map[string]*matter.BillingConfig),
		outcomes:      make(map[string]*matter.Outcome),
		expenses:      make(map[string][]*matter.Expense),
	}
}

func (s *InMemoryMatterStore) Create(ctx context.Context, m *matter.Matter) error {
	if m == nil {
		return fmt.Errorf("matter cannot be nil")
	}
	matterCopy := *m
	return s.InMemoryStore.Create(ctx, m.ID, &matterCopy)
}

func (s *InMemoryMatterStore) Get(ctx context.Context, id string) (*matter.Matter, error) {
	m, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewError("matter not found").
			WithHint("Caso não encontrado").
			WithReportableDetails(map[string]any{"matter_id": id}).
			Mark(ierr.ErrNotFound)
	}
	matterCopy := *m
	return &matterCopy, nil
}

func (s *InMemoryMatterStore) Update(ctx context.Context, m *matter.Matter) error {
	if m == nil {
		return fmt.Errorf("matter cannot be nil")
	}
	matterCopy := *m
	return s.InMemoryStore.Update(ctx, m.ID, &matterCopy)
}

func (s *InMemoryMatterStore) GetBillingConfig(ctx context.Context, matterID string) (*matter.BillingConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	config, exists := s.configs[matterID]
	if !exists {
		return nil, ierr.NewError("billing config not found").
			WithHint("Configuração de cobrança não encontrada para este caso").
			WithReportableDetails(map[string]any{"matter_id": matterID}).
			Mark(ierr.ErrNotFound)
	}
	configCopy := *config
	return &configCopy, nil
}

func (s *InMemoryMatterStore) SetBillingConfig(ctx context.Context, config *matter.BillingConfig) error {
	if config == nil {
		return fmt.Errorf("billing config cannot be nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	configCopy := *config
	s.configs[config.MatterID] = &configCopy
	return nil
}

func (s *InMemoryMatterStore) GetOutcome(ctx context.Context, matterID string) (*matter.Outcome, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	outcome, exists := s.outcomes[matterID]
	if !exists {
		return nil, ierr.NewError("outcome not found").
			WithHint("Nenhum resultado registrado para este caso").
			WithReportableDetails(map[string]any{"matter_id": matterID}).
			Mark(ierr.ErrNotFound)
	}
	outcomeCopy := *outcome
	return &outcomeCopy, nil
}

func (s *InMemoryMatterStore) SetOutcome(ctx context.Context, outcome *matter.Outcome) error {
	if outcome == nil {
		return fmt.Errorf("outcome cannot be nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	outcomeCopy := *outcome
	s.outcomes[outcome.MatterID] = &outcomeCopy
	return nil
}

func (s *InMemoryMatterStore) ListExpenses(ctx context.Context, matterID string) ([]*matter.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*matter.Expense
	for _, expense := range s.expenses[matterID] {
		expenseCopy := *expense
		result = append(result, &expenseCopy)
	}
	return result, nil
}

func (s *InMemoryMatterStore) AddExpense(ctx context.Context, expense *matter.Expense) error {
	if expense == nil {
		return fmt.Errorf("expense cannot be nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	expenseCopy := *expense
	s.expenses[expense.MatterID] = append(s.expenses[expense.MatterID], &expenseCopy)
	return nil
}

// Clear removes all matters and their satellite rows
func (s *InMemoryMatterStore) Clear() {
	s.InMemoryStore.Clear()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.configs = make(map[string]*matter.BillingConfig)
	s.outcomes = make(map[string]*matter.Outcome)
	s.expenses = make(map[string][]*matter.Expense)
}
