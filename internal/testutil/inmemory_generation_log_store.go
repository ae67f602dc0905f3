package testutil

import (
	"context"
	"fmt"

	"github.com/talktorobson/prima-facie-sub001/internal/domain/invoice"
	"github.com/talktorobson/prima-facie-sub001/internal/types"
)

// InMemoryGenerationLogStore implements invoice.GenerationLogRepository
type InMemoryGenerationLogStore struct {
	*InMemoryStore[*invoice.GenerationLog]
}

// NewInMemoryGenerationLogStore creates a new in-memory generation log store
func NewInMemoryGenerationLogStore() *InMemoryGenerationLogStore {
	return &InMemoryGenerationLogStore{
		InMemoryStore: NewInMemoryStore[*invoice.GenerationLog](),
	}
}

func (s *InMemoryGenerationLogStore) Create(ctx context.Context, log *invoice.GenerationLog) error {
	if log == nil {
		return fmt.Errorf("generation log cannot be nil")
	}
	logCopy := *log
	return s.InMemoryStore.Create(ctx, log.ID, &logCopy)
}

func (s *InMemoryGenerationLogStore) List(ctx context.Context, filter *types.QueryFilter) ([]*invoice.GenerationLog, error) {
	return s.InMemoryStore.List(ctx, asFilter(filter), generationLogFilterFn, generationLogSortFn)
}

func generationLogFilterFn(ctx context.Context, log *invoice.GenerationLog, _ interface{}) bool {
	return log != nil && CheckLawFirmFilter(ctx, log.LawFirmID)
}

func generationLogSortFn(i, j *invoice.GenerationLog) bool {
	return i.StartedAt.After(j.StartedAt)
}
